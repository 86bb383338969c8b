package problems

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
)

// S3Fetcher downloads zstd-compressed test-case lists from an S3 bucket.
// Objects live at <prefix>/<problemID>.json.zst.
type S3Fetcher struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Fetcher(client *s3.Client, bucket string, prefix string) *S3Fetcher {
	return &S3Fetcher{client: client, bucket: bucket, prefix: prefix}
}

// Fetch implements FetchFunc.
func (f *S3Fetcher) Fetch(ctx context.Context, problemID string, destPath string) error {
	key := path.Join(f.prefix, problemID+".json.zst")
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get s3://%s/%s: %w", f.bucket, key, err)
	}
	defer out.Body.Close()

	dec, err := zstd.NewReader(out.Body)
	if err != nil {
		return fmt.Errorf("open zstd reader: %w", err)
	}
	defer dec.Close()

	// Write through a temp file so a partial download never becomes a
	// valid-looking cache entry.
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, dec); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("decompress test cases: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// NormalizeProblemID maps a display title to its catalog slug, e.g.
// "Two Sum" to "two-sum". IDs that are already slugs pass through.
func NormalizeProblemID(id string) string {
	slug := strings.ToLower(strings.TrimSpace(id))
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}
