// Package problems is the read side of the upstream test-case store: per
// problem, an ordered list of test cases with raw input text or a
// structured parameter map, the expected value, and an example flag.
package problems

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/algojudge/grader/api"
)

// FetchFunc downloads the serialized test-case list for one problem into
// path. Injected so the store stays testable without the network.
type FetchFunc func(ctx context.Context, problemID string, path string) error

// Store caches problem test cases on disk and in memory. Safe for
// concurrent use by parallel grading requests.
type Store struct {
	cacheDir string
	fetch    FetchFunc
	mem      *xsync.MapOf[string, []api.TestCase]
	log      *slog.Logger
}

func NewStore(cacheDir string, fetch FetchFunc) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create test-case cache dir: %w", err)
	}
	return &Store{
		cacheDir: cacheDir,
		fetch:    fetch,
		mem:      xsync.NewMapOf[string, []api.TestCase](),
		log:      slog.Default().With("component", "problems"),
	}, nil
}

// Tests returns the ordered test cases of a problem, consulting the
// in-memory cache, then the disk cache, then the upstream store.
func (s *Store) Tests(ctx context.Context, problemID string) ([]api.TestCase, error) {
	if tests, ok := s.mem.Load(problemID); ok {
		return tests, nil
	}

	path := filepath.Join(s.cacheDir, problemID+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.log.Debug("test cases not cached, fetching", "problem", problemID)
		if err := s.fetch(ctx, problemID, path); err != nil {
			return nil, fmt.Errorf("fetch test cases for %s: %w", problemID, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat cached test cases: %w", err)
	}

	tests, err := readTests(path)
	if err != nil {
		return nil, fmt.Errorf("read test cases for %s: %w", problemID, err)
	}

	s.mem.Store(problemID, tests)
	return tests, nil
}

// Prefetch warms the cache for several problems concurrently.
func (s *Store) Prefetch(ctx context.Context, problemIDs []string) error {
	errs, ctx := errgroup.WithContext(ctx)
	errs.SetLimit(4)
	for _, id := range problemIDs {
		errs.Go(func() error {
			_, err := s.Tests(ctx, id)
			return err
		})
	}
	return errs.Wait()
}

func readTests(path string) ([]api.TestCase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tests []api.TestCase
	if err := json.Unmarshal(raw, &tests); err != nil {
		return nil, fmt.Errorf("decode test-case list: %w", err)
	}
	for i := range tests {
		if tests[i].ID == 0 {
			tests[i].ID = i + 1
		}
	}
	return tests, nil
}
