// Package sandbox is the client for the external sandboxed execution
// service. The service is a black box reached over a batch submit/poll
// protocol: submit all jobs of a submission together, receive one token per
// job, poll by tokens until every job is terminal or the wait budget runs
// out.
package sandbox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const resultFields = "token,stdout,stderr,compile_output,status,time,memory"

type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	log        *slog.Logger

	// Overridable in tests.
	initialWait func(n int) time.Duration
	waitBudget  func(n int) time.Duration
}

func New(baseURL string, authToken string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		authToken:   authToken,
		log:         slog.Default().With("component", "sandbox"),
		initialWait: defaultInitialWait,
		waitBudget:  defaultWaitBudget,
	}
}

// The wait before the first poll grows linearly with batch size, with a
// floor: a batch of N jobs cannot possibly be done instantly, so hot-polling
// is pointless.
func defaultInitialWait(n int) time.Duration {
	return 1*time.Second + time.Duration(n)*250*time.Millisecond
}

func defaultWaitBudget(n int) time.Duration {
	return 5*time.Second + time.Duration(n)*2*time.Second
}

// Tune overrides the initial wait and total wait budget. Meant for tests
// and for deployments with a dedicated, fast sandbox.
func (c *Client) Tune(initialWait, waitBudget func(n int) time.Duration) {
	if initialWait != nil {
		c.initialWait = initialWait
	}
	if waitBudget != nil {
		c.waitBudget = waitBudget
	}
}

// SubmitBatch submits all jobs as one batch and returns their tokens in
// submission order. Any transport or per-job submission failure fails the
// whole batch.
func (c *Client) SubmitBatch(ctx context.Context, subs []Submission) ([]string, error) {
	encoded := make([]Submission, len(subs))
	for i, s := range subs {
		encoded[i] = s
		encoded[i].SourceCode = base64.StdEncoding.EncodeToString([]byte(s.SourceCode))
		encoded[i].Stdin = base64.StdEncoding.EncodeToString([]byte(s.Stdin))
		if s.ExpectedOutput != "" {
			encoded[i].ExpectedOutput = base64.StdEncoding.EncodeToString([]byte(s.ExpectedOutput))
		}
	}

	body, err := json.Marshal(map[string]any{"submissions": encoded})
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	u := c.baseURL + "/submissions/batch?base64_encoded=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("submit batch: sandbox returned %d: %s", resp.StatusCode, string(raw))
	}

	var created []struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}

	tokens := make([]string, len(created))
	for i, cr := range created {
		if cr.Token == "" {
			return nil, fmt.Errorf("submit batch: job %d received no token", i)
		}
		tokens[i] = cr.Token
	}
	if len(tokens) != len(subs) {
		return nil, fmt.Errorf("submit batch: submitted %d jobs, received %d tokens", len(subs), len(tokens))
	}

	c.log.Debug("submitted batch", "jobs", len(tokens))
	return tokens, nil
}

// GetBatch retrieves all jobs by token, decoding the opaque-encoded fields.
func (c *Client) GetBatch(ctx context.Context, tokens []string) ([]Result, error) {
	q := url.Values{}
	q.Set("tokens", strings.Join(tokens, ","))
	q.Set("base64_encoded", "true")
	q.Set("fields", resultFields)

	u := c.baseURL + "/submissions/batch?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build retrieval request: %w", err)
	}
	c.auth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieve batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("retrieve batch: sandbox returned %d: %s", resp.StatusCode, string(raw))
	}

	var payload struct {
		Submissions []Result `json:"submissions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode retrieval response: %w", err)
	}

	for i := range payload.Submissions {
		r := &payload.Submissions[i]
		r.Stdout = decodeField(r.Stdout)
		r.Stderr = decodeField(r.Stderr)
		r.CompileOutput = decodeField(r.CompileOutput)
	}
	return payload.Submissions, nil
}

// WaitForBatch waits out the initial proportional delay, then polls with
// bounded exponential backoff until every job is terminal or the total wait
// budget elapses. Results are returned as-is after the budget: non-terminal
// jobs stay non-terminal and are judged per case downstream. Cancelling ctx
// stops the waiting; jobs already admitted stay with the sandbox, which is
// authoritative for its own lifecycle.
func (c *Client) WaitForBatch(ctx context.Context, tokens []string) ([]Result, error) {
	deadline := time.Now().Add(c.waitBudget(len(tokens)))

	if err := sleepCtx(ctx, c.initialWait(len(tokens))); err != nil {
		return nil, err
	}

	backoff := 500 * time.Millisecond
	for {
		results, err := c.GetBatch(ctx, tokens)
		if err != nil {
			return nil, err
		}
		if allTerminal(results) || !time.Now().Before(deadline) {
			return results, nil
		}

		wait := backoff
		if remaining := time.Until(deadline); wait > remaining {
			wait = remaining
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}
		if backoff < 4*time.Second {
			backoff *= 2
		}
	}
}

func allTerminal(results []Result) bool {
	for _, r := range results {
		if !r.Status.Terminal() {
			return false
		}
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) auth(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("X-Auth-Token", c.authToken)
	}
}

func decodeField(field *string) *string {
	if field == nil {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(*field))
	if err != nil {
		// Some deployments return the field as plain text already.
		return field
	}
	s := string(raw)
	return &s
}
