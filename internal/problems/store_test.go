package problems_test

import (
	"context"
	"encoding/json"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algojudge/grader/api"
	"github.com/algojudge/grader/internal/problems"
)

func writeFetcher(t *testing.T, calls *atomic.Int64, tests []api.TestCase) problems.FetchFunc {
	t.Helper()
	return func(ctx context.Context, problemID string, path string) error {
		calls.Add(1)
		raw, err := json.Marshal(tests)
		require.NoError(t, err)
		return os.WriteFile(path, raw, 0644)
	}
}

func TestTestsFetchesOnceAndMemoizes(t *testing.T) {
	var calls atomic.Int64
	store, err := problems.NewStore(t.TempDir(), writeFetcher(t, &calls, []api.TestCase{
		{Input: "nums = [2,7,11,15]\ntarget = 9", Expected: "[0,1]", IsExample: true},
		{Input: "nums = [3,3]\ntarget = 6", Expected: "[0,1]"},
	}))
	require.NoError(t, err)

	tests, err := store.Tests(context.Background(), "two-sum")
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.Equal(t, 1, tests[0].ID, "missing IDs are assigned by position")
	assert.Equal(t, 2, tests[1].ID)
	assert.True(t, tests[0].IsExample)

	_, err = store.Tests(context.Background(), "two-sum")
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load(), "second lookup must hit the memo")
}

func TestTestsUsesDiskCache(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int64
	fetch := writeFetcher(t, &calls, []api.TestCase{{ID: 7, Input: "x = 1", Expected: "1"}})

	store, err := problems.NewStore(dir, fetch)
	require.NoError(t, err)
	_, err = store.Tests(context.Background(), "p")
	require.NoError(t, err)

	// A fresh store over the same directory must not re-download.
	store2, err := problems.NewStore(dir, fetch)
	require.NoError(t, err)
	tests, err := store2.Tests(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 7, tests[0].ID)
	assert.Equal(t, int64(1), calls.Load())
}

func TestPrefetchWarmsAllProblems(t *testing.T) {
	var calls atomic.Int64
	store, err := problems.NewStore(t.TempDir(), writeFetcher(t, &calls, []api.TestCase{{Input: "x = 1", Expected: "1"}}))
	require.NoError(t, err)

	require.NoError(t, store.Prefetch(context.Background(), []string{"a", "b", "c"}))
	assert.Equal(t, int64(3), calls.Load())
}

func TestNormalizeProblemID(t *testing.T) {
	assert.Equal(t, "two-sum", problems.NormalizeProblemID("Two Sum"))
	assert.Equal(t, "lru-cache", problems.NormalizeProblemID("lru-cache"))
}
