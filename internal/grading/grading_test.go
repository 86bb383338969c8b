package grading_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/algojudge/grader/api"
	"github.com/algojudge/grader/internal/grading"
	"github.com/algojudge/grader/internal/grading/mocks"
	"github.com/algojudge/grader/internal/sandbox"
)

// fakeSandbox is an HTTP double of the execution service. It cannot run
// Python, so each job's stdout is canned by submission index.
type fakeSandbox struct {
	srv *httptest.Server

	stdouts  []string
	statusID func(i int) int
	onSubmit func()

	submits  atomic.Int64
	programs []string
	stdins   []string
}

func newFakeSandbox(t *testing.T, stdouts ...string) *fakeSandbox {
	t.Helper()
	f := &fakeSandbox{
		stdouts:  stdouts,
		statusID: func(int) int { return sandbox.StatusAccepted },
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSandbox) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		f.submits.Add(1)
		if f.onSubmit != nil {
			f.onSubmit()
		}
		var payload struct {
			Submissions []sandbox.Submission `json:"submissions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var tokens []map[string]string
		for i, s := range payload.Submissions {
			src, _ := base64.StdEncoding.DecodeString(s.SourceCode)
			stdin, _ := base64.StdEncoding.DecodeString(s.Stdin)
			f.programs = append(f.programs, string(src))
			f.stdins = append(f.stdins, string(stdin))
			tokens = append(tokens, map[string]string{"token": fmt.Sprintf("tok-%d", i)})
		}
		json.NewEncoder(w).Encode(tokens)
		return
	}

	tokens := strings.Split(r.URL.Query().Get("tokens"), ",")
	var results []map[string]any
	for _, tok := range tokens {
		i, _ := strconv.Atoi(strings.TrimPrefix(tok, "tok-"))
		stdout := ""
		if i < len(f.stdouts) {
			stdout = f.stdouts[i]
		}
		results = append(results, map[string]any{
			"token":  tok,
			"stdout": base64.StdEncoding.EncodeToString([]byte(stdout)),
			"status": map[string]any{"id": f.statusID(i), "description": "x"},
			"time":   "0.02",
			"memory": 3500.0,
		})
	}
	json.NewEncoder(w).Encode(map[string]any{"submissions": results})
}

func (f *fakeSandbox) client() *sandbox.Client {
	c := sandbox.New(f.srv.URL, "")
	c.Tune(
		func(int) time.Duration { return time.Millisecond },
		func(int) time.Duration { return 5 * time.Second },
	)
	return c
}

type recordingGatherer struct {
	startedTotal int
	reached      []int
	verdicts     []api.Verdict
	resp         *api.GradeResponse
	internalErrs []string
}

func (r *recordingGatherer) StartGrading(gradeUuid string, totalTests int) { r.startedTotal = totalTests }
func (r *recordingGatherer) ReachTest(testID int, input, expected string)  { r.reached = append(r.reached, testID) }
func (r *recordingGatherer) FinishTest(v api.Verdict)                      { r.verdicts = append(r.verdicts, v) }
func (r *recordingGatherer) FinishGrading(resp *api.GradeResponse)         { r.resp = resp }
func (r *recordingGatherer) InternalError(msg string)                      { r.internalErrs = append(r.internalErrs, msg) }

type fakeSink struct {
	published atomic.Int64
}

func (s *fakeSink) Publish(req *api.GradeReq, resp *api.GradeResponse) { s.published.Add(1) }

type inlineTests []api.TestCase

func (s inlineTests) Tests(ctx context.Context, problemID string) ([]api.TestCase, error) {
	return s, nil
}

const twoSumCode = `class Solution:
    def twoSum(self, nums: List[int], target: int) -> List[int]:
        seen = {}
        for i, n in enumerate(nums):
            if target - n in seen:
                return [seen[target - n], i]
            seen[n] = i
`

func TestGradeStandardProblem(t *testing.T) {
	fake := newFakeSandbox(t, "[0,1]\n", "[1,2]\n")
	gath := &recordingGatherer{}
	sink := &fakeSink{}

	g := grading.New(fake.client(), inlineTests(nil)).WithAttemptSink(sink)
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-1",
		LangID:    "python3",
		Code:      twoSumCode,
		ProblemID: "two-sum",
		Tests: []api.TestCase{
			{Input: "nums = [2,7,11,15]\ntarget = 9", Expected: "[0,1]"},
			{Input: "nums = [3,2,4]\ntarget = 6", Expected: "[1,2]"},
		},
	}, gath)

	require.Nil(t, resp.ErrorMessage)
	require.Len(t, resp.Verdicts, 2)
	assert.True(t, resp.Verdicts[0].Passed)
	assert.True(t, resp.Verdicts[1].Passed)
	assert.Equal(t, api.StatusAccepted, resp.Verdicts[0].Status)
	assert.Equal(t, 2, resp.PassedCount)
	assert.InDelta(t, 0.04, resp.TotalTimeSec, 1e-9)
	assert.Equal(t, 3500, resp.PeakMemoryKiB)

	// One job per test, index-addressed via stdin, same program for all.
	require.Equal(t, []string{"0", "1"}, fake.stdins)
	assert.Equal(t, fake.programs[0], fake.programs[1])
	assert.Contains(t, fake.programs[0], "Solution().twoSum")
	assert.Contains(t, fake.programs[0], "_TESTS")

	assert.Equal(t, 2, gath.startedTotal)
	assert.Equal(t, []int{1, 2}, gath.reached)
	require.NotNil(t, gath.resp)
	assert.Equal(t, int64(1), sink.published.Load())
}

func TestGradeWrongAnswer(t *testing.T) {
	fake := newFakeSandbox(t, "[1,0]\n")
	gath := &recordingGatherer{}

	g := grading.New(fake.client(), inlineTests(nil))
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-2",
		LangID:    "python3",
		Code:      twoSumCode,
		ProblemID: "two-sum",
		Tests: []api.TestCase{
			{Input: "nums = [2,7,11,15]\ntarget = 9", Expected: "[0,1]"},
		},
	}, gath)

	require.Len(t, resp.Verdicts, 1)
	assert.False(t, resp.Verdicts[0].Passed)
	assert.Equal(t, api.StatusWrongAnswer, resp.Verdicts[0].Status)
	assert.Equal(t, "[1,0]", resp.Verdicts[0].Actual)
	assert.Equal(t, 0, resp.PassedCount)
}

func TestGradeLinkedListProblem(t *testing.T) {
	fake := newFakeSandbox(t, "[5,4,3,2,1]\n")
	gath := &recordingGatherer{}

	code := `class Solution:
    def reverseList(self, head: Optional[ListNode]) -> Optional[ListNode]:
        prev = None
        while head:
            head.next, prev, head = prev, head, head.next
        return prev
`
	g := grading.New(fake.client(), inlineTests(nil))
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-3",
		LangID:    "python3",
		Code:      code,
		ProblemID: "reverse-linked-list",
		Tests: []api.TestCase{
			{Input: "head = [1,2,3,4,5]", Expected: "[5,4,3,2,1]"},
		},
	}, gath)

	require.Nil(t, resp.ErrorMessage)
	require.Len(t, resp.Verdicts, 1)
	assert.True(t, resp.Verdicts[0].Passed)

	assert.Contains(t, fake.programs[0], "list_to_linkedlist")
	assert.Contains(t, fake.programs[0], "linkedlist_to_list")
	assert.Contains(t, fake.programs[0], "class ListNode")
}

func TestGradeClassBasedProblem(t *testing.T) {
	fake := newFakeSandbox(t, "[null,null,null,-3,null,0,-2]\n")
	gath := &recordingGatherer{}

	code := `class MinStack:
    def __init__(self):
        self.stack = []

    def push(self, val: int) -> None:
        m = min(val, self.stack[-1][1]) if self.stack else val
        self.stack.append((val, m))

    def pop(self) -> None:
        self.stack.pop()

    def top(self) -> int:
        return self.stack[-1][0]

    def getMin(self) -> int:
        return self.stack[-1][1]
`
	ops := map[string]any{
		"operations": []any{"MinStack", "push", "push", "push", "getMin", "pop", "top", "getMin"},
		"arguments":  []any{[]any{}, []any{-2.0}, []any{0.0}, []any{-3.0}, []any{}, []any{}, []any{}, []any{}},
	}
	g := grading.New(fake.client(), inlineTests(nil))
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-4",
		LangID:    "python3",
		Code:      code,
		ProblemID: "min-stack",
		Tests: []api.TestCase{
			{Params: ops, Expected: "[null,null,null,-3,null,0,-2]"},
		},
	}, gath)

	require.Nil(t, resp.ErrorMessage)
	require.Len(t, resp.Verdicts, 1)
	assert.True(t, resp.Verdicts[0].Passed)
	assert.Contains(t, fake.programs[0], `_obj = globals()[_ops[0]](*_args[0])`)
}

func TestGradeNoCallableSkipsSandbox(t *testing.T) {
	fake := newFakeSandbox(t)
	gath := &recordingGatherer{}

	g := grading.New(fake.client(), inlineTests(nil))
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-5",
		LangID:    "python3",
		Code:      "x = 1\n",
		ProblemID: "two-sum",
		Tests: []api.TestCase{
			{Input: "nums = [2,7,11,15]\ntarget = 9", Expected: "[0,1]"},
			{Input: "nums = [3,3]\ntarget = 6", Expected: "[0,1]"},
		},
	}, gath)

	require.Nil(t, resp.ErrorMessage)
	require.Len(t, resp.Verdicts, 2)
	for _, v := range resp.Verdicts {
		assert.False(t, v.Passed)
		assert.Equal(t, api.StatusRuntimeError, v.Status)
		assert.NotEmpty(t, v.Stderr)
	}
	assert.Equal(t, int64(0), fake.submits.Load(), "analysis failures must not reach the sandbox")
}

func TestGradeSmartCompare(t *testing.T) {
	// Out-of-order permutations are accepted for unordered problems.
	fake := newFakeSandbox(t, "[[2,1],[1,2]]\n")
	gath := &recordingGatherer{}

	code := `class Solution:
    def permute(self, nums: List[int]) -> List[List[int]]:
        return []
`
	g := grading.New(fake.client(), inlineTests(nil))
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-6",
		LangID:    "python3",
		Code:      code,
		ProblemID: "permutations",
		Tests: []api.TestCase{
			{Input: "nums = [1,2]", Expected: "[[1,2],[2,1]]"},
		},
	}, gath)

	require.Len(t, resp.Verdicts, 1)
	assert.True(t, resp.Verdicts[0].Passed)
}

func TestGradeTimeLimitHint(t *testing.T) {
	fake := newFakeSandbox(t, "")
	fake.statusID = func(int) int { return sandbox.StatusTimeLimitExceeded }
	gath := &recordingGatherer{}

	g := grading.New(fake.client(), inlineTests(nil))
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-7",
		LangID:    "python3",
		Code:      twoSumCode,
		ProblemID: "two-sum",
		Tests: []api.TestCase{
			{Input: "nums = [2,7,11,15]\ntarget = 9", Expected: "[0,1]"},
		},
	}, gath)

	require.Len(t, resp.Verdicts, 1)
	assert.Equal(t, api.StatusTimeLimit, resp.Verdicts[0].Status)
	assert.NotEmpty(t, resp.Verdicts[0].Hint)
}

func TestGradeRuntimeErrorWithNoOutputCarriesHint(t *testing.T) {
	fake := newFakeSandbox(t, "")
	fake.statusID = func(int) int { return 11 } // NZEC
	gath := &recordingGatherer{}

	g := grading.New(fake.client(), inlineTests(nil))
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-10",
		LangID:    "python3",
		Code:      twoSumCode,
		ProblemID: "two-sum",
		Tests: []api.TestCase{
			{Input: "nums = [2,7,11,15]\ntarget = 9", Expected: "[0,1]"},
		},
	}, gath)

	require.Len(t, resp.Verdicts, 1)
	assert.Equal(t, api.StatusRuntimeError, resp.Verdicts[0].Status)
	assert.NotEmpty(t, resp.Verdicts[0].Hint, "silent failures should hint at return vs print")
}

func TestGradeReachesEveryTestBeforeExecution(t *testing.T) {
	gath := &recordingGatherer{}
	fake := newFakeSandbox(t, "[0,1]\n", "[0,1]\n")
	reachedAtSubmit := -1
	fake.onSubmit = func() { reachedAtSubmit = len(gath.reached) }

	g := grading.New(fake.client(), inlineTests(nil))
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-11",
		LangID:    "python3",
		Code:      twoSumCode,
		ProblemID: "two-sum",
		Tests: []api.TestCase{
			{Input: "nums = [2,7,11,15]\ntarget = 9", Expected: "[0,1]"},
			{Input: "nums = [3,3]\ntarget = 6", Expected: "[0,1]"},
		},
	}, gath)

	require.Nil(t, resp.ErrorMessage)
	assert.Equal(t, 2, reachedAtSubmit, "every test is reached before the batch runs")
}

func TestGradeUnknownLanguageIsPipelineError(t *testing.T) {
	fake := newFakeSandbox(t)

	ctrl := gomock.NewController(t)
	gath := mocks.NewMockGatherer(ctrl)
	gath.EXPECT().InternalError(gomock.Any())

	g := grading.New(fake.client(), inlineTests(nil))
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid: "g-8",
		LangID:    "cobol",
		Code:      twoSumCode,
		Tests:     []api.TestCase{{Input: "nums = [1]\ntarget = 1", Expected: "[0]"}},
	}, gath)

	require.NotNil(t, resp.ErrorMessage)
	assert.Empty(t, resp.Verdicts)
	assert.Equal(t, int64(0), fake.submits.Load())
}

func TestGradeExamplesOnlyFromStore(t *testing.T) {
	fake := newFakeSandbox(t, "[0,1]\n")
	gath := &recordingGatherer{}

	store := inlineTests{
		{ID: 1, Input: "nums = [2,7,11,15]\ntarget = 9", Expected: "[0,1]", IsExample: true},
		{ID: 2, Input: "nums = [3,3]\ntarget = 6", Expected: "[0,1]"},
	}
	g := grading.New(fake.client(), store)
	resp := g.Grade(context.Background(), &api.GradeReq{
		GradeUuid:    "g-9",
		LangID:       "python3",
		Code:         twoSumCode,
		ProblemID:    "two-sum",
		ExamplesOnly: true,
	}, gath)

	require.Nil(t, resp.ErrorMessage)
	require.Len(t, resp.Verdicts, 1, "only the example test is graded in run mode")
	assert.Equal(t, 1, resp.Verdicts[0].TestID)
}
