package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/algojudge/grader/api"
	"github.com/algojudge/grader/internal/compare"
	"github.com/algojudge/grader/internal/harness"
	"github.com/algojudge/grader/internal/sandbox"
	"github.com/algojudge/grader/internal/sigparse"
	"github.com/algojudge/grader/internal/strategy"
	"github.com/algojudge/grader/internal/testcase"
)

const (
	defaultCPUTimeLimit  = 10.0
	defaultMemoryLimitKB = 256 * 1024
)

// TestSource resolves a problem id to its ordered test cases.
type TestSource interface {
	Tests(ctx context.Context, problemID string) ([]api.TestCase, error)
}

// AttemptSink records graded attempts. Best effort; never fails a run.
type AttemptSink interface {
	Publish(req *api.GradeReq, resp *api.GradeResponse)
}

type Grader struct {
	sandbox  *sandbox.Client
	tests    TestSource
	attempts AttemptSink
	log      *slog.Logger
}

func New(sb *sandbox.Client, tests TestSource) *Grader {
	return &Grader{
		sandbox: sb,
		tests:   tests,
		log:     slog.Default().With("component", "grading"),
	}
}

// WithAttemptSink attaches an optional attempt recorder.
func (g *Grader) WithAttemptSink(sink AttemptSink) *Grader {
	g.attempts = sink
	return g
}

// Grade runs the pipeline for one request and reports progress through the
// gatherer. The returned response always has one verdict per graded test
// unless a pipeline-level failure occurred, in which case ErrorMessage is
// set and the verdict list is empty.
func (g *Grader) Grade(ctx context.Context, req *api.GradeReq, gath Gatherer) *api.GradeResponse {
	resp := &api.GradeResponse{GradeUuid: req.GradeUuid}

	lang, err := harness.LookupLanguage(req.LangID)
	if err != nil {
		return g.pipelineError(gath, resp, err)
	}

	tests, err := g.resolveTests(ctx, req)
	if err != nil {
		return g.pipelineError(gath, resp, err)
	}
	if len(tests) == 0 {
		return g.pipelineError(gath, resp, fmt.Errorf("no test cases for problem %q", req.ProblemID))
	}

	gath.StartGrading(req.GradeUuid, len(tests))

	// Analysis stage. Failures here are the submitter's to fix, so they
	// become uniform per-test verdicts and the sandbox is never contacted.
	sig, sigErr := sigparse.Parse(req.Code)

	strat := strategy.Classify(strategy.ClassificationInput{
		ProblemID:     req.ProblemID,
		Signature:     sig,
		Source:        req.Code,
		HasOperations: hasOperations(tests),
	})
	g.log.Debug("classified submission", "grade", req.GradeUuid, "strategy", strat.String())

	if sigErr != nil && strat != strategy.ClassBased && strat != strategy.EncodeDecode && strat != strategy.SerializeDeserialize {
		return g.analysisFailure(gath, resp, tests, "no function definition found in submission")
	}

	cases := buildCases(tests, sig)

	program, err := harness.Generate(strat, sig, req.Code, cases)
	if err != nil {
		if errors.Is(err, harness.ErrStructuralParam) || errors.Is(err, sigparse.ErrNoCallable) {
			return g.analysisFailure(gath, resp, tests, err.Error())
		}
		return g.pipelineError(gath, resp, fmt.Errorf("generate harness: %w", err))
	}

	// The whole batch runs at once, so every test is reached before any
	// result exists.
	for _, tc := range tests {
		gath.ReachTest(tc.ID, tc.Input, tc.Expected)
	}

	results, err := g.execute(ctx, program, lang, len(tests))
	if err != nil {
		return g.pipelineError(gath, resp, fmt.Errorf("execute batch: %w", err))
	}

	smart := strategy.UsesSmartCompare(req.ProblemID)
	for i, tc := range tests {
		v := g.judge(tc, results[i], smart)
		resp.Verdicts = append(resp.Verdicts, v)
		gath.FinishTest(v)
	}

	aggregate(resp)
	gath.FinishGrading(resp)
	if g.attempts != nil {
		g.attempts.Publish(req, resp)
	}
	return resp
}

func (g *Grader) resolveTests(ctx context.Context, req *api.GradeReq) ([]api.TestCase, error) {
	tests := req.Tests
	if len(tests) == 0 {
		if req.ProblemID == "" {
			return nil, fmt.Errorf("request carries neither inline tests nor a problem id")
		}
		stored, err := g.tests.Tests(ctx, req.ProblemID)
		if err != nil {
			return nil, fmt.Errorf("resolve test cases: %w", err)
		}
		tests = stored
	}

	if req.ExamplesOnly {
		var examples []api.TestCase
		for _, tc := range tests {
			if tc.IsExample {
				examples = append(examples, tc)
			}
		}
		tests = examples
	}

	for i := range tests {
		if tests[i].ID == 0 {
			tests[i].ID = i + 1
		}
	}
	return tests, nil
}

func hasOperations(tests []api.TestCase) bool {
	for _, tc := range tests {
		if _, ok := tc.Params["operations"]; ok {
			return true
		}
	}
	return false
}

// buildCases produces the parameter maps the harness embeds. The structured
// form is authoritative; raw input text is normalized against the signature
// otherwise.
func buildCases(tests []api.TestCase, sig *sigparse.Signature) []map[string]any {
	var names []string
	if sig != nil {
		names = sig.Params
	}

	cases := make([]map[string]any, len(tests))
	for i, tc := range tests {
		if tc.Params != nil {
			cases[i] = tc.Params
			continue
		}
		params, diags := testcase.Normalize(tc.Input, names)
		for _, d := range diags {
			slog.Default().Warn("test case normalization", "test", tc.ID, "detail", d)
		}
		cases[i] = params
	}
	return cases
}

func (g *Grader) execute(ctx context.Context, program string, lang harness.Language, n int) ([]sandbox.Result, error) {
	subs := make([]sandbox.Submission, n)
	for i := range subs {
		subs[i] = sandbox.Submission{
			SourceCode:    program,
			LanguageID:    lang.SandboxID,
			Stdin:         strconv.Itoa(i),
			CPUTimeLimit:  defaultCPUTimeLimit,
			MemoryLimitKB: defaultMemoryLimitKB,
		}
	}

	tokens, err := g.sandbox.SubmitBatch(ctx, subs)
	if err != nil {
		return nil, err
	}
	results, err := g.sandbox.WaitForBatch(ctx, tokens)
	if err != nil {
		return nil, err
	}
	if len(results) != n {
		return nil, fmt.Errorf("sandbox returned %d results for %d jobs", len(results), n)
	}
	return results, nil
}

// judge converts one sandbox result into a verdict.
func (g *Grader) judge(tc api.TestCase, res sandbox.Result, smart bool) api.Verdict {
	v := api.Verdict{
		TestID:   tc.ID,
		Input:    tc.Input,
		Expected: expectedDisplay(tc),
	}
	if res.Time != nil {
		if t, err := strconv.ParseFloat(*res.Time, 64); err == nil {
			v.TimeSec = t
		}
	}
	if res.Memory != nil {
		v.MemoryKiB = int(*res.Memory)
	}

	stdout := deref(res.Stdout)
	stderr := deref(res.Stderr)

	switch {
	case res.Status.ID == sandbox.StatusCompilationError:
		v.Status = api.StatusCompileError
		v.Stderr = deref(res.CompileOutput)
	case res.Status.ID == sandbox.StatusTimeLimitExceeded:
		v.Status = api.StatusTimeLimit
		v.Hint = hintTimeout
	case res.Status.RuntimeError():
		v.Status = api.StatusRuntimeError
		v.Stderr = stderr
		v.Hint = emptyOutputHint(stdout, stderr)
	case !res.Status.Terminal():
		// The wait budget elapsed before the job finished.
		v.Status = api.StatusTimeLimit
		v.Hint = hintTimeout
	case res.Status.ID == sandbox.StatusInternalError || res.Status.ID == sandbox.StatusExecFormatError:
		v.Status = api.StatusRuntimeError
		v.Stderr = res.Status.Description
	default:
		actual, parseOK := parseResult(stdout)
		v.Actual = compare.Canonical(actual)

		expected := expectedValue(tc)
		equal := false
		if parseOK {
			if smart {
				equal = compare.Smart(expected, actual)
			} else {
				equal = compare.Exact(expected, actual)
			}
		}

		if equal {
			v.Passed = true
			v.Status = api.StatusAccepted
		} else {
			v.Status = api.StatusWrongAnswer
			v.Stderr = stderr
			v.Hint = emptyOutputHint(stdout, stderr)
		}
	}
	return v
}

// parseResult decodes the last non-empty stdout line, so user prints above
// the harness output do not break judging.
func parseResult(stdout string) (any, bool) {
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var value any
		if err := json.Unmarshal([]byte(line), &value); err == nil {
			return value, true
		}
		return line, true
	}
	return nil, false
}

func expectedValue(tc api.TestCase) any {
	if tc.ExpectedValue != nil {
		return tc.ExpectedValue
	}
	return testcase.DecodeValue(tc.Expected)
}

func expectedDisplay(tc api.TestCase) string {
	if tc.Expected != "" {
		return tc.Expected
	}
	return compare.Canonical(tc.ExpectedValue)
}

func aggregate(resp *api.GradeResponse) {
	for _, v := range resp.Verdicts {
		if v.Passed {
			resp.PassedCount++
		}
		resp.TotalTimeSec += v.TimeSec
		if v.MemoryKiB > resp.PeakMemoryKiB {
			resp.PeakMemoryKiB = v.MemoryKiB
		}
	}
}

// analysisFailure emits one uniform runtime-error verdict per test without
// contacting the sandbox.
func (g *Grader) analysisFailure(gath Gatherer, resp *api.GradeResponse, tests []api.TestCase, msg string) *api.GradeResponse {
	g.log.Info("analysis failure", "grade", resp.GradeUuid, "reason", msg)
	for _, tc := range tests {
		v := api.Verdict{
			TestID:   tc.ID,
			Input:    tc.Input,
			Expected: expectedDisplay(tc),
			Status:   api.StatusRuntimeError,
			Stderr:   msg,
		}
		resp.Verdicts = append(resp.Verdicts, v)
		gath.FinishTest(v)
	}
	gath.FinishGrading(resp)
	return resp
}

func (g *Grader) pipelineError(gath Gatherer, resp *api.GradeResponse, err error) *api.GradeResponse {
	g.log.Error("grading pipeline failed", "grade", resp.GradeUuid, "error", err)
	msg := err.Error()
	resp.ErrorMessage = &msg
	gath.InternalError(msg)
	return resp
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
