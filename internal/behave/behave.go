// Package behave loads grading scenario suites from TOML files. A scenario
// pairs a grading request with the verdicts it must produce, so whole
// pipeline behaviours can be described as data.
package behave

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/algojudge/grader/api"
)

// SpecTest is a single test case in the scenario file.
type SpecTest struct {
	Input     string `toml:"input"`
	Expected  string `toml:"expected"`
	IsExample bool   `toml:"is_example"`
}

// SpecRequest is the request block inside a scenario entry.
type SpecRequest struct {
	LangID       string     `toml:"lang_id"`
	ProblemID    string     `toml:"problem_id"`
	Code         string     `toml:"code"`
	Tests        []SpecTest `toml:"tests"`
	ExamplesOnly bool       `toml:"examples_only"`
}

// SpecVerdict is one expected per-test verdict.
type SpecVerdict struct {
	Status string `toml:"status"`
	Passed bool   `toml:"passed"`
}

// SpecExpect describes the expected outcome of a scenario.
type SpecExpect struct {
	PassedCount int           `toml:"passed_count"`
	Error       bool          `toml:"error"`
	Verdicts    []SpecVerdict `toml:"verdicts"`
}

// The request is written as an array-of-tables; the first element is used.
type specSuite struct {
	Description string        `toml:"description"`
	RequestAOT  []SpecRequest `toml:"request"`
	Expect      SpecExpect    `toml:"expect"`
}

type specRoot struct {
	Suites []specSuite `toml:"scenarios"`
}

// Case is a runnable scenario converted from TOML.
type Case struct {
	Name    string
	Request api.GradeReq
	Expect  SpecExpect
}

// Parse reads a scenario TOML file into runnable cases. Each case gets a
// fresh grade uuid.
func Parse(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse scenario TOML: %w", err)
	}

	cases := make([]Case, 0, len(root.Suites))
	for i, suite := range root.Suites {
		if len(suite.RequestAOT) == 0 {
			return nil, fmt.Errorf("scenario %d is missing its request block", i)
		}
		spec := suite.RequestAOT[0]

		req := api.GradeReq{
			GradeUuid:    uuid.New().String(),
			LangID:       spec.LangID,
			Code:         spec.Code,
			ProblemID:    spec.ProblemID,
			ExamplesOnly: spec.ExamplesOnly,
		}
		for j, tc := range spec.Tests {
			req.Tests = append(req.Tests, api.TestCase{
				ID:        j + 1,
				Input:     tc.Input,
				Expected:  tc.Expected,
				IsExample: tc.IsExample,
			})
		}

		name := suite.Description
		if name == "" {
			name = fmt.Sprintf("scenario %d", i)
		}
		cases = append(cases, Case{Name: name, Request: req, Expect: suite.Expect})
	}
	return cases, nil
}

// Check compares a grading response against the scenario's expectations and
// returns a list of human-readable mismatches.
func Check(c Case, resp *api.GradeResponse) []string {
	var problems []string

	if c.Expect.Error {
		if resp.ErrorMessage == nil {
			problems = append(problems, "expected a pipeline error, got none")
		}
		return problems
	}
	if resp.ErrorMessage != nil {
		problems = append(problems, fmt.Sprintf("unexpected pipeline error: %s", *resp.ErrorMessage))
		return problems
	}

	if resp.PassedCount != c.Expect.PassedCount {
		problems = append(problems, fmt.Sprintf("passed count: want %d, got %d", c.Expect.PassedCount, resp.PassedCount))
	}
	if len(c.Expect.Verdicts) > 0 && len(c.Expect.Verdicts) != len(resp.Verdicts) {
		problems = append(problems, fmt.Sprintf("verdict count: want %d, got %d", len(c.Expect.Verdicts), len(resp.Verdicts)))
		return problems
	}
	for i, want := range c.Expect.Verdicts {
		got := resp.Verdicts[i]
		if want.Status != "" && want.Status != got.Status {
			problems = append(problems, fmt.Sprintf("test %d status: want %q, got %q", got.TestID, want.Status, got.Status))
		}
		if want.Passed != got.Passed {
			problems = append(problems, fmt.Sprintf("test %d passed: want %v, got %v", got.TestID, want.Passed, got.Passed))
		}
	}
	return problems
}
