// Package grading runs the whole pipeline for one submission: analyze the
// source, normalize and classify the test cases, generate the harness, run
// the batch in the sandbox and compare results into per-test verdicts.
package grading

import "github.com/algojudge/grader/api"

// Gatherer receives grading progress and results. Implementations deliver
// them to a terminal, a queue, or a test double.
type Gatherer interface {
	StartGrading(gradeUuid string, totalTests int)

	ReachTest(testID int, input string, expected string)
	FinishTest(verdict api.Verdict)

	FinishGrading(resp *api.GradeResponse)
	InternalError(msg string)
}
