// Package termgath prints grading progress to the terminal, for the grade
// subcommand and local debugging.
package termgath

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/algojudge/grader/api"
	"github.com/algojudge/grader/internal/grading"
)

type TerminalGatherer struct {
	StartedAt time.Time
}

var _ grading.Gatherer = (*TerminalGatherer)(nil)

func New() *TerminalGatherer { return &TerminalGatherer{StartedAt: time.Now()} }

func (t *TerminalGatherer) StartGrading(gradeUuid string, totalTests int) {
	fmt.Printf("== Grading %s: %d test(s) ==\n", gradeUuid, totalTests)
}

func (t *TerminalGatherer) ReachTest(testID int, input string, expected string) {
	fmt.Printf("-> Test %d\n", testID)
}

func (t *TerminalGatherer) FinishTest(v api.Verdict) {
	label := color.RedString(v.Status)
	if v.Passed {
		label = color.GreenString(v.Status)
	}
	fmt.Printf("<- Test %d: %s (%.3fs, %d KiB)\n", v.TestID, label, v.TimeSec, v.MemoryKiB)
	if v.Hint != "" {
		fmt.Printf("   hint: %s\n", color.YellowString(v.Hint))
	}
	if !v.Passed && v.Actual != "" {
		fmt.Printf("   expected: %s\n", v.Expected)
		fmt.Printf("   actual:   %s\n", v.Actual)
	}
	if v.Stderr != "" {
		fmt.Printf("   stderr:\n%s\n", v.Stderr)
	}
}

func (t *TerminalGatherer) FinishGrading(resp *api.GradeResponse) {
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	fmt.Printf("== Finished in %s: %d/%d passed ==\n", dur, resp.PassedCount, len(resp.Verdicts))
}

func (t *TerminalGatherer) InternalError(msg string) {
	fmt.Printf("== Internal error: %s ==\n", color.RedString(msg))
}
