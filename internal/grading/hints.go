package grading

import "strings"

const (
	hintNoOutput = "the program produced no output; make sure the function returns its result instead of printing it"
	hintTimeout  = "execution exceeded the time limit; check for infinite loops and that every loop variable advances"
)

// emptyOutputHint returns an advisory hint for a failed test whose program
// produced no output at all, or empty when nothing useful can be said.
func emptyOutputHint(stdout, stderr string) string {
	if strings.TrimSpace(stdout) == "" && strings.TrimSpace(stderr) == "" {
		return hintNoOutput
	}
	return ""
}
