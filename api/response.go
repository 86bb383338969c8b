package api

// Verdict status texts, one per test case.
const (
	StatusAccepted     = "Accepted"
	StatusWrongAnswer  = "Wrong Answer"
	StatusRuntimeError = "Runtime Error"
	StatusTimeLimit    = "Time Limit Exceeded"
	StatusCompileError = "Compilation Error"
)

// Bounds for echoed input/output text in verdicts and queue messages.
const (
	MaxEchoHeight = 40
	MaxEchoWidth  = 80
)

// Verdict is the graded outcome of a single test case.
type Verdict struct {
	TestID int  `json:"test_id"`
	Passed bool `json:"passed"`

	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`

	Status string `json:"status"`

	TimeSec   float64 `json:"time_sec"`
	MemoryKiB int     `json:"memory_kib"`

	Stderr string `json:"stderr,omitempty"`
	// Advisory only, never affects Passed.
	Hint string `json:"hint,omitempty"`
}

// GradeResponse carries one verdict per requested test case, in
// submission order.
type GradeResponse struct {
	GradeUuid string `json:"grade_uuid"`

	Verdicts []Verdict `json:"verdicts"`

	PassedCount   int     `json:"passed_count"`
	TotalTimeSec  float64 `json:"total_time_sec"`
	PeakMemoryKiB int     `json:"peak_memory_kib"`

	// Set only for pipeline-level failures (analysis or transport); per-case
	// failures live in the verdicts.
	ErrorMessage *string `json:"error_message,omitempty"`
}
