package sandbox

// Submission is one execution job crossing the transport boundary. Source,
// stdin and expected output are opaque-encoded (base64) on the wire so that
// arbitrary program output cannot corrupt the batch envelope.
type Submission struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin,omitempty"`
	ExpectedOutput string `json:"expected_output,omitempty"`

	CPUTimeLimit  float64 `json:"cpu_time_limit,omitempty"`
	MemoryLimitKB int     `json:"memory_limit,omitempty"`
}

// Status ids reported by the execution service.
const (
	StatusInQueue           = 1
	StatusProcessing        = 2
	StatusAccepted          = 3
	StatusWrongAnswer       = 4
	StatusTimeLimitExceeded = 5
	StatusCompilationError  = 6
	StatusInternalError     = 13
	StatusExecFormatError   = 14
	// 7 through 12 are runtime error variants (SIGSEGV, SIGXFSZ, ...).
)

type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Terminal reports whether the job has left the queue/processing states.
func (s Status) Terminal() bool {
	return s.ID >= StatusAccepted
}

// RuntimeError reports whether the status is one of the runtime error
// variants.
func (s Status) RuntimeError() bool {
	return s.ID >= 7 && s.ID <= 12
}

// Result is the decoded outcome of one job, retrieved by token.
type Result struct {
	Token string `json:"token"`

	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`

	Status Status `json:"status"`

	// Seconds, as reported by the service.
	Time   *string  `json:"time"`
	Memory *float64 `json:"memory"`
}
