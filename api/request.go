package api

// GradeReq is the caller-facing grading request. Test cases either come
// inline or are resolved against the upstream test-case store by problem id.
type GradeReq struct {
	GradeUuid string `json:"grade_uuid"`

	LangID    string `json:"lang_id"`
	Code      string `json:"code"`
	ProblemID string `json:"problem_id"`

	// Inline alternative to ProblemID. When both are set, inline wins.
	Tests []TestCase `json:"tests,omitempty"`

	// Grade only the example-flagged test cases ("run" mode).
	ExamplesOnly bool `json:"examples_only,omitempty"`

	// Queue to deliver per-test verdict messages to, if any.
	ResQueueUrl string `json:"res_queue_url,omitempty"`
}

// TestCase is a single test case as stored upstream or supplied inline.
// When both the raw text and the structured form are present, the
// structured form is authoritative.
type TestCase struct {
	ID int `json:"id"`

	Input  string         `json:"input"`
	Params map[string]any `json:"params,omitempty"`

	Expected      string `json:"expected"`
	ExpectedValue any    `json:"expected_value,omitempty"`

	IsExample bool `json:"is_example,omitempty"`
}
