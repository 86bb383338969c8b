package sqsgath

import (
	"github.com/algojudge/grader/api"
)

const (
	msgStartedGrading = "started_grading"
	msgReachTest      = "reach_test"
	msgFinishTest     = "finish_test"
	msgFinishGrading  = "finish_grading"
	msgInternalError  = "internal_error"
)

type message struct {
	GradeUuid string `json:"grade_uuid"`
	Type      string `json:"type"`
	Seq       int64  `json:"seq"`

	TotalTests int          `json:"total_tests,omitempty"`
	TestID     int          `json:"test_id,omitempty"`
	Input      string       `json:"input,omitempty"`
	Expected   string       `json:"expected,omitempty"`
	Verdict    *api.Verdict `json:"verdict,omitempty"`

	Response *api.GradeResponse `json:"response,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func (g *SqsGatherer) StartGrading(gradeUuid string, totalTests int) {
	g.gradeUuid = gradeUuid
	g.send(message{Type: msgStartedGrading, TotalTests: totalTests})
}

func (g *SqsGatherer) ReachTest(testID int, input string, expected string) {
	g.send(message{
		Type:     msgReachTest,
		TestID:   testID,
		Input:    trimStrToRect(input, api.MaxEchoHeight, api.MaxEchoWidth),
		Expected: trimStrToRect(expected, api.MaxEchoHeight, api.MaxEchoWidth),
	})
}

func (g *SqsGatherer) FinishTest(v api.Verdict) {
	bounded := v
	bounded.Input = trimStrToRect(v.Input, api.MaxEchoHeight, api.MaxEchoWidth)
	bounded.Expected = trimStrToRect(v.Expected, api.MaxEchoHeight, api.MaxEchoWidth)
	bounded.Actual = trimStrToRect(v.Actual, api.MaxEchoHeight, api.MaxEchoWidth)
	bounded.Stderr = trimStrToRect(v.Stderr, api.MaxEchoHeight, api.MaxEchoWidth)
	g.send(message{Type: msgFinishTest, TestID: v.TestID, Verdict: &bounded})
}

func (g *SqsGatherer) FinishGrading(resp *api.GradeResponse) {
	bounded := *resp
	bounded.Verdicts = make([]api.Verdict, len(resp.Verdicts))
	for i, v := range resp.Verdicts {
		v.Input = trimStrToRect(v.Input, api.MaxEchoHeight, api.MaxEchoWidth)
		v.Expected = trimStrToRect(v.Expected, api.MaxEchoHeight, api.MaxEchoWidth)
		v.Actual = trimStrToRect(v.Actual, api.MaxEchoHeight, api.MaxEchoWidth)
		v.Stderr = trimStrToRect(v.Stderr, api.MaxEchoHeight, api.MaxEchoWidth)
		bounded.Verdicts[i] = v
	}
	g.send(message{Type: msgFinishGrading, Response: &bounded})
}

func (g *SqsGatherer) InternalError(msg string) {
	g.send(message{Type: msgInternalError, Error: msg})
}
