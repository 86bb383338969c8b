// Package attempts publishes a record of every graded attempt to NATS for
// downstream consumers (analytics, attempt history). Publishing is best
// effort: a broker outage must never fail a grading run.
package attempts

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/algojudge/grader/api"
)

const subject = "grader.attempts"

type Record struct {
	AttemptUuid string    `json:"attempt_uuid"`
	GradeUuid   string    `json:"grade_uuid"`
	ProblemID   string    `json:"problem_id"`
	LangID      string    `json:"lang_id"`
	PassedCount int       `json:"passed_count"`
	TotalCount  int       `json:"total_count"`
	Statuses    []string  `json:"statuses"`
	GradedAt    time.Time `json:"graded_at"`
}

type Publisher struct {
	conn *nats.Conn
	log  *slog.Logger
}

// NewPublisher connects to NATS. A nil return with an error is expected
// when the broker is unreachable; callers treat the publisher as optional.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		conn: conn,
		log:  slog.Default().With("component", "attempts"),
	}, nil
}

// Publish records one graded attempt. Never returns an error; failures are
// logged and dropped.
func (p *Publisher) Publish(req *api.GradeReq, resp *api.GradeResponse) {
	if p == nil || p.conn == nil {
		return
	}

	rec := Record{
		AttemptUuid: uuid.New().String(),
		GradeUuid:   req.GradeUuid,
		ProblemID:   req.ProblemID,
		LangID:      req.LangID,
		PassedCount: resp.PassedCount,
		TotalCount:  len(resp.Verdicts),
		GradedAt:    time.Now().UTC(),
	}
	for _, v := range resp.Verdicts {
		rec.Statuses = append(rec.Statuses, v.Status)
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		p.log.Error("marshal attempt record", "error", err)
		return
	}
	if err := p.conn.Publish(subject, raw); err != nil {
		p.log.Warn("publish attempt record", "error", err, "grade", req.GradeUuid)
	}
}

func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Drain()
	}
}
