package sqsgath

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const sendTimeout = 10 * time.Second

// send marshals and delivers one message. Delivery failures are logged and
// dropped; progress reporting must not fail a grading run.
func (g *SqsGatherer) send(m message) {
	m.GradeUuid = g.gradeUuid
	g.seq++
	m.Seq = g.seq

	raw, err := json.Marshal(m)
	if err != nil {
		slog.Error("marshal gatherer message", "error", err, "type", m.Type)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	_, err = g.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(g.queueURL),
		MessageBody: aws.String(string(raw)),
	})
	if err != nil {
		slog.Error("send gatherer message", "error", err, "type", m.Type, "grade", g.gradeUuid)
	}
}
