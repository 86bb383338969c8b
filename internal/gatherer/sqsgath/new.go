// Package sqsgath delivers grading progress and verdicts to an SQS response
// queue, one message per event. Consumers correlate by grade uuid and order
// by the per-gatherer sequence number.
package sqsgath

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/algojudge/grader/internal/grading"
)

// sqsSender is the slice of the SQS API the gatherer uses.
type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SqsGatherer struct {
	client   sqsSender
	queueURL string

	gradeUuid string
	seq       int64
}

var _ grading.Gatherer = (*SqsGatherer)(nil)

func New(client *sqs.Client, queueURL string) *SqsGatherer {
	return &SqsGatherer{client: client, queueURL: queueURL}
}
