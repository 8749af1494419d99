package messaging

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"timesheet.service/pkg/telemetry"
)

// SQSSender implements MessageSender for AWS SQS. The active trace context
// rides along in message attributes so the notify worker's spans link back
// to the rejection that produced them.
type SQSSender struct {
	client SQSClient
}

func (s *SQSSender) SendMessage(ctx context.Context, destination string, body []byte) error {
	_, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(destination),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: telemetry.InjectTraceContext(ctx),
	})
	return err
}
