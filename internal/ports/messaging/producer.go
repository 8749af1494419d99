package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NotificationProducer publishes envelopes to the notification queue via a
// MessageSender.
type NotificationProducer struct {
	sender   MessageSender
	queueURL string
}

func NewProducer(sender MessageSender, queueURL string) *NotificationProducer {
	return &NotificationProducer{
		sender:   sender,
		queueURL: queueURL,
	}
}

// NewSQSProducer wires the producer to AWS SQS.
func NewSQSProducer(client SQSClient, queueURL string) *NotificationProducer {
	return NewProducer(&SQSSender{client: client}, queueURL)
}

func (p *NotificationProducer) PublishRejection(ctx context.Context, event RejectionEvent) error {
	return p.publish(ctx, Envelope{Type: TypeRejection, Rejection: &event}, event.ConsultantID)
}

func (p *NotificationProducer) PublishReminder(ctx context.Context, event ReminderEvent) error {
	return p.publish(ctx, Envelope{Type: TypeReminder, Reminder: &event}, event.ConsultantID)
}

func (p *NotificationProducer) publish(ctx context.Context, env Envelope, consultantID string) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", env.Type, err)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("app.event_type", env.Type),
			attribute.String("app.consultant_id", consultantID),
		)
	}

	if err := p.sender.SendMessage(ctx, p.queueURL, b); err != nil {
		return fmt.Errorf("failed to send %s event: %w", env.Type, err)
	}
	return nil
}
