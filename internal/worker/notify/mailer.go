package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"timesheet.service/internal/ports/messaging"
)

// Mailer sends the notification emails produced by the queue.
type Mailer interface {
	SendRejection(ctx context.Context, to string, event messaging.RejectionEvent) error
	SendReminder(ctx context.Context, to string, event messaging.ReminderEvent) error
}

// SESMailer implements Mailer on AWS SES.
type SESMailer struct {
	client *ses.Client
	sender string
}

func NewSESMailer(client *ses.Client, sender string) *SESMailer {
	return &SESMailer{client: client, sender: sender}
}

func (m *SESMailer) SendRejection(ctx context.Context, to string, event messaging.RejectionEvent) error {
	project := "no project"
	if event.ProjectID != nil {
		project = "project " + *event.ProjectID
	}
	body := fmt.Sprintf(
		"Hello,\n\nYour time entry for %s (client %s, %s) was rejected.\n\nReviewer notes: %s\n\nPlease revise and resubmit the day.",
		event.EntryDate, event.ClientID, project, event.RejectionNotes,
	)
	return m.send(ctx, to, "Time entry rejected", body, event.ConsultantID)
}

func (m *SESMailer) SendReminder(ctx context.Context, to string, event messaging.ReminderEvent) error {
	body := fmt.Sprintf(
		"Hello,\n\nYou still have %d unsubmitted time entries for the week ending %s. The week locks at Sunday midnight.\n\nPlease submit your days before the cutoff.",
		event.PendingEntries, event.WeekEnding,
	)
	return m.send(ctx, to, "Timesheet submission reminder", body, event.ConsultantID)
}

func (m *SESMailer) send(ctx context.Context, to, subject, body, consultantID string) error {
	tracer := otel.Tracer("ses-mailer")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(attribute.String("app.consultant_id", consultantID))

	input := &ses.SendEmailInput{
		Source: aws.String(m.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	_, err := m.client.SendEmail(ctx, input)
	return err
}
