package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/require"
	"timesheet.service/internal/ports/messaging"
)

type fakeMailer struct {
	rejections []string
	reminders  []string
	fail       error
}

func (m *fakeMailer) SendRejection(_ context.Context, to string, _ messaging.RejectionEvent) error {
	if m.fail != nil {
		return m.fail
	}
	m.rejections = append(m.rejections, to)
	return nil
}

func (m *fakeMailer) SendReminder(_ context.Context, to string, _ messaging.ReminderEvent) error {
	if m.fail != nil {
		return m.fail
	}
	m.reminders = append(m.reminders, to)
	return nil
}

func envelopeMessage(t *testing.T, env messaging.Envelope, receiveCount string) types.Message {
	t.Helper()
	body, err := json.Marshal(env)
	require.NoError(t, err)

	msg := types.Message{Body: aws.String(string(body))}
	if receiveCount != "" {
		msg.Attributes = map[string]string{
			string(types.MessageSystemAttributeNameApproximateReceiveCount): receiveCount,
		}
	}
	return msg
}

func TestProcessRejection(t *testing.T) {
	mailer := &fakeMailer{}
	p := NewProcessor(mailer, "example.com")

	env := messaging.Envelope{
		Type:      messaging.TypeRejection,
		Rejection: &messaging.RejectionEvent{EntryID: 7, ConsultantID: "consultant-1", RejectionNotes: "Missing client code"},
	}
	retry, _, err := p.Process(context.Background(), envelopeMessage(t, env, ""))
	require.NoError(t, err)
	require.False(t, retry)
	require.Equal(t, []string{"consultant-1@example.com"}, mailer.rejections)
}

func TestProcessReminder(t *testing.T) {
	mailer := &fakeMailer{}
	p := NewProcessor(mailer, "example.com")

	env := messaging.Envelope{
		Type:     messaging.TypeReminder,
		Reminder: &messaging.ReminderEvent{ConsultantID: "consultant-2", WeekEnding: "2026-08-16", PendingEntries: 3},
	}
	retry, _, err := p.Process(context.Background(), envelopeMessage(t, env, ""))
	require.NoError(t, err)
	require.False(t, retry)
	require.Equal(t, []string{"consultant-2@example.com"}, mailer.reminders)
}

func TestProcessMalformedMessageNotRetried(t *testing.T) {
	p := NewProcessor(&fakeMailer{}, "example.com")

	retry, _, err := p.Process(context.Background(), types.Message{Body: aws.String("not json")})
	require.Error(t, err)
	require.False(t, retry)
}

func TestProcessUnknownTypeNotRetried(t *testing.T) {
	p := NewProcessor(&fakeMailer{}, "example.com")

	env := messaging.Envelope{Type: "SOMETHING_ELSE"}
	retry, _, err := p.Process(context.Background(), envelopeMessage(t, env, ""))
	require.Error(t, err)
	require.False(t, retry)
}

func TestProcessMailerFailureRetriesWithBackoff(t *testing.T) {
	mailer := &fakeMailer{fail: errors.New("ses throttled")}
	p := NewProcessor(mailer, "example.com")

	env := messaging.Envelope{
		Type:      messaging.TypeRejection,
		Rejection: &messaging.RejectionEvent{ConsultantID: "consultant-1"},
	}

	retry, delay, err := p.Process(context.Background(), envelopeMessage(t, env, "1"))
	require.Error(t, err)
	require.True(t, retry)
	require.EqualValues(t, 20, delay)

	retry, delay, err = p.Process(context.Background(), envelopeMessage(t, env, "3"))
	require.Error(t, err)
	require.True(t, retry)
	require.EqualValues(t, 80, delay)
}

func TestCalculateBackoffCapped(t *testing.T) {
	require.EqualValues(t, 20, calculateBackoff(1))
	require.EqualValues(t, 40, calculateBackoff(2))
	require.EqualValues(t, 3600, calculateBackoff(12))
}
