package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"timesheet.service/internal/ports/messaging"
)

type fakeSender struct {
	destination string
	body        []byte
	fail        error
}

func (s *fakeSender) SendMessage(_ context.Context, destination string, body []byte) error {
	if s.fail != nil {
		return s.fail
	}
	s.destination = destination
	s.body = body
	return nil
}

func TestPublishRejection(t *testing.T) {
	sender := &fakeSender{}
	producer := messaging.NewProducer(sender, "https://sqs.test/notifications")

	event := messaging.RejectionEvent{
		EntryID:        42,
		ConsultantID:   "consultant-1",
		ClientID:       "acme",
		EntryDate:      "2026-08-12",
		RejectionNotes: "Missing client code",
		OccurredAt:     time.Date(2026, 8, 13, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, producer.PublishRejection(context.Background(), event))
	require.Equal(t, "https://sqs.test/notifications", sender.destination)

	var env messaging.Envelope
	require.NoError(t, json.Unmarshal(sender.body, &env))
	require.Equal(t, messaging.TypeRejection, env.Type)
	require.Nil(t, env.Reminder)
	require.NotNil(t, env.Rejection)
	require.Equal(t, event, *env.Rejection)
}

func TestPublishReminder(t *testing.T) {
	sender := &fakeSender{}
	producer := messaging.NewProducer(sender, "https://sqs.test/notifications")

	event := messaging.ReminderEvent{
		ConsultantID:   "consultant-1",
		WeekEnding:     "2026-08-16",
		PendingEntries: 3,
		OccurredAt:     time.Date(2026, 8, 16, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, producer.PublishReminder(context.Background(), event))

	var env messaging.Envelope
	require.NoError(t, json.Unmarshal(sender.body, &env))
	require.Equal(t, messaging.TypeReminder, env.Type)
	require.Nil(t, env.Rejection)
	require.Equal(t, event, *env.Reminder)
}

func TestPublishSenderFailureSurfaces(t *testing.T) {
	sender := &fakeSender{fail: errors.New("queue gone")}
	producer := messaging.NewProducer(sender, "https://sqs.test/notifications")

	err := producer.PublishRejection(context.Background(), messaging.RejectionEvent{ConsultantID: "consultant-1"})
	require.Error(t, err)
	require.ErrorContains(t, err, messaging.TypeRejection)
}
