package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"timesheet.service/internal/ports/messaging"
)

// Processor handles envelopes from the notification queue and turns them
// into emails. Delivery is at-least-once; the queue retries a failed send
// with exponential backoff.
type Processor struct {
	mailer      Mailer
	emailDomain string
}

// NewProcessor sets up a processor. emailDomain maps a consultant id to a
// mailbox: {consultantId}@{emailDomain}.
func NewProcessor(mailer Mailer, emailDomain string) *Processor {
	return &Processor{
		mailer:      mailer,
		emailDomain: emailDomain,
	}
}

// Process is the entry point for one queue message. It tells the worker to
// retry when the mailer fails and drops malformed messages.
func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var env messaging.Envelope
	if err := json.Unmarshal([]byte(*msg.Body), &env); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal notification envelope")
		return false, 0, err // Do not retry on malformed message
	}

	var err error
	switch {
	case env.Type == messaging.TypeRejection && env.Rejection != nil:
		event := *env.Rejection
		err = p.mailer.SendRejection(ctx, p.address(event.ConsultantID), event)
	case env.Type == messaging.TypeReminder && env.Reminder != nil:
		event := *env.Reminder
		err = p.mailer.SendReminder(ctx, p.address(event.ConsultantID), event)
	default:
		err = fmt.Errorf("unknown notification type %q", env.Type)
		log.Ctx(ctx).Error().Err(err).Msg("Dropping notification")
		return false, 0, err
	}

	if err != nil {
		delay := calculateBackoff(receiveCount(msg))
		return true, delay, err
	}
	return false, 0, nil
}

func (p *Processor) address(consultantID string) string {
	return consultantID + "@" + p.emailDomain
}

// receiveCount reads how many times SQS has delivered this message.
func receiveCount(msg types.Message) int {
	if v, ok := msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 1
}

// calculateBackoff determines how long to wait before retrying a failed
// send, growing exponentially with each attempt.
func calculateBackoff(attempt int) int32 {
	backoff := int32(math.Pow(2, float64(attempt)) * 10)
	if backoff > 3600 {
		return 3600 // cap at 1 hour
	}
	return backoff
}
