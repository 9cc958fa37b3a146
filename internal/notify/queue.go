package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/authgate/apiserver/internal/mq"
)

// ResetMailJob is the payload the queue notifier publishes and the mailer
// worker consumes.
type ResetMailJob struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
	FirstName  string `json:"first_name"`
}

// QueueNotifier publishes reset mail jobs to a message bus; an out-of-process
// mailer (see RunMailer) performs the actual delivery.
type QueueNotifier struct {
	bus     mq.Bus
	channel string
}

func NewQueueNotifier(bus mq.Bus, channel string) *QueueNotifier {
	return &QueueNotifier{bus: bus, channel: channel}
}

func (n *QueueNotifier) SendPasswordReset(ctx context.Context, email, resetToken, firstName string) error {
	payload, err := json.Marshal(ResetMailJob{
		Email:      email,
		ResetToken: resetToken,
		FirstName:  firstName,
	})
	if err != nil {
		return fmt.Errorf("marshal reset mail job: %w", err)
	}
	if _, err := n.bus.Publish(ctx, n.channel, payload, map[string]string{"kind": "password-reset"}); err != nil {
		return fmt.Errorf("publish reset mail job: %w", err)
	}
	return nil
}

// RunMailer consumes reset mail jobs from the bus and delivers each through
// the delegate notifier. It blocks until ctx is canceled. Malformed jobs are
// acked and logged rather than redelivered forever.
func RunMailer(ctx context.Context, bus mq.Bus, channel string, delegate Notifier, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	return bus.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
		var job ResetMailJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			log.ErrorContext(ctx, "discarding malformed reset mail job", "message_id", msg.ID, "error", err)
			return nil
		}
		if err := delegate.SendPasswordReset(ctx, job.Email, job.ResetToken, job.FirstName); err != nil {
			log.ErrorContext(ctx, "reset mail delivery failed", "message_id", msg.ID, "error", err)
			return err
		}
		return nil
	})
}
