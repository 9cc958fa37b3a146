// Package notify delivers password-reset tokens to account holders. The
// orchestrator hands over three fields (email, token, first name) and the
// selected backend owns formatting and transport.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/authgate/apiserver/config"
	"github.com/authgate/apiserver/internal/mq"
)

// Notifier sends a password-reset message to the given address.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, resetToken, firstName string) error
}

// New constructs the configured notifier backend. The returned closer
// releases any broker connection; it is a no-op for in-process backends.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (Notifier, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Notifier.Backend {
	case config.NotifierLog:
		return NewLogNotifier(log), noop, nil
	case config.NotifierMailtrap:
		return NewMailtrapNotifier(cfg.Mailtrap), noop, nil
	case config.NotifierQueue:
		bus, err := mq.NewBus(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect queue notifier: %w", err)
		}
		return NewQueueNotifier(bus, cfg.Queue.Channel), bus.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier backend %q", cfg.Notifier.Backend)
	}
}

// LogNotifier writes the reset mail to the log instead of sending it.
// Useful for development and tests; the plaintext token still leaves the
// process only through the log sink.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, resetToken, firstName string) error {
	n.log.InfoContext(ctx, "password reset email (simulated)",
		"to", email,
		"first_name", firstName,
		"reset_token", resetToken,
	)
	return nil
}
