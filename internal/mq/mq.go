// Package mq provides a broker-agnostic message bus used to hand
// password-reset mail jobs to an out-of-process mailer.
package mq

import (
	"context"
	"fmt"

	"github.com/authgate/apiserver/config"
)

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Returning an error nacks the delivery so the
// broker can retry it.
type Handler func(ctx context.Context, msg Message) error

// Bus is the broker-agnostic surface the app depends on.
type Bus interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// NewBus constructs the configured broker backend.
func NewBus(ctx context.Context, cfg config.Config) (Bus, error) {
	switch cfg.Queue.Backend {
	case config.QueueRabbitMQ:
		return NewRabbitMQBus(cfg.RabbitMQ)
	case config.QueuePubSub:
		return NewPubSubBus(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
	}
}
