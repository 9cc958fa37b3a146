package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/authgate/apiserver/internal/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus captures published messages and replays queued ones to a single
// subscriber.

type fakeBus struct {
	mu         sync.Mutex
	published  []mq.Message
	publishErr error
	queued     []mq.Message
}

func (b *fakeBus) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return "", b.publishErr
	}
	msg := mq.Message{ID: "msg-1", Data: data, Attributes: attrs}
	b.published = append(b.published, msg)
	return msg.ID, nil
}

func (b *fakeBus) Subscribe(ctx context.Context, channel string, handler mq.Handler) error {
	for _, msg := range b.queued {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *fakeBus) Close() error { return nil }

type recordingNotifier struct {
	mu      sync.Mutex
	jobs    []ResetMailJob
	sendErr error
}

func (n *recordingNotifier) SendPasswordReset(ctx context.Context, email, resetToken, firstName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil {
		return n.sendErr
	}
	n.jobs = append(n.jobs, ResetMailJob{Email: email, ResetToken: resetToken, FirstName: firstName})
	return nil
}

func TestQueueNotifierPublishesJob(t *testing.T) {
	bus := &fakeBus{}
	notifier := NewQueueNotifier(bus, "password-reset-mail")

	err := notifier.SendPasswordReset(context.Background(), "a@x.com", "reset-token", "Alice")
	require.NoError(t, err)

	require.Len(t, bus.published, 1)
	assert.Equal(t, "password-reset", bus.published[0].Attributes["kind"])

	var job ResetMailJob
	require.NoError(t, json.Unmarshal(bus.published[0].Data, &job))
	assert.Equal(t, ResetMailJob{Email: "a@x.com", ResetToken: "reset-token", FirstName: "Alice"}, job)
}

func TestQueueNotifierPublishFailure(t *testing.T) {
	bus := &fakeBus{publishErr: errors.New("broker down")}
	notifier := NewQueueNotifier(bus, "password-reset-mail")

	err := notifier.SendPasswordReset(context.Background(), "a@x.com", "reset-token", "Alice")
	assert.Error(t, err)
}

func TestRunMailerDeliversJobs(t *testing.T) {
	payload, err := json.Marshal(ResetMailJob{Email: "a@x.com", ResetToken: "reset-token", FirstName: "Alice"})
	require.NoError(t, err)

	bus := &fakeBus{queued: []mq.Message{{ID: "msg-1", Data: payload}}}
	delegate := &recordingNotifier{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, RunMailer(context.Background(), bus, "password-reset-mail", delegate, log))
	require.Len(t, delegate.jobs, 1)
	assert.Equal(t, "a@x.com", delegate.jobs[0].Email)
}

func TestRunMailerAcksMalformedJob(t *testing.T) {
	bus := &fakeBus{queued: []mq.Message{
		{ID: "msg-1", Data: []byte("not-json")},
		{ID: "msg-2", Data: mustMarshal(t, ResetMailJob{Email: "a@x.com", ResetToken: "reset-token", FirstName: "Alice"})},
	}}
	delegate := &recordingNotifier{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	// The malformed job is acked; the next one still gets delivered.
	require.NoError(t, RunMailer(context.Background(), bus, "password-reset-mail", delegate, log))
	require.Len(t, delegate.jobs, 1)
}

func TestRunMailerPropagatesDeliveryFailure(t *testing.T) {
	bus := &fakeBus{queued: []mq.Message{
		{ID: "msg-1", Data: mustMarshal(t, ResetMailJob{Email: "a@x.com", ResetToken: "reset-token", FirstName: "Alice"})},
	}}
	delegate := &recordingNotifier{sendErr: errors.New("smtp refused")}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := RunMailer(context.Background(), bus, "password-reset-mail", delegate, log)
	assert.Error(t, err)
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return payload
}
