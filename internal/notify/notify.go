// Package notify delivers out-of-band messages (OTP codes, need alerts) to a
// recipient identifier. Delivery in this service is logged, not sent.
package notify

import (
	"context"
	"sync"
	"time"

	"sevagan-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Message is a single out-of-band delivery
type Message struct {
	Recipient string
	Channel   string
	Subject   string
	Body      string
}

// Channel delivers messages to recipients
type Channel interface {
	Deliver(ctx context.Context, msg Message) error
}

// NewMessage builds a message, classifying the recipient's channel kind
func NewMessage(recipient, subject, body string) Message {
	return Message{
		Recipient: recipient,
		Channel:   models.ChannelFor(recipient),
		Subject:   subject,
		Body:      body,
	}
}

// LogChannel writes every delivery to the application log
type LogChannel struct{}

// NewLogChannel creates a log-backed channel
func NewLogChannel() *LogChannel {
	return &LogChannel{}
}

// Deliver logs the message
func (LogChannel) Deliver(_ context.Context, msg Message) error {
	log.Info().
		Str("recipient", msg.Recipient).
		Str("channel", msg.Channel).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("Delivered message")
	return nil
}

// Recorder keeps delivered messages in memory
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	sent     chan struct{}
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{sent: make(chan struct{}, 64)}
}

// Deliver records the message
func (r *Recorder) Deliver(_ context.Context, msg Message) error {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()

	select {
	case r.sent <- struct{}{}:
	default:
	}
	return nil
}

// Messages returns a copy of everything delivered so far
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// WaitFor blocks until at least n messages were delivered or timeout elapses
func (r *Recorder) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		r.mu.Lock()
		got := len(r.messages)
		r.mu.Unlock()
		if got >= n {
			return true
		}
		select {
		case <-r.sent:
		case <-deadline:
			return false
		}
	}
}
