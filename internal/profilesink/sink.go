// Package profilesink exports signup profiles submitted alongside an OTP
// request. Sinks are append-only; failures are logged and counted but never
// surface to the OTP caller.
package profilesink

import (
	"context"
	"errors"
	"sync"
	"time"

	"sevagan-backend/internal/metrics"
	"sevagan-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Entry is one exported signup profile
type Entry struct {
	RequestID   string             `json:"requestId"`
	AccountType models.AccountType `json:"accountType"`
	Recipient   string             `json:"recipient"`
	Profile     models.Profile     `json:"profile"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Sink persists profile entries
type Sink interface {
	Name() string
	Append(ctx context.Context, entry Entry) error
}

// Multi appends to every sink, attempting all of them
type Multi []Sink

// Name implements Sink
func (m Multi) Name() string { return "multi" }

// Append implements Sink
func (m Multi) Append(ctx context.Context, entry Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, entry); err != nil {
			metrics.ProfileSinkErrors.WithLabelValues(s.Name()).Inc()
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every entry
type Discard struct{}

// Name implements Sink
func (Discard) Name() string { return "discard" }

// Append implements Sink
func (Discard) Append(context.Context, Entry) error { return nil }

// Async forwards entries to a sink in the background so callers never wait on it
type Async struct {
	sink    Sink
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsync wraps sink. Each append gets its own timeout.
func NewAsync(sink Sink, timeout time.Duration) *Async {
	return &Async{sink: sink, timeout: timeout}
}

// Submit schedules entry for export and returns immediately
func (a *Async) Submit(entry Entry) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.sink.Append(ctx, entry); err != nil {
			log.Warn().
				Err(err).
				Str("sink", a.sink.Name()).
				Str("request_id", entry.RequestID).
				Msg("Failed to export signup profile")
			return
		}
		log.Debug().Str("sink", a.sink.Name()).Str("request_id", entry.RequestID).Msg("Signup profile exported")
	}()
}

// Wait blocks until every submitted entry has been handled
func (a *Async) Wait() {
	a.wg.Wait()
}
