package repository

import (
	"context"
	"sync"
	"time"

	"sevagan-backend/internal/models"
)

// OTPRepository holds pending one-time codes keyed by recipient identifier
type OTPRepository struct {
	mu      sync.Mutex
	records map[string]models.OtpRecord
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository() *OTPRepository {
	return &OTPRepository{records: make(map[string]models.OtpRecord)}
}

// Put files rec under every key, replacing whatever was pending there
func (r *OTPRepository) Put(_ context.Context, rec models.OtpRecord, keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		r.records[k] = rec
	}
}

// Get returns the record pending under key
func (r *OTPRepository) Get(_ context.Context, key string) (models.OtpRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[key]
	if !ok {
		return models.OtpRecord{}, ErrNotFound
	}
	return rec, nil
}

// OTPOutcome tells Verify what to do with the record it examined
type OTPOutcome int

const (
	// OTPKeep leaves the record untouched
	OTPKeep OTPOutcome = iota
	// OTPAttempt counts a failed guess against every record of the request
	OTPAttempt
	// OTPConsume removes every record of the request
	OTPConsume
)

// Verify runs decide against the record pending under key and applies its
// outcome while holding the lock, so concurrent verifies of one code see each
// other's attempts and at most one of them consumes it. The returned record
// carries the attempt count after the outcome was applied.
func (r *OTPRepository) Verify(_ context.Context, key string, decide func(rec models.OtpRecord) (OTPOutcome, error)) (models.OtpRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[key]
	if !ok {
		return models.OtpRecord{}, ErrNotFound
	}

	outcome, err := decide(rec)
	switch outcome {
	case OTPAttempt:
		rec.Attempts++
		r.setAttempts(rec.RequestID, rec.Attempts)
	case OTPConsume:
		r.deleteRequest(rec.RequestID)
	}
	return rec, err
}

func (r *OTPRepository) setAttempts(requestID string, attempts int) {
	for k, other := range r.records {
		if other.RequestID == requestID {
			other.Attempts = attempts
			r.records[k] = other
		}
	}
}

func (r *OTPRepository) deleteRequest(requestID string) {
	for k, rec := range r.records {
		if rec.RequestID == requestID {
			delete(r.records, k)
		}
	}
}

// DeleteExpired drops records whose expiry is not after now and returns how many were removed
func (r *OTPRepository) DeleteExpired(_ context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for k, rec := range r.records {
		if !now.Before(rec.ExpiresAt) {
			delete(r.records, k)
			n++
		}
	}
	return n
}

// Clear removes every record
func (r *OTPRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]models.OtpRecord)
}
