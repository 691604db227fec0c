package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sevagan-backend/internal/models"
)

func TestOTPPutOverwrites(t *testing.T) {
	ctx := context.Background()
	r := NewOTPRepository()
	exp := time.Now().Add(time.Minute)

	r.Put(ctx, models.OtpRecord{Code: "111111", ExpiresAt: exp, RequestID: "r1"}, "9876543210", "a@example.com")
	r.Put(ctx, models.OtpRecord{Code: "222222", ExpiresAt: exp, RequestID: "r2"}, "9876543210")

	rec, err := r.Get(ctx, "9876543210")
	if err != nil || rec.Code != "222222" {
		t.Fatalf("Get() = %+v, %v; want latest code", rec, err)
	}
	rec, err = r.Get(ctx, "a@example.com")
	if err != nil || rec.Code != "111111" {
		t.Fatalf("Get() = %+v, %v; want untouched email record", rec, err)
	}
}

func TestOTPVerifyOutcomes(t *testing.T) {
	ctx := context.Background()
	r := NewOTPRepository()
	exp := time.Now().Add(time.Minute)
	errWrong := errors.New("wrong")

	r.Put(ctx, models.OtpRecord{Code: "111111", ExpiresAt: exp, RequestID: "r1"}, "m", "e")
	r.Put(ctx, models.OtpRecord{Code: "333333", ExpiresAt: exp, RequestID: "r3"}, "other")

	attempt := func(models.OtpRecord) (OTPOutcome, error) { return OTPAttempt, errWrong }

	rec, err := r.Verify(ctx, "m", attempt)
	if !errors.Is(err, errWrong) || rec.Attempts != 1 {
		t.Fatalf("Verify() = %d, %v; want 1 attempt and decide's error", rec.Attempts, err)
	}
	if rec, _ = r.Verify(ctx, "e", attempt); rec.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2 across identifiers", rec.Attempts)
	}
	if rec, _ := r.Get(ctx, "other"); rec.Attempts != 0 {
		t.Errorf("unrelated record attempts = %d, want 0", rec.Attempts)
	}

	keep := func(models.OtpRecord) (OTPOutcome, error) { return OTPKeep, nil }
	if rec, _ = r.Verify(ctx, "m", keep); rec.Attempts != 2 {
		t.Errorf("keep changed attempts to %d", rec.Attempts)
	}

	consume := func(models.OtpRecord) (OTPOutcome, error) { return OTPConsume, nil }
	if _, err := r.Verify(ctx, "m", consume); err != nil {
		t.Fatalf("Verify(consume) error = %v", err)
	}
	for _, k := range []string{"m", "e"} {
		if _, err := r.Get(ctx, k); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) error = %v, want ErrNotFound", k, err)
		}
	}
	if _, err := r.Get(ctx, "other"); err != nil {
		t.Errorf("Get(other) error = %v", err)
	}
	if _, err := r.Verify(ctx, "m", consume); !errors.Is(err, ErrNotFound) {
		t.Errorf("Verify() on consumed key error = %v, want ErrNotFound", err)
	}
}

func TestOTPVerifyConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	r := NewOTPRepository()
	r.Put(ctx, models.OtpRecord{Code: "111111", ExpiresAt: time.Now().Add(time.Minute), RequestID: "r1"}, "m")

	var (
		wg       sync.WaitGroup
		consumed atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Verify(ctx, "m", func(models.OtpRecord) (OTPOutcome, error) {
				consumed.Add(1)
				return OTPConsume, nil
			})
			if err != nil && !errors.Is(err, ErrNotFound) {
				t.Errorf("Verify() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if n := consumed.Load(); n != 1 {
		t.Errorf("decide ran on a live record %d times, want 1", n)
	}
}

func TestOTPDeleteExpired(t *testing.T) {
	ctx := context.Background()
	r := NewOTPRepository()
	now := time.Now()

	r.Put(ctx, models.OtpRecord{Code: "1", ExpiresAt: now.Add(-time.Second), RequestID: "old"}, "a")
	r.Put(ctx, models.OtpRecord{Code: "2", ExpiresAt: now.Add(time.Minute), RequestID: "new"}, "b")

	if n := r.DeleteExpired(ctx, now); n != 1 {
		t.Errorf("DeleteExpired() = %d, want 1", n)
	}
	if _, err := r.Get(ctx, "b"); err != nil {
		t.Errorf("live record removed: %v", err)
	}
}
