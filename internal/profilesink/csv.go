package profilesink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"
)

var csvHeader = []string{
	"request_id", "created_at", "account_type", "recipient",
	"name", "mobile", "email", "blood_group", "gender", "dob", "city", "pincode",
}

// CSVSink appends profiles to a CSV file, writing a header when the file is new
type CSVSink struct {
	mu   sync.Mutex
	path string
}

// NewCSVSink creates a sink writing to path
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Name implements Sink
func (s *CSVSink) Name() string { return "csv" }

// Append implements Sink
func (s *CSVSink) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open profile csv: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat profile csv: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
	}

	p := e.Profile
	row := []string{
		e.RequestID, e.CreatedAt.UTC().Format(time.RFC3339), string(e.AccountType), e.Recipient,
		p.Name, p.Mobile, p.Email, string(p.BloodGroup), string(p.Gender), p.DOB, p.City, p.Pincode,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush profile csv: %w", err)
	}
	return nil
}
