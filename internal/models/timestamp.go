package models

import (
	"fmt"
	"strconv"
	"time"
)

// EpochMillis is an instant encoded as Unix milliseconds in JSON, the form
// browser clients get from Date.now()
type EpochMillis struct {
	time.Time
}

// At wraps t
func At(t time.Time) EpochMillis {
	return EpochMillis{Time: t}
}

// MarshalJSON implements json.Marshaler. The zero time encodes as 0.
func (e EpochMillis) MarshalJSON() ([]byte, error) {
	if e.IsZero() {
		return []byte("0"), nil
	}
	return strconv.AppendInt(nil, e.UnixMilli(), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid epoch milliseconds %q: %w", s, err)
	}
	if ms == 0 {
		e.Time = time.Time{}
		return nil
	}
	e.Time = time.UnixMilli(ms)
	return nil
}
