package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestEpochMillisJSON(t *testing.T) {
	at := time.UnixMilli(1760688000123)
	account := Account{ID: "a1", Type: AccountTypeNGO, CreatedAt: At(at), VerifiedAt: &EpochMillis{Time: at}}

	data, err := json.Marshal(account)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, field := range []string{"createdAt", "verifiedAt"} {
		if v, ok := raw[field].(float64); !ok || int64(v) != 1760688000123 {
			t.Errorf("%s = %#v, want 1760688000123", field, raw[field])
		}
	}

	var decoded Account
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.CreatedAt.Equal(at) || decoded.VerifiedAt == nil || !decoded.VerifiedAt.Equal(at) {
		t.Errorf("decoded = %+v, want %v", decoded, at)
	}
}

func TestEpochMillisZeroAndInvalid(t *testing.T) {
	data, err := json.Marshal(EpochMillis{})
	if err != nil || string(data) != "0" {
		t.Errorf("Marshal(zero) = %s, %v; want 0", data, err)
	}

	var e EpochMillis
	if err := json.Unmarshal([]byte("0"), &e); err != nil || !e.IsZero() {
		t.Errorf("Unmarshal(0) = %v, %v; want zero time", e, err)
	}
	if err := json.Unmarshal([]byte(`"2026-10-17T09:00:00Z"`), &e); err == nil {
		t.Error("Unmarshal(string) should fail")
	}
}
