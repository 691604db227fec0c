package validation

import (
	"errors"
	"testing"

	"sevagan-backend/internal/models"
)

type sample struct {
	BloodGroup  models.BloodGroup  `json:"bloodGroup" validate:"required,bloodgroup"`
	AccountType models.AccountType `json:"accountType" validate:"omitempty,accounttype"`
	NeededAt    string             `json:"neededAtISO" validate:"required,timestamp"`
}

func TestStruct(t *testing.T) {
	ok := sample{BloodGroup: models.BloodGroupONeg, NeededAt: "2026-10-17T09:30:00.000Z"}
	if err := Struct(ok); err != nil {
		t.Fatalf("Struct() unexpected error = %v", err)
	}

	bad := sample{BloodGroup: "Z+", AccountType: "clinic", NeededAt: "soon"}
	err := Struct(bad)

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Struct() error = %v, want *Error", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("got %d field errors, want 3: %v", len(verr.Fields), verr.Fields)
	}

	want := map[string]string{
		"bloodGroup":  "bloodgroup",
		"accountType": "accounttype",
		"neededAtISO": "timestamp",
	}
	for _, f := range verr.Fields {
		if want[f.Field] != f.Tag {
			t.Errorf("field %q failed %q, want %q", f.Field, f.Tag, want[f.Field])
		}
		if f.Message == "" {
			t.Errorf("field %q has empty message", f.Field)
		}
	}
}

func TestStructRequired(t *testing.T) {
	err := Struct(sample{})

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Struct() error = %v, want *Error", err)
	}
	for _, f := range verr.Fields {
		if f.Tag != "required" {
			t.Errorf("field %q failed %q, want required", f.Field, f.Tag)
		}
	}
	if got := verr.Error(); got != "bloodGroup is required; neededAtISO is required" {
		t.Errorf("Error() = %q", got)
	}
}
