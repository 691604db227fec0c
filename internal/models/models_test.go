package models

import "testing"

func TestChannelFor(t *testing.T) {
	tests := []struct {
		identifier string
		want       string
	}{
		{"9876543210", ChannelSMS},
		{"98765", ChannelOther},
		{"+919876543210", ChannelOther},
		{"desk@cityhospital.example", ChannelEmail},
		{"hospital", ChannelOther},
	}

	for _, tt := range tests {
		if got := ChannelFor(tt.identifier); got != tt.want {
			t.Errorf("ChannelFor(%q) = %q, want %q", tt.identifier, got, tt.want)
		}
	}
}

func TestBloodGroupValid(t *testing.T) {
	for _, g := range BloodGroups {
		if !g.Valid() {
			t.Errorf("%q should be valid", g)
		}
	}
	for _, g := range []BloodGroup{"", "a+", "C+", "AB"} {
		if g.Valid() {
			t.Errorf("%q should be invalid", g)
		}
	}
}

func TestAccountTypeValid(t *testing.T) {
	if !AccountTypeHospital.Valid() {
		t.Error("hospital should be valid")
	}
	if AccountType("clinic").Valid() {
		t.Error("clinic should be invalid")
	}
}
