package services

import (
	"context"
	"errors"
	"testing"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/validation"
)

func TestSearchDonors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, req := range []CreateDonorRequest{
		{Name: "first", BloodGroup: models.BloodGroupAPos, City: "Chennai"},
		{Name: "second", BloodGroup: models.BloodGroupOPos, City: "Chennai"},
	} {
		if _, err := env.donors.CreateDonor(ctx, req); err != nil {
			t.Fatalf("CreateDonor() error = %v", err)
		}
	}

	tests := []struct {
		name string
		req  SearchDonorsRequest
		want int
	}{
		{"group and city", SearchDonorsRequest{BloodGroup: models.BloodGroupAPos, City: "Chennai"}, 1},
		{"city only", SearchDonorsRequest{City: " Chennai "}, 2},
		{"no filter", SearchDonorsRequest{}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.donors.SearchDonors(ctx, tt.req)
			if err != nil {
				t.Fatalf("SearchDonors() error = %v", err)
			}
			if resp.Total != tt.want || len(resp.Results) != tt.want {
				t.Errorf("SearchDonors() total = %d, want %d", resp.Total, tt.want)
			}
		})
	}

	resp, _ := env.donors.SearchDonors(ctx, SearchDonorsRequest{BloodGroup: models.BloodGroupAPos, City: "Chennai"})
	if resp.Results[0].Name != "first" {
		t.Errorf("conjunctive search returned %q", resp.Results[0].Name)
	}

	_, err := env.donors.SearchDonors(ctx, SearchDonorsRequest{BloodGroup: "Z"})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Errorf("SearchDonors() error = %v, want validation error", err)
	}
}
