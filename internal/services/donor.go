package services

import (
	"context"
	"fmt"
	"strings"

	"sevagan-backend/internal/metrics"
	"sevagan-backend/internal/models"
	"sevagan-backend/internal/repository"
	"sevagan-backend/internal/validation"
)

// DonorService handles donor registration and search
type DonorService struct {
	donorRepo *repository.DonorRepository
}

// NewDonorService creates a new donor service
func NewDonorService(donorRepo *repository.DonorRepository) *DonorService {
	return &DonorService{donorRepo: donorRepo}
}

// CreateDonorRequest is the donor registration payload. Fields are stored as
// supplied; form validation is the client's concern.
type CreateDonorRequest struct {
	Name       string            `json:"name"`
	Age        int               `json:"age"`
	Gender     models.Gender     `json:"gender"`
	BloodGroup models.BloodGroup `json:"bloodGroup"`
	City       string            `json:"city"`
	Pincode    string            `json:"pincode"`
	Mobile     string            `json:"mobile"`
	Email      string            `json:"email,omitempty"`
	AccountID  string            `json:"accountId,omitempty"`
}

// SearchDonorsRequest filters donors; empty fields are ignored
type SearchDonorsRequest struct {
	BloodGroup models.BloodGroup `json:"bloodGroup" validate:"omitempty,bloodgroup"`
	City       string            `json:"city"`
	Pincode    string            `json:"pincode"`
}

// SearchDonorsResponse holds every matching donor
type SearchDonorsResponse struct {
	Results []*models.Donor `json:"results"`
	Total   int             `json:"total"`
}

// CreateDonor registers a donor. Duplicate mobiles are allowed.
func (s *DonorService) CreateDonor(ctx context.Context, req CreateDonorRequest) (*models.Donor, error) {
	donor := &models.Donor{
		Name:       req.Name,
		Age:        req.Age,
		Gender:     req.Gender,
		BloodGroup: req.BloodGroup,
		City:       req.City,
		Pincode:    req.Pincode,
		Mobile:     req.Mobile,
		Email:      req.Email,
		AccountID:  req.AccountID,
	}

	if err := s.donorRepo.Create(ctx, donor); err != nil {
		return nil, fmt.Errorf("failed to create donor: %w", err)
	}
	metrics.DonorsRegistered.Inc()

	return donor, nil
}

// SearchDonors returns donors matching every supplied filter, newest first.
// City matches case-insensitively.
func (s *DonorService) SearchDonors(ctx context.Context, req SearchDonorsRequest) (*SearchDonorsResponse, error) {
	req.City = strings.TrimSpace(req.City)
	req.Pincode = strings.TrimSpace(req.Pincode)

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	results := s.donorRepo.Search(ctx, repository.DonorFilter{
		BloodGroup: req.BloodGroup,
		City:       req.City,
		Pincode:    req.Pincode,
	})
	return &SearchDonorsResponse{Results: results, Total: len(results)}, nil
}
