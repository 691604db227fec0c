package services

import (
	"context"
	"fmt"
	"time"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// AdminService reports table sizes and manages dev data
type AdminService struct {
	donorRepo        *repository.DonorRepository
	needRepo         *repository.NeedRepository
	accountRepo      *repository.AccountRepository
	otpRepo          *repository.OTPRepository
	notificationRepo *repository.NotificationRepository
	donors           *DonorService
	needs            *NeedService
	now              func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(
	donorRepo *repository.DonorRepository,
	needRepo *repository.NeedRepository,
	accountRepo *repository.AccountRepository,
	otpRepo *repository.OTPRepository,
	notificationRepo *repository.NotificationRepository,
	donors *DonorService,
	needs *NeedService,
) *AdminService {
	return &AdminService{
		donorRepo:        donorRepo,
		needRepo:         needRepo,
		accountRepo:      accountRepo,
		otpRepo:          otpRepo,
		notificationRepo: notificationRepo,
		donors:           donors,
		needs:            needs,
		now:              time.Now,
	}
}

// Snapshot is the full dev data dump
type Snapshot struct {
	Stats         models.Stats               `json:"stats"`
	Accounts      []*models.Account          `json:"accounts"`
	Donors        []*models.Donor            `json:"donors"`
	Needs         []*models.BloodNeedRequest `json:"needs"`
	Notifications []models.Notification      `json:"notifications"`
	Responses     []models.NeedResponse      `json:"responses"`
}

// Stats counts donors, needs, needs created since local midnight, and accounts
func (s *AdminService) Stats(_ context.Context) models.Stats {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return models.Stats{
		Donors:        s.donorRepo.Count(),
		Requests:      s.needRepo.Count(),
		RequestsToday: s.needRepo.CountSince(midnight),
		Accounts:      s.accountRepo.Count(),
	}
}

// Snapshot returns every table
func (s *AdminService) Snapshot(ctx context.Context) *Snapshot {
	return &Snapshot{
		Stats:         s.Stats(ctx),
		Accounts:      s.accountRepo.List(ctx),
		Donors:        s.donorRepo.Search(ctx, repository.DonorFilter{}),
		Needs:         s.needRepo.List(ctx),
		Notifications: s.notificationRepo.Notifications(ctx),
		Responses:     s.notificationRepo.Responses(ctx),
	}
}

// Clear empties every table
func (s *AdminService) Clear(_ context.Context) {
	s.donorRepo.Clear()
	s.needRepo.Clear()
	s.accountRepo.Clear()
	s.otpRepo.Clear()
	s.notificationRepo.Clear()

	log.Warn().Msg("All in-memory data cleared")
}

// Seed inserts sample accounts, donors and needs. Needs go through the need
// service so open feeds receive them.
func (s *AdminService) Seed(ctx context.Context) error {
	now := s.now()
	verified := models.At(now)

	hospital := &models.Account{
		Type:       models.AccountTypeHospital,
		Name:       "CITY HOSPITAL",
		Email:      "contact@cityhospital.example",
		VerifiedAt: &verified,
	}
	volunteer := &models.Account{
		Type:       models.AccountTypeIndividual,
		Name:       "Priya",
		Mobile:     "9876543210",
		VerifiedAt: &verified,
	}
	for _, a := range []*models.Account{hospital, volunteer} {
		if err := s.accountRepo.Create(ctx, a); err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}
	}

	donors := []CreateDonorRequest{
		{Name: "Priya", Age: 27, Gender: models.GenderFemale, BloodGroup: models.BloodGroupAPos, City: "Chennai", Pincode: "600001", Mobile: "9876543210", AccountID: volunteer.ID},
		{Name: "Karthik", Age: 34, Gender: models.GenderMale, BloodGroup: models.BloodGroupOPos, City: "Chennai", Pincode: "600028", Mobile: "9123456780"},
		{Name: "Anitha", Age: 41, Gender: models.GenderFemale, BloodGroup: models.BloodGroupBNeg, City: "Coimbatore", Pincode: "641001", Mobile: "9000011111"},
		{Name: "Ravi", Age: 22, Gender: models.GenderMale, BloodGroup: models.BloodGroupABPos, City: "Madurai", Pincode: "625001", Mobile: "9000022222"},
	}
	for _, d := range donors {
		if _, err := s.donors.CreateDonor(ctx, d); err != nil {
			return fmt.Errorf("failed to seed donor: %w", err)
		}
	}

	needs := []CreateNeedRequest{
		{BloodGroup: models.BloodGroupBPos, City: "Erode", Pincode: "638001", NeededAtISO: now.Add(time.Hour).UTC().Format(time.RFC3339), TimeOption: models.TimeOptionWithin1Hour, RequesterAccountID: hospital.ID},
		{BloodGroup: models.BloodGroupONeg, City: "Chennai", Pincode: "600006", NeededAtISO: now.Add(5 * time.Hour).UTC().Format(time.RFC3339), Notes: "Surgery ward 3"},
	}
	for _, n := range needs {
		if _, err := s.needs.CreateNeed(ctx, n); err != nil {
			return fmt.Errorf("failed to seed need: %w", err)
		}
	}

	log.Info().Int("donors", len(donors)).Int("needs", len(needs)).Msg("Sample data seeded")
	return nil
}
