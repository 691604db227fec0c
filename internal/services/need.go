package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"sevagan-backend/internal/metrics"
	"sevagan-backend/internal/models"
	"sevagan-backend/internal/repository"
	"sevagan-backend/internal/validation"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// NeedService stores blood need requests and broadcasts new ones to the live feed
type NeedService struct {
	needRepo    *repository.NeedRepository
	accountRepo *repository.AccountRepository
	hub         *FeedHub

	// serializes create+publish so every subscriber sees creates in the same order
	publishMu sync.Mutex
}

// NewNeedService creates a new need service
func NewNeedService(needRepo *repository.NeedRepository, accountRepo *repository.AccountRepository, hub *FeedHub) *NeedService {
	return &NeedService{
		needRepo:    needRepo,
		accountRepo: accountRepo,
		hub:         hub,
	}
}

// CreateNeedRequest is the payload for posting a need
type CreateNeedRequest struct {
	BloodGroup         models.BloodGroup `json:"bloodGroup" validate:"required,bloodgroup"`
	City               string            `json:"city" validate:"required"`
	Pincode            string            `json:"pincode"`
	NeededAtISO        string            `json:"neededAtISO" validate:"required,timestamp"`
	TimeOption         models.TimeOption `json:"timeOption,omitempty" validate:"omitempty,oneof=emergency within_1_hour within_5_hours today"`
	Notes              string            `json:"notes,omitempty"`
	RequesterAccountID string            `json:"requesterAccountId,omitempty"`
	RequesterName      string            `json:"requesterName,omitempty"`
}

// CreateNeed stores a need and pushes it to every open feed subscription.
// When the requester account is known and no name was supplied, the
// account's current name is copied onto the need.
func (s *NeedService) CreateNeed(ctx context.Context, req CreateNeedRequest) (*models.BloodNeedRequest, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	need := &models.BloodNeedRequest{
		BloodGroup:         req.BloodGroup,
		City:               req.City,
		Pincode:            req.Pincode,
		NeededAtISO:        req.NeededAtISO,
		TimeOption:         req.TimeOption,
		Notes:              req.Notes,
		RequesterAccountID: req.RequesterAccountID,
		RequesterName:      req.RequesterName,
	}

	if need.RequesterAccountID != "" && need.RequesterName == "" {
		account, err := s.accountRepo.GetByID(ctx, need.RequesterAccountID)
		switch {
		case err == nil:
			need.RequesterName = account.Name
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("failed to get requester account: %w", err)
		}
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if err := s.needRepo.Create(ctx, need); err != nil {
		return nil, fmt.Errorf("failed to create need: %w", err)
	}
	metrics.NeedsCreated.WithLabelValues(string(need.BloodGroup)).Inc()

	payload, err := json.Marshal(need)
	if err != nil {
		// the need is stored; only the broadcast is lost
		log.Error().Err(err).Str("need_id", need.ID).Msg("Failed to serialize need for feed")
		return need, nil
	}
	delivered := s.hub.Publish(payload)

	log.Info().
		Str("need_id", need.ID).
		Str("blood_group", string(need.BloodGroup)).
		Str("city", need.City).
		Int("subscribers", delivered).
		Msg("Need created")

	return need, nil
}

// ListNeeds returns every need, most recent first
func (s *NeedService) ListNeeds(ctx context.Context) []*models.BloodNeedRequest {
	return s.needRepo.List(ctx)
}

// GetNeed returns a need by id
func (s *NeedService) GetNeed(ctx context.Context, id string) (*models.BloodNeedRequest, error) {
	need, err := s.needRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNeedNotFound
		}
		return nil, fmt.Errorf("failed to get need: %w", err)
	}
	return need, nil
}

// Subscribe opens a live feed subscription that ends with ctx. Needs created
// before the call are not replayed; use ListNeeds to backfill.
func (s *NeedService) Subscribe(ctx context.Context) *Subscription {
	return s.hub.Subscribe(ctx)
}
