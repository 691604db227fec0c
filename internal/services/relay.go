package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/notify"
	"sevagan-backend/internal/repository"
	"sevagan-backend/internal/validation"

	"github.com/rs/zerolog/log"
)

// RelayService records donor responses and ad-hoc notifications
type RelayService struct {
	needRepo         *repository.NeedRepository
	accountRepo      *repository.AccountRepository
	notificationRepo *repository.NotificationRepository
	channel          notify.Channel
	now              func() time.Time
}

// NewRelayService creates a new relay service
func NewRelayService(
	needRepo *repository.NeedRepository,
	accountRepo *repository.AccountRepository,
	notificationRepo *repository.NotificationRepository,
	channel notify.Channel,
) *RelayService {
	return &RelayService{
		needRepo:         needRepo,
		accountRepo:      accountRepo,
		notificationRepo: notificationRepo,
		channel:          channel,
		now:              time.Now,
	}
}

// RespondRequest is a donor's intent to donate against a need
type RespondRequest struct {
	NeedID    string `json:"needId" validate:"required"`
	Contact   string `json:"contact,omitempty"`
	Message   string `json:"message,omitempty"`
	DonorName string `json:"donorName,omitempty"`
}

// RespondResponse lists who should hear about the response
type RespondResponse struct {
	OK       bool                 `json:"ok"`
	Response *models.NeedResponse `json:"resp"`
	NotifyTo []string             `json:"notifyTo"`
}

// NotifyRequest is an ad-hoc message to a donor
type NotifyRequest struct {
	Mobile  string `json:"mobile" validate:"required"`
	DonorID string `json:"donorId"`
	Message string `json:"message" validate:"required"`
}

// NotifyResponse acknowledges a recorded notification
type NotifyResponse struct {
	OK           bool                 `json:"ok"`
	Notification *models.Notification `json:"notification"`
}

// RespondToNeed records the response and computes the recipients: the
// requester's mobile and email when the requester account resolves, plus the
// responder's contact, without duplicates.
func (s *RelayService) RespondToNeed(ctx context.Context, req RespondRequest) (*RespondResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	need, err := s.needRepo.GetByID(ctx, req.NeedID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNeedNotFound
		}
		return nil, fmt.Errorf("failed to get need: %w", err)
	}

	resp := &models.NeedResponse{
		NeedID:    need.ID,
		Contact:   req.Contact,
		Message:   req.Message,
		DonorName: req.DonorName,
	}
	if err := s.notificationRepo.CreateResponse(ctx, resp); err != nil {
		return nil, fmt.Errorf("failed to record response: %w", err)
	}

	notifyTo := make([]string, 0, 3)
	if need.RequesterAccountID != "" {
		requester, err := s.accountRepo.GetByID(ctx, need.RequesterAccountID)
		switch {
		case err == nil:
			if requester.Mobile != "" {
				notifyTo = appendUnique(notifyTo, requester.Mobile)
			}
			if requester.Email != "" {
				notifyTo = appendUnique(notifyTo, requester.Email)
			}
		case !errors.Is(err, repository.ErrNotFound):
			log.Warn().Err(err).Str("need_id", need.ID).Msg("Failed to resolve requester")
		}
	}
	if req.Contact != "" {
		notifyTo = appendUnique(notifyTo, req.Contact)
	}

	body := responseMessage(need, req, s.now())
	for _, recipient := range notifyTo {
		if err := s.channel.Deliver(ctx, notify.NewMessage(recipient, "Donor response", body)); err != nil {
			log.Warn().Err(err).Str("recipient", recipient).Str("need_id", need.ID).Msg("Failed to deliver response")
		}
	}

	log.Info().
		Str("need_id", need.ID).
		Str("response_id", resp.ID).
		Int("recipients", len(notifyTo)).
		Msg("Need response recorded")

	return &RespondResponse{OK: true, Response: resp, NotifyTo: notifyTo}, nil
}

func responseMessage(need *models.BloodNeedRequest, req RespondRequest, now time.Time) string {
	donor := req.DonorName
	if donor == "" {
		donor = "A donor"
	}
	msg := fmt.Sprintf("%s responded to the %s request in %s", donor, need.BloodGroup, need.City)
	if tag := models.UrgencyTag(need, now); tag != "" {
		msg += fmt.Sprintf(" (%s)", tag)
	}
	if req.Contact != "" {
		msg += ". Contact: " + req.Contact
	}
	if req.Message != "" {
		msg += ". " + req.Message
	}
	return msg
}

// NotifyDonor records a message for a donor and hands it to the delivery channel
func (s *RelayService) NotifyDonor(ctx context.Context, req NotifyRequest) (*NotifyResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	n := &models.Notification{
		Mobile:  req.Mobile,
		DonorID: req.DonorID,
		Message: req.Message,
	}
	if err := s.notificationRepo.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to record notification: %w", err)
	}

	if err := s.channel.Deliver(ctx, notify.NewMessage(req.Mobile, "Blood request", req.Message)); err != nil {
		log.Warn().Err(err).Str("notification_id", n.ID).Msg("Failed to deliver notification")
	}

	return &NotifyResponse{OK: true, Notification: n}, nil
}
