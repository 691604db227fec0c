package services

import (
	"context"
	"errors"
	"fmt"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// AccountService resolves sessions and maintains account profiles
type AccountService struct {
	accountRepo *repository.AccountRepository
	donorRepo   *repository.DonorRepository
	tokens      TokenIssuer
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo *repository.AccountRepository, donorRepo *repository.DonorRepository, tokens TokenIssuer) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		donorRepo:   donorRepo,
		tokens:      tokens,
	}
}

// MeResponse is the signed-in account with its donor record, if any
type MeResponse struct {
	Account *models.Account `json:"account"`
	Donor   *models.Donor   `json:"donor"`
}

// UpdateMeRequest carries the profile fields to change. Nil or empty fields
// are left as they are.
type UpdateMeRequest struct {
	Name         *string `json:"name,omitempty"`
	Mobile       *string `json:"mobile,omitempty"`
	Email        *string `json:"email,omitempty"`
	AvatarBase64 *string `json:"avatarBase64,omitempty"`
}

// UpdateMeResponse is returned after a profile update
type UpdateMeResponse struct {
	OK      bool            `json:"ok"`
	Account *models.Account `json:"account"`
}

// Resolve returns the account a bearer token was issued for. Unknown and
// malformed tokens both fail with ErrNotAuthorized.
func (s *AccountService) Resolve(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, ErrNotAuthorized
	}

	accountID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrNotAuthorized
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetMe returns the account and the donor record that belongs to it. The
// donor is found by account id, falling back to a matching mobile or email.
func (s *AccountService) GetMe(ctx context.Context, accountID string) (*MeResponse, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	donor, err := s.donorRepo.FindForAccount(ctx, account.ID, repository.Contact{
		Mobile: account.Mobile,
		Email:  account.Email,
	})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to find donor: %w", err)
	}

	return &MeResponse{Account: account, Donor: donor}, nil
}

// UpdateMe applies the supplied fields and propagates contact changes to
// donor records, both those linked by account id and those still registered
// under the account's previous mobile or email.
func (s *AccountService) UpdateMe(ctx context.Context, accountID string, req UpdateMeRequest) (*UpdateMeResponse, error) {
	before, after, err := s.accountRepo.Update(ctx, accountID, func(a *models.Account) {
		if v := req.Name; v != nil && *v != "" {
			a.Name = *v
		}
		if v := req.Mobile; v != nil && *v != "" {
			a.Mobile = *v
		}
		if v := req.Email; v != nil && *v != "" {
			a.Email = *v
		}
		if v := req.AvatarBase64; v != nil && *v != "" {
			a.AvatarBase64 = *v
		}
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	changed := s.donorRepo.SyncContact(ctx, after.ID,
		repository.Contact{Mobile: before.Mobile, Email: before.Email},
		repository.Contact{Mobile: after.Mobile, Email: after.Email},
	)

	log.Info().
		Str("account_id", after.ID).
		Int("donors_synced", changed).
		Msg("Account updated")

	return &UpdateMeResponse{OK: true, Account: after}, nil
}

func (s *AccountService) getAccount(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}
