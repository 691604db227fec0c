package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"sevagan-backend/internal/metrics"
	"sevagan-backend/internal/models"
	"sevagan-backend/internal/notify"
	"sevagan-backend/internal/profilesink"
	"sevagan-backend/internal/repository"
	"sevagan-backend/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	otpMin   = 100000
	otpRange = 900000
)

// ProfileSubmitter accepts signup profiles for export without blocking
type ProfileSubmitter interface {
	Submit(entry profilesink.Entry)
}

// OTPOptions configures the OTP service
type OTPOptions struct {
	TTL time.Duration
	// MaxAttempts locks a code after this many wrong guesses; 0 means unlimited
	MaxAttempts int
	// ExposeCode returns the raw code to the caller (non-production only)
	ExposeCode bool
}

// OTPService issues and verifies one-time codes and signs accounts in
type OTPService struct {
	otpRepo     *repository.OTPRepository
	accountRepo *repository.AccountRepository
	tokens      TokenIssuer
	channel     notify.Channel
	profiles    ProfileSubmitter
	opts        OTPOptions
	now         func() time.Time
}

// NewOTPService creates a new OTP service
func NewOTPService(
	otpRepo *repository.OTPRepository,
	accountRepo *repository.AccountRepository,
	tokens TokenIssuer,
	channel notify.Channel,
	profiles ProfileSubmitter,
	opts OTPOptions,
) *OTPService {
	return &OTPService{
		otpRepo:     otpRepo,
		accountRepo: accountRepo,
		tokens:      tokens,
		channel:     channel,
		profiles:    profiles,
		opts:        opts,
		now:         time.Now,
	}
}

// RequestOTPRequest asks for a code for a mobile number or email
type RequestOTPRequest struct {
	AccountType models.AccountType `json:"accountType" validate:"omitempty,accounttype"`
	Mobile      string             `json:"mobile,omitempty"`
	Email       string             `json:"email,omitempty" validate:"omitempty,email"`
	Profile     *models.Profile    `json:"profile,omitempty"`
}

// RequestOTPResponse reports which channels the code went out on
type RequestOTPResponse struct {
	RequestID string   `json:"requestId"`
	Channels  []string `json:"channels"`
	DevCode   string   `json:"devCode,omitempty"`
}

// VerifyOTPRequest submits a code
type VerifyOTPRequest struct {
	AccountType models.AccountType `json:"accountType" validate:"omitempty,accounttype"`
	Mobile      string             `json:"mobile,omitempty"`
	Email       string             `json:"email,omitempty"`
	OTP         string             `json:"otp" validate:"required"`
}

// VerifyOTPResponse carries the session token for the verified account
type VerifyOTPResponse struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"account"`
}

// recipientKey prefers mobile, then email, then the account type
func recipientKey(accountType models.AccountType, mobile, email string) string {
	switch {
	case mobile != "":
		return mobile
	case email != "":
		return email
	default:
		return string(accountType)
	}
}

// generateCode returns a uniformly random code in [100000, 999999]
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

// RequestOTP issues a fresh code and files it under every identifier the
// party can be reached on, replacing any code pending there.
func (s *OTPService) RequestOTP(ctx context.Context, req RequestOTPRequest) (*RequestOTPResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	key := recipientKey(req.AccountType, req.Mobile, req.Email)
	if key == "" {
		return nil, validation.NewError("mobile", "required", "mobile, email or accountType is required")
	}

	identifiers, err := s.identifiers(ctx, req.Mobile, req.Email)
	if err != nil {
		return nil, err
	}
	if len(identifiers) == 0 {
		identifiers = []string{key}
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := models.OtpRecord{
		Code:        code,
		ExpiresAt:   now.Add(s.opts.TTL),
		RequestID:   uuid.New().String(),
		Identifiers: appendUnique(identifiers, key),
	}
	s.otpRepo.Put(ctx, rec, rec.Identifiers...)

	channels := make([]string, 0, len(identifiers))
	body := fmt.Sprintf("Your SEVAGAN verification code is %s. It is valid for %d minutes.", code, int(s.opts.TTL.Minutes()))
	for _, id := range identifiers {
		msg := notify.NewMessage(id, "Verification code", body)
		channels = appendUnique(channels, msg.Channel)
		metrics.OTPRequests.WithLabelValues(msg.Channel).Inc()

		if err := s.channel.Deliver(ctx, msg); err != nil {
			log.Warn().Err(err).Str("recipient", id).Str("request_id", rec.RequestID).Msg("Failed to deliver OTP")
		}
	}

	if req.Profile != nil && s.profiles != nil {
		s.profiles.Submit(profilesink.Entry{
			RequestID:   rec.RequestID,
			AccountType: req.AccountType,
			Recipient:   key,
			Profile:     *req.Profile,
			CreatedAt:   now,
		})
	}

	log.Info().
		Str("request_id", rec.RequestID).
		Strs("channels", channels).
		Int("identifiers", len(identifiers)).
		Msg("OTP issued")

	resp := &RequestOTPResponse{RequestID: rec.RequestID, Channels: channels}
	if s.opts.ExposeCode {
		resp.DevCode = code
	}
	return resp, nil
}

// identifiers returns the delivery identifiers for a party: those of the
// existing account if one matches, otherwise whatever was supplied
func (s *OTPService) identifiers(ctx context.Context, mobile, email string) ([]string, error) {
	var out []string
	if mobile == "" && email == "" {
		return out, nil
	}

	account, err := s.accountRepo.GetByContact(ctx, repository.Contact{Mobile: mobile, Email: email})
	switch {
	case err == nil:
		mobile, email = account.Mobile, account.Email
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if mobile != "" {
		out = append(out, mobile)
	}
	if email != "" {
		out = appendUnique(out, email)
	}
	return out, nil
}

// VerifyOTP checks a code and returns a session for the matching account,
// creating the account on first verification. Every mobile or email supplied
// must be one the code was filed under. A successful verify consumes the code
// under every identifier it was filed under; a failed one leaves it pending
// until expiry.
func (s *OTPService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	key := recipientKey(req.AccountType, req.Mobile, req.Email)
	if key == "" {
		return nil, validation.NewError("mobile", "required", "mobile, email or accountType is required")
	}

	now := s.now()
	result := "ok"
	rec, err := s.otpRepo.Verify(ctx, key, func(rec models.OtpRecord) (repository.OTPOutcome, error) {
		switch {
		case !now.Before(rec.ExpiresAt):
			result = "expired"
			return repository.OTPKeep, ErrOtpExpired
		case s.opts.MaxAttempts > 0 && rec.Attempts >= s.opts.MaxAttempts:
			result = "locked"
			return repository.OTPKeep, ErrTooManyAttempts
		case !filedUnder(rec, req.Mobile) || !filedUnder(rec, req.Email):
			result = "invalid"
			return repository.OTPAttempt, ErrInvalidOtp
		case subtle.ConstantTimeCompare([]byte(rec.Code), []byte(req.OTP)) != 1:
			result = "invalid"
			return repository.OTPAttempt, ErrInvalidOtp
		}
		return repository.OTPConsume, nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		metrics.OTPVerifications.WithLabelValues("missing").Inc()
		return nil, ErrNoOtpRequested
	}
	metrics.OTPVerifications.WithLabelValues(result).Inc()
	if err != nil {
		if errors.Is(err, ErrInvalidOtp) {
			log.Info().Str("request_id", rec.RequestID).Int("attempts", rec.Attempts).Msg("OTP mismatch")
		}
		return nil, err
	}

	account, err := s.findOrCreateAccount(ctx, req, key, now)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info().Str("account_id", account.ID).Str("request_id", rec.RequestID).Msg("OTP verified")

	return &VerifyOTPResponse{Token: token, Account: account}, nil
}

// filedUnder reports whether an optional identifier is one rec was filed under
func filedUnder(rec models.OtpRecord, id string) bool {
	if id == "" {
		return true
	}
	for _, filed := range rec.Identifiers {
		if filed == id {
			return true
		}
	}
	return false
}

// findOrCreateAccount resolves the verified party. req's identifiers have
// already been checked against the code's filing.
func (s *OTPService) findOrCreateAccount(ctx context.Context, req VerifyOTPRequest, key string, now time.Time) (*models.Account, error) {
	verified := models.At(now)

	if req.Mobile != "" || req.Email != "" {
		account, err := s.accountRepo.GetByContact(ctx, repository.Contact{Mobile: req.Mobile, Email: req.Email})
		if err == nil {
			if account.VerifiedAt != nil {
				return account, nil
			}
			_, updated, err := s.accountRepo.Update(ctx, account.ID, func(a *models.Account) {
				a.VerifiedAt = &verified
			})
			if err != nil {
				return nil, fmt.Errorf("failed to mark account verified: %w", err)
			}
			return updated, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up account: %w", err)
		}
	}

	accountType := req.AccountType
	if accountType == "" {
		accountType = models.AccountTypeIndividual
	}

	account := &models.Account{
		Type:       accountType,
		Name:       key,
		Mobile:     req.Mobile,
		Email:      req.Email,
		CreatedAt:  verified,
		VerifiedAt: &verified,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Info().Str("account_id", account.ID).Str("type", string(account.Type)).Msg("Account created")
	return account, nil
}

// AccountExists reports whether an account is registered for the mobile or email
func (s *OTPService) AccountExists(ctx context.Context, mobile, email string) (bool, models.AccountType, error) {
	if mobile == "" && email == "" {
		return false, "", nil
	}
	account, err := s.accountRepo.GetByContact(ctx, repository.Contact{Mobile: mobile, Email: email})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to look up account: %w", err)
	}
	return true, account.Type, nil
}

// PurgeExpired drops codes that expired at least one TTL ago. Recently
// expired codes are kept so a late verify still reports ErrOtpExpired.
func (s *OTPService) PurgeExpired(ctx context.Context) int {
	return s.otpRepo.DeleteExpired(ctx, s.now().Add(-s.opts.TTL))
}

// RunJanitor purges expired codes every interval until ctx is done
func (s *OTPService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.PurgeExpired(ctx); n > 0 {
				log.Debug().Int("purged", n).Msg("Expired OTPs purged")
			}
		}
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
