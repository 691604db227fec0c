package handlers

import (
	"net/http"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles OTP sign-in
type AuthHandler struct {
	otpService *services.OTPService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(otpService *services.OTPService) *AuthHandler {
	return &AuthHandler{otpService: otpService}
}

// RequestOTP handles POST /api/auth/request-otp
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req services.RequestOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", CodeValidation, http.StatusBadRequest)
		return
	}

	resp, err := h.otpService.RequestOTP(r.Context(), req)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to issue OTP")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req services.VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", CodeValidation, http.StatusBadRequest)
		return
	}

	resp, err := h.otpService.VerifyOTP(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// ExistsResponse reports whether an account is registered
type ExistsResponse struct {
	Exists      bool               `json:"exists"`
	AccountType models.AccountType `json:"type,omitempty"`
}

// Exists handles GET /api/auth/exists?mobile&email
func (h *AuthHandler) Exists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	exists, accountType, err := h.otpService.AccountExists(r.Context(), q.Get("mobile"), q.Get("email"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to check account")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ExistsResponse{Exists: exists, AccountType: accountType})
}
