package handlers

import (
	"net/http"

	"sevagan-backend/internal/middleware"
	"sevagan-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MeHandler serves the signed-in account
type MeHandler struct {
	accountService *services.AccountService
}

// NewMeHandler creates a new me handler
func NewMeHandler(accountService *services.AccountService) *MeHandler {
	return &MeHandler{accountService: accountService}
}

// GetMe handles GET /api/me
func (h *MeHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	if account == nil {
		respondError(w, "Not authorized", CodeNotAuthorized, http.StatusUnauthorized)
		return
	}

	resp, err := h.accountService.GetMe(r.Context(), account.ID)
	if err != nil {
		log.Error().Err(err).Str("account_id", account.ID).Msg("Failed to get account")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// UpdateMe handles POST /api/me
func (h *MeHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	if account == nil {
		respondError(w, "Not authorized", CodeNotAuthorized, http.StatusUnauthorized)
		return
	}

	var req services.UpdateMeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", CodeValidation, http.StatusBadRequest)
		return
	}

	resp, err := h.accountService.UpdateMe(r.Context(), account.ID, req)
	if err != nil {
		log.Error().Err(err).Str("account_id", account.ID).Msg("Failed to update account")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
