package handlers

import (
	"errors"
	"net/http"

	"sevagan-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// NeedHandler handles blood need HTTP requests
type NeedHandler struct {
	needService  *services.NeedService
	relayService *services.RelayService
}

// NewNeedHandler creates a new need handler
func NewNeedHandler(needService *services.NeedService, relayService *services.RelayService) *NeedHandler {
	return &NeedHandler{
		needService:  needService,
		relayService: relayService,
	}
}

// CreateNeed handles POST /api/needs
func (h *NeedHandler) CreateNeed(w http.ResponseWriter, r *http.Request) {
	var req services.CreateNeedRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", CodeValidation, http.StatusBadRequest)
		return
	}

	need, err := h.needService.CreateNeed(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("city", req.City).Msg("Failed to create need")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, need)
}

// ListNeeds handles GET /api/needs
func (h *NeedHandler) ListNeeds(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.needService.ListNeeds(r.Context()))
}

// GetNeed handles GET /api/needs/{id}
func (h *NeedHandler) GetNeed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	need, err := h.needService.GetNeed(r.Context(), id)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Error().Err(err).Str("need_id", id).Msg("Failed to get need")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, need)
}

// Respond handles POST /api/needs/respond
func (h *NeedHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req services.RespondRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", CodeValidation, http.StatusBadRequest)
		return
	}

	resp, err := h.relayService.RespondToNeed(r.Context(), req)
	if err != nil {
		log.Warn().Err(err).Str("need_id", req.NeedID).Msg("Failed to record need response")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// NotifyDonor handles POST /api/notify
func (h *NeedHandler) NotifyDonor(w http.ResponseWriter, r *http.Request) {
	var req services.NotifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", CodeValidation, http.StatusBadRequest)
		return
	}

	resp, err := h.relayService.NotifyDonor(r.Context(), req)
	if err != nil {
		log.Warn().Err(err).Str("donor_id", req.DonorID).Msg("Failed to notify donor")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
