package handlers

import (
	"net/http"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// DonorHandler handles donor-related HTTP requests
type DonorHandler struct {
	donorService *services.DonorService
}

// NewDonorHandler creates a new donor handler
func NewDonorHandler(donorService *services.DonorService) *DonorHandler {
	return &DonorHandler{donorService: donorService}
}

// CreateDonor handles POST /api/donors
func (h *DonorHandler) CreateDonor(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDonorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Invalid request body", CodeValidation, http.StatusBadRequest)
		return
	}

	donor, err := h.donorService.CreateDonor(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create donor")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("donor_id", donor.ID).
		Str("blood_group", string(donor.BloodGroup)).
		Str("city", donor.City).
		Msg("Donor registered")

	respondJSON(w, http.StatusOK, donor)
}

// SearchDonors handles GET /api/donors?bloodGroup&city&pincode
func (h *DonorHandler) SearchDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := services.SearchDonorsRequest{
		BloodGroup: models.BloodGroup(q.Get("bloodGroup")),
		City:       q.Get("city"),
		Pincode:    q.Get("pincode"),
	}

	resp, err := h.donorService.SearchDonors(r.Context(), req)
	if err != nil {
		log.Debug().Err(err).Msg("Donor search rejected")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
