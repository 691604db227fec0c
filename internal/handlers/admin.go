package handlers

import (
	"net/http"

	"sevagan-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AdminHandler exposes counters and the dev data endpoints
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Stats handles GET /api/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.adminService.Stats(r.Context()))
}

// Data handles GET /api/admin/data
func (h *AdminHandler) Data(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.adminService.Snapshot(r.Context()))
}

// Seed handles GET and POST /api/admin/seed
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.Seed(r.Context()); err != nil {
		log.Error().Err(err).Msg("Failed to seed data")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"stats": h.adminService.Stats(r.Context()),
	})
}

// Clear handles POST /api/admin/clear
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.adminService.Clear(r.Context())
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Health handles GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
