package handlers

import (
	"fmt"
	"net/http"
	"time"

	"sevagan-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// StreamHandler serves the live need feed over Server-Sent Events
type StreamHandler struct {
	needService *services.NeedService
	heartbeat   time.Duration
}

// NewStreamHandler creates a new SSE handler. A non-positive heartbeat
// disables keep-alive comments.
func NewStreamHandler(needService *services.NeedService, heartbeat time.Duration) *StreamHandler {
	return &StreamHandler{
		needService: needService,
		heartbeat:   heartbeat,
	}
}

// Stream handles GET /api/needs/stream. Each need created after the client
// connects is written as one "data: <json>" event.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, "Streaming unsupported", CodeInternal, http.StatusInternalServerError)
		return
	}

	// the server write timeout would otherwise cut the stream
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug().Err(err).Msg("Failed to clear write deadline for stream")
	}

	sub := h.needService.Subscribe(r.Context())
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	var tick <-chan time.Time
	if h.heartbeat > 0 {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case payload, ok := <-sub.Events():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				log.Debug().Err(err).Str("subscription_id", sub.ID()).Msg("Stream write failed")
				return
			}
			flusher.Flush()
		case <-tick:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
