package http

import (
	"context"
	"net/http"
	"time"

	"github.com/husainf4l/rolekits/internal/api/respond"
)

// HealthPinger is implemented by store drivers that can report
// connectivity.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

type HealthHandler struct {
	pinger HealthPinger
}

func NewHealthHandler(p HealthPinger) *HealthHandler {
	return &HealthHandler{pinger: p}
}

// CheckHealth GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.HealthPing(ctx); err != nil {
			respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"db":     err.Error(),
			})
			return
		}
	}
	respond.WriteJSON(w, http.StatusOK, status)
}
