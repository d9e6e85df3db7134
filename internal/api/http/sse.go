package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/husainf4l/rolekits/internal/auth"
	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/services"
)

// SSEHandler streams CV snapshots over Server-Sent Events. The session
// walks authenticate → authorize → subscribe → initial snapshot →
// stream, and unsubscribes on every exit path. Errors are emitted as a
// single data event so EventSource clients can read them, then the
// stream closes.
type SSEHandler struct {
	authz     auth.Authorizer
	svc       *services.CVService
	keepAlive time.Duration
	log       zerolog.Logger
}

func NewSSEHandler(authz auth.Authorizer, svc *services.CVService, keepAlive time.Duration, log zerolog.Logger) *SSEHandler {
	return &SSEHandler{authz: authz, svc: svc, keepAlive: keepAlive, log: log}
}

// StreamCVUpdates GET /cv-updates/{cvId}?token=<bearer>
func (h *SSEHandler) StreamCVUpdates(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	cvID := mux.Vars(r)["cvId"]

	// EventSource cannot set headers, so the credential arrives as a
	// query parameter.
	user, err := h.authz.ResolveIdentity(ctx, BearerToken(r))
	if err != nil {
		h.writeErrorEvent(w, flusher, "Not authenticated")
		return
	}
	cv, err := h.svc.AuthorizeCV(ctx, user, cvID)
	if err != nil {
		h.writeErrorEvent(w, flusher, sessionErrorMessage(err))
		return
	}

	sub := h.svc.Broker().Subscribe(user.UserID)
	defer h.svc.Broker().Unsubscribe(sub)

	h.log.Debug().Str("cv_id", cvID).Str("user_id", user.UserID).Msg("sse session registered")

	if err := writeEvent(w, flusher, cv); err != nil {
		return
	}

	timer := time.NewTimer(h.keepAlive)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnect: cleanup only, nothing to report.
			return
		case snapshot := <-sub.C:
			if err := writeEvent(w, flusher, snapshot); err != nil {
				return
			}
		case <-timer.C:
			// Idle window elapsed: re-fetch and re-send the current
			// state so intermediaries keep the stream open and any
			// update lost to a race is repaired.
			current, err := h.svc.GetCV(ctx, user, cvID)
			if err != nil {
				h.writeErrorEvent(w, flusher, sessionErrorMessage(err))
				return
			}
			if err := writeEvent(w, flusher, current); err != nil {
				return
			}
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(h.keepAlive)
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func (h *SSEHandler) writeErrorEvent(w http.ResponseWriter, flusher http.Flusher, msg string) {
	if err := writeEvent(w, flusher, map[string]string{"error": msg}); err != nil {
		h.log.Debug().Err(err).Msg("failed to write sse error event")
	}
}

func sessionErrorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrUnauthenticated):
		return "Not authenticated"
	case errors.Is(err, model.ErrNotAuthorized):
		return "Not authorized"
	case errors.Is(err, model.ErrNotFound):
		return "CV not found"
	default:
		return err.Error()
	}
}
