package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/husainf4l/rolekits/internal/api/respond"
	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/services"
)

type CVHandler struct {
	svc *services.CVService
}

func NewCVHandler(svc *services.CVService) *CVHandler {
	return &CVHandler{svc: svc}
}

// CreateCV POST /api/cvs
func (h *CVHandler) CreateCV(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		respond.WriteDomainError(w, model.ErrUnauthenticated)
		return
	}
	var patch model.CVPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.CreateCV(r.Context(), actor, patch)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListCVs GET /api/cvs
func (h *CVHandler) ListCVs(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		respond.WriteDomainError(w, model.ErrUnauthenticated)
		return
	}
	out, err := h.svc.ListCVs(r.Context(), actor)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []*model.CV{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"cvs": out, "count": len(out)})
}

// GetCV GET /api/cvs/{cvId}
func (h *CVHandler) GetCV(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		respond.WriteDomainError(w, model.ErrUnauthenticated)
		return
	}
	out, err := h.svc.GetCV(r.Context(), actor, mux.Vars(r)["cvId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// UpdateCV PATCH /api/cvs/{cvId}
func (h *CVHandler) UpdateCV(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		respond.WriteDomainError(w, model.ErrUnauthenticated)
		return
	}
	var patch model.CVPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.UpdateCV(r.Context(), actor, mux.Vars(r)["cvId"], patch)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteCV DELETE /api/cvs/{cvId}
func (h *CVHandler) DeleteCV(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		respond.WriteDomainError(w, model.ErrUnauthenticated)
		return
	}
	if err := h.svc.DeleteCV(r.Context(), actor, mux.Vars(r)["cvId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
