package skills

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/portfolio-site/internal/dto"
	"github.com/ayush/portfolio-site/internal/httpx"
)

// Handler holds skill HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns every skill.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.SkillsFromModels(list))
}

// Get returns a single skill.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sk, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.SkillFromModel(sk))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SkillRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sk, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.SkillFromModel(sk))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.SkillRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sk, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.SkillFromModel(sk))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Skill deleted")
}
