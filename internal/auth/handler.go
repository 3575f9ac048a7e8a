package auth

import (
	"net/http"
	"strings"

	"github.com/ayush/portfolio-site/internal/dto"
	"github.com/ayush/portfolio-site/internal/httpx"
)

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register creates a new user and returns a token for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sess, err := h.svc.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.AuthResponse{Token: sess.Token, User: sess.User})
}

// Login authenticates a user and issues a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.AuthResponse{Token: sess.Token, User: sess.User})
}

// Validate reports whether the bearer token is still good.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Validate(r.Context(), BearerToken(r))
	if err != nil {
		if httpx.StatusFor(err) == http.StatusUnauthorized {
			httpx.WriteJSON(w, http.StatusUnauthorized, dto.ValidateResponse{Valid: false})
			return
		}
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.ValidateResponse{Valid: true, User: &user})
}

// Logout revokes the bearer token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), BearerToken(r)); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Logged out")
}
