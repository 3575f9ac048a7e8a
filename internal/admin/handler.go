// Package admin serves the admin-only dashboard endpoints.
package admin

import (
	"context"
	"net/http"

	"github.com/ayush/portfolio-site/internal/apperr"
	"github.com/ayush/portfolio-site/internal/httpx"
	"github.com/ayush/portfolio-site/internal/middleware"
	"github.com/ayush/portfolio-site/internal/models"
)

// UserLister lists accounts without their password hashes.
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.PublicUser, error)
}

type DashboardResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
}

// Handler holds admin HTTP handlers. Routes must sit behind
// middleware.RequireAuth with the admin role.
type Handler struct {
	users UserLister
}

func NewHandler(users UserLister) *Handler {
	return &Handler{users: users}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperr.Wrap(apperr.ErrUnauthorized, "Access denied"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, DashboardResponse{Message: "Welcome to admin dashboard", User: u})
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.ListUsers(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
