package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prn-tf/marketplace/internal/serializer"
	"github.com/prn-tf/marketplace/internal/service"
)

// AuthHandler serves the login endpoint.
type AuthHandler struct {
	*responder
	auth *service.AuthService
}

// RegisterRoutes registers authentication routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	out, err := h.auth.Login(r.Context(), body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serializer.TokenView{Token: out.Token.Key})
}
