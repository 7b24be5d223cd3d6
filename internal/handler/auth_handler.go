package handlers

import (
	"net/http"

	"blogAPI/internal/apperror"
	"blogAPI/internal/auth"
	"blogAPI/internal/models"
	"blogAPI/internal/service"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, AuthResponse{User: user, Token: token}, http.StatusCreated)
}

// Login answers 400 for bad credentials, matching the validation failures
// of the same form.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, token, err := h.AuthService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindAuthentication {
			WriteError(w, apperror.MessageOf(err), http.StatusBadRequest)
			return
		}
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, AuthResponse{User: user, Token: token}, http.StatusOK)
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	user, token, err := h.AuthService.Refresh(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, AuthResponse{User: user, Token: token}, http.StatusOK)
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	writeJSON(w, user, http.StatusOK)
}
