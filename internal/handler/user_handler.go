package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogAPI/internal/models"
)

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, user, http.StatusOK)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var patch models.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.UserService.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, user, http.StatusOK)
}
