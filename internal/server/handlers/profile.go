// internal/server/handlers/profile.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"socialpulse/internal/domain/profile"
)

// ProfileService is the part of the pulse service that manages the
// profile and tracked accounts
type ProfileService interface {
	Profile() *profile.Profile
	Accounts() []profile.TrackedAccount
	UpdateProfile(ctx context.Context, p *profile.Profile) error
	UpdateAccounts(ctx context.Context, accounts []profile.TrackedAccount) error
}

// ProfileHandler handles profile and tracked account requests
type ProfileHandler struct {
	service ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

type accountsBody struct {
	Accounts []profile.TrackedAccount `json:"accounts"`
}

// GetProfile returns the current profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p := h.service.Profile()
	if p == nil {
		respondWithError(w, http.StatusNotFound, "No profile loaded", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// UpdateProfile replaces the current profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p.Normalize()
	if p.IsEmpty() {
		respondWithError(w, http.StatusBadRequest, "Profile needs a name, keywords, hashtags or components", nil)
		return
	}

	if err := h.service.UpdateProfile(r.Context(), &p); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update profile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.service.Profile())
}

// GetAccounts returns the tracked accounts
func (h *ProfileHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, accountsBody{Accounts: h.service.Accounts()})
}

// UpdateAccounts replaces the tracked accounts
func (h *ProfileHandler) UpdateAccounts(w http.ResponseWriter, r *http.Request) {
	var body accountsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.service.UpdateAccounts(r.Context(), body.Accounts); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update tracked accounts", err)
		return
	}

	respondWithJSON(w, http.StatusOK, accountsBody{Accounts: h.service.Accounts()})
}
