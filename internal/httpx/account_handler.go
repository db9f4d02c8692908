package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/address"
	"github.com/ariefcatur/go-storefront/internal/identity"
	"github.com/go-chi/chi/v5"
)

type AddressBook interface {
	List(ctx context.Context, userID string) ([]address.Address, error)
	Add(ctx context.Context, userID string, in address.Input) (address.Address, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

type ProfileEditor interface {
	Update(ctx context.Context, userID string, in identity.ProfileInput) (identity.Profile, error)
}

// AccountHandler serves the profile page: profile fields and addresses.
type AccountHandler struct {
	Addresses AddressBook
	Profiles  ProfileEditor
	Log       *slog.Logger
}

func (h *AccountHandler) Register(r chi.Router) {
	r.Get("/profile", h.profile)
	r.Patch("/profile", h.updateProfile)
	r.Get("/addresses", h.addresses)
	r.Post("/addresses", h.addAddress)
	r.Delete("/addresses/{id}", h.deleteAddress)
	r.Post("/addresses/{id}/default", h.setDefault)
}

func (h *AccountHandler) profile(w http.ResponseWriter, r *http.Request) {
	id, ok := user(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id.UserID, "profile": id.Profile, "is_admin": id.IsAdmin()})
}

func (h *AccountHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := user(w, r)
	if !ok {
		return
	}
	var in identity.ProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.Profiles.Update(r.Context(), id.UserID, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AccountHandler) addresses(w http.ResponseWriter, r *http.Request) {
	id, ok := user(w, r)
	if !ok {
		return
	}
	as, err := h.Addresses.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, as)
}

func (h *AccountHandler) addAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := user(w, r)
	if !ok {
		return
	}
	var in address.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := h.Addresses.Add(r.Context(), id.UserID, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AccountHandler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := user(w, r)
	if !ok {
		return
	}
	if err := h.Addresses.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) setDefault(w http.ResponseWriter, r *http.Request) {
	id, ok := user(w, r)
	if !ok {
		return
	}
	if err := h.Addresses.SetDefault(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
