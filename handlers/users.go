package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"reelsync/models"
	"reelsync/services/users"
)

type userDirectory interface {
	Create(name string) (models.User, error)
	Get(name string) (models.User, bool)
	Delete(name string) bool
	Snapshot() map[string]models.User
	UnlinkTraktAccount(name string) (models.User, error)
}

var _ userDirectory = (*users.Service)(nil)

type authorizeURLBuilder interface {
	AuthorizeURL(state string) string
}

// UsersHandler serves the user directory endpoints and the start of the
// Trakt account linking flow.
type UsersHandler struct {
	directory userDirectory
	trakt     authorizeURLBuilder
}

func NewUsersHandler(directory userDirectory, trakt authorizeURLBuilder) *UsersHandler {
	return &UsersHandler{directory: directory, trakt: trakt}
}

// Create registers a new user.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.directory.Create(body.Name)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, users.ErrNameRequired):
			status = http.StatusBadRequest
		case errors.Is(err, users.ErrUserExists):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// Get returns a single user by name.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	if name == "" {
		http.Error(w, "user name is required", http.StatusBadRequest)
		return
	}

	user, ok := h.directory.Get(name)
	if !ok {
		http.Error(w, users.ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// List returns an isolated snapshot of every user keyed by name.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.directory.Snapshot())
}

// Delete removes a user by name.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	if name == "" {
		http.Error(w, "user name is required", http.StatusBadRequest)
		return
	}

	if !h.directory.Delete(name) {
		http.Error(w, users.ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Link starts the Trakt OAuth flow for a user by redirecting to the Trakt
// authorize page. The user's name rides along as the OAuth state so the
// callback knows which account to link.
func (h *UsersHandler) Link(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	if name == "" {
		http.Error(w, "user name is required", http.StatusBadRequest)
		return
	}

	if _, ok := h.directory.Get(name); !ok {
		http.Error(w, users.ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}

	http.Redirect(w, r, h.trakt.AuthorizeURL(name), http.StatusFound)
}

// Unlink removes the user's Trakt account. Previously synced movies are kept
// as last synced.
func (h *UsersHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	if name == "" {
		http.Error(w, "user name is required", http.StatusBadRequest)
		return
	}

	user, err := h.directory.UnlinkTraktAccount(name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, users.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message":         "trakt account unlinked successfully",
		"user":            user.Name,
		"hasTraktAccount": user.HasTraktAccount(),
	})
}

func pathName(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["name"])
}
