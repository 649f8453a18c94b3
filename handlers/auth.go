package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"reelsync/models"
	"reelsync/services/moviesync"
	"reelsync/services/trakt"
	"reelsync/services/users"
)

type accountLinker interface {
	LinkTraktAccount(name, accessToken, refreshToken string) (models.User, error)
	SetTraktProfile(name, username, userID string) (models.User, error)
}

var _ accountLinker = (*users.Service)(nil)

type traktAuthClient interface {
	ExchangeCode(code string) (*trakt.TokenResponse, error)
	GetUserProfile(accessToken string) (map[string]any, error)
}

var _ traktAuthClient = (*trakt.Client)(nil)

type syncService interface {
	Sync(name string) (models.User, error)
}

var _ syncService = (*moviesync.Service)(nil)

// AuthHandler finishes the Trakt OAuth flow: it receives the authorization
// code on the redirect back from Trakt, exchanges it for tokens, links the
// account named by the state parameter, and kicks off an initial sync.
type AuthHandler struct {
	directory accountLinker
	trakt     traktAuthClient
	syncer    syncService
}

func NewAuthHandler(directory accountLinker, traktClient traktAuthClient, syncer syncService) *AuthHandler {
	return &AuthHandler{directory: directory, trakt: traktClient, syncer: syncer}
}

// Callback handles the OAuth redirect from Trakt.
//
// Profile enrichment and the initial sync are best-effort: a failure in
// either is logged but never fails the link itself.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("error") != "" {
		// User denied or Trakt rejected the authorization; send them home.
		http.Redirect(w, r, "/index.html", http.StatusFound)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(q.Get("state"))
	if name == "" {
		http.Error(w, "state is required", http.StatusBadRequest)
		return
	}

	token, err := h.trakt.ExchangeCode(code)
	if err != nil {
		slog.Error("trakt token exchange failed", "user", name, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if _, err := h.directory.LinkTraktAccount(name, token.AccessToken, token.RefreshToken); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, users.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	if profile, err := h.trakt.GetUserProfile(token.AccessToken); err != nil {
		slog.Warn("trakt profile fetch failed, leaving username unset", "user", name, "error", err)
	} else {
		username := trakt.UsernameFromProfile(profile)
		userID := trakt.UserIDFromProfile(profile)
		if _, err := h.directory.SetTraktProfile(name, username, userID); err != nil {
			slog.Warn("failed to record trakt profile", "user", name, "error", err)
		}
	}

	if _, err := h.syncer.Sync(name); err != nil && !errors.Is(err, moviesync.ErrNoLinkedAccount) {
		slog.Warn("initial trakt sync failed after linking", "user", name, "error", err)
	}

	http.Redirect(w, r, "/index.html", http.StatusFound)
}
