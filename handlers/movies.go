package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"reelsync/models"
	"reelsync/services/moviesync"
	"reelsync/services/users"
)

type movieDirectory interface {
	Get(name string) (models.User, bool)
	AddManualMovie(name string, movie models.Movie) (models.User, error)
	RemoveManualMovie(name, title string, year int) (bool, error)
}

var _ movieDirectory = (*users.Service)(nil)

// MoviesHandler serves the watched-movie views and manual-entry operations.
type MoviesHandler struct {
	directory movieDirectory
	syncer    syncService
}

func NewMoviesHandler(directory movieDirectory, syncer syncService) *MoviesHandler {
	return &MoviesHandler{directory: directory, syncer: syncer}
}

// Watched returns the combined watched-movie view: manual entries followed
// by synced entries.
func (h *MoviesHandler) Watched(w http.ResponseWriter, r *http.Request) {
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
	json.NewEncoder(w).Encode(user.AllWatchedMovies())
}

// All returns the three provenance views in one response so callers can
// distinguish manual from synced entries without separate calls.
func (h *MoviesHandler) All(w http.ResponseWriter, r *http.Request) {
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
	json.NewEncoder(w).Encode(map[string][]models.Movie{
		"manualMovies": user.ManualMovies,
		"syncedMovies": user.SyncedMovies,
		"allMovies":    user.AllWatchedMovies(),
	})
}

// Sync triggers a Trakt reconciliation pass for the user.
func (h *MoviesHandler) Sync(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	if name == "" {
		http.Error(w, "user name is required", http.StatusBadRequest)
		return
	}

	user, err := h.syncer.Sync(name)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, moviesync.ErrNoLinkedAccount):
			writeJSONError(w, "user does not have a linked trakt account", http.StatusBadRequest)
		default:
			// Remote failure: prior state is retained, the caller just
			// learns the refresh did not happen.
			writeJSONError(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message":      "trakt movies synced successfully",
		"user":         user.Name,
		"totalMovies":  len(user.AllWatchedMovies()),
		"syncedMovies": len(user.SyncedMovies),
		"manualMovies": len(user.ManualMovies),
	})
}

// AddManual appends a manually entered movie to the user's manual partition.
func (h *MoviesHandler) AddManual(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	if name == "" {
		http.Error(w, "user name is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Title  string `json:"title"`
		Year   *int   `json:"year"`
		Rating *int   `json:"rating"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Year == nil {
		writeJSONError(w, "year must be an integer", http.StatusBadRequest)
		return
	}

	movie, err := models.NewManualMovie(strings.TrimSpace(body.Title), *body.Year, body.Rating)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.directory.AddManualMovie(name, movie); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, users.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(movie)
}

// RemoveManual removes the first manual entry matching the given title and
// year.
func (h *MoviesHandler) RemoveManual(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	if name == "" {
		http.Error(w, "user name is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Title string `json:"title"`
		Year  *int   `json:"year"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		writeJSONError(w, models.ErrTitleRequired.Error(), http.StatusBadRequest)
		return
	}
	if body.Year == nil {
		writeJSONError(w, "year must be an integer", http.StatusBadRequest)
		return
	}

	removed, err := h.directory.RemoveManualMovie(name, strings.TrimSpace(body.Title), *body.Year)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, users.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	if !removed {
		writeJSONError(w, "movie not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": "movie removed successfully",
		"title":   strings.TrimSpace(body.Title),
		"year":    *body.Year,
	})
}

func writeJSONError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
