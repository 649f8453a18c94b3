package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"reelsync/handlers"
	"reelsync/models"
	"reelsync/services/moviesync"
	"reelsync/services/users"
)

type fakeSyncer struct {
	user models.User
	err  error
}

func (f *fakeSyncer) Sync(name string) (models.User, error) {
	return f.user, f.err
}

func newMoviesRouter(directory *users.Service, syncer *fakeSyncer) *mux.Router {
	h := handlers.NewMoviesHandler(directory, syncer)

	r := mux.NewRouter()
	r.HandleFunc("/api/movies/{name}/watched", h.Watched).Methods(http.MethodGet)
	r.HandleFunc("/api/movies/{name}/all", h.All).Methods(http.MethodGet)
	r.HandleFunc("/api/movies/{name}/sync", h.Sync).Methods(http.MethodPost)
	r.HandleFunc("/api/movies/{name}/manual", h.AddManual).Methods(http.MethodPost)
	r.HandleFunc("/api/movies/{name}/manual", h.RemoveManual).Methods(http.MethodDelete)
	return r
}

func seedUser(t *testing.T, directory *users.Service, name string) {
	t.Helper()
	if _, err := directory.Create(name); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
}

func TestMoviesHandler_Watched(t *testing.T) {
	directory := users.NewService()
	seedUser(t, directory, "alice")

	manual, _ := models.NewManualMovie("Manual", 2001, nil)
	if _, err := directory.AddManualMovie("alice", manual); err != nil {
		t.Fatalf("add: %v", err)
	}
	synced := []models.Movie{models.NewSyncedMovie("Synced", 2002, models.ExternalIDs{Trakt: 1}, nil)}
	if _, err := directory.ReplaceSyncedMovies("alice", synced); err != nil {
		t.Fatalf("replace: %v", err)
	}

	router := newMoviesRouter(directory, &fakeSyncer{})
	req := httptest.NewRequest(http.MethodGet, "/api/movies/alice/watched", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var movies []models.Movie
	if err := json.Unmarshal(rec.Body.Bytes(), &movies); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	if movies[0].Title != "Manual" || movies[1].Title != "Synced" {
		t.Fatalf("unexpected order: %q then %q", movies[0].Title, movies[1].Title)
	}
}

func TestMoviesHandler_WatchedUnknownUser(t *testing.T) {
	router := newMoviesRouter(users.NewService(), &fakeSyncer{})

	req := httptest.NewRequest(http.MethodGet, "/api/movies/ghost/watched", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMoviesHandler_All(t *testing.T) {
	directory := users.NewService()
	seedUser(t, directory, "alice")
	manual, _ := models.NewManualMovie("Manual", 2001, nil)
	if _, err := directory.AddManualMovie("alice", manual); err != nil {
		t.Fatalf("add: %v", err)
	}

	router := newMoviesRouter(directory, &fakeSyncer{})
	req := httptest.NewRequest(http.MethodGet, "/api/movies/alice/all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var views map[string][]models.Movie
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(views["manualMovies"]) != 1 || len(views["syncedMovies"]) != 0 || len(views["allMovies"]) != 1 {
		t.Fatalf("unexpected view sizes: %d/%d/%d",
			len(views["manualMovies"]), len(views["syncedMovies"]), len(views["allMovies"]))
	}
}

func TestMoviesHandler_SyncSuccess(t *testing.T) {
	user := models.NewUser("alice")
	user.SyncedMovies = []models.Movie{models.NewSyncedMovie("Heat", 1995, models.ExternalIDs{Trakt: 1}, nil)}

	router := newMoviesRouter(users.NewService(), &fakeSyncer{user: user})
	req := httptest.NewRequest(http.MethodPost, "/api/movies/alice/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["syncedMovies"] != float64(1) {
		t.Fatalf("unexpected synced count %v", resp["syncedMovies"])
	}
}

func TestMoviesHandler_SyncErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown user", users.ErrUserNotFound, http.StatusNotFound},
		{"no linked account", moviesync.ErrNoLinkedAccount, http.StatusBadRequest},
		{"remote failure", errors.New("fetch watched movies: 503"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newMoviesRouter(users.NewService(), &fakeSyncer{err: tc.err})
			req := httptest.NewRequest(http.MethodPost, "/api/movies/alice/sync", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestMoviesHandler_AddManual(t *testing.T) {
	directory := users.NewService()
	seedUser(t, directory, "alice")
	router := newMoviesRouter(directory, &fakeSyncer{})

	body := bytes.NewBufferString(`{"title": "Brazil", "year": 1985, "rating": 9}`)
	req := httptest.NewRequest(http.MethodPost, "/api/movies/alice/manual", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	user, _ := directory.Get("alice")
	if len(user.ManualMovies) != 1 {
		t.Fatalf("expected movie stored, got %d", len(user.ManualMovies))
	}
	if user.ManualMovies[0].Source != models.SourceManual {
		t.Fatalf("expected manual source, got %q", user.ManualMovies[0].Source)
	}
}

func TestMoviesHandler_AddManualValidation(t *testing.T) {
	directory := users.NewService()
	seedUser(t, directory, "alice")
	router := newMoviesRouter(directory, &fakeSyncer{})

	cases := []struct {
		name string
		body string
	}{
		{"blank title", `{"title": "  ", "year": 1985}`},
		{"missing year", `{"title": "Brazil"}`},
		{"rating too low", `{"title": "Brazil", "year": 1985, "rating": 0}`},
		{"rating too high", `{"title": "Brazil", "year": 1985, "rating": 11}`},
		{"unknown field", `{"title": "Brazil", "year": 1985, "director": "Gilliam"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/movies/alice/manual", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}

	user, _ := directory.Get("alice")
	if len(user.ManualMovies) != 0 {
		t.Fatalf("rejected requests must not store movies, got %d", len(user.ManualMovies))
	}
}

func TestMoviesHandler_AddManualUnknownUser(t *testing.T) {
	router := newMoviesRouter(users.NewService(), &fakeSyncer{})

	body := bytes.NewBufferString(`{"title": "Brazil", "year": 1985}`)
	req := httptest.NewRequest(http.MethodPost, "/api/movies/ghost/manual", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMoviesHandler_RemoveManual(t *testing.T) {
	directory := users.NewService()
	seedUser(t, directory, "alice")
	manual, _ := models.NewManualMovie("Brazil", 1985, nil)
	if _, err := directory.AddManualMovie("alice", manual); err != nil {
		t.Fatalf("add: %v", err)
	}
	router := newMoviesRouter(directory, &fakeSyncer{})

	body := bytes.NewBufferString(`{"title": "Brazil", "year": 1985}`)
	req := httptest.NewRequest(http.MethodDelete, "/api/movies/alice/manual", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, _ := directory.Get("alice")
	if len(user.ManualMovies) != 0 {
		t.Fatal("expected movie removed")
	}
}

func TestMoviesHandler_RemoveManualNoMatch(t *testing.T) {
	directory := users.NewService()
	seedUser(t, directory, "alice")
	router := newMoviesRouter(directory, &fakeSyncer{})

	body := bytes.NewBufferString(`{"title": "Brazil", "year": 1985}`)
	req := httptest.NewRequest(http.MethodDelete, "/api/movies/alice/manual", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when nothing matches, got %d", rec.Code)
	}
}
