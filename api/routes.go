package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"reelsync/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags each request with an id and logs its outcome.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)

		slog.Debug("request handled",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/index.html", http.StatusFound)
}

// Register mounts all endpoints onto the provided router.
func Register(
	r *mux.Router,
	usersHandler *handlers.UsersHandler,
	moviesHandler *handlers.MoviesHandler,
	authHandler *handlers.AuthHandler,
) {
	r.HandleFunc("/", home).Methods(http.MethodGet)

	// The OAuth callback lives outside /api because its URL is registered
	// verbatim with Trakt.
	r.HandleFunc("/auth/trakt/callback", authHandler.Callback).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware, requestIDMiddleware)

	api.HandleFunc("/users", usersHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users", usersHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users/{name}", usersHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{name}", usersHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{name}/trakt/link", usersHandler.Link).Methods(http.MethodGet)
	api.HandleFunc("/users/{name}/trakt", usersHandler.Unlink).Methods(http.MethodDelete)

	api.HandleFunc("/movies/{name}/watched", moviesHandler.Watched).Methods(http.MethodGet)
	api.HandleFunc("/movies/{name}/all", moviesHandler.All).Methods(http.MethodGet)
	api.HandleFunc("/movies/{name}/sync", moviesHandler.Sync).Methods(http.MethodPost)
	api.HandleFunc("/movies/{name}/manual", moviesHandler.AddManual).Methods(http.MethodPost)
	api.HandleFunc("/movies/{name}/manual", moviesHandler.RemoveManual).Methods(http.MethodDelete)

	api.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(handleOptions)
}
