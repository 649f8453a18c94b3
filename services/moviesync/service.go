package moviesync

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"reelsync/models"
	"reelsync/services/trakt"
	"reelsync/services/users"
)

// ErrNoLinkedAccount reports a sync requested for a user without a valid
// Trakt link. It is a normal outcome, not a fetch failure; callers check it
// before treating sync as unavailable.
var ErrNoLinkedAccount = errors.New("user has no linked trakt account")

// TraktAPI is the slice of the Trakt client the engine needs.
type TraktAPI interface {
	GetWatchedMovies(accessToken string) ([]trakt.WatchedItem, error)
	GetRatings(accessToken string) ([]trakt.RatingItem, error)
}

var _ TraktAPI = (*trakt.Client)(nil)

// Service reconciles a user's synced movie partition with their Trakt watch
// history, enriching each movie with the personal rating the user gave it on
// Trakt.
type Service struct {
	api   TraktAPI
	users *users.Service
}

// NewService creates a reconciliation engine backed by the given Trakt API
// and user directory.
func NewService(api TraktAPI, directory *users.Service) *Service {
	return &Service{api: api, users: directory}
}

// Sync fetches the user's watched movies and ratings from Trakt and replaces
// the synced partition wholesale, preserving manual movies.
//
// Any fetch failure aborts the pass: the directory is never updated with
// partial results and the pre-call record is returned alongside the error,
// so a transient Trakt outage never erases previously synced data.
func (s *Service) Sync(name string) (models.User, error) {
	user, ok := s.users.Get(name)
	if !ok {
		return models.User{}, users.ErrUserNotFound
	}

	if !user.HasTraktAccount() {
		slog.Debug("user has no trakt account, skipping sync", "user", user.Name)
		return user, ErrNoLinkedAccount
	}
	token := user.TraktAccessToken()

	var (
		watched []trakt.WatchedItem
		ratings []trakt.RatingItem
	)

	p := pool.New().WithErrors()
	p.Go(func() error {
		items, err := s.api.GetWatchedMovies(token)
		if err != nil {
			return fmt.Errorf("fetch watched movies: %w", err)
		}
		watched = items
		return nil
	})
	p.Go(func() error {
		items, err := s.api.GetRatings(token)
		if err != nil {
			return fmt.Errorf("fetch ratings: %w", err)
		}
		ratings = items
		return nil
	})
	if err := p.Wait(); err != nil {
		slog.Error("trakt sync failed", "user", user.Name, "error", err)
		return user, err
	}

	synced := buildSyncedMovies(watched, ratings)

	// Commit touches only the synced partition under the user's lock, so a
	// manual add that landed while the fetch was in flight survives. A
	// delete that landed drops the commit instead of resurrecting the user.
	updated, err := s.users.ReplaceSyncedMovies(user.Name, synced)
	if err != nil {
		return user, err
	}

	slog.Info("synced trakt movies",
		"user", updated.Name,
		"synced", len(updated.SyncedMovies),
		"manual", len(updated.ManualMovies))

	return updated, nil
}

// buildSyncedMovies converts watched items to synced movie records in the
// order Trakt returned them, attaching each movie's personal rating where one
// exists.
func buildSyncedMovies(watched []trakt.WatchedItem, ratings []trakt.RatingItem) []models.Movie {
	movies := make([]models.Movie, 0, len(watched))
	for _, item := range watched {
		ids := models.ExternalIDs{
			Trakt: item.Movie.IDs.Trakt,
			Slug:  item.Movie.IDs.Slug,
			IMDB:  item.Movie.IDs.IMDB,
			TMDB:  item.Movie.IDs.TMDB,
		}
		rating := ratingFor(ratings, item.Movie.IDs.Trakt)
		movies = append(movies, models.NewSyncedMovie(item.Movie.Title, item.Movie.Year, ids, rating))
	}
	return movies
}

// ratingFor scans the ratings list for the first entry whose movie carries
// the given Trakt id. Absence of a match is not an error; ratings outside
// 1..10 are ignored.
func ratingFor(ratings []trakt.RatingItem, traktID int64) *int {
	if traktID == 0 {
		return nil
	}
	for _, r := range ratings {
		if r.Movie.IDs.Trakt != traktID {
			continue
		}
		if r.Rating < 1 || r.Rating > 10 {
			continue
		}
		rating := r.Rating
		return &rating
	}
	return nil
}
