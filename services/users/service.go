package users

import (
	"errors"
	"strings"
	"sync"
	"time"

	"reelsync/models"
)

var (
	ErrNameRequired         = errors.New("name is required")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrManualSourceRequired = errors.New("manual partition accepts only manually entered movies")
	ErrSyncedSourceRequired = errors.New("synced partition accepts only trakt-sourced movies")
)

// Service is the in-memory directory of reelsync users keyed by name. State
// lives for the process lifetime only.
//
// Locking is two-level: the service mutex guards the name map, and each entry
// carries its own mutex so record read-modify-writes serialize per user
// without a directory-wide lock. Snapshot therefore never blocks creates or
// updates for unrelated names.
type Service struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	deleted bool
	user    models.User
}

// NewService creates an empty user directory.
func NewService() *Service {
	return &Service{entries: make(map[string]*entry)}
}

// Create registers a new user with the provided name. Exactly one of two
// concurrent creates for the same name succeeds; the other gets
// ErrUserExists.
func (s *Service) Create(name string) (models.User, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.User{}, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[trimmed]; exists {
		return models.User{}, ErrUserExists
	}

	e := &entry{user: models.NewUser(trimmed)}
	s.entries[trimmed] = e

	return e.user.Clone(), nil
}

// Get returns a deep copy of the user with the given name if present.
func (s *Service) Get(name string) (models.User, bool) {
	e, ok := s.lookup(name)
	if !ok {
		return models.User{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return models.User{}, false
	}
	return e.user.Clone(), true
}

// Exists reports whether a user with the provided name is registered.
func (s *Service) Exists(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Replace overwrites the stored record for user.Name, but only while that
// name is still registered. A replace that loses a race with Delete is
// dropped with ErrUserNotFound rather than resurrecting the user.
func (s *Service) Replace(user models.User) (models.User, error) {
	name := strings.TrimSpace(user.Name)
	if name == "" {
		return models.User{}, ErrUserNotFound
	}

	e, ok := s.lookup(name)
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return models.User{}, ErrUserNotFound
	}

	user.Name = name
	e.user = user.Clone()

	return e.user.Clone(), nil
}

// Delete removes a user by name and reports whether it existed.
func (s *Service) Delete(name string) bool {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	e, ok := s.entries[name]
	if ok {
		delete(s.entries, name)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	// Mark the detached entry so in-flight updates that still hold a
	// pointer to it report absence instead of writing into limbo.
	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()

	return true
}

// Snapshot returns a fully independent deep copy of every user. Callers may
// mutate the result freely without any effect on, or visibility into, the
// live directory. The key set is point-in-time; each record is copied under
// its own lock so it is internally consistent.
func (s *Service) Snapshot() map[string]models.User {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	users := make(map[string]models.User, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted {
			u := e.user.Clone()
			users[u.Name] = u
		}
		e.mu.Unlock()
	}

	return users
}

// AddManualMovie appends a manually entered movie to the user's manual
// partition.
func (s *Service) AddManualMovie(name string, movie models.Movie) (models.User, error) {
	if movie.Source != models.SourceManual {
		return models.User{}, ErrManualSourceRequired
	}

	return s.update(name, func(u *models.User) {
		u.ManualMovies = append(u.ManualMovies, movie.Clone())
	})
}

// RemoveManualMovie removes the first manual entry matching (title, year)
// and reports whether one was found. The synced partition is never touched.
func (s *Service) RemoveManualMovie(name, title string, year int) (bool, error) {
	removed := false
	_, err := s.update(name, func(u *models.User) {
		for i := range u.ManualMovies {
			if u.ManualMovies[i].Matches(title, year) {
				u.ManualMovies = append(u.ManualMovies[:i], u.ManualMovies[i+1:]...)
				removed = true
				return
			}
		}
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// LinkTraktAccount attaches a Trakt account to the user, unconditionally
// overwriting any prior link.
func (s *Service) LinkTraktAccount(name, accessToken, refreshToken string) (models.User, error) {
	return s.update(name, func(u *models.User) {
		u.TraktAccount = &models.TraktAccount{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			LinkedAt:     time.Now().UTC(),
		}
	})
}

// SetTraktProfile records the Trakt username and user id on the linked
// account. Blank values leave the existing ones in place; users without a
// link are left untouched (enrichment is best-effort).
func (s *Service) SetTraktProfile(name, username, userID string) (models.User, error) {
	return s.update(name, func(u *models.User) {
		if u.TraktAccount == nil {
			return
		}
		if strings.TrimSpace(username) != "" {
			u.TraktAccount.Username = username
		}
		if strings.TrimSpace(userID) != "" {
			u.TraktAccount.UserID = userID
		}
	})
}

// UnlinkTraktAccount removes the Trakt account from the user. The synced
// partition is retained as last synced: unlink does not forget history.
func (s *Service) UnlinkTraktAccount(name string) (models.User, error) {
	return s.update(name, func(u *models.User) {
		u.TraktAccount = nil
	})
}

// ReplaceSyncedMovies swaps the user's synced partition wholesale. The
// manual partition is untouched. If the user was deleted in the meantime the
// replace is dropped with ErrUserNotFound.
func (s *Service) ReplaceSyncedMovies(name string, movies []models.Movie) (models.User, error) {
	for i := range movies {
		if movies[i].Source != models.SourceSynced {
			return models.User{}, ErrSyncedSourceRequired
		}
	}

	return s.update(name, func(u *models.User) {
		u.SyncedMovies = models.CloneMovies(movies)
	})
}

func (s *Service) lookup(name string) (*entry, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	return e, ok
}

// update runs fn against the live record under the entry lock and returns a
// deep copy of the result.
func (s *Service) update(name string, fn func(*models.User)) (models.User, error) {
	e, ok := s.lookup(name)
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return models.User{}, ErrUserNotFound
	}

	fn(&e.user)

	return e.user.Clone(), nil
}
