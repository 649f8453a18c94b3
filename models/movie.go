package models

import (
	"errors"
	"strings"
)

// MovieSource tags where a movie record came from.
type MovieSource string

const (
	// SourceManual marks movies entered directly by the caller.
	SourceManual MovieSource = "manual"
	// SourceSynced marks movies fetched from Trakt during a sync.
	SourceSynced MovieSource = "synced"
)

var (
	ErrTitleRequired    = errors.New("title must be a non-empty string")
	ErrRatingOutOfRange = errors.New("rating must be an integer between 1 and 10")
)

// ExternalIDs holds the identifiers Trakt attaches to a movie. Trakt is the
// primary id used for matching; the rest are opaque cross-references.
type ExternalIDs struct {
	Trakt int64  `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int64  `json:"tmdb,omitempty"`
}

// Movie is one watched movie, either manually entered or synced from Trakt.
// Manual movies never carry an IDs block; synced movies always do.
type Movie struct {
	Source MovieSource  `json:"source"`
	Title  string       `json:"title"`
	Year   int          `json:"year"`
	Rating *int         `json:"rating,omitempty"`
	IDs    *ExternalIDs `json:"ids,omitempty"`
}

// NewManualMovie validates and builds a manually entered movie. Ratings
// outside 1..10 are rejected, never clamped.
func NewManualMovie(title string, year int, rating *int) (Movie, error) {
	if strings.TrimSpace(title) == "" {
		return Movie{}, ErrTitleRequired
	}
	if rating != nil && (*rating < 1 || *rating > 10) {
		return Movie{}, ErrRatingOutOfRange
	}
	return Movie{
		Source: SourceManual,
		Title:  title,
		Year:   year,
		Rating: cloneRating(rating),
	}, nil
}

// NewSyncedMovie builds a Trakt-sourced movie carrying its external ids.
func NewSyncedMovie(title string, year int, ids ExternalIDs, rating *int) Movie {
	return Movie{
		Source: SourceSynced,
		Title:  title,
		Year:   year,
		Rating: cloneRating(rating),
		IDs:    &ids,
	}
}

// Matches reports whether the movie has the given title and year. This is
// the identity used when removing manual entries.
func (m Movie) Matches(title string, year int) bool {
	return m.Title == title && m.Year == year
}

// Clone returns a deep copy sharing no pointers with the receiver.
func (m Movie) Clone() Movie {
	c := m
	c.Rating = cloneRating(m.Rating)
	if m.IDs != nil {
		ids := *m.IDs
		c.IDs = &ids
	}
	return c
}

// CloneMovies deep-copies a movie slice. A nil input yields an empty,
// non-nil slice so callers can append safely.
func CloneMovies(movies []Movie) []Movie {
	out := make([]Movie, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Clone())
	}
	return out
}

func cloneRating(r *int) *int {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}
