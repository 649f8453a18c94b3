package models

import (
	"encoding/json"
	"strings"
	"time"
)

// TraktAccount holds the credentials and metadata for a user's linked Trakt
// account.
type TraktAccount struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	LinkedAt     time.Time `json:"linkedAt"`
	Username     string    `json:"username,omitempty"`
	UserID       string    `json:"userId,omitempty"`
}

// HasValidToken reports whether the account carries a usable access token.
// A link with a blank token is treated as absent.
func (a *TraktAccount) HasValidToken() bool {
	return a != nil && strings.TrimSpace(a.AccessToken) != ""
}

// Clone returns an independent copy, or nil for a nil receiver.
func (a *TraktAccount) Clone() *TraktAccount {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// User models a reelsync profile. Movies live in two partitions: manual
// entries survive every sync, synced entries are replaced wholesale by each
// successful sync.
type User struct {
	Name         string        `json:"name"`
	ManualMovies []Movie       `json:"manualMovies"`
	SyncedMovies []Movie       `json:"syncedMovies"`
	TraktAccount *TraktAccount `json:"traktAccount,omitempty"`
}

// NewUser creates an empty profile with the given name.
func NewUser(name string) User {
	return User{
		Name:         name,
		ManualMovies: []Movie{},
		SyncedMovies: []Movie{},
	}
}

// HasTraktAccount reports whether the user has a linked account with a valid
// token.
func (u User) HasTraktAccount() bool {
	return u.TraktAccount.HasValidToken()
}

// TraktAccessToken returns the linked account's access token, or "" when the
// user has no usable link.
func (u User) TraktAccessToken() string {
	if !u.HasTraktAccount() {
		return ""
	}
	return u.TraktAccount.AccessToken
}

// AllWatchedMovies returns the manual and synced partitions concatenated in
// that order. The view is computed per call, never stored.
func (u User) AllWatchedMovies() []Movie {
	all := make([]Movie, 0, len(u.ManualMovies)+len(u.SyncedMovies))
	all = append(all, u.ManualMovies...)
	all = append(all, u.SyncedMovies...)
	return all
}

// Clone returns a deep copy sharing no slices or pointers with the receiver.
func (u User) Clone() User {
	return User{
		Name:         u.Name,
		ManualMovies: CloneMovies(u.ManualMovies),
		SyncedMovies: CloneMovies(u.SyncedMovies),
		TraktAccount: u.TraktAccount.Clone(),
	}
}

// MarshalJSON implements custom JSON marshaling to include the computed
// hasTraktAccount field.
func (u User) MarshalJSON() ([]byte, error) {
	type UserAlias User // prevent recursion
	return json.Marshal(&struct {
		UserAlias
		HasTraktAccount bool `json:"hasTraktAccount"`
	}{
		UserAlias:       UserAlias(u),
		HasTraktAccount: u.HasTraktAccount(),
	})
}
