package trakt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelsync/config"
)

// Client handles Trakt API interactions for OAuth and data fetching.
type Client struct {
	httpClient   *http.Client
	apiBase      string
	webBase      string
	apiVersion   string
	clientID     string
	clientSecret string
	redirectURI  string
}

// TokenResponse represents the response from /oauth/token.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	CreatedAt    int64  `json:"created_at"`
}

// IDs holds external identifiers for a movie. Trakt ids arrive as plain JSON
// numbers of varying width, so they are decoded as int64 throughout.
type IDs struct {
	Trakt int64  `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int64  `json:"tmdb,omitempty"`
}

// Movie represents a Trakt movie.
type Movie struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   IDs    `json:"ids"`
}

// WatchedItem represents one entry from /sync/watched/movies.
type WatchedItem struct {
	Plays         int       `json:"plays"`
	LastWatchedAt time.Time `json:"last_watched_at"`
	Movie         Movie     `json:"movie"`
}

// RatingItem represents one entry from /sync/ratings/movies.
type RatingItem struct {
	RatedAt time.Time `json:"rated_at"`
	Rating  int       `json:"rating"`
	Movie   Movie     `json:"movie"`
}

// NewClient creates a new Trakt API client from the configured credentials
// and endpoints.
func NewClient(cfg config.TraktSettings) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		apiBase:      strings.TrimRight(cfg.APIBase, "/"),
		webBase:      strings.TrimRight(cfg.WebBase, "/"),
		apiVersion:   cfg.APIVersion,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
	}
}

// HasCredentials checks if the client has credentials configured.
func (c *Client) HasCredentials() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// AuthorizeURL builds the Trakt authorize page URL the user is redirected to
// at the start of the OAuth flow. The state round-trips through Trakt back to
// the callback.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("prompt", "login")
	if state != "" {
		q.Set("state", state)
	}
	return c.webBase + "/oauth/authorize?" + q.Encode()
}

// setTraktHeaders adds required Trakt API headers to a request.
func (c *Client) setTraktHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", c.apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
}

// ExchangeCode exchanges an OAuth authorization code for an access token at
// POST /oauth/token.
func (c *Client) ExchangeCode(code string) (*TokenResponse, error) {
	payload := map[string]string{
		"code":          code,
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"redirect_uri":  c.redirectURI,
		"grant_type":    "authorization_code",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiBase+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setTraktHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trakt api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trakt token exchange failed: %s - %s", resp.Status, string(respBody))
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &token, nil
}

// GetWatchedMovies retrieves the user's full watched-movie list from
// GET /sync/watched/movies?extended=full, in the order Trakt returns it.
func (c *Client) GetWatchedMovies(accessToken string) ([]WatchedItem, error) {
	req, err := http.NewRequest(http.MethodGet, c.apiBase+"/sync/watched/movies?extended=full", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setTraktHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trakt api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trakt watched movies failed: %s - %s", resp.Status, string(respBody))
	}

	var items []WatchedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return items, nil
}

// GetRatings retrieves the user's full personal movie ratings from
// GET /sync/ratings/movies.
func (c *Client) GetRatings(accessToken string) ([]RatingItem, error) {
	req, err := http.NewRequest(http.MethodGet, c.apiBase+"/sync/ratings/movies", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setTraktHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trakt api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trakt ratings failed: %s - %s", resp.Status, string(respBody))
	}

	var items []RatingItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return items, nil
}

// GetUserProfile retrieves the authenticated user's profile from /users/me.
// The payload shape varies between deployments, so it is returned opaque for
// the caller to probe.
func (c *Client) GetUserProfile(accessToken string) (map[string]any, error) {
	req, err := http.NewRequest(http.MethodGet, c.apiBase+"/users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setTraktHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trakt api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trakt user profile failed: %s - %s", resp.Status, string(respBody))
	}

	var profile map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return profile, nil
}

// UsernameFromProfile probes the known shapes of a profile payload for the
// username: a top-level field, a nested id-block slug, or either of those
// wrapped in a "user" object. The first non-blank match wins; the probe
// order matters and is deliberate.
func UsernameFromProfile(profile map[string]any) string {
	if profile == nil {
		return ""
	}
	if s := stringField(profile, "username"); s != "" {
		return s
	}
	if ids, ok := profile["ids"].(map[string]any); ok {
		if s := stringField(ids, "slug"); s != "" {
			return s
		}
	}
	if user, ok := profile["user"].(map[string]any); ok {
		if s := stringField(user, "username"); s != "" {
			return s
		}
		if ids, ok := user["ids"].(map[string]any); ok {
			if s := stringField(ids, "slug"); s != "" {
				return s
			}
		}
	}
	return ""
}

// UserIDFromProfile probes for the id-block slug Trakt uses as a stable user
// identifier, either top-level or wrapped in a "user" object.
func UserIDFromProfile(profile map[string]any) string {
	if profile == nil {
		return ""
	}
	if ids, ok := profile["ids"].(map[string]any); ok {
		if s := stringField(ids, "slug"); s != "" {
			return s
		}
	}
	if user, ok := profile["user"].(map[string]any); ok {
		if ids, ok := user["ids"].(map[string]any); ok {
			if s := stringField(ids, "slug"); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
