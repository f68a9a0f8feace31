package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rottenolives/rottenolives/src/music"
)

const (
	defaultAPIURL      = "https://api.spotify.com"
	defaultAccountsURL = "https://accounts.spotify.com"

	requestTimeout = 15 * time.Second

	// tokens are refreshed slightly before they actually expire
	tokenExpirySlack = 30 * time.Second

	// the batch album endpoint accepts at most 20 ids per call
	albumBatchSize = 20
)

// APIError is a non-2xx response from the catalog API, surfaced with the
// upstream status and body for operator diagnosis.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify returned status %d: %s", e.Status, e.Body)
}

// Client talks to the Spotify Web API using the refresh-token flow.
// It caches the access token until near its expiry; a racing refresh from
// two requests is harmless, both end up with a valid token.
type Client struct {
	httpClient   *http.Client
	apiURL       string
	accountsURL  string
	clientID     string
	clientSecret string
	refreshToken string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewClient creates a new Spotify client.
func NewClient(clientID, clientSecret, refreshToken string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: requestTimeout},
		apiURL:       defaultAPIURL,
		accountsURL:  defaultAccountsURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
	}
}

// SetBaseURLs overrides the API endpoints. Used by tests.
func (c *Client) SetBaseURLs(apiURL, accountsURL string) {
	c.apiURL = strings.TrimSuffix(apiURL, "/")
	c.accountsURL = strings.TrimSuffix(accountsURL, "/")
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid access token, minting a fresh one when the cached
// token is missing or within tokenExpirySlack of expiring.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt.Add(-tokenExpirySlack)) {
		return c.accessToken, nil
	}

	if c.clientID == "" || c.clientSecret == "" || c.refreshToken == "" {
		return "", fmt.Errorf("missing spotify credentials")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}
	if tr.ExpiresIn <= 0 {
		tr.ExpiresIn = 3600
	}

	c.accessToken = tr.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	slog.Debug("Spotify access token refreshed", "expires_in", tr.ExpiresIn)
	return c.accessToken, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
// A 429 response is retried on the same URL after the signaled Retry-After
// delay; any other non-2xx status aborts with an APIError.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	for {
		tok, err := c.token(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			delay := retryAfter(resp.Header.Get("Retry-After"))
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			slog.Debug("Spotify rate limited, backing off", "url", rawURL, "delay", delay.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
}

func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

// Playlist returns the playlist's metadata.
func (c *Client) Playlist(ctx context.Context, playlistID, market string) (*music.CatalogPlaylist, error) {
	u := fmt.Sprintf("%s/v1/playlists/%s?fields=id,name,tracks.total", c.apiURL, url.PathEscape(playlistID))
	if market != "" {
		u += "&market=" + url.QueryEscape(market)
	}

	var resp playlistResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}
	return &music.CatalogPlaylist{ID: resp.ID, Name: resp.Name, Total: resp.Tracks.Total}, nil
}

// PlaylistTracks returns all tracks of the playlist, following the next
// cursor until the last page. A page failure aborts the whole fetch so a
// truncated playlist is never passed off as complete.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID, market string) ([]music.CatalogTrack, error) {
	u := fmt.Sprintf("%s/v1/playlists/%s/tracks?limit=100", c.apiURL, url.PathEscape(playlistID))
	if market != "" {
		u += "&market=" + url.QueryEscape(market)
	}

	var tracks []music.CatalogTrack
	for u != "" {
		var page playlistTracksPage
		if err := c.getJSON(ctx, u, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch playlist tracks: %w", err)
		}
		for _, item := range page.Items {
			if item.Track == nil || (item.Track.Type != "" && item.Track.Type != "track") {
				continue
			}
			tracks = append(tracks, item.Track.toCatalogTrack())
		}
		if page.Next == nil {
			break
		}
		u = *page.Next
	}
	return tracks, nil
}

// AlbumsByIDs looks up albums in batches of albumBatchSize.
func (c *Client) AlbumsByIDs(ctx context.Context, ids []string) ([]music.CatalogAlbum, error) {
	var albums []music.CatalogAlbum
	for start := 0; start < len(ids); start += albumBatchSize {
		end := start + albumBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		u := fmt.Sprintf("%s/v1/albums?ids=%s", c.apiURL, url.QueryEscape(strings.Join(ids[start:end], ",")))

		var resp albumsResponse
		if err := c.getJSON(ctx, u, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch albums: %w", err)
		}
		for _, a := range resp.Albums {
			if a == nil {
				continue
			}
			albums = append(albums, a.toCatalogAlbum())
		}
	}
	return albums, nil
}
