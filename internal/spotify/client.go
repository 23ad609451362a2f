// Package spotify provides a typed client for the Spotify Web API
// endpoints the pipeline consumes.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	baseURL   = "https://api.spotify.com/v1"
	userAgent = "playlake/1.0"

	// MaxRecentlyPlayed is the page-size ceiling the API enforces.
	MaxRecentlyPlayed = 50
)

// Client calls the Spotify Web API. The HTTP client is expected to carry
// authentication (an oauth2 transport that refreshes transparently).
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a client on top of an authenticated *http.Client.
func New(httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// RecentlyPlayed fetches up to limit most-recent play events. The limit
// is clamped to MaxRecentlyPlayed. Every item is validated at the parse
// boundary; one malformed item fails the whole batch.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]PlayItem, error) {
	if limit <= 0 || limit > MaxRecentlyPlayed {
		limit = MaxRecentlyPlayed
	}

	endpoint := fmt.Sprintf("%s/me/player/recently-played?%s", c.baseURL, url.Values{
		"limit": {strconv.Itoa(limit)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling recently-played: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("recently-played returned %d: %s", resp.StatusCode, body)
	}

	var parsed recentlyPlayedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing recently-played response: %w", err)
	}

	for i := range parsed.Items {
		if err := parsed.Items[i].validate(i); err != nil {
			return nil, err
		}
	}

	return parsed.Items, nil
}
