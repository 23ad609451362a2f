package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"playlake/internal/secrets"
)

// ErrNoCachedToken is returned when no token has been seeded or cached
// yet. Recovery is interactive (the authorize command), never automatic.
var ErrNoCachedToken = errors.New("no cached token: run the authorize command to seed the token cache")

// Authenticator builds authenticated HTTP clients from the cached
// refresh token.
type Authenticator struct {
	cfg   *oauth2.Config
	cache *TokenCache
}

// New creates an Authenticator from the Spotify credentials and a token
// cache.
func New(creds *secrets.Credentials, cache *TokenCache) *Authenticator {
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       []string{spotifyauth.ScopeUserReadRecentlyPlayed},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}

	return &Authenticator{cfg: cfg, cache: cache}
}

// Client returns an HTTP client that injects and transparently refreshes
// the access token, plus a persist function that writes a refreshed
// token back to the cache. Call persist after the API work is done.
// Returns ErrNoCachedToken when the cache is empty.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, func() error, error) {
	token, err := a.cache.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading cached token: %w", err)
	}
	if token == nil {
		return nil, nil, ErrNoCachedToken
	}

	source := a.cfg.TokenSource(ctx, token)
	client := oauth2.NewClient(ctx, source)

	persist := func() error {
		fresh, err := source.Token()
		if err != nil {
			return fmt.Errorf("reading refreshed token: %w", err)
		}
		if fresh.AccessToken == token.AccessToken {
			return nil
		}
		return a.cache.Save(fresh)
	}

	return client, persist, nil
}
