package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const callbackTimeout = 2 * time.Minute

var (
	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// Authorize performs the one-time interactive authorization-code flow
// and seeds the token cache with the result. It listens on the host and
// path of the configured redirect URI, prints the authorization URL, and
// waits for Spotify to call back.
func (a *Authenticator) Authorize(ctx context.Context) error {
	redirect, err := url.Parse(a.cfg.RedirectURL)
	if err != nil {
		return fmt.Errorf("parsing redirect URI: %w", err)
	}

	state, err := generateState()
	if err != nil {
		return fmt.Errorf("generating state: %w", err)
	}

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		a.handleCallback(w, r, state, tokenCh, errCh)
	})

	server := &http.Server{
		Addr:    redirect.Host,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	authURL := a.cfg.AuthCodeURL(state)
	fmt.Println("\nTo authorize, open this URL in your browser:")
	fmt.Println(authURL)
	fmt.Println("\nWaiting for the callback...")

	var token *oauth2.Token
	select {
	case token = <-tokenCh:
		// Success
	case err := <-errCh:
		_ = server.Shutdown(ctx)
		return err
	case <-time.After(callbackTimeout):
		_ = server.Shutdown(ctx)
		return ErrAuthTimeout
	case <-ctx.Done():
		_ = server.Shutdown(ctx)
		return ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	if err := a.cache.Save(token); err != nil {
		return fmt.Errorf("seeding token cache: %w", err)
	}

	return nil
}

// handleCallback processes the OAuth callback from Spotify.
func (a *Authenticator) handleCallback(w http.ResponseWriter, r *http.Request, expectedState string, tokenCh chan<- *oauth2.Token, errCh chan<- error) {
	if r.URL.Query().Get("state") != expectedState {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		errCh <- ErrStateMismatch
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, "Authorization failed: "+errMsg, http.StatusBadRequest)
		errCh <- fmt.Errorf("spotify auth error: %s", errMsg)
		return
	}

	token, err := a.cfg.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		errCh <- fmt.Errorf("exchanging code for token: %w", err)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title></head>
<body>
<h1>Authorization Successful!</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`)

	tokenCh <- token
}

// generateState creates a random state string for OAuth.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
