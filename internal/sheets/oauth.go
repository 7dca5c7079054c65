package sheets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// authTimeout bounds how long the browser flow waits for a callback.
const authTimeout = 5 * time.Minute

// OAuth2Config holds OAuth2 configuration.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string // where the token is cached
	ListenAddr   string // callback listener, defaults to localhost:8080
}

func oauthConfig(clientID, clientSecret, redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// AuthenticateOAuth2Interactive runs the browser consent flow and returns a
// token carrying a refresh token. notify receives the URL the user must open.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config, notify func(url string)) (*oauth2.Token, error) {
	addr := config.ListenAddr
	if addr == "" {
		addr = "localhost:8080"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	state, err := randomState()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	oc := oauthConfig(config.ClientID, config.ClientSecret, "http://"+listener.Addr().String()+"/callback")

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errorChan <- errors.New("oauth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "no authorization code received", http.StatusBadRequest)
			errorChan <- errors.New("no authorization code received")
			return
		}
		codeChan <- code
		_, _ = fmt.Fprint(w, "Authentication complete. You can close this window.")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChan <- fmt.Errorf("callback server failed: %w", err)
		}
	}()
	defer func() {
		if err := server.Shutdown(context.Background()); err != nil {
			slog.Warn("Error shutting down callback server", "error", err)
		}
	}()

	authURL := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if notify != nil {
		notify(authURL)
	}
	slog.Info("Waiting for Google Sheets authentication", "url", authURL)

	var authCode string
	select {
	case authCode = <-codeChan:
	case err := <-errorChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("authentication timeout: no response within %v", authTimeout)
	}

	token, err := oc.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := SaveToken(config.TokenFile, token); err != nil {
			slog.Warn("Failed to save token to file", "error", err, "file", config.TokenFile)
		} else {
			slog.Info("Token saved", "file", config.TokenFile)
		}
	}
	return token, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// LoadToken loads a token from file.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return token, nil
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// GetOrCreateToken returns the cached token when one exists, otherwise runs the
// interactive flow.
func GetOrCreateToken(ctx context.Context, config OAuth2Config, notify func(url string)) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		token, err := LoadToken(config.TokenFile)
		if err == nil && token.RefreshToken != "" {
			slog.Info("Loaded existing token from file", "file", config.TokenFile)
			return token, nil
		}
		slog.Info("No usable cached token, starting OAuth2 flow")
	}
	return AuthenticateOAuth2Interactive(ctx, config, notify)
}
