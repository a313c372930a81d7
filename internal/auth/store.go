package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TokenStore is the auth capability consumed by the retry gate: a snapshot of
// the current credentials, a refresh, and a logout. Implementations must
// treat pairs as values; Refresh returns a new pair instead of mutating any
// pair previously returned by Tokens.
type TokenStore interface {
	// Tokens returns the current credential snapshot. A zero pair with a nil
	// error means anonymous access.
	Tokens(ctx context.Context) (TokenPair, error)

	// Refresh exchanges the refresh token for a new pair and makes it the
	// current snapshot.
	Refresh(ctx context.Context) (TokenPair, error)

	// Logout discards the stored credentials.
	Logout(ctx context.Context) error
}

// HTTPTokenStore refreshes against the chatflow server's auth endpoints and
// mirrors the current pair to an optional on-disk cache so a fresh process
// picks up where the last one left off.
type HTTPTokenStore struct {
	baseURL string
	client  *http.Client
	cache   *FileTokenCache
	log     zerolog.Logger

	mu      sync.Mutex
	current TokenPair
}

func NewHTTPTokenStore(baseURL string, initial TokenPair, cache *FileTokenCache, log zerolog.Logger) *HTTPTokenStore {
	return &HTTPTokenStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		cache:   cache,
		log:     log,
		current: initial,
	}
}

func (s *HTTPTokenStore) Tokens(ctx context.Context) (TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

// refreshResponse is the body of a successful refresh call.
type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

func (s *HTTPTokenStore) Refresh(ctx context.Context) (TokenPair, error) {
	if s.baseURL == "" {
		return TokenPair{}, ErrNotConfigured
	}
	s.mu.Lock()
	refreshToken := s.current.RefreshToken
	s.mu.Unlock()
	if refreshToken == "" {
		return TokenPair{}, ErrNoRefreshToken
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to marshal refresh request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/auth/refreshToken", bytes.NewReader(body))
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return TokenPair{}, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return TokenPair{}, fmt.Errorf("refresh rejected with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var rr refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return TokenPair{}, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if rr.AccessToken == "" {
		return TokenPair{}, fmt.Errorf("refresh response carried no access token")
	}

	pair := TokenPair{
		AccessToken:  rr.AccessToken,
		RefreshToken: rr.RefreshToken,
		TokenType:    rr.TokenType,
	}
	if pair.RefreshToken == "" {
		// Server kept the old refresh token valid.
		pair.RefreshToken = refreshToken
	}
	if rr.ExpiresIn > 0 {
		pair.ExpiresAt = time.Now().Add(time.Duration(rr.ExpiresIn) * time.Second)
	}

	s.mu.Lock()
	s.current = pair
	s.mu.Unlock()
	if s.cache != nil {
		if err := s.cache.Save(pair); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist refreshed tokens")
		}
	}
	s.log.Debug().Time("expires_at", pair.ExpiresAt).Msg("access token refreshed")
	return pair, nil
}

func (s *HTTPTokenStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = TokenPair{}
	s.mu.Unlock()
	if s.cache != nil {
		if err := s.cache.Clear(); err != nil {
			return fmt.Errorf("failed to clear token cache: %w", err)
		}
	}
	s.log.Info().Msg("logged out")
	return nil
}
