package auth

import (
	"fmt"
	"time"
)

// TokenPair is a snapshot of the credentials held by the auth store. It is a
// value: a refresh produces a new pair rather than mutating one already
// handed out, so a request built from a snapshot never observes a concurrent
// refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsZero reports whether no credentials are present (anonymous access).
func (t TokenPair) IsZero() bool {
	return t.AccessToken == ""
}

// IsExpired checks if the access token has expired. A pair with no recorded
// expiry never expires locally; the server is the authority either way.
func (t TokenPair) IsExpired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// ShouldRefresh reports whether the access token expires within refreshAhead.
func (t TokenPair) ShouldRefresh(refreshAhead time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.ExpiresAt.Add(-refreshAhead))
}

// AuthorizationValue renders the Authorization header value, e.g.
// "Bearer eyJ...". Empty for an anonymous pair.
func (t TokenPair) AuthorizationValue() string {
	if t.IsZero() {
		return ""
	}
	typ := t.TokenType
	if typ == "" {
		typ = "Bearer"
	}
	return fmt.Sprintf("%s %s", typ, t.AccessToken)
}
