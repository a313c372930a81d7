package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// BuildRequestFunc constructs the request from a credential snapshot. It is
// called again with the refreshed pair when a retry is issued.
type BuildRequestFunc func(ctx context.Context, token TokenPair) (*http.Request, error)

// IssueFunc performs the underlying call.
type IssueFunc func(req *http.Request) (*http.Response, error)

// RetryGate wraps a single logical request with the expired-access-token
// recovery path: on an unauthorized response it performs at most one
// refresh-and-retry cycle before surfacing failure. The at-most-once bound is
// a hard invariant; it keeps a dead auth service from turning every request
// into a retry storm.
type RetryGate struct {
	store TokenStore
	log   zerolog.Logger
}

func NewRetryGate(store TokenStore, log zerolog.Logger) *RetryGate {
	return &RetryGate{store: store, log: log}
}

// Do issues the request built from the current token snapshot. A response
// with StatusUnauthorized triggers one refresh; if the refresh succeeds the
// request is rebuilt with the new pair and reissued exactly once, and that
// retry's outcome is terminal. If the refresh fails, or the retry is still
// unauthorized, the store is logged out and an AuthenticationError is
// returned. Transport errors and every other status propagate immediately,
// never retried.
func (g *RetryGate) Do(ctx context.Context, build BuildRequestFunc, issue IssueFunc) (*http.Response, error) {
	token, err := g.store.Tokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	req, err := build(ctx, token)
	if err != nil {
		return nil, err
	}
	resp, err := issue(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	g.log.Debug().Msg("request unauthorized, refreshing access token")
	fresh, err := g.store.Refresh(ctx)
	if err != nil {
		g.logout(ctx)
		return nil, &AuthenticationError{Err: err}
	}

	retry, err := build(ctx, fresh)
	if err != nil {
		return nil, err
	}
	resp, err = issue(retry)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		g.logout(ctx)
		return nil, &AuthenticationError{Err: fmt.Errorf("request still unauthorized after token refresh")}
	}
	return resp, nil
}

func (g *RetryGate) logout(ctx context.Context) {
	if err := g.store.Logout(ctx); err != nil {
		g.log.Warn().Err(err).Msg("logout failed")
	}
}
