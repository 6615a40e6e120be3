package client

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/veriauth/internal/common"
	"github.com/google/uuid"
)

// AuthTransport attaches the session credential to outgoing requests.
//
// When the server answers 401 and a refresh token is stored, the transport
// refreshes once, stores the new access token through Tokens.SetAuthInfo and
// replays the request. Requests whose body cannot be replayed (no GetBody)
// are not retried.
type AuthTransport struct {
	Base      http.RoundTripper
	Tokens    TokenSource
	Refresher Refresher

	mu sync.Mutex
}

// NewAuthorizedHTTPClient returns an *http.Client using AuthTransport.
func NewAuthorizedHTTPClient(tokens TokenSource, refresher Refresher) *http.Client {
	return &http.Client{Transport: &AuthTransport{Tokens: tokens, Refresher: refresher}}
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.Tokens.AuthToken()

	resp, err := t.base().RoundTrip(withAuthorization(req, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if t.Refresher == nil || t.Tokens.RefreshToken() == "" {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	fresh, err := t.refresh(req.Context(), token)
	if err != nil {
		// the caller gets the original 401
		return resp, nil
	}

	retry := withAuthorization(req, fresh)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return t.base().RoundTrip(retry)
}

// refresh obtains a new token unless a concurrent request already replaced
// the one that was rejected.
func (t *AuthTransport) refresh(ctx context.Context, rejected string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if current := t.Tokens.AuthToken(); current != rejected && current != "" {
		return current, nil
	}

	resp, err := t.Refresher.Refresh(ctx, t.Tokens.RefreshToken())
	if err != nil {
		return "", err
	}

	tokenType := resp.TokenType
	if tokenType == "" {
		tokenType = common.DefaultTokenType
	}
	if err := t.Tokens.SetAuthInfo(ctx, resp.AccessToken, tokenType); err != nil {
		return "", err
	}
	return t.Tokens.AuthToken(), nil
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func withAuthorization(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set(common.AuthorizationHeaderName, token)
	} else {
		r.Header.Del(common.AuthorizationHeaderName)
	}
	if r.Header.Get(common.RequestIDHeaderName) == "" {
		r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	return r
}
