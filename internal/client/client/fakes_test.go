package client

import (
	"context"
	"sync"
)

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	refresh string
	setErr  error
	sets    int
}

func (f *fakeTokens) AuthToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeTokens) SetAuthInfo(ctx context.Context, token, tokenType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.token = tokenType + " " + token
	return nil
}

type fakeRefresher struct {
	mu    sync.Mutex
	resp  *TokenResponse
	err   error
	calls int
	last  string
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = refreshToken
	return f.resp, f.err
}
