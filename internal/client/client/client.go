package client

import (
	"context"
)

// TokenResponse is the backend's answer to /login and /refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// Client is the backend API used by the session store and login flow.
type Client interface {
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	Register(ctx context.Context, email, fullName, password string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	Close() error
}

// TokenSource is the view of the session store the transports need.
type TokenSource interface {
	AuthToken() string
	RefreshToken() string
	SetAuthInfo(ctx context.Context, token, tokenType string) error
}

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
}
