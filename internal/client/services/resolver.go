package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/veriauth/internal/client/client"
	"github.com/dmitrijs2005/veriauth/internal/client/models"
	"github.com/dmitrijs2005/veriauth/internal/client/providers"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityResolver proves who the user is for one auth provider.
type IdentityResolver interface {
	Resolve(ctx context.Context, creds *models.Credentials) (*models.Identity, error)
}

// ResolverFunc adapts a function to IdentityResolver.
type ResolverFunc func(ctx context.Context, creds *models.Credentials) (*models.Identity, error)

func (f ResolverFunc) Resolve(ctx context.Context, creds *models.Credentials) (*models.Identity, error) {
	return f(ctx, creds)
}

// EmailResolver signs in with email and password against the backend's
// /login endpoint.
func EmailResolver(c client.Client) IdentityResolver {
	return ResolverFunc(func(ctx context.Context, creds *models.Credentials) (*models.Identity, error) {
		if creds == nil || creds.Email == "" {
			return nil, fmt.Errorf("%w: email is required", ErrInvalidCredentials)
		}

		resp, err := c.Login(ctx, creds.Email, creds.Password)
		if err != nil {
			return nil, err
		}

		id := &models.Identity{
			Subject:      creds.Email,
			Email:        creds.Email,
			AccessToken:  resp.AccessToken,
			TokenType:    resp.TokenType,
			RefreshToken: resp.RefreshToken,
		}

		// The backend issues JWTs whose subject is the email; anything richer
		// in the claims is taken as a bonus.
		if claims, ok := unverifiedClaims(resp.AccessToken); ok {
			if sub, err := claims.GetSubject(); err == nil && sub != "" {
				id.Subject = sub
			}
			if name, ok := claims["name"].(string); ok {
				id.Name = name
			}
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				id.Expiry = exp.Time
			}
		}
		return id, nil
	})
}

// ProviderResolver delegates to an interactive provider. Credentials are
// ignored. A provider's refresh token is dropped: only backend-issued refresh
// tokens may reach the backend's /refresh endpoint.
func ProviderResolver(p providers.Provider) IdentityResolver {
	return ResolverFunc(func(ctx context.Context, _ *models.Credentials) (*models.Identity, error) {
		id, err := p.Authenticate(ctx)
		if err != nil || id == nil {
			return id, err
		}
		out := *id
		out.RefreshToken = ""
		return &out, nil
	})
}

// unverifiedClaims decodes a JWT without checking its signature. The token
// came from the server over the login call; it is only inspected, never
// trusted for authorization.
func unverifiedClaims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
