package providers

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/veriauth/internal/client/models"
)

var (
	ErrNotConfigured       = errors.New("provider not configured")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrStateMismatch       = errors.New("oauth state mismatch")
	ErrMissingCode         = errors.New("authorization code missing")
	ErrNoIDToken           = errors.New("no id_token in token response")
	ErrNonceMismatch       = errors.New("id token nonce mismatch")
)

// Provider authenticates a user with an external identity provider.
type Provider interface {
	Name() models.AuthProvider
	Authenticate(ctx context.Context) (*models.Identity, error)
}
