package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/veriauth/internal/client/models"
	"github.com/dmitrijs2005/veriauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/veriauth/internal/common"
	"github.com/dmitrijs2005/veriauth/internal/logging"
)

// SessionStore owns the current session and mirrors it into a metadata
// store. Every mutation writes memory and storage together: storage first in
// one batch, then memory, so a failed write leaves both unchanged.
//
// SessionStore is safe for concurrent use. Identity resolution runs outside
// the lock; concurrent logins are applied one after another and the last one
// wins.
type SessionStore struct {
	store  metadata.Store
	logger logging.Logger

	mu        sync.RWMutex
	session   models.Session
	resolvers map[models.AuthProvider]IdentityResolver

	// loading counts in-flight logins.
	loading atomic.Int32
}

func NewSessionStore(store metadata.Store, logger logging.Logger) *SessionStore {
	return &SessionStore{
		store:     store,
		logger:    logger,
		resolvers: make(map[models.AuthProvider]IdentityResolver),
	}
}

// RegisterResolver makes provider available to Login.
func (s *SessionStore) RegisterResolver(provider models.AuthProvider, r IdentityResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolvers[provider] = r
}

func (s *SessionStore) resolver(provider models.AuthProvider) (IdentityResolver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resolvers[provider]
	return r, ok
}

// Login resolves the user's identity with the resolver registered for
// provider and stores the resulting user and token as one session. Loading
// reports true while any Login is in flight.
func (s *SessionStore) Login(ctx context.Context, provider models.AuthProvider, creds *models.Credentials) error {
	s.loading.Add(1)
	defer s.loading.Add(-1)

	log := s.logger.With("provider", provider)

	r, ok := s.resolver(provider)
	if !ok {
		log.Warn(ctx, "login rejected: provider not supported")
		return fmt.Errorf("%w: %s", ErrProviderNotSupported, provider)
	}

	log.Info(ctx, "login started")

	id, err := r.Resolve(ctx, creds)
	if err != nil {
		log.Warn(ctx, "login failed", "error", err)
		return err
	}
	if err := checkIdentity(id); err != nil {
		log.Warn(ctx, "login failed", "error", err)
		return err
	}

	tokenType := id.TokenType
	if tokenType == "" {
		tokenType = common.DefaultTokenType
	}

	next := models.Session{
		User: &models.User{
			ID:           models.UserID(provider, id.Subject),
			Name:         id.Name,
			Email:        id.Email,
			AuthProvider: provider,
		},
		RefreshToken: id.RefreshToken,
	}
	if id.AccessToken != "" {
		next.Token = models.FormatToken(id.AccessToken, tokenType)
	}

	if err := s.replace(ctx, next); err != nil {
		log.Error(ctx, "login failed: persist session", "error", err)
		return err
	}

	log.Info(ctx, "login succeeded", "user_id", next.User.ID, "email", next.User.Email)
	return nil
}

// checkIdentity rejects identities that could not be restored later: a stored
// user must carry an email.
func checkIdentity(id *models.Identity) error {
	switch {
	case id == nil:
		return fmt.Errorf("%w: no identity returned", ErrIncompleteIdentity)
	case id.Email == "":
		return fmt.Errorf("%w: no email", ErrIncompleteIdentity)
	}
	return nil
}

// replace swaps the whole session, persisting it in one batch.
func (s *SessionStore) replace(ctx context.Context, next models.Session) error {
	userJSON, err := models.MarshalUser(next.User)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.store.Batch(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Set(ctx, models.KeyUser, userJSON); err != nil {
			return err
		}
		if err := setOrDelete(ctx, r, models.KeyAuthToken, next.Token); err != nil {
			return err
		}
		return setOrDelete(ctx, r, models.KeyRefreshToken, next.RefreshToken)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.session = next
	return nil
}

func setOrDelete(ctx context.Context, r metadata.Repository, key, value string) error {
	if value == "" {
		return r.Delete(ctx, key)
	}
	return r.Set(ctx, key, []byte(value))
}

// SetAuthInfo stores "<tokenType> <token>" as the session credential. The
// token is not inspected.
func (s *SessionStore) SetAuthInfo(ctx context.Context, token, tokenType string) error {
	formatted := models.FormatToken(token, tokenType)

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Batch(ctx, func(ctx context.Context, r metadata.Repository) error {
		return r.Set(ctx, models.KeyAuthToken, []byte(formatted))
	})
	if err != nil {
		return fmt.Errorf("save auth token: %w", err)
	}

	s.session.Token = formatted
	s.logger.Debug(ctx, "auth token updated", "token_type", tokenType)
	return nil
}

// Logout clears the user and both tokens from memory and storage.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Batch(ctx, func(ctx context.Context, r metadata.Repository) error {
		for _, key := range []string{models.KeyUser, models.KeyAuthToken, models.KeyRefreshToken} {
			if err := r.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	var email string
	if s.session.User != nil {
		email = s.session.User.Email
	}
	s.session = models.Session{}
	s.logger.Info(ctx, "logged out", "email", email)
	return nil
}

// Restore loads a previously saved session. It is meant to be called once
// at startup. The token is not validated against the backend; a stored user
// that cannot be decoded is dropped from storage and the token is kept.
func (s *SessionStore) Restore(ctx context.Context) error {
	var restored models.Session

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Batch(ctx, func(ctx context.Context, r metadata.Repository) error {
		token, err := r.Get(ctx, models.KeyAuthToken)
		if err != nil {
			return err
		}
		refresh, err := r.Get(ctx, models.KeyRefreshToken)
		if err != nil {
			return err
		}
		raw, err := r.Get(ctx, models.KeyUser)
		if err != nil {
			return err
		}

		restored.Token = string(token)
		restored.RefreshToken = string(refresh)

		if raw == nil {
			return nil
		}
		u, err := models.UnmarshalUser(raw)
		if err != nil {
			s.logger.Warn(ctx, "dropping stored user", "error", err)
			return r.Delete(ctx, models.KeyUser)
		}
		restored.User = u
		return nil
	})
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.session = restored
	s.logger.Info(ctx, "session restored",
		"authenticated", restored.IsAuthenticated(),
		"has_token", restored.Token != "",
	)
	return nil
}

// Session returns a copy of the current session.
func (s *SessionStore) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.session
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

// User returns a copy of the signed-in user, or nil.
func (s *SessionStore) User() *models.User {
	return s.Session().User
}

func (s *SessionStore) AuthToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *SessionStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated()
}

func (s *SessionStore) Loading() bool {
	return s.loading.Load() > 0
}

// TokenExpiry reads the exp claim of the current token without verifying
// it. The zero time means the token is absent, not a JWT, or has no exp.
func (s *SessionStore) TokenExpiry() time.Time {
	exp, _ := s.tokenExpiry()
	return exp
}

// CheckToken inspects the stored token locally. It returns
// common.ErrInvalidToken when there is no token or it is not a JWT, and
// common.ErrTokenExpired when its exp claim is before now. Opaque provider
// tokens therefore report ErrInvalidToken; the backend remains the judge.
func (s *SessionStore) CheckToken(now time.Time) error {
	exp, err := s.tokenExpiry()
	if err != nil {
		return err
	}
	if !exp.IsZero() && !now.Before(exp) {
		return common.ErrTokenExpired
	}
	return nil
}

func (s *SessionStore) tokenExpiry() (time.Time, error) {
	_, raw, ok := models.SplitToken(s.AuthToken())
	if !ok {
		return time.Time{}, common.ErrInvalidToken
	}
	claims, ok := unverifiedClaims(raw)
	if !ok {
		return time.Time{}, common.ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
