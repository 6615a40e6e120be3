package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dmitrijs2005/veriauth/internal/client/models"
	"github.com/dmitrijs2005/veriauth/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	DefaultGoogleIssuer = "https://accounts.google.com"
	DefaultRedirectAddr = "127.0.0.1:0"

	callbackPath = "/callback"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	IssuerURL    string
	// RedirectAddr is the loopback address the callback listens on.
	RedirectAddr string
}

type idClaims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Nonce   string `json:"nonce"`
}

type claimsVerifier func(ctx context.Context, rawIDToken string) (*idClaims, error)

func oidcVerifier(v *oidc.IDTokenVerifier) claimsVerifier {
	return func(ctx context.Context, raw string) (*idClaims, error) {
		tok, err := v.Verify(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("verify id token: %w", err)
		}
		var c idClaims
		if err := tok.Claims(&c); err != nil {
			return nil, fmt.Errorf("decode id token claims: %w", err)
		}
		return &c, nil
	}
}

// GoogleProvider signs a user in with Google using the authorization code
// flow with PKCE and a loopback redirect. The consent URL is written to out;
// the user opens it in a browser.
type GoogleProvider struct {
	cfg    GoogleConfig
	out    io.Writer
	logger logging.Logger

	mu     sync.Mutex
	oauth  *oauth2.Config
	verify claimsVerifier
}

var _ Provider = (*GoogleProvider)(nil)

func NewGoogleProvider(cfg GoogleConfig, out io.Writer, logger logging.Logger) *GoogleProvider {
	if cfg.IssuerURL == "" {
		cfg.IssuerURL = DefaultGoogleIssuer
	}
	if cfg.RedirectAddr == "" {
		cfg.RedirectAddr = DefaultRedirectAddr
	}
	return &GoogleProvider{cfg: cfg, out: out, logger: logger}
}

func (p *GoogleProvider) Name() models.AuthProvider {
	return models.ProviderGoogle
}

// discover fetches the issuer's metadata once.
func (p *GoogleProvider) discover(ctx context.Context) (*oauth2.Config, claimsVerifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.oauth != nil {
		return p.oauth, p.verify, nil
	}
	if p.cfg.ClientID == "" {
		return nil, nil, ErrNotConfigured
	}

	op, err := oidc.NewProvider(ctx, p.cfg.IssuerURL)
	if err != nil {
		return nil, nil, fmt.Errorf("oidc discovery: %w", err)
	}

	p.oauth = &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint:     op.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}
	p.verify = oidcVerifier(op.Verifier(&oidc.Config{ClientID: p.cfg.ClientID}))
	return p.oauth, p.verify, nil
}

func (p *GoogleProvider) Authenticate(ctx context.Context) (*models.Identity, error) {
	base, verify, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}

	lis, err := net.Listen("tcp", p.cfg.RedirectAddr)
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}

	oauthCfg := *base
	oauthCfg.RedirectURL = "http://" + lis.Addr().String() + callbackPath

	state := uuid.NewString()
	nonce := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	authURL := oauthCfg.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oidc.Nonce(nonce),
	)

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackRouter(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error(ctx, "callback server stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(p.out, "Open this URL in your browser to sign in with Google:\n\n  %s\n\n", authURL)
	p.logger.Debug(ctx, "waiting for oauth callback", "redirect", oauthCfg.RedirectURL)

	var code string
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		code = res.code
	}

	tok, err := oauthCfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrNoIDToken
	}

	claims, err := verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	if claims.Nonce != nonce {
		return nil, ErrNonceMismatch
	}

	// Google refresh tokens are never returned; the session only ever
	// refreshes against the backend.
	return &models.Identity{
		Subject:     claims.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		AccessToken: tok.AccessToken,
		TokenType:   tok.Type(),
		Expiry:      tok.Expiry,
	}, nil
}
