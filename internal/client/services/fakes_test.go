package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/veriauth/internal/client/client"
	"github.com/dmitrijs2005/veriauth/internal/client/models"
	"github.com/dmitrijs2005/veriauth/internal/client/repositories/metadata"
)

type fakeClient struct {
	mu sync.Mutex

	LoginResp *client.TokenResponse
	LoginErr  error

	RegisterMsg string
	RegisterErr error

	VerifyMsg string
	VerifyErr error

	LastEmail    string
	LastPassword string
	LastFullName string
	LoginCalls   int
	RefreshCalls []string
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(ctx context.Context, email, password string) (*client.TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	f.LastEmail, f.LastPassword = email, password
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.LoginResp, nil
}

func (f *fakeClient) Register(ctx context.Context, email, fullName, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastEmail, f.LastFullName, f.LastPassword = email, fullName, password
	return f.RegisterMsg, f.RegisterErr
}

func (f *fakeClient) Refresh(ctx context.Context, refreshToken string) (*client.TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshCalls = append(f.RefreshCalls, refreshToken)
	return nil, errors.New("refresh rejected")
}

func (f *fakeClient) VerifyEmail(ctx context.Context, token string) (string, error) {
	return f.VerifyMsg, f.VerifyErr
}

func (f *fakeClient) Close() error { return nil }

type fakeProvider struct {
	identity *models.Identity
	err      error
}

func (p *fakeProvider) Name() models.AuthProvider { return models.ProviderGoogle }

func (p *fakeProvider) Authenticate(ctx context.Context) (*models.Identity, error) {
	return p.identity, p.err
}

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

// failingStore fails every batch after applying nothing.
type failingStore struct {
	*metadata.MemoryStore
	err error
}

func (s failingStore) Batch(ctx context.Context, fn func(ctx context.Context, r metadata.Repository) error) error {
	return s.err
}
