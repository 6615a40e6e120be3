package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/veriauth/internal/client/client"
	"github.com/dmitrijs2005/veriauth/internal/client/models"
	"github.com/dmitrijs2005/veriauth/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderResolver_DropsProviderRefreshToken(t *testing.T) {
	r := ProviderResolver(&fakeProvider{identity: &models.Identity{
		Subject: "g-1", Email: "ann@gmail.com", AccessToken: "ya29.google-at", RefreshToken: "1//google-rt",
	}})

	id, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ya29.google-at", id.AccessToken)
	assert.Empty(t, id.RefreshToken)
}

func TestProviderLogin_BackendNeverSeesProviderRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := metadata.NewMemoryStore()
	api := &fakeClient{}
	s := newStore(t, store, api)
	s.RegisterResolver(models.ProviderGoogle, ProviderResolver(&fakeProvider{identity: &models.Identity{
		Subject: "g-1", Email: "ann@gmail.com", AccessToken: "ya29.google-at", RefreshToken: "1//google-rt",
	}}))

	require.NoError(t, s.Login(ctx, models.ProviderGoogle, nil))
	assert.Empty(t, s.RefreshToken())

	stored, err := store.Get(ctx, models.KeyRefreshToken)
	require.NoError(t, err)
	assert.Nil(t, stored)

	var mu sync.Mutex
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	resp, err := client.NewAuthorizedHTTPClient(s, api).Get(srv.URL + "/users/me")
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, api.RefreshCalls)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits)
}

func TestLogin_RejectsIncompleteIdentity(t *testing.T) {
	tests := []struct {
		name     string
		identity *models.Identity
	}{
		{name: "nil identity", identity: nil},
		{name: "no email", identity: &models.Identity{Subject: "g-1", AccessToken: "ya29"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := metadata.NewMemoryStore()
			s := newStore(t, store, nil)
			s.RegisterResolver(models.ProviderGoogle, ResolverFunc(func(ctx context.Context, _ *models.Credentials) (*models.Identity, error) {
				return tt.identity, nil
			}))

			err := s.Login(ctx, models.ProviderGoogle, nil)
			assert.ErrorIs(t, err, ErrIncompleteIdentity)
			assert.False(t, s.IsAuthenticated())

			stored, err := store.Get(ctx, models.KeyUser)
			require.NoError(t, err)
			assert.Nil(t, stored)
		})
	}
}
