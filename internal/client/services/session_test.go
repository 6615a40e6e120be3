package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/veriauth/internal/client/client"
	"github.com/dmitrijs2005/veriauth/internal/client/models"
	"github.com/dmitrijs2005/veriauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/veriauth/internal/common"
	"github.com/dmitrijs2005/veriauth/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, store metadata.Store, api client.Client) *SessionStore {
	t.Helper()
	s := NewSessionStore(store, logging.Discard())
	if api != nil {
		s.RegisterResolver(models.ProviderEmail, EmailResolver(api))
	}
	return s
}

func openSQLite(t *testing.T, path string) metadata.Store {
	t.Helper()
	st, err := metadata.Open(context.Background(), "sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func signedJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSetAuthInfo_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	st := openSQLite(t, path)
	s := newStore(t, st, nil)
	require.NoError(t, s.SetAuthInfo(ctx, "t", "bearer"))
	assert.Equal(t, "bearer t", s.AuthToken())

	v, err := st.Get(ctx, models.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "bearer t", string(v))
	require.NoError(t, st.Close())

	// a fresh process over the same file
	reloaded := newStore(t, openSQLite(t, path), nil)
	require.NoError(t, reloaded.Restore(ctx))
	assert.Equal(t, "bearer t", reloaded.AuthToken())
	assert.False(t, reloaded.IsAuthenticated())
}

func TestLogin_Email(t *testing.T) {
	ctx := context.Background()
	api := &fakeClient{LoginResp: &client.TokenResponse{AccessToken: "abc"}}
	st := metadata.NewMemoryStore()
	s := newStore(t, st, api)

	require.NoError(t, s.Login(ctx, models.ProviderEmail, &models.Credentials{Email: "a@b.com"}))

	assert.True(t, s.IsAuthenticated())
	u := s.User()
	require.NotNil(t, u)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, models.ProviderEmail, u.AuthProvider)
	assert.Equal(t, models.UserID(models.ProviderEmail, "a@b.com"), u.ID)
	assert.Equal(t, "bearer abc", s.AuthToken())
	assert.False(t, s.Loading())

	raw, err := st.Get(ctx, models.KeyUser)
	require.NoError(t, err)
	stored, err := models.UnmarshalUser(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(u, stored); diff != "" {
		t.Fatalf("stored user mismatch (-mem +stored):\n%s", diff)
	}
}

func TestLogin_EmailReadsJWTClaims(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := signedJWT(t, jwt.MapClaims{"sub": "a@b.com", "name": "Ann", "exp": exp.Unix()})

	api := &fakeClient{LoginResp: &client.TokenResponse{AccessToken: token, RefreshToken: "r1", TokenType: "bearer"}}
	s := newStore(t, metadata.NewMemoryStore(), api)

	require.NoError(t, s.Login(ctx, models.ProviderEmail, &models.Credentials{Email: "a@b.com", Password: "pw"}))

	assert.Equal(t, "Ann", s.User().Name)
	assert.Equal(t, "r1", s.RefreshToken())
	assert.True(t, s.TokenExpiry().Equal(exp))
}

func TestLogin_FailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	api := &fakeClient{LoginErr: &client.APIError{StatusCode: 401, Detail: "bad credentials"}}
	st := metadata.NewMemoryStore()
	s := newStore(t, st, api)

	err := s.Login(ctx, models.ProviderEmail, &models.Credentials{Email: "a@b.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "bad credentials", err.Error())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.AuthToken())
	assert.False(t, s.Loading())

	all, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLogin_UnknownProvider(t *testing.T) {
	s := newStore(t, metadata.NewMemoryStore(), nil)

	err := s.Login(context.Background(), models.ProviderPhone, &models.Credentials{Phone: "+15550100"})
	assert.ErrorIs(t, err, ErrProviderNotSupported)
}

func TestLogin_EmailWithoutCredentials(t *testing.T) {
	api := &fakeClient{LoginResp: &client.TokenResponse{AccessToken: "abc"}}
	s := newStore(t, metadata.NewMemoryStore(), api)

	err := s.Login(context.Background(), models.ProviderEmail, nil)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 0, api.LoginCalls)
}

func TestLogin_Provider(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, metadata.NewMemoryStore(), nil)
	s.RegisterResolver(models.ProviderGoogle, ProviderResolver(&fakeProvider{identity: &models.Identity{
		Subject:     "10769150350006150715113082367",
		Email:       "ann@gmail.com",
		Name:        "Ann",
		AccessToken: "ya29",
		TokenType:   "Bearer",
	}}))

	require.NoError(t, s.Login(ctx, models.ProviderGoogle, nil))
	assert.Equal(t, "Bearer ya29", s.AuthToken())
	assert.Equal(t, models.ProviderGoogle, s.User().AuthProvider)
	assert.Empty(t, s.RefreshToken())
}

func TestLogin_ProviderError(t *testing.T) {
	s := newStore(t, metadata.NewMemoryStore(), nil)
	boom := errors.New("consent denied")
	s.RegisterResolver(models.ProviderGoogle, ProviderResolver(&fakeProvider{err: boom}))

	err := s.Login(context.Background(), models.ProviderGoogle, nil)
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.IsAuthenticated())
}

func TestLogin_LoadingWhileInFlight(t *testing.T) {
	s := newStore(t, metadata.NewMemoryStore(), nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	s.RegisterResolver(models.ProviderGoogle, ResolverFunc(func(ctx context.Context, _ *models.Credentials) (*models.Identity, error) {
		close(entered)
		<-release
		return &models.Identity{Subject: "s", Email: "a@b.com", AccessToken: "t"}, nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.Login(context.Background(), models.ProviderGoogle, nil) }()

	<-entered
	assert.True(t, s.Loading())
	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Loading())
}

func TestLogin_ConcurrentLastWriteWins(t *testing.T) {
	ctx := context.Background()
	st := metadata.NewMemoryStore()
	s := newStore(t, st, nil)
	s.RegisterResolver(models.ProviderEmail, ResolverFunc(func(ctx context.Context, c *models.Credentials) (*models.Identity, error) {
		time.Sleep(time.Millisecond)
		return &models.Identity{Subject: c.Email, Email: c.Email, AccessToken: "tok-" + c.Email}, nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@b.com", i)
			assert.NoError(t, s.Login(ctx, models.ProviderEmail, &models.Credentials{Email: email}))
		}(i)
	}
	wg.Wait()

	sess := s.Session()
	require.NotNil(t, sess.User)
	assert.Equal(t, "bearer tok-"+sess.User.Email, sess.Token)

	rawUser, err := st.Get(ctx, models.KeyUser)
	require.NoError(t, err)
	stored, err := models.UnmarshalUser(rawUser)
	require.NoError(t, err)
	rawToken, err := st.Get(ctx, models.KeyAuthToken)
	require.NoError(t, err)

	assert.Equal(t, sess.User.Email, stored.Email)
	assert.Equal(t, sess.Token, string(rawToken))
	assert.False(t, s.Loading())
}

func TestLogout_ClearsMemoryAndStorage(t *testing.T) {
	ctx := context.Background()
	api := &fakeClient{LoginResp: &client.TokenResponse{AccessToken: "abc", RefreshToken: "r1"}}
	st := metadata.NewMemoryStore()
	s := newStore(t, st, api)

	require.NoError(t, s.Login(ctx, models.ProviderEmail, &models.Credentials{Email: "a@b.com", Password: "pw"}))
	require.NoError(t, s.Logout(ctx))

	assert.Nil(t, s.User())
	assert.Empty(t, s.AuthToken())
	assert.Empty(t, s.RefreshToken())
	assert.False(t, s.IsAuthenticated())

	for _, key := range []string{models.KeyUser, models.KeyAuthToken, models.KeyRefreshToken} {
		v, err := st.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, v, key)
	}
}

func TestLogout_WhenSignedOut(t *testing.T) {
	s := newStore(t, metadata.NewMemoryStore(), nil)
	require.NoError(t, s.Logout(context.Background()))
}

func TestRestore_AfterLogin(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")
	api := &fakeClient{LoginResp: &client.TokenResponse{AccessToken: "abc", RefreshToken: "r1"}}

	st := openSQLite(t, path)
	s := newStore(t, st, api)
	require.NoError(t, s.Login(ctx, models.ProviderEmail, &models.Credentials{Email: "a@b.com", Password: "pw"}))
	want := s.Session()
	require.NoError(t, st.Close())

	reloaded := newStore(t, openSQLite(t, path), api)
	require.NoError(t, reloaded.Restore(ctx))

	if diff := cmp.Diff(want, reloaded.Session()); diff != "" {
		t.Fatalf("restored session mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, reloaded.IsAuthenticated())
}

func TestRestore_DropsMalformedUser(t *testing.T) {
	ctx := context.Background()
	st := metadata.NewMemoryStore()
	require.NoError(t, st.Set(ctx, models.KeyAuthToken, []byte("bearer t")))
	require.NoError(t, st.Set(ctx, models.KeyUser, []byte(`{"id":`)))

	s := newStore(t, st, nil)
	require.NoError(t, s.Restore(ctx))

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, "bearer t", s.AuthToken())

	v, err := st.Get(ctx, models.KeyUser)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRestore_Empty(t *testing.T) {
	s := newStore(t, metadata.NewMemoryStore(), nil)
	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, models.Session{}, s.Session())
}

func TestMutations_StorageFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	api := &fakeClient{LoginResp: &client.TokenResponse{AccessToken: "abc"}}

	mem := metadata.NewMemoryStore()
	good := newStore(t, mem, api)
	require.NoError(t, good.Login(ctx, models.ProviderEmail, &models.Credentials{Email: "a@b.com", Password: "pw"}))
	before := good.Session()

	// same in-memory session, storage now failing
	s := newStore(t, failingStore{MemoryStore: mem, err: boom}, api)
	s.session = before

	assert.ErrorIs(t, s.SetAuthInfo(ctx, "new", "bearer"), boom)
	assert.ErrorIs(t, s.Logout(ctx), boom)
	assert.ErrorIs(t, s.Login(ctx, models.ProviderEmail, &models.Credentials{Email: "c@d.com", Password: "pw"}), boom)
	assert.ErrorIs(t, s.Restore(ctx), boom)

	if diff := cmp.Diff(before, s.Session()); diff != "" {
		t.Fatalf("session changed despite failed writes:\n%s", diff)
	}
}

func TestSession_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	api := &fakeClient{LoginResp: &client.TokenResponse{AccessToken: "abc"}}
	s := newStore(t, metadata.NewMemoryStore(), api)
	require.NoError(t, s.Login(ctx, models.ProviderEmail, &models.Credentials{Email: "a@b.com", Password: "pw"}))

	u := s.User()
	u.Email = "mutated@b.com"
	assert.Equal(t, "a@b.com", s.User().Email)
}

func TestTokenExpiry(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, metadata.NewMemoryStore(), nil)
	assert.True(t, s.TokenExpiry().IsZero())

	require.NoError(t, s.SetAuthInfo(ctx, "opaque", "bearer"))
	assert.True(t, s.TokenExpiry().IsZero())

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetAuthInfo(ctx, signedJWT(t, jwt.MapClaims{"exp": exp.Unix()}), "bearer"))
	assert.True(t, s.TokenExpiry().Equal(exp))
}

func TestCheckToken(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, metadata.NewMemoryStore(), nil)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, s.CheckToken(now), common.ErrInvalidToken)

	require.NoError(t, s.SetAuthInfo(ctx, "opaque", "bearer"))
	assert.ErrorIs(t, s.CheckToken(now), common.ErrInvalidToken)

	require.NoError(t, s.SetAuthInfo(ctx, signedJWT(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), "bearer"))
	assert.ErrorIs(t, s.CheckToken(now), common.ErrTokenExpired)

	require.NoError(t, s.SetAuthInfo(ctx, signedJWT(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), "bearer"))
	assert.NoError(t, s.CheckToken(now))

	require.NoError(t, s.SetAuthInfo(ctx, signedJWT(t, jwt.MapClaims{"sub": "a@b.com"}), "bearer"))
	assert.NoError(t, s.CheckToken(now))
}
