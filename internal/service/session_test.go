package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapor-kampus/lapor-ui-api/internal/adapters/memstore"
	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	apperrors "github.com/lapor-kampus/lapor-ui-api/internal/errors"
	"github.com/lapor-kampus/lapor-ui-api/internal/testutil"
)

// fakeAuthAPI is a hand-rolled stand-in for the upstream login endpoint.
type fakeAuthAPI struct {
	creds   domainauth.Credentials
	profile domainauth.Profile
	err     error
	calls   int
}

func (f *fakeAuthAPI) Login(_ context.Context, _, _ string) (domainauth.Credentials, domainauth.Profile, error) {
	f.calls++
	if f.err != nil {
		return domainauth.Credentials{}, domainauth.Profile{}, f.err
	}
	return f.creds, f.profile, nil
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionService_SignIn_Success(t *testing.T) {
	store := memstore.New()
	api := &fakeAuthAPI{
		creds: domainauth.Credentials{AccessToken: "access", RefreshToken: "refresh"},
		profile: domainauth.Profile{
			ID: "u-1", IdentityNumber: "2110511001", Name: "Budi",
			Role: domainauth.RoleMahasiswa, RoleID: "7",
		},
	}
	svc := NewSessionService(SessionServiceOptions{Store: store, API: api})

	sess, err := svc.SignIn(context.Background(), "2110511001", "rahasia")
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "access", sess.Credentials.AccessToken)
	assert.Equal(t, domainauth.RoleMahasiswa, sess.Role())

	stored, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, stored)
}

func TestSessionService_SignIn_RejectedLeavesStoreUntouched(t *testing.T) {
	store := memstore.New()
	api := &fakeAuthAPI{err: apperrors.InvalidCredentials("wrong password")}
	svc := NewSessionService(SessionServiceOptions{Store: store, API: api})

	_, err := svc.SignIn(context.Background(), "2110511001", "salah")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
	assert.Zero(t, store.Len())
}

func TestSessionService_SignIn_Validation(t *testing.T) {
	store := memstore.New()
	api := &fakeAuthAPI{}
	svc := NewSessionService(SessionServiceOptions{Store: store, API: api})

	_, err := svc.SignIn(context.Background(), "", "pw")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.SignIn(context.Background(), "2110511001", "")
	assert.True(t, apperrors.IsValidation(err))

	// Validation never reaches the network.
	assert.Zero(t, api.calls)
}

func TestSessionService_CurrentUser_NoSessionID(t *testing.T) {
	svc := NewSessionService(SessionServiceOptions{Store: memstore.New(), API: &fakeAuthAPI{}})

	sess, err := svc.CurrentUser(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSessionService_CurrentUser_UnknownSessionIsNotAnError(t *testing.T) {
	svc := NewSessionService(SessionServiceOptions{Store: memstore.New(), API: &fakeAuthAPI{}})

	sess, err := svc.CurrentUser(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSessionService_CurrentUser_ValidToken(t *testing.T) {
	store := memstore.New()
	access := signedToken(t, time.Now().Add(time.Hour))
	seeded := testutil.NewSession().WithTokens(access, "refresh").Build()
	require.NoError(t, store.Save(context.Background(), seeded))

	svc := NewSessionService(SessionServiceOptions{Store: store, API: &fakeAuthAPI{}})

	sess, err := svc.CurrentUser(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, seeded.Profile, sess.Profile)
}

func TestSessionService_CurrentUser_ExpiredTokenPurges(t *testing.T) {
	store := memstore.New()
	access := signedToken(t, time.Now().Add(-time.Minute))
	seeded := testutil.NewSession().WithTokens(access, "refresh").Build()
	require.NoError(t, store.Save(context.Background(), seeded))

	svc := NewSessionService(SessionServiceOptions{Store: store, API: &fakeAuthAPI{}})

	sess, err := svc.CurrentUser(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, apperrors.IsSessionExpired(err))
	assert.Nil(t, sess)
	assert.Zero(t, store.Len())
}

func TestSessionService_CurrentUser_InjectedClock(t *testing.T) {
	store := memstore.New()
	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	access := signedToken(t, expiry)
	seeded := testutil.NewSession().WithTokens(access, "refresh").Build()
	require.NoError(t, store.Save(context.Background(), seeded))

	now := expiry.Add(-time.Second)
	svc := NewSessionService(SessionServiceOptions{
		Store: store,
		API:   &fakeAuthAPI{},
		Now:   func() time.Time { return now },
	})

	sess, err := svc.CurrentUser(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.NotNil(t, sess)

	now = expiry.Add(time.Second)
	sess, err = svc.CurrentUser(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Nil(t, sess)
}

func TestSessionService_CurrentUser_OpaqueTokenHasNoLocalExpiry(t *testing.T) {
	store := memstore.New()
	seeded := testutil.NewSession().WithTokens("not-a-jwt", "refresh").Build()
	require.NoError(t, store.Save(context.Background(), seeded))

	svc := NewSessionService(SessionServiceOptions{Store: store, API: &fakeAuthAPI{}})

	sess, err := svc.CurrentUser(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.NotNil(t, sess)
}

func TestSessionService_SignOut_Idempotent(t *testing.T) {
	store := memstore.New()
	seeded := testutil.NewSession().Build()
	require.NoError(t, store.Save(context.Background(), seeded))

	svc := NewSessionService(SessionServiceOptions{Store: store, API: &fakeAuthAPI{}})

	svc.SignOut(context.Background(), seeded.ID)
	assert.Zero(t, store.Len())

	// Signing out again, or with no session at all, is fine.
	svc.SignOut(context.Background(), seeded.ID)
	svc.SignOut(context.Background(), "")
}

func TestTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	access := signedToken(t, expiry)

	got, ok := tokenExpiry(access)
	require.True(t, ok)
	assert.WithinDuration(t, expiry, got, time.Second)

	_, ok = tokenExpiry("garbage")
	assert.False(t, ok)

	_, ok = tokenExpiry("")
	assert.False(t, ok)
}

func TestSessionService_CurrentUser_StoreFailurePropagates(t *testing.T) {
	svc := NewSessionService(SessionServiceOptions{Store: failingStore{}, API: &fakeAuthAPI{}})

	_, err := svc.CurrentUser(context.Background(), "any")
	require.Error(t, err)
	assert.False(t, apperrors.IsSessionExpired(err))
}

type failingStore struct{}

func (failingStore) Save(context.Context, domainauth.Session) error {
	return errors.New("store down")
}

func (failingStore) Get(context.Context, string) (domainauth.Session, error) {
	return domainauth.Session{}, errors.New("store down")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("store down")
}
