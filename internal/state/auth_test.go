package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/nixtrack/internal/nixtrack"
	"github.com/five82/nixtrack/internal/session"
)

type fakeAuthAPI struct {
	login      nixtrack.LoginResponse
	loginErr   error
	profile    nixtrack.UserProfile
	profileErr error
}

func (f *fakeAuthAPI) Login(context.Context, nixtrack.LoginRequest) (nixtrack.LoginResponse, error) {
	return f.login, f.loginErr
}

func (f *fakeAuthAPI) Register(context.Context, nixtrack.RegisterRequest) (nixtrack.LoginResponse, error) {
	return f.login, f.loginErr
}

func (f *fakeAuthAPI) Profile(context.Context) (nixtrack.UserProfile, error) {
	return f.profile, f.profileErr
}

func newSessionStore(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.New(filepath.Join(t.TempDir(), "session.toml"))
	require.NoError(t, err)
	return s
}

func TestAuth_SeededFromSnapshot(t *testing.T) {
	user := &nixtrack.UserProfile{ID: 1, Name: "Ana"}
	opts, _, _ := testOptions()
	a := NewAuth(&fakeAuthAPI{}, newSessionStore(t), session.Snapshot{Token: "tok", User: user}, opts)

	user.Name = "mutated"
	snap := a.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "tok", snap.Token)
	require.NotNil(t, snap.User)
	assert.Equal(t, "Ana", snap.User.Name)
}

func TestAuth_LoginWritesThrough(t *testing.T) {
	api := &fakeAuthAPI{login: nixtrack.LoginResponse{
		Token: "new-token",
		User:  nixtrack.UserProfile{ID: 5, Email: "op@example.com", RoleID: nixtrack.RoleOperator, ClientID: 2},
	}}
	sessions := newSessionStore(t)
	opts, _, _ := testOptions()
	a := NewAuth(api, sessions, session.Snapshot{}, opts)

	require.NoError(t, a.Login(context.Background(), nixtrack.LoginRequest{Email: "op@example.com", Password: "x"}))

	assert.Equal(t, "new-token", a.Token())
	user, ok := a.User()
	require.True(t, ok)
	assert.Equal(t, int64(2), user.ClientID)

	persisted, err := sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-token", persisted.Token)
	require.NotNil(t, persisted.User)
	assert.Equal(t, "op@example.com", persisted.User.Email)
}

func TestAuth_LoginFailureKeepsSignedOut(t *testing.T) {
	api := &fakeAuthAPI{loginErr: apiError(401, "Credenciales inválidas")}
	sessions := newSessionStore(t)
	opts, _, _ := testOptions()
	a := NewAuth(api, sessions, session.Snapshot{}, opts)

	require.Error(t, a.Login(context.Background(), nixtrack.LoginRequest{}))
	snap := a.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Equal(t, "Credenciales inválidas", snap.Error)

	persisted, err := sessions.Load()
	require.NoError(t, err)
	assert.False(t, persisted.Authenticated())
}

func TestAuth_RefreshProfileFailureClearsSession(t *testing.T) {
	sessions := newSessionStore(t)
	seed := session.Snapshot{Token: "stale", User: &nixtrack.UserProfile{ID: 1}}
	require.NoError(t, sessions.Save(seed))
	api := &fakeAuthAPI{profileErr: apiError(401, "Token inválido")}
	opts, _, _ := testOptions()
	a := NewAuth(api, sessions, seed, opts)

	require.Error(t, a.RefreshProfile(context.Background()))

	snap := a.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)
	assert.Equal(t, "Token inválido", snap.Error)
	persisted, err := sessions.Load()
	require.NoError(t, err)
	assert.False(t, persisted.Authenticated())
}

func TestAuth_RefreshProfileUpdatesUser(t *testing.T) {
	sessions := newSessionStore(t)
	seed := session.Snapshot{Token: "tok", User: &nixtrack.UserProfile{ID: 1, Name: "old"}}
	api := &fakeAuthAPI{profile: nixtrack.UserProfile{ID: 1, Name: "new"}}
	opts, _, _ := testOptions()
	a := NewAuth(api, sessions, seed, opts)

	require.NoError(t, a.RefreshProfile(context.Background()))
	user, _ := a.User()
	assert.Equal(t, "new", user.Name)

	persisted, err := sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", persisted.Token)
	assert.Equal(t, "new", persisted.User.Name)
}

func TestAuth_LogoutAndInvalidate(t *testing.T) {
	sessions := newSessionStore(t)
	seed := session.Snapshot{Token: "tok", User: &nixtrack.UserProfile{ID: 1}}
	require.NoError(t, sessions.Save(seed))
	opts, _, _ := testOptions()
	a := NewAuth(&fakeAuthAPI{}, sessions, seed, opts)

	a.Logout()
	assert.Empty(t, a.Token())
	_, ok := a.User()
	assert.False(t, ok)
	persisted, err := sessions.Load()
	require.NoError(t, err)
	assert.False(t, persisted.Authenticated())

	a.Invalidate()
	assert.False(t, a.Snapshot().IsAuthenticated)
}
