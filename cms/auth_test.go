package cms_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-cms-client/apiclient"
	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/session"
)

func TestLoginStoresSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	user := f.loginAs(t, "alice", "user")
	require.Equal(t, "alice", user.Username)

	creds, err := f.state.Credentials(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, creds.AccessToken)
	require.NotEmpty(t, creds.RefreshToken)

	cached, err := f.state.User(ctx)
	require.NoError(t, err)
	require.Equal(t, user.ID, cached.ID)

	loggedIn, err := f.state.IsLoggedIn(ctx)
	require.NoError(t, err)
	require.True(t, loggedIn)

	admin, err := f.state.IsAdmin(ctx)
	require.NoError(t, err)
	require.False(t, admin)
}

func TestLoginWithEmail(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("bob", "bob@example.com", "pw", "user")

	user, err := f.cms.Auth.Login(context.Background(), "bob@example.com", "pw", true)
	require.NoError(t, err)
	require.Equal(t, "bob", user.Username)
}

func TestLoginRejected(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.backend.AddUser("bob", "bob@example.com", "pw", "user")

	_, err := f.cms.Auth.Login(ctx, "bob", "wrong", false)
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	var httpErr *apiclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, "Invalid username or password", httpErr.Message)

	// No session was stored so no refresh or navigation happened
	require.Zero(t, f.backend.RefreshCalls())
	require.Empty(t, f.navigated())

	loggedIn, err := f.state.IsLoggedIn(ctx)
	require.NoError(t, err)
	require.False(t, loggedIn)
}

func TestRegisterFirstUserIsAdmin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	user, err := f.cms.Auth.Register(ctx, "root", "root@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, session.RoleAdmin, user.Role)

	admin, err := f.state.IsAdmin(ctx)
	require.NoError(t, err)
	require.True(t, admin)

	_, err = f.cms.Auth.Register(ctx, "root", "other@example.com", "pw")
	require.Equal(t, 400, apiclient.StatusCode(err))
}

func TestLogoutClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.loginAs(t, "alice", "user")

	require.NoError(t, f.cms.Auth.Logout(ctx))
	require.Equal(t, 1, f.backend.LogoutCalls())

	creds, err := f.state.Credentials(ctx)
	require.NoError(t, err)
	require.Empty(t, creds.AccessToken)
	require.Empty(t, creds.RefreshToken)

	user, err := f.state.User(ctx)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestLogoutClearsSessionWhenBackendUnreachable(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.loginAs(t, "alice", "user")
	f.backend.Server.Close()

	require.NoError(t, f.cms.Auth.Logout(ctx))

	loggedIn, err := f.state.IsLoggedIn(ctx)
	require.NoError(t, err)
	require.False(t, loggedIn)
}

func TestMeUpdatesCachedUser(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.loginAs(t, "alice", "user")

	require.NoError(t, f.state.SaveUser(ctx, &session.User{ID: 99, Username: "stale"}))

	user, err := f.cms.Auth.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	cached, err := f.state.User(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", cached.Username)
}

func TestMeRefreshesExpiredAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.loginAs(t, "alice", "user")

	before, err := f.state.Credentials(ctx)
	require.NoError(t, err)
	f.backend.ExpireAccessTokens()

	user, err := f.cms.Auth.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, 1, f.backend.RefreshCalls())

	after, err := f.state.Credentials(ctx)
	require.NoError(t, err)
	require.NotEqual(t, before.AccessToken, after.AccessToken)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)
	require.Empty(t, f.navigated())
}

func TestCheckAuth(t *testing.T) {
	t.Run("no token makes no request", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.Server.Close()

		ok, err := f.cms.Auth.CheckAuth(context.Background())
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("valid session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.loginAs(t, "alice", "user")

		ok, err := f.cms.Auth.CheckAuth(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("unrecoverable session logs out", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()
		f.loginAs(t, "alice", "user")
		f.backend.ExpireAccessTokens()
		f.backend.RevokeRefreshTokens()

		ok, err := f.cms.Auth.CheckAuth(ctx)
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, []string{f.backend.URL() + "/login"}, f.navigated())

		loggedIn, err := f.state.IsLoggedIn(ctx)
		require.NoError(t, err)
		require.False(t, loggedIn)
	})
}

func TestSessionExpiredError(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.loginAs(t, "alice", "user")
	f.backend.ExpireAccessTokens()
	f.backend.RevokeRefreshTokens()

	_, err := f.cms.Auth.Me(ctx)
	require.ErrorIs(t, err, apiclient.ErrSessionExpired)
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	user, err := f.state.User(ctx)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestChangePassword(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.loginAs(t, "alice", "user")

	err := f.cms.Auth.ChangePassword(ctx, "wrong", "new")
	require.Equal(t, 400, apiclient.StatusCode(err))

	require.NoError(t, f.cms.Auth.ChangePassword(ctx, "secret-alice", "new"))
	require.NoError(t, f.cms.Auth.Logout(ctx))

	_, err = f.cms.Auth.Login(ctx, "alice", "new", false)
	require.NoError(t, err)
}

func TestMeWithoutSession(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.cms.Auth.Me(context.Background())
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	require.False(t, cmserrors.Is(err, apiclient.ErrSessionExpired))
	require.Zero(t, f.backend.RefreshCalls())
	require.Empty(t, f.navigated())
}
