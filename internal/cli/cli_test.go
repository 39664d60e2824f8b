package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/cms"
	"github.com/jrsteele09/go-cms-client/internal/backendtest"
	"github.com/jrsteele09/go-cms-client/internal/cli"
	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/session"
	"github.com/jrsteele09/go-cms-client/session/memstore"
)

type testFixture struct {
	backend *backendtest.Backend
	opts    []cli.Option
}

type result struct {
	stdout string
	stderr string
	err    error
}

func setupTestFixture(t *testing.T, opts ...cli.Option) *testFixture {
	t.Helper()

	f := &testFixture{backend: backendtest.New(t), opts: opts}
	t.Setenv("CMS_CONFIG", "")
	t.Setenv("CMS_BASE_URL", f.backend.URL())
	t.Setenv("CMS_STORE", "file")
	t.Setenv("CMS_STORE_PATH", filepath.Join(t.TempDir(), "credentials.json"))
	t.Setenv("CMS_STORE_PASSPHRASE", "")
	t.Setenv("CMS_LOG_LEVEL", "error")
	return f
}

func (f *testFixture) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts := append([]cli.Option{
		cli.WithOutput(&stdout, &stderr),
		cli.WithInput(strings.NewReader(stdin)),
	}, f.opts...)
	err := cli.Execute(context.Background(), args, opts...)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (f *testFixture) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	res := f.run(t, "", args...)
	require.NoError(t, res.err, res.stderr)
	return res.stdout
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

type status struct {
	LoggedIn  bool          `json:"logged_in"`
	Admin     bool          `json:"admin"`
	User      *session.User `json:"user"`
	ExpiresAt *string       `json:"access_token_expires_at"`
	Expired   bool          `json:"access_token_expired"`
	Valid     *bool         `json:"valid"`
}

func TestRootPrintsBannerAndHelp(t *testing.T) {
	f := setupTestFixture(t)
	out := f.mustRun(t)
	require.Contains(t, out, "Usage:")
	require.Contains(t, out, "articles")
	require.Contains(t, out, "login")
}

func TestLoginPersistsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")

	user := decodeOutput[session.User](t, f.mustRun(t, "login", "alice", "--password", "pw"))
	require.Equal(t, "alice", user.Username)

	me := decodeOutput[session.User](t, f.mustRun(t, "whoami"))
	require.Equal(t, user.ID, me.ID)

	st := decodeOutput[status](t, f.mustRun(t, "status"))
	require.True(t, st.LoggedIn)
	require.False(t, st.Admin)
	require.Equal(t, "alice", st.User.Username)
	require.NotNil(t, st.ExpiresAt)
	require.False(t, st.Expired)
	require.Nil(t, st.Valid)
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")

	res := f.run(t, "pw\n", "login", "alice")
	require.NoError(t, res.err)
	require.Contains(t, res.stderr, "Password:")
	require.Equal(t, "alice", decodeOutput[session.User](t, res.stdout).Username)
}

func TestLoginFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")

	res := f.run(t, "", "login", "alice", "-p", "wrong")
	require.ErrorIs(t, res.err, apiclient.ErrUnauthorized)
	require.Contains(t, res.err.Error(), "login failed")

	res = f.run(t, "", "login", "alice")
	require.Error(t, res.err)
	require.Zero(t, f.backend.RefreshCalls())
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)

	user := decodeOutput[session.User](t, f.mustRun(t, "register", "root", "--email", "root@example.com", "-p", "pw"))
	require.True(t, user.IsAdmin())

	st := decodeOutput[status](t, f.mustRun(t, "status"))
	require.True(t, st.Admin)
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")
	f.mustRun(t, "login", "alice", "-p", "pw")
	f.backend.ExpireAccessTokens()

	res := f.run(t, "", "whoami")
	require.NoError(t, res.err)
	require.Equal(t, 1, f.backend.RefreshCalls())
	require.NotContains(t, res.stderr, "expired")

	// The rotated pair was persisted for the next invocation
	f.mustRun(t, "whoami")
	require.Equal(t, 1, f.backend.RefreshCalls())
}

func TestUnrecoverableSessionIsCleared(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")
	f.mustRun(t, "login", "alice", "-p", "pw")
	f.backend.ExpireAccessTokens()
	f.backend.RevokeRefreshTokens()

	res := f.run(t, "", "whoami")
	require.ErrorIs(t, res.err, apiclient.ErrSessionExpired)
	require.Contains(t, res.stderr, "Your session has expired")
	require.Contains(t, res.stderr, f.backend.URL()+"/login")

	st := decodeOutput[status](t, f.mustRun(t, "status"))
	require.False(t, st.LoggedIn)
	require.Nil(t, st.User)
	require.Nil(t, st.ExpiresAt)
}

func TestStatusCheck(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")

	st := decodeOutput[status](t, f.mustRun(t, "status", "--check"))
	require.False(t, st.LoggedIn)
	require.False(t, *st.Valid)

	f.mustRun(t, "login", "alice", "-p", "pw")
	st = decodeOutput[status](t, f.mustRun(t, "status", "--check"))
	require.True(t, st.LoggedIn)
	require.True(t, *st.Valid)

	f.backend.ExpireAccessTokens()
	f.backend.RevokeRefreshTokens()
	st = decodeOutput[status](t, f.mustRun(t, "status", "--check"))
	require.False(t, st.LoggedIn)
	require.False(t, *st.Valid)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")
	f.mustRun(t, "login", "alice", "-p", "pw")

	f.mustRun(t, "logout")
	require.Equal(t, 1, f.backend.LogoutCalls())

	st := decodeOutput[status](t, f.mustRun(t, "status"))
	require.False(t, st.LoggedIn)

	res := f.run(t, "", "whoami")
	require.ErrorIs(t, res.err, apiclient.ErrUnauthorized)
}

func TestPasswd(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")
	f.mustRun(t, "login", "alice", "-p", "pw")

	res := f.run(t, "pw\nnew-pw\n", "passwd")
	require.NoError(t, res.err, res.stderr)

	f.mustRun(t, "logout")
	f.mustRun(t, "login", "alice", "-p", "new-pw")
}

func TestArticles(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("admin", "admin@example.com", "pw", session.RoleAdmin)
	f.mustRun(t, "login", "admin", "-p", "pw")

	cat := decodeOutput[cms.Category](t, f.mustRun(t, "categories", "create", "News", "--sort-order", "3"))
	require.Equal(t, 3, cat.SortOrder)

	contentFile := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, writeFile(contentFile, "# from file"))

	created := decodeOutput[cms.Article](t, f.mustRun(t, "articles", "create",
		"--title", "First Post", "--content-file", contentFile, "--category", itoa(cat.ID)))
	require.Equal(t, "first-post", created.Slug)
	require.Equal(t, "# from file", created.Content)
	require.Equal(t, cat.ID, *created.CategoryID)

	list := decodeOutput[cms.ArticleList](t, f.mustRun(t, "articles", "list"))
	require.Zero(t, list.Total)
	list = decodeOutput[cms.ArticleList](t, f.mustRun(t, "articles", "list", "--all"))
	require.Equal(t, 1, list.Total)

	published := decodeOutput[cms.Article](t, f.mustRun(t, "articles", "publish", "first-post"))
	require.Equal(t, cms.StatusPublished, published.Status)

	list = decodeOutput[cms.ArticleList](t, f.mustRun(t, "articles", "list", "--search", "first", "--per-page", "5"))
	require.Equal(t, 1, list.Total)
	require.Equal(t, 5, list.PerPage)

	got := decodeOutput[cms.Article](t, f.mustRun(t, "articles", "get", "first-post"))
	require.Equal(t, "News", got.CategoryName)

	res := f.run(t, "", "categories", "delete", itoa(cat.ID))
	require.Equal(t, 400, apiclient.StatusCode(res.err))

	unpublished := decodeOutput[cms.Article](t, f.mustRun(t, "articles", "unpublish", "first-post"))
	require.Equal(t, cms.StatusDraft, unpublished.Status)

	f.mustRun(t, "articles", "delete", "first-post")
	f.mustRun(t, "categories", "delete", itoa(cat.ID))

	cats := decodeOutput[[]cms.Category](t, f.mustRun(t, "categories", "list"))
	require.Empty(t, cats)
}

func TestArticlesCreateRequiresContent(t *testing.T) {
	f := setupTestFixture(t)
	res := f.run(t, "", "articles", "create", "--title", "x")
	require.ErrorIs(t, res.err, cmserrors.ErrInvalidArgument)
}

func TestAdminCommands(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("admin", "admin@example.com", "pw", session.RoleAdmin)
	bobID := f.backend.AddUser("bob", "bob@example.com", "pw", "user")
	f.mustRun(t, "login", "admin", "-p", "pw")

	users := decodeOutput[[]session.User](t, f.mustRun(t, "users", "list"))
	require.Len(t, users, 2)

	bob := decodeOutput[session.User](t, f.mustRun(t, "users", "toggle-active", itoa(bobID)))
	require.False(t, bob.IsActive)

	d := decodeOutput[cms.Dashboard](t, f.mustRun(t, "dashboard"))
	require.Equal(t, 2, d.Stats.TotalUsers)

	res := f.run(t, "", "users", "toggle-active", "abc")
	require.ErrorIs(t, res.err, cmserrors.ErrInvalidArgument)
}

func TestAdminCommandsForbidden(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")
	f.mustRun(t, "login", "alice", "-p", "pw")

	res := f.run(t, "", "dashboard")
	require.ErrorIs(t, res.err, apiclient.ErrForbidden)

	// A 403 leaves the session alone
	st := decodeOutput[status](t, f.mustRun(t, "status"))
	require.True(t, st.LoggedIn)
}

func TestInjectedStore(t *testing.T) {
	store := memstore.New()
	f := setupTestFixture(t, cli.WithStore(store))
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")

	f.mustRun(t, "login", "alice", "-p", "pw")
	require.Equal(t, 3, store.Len())

	f.mustRun(t, "logout")
	require.Zero(t, store.Len())
}

func TestEncryptedFileStore(t *testing.T) {
	f := setupTestFixture(t)
	t.Setenv("CMS_STORE_PASSPHRASE", "correct horse")
	f.backend.AddUser("alice", "alice@example.com", "pw", "user")
	f.mustRun(t, "login", "alice", "-p", "pw")

	t.Setenv("CMS_STORE_PASSPHRASE", "wrong")
	res := f.run(t, "", "status")
	require.ErrorIs(t, res.err, cmserrors.ErrDecrypt)
}

func TestInvalidConfig(t *testing.T) {
	f := setupTestFixture(t)
	t.Setenv("CMS_STORE", "floppy")

	res := f.run(t, "", "status")
	require.ErrorIs(t, res.err, cmserrors.ErrStoreConfig)
}
