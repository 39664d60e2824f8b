package cms_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/cms"
	"github.com/jrsteele09/go-cms-client/internal/backendtest"
	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/jrsteele09/go-cms-client/session"
	"github.com/jrsteele09/go-cms-client/session/memstore"
)

type testFixture struct {
	backend *backendtest.Backend
	state   *session.State
	cms     *cms.Client

	mu          sync.Mutex
	navigations []string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{backend: backendtest.New(t)}
	f.state = session.NewState(memstore.New())

	navigator := apiclient.NavigatorFunc(func(_ context.Context, loginURL string) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.navigations = append(f.navigations, loginURL)
	})
	api, err := apiclient.New(config.API{BaseURL: f.backend.URL()}, f.state, apiclient.WithNavigator(navigator))
	require.NoError(t, err)

	f.cms = cms.New(api, zerolog.Nop())
	return f
}

// loginAs creates the user on the backend and logs in through the client
func (f *testFixture) loginAs(t *testing.T, username, role string) *cms.User {
	t.Helper()
	f.backend.AddUser(username, username+"@example.com", "secret-"+username, role)
	user, err := f.cms.Auth.Login(context.Background(), username, "secret-"+username, false)
	require.NoError(t, err)
	return user
}

func (f *testFixture) navigated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.navigations...)
}
