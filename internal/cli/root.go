// Package cli implements the cmsctl command tree.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/cms"
	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/jrsteele09/go-cms-client/internal/logging"
	"github.com/jrsteele09/go-cms-client/session"
	"github.com/jrsteele09/go-cms-client/session/filestore"
	"github.com/jrsteele09/go-cms-client/session/memstore"
	"github.com/jrsteele09/go-cms-client/session/valkeystore"
)

const errorDomain = "cmsctl"

type Option func(*app)

// WithOutput redirects command output and log/diagnostic output
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *app) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithInput sets where passwords are read from when no flag is given
func WithInput(r io.Reader) Option {
	return func(a *app) {
		a.stdin = r
	}
}

// WithStore uses store instead of the configured backend
func WithStore(store session.Store) Option {
	return func(a *app) {
		a.store = store
	}
}

// app is the state shared by the commands of one invocation
type app struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	input  *bufio.Reader
	store  session.Store

	configPath string
	logLevel   string

	cfg     config.Config
	logger  zerolog.Logger
	state   *session.State
	cms     *cms.Client
	closers []func()
}

// Execute runs cmsctl with args and releases the resources the command opened
func Execute(ctx context.Context, args []string, opts ...Option) error {
	a := &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  os.Stdin,
	}
	for _, opt := range opts {
		opt(a)
	}
	defer a.close()

	if args == nil {
		args = []string{}
	}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cmsctl",
		Short:         "CMS command line client",
		Long:          "cmsctl talks to the CMS API, keeping the login session between invocations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			banner := figure.NewFigure(a.cfg.GetAppName(), "cybermedium", false)
			fmt.Fprintln(a.stdout, banner.String())
			return cmd.Help()
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file (default $"+config.ConfigPathEnvVar+")")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level, overrides the configured one")

	cmd.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.passwdCmd(),
		a.statusCmd(),
		a.articlesCmd(),
		a.categoriesCmd(),
		a.usersCmd(),
		a.dashboardCmd(),
	)
	return cmd
}

func (a *app) loadConfig() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return oops.In(errorDomain).Wrapf(err, "Failed to load the configuration")
	}
	a.cfg = cfg

	level := cfg.GetLogLevel()
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.logger = logging.New(a.stderr, level).With().Str("app", cfg.GetAppName()).Logger()
	return nil
}

// client builds the session state and CMS client on first use
func (a *app) client() (*cms.Client, error) {
	if a.cms != nil {
		return a.cms, nil
	}

	store, err := a.openStore()
	if err != nil {
		return nil, oops.In(errorDomain).
			With("backend", a.cfg.GetStoreBackend()).
			Wrapf(err, "Failed to open the credential store")
	}
	a.state = session.NewState(store)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, oops.In(errorDomain).Wrapf(err, "Failed to create the cookie jar")
	}
	api, err := apiclient.New(a.cfg, a.state,
		apiclient.WithHTTPClient(&http.Client{Timeout: a.cfg.GetRequestTimeout(), Jar: jar}),
		apiclient.WithLogger(a.logger),
		apiclient.WithNavigator(a.loginHint()),
	)
	if err != nil {
		return nil, oops.In(errorDomain).Wrapf(err, "Failed to create the API client")
	}

	a.cms = cms.New(api, a.logger)
	return a.cms, nil
}

func (a *app) openStore() (session.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	switch a.cfg.GetStoreBackend() {
	case config.StoreBackendMemory:
		return memstore.New(), nil
	case config.StoreBackendValkey:
		store, err := valkeystore.Dial(a.cfg.GetValkeyAddr(), a.cfg.GetValkeyPrefix())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return filestore.New(a.cfg.GetStorePath(), filestore.WithPassphrase(a.cfg.GetStorePassphrase())), nil
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}
