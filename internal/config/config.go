package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
)

// ConfigPathEnvVar names the environment variable holding the config file path.
const ConfigPathEnvVar = "CMS_CONFIG"

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
}

type EnvConfig interface {
	GetEnv() string
	GetAppName() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars `yaml:",inline"`
	API     `yaml:"api"`
	Store   `yaml:"store"`
}

// New returns the built-in defaults without reading any file or environment.
func New() Config {
	return defaults()
}

// Load builds the configuration from defaults, an optional YAML file and
// CMS_* environment variables, in that order of precedence.
// An empty path falls back to $CMS_CONFIG; no file is read when both are empty.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("[config Load] reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("[config Load] parsing %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("[config Load] parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *mainConfig {
	return &mainConfig{
		EnvVars: EnvVars{
			Env:      "DEV",
			AppName:  "CMS Client",
			LogLevel: "info",
		},
		API: API{
			BaseURL:        "http://localhost:5000",
			APIPath:        "/api",
			RefreshPath:    "/auth/refresh",
			LoginPath:      "/login",
			RequestTimeout: 30 * time.Second,
		},
		Store: Store{
			Backend:      StoreBackendFile,
			Path:         defaultStorePath(),
			ValkeyAddr:   "localhost:6379",
			ValkeyPrefix: "cmsctl",
		},
	}
}

func (c *mainConfig) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base url %q must be absolute: %w", c.BaseURL, cmserrors.ErrInvalidArgument)
	}
	switch c.Backend {
	case StoreBackendFile:
		if c.Path == "" {
			return fmt.Errorf("file store requires a path: %w", cmserrors.ErrStoreConfig)
		}
	case StoreBackendMemory:
	case StoreBackendValkey:
		if c.ValkeyAddr == "" {
			return fmt.Errorf("valkey store requires an address: %w", cmserrors.ErrStoreConfig)
		}
	default:
		return fmt.Errorf("unknown store backend %q: %w", c.Backend, cmserrors.ErrStoreConfig)
	}
	return nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cmsctl-credentials.json"
	}
	return filepath.Join(dir, "cmsctl", "credentials.json")
}
