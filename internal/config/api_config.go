package config

import "time"

type APIConfig interface {
	GetBaseURL() string
	GetAPIPath() string
	GetRefreshPath() string
	GetLoginPath() string
	GetRequestTimeout() time.Duration
}

// API describes where the CMS backend lives.
type API struct {
	BaseURL        string        `yaml:"base_url" env:"CMS_BASE_URL"`
	APIPath        string        `yaml:"api_path" env:"CMS_API_PATH"`
	RefreshPath    string        `yaml:"refresh_path" env:"CMS_REFRESH_PATH"`
	LoginPath      string        `yaml:"login_path" env:"CMS_LOGIN_PATH"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CMS_REQUEST_TIMEOUT"`
}

var _ APIConfig = API{}

// GetBaseURL returns the backend origin, e.g. "https://cms.example.com"
func (a API) GetBaseURL() string {
	return a.BaseURL
}

// GetAPIPath returns the fixed path every API endpoint lives under
func (a API) GetAPIPath() string {
	return a.APIPath
}

// GetRefreshPath is relative to the API path
func (a API) GetRefreshPath() string {
	return a.RefreshPath
}

// GetLoginPath is the login entry point users are sent to once the session is unrecoverable
func (a API) GetLoginPath() string {
	return a.LoginPath
}

func (a API) GetRequestTimeout() time.Duration {
	return a.RequestTimeout
}
