package config

// EnvVars holds the process-level settings.
type EnvVars struct {
	Env      string `yaml:"env" env:"CMS_ENV"`
	AppName  string `yaml:"app_name" env:"CMS_APP_NAME"`
	LogLevel string `yaml:"log_level" env:"CMS_LOG_LEVEL"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

// GetLogLevel returns a zerolog level name such as "debug" or "warn".
func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}
