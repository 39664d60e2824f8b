package config

const (
	StoreBackendFile   = "file"
	StoreBackendMemory = "memory"
	StoreBackendValkey = "valkey"
)

type StoreConfig interface {
	GetStoreBackend() string
	GetStorePath() string
	GetStorePassphrase() string
	GetValkeyAddr() string
	GetValkeyPrefix() string
}

// Store selects and configures the credential store.
type Store struct {
	Backend      string `yaml:"backend" env:"CMS_STORE"`
	Path         string `yaml:"path" env:"CMS_STORE_PATH"`
	Passphrase   string `yaml:"passphrase" env:"CMS_STORE_PASSPHRASE"`
	ValkeyAddr   string `yaml:"valkey_addr" env:"CMS_VALKEY_ADDR"`
	ValkeyPrefix string `yaml:"valkey_prefix" env:"CMS_VALKEY_PREFIX"`
}

var _ StoreConfig = Store{}

func (s Store) GetStoreBackend() string {
	return s.Backend
}

func (s Store) GetStorePath() string {
	return s.Path
}

// GetStorePassphrase enables file store encryption when non-empty
func (s Store) GetStorePassphrase() string {
	return s.Passphrase
}

func (s Store) GetValkeyAddr() string {
	return s.ValkeyAddr
}

func (s Store) GetValkeyPrefix() string {
	return s.ValkeyPrefix
}
