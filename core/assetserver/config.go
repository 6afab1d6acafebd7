package assetserver

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

var (
	ErrInvalidConfig = errors.New("invalid asset server config")
)

// EnvPrefix is prepended to every variable read by GetConfig, e.g. ASSETSERVER_PORT.
const EnvPrefix = "ASSETSERVER"

type Config struct {
	Host string `envconfig:"HOST" default:"127.0.0.1"`
	Port int    `envconfig:"PORT" default:"8080"`

	// PublicURL is the address written into release and asset URLs. When
	// empty it is derived from the Host header of each request.
	PublicURL string `envconfig:"PUBLIC_URL"`

	Root string `envconfig:"ROOT" default:"assets"`

	// CacheBytes bounds the memory held by recently read assets.
	CacheBytes int64 `envconfig:"CACHE_BYTES" default:"67108864"`

	// PageSize is the default and the largest page of an asset listing.
	PageSize int `envconfig:"PAGE_SIZE" default:"100"`

	// Token, when set, is required as a bearer credential on writes.
	Token string `envconfig:"TOKEN"`

	// AutoInit treats every repository as having an initial commit. When
	// false, releases can only be created after a contents commit.
	AutoInit bool `envconfig:"AUTO_INIT" default:"true"`
}

func GetConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process(EnvPrefix, &cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("%w: page size %d, must be at least 1", ErrInvalidConfig, c.PageSize)
	}

	if c.CacheBytes < 0 {
		return fmt.Errorf("%w: cache bytes %d, must not be negative", ErrInvalidConfig, c.CacheBytes)
	}

	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Host:      "127.0.0.1",
		Port:      8080,
		Root:      "assets",
		CacheBytes: 64 << 20,
		PageSize:   100,
		AutoInit:   true,
	}
}
