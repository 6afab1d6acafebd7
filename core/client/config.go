package client

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/pyropy/relstore/core/api"
	"github.com/pyropy/relstore/core/transfer"
)

// EnvPrefix is prepended to every variable read by GetConfig, e.g. RELSTORE_TOKEN.
const EnvPrefix = "RELSTORE"

type Config struct {
	APIURL      string `envconfig:"API_URL" default:"https://api.github.com"`
	Token       string `envconfig:"TOKEN"`
	Repo        string `envconfig:"REPO"`
	Tag         string `envconfig:"TAG" default:"files"`
	ChunkSize   int    `envconfig:"CHUNK_SIZE" default:"100000000"`
	Concurrency int    `envconfig:"CONCURRENCY" default:"0"`
	StorePath   string `envconfig:"STORE_PATH" default:".relstore"`
}

func GetConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process(EnvPrefix, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func DefaultConfig() Config {
	return Config{
		APIURL:    api.DefaultBaseURL,
		Tag:       transfer.DefaultTag,
		ChunkSize: transfer.DefaultChunkSize,
		StorePath: ".relstore",
	}
}

func (c Config) transferOptions() transfer.Options {
	return transfer.Options{
		Tag:         c.Tag,
		ChunkSize:   c.ChunkSize,
		Concurrency: c.Concurrency,
	}
}
