package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_Defaults(t *testing.T) {
	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestGetConfig_Env(t *testing.T) {
	t.Setenv("RELSTORE_API_URL", "http://localhost:8080")
	t.Setenv("RELSTORE_TOKEN", "secret")
	t.Setenv("RELSTORE_REPO", "owner/repo")
	t.Setenv("RELSTORE_TAG", "blobs")
	t.Setenv("RELSTORE_CHUNK_SIZE", "1024")
	t.Setenv("RELSTORE_CONCURRENCY", "4")
	t.Setenv("RELSTORE_STORE_PATH", "/tmp/catalog")

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, Config{
		APIURL:      "http://localhost:8080",
		Token:       "secret",
		Repo:        "owner/repo",
		Tag:         "blobs",
		ChunkSize:   1024,
		Concurrency: 4,
		StorePath:   "/tmp/catalog",
	}, *cfg)

	opts := cfg.transferOptions()
	assert.Equal(t, "blobs", opts.Tag)
	assert.Equal(t, 1024, opts.ChunkSize)
	assert.Equal(t, 4, opts.Concurrency)
}

func TestGetConfig_Invalid(t *testing.T) {
	t.Setenv("RELSTORE_CHUNK_SIZE", "big")

	_, err := GetConfig()
	assert.Error(t, err)
}
