// Package client is the entry point of the store: UploadFile and
// DownloadFile, plus an optional local catalog of uploaded files.
package client

import (
	"context"
	"net/http"

	"github.com/pyropy/relstore/core/api"
	"github.com/pyropy/relstore/core/model"
	"github.com/pyropy/relstore/core/transfer"
	"github.com/pyropy/relstore/lib/logger"
)

var log, _ = logger.New("client")

type Client struct {
	*FileMetadataStore

	Cfg        Config
	HTTPClient *http.Client
}

type Option func(*Client)

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = httpClient
	}
}

// WithFileMetadataStore records every successful upload in store.
func WithFileMetadataStore(store *FileMetadataStore) Option {
	return func(c *Client) {
		c.FileMetadataStore = store
	}
}

func NewClient(cfg Config, options ...Option) *Client {
	c := &Client{Cfg: cfg}
	for _, opt := range options {
		opt(c)
	}

	return c
}

// apiClient is built for every operation, nothing is shared between calls.
func (c *Client) apiClient(token string) (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL:    c.Cfg.APIURL,
		Token:      token,
		HTTPClient: c.HTTPClient,
	})
}

// UploadFile stores data in repo under fileName. token needs write access
// to repo. repo is "owner/name" or a repository URL.
func (c *Client) UploadFile(ctx context.Context, fileName string, data []byte, repo, token string) (model.FileLocator, error) {
	r, err := model.ParseRepository(repo)
	if err != nil {
		return model.FileLocator{}, err
	}

	apiClient, err := c.apiClient(token)
	if err != nil {
		return model.FileLocator{}, err
	}

	loc, err := transfer.NewUploader(apiClient, c.Cfg.transferOptions()).Upload(ctx, fileName, data, r)
	if err != nil {
		return model.FileLocator{}, err
	}

	if c.FileMetadataStore != nil {
		metadata := model.NewFileMetadata(fileName, r.String(), len(data), loc)
		if err := c.AddNewFileMetadata(ctx, metadata); err != nil {
			log.Warnw("upload", "status", "catalog write failed", "file", fileName, "err", err)
		}
	}

	return loc, nil
}

// DownloadFile returns the bytes and name of the file behind loc. An empty
// token downloads anonymously.
func (c *Client) DownloadFile(ctx context.Context, loc model.FileLocator, token string) ([]byte, string, error) {
	apiClient, err := c.apiClient(token)
	if err != nil {
		return nil, "", err
	}

	return transfer.NewDownloader(apiClient, c.Cfg.transferOptions()).Download(ctx, loc)
}

// DownloadByName resolves name through the catalog and downloads it.
func (c *Client) DownloadByName(ctx context.Context, name, token string) ([]byte, string, error) {
	if c.FileMetadataStore == nil {
		return nil, "", ErrFileNotFound
	}

	metadata, err := c.Get(ctx, name)
	if err != nil {
		return nil, "", err
	}

	return c.DownloadFile(ctx, metadata.Locator, token)
}

// UploadFile and DownloadFile with the default configuration.
func UploadFile(ctx context.Context, fileName string, data []byte, repo, token string) (model.FileLocator, error) {
	return NewClient(DefaultConfig()).UploadFile(ctx, fileName, data, repo, token)
}

func DownloadFile(ctx context.Context, loc model.FileLocator, token string) ([]byte, string, error) {
	return NewClient(DefaultConfig()).DownloadFile(ctx, loc, token)
}
