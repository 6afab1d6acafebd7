// Package transfer moves files in and out of a release as content
// addressed chunks.
//
// A file is stored as the assets "{hash}-chunk0" .. "{hash}-chunk{n-1}"
// where hash is the sha256 of the file name header followed by the file
// bytes. Chunk 0 starts with the header, so the name travels with the data.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/pyropy/relstore/core/model"
	"github.com/pyropy/relstore/core/release"
	"github.com/pyropy/relstore/lib/checksum"
	"github.com/pyropy/relstore/lib/logger"
	"github.com/pyropy/relstore/rpc/releases"
)

var log, _ = logger.New("transfer")

var (
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)

const (
	// DefaultTag is the release reserved for stored files.
	DefaultTag = "files"

	// DefaultChunkSize keeps request count low while bounding how long a
	// single asset upload takes.
	DefaultChunkSize = 100_000_000
)

// API is the subset of the release API used by uploads and downloads.
type API interface {
	release.API

	ListAssets(ctx context.Context, assetsURL *url.URL) ([]releases.AssetReply, error)
	UploadAsset(ctx context.Context, uploadURL *url.URL, name string, data []byte) (*releases.AssetReply, error)
	DownloadAsset(ctx context.Context, downloadURL string) ([]byte, error)
}

type Options struct {
	// Tag of the release holding the chunks. Defaults to DefaultTag.
	Tag string

	// ChunkSize in bytes. Defaults to DefaultChunkSize.
	ChunkSize int

	// Concurrency bounds in-flight chunk requests. Zero means one
	// goroutine per chunk with no bound.
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.Tag == "" {
		o.Tag = DefaultTag
	}

	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}

	if o.Concurrency < 0 {
		o.Concurrency = 0
	}

	return o
}

// Plan is what an upload of a file will send, computed before any request.
type Plan struct {
	Hash   string
	Size   int
	Chunks []model.Chunk
}

// NewPlan encodes the name header, hashes and partitions the payload.
func NewPlan(fileName string, data []byte, chunkSize int) (Plan, error) {
	if chunkSize <= 0 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunkSize)
	}

	payload, err := EncodePayload(fileName, data)
	if err != nil {
		return Plan{}, err
	}

	hash := checksum.ContentHash(payload)

	return Plan{
		Hash:   hash,
		Size:   len(payload),
		Chunks: model.SplitChunks(hash, payload, chunkSize),
	}, nil
}
