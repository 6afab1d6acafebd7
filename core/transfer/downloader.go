package transfer

import (
	"context"

	"github.com/pyropy/relstore/core/model"
)

// ChunkFetcher downloads one asset.
type ChunkFetcher interface {
	DownloadAsset(ctx context.Context, downloadURL string) ([]byte, error)
}

type Downloader struct {
	fetcher     ChunkFetcher
	concurrency int
}

func NewDownloader(fetcher ChunkFetcher, opts Options) *Downloader {
	return &Downloader{
		fetcher:     fetcher,
		concurrency: opts.withDefaults().Concurrency,
	}
}

// Download fetches every chunk of loc and returns the file bytes and name.
// Chunks are fetched concurrently and joined in index order.
func (d *Downloader) Download(ctx context.Context, loc model.FileLocator) ([]byte, string, error) {
	if err := loc.Validate(); err != nil {
		return nil, "", err
	}

	results := fanOut("downloadChunk", loc.Chunks, d.concurrency, func(i int) ([]byte, error) {
		return d.fetcher.DownloadAsset(ctx, loc.ChunkURL(i))
	})

	parts := make([][]byte, loc.Chunks)
	total := 0

	for i := 0; i < loc.Chunks; i++ {
		res := <-results
		if res.err != nil {
			log.Errorw("download", "status", "chunk failed", "index", res.index, "err", res.err)
			return nil, "", res.err
		}

		parts[res.index] = res.value
		total += len(res.value)
	}

	payload := make([]byte, 0, total)
	for _, part := range parts {
		payload = append(payload, part...)
	}

	name, body, ok := DecodePayload(payload)
	if !ok {
		log.Warnw("download", "status", "payload has no name header", "url", loc.AssetURL.String(), "bytes", len(payload))
	}

	log.Infow("download", "file", name, "bytes", len(body), "chunks", loc.Chunks)

	return body, name, nil
}
