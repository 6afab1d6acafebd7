package transfer

import (
	"context"
	"fmt"

	"github.com/pyropy/relstore/core/errs"
	"github.com/pyropy/relstore/core/model"
	"github.com/pyropy/relstore/core/release"
	"github.com/pyropy/relstore/rpc/releases"
)

type Uploader struct {
	api      API
	resolver *release.Resolver
	opts     Options
}

func NewUploader(api API, opts Options) *Uploader {
	return &Uploader{
		api:      api,
		resolver: release.NewResolver(api),
		opts:     opts.withDefaults(),
	}
}

// Upload stores data under fileName in repo and returns its locator. If an
// identical name and content pair is already stored nothing is uploaded.
func (u *Uploader) Upload(ctx context.Context, fileName string, data []byte, repo model.Repository) (model.FileLocator, error) {
	plan, err := NewPlan(fileName, data, u.opts.ChunkSize)
	if err != nil {
		return model.FileLocator{}, err
	}

	log.Infow("upload", "file", fileName, "repo", repo.String(), "hash", plan.Hash, "size", plan.Size, "chunks", len(plan.Chunks))

	rel, err := u.resolver.ResolveOrCreate(ctx, repo, u.opts.Tag)
	if err != nil {
		return model.FileLocator{}, err
	}

	existing, found, err := u.findExisting(ctx, rel, plan)
	if err != nil {
		return model.FileLocator{}, err
	}

	if found {
		log.Infow("upload", "status", "already stored", "hash", plan.Hash)
		return model.NewFileLocator(existing.BrowserDownloadURL, len(plan.Chunks))
	}

	return u.uploadChunks(ctx, rel, plan)
}

// findExisting looks for chunk 0 of the planned file among the release's assets.
func (u *Uploader) findExisting(ctx context.Context, rel model.Release, plan Plan) (releases.AssetReply, bool, error) {
	assets, err := u.api.ListAssets(ctx, rel.AssetsURL)
	if err != nil {
		return releases.AssetReply{}, false, err
	}

	head := plan.Chunks[0].Name
	for _, asset := range assets {
		if asset.Name == head {
			return asset, true, nil
		}
	}

	return releases.AssetReply{}, false, nil
}

func (u *Uploader) uploadChunks(ctx context.Context, rel model.Release, plan Plan) (model.FileLocator, error) {
	chunks := plan.Chunks

	results := fanOut("uploadChunk", len(chunks), u.opts.Concurrency, func(i int) (*releases.AssetReply, error) {
		chunk := chunks[i]
		log.Debugw("upload chunk", "name", chunk.Name, "bytes", len(chunk.Data))

		return u.api.UploadAsset(ctx, rel.UploadURL, chunk.Name, chunk.Data)
	})

	// Only chunk 0's reply is kept: its download URL becomes the locator.
	var head *releases.AssetReply

	for range chunks {
		res := <-results
		if res.err != nil {
			log.Errorw("upload", "status", "chunk failed", "index", res.index, "hash", plan.Hash, "err", res.err)
			return model.FileLocator{}, res.err
		}

		if res.index == 0 {
			head = res.value
		}
	}

	if head == nil {
		return model.FileLocator{}, errs.New("upload", errs.ErrJoin, fmt.Errorf("no reply recorded for %s", chunks[0].Name))
	}

	log.Infow("upload", "status", "stored", "hash", plan.Hash, "chunks", len(chunks))

	return model.NewFileLocator(head.BrowserDownloadURL, len(chunks))
}
