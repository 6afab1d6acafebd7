// Package release finds or creates the release container that holds a
// store's chunk assets.
package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/pyropy/relstore/core/errs"
	"github.com/pyropy/relstore/core/model"
	"github.com/pyropy/relstore/lib/logger"
	"github.com/pyropy/relstore/lib/urlnorm"
	"github.com/pyropy/relstore/rpc/releases"
)

var log, _ = logger.New("release")

const (
	// BootstrapPath is committed to a repository without commits so a
	// release can be created in it.
	BootstrapPath    = "__no_empty_repo__"
	BootstrapMessage = "add a commit to allow creation of a release."
)

var (
	ErrIncompleteRelease = errors.New("release is missing upload_url or assets_url")
)

// API is the subset of the release API the resolver needs.
type API interface {
	GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*releases.ReleaseReply, error)
	CreateRelease(ctx context.Context, repo model.Repository, tag string) (*releases.ReleaseReply, error)
	PutContents(ctx context.Context, repo model.Repository, path, message string, content []byte) error
}

type state int

const (
	stateLookup state = iota
	stateCreate
	stateBootstrap
)

func (s state) String() string {
	switch s {
	case stateLookup:
		return "lookup"
	case stateCreate:
		return "create"
	case stateBootstrap:
		return "bootstrap"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Resolver struct {
	api API
}

func NewResolver(api API) *Resolver {
	return &Resolver{api: api}
}

// ResolveOrCreate returns the endpoints of the release tagged tag, creating
// it when missing. Lookup and create failures only move the resolver to the
// next state; the error of the lookup after bootstrap is returned as is.
func (r *Resolver) ResolveOrCreate(ctx context.Context, repo model.Repository, tag string) (model.Release, error) {
	st := stateLookup

	for {
		switch st {
		case stateLookup:
			rel, err := r.lookup(ctx, repo, tag)
			if err == nil {
				return rel, nil
			}

			log.Debugw("resolve", "state", st.String(), "repo", repo.String(), "tag", tag, "err", err)
			st = stateCreate

		case stateCreate:
			rel, err := r.create(ctx, repo, tag)
			if err == nil {
				log.Infow("resolve", "status", "created release", "repo", repo.String(), "tag", tag)
				return rel, nil
			}

			log.Debugw("resolve", "state", st.String(), "repo", repo.String(), "tag", tag, "err", err)
			st = stateBootstrap

		case stateBootstrap:
			// At this point the repository most likely has no commits.
			log.Infow("resolve", "status", "bootstrapping repository", "repo", repo.String(), "path", BootstrapPath)

			err := r.api.PutContents(ctx, repo, BootstrapPath, BootstrapMessage, nil)
			if err != nil {
				log.Warnw("resolve", "status", "bootstrap commit failed", "repo", repo.String(), "err", err)
			}

			return r.lookup(ctx, repo, tag)
		}
	}
}

func (r *Resolver) lookup(ctx context.Context, repo model.Repository, tag string) (model.Release, error) {
	reply, err := r.api.GetReleaseByTag(ctx, repo, tag)
	if err != nil {
		return model.Release{}, err
	}

	return toRelease("getRelease", reply)
}

func (r *Resolver) create(ctx context.Context, repo model.Repository, tag string) (model.Release, error) {
	reply, err := r.api.CreateRelease(ctx, repo, tag)
	if err != nil {
		return model.Release{}, err
	}

	return toRelease("createRelease", reply)
}

func toRelease(op string, reply *releases.ReleaseReply) (model.Release, error) {
	if !reply.Complete() {
		return model.Release{}, errs.Decode(op, ErrIncompleteRelease)
	}

	assetsURL, err := urlnorm.Normalize(*reply.AssetsURL)
	if err != nil {
		return model.Release{}, errs.New(op, errs.ErrMalformedURL, err)
	}

	uploadURL, err := urlnorm.Normalize(*reply.UploadURL)
	if err != nil {
		return model.Release{}, errs.New(op, errs.ErrMalformedURL, err)
	}

	return model.Release{AssetsURL: assetsURL, UploadURL: uploadURL}, nil
}
