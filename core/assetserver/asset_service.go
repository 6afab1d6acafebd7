package assetserver

import (
	"errors"
	"fmt"
	"os"
	fp "path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pyropy/relstore/lib/cache"
	concurrentMap "github.com/pyropy/relstore/lib/concurrent_map"
)

var (
	ErrReleaseNotFound  = errors.New("release not found")
	ErrReleaseExists    = errors.New("release already exists")
	ErrEmptyRepository  = errors.New("repository is empty")
	ErrContentExists    = errors.New("content already exists")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrAssetExists      = errors.New("asset already exists")
	ErrInvalidAssetName = errors.New("invalid asset name")
)

type Release struct {
	ID        int64
	Owner     string
	Repo      string
	Tag       string
	CreatedAt time.Time
}

type Asset struct {
	ID        int64
	ReleaseID int64
	Name      string
	Size      int64
	Path      string
}

// AssetService keeps releases and their assets. Asset bytes live in files
// under the root directory, the index lives in memory.
type AssetService struct {
	root     string
	autoInit bool

	// mu serialises mutations of the index.
	mu     sync.Mutex
	nextID atomic.Int64

	commits      *concurrentMap.Map[string, []string]
	releases     *concurrentMap.Map[string, Release]
	releasesByID *concurrentMap.Map[int64, Release]
	assets       *concurrentMap.Map[int64, []Asset]

	hot *cache.LRU[string, []byte]
}

func NewAssetService(root string, cacheBytes int64, autoInit bool) (*AssetService, error) {
	err := os.MkdirAll(root, 0750)
	if err != nil && !os.IsExist(err) {
		return nil, err
	}

	return &AssetService{
		root:         root,
		autoInit:     autoInit,
		commits:      concurrentMap.NewMap[string, []string](),
		releases:     concurrentMap.NewMap[string, Release](),
		releasesByID: concurrentMap.NewMap[int64, Release](),
		assets:       concurrentMap.NewMap[int64, []Asset](),
		hot:          cache.NewLRU[string, []byte](cacheBytes, func(b []byte) int64 { return int64(len(b)) }),
	}, nil
}

func repoKey(owner, repo string) string {
	return owner + "/" + repo
}

func releaseKey(owner, repo, tag string) string {
	return repoKey(owner, repo) + "@" + tag
}

func (as *AssetService) HasCommits(owner, repo string) bool {
	if as.autoInit {
		return true
	}

	paths, _ := as.commits.Get(repoKey(owner, repo))
	return len(paths) > 0
}

// Commits returns the paths committed through PutContents, oldest first.
func (as *AssetService) Commits(owner, repo string) []string {
	paths, _ := as.commits.Get(repoKey(owner, repo))
	return slices.Clone(paths)
}

// PutContents records a commit adding path. Content is not kept.
func (as *AssetService) PutContents(owner, repo, path string) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	key := repoKey(owner, repo)
	paths, _ := as.commits.Get(key)
	if slices.Contains(paths, path) {
		return fmt.Errorf("%w: %s", ErrContentExists, path)
	}

	as.commits.Set(key, append(slices.Clone(paths), path))
	return nil
}

func (as *AssetService) GetRelease(owner, repo, tag string) (Release, error) {
	rel, exists := as.releases.Get(releaseKey(owner, repo, tag))
	if !exists {
		return Release{}, ErrReleaseNotFound
	}

	return rel, nil
}

func (as *AssetService) GetReleaseByID(owner, repo string, id int64) (Release, error) {
	rel, exists := as.releasesByID.Get(id)
	if !exists || rel.Owner != owner || rel.Repo != repo {
		return Release{}, ErrReleaseNotFound
	}

	return rel, nil
}

func (as *AssetService) CreateRelease(owner, repo, tag string) (Release, error) {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.HasCommits(owner, repo) {
		return Release{}, ErrEmptyRepository
	}

	key := releaseKey(owner, repo, tag)
	if _, exists := as.releases.Get(key); exists {
		return Release{}, ErrReleaseExists
	}

	rel := Release{
		ID:        as.nextID.Add(1),
		Owner:     owner,
		Repo:      repo,
		Tag:       tag,
		CreatedAt: time.Now().UTC(),
	}

	as.releases.Set(key, rel)
	as.releasesByID.Set(rel.ID, rel)

	return rel, nil
}

// ListAssets returns one page of assets in upload order and whether more
// follow. page and perPage below one are treated as one.
func (as *AssetService) ListAssets(releaseID int64, page, perPage int) ([]Asset, bool) {
	all, _ := as.assets.Get(releaseID)

	page, perPage = max(page, 1), max(perPage, 1)

	start := (page - 1) * perPage
	if start >= len(all) {
		return []Asset{}, false
	}

	end := min(start+perPage, len(all))
	return slices.Clone(all[start:end]), end < len(all)
}

func validAssetName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, "/\\")
}

// UploadAsset stores data as a new asset of the release. Names are unique
// within a release.
func (as *AssetService) UploadAsset(releaseID int64, name string, data []byte) (Asset, error) {
	if !validAssetName(name) {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}

	if _, exists := as.releasesByID.Get(releaseID); !exists {
		return Asset{}, ErrReleaseNotFound
	}

	path := fp.Join(as.root, uuid.NewString())
	err := os.WriteFile(path, data, 0640)
	if err != nil {
		return Asset{}, err
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	existing, _ := as.assets.Get(releaseID)
	if slices.ContainsFunc(existing, func(a Asset) bool { return a.Name == name }) {
		_ = os.Remove(path)
		return Asset{}, fmt.Errorf("%w: %s", ErrAssetExists, name)
	}

	asset := Asset{
		ID:        as.nextID.Add(1),
		ReleaseID: releaseID,
		Name:      name,
		Size:      int64(len(data)),
		Path:      path,
	}

	as.assets.Set(releaseID, append(slices.Clone(existing), asset))
	return asset, nil
}

// ReadAsset returns the bytes of the named asset of the release tagged tag.
func (as *AssetService) ReadAsset(owner, repo, tag, name string) ([]byte, error) {
	rel, err := as.GetRelease(owner, repo, tag)
	if err != nil {
		return nil, err
	}

	all, _ := as.assets.Get(rel.ID)
	i := slices.IndexFunc(all, func(a Asset) bool { return a.Name == name })
	if i < 0 {
		return nil, ErrAssetNotFound
	}

	asset := all[i]
	if data, ok := as.hot.Get(asset.Path); ok {
		return data, nil
	}

	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return nil, err
	}

	as.hot.Put(asset.Path, data)
	log.Debugw("asset cache", "event", "miss", "asset", name, "entries", as.hot.Len(), "bytes", as.hot.Used())

	return data, nil
}
