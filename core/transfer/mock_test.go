package transfer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/pyropy/relstore/core/model"
	"github.com/pyropy/relstore/rpc/releases"
)

const mockDownloadBase = "https://dl.test/o/r/releases/download/files/"

// mockAPI is an in-memory release with a single tag.
type mockAPI struct {
	mu      sync.Mutex
	assets  map[string][]byte
	order   []string
	uploads int

	// UploadAssetFunc and DownloadAssetFunc override the in-memory
	// behaviour when set.
	UploadAssetFunc   func(name string, data []byte) (*releases.AssetReply, error)
	DownloadAssetFunc func(downloadURL string) ([]byte, error)
}

func newMockAPI() *mockAPI {
	return &mockAPI{assets: make(map[string][]byte)}
}

func (m *mockAPI) GetReleaseByTag(_ context.Context, _ model.Repository, _ string) (*releases.ReleaseReply, error) {
	upload := "https://uploads.test/repos/o/r/releases/1/assets{?name,label}"
	assets := "https://api.test/repos/o/r/releases/1/assets"
	return &releases.ReleaseReply{UploadURL: &upload, AssetsURL: &assets}, nil
}

func (m *mockAPI) CreateRelease(ctx context.Context, repo model.Repository, tag string) (*releases.ReleaseReply, error) {
	return m.GetReleaseByTag(ctx, repo, tag)
}

func (m *mockAPI) PutContents(context.Context, model.Repository, string, string, []byte) error {
	return nil
}

func (m *mockAPI) ListAssets(_ context.Context, _ *url.URL) ([]releases.AssetReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	replies := make([]releases.AssetReply, 0, len(m.order))
	for _, name := range m.order {
		replies = append(replies, releases.AssetReply{Name: name, BrowserDownloadURL: mockDownloadBase + name})
	}

	return replies, nil
}

func (m *mockAPI) UploadAsset(_ context.Context, _ *url.URL, name string, data []byte) (*releases.AssetReply, error) {
	m.mu.Lock()
	m.uploads++
	m.mu.Unlock()

	if m.UploadAssetFunc != nil {
		return m.UploadAssetFunc(name, data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.assets[name]; exists {
		return nil, fmt.Errorf("asset %s already exists", name)
	}

	m.assets[name] = append([]byte(nil), data...)
	m.order = append(m.order, name)

	return &releases.AssetReply{Name: name, BrowserDownloadURL: mockDownloadBase + name}, nil
}

func (m *mockAPI) DownloadAsset(_ context.Context, downloadURL string) ([]byte, error) {
	if m.DownloadAssetFunc != nil {
		return m.DownloadAssetFunc(downloadURL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.assets[strings.TrimPrefix(downloadURL, mockDownloadBase)]
	if !ok {
		return nil, fmt.Errorf("no asset at %s", downloadURL)
	}

	return data, nil
}

func (m *mockAPI) uploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}
