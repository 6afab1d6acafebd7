package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/pyropy/relstore/core/errs"
	"github.com/pyropy/relstore/lib/urlnorm"
)

// FileLocator identifies an uploaded file. Callers should persist it as an
// opaque value and hand it back to DownloadFile unchanged.
type FileLocator struct {
	// AssetURL is the base URL every chunk URL is derived from by
	// appending "-chunk{i}".
	AssetURL *url.URL

	// Chunks is the number of chunks the file was split into.
	Chunks int
}

type fileLocatorJSON struct {
	AssetURL string `json:"asset_url"`
	Chunks   int    `json:"chunks"`
}

// NewFileLocator builds a locator from chunk 0's download URL.
func NewFileLocator(chunkZeroURL string, chunks int) (FileLocator, error) {
	u, err := urlnorm.Normalize(chunkZeroURL)
	if err != nil {
		return FileLocator{}, errs.New("newFileLocator", errs.ErrMalformedURL, err)
	}

	if chunks < 1 {
		return FileLocator{}, errs.New("newFileLocator", errs.ErrInvalidLocator, fmt.Errorf("chunk count %d", chunks))
	}

	u.Path = strings.TrimSuffix(u.Path, ChunkSuffix(0))

	return FileLocator{AssetURL: u, Chunks: chunks}, nil
}

func (l FileLocator) ChunkURL(index int) string {
	return l.AssetURL.String() + ChunkSuffix(index)
}

func (l FileLocator) Validate() error {
	if l.AssetURL == nil || l.AssetURL.Scheme == "" || l.AssetURL.Host == "" {
		return errs.New("validateLocator", errs.ErrInvalidLocator, fmt.Errorf("missing asset url"))
	}

	if l.Chunks < 1 {
		return errs.New("validateLocator", errs.ErrInvalidLocator, fmt.Errorf("chunk count %d", l.Chunks))
	}

	return nil
}

func (l FileLocator) MarshalJSON() ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	return json.Marshal(fileLocatorJSON{
		AssetURL: l.AssetURL.String(),
		Chunks:   l.Chunks,
	})
}

func (l *FileLocator) UnmarshalJSON(b []byte) error {
	var raw fileLocatorJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return errs.New("unmarshalLocator", errs.ErrInvalidLocator, err)
	}

	u, err := url.Parse(raw.AssetURL)
	if err != nil {
		return errs.New("unmarshalLocator", errs.ErrInvalidLocator, err)
	}

	loc := FileLocator{AssetURL: u, Chunks: raw.Chunks}
	if err := loc.Validate(); err != nil {
		return err
	}

	*l = loc
	return nil
}

// ParseFileLocator decodes the JSON form produced by String.
func ParseFileLocator(s string) (FileLocator, error) {
	var loc FileLocator
	if err := json.Unmarshal([]byte(s), &loc); err != nil {
		return FileLocator{}, err
	}

	return loc, nil
}

func (l FileLocator) String() string {
	b, err := l.MarshalJSON()
	if err != nil {
		return "{}"
	}

	return string(b)
}
