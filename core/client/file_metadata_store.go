package client

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"
	dslvl "github.com/ipfs/go-ds-leveldb"

	"github.com/pyropy/relstore/core/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

// FileMetadataStore is the local catalog of uploaded files keyed by name.
type FileMetadataStore struct {
	Files *dslvl.Datastore
}

func NewFileMetadataStore(dsPath string) (*FileMetadataStore, error) {
	p := fmt.Sprintf("%s/files", dsPath)
	store, err := dslvl.NewDatastore(p, nil)
	if err != nil {
		return nil, err
	}

	return &FileMetadataStore{
		Files: store,
	}, nil
}

// fileKey hex encodes name. ds.NewKey cleans its input as a path, which
// would map "a/../b" and "b" to the same entry. The "f" keeps the empty
// name off the root key.
func fileKey(name model.FileName) ds.Key {
	return ds.RawKey("/f" + hex.EncodeToString([]byte(name)))
}

func (f *FileMetadataStore) Get(ctx context.Context, name model.FileName) (*model.FileMetadata, error) {
	b, err := f.Files.Get(ctx, fileKey(name))
	if errors.Is(err, ds.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	var file model.FileMetadata
	err = json.Unmarshal(b, &file)
	if err != nil {
		return nil, err
	}

	return &file, nil
}

func (f *FileMetadataStore) CheckFileExists(ctx context.Context, name model.FileName) (bool, error) {
	exists, err := f.Files.Has(ctx, fileKey(name))
	if err != nil {
		return false, err
	}

	return exists, nil
}

// AddNewFileMetadata stores metadata under its name, replacing an older entry.
func (f *FileMetadataStore) AddNewFileMetadata(ctx context.Context, metadata model.FileMetadata) error {
	b, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	return f.Files.Put(ctx, fileKey(metadata.Name), b)
}

func (f *FileMetadataStore) All(ctx context.Context) ([]*model.FileMetadata, error) {
	q := dsq.Query{}
	files := make([]*model.FileMetadata, 0)

	res, err := f.Files.Query(ctx, q)
	if err != nil {
		return files, err
	}
	defer res.Close()

	for {
		r, hasNext := res.NextSync()
		if !hasNext {
			break
		}

		if r.Error != nil {
			return files, r.Error
		}

		var file model.FileMetadata
		err = json.Unmarshal(r.Value, &file)
		if err != nil {
			return files, err
		}
		files = append(files, &file)
	}

	return files, nil
}

func (f *FileMetadataStore) Close() error {
	return f.Files.Close()
}
