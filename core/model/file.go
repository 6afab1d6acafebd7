package model

import (
	"time"

	"github.com/google/uuid"
)

// FileMetadata is a local catalog entry remembering where a file went.
type FileMetadata struct {
	ID         uuid.UUID
	Name       string
	Repo       string
	Size       int
	Locator    FileLocator
	UploadedAt time.Time
}

type FileName = string

func NewFileMetadata(name, repo string, size int, locator FileLocator) FileMetadata {
	return FileMetadata{
		ID:         uuid.New(),
		Name:       name,
		Repo:       repo,
		Size:       size,
		Locator:    locator,
		UploadedAt: time.Now().UTC(),
	}
}
