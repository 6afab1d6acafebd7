package checksum

import (
	"github.com/opencontainers/go-digest"
)

// ContentHash returns the hex encoded sha256 of data. Asset names are
// derived from it, so the algorithm must stay fixed for dedup to keep
// matching previously uploaded files.
func ContentHash(data []byte) string {
	return digest.SHA256.FromBytes(data).Encoded()
}
