package model

import "fmt"

type Chunk struct {
	Index int
	Name  string // remote asset name, "{hash}-chunk{index}"
	Data  []byte
}

// ChunkName returns the asset name of chunk index of the file with the given content hash.
func ChunkName(hash string, index int) string {
	return fmt.Sprintf("%s%s", hash, ChunkSuffix(index))
}

func ChunkSuffix(index int) string {
	return fmt.Sprintf("-chunk%d", index)
}

// ChunkCount is ceil(size / chunkSize), never less than one. A chunkSize
// below one means a single chunk.
func ChunkCount(size, chunkSize int) int {
	if size <= 0 || chunkSize <= 0 {
		return 1
	}

	return (size + chunkSize - 1) / chunkSize
}

// SplitChunks partitions data into chunkSize slices named after hash.
// The returned chunks share data's backing array.
func SplitChunks(hash string, data []byte, chunkSize int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = max(len(data), 1)
	}

	count := ChunkCount(len(data), chunkSize)
	chunks := make([]Chunk, 0, count)

	for i := 0; i < count; i++ {
		start := i * chunkSize
		end := min(start+chunkSize, len(data))

		chunks = append(chunks, Chunk{
			Index: i,
			Name:  ChunkName(hash, i),
			Data:  data[start:end],
		})
	}

	return chunks
}
