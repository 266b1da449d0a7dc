package badger

import (
	"encoding/binary"

	"github.com/poiesic/skillmatch/core"
)

// Key prefixes for different data types
const (
	embeddingPrefix = "embrec:"
)

// makeEmbeddingKey generates a key for an embedding entry.
// Format: prefix + BigEndian(content id)
func makeEmbeddingKey(key core.EmbeddingKey) []byte {
	buf := make([]byte, len(embeddingPrefix)+8)
	offset := copy(buf, embeddingPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(key.ID()))
	return buf
}
