package storage

import (
	"errors"
	"fmt"

	com "github.com/mus-format/common-go"
	"github.com/mus-format/mus-go"
	slops "github.com/mus-format/mus-go/options/slice"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/skillmatch/core"
)

const entryFormatVersion uint8 = 1

// MaxVectorDimension bounds the vector length accepted when decoding.
const MaxVectorDimension = 1 << 16

var vectorMUS = ord.NewValidSliceSer[float32](raw.Float32,
	slops.WithLenValidator[float32](com.ValidatorFn[int](func(n int) error {
		if n > MaxVectorDimension {
			return fmt.Errorf("%w: vector dimension %d exceeds %d", ErrSerializationFailed, n, MaxVectorDimension)
		}
		return nil
	})))

// MarshalEntry serializes an embedding cache entry.
//
// Layout: version byte, model, text, then the vector as a length-prefixed
// sequence of raw float32 components.
func MarshalEntry(entry *core.EmbeddingCacheEntry) []byte {
	size := varint.Uint8.Size(entryFormatVersion) +
		ord.String.Size(entry.Key.Model) +
		ord.String.Size(entry.Key.Text) +
		vectorMUS.Size(entry.Vector)
	buf := make([]byte, size)

	n := varint.Uint8.Marshal(entryFormatVersion, buf)
	n += ord.String.Marshal(entry.Key.Model, buf[n:])
	n += ord.String.Marshal(entry.Key.Text, buf[n:])
	vectorMUS.Marshal(entry.Vector, buf[n:])
	return buf
}

// UnmarshalEntry deserializes an embedding cache entry.
func UnmarshalEntry(data []byte) (*core.EmbeddingCacheEntry, error) {
	version, n, err := varint.Uint8.Unmarshal(data)
	if err != nil {
		return nil, decodeError(err)
	}
	if version != entryFormatVersion {
		return nil, fmt.Errorf("%w: unknown entry version %d", ErrSerializationFailed, version)
	}

	model, n1, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, decodeError(err)
	}
	n += n1
	text, n1, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, decodeError(err)
	}
	n += n1
	vector, n1, err := vectorMUS.Unmarshal(data[n:])
	if err != nil {
		return nil, decodeError(err)
	}
	n += n1
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}

	return &core.EmbeddingCacheEntry{
		Key:    core.EmbeddingKey{Model: model, Text: text},
		Vector: vector,
	}, nil
}

func decodeError(err error) error {
	switch {
	case errors.Is(err, mus.ErrTooSmallByteSlice):
		return fmt.Errorf("%w: %w", ErrTruncatedData, err)
	case errors.Is(err, ErrSerializationFailed):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
}
