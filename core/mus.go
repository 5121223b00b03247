package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types that cross the storage boundary. Only the
// embedding cache persists anything, so this stays small enough to write by
// hand instead of generating.

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

// ContentHashMUS serializes ContentHash values.
var ContentHashMUS = contentHashMUS{}

type contentHashMUS struct{}

func (contentHashMUS) Marshal(v ContentHash, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (contentHashMUS) Unmarshal(bs []byte) (v ContentHash, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ContentHash(u), n, err
}

func (contentHashMUS) Size(v ContentHash) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (contentHashMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// EmbeddingEntryMUS serializes EmbeddingEntry values.
var EmbeddingEntryMUS = embeddingEntryMUS{}

type embeddingEntryMUS struct{}

func (embeddingEntryMUS) Marshal(v EmbeddingEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.CaseId, bs)
	n += ContentHashMUS.Marshal(v.Hash, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	return n
}

func (embeddingEntryMUS) Unmarshal(bs []byte) (v EmbeddingEntry, n int, err error) {
	var n1 int
	v.CaseId, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Hash, n1, err = ContentHashMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (embeddingEntryMUS) Size(v EmbeddingEntry) (size int) {
	size = ord.String.Size(v.CaseId)
	size += ContentHashMUS.Size(v.Hash)
	size += vectorMUS.Size(v.Vector)
	return size
}

func (embeddingEntryMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ContentHashMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	return
}
