// Package grph expresses undirected weighted graphs as compact binary
// images and back.
//
// A graph arrives as an edge list: one (idA, idB, weight) triplet per
// edge, endpoint ids being arbitrary 32-bit values.  The codec re-indexes
// the ids that actually appear to a dense 0-based range (preserving id
// order), splits self-loops from proper edges, and writes the adjacency
// with varint gap/delta coding.  Decoding restores the exact canonical
// edge multiset.
package grph

import (
	"encoding/binary"
	"fmt"
)

// Binary format framing.
const (
	// Magic opens every binary graph image.
	Magic = "GRPH"

	// Vers1 images carry fixed-width counts and mapping (decode only).
	Vers1 = byte(0x01)

	// Vers2 images carry varint counts and a delta-coded mapping.
	// This is the only version written.
	Vers2 = byte(0x02)

	// LittleEndian is the only endianness tag accepted or produced.
	LittleEndian = byte(0x01)

	// MaxWeight bounds an edge weight (one raw byte on the wire).
	MaxWeight = 0xFF
)

// VtxID is a vertex identifier as it appears in input text.
type VtxID uint32

// VtxIdx is a dense 0-based vertex index assigned by compaction.
// Indices preserve VtxID order.
type VtxIdx uint32

// TripletSource enumerates a graph's edges as (a, b, weight) triplets by
// original id.  Sources are restartable: each ForEachTriplet call visits
// the complete edge list again, so callers may run multiple passes.
// Iteration stops at the first error, which is returned as is.
type TripletSource interface {
	ForEachTriplet(fn func(a, b VtxID, w byte) error) error
}

// TripletSink receives reconstructed edges from a decode pass.
type TripletSink interface {
	EmitTriplet(a, b VtxID, w byte) error
}

// Edge-signature sizing.
const (
	// EdgeHashSz is the digest width of a single hashed edge record.
	EdgeHashSz = 8

	// EdgeSigSz is the marshaled size of an EdgeSig.
	EdgeSigSz = 24
)

// EdgeSig is an order-independent signature of an edge multiset: the
// count, wrapping sum, and xor of the per-edge record hashes.  Equal
// signatures mean equal multisets for any practical purpose, and the
// combination is insensitive to edge order while still counting
// duplicates.
type EdgeSig struct {
	Count uint64
	Sum   uint64
	Xor   uint64
}

// Mix folds one edge-record hash into the signature.
func (sig *EdgeSig) Mix(h uint64) {
	sig.Count++
	sig.Sum += h
	sig.Xor ^= h
}

// AppendTo marshals the signature as 3 little-endian u64s.
func (sig *EdgeSig) AppendTo(in []byte) []byte {
	var buf [EdgeSigSz]byte
	binary.LittleEndian.PutUint64(buf[0:8], sig.Count)
	binary.LittleEndian.PutUint64(buf[8:16], sig.Sum)
	binary.LittleEndian.PutUint64(buf[16:24], sig.Xor)
	return append(in, buf[:]...)
}

// UnmarshalEdgeSig reads back what AppendTo wrote.
func UnmarshalEdgeSig(in []byte) (EdgeSig, error) {
	if len(in) != EdgeSigSz {
		return EdgeSig{}, ErrBadSig
	}
	return EdgeSig{
		Count: binary.LittleEndian.Uint64(in[0:8]),
		Sum:   binary.LittleEndian.Uint64(in[8:16]),
		Xor:   binary.LittleEndian.Uint64(in[16:24]),
	}, nil
}

func (sig EdgeSig) String() string {
	return fmt.Sprintf("{n=%d sum=%016x xor=%016x}", sig.Count, sig.Sum, sig.Xor)
}

// CatalogEntry describes one encoded graph recorded in a Catalog.
type CatalogEntry struct {
	VtxCount  uint64 `msgpack:"nv"`
	EdgeCount uint64 `msgpack:"ne"`
	LoopCount uint64 `msgpack:"nl"`
	ByteSize  uint64 `msgpack:"sz"`
	SrcPath   string `msgpack:"src"`
	AddedAt   int64  `msgpack:"at"`
}

// CatalogOpts configures how a Catalog opens.
type CatalogOpts struct {
	// DbPathName is the directory holding the store.  Empty means an
	// in-memory store that vanishes on Close.
	DbPathName string

	// ReadOnly opens the store for reading only.
	ReadOnly bool
}

// Catalog records encoded graphs keyed by their edge-multiset
// signature, so re-encodings of the same graph are recognized as
// duplicates.
type Catalog interface {

	// TryAdd inserts entry under sig unless a graph with that signature
	// is already present.  Returns true if the entry was added, false
	// if it was a duplicate.
	TryAdd(sig EdgeSig, entry CatalogEntry) (bool, error)

	// ForEach visits every entry in ascending signature-key order.
	// Iteration stops at the first error, which is returned as is.
	ForEach(fn func(sig EdgeSig, entry CatalogEntry) error) error

	// NumGraphs returns how many distinct graphs have been recorded.
	NumGraphs() int64

	// NumDupes returns how many TryAdd calls found their graph already
	// present.
	NumDupes() int64

	// Close flushes counters and releases the store.
	Close() error
}
