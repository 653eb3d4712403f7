package grph

import "errors"

// Errors
var (
	ErrInputFormat    = errors.New("malformed edge list line")
	ErrWeightRange    = errors.New("edge weight outside 0..255")
	ErrIDOverflow     = errors.New("vertex id exceeds 32 bits")
	ErrHostEndian     = errors.New("host is not little-endian")
	ErrBadMagic       = errors.New("bad magic, expected 'GRPH'")
	ErrBadVersion     = errors.New("unsupported format version")
	ErrBadEndian      = errors.New("unsupported endianness (only little-endian=1)")
	ErrTruncated      = errors.New("unexpected EOF in binary stream")
	ErrVarintOverflow = errors.New("varint exceeds 64 bits")
	ErrVtxRange       = errors.New("vertex index out of range")
	ErrInternal       = errors.New("internal invariant violation")
	ErrBadSig         = errors.New("malformed edge signature")
	ErrBadCatalogOpts = errors.New("bad catalog param")
	ErrCatalogVers    = errors.New("catalog version is incompatible")
)
