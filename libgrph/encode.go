package libgrph

import (
	"io"
	"unsafe"

	"github.com/2x3systems/grph/grph"
)

// hostLittleEndian reports whether this machine stores multi-byte
// integers least-significant byte first.  The wire format is defined in
// little-endian terms only, so both pipelines require it of the host.
func hostLittleEndian() bool {
	probe := uint16(1)
	return *(*byte)(unsafe.Pointer(&probe)) == 1
}

// EncodeTo writes the version 2 binary image of g to w.  Identical
// graphs always produce byte-identical images.  Write errors latch in
// the wire buffer and surface from the final flush.
func (g *Graph) EncodeTo(w io.Writer) error {
	if !hostLittleEndian() {
		return grph.ErrHostEndian
	}

	ww := NewWireWriter(w)

	ww.PutBytes([]byte(grph.Magic))
	ww.PutByte(grph.Vers2)
	ww.PutByte(grph.LittleEndian)

	N := len(g.Orig)
	ww.PutUvarint(uint64(N))
	ww.PutUvarint(g.EdgeCount)

	// Mapping: first id absolute, the rest as ascending deltas.
	if N > 0 {
		ww.PutU32(uint32(g.Orig[0]))
		for i := 1; i < N; i++ {
			ww.PutUvarint(uint64(g.Orig[i] - g.Orig[i-1]))
		}
	}

	// Adjacency: per vertex, degree then (gap, weight) pairs with the
	// gap base seeded to the vertex itself.
	for i := 0; i < N; i++ {
		lo, hi := g.Offs[i], g.Offs[i+1]
		ww.PutUvarint(hi - lo)
		prev := grph.VtxIdx(i)
		for k := lo; k < hi; k++ {
			nbr := g.Nbrs[k]
			ww.PutUvarint(uint64(nbr - prev))
			ww.PutByte(g.Wgts[k])
			prev = nbr
		}
	}

	// Loops: always present, even for an empty graph, so the image is
	// self-delimiting.
	ww.PutUvarint(uint64(len(g.Loops)))
	prev := grph.VtxIdx(0)
	for _, lp := range g.Loops {
		ww.PutUvarint(uint64(lp.Vtx - prev))
		ww.PutByte(lp.W)
		prev = lp.Vtx
	}

	return ww.Flush()
}
