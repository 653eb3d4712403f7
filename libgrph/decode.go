package libgrph

import (
	"math"

	"github.com/pkg/errors"

	"github.com/2x3systems/grph/grph"
)

// Decode parses a binary graph image and streams the reconstructed
// triplets into sink: vertex-major, neighbors ascending, loops last,
// endpoints restored to their original ids.  Both format versions are
// accepted; trailing bytes past the loop section are ignored.
func Decode(data []byte, sink grph.TripletSink) error {
	if !hostLittleEndian() {
		return grph.ErrHostEndian
	}

	rr := NewWireReader(data)

	vers, err := parseHeader(rr)
	if err != nil {
		return err
	}
	numVtx, _, err := readCounts(rr, vers)
	if err != nil {
		return err
	}
	orig, err := readMapping(rr, vers, numVtx)
	if err != nil {
		return err
	}

	for i := uint64(0); i < numVtx; i++ {
		deg, err := rr.Uvarint()
		if err != nil {
			return errors.Wrapf(err, "adjacency vertex %d", i)
		}
		prev := i
		for e := uint64(0); e < deg; e++ {
			gap, err := rr.Uvarint()
			if err != nil {
				return errors.Wrapf(err, "adjacency vertex %d", i)
			}
			nbr := prev + gap
			if nbr < prev || nbr >= numVtx {
				return errors.Wrapf(grph.ErrVtxRange, "adjacency vertex %d: neighbor", i)
			}
			w, err := rr.Byte()
			if err != nil {
				return errors.Wrapf(err, "adjacency vertex %d", i)
			}
			if err := sink.EmitTriplet(orig[i], orig[nbr], w); err != nil {
				return err
			}
			prev = nbr
		}
	}

	loopCount, err := rr.Uvarint()
	if err != nil {
		return errors.Wrap(err, "loops")
	}
	prev := uint64(0)
	for k := uint64(0); k < loopCount; k++ {
		delta, err := rr.Uvarint()
		if err != nil {
			return errors.Wrap(err, "loops")
		}
		vtx := prev + delta
		if vtx < prev || vtx >= numVtx {
			return errors.Wrap(grph.ErrVtxRange, "loops")
		}
		w, err := rr.Byte()
		if err != nil {
			return errors.Wrap(err, "loops")
		}
		if err := sink.EmitTriplet(orig[vtx], orig[vtx], w); err != nil {
			return err
		}
		prev = vtx
	}

	return nil
}

// parseHeader consumes the magic, version, and endianness tag, leaving
// the cursor on the counts section.
func parseHeader(rr *WireReader) (vers byte, err error) {
	magic, err := rr.Bytes(len(grph.Magic))
	if err != nil {
		return 0, errors.Wrap(err, "header")
	}
	if string(magic) != grph.Magic {
		return 0, grph.ErrBadMagic
	}
	vers, err = rr.Byte()
	if err != nil {
		return 0, errors.Wrap(err, "header")
	}
	if vers != grph.Vers1 && vers != grph.Vers2 {
		return 0, errors.Wrapf(grph.ErrBadVersion, "version %d", vers)
	}
	endian, err := rr.Byte()
	if err != nil {
		return 0, errors.Wrap(err, "header")
	}
	if endian != grph.LittleEndian {
		return 0, errors.Wrapf(grph.ErrBadEndian, "endian tag %d", endian)
	}
	return vers, nil
}

// readCounts consumes the N and M fields.  M is carried in the image
// but nothing downstream depends on it.
func readCounts(rr *WireReader, vers byte) (numVtx, numEdges uint64, err error) {
	switch vers {
	case grph.Vers1:
		n, err := rr.U32()
		if err != nil {
			return 0, 0, errors.Wrap(err, "counts")
		}
		m, err := rr.U64()
		if err != nil {
			return 0, 0, errors.Wrap(err, "counts")
		}
		return uint64(n), m, nil

	default:
		n, err := rr.Uvarint()
		if err != nil {
			return 0, 0, errors.Wrap(err, "counts")
		}
		m, err := rr.Uvarint()
		if err != nil {
			return 0, 0, errors.Wrap(err, "counts")
		}
		if n > math.MaxUint32 {
			return 0, 0, errors.Wrapf(grph.ErrVtxRange, "counts: vertex count %d", n)
		}
		return n, m, nil
	}
}

// readMapping reconstructs the dense-index to original-id table.  The
// claimed vertex count is held against the bytes actually remaining
// before allocating (every mapping entry occupies at least one byte),
// so a corrupt count fails as truncation instead of an enormous
// allocation.
func readMapping(rr *WireReader, vers byte, numVtx uint64) ([]grph.VtxID, error) {
	if numVtx == 0 {
		return nil, nil
	}

	switch vers {
	case grph.Vers1:
		if uint64(rr.Remaining()) < 4*numVtx {
			return nil, errors.Wrap(grph.ErrTruncated, "mapping")
		}
		orig := make([]grph.VtxID, numVtx)
		for i := range orig {
			v, err := rr.U32()
			if err != nil {
				return nil, errors.Wrap(err, "mapping")
			}
			orig[i] = grph.VtxID(v)
		}
		return orig, nil

	default:
		if uint64(rr.Remaining()) < numVtx+3 {
			return nil, errors.Wrap(grph.ErrTruncated, "mapping")
		}
		orig := make([]grph.VtxID, numVtx)
		first, err := rr.U32()
		if err != nil {
			return nil, errors.Wrap(err, "mapping")
		}
		orig[0] = grph.VtxID(first)
		for i := uint64(1); i < numVtx; i++ {
			delta, err := rr.Uvarint()
			if err != nil {
				return nil, errors.Wrap(err, "mapping")
			}
			orig[i] = orig[i-1] + grph.VtxID(delta)
		}
		return orig, nil
	}
}
