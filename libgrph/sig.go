package libgrph

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/2x3systems/grph/grph"
)

// SigOf folds src into its order-independent edge-multiset signature.
// Each triplet canonicalizes to (min, max, weight) and hashes to 8
// bytes of BLAKE2b; the signature combines the per-record hashes by
// count, wrapping sum, and xor.  Two sources agree iff they carry the
// same multiset of canonical records, whatever their order.
func SigOf(src grph.TripletSource) (grph.EdgeSig, error) {
	var sig grph.EdgeSig

	h, err := blake2b.New(grph.EdgeHashSz, nil)
	if err != nil {
		return sig, err
	}

	var rec [9]byte
	var digest [grph.EdgeHashSz]byte

	err = src.ForEachTriplet(func(a, b grph.VtxID, w byte) error {
		if b < a {
			a, b = b, a
		}
		binary.LittleEndian.PutUint32(rec[0:4], uint32(a))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(b))
		rec[8] = w

		h.Reset()
		h.Write(rec[:])
		sig.Mix(binary.LittleEndian.Uint64(h.Sum(digest[:0])))
		return nil
	})
	return sig, err
}
