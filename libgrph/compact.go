package libgrph

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/2x3systems/grph/grph"
)

// VtxMap is a dense re-indexing of the original vertex identifiers.
// Orig[i] holds the original id of compact index i, and Orig is strictly
// ascending, so compact indices preserve id order.
type VtxMap struct {
	Orig []grph.VtxID
}

func (vm *VtxMap) NumVtx() uint32 {
	return uint32(len(vm.Orig))
}

// Idx maps an original identifier back to its compact index.  Every id
// fed to CompactIDs is present, so a miss means the map and its source
// have diverged.
func (vm *VtxMap) Idx(id grph.VtxID) (grph.VtxIdx, error) {
	i := sort.Search(len(vm.Orig), func(k int) bool {
		return vm.Orig[k] >= id
	})
	if i >= len(vm.Orig) || vm.Orig[i] != id {
		return 0, errors.Wrapf(grph.ErrInternal, "vertex id %d not in map", id)
	}
	return grph.VtxIdx(i), nil
}

// CompactIDs collects every identifier appearing in src and assigns the
// compact indices 0..N-1, ascending by id.  The triplet count of src is
// returned alongside.
func CompactIDs(src grph.TripletSource) (*VtxMap, uint64, error) {
	ids := make([]grph.VtxID, 0, 1024)
	var numTriplets uint64

	err := src.ForEachTriplet(func(a, b grph.VtxID, w byte) error {
		ids = append(ids, a, b)
		numTriplets++
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})

	uniq := ids[:0]
	for _, id := range ids {
		if n := len(uniq); n == 0 || uniq[n-1] != id {
			uniq = append(uniq, id)
		}
	}

	return &VtxMap{Orig: uniq}, numTriplets, nil
}
