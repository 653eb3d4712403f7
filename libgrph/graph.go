package libgrph

import (
	"sort"

	"github.com/2x3systems/grph/grph"
)

// Loop is a self-edge on a compacted vertex.
type Loop struct {
	Vtx grph.VtxIdx
	W   byte
}

// Graph is the compacted in-memory form of an undirected weighted graph.
//
// Proper edges live in a compressed-sparse-row layout keyed by the
// smaller endpoint: vertex i owns Nbrs[Offs[i]:Offs[i+1]] (paired with
// Wgts), every neighbor strictly greater than i and each segment sorted
// ascending.  Self-loops are kept apart in Loops, sorted by vertex.
// A Graph is built once per run and discarded after use.
type Graph struct {
	Orig      []grph.VtxID // dense index -> original id, ascending
	Offs      []uint64     // N+1 prefix sums over out-degrees
	Nbrs      []grph.VtxIdx
	Wgts      []byte
	Loops     []Loop
	EdgeCount uint64 // input triplets, loops included
}

func (g *Graph) NumVtx() uint32 {
	return uint32(len(g.Orig))
}

// ForEachTriplet enumerates the canonical edge order: vertex-major with
// neighbors ascending, then loops.  Endpoints are original ids, smaller
// endpoint first.
func (g *Graph) ForEachTriplet(fn func(a, b grph.VtxID, w byte) error) error {
	for i := range g.Orig {
		for k := g.Offs[i]; k < g.Offs[i+1]; k++ {
			if err := fn(g.Orig[i], g.Orig[g.Nbrs[k]], g.Wgts[k]); err != nil {
				return err
			}
		}
	}
	for _, lp := range g.Loops {
		if err := fn(g.Orig[lp.Vtx], g.Orig[lp.Vtx], lp.W); err != nil {
			return err
		}
	}
	return nil
}

// BuildGraph compacts the identifiers of src and assembles the adjacency
// structure in three linear passes: collect ids, count out-degrees and
// loops, then fill the flat arrays through per-vertex write cursors
// seeded from the prefix sums.  Segments never grow dynamically.
func BuildGraph(src grph.TripletSource) (*Graph, error) {
	vm, numTriplets, err := CompactIDs(src)
	if err != nil {
		return nil, err
	}
	N := len(vm.Orig)

	// Pass 2: out-degree of each vertex, counted at offs[i+1] so the
	// in-place prefix sum below lands the exclusive offsets.
	offs := make([]uint64, N+1)
	var numLoops uint64
	err = src.ForEachTriplet(func(a, b grph.VtxID, w byte) error {
		ia, err := vm.Idx(a)
		if err != nil {
			return err
		}
		ib, err := vm.Idx(b)
		if err != nil {
			return err
		}
		if ia == ib {
			numLoops++
			return nil
		}
		if ib < ia {
			ia = ib
		}
		offs[ia+1]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := 0; i < N; i++ {
		offs[i+1] += offs[i]
	}

	nbrs := make([]grph.VtxIdx, offs[N])
	wgts := make([]byte, offs[N])
	loops := make([]Loop, 0, numLoops)
	cursor := make([]uint64, N)
	copy(cursor, offs[:N])

	// Pass 3: place each edge under its smaller endpoint.
	err = src.ForEachTriplet(func(a, b grph.VtxID, w byte) error {
		ia, err := vm.Idx(a)
		if err != nil {
			return err
		}
		ib, err := vm.Idx(b)
		if err != nil {
			return err
		}
		if ia == ib {
			loops = append(loops, Loop{Vtx: ia, W: w})
			return nil
		}
		if ib < ia {
			ia, ib = ib, ia
		}
		at := cursor[ia]
		nbrs[at] = ib
		wgts[at] = w
		cursor[ia] = at + 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Segments sort by (neighbor, weight) so that equal edge multisets
	// always produce one layout regardless of input line order.
	for i := 0; i < N; i++ {
		if seg := (adjSegment{
			nbrs: nbrs[offs[i]:offs[i+1]],
			wgts: wgts[offs[i]:offs[i+1]],
		}); seg.Len() > 1 {
			sort.Sort(seg)
		}
	}
	sort.Slice(loops, func(i, j int) bool {
		if loops[i].Vtx != loops[j].Vtx {
			return loops[i].Vtx < loops[j].Vtx
		}
		return loops[i].W < loops[j].W
	})

	return &Graph{
		Orig:      vm.Orig,
		Offs:      offs,
		Nbrs:      nbrs,
		Wgts:      wgts,
		Loops:     loops,
		EdgeCount: numTriplets,
	}, nil
}

// adjSegment sorts one vertex's neighbor run and its paired weights
// together.
type adjSegment struct {
	nbrs []grph.VtxIdx
	wgts []byte
}

func (seg adjSegment) Len() int {
	return len(seg.nbrs)
}

func (seg adjSegment) Less(i, j int) bool {
	if seg.nbrs[i] != seg.nbrs[j] {
		return seg.nbrs[i] < seg.nbrs[j]
	}
	return seg.wgts[i] < seg.wgts[j]
}

func (seg adjSegment) Swap(i, j int) {
	seg.nbrs[i], seg.nbrs[j] = seg.nbrs[j], seg.nbrs[i]
	seg.wgts[i], seg.wgts[j] = seg.wgts[j], seg.wgts[i]
}
