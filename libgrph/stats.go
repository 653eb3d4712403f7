package libgrph

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"

	"github.com/2x3systems/grph/grph"
)

// Summary is what a binary graph image says about itself: counts and
// degree spread, how the bytes split across sections, and any duplicate
// multi-edges the adjacency carries.
type Summary struct {
	Vers     byte
	NumVtx   uint64
	NumEdges uint64 // M as recorded in the image
	NumAdj   uint64 // proper edges stored in the adjacency section
	NumLoops uint64

	MinOutDeg  uint64
	MaxOutDeg  uint64
	MeanOutDeg float64

	HeaderSz   int
	CountsSz   int
	MappingSz  int
	AdjSz      int
	LoopsSz    int
	TrailingSz int

	// DupePairs orders each duplicated (origA, origB) pair against the
	// count of its extra entries.  Keys are [2]grph.VtxID.
	DupePairs *redblacktree.Tree
	NumDupes  uint64
}

// Summarize walks a binary image with the decoder's wire discipline,
// collecting a Summary instead of emitting triplets.  The image is
// validated exactly as strictly as a decode of it would be.
func Summarize(data []byte) (*Summary, error) {
	rr := NewWireReader(data)

	vers, err := parseHeader(rr)
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		Vers:     vers,
		HeaderSz: rr.Pos(),
		DupePairs: &redblacktree.Tree{
			Comparator: func(A, B interface{}) int {
				a := A.([2]grph.VtxID)
				b := B.([2]grph.VtxID)
				for i := range a {
					if a[i] != b[i] {
						if a[i] < b[i] {
							return -1
						}
						return 1
					}
				}
				return 0
			},
		},
	}

	mark := rr.Pos()
	numVtx, numEdges, err := readCounts(rr, vers)
	if err != nil {
		return nil, err
	}
	sum.NumVtx = numVtx
	sum.NumEdges = numEdges
	sum.CountsSz = rr.Pos() - mark

	mark = rr.Pos()
	orig, err := readMapping(rr, vers, numVtx)
	if err != nil {
		return nil, err
	}
	sum.MappingSz = rr.Pos() - mark

	mark = rr.Pos()
	sum.MinOutDeg = ^uint64(0)
	for i := uint64(0); i < numVtx; i++ {
		deg, err := rr.Uvarint()
		if err != nil {
			return nil, errors.Wrapf(err, "adjacency vertex %d", i)
		}
		if deg < sum.MinOutDeg {
			sum.MinOutDeg = deg
		}
		if deg > sum.MaxOutDeg {
			sum.MaxOutDeg = deg
		}
		sum.NumAdj += deg

		prev := i
		for e := uint64(0); e < deg; e++ {
			gap, err := rr.Uvarint()
			if err != nil {
				return nil, errors.Wrapf(err, "adjacency vertex %d", i)
			}
			nbr := prev + gap
			if nbr < prev || nbr >= numVtx {
				return nil, errors.Wrapf(grph.ErrVtxRange, "adjacency vertex %d: neighbor", i)
			}
			if _, err := rr.Byte(); err != nil {
				return nil, errors.Wrapf(err, "adjacency vertex %d", i)
			}
			if e > 0 && gap == 0 {
				sum.countDupe(orig[i], orig[nbr])
			}
			prev = nbr
		}
	}
	if numVtx == 0 {
		sum.MinOutDeg = 0
	} else {
		sum.MeanOutDeg = float64(sum.NumAdj) / float64(numVtx)
	}
	sum.AdjSz = rr.Pos() - mark

	mark = rr.Pos()
	loopCount, err := rr.Uvarint()
	if err != nil {
		return nil, errors.Wrap(err, "loops")
	}
	sum.NumLoops = loopCount
	prev := uint64(0)
	for k := uint64(0); k < loopCount; k++ {
		delta, err := rr.Uvarint()
		if err != nil {
			return nil, errors.Wrap(err, "loops")
		}
		vtx := prev + delta
		if vtx < prev || vtx >= numVtx {
			return nil, errors.Wrap(grph.ErrVtxRange, "loops")
		}
		if _, err := rr.Byte(); err != nil {
			return nil, errors.Wrap(err, "loops")
		}
		if k > 0 && delta == 0 {
			sum.countDupe(orig[vtx], orig[vtx])
		}
		prev = vtx
	}
	sum.LoopsSz = rr.Pos() - mark
	sum.TrailingSz = rr.Remaining()

	return sum, nil
}

func (sum *Summary) countDupe(a, b grph.VtxID) {
	key := [2]grph.VtxID{a, b}
	extra := 1
	if prior, found := sum.DupePairs.Get(key); found {
		extra += prior.(int)
	}
	sum.DupePairs.Put(key, extra)
	sum.NumDupes++
}

func (sum *Summary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "format        v%d, little-endian\n", sum.Vers)
	fmt.Fprintf(&b, "vertices      %d\n", sum.NumVtx)
	fmt.Fprintf(&b, "edges         %d (%d adjacency + %d loops)\n", sum.NumEdges, sum.NumAdj, sum.NumLoops)
	fmt.Fprintf(&b, "out-degree    min %d / mean %.2f / max %d\n", sum.MinOutDeg, sum.MeanOutDeg, sum.MaxOutDeg)
	fmt.Fprintf(&b, "sections      header %dB, counts %dB, mapping %dB, adjacency %dB, loops %dB, trailing %dB\n",
		sum.HeaderSz, sum.CountsSz, sum.MappingSz, sum.AdjSz, sum.LoopsSz, sum.TrailingSz)

	if sum.NumDupes > 0 {
		fmt.Fprintf(&b, "dupe pairs    %d (%d extra entries)\n", sum.DupePairs.Size(), sum.NumDupes)
		itr := sum.DupePairs.Iterator()
		for itr.Next() {
			pair := itr.Key().([2]grph.VtxID)
			fmt.Fprintf(&b, "    %d\t%d\tx%d\n", pair[0], pair[1], 1+itr.Value().(int))
		}
	}

	return b.String()
}
