package libgrph

import (
	"errors"
	"strings"
	"testing"

	"github.com/2x3systems/grph/grph"
)

func TestSummarizeGolden(t *testing.T) {
	sum, err := Summarize(goldenImage)
	if err != nil {
		t.Fatal(err)
	}

	if sum.Vers != grph.Vers2 || sum.NumVtx != 3 || sum.NumEdges != 4 {
		t.Fatalf("header fields: %+v", sum)
	}
	if sum.NumAdj != 3 || sum.NumLoops != 1 {
		t.Fatalf("body counts: %+v", sum)
	}
	if sum.MinOutDeg != 0 || sum.MaxOutDeg != 2 || sum.MeanOutDeg != 1.0 {
		t.Fatalf("degrees: %+v", sum)
	}

	// Section sizes must account for every byte of the image.
	if sum.HeaderSz != 6 || sum.CountsSz != 2 || sum.MappingSz != 6 ||
		sum.AdjSz != 9 || sum.LoopsSz != 3 || sum.TrailingSz != 0 {
		t.Fatalf("sections: %+v", sum)
	}
	total := sum.HeaderSz + sum.CountsSz + sum.MappingSz + sum.AdjSz + sum.LoopsSz
	if total != len(goldenImage) {
		t.Fatalf("sections cover %d of %d bytes", total, len(goldenImage))
	}

	if sum.NumDupes != 0 || sum.DupePairs.Size() != 0 {
		t.Fatalf("phantom dupes: %+v", sum)
	}
}

func TestSummarizeTrailing(t *testing.T) {
	img := append(append([]byte(nil), goldenImage...), 0xAA, 0xBB, 0xCC)
	sum, err := Summarize(img)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TrailingSz != 3 {
		t.Fatalf("trailing %d", sum.TrailingSz)
	}
}

func TestSummarizeDupes(t *testing.T) {
	img := encodeText(t, "1\t2\t3\n2\t1\t5\n1\t2\t3\n9\t9\t1\n9\t9\t2\n")

	sum, err := Summarize(img)
	if err != nil {
		t.Fatal(err)
	}
	// Pair (1,2) appears three times and the loop vertex 9 twice: two
	// duplicated keys carrying three extra entries between them.
	if sum.DupePairs.Size() != 2 || sum.NumDupes != 3 {
		t.Fatalf("dupes: %d pairs, %d extras", sum.DupePairs.Size(), sum.NumDupes)
	}

	extra, found := sum.DupePairs.Get([2]grph.VtxID{1, 2})
	if !found || extra.(int) != 2 {
		t.Fatalf("pair (1,2): %v %v", extra, found)
	}
	extra, found = sum.DupePairs.Get([2]grph.VtxID{9, 9})
	if !found || extra.(int) != 1 {
		t.Fatalf("pair (9,9): %v %v", extra, found)
	}

	report := sum.String()
	if !strings.Contains(report, "dupe pairs    2") {
		t.Fatalf("report:\n%s", report)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum, err := Summarize(encodeText(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if sum.NumVtx != 0 || sum.NumEdges != 0 || sum.NumAdj != 0 || sum.NumLoops != 0 {
		t.Fatalf("empty summary: %+v", sum)
	}
	if sum.MinOutDeg != 0 || sum.MaxOutDeg != 0 || sum.MeanOutDeg != 0 {
		t.Fatalf("empty degrees: %+v", sum)
	}
}

func TestSummarizeValidates(t *testing.T) {
	if _, err := Summarize(goldenImage[:10]); !errors.Is(err, grph.ErrTruncated) {
		t.Fatalf("truncation: %v", err)
	}

	img := append([]byte(nil), goldenImage...)
	img[4] = 0x07
	if _, err := Summarize(img); !errors.Is(err, grph.ErrBadVersion) {
		t.Fatalf("version: %v", err)
	}
}
