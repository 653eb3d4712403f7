package libgrph

import (
	"bytes"
	"errors"
	"testing"

	"github.com/2x3systems/grph/grph"
)

func encodeText(t *testing.T, text string) []byte {
	var buf bytes.Buffer
	if err := buildText(t, text).EncodeTo(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeToText(t *testing.T, img []byte) string {
	var out bytes.Buffer
	em := NewTextEmitter(&out)
	if err := Decode(img, em); err != nil {
		t.Fatal(err)
	}
	if err := em.Flush(); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

// memSink records what a decode emitted before it stopped.
type memSink struct {
	trips []trip
}

func (ms *memSink) EmitTriplet(a, b grph.VtxID, w byte) error {
	ms.trips = append(ms.trips, trip{a, b, w})
	return nil
}

// goldenInput holds ids {5, 7, 100}, three proper edges, one loop.
const goldenInput = "100\t5\t7\n7\t5\t1\n7\t100\t2\n5\t5\t200\n"

// goldenImage is the byte-exact version 2 encoding of goldenInput.
var goldenImage = []byte{
	'G', 'R', 'P', 'H', 0x02, 0x01, // magic, version, endian
	0x03, 0x04, // N=3, M=4
	0x05, 0x00, 0x00, 0x00, 0x02, 0x5D, // mapping: 5, +2, +93
	0x02, 0x01, 0x01, 0x01, 0x07, // vertex 0: deg 2, gaps 1,1
	0x01, 0x01, 0x02, // vertex 1: deg 1, gap 1
	0x00,             // vertex 2: deg 0
	0x01, 0x00, 0xC8, // loops: count 1, delta 0, weight 200
}

func TestEncodeGolden(t *testing.T) {
	img := encodeText(t, goldenInput)
	if !bytes.Equal(img, goldenImage) {
		t.Fatalf("encoding drifted:\ngot  % x\nwant % x", img, goldenImage)
	}

	// Same multiset in a different line order encodes identically.
	img2 := encodeText(t, "5\t5\t200\n7\t100\t2\n5\t7\t1\n100\t5\t7\n")
	if !bytes.Equal(img2, goldenImage) {
		t.Fatalf("encoding depends on input order:\ngot  % x\nwant % x", img2, goldenImage)
	}
}

func TestDecodeGolden(t *testing.T) {
	got := decodeToText(t, goldenImage)
	want := "5\t7\t1\n5\t100\t7\n7\t100\t2\n5\t5\t200\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRoundTripEmpty(t *testing.T) {
	img := encodeText(t, "")
	want := []byte{'G', 'R', 'P', 'H', 0x02, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(img, want) {
		t.Fatalf("empty image % x, want % x", img, want)
	}
	if out := decodeToText(t, img); out != "" {
		t.Fatalf("empty graph decoded to %q", out)
	}

	// Blank-line-only input is the same empty graph.
	if img2 := encodeText(t, "\n\r\n\n"); !bytes.Equal(img2, want) {
		t.Fatalf("blank input image % x", img2)
	}
}

func TestRoundTripSelfLoopOnly(t *testing.T) {
	img := encodeText(t, "3\t3\t9\n")
	if out := decodeToText(t, img); out != "3\t3\t9\n" {
		t.Fatalf("got %q", out)
	}
}

func TestRoundTripWeightBounds(t *testing.T) {
	img := encodeText(t, "1\t2\t0\n3\t4\t255\n")
	if out := decodeToText(t, img); out != "1\t2\t0\n3\t4\t255\n" {
		t.Fatalf("got %q", out)
	}
}

func TestRoundTripLoopRuns(t *testing.T) {
	// Loop deltas: 0 for the first loop on vertex 0, then 1, then 0
	// again for the repeated vertex.
	img := encodeText(t, "2\t2\t9\n1\t1\t4\n2\t2\t1\n")
	if out := decodeToText(t, img); out != "1\t1\t4\n2\t2\t1\n2\t2\t9\n" {
		t.Fatalf("got %q", out)
	}
}

func TestRoundTripSignature(t *testing.T) {
	// Decoded text reorders lines and flips endpoints to (min, max),
	// but the canonical edge multiset is untouched.
	input := "9\t1\t3\n1\t1\t200\n4\t9\t0\n9\t1\t3\n2\t8\t255\n"

	sigIn, err := SigOf(&TSVScanner{Data: []byte(input)})
	if err != nil {
		t.Fatal(err)
	}

	out := decodeToText(t, encodeText(t, input))
	sigOut, err := SigOf(&TSVScanner{Data: []byte(out)})
	if err != nil {
		t.Fatal(err)
	}

	if sigIn != sigOut {
		t.Fatalf("multiset changed: %v -> %v", sigIn, sigOut)
	}
	if sigIn.Count != 5 {
		t.Fatalf("count %d", sigIn.Count)
	}
}

func TestDecodeVers1(t *testing.T) {
	// Version 1 spells the header and mapping in fixed-width fields;
	// the body is shared.  Both images must decode identically.
	var buf bytes.Buffer
	ww := NewWireWriter(&buf)
	ww.PutBytes([]byte(grph.Magic))
	ww.PutByte(grph.Vers1)
	ww.PutByte(grph.LittleEndian)
	ww.PutU32(3)
	ww.PutU64(4)
	for _, id := range []uint32{5, 7, 100} {
		ww.PutU32(id)
	}
	ww.PutBytes(goldenImage[14:]) // adjacency + loops sections
	if err := ww.Flush(); err != nil {
		t.Fatal(err)
	}

	if got, want := decodeToText(t, buf.Bytes()), decodeToText(t, goldenImage); got != want {
		t.Fatalf("v1 decode drifted:\n%s\nvs\n%s", got, want)
	}
}

func TestDecodeBadHeader(t *testing.T) {
	damage := func(at int, b byte) []byte {
		img := append([]byte(nil), goldenImage...)
		img[at] = b
		return img
	}

	var sink memSink
	if err := Decode(damage(0, 'X'), &sink); !errors.Is(err, grph.ErrBadMagic) {
		t.Fatalf("magic: %v", err)
	}
	if err := Decode(damage(4, 0x03), &sink); !errors.Is(err, grph.ErrBadVersion) {
		t.Fatalf("version: %v", err)
	}
	if err := Decode(damage(5, 0x02), &sink); !errors.Is(err, grph.ErrBadEndian) {
		t.Fatalf("endian: %v", err)
	}
	if err := Decode(nil, &sink); !errors.Is(err, grph.ErrTruncated) {
		t.Fatalf("empty image: %v", err)
	}
	if err := Decode(goldenImage[:7], &sink); !errors.Is(err, grph.ErrTruncated) {
		t.Fatalf("cut counts: %v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	// Clipping the final weight byte must fail, with nothing emitted
	// for the clipped record.
	var sink memSink
	err := Decode(goldenImage[:len(goldenImage)-1], &sink)
	if !errors.Is(err, grph.ErrTruncated) {
		t.Fatalf("want truncation, got %v", err)
	}
	if len(sink.trips) != 3 {
		t.Fatalf("emitted %d records before the cut", len(sink.trips))
	}

	// Every prefix of the image fails; none may panic or succeed.
	for cut := 0; cut < len(goldenImage); cut++ {
		if err := Decode(goldenImage[:cut], &memSink{}); err == nil {
			t.Fatalf("prefix of %d bytes decoded cleanly", cut)
		}
	}
}

func TestDecodeTrailingBytesIgnored(t *testing.T) {
	img := append(append([]byte(nil), goldenImage...), 0xEE, 0xFF)
	if got, want := decodeToText(t, img), decodeToText(t, goldenImage); got != want {
		t.Fatalf("trailing bytes changed the result")
	}
}

func TestDecodeVarintOverflow(t *testing.T) {
	img := []byte{'G', 'R', 'P', 'H', 0x02, 0x01}
	img = append(img, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02)

	var sink memSink
	if err := Decode(img, &sink); !errors.Is(err, grph.ErrVarintOverflow) {
		t.Fatalf("want varint overflow, got %v", err)
	}
}

func TestDecodeVertexRange(t *testing.T) {
	// One vertex, degree 1, gap 2: the neighbor lands outside [0, N).
	img := []byte{
		'G', 'R', 'P', 'H', 0x02, 0x01,
		0x01, 0x01, // N=1, M=1
		0x09, 0x00, 0x00, 0x00, // mapping: id 9
		0x01, 0x02, 0x07, // vertex 0: deg 1, gap 2, weight 7
		0x00, // no loops
	}
	var sink memSink
	if err := Decode(img, &sink); !errors.Is(err, grph.ErrVtxRange) {
		t.Fatalf("neighbor range: %v", err)
	}

	// A loop on a vertex past N fails the same way.
	img2 := []byte{
		'G', 'R', 'P', 'H', 0x02, 0x01,
		0x01, 0x01,
		0x09, 0x00, 0x00, 0x00,
		0x00,             // no adjacency
		0x01, 0x05, 0x07, // loop on vertex 5 of 1
	}
	if err := Decode(img2, &sink); !errors.Is(err, grph.ErrVtxRange) {
		t.Fatalf("loop range: %v", err)
	}
}

func TestDecodeMappingBomb(t *testing.T) {
	// A tiny image claiming two billion vertices must fail on its size,
	// not attempt the allocation.
	img := []byte{'G', 'R', 'P', 'H', 0x02, 0x01}
	img = append(img, 0x80, 0x80, 0x80, 0x80, 0x08) // N = 1<<31
	img = append(img, 0x00)                         // M = 0

	var sink memSink
	if err := Decode(img, &sink); !errors.Is(err, grph.ErrTruncated) {
		t.Fatalf("mapping bomb: %v", err)
	}
}
