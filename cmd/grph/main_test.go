package main

import (
	"bytes"
	"os"
	"path"
	"testing"

	"github.com/2x3systems/grph/grph"
)

func TestPipelines(t *testing.T) {
	dir, err := os.MkdirTemp("", "junk*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	edges := path.Join(dir, "edges.tsv")
	bin := path.Join(dir, "graph.bin")
	back := path.Join(dir, "back.tsv")
	catDir := path.Join(dir, "cat")

	input := "100\t5\t7\n7\t5\t1\n7\t100\t2\n5\t5\t200\n"
	if err := os.WriteFile(edges, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	// Encode, recording the graph in a fresh catalog.
	if err := doSerialize(edges, bin, catDir); err != nil {
		t.Fatal(err)
	}
	img, err := os.ReadFile(bin)
	if err != nil {
		t.Fatal(err)
	}
	if len(img) == 0 || !bytes.HasPrefix(img, []byte(grph.Magic)) {
		t.Fatalf("binary output: % x", img)
	}

	// Decode back to text.
	if err := doDeserialize(bin, back); err != nil {
		t.Fatal(err)
	}
	out, err := os.ReadFile(back)
	if err != nil {
		t.Fatal(err)
	}
	if want := "5\t7\t1\n5\t100\t7\n7\t100\t2\n5\t5\t200\n"; string(out) != want {
		t.Fatalf("decoded:\n%s\nwant:\n%s", out, want)
	}

	// The decoded list carries the same canonical multiset.
	if err := doCheck(edges, back); err != nil {
		t.Fatal(err)
	}

	// Re-encoding the decoded list is a catalog dupe, not a new graph.
	if err := doSerialize(back, bin, catDir); err != nil {
		t.Fatal(err)
	}
	if err := doList(catDir); err != nil {
		t.Fatal(err)
	}

	// Summary of the image prints cleanly.
	if err := doInfo(bin); err != nil {
		t.Fatal(err)
	}

	// A genuinely different edge list fails the check.
	other := path.Join(dir, "other.tsv")
	if err := os.WriteFile(other, []byte("1\t2\t3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := doCheck(edges, other); err == nil {
		t.Fatal("differing lists passed -check")
	}
}

func TestPipelineErrors(t *testing.T) {
	dir, err := os.MkdirTemp("", "junk*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	bad := path.Join(dir, "bad.tsv")
	if err := os.WriteFile(bad, []byte("not an edge list\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := doSerialize(bad, path.Join(dir, "out.bin"), ""); err == nil {
		t.Fatal("malformed input should fail")
	}

	if err := doDeserialize(bad, path.Join(dir, "out.tsv")); err == nil {
		t.Fatal("text is not a binary image")
	}

	if err := doSerialize(path.Join(dir, "missing.tsv"), path.Join(dir, "out.bin"), ""); err == nil {
		t.Fatal("missing input should fail")
	}
}
