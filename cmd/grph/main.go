package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/2x3systems/grph/grph"
	"github.com/2x3systems/grph/libgrph"
	"github.com/2x3systems/grph/libgrph/catalog"
)

var (
	serialize   = flag.Bool("s", false, "serialize: text edge list -i into binary graph -o")
	deserialize = flag.Bool("d", false, "deserialize: binary graph -i into text edge list -o")
	check       = flag.Bool("check", false, "compare edge lists -a and -b as canonical edge multisets")
	info        = flag.Bool("info", false, "print a summary of binary graph -i")
	list        = flag.Bool("ls", false, "list the graphs recorded in -catalog")

	inPath  = flag.String("i", "", "input pathname")
	outPath = flag.String("o", "", "output pathname")
	aPath   = flag.String("a", "", "left edge list for -check")
	bPath   = flag.String("b", "", "right edge list for -check")
	catDir  = flag.String("catalog", "", "catalog db dir (-s records the encoded graph there; -ls lists it)")
)

func main() {

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	err := run()

	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func run() error {
	modes := 0
	for _, on := range []bool{*serialize, *deserialize, *check, *info, *list} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		return usageErr("choose exactly one of -s, -d, -check, -info, -ls")
	}

	switch {
	case *serialize:
		if *inPath == "" || *outPath == "" {
			return usageErr("-s requires -i and -o")
		}
		return doSerialize(*inPath, *outPath, *catDir)

	case *deserialize:
		if *inPath == "" || *outPath == "" {
			return usageErr("-d requires -i and -o")
		}
		return doDeserialize(*inPath, *outPath)

	case *check:
		if *aPath == "" || *bPath == "" {
			return usageErr("-check requires -a and -b")
		}
		return doCheck(*aPath, *bPath)

	case *info:
		if *inPath == "" {
			return usageErr("-info requires -i")
		}
		return doInfo(*inPath)

	default:
		if *catDir == "" {
			return usageErr("-ls requires -catalog")
		}
		return doList(*catDir)
	}
}

// usageErr never returns: bad invocations exit 2 before any pipeline
// starts, keeping usage failures apart from codec failures.
func usageErr(msg string) error {
	fmt.Fprintf(os.Stderr, "%s\n\n", msg)
	flag.Usage()
	klog.Flush()
	os.Exit(2)
	return nil
}

func doSerialize(inPath, outPath, catDir string) error {
	t0 := time.Now()

	mf, err := libgrph.OpenMapped(inPath)
	if err != nil {
		klog.Errorf("open %s: %v", inPath, err)
		return err
	}
	defer mf.Close()

	g, err := libgrph.BuildGraph(&libgrph.TSVScanner{Data: mf.Bytes()})
	if err != nil {
		klog.Errorf("read %s: %v", inPath, err)
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		klog.Errorf("create %s: %v", outPath, err)
		return err
	}
	err = g.EncodeTo(out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		klog.Errorf("encode %s: %v", outPath, err)
		return err
	}

	klog.V(2).Infof("encoded %s: %d vertices, %d edges (%d loops) in %v",
		outPath, g.NumVtx(), g.EdgeCount, len(g.Loops), time.Since(t0))

	if catDir != "" {
		return recordInCatalog(catDir, inPath, outPath, g)
	}
	return nil
}

func recordInCatalog(catDir, srcPath, binPath string, g *libgrph.Graph) error {
	sig, err := libgrph.SigOf(g)
	if err != nil {
		return err
	}
	binInfo, err := os.Stat(binPath)
	if err != nil {
		return err
	}

	cat, err := catalog.OpenCatalog(grph.CatalogOpts{DbPathName: catDir})
	if err != nil {
		klog.Errorf("open catalog %s: %v", catDir, err)
		return err
	}

	added, err := cat.TryAdd(sig, grph.CatalogEntry{
		VtxCount:  uint64(g.NumVtx()),
		EdgeCount: g.EdgeCount,
		LoopCount: uint64(len(g.Loops)),
		ByteSize:  uint64(binInfo.Size()),
		SrcPath:   srcPath,
		AddedAt:   time.Now().Unix(),
	})
	if closeErr := cat.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		klog.Errorf("catalog %s: %v", catDir, err)
		return err
	}

	if added {
		klog.V(2).Infof("catalog: added %v", sig)
	} else {
		klog.V(2).Infof("catalog: dupe %v", sig)
	}
	return nil
}

func doDeserialize(inPath, outPath string) error {
	t0 := time.Now()

	mf, err := libgrph.OpenMapped(inPath)
	if err != nil {
		klog.Errorf("open %s: %v", inPath, err)
		return err
	}
	defer mf.Close()

	out, err := os.Create(outPath)
	if err != nil {
		klog.Errorf("create %s: %v", outPath, err)
		return err
	}

	// Flush whatever was emitted even when decode fails mid-stream, so
	// a partial prefix is on disk for inspection.
	em := libgrph.NewTextEmitter(out)
	err = libgrph.Decode(mf.Bytes(), em)
	if flushErr := em.Flush(); err == nil {
		err = flushErr
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		klog.Errorf("decode %s: %v", inPath, err)
		return err
	}

	klog.V(2).Infof("decoded %s in %v", outPath, time.Since(t0))
	return nil
}

func doCheck(aPath, bPath string) error {
	sigA, err := sigOfFile(aPath)
	if err != nil {
		klog.Errorf("%s: %v", aPath, err)
		return err
	}
	sigB, err := sigOfFile(bPath)
	if err != nil {
		klog.Errorf("%s: %v", bPath, err)
		return err
	}

	if sigA != sigB {
		fmt.Printf("MISMATCH\n  %s  %v\n  %s  %v\n", aPath, sigA, bPath, sigB)
		return errors.New("edge lists differ")
	}
	fmt.Printf("OK  %v\n", sigA)
	return nil
}

func sigOfFile(path string) (grph.EdgeSig, error) {
	mf, err := libgrph.OpenMapped(path)
	if err != nil {
		return grph.EdgeSig{}, err
	}
	defer mf.Close()

	return libgrph.SigOf(&libgrph.TSVScanner{Data: mf.Bytes()})
}

func doInfo(inPath string) error {
	mf, err := libgrph.OpenMapped(inPath)
	if err != nil {
		klog.Errorf("open %s: %v", inPath, err)
		return err
	}
	defer mf.Close()

	sum, err := libgrph.Summarize(mf.Bytes())
	if err != nil {
		klog.Errorf("summarize %s: %v", inPath, err)
		return err
	}
	fmt.Print(sum)
	return nil
}

func doList(catDir string) error {
	cat, err := catalog.OpenCatalog(grph.CatalogOpts{
		DbPathName: catDir,
		ReadOnly:   true,
	})
	if err != nil {
		klog.Errorf("open catalog %s: %v", catDir, err)
		return err
	}
	defer cat.Close()

	err = cat.ForEach(func(sig grph.EdgeSig, entry grph.CatalogEntry) error {
		fmt.Printf("%v  nv=%d ne=%d nl=%d  %dB  %s  %s\n",
			sig, entry.VtxCount, entry.EdgeCount, entry.LoopCount, entry.ByteSize,
			time.Unix(entry.AddedAt, 0).UTC().Format(time.RFC3339), entry.SrcPath)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d graphs, %d dupes\n", cat.NumGraphs(), cat.NumDupes())
	return nil
}
