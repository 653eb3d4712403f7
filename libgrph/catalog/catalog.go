package catalog

import (
	"runtime"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/2x3systems/grph/grph"
)

/***

Catalog database format:

	gCatalogStateKey                 => catalogState (msgpack)
	kSigCatalog, EdgeSig (24 bytes)  => grph.CatalogEntry (msgpack)

A graph's key is its edge-multiset signature, so the same graph arriving
from different source files (or with its edge lines shuffled) lands on
the same key and is counted as a dupe rather than re-added.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

// kSigCatalog prefixes every signature entry, keeping the state record
// outside the iteration range.
const kSigCatalog = byte(0x10)

const (
	kMajorVers = 2024
	kMinorVers = 1
)

type catalogState struct {
	MajorVers int32 `msgpack:"vmaj"`
	MinorVers int32 `msgpack:"vmin"`
	NumGraphs int64 `msgpack:"ng"`
	NumDupes  int64 `msgpack:"nd"`
}

// catalog is a db wrapper around a store of encoded-graph records.
type catalog struct {
	readOnly   bool
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

func OpenCatalog(opts grph.CatalogOpts) (grph.Catalog, error) {
	cat := &catalog{
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(grph.ErrBadCatalogOpts, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state = catalogState{
			MajorVers: kMajorVers,
			MinorVers: kMinorVers,
		}
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = grph.ErrCatalogVers
	}

	if err != nil {
		cat.Close()
		return nil, err
	}
	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *catalog) flushState() error {
	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := msgpack.Marshal(&cat.state)
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

func (cat *catalog) Close() error {
	err := cat.flushState()
	if cat.db != nil {
		if dbErr := cat.db.Close(); err == nil {
			err = dbErr
		}
		cat.db = nil
	}
	return err
}

func (cat *catalog) TryAdd(sig grph.EdgeSig, entry grph.CatalogEntry) (bool, error) {
	if cat.readOnly {
		return false, errors.Wrap(grph.ErrBadCatalogOpts, "catalog is read-only")
	}

	var keyBuf [1 + grph.EdgeSigSz]byte
	keyBuf[0] = kSigCatalog
	key := sig.AppendTo(keyBuf[:1])

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	_, err := txn.Get(key)
	if err == nil {
		cat.state.NumDupes++
		cat.stateDirty = true
		return false, nil
	}
	if err != badger.ErrKeyNotFound {
		return false, err
	}

	val, err := msgpack.Marshal(&entry)
	if err != nil {
		return false, err
	}
	if err = txn.Set(key, val); err != nil {
		return false, err
	}
	if err = txn.Commit(); err != nil {
		return false, err
	}

	cat.state.NumGraphs++
	cat.stateDirty = true
	return true, nil
}

func (cat *catalog) ForEach(fn func(sig grph.EdgeSig, entry grph.CatalogEntry) error) error {
	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         []byte{kSigCatalog},
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()

		sig, err := grph.UnmarshalEdgeSig(item.Key()[1:])
		if err != nil {
			return err
		}
		var entry grph.CatalogEntry
		err = item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &entry)
		})
		if err != nil {
			return err
		}
		if err := fn(sig, entry); err != nil {
			return err
		}
	}
	return nil
}

func (cat *catalog) NumGraphs() int64 {
	return cat.state.NumGraphs
}

func (cat *catalog) NumDupes() int64 {
	return cat.state.NumDupes
}
