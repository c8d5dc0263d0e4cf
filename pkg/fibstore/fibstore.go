// Package fibstore persists a two-family linearized FIB (pkg/fib) to disk
// and reloads it, so a build-fib/annotate split doesn't have to re-run
// ingestion and coalescing on every invocation (spec.md §6: "persisted FIB
// layout is unspecified... any faithful serialization is acceptable").
//
// Grounded on the teacher's pkg/iporgdb/db.go (LevelDB open options, the
// mutex-guarded closed flag) and pkg/iporgdb/lookup.go's seek/prev scheme:
// entries are keyed by their fixed-width, byte-sortable address encoding
// (pkg/util/ipcodec.EncodeRangeKey) rather than by insertion order, so a
// LevelDB iterator naturally replays them in address order exactly as
// GetByIP's range keys do. Values use the teacher's msgpack encoding
// (pkg/iptoasn/store.go's encodeRecord/decodeRecord approach).
package fibstore

import (
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/vmihailenco/msgpack/v5"

	"fwzoner/pkg/addrspace"
	"fwzoner/pkg/fib"
	"fwzoner/pkg/util/ipcodec"
	"fwzoner/pkg/zoneset"
)

// Store wraps a LevelDB instance holding both families' linearized FIBs.
type Store struct {
	db     *leveldb.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the on-disk FIB cache at path.
func Open(path string) (*Store, error) {
	opts := &opt.Options{
		Compression: opt.SnappyCompression,
		WriteBuffer: 32 * 1024 * 1024,
	}
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, fmt.Errorf("fibstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type wireEntry struct {
	Zones []string
}

func familyPrefix(f addrspace.Family) string {
	if f == addrspace.V4 {
		return ipcodec.PrefixRangeV4
	}
	return ipcodec.PrefixRangeV6
}

// Save writes every family in fibs to disk, replacing any FIB previously
// stored at this path.
func (s *Store) Save(fibs map[addrspace.Family]*fib.FIB) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return leveldb.ErrClosed
	}

	// Clear whatever was there before: a stale entry from a previous,
	// larger FIB would otherwise survive a rebuild with fewer breakpoints.
	iter := s.db.NewIterator(util.BytesPrefix([]byte(ipcodec.PrefixRangeV4)), nil)
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	iter = s.db.NewIterator(util.BytesPrefix([]byte(ipcodec.PrefixRangeV6)), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()

	for family, f := range fibs {
		bits := family.Bits()
		for _, e := range f.Entries {
			key := ipcodec.EncodeRangeKey(e.Addr.ToAddr(bits))
			value, err := msgpack.Marshal(wireEntry{Zones: []string(e.Zones)})
			if err != nil {
				return fmt.Errorf("fibstore: marshal entry at %s: %w", e.Addr, err)
			}
			batch.Put(key, value)
		}
	}
	return s.db.Write(batch, nil)
}

// Load reconstructs both families' FIBs previously written by Save.
func (s *Store) Load() (map[addrspace.Family]*fib.FIB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, leveldb.ErrClosed
	}

	out := map[addrspace.Family]*fib.FIB{}
	for _, family := range []addrspace.Family{addrspace.V4, addrspace.V6} {
		f, err := s.loadFamily(family)
		if err != nil {
			return nil, err
		}
		out[family] = f
	}
	return out, nil
}

func (s *Store) loadFamily(family addrspace.Family) (*fib.FIB, error) {
	prefix := []byte(familyPrefix(family))
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var entries []fib.Entry
	allZones := zoneset.New()
	for iter.Next() {
		addr, err := ipcodec.DecodeRangeKey(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("fibstore: decode key: %w", err)
		}
		var w wireEntry
		if err := msgpack.Unmarshal(iter.Value(), &w); err != nil {
			return nil, fmt.Errorf("fibstore: unmarshal entry: %w", err)
		}
		zones := zoneset.New(w.Zones...)
		entries = append(entries, fib.Entry{Addr: addrspace.IntFromAddr(addr), Zones: zones})
		allZones = allZones.Union(zones)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("fibstore: iterate entries: %w", err)
	}

	return &fib.FIB{
		Family:             family,
		Entries:            entries,
		TotalZones:         allZones,
		TotalZonesStripped: allZones.Without(zoneset.NullRoute),
	}, nil
}
