// Package shmmap implements SharedMap: a fixed-capacity associative
// container, backed by one contiguous memory region, that can be shared
// by threads within a process or by independent OS processes mapping the
// same file. It supports no dynamic growth: capacity, key size, and value
// size are fixed at construction and determine the whole region's layout.
//
// Concurrency rests on two cooperating locks: a map-wide readers/writer
// lock and a bitmap of per-slot locks, both expressed as atomic words
// inside the region itself so they work the same way across process
// boundaries. Traversals that need more than one slot lock at a time slide
// the lock forward in strictly increasing slot-index order; a traversal
// that can't honor that order raises an internal signal and retries under
// the map-exclusive lock instead of risking deadlock.
package shmmap

import (
	"math"
)

// Map is a fixed-capacity, concurrency-safe string-to-string container.
// The zero Map is not usable; construct one with New, Create, or Open.
type Map struct {
	region *region
	rw     mapLock
	stats  opStats
}

// New constructs an in-process map backed by a plain heap allocation. It
// is not shared across OS processes; use Create/Open for that.
func New(capacity, keyUnits, valueUnits uint32) (*Map, error) {
	l, err := computeLayout(roundUp4(capacity), roundUpEven(keyUnits), roundUpEven(valueUnits))
	if err != nil {
		return nil, err
	}
	buf := make([]byte, l.size)
	r := newRegion(l, buf, heapBacking{})
	r.writeHeader()
	return newMap(r), nil
}

// Create makes a new file at path sized for the given configuration,
// mmaps it MAP_SHARED, and writes the header, giving a peer process a
// portable file it can later attach to with Open (section 6).
func Create(path string, capacity, keyUnits, valueUnits uint32) (*Map, error) {
	l, err := computeLayout(roundUp4(capacity), roundUpEven(keyUnits), roundUpEven(valueUnits))
	if err != nil {
		return nil, err
	}
	if l.size > math.MaxInt32 {
		return nil, ErrBadArgument
	}
	r, err := createMappedFile(path, int64(l.size))
	if err != nil {
		return nil, err
	}
	r.layout = l
	r.writeHeader()
	return newMap(r), nil
}

// Open attaches to an existing file created by Create, recovering
// capacity/keyUnits/valueUnits from its header and mapping the same
// region MAP_SHARED, so a second process can reconstruct the layout from
// the path alone (section 6).
func Open(path string) (*Map, error) {
	r, err := openMappedFile(path)
	if err != nil {
		return nil, err
	}
	l, err := computeLayout(r.u32(0), r.u32(4), r.u32(8))
	if err != nil {
		r.backing.close()
		return nil, err
	}
	if uint32(len(r.buf)) < l.size {
		r.backing.close()
		return nil, ErrBadArgument
	}
	r.layout = l
	return newMap(r), nil
}

func newMap(r *region) *Map {
	shared, exclusive, readers := r.mapLockPtrs()
	return &Map{
		region: r,
		rw:     newMapLock(shared, exclusive, readers),
	}
}

// Close releases any OS resources (mmap'd memory, open file descriptors)
// held for a Create/Open-backed map. Calling Close on a New-backed map is
// a no-op.
func (m *Map) Close() error {
	return m.region.backing.close()
}

func roundUp4(n uint32) uint32 {
	return (n + 3) &^ 3
}

func roundUpEven(n uint32) uint32 {
	return (n + 1) &^ 1
}
