package shmmap

import "sync/atomic"

// chainSet is the coalesced-chaining insert/replace algorithm (section
// 4.2.1). When exclusive is false it runs under the caller's shared map
// lock and takes its own slot locks, sliding them forward and raising
// errDeadlockSignal if the sliding-lock rule (next index strictly greater
// than current) would be violated. When exclusive is true the caller
// already holds the map-exclusive lock and no slot locks are needed.
//
// The predecessor slot a new entry gets chained from (toChain) is pinned
// for the whole of the linear-probe phase: it was already the lock the
// traversal was holding when it diverged from the chain, so it simply
// isn't released until the final chain[toChain] = p write, while a second,
// independently sliding lock walks the probe sequence itself. This keeps
// at most two slot locks held between steps (three for the instant a probe
// step acquires the next slot before releasing the previous one), all in
// increasing index order.
func chainSet(r *region, locks slotLocks, key, value string, hash uint32, exclusive bool) error {
	keyEnc, ok := encodeUnits(key, r.keyUnits)
	if !ok || len(key) == 0 {
		return ErrBadArgument
	}
	valEnc, ok := encodeUnits(value, r.valueUnits)
	if !ok {
		return ErrBadArgument
	}

	var h heldLocks
	h.locks = locks

	p := slotFor(hash, r.capacity)
	if !exclusive {
		h.acquire(p)
	}
	cur := p

	var toChain uint32
	pinned := false
	probeHeld := false
	var probeSlot uint32
	probes := uint32(0)

	for r.occupied(p) {
		if keyMatches(r.keySlot(p), keyEnc) {
			writeUnits(r.valueSlot(p), valEnc)
			if !exclusive {
				h.unwindAll()
			}
			return nil
		}

		if !pinned {
			next := r.chainWord(p)
			if next != undefined {
				if !exclusive {
					if !slideAllowed(cur, next) {
						h.unwindAll()
						return errDeadlockSignal
					}
					h.acquire(next)
					h.release(p)
				}
				cur = next
				p = next
				continue
			}
			toChain = p
			pinned = true

			// Every slot on the chain we were following is occupied and
			// there's no successor left to step to: the only way forward
			// is the linear probe below, which only terminates at a free
			// slot. If the map is already full there is no free slot to
			// find (I5), so check before probing instead of spinning
			// through every remaining slot looking for one that isn't
			// there.
			if r.lengthWord() == r.capacity {
				if !exclusive {
					h.unwindAll()
				}
				return ErrCapacityExceeded
			}
		}

		// Bound the probe itself: even past the check above, a full map
		// observed concurrently mid-probe (another worker's insert lands
		// between our check and here) would otherwise have r.occupied(p)
		// hold for every slot and loop forever. capacity steps is an upper
		// bound on any walk of a capacity-slot region.
		probes++
		if probes > r.capacity {
			if !exclusive {
				h.unwindAll()
			}
			return ErrCapacityExceeded
		}

		newP := (p + 1) % r.capacity
		if !exclusive {
			if !slideAllowed(cur, newP) {
				h.unwindAll()
				return errDeadlockSignal
			}
			h.acquire(newP)
			if probeHeld {
				h.release(probeSlot)
			}
		}
		cur = newP
		probeSlot = newP
		probeHeld = true
		p = newP
	}

	if r.lengthWord() == r.capacity {
		if !exclusive {
			h.unwindAll()
		}
		return ErrCapacityExceeded
	}

	writeUnits(r.keySlot(p), keyEnc)
	writeUnits(r.valueSlot(p), valEnc)
	r.setChainWord(p, undefined)
	atomic.AddUint32(r.lengthPtr(), 1)
	if pinned {
		r.setChainWord(toChain, p)
	}
	if !exclusive {
		h.unwindAll()
	}
	return nil
}

// chainFind is the lookup algorithm (section 4.2.2). On a match it returns
// with the matched slot's lock still held (the caller releases it after
// decoding the value, per the deliberate hand-off in the design notes);
// on any other outcome it releases everything it acquired itself.
//
// Lookup never leaves the primary chain: it only ever follows chain[·]
// forward, which need not be monotone in slot index, so it raises
// errDeadlockSignal whenever chain[current] <= current rather than only on
// backward probe steps.
func chainFind(r *region, locks slotLocks, key string, hash uint32, exclusive bool) (pos uint32, previous uint32, found bool, err error) {
	keyEnc, ok := encodeUnits(key, r.keyUnits)
	if !ok || len(key) == 0 {
		return 0, 0, false, ErrBadArgument
	}

	var h heldLocks
	h.locks = locks

	p := slotFor(hash, r.capacity)
	if !exclusive {
		h.acquire(p)
	}
	previous = undefined

	for r.occupied(p) {
		if keyMatches(r.keySlot(p), keyEnc) {
			return p, previous, true, nil
		}
		next := r.chainWord(p)
		if next == undefined {
			break
		}
		if !exclusive {
			if !slideAllowed(p, next) {
				h.unwindAll()
				return 0, 0, false, errDeadlockSignal
			}
			h.acquire(next)
			h.release(p)
		}
		previous = p
		p = next
	}
	if !exclusive {
		h.unwindAll()
	}
	return 0, 0, false, nil
}

// chainDelete removes key and rechains any displaced collision successors
// (section 4.2.3). It runs only under the map-exclusive lock, so it takes
// no slot locks at all. It reports whether a rechain was performed, so
// callers can track it as a diagnostic counter.
func chainDelete(r *region, key string, hash uint32) (rechained bool, err error) {
	pos, previous, found, err := chainFind(r, slotLocks{}, key, hash, true)
	if err != nil {
		return false, err
	}
	if !found {
		return false, ErrKeyNotFound
	}

	next := r.chainWord(pos)
	r.freeKey(pos)
	if previous != undefined {
		r.setChainWord(previous, undefined)
	}
	atomic.AddUint32(r.lengthPtr(), ^uint32(0))

	if next == undefined {
		return false, nil
	}

	type displacedEntry struct {
		key, value string
	}
	var displaced []displacedEntry
	for cur := next; cur != undefined; {
		k := readUnits(r.keySlot(cur))
		v := readUnits(r.valueSlot(cur))
		displaced = append(displaced, displacedEntry{k, v})
		nextCur := r.chainWord(cur)
		r.freeKey(cur)
		atomic.AddUint32(r.lengthPtr(), ^uint32(0))
		cur = nextCur
	}

	for _, d := range displaced {
		// OQ1: reinsertion cannot hit capacity-exceeded because the total
		// occupied-slot count never increases during a rechain (every
		// displaced slot is freed before its entry is reinserted).
		if err := chainSet(r, slotLocks{}, d.key, d.value, hashKey(d.key), true); err != nil {
			return true, err
		}
	}
	return true, nil
}

// chainClear empties key and value storage and resets length under the
// map-exclusive lock (section 4.2.5). The chain array is left untouched:
// chain links are only meaningful for occupied slots (I3), and every slot
// is about to be unoccupied.
func chainClear(r *region) {
	for i := uint32(0); i < r.capacity; i++ {
		ks := r.keySlot(i)
		for j := range ks {
			ks[j] = 0
		}
		vs := r.valueSlot(i)
		for j := range vs {
			vs[j] = 0
		}
	}
	r.setLength(0)
}

// chainKeys yields a lazy, best-effort snapshot of present keys in slot
// order (section 4.2.4): each slot is visited under its own slot lock
// (the shared map lock is held by the caller for the whole walk), and a
// concurrent insert/delete may cause a key to be observed zero or one
// times but never corrupt a single slot's read.
func chainKeys(r *region, locks slotLocks) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		for i := uint32(0); i < r.capacity; i++ {
			locks.acquire(i)
			occupied := r.occupied(i)
			var key string
			if occupied {
				key = readUnits(r.keySlot(i))
			}
			locks.release(i)
			if occupied {
				if !yield(key) {
					return
				}
			}
		}
	}
}
