package shmmap

import (
	"fmt"
	"iter"
)

// Set inserts key with value, or replaces the value of an existing key.
// It fails with ErrCapacityExceeded if the map is full and key is not
// already present.
func (m *Map) Set(key, value string) error {
	return m.SetHash(key, value, hashKey(key))
}

// SetHash behaves like Set but uses hash in place of the built-in hasher,
// for callers that want to force particular collisions or share a
// precomputed hash across calls (section 4.1).
func (m *Map) SetHash(key, value string, hash uint32) error {
	if len(key) == 0 {
		return &KeyError{Op: "set", Key: key, Err: ErrBadArgument}
	}
	err := m.withEnvelope(func(exclusive bool) error {
		return chainSet(m.region, m.slotLocks(), key, value, hash, exclusive)
	})
	if err != nil {
		return &KeyError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Get returns the value stored for key, and whether it was present.
func (m *Map) Get(key string) (string, bool) {
	return m.GetHash(key, hashKey(key))
}

// GetHash behaves like Get but uses hash in place of the built-in hasher.
func (m *Map) GetHash(key string, hash uint32) (string, bool) {
	var value string
	var found bool
	_ = m.withEnvelope(func(exclusive bool) error {
		pos, _, f, err := chainFind(m.region, m.slotLocks(), key, hash, exclusive)
		if err != nil {
			return err
		}
		found = f
		if f {
			value = readUnits(m.region.valueSlot(pos))
			if !exclusive {
				m.slotLocks().release(pos)
			}
		}
		return nil
	})
	return value, found
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key. It fails with ErrKeyNotFound if key is absent.
// Delete always runs under the map-exclusive lock (section 4.2.3).
func (m *Map) Delete(key string) error {
	if len(key) == 0 {
		return &KeyError{Op: "delete", Key: key, Err: ErrBadArgument}
	}
	m.rw.lockExclusive()
	defer m.rw.unlockExclusive()
	rechained, err := chainDelete(m.region, key, hashKey(key))
	if rechained {
		m.stats.rechains.Add(1)
	}
	if err != nil {
		return &KeyError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Clear empties the map under the map-exclusive lock (section 4.2.5).
func (m *Map) Clear() {
	m.rw.lockExclusive()
	defer m.rw.unlockExclusive()
	chainClear(m.region)
}

// Keys returns a lazy, finite, non-restartable sequence of the keys
// present at the moment each slot is visited (section 4.2.4). Each yielded
// key was actually present at its visit, but the union across the whole
// walk is only a best-effort snapshot under concurrent mutation.
func (m *Map) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		m.rw.lockShared()
		defer m.rw.unlockShared()
		chainKeys(m.region, m.slotLocks())(yield)
	}
}

// Len returns the current entry count. It is observable without any lock
// and may be momentarily inconsistent with slot occupancy by +/-1 under
// concurrent mutation; this is documented, not a bug (section 5).
func (m *Map) Len() uint32 {
	return m.region.lengthWord()
}

// Capacity returns the configured maximum entry count.
func (m *Map) Capacity() uint32 {
	return m.region.capacity
}

// KeyUnits returns the configured per-slot key capacity in 16-bit code units.
func (m *Map) KeyUnits() uint32 {
	return m.region.keyUnits
}

// ValueUnits returns the configured per-slot value capacity in 16-bit code units.
func (m *Map) ValueUnits() uint32 {
	return m.region.valueUnits
}

// Stats returns a snapshot of this worker's local diagnostic counters.
func (m *Map) Stats() Stats {
	return m.stats.snapshot()
}

func (m *Map) slotLocks() slotLocks {
	return slotLocks{r: m.region}
}

// withEnvelope implements the public operation envelope (section 4.4):
// try under the shared map lock first; on a deadlock signal, retry once
// under the map-exclusive lock, counting the escalation.
func (m *Map) withEnvelope(op func(exclusive bool) error) error {
	m.rw.lockShared()
	err := op(false)
	m.rw.unlockShared()
	if err == errDeadlockSignal {
		m.stats.deadlockEscalations.Add(1)
		m.rw.lockExclusive()
		err = op(true)
		m.rw.unlockExclusive()
	}
	return err
}

func (m *Map) String() string {
	return fmt.Sprintf("shmmap.Map{capacity: %d, len: %d}", m.Capacity(), m.Len())
}
