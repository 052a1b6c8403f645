package shmmap

import "sync/atomic"

// Stats reports worker-local diagnostic counters. They are not part of the
// shared region — each *Map tracks its own, the way the teacher's MapOf
// tracks totalGrowths/totalShrinks locally rather than in shared state.
type Stats struct {
	DeadlockEscalations uint64
	Rechains            uint64
}

type opStats struct {
	deadlockEscalations atomic.Uint64
	_                    [CacheLineSize - 8]byte
	rechains             atomic.Uint64
	_                    [CacheLineSize - 8]byte
}

func (s *opStats) snapshot() Stats {
	return Stats{
		DeadlockEscalations: s.deadlockEscalations.Load(),
		Rechains:            s.rechains.Load(),
	}
}
