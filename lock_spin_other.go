//go:build !linux

package shmmap

import "sync/atomic"

// futexWait/futexWake have no portable non-Linux equivalent, so platforms
// without a futex syscall fall back to an exponential spin/Gosched backoff,
// mirroring the teacher's delay() loop for contended bucket spinlocks. This
// burns CPU on every waiter instead of parking in the kernel, which is the
// tradeoff noted in SPEC_FULL.md for the cross-process case on these
// platforms.
func futexWait(addr *uint32, expect uint32) {
	attempt := 0
	for atomic.LoadUint32(addr) == expect {
		attempt = delay(attempt)
	}
}

func futexWake(addr *uint32, count int) {
	// No waiters to explicitly notify under the spin fallback; they will
	// observe the new value on their next poll.
}
