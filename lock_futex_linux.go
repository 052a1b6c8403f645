//go:build linux

package shmmap

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// golang.org/x/sys/unix does not wrap the Linux futex syscall directly, so
// these call it through Syscall6 with the raw SYS_FUTEX number, the way the
// package's own generated syscall wrappers are structured.
const (
	futexWaitOp = 0
	futexWakeOp = 1
)

// futexWait blocks the calling goroutine (via a raw blocking syscall, so
// the runtime parks the underlying OS thread) while *addr still equals
// expect. A concurrent futexWake on the same address unblocks it; spurious
// wakeups are possible and are harmless because every caller re-checks its
// condition in a loop.
func futexWait(addr *uint32, expect uint32) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWaitOp,
		uintptr(expect),
		0, 0, 0,
	)
}

// futexWake wakes up to count waiters blocked on *addr.
func futexWake(addr *uint32, count int) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWakeOp,
		uintptr(count),
		0, 0, 0,
	)
}
