package shmmap

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used to pad hot atomic words so independent locks and
// counters don't share a cache line with unrelated fields.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// delay backs off a contended spin loop. Callers pass the attempt count
// (starting at 0) and get back the next one; past a few spins it yields the
// processor instead of busy-waiting.
func delay(attempt int) int {
	if attempt < 4 {
		for i := 0; i < 1<<uint(attempt); i++ {
			procyield(30)
		}
	} else {
		runtime.Gosched()
	}
	return attempt + 1
}

// procyield is a portable stand-in for the PAUSE/YIELD spin hint; plain Go
// has no exported intrinsic for it, so a tiny busy loop does the job.
func procyield(cycles int) {
	for i := 0; i < cycles; i++ {
	}
}
