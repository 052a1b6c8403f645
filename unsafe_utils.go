package shmmap

import "unsafe"

// bytesToU32Ptr reinterprets a 4-byte slice window of the backing region as
// a *uint32 so lock/chain/header words can be operated on with sync/atomic
// and raw futex syscalls directly against shared memory, matching the
// teacher's unsafe.Pointer-cast style in its atomic helpers.
func bytesToU32Ptr(b []byte) *uint32 {
	return (*uint32)(unsafe.Pointer(&b[0]))
}
