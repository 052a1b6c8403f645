//go:build windows

package shmmap

import "errors"

// errUnsupportedPlatform is returned by the shared-file constructors on
// platforms without the unix mmap primitives wired in; New (heap-backed,
// single-process) remains fully functional everywhere.
var errUnsupportedPlatform = errors.New("shmmap: file-backed shared regions are not supported on this platform")

func createMappedFile(path string, size int64) (*region, error) {
	return nil, errUnsupportedPlatform
}

func openMappedFile(path string) (*region, error) {
	return nil, errUnsupportedPlatform
}
