//go:build unix

package shmmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapBacking keeps the open file descriptor alive for the lifetime of the
// mapping and unmaps/closes both on close.
type mmapBacking struct {
	f   *os.File
	buf []byte
}

func (b *mmapBacking) close() error {
	if err := unix.Munmap(b.buf); err != nil {
		b.f.Close()
		return err
	}
	return b.f.Close()
}

// createMappedFile creates (or truncates) the file at path to exactly size
// bytes and maps it MAP_SHARED so every process that opens the same path
// sees the same bytes.
func createMappedFile(path string, size int64) (*region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, err
	}
	buf, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &region{buf: buf, backing: &mmapBacking{f: f, buf: buf}}, nil
}

// openMappedFile maps an existing file at path MAP_SHARED without altering
// its size, for a peer attaching to a region a prior process created.
func openMappedFile(path string) (*region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := fi.Size()
	if size < headerSize {
		f.Close()
		return nil, ErrBadArgument
	}
	buf, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &region{buf: buf, backing: &mmapBacking{f: f, buf: buf}}, nil
}
