//go:build linux || darwin
// +build linux darwin

package pool

import (
	"golang.org/x/sys/unix"

	poolerrors "github.com/orizon-lang/orizon/internal/errors"
)

// mmapBufferSource acquires a pool's backing buffer via an anonymous,
// private mmap mapping rather than the Go heap, keeping the pool's
// allocation traffic off the garbage collector's radar entirely.
type mmapBufferSource struct{}

// NewMmapBufferSource returns a BufferSource backed by unix.Mmap. Each
// Acquire is a single anonymous mapping; Release munmaps it.
func NewMmapBufferSource() BufferSource {
	return mmapBufferSource{}
}

func (mmapBufferSource) Acquire(size uintptr) ([]byte, error) {
	if size == 0 {
		return nil, poolerrors.InvalidSize(size, "mmapBufferSource.Acquire")
	}

	buf, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, poolerrors.OutOfMemory("mmapBufferSource.Acquire")
	}

	return buf, nil
}

func (mmapBufferSource) Release(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	return unix.Munmap(buf)
}
