package pool

import (
	poolerrors "github.com/orizon-lang/orizon/internal/errors"
)

// BufferSource is the external collaborator the core allocation engine asks
// for a pool's backing memory (spec §1: "the physical backing memory is
// supplied by a system allocator"). A pool manager holds exactly one
// BufferSource for its lifetime and never grows or shrinks the buffer it
// returns.
type BufferSource interface {
	// Acquire returns a contiguous byte range of exactly size bytes, or an
	// error if that many bytes could not be secured.
	Acquire(size uintptr) ([]byte, error)
	// Release returns a buffer previously returned by Acquire. Implementations
	// backed by GC-managed memory may treat this as a no-op.
	Release(buf []byte) error
}

// systemBufferSource is the default BufferSource: plain heap allocation via
// make, reclaimed by the garbage collector once Release drops the last
// reference. This mirrors the teacher's BytePool default path for buffers
// that do not need OS-level placement control.
type systemBufferSource struct{}

// NewSystemBufferSource returns a BufferSource backed by ordinary Go heap
// allocations.
func NewSystemBufferSource() BufferSource {
	return systemBufferSource{}
}

func (systemBufferSource) Acquire(size uintptr) (buf []byte, err error) {
	if size == 0 {
		return nil, poolerrors.InvalidSize(size, "BufferSource.Acquire")
	}

	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = poolerrors.OutOfMemory("BufferSource.Acquire")
		}
	}()

	return make([]byte, size), nil
}

func (systemBufferSource) Release([]byte) error {
	return nil
}
