//go:build !linux && !darwin
// +build !linux,!darwin

package pool

// NewMmapBufferSource is unavailable on this platform; it falls back to the
// system heap source so callers do not need build-tag-specific code.
func NewMmapBufferSource() BufferSource {
	return NewSystemBufferSource()
}
