package pool

// DefaultRegistry is the process-wide registry the package-level Init,
// Shutdown, and Open wrappers below operate on. Only init, shutdown and
// open are free-standing functions; close, allocate, free and inspect are
// Pool methods, since each always targets one already-open pool. Most
// programs use these wrappers;
// tests and anything opening pools concurrently with other packages should
// construct their own Registry instead.
var DefaultRegistry = NewRegistry(nil)

// Init initializes DefaultRegistry.
func Init() error { return DefaultRegistry.Init() }

// Shutdown releases DefaultRegistry.
func Shutdown() error { return DefaultRegistry.Shutdown() }

// Open opens a new pool of size bytes under the given placement policy on
// DefaultRegistry.
func Open(size uintptr, policy Policy) (*Pool, error) {
	return DefaultRegistry.Open(size, policy)
}
