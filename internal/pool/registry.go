package pool

import (
	poolerrors "github.com/orizon-lang/orizon/internal/errors"
)

const registrySmallCapacity = 4

// Registry is a process-wide table of open pools with an explicit
// initialize -> open/close* -> shutdown lifecycle. It is itself shared
// mutable state: Init, Shutdown, Open, and Close on the same Registry must
// be serialized by the caller (see the package doc comment on Pool).
//
// This is the "explicit library context" alternative the design notes
// allow in place of a single implicit process-global: callers that want
// the traditional global surface use DefaultRegistry and the package-level
// wrappers in registry_default.go; tests construct their own Registry so
// that open/close lifecycle bugs in one test cannot leak into another.
type Registry struct {
	initialized bool
	pools       []*Pool
	source      BufferSource
}

// NewRegistry returns an uninitialized registry. BufferSource controls how
// each Open acquires a pool's backing buffer; a nil source defaults to
// NewSystemBufferSource().
func NewRegistry(source BufferSource) *Registry {
	if source == nil {
		source = NewSystemBufferSource()
	}

	return &Registry{source: source}
}

// Init allocates the registry's pool table. It fails with CalledAgain if
// the registry is already initialized.
func (r *Registry) Init() error {
	if r.initialized {
		return poolerrors.CalledAgain("Registry.Init")
	}

	r.pools = make([]*Pool, 0, registrySmallCapacity)
	r.initialized = true

	return nil
}

// Shutdown releases the registry's pool table. It fails with CalledAgain if
// the registry is not initialized. It is the caller's responsibility to
// have closed every pool first; Shutdown does not implicitly close pools.
func (r *Registry) Shutdown() error {
	if !r.initialized {
		return poolerrors.CalledAgain("Registry.Shutdown")
	}

	r.pools = nil
	r.initialized = false

	return nil
}

// requireInitialized panics if the registry has not been successfully
// Init'd. Calling Open or Pools before Init is a caller contract violation
// (spec: "No other operation may be called before a successful
// initialize"), not a recoverable operational error.
func (r *Registry) requireInitialized() {
	if !r.initialized {
		panic("pool: Registry operation called before Init")
	}
}

// register appends p to the pool table, growing its capacity by a fixed
// factor first if doing so would push the load factor above 0.75. Closed
// slots are left as tombstones (set to nil by unregister) rather than
// compacted or reused; the next Open always appends at the tail.
func (r *Registry) register(p *Pool) int {
	r.pools = ensureCapacity(r.pools, 2, 0.75)
	r.pools = append(r.pools, p)

	return len(r.pools) - 1
}

func (r *Registry) unregister(id int) {
	if id >= 0 && id < len(r.pools) {
		r.pools[id] = nil
	}
}

// Open allocates a backing buffer of exactly size bytes and registers a new
// pool with the given placement policy. It fails with an OutOfMemory error
// if the buffer or any metadata allocation could not be secured; any
// partially acquired resources are released before returning.
func (r *Registry) Open(size uintptr, policy Policy) (*Pool, error) {
	r.requireInitialized()

	if size == 0 {
		return nil, poolerrors.InvalidSize(size, "Registry.Open")
	}

	buf, err := r.source.Acquire(size)
	if err != nil {
		return nil, poolerrors.OutOfMemory("Registry.Open")
	}

	regions := newRegionList(size, defaultNodeCapacity)
	gaps := newGapIndex(defaultGapCapacity)
	insertGap(gaps, regions, regions.head)

	p := &Pool{
		registry:  r,
		size:      size,
		policy:    policy,
		source:    r.source,
		buffer:    buf,
		regions:   regions,
		gaps:      gaps,
		numGaps:   1,
		usedNodes: 1,
	}
	p.id = r.register(p)

	return p, nil
}

// Pools returns the currently registered (non-closed) pools, in open order.
func (r *Registry) Pools() []*Pool {
	r.requireInitialized()

	out := make([]*Pool, 0, len(r.pools))

	for _, p := range r.pools {
		if p != nil {
			out = append(out, p)
		}
	}

	return out
}
