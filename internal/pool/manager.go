// Package pool provides a user-space memory pool allocator: it carves
// caller-requested byte ranges out of fixed-size backing buffers, coalescing
// adjacent free regions on free and selecting free regions by a
// caller-chosen placement policy (first-fit or best-fit) on allocate.
//
// A Pool is not safe for concurrent use; the caller serializes calls on a
// given pool exactly as it would serialize calls on a Registry (see
// registry.go). Distinct pools may be driven from distinct goroutines.
package pool

import (
	poolerrors "github.com/orizon-lang/orizon/internal/errors"
)

const (
	defaultNodeCapacity = 4
	defaultGapCapacity  = 4
)

// Pool binds a backing buffer, a region list, a gap index, and summary
// counters into one allocation engine. It is created by Registry.Open and
// destroyed by Close.
type Pool struct {
	id       int
	registry *Registry

	size   uintptr
	policy Policy
	source BufferSource
	buffer []byte

	regions *regionList
	gaps    *gapIndex

	numAllocs uint64
	numGaps   int
	allocSize uintptr
	usedNodes int
}

// RegionInfo is one entry of an Inspect snapshot: a region's size and
// whether it is currently allocated.
type RegionInfo struct {
	Size      uintptr
	Allocated bool
}

// Allocation is the read-only handle Allocate returns: a live allocation's
// base offset and size within its pool's backing buffer.
type Allocation struct {
	pool  *Pool
	node  int
	base  uintptr
	size  uintptr
	freed bool
}

// Base returns the allocation's base offset within the pool's buffer.
func (a *Allocation) Base() uintptr { return a.base }

// Size returns the allocation's size in bytes.
func (a *Allocation) Size() uintptr { return a.size }

// Bytes returns the slice of the pool's backing buffer covered by this
// allocation. The slice aliases the pool's buffer and is valid only until
// the allocation is freed or the pool is closed.
func (a *Allocation) Bytes() []byte {
	return a.pool.buffer[a.base : a.base+a.size]
}

// Size returns the pool's total backing buffer size.
func (p *Pool) Size() uintptr { return p.size }

// Policy returns the pool's placement policy.
func (p *Pool) Policy() Policy { return p.policy }

// Allocated returns the number of bytes currently allocated.
func (p *Pool) Allocated() uintptr { return p.allocSize }

// NumAllocs returns the number of live allocations.
func (p *Pool) NumAllocs() uint64 { return p.numAllocs }

// NumGaps returns the number of free regions.
func (p *Pool) NumGaps() int { return p.numGaps }

// Allocate selects a free region able to satisfy size, splits off any
// remainder as a new gap, and returns a handle to the allocated region.
// It fails with a NoGap error if no region is large enough.
func (p *Pool) Allocate(size uintptr) (*Allocation, error) {
	if size == 0 {
		return nil, poolerrors.InvalidSize(size, "Pool.Allocate")
	}

	if p.numGaps == 0 {
		return nil, poolerrors.NoGap(size)
	}

	var (
		chosen int
		ok     bool
	)

	switch p.policy {
	case FirstFit:
		chosen, ok = p.selectFirstFit(size)
	default:
		chosen, ok = selectBestFit(p.gaps, size)
	}

	if !ok {
		return nil, poolerrors.NoGap(size)
	}

	removeGap(p.gaps, chosen)
	p.numGaps--

	chosenSize := p.regions.node(chosen).size
	remainder := chosenSize - size

	p.regions.setAllocated(chosen, true)
	p.regions.setSize(chosen, size)

	if remainder > 0 {
		newIdx := p.regions.claim() // may grow the store; chosen stays a valid index regardless
		base := p.regions.node(chosen).base + size

		p.regions.setBase(newIdx, base)
		p.regions.setSize(newIdx, remainder)
		p.regions.setAllocated(newIdx, false)

		p.regions.spliceAfter(chosen, newIdx)
		insertGap(p.gaps, p.regions, newIdx)

		p.numGaps++
		p.usedNodes++
	}

	p.numAllocs++
	p.allocSize += size

	return &Allocation{
		pool: p,
		node: chosen,
		base: p.regions.node(chosen).base,
		size: size,
	}, nil
}

// selectFirstFit walks the region list in address order and returns the
// first free node whose size is at least size.
func (p *Pool) selectFirstFit(size uintptr) (idx int, ok bool) {
	idx = -1

	p.regions.forEach(func(i int, n regionNode) bool {
		if !n.allocated && n.size >= size {
			idx, ok = i, true

			return false
		}

		return true
	})

	return idx, ok
}

// Free flips a, a live allocation, back to a gap and merges it with any
// adjacent free neighbors. It fails with a NotFreed error if a does not
// reference a live allocation in this pool.
func (p *Pool) Free(a *Allocation) error {
	if a == nil || a.pool != p || a.freed {
		return poolerrors.NotFreed("Pool.Free", "allocation handle is unknown to this pool")
	}

	n := p.regions.node(a.node)
	if !n.live || !n.allocated || n.base != a.base {
		return poolerrors.NotFreed("Pool.Free", "allocation handle does not match a live allocation")
	}

	p.numAllocs--
	p.allocSize -= n.size
	p.regions.setAllocated(a.node, false)

	target := a.node

	if succ := p.regions.node(target).next; succ != nilNode {
		sn := p.regions.node(succ)
		if sn.live && !sn.allocated {
			removeGap(p.gaps, succ)
			p.numGaps--

			p.regions.setSize(target, p.regions.node(target).size+sn.size)
			p.regions.unlink(succ)
			p.regions.release(succ)
			p.usedNodes--
		}
	}

	if pred := p.regions.node(target).prev; pred != nilNode {
		pn := p.regions.node(pred)
		if pn.live && !pn.allocated {
			removeGap(p.gaps, pred)
			p.numGaps--

			p.regions.setSize(pred, pn.size+p.regions.node(target).size)
			p.regions.unlink(target)
			p.regions.release(target)
			p.usedNodes--

			target = pred
		}
	}

	insertGap(p.gaps, p.regions, target)
	p.numGaps++

	a.freed = true

	return nil
}

// Inspect returns a freshly-allocated snapshot of the region list in
// address order. The caller owns the returned slice; mutating it does not
// alias pool state.
func (p *Pool) Inspect() []RegionInfo {
	out := make([]RegionInfo, 0, p.usedNodes)

	p.regions.forEach(func(_ int, n regionNode) bool {
		out = append(out, RegionInfo{Size: n.size, Allocated: n.allocated})

		return true
	})

	return out
}

// Close releases the pool's backing buffer and metadata and unregisters it.
// It requires the pool to be in its initial state (one gap, zero
// allocations); otherwise it fails with a NotFreed error and the pool
// remains open and operable.
func (p *Pool) Close() error {
	if p.numGaps != 1 || p.numAllocs != 0 {
		return poolerrors.NotFreed("Pool.Close", "pool has live allocations or more than one gap")
	}

	if err := p.source.Release(p.buffer); err != nil {
		return err
	}

	p.registry.unregister(p.id)

	p.buffer = nil
	p.regions = nil
	p.gaps = nil

	return nil
}
