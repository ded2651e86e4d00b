package pool

// gapEntry references a free region node. size is redundant with the
// node's own size field, carried here for locality during the ordering
// comparisons insertGap performs.
type gapEntry struct {
	size uintptr
	node int
}

// gapIndex is the size-ordered, address-tiebroken sequence of every
// currently-free region node in a pool. It contains exactly one entry per
// live node whose allocated flag is false.
type gapIndex struct {
	entries []gapEntry
}

func newGapIndex(initialCap int) *gapIndex {
	return &gapIndex{entries: make([]gapEntry, 0, initialCap)}
}

func (gi *gapIndex) count() int {
	return len(gi.entries)
}

// lessGap reports whether a sorts before b: ascending size, ties broken by
// ascending base address of the referenced node.
func lessGap(a, b gapEntry, rl *regionList) bool {
	if a.size != b.size {
		return a.size < b.size
	}

	return rl.node(a.node).base < rl.node(b.node).base
}

// insertGap adds node (a free region) to the index. It appends at the tail and
// bubbles the new entry toward the front while it sorts before its
// predecessor, which is O(1) best case and O(n) worst case — acceptable at
// the gap counts a single pool is expected to carry.
func insertGap(gi *gapIndex, rl *regionList, node int) {
	gi.entries = ensureCapacity(gi.entries, 2, 0.75)
	gi.entries = append(gi.entries, gapEntry{size: rl.node(node).size, node: node})

	i := len(gi.entries) - 1
	for i > 0 && lessGap(gi.entries[i], gi.entries[i-1], rl) {
		gi.entries[i-1], gi.entries[i] = gi.entries[i], gi.entries[i-1]
		i--
	}
}

// removeGap removes node's entry from the index via a linear scan,
// shifting later entries forward to close the gap. The size-ordered
// invariant is preserved because removal does not reorder the remaining
// entries.
func removeGap(gi *gapIndex, node int) {
	for i, e := range gi.entries {
		if e.node == node {
			copy(gi.entries[i:], gi.entries[i+1:])
			gi.entries = gi.entries[:len(gi.entries)-1]

			return
		}
	}
}

// selectBestFit returns the smallest gap at least as large as size, with
// ties broken toward the lowest address by the index's own ordering — the
// front of a size-ascending, address-tiebroken sequence is exactly that gap.
func selectBestFit(gi *gapIndex, size uintptr) (int, bool) {
	for _, e := range gi.entries {
		if e.size >= size {
			return e.node, true
		}
	}

	return -1, false
}
