package pool

import "testing"

func TestGapIndexOrdering(t *testing.T) {
	rl := newRegionList(1000, 4)
	gi := newGapIndex(4)

	// Build three disjoint free nodes of sizes 300, 100, 300 at increasing
	// base addresses, mirroring spec scenario 6's layout after two frees.
	rl.setSize(rl.head, 300)

	mid := rl.claim()
	rl.setBase(mid, 300)
	rl.setSize(mid, 100)
	rl.spliceAfter(rl.head, mid)

	tail := rl.claim()
	rl.setBase(tail, 400)
	rl.setSize(tail, 300)
	rl.spliceAfter(mid, tail)

	insertGap(gi, rl, rl.head)
	insertGap(gi, rl, mid)
	insertGap(gi, rl, tail)

	if gi.count() != 3 {
		t.Fatalf("expected 3 gap entries, got %d", gi.count())
	}

	// Ascending size: 100 first, then the two 300s tie-broken by base address.
	if gi.entries[0].node != mid {
		t.Fatalf("smallest gap should be first, got node %d", gi.entries[0].node)
	}
	if gi.entries[1].node != rl.head || gi.entries[2].node != tail {
		t.Fatalf("equal-size gaps should tie-break by ascending base: got %d, %d", gi.entries[1].node, gi.entries[2].node)
	}
}

func TestGapIndexRemove(t *testing.T) {
	rl := newRegionList(1000, 4)
	gi := newGapIndex(4)

	rl.setSize(rl.head, 500)
	other := rl.claim()
	rl.setBase(other, 500)
	rl.setSize(other, 500)
	rl.spliceAfter(rl.head, other)

	insertGap(gi, rl, rl.head)
	insertGap(gi, rl, other)

	removeGap(gi, rl.head)

	if gi.count() != 1 {
		t.Fatalf("expected 1 entry after removal, got %d", gi.count())
	}
	if gi.entries[0].node != other {
		t.Fatalf("remaining entry should reference %d, got %d", other, gi.entries[0].node)
	}
}

func TestSelectBestFitPicksSmallestSufficientGap(t *testing.T) {
	rl := newRegionList(1000, 4)
	gi := newGapIndex(4)

	rl.setSize(rl.head, 50)
	mid := rl.claim()
	rl.setBase(mid, 50)
	rl.setSize(mid, 200)
	rl.spliceAfter(rl.head, mid)

	tail := rl.claim()
	rl.setBase(tail, 250)
	rl.setSize(tail, 750)
	rl.spliceAfter(mid, tail)

	insertGap(gi, rl, rl.head)
	insertGap(gi, rl, mid)
	insertGap(gi, rl, tail)

	node, ok := selectBestFit(gi, 100)
	if !ok {
		t.Fatal("expected a sufficient gap to be found")
	}
	if node != mid {
		t.Fatalf("best-fit should pick the 200-byte gap, got node %d (size %d)", node, rl.node(node).size)
	}

	if _, ok := selectBestFit(gi, 10000); ok {
		t.Fatal("no gap should satisfy a request larger than the pool")
	}
}
