package pool

import "testing"

func TestRegistryOpenRequiresInit(t *testing.T) {
	r := NewRegistry(nil)

	defer func() {
		if recover() == nil {
			t.Fatal("Open before Init should panic: it is a caller contract violation, not an operational error")
		}
	}()

	_, _ = r.Open(100, FirstFit)
}

func TestRegistryOpenCloseTracksPools(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer r.Shutdown()

	p1, err := r.Open(100, FirstFit)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	p2, err := r.Open(200, BestFit)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if got := len(r.Pools()); got != 2 {
		t.Fatalf("expected 2 open pools, got %d", got)
	}

	if err := p1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if got := len(r.Pools()); got != 1 {
		t.Fatalf("expected 1 open pool after close, got %d", got)
	}

	if err := p2.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestRegistryClosedSlotIsTombstonedNotReused(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer r.Shutdown()

	p1, _ := r.Open(100, FirstFit)
	firstID := p1.id

	if err := p1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	p2, _ := r.Open(100, FirstFit)
	if p2.id == firstID {
		t.Fatal("a new Open should not reuse a closed pool's slot")
	}
}

func TestDefaultRegistryWrappers(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Shutdown()

	p, err := Open(64, FirstFit)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
