package bindgroup

import (
	"testing"

	"github.com/rasterlab/photoedit/gpu"
	fakegpu "github.com/rasterlab/photoedit/gpu/fake"
)

func TestManagerCacheHitOnIdenticalEntries(t *testing.T) {
	dev, err := fakegpu.New()
	if err != nil {
		t.Fatalf("fake.New: %v", err)
	}
	mgr := NewManager(dev)

	layout, _ := dev.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{})
	entries := []Entry{{Binding: 0, Kind: KindBuffer, UUID: 7}}

	id1, err := mgr.GetOrCreate(layout, entries)
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}
	id2, err := mgr.GetOrCreate(layout, entries)
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if id1 != id2 {
		t.Fatal("identical entries must hit the cache and return the same bind group")
	}

	hits, misses := mgr.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got hits=%d misses=%d", hits, misses)
	}
}

func TestManagerMissOnDifferentUUID(t *testing.T) {
	dev, _ := fakegpu.New()
	mgr := NewManager(dev)
	layout, _ := dev.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{})

	id1, _ := mgr.GetOrCreate(layout, []Entry{{Binding: 0, Kind: KindBuffer, UUID: 1}})
	id2, _ := mgr.GetOrCreate(layout, []Entry{{Binding: 0, Kind: KindBuffer, UUID: 2}})
	if id1 == id2 {
		t.Fatal("different resource uuids must not share a cached bind group")
	}
	if mgr.Len() != 2 {
		t.Fatalf("expected 2 distinct cached bind groups, got %d", mgr.Len())
	}
}

func TestRingBufferGrowsAndRecycles(t *testing.T) {
	dev, _ := fakegpu.New()
	rb := NewRingBuffer(dev, 256)

	a, err := rb.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := rb.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a == b {
		t.Fatal("two Get calls before MarkAllAvailable must return distinct slots")
	}
	if rb.Len() != 2 {
		t.Fatalf("expected pool to have grown to 2 slots, got %d", rb.Len())
	}

	rb.MarkAllAvailable()
	c, err := rb.Get()
	if err != nil {
		t.Fatalf("Get after MarkAllAvailable: %v", err)
	}
	if rb.Len() != 2 {
		t.Fatalf("Get after MarkAllAvailable should reuse a slot, not grow; len=%d", rb.Len())
	}
	_ = c
}
