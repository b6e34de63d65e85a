package bindgroup

import (
	"fmt"

	"github.com/rasterlab/photoedit/gpu"
)

// SlotState is the RingBuffer slot state machine from :
// Available -> InUse -> Available, the return transition only happening
// via an explicit MarkAllAvailable (never an individual release), since
// slot lifetime is scoped to "until the next execution (or the owning
// op's reset)" rather than to any finer-grained event.
type SlotState uint8

const (
	Available SlotState = iota
	InUse
)

type slot struct {
	buffer gpu.BufferID
	state  SlotState
}

// RingBuffer is a round-robin pool of fixed-size uniform buffers,
// avoiding per-dispatch allocation while guaranteeing concurrently
// encoded dispatches within one submission see distinct buffers. One
// RingBuffer is owned per op implementation; its buffers are mutated
// only by that owning implementation.
type RingBuffer struct {
	device     gpu.Device
	slotSize   uint64
	slots      []slot
	nextUnused int // not read or advanced; Get scans slots and appends on demand
}

// NewRingBuffer creates an empty pool whose slots are each slotSize bytes.
func NewRingBuffer(device gpu.Device, slotSize uint64) *RingBuffer {
	return &RingBuffer{device: device, slotSize: slotSize}
}

// Get returns the next Available slot's buffer id, marking it InUse. If
// no Available slot exists, the pool grows by one fresh buffer rather
// than treating exhaustion as fatal — calls out-of-slot fatal
// "in design terms" but also says "the pool grows on demand", so growth
// is the actual behavior and exhaustion never surfaces as an error here.
func (r *RingBuffer) Get() (gpu.BufferID, error) {
	for i := range r.slots {
		if r.slots[i].state == Available {
			r.slots[i].state = InUse
			return r.slots[i].buffer, nil
		}
	}
	id, err := r.device.CreateBuffer(&gpu.BufferDescriptor{
		Size:  r.slotSize,
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("bindgroup: growing ring buffer: %w", err)
	}
	r.slots = append(r.slots, slot{buffer: id, state: InUse})
	return id, nil
}

// MarkAllAvailable transitions every slot back to Available. Called at
// the start of each module execution, or by an op's Reset, never
// per-slot.
func (r *RingBuffer) MarkAllAvailable() {
	for i := range r.slots {
		r.slots[i].state = Available
	}
}

// Len reports the current pool size (for tests and diagnostics).
func (r *RingBuffer) Len() int { return len(r.slots) }

// Release destroys every buffer in the pool. Called when the owning op
// implementation is torn down along with the engine.
func (r *RingBuffer) Release() {
	for _, s := range r.slots {
		r.device.DestroyBuffer(s.buffer)
	}
	r.slots = nil
}
