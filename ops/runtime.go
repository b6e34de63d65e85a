// Package ops implements one concrete type per IR operation kind: each owns its compute pipeline(s) and bind-group layout(s),
// built once in New, and encodes GPU commands for one op instance in
// EncodeCommands. Structurally identical op kinds (a single input image,
// a small uniform struct, a same-shaped output image) share the
// pointwiseOp helper in pointwise.go instead of duplicating pipeline
// setup nine times over.
package ops

import (
	"github.com/rasterlab/photoedit/bindgroup"
	"github.com/rasterlab/photoedit/gpu"
)

// Runtime is the shared, read-only handle every op implementation is
// constructed from: the GPU device plus the bind-group cache shared with
// every other op in the same Engine.
// Each op implementation owns its own RingBuffer instance,
// created in its own New via Runtime.newUniformRing.
type Runtime struct {
	Device      gpu.Device
	BindGroups  *bindgroup.Manager
	WorkgroupSz uint32 // compute shader workgroup size per axis, typically 8 or 16
}

// NewRuntime builds a Runtime over device with a fresh bind-group cache.
func NewRuntime(device gpu.Device) *Runtime {
	return &Runtime{
		Device:      device,
		BindGroups:  bindgroup.NewManager(device),
		WorkgroupSz: 8,
	}
}

// newUniformRing creates a per-op-implementation uniform ring buffer
// sized for one instance of that op's uniform struct.
func (rt *Runtime) newUniformRing(slotSize uint64) *bindgroup.RingBuffer {
	return bindgroup.NewRingBuffer(rt.Device, slotSize)
}

// dispatchCounts returns the workgroup counts covering a width x height
// image at this Runtime's workgroup size (: "ceil(w/wg),
// ceil(h/wg), 1").
func (rt *Runtime) dispatchCounts(width, height uint32) (uint32, uint32, uint32) {
	wg := rt.WorkgroupSz
	return ceilDiv(width, wg), ceilDiv(height, wg), 1
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// createComputePipeline compiles source under label and wires a
// single-bind-group pipeline layout from layout, returning both ids so
// the op implementation's New can stash them for reuse across every
// EncodeCommands call.
func (rt *Runtime) createComputePipeline(label, entryPoint, source string, layout gpu.BindGroupLayoutID) (gpu.ComputePipelineID, error) {
	module, err := rt.Device.CreateShaderModule(&gpu.ShaderModuleDescriptor{Label: label, Source: source})
	if err != nil {
		return 0, err
	}
	pipelineLayout, err := rt.Device.CreatePipelineLayout([]gpu.BindGroupLayoutID{layout})
	if err != nil {
		return 0, err
	}
	return rt.Device.CreateComputePipeline(&gpu.ComputePipelineDescriptor{
		Label:        label,
		Layout:       pipelineLayout,
		ShaderModule: module,
		EntryPoint:   entryPoint,
	})
}
