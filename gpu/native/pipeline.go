package native

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/rasterlab/photoedit/gpu"
)

// pipelineCache memoizes compute pipeline and bind-group-layout creation by
// a structural descriptor key, so that repeated op dispatches with
// identical shapes (the common case across frames of the same edit) reuse
// the same wgpu pipeline object rather than recompiling, via a
// double-checked-locking cache with hit/miss accounting. The cached
// value type is a compute pipeline rather than a render pipeline, since
// this domain never rasterizes.
type pipelineCache struct {
	mu        sync.RWMutex
	layouts   map[string]gpu.BindGroupLayoutID
	pipelines map[string]gpu.ComputePipelineID

	hits   atomic.Uint64
	misses atomic.Uint64
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{
		layouts:   make(map[string]gpu.BindGroupLayoutID),
		pipelines: make(map[string]gpu.ComputePipelineID),
	}
}

// Stats reports cumulative hit/miss counts. Device does not expose it,
// and nothing outside this file calls it.
func (c *pipelineCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func bindGroupLayoutKey(desc *gpu.BindGroupLayoutDescriptor) string {
	key := desc.Label + "|"
	for _, e := range desc.Entries {
		key += string(rune('0'+e.Binding)) + ":" + string(rune('0'+e.Type)) + ","
	}
	return key
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayoutID, error) {
	key := bindGroupLayoutKey(desc)

	d.pipelines.mu.RLock()
	if id, ok := d.pipelines.layouts[key]; ok {
		d.pipelines.mu.RUnlock()
		d.pipelines.hits.Add(1)
		return id, nil
	}
	d.pipelines.mu.RUnlock()

	d.pipelines.mu.Lock()
	defer d.pipelines.mu.Unlock()
	if id, ok := d.pipelines.layouts[key]; ok {
		d.pipelines.hits.Add(1)
		return id, nil
	}

	entries := make([]gputypes.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = translateBindGroupLayoutEntry(e)
	}
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return 0, &gpu.ResourceError{Op: "CreateBindGroupLayout", Err: err}
	}

	d.mu.Lock()
	id := gpu.BindGroupLayoutID(d.nextUUID())
	d.bindGroupLayouts[id] = layout
	d.mu.Unlock()

	d.pipelines.layouts[key] = id
	d.pipelines.misses.Add(1)
	return id, nil
}

// translateBindGroupLayoutEntry maps our binding-kind vocabulary onto the
// gputypes layout-entry shape, setting exactly one of Buffer/Sampler/
// Texture/StorageTexture per binding, matching WebGPU's own
// GPUBindGroupLayoutEntry discriminated union.
func translateBindGroupLayoutEntry(e gpu.BindGroupLayoutEntry) gputypes.BindGroupLayoutEntry {
	entry := gputypes.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: gputypes.ShaderStageCompute,
	}
	switch e.Type {
	case gpu.BindingTypeUniformBuffer:
		entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: e.MinBindingSize}
	case gpu.BindingTypeStorageBuffer:
		entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage, MinBindingSize: e.MinBindingSize}
	case gpu.BindingTypeReadOnlyStorageBuffer:
		entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage, MinBindingSize: e.MinBindingSize}
	case gpu.BindingTypeSampler:
		entry.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	case gpu.BindingTypeSampledTexture:
		entry.Texture = &gputypes.TextureBindingLayout{SampleType: gputypes.TextureSampleTypeFloat, ViewDimension: gputypes.TextureViewDimension2D}
	case gpu.BindingTypeStorageTexture:
		entry.StorageTexture = &gputypes.StorageTextureBindingLayout{Access: gputypes.StorageTextureAccessWriteOnly, ViewDimension: gputypes.TextureViewDimension2D}
	}
	return entry
}

func (d *Device) CreatePipelineLayout(layouts []gpu.BindGroupLayoutID) (gpu.PipelineLayoutID, error) {
	real := make([]*wgpu.BindGroupLayout, len(layouts))
	for i, l := range layouts {
		d.mu.Lock()
		layout, ok := d.bindGroupLayouts[l]
		d.mu.Unlock()
		if !ok {
			return 0, gpu.ErrResourceDestroyed
		}
		real[i] = layout
	}
	pl, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: real,
	})
	if err != nil {
		return 0, &gpu.ResourceError{Op: "CreatePipelineLayout", Err: err}
	}
	d.mu.Lock()
	id := gpu.PipelineLayoutID(d.nextUUID())
	d.pipelineLayouts[id] = pl
	d.mu.Unlock()
	return id, nil
}

func (d *Device) CreateComputePipeline(desc *gpu.ComputePipelineDescriptor) (gpu.ComputePipelineID, error) {
	key := desc.Label + "|" + desc.EntryPoint

	d.pipelines.mu.RLock()
	if id, ok := d.pipelines.pipelines[key]; ok {
		d.pipelines.mu.RUnlock()
		d.pipelines.hits.Add(1)
		return id, nil
	}
	d.pipelines.mu.RUnlock()

	d.pipelines.mu.Lock()
	defer d.pipelines.mu.Unlock()
	if id, ok := d.pipelines.pipelines[key]; ok {
		d.pipelines.hits.Add(1)
		return id, nil
	}

	d.mu.Lock()
	module, okM := d.shaderModules[desc.ShaderModule]
	layout, okL := d.pipelineLayouts[desc.Layout]
	d.mu.Unlock()
	if !okM || !okL {
		return 0, gpu.ErrResourceDestroyed
	}

	pipeline, err := d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:      desc.Label,
		Layout:     layout,
		Module:     module,
		EntryPoint: desc.EntryPoint,
	})
	if err != nil {
		return 0, &gpu.ResourceError{Op: "CreateComputePipeline", Err: err}
	}

	d.mu.Lock()
	id := gpu.ComputePipelineID(d.nextUUID())
	d.computePipelines[id] = pipeline
	d.mu.Unlock()

	d.pipelines.pipelines[key] = id
	d.pipelines.misses.Add(1)
	return id, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroupID, error) {
	// Bind groups are not memoized here; package bindgroup owns the
	// content-keyed bind-group cache, keyed on the resource IDs bound
	// rather than on the wgpu descriptor shape.
	d.mu.Lock()
	layout, okL := d.bindGroupLayouts[desc.Layout]
	d.mu.Unlock()
	if !okL {
		return 0, gpu.ErrResourceDestroyed
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding, Offset: e.Offset, Size: e.Size}
		d.mu.Lock()
		if e.Buffer != 0 {
			entry.Buffer = d.buffers[e.Buffer]
		}
		if e.Texture != 0 {
			entry.TextureView = d.textureViews[e.Texture]
		}
		if e.Sampler != 0 {
			entry.Sampler = d.samplers[e.Sampler]
		}
		d.mu.Unlock()
		entries[i] = entry
	}

	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return 0, &gpu.ResourceError{Op: "CreateBindGroup", Err: err}
	}
	d.mu.Lock()
	id := gpu.BindGroupID(d.nextUUID())
	d.bindGroups[id] = group
	d.mu.Unlock()
	return id, nil
}
