// Package fake provides an in-memory gpu.Device for tests that exercise
// resource lifecycle, bind-group caching, and execution scheduling without
// a real GPU adapter. It performs no compute: buffers and textures are
// plain byte slices, and Submit is a no-op. A fake backend stands in for
// the hardware boundary, satisfying gpu.Device directly rather than any
// lower-level HAL trait.
package fake

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rasterlab/photoedit/gpu"
)

func init() {
	gpu.Register("fake", New)
}

// Device is a CPU-backed gpu.Device for unit tests.
type Device struct {
	mu       sync.Mutex
	uuids    atomic.Uint64
	buffers  map[gpu.BufferID][]byte
	textures map[gpu.TextureID]*texture

	bindGroupLayouts  map[gpu.BindGroupLayoutID]gpu.BindGroupLayoutDescriptor
	computePipelines  map[gpu.ComputePipelineID]gpu.ComputePipelineDescriptor
	submittedBuffers  atomic.Uint64
	dispatchCallCount atomic.Uint64
}

type texture struct {
	desc gpu.TextureDescriptor
	data []byte
}

// New constructs a ready fake Device. It never fails; it exists for tests
// and local development without hardware, not as a fallback in production
// (production construction always goes through gpu.Default, which prefers
// "native").
func New() (gpu.Device, error) {
	return &Device{
		buffers:          make(map[gpu.BufferID][]byte),
		textures:         make(map[gpu.TextureID]*texture),
		bindGroupLayouts: make(map[gpu.BindGroupLayoutID]gpu.BindGroupLayoutDescriptor),
		computePipelines: make(map[gpu.ComputePipelineID]gpu.ComputePipelineDescriptor),
	}, nil
}

func (d *Device) nextID() uint64 { return d.uuids.Add(1) }

func (d *Device) Name() string { return "fake" }

func (d *Device) Capabilities() gpu.Capabilities {
	return gpu.Capabilities{
		SupportsCompute:          true,
		MaxWorkgroupSize:         [3]uint32{256, 256, 64},
		MaxTextureDimension2D:    16384,
		MaxBufferSize:            1 << 30,
		PreferredWorkgroupSizeXY: 8,
	}
}

func (d *Device) CreateShaderModule(desc *gpu.ShaderModuleDescriptor) (gpu.ShaderModuleID, error) {
	return gpu.ShaderModuleID(d.nextID()), nil
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.BufferID, error) {
	if desc.Size == 0 {
		return 0, gpu.ErrInvalidDimensions
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpu.BufferID(d.nextID())
	d.buffers[id] = make([]byte, desc.Size)
	return id, nil
}

func (d *Device) DestroyBuffer(id gpu.BufferID) {
	d.mu.Lock()
	delete(d.buffers, id)
	d.mu.Unlock()
}

func (d *Device) WriteBuffer(id gpu.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[id]
	if !ok {
		return gpu.ErrResourceDestroyed
	}
	if offset+uint64(len(data)) > uint64(len(buf)) {
		return &gpu.ResourceError{Op: "WriteBuffer", Err: gpu.ErrInvalidDimensions}
	}
	copy(buf[offset:], data)
	return nil
}

func (d *Device) ReadBuffer(ctx context.Context, id gpu.BufferID, offset, size uint64) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, &gpu.ReadbackError{Err: ctx.Err()}
	default:
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[id]
	if !ok {
		return nil, gpu.ErrResourceDestroyed
	}
	if offset+size > uint64(len(buf)) {
		return nil, &gpu.ReadbackError{Err: gpu.ErrInvalidDimensions}
	}
	out := make([]byte, size)
	copy(out, buf[offset:offset+size])
	return out, nil
}

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return 0, gpu.ErrInvalidDimensions
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpu.TextureID(d.nextID())
	size := int(desc.Width) * int(desc.Height) * desc.Format.BytesPerPixel()
	d.textures[id] = &texture{desc: *desc, data: make([]byte, size)}
	return id, nil
}

func (d *Device) DestroyTexture(id gpu.TextureID) {
	d.mu.Lock()
	delete(d.textures, id)
	d.mu.Unlock()
}

func (d *Device) CreateTextureView(id gpu.TextureID) (gpu.TextureViewID, error) {
	d.mu.Lock()
	_, ok := d.textures[id]
	d.mu.Unlock()
	if !ok {
		return 0, gpu.ErrResourceDestroyed
	}
	return gpu.TextureViewID(d.nextID()), nil
}

func (d *Device) CreateBaseMipView(id gpu.TextureID) (gpu.TextureViewID, error) {
	return d.CreateTextureView(id)
}

func (d *Device) WriteTexture(id gpu.TextureID, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	tex, ok := d.textures[id]
	if !ok {
		return gpu.ErrResourceDestroyed
	}
	copy(tex.data, data)
	return nil
}

func (d *Device) ReadTexture(ctx context.Context, id gpu.TextureID) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, &gpu.ReadbackError{Err: ctx.Err()}
	default:
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	tex, ok := d.textures[id]
	if !ok {
		return nil, gpu.ErrResourceDestroyed
	}
	out := make([]byte, len(tex.data))
	copy(out, tex.data)
	return out, nil
}

func (d *Device) CreateSampler() (gpu.SamplerID, error) {
	return gpu.SamplerID(d.nextID()), nil
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayoutID, error) {
	id := gpu.BindGroupLayoutID(d.nextID())
	d.mu.Lock()
	d.bindGroupLayouts[id] = *desc
	d.mu.Unlock()
	return id, nil
}

func (d *Device) CreatePipelineLayout(layouts []gpu.BindGroupLayoutID) (gpu.PipelineLayoutID, error) {
	return gpu.PipelineLayoutID(d.nextID()), nil
}

func (d *Device) CreateComputePipeline(desc *gpu.ComputePipelineDescriptor) (gpu.ComputePipelineID, error) {
	id := gpu.ComputePipelineID(d.nextID())
	d.mu.Lock()
	d.computePipelines[id] = *desc
	d.mu.Unlock()
	return id, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroupID, error) {
	return gpu.BindGroupID(d.nextID()), nil
}

type fakeEncoder struct {
	device *Device
}

func (d *Device) CreateCommandEncoder(label string) (gpu.Encoder, error) {
	return &fakeEncoder{device: d}, nil
}

type fakeComputePass struct{ device *Device }

func (p *fakeComputePass) SetPipeline(gpu.ComputePipelineID)    {}
func (p *fakeComputePass) SetBindGroup(uint32, gpu.BindGroupID) {}
func (p *fakeComputePass) Dispatch(x, y, z uint32) {
	p.device.dispatchCallCount.Add(1)
}
func (p *fakeComputePass) End() {}

func (e *fakeEncoder) BeginComputePass() gpu.ComputePass {
	return &fakeComputePass{device: e.device}
}

func (e *fakeEncoder) CopyTextureToBuffer(src gpu.TextureID, dst gpu.BufferID, bytesPerRow uint32) error {
	e.device.mu.Lock()
	defer e.device.mu.Unlock()
	tex, ok := e.device.textures[src]
	if !ok {
		return gpu.ErrResourceDestroyed
	}
	buf, ok := e.device.buffers[dst]
	if !ok {
		return gpu.ErrResourceDestroyed
	}
	n := len(tex.data)
	if n > len(buf) {
		n = len(buf)
	}
	copy(buf, tex.data[:n])
	return nil
}

func (e *fakeEncoder) CopyTextureToTexture(src, dst gpu.TextureID, width, height uint32) error {
	e.device.mu.Lock()
	defer e.device.mu.Unlock()
	s, ok := e.device.textures[src]
	if !ok {
		return gpu.ErrResourceDestroyed
	}
	t, ok := e.device.textures[dst]
	if !ok {
		return gpu.ErrResourceDestroyed
	}
	n := len(s.data)
	if n > len(t.data) {
		n = len(t.data)
	}
	copy(t.data, s.data[:n])
	return nil
}

type fakeCommandBuffer struct{ n uint64 }

func (c *fakeCommandBuffer) id() uint64 { return c.n }

func (e *fakeEncoder) Finish() (gpu.CommandBuffer, error) {
	return &fakeCommandBuffer{n: e.device.nextID()}, nil
}

func (d *Device) Submit(buffers ...gpu.CommandBuffer) error {
	d.submittedBuffers.Add(uint64(len(buffers)))
	return nil
}

func (d *Device) GenerateMipmaps(encoder gpu.Encoder, id gpu.TextureID, width, height, mipLevels uint32) error {
	return nil
}

func (d *Device) Close() error { return nil }

// DispatchCount reports how many ComputePass.Dispatch calls were recorded,
// for tests asserting the engine issued the expected number of op
// dispatches.
func (d *Device) DispatchCount() uint64 { return d.dispatchCallCount.Load() }

// SubmittedBufferCount reports how many command buffers were submitted.
func (d *Device) SubmittedBufferCount() uint64 { return d.submittedBuffers.Load() }
