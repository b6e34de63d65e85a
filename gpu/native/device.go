// Package native implements gpu.Device on top of github.com/gogpu/wgpu.
// Device bring-up (instance, adapter, device, queue retrieval, GPU info
// logging), resource lifecycle (opaque uuid handles over the wgpu object
// graph), and pipeline caching each follow the shape established by that
// binding's own device, texture, and pipeline-cache handling.
package native

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu"

	"github.com/rasterlab/photoedit/gpu"
)

func init() {
	gpu.Register("native", New)
}

// Device is the wgpu-backed gpu.Device implementation. Every resource
// Create* call allocates one of our own opaque uuid handles and stores
// the real *wgpu.X object behind it, so the rest of the module only ever
// sees gpu.XxxID values.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	caps     gpu.Capabilities
	// owned is false when device/queue came from NewFromProvider: Close
	// must then leave the host's shared device, adapter and instance
	// running rather than releasing them out from under it.
	owned bool

	mu               sync.Mutex
	uuids            atomic.Uint64
	textures         map[gpu.TextureID]*textureEntry
	textureViews     map[gpu.TextureViewID]*wgpu.TextureView
	buffers          map[gpu.BufferID]*wgpu.Buffer
	shaderModules    map[gpu.ShaderModuleID]*wgpu.ShaderModule
	samplers         map[gpu.SamplerID]*wgpu.Sampler
	bindGroupLayouts map[gpu.BindGroupLayoutID]*wgpu.BindGroupLayout
	pipelineLayouts  map[gpu.PipelineLayoutID]*wgpu.PipelineLayout
	bindGroups       map[gpu.BindGroupID]*wgpu.BindGroup
	computePipelines map[gpu.ComputePipelineID]*wgpu.ComputePipeline

	pipelines *pipelineCache
}

type textureEntry struct {
	desc gpu.TextureDescriptor
	tex  *wgpu.Texture
}

// New brings up a default instance/adapter/device/queue and returns a
// ready Device. It is the Factory registered under the "native" backend
// name (see gpu.Default and the PHOTOEDIT_GPU_BACKEND environment knob).
func New() (gpu.Device, error) {
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu/native: creating instance: %w", err)
	}

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu/native: requesting adapter: %w", err)
	}
	logGPUInfo(adapter)

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "photoedit",
		RequiredLimits: wgpu.DefaultLimits(),
	})
	if err != nil {
		return nil, fmt.Errorf("gpu/native: requesting device: %w", err)
	}

	limits := adapter.Limits()
	caps := gpu.Capabilities{
		SupportsCompute:          true,
		MaxWorkgroupSize:         [3]uint32{256, 256, 64},
		PreferredWorkgroupSizeXY: 8,
		MaxTextureDimension2D:    limits.MaxTextureDimension2D,
		MaxBufferSize:            limits.MaxBufferSize,
	}

	return &Device{
		instance:         instance,
		adapter:          adapter,
		device:           device,
		queue:            device.Queue(),
		caps:             caps,
		owned:            true,
		textures:         make(map[gpu.TextureID]*textureEntry),
		textureViews:     make(map[gpu.TextureViewID]*wgpu.TextureView),
		buffers:          make(map[gpu.BufferID]*wgpu.Buffer),
		shaderModules:    make(map[gpu.ShaderModuleID]*wgpu.ShaderModule),
		samplers:         make(map[gpu.SamplerID]*wgpu.Sampler),
		bindGroupLayouts: make(map[gpu.BindGroupLayoutID]*wgpu.BindGroupLayout),
		pipelineLayouts:  make(map[gpu.PipelineLayoutID]*wgpu.PipelineLayout),
		bindGroups:       make(map[gpu.BindGroupID]*wgpu.BindGroup),
		computePipelines: make(map[gpu.ComputePipelineID]*wgpu.ComputePipeline),
		pipelines:        newPipelineCache(),
	}, nil
}

func logGPUInfo(adapter *wgpu.Adapter) {
	info := adapter.Info()
	log.Printf("photoedit: gpu/native: GPU: %s (%s, driver %s)", info.Name, info.DeviceType, info.Driver)
}

func (d *Device) Name() string { return "native" }

func (d *Device) Capabilities() gpu.Capabilities { return d.caps }

func (d *Device) nextUUID() uint64 { return d.uuids.Add(1) }

// compileWGSL compiles WGSL source to the SPIR-V word stream naga emits
// as raw little-endian bytes.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compiling shader: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

func (d *Device) CreateShaderModule(desc *gpu.ShaderModuleDescriptor) (gpu.ShaderModuleID, error) {
	spirv, err := compileWGSL(desc.Source)
	if err != nil {
		return 0, &gpu.ResourceError{Op: "CreateShaderModule", Err: err}
	}
	mod, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		SPIRV: spirv,
	})
	if err != nil {
		return 0, &gpu.ResourceError{Op: "CreateShaderModule", Err: err}
	}
	d.mu.Lock()
	id := gpu.ShaderModuleID(d.nextUUID())
	d.shaderModules[id] = mod
	d.mu.Unlock()
	return id, nil
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.BufferID, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            desc.Usage.Native(),
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		return 0, &gpu.ResourceError{Op: "CreateBuffer", Err: err}
	}
	d.mu.Lock()
	id := gpu.BufferID(d.nextUUID())
	d.buffers[id] = buf
	d.mu.Unlock()
	return id, nil
}

func (d *Device) DestroyBuffer(id gpu.BufferID) {
	d.mu.Lock()
	buf, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()
	if ok {
		buf.Release()
	}
}

func (d *Device) WriteBuffer(id gpu.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	buf, ok := d.buffers[id]
	d.mu.Unlock()
	if !ok {
		return gpu.ErrResourceDestroyed
	}
	if err := d.queue.WriteBuffer(buf, offset, data); err != nil {
		return &gpu.ResourceError{Op: "WriteBuffer", Err: err}
	}
	return nil
}

// ReadBuffer reads back buffer contents synchronously via the real
// wgpu.Queue.ReadBuffer, which itself blocks on the device fence; ctx is
// checked up front so a caller that cancels before the call doesn't pay
// for a doomed readback.
func (d *Device) ReadBuffer(ctx context.Context, id gpu.BufferID, offset, size uint64) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, &gpu.ReadbackError{Err: ctx.Err()}
	default:
	}
	d.mu.Lock()
	buf, ok := d.buffers[id]
	d.mu.Unlock()
	if !ok {
		return nil, gpu.ErrResourceDestroyed
	}
	out := make([]byte, size)
	if err := d.queue.ReadBuffer(buf, offset, out); err != nil {
		return nil, &gpu.ReadbackError{Err: err}
	}
	return out, nil
}

func (d *Device) Close() error {
	if !d.owned {
		return nil
	}
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
	return nil
}
