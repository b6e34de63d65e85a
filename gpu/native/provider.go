package native

import (
	"log"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu"

	"github.com/rasterlab/photoedit/gpu"
)

// NewFromProvider builds a Device sharing a GPU device already owned by a
// host application, rather than opening a new one. This mirrors the
// device-sharing handoff gg's GPU accelerator uses: the host passes a
// gpucontext.DeviceProvider, and the caller tries to recover a concrete
// *wgpu.Device/*wgpu.Queue from it before falling back to an independent
// New(). Sharing is best-effort and never fatal: a provider backed by a
// different binding, or with a nil Device/Queue, simply causes this
// device to open its own adapter and device instead.
func NewFromProvider(provider gpucontext.DeviceProvider) (gpu.Device, error) {
	if provider == nil {
		return New()
	}

	wgpuDevice, okD := provider.Device().(*wgpu.Device)
	wgpuQueue, okQ := provider.Queue().(*wgpu.Queue)
	if !okD || !okQ || wgpuDevice == nil || wgpuQueue == nil {
		log.Printf("photoedit: gpu/native: device provider does not expose a compatible wgpu.Device; opening a dedicated device")
		return New()
	}

	limits := wgpuDevice.Limits()
	caps := gpu.Capabilities{
		SupportsCompute:          true,
		MaxWorkgroupSize:         [3]uint32{256, 256, 64},
		PreferredWorkgroupSizeXY: 8,
		MaxTextureDimension2D:    limits.MaxTextureDimension2D,
		MaxBufferSize:            limits.MaxBufferSize,
	}

	return &Device{
		device:           wgpuDevice,
		queue:            wgpuQueue,
		caps:             caps,
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
