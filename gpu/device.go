package gpu

import "context"

// Device abstracts over a GPU backend implementation.
//
// This is the core abstraction that lets the engine work against a real
// wgpu-backed device (package gpu/native) without any other package in
// the module importing wgpu types directly. Implementations must be safe
// for concurrent use from the single engine goroutine plus whatever
// goroutine the host uses to poll readback futures.
//
// Resource lifecycle: resources are created via Create* and released via
// Destroy*; destroying a resource while a command buffer referencing it
// is in flight is undefined behavior, matching the underlying wgpu
// contract.
type Device interface {
	// Name identifies the concrete backend ("native", ...).
	Name() string

	// Capabilities reports device limits used to size dispatches and
	// validate resource requests.
	Capabilities() Capabilities

	// CreateShaderModule compiles WGSL source into a shader module.
	// Shader source is always a package-level constant string; modules
	// are compiled once and cached by the caller (see package bindgroup
	// / ops), not recompiled per dispatch.
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModuleID, error)

	// CreateBuffer allocates a GPU buffer.
	CreateBuffer(desc *BufferDescriptor) (BufferID, error)
	DestroyBuffer(id BufferID)
	WriteBuffer(id BufferID, offset uint64, data []byte) error
	// ReadBuffer reads back buffer contents. It blocks the calling
	// goroutine until the GPU signals completion or ctx is done; callers
	// that want a non-blocking readback should call it from its own
	// goroutine and communicate the result back (see engine.StatisticsFuture).
	ReadBuffer(ctx context.Context, id BufferID, offset, size uint64) ([]byte, error)

	// CreateTexture allocates a GPU texture.
	CreateTexture(desc *TextureDescriptor) (TextureID, error)
	DestroyTexture(id TextureID)
	// CreateTextureView creates a view over the full texture (base mip
	// and all mips); op implementations needing a single-mip view use
	// CreateBaseMipView.
	CreateTextureView(id TextureID) (TextureViewID, error)
	CreateBaseMipView(id TextureID) (TextureViewID, error)
	WriteTexture(id TextureID, data []byte) error
	ReadTexture(ctx context.Context, id TextureID) ([]byte, error)

	// CreateSampler returns a (possibly shared) sampler; samplers are
	// immutable and read-only shared across op implementations.
	CreateSampler() (SamplerID, error)

	// CreateBindGroupLayout / CreatePipelineLayout / CreateComputePipeline
	// / CreateBindGroup create the pipeline-adjacent resources. Callers
	// (package bindgroup, package ops) are responsible for caching.
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayoutID, error)
	CreatePipelineLayout(layouts []BindGroupLayoutID) (PipelineLayoutID, error)
	CreateComputePipeline(desc *ComputePipelineDescriptor) (ComputePipelineID, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroupID, error)

	// CreateCommandEncoder begins a new command encoder. Only one
	// encoder should be open at a time per the engine's single-encoder
	// execution model.
	CreateCommandEncoder(label string) (Encoder, error)

	// Submit submits finished command buffers to the device queue, in
	// order. Submissions are ordered: a later Submit call happens-after
	// an earlier one for the same device.
	Submit(buffers ...CommandBuffer) error

	// GenerateMipmaps encodes commands to populate every mip level of
	// id above level 0 from level 0, blitting onto encoder. Used by the
	// toolbox mipmap generator: masks and working images both need mips
	// for downstream minified sampling.
	GenerateMipmaps(encoder Encoder, id TextureID, width, height, mipLevels uint32) error

	// Close releases the device and its queue. The device must not be
	// used after Close.
	Close() error
}

// Capabilities describes limits and features of a Device.
type Capabilities struct {
	SupportsCompute          bool
	MaxWorkgroupSize         [3]uint32
	MaxTextureDimension2D    uint32
	MaxBufferSize            uint64
	PreferredWorkgroupSizeXY uint32 // typically 8 or 16
}

// ComputePass records dispatch commands within one Encoder.
type ComputePass interface {
	SetPipeline(pipeline ComputePipelineID)
	SetBindGroup(index uint32, group BindGroupID)
	Dispatch(x, y, z uint32)
	End()
}

// Encoder accumulates commands before being finished into a CommandBuffer.
//
// The engine opens exactly one Encoder per module execution and encodes
// every op's commands onto it before a single Finish+Submit.
type Encoder interface {
	BeginComputePass() ComputePass
	CopyTextureToBuffer(src TextureID, dst BufferID, bytesPerRow uint32) error
	CopyTextureToTexture(src, dst TextureID, width, height uint32) error
	Finish() (CommandBuffer, error)
}

// CommandBuffer is a finished, submittable command buffer.
type CommandBuffer interface {
	id() uint64
}
