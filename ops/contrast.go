package ops

import (
	"github.com/rasterlab/photoedit/bindgroup"
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

const contrastWGSL = `
struct Params { amount: f32, _pad0: f32, _pad1: f32, _pad2: f32 }
struct Stats { sumR: u32, sumG: u32, sumB: u32 }
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var inputTex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;
@group(0) @binding(3) var outputTex: texture_storage_2d<rgba16float, write>;
@group(0) @binding(4) var<storage, read> stats: Stats;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let uv = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	let c = textureSampleLevel(inputTex, samp, uv, 0.0);
	let inDims = textureDimensions(inputTex, 0);
	let n = f32(max(inDims.x * inDims.y, 1u));
	let means = vec3<f32>(f32(stats.sumR), f32(stats.sumG), f32(stats.sumB)) / (65536.0 * n);
	let mean = dot(means, vec3<f32>(0.2126, 0.7152, 0.0722));
	let scale = 1.0 + params.amount;
	let adjusted = mean + (c.rgb - mean) * scale;
	textureStore(outputTex, gid.xy, vec4<f32>(adjusted, c.a));
}
`

// Contrast implements AdjustContrast: remaps around the mean luma read
// from the BasicStats buffer produced by an upstream ComputeBasicStatistics.
// Its bind group layout differs from pointwiseOp's shape by
// one extra read-only storage buffer binding, so it is built directly
// rather than via pointwiseOp.
type Contrast struct {
	device   gpu.Device
	bg       *bindgroup.Manager
	ring     *bindgroup.RingBuffer
	layout   gpu.BindGroupLayoutID
	pipeline gpu.ComputePipelineID
	sampler  gpu.SamplerID
}

func NewContrast(rt *Runtime) (*Contrast, error) {
	layout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "adjust_contrast_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeUniformBuffer, MinBindingSize: 16},
			{Binding: 1, Type: gpu.BindingTypeSampledTexture},
			{Binding: 2, Type: gpu.BindingTypeSampler},
			{Binding: 3, Type: gpu.BindingTypeStorageTexture},
			{Binding: 4, Type: gpu.BindingTypeReadOnlyStorageBuffer},
		},
	})
	if err != nil {
		return nil, err
	}
	pipeline, err := rt.createComputePipeline("adjust_contrast", "main", contrastWGSL, layout)
	if err != nil {
		return nil, err
	}
	sampler, err := rt.Device.CreateSampler()
	if err != nil {
		return nil, err
	}
	return &Contrast{
		device: rt.Device, bg: rt.BindGroups, ring: rt.newUniformRing(16),
		layout: layout, pipeline: pipeline, sampler: sampler,
	}, nil
}

func (c *Contrast) Reset() { c.ring.MarkAllAvailable() }

func (c *Contrast) EncodeCommands(encoder gpu.Encoder, op *ir.AdjustContrast, store *value.Store) error {
	input, err := store.Image(op.Input)
	if err != nil {
		return err
	}
	stats, err := store.Buffer(op.BasicStats)
	if err != nil {
		return err
	}
	output, err := store.EnsureImage(op.ResultID, input.Properties)
	if err != nil {
		return err
	}

	uniformBuf, err := c.ring.Get()
	if err != nil {
		return err
	}
	if err := c.device.WriteBuffer(uniformBuf, 0, packFloat32s(op.Amount, 0, 0, 0)); err != nil {
		return err
	}

	bindGroup, err := c.bg.GetOrCreate(c.layout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindBuffer, UUID: uint32(uniformBuf), GpuEntry: gpu.BindGroupEntry{Binding: 0, Buffer: uniformBuf, Size: 16}},
		{Binding: 1, Kind: bindgroup.KindTexture, UUID: input.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 1, Texture: input.View}},
		{Binding: 2, Kind: bindgroup.KindSampler, UUID: uint32(c.sampler), GpuEntry: gpu.BindGroupEntry{Binding: 2, Sampler: c.sampler}},
		{Binding: 3, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 3, Texture: output.BaseMipView}},
		{Binding: 4, Kind: bindgroup.KindBuffer, UUID: stats.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 4, Buffer: stats.Handle, Size: stats.Properties.Size}},
	})
	if err != nil {
		return err
	}

	pass := encoder.BeginComputePass()
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, bindGroup)
	wg := uint32(8)
	pass.Dispatch(ceilDiv(output.Properties.Width, wg), ceilDiv(output.Properties.Height, wg), 1)
	pass.End()
	return nil
}
