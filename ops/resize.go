package ops

import (
	"github.com/rasterlab/photoedit/bindgroup"
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

const resizeWGSL = `
@group(0) @binding(0) var inputTex: texture_2d<f32>;
@group(0) @binding(1) var samp: sampler;
@group(0) @binding(2) var outputTex: texture_storage_2d<rgba16float, write>;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let uv = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	// Mip level chosen so the sample footprint roughly matches one output
	// texel, giving a box-filtered bilinear downsample.
	let srcDims = textureDimensions(inputTex, 0);
	let ratio = f32(srcDims.x) / f32(dims.x);
	let level = max(log2(max(ratio, 1.0)), 0.0);
	let c = textureSampleLevel(inputTex, samp, uv, level);
	textureStore(outputTex, gid.xy, c);
}
`

// Resize implements the Resize IR op: bilinear downsample using mip
// levels where possible. Used both for interactive preview
// downscale and export-time downscale; the GPU-dispatched path here is
// distinct from toolbox.ResizeRGBA's host-side CPU resampling, which
// serves only thumbnails and decode-time previews that never touch a
// value-store Image.
type Resize struct {
	rt       *Runtime
	layout   gpu.BindGroupLayoutID
	pipeline gpu.ComputePipelineID
	sampler  gpu.SamplerID
}

func NewResize(rt *Runtime) (*Resize, error) {
	layout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "resize_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeSampledTexture},
			{Binding: 1, Type: gpu.BindingTypeSampler},
			{Binding: 2, Type: gpu.BindingTypeStorageTexture},
		},
	})
	if err != nil {
		return nil, err
	}
	pipeline, err := rt.createComputePipeline("resize", "main", resizeWGSL, layout)
	if err != nil {
		return nil, err
	}
	sampler, err := rt.Device.CreateSampler()
	if err != nil {
		return nil, err
	}
	return &Resize{rt: rt, layout: layout, pipeline: pipeline, sampler: sampler}, nil
}

func (r *Resize) Reset() {}

func (r *Resize) EncodeCommands(encoder gpu.Encoder, op *ir.Resize, store *value.Store) error {
	input, err := store.Image(op.Input)
	if err != nil {
		return err
	}
	output, err := store.EnsureImage(op.ResultID, value.ImageProperties{
		Width: op.Width, Height: op.Height,
		Format: input.Properties.Format, ColorSpace: input.Properties.ColorSpace, MipLevelCount: 1,
	})
	if err != nil {
		return err
	}

	bindGroup, err := r.rt.BindGroups.GetOrCreate(r.layout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindTexture, UUID: input.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 0, Texture: input.View}},
		{Binding: 1, Kind: bindgroup.KindSampler, UUID: uint32(r.sampler), GpuEntry: gpu.BindGroupEntry{Binding: 1, Sampler: r.sampler}},
		{Binding: 2, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 2, Texture: output.BaseMipView}},
	})
	if err != nil {
		return err
	}

	pass := encoder.BeginComputePass()
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, bindGroup)
	wg := uint32(8)
	pass.Dispatch(ceilDiv(op.Width, wg), ceilDiv(op.Height, wg), 1)
	pass.End()
	return nil
}
