package ops

import (
	"math"
	"strings"

	"github.com/rasterlab/photoedit/bindgroup"
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/toolbox"
	"github.com/rasterlab/photoedit/value"
)

// maskImageProps returns the ImageProperties every mask primitive and
// mask-combinator op shares: single-channel R16Float, gray color space,
// with a full mip chain since the compositor's result is resampled by
// ApplyMaskedEdits at the working resolution.
func maskImageProps(width, height uint32) value.ImageProperties {
	return value.ImageProperties{
		Width: width, Height: height,
		Format: gpu.FormatR16Float, ColorSpace: gpu.ColorSpaceGray,
		MipLevelCount: toolbox.MipLevelCount(width, height),
	}
}

const globalMaskWGSL = `
@group(0) @binding(0) var outputTex: texture_storage_2d<r16float, write>;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	textureStore(outputTex, gid.xy, vec4<f32>(1.0, 0.0, 0.0, 0.0));
}
`

// ComputeGlobalMask implements the constant-1 global mask primitive:
// every pixel selected.
type ComputeGlobalMask struct {
	rt       *Runtime
	layout   gpu.BindGroupLayoutID
	pipeline gpu.ComputePipelineID
}

func NewComputeGlobalMask(rt *Runtime) (*ComputeGlobalMask, error) {
	layout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label:   "global_mask_layout",
		Entries: []gpu.BindGroupLayoutEntry{{Binding: 0, Type: gpu.BindingTypeStorageTexture}},
	})
	if err != nil {
		return nil, err
	}
	pipeline, err := rt.createComputePipeline("global_mask", "main", globalMaskWGSL, layout)
	if err != nil {
		return nil, err
	}
	return &ComputeGlobalMask{rt: rt, layout: layout, pipeline: pipeline}, nil
}

func (c *ComputeGlobalMask) Reset() {}

func (c *ComputeGlobalMask) EncodeCommands(encoder gpu.Encoder, op *ir.ComputeGlobalMask, store *value.Store) error {
	output, err := store.EnsureImage(op.ResultID, maskImageProps(op.Width, op.Height))
	if err != nil {
		return err
	}
	bindGroup, err := c.rt.BindGroups.GetOrCreate(c.layout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 0, Texture: output.BaseMipView}},
	})
	if err != nil {
		return err
	}
	pass := encoder.BeginComputePass()
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, bindGroup)
	wg := uint32(8)
	pass.Dispatch(ceilDiv(op.Width, wg), ceilDiv(op.Height, wg), 1)
	pass.End()
	return nil
}

const radialGradientMaskWGSL = `
struct Params {
	centerX: f32, centerY: f32, radiusX: f32, radiusY: f32,
	feather: f32, cosT: f32, sinT: f32, _pad: f32,
}
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var outputTex: texture_storage_2d<r16float, write>;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let uv = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	let d = uv - vec2<f32>(params.centerX, params.centerY);
	let rotated = vec2<f32>(d.x * params.cosT - d.y * params.sinT, d.x * params.sinT + d.y * params.cosT);
	let norm = length(vec2<f32>(rotated.x / max(params.radiusX, 1e-6), rotated.y / max(params.radiusY, 1e-6)));
	let f = max(params.feather, 1e-6);
	let v = 1.0 - smoothstep(1.0 - f, 1.0 + f, norm);
	textureStore(outputTex, gid.xy, vec4<f32>(v, 0.0, 0.0, 0.0));
}
`

// ComputeRadialGradientMask implements the radial gradient mask
// primitive: a smoothstep falloff over a (possibly rotated) ellipse.
// It has no input image, only a uniform struct and an
// output mask texture, so it is built directly rather than via
// pointwiseOp, which assumes an input texture binding.
type ComputeRadialGradientMask struct {
	rt       *Runtime
	layout   gpu.BindGroupLayoutID
	pipeline gpu.ComputePipelineID
	ring     *bindgroup.RingBuffer
}

func NewComputeRadialGradientMask(rt *Runtime) (*ComputeRadialGradientMask, error) {
	layout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "radial_gradient_mask_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeUniformBuffer, MinBindingSize: 32},
			{Binding: 1, Type: gpu.BindingTypeStorageTexture},
		},
	})
	if err != nil {
		return nil, err
	}
	pipeline, err := rt.createComputePipeline("radial_gradient_mask", "main", radialGradientMaskWGSL, layout)
	if err != nil {
		return nil, err
	}
	return &ComputeRadialGradientMask{rt: rt, layout: layout, pipeline: pipeline, ring: rt.newUniformRing(32)}, nil
}

func (c *ComputeRadialGradientMask) Reset() { c.ring.MarkAllAvailable() }

func (c *ComputeRadialGradientMask) EncodeCommands(encoder gpu.Encoder, op *ir.ComputeRadialGradientMask, store *value.Store) error {
	output, err := store.EnsureImage(op.ResultID, maskImageProps(op.Width, op.Height))
	if err != nil {
		return err
	}
	rad := -float64(op.RotationDegrees) * math.Pi / 180.0
	cosT, sinT := math.Cos(rad), math.Sin(rad)
	uniformBuf, err := c.ring.Get()
	if err != nil {
		return err
	}
	uniform := packFloat32s(op.CenterX, op.CenterY, op.RadiusX, op.RadiusY, op.Feather, float32(cosT), float32(sinT), 0)
	if err := c.rt.Device.WriteBuffer(uniformBuf, 0, uniform); err != nil {
		return err
	}
	bindGroup, err := c.rt.BindGroups.GetOrCreate(c.layout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindBuffer, UUID: uint32(uniformBuf), GpuEntry: gpu.BindGroupEntry{Binding: 0, Buffer: uniformBuf, Size: 32}},
		{Binding: 1, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 1, Texture: output.BaseMipView}},
	})
	if err != nil {
		return err
	}
	pass := encoder.BeginComputePass()
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, bindGroup)
	wg := uint32(8)
	pass.Dispatch(ceilDiv(op.Width, wg), ceilDiv(op.Height, wg), 1)
	pass.End()
	return nil
}

const linearGradientMaskWGSL = `
struct Params { x0: f32, y0: f32, x1: f32, y1: f32 }
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var outputTex: texture_storage_2d<r16float, write>;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let uv = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	let axis = vec2<f32>(params.x1 - params.x0, params.y1 - params.y0);
	let len2 = max(dot(axis, axis), 1e-6);
	let t = clamp(dot(uv - vec2<f32>(params.x0, params.y0), axis) / len2, 0.0, 1.0);
	textureStore(outputTex, gid.xy, vec4<f32>(1.0 - smoothstep(0.0, 1.0, t), 0.0, 0.0, 0.0));
}
`

// ComputeLinearGradientMask implements the linear gradient mask
// primitive: a projection-based ramp across a line segment.
type ComputeLinearGradientMask struct {
	rt       *Runtime
	layout   gpu.BindGroupLayoutID
	pipeline gpu.ComputePipelineID
	ring     *bindgroup.RingBuffer
}

func NewComputeLinearGradientMask(rt *Runtime) (*ComputeLinearGradientMask, error) {
	layout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "linear_gradient_mask_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeUniformBuffer, MinBindingSize: 16},
			{Binding: 1, Type: gpu.BindingTypeStorageTexture},
		},
	})
	if err != nil {
		return nil, err
	}
	pipeline, err := rt.createComputePipeline("linear_gradient_mask", "main", linearGradientMaskWGSL, layout)
	if err != nil {
		return nil, err
	}
	return &ComputeLinearGradientMask{rt: rt, layout: layout, pipeline: pipeline, ring: rt.newUniformRing(16)}, nil
}

func (c *ComputeLinearGradientMask) Reset() { c.ring.MarkAllAvailable() }

func (c *ComputeLinearGradientMask) EncodeCommands(encoder gpu.Encoder, op *ir.ComputeLinearGradientMask, store *value.Store) error {
	output, err := store.EnsureImage(op.ResultID, maskImageProps(op.Width, op.Height))
	if err != nil {
		return err
	}
	uniformBuf, err := c.ring.Get()
	if err != nil {
		return err
	}
	if err := c.rt.Device.WriteBuffer(uniformBuf, 0, packFloat32s(op.X0, op.Y0, op.X1, op.Y1)); err != nil {
		return err
	}
	bindGroup, err := c.rt.BindGroups.GetOrCreate(c.layout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindBuffer, UUID: uint32(uniformBuf), GpuEntry: gpu.BindGroupEntry{Binding: 0, Buffer: uniformBuf, Size: 16}},
		{Binding: 1, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 1, Texture: output.BaseMipView}},
	})
	if err != nil {
		return err
	}
	pass := encoder.BeginComputePass()
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, bindGroup)
	wg := uint32(8)
	pass.Dispatch(ceilDiv(op.Width, wg), ceilDiv(op.Height, wg), 1)
	pass.End()
	return nil
}

const invertMaskWGSL = `
@group(0) @binding(0) var inputTex: texture_2d<f32>;
@group(0) @binding(1) var samp: sampler;
@group(0) @binding(2) var outputTex: texture_storage_2d<r16float, write>;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let uv = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	let v = textureSampleLevel(inputTex, samp, uv, 0.0).r;
	textureStore(outputTex, gid.xy, vec4<f32>(1.0 - v, 0.0, 0.0, 0.0));
}
`

// InvertMask implements 1-x over a single mask input. It has no uniform
// buffer, so it is built directly rather than via pointwiseOp, which
// assumes binding 0 is a uniform.
type InvertMask struct {
	rt       *Runtime
	layout   gpu.BindGroupLayoutID
	pipeline gpu.ComputePipelineID
	sampler  gpu.SamplerID
}

func NewInvertMask(rt *Runtime) (*InvertMask, error) {
	layout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "invert_mask_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeSampledTexture},
			{Binding: 1, Type: gpu.BindingTypeSampler},
			{Binding: 2, Type: gpu.BindingTypeStorageTexture},
		},
	})
	if err != nil {
		return nil, err
	}
	pipeline, err := rt.createComputePipeline("invert_mask", "main", invertMaskWGSL, layout)
	if err != nil {
		return nil, err
	}
	sampler, err := rt.Device.CreateSampler()
	if err != nil {
		return nil, err
	}
	return &InvertMask{rt: rt, layout: layout, pipeline: pipeline, sampler: sampler}, nil
}

func (m *InvertMask) Reset() {}

func (m *InvertMask) EncodeCommands(encoder gpu.Encoder, op *ir.InvertMask, store *value.Store) error {
	input, err := store.Image(op.Input)
	if err != nil {
		return err
	}
	output, err := store.EnsureImage(op.ResultID, input.Properties)
	if err != nil {
		return err
	}
	bindGroup, err := m.rt.BindGroups.GetOrCreate(m.layout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindTexture, UUID: input.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 0, Texture: input.View}},
		{Binding: 1, Kind: bindgroup.KindSampler, UUID: uint32(m.sampler), GpuEntry: gpu.BindGroupEntry{Binding: 1, Sampler: m.sampler}},
		{Binding: 2, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 2, Texture: output.BaseMipView}},
	})
	if err != nil {
		return err
	}
	pass := encoder.BeginComputePass()
	pass.SetPipeline(m.pipeline)
	pass.SetBindGroup(0, bindGroup)
	wg := uint32(8)
	pass.Dispatch(ceilDiv(output.Properties.Width, wg), ceilDiv(output.Properties.Height, wg), 1)
	pass.End()
	return nil
}

const combineMaskWGSLTemplate = `
@group(0) @binding(0) var aTex: texture_2d<f32>;
@group(0) @binding(1) var bTex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;
@group(0) @binding(3) var outputTex: texture_storage_2d<r16float, write>;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let uv = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	let a = textureSampleLevel(aTex, samp, uv, 0.0).r;
	let b = textureSampleLevel(bTex, samp, uv, 0.0).r;
	textureStore(outputTex, gid.xy, vec4<f32>(clamp(a COMBINE_OP b, 0.0, 1.0), 0.0, 0.0, 0.0));
}
`

// combineMaskOp is the shared shape of AddMask and SubtractMask: two mask
// textures sampled and combined elementwise, distinguished only by the
// operator baked into the compiled shader source at construction time.
type combineMaskOp struct {
	rt       *Runtime
	layout   gpu.BindGroupLayoutID
	pipeline gpu.ComputePipelineID
	sampler  gpu.SamplerID
}

func newCombineMaskOp(rt *Runtime, label, operator string) (*combineMaskOp, error) {
	source := strings.ReplaceAll(combineMaskWGSLTemplate, "COMBINE_OP", operator)
	layout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: label + "_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeSampledTexture},
			{Binding: 1, Type: gpu.BindingTypeSampledTexture},
			{Binding: 2, Type: gpu.BindingTypeSampler},
			{Binding: 3, Type: gpu.BindingTypeStorageTexture},
		},
	})
	if err != nil {
		return nil, err
	}
	pipeline, err := rt.createComputePipeline(label, "main", source, layout)
	if err != nil {
		return nil, err
	}
	sampler, err := rt.Device.CreateSampler()
	if err != nil {
		return nil, err
	}
	return &combineMaskOp{rt: rt, layout: layout, pipeline: pipeline, sampler: sampler}, nil
}

func (c *combineMaskOp) encode(encoder gpu.Encoder, store *value.Store, aID, bID, resultID ir.Id) error {
	a, err := store.Image(aID)
	if err != nil {
		return err
	}
	b, err := store.Image(bID)
	if err != nil {
		return err
	}
	output, err := store.EnsureImage(resultID, a.Properties)
	if err != nil {
		return err
	}
	bindGroup, err := c.rt.BindGroups.GetOrCreate(c.layout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindTexture, UUID: a.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 0, Texture: a.View}},
		{Binding: 1, Kind: bindgroup.KindTexture, UUID: b.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 1, Texture: b.View}},
		{Binding: 2, Kind: bindgroup.KindSampler, UUID: uint32(c.sampler), GpuEntry: gpu.BindGroupEntry{Binding: 2, Sampler: c.sampler}},
		{Binding: 3, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 3, Texture: output.BaseMipView}},
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

// AddMask implements clamp(A+B, 0, 1).
type AddMask struct{ *combineMaskOp }

func NewAddMask(rt *Runtime) (*AddMask, error) {
	c, err := newCombineMaskOp(rt, "add_mask", "+")
	if err != nil {
		return nil, err
	}
	return &AddMask{c}, nil
}

func (a *AddMask) Reset() {}

func (a *AddMask) EncodeCommands(encoder gpu.Encoder, op *ir.AddMask, store *value.Store) error {
	return a.encode(encoder, store, op.A, op.B, op.ResultID)
}

// SubtractMask implements clamp(A-B, 0, 1).
type SubtractMask struct{ *combineMaskOp }

func NewSubtractMask(rt *Runtime) (*SubtractMask, error) {
	c, err := newCombineMaskOp(rt, "subtract_mask", "-")
	if err != nil {
		return nil, err
	}
	return &SubtractMask{c}, nil
}

func (s *SubtractMask) Reset() {}

func (s *SubtractMask) EncodeCommands(encoder gpu.Encoder, op *ir.SubtractMask, store *value.Store) error {
	return s.encode(encoder, store, op.A, op.B, op.ResultID)
}
