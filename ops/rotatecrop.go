package ops

import (
	"github.com/rasterlab/photoedit/bindgroup"
	"github.com/rasterlab/photoedit/geom"
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

const rotateCropWGSL = `
struct Params { centerX: f32, centerY: f32, cropW: f32, cropH: f32, cosT: f32, sinT: f32, _pad0: f32, _pad1: f32 }
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var inputTex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;
@group(0) @binding(3) var outputTex: texture_storage_2d<rgba16float, write>;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	// Output-space normalized coordinate, centered.
	let local = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims) - vec2<f32>(0.5, 0.5);
	let scaled = local * vec2<f32>(params.cropW, params.cropH);
	// Rotate the sample offset about the crop center by the inverse
	// rotation, then sample the unrotated input.
	let rotated = vec2<f32>(
		scaled.x * params.cosT - scaled.y * params.sinT,
		scaled.x * params.sinT + scaled.y * params.cosT,
	);
	let uv = vec2<f32>(params.centerX, params.centerY) + rotated;
	if (uv.x < 0.0 || uv.x > 1.0 || uv.y < 0.0 || uv.y > 1.0) {
		textureStore(outputTex, gid.xy, vec4<f32>(0.0, 0.0, 0.0, 0.0));
		return;
	}
	let c = textureSampleLevel(inputTex, samp, uv, 0.0);
	textureStore(outputTex, gid.xy, c);
}
`

// RotateAndCropOp implements the RotateAndCrop IR op (named with an Op
// suffix to avoid colliding with ir.RotateAndCrop in call sites): samples
// Input with a rotation matrix about the crop center, outputting a
// texture sized to the cropped rectangle. The
// rotation matrix itself is built with geom.Matrix, even though only its
// cos/sin terms are needed here, matching how the compiler's crop-shrink
// step (geom.ShrinkCropForRotation) already reasons about this same
// geometry.
type RotateAndCropOp struct{ *pointwiseOp }

func NewRotateAndCrop(rt *Runtime) (*RotateAndCropOp, error) {
	p, err := newPointwiseOp(rt, "rotate_and_crop", "main", rotateCropWGSL, 32)
	if err != nil {
		return nil, err
	}
	return &RotateAndCropOp{p}, nil
}

func (r *RotateAndCropOp) Reset() { r.reset() }

func (r *RotateAndCropOp) EncodeCommands(encoder gpu.Encoder, op *ir.RotateAndCrop, store *value.Store) error {
	input, err := store.Image(op.Input)
	if err != nil {
		return err
	}

	rot := geom.Rotate(op.RotationDegrees * 3.14159265 / 180.0)
	longerEdge := float32(input.Properties.Width)
	if input.Properties.Height > input.Properties.Width {
		longerEdge = float32(input.Properties.Height)
	}
	outWidth := uint32(op.Width * longerEdge)
	outHeight := uint32(op.Height * longerEdge)
	if outWidth == 0 {
		outWidth = 1
	}
	if outHeight == 0 {
		outHeight = 1
	}

	outProps := value.ImageProperties{
		Width: outWidth, Height: outHeight,
		Format: input.Properties.Format, ColorSpace: input.Properties.ColorSpace, MipLevelCount: 1,
	}
	output, err := store.EnsureImage(op.ResultID, outProps)
	if err != nil {
		return err
	}

	uniform := packFloat32s(op.CenterX, op.CenterY, op.Width, op.Height, float32(rot.A), float32(rot.B), 0, 0)
	uniformBuf, err := r.ring.Get()
	if err != nil {
		return err
	}
	if err := r.rt.Device.WriteBuffer(uniformBuf, 0, uniform); err != nil {
		return err
	}

	bindGroup, err := r.rt.BindGroups.GetOrCreate(r.layout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindBuffer, UUID: uint32(uniformBuf), GpuEntry: gpu.BindGroupEntry{Binding: 0, Buffer: uniformBuf, Size: 32}},
		{Binding: 1, Kind: bindgroup.KindTexture, UUID: input.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 1, Texture: input.View}},
		{Binding: 2, Kind: bindgroup.KindSampler, UUID: uint32(r.sampler), GpuEntry: gpu.BindGroupEntry{Binding: 2, Sampler: r.sampler}},
		{Binding: 3, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 3, Texture: output.BaseMipView}},
	})
	if err != nil {
		return err
	}

	pass := encoder.BeginComputePass()
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, bindGroup)
	wg := uint32(8)
	pass.Dispatch(ceilDiv(outWidth, wg), ceilDiv(outHeight, wg), 1)
	pass.End()
	return nil
}
