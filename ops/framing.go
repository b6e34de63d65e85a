package ops

import (
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

const framingWGSL = `
struct Params { srcW: f32, srcH: f32, dstW: f32, dstH: f32 }
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var inputTex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;
@group(0) @binding(3) var outputTex: texture_storage_2d<rgba16float, write>;

// Crop-to-fit (CSS object-fit: cover equivalent): scale the input so it
// covers the output box entirely, then sample the centered crop. Pixels
// are always fully covered; Framing never produces letterbox bars.
@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let srcAspect = params.srcW / params.srcH;
	let dstAspect = params.dstW / params.dstH;
	var scale = vec2<f32>(1.0, 1.0);
	if (srcAspect > dstAspect) {
		scale = vec2<f32>(dstAspect / srcAspect, 1.0);
	} else {
		scale = vec2<f32>(1.0, srcAspect / dstAspect);
	}
	let outUV = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	let centered = (outUV - vec2<f32>(0.5, 0.5)) * scale + vec2<f32>(0.5, 0.5);
	let c = textureSampleLevel(inputTex, samp, centered, 0.0);
	textureStore(outputTex, gid.xy, c);
}
`

// Framing implements the Framing IR op: crop-to-fit Input to exactly
// Width x Height, unlike Resize which scales the whole source to
// Width x Height without cropping.
type Framing struct{ *pointwiseOp }

func NewFraming(rt *Runtime) (*Framing, error) {
	p, err := newPointwiseOp(rt, "framing", "main", framingWGSL, 16)
	if err != nil {
		return nil, err
	}
	return &Framing{p}, nil
}

func (f *Framing) Reset() { f.reset() }

func (f *Framing) EncodeCommands(encoder gpu.Encoder, op *ir.Framing, store *value.Store) error {
	input, err := store.Image(op.Input)
	if err != nil {
		return err
	}
	outProps := value.ImageProperties{
		Width: op.Width, Height: op.Height,
		Format: input.Properties.Format, ColorSpace: input.Properties.ColorSpace, MipLevelCount: 1,
	}
	uniform := packFloat32s(float32(input.Properties.Width), float32(input.Properties.Height), float32(op.Width), float32(op.Height))
	_, err = f.encode(encoder, store, op.Input, op.ResultID, uniform, &outProps)
	return err
}
