package ops

import (
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

const exposureWGSL = `
struct Params { stops: f32, _pad0: f32, _pad1: f32, _pad2: f32 }
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var inputTex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;
@group(0) @binding(3) var outputTex: texture_storage_2d<rgba16float, write>;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let uv = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	let c = textureSampleLevel(inputTex, samp, uv, 0.0);
	let scale = exp2(params.stops);
	textureStore(outputTex, gid.xy, vec4<f32>(c.rgb * scale, c.a));
}
`

// Exposure implements AdjustExposure: linear multiply by
// 2^exposure in linear RGB.
type Exposure struct{ *pointwiseOp }

func NewExposure(rt *Runtime) (*Exposure, error) {
	p, err := newPointwiseOp(rt, "adjust_exposure", "main", exposureWGSL, 16)
	if err != nil {
		return nil, err
	}
	return &Exposure{p}, nil
}

func (e *Exposure) Reset() { e.reset() }

func (e *Exposure) EncodeCommands(encoder gpu.Encoder, op *ir.AdjustExposure, store *value.Store) error {
	uniform := packFloat32s(op.Stops, 0, 0, 0)
	_, err := e.encode(encoder, store, op.Input, op.ResultID, uniform, nil)
	return err
}
