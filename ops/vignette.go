package ops

import (
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

const vignetteWGSL = `
struct Params { amount: f32, midpoint: f32, roundness: f32, feather: f32 }
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
	let centered = (uv - vec2<f32>(0.5, 0.5)) * mix(vec2<f32>(2.0, 2.0), vec2<f32>(1.0, 1.0), params.roundness);
	let d = length(centered);
	let edge0 = params.midpoint;
	let edge1 = params.midpoint + max(params.feather, 1e-4);
	let falloff = smoothstep(edge0, edge1, d);
	let gain = 1.0 + params.amount * falloff;
	textureStore(outputTex, gid.xy, vec4<f32>(c.rgb * gain, c.a));
}
`

// Vignette implements ApplyVignette: radial falloff modulating exposure.
type Vignette struct{ *pointwiseOp }

func NewVignette(rt *Runtime) (*Vignette, error) {
	p, err := newPointwiseOp(rt, "apply_vignette", "main", vignetteWGSL, 16)
	if err != nil {
		return nil, err
	}
	return &Vignette{p}, nil
}

func (v *Vignette) Reset() { v.reset() }

func (v *Vignette) EncodeCommands(encoder gpu.Encoder, op *ir.ApplyVignette, store *value.Store) error {
	uniform := packFloat32s(op.Amount, op.Midpoint, op.Roundness, op.Feather)
	_, err := v.encode(encoder, store, op.Input, op.ResultID, uniform, nil)
	return err
}
