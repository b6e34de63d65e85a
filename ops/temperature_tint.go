package ops

import (
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

const temperatureTintWGSL = `
struct Params { temperature: f32, tint: f32, _pad0: f32, _pad1: f32 }
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
	// Bradford-like chromatic adaptation approximated as independent
	// red/blue gain (temperature) and green/magenta gain (tint).
	let warmGain = vec3<f32>(1.0 + params.temperature * 0.3, 1.0, 1.0 - params.temperature * 0.3);
	let tintGain = vec3<f32>(1.0 + params.tint * 0.15, 1.0 - params.tint * 0.15, 1.0 + params.tint * 0.15);
	textureStore(outputTex, gid.xy, vec4<f32>(c.rgb * warmGain * tintGain, c.a));
}
`

// TemperatureAndTint implements AdjustTemperatureAndTint.
type TemperatureAndTint struct{ *pointwiseOp }

func NewTemperatureAndTint(rt *Runtime) (*TemperatureAndTint, error) {
	p, err := newPointwiseOp(rt, "adjust_temperature_tint", "main", temperatureTintWGSL, 16)
	if err != nil {
		return nil, err
	}
	return &TemperatureAndTint{p}, nil
}

func (t *TemperatureAndTint) Reset() { t.reset() }

func (t *TemperatureAndTint) EncodeCommands(encoder gpu.Encoder, op *ir.AdjustTemperatureAndTint, store *value.Store) error {
	uniform := packFloat32s(op.Temperature, op.Tint, 0, 0)
	_, err := t.encode(encoder, store, op.Input, op.ResultID, uniform, nil)
	return err
}
