package ops

import (
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

const highlightsShadowsWGSL = `
struct Params { highlights: f32, shadows: f32, _pad0: f32, _pad1: f32 }
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var inputTex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;
@group(0) @binding(3) var outputTex: texture_storage_2d<rgba16float, write>;

fn luma(c: vec3<f32>) -> f32 { return dot(c, vec3<f32>(0.2126, 0.7152, 0.0722)); }

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let uv = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	let c = textureSampleLevel(inputTex, samp, uv, 0.0);
	let l = luma(c.rgb);
	// S-curve weighted towards shadows below the midpoint, highlights above.
	let shadowWeight = 1.0 - smoothstep(0.0, 0.5, l);
	let highlightWeight = smoothstep(0.5, 1.0, l);
	let lift = params.shadows * shadowWeight * 0.5;
	let pull = params.highlights * highlightWeight * 0.5;
	textureStore(outputTex, gid.xy, vec4<f32>(c.rgb + lift - pull, c.a));
}
`

// HighlightsAndShadows implements AdjustHighlightsAndShadows: a single
// shader packing both parameters.
type HighlightsAndShadows struct{ *pointwiseOp }

func NewHighlightsAndShadows(rt *Runtime) (*HighlightsAndShadows, error) {
	p, err := newPointwiseOp(rt, "adjust_highlights_shadows", "main", highlightsShadowsWGSL, 16)
	if err != nil {
		return nil, err
	}
	return &HighlightsAndShadows{p}, nil
}

func (h *HighlightsAndShadows) Reset() { h.reset() }

func (h *HighlightsAndShadows) EncodeCommands(encoder gpu.Encoder, op *ir.AdjustHighlightsAndShadows, store *value.Store) error {
	uniform := packFloat32s(op.Highlights, op.Shadows, 0, 0)
	_, err := h.encode(encoder, store, op.Input, op.ResultID, uniform, nil)
	return err
}
