package ops

import (
	"github.com/rasterlab/photoedit/bindgroup"
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

const maxCurvePoints = 16
const curveUniformSize = 16 + maxCurvePoints*8 // channel+count+pad, then vec2 points

const curveWGSL = `
struct Params { channel: u32, count: u32, _pad0: u32, _pad1: u32 }
struct Points { pts: array<vec2<f32>, 16> }
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var inputTex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;
@group(0) @binding(3) var outputTex: texture_storage_2d<rgba16float, write>;
@group(0) @binding(4) var<uniform> points: Points;

fn luma(c: vec3<f32>) -> f32 { return dot(c, vec3<f32>(0.2126, 0.7152, 0.0722)); }

// evalCurve performs the same piecewise Catmull-Rom evaluation as the
// CPU-side evaluateCurve below (tested there), extrapolating a phantom
// point past each end; it passes through every control point.
fn evalCurve(x: f32) -> f32 {
	var i: u32 = 0u;
	loop {
		if (i + 1u >= params.count) { break; }
		if (x <= points.pts[i + 1u].x) { break; }
		i = i + 1u;
	}
	let p1 = points.pts[i];
	let p2 = points.pts[min(i + 1u, params.count - 1u)];
	var y0 = p1.y - (p2.y - p1.y);
	if (i > 0u) { y0 = points.pts[i - 1u].y; }
	var y3 = p2.y + (p2.y - p1.y);
	if (i + 2u < params.count) { y3 = points.pts[i + 2u].y; }
	let span = max(p2.x - p1.x, 1e-6);
	let t = clamp((x - p1.x) / span, 0.0, 1.0);
	return 0.5 * (2.0 * p1.y + (p2.y - y0) * t + (2.0 * y0 - 5.0 * p1.y + 4.0 * p2.y - y3) * t * t + (-y0 + 3.0 * p1.y - 3.0 * p2.y + y3) * t * t * t);
}

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(outputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let uv = (vec2<f32>(gid.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(dims);
	let c = textureSampleLevel(inputTex, samp, uv, 0.0);
	if (params.channel == 0u) {
		let l = luma(c.rgb);
		let l2 = evalCurve(l);
		let scale = select(1.0, l2 / max(l, 1e-6), l > 1e-6);
		textureStore(outputTex, gid.xy, vec4<f32>(c.rgb * scale, c.a));
	} else {
		var rgb = c.rgb;
		if (params.channel == 1u) { rgb.r = evalCurve(rgb.r); }
		if (params.channel == 2u) { rgb.g = evalCurve(rgb.g); }
		if (params.channel == 3u) { rgb.b = evalCurve(rgb.b); }
		textureStore(outputTex, gid.xy, vec4<f32>(rgb, c.a));
	}
}
`

// Curve implements ApplyCurve for all four channel variants,
// distinguished at encode time by op.Channel rather than by four
// separate pipelines, since the shader's channel branch is cheap and the
// bind group layout is identical across all four.
type Curve struct {
	*pointwiseOp
}

func NewCurve(rt *Runtime) (*Curve, error) {
	layout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "apply_curve_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeUniformBuffer, MinBindingSize: 16},
			{Binding: 1, Type: gpu.BindingTypeSampledTexture},
			{Binding: 2, Type: gpu.BindingTypeSampler},
			{Binding: 3, Type: gpu.BindingTypeStorageTexture},
			{Binding: 4, Type: gpu.BindingTypeUniformBuffer, MinBindingSize: uint64(maxCurvePoints * 8)},
		},
	})
	if err != nil {
		return nil, err
	}
	pipeline, err := rt.createComputePipeline("apply_curve", "main", curveWGSL, layout)
	if err != nil {
		return nil, err
	}
	sampler, err := rt.Device.CreateSampler()
	if err != nil {
		return nil, err
	}
	p := &pointwiseOp{rt: rt, layout: layout, pipeline: pipeline, sampler: sampler, ring: rt.newUniformRing(uint64(maxCurvePoints * 8))}
	return &Curve{pointwiseOp: p}, nil
}

func curveBindGroupEntries(headerBuf, pointsBuf gpu.BufferID, input, output *value.Image, sampler gpu.SamplerID) []bindgroup.Entry {
	return []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindBuffer, UUID: uint32(headerBuf), GpuEntry: gpu.BindGroupEntry{Binding: 0, Buffer: headerBuf, Size: 16}},
		{Binding: 1, Kind: bindgroup.KindTexture, UUID: input.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 1, Texture: input.View}},
		{Binding: 2, Kind: bindgroup.KindSampler, UUID: uint32(sampler), GpuEntry: gpu.BindGroupEntry{Binding: 2, Sampler: sampler}},
		{Binding: 3, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 3, Texture: output.BaseMipView}},
		{Binding: 4, Kind: bindgroup.KindBuffer, UUID: uint32(pointsBuf), GpuEntry: gpu.BindGroupEntry{Binding: 4, Buffer: pointsBuf, Size: uint64(maxCurvePoints * 8)}},
	}
}

func (c *Curve) Reset() { c.reset() }

// EncodeCommands uploads the channel/count header and the control points
// to two uniform buffers and dispatches. The points buffer is separate
// from the header so its fixed 16-entry size does not force every other
// pointwise op's uniform struct to carry unused padding.
func (c *Curve) EncodeCommands(encoder gpu.Encoder, op *ir.ApplyCurve, store *value.Store) error {
	if len(op.Points) > maxCurvePoints {
		panic("ops: ApplyCurve given more than maxCurvePoints control points")
	}
	pointBytes := make([]float32, 0, maxCurvePoints*2)
	for _, pt := range op.Points {
		pointBytes = append(pointBytes, pt.X, pt.Y)
	}
	for len(pointBytes) < maxCurvePoints*2 {
		pointBytes = append(pointBytes, 1, 1) // pad with the curve's terminal point
	}

	input, err := store.Image(op.Input)
	if err != nil {
		return err
	}
	output, err := store.EnsureImage(op.ResultID, input.Properties)
	if err != nil {
		return err
	}

	headerBuf, err := c.ring.Get()
	if err != nil {
		return err
	}
	if err := c.rt.Device.WriteBuffer(headerBuf, 0, packUint32s(uint32(op.Channel), uint32(len(op.Points)), 0, 0)); err != nil {
		return err
	}
	pointsBuf, err := c.ring.Get()
	if err != nil {
		return err
	}
	if err := c.rt.Device.WriteBuffer(pointsBuf, 0, packFloat32s(pointBytes...)); err != nil {
		return err
	}

	bindGroup, err := c.rt.BindGroups.GetOrCreate(c.layout, curveBindGroupEntries(headerBuf, pointsBuf, input, output, c.sampler))
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

// evaluateCurve evaluates the tested CPU reference for a piecewise
// Catmull-Rom curve through points at x in [0,1], used by op tests (an
// identity curve is exactly [(0,0),(1,1)]).
func evaluateCurve(points []ir.CurvePoint, x float32) float32 {
	if len(points) < 2 {
		return x
	}
	if x <= points[0].X {
		return points[0].Y
	}
	if x >= points[len(points)-1].X {
		return points[len(points)-1].Y
	}
	i := 0
	for i < len(points)-2 && x > points[i+1].X {
		i++
	}
	p1, p2 := points[i], points[i+1]

	var p0, p3 ir.CurvePoint
	if i == 0 {
		p0 = ir.CurvePoint{X: p1.X - (p2.X - p1.X), Y: p1.Y - (p2.Y - p1.Y)}
	} else {
		p0 = points[i-1]
	}
	if i+2 >= len(points) {
		p3 = ir.CurvePoint{X: p2.X + (p2.X - p1.X), Y: p2.Y + (p2.Y - p1.Y)}
	} else {
		p3 = points[i+2]
	}

	span := p2.X - p1.X
	if span <= 0 {
		return p1.Y
	}
	t := (x - p1.X) / span
	t2 := t * t
	t3 := t2 * t
	return 0.5 * ((2 * p1.Y) +
		(-p0.Y+p2.Y)*t +
		(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
		(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3)
}
