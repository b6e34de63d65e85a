package ops

import (
	"github.com/rasterlab/photoedit/bindgroup"
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

// basicStatsBufferSize holds three 32-bit atomic sum counters (R, G, B),
// read back by AdjustContrast as sums-divided-by-pixel-count.
const basicStatsBufferSize = 3 * 4

// histogramBufferSize holds three channels of 256 32-bit atomic bins.
const histogramBufferSize = 3 * 256 * 4

const clearBufferWGSL = `
@group(0) @binding(0) var<storage, read_write> counters: array<atomic<u32>>;

@compute @workgroup_size(64, 1, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	if (gid.x >= arrayLength(&counters)) { return; }
	atomicStore(&counters[gid.x], 0u);
}
`

const basicStatsAccumulateWGSL = `
@group(0) @binding(0) var inputTex: texture_2d<f32>;
@group(0) @binding(1) var<storage, read_write> sums: array<atomic<u32>>; // [r,g,b], fixed-point Q16.16

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(inputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let c = textureLoad(inputTex, vec2<i32>(gid.xy), 0);
	atomicAdd(&sums[0], u32(c.r * 65536.0));
	atomicAdd(&sums[1], u32(c.g * 65536.0));
	atomicAdd(&sums[2], u32(c.b * 65536.0));
}
`

const histogramAccumulateWGSL = `
@group(0) @binding(0) var inputTex: texture_2d<f32>;
@group(0) @binding(1) var<storage, read_write> bins: array<atomic<u32>>; // 3x256, channel-major

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let dims = textureDimensions(inputTex);
	if (gid.x >= dims.x || gid.y >= dims.y) { return; }
	let c = textureLoad(inputTex, vec2<i32>(gid.xy), 0);
	let r = u32(clamp(c.r, 0.0, 1.0) * 255.0);
	let g = u32(clamp(c.g, 0.0, 1.0) * 255.0);
	let b = u32(clamp(c.b, 0.0, 1.0) * 255.0);
	atomicAdd(&bins[0u * 256u + r], 1u);
	atomicAdd(&bins[1u * 256u + g], 1u);
	atomicAdd(&bins[2u * 256u + b], 1u);
}
`

// statAccumulator shares the clear+accumulate two-dispatch shape used by
// both ComputeBasicStatistics and ComputeHistogram: a clear dispatch of
// 64-wide workgroups zeroes the atomic counters, then a tile-wise dispatch
// accumulates over the source image.
type statAccumulator struct {
	rt                 *Runtime
	clearLayout        gpu.BindGroupLayoutID
	clearPipeline      gpu.ComputePipelineID
	accumulateLayout   gpu.BindGroupLayoutID
	accumulatePipeline gpu.ComputePipelineID
	bufferSize         uint64
}

func newStatAccumulator(rt *Runtime, label, accumulateWGSL string, bufferSize uint64) (*statAccumulator, error) {
	clearLayout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label:   label + "_clear_layout",
		Entries: []gpu.BindGroupLayoutEntry{{Binding: 0, Type: gpu.BindingTypeStorageBuffer, MinBindingSize: bufferSize}},
	})
	if err != nil {
		return nil, err
	}
	clearPipeline, err := rt.createComputePipeline(label+"_clear", "main", clearBufferWGSL, clearLayout)
	if err != nil {
		return nil, err
	}
	accumulateLayout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: label + "_accumulate_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeSampledTexture},
			{Binding: 1, Type: gpu.BindingTypeStorageBuffer, MinBindingSize: bufferSize},
		},
	})
	if err != nil {
		return nil, err
	}
	accumulatePipeline, err := rt.createComputePipeline(label+"_accumulate", "main", accumulateWGSL, accumulateLayout)
	if err != nil {
		return nil, err
	}
	return &statAccumulator{
		rt: rt, clearLayout: clearLayout, clearPipeline: clearPipeline,
		accumulateLayout: accumulateLayout, accumulatePipeline: accumulatePipeline, bufferSize: bufferSize,
	}, nil
}

func (s *statAccumulator) encode(encoder gpu.Encoder, store *value.Store, inputID, resultID ir.Id) (*value.Buffer, *value.Image, error) {
	input, err := store.Image(inputID)
	if err != nil {
		return nil, nil, err
	}
	buf, err := store.EnsureBuffer(resultID, value.BufferProperties{Size: s.bufferSize})
	if err != nil {
		return nil, nil, err
	}

	clearBindGroup, err := s.rt.BindGroups.GetOrCreate(s.clearLayout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindBuffer, UUID: uint32(buf.Handle), GpuEntry: gpu.BindGroupEntry{Binding: 0, Buffer: buf.Handle, Size: s.bufferSize}},
	})
	if err != nil {
		return nil, nil, err
	}
	clearPass := encoder.BeginComputePass()
	clearPass.SetPipeline(s.clearPipeline)
	clearPass.SetBindGroup(0, clearBindGroup)
	clearPass.Dispatch(ceilDiv(uint32(s.bufferSize/4), 64), 1, 1)
	clearPass.End()

	accumulateBindGroup, err := s.rt.BindGroups.GetOrCreate(s.accumulateLayout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindTexture, UUID: input.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 0, Texture: input.View}},
		{Binding: 1, Kind: bindgroup.KindBuffer, UUID: uint32(buf.Handle), GpuEntry: gpu.BindGroupEntry{Binding: 1, Buffer: buf.Handle, Size: s.bufferSize}},
	})
	if err != nil {
		return nil, nil, err
	}
	wg := uint32(8)
	accumulatePass := encoder.BeginComputePass()
	accumulatePass.SetPipeline(s.accumulatePipeline)
	accumulatePass.SetBindGroup(0, accumulateBindGroup)
	accumulatePass.Dispatch(ceilDiv(input.Properties.Width, wg), ceilDiv(input.Properties.Height, wg), 1)
	accumulatePass.End()

	return buf, input, nil
}

// ComputeBasicStatistics implements per-channel sum accumulation , read by AdjustContrast as mean = sum / (width*height) in Q16.16
// fixed point.
type ComputeBasicStatistics struct{ *statAccumulator }

func NewComputeBasicStatistics(rt *Runtime) (*ComputeBasicStatistics, error) {
	s, err := newStatAccumulator(rt, "basic_stats", basicStatsAccumulateWGSL, basicStatsBufferSize)
	if err != nil {
		return nil, err
	}
	return &ComputeBasicStatistics{s}, nil
}

func (c *ComputeBasicStatistics) Reset() {}

func (c *ComputeBasicStatistics) EncodeCommands(encoder gpu.Encoder, op *ir.ComputeBasicStatistics, store *value.Store) error {
	_, _, err := c.encode(encoder, store, op.Input, op.ResultID)
	return err
}

// ComputeHistogram implements per-channel 256-bin histogram accumulation.
type ComputeHistogram struct{ *statAccumulator }

func NewComputeHistogram(rt *Runtime) (*ComputeHistogram, error) {
	s, err := newStatAccumulator(rt, "histogram", histogramAccumulateWGSL, histogramBufferSize)
	if err != nil {
		return nil, err
	}
	return &ComputeHistogram{s}, nil
}

func (c *ComputeHistogram) Reset() {}

func (c *ComputeHistogram) EncodeCommands(encoder gpu.Encoder, op *ir.ComputeHistogram, store *value.Store) error {
	_, _, err := c.encode(encoder, store, op.Input, op.ResultID)
	return err
}

// CollectDataForEditor marks the histogram for host readback; basic-stats
// buffers are not read back.
// It is the module's sole authoritative readback op:
// it does no GPU work of its own at encode time: the bind-group/device
// abstraction here has no buffer-to-buffer copy command, so the actual
// Device.ReadBuffer call against the histogram's storage buffer is issued
// by the engine after Submit, once the GPU signals completion. EncodeCommands records which buffer each pending result maps
// to so the engine can find it.
type CollectDataForEditor struct {
	rt      *Runtime
	Pending map[ir.Id]gpu.BufferID
}

func NewCollectDataForEditor(rt *Runtime) (*CollectDataForEditor, error) {
	return &CollectDataForEditor{rt: rt, Pending: make(map[ir.Id]gpu.BufferID)}, nil
}

func (c *CollectDataForEditor) Reset() { c.Pending = make(map[ir.Id]gpu.BufferID) }

func (c *CollectDataForEditor) EncodeCommands(encoder gpu.Encoder, op *ir.CollectDataForEditor, store *value.Store) error {
	histogram, err := store.Buffer(op.Histogram)
	if err != nil {
		return err
	}
	c.Pending[op.ResultID] = histogram.Handle
	return nil
}
