package ops

import (
	"fmt"

	"github.com/rasterlab/photoedit/bindgroup"
	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

// pointwiseOp is the shared pipeline/bind-group/dispatch plumbing for any
// op kind whose shape is "one input image, one small uniform struct, one
// output image with the input's properties": AdjustExposure,
// AdjustHighlightsAndShadows, AdjustTemperatureAndTint, AdjustVibrance,
// AdjustSaturation, ApplyCurve, ColorMix, ApplyVignette, RotateAndCrop
// and Framing all embed one. ApplyCurve adds a fifth binding for its
// control points; AdjustContrast, with its extra stats binding, does not
// use pointwiseOp.
//
// Bind group layout: binding 0 = uniform params, binding 1 = input
// texture, binding 2 = sampler, binding 3 = output storage texture.
type pointwiseOp struct {
	rt       *Runtime
	layout   gpu.BindGroupLayoutID
	pipeline gpu.ComputePipelineID
	sampler  gpu.SamplerID
	ring     *bindgroup.RingBuffer
}

func newPointwiseOp(rt *Runtime, label, entryPoint, wgsl string, uniformSize uint64) (*pointwiseOp, error) {
	layout, err := rt.Device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: label + "_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeUniformBuffer, MinBindingSize: uniformSize},
			{Binding: 1, Type: gpu.BindingTypeSampledTexture},
			{Binding: 2, Type: gpu.BindingTypeSampler},
			{Binding: 3, Type: gpu.BindingTypeStorageTexture},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ops: %s bind group layout: %w", label, err)
	}
	pipeline, err := rt.createComputePipeline(label, entryPoint, wgsl, layout)
	if err != nil {
		return nil, fmt.Errorf("ops: %s pipeline: %w", label, err)
	}
	sampler, err := rt.Device.CreateSampler()
	if err != nil {
		return nil, fmt.Errorf("ops: %s sampler: %w", label, err)
	}
	return &pointwiseOp{
		rt:       rt,
		layout:   layout,
		pipeline: pipeline,
		sampler:  sampler,
		ring:     rt.newUniformRing(uniformSize),
	}, nil
}

// reset returns every ring-buffer slot to Available at the start of a new
// module execution.
func (p *pointwiseOp) reset() { p.ring.MarkAllAvailable() }

// encode allocates the output image (same properties as the input unless
// outProps is non-nil), uploads uniformBytes to a fresh ring-buffer slot,
// gets-or-creates the bind group, and dispatches one full-image compute
// pass.
func (p *pointwiseOp) encode(
	encoder gpu.Encoder,
	store *value.Store,
	inputID, resultID ir.Id,
	uniformBytes []byte,
	outProps *value.ImageProperties,
) (*value.Image, error) {
	input, err := store.Image(inputID)
	if err != nil {
		return nil, err
	}
	props := input.Properties
	if outProps != nil {
		props = *outProps
	}
	output, err := store.EnsureImage(resultID, props)
	if err != nil {
		return nil, err
	}

	uniformBuf, err := p.ring.Get()
	if err != nil {
		return nil, err
	}
	if err := p.rt.Device.WriteBuffer(uniformBuf, 0, uniformBytes); err != nil {
		return nil, err
	}

	bindGroup, err := p.rt.BindGroups.GetOrCreate(p.layout, []bindgroup.Entry{
		{Binding: 0, Kind: bindgroup.KindBuffer, UUID: uint32(uniformBuf), GpuEntry: gpu.BindGroupEntry{Binding: 0, Buffer: uniformBuf, Size: uint64(len(uniformBytes))}},
		{Binding: 1, Kind: bindgroup.KindTexture, UUID: input.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 1, Texture: input.View}},
		{Binding: 2, Kind: bindgroup.KindSampler, UUID: uint32(p.sampler), GpuEntry: gpu.BindGroupEntry{Binding: 2, Sampler: p.sampler}},
		{Binding: 3, Kind: bindgroup.KindTexture, UUID: output.UUID, GpuEntry: gpu.BindGroupEntry{Binding: 3, Texture: output.BaseMipView}},
	})
	if err != nil {
		return nil, err
	}

	pass := encoder.BeginComputePass()
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, bindGroup)
	x, y, z := p.rt.dispatchCounts(props.Width, props.Height)
	pass.Dispatch(x, y, z)
	pass.End()

	return output, nil
}
