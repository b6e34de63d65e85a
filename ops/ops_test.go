package ops

import (
	"testing"

	"github.com/rasterlab/photoedit/gpu"
	fakegpu "github.com/rasterlab/photoedit/gpu/fake"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

func newTestRuntime(t *testing.T) (*Runtime, *value.Store) {
	t.Helper()
	device, err := fakegpu.New()
	if err != nil {
		t.Fatalf("fake.New: %v", err)
	}
	rt := NewRuntime(device)
	store := value.New(device)
	return rt, store
}

func seedInputImage(t *testing.T, store *value.Store, id ir.Id, w, h uint32) *value.Image {
	t.Helper()
	img, err := store.EnsureImage(id, value.ImageProperties{
		Width: w, Height: h, Format: gpu.FormatRgba16Float, ColorSpace: gpu.ColorSpaceLinearRGB, MipLevelCount: 1,
	})
	if err != nil {
		t.Fatalf("EnsureImage: %v", err)
	}
	return img
}

func encodeAndFinish(t *testing.T, device gpu.Device, fn func(gpu.Encoder) error) {
	t.Helper()
	enc, err := device.CreateCommandEncoder("test")
	if err != nil {
		t.Fatalf("CreateCommandEncoder: %v", err)
	}
	if err := fn(enc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := enc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestExposureEncodeCommandsProducesOutputWithInputProperties(t *testing.T) {
	rt, store := newTestRuntime(t)
	const inputID, resultID ir.Id = 1, 2
	input := seedInputImage(t, store, inputID, 64, 32)

	impl, err := NewExposure(rt)
	if err != nil {
		t.Fatalf("NewExposure: %v", err)
	}
	op := &ir.AdjustExposure{OpBase: ir.OpBase{ResultID: resultID}, Input: inputID, Stops: 1.5}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return impl.EncodeCommands(enc, op, store)
	})

	output, err := store.Image(resultID)
	if err != nil {
		t.Fatalf("Image(resultID): %v", err)
	}
	if output.Properties != input.Properties {
		t.Fatalf("output properties %+v != input properties %+v", output.Properties, input.Properties)
	}
}

func TestContrastEncodesWithBasicStats(t *testing.T) {
	rt, store := newTestRuntime(t)
	const inputID, statsID, resultID ir.Id = 1, 2, 3
	seedInputImage(t, store, inputID, 16, 16)
	if _, err := store.EnsureBuffer(statsID, value.BufferProperties{Size: basicStatsBufferSize}); err != nil {
		t.Fatalf("EnsureBuffer: %v", err)
	}

	impl, err := NewContrast(rt)
	if err != nil {
		t.Fatalf("NewContrast: %v", err)
	}
	op := &ir.AdjustContrast{OpBase: ir.OpBase{ResultID: resultID}, Input: inputID, BasicStats: statsID, Amount: 0.5}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return impl.EncodeCommands(enc, op, store)
	})

	if _, err := store.Image(resultID); err != nil {
		t.Fatalf("Image(resultID): %v", err)
	}
}

func TestCurveIdentityEvaluatesToInput(t *testing.T) {
	points := []ir.CurvePoint{{X: 0, Y: 0}, {X: 1, Y: 1}}
	for _, x := range []float32{0, 0.25, 0.5, 0.75, 1} {
		got := evaluateCurve(points, x)
		if diff := got - x; diff > 1e-4 || diff < -1e-4 {
			t.Errorf("evaluateCurve(identity, %v) = %v, want %v", x, got, x)
		}
	}
}

func TestCurveRejectsTooManyPoints(t *testing.T) {
	rt, store := newTestRuntime(t)
	const inputID, resultID ir.Id = 1, 2
	seedInputImage(t, store, inputID, 8, 8)

	impl, err := NewCurve(rt)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}
	points := make([]ir.CurvePoint, maxCurvePoints+1)
	op := &ir.ApplyCurve{OpBase: ir.OpBase{ResultID: resultID}, Input: inputID, Channel: ir.CurveLuma, Points: points}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for too many curve points")
		}
	}()
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return impl.EncodeCommands(enc, op, store)
	})
}

func TestDehazeRoundTripProducesOutputImage(t *testing.T) {
	rt, store := newTestRuntime(t)
	const inputID, auxID, resultID ir.Id = 1, 2, 3
	seedInputImage(t, store, inputID, 16, 16)

	prepare, err := NewDehazePrepare(rt)
	if err != nil {
		t.Fatalf("NewDehazePrepare: %v", err)
	}
	prepareOp := &ir.DehazePrepare{OpBase: ir.OpBase{ResultID: auxID}, Input: inputID}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return prepare.EncodeCommands(enc, prepareOp, store)
	})

	apply, err := NewApplyDehaze(rt)
	if err != nil {
		t.Fatalf("NewApplyDehaze: %v", err)
	}
	applyOp := &ir.ApplyDehaze{OpBase: ir.OpBase{ResultID: resultID}, Input: inputID, Aux: auxID, Strength: 0.8}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return apply.EncodeCommands(enc, applyOp, store)
	})

	if _, err := store.Image(resultID); err != nil {
		t.Fatalf("Image(resultID): %v", err)
	}
}

func TestRotateAndCropZeroRotationKeepsAxisAlignedCrop(t *testing.T) {
	rt, store := newTestRuntime(t)
	const inputID, resultID ir.Id = 1, 2
	seedInputImage(t, store, inputID, 100, 100)

	impl, err := NewRotateAndCrop(rt)
	if err != nil {
		t.Fatalf("NewRotateAndCrop: %v", err)
	}
	op := &ir.RotateAndCrop{
		OpBase: ir.OpBase{ResultID: resultID}, Input: inputID,
		CenterX: 0.5, CenterY: 0.5, Width: 0.5, Height: 0.5, RotationDegrees: 0,
	}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return impl.EncodeCommands(enc, op, store)
	})

	output, err := store.Image(resultID)
	if err != nil {
		t.Fatalf("Image(resultID): %v", err)
	}
	if output.Properties.Width == 0 || output.Properties.Height == 0 {
		t.Fatalf("unexpected output dimensions %+v", output.Properties)
	}
}

func TestResizeSmallerThanInput(t *testing.T) {
	rt, store := newTestRuntime(t)
	const inputID, resultID ir.Id = 1, 2
	seedInputImage(t, store, inputID, 256, 128)

	impl, err := NewResize(rt)
	if err != nil {
		t.Fatalf("NewResize: %v", err)
	}
	op := &ir.Resize{OpBase: ir.OpBase{ResultID: resultID}, Input: inputID, Width: 64, Height: 32}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return impl.EncodeCommands(enc, op, store)
	})

	output, err := store.Image(resultID)
	if err != nil {
		t.Fatalf("Image(resultID): %v", err)
	}
	if output.Properties.Width != 64 || output.Properties.Height != 32 {
		t.Fatalf("output dims = %dx%d, want 64x32", output.Properties.Width, output.Properties.Height)
	}
}

func TestFramingProducesExactTargetDimensions(t *testing.T) {
	rt, store := newTestRuntime(t)
	const inputID, resultID ir.Id = 1, 2
	seedInputImage(t, store, inputID, 200, 100)

	impl, err := NewFraming(rt)
	if err != nil {
		t.Fatalf("NewFraming: %v", err)
	}
	op := &ir.Framing{OpBase: ir.OpBase{ResultID: resultID}, Input: inputID, Width: 50, Height: 50}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return impl.EncodeCommands(enc, op, store)
	})

	output, err := store.Image(resultID)
	if err != nil {
		t.Fatalf("Image(resultID): %v", err)
	}
	if output.Properties.Width != 50 || output.Properties.Height != 50 {
		t.Fatalf("output dims = %dx%d, want 50x50", output.Properties.Width, output.Properties.Height)
	}
}

func TestComputeGlobalMaskProducesR16FloatMask(t *testing.T) {
	rt, store := newTestRuntime(t)
	const resultID ir.Id = 1

	impl, err := NewComputeGlobalMask(rt)
	if err != nil {
		t.Fatalf("NewComputeGlobalMask: %v", err)
	}
	op := &ir.ComputeGlobalMask{OpBase: ir.OpBase{ResultID: resultID}, Width: 32, Height: 32}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return impl.EncodeCommands(enc, op, store)
	})

	output, err := store.Image(resultID)
	if err != nil {
		t.Fatalf("Image(resultID): %v", err)
	}
	if output.Properties.Format != gpu.FormatR16Float {
		t.Fatalf("format = %v, want R16Float", output.Properties.Format)
	}
}

func TestMaskCombinatorsProduceSameShapedOutput(t *testing.T) {
	rt, store := newTestRuntime(t)
	const aID, bID, invID, addID, subID ir.Id = 1, 2, 3, 4, 5
	seedMask := func(id ir.Id) {
		if _, err := store.EnsureImage(id, maskImageProps(8, 8)); err != nil {
			t.Fatalf("EnsureImage: %v", err)
		}
	}
	seedMask(aID)
	seedMask(bID)

	invert, err := NewInvertMask(rt)
	if err != nil {
		t.Fatalf("NewInvertMask: %v", err)
	}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return invert.EncodeCommands(enc, &ir.InvertMask{OpBase: ir.OpBase{ResultID: invID}, Input: aID}, store)
	})

	add, err := NewAddMask(rt)
	if err != nil {
		t.Fatalf("NewAddMask: %v", err)
	}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return add.EncodeCommands(enc, &ir.AddMask{OpBase: ir.OpBase{ResultID: addID}, A: aID, B: bID}, store)
	})

	subtract, err := NewSubtractMask(rt)
	if err != nil {
		t.Fatalf("NewSubtractMask: %v", err)
	}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return subtract.EncodeCommands(enc, &ir.SubtractMask{OpBase: ir.OpBase{ResultID: subID}, A: aID, B: bID}, store)
	})

	for _, id := range []ir.Id{invID, addID, subID} {
		if _, err := store.Image(id); err != nil {
			t.Fatalf("Image(%v): %v", id, err)
		}
	}
}

func TestApplyMaskedEditsBlendsThreeInputs(t *testing.T) {
	rt, store := newTestRuntime(t)
	const baseID, adjustedID, maskID, resultID ir.Id = 1, 2, 3, 4
	seedInputImage(t, store, baseID, 16, 16)
	seedInputImage(t, store, adjustedID, 16, 16)
	if _, err := store.EnsureImage(maskID, maskImageProps(16, 16)); err != nil {
		t.Fatalf("EnsureImage(mask): %v", err)
	}

	impl, err := NewApplyMaskedEdits(rt)
	if err != nil {
		t.Fatalf("NewApplyMaskedEdits: %v", err)
	}
	op := &ir.ApplyMaskedEdits{OpBase: ir.OpBase{ResultID: resultID}, Base: baseID, Adjusted: adjustedID, Mask: maskID}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return impl.EncodeCommands(enc, op, store)
	})

	if _, err := store.Image(resultID); err != nil {
		t.Fatalf("Image(resultID): %v", err)
	}
}

func TestComputeBasicStatisticsAndHistogramProduceBuffers(t *testing.T) {
	rt, store := newTestRuntime(t)
	const inputID, statsID, histID, collectID ir.Id = 1, 2, 3, 4
	seedInputImage(t, store, inputID, 16, 16)

	stats, err := NewComputeBasicStatistics(rt)
	if err != nil {
		t.Fatalf("NewComputeBasicStatistics: %v", err)
	}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return stats.EncodeCommands(enc, &ir.ComputeBasicStatistics{OpBase: ir.OpBase{ResultID: statsID}, Input: inputID}, store)
	})
	if buf, err := store.Buffer(statsID); err != nil || buf.Properties.Size != basicStatsBufferSize {
		t.Fatalf("Buffer(statsID) = %+v, %v", buf, err)
	}

	hist, err := NewComputeHistogram(rt)
	if err != nil {
		t.Fatalf("NewComputeHistogram: %v", err)
	}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return hist.EncodeCommands(enc, &ir.ComputeHistogram{OpBase: ir.OpBase{ResultID: histID}, Input: inputID}, store)
	})
	if buf, err := store.Buffer(histID); err != nil || buf.Properties.Size != histogramBufferSize {
		t.Fatalf("Buffer(histID) = %+v, %v", buf, err)
	}

	collect, err := NewCollectDataForEditor(rt)
	if err != nil {
		t.Fatalf("NewCollectDataForEditor: %v", err)
	}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return collect.EncodeCommands(enc, &ir.CollectDataForEditor{OpBase: ir.OpBase{ResultID: collectID}, Input: inputID, Histogram: histID}, store)
	})
	if _, ok := collect.Pending[collectID]; !ok {
		t.Fatal("CollectDataForEditor did not record a pending readback for its result id")
	}
}

func TestOpImplCollectionDispatchesAndResets(t *testing.T) {
	rt, store := newTestRuntime(t)
	const inputID, resultID ir.Id = 1, 2
	seedInputImage(t, store, inputID, 8, 8)

	coll := NewOpImplCollection(rt)
	op := &ir.AdjustExposure{OpBase: ir.OpBase{ResultID: resultID}, Input: inputID, Stops: 0.5}
	encodeAndFinish(t, rt.Device, func(enc gpu.Encoder) error {
		return coll.EncodeOp(enc, op, store)
	})
	if _, err := store.Image(resultID); err != nil {
		t.Fatalf("Image(resultID): %v", err)
	}
	coll.ResetAll() // must not panic even with a constructed implementation
}
