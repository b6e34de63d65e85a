package engine

import (
	"context"
	"testing"

	"github.com/rasterlab/photoedit/compiler"
	"github.com/rasterlab/photoedit/gpu"
	fakegpu "github.com/rasterlab/photoedit/gpu/fake"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/mask"
	"github.com/rasterlab/photoedit/value"
)

func globalMaskEdit(edit compiler.GlobalEdit) compiler.MaskedEdit {
	return compiler.MaskedEdit{
		Mask: mask.Mask{Terms: []mask.Term{{Primitive: mask.Primitive{Kind: mask.Global}}}},
		Edit: edit,
	}
}

func newInputImage(t *testing.T, device gpu.Device, w, h uint32) *value.Image {
	t.Helper()
	seed := value.New(device)
	img, err := seed.EnsureImage(1, value.ImageProperties{
		Width: w, Height: h, Format: gpu.FormatRgba16Float, ColorSpace: gpu.ColorSpaceLinearRGB, MipLevelCount: 1,
	})
	if err != nil {
		t.Fatalf("EnsureImage: %v", err)
	}
	return img
}

func TestExecuteExposureOnlyProducesOutputAndStatistics(t *testing.T) {
	device, err := fakegpu.New()
	if err != nil {
		t.Fatalf("fakegpu.New: %v", err)
	}
	edit := compiler.Edit{MaskedEdits: []compiler.MaskedEdit{globalMaskEdit(compiler.GlobalEdit{Exposure: 1.0})}}
	module, maskIDs := compiler.Compile(edit, 64, 64)

	eng := New(device)
	input := newInputImage(t, device, 64, 64)

	result, err := eng.Execute(context.Background(), module, maskIDs, input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Output == nil {
		t.Fatalf("expected a non-nil output image")
	}
	if result.Output.Properties.Width != 64 || result.Output.Properties.Height != 64 {
		t.Fatalf("unexpected output dims: %+v", result.Output.Properties)
	}
	if len(result.MaskResults) != 1 {
		t.Fatalf("expected 1 mask result, got %d", len(result.MaskResults))
	}
	if result.Statistics == nil {
		t.Fatalf("expected a statistics future since every module ends with AddStatisticsOps")
	}
	if _, err := result.Statistics.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if eng.State() != StateIdle {
		t.Fatalf("expected engine to return to Idle, got %s", eng.State())
	}
}

func TestExecuteRunsTwiceInSuccession(t *testing.T) {
	device, err := fakegpu.New()
	if err != nil {
		t.Fatalf("fakegpu.New: %v", err)
	}
	edit := compiler.Edit{MaskedEdits: []compiler.MaskedEdit{globalMaskEdit(compiler.GlobalEdit{Saturation: 0.2})}}
	eng := New(device)

	for i := 0; i < 2; i++ {
		module, maskIDs := compiler.Compile(edit, 32, 32)
		input := newInputImage(t, device, 32, 32)
		if _, err := eng.Execute(context.Background(), module, maskIDs, input); err != nil {
			t.Fatalf("Execute iteration %d: %v", i, err)
		}
	}
}

func TestExecuteRejectsReentrantCall(t *testing.T) {
	device, err := fakegpu.New()
	if err != nil {
		t.Fatalf("fakegpu.New: %v", err)
	}
	eng := New(device)
	eng.setState(StateEncoding)

	edit := compiler.Edit{MaskedEdits: []compiler.MaskedEdit{globalMaskEdit(compiler.GlobalEdit{})}}
	module, maskIDs := compiler.Compile(edit, 8, 8)
	input := newInputImage(t, device, 8, 8)

	if _, err := eng.Execute(context.Background(), module, maskIDs, input); err != ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestExecuteRejectsInvalidModuleAndRollsBack(t *testing.T) {
	device, err := fakegpu.New()
	if err != nil {
		t.Fatalf("fakegpu.New: %v", err)
	}
	eng := New(device)

	module := ir.NewModule()
	module.PushOp(&ir.Input{OpBase: ir.OpBase{ResultID: module.InputId()}})
	badID := module.AllocId()
	module.PushOp(&ir.AdjustExposure{OpBase: ir.OpBase{ResultID: badID}, Input: ir.Id(9999), Stops: 1})
	module.SetOutputId(badID)

	input := newInputImage(t, device, 8, 8)
	if _, err := eng.Execute(context.Background(), module, nil, input); err == nil {
		t.Fatalf("expected an error for an op referencing an undefined id")
	}
	if eng.State() != StateIdle {
		t.Fatalf("expected engine to return to Idle after rejecting an invalid module, got %s", eng.State())
	}
}

func TestHistogramSumEqualsPixelCount(t *testing.T) {
	var h Histogram
	h.R[0] = 10
	h.R[255] = 6
	if got := h.Sum(0); got != 16 {
		t.Fatalf("Sum(0) = %d, want 16", got)
	}
	if got := h.Sum(1); got != 0 {
		t.Fatalf("Sum(1) = %d, want 0 for an untouched channel", got)
	}
}
