package compiler

import (
	"testing"

	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/mask"
)

func globalMask() mask.Mask {
	return mask.Mask{Terms: []mask.Term{{Primitive: mask.Primitive{Kind: mask.Global}}}}
}

func countKind(module *ir.Module, kind ir.Kind) int {
	n := 0
	for _, op := range module.Ops() {
		if op.Kind() == kind {
			n++
		}
	}
	return n
}

func TestCompileIdentityEditEmitsStatisticsAndOneMaskBlend(t *testing.T) {
	edit := Edit{MaskedEdits: []MaskedEdit{{Mask: globalMask()}}}
	module, _ := Compile(edit, 800, 600)

	if err := module.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if countKind(module, ir.KindAdjustExposure) != 0 {
		t.Fatalf("identity edit should not emit AdjustExposure")
	}
	if countKind(module, ir.KindComputeHistogram) != 1 {
		t.Fatalf("expected exactly one ComputeHistogram, got %d", countKind(module, ir.KindComputeHistogram))
	}
	if countKind(module, ir.KindCollectDataForEditor) != 1 {
		t.Fatalf("expected exactly one CollectDataForEditor")
	}
	// ApplyMaskedEdits is still emitted even for an identity global edit,
	// since the compiler does not special-case a no-op mask term.
	if countKind(module, ir.KindApplyMaskedEdits) != 1 {
		t.Fatalf("expected one ApplyMaskedEdits")
	}
}

func TestCompileExposureOnlyEmitsOneAdjustExposure(t *testing.T) {
	edit := Edit{MaskedEdits: []MaskedEdit{{Mask: globalMask(), Edit: GlobalEdit{Exposure: 1.5}}}}
	module, _ := Compile(edit, 400, 300)

	if err := module.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if countKind(module, ir.KindAdjustExposure) != 1 {
		t.Fatalf("expected one AdjustExposure, got %d", countKind(module, ir.KindAdjustExposure))
	}
	if countKind(module, ir.KindAdjustContrast) != 0 {
		t.Fatalf("contrast should not be emitted when Amount is zero")
	}
}

func TestCompileContrastEmitsBasicStatisticsFirst(t *testing.T) {
	edit := Edit{MaskedEdits: []MaskedEdit{{Mask: globalMask(), Edit: GlobalEdit{Contrast: 0.2}}}}
	module, _ := Compile(edit, 400, 300)

	if err := module.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var statsIdx, contrastIdx = -1, -1
	for i, op := range module.Ops() {
		switch op.Kind() {
		case ir.KindComputeBasicStatistics:
			statsIdx = i
		case ir.KindAdjustContrast:
			contrastIdx = i
		}
	}
	if statsIdx < 0 || contrastIdx < 0 {
		t.Fatalf("expected both ComputeBasicStatistics and AdjustContrast, got stats=%d contrast=%d", statsIdx, contrastIdx)
	}
	if statsIdx >= contrastIdx {
		t.Fatalf("ComputeBasicStatistics (%d) must precede AdjustContrast (%d)", statsIdx, contrastIdx)
	}
}

func TestCompileFixedAdjustmentOrder(t *testing.T) {
	edit := Edit{MaskedEdits: []MaskedEdit{{
		Mask: globalMask(),
		Edit: GlobalEdit{
			Exposure:       0.5,
			Contrast:       0.1,
			Highlights:     0.1,
			Temperature:    0.1,
			Vibrance:       0.1,
			Saturation:     0.1,
			CurveLuma:      []CurvePoint{{0, 0}, {0.5, 0.6}, {1, 1}},
			DehazeStrength: 0.3,
			VignetteAmount: -0.2,
		},
	}}}
	module, _ := Compile(edit, 400, 300)

	if err := module.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	wantOrder := []ir.Kind{
		ir.KindAdjustExposure,
		ir.KindComputeBasicStatistics,
		ir.KindAdjustContrast,
		ir.KindAdjustHighlightsAndShadows,
		ir.KindAdjustTemperatureAndTint,
		ir.KindAdjustVibrance,
		ir.KindAdjustSaturation,
		ir.KindApplyCurve,
		ir.KindDehazePrepare,
		ir.KindApplyDehaze,
		ir.KindApplyVignette,
	}
	got := make([]ir.Kind, 0, len(wantOrder))
	for _, op := range module.Ops() {
		for _, k := range wantOrder {
			if op.Kind() == k {
				got = append(got, k)
			}
		}
	}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d adjustment ops in order, got %d: %v", len(wantOrder), len(got), got)
	}
	for i, k := range wantOrder {
		if got[i] != k {
			t.Fatalf("adjustment order mismatch at %d: want %s got %s (full: %v)", i, k, got[i], got)
		}
	}
}

func TestCompileRotateAndCropShrinksMaskWorkingResolution(t *testing.T) {
	crop := Rectangle{CenterX: 0.5, CenterY: 0.5, Width: 0.5, Height: 0.5}
	edit := Edit{
		Crop:            &crop,
		RotationDegrees: 45,
		MaskedEdits:     []MaskedEdit{{Mask: globalMask()}},
	}
	module, _ := Compile(edit, 800, 800)
	if err := module.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if countKind(module, ir.KindRotateAndCrop) != 1 {
		t.Fatalf("expected one RotateAndCrop")
	}

	w, h := MaskDimensions(edit, 800, 800)
	var maskOp *ir.ComputeGlobalMask
	for _, op := range module.Ops() {
		if g, ok := op.(*ir.ComputeGlobalMask); ok {
			maskOp = g
		}
	}
	if maskOp == nil {
		t.Fatalf("expected a ComputeGlobalMask op")
	}
	if maskOp.Width != w || maskOp.Height != h {
		t.Fatalf("mask dims (%d,%d) do not match predicted working resolution (%d,%d)", maskOp.Width, maskOp.Height, w, h)
	}
}

func TestCompileMultipleMaskedEditsChainApplyMaskedEdits(t *testing.T) {
	radial := mask.Mask{Terms: []mask.Term{{Primitive: mask.Primitive{Kind: mask.RadialGradient, RadiusX: 0.3, RadiusY: 0.3, Feather: 0.1}}}}
	edit := Edit{
		MaskedEdits: []MaskedEdit{
			{Mask: globalMask(), Edit: GlobalEdit{Exposure: 0.2}},
			{Mask: radial, Edit: GlobalEdit{Saturation: -0.3}},
		},
	}
	module, _ := Compile(edit, 200, 100)
	if err := module.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if countKind(module, ir.KindApplyMaskedEdits) != 2 {
		t.Fatalf("expected two ApplyMaskedEdits, got %d", countKind(module, ir.KindApplyMaskedEdits))
	}

	var applies []*ir.ApplyMaskedEdits
	for _, op := range module.Ops() {
		if a, ok := op.(*ir.ApplyMaskedEdits); ok {
			applies = append(applies, a)
		}
	}
	if applies[1].Base != applies[0].Result() {
		t.Fatalf("second ApplyMaskedEdits must chain off the first's result")
	}
}

func TestCompileReturnsOneMaskIdPerMaskedEdit(t *testing.T) {
	radial := mask.Mask{Terms: []mask.Term{{Primitive: mask.Primitive{Kind: mask.RadialGradient, RadiusX: 0.3, RadiusY: 0.3, Feather: 0.1}}}}
	edit := Edit{
		MaskedEdits: []MaskedEdit{
			{Mask: globalMask(), Edit: GlobalEdit{Exposure: 0.2}},
			{Mask: radial, Edit: GlobalEdit{Saturation: -0.3}},
		},
	}
	module, maskIDs := Compile(edit, 200, 100)
	if len(maskIDs) != 2 {
		t.Fatalf("expected 2 mask ids, got %d", len(maskIDs))
	}
	for i, id := range maskIDs {
		if _, ok := module.ResultIndex(id); !ok {
			t.Fatalf("mask id %d (%s) is not produced by any op", i, id)
		}
	}
	if maskIDs[0] == maskIDs[1] {
		t.Fatalf("distinct masked edits should not share a mask id")
	}
}

func TestCompileResizeAndFramingAppendExpectedOps(t *testing.T) {
	edit := Edit{
		MaskedEdits:  []MaskedEdit{{Mask: globalMask()}},
		ResizeWidth:  640,
		ResizeHeight: 480,
	}
	module, _ := Compile(edit, 1920, 1080)
	if err := module.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if countKind(module, ir.KindResize) != 1 {
		t.Fatalf("expected one Resize op")
	}

	edit2 := Edit{
		MaskedEdits: []MaskedEdit{{Mask: globalMask()}},
		FrameWidth:  100,
		FrameHeight: 100,
	}
	module2, _ := Compile(edit2, 1920, 1080)
	if err := module2.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if countKind(module2, ir.KindFraming) != 1 {
		t.Fatalf("expected one Framing op")
	}
}

func TestCompileOutputIdIsDefined(t *testing.T) {
	edit := Edit{MaskedEdits: []MaskedEdit{{Mask: globalMask(), Edit: GlobalEdit{Exposure: 0.3}}}}
	module, _ := Compile(edit, 300, 300)
	if _, ok := module.ResultIndex(module.OutputId()); !ok {
		t.Fatalf("output id %s is not produced by any op", module.OutputId())
	}
}
