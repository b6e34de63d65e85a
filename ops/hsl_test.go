package ops

import "testing"

func approxEq(a, b, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestSetSatGrayscaleStaysGray(t *testing.T) {
	r, g, b := SetSat(0.5, 0.5, 0.5, 0.8)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("grayscale input must yield zero saturation output, got (%v,%v,%v)", r, g, b)
	}
}

func TestApplySaturationZeroScaleDesaturates(t *testing.T) {
	r, g, b := ApplySaturation(0.9, 0.2, 0.1, 0)
	if !approxEq(Sat(r, g, b), 0, 1e-5) {
		t.Fatalf("scale=0 must fully desaturate, got Sat=%v", Sat(r, g, b))
	}
}

func TestApplyVibranceProtectsSaturatedPixels(t *testing.T) {
	// A fully saturated pixel (sat=1) must not change under vibrance: the
	// (1-sat) weighting drives the boost to zero.
	r, g, b := ApplyVibrance(1, 0, 0, 1)
	if !approxEq(r, 1, 1e-4) || !approxEq(g, 0, 1e-4) || !approxEq(b, 0, 1e-4) {
		t.Fatalf("fully saturated pixel should be unchanged by vibrance, got (%v,%v,%v)", r, g, b)
	}
}

func TestClipColorKeepsInGamutColorUnchanged(t *testing.T) {
	r, g, b := ClipColor(0.2, 0.5, 0.8)
	if !approxEq(r, 0.2, 1e-6) || !approxEq(g, 0.5, 1e-6) || !approxEq(b, 0.8, 1e-6) {
		t.Fatalf("in-gamut color must be unchanged, got (%v,%v,%v)", r, g, b)
	}
}
