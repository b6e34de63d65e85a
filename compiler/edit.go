// Package compiler lowers a user-facing Edit into an ir.Module: one Input op, an optional RotateAndCrop, one ApplyMaskedEdits
// subgraph per masked edit, an optional Resize/Framing, and the
// unconditional statistics tail.
package compiler

import (
	"github.com/rasterlab/photoedit/geom"
	"github.com/rasterlab/photoedit/mask"
)

// Rectangle is a crop region in coordinates normalized to the source
// image's own dimensions.
type Rectangle struct {
	CenterX, CenterY float32
	Width, Height    float32
}

// CurvePoint mirrors ir.CurvePoint at the Edit layer so this package does
// not need callers to reach into ir directly when building an Edit.
type CurvePoint struct {
	X, Y float32
}

// ColorMixGroup is one of GlobalEdit's eight hue-bin adjustments.
type ColorMixGroup struct {
	HueShift        float32
	SaturationScale float32
	LuminanceScale  float32
}

// GlobalEdit carries every scalar/curve/group adjustment a MaskedEdit may
// apply, in the fixed order the compiler emits them.
type GlobalEdit struct {
	Exposure float32

	Contrast float32

	Highlights float32
	Shadows    float32

	Temperature float32
	Tint        float32

	Vibrance   float32
	Saturation float32

	CurveLuma  []CurvePoint
	CurveRed   []CurvePoint
	CurveGreen []CurvePoint
	CurveBlue  []CurvePoint

	ColorMix [8]ColorMixGroup

	DehazeStrength float32

	VignetteAmount    float32
	VignetteMidpoint  float32
	VignetteRoundness float32
	VignetteFeather   float32
}

// MaskedEdit pairs one Mask with the GlobalEdit applied where that mask
// is opaque.
type MaskedEdit struct {
	Mask mask.Mask
	Edit GlobalEdit
}

// Edit is the compiler's sole input: an optional crop/rotation plus an
// ordered list of masked edits, the first of which must mask the whole
// image.
type Edit struct {
	Crop            *Rectangle
	RotationDegrees float32
	// CropPolicy selects how the crop rectangle is shrunk when rotation
	// would otherwise expose image boundary; the zero value is
	// geom.PreserveBounds.
	CropPolicy geom.CropPolicy

	MaskedEdits []MaskedEdit

	// ResizeWidth/ResizeHeight request a Resize (downsample, without
	// cropping) to exactly this pixel size when both are non-zero.
	ResizeWidth, ResizeHeight uint32

	// FrameWidth/FrameHeight request a Framing (crop-to-fit) to this
	// pixel size when both are non-zero. Mutually exclusive with Resize
	// in practice, but the compiler does not enforce that; both are
	// emitted if both are set, with Resize first.
	FrameWidth, FrameHeight uint32
}
