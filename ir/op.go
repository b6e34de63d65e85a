package ir

// Kind identifies an Op's concrete variant, for logging, switch dispatch
// in the engine's OpImplCollection, and error messages.
type Kind string

const (
	KindInput                      Kind = "Input"
	KindAdjustExposure             Kind = "AdjustExposure"
	KindAdjustContrast             Kind = "AdjustContrast"
	KindAdjustHighlightsAndShadows Kind = "AdjustHighlightsAndShadows"
	KindAdjustTemperatureAndTint   Kind = "AdjustTemperatureAndTint"
	KindAdjustVibrance             Kind = "AdjustVibrance"
	KindAdjustSaturation           Kind = "AdjustSaturation"
	KindApplyCurve                 Kind = "ApplyCurve"
	KindColorMix                   Kind = "ColorMix"
	KindDehazePrepare              Kind = "DehazePrepare"
	KindApplyDehaze                Kind = "ApplyDehaze"
	KindApplyVignette              Kind = "ApplyVignette"
	KindRotateAndCrop              Kind = "RotateAndCrop"
	KindResize                     Kind = "Resize"
	KindComputeBasicStatistics     Kind = "ComputeBasicStatistics"
	KindComputeHistogram           Kind = "ComputeHistogram"
	KindCollectDataForEditor       Kind = "CollectDataForEditor"
	KindComputeGlobalMask          Kind = "ComputeGlobalMask"
	KindComputeRadialGradientMask  Kind = "ComputeRadialGradientMask"
	KindComputeLinearGradientMask  Kind = "ComputeLinearGradientMask"
	KindInvertMask                 Kind = "InvertMask"
	KindAddMask                    Kind = "AddMask"
	KindSubtractMask               Kind = "SubtractMask"
	KindApplyMaskedEdits           Kind = "ApplyMaskedEdits"
	KindFraming                    Kind = "Framing"
)

// Op is the closed tagged-variant interface every IR operation satisfies.
// The variant set is closed by the unexported isOp marker method: only
// types defined in this package can implement Op, so the engine's
// per-kind type switch is exhaustive by construction rather than by
// convention.
type Op interface {
	// Result is the Id this op produces.
	Result() Id
	// Operands lists every Id this op reads, in an order stable enough
	// for error messages; InvalidId entries are skipped by callers.
	Operands() []Id
	// Kind identifies the concrete variant.
	Kind() Kind

	isOp()
}

// OpBase carries the result Id every variant embeds.
type OpBase struct {
	ResultID Id
}

func (b OpBase) Result() Id { return b.ResultID }
func (OpBase) isOp()        {}

// Input is the module's distinguished entry point; it has no operands and
// its Result is always the module's InputId.
type Input struct {
	OpBase
}

func (Input) Operands() []Id { return nil }
func (Input) Kind() Kind     { return KindInput }

// AdjustExposure multiplies linear RGB by 2^Stops.
type AdjustExposure struct {
	OpBase
	Input Id
	Stops float32
}

func (o *AdjustExposure) Operands() []Id { return []Id{o.Input} }
func (*AdjustExposure) Kind() Kind       { return KindAdjustExposure }

// AdjustContrast remaps pixels around the mean luma from BasicStats.
type AdjustContrast struct {
	OpBase
	Input      Id
	BasicStats Id
	Amount     float32 // -1..1, 0 = identity
}

func (o *AdjustContrast) Operands() []Id { return []Id{o.Input, o.BasicStats} }
func (*AdjustContrast) Kind() Kind       { return KindAdjustContrast }

// AdjustHighlightsAndShadows applies a luma-weighted S-curve; Highlights
// and Shadows are packed into one shader
type AdjustHighlightsAndShadows struct {
	OpBase
	Input      Id
	Highlights float32 // -1..1
	Shadows    float32 // -1..1
}

func (o *AdjustHighlightsAndShadows) Operands() []Id { return []Id{o.Input} }
func (*AdjustHighlightsAndShadows) Kind() Kind       { return KindAdjustHighlightsAndShadows }

// AdjustTemperatureAndTint applies a chromatic-adaptation matrix
// parameterized by two floats.
type AdjustTemperatureAndTint struct {
	OpBase
	Input       Id
	Temperature float32 // -1..1
	Tint        float32 // -1..1
}

func (o *AdjustTemperatureAndTint) Operands() []Id { return []Id{o.Input} }
func (*AdjustTemperatureAndTint) Kind() Kind       { return KindAdjustTemperatureAndTint }

// AdjustVibrance boosts saturation weighted by (1 - saturation) so
// already-saturated pixels are protected.
type AdjustVibrance struct {
	OpBase
	Input  Id
	Amount float32 // -1..1
}

func (o *AdjustVibrance) Operands() []Id { return []Id{o.Input} }
func (*AdjustVibrance) Kind() Kind       { return KindAdjustVibrance }

// AdjustSaturation uniformly scales HSL saturation.
type AdjustSaturation struct {
	OpBase
	Input  Id
	Amount float32 // -1..1
}

func (o *AdjustSaturation) Operands() []Id { return []Id{o.Input} }
func (*AdjustSaturation) Kind() Kind       { return KindAdjustSaturation }

// CurveChannel selects which channel ApplyCurve operates on.
type CurveChannel int

const (
	CurveLuma CurveChannel = iota
	CurveRed
	CurveGreen
	CurveBlue
)

func (c CurveChannel) String() string {
	switch c {
	case CurveLuma:
		return "luma"
	case CurveRed:
		return "R"
	case CurveGreen:
		return "G"
	case CurveBlue:
		return "B"
	default:
		return "unknown"
	}
}

// CurvePoint is one control point of a tone curve, in [0,1]x[0,1].
type CurvePoint struct {
	X, Y float32
}

// ApplyCurve evaluates a piecewise Catmull-Rom curve through Points,
// applied to the channel named by Channel. There are four
// variants (luma, R, G, B), distinguished by Channel rather than by
// separate Go types, since they share identical shape and differ only in
// which channel the shader reads/writes.
type ApplyCurve struct {
	OpBase
	Input   Id
	Channel CurveChannel
	Points  []CurvePoint // invariant: begins (0,0), ends (1,1), x strictly increasing, 2<=len<=16
}

func (o *ApplyCurve) Operands() []Id { return []Id{o.Input} }
func (*ApplyCurve) Kind() Kind       { return KindApplyCurve }

// ColorMixGroup is one of the eight hue bins of the color mixer.
type ColorMixGroup struct {
	HueShift        float32 // degrees, -180..180
	SaturationScale float32 // -1..1
	LuminanceScale  float32 // -1..1
}

// ColorMix applies the eight-hue-bin color mixer, blending each group's
// contribution by a hue-neighborhood kernel.
type ColorMix struct {
	OpBase
	Input  Id
	Groups [8]ColorMixGroup
}

func (o *ColorMix) Operands() []Id { return []Id{o.Input} }
func (*ColorMix) Kind() Kind       { return KindColorMix }

// DehazePrepare estimates a dark-channel image and atmospheric light into
// an auxiliary texture; consumed by a following ApplyDehaze.
type DehazePrepare struct {
	OpBase
	Input Id
}

func (o *DehazePrepare) Operands() []Id { return []Id{o.Input} }
func (*DehazePrepare) Kind() Kind       { return KindDehazePrepare }

// ApplyDehaze combines Input with the DehazePrepare auxiliary using
// Strength.
type ApplyDehaze struct {
	OpBase
	Input    Id
	Aux      Id
	Strength float32 // 0..1
}

func (o *ApplyDehaze) Operands() []Id { return []Id{o.Input, o.Aux} }
func (*ApplyDehaze) Kind() Kind       { return KindApplyDehaze }

// ApplyVignette modulates exposure by radial falloff.
type ApplyVignette struct {
	OpBase
	Input     Id
	Amount    float32 // -1..1, negative darkens edges
	Midpoint  float32 // 0..1, radius where falloff begins
	Roundness float32 // 0..1, scales the center distance (0 = doubled, 1 = unscaled); the falloff is circular for every value
	Feather   float32 // 0..1
}

func (o *ApplyVignette) Operands() []Id { return []Id{o.Input} }
func (*ApplyVignette) Kind() Kind       { return KindApplyVignette }

// RotateAndCrop samples Input with a rotation matrix about the crop
// center, outputting a texture sized to the (possibly shrunk) cropped
// rectangle.
type RotateAndCrop struct {
	OpBase
	Input            Id
	CenterX, CenterY float32 // normalized [0,1]
	Width, Height    float32 // normalized [0,1], post-shrink
	RotationDegrees  float32
}

func (o *RotateAndCrop) Operands() []Id { return []Id{o.Input} }
func (*RotateAndCrop) Kind() Kind       { return KindRotateAndCrop }

// Resize bilinearly downsamples Input to the given pixel dimensions,
// using mip levels where available.
type Resize struct {
	OpBase
	Input         Id
	Width, Height uint32
}

func (o *Resize) Operands() []Id { return []Id{o.Input} }
func (*Resize) Kind() Kind       { return KindResize }

// ComputeBasicStatistics accumulates per-channel sums via a clear pass
// followed by a tile-wise atomic accumulation dispatch.
type ComputeBasicStatistics struct {
	OpBase
	Input Id
}

func (o *ComputeBasicStatistics) Operands() []Id { return []Id{o.Input} }
func (*ComputeBasicStatistics) Kind() Kind       { return KindComputeBasicStatistics }

// ComputeHistogram accumulates per-channel 256-bin histograms via atomics.
type ComputeHistogram struct {
	OpBase
	Input Id
}

func (o *ComputeHistogram) Operands() []Id { return []Id{o.Input} }
func (*ComputeHistogram) Kind() Kind       { return KindComputeHistogram }

// CollectDataForEditor marks the histogram buffer for host readback,
// which the engine reads after Submit; basic-stats buffers are not read
// back. This is the authoritative statistics-collection op per the
// Open Question resolution in the design notes (CollectStatistics does
// not exist in this tree).
type CollectDataForEditor struct {
	OpBase
	Input     Id
	Histogram Id
}

func (o *CollectDataForEditor) Operands() []Id { return []Id{o.Input, o.Histogram} }
func (*CollectDataForEditor) Kind() Kind       { return KindCollectDataForEditor }

// ComputeGlobalMask produces a constant-1 grayscale mask at the given
// pixel dimensions.
type ComputeGlobalMask struct {
	OpBase
	Width, Height uint32
}

func (ComputeGlobalMask) Operands() []Id { return nil }
func (*ComputeGlobalMask) Kind() Kind    { return KindComputeGlobalMask }

// ComputeRadialGradientMask produces a per-pixel smoothstep over an
// ellipse of parameters, in normalized coordinates.
type ComputeRadialGradientMask struct {
	OpBase
	Width, Height    uint32
	CenterX, CenterY float32
	RadiusX, RadiusY float32
	Feather          float32
	RotationDegrees  float32
}

func (ComputeRadialGradientMask) Operands() []Id { return nil }
func (*ComputeRadialGradientMask) Kind() Kind    { return KindComputeRadialGradientMask }

// ComputeLinearGradientMask produces a smoothstep across the line segment
// from (X0,Y0) to (X1,Y1), in normalized coordinates.
type ComputeLinearGradientMask struct {
	OpBase
	Width, Height uint32
	X0, Y0        float32
	X1, Y1        float32
}

func (ComputeLinearGradientMask) Operands() []Id { return nil }
func (*ComputeLinearGradientMask) Kind() Kind    { return KindComputeLinearGradientMask }

// InvertMask computes 1-x over Input.
type InvertMask struct {
	OpBase
	Input Id
}

func (o *InvertMask) Operands() []Id { return []Id{o.Input} }
func (*InvertMask) Kind() Kind       { return KindInvertMask }

// AddMask computes clamp(A+B, 0, 1).
type AddMask struct {
	OpBase
	A, B Id
}

func (o *AddMask) Operands() []Id { return []Id{o.A, o.B} }
func (*AddMask) Kind() Kind       { return KindAddMask }

// SubtractMask computes clamp(A-B, 0, 1).
type SubtractMask struct {
	OpBase
	A, B Id
}

func (o *SubtractMask) Operands() []Id { return []Id{o.A, o.B} }
func (*SubtractMask) Kind() Kind       { return KindSubtractMask }

// ApplyMaskedEdits blends Adjusted over Base by Mask's first (red) channel.
type ApplyMaskedEdits struct {
	OpBase
	Base, Adjusted, Mask Id
}

func (o *ApplyMaskedEdits) Operands() []Id { return []Id{o.Base, o.Adjusted, o.Mask} }
func (*ApplyMaskedEdits) Kind() Kind       { return KindApplyMaskedEdits }

// Framing resizes Input to exactly Width x Height by crop-to-fit,
// distinct from Resize in that it crops to keep the source aspect; it
// never pads.
type Framing struct {
	OpBase
	Input         Id
	Width, Height uint32
}

func (o *Framing) Operands() []Id { return []Id{o.Input} }
func (*Framing) Kind() Kind       { return KindFraming }
