// Package editjson gives compiler.Edit a lossless, stable JSON encoding
// for persistence: parse(serialize(e)) == e.
// Every float32 field round-trips through strconv.FormatFloat(f, 'g', 9,
// 32) — 9 significant digits is enough to recover any float32 bit
// pattern exactly.
package editjson

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rasterlab/photoedit/compiler"
	"github.com/rasterlab/photoedit/geom"
	"github.com/rasterlab/photoedit/mask"
)

// float32j is a float32 that marshals through strconv.FormatFloat at
// full round-trip precision instead of encoding/json's default
// (shortest-representation, which is precise but renders as a JSON
// number literal parsers in other languages may re-round; this module
// only has to round-trip itself, so the simpler fixed-precision format
// is preferred for readability of the persisted file).
type float32j float32

func (f float32j) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'g', 9, 32)), nil
}

func (f *float32j) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 32)
	if err != nil {
		return fmt.Errorf("editjson: float32 field: %w", err)
	}
	*f = float32j(v)
	return nil
}

// Rectangle mirrors compiler.Rectangle.
type Rectangle struct {
	CenterX float32j `json:"center_x"`
	CenterY float32j `json:"center_y"`
	Width   float32j `json:"width"`
	Height  float32j `json:"height"`
}

func fromRectangle(r *compiler.Rectangle) *Rectangle {
	if r == nil {
		return nil
	}
	return &Rectangle{CenterX: float32j(r.CenterX), CenterY: float32j(r.CenterY), Width: float32j(r.Width), Height: float32j(r.Height)}
}

func (r *Rectangle) toCompiler() *compiler.Rectangle {
	if r == nil {
		return nil
	}
	return &compiler.Rectangle{CenterX: float32(r.CenterX), CenterY: float32(r.CenterY), Width: float32(r.Width), Height: float32(r.Height)}
}

// CurvePoint mirrors compiler.CurvePoint.
type CurvePoint struct {
	X float32j `json:"x"`
	Y float32j `json:"y"`
}

func fromCurvePoints(points []compiler.CurvePoint) []CurvePoint {
	if points == nil {
		return nil
	}
	out := make([]CurvePoint, len(points))
	for i, p := range points {
		out[i] = CurvePoint{X: float32j(p.X), Y: float32j(p.Y)}
	}
	return out
}

func toCurvePoints(points []CurvePoint) []compiler.CurvePoint {
	if points == nil {
		return nil
	}
	out := make([]compiler.CurvePoint, len(points))
	for i, p := range points {
		out[i] = compiler.CurvePoint{X: float32(p.X), Y: float32(p.Y)}
	}
	return out
}

// ColorMixGroup mirrors compiler.ColorMixGroup.
type ColorMixGroup struct {
	HueShift        float32j `json:"hue_shift"`
	SaturationScale float32j `json:"saturation_scale"`
	LuminanceScale  float32j `json:"luminance_scale"`
}

func fromColorMix(groups [8]compiler.ColorMixGroup) [8]ColorMixGroup {
	var out [8]ColorMixGroup
	for i, g := range groups {
		out[i] = ColorMixGroup{HueShift: float32j(g.HueShift), SaturationScale: float32j(g.SaturationScale), LuminanceScale: float32j(g.LuminanceScale)}
	}
	return out
}

func toColorMix(groups [8]ColorMixGroup) [8]compiler.ColorMixGroup {
	var out [8]compiler.ColorMixGroup
	for i, g := range groups {
		out[i] = compiler.ColorMixGroup{HueShift: float32(g.HueShift), SaturationScale: float32(g.SaturationScale), LuminanceScale: float32(g.LuminanceScale)}
	}
	return out
}

// GlobalEdit mirrors compiler.GlobalEdit field-for-field.
type GlobalEdit struct {
	Exposure float32j `json:"exposure"`

	Contrast float32j `json:"contrast"`

	Highlights float32j `json:"highlights"`
	Shadows    float32j `json:"shadows"`

	Temperature float32j `json:"temperature"`
	Tint        float32j `json:"tint"`

	Vibrance   float32j `json:"vibrance"`
	Saturation float32j `json:"saturation"`

	CurveLuma  []CurvePoint `json:"curve_luma,omitempty"`
	CurveRed   []CurvePoint `json:"curve_red,omitempty"`
	CurveGreen []CurvePoint `json:"curve_green,omitempty"`
	CurveBlue  []CurvePoint `json:"curve_blue,omitempty"`

	ColorMix [8]ColorMixGroup `json:"color_mix"`

	DehazeStrength float32j `json:"dehaze_strength"`

	VignetteAmount    float32j `json:"vignette_amount"`
	VignetteMidpoint  float32j `json:"vignette_midpoint"`
	VignetteRoundness float32j `json:"vignette_roundness"`
	VignetteFeather   float32j `json:"vignette_feather"`
}

func fromGlobalEdit(e compiler.GlobalEdit) GlobalEdit {
	return GlobalEdit{
		Exposure: float32j(e.Exposure), Contrast: float32j(e.Contrast),
		Highlights: float32j(e.Highlights), Shadows: float32j(e.Shadows),
		Temperature: float32j(e.Temperature), Tint: float32j(e.Tint),
		Vibrance: float32j(e.Vibrance), Saturation: float32j(e.Saturation),
		CurveLuma: fromCurvePoints(e.CurveLuma), CurveRed: fromCurvePoints(e.CurveRed),
		CurveGreen: fromCurvePoints(e.CurveGreen), CurveBlue: fromCurvePoints(e.CurveBlue),
		ColorMix:       fromColorMix(e.ColorMix),
		DehazeStrength: float32j(e.DehazeStrength),
		VignetteAmount: float32j(e.VignetteAmount), VignetteMidpoint: float32j(e.VignetteMidpoint),
		VignetteRoundness: float32j(e.VignetteRoundness), VignetteFeather: float32j(e.VignetteFeather),
	}
}

func (e GlobalEdit) toCompiler() compiler.GlobalEdit {
	return compiler.GlobalEdit{
		Exposure: float32(e.Exposure), Contrast: float32(e.Contrast),
		Highlights: float32(e.Highlights), Shadows: float32(e.Shadows),
		Temperature: float32(e.Temperature), Tint: float32(e.Tint),
		Vibrance: float32(e.Vibrance), Saturation: float32(e.Saturation),
		CurveLuma: toCurvePoints(e.CurveLuma), CurveRed: toCurvePoints(e.CurveRed),
		CurveGreen: toCurvePoints(e.CurveGreen), CurveBlue: toCurvePoints(e.CurveBlue),
		ColorMix:       toColorMix(e.ColorMix),
		DehazeStrength: float32(e.DehazeStrength),
		VignetteAmount: float32(e.VignetteAmount), VignetteMidpoint: float32(e.VignetteMidpoint),
		VignetteRoundness: float32(e.VignetteRoundness), VignetteFeather: float32(e.VignetteFeather),
	}
}

// maskPrimitiveKind mirrors mask.PrimitiveKind as a stable string so the
// persisted file survives the enum's underlying int values changing.
type maskPrimitiveKind string

const (
	kindGlobal         maskPrimitiveKind = "global"
	kindRadialGradient maskPrimitiveKind = "radial_gradient"
	kindLinearGradient maskPrimitiveKind = "linear_gradient"
)

func fromPrimitiveKind(k mask.PrimitiveKind) maskPrimitiveKind {
	switch k {
	case mask.RadialGradient:
		return kindRadialGradient
	case mask.LinearGradient:
		return kindLinearGradient
	default:
		return kindGlobal
	}
}

func (k maskPrimitiveKind) toMask() (mask.PrimitiveKind, error) {
	switch k {
	case kindGlobal, "":
		return mask.Global, nil
	case kindRadialGradient:
		return mask.RadialGradient, nil
	case kindLinearGradient:
		return mask.LinearGradient, nil
	default:
		return 0, fmt.Errorf("editjson: unknown mask primitive kind %q", string(k))
	}
}

// Primitive mirrors mask.Primitive.
type Primitive struct {
	Kind maskPrimitiveKind `json:"kind"`

	CenterX float32j `json:"center_x,omitempty"`
	CenterY float32j `json:"center_y,omitempty"`
	RadiusX float32j `json:"radius_x,omitempty"`
	RadiusY float32j `json:"radius_y,omitempty"`
	Feather float32j `json:"feather,omitempty"`

	RotationDegrees float32j `json:"rotation_degrees,omitempty"`

	X0 float32j `json:"x0,omitempty"`
	Y0 float32j `json:"y0,omitempty"`
	X1 float32j `json:"x1,omitempty"`
	Y1 float32j `json:"y1,omitempty"`
}

func fromPrimitive(p mask.Primitive) Primitive {
	return Primitive{
		Kind:    fromPrimitiveKind(p.Kind),
		CenterX: float32j(p.CenterX), CenterY: float32j(p.CenterY),
		RadiusX: float32j(p.RadiusX), RadiusY: float32j(p.RadiusY), Feather: float32j(p.Feather),
		RotationDegrees: float32j(p.RotationDegrees),
		X0:              float32j(p.X0), Y0: float32j(p.Y0), X1: float32j(p.X1), Y1: float32j(p.Y1),
	}
}

func (p Primitive) toMask() (mask.Primitive, error) {
	kind, err := p.Kind.toMask()
	if err != nil {
		return mask.Primitive{}, err
	}
	return mask.Primitive{
		Kind:    kind,
		CenterX: float32(p.CenterX), CenterY: float32(p.CenterY),
		RadiusX: float32(p.RadiusX), RadiusY: float32(p.RadiusY), Feather: float32(p.Feather),
		RotationDegrees: float32(p.RotationDegrees),
		X0:              float32(p.X0), Y0: float32(p.Y0), X1: float32(p.X1), Y1: float32(p.Y1),
	}, nil
}

// Term mirrors mask.Term.
type Term struct {
	Primitive  Primitive `json:"primitive"`
	Inverted   bool      `json:"inverted,omitempty"`
	Subtracted bool      `json:"subtracted,omitempty"`
}

// Mask mirrors mask.Mask.
type Mask struct {
	Terms []Term `json:"terms"`
}

func fromMask(m mask.Mask) Mask {
	terms := make([]Term, len(m.Terms))
	for i, t := range m.Terms {
		terms[i] = Term{Primitive: fromPrimitive(t.Primitive), Inverted: t.Inverted, Subtracted: t.Subtracted}
	}
	return Mask{Terms: terms}
}

func (m Mask) toMask() (mask.Mask, error) {
	terms := make([]mask.Term, len(m.Terms))
	for i, t := range m.Terms {
		p, err := t.Primitive.toMask()
		if err != nil {
			return mask.Mask{}, err
		}
		terms[i] = mask.Term{Primitive: p, Inverted: t.Inverted, Subtracted: t.Subtracted}
	}
	return mask.Mask{Terms: terms}, nil
}

// MaskedEdit mirrors compiler.MaskedEdit.
type MaskedEdit struct {
	Mask Mask       `json:"mask"`
	Edit GlobalEdit `json:"edit"`
}

// cropPolicy mirrors geom.CropPolicy as a stable string.
type cropPolicy string

const (
	cropPreserveBounds cropPolicy = "preserve_bounds"
	cropPreserveAspect cropPolicy = "preserve_aspect"
)

func fromCropPolicy(p geom.CropPolicy) cropPolicy {
	if p == geom.PreserveAspect {
		return cropPreserveAspect
	}
	return cropPreserveBounds
}

func (p cropPolicy) toGeom() geom.CropPolicy {
	if p == cropPreserveAspect {
		return geom.PreserveAspect
	}
	return geom.PreserveBounds
}

// Edit mirrors compiler.Edit field-for-field for JSON persistence .
type Edit struct {
	Crop            *Rectangle `json:"crop,omitempty"`
	RotationDegrees float32j   `json:"rotation_degrees,omitempty"`
	CropPolicy      cropPolicy `json:"crop_policy,omitempty"`

	MaskedEdits []MaskedEdit `json:"masked_edits"`

	ResizeWidth  uint32 `json:"resize_width,omitempty"`
	ResizeHeight uint32 `json:"resize_height,omitempty"`

	FrameWidth  uint32 `json:"frame_width,omitempty"`
	FrameHeight uint32 `json:"frame_height,omitempty"`
}

// FromCompiler converts a compiler.Edit into its JSON mirror.
func FromCompiler(e compiler.Edit) Edit {
	masked := make([]MaskedEdit, len(e.MaskedEdits))
	for i, me := range e.MaskedEdits {
		masked[i] = MaskedEdit{Mask: fromMask(me.Mask), Edit: fromGlobalEdit(me.Edit)}
	}
	return Edit{
		Crop: fromRectangle(e.Crop), RotationDegrees: float32j(e.RotationDegrees),
		CropPolicy:  fromCropPolicy(e.CropPolicy),
		MaskedEdits: masked,
		ResizeWidth: e.ResizeWidth, ResizeHeight: e.ResizeHeight,
		FrameWidth: e.FrameWidth, FrameHeight: e.FrameHeight,
	}
}

// ToCompiler converts the JSON mirror back into a compiler.Edit.
func (e Edit) ToCompiler() (compiler.Edit, error) {
	masked := make([]compiler.MaskedEdit, len(e.MaskedEdits))
	for i, me := range e.MaskedEdits {
		m, err := me.Mask.toMask()
		if err != nil {
			return compiler.Edit{}, err
		}
		masked[i] = compiler.MaskedEdit{Mask: m, Edit: me.Edit.toCompiler()}
	}
	return compiler.Edit{
		Crop: e.Crop.toCompiler(), RotationDegrees: float32(e.RotationDegrees),
		CropPolicy:  e.CropPolicy.toGeom(),
		MaskedEdits: masked,
		ResizeWidth: e.ResizeWidth, ResizeHeight: e.ResizeHeight,
		FrameWidth: e.FrameWidth, FrameHeight: e.FrameHeight,
	}, nil
}

// Marshal serializes e to JSON.
func Marshal(e compiler.Edit) ([]byte, error) {
	return json.Marshal(FromCompiler(e))
}

// Parse deserializes data into a compiler.Edit.
func Parse(data []byte) (compiler.Edit, error) {
	var e Edit
	if err := json.Unmarshal(data, &e); err != nil {
		return compiler.Edit{}, fmt.Errorf("editjson: parse: %w", err)
	}
	return e.ToCompiler()
}
