package compiler

import (
	"github.com/rasterlab/photoedit/geom"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/mask"
)

// identityCurve is the trivial 2-point curve every curve channel starts
// from; a channel compiles to nothing unless its points differ from this.
var identityCurve = []CurvePoint{{X: 0, Y: 0}, {X: 1, Y: 1}}

func isIdentityCurve(points []CurvePoint) bool {
	if len(points) == 0 {
		return true
	}
	if len(points) != len(identityCurve) {
		return false
	}
	for i, p := range points {
		if p != identityCurve[i] {
			return false
		}
	}
	return true
}

// Compile lowers edit into a new ir.Module, implementing // five-step algorithm. sourceWidth/sourceHeight are the source image's
// pixel dimensions, needed to size mask primitives and the rotate-crop
// output at each point in the pipeline where the "working resolution"
// changes. The returned slice holds one mask result Id per masked edit,
// in order, for the engine to surface as UI indicator textures .
func Compile(edit Edit, sourceWidth, sourceHeight uint32) (*ir.Module, []ir.Id) {
	module := ir.NewModule()
	module.PushOp(&ir.Input{OpBase: ir.OpBase{ResultID: module.InputId()}})

	current := module.InputId()
	width, height := sourceWidth, sourceHeight
	maskIDs := make([]ir.Id, 0, len(edit.MaskedEdits))

	if edit.Crop != nil && (edit.RotationDegrees != 0 || *edit.Crop != (Rectangle{CenterX: 0.5, CenterY: 0.5, Width: 1, Height: 1})) {
		shrunkW, shrunkH := shrinkCrop(*edit.Crop, edit.RotationDegrees, edit.CropPolicy, width, height)
		resultID := module.AllocId()
		module.PushOp(&ir.RotateAndCrop{
			OpBase:  ir.OpBase{ResultID: resultID},
			Input:   current,
			CenterX: edit.Crop.CenterX, CenterY: edit.Crop.CenterY,
			Width: shrunkW, Height: shrunkH,
			RotationDegrees: edit.RotationDegrees,
		})
		current = resultID
		width, height = shrunkPixelDims(shrunkW, shrunkH, width, height)
	}

	for _, me := range edit.MaskedEdits {
		maskID := mask.Compile(module, me.Mask, width, height)
		maskIDs = append(maskIDs, maskID)
		adjusted := emitGlobalEdit(module, me.Edit, current)

		resultID := module.AllocId()
		module.PushOp(&ir.ApplyMaskedEdits{
			OpBase: ir.OpBase{ResultID: resultID},
			Base:   current, Adjusted: adjusted, Mask: maskID,
		})
		current = resultID
	}

	if edit.ResizeWidth != 0 && edit.ResizeHeight != 0 {
		resultID := module.AllocId()
		module.PushOp(&ir.Resize{OpBase: ir.OpBase{ResultID: resultID}, Input: current, Width: edit.ResizeWidth, Height: edit.ResizeHeight})
		current = resultID
		width, height = edit.ResizeWidth, edit.ResizeHeight
	}
	if edit.FrameWidth != 0 && edit.FrameHeight != 0 {
		resultID := module.AllocId()
		module.PushOp(&ir.Framing{OpBase: ir.OpBase{ResultID: resultID}, Input: current, Width: edit.FrameWidth, Height: edit.FrameHeight})
		current = resultID
		width, height = edit.FrameWidth, edit.FrameHeight
	}

	module.SetOutputId(current)
	module.AddStatisticsOps()
	return module, maskIDs
}

// emitGlobalEdit emits the fixed-order adjustment subgraph
// reading input, skipping any step whose parameter is identity, and
// returns the Id of the final adjusted image.
func emitGlobalEdit(module *ir.Module, edit GlobalEdit, input ir.Id) ir.Id {
	current := input

	if edit.Exposure != 0 {
		id := module.AllocId()
		module.PushOp(&ir.AdjustExposure{OpBase: ir.OpBase{ResultID: id}, Input: current, Stops: edit.Exposure})
		current = id
	}

	if edit.Contrast != 0 {
		statsID := module.AllocId()
		module.PushOp(&ir.ComputeBasicStatistics{OpBase: ir.OpBase{ResultID: statsID}, Input: current})
		id := module.AllocId()
		module.PushOp(&ir.AdjustContrast{OpBase: ir.OpBase{ResultID: id}, Input: current, BasicStats: statsID, Amount: edit.Contrast})
		current = id
	}

	if edit.Highlights != 0 || edit.Shadows != 0 {
		id := module.AllocId()
		module.PushOp(&ir.AdjustHighlightsAndShadows{OpBase: ir.OpBase{ResultID: id}, Input: current, Highlights: edit.Highlights, Shadows: edit.Shadows})
		current = id
	}

	if edit.Temperature != 0 || edit.Tint != 0 {
		id := module.AllocId()
		module.PushOp(&ir.AdjustTemperatureAndTint{OpBase: ir.OpBase{ResultID: id}, Input: current, Temperature: edit.Temperature, Tint: edit.Tint})
		current = id
	}

	if edit.Vibrance != 0 {
		id := module.AllocId()
		module.PushOp(&ir.AdjustVibrance{OpBase: ir.OpBase{ResultID: id}, Input: current, Amount: edit.Vibrance})
		current = id
	}

	if edit.Saturation != 0 {
		id := module.AllocId()
		module.PushOp(&ir.AdjustSaturation{OpBase: ir.OpBase{ResultID: id}, Input: current, Amount: edit.Saturation})
		current = id
	}

	current = emitCurveIfNeeded(module, current, ir.CurveLuma, edit.CurveLuma)
	current = emitCurveIfNeeded(module, current, ir.CurveRed, edit.CurveRed)
	current = emitCurveIfNeeded(module, current, ir.CurveGreen, edit.CurveGreen)
	current = emitCurveIfNeeded(module, current, ir.CurveBlue, edit.CurveBlue)

	if edit.ColorMix != ([8]ColorMixGroup{}) {
		id := module.AllocId()
		module.PushOp(&ir.ColorMix{OpBase: ir.OpBase{ResultID: id}, Input: current, Groups: toIRColorMixGroups(edit.ColorMix)})
		current = id
	}

	if edit.DehazeStrength != 0 {
		auxID := module.AllocId()
		module.PushOp(&ir.DehazePrepare{OpBase: ir.OpBase{ResultID: auxID}, Input: current})
		id := module.AllocId()
		module.PushOp(&ir.ApplyDehaze{OpBase: ir.OpBase{ResultID: id}, Input: current, Aux: auxID, Strength: edit.DehazeStrength})
		current = id
	}

	if edit.VignetteAmount != 0 {
		id := module.AllocId()
		module.PushOp(&ir.ApplyVignette{
			OpBase: ir.OpBase{ResultID: id}, Input: current,
			Amount: edit.VignetteAmount, Midpoint: edit.VignetteMidpoint,
			Roundness: edit.VignetteRoundness, Feather: edit.VignetteFeather,
		})
		current = id
	}

	return current
}

func emitCurveIfNeeded(module *ir.Module, input ir.Id, channel ir.CurveChannel, points []CurvePoint) ir.Id {
	if isIdentityCurve(points) {
		return input
	}
	id := module.AllocId()
	module.PushOp(&ir.ApplyCurve{OpBase: ir.OpBase{ResultID: id}, Input: input, Channel: channel, Points: toIRCurvePoints(points)})
	return id
}

func toIRCurvePoints(points []CurvePoint) []ir.CurvePoint {
	out := make([]ir.CurvePoint, len(points))
	for i, p := range points {
		out[i] = ir.CurvePoint{X: p.X, Y: p.Y}
	}
	return out
}

func toIRColorMixGroups(groups [8]ColorMixGroup) [8]ir.ColorMixGroup {
	var out [8]ir.ColorMixGroup
	for i, g := range groups {
		out[i] = ir.ColorMixGroup{HueShift: g.HueShift, SaturationScale: g.SaturationScale, LuminanceScale: g.LuminanceScale}
	}
	return out
}

// shrinkCrop computes the (possibly shrunk) normalized crop size via
// geom.ShrinkCropForRotation, in the image's own pixel space
// where X/Y units match.
func shrinkCrop(crop Rectangle, rotationDegrees float32, policy geom.CropPolicy, sourceWidth, sourceHeight uint32) (float32, float32) {
	shrunk := geom.ShrinkCropForRotation(
		float64(sourceWidth), float64(sourceHeight),
		geom.Point{X: float64(crop.CenterX), Y: float64(crop.CenterY)},
		geom.Point{X: float64(crop.Width), Y: float64(crop.Height)},
		float64(rotationDegrees), policy,
	)
	return float32(shrunk.X), float32(shrunk.Y)
}

// shrunkPixelDims converts a (possibly shrunk) normalized crop size into
// pixel dimensions the same way ops.RotateAndCropOp sizes its output
// texture: scaled by the longer source edge, never zero.
func shrunkPixelDims(shrunkW, shrunkH float32, sourceWidth, sourceHeight uint32) (uint32, uint32) {
	longerEdge := sourceWidth
	if sourceHeight > longerEdge {
		longerEdge = sourceHeight
	}
	width := uint32(shrunkW * float32(longerEdge))
	height := uint32(shrunkH * float32(longerEdge))
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}
	return width, height
}

// MaskDimensions computes the working resolution at compile time,
// accounting for an optional rotate-crop step, as used internally by
// Compile for sizing mask primitives. Exposed for tests and for callers
// that need to predict Mask.Compile's width/height without re-running
// Compile.
func MaskDimensions(edit Edit, sourceWidth, sourceHeight uint32) (uint32, uint32) {
	if edit.Crop == nil || (edit.RotationDegrees == 0 && *edit.Crop == (Rectangle{CenterX: 0.5, CenterY: 0.5, Width: 1, Height: 1})) {
		return sourceWidth, sourceHeight
	}
	shrunkW, shrunkH := shrinkCrop(*edit.Crop, edit.RotationDegrees, edit.CropPolicy, sourceWidth, sourceHeight)
	return shrunkPixelDims(shrunkW, shrunkH, sourceWidth, sourceHeight)
}
