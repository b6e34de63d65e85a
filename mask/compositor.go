package mask

import "github.com/rasterlab/photoedit/ir"

// PrimitiveKind selects which mask primitive a MaskTerm evaluates.
type PrimitiveKind int

const (
	Global PrimitiveKind = iota
	RadialGradient
	LinearGradient
)

// Primitive carries the scalar parameters for one mask primitive. Only
// the fields relevant to Kind are meaningful.
type Primitive struct {
	Kind PrimitiveKind

	// RadialGradient
	CenterX, CenterY float32
	RadiusX, RadiusY float32
	Feather          float32
	RotationDegrees  float32

	// LinearGradient
	X0, Y0 float32
	X1, Y1 float32
}

// Term is one primitive mask plus inversion/subtraction flags, composed
// left-to-right with the terms before it.
type Term struct {
	Primitive  Primitive
	Inverted   bool
	Subtracted bool
}

// Mask is a sequence of Terms composed left-to-right.
type Mask struct {
	Terms []Term
}

// Compile lowers m into the primitive-specific ops, optional InvertMask
// per term, and a left-to-right fold of AddMask/SubtractMask, against a
// working resolution of width x height. It appends ops to module and
// returns the Id of the final composed grayscale mask.
//
// Compile panics if m has no terms: the compiler invariant is
// that the first masked edit's mask is always the global primitive, so a
// well-formed Mask is never empty.
func Compile(module *ir.Module, m Mask, width, height uint32) ir.Id {
	if len(m.Terms) == 0 {
		panic("mask: Compile called with an empty Mask")
	}

	current := compileTerm(module, m.Terms[0], width, height)
	for _, term := range m.Terms[1:] {
		termID := compileTerm(module, term, width, height)
		resultID := module.AllocId()
		if term.Subtracted {
			module.PushOp(&ir.SubtractMask{OpBase: ir.OpBase{ResultID: resultID}, A: current, B: termID})
		} else {
			module.PushOp(&ir.AddMask{OpBase: ir.OpBase{ResultID: resultID}, A: current, B: termID})
		}
		current = resultID
	}
	return current
}

// compileTerm emits the primitive op for term, followed by an InvertMask
// if term.Inverted, and returns the resulting Id.
func compileTerm(module *ir.Module, term Term, width, height uint32) ir.Id {
	primID := module.AllocId()
	switch term.Primitive.Kind {
	case Global:
		module.PushOp(&ir.ComputeGlobalMask{OpBase: ir.OpBase{ResultID: primID}, Width: width, Height: height})
	case RadialGradient:
		p := term.Primitive
		module.PushOp(&ir.ComputeRadialGradientMask{
			OpBase: ir.OpBase{ResultID: primID}, Width: width, Height: height,
			CenterX: p.CenterX, CenterY: p.CenterY,
			RadiusX: p.RadiusX, RadiusY: p.RadiusY,
			Feather: p.Feather, RotationDegrees: p.RotationDegrees,
		})
	case LinearGradient:
		p := term.Primitive
		module.PushOp(&ir.ComputeLinearGradientMask{
			OpBase: ir.OpBase{ResultID: primID}, Width: width, Height: height,
			X0: p.X0, Y0: p.Y0, X1: p.X1, Y1: p.Y1,
		})
	default:
		panic("mask: unknown primitive kind")
	}

	if !term.Inverted {
		return primID
	}
	invID := module.AllocId()
	module.PushOp(&ir.InvertMask{OpBase: ir.OpBase{ResultID: invID}, Input: primID})
	return invID
}
