package ops

import (
	"fmt"

	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/value"
)

// resettable is satisfied by every op implementation: Reset returns its
// ring buffer(s) to Available at the start of a module execution , a no-op for implementations that own no ring buffer.
type resettable interface {
	Reset()
}

// OpImplCollection lazily constructs and holds exactly one implementation
// instance per op Kind, instead of the source's two divergent eager-init
// collections (one of which references the non-authoritative
// CollectStatistics, discarded per the Open Question resolution in
// DESIGN.md). Each implementation is built on first use and reused for
// the lifetime of the Engine, since its pipelines and samplers are
// immutable and its ring buffer is reset, not rebuilt, between
// executions.
type OpImplCollection struct {
	rt *Runtime

	exposure             *Exposure
	contrast             *Contrast
	highlightsAndShadows *HighlightsAndShadows
	temperatureAndTint   *TemperatureAndTint
	vibrance             *Vibrance
	saturation           *Saturation
	curve                *Curve
	colorMix             *ColorMix
	dehazePrepare        *DehazePrepare
	applyDehaze          *ApplyDehaze
	vignette             *Vignette
	rotateAndCrop        *RotateAndCropOp
	resize               *Resize
	framing              *Framing
	basicStatistics      *ComputeBasicStatistics
	histogram            *ComputeHistogram
	collectForEditor     *CollectDataForEditor
	globalMask           *ComputeGlobalMask
	radialGradientMask   *ComputeRadialGradientMask
	linearGradientMask   *ComputeLinearGradientMask
	invertMask           *InvertMask
	addMask              *AddMask
	subtractMask         *SubtractMask
	applyMaskedEdits     *ApplyMaskedEdits

	all []resettable
}

// NewOpImplCollection builds an empty collection; every implementation is
// constructed lazily by EncodeOp on first encounter of its Kind.
func NewOpImplCollection(rt *Runtime) *OpImplCollection {
	return &OpImplCollection{rt: rt}
}

// ResetAll returns every constructed implementation's ring buffer(s) to
// Available, called by the engine at the start of each execute() .
func (c *OpImplCollection) ResetAll() {
	for _, r := range c.all {
		r.Reset()
	}
}

func (c *OpImplCollection) track(r resettable) { c.all = append(c.all, r) }

// EncodeOp dispatches op to its implementation, constructing the
// implementation on first use, and encodes its GPU commands onto encoder
// against store. Input (the module's entry marker) is never passed here;
// the engine seeds it directly into the store before encoding begins.
func (c *OpImplCollection) EncodeOp(encoder gpu.Encoder, op ir.Op, store *value.Store) error {
	switch o := op.(type) {
	case *ir.AdjustExposure:
		impl, err := c.getExposure()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.AdjustContrast:
		impl, err := c.getContrast()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.AdjustHighlightsAndShadows:
		impl, err := c.getHighlightsAndShadows()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.AdjustTemperatureAndTint:
		impl, err := c.getTemperatureAndTint()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.AdjustVibrance:
		impl, err := c.getVibrance()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.AdjustSaturation:
		impl, err := c.getSaturation()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ApplyCurve:
		impl, err := c.getCurve()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ColorMix:
		impl, err := c.getColorMix()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.DehazePrepare:
		impl, err := c.getDehazePrepare()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ApplyDehaze:
		impl, err := c.getApplyDehaze()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ApplyVignette:
		impl, err := c.getVignette()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.RotateAndCrop:
		impl, err := c.getRotateAndCrop()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.Resize:
		impl, err := c.getResize()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.Framing:
		impl, err := c.getFraming()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ComputeBasicStatistics:
		impl, err := c.getBasicStatistics()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ComputeHistogram:
		impl, err := c.getHistogram()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.CollectDataForEditor:
		impl, err := c.getCollectForEditor()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ComputeGlobalMask:
		impl, err := c.getGlobalMask()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ComputeRadialGradientMask:
		impl, err := c.getRadialGradientMask()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ComputeLinearGradientMask:
		impl, err := c.getLinearGradientMask()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.InvertMask:
		impl, err := c.getInvertMask()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.AddMask:
		impl, err := c.getAddMask()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.SubtractMask:
		impl, err := c.getSubtractMask()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.ApplyMaskedEdits:
		impl, err := c.getApplyMaskedEdits()
		if err != nil {
			return err
		}
		return impl.EncodeCommands(encoder, o, store)
	case *ir.Input:
		return nil
	default:
		return fmt.Errorf("ops: unrecognized op kind %s", op.Kind())
	}
}

// PendingReadback returns the GPU buffer id a CollectDataForEditor result
// id maps to, for the engine's post-submit readback pass, or false if the
// collection never encoded a CollectDataForEditor op (no statistics ops
// appear in the module).
func (c *OpImplCollection) PendingReadback(id ir.Id) (gpu.BufferID, bool) {
	if c.collectForEditor == nil {
		return 0, false
	}
	buf, ok := c.collectForEditor.Pending[id]
	return buf, ok
}

func (c *OpImplCollection) getExposure() (*Exposure, error) {
	if c.exposure == nil {
		impl, err := NewExposure(c.rt)
		if err != nil {
			return nil, err
		}
		c.exposure = impl
		c.track(impl)
	}
	return c.exposure, nil
}

func (c *OpImplCollection) getContrast() (*Contrast, error) {
	if c.contrast == nil {
		impl, err := NewContrast(c.rt)
		if err != nil {
			return nil, err
		}
		c.contrast = impl
		c.track(impl)
	}
	return c.contrast, nil
}

func (c *OpImplCollection) getHighlightsAndShadows() (*HighlightsAndShadows, error) {
	if c.highlightsAndShadows == nil {
		impl, err := NewHighlightsAndShadows(c.rt)
		if err != nil {
			return nil, err
		}
		c.highlightsAndShadows = impl
		c.track(impl)
	}
	return c.highlightsAndShadows, nil
}

func (c *OpImplCollection) getTemperatureAndTint() (*TemperatureAndTint, error) {
	if c.temperatureAndTint == nil {
		impl, err := NewTemperatureAndTint(c.rt)
		if err != nil {
			return nil, err
		}
		c.temperatureAndTint = impl
		c.track(impl)
	}
	return c.temperatureAndTint, nil
}

func (c *OpImplCollection) getVibrance() (*Vibrance, error) {
	if c.vibrance == nil {
		impl, err := NewVibrance(c.rt)
		if err != nil {
			return nil, err
		}
		c.vibrance = impl
		c.track(impl)
	}
	return c.vibrance, nil
}

func (c *OpImplCollection) getSaturation() (*Saturation, error) {
	if c.saturation == nil {
		impl, err := NewSaturation(c.rt)
		if err != nil {
			return nil, err
		}
		c.saturation = impl
		c.track(impl)
	}
	return c.saturation, nil
}

func (c *OpImplCollection) getCurve() (*Curve, error) {
	if c.curve == nil {
		impl, err := NewCurve(c.rt)
		if err != nil {
			return nil, err
		}
		c.curve = impl
		c.track(impl)
	}
	return c.curve, nil
}

func (c *OpImplCollection) getColorMix() (*ColorMix, error) {
	if c.colorMix == nil {
		impl, err := NewColorMix(c.rt)
		if err != nil {
			return nil, err
		}
		c.colorMix = impl
		c.track(impl)
	}
	return c.colorMix, nil
}

func (c *OpImplCollection) getDehazePrepare() (*DehazePrepare, error) {
	if c.dehazePrepare == nil {
		impl, err := NewDehazePrepare(c.rt)
		if err != nil {
			return nil, err
		}
		c.dehazePrepare = impl
		c.track(impl)
	}
	return c.dehazePrepare, nil
}

func (c *OpImplCollection) getApplyDehaze() (*ApplyDehaze, error) {
	if c.applyDehaze == nil {
		impl, err := NewApplyDehaze(c.rt)
		if err != nil {
			return nil, err
		}
		c.applyDehaze = impl
		c.track(impl)
	}
	return c.applyDehaze, nil
}

func (c *OpImplCollection) getVignette() (*Vignette, error) {
	if c.vignette == nil {
		impl, err := NewVignette(c.rt)
		if err != nil {
			return nil, err
		}
		c.vignette = impl
		c.track(impl)
	}
	return c.vignette, nil
}

func (c *OpImplCollection) getRotateAndCrop() (*RotateAndCropOp, error) {
	if c.rotateAndCrop == nil {
		impl, err := NewRotateAndCrop(c.rt)
		if err != nil {
			return nil, err
		}
		c.rotateAndCrop = impl
		c.track(impl)
	}
	return c.rotateAndCrop, nil
}

func (c *OpImplCollection) getResize() (*Resize, error) {
	if c.resize == nil {
		impl, err := NewResize(c.rt)
		if err != nil {
			return nil, err
		}
		c.resize = impl
		c.track(impl)
	}
	return c.resize, nil
}

func (c *OpImplCollection) getFraming() (*Framing, error) {
	if c.framing == nil {
		impl, err := NewFraming(c.rt)
		if err != nil {
			return nil, err
		}
		c.framing = impl
		c.track(impl)
	}
	return c.framing, nil
}

func (c *OpImplCollection) getBasicStatistics() (*ComputeBasicStatistics, error) {
	if c.basicStatistics == nil {
		impl, err := NewComputeBasicStatistics(c.rt)
		if err != nil {
			return nil, err
		}
		c.basicStatistics = impl
		c.track(impl)
	}
	return c.basicStatistics, nil
}

func (c *OpImplCollection) getHistogram() (*ComputeHistogram, error) {
	if c.histogram == nil {
		impl, err := NewComputeHistogram(c.rt)
		if err != nil {
			return nil, err
		}
		c.histogram = impl
		c.track(impl)
	}
	return c.histogram, nil
}

func (c *OpImplCollection) getCollectForEditor() (*CollectDataForEditor, error) {
	if c.collectForEditor == nil {
		impl, err := NewCollectDataForEditor(c.rt)
		if err != nil {
			return nil, err
		}
		c.collectForEditor = impl
		c.track(impl)
	}
	return c.collectForEditor, nil
}

func (c *OpImplCollection) getGlobalMask() (*ComputeGlobalMask, error) {
	if c.globalMask == nil {
		impl, err := NewComputeGlobalMask(c.rt)
		if err != nil {
			return nil, err
		}
		c.globalMask = impl
		c.track(impl)
	}
	return c.globalMask, nil
}

func (c *OpImplCollection) getRadialGradientMask() (*ComputeRadialGradientMask, error) {
	if c.radialGradientMask == nil {
		impl, err := NewComputeRadialGradientMask(c.rt)
		if err != nil {
			return nil, err
		}
		c.radialGradientMask = impl
		c.track(impl)
	}
	return c.radialGradientMask, nil
}

func (c *OpImplCollection) getLinearGradientMask() (*ComputeLinearGradientMask, error) {
	if c.linearGradientMask == nil {
		impl, err := NewComputeLinearGradientMask(c.rt)
		if err != nil {
			return nil, err
		}
		c.linearGradientMask = impl
		c.track(impl)
	}
	return c.linearGradientMask, nil
}

func (c *OpImplCollection) getInvertMask() (*InvertMask, error) {
	if c.invertMask == nil {
		impl, err := NewInvertMask(c.rt)
		if err != nil {
			return nil, err
		}
		c.invertMask = impl
		c.track(impl)
	}
	return c.invertMask, nil
}

func (c *OpImplCollection) getAddMask() (*AddMask, error) {
	if c.addMask == nil {
		impl, err := NewAddMask(c.rt)
		if err != nil {
			return nil, err
		}
		c.addMask = impl
		c.track(impl)
	}
	return c.addMask, nil
}

func (c *OpImplCollection) getSubtractMask() (*SubtractMask, error) {
	if c.subtractMask == nil {
		impl, err := NewSubtractMask(c.rt)
		if err != nil {
			return nil, err
		}
		c.subtractMask = impl
		c.track(impl)
	}
	return c.subtractMask, nil
}

func (c *OpImplCollection) getApplyMaskedEdits() (*ApplyMaskedEdits, error) {
	if c.applyMaskedEdits == nil {
		impl, err := NewApplyMaskedEdits(c.rt)
		if err != nil {
			return nil, err
		}
		c.applyMaskedEdits = impl
		c.track(impl)
	}
	return c.applyMaskedEdits, nil
}
