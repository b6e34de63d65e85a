// Package engine drives one module execution end to end: seed the input
// image, encode every op onto a single command encoder, submit it, and
// surface the output image plus any pending statistics readback . It owns the ValueStore and the op implementation collection for
// the lifetime of the host process; Execute is the sole entry point.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
	"github.com/rasterlab/photoedit/logging"
	"github.com/rasterlab/photoedit/ops"
	"github.com/rasterlab/photoedit/value"
)

// State is the engine's execution state machine: Idle between
// executions, Encoding while ops are being recorded, Submitted once the
// command buffer has been handed to the queue, and ReadbackPending while
// a statistics future is outstanding. Execute always returns to Idle
// before it returns; ReadbackPending describes the window in which the
// future itself may still be unresolved, not a state Execute blocks in.
type State int

const (
	StateIdle State = iota
	StateEncoding
	StateSubmitted
	StateReadbackPending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEncoding:
		return "encoding"
	case StateSubmitted:
		return "submitted"
	case StateReadbackPending:
		return "readback_pending"
	default:
		return "unknown"
	}
}

// ErrBusy is returned by Execute when a prior execution has not yet
// returned. The engine accepts no re-entrancy: a second call
// must wait for the first to complete rather than interleave encoders.
var ErrBusy = errors.New("engine: execution already in progress")

// ExecutionResult is everything Execute hands back to the host: the final output image, one mask result texture per masked edit
// for UI indicator overlays, and a statistics future when the module
// ends with a readback op.
type ExecutionResult struct {
	Output      *value.Image
	MaskResults map[ir.Id]*value.Image
	Statistics  *StatisticsFuture
}

// Engine owns the GPU-facing runtime, the ValueStore, and the op
// implementation collection for one device. Not safe for concurrent
// Execute calls; Execute itself enforces that with ErrBusy.
type Engine struct {
	device gpu.Device
	rt     *ops.Runtime
	store  *value.Store
	impls  *ops.OpImplCollection

	mu    sync.Mutex
	state State
}

// New constructs an Engine bound to device. The runtime, value store and
// op implementation collection are created once and reused across every
// Execute call, so pipelines and bind group layouts amortize over the
// session.
func New(device gpu.Device) *Engine {
	rt := ops.NewRuntime(device)
	e := &Engine{
		device: device,
		rt:     rt,
		store:  value.New(device),
		impls:  ops.NewOpImplCollection(rt),
		state:  StateIdle,
	}
	logging.Logger().Info("engine: constructed")
	return e
}

// State reports the engine's current execution state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Execute runs module against input, implementing six-step
// algorithm:
//
// 1. Insert input under module.InputId().
// 2. Open a single command encoder.
// 3. Dispatch every op in order to its implementation; after any op
// whose result is an image with more than one mip level, encode a
// mipmap generation pass on the same encoder so downstream samplers
// see a populated chain.
// 4. Submit the encoder.
// 5. If the module ends with a CollectDataForEditor, issue the
// histogram readback and expose it as a StatisticsFuture.
// 6. Return the value at module.OutputId() and the requested mask
// result textures.
//
// On any failure after validation the ValueStore is rolled back with
// RollbackTo (values created by this execution are released) and the
// error is returned: encoding errors are wrapped with the op kind and
// result id, and encoder, finish and submit failures come back as
// *gpu.ResourceError.
func (e *Engine) Execute(ctx context.Context, module *ir.Module, maskResultIDs []ir.Id, input *value.Image) (*ExecutionResult, error) {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.state = StateEncoding
	e.mu.Unlock()
	defer e.setState(StateIdle)

	logging.Logger().Debug("engine: execute starting", "ops", module.Len())

	if err := module.Validate(); err != nil {
		return nil, err
	}

	snap := e.store.Snapshot()
	e.impls.ResetAll()
	e.store.Insert(module.InputId(), input)

	encoder, err := e.device.CreateCommandEncoder("engine_execute")
	if err != nil {
		e.store.RollbackTo(snap)
		return nil, &gpu.ResourceError{Op: "CreateCommandEncoder", Err: err}
	}

	for _, op := range module.Ops() {
		if _, isInput := op.(*ir.Input); isInput {
			continue
		}
		if err := e.impls.EncodeOp(encoder, op, e.store); err != nil {
			e.store.RollbackTo(snap)
			return nil, fmt.Errorf("engine: encoding %s (result %s): %w", op.Kind(), op.Result(), err)
		}
		if err := e.generateMipsIfNeeded(encoder, op.Result()); err != nil {
			e.store.RollbackTo(snap)
			return nil, err
		}
	}

	cmdBuf, err := encoder.Finish()
	if err != nil {
		e.store.RollbackTo(snap)
		return nil, &gpu.ResourceError{Op: "Finish", Err: err}
	}

	e.setState(StateSubmitted)
	if err := e.device.Submit(cmdBuf); err != nil {
		e.store.RollbackTo(snap)
		return nil, &gpu.ResourceError{Op: "Submit", Err: err}
	}

	output, err := e.store.Image(module.OutputId())
	if err != nil {
		e.store.RollbackTo(snap)
		return nil, err
	}

	maskResults := make(map[ir.Id]*value.Image, len(maskResultIDs))
	for _, id := range maskResultIDs {
		img, err := e.store.Image(id)
		if err != nil {
			e.store.RollbackTo(snap)
			return nil, err
		}
		maskResults[id] = img
	}

	stats, err := e.pendingStatistics(module)
	if err != nil {
		e.store.RollbackTo(snap)
		return nil, err
	}
	if stats != nil {
		e.setState(StateReadbackPending)
	}

	logging.Logger().Debug("engine: execute finished", "ops", module.Len())
	return &ExecutionResult{Output: output, MaskResults: maskResults, Statistics: stats}, nil
}

// generateMipsIfNeeded encodes a mipmap generation pass for result when
// it names an Image with more than one mip level. No op implementation
// currently populates mip levels beyond the base one itself, so the engine
// closes that gap generically for any current or future op that
// allocates a multi-level Image.
func (e *Engine) generateMipsIfNeeded(encoder gpu.Encoder, result ir.Id) error {
	img, err := e.store.Image(result)
	if err != nil {
		// result names a Buffer (statistics ops) or nothing was produced
		// at this id (shouldn't happen once EncodeOp has succeeded for
		// an image-producing op); either way there is no mip chain.
		return nil
	}
	if img.Properties.MipLevelCount <= 1 {
		return nil
	}
	if err := e.device.GenerateMipmaps(encoder, img.Texture, img.Properties.Width, img.Properties.Height, img.Properties.MipLevelCount); err != nil {
		return &gpu.ResourceError{Op: "GenerateMipmaps", Err: err}
	}
	return nil
}

// pendingStatistics locates the module's CollectDataForEditor op, if any,
// and wraps its pending histogram buffer in a StatisticsFuture the host
// resolves once the GPU signals completion.
func (e *Engine) pendingStatistics(module *ir.Module) (*StatisticsFuture, error) {
	for _, op := range module.Ops() {
		collect, ok := op.(*ir.CollectDataForEditor)
		if !ok {
			continue
		}
		bufID, ok := e.impls.PendingReadback(collect.Result())
		if !ok {
			return nil, nil
		}
		buf, err := e.store.Buffer(collect.Histogram)
		if err != nil {
			return nil, err
		}
		return &StatisticsFuture{device: e.device, bufID: bufID, size: buf.Properties.Size}, nil
	}
	return nil, nil
}

// StatisticsFuture resolves to the histogram computed by a module's
// statistics tail. Resolve may be called at most meaningfully once; it
// blocks on the GPU signalling the buffer mapping complete, per
// Device.ReadBuffer's contract.
type StatisticsFuture struct {
	device gpu.Device
	bufID  gpu.BufferID
	size   uint64
}

// Resolve reads back the histogram buffer and parses it. A cancelled or
// failed mapping surfaces as *gpu.ReadbackError.
func (f *StatisticsFuture) Resolve(ctx context.Context) (Histogram, error) {
	data, err := f.device.ReadBuffer(ctx, f.bufID, 0, f.size)
	if err != nil {
		return Histogram{}, &gpu.ReadbackError{Err: err}
	}
	return parseHistogram(data)
}
