// Package ir defines the typed, SSA-like intermediate representation that
// the compiler produces and the engine executes: a flat-ordered Module of
// closed-variant Ops addressed by monotonically increasing Ids.
//
// The representation intentionally mirrors a DAG rather than a tree: the
// final image feeds both the ComputeHistogram and the
// CollectDataForEditor of the statistics tail the module always appends,
// so edges fan out even though ops are emitted (and executed) in one
// flat, linear order.
package ir

import "fmt"

// Id is an opaque handle naming an intermediate value within one Module.
// Ids are unique within a Module and strictly increasing in emission
// order; there is no cross-Module meaning.
type Id uint32

// InvalidId is never produced by an Allocator; it marks an absent operand.
const InvalidId Id = 0

func (id Id) String() string { return fmt.Sprintf("%%%d", uint32(id)) }

// Allocator hands out fresh, strictly increasing Ids.
type Allocator struct {
	next uint32
}

// NewAllocator returns an Allocator whose first Alloc() call returns 1
// (0 is reserved as InvalidId).
func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// Alloc returns a fresh Id.
func (a *Allocator) Alloc() Id {
	id := Id(a.next)
	a.next++
	return id
}

// Module is an ordered sequence of Ops plus the bookkeeping the compiler
// and engine need: the id allocator, the distinguished input id, and a
// mutable output id (the compiler repoints it as it appends ops).
type Module struct {
	ops      []Op
	alloc    *Allocator
	inputID  Id
	outputID Id

	// results tracks which Id each op produces, enforced at push time so
	// "each Id appears as a result in at most one op" holds by
	// construction rather than by a later validation pass.
	results map[Id]int
}

// NewModule creates an empty module and reserves the distinguished input
// Id as the module's first allocation.
func NewModule() *Module {
	alloc := NewAllocator()
	m := &Module{
		alloc:   alloc,
		results: make(map[Id]int),
	}
	m.inputID = alloc.Alloc()
	m.outputID = m.inputID
	return m
}

// AllocId returns a fresh Id for use as some op's result.
func (m *Module) AllocId() Id { return m.alloc.Alloc() }

// InputId returns the module's distinguished input Id.
func (m *Module) InputId() Id { return m.inputID }

// SetOutputId repoints the module's current output.
func (m *Module) SetOutputId(id Id) { m.outputID = id }

// OutputId returns the module's current output Id.
func (m *Module) OutputId() Id { return m.outputID }

// PushOp appends op to the module in execution order. It does not
// validate that operand Ids were defined earlier or exist at all — that
// is checked once, cheaply, by Validate, and again defensively by the
// engine at dispatch time.
//
// PushOp panics if op's Result Id was already produced by an earlier op,
// since that would violate the single-assignment invariant structurally
// rather than just logically; every compiler code path allocates a fresh
// Id immediately before constructing an op, so this should never fire
// outside a compiler bug.
func (m *Module) PushOp(op Op) {
	result := op.Result()
	if idx, exists := m.results[result]; exists {
		panic(fmt.Sprintf("ir: Id %s already produced by op %d", result, idx))
	}
	m.results[result] = len(m.ops)
	m.ops = append(m.ops, op)
}

// Ops returns the module's ops in execution order. The returned slice must
// not be mutated.
func (m *Module) Ops() []Op { return m.ops }

// Len reports the number of ops in the module.
func (m *Module) Len() int { return len(m.ops) }

// ResultIndex reports the position of the op producing id, if any.
func (m *Module) ResultIndex(id Id) (int, bool) {
	idx, ok := m.results[id]
	return idx, ok
}

// AddStatisticsOps appends ComputeHistogram and CollectDataForEditor ops
// reading the module's current output: these run
// unconditionally so the UI always receives a histogram and editor data
// regardless of which adjustments were applied.
func (m *Module) AddStatisticsOps() {
	histID := m.AllocId()
	m.PushOp(&ComputeHistogram{OpBase: OpBase{ResultID: histID}, Input: m.outputID})

	collectID := m.AllocId()
	m.PushOp(&CollectDataForEditor{OpBase: OpBase{ResultID: collectID}, Input: m.outputID, Histogram: histID})
}

// Validate checks the structural invariants from: every Id
// appears as a result at most once (enforced by PushOp already, rechecked
// here defensively), every operand references an earlier result or the
// module input, and the output Id is defined.
func (m *Module) Validate() error {
	defined := map[Id]bool{m.inputID: true}
	for i, op := range m.ops {
		for _, operand := range op.Operands() {
			if operand == InvalidId {
				continue
			}
			if !defined[operand] {
				return &InvalidModuleError{Reason: fmt.Sprintf("op %d (%s) references undefined id %s", i, op.Kind(), operand)}
			}
		}
		if defined[op.Result()] && op.Result() != m.inputID {
			return &InvalidModuleError{Reason: fmt.Sprintf("op %d (%s) redefines id %s", i, op.Kind(), op.Result())}
		}
		defined[op.Result()] = true
	}
	if m.outputID != m.inputID && !defined[m.outputID] {
		return &InvalidModuleError{Reason: fmt.Sprintf("output id %s is not defined by any op", m.outputID)}
	}
	return nil
}

// InvalidModuleError reports a structural defect in a Module: an op
// referencing an unknown Id, or a result Id defined more than once. Per
// this is a programming-bug class error: the engine aborts the
// execution and surfaces it rather than attempting recovery.
type InvalidModuleError struct {
	Reason string
}

func (e *InvalidModuleError) Error() string { return "ir: invalid module: " + e.Reason }
