package ir

import "testing"

func TestAllocatorMonotonic(t *testing.T) {
	a := NewAllocator()
	prev := a.Alloc()
	for i := 0; i < 100; i++ {
		next := a.Alloc()
		if next <= prev {
			t.Fatalf("Alloc not strictly increasing: %d then %d", prev, next)
		}
		prev = next
	}
}

func TestModuleInputIdReserved(t *testing.T) {
	m := NewModule()
	if m.InputId() == InvalidId {
		t.Fatal("input id must not be InvalidId")
	}
	if m.OutputId() != m.InputId() {
		t.Fatal("output id should default to input id before any op is pushed")
	}
}

func TestPushOpRejectsDuplicateResult(t *testing.T) {
	m := NewModule()
	id := m.AllocId()
	m.PushOp(&AdjustExposure{OpBase: OpBase{ResultID: id}, Input: m.InputId(), Stops: 1})

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic pushing a second op with the same result id")
		}
	}()
	m.PushOp(&AdjustExposure{OpBase: OpBase{ResultID: id}, Input: m.InputId(), Stops: 2})
}

func TestIdUniquenessAcrossModule(t *testing.T) {
	m := NewModule()
	current := m.InputId()
	seen := map[Id]bool{current: true}

	for i := 0; i < 10; i++ {
		id := m.AllocId()
		if seen[id] {
			t.Fatalf("id %s allocated twice", id)
		}
		seen[id] = true
		m.PushOp(&AdjustExposure{OpBase: OpBase{ResultID: id}, Input: current, Stops: 0.1})
		current = id
	}
	m.SetOutputId(current)

	for i, op := range m.Ops() {
		for _, operand := range op.Operands() {
			if operand == InvalidId {
				continue
			}
			idx, ok := m.ResultIndex(operand)
			if !ok && operand != m.InputId() {
				t.Fatalf("op %d references id %s defined nowhere", i, operand)
			}
			if ok && idx >= i {
				t.Fatalf("op %d references id %s defined at or after its own position %d", i, operand, idx)
			}
		}
	}
}

func TestValidateCatchesUndefinedOperand(t *testing.T) {
	m := NewModule()
	ghost := Id(9999)
	m.PushOp(&AdjustExposure{OpBase: OpBase{ResultID: m.AllocId()}, Input: ghost, Stops: 1})
	if err := m.Validate(); err == nil {
		t.Fatal("expected Validate to reject a reference to an undefined id")
	}
}

func TestAddStatisticsOpsAppendsHistogramAndCollect(t *testing.T) {
	m := NewModule()
	m.AddStatisticsOps()
	ops := m.Ops()
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(ops))
	}
	if _, ok := ops[0].(*ComputeHistogram); !ok {
		t.Fatalf("expected first appended op to be ComputeHistogram, got %T", ops[0])
	}
	collect, ok := ops[1].(*CollectDataForEditor)
	if !ok {
		t.Fatalf("expected second appended op to be CollectDataForEditor, got %T", ops[1])
	}
	if collect.Histogram != ops[0].Result() {
		t.Fatal("CollectDataForEditor.Histogram must reference the histogram op's result")
	}
}
