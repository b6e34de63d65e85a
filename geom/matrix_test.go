package geom

import (
	"math"
	"testing"
)

func TestIdentityIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Fatal("Identity() must report IsIdentity() == true")
	}
	if Translate(1, 0).IsIdentity() {
		t.Fatal("a translation must not report as identity")
	}
}

func TestMultiplyWithIdentityIsNoOp(t *testing.T) {
	m := RotateAbout(math.Pi/3, 5, 7)
	got := m.Multiply(Identity())
	if got != m {
		t.Fatalf("m * Identity() changed m: got %+v, want %+v", got, m)
	}
}

func TestInvertRoundTrips(t *testing.T) {
	m := Translate(3, -2).Multiply(Rotate(math.Pi / 5))
	inv := m.Invert()
	p := Pt(11, -4)
	roundTripped := inv.TransformPoint(m.TransformPoint(p))
	if math.Abs(roundTripped.X-p.X) > 1e-9 || math.Abs(roundTripped.Y-p.Y) > 1e-9 {
		t.Fatalf("Invert did not round-trip: got %+v, want %+v", roundTripped, p)
	}
}

func TestRotateAboutFixesCenter(t *testing.T) {
	center := Pt(10, 20)
	m := RotateAbout(math.Pi/2, center.X, center.Y)
	got := m.TransformPoint(center)
	if math.Abs(got.X-center.X) > 1e-9 || math.Abs(got.Y-center.Y) > 1e-9 {
		t.Fatalf("rotation about a point must fix that point: got %+v, want %+v", got, center)
	}
}
