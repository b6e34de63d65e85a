package mask

import (
	"math"
	"testing"

	"github.com/rasterlab/photoedit/ir"
)

func TestRadialCoverageRange(t *testing.T) {
	for _, x := range []float64{-1, -0.3, 0, 0.2, 0.5, 0.8, 1, 1.5} {
		for _, y := range []float64{-1, 0, 0.5, 1, 2} {
			c := RadialCoverage(x, y, 0.5, 0.5, 0.25, 0.25, 0.05, 0)
			if c < 0 || c > 1 {
				t.Fatalf("RadialCoverage(%v,%v) = %v, out of [0,1]", x, y, c)
			}
		}
	}
}

func TestLinearCoverageRange(t *testing.T) {
	for _, x := range []float64{-1, 0, 0.5, 1, 2} {
		for _, y := range []float64{-1, 0, 0.5, 1, 2} {
			c := LinearCoverage(x, y, 0, 0, 1, 1)
			if c < 0 || c > 1 {
				t.Fatalf("LinearCoverage(%v,%v) = %v, out of [0,1]", x, y, c)
			}
		}
	}
}

// TestComposedMaskRange verifies the "Mask range" property: after add/subtract with saturation clamp, every sample lies in
// [0,1].
func TestComposedMaskRange(t *testing.T) {
	for _, x := range []float64{0, 0.25, 0.5, 0.75, 1} {
		for _, y := range []float64{0, 0.25, 0.5, 0.75, 1} {
			a := RadialCoverage(x, y, 0.2, 0.2, 0.3, 0.3, 0.1, 0)
			b := RadialCoverage(x, y, 0.8, 0.8, 0.3, 0.3, 0.1, 0)
			sum := clamp01(a + b)
			diff := clamp01(a - b)
			if sum < 0 || sum > 1 || diff < 0 || diff > 1 {
				t.Fatalf("composed mask at (%v,%v) escaped [0,1]: sum=%v diff=%v", x, y, sum, diff)
			}
		}
	}
}

// TestInversionIsInvolution verifies item 5: inverting twice
// reproduces the input within 1 ULP of Rgba8Unorm precision (1/255).
func TestInversionIsInvolution(t *testing.T) {
	invert := func(v float64) float64 { return 1 - v }
	for _, v := range []float64{0, 0.1, 0.37, 0.5, 0.99, 1} {
		twice := invert(invert(v))
		if math.Abs(twice-v) > 1.0/255.0 {
			t.Fatalf("double invert of %v produced %v, outside 1/255 tolerance", v, twice)
		}
	}
}

// TestRadialMaskCoverageSum approximates scenario S3: a 100x100 image,
// radial gradient cx=cy=0.5, rx=ry=0.25 (25px), feather=0. Expected sum
// of mask values (in pixel units) approx pi*25^2, within 1%.
func TestRadialMaskCoverageSum(t *testing.T) {
	const size = 100
	var sum float64
	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			x := (float64(px) + 0.5) / size
			y := (float64(py) + 0.5) / size
			sum += RadialCoverage(x, y, 0.5, 0.5, 0.25, 0.25, 1e-4, 0)
		}
	}
	expected := math.Pi * 25 * 25
	tolerance := expected * 0.01
	if math.Abs(sum-expected) > tolerance {
		t.Fatalf("coverage sum = %v, want %v +/- %v", sum, expected, tolerance)
	}
}

// TestMaskCompositionScenario approximates scenario S4: two radial masks
// at opposite corners, the second subtracted; near (0,0) the result is
// close to 1, near the farthest corner close to 0, everywhere clamped to
// [0,1].
func TestMaskCompositionScenario(t *testing.T) {
	cover := func(x, y float64) float64 {
		a := RadialCoverage(x, y, 0, 0, 0.9, 0.9, 0.5, 0)
		b := RadialCoverage(x, y, 1, 1, 0.9, 0.9, 0.5, 0)
		return clamp01(a - b)
	}

	near := cover(0.02, 0.02)
	if near < 0.9 {
		t.Fatalf("expected coverage near (0,0) to be close to 1, got %v", near)
	}
	far := cover(0.98, 0.98)
	if far > 0.1 {
		t.Fatalf("expected coverage near the far corner to be close to 0, got %v", far)
	}
}

func TestCompileProducesWellFormedModule(t *testing.T) {
	m := Mask{Terms: []Term{
		{Primitive: Primitive{Kind: Global}},
		{Primitive: Primitive{Kind: RadialGradient, CenterX: 0.5, CenterY: 0.5, RadiusX: 0.2, RadiusY: 0.2}, Subtracted: true},
	}}
	module := ir.NewModule()
	resultID := Compile(module, m, 100, 100)

	if resultID == ir.InvalidId {
		t.Fatal("Compile must return a valid result id")
	}
	if err := module.Validate(); err != nil {
		t.Fatalf("Compile produced an invalid module: %v", err)
	}
	if _, ok := module.ResultIndex(resultID); !ok {
		t.Fatal("the returned result id must be defined by some op in the module")
	}
}

func TestCompilePanicsOnEmptyMask(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Compile to panic on an empty Mask")
		}
	}()
	Compile(ir.NewModule(), Mask{}, 10, 10)
}
