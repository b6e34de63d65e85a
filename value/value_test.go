package value

import (
	"testing"

	"github.com/rasterlab/photoedit/gpu"
	fakegpu "github.com/rasterlab/photoedit/gpu/fake"
	"github.com/rasterlab/photoedit/ir"
)

func newTestDevice(t *testing.T) gpu.Device {
	t.Helper()
	dev, err := fakegpu.New()
	if err != nil {
		t.Fatalf("fake.New: %v", err)
	}
	return dev
}

func TestEnsureImageReusesMatchingProperties(t *testing.T) {
	s := New(newTestDevice(t))
	id := ir.Id(1)
	props := ImageProperties{Width: 4, Height: 4, Format: gpu.FormatRgba16Float, ColorSpace: gpu.ColorSpaceLinearRGB, MipLevelCount: 1}

	img1, err := s.EnsureImage(id, props)
	if err != nil {
		t.Fatalf("first EnsureImage: %v", err)
	}
	img2, err := s.EnsureImage(id, props)
	if err != nil {
		t.Fatalf("second EnsureImage: %v", err)
	}
	if img1 != img2 {
		t.Fatal("EnsureImage with identical properties should return the same value, not reallocate")
	}
}

func TestEnsureImageReallocatesOnPropertyChange(t *testing.T) {
	s := New(newTestDevice(t))
	id := ir.Id(1)
	small := ImageProperties{Width: 4, Height: 4, Format: gpu.FormatRgba16Float, ColorSpace: gpu.ColorSpaceLinearRGB, MipLevelCount: 1}
	big := ImageProperties{Width: 8, Height: 8, Format: gpu.FormatRgba16Float, ColorSpace: gpu.ColorSpaceLinearRGB, MipLevelCount: 1}

	img1, _ := s.EnsureImage(id, small)
	img2, err := s.EnsureImage(id, big)
	if err != nil {
		t.Fatalf("EnsureImage with new size: %v", err)
	}
	if img1 == img2 {
		t.Fatal("EnsureImage with changed properties must allocate a new value")
	}
	if img2.Properties != big {
		t.Fatalf("expected properties %+v, got %+v", big, img2.Properties)
	}
}

func TestKindMismatch(t *testing.T) {
	s := New(newTestDevice(t))
	id := ir.Id(1)
	s.EnsureImage(id, ImageProperties{Width: 1, Height: 1, Format: gpu.FormatRgba16Float})

	_, err := s.Buffer(id)
	var mismatch *KindMismatchError
	if err == nil {
		t.Fatal("expected KindMismatchError")
	}
	if !asKindMismatch(err, &mismatch) {
		t.Fatalf("expected *KindMismatchError, got %T: %v", err, err)
	}
}

func asKindMismatch(err error, target **KindMismatchError) bool {
	if m, ok := err.(*KindMismatchError); ok {
		*target = m
		return true
	}
	return false
}

func TestNotFound(t *testing.T) {
	s := New(newTestDevice(t))
	_, err := s.Image(ir.Id(42))
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected *NotFoundError, got %T: %v", err, err)
	}
}

func TestRollbackRestoresSnapshot(t *testing.T) {
	s := New(newTestDevice(t))
	props := ImageProperties{Width: 2, Height: 2, Format: gpu.FormatRgba16Float}
	s.EnsureImage(ir.Id(1), props)
	snap := s.Snapshot()

	s.EnsureImage(ir.Id(2), props)
	if !s.Has(ir.Id(2)) {
		t.Fatal("expected id 2 to be populated before rollback")
	}

	s.RollbackTo(snap)
	if s.Has(ir.Id(2)) {
		t.Fatal("expected id 2 to be released after rollback")
	}
	if !s.Has(ir.Id(1)) {
		t.Fatal("rollback must not touch ids present at snapshot time")
	}
}
