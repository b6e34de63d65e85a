package geom

import (
	"math"
	"testing"
)

// cornersInBounds reports whether every corner of a crop rectangle
// (center, size, rotationDegrees) in an imageWidth x imageHeight image
// lies within [0, imageWidth] x [0, imageHeight], used to verify the
// "crop-under-rotation" testable property.
func cornersInBounds(imageWidth, imageHeight float64, center, size Point, rotationDegrees float64) bool {
	cx, cy := center.X*imageWidth, center.Y*imageHeight
	halfX, halfY := size.X*imageWidth/2, size.Y*imageHeight/2
	theta := rotationDegrees * math.Pi / 180
	cosT, sinT := math.Cos(theta), math.Sin(theta)

	const eps = 1e-6
	for _, s := range [4][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		sx, sy := s[0], s[1]
		x := cx + cosT*sx*halfX - sinT*sy*halfY
		y := cy + sinT*sx*halfX + cosT*sy*halfY
		if x < -eps || x > imageWidth+eps || y < -eps || y > imageHeight+eps {
			return false
		}
	}
	return true
}

func TestShrinkCropForRotationKeepsCornersInBounds(t *testing.T) {
	imageWidth, imageHeight := 400.0, 300.0
	center := Pt(0.5, 0.5)
	size := Pt(0.6, 0.6) // fully inside the image before rotation

	for _, policy := range []CropPolicy{PreserveBounds, PreserveAspect} {
		for rot := -360.0; rot <= 360.0; rot += 15.0 {
			shrunk := ShrinkCropForRotation(imageWidth, imageHeight, center, size, rot, policy)
			if !cornersInBounds(imageWidth, imageHeight, center, shrunk, rot) {
				t.Fatalf("policy=%v rotation=%v: shrunk size %+v leaves a corner outside the image", policy, rot, shrunk)
			}
		}
	}
}

func TestShrinkCropForRotationNoOpAtZeroRotation(t *testing.T) {
	size := Pt(0.4, 0.7)
	got := ShrinkCropForRotation(200, 200, Pt(0.5, 0.5), size, 0, PreserveBounds)
	if got != size {
		t.Fatalf("zero rotation must not shrink the crop: got %+v, want %+v", got, size)
	}
}

func TestPreserveAspectKeepsRatio(t *testing.T) {
	size := Pt(0.8, 0.8)
	shrunk := ShrinkCropForRotation(300, 300, Pt(0.5, 0.5), size, 37, PreserveAspect)
	ratio := shrunk.X / shrunk.Y
	if math.Abs(ratio-1.0) > 1e-9 {
		t.Fatalf("PreserveAspect on a square crop/image must keep a 1:1 ratio, got %v", ratio)
	}
}
