package geom

import "math"

// CropPolicy selects how ShrinkCropForRotation trades off aspect-ratio
// preservation against independent per-axis shrink, resolving // Open Question (b): the source does not document intent for whether
// crop-shrink may alter aspect ratio, so this is made an explicit,
// configurable policy rather than a silent default.
type CropPolicy int

const (
	// PreserveBounds reduces Width and Height independently to the
	// minimum amount each needs to stay inside the rotated image,
	// exactly as literally describes ("reduce size.x, size.y
	// to the minimum intersection distance"). This is the default: it
	// matches the algorithm's literal text even though it may change
	// the crop's aspect ratio.
	PreserveBounds CropPolicy = iota

	// PreserveAspect additionally constrains both dimensions to shrink
	// by the same (smaller) factor, keeping the crop rectangle's aspect
	// ratio fixed at the cost of cropping more than strictly necessary
	// on one axis.
	PreserveAspect
)

// ShrinkCropForRotation computes, given a crop rectangle
// (center, size, both normalized to the image's own dimensions) and a
// rotation in degrees to be applied about the crop's center, the
// (possibly shrunk) size such that every corner of the rotated crop
// rectangle remains within the image bounds.
//
// imageWidth/imageHeight are the image's pixel dimensions, needed because
// the geometry is only correct in a space where X and Y units match;
// normalized [0,1] coordinates over a non-square image are not such a
// space.
func ShrinkCropForRotation(imageWidth, imageHeight float64, center, size Point, rotationDegrees float64, policy CropPolicy) Point {
	if rotationDegrees == 0 || size.X <= 0 || size.Y <= 0 {
		return size
	}

	cx := center.X * imageWidth
	cy := center.Y * imageHeight
	halfX := size.X * imageWidth / 2
	halfY := size.Y * imageHeight / 2
	theta := rotationDegrees * math.Pi / 180
	cosT, sinT := math.Cos(theta), math.Sin(theta)

	// The crop rectangle's corner at local offset (sx*halfX, sy*halfY)
	// lands, once rotated into the image frame, at:
	// x = cx + cosT*sx*halfX - sinT*sy*halfY
	// y = cy + sinT*sx*halfX + cosT*sy*halfY
	// Both must stay within [0, imageWidth] x [0, imageHeight].
	signs := [4][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

	scaleX, scaleY := 1.0, 1.0
	for _, s := range signs {
		sx, sy := s[0], s[1]

		// X-bound: hold the Y contribution at its unshrunk value while
		// solving for the largest scaleX keeping x in bounds.
		baseX := cx - sinT*sy*halfY
		coeffX := cosT * sx * halfX
		scaleX = math.Min(scaleX, maxScale(baseX, coeffX, 0, imageWidth))

		// Y-bound: symmetric, holding the X contribution fixed.
		baseY := cy + cosT*sy*halfY
		coeffY := sinT * sx * halfX
		scaleY = math.Min(scaleY, maxScale(baseY, coeffY, 0, imageHeight))
	}

	if policy == PreserveAspect {
		uniform := math.Min(scaleX, scaleY)
		scaleX, scaleY = uniform, uniform
	}

	return Point{X: size.X * scaleX, Y: size.Y * scaleY}
}

// maxScale finds the largest s in [0,1] such that base+coeff*s falls
// within [lo,hi]. Returns 1 when coeff is zero and base is already in
// range (scale has no effect on this axis), 0 if base is out of range
// and coeff is zero (no scale can fix it).
func maxScale(base, coeff, lo, hi float64) float64 {
	if coeff == 0 {
		if base < lo || base > hi {
			return 0
		}
		return 1
	}
	s1 := (lo - base) / coeff
	s2 := (hi - base) / coeff
	smin, smax := s1, s2
	if smin > smax {
		smin, smax = smax, smin
	}
	upper := math.Min(smax, 1)
	if upper < 0 {
		upper = 0
	}
	if upper < smin {
		return 0
	}
	return upper
}
