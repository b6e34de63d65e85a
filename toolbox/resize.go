package toolbox

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// ResizeRGBA resamples src to exactly width x height using Catmull-Rom
// interpolation, for host-side (CPU, non-GPU-dispatched) resizing: image
// decode to a display-ready preview and library thumbnail generation.
// The GPU-dispatched Resize op does its own
// bilinear-mip downsample; this is a separate, smaller code path used
// only where no GPU context is involved.
func ResizeRGBA(src *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// ThumbnailSize returns the largest width x height that fits within
// maxDimension on its longer side while preserving aspect ratio, used by
// the library's thumbnail generator.
func ThumbnailSize(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}
	if width >= height {
		scaled := height * maxDimension / width
		if scaled < 1 {
			scaled = 1
		}
		return maxDimension, scaled
	}
	scaled := width * maxDimension / height
	if scaled < 1 {
		scaled = 1
	}
	return scaled, maxDimension
}
