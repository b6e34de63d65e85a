// Package toolbox implements the cross-op utilities shared by every Op
// implementation: mip-level bookkeeping, sRGB/linear color-space
// conversion, pixel-format conversion (with a sharded LRU cache for
// repeated conversions), and CPU-side resampling for thumbnails and
// other host-side (non-GPU-dispatched) resizing.
package toolbox

import "math"

// sRGBToLinearLUT and linearToSRGBLUT provide O(1) sRGB<->linear
// conversion, replacing a math.Pow call per channel per pixel, at the
// image decode/encode boundary.
var (
	sRGBToLinearLUT [256]float32
	linearToSRGBLUT [4096]uint8
)

func init() {
	for i := 0; i < 256; i++ {
		s := float64(i) / 255.0
		var linear float64
		if s <= 0.04045 {
			linear = s / 12.92
		} else {
			linear = math.Pow((s+0.055)/1.055, 2.4)
		}
		sRGBToLinearLUT[i] = float32(linear)
	}
	for i := 0; i < 4096; i++ {
		linear := float64(i) / 4095.0
		var s float64
		if linear <= 0.0031308 {
			s = linear * 12.92
		} else {
			s = 1.055*math.Pow(linear, 1.0/2.4) - 0.055
		}
		srgb := int(s*255.0 + 0.5)
		if srgb < 0 {
			srgb = 0
		}
		if srgb > 255 {
			srgb = 255
		}
		linearToSRGBLUT[i] = uint8(srgb)
	}
}

// SRGBByteToLinear converts one 8-bit sRGB channel value to linear [0,1]
// via lookup table.
func SRGBByteToLinear(b uint8) float32 {
	return sRGBToLinearLUT[b]
}

// LinearToSRGBByte converts a linear [0,1] channel value to an 8-bit sRGB
// byte via lookup table. Values outside [0,1] are clamped first.
func LinearToSRGBByte(l float32) uint8 {
	if l < 0 {
		l = 0
	}
	if l > 1 {
		l = 1
	}
	idx := int(l*4095.0 + 0.5)
	if idx > 4095 {
		idx = 4095
	}
	return linearToSRGBLUT[idx]
}

// SRGBToLinearExact converts via the exact power-law transfer function,
// for code paths (e.g. computing reference values in tests) that need
// full float precision instead of the 256-entry table's granularity.
func SRGBToLinearExact(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// LinearToSRGBExact is SRGBToLinearExact's inverse.
func LinearToSRGBExact(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}
