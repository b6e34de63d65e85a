package toolbox

import (
	"fmt"

	"github.com/rasterlab/photoedit/cache"
	"github.com/rasterlab/photoedit/gpu"
)

// ConvertPixels converts a tightly-packed pixel buffer from one
// PixelFormat to another. Only the conversions the editor actually needs
// at its I/O and readback boundaries are supported.
func ConvertPixels(src []byte, from, to gpu.PixelFormat, pixelCount int) ([]byte, error) {
	if from == to {
		return src, nil
	}
	switch {
	case from == gpu.FormatRgba8Unorm && to == gpu.FormatRgba16Float:
		return rgba8ToRgba16F(src, pixelCount), nil
	case from == gpu.FormatRgba16Float && to == gpu.FormatRgba8Unorm:
		return rgba16FToRgba8(src, pixelCount), nil
	default:
		return nil, fmt.Errorf("toolbox: unsupported pixel conversion %s -> %s", from, to)
	}
}

func rgba8ToRgba16F(src []byte, pixelCount int) []byte {
	out := make([]byte, pixelCount*8)
	for i := 0; i < pixelCount; i++ {
		for c := 0; c < 4; c++ {
			b := src[i*4+c]
			linear := SRGBByteToLinear(b)
			if c == 3 {
				linear = float32(b) / 255.0 // alpha is never gamma-encoded
			}
			putFloat16(out[(i*4+c)*2:], float16FromFloat32(linear))
		}
	}
	return out
}

func rgba16FToRgba8(src []byte, pixelCount int) []byte {
	out := make([]byte, pixelCount*4)
	for i := 0; i < pixelCount; i++ {
		for c := 0; c < 4; c++ {
			l := float16ToFloat32(getFloat16(src[(i*4+c)*2:]))
			if c == 3 {
				out[i*4+c] = clampByte(l * 255.0)
				continue
			}
			out[i*4+c] = LinearToSRGBByte(l)
		}
	}
	return out
}

func clampByte(v float32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

// ConversionCache memoizes ConvertPixels results keyed by (source UUID,
// target format), avoiding repeated CPU conversion of the same value
// store entry across multiple readbacks (e.g. re-exporting after an
// unrelated edit), backed by a generic sharded LRU.
type ConversionCache struct {
	shards *cache.ShardedCache[uint64, []byte]
}

// NewConversionCache builds a ConversionCache with package cache's
// default per-shard capacity.
func NewConversionCache() *ConversionCache {
	return &ConversionCache{
		shards: cache.NewSharded[uint64, []byte](cache.DefaultCapacity, cache.Uint64Hasher),
	}
}

func conversionKey(sourceUUID uint32, to gpu.PixelFormat) uint64 {
	return uint64(sourceUUID)<<32 | uint64(to)
}

// GetOrConvert returns the cached conversion for (sourceUUID, to) if
// present, else computes it with ConvertPixels and caches the result.
func (c *ConversionCache) GetOrConvert(sourceUUID uint32, src []byte, from, to gpu.PixelFormat, pixelCount int) ([]byte, error) {
	key := conversionKey(sourceUUID, to)
	if v, ok := c.shards.Get(key); ok {
		return v, nil
	}
	converted, err := ConvertPixels(src, from, to, pixelCount)
	if err != nil {
		return nil, err
	}
	c.shards.Set(key, converted)
	return converted, nil
}

// Invalidate drops every cached conversion for sourceUUID, e.g. when the
// value store reallocates that Id with new contents.
func (c *ConversionCache) Invalidate(sourceUUID uint32, formats []gpu.PixelFormat) {
	for _, f := range formats {
		c.shards.Delete(conversionKey(sourceUUID, f))
	}
}

// Stats exposes the underlying sharded cache's hit/miss counters.
func (c *ConversionCache) Stats() cache.Stats {
	return c.shards.Stats()
}
