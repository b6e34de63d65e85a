package toolbox

import (
	"image"
	"math"
	"testing"

	"github.com/rasterlab/photoedit/gpu"
)

func TestSRGBLinearRoundTrip(t *testing.T) {
	for _, b := range []uint8{0, 1, 16, 64, 128, 200, 255} {
		linear := SRGBByteToLinear(b)
		back := LinearToSRGBByte(linear)
		diff := int(back) - int(b)
		if diff < -1 || diff > 1 {
			t.Fatalf("round trip of %d produced %d (linear=%v), off by more than 1 LSB", b, back, linear)
		}
	}
}

func TestSRGBExactMonotonic(t *testing.T) {
	prev := float32(-1)
	for i := 0; i <= 255; i++ {
		v := SRGBToLinearExact(float32(i) / 255.0)
		if v < prev {
			t.Fatalf("SRGBToLinearExact not monotonic at %d: %v < %v", i, v, prev)
		}
		prev = v
	}
}

func TestFloat16RoundTrip(t *testing.T) {
	for _, f := range []float32{0, 0.5, 1, -1, 0.001, 123.25, -0.25} {
		h := float16FromFloat32(f)
		back := float16ToFloat32(h)
		if math.Abs(float64(back-f)) > 0.01 {
			t.Fatalf("float16 round trip of %v produced %v", f, back)
		}
	}
}

func TestConvertPixelsRgba8ToRgba16FAndBack(t *testing.T) {
	src := []byte{255, 128, 0, 255, 0, 0, 0, 0}
	f16, err := ConvertPixels(src, gpu.FormatRgba8Unorm, gpu.FormatRgba16Float, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(f16) != 16 {
		t.Fatalf("expected 16 bytes (2 pixels x 4 channels x 2 bytes), got %d", len(f16))
	}
	back, err := ConvertPixels(f16, gpu.FormatRgba16Float, gpu.FormatRgba8Unorm, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := range src {
		diff := int(back[i]) - int(src[i])
		if diff < -2 || diff > 2 {
			t.Fatalf("byte %d: round trip %d -> %d", i, src[i], back[i])
		}
	}
}

func TestConvertPixelsUnsupported(t *testing.T) {
	if _, err := ConvertPixels(nil, gpu.FormatR32Uint, gpu.FormatR16Float, 0); err == nil {
		t.Fatal("expected an error for an unsupported conversion pair")
	}
}

func TestConversionCacheHitsOnRepeat(t *testing.T) {
	c := NewConversionCache()
	src := []byte{10, 20, 30, 255}
	if _, err := c.GetOrConvert(7, src, gpu.FormatRgba8Unorm, gpu.FormatRgba16Float, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrConvert(7, src, gpu.FormatRgba8Unorm, gpu.FormatRgba16Float, 1); err != nil {
		t.Fatal(err)
	}
	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got hits=%d misses=%d", stats.Hits, stats.Misses)
	}
}

func TestMipLevelCount(t *testing.T) {
	cases := map[[2]uint32]uint32{
		{1, 1}:     1,
		{2, 2}:     2,
		{256, 256}: 9,
		{300, 200}: 9,
	}
	for dims, want := range cases {
		got := MipLevelCount(dims[0], dims[1])
		if got != want {
			t.Fatalf("MipLevelCount(%d,%d) = %d, want %d", dims[0], dims[1], got, want)
		}
	}
}

func TestThumbnailSizePreservesAspect(t *testing.T) {
	w, h := ThumbnailSize(4000, 2000, 400)
	if w != 400 || h != 200 {
		t.Fatalf("got %dx%d, want 400x200", w, h)
	}
	w, h = ThumbnailSize(100, 100, 400)
	if w != 100 || h != 100 {
		t.Fatalf("below-max image must not be upscaled: got %dx%d", w, h)
	}
}

func TestResizeRGBAProducesRequestedDimensions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	dst := ResizeRGBA(src, 10, 5)
	if dst.Bounds().Dx() != 10 || dst.Bounds().Dy() != 5 {
		t.Fatalf("got %dx%d, want 10x5", dst.Bounds().Dx(), dst.Bounds().Dy())
	}
}
