package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/toolbox"
)

func TestDecodePNGProducesLinearRGBAOfExpectedShape(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	out, err := Decode(buf.Bytes(), FormatPNG)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Width != 4 || out.Height != 3 {
		t.Fatalf("unexpected dims: %dx%d", out.Width, out.Height)
	}
	wantLen := 4 * 3 * 8
	if len(out.Pixels) != wantLen {
		t.Fatalf("Pixels len = %d, want %d", len(out.Pixels), wantLen)
	}

	// Converting back to sRGB8 should reproduce all-white input (within
	// rounding).
	back, err := toolbox.ConvertPixels(out.Pixels, gpu.FormatRgba16Float, gpu.FormatRgba8Unorm, 4*3)
	if err != nil {
		t.Fatalf("ConvertPixels back: %v", err)
	}
	for i, b := range back {
		if b < 254 {
			t.Fatalf("byte %d = %d, want ~255 after round trip", i, b)
		}
	}
}

func TestDecodeInvalidBytesReturnsDecodeError(t *testing.T) {
	_, err := Decode([]byte("not an image"), FormatPNG)
	if err == nil {
		t.Fatalf("expected an error for invalid PNG bytes")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
}

func TestEncodeJPEGProducesDecodableBytesOfMatchingDimensions(t *testing.T) {
	const w, h = 8, 6
	pixelCount := w * h
	srgb := make([]byte, pixelCount*4)
	for i := 0; i < pixelCount; i++ {
		srgb[i*4+0] = 128
		srgb[i*4+1] = 64
		srgb[i*4+2] = 32
		srgb[i*4+3] = 255
	}
	linear, err := toolbox.ConvertPixels(srgb, gpu.FormatRgba8Unorm, gpu.FormatRgba16Float, pixelCount)
	if err != nil {
		t.Fatalf("ConvertPixels: %v", err)
	}

	data, err := EncodeJPEG(&PixelImage{Width: w, Height: h, Pixels: linear}, 90)
	if err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != w || b.Dy() != h {
		t.Fatalf("decoded dims %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
	}
}
