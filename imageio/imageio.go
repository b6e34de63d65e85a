// Package imageio decodes and encodes the editor's on-disk image formats.
// Decoding converts to linear-RGB Rgba16Float immediately, so
// every downstream package (engine, compiler) only ever sees the working
// color space. golang.org/x/image supplies resampling, not codecs, so
// decode/encode here use only the standard library's image/jpeg and
// image/png.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/toolbox"
)

// Format names a container format imageio can decode or encode.
type Format int

const (
	// FormatAuto sniffs the container via the standard library's
	// registered decoders (image.Decode).
	FormatAuto Format = iota
	FormatJPEG
	FormatPNG
)

// PixelImage is a decoded image already converted to linear-RGB
// Rgba16Float, tightly packed row-major (width*height*8 bytes), ready to
// seed a value.Image via the engine.
type PixelImage struct {
	Width, Height uint32
	Pixels        []byte
}

// DecodeError reports that bytes could not be parsed as the declared (or
// sniffed) format.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("imageio: decode (%s): %v", e.Format, e.Err)
}
func (e *DecodeError) Unwrap() error { return e.Err }

// IoError reports a filesystem-level failure: file not found, permission
// denied.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("imageio: %s %s: %v", e.Op, e.Path, e.Err)
}
func (e *IoError) Unwrap() error { return e.Err }

// Decode parses data as hint's format, or sniffs the container when hint
// is FormatAuto, and converts the result to linear-RGB Rgba16Float.
func Decode(data []byte, hint Format) (*PixelImage, error) {
	var img image.Image
	var err error
	formatName := "auto"

	switch hint {
	case FormatJPEG:
		formatName = "jpeg"
		img, err = jpeg.Decode(bytes.NewReader(data))
	case FormatPNG:
		formatName = "png"
		img, err = png.Decode(bytes.NewReader(data))
	default:
		var name string
		img, name, err = image.Decode(bytes.NewReader(data))
		if name != "" {
			formatName = name
		}
	}
	if err != nil {
		return nil, &DecodeError{Format: formatName, Err: err}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, &DecodeError{Format: formatName, Err: fmt.Errorf("zero-sized image")}
	}

	rgba := toTightRGBA(img, width, height)
	linear, err := toolbox.ConvertPixels(rgba, gpu.FormatRgba8Unorm, gpu.FormatRgba16Float, width*height)
	if err != nil {
		return nil, &DecodeError{Format: formatName, Err: err}
	}
	return &PixelImage{Width: uint32(width), Height: uint32(height), Pixels: linear}, nil
}

// toTightRGBA returns img's pixels as a tightly-packed, top-left-origin
// RGBA8 buffer, reusing the source's own backing slice when it is
// already in that layout.
func toTightRGBA(img image.Image, width, height int) []byte {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == width*4 {
		return rgba.Pix
	}
	out := make([]byte, width*height*4)
	b := img.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out[i] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
			out[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return out
}

// EncodeJPEG converts img back to sRGB Rgba8Unorm and encodes it as a
// baseline JPEG at the given quality. JPEG has no alpha
// channel; img's alpha is discarded.
func EncodeJPEG(img *PixelImage, quality int) ([]byte, error) {
	pixelCount := int(img.Width) * int(img.Height)
	srgb, err := toolbox.ConvertPixels(img.Pixels, gpu.FormatRgba16Float, gpu.FormatRgba8Unorm, pixelCount)
	if err != nil {
		return nil, err
	}
	rgba := &image.RGBA{
		Pix:    srgb,
		Stride: int(img.Width) * 4,
		Rect:   image.Rect(0, 0, int(img.Width), int(img.Height)),
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeFile reads path and decodes it, sniffing the container format.
func DecodeFile(path string) (*PixelImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IoError{Op: "read", Path: path, Err: err}
	}
	return Decode(data, FormatAuto)
}

// EncodeJPEGFile encodes img as a JPEG and writes it to path.
func EncodeJPEGFile(path string, img *PixelImage, quality int) error {
	data, err := EncodeJPEG(img, quality)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &IoError{Op: "write", Path: path, Err: err}
	}
	return nil
}
