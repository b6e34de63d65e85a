// Command photoedit applies a persisted Edit to an input image on the
// GPU and writes the result as a JPEG.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rasterlab/photoedit/compiler"
	"github.com/rasterlab/photoedit/editjson"
	"github.com/rasterlab/photoedit/engine"
	"github.com/rasterlab/photoedit/gpu"
	_ "github.com/rasterlab/photoedit/gpu/native"
	"github.com/rasterlab/photoedit/imageio"
	"github.com/rasterlab/photoedit/mask"
	"github.com/rasterlab/photoedit/value"
)

func main() {
	var (
		input   = flag.String("input", "", "source image path (jpeg or png)")
		editPth = flag.String("edit", "", "edit JSON path; a no-op global edit is applied if omitted")
		output  = flag.String("output", "edited.jpg", "output JPEG path")
		quality = flag.Int("quality", 90, "output JPEG quality (1-100)")
		backend = flag.String("backend", "", "GPU backend name, overriding "+gpu.EnvBackendVar)
	)
	flag.Parse()
	if *input == "" {
		log.Fatalf("photoedit: -input is required")
	}

	device, err := openDevice(*backend)
	if err != nil {
		log.Fatalf("photoedit: opening GPU backend: %v", err)
	}
	defer device.Close()

	src, err := imageio.DecodeFile(*input)
	if err != nil {
		log.Fatalf("photoedit: decoding %s: %v", *input, err)
	}
	log.Printf("photoedit: decoded %s (%dx%d)", *input, src.Width, src.Height)

	edit, err := loadEdit(*editPth)
	if err != nil {
		log.Fatalf("photoedit: loading edit: %v", err)
	}

	module, maskResultIDs := compiler.Compile(edit, src.Width, src.Height)

	inputImage, err := seedInputImage(device, src)
	if err != nil {
		log.Fatalf("photoedit: uploading input image: %v", err)
	}

	eng := engine.New(device)
	ctx := context.Background()
	result, err := eng.Execute(ctx, module, maskResultIDs, inputImage)
	if err != nil {
		log.Fatalf("photoedit: execute: %v", err)
	}

	if result.Statistics != nil {
		hist, err := result.Statistics.Resolve(ctx)
		if err != nil {
			log.Fatalf("photoedit: resolving statistics: %v", err)
		}
		log.Printf("photoedit: histogram bin totals r=%d g=%d b=%d", hist.Sum(0), hist.Sum(1), hist.Sum(2))
	}

	out, err := downloadImage(ctx, device, result.Output)
	if err != nil {
		log.Fatalf("photoedit: reading back output: %v", err)
	}
	if err := imageio.EncodeJPEGFile(*output, out, *quality); err != nil {
		log.Fatalf("photoedit: encoding %s: %v", *output, err)
	}
	log.Printf("photoedit: wrote %s (%dx%d)", *output, out.Width, out.Height)
}

// openDevice constructs the named backend, or the registry default
// (honoring gpu.EnvBackendVar) when name is empty.
func openDevice(name string) (gpu.Device, error) {
	if name != "" {
		return gpu.Get(name)
	}
	return gpu.Default()
}

// loadEdit parses path as an Edit JSON document, or returns a single
// identity masked edit (global, no adjustments) when path is empty: the
// compiler requires at least one masked edit covering the whole image.
func loadEdit(path string) (compiler.Edit, error) {
	if path == "" {
		return compiler.Edit{
			MaskedEdits: []compiler.MaskedEdit{{
				Mask: mask.Mask{Terms: []mask.Term{{Primitive: mask.Primitive{Kind: mask.Global}}}},
			}},
		}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return compiler.Edit{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return editjson.Parse(data)
}

// seedInputImage uploads src into a fresh GPU-backed Image the engine
// can consume as its module input.
func seedInputImage(device gpu.Device, src *imageio.PixelImage) (*value.Image, error) {
	store := value.New(device)
	img, err := store.EnsureImage(0, value.ImageProperties{
		Width:         src.Width,
		Height:        src.Height,
		Format:        gpu.FormatRgba16Float,
		ColorSpace:    gpu.ColorSpaceLinearRGB,
		MipLevelCount: 1,
	})
	if err != nil {
		return nil, err
	}
	if err := device.WriteTexture(img.Texture, src.Pixels); err != nil {
		return nil, err
	}
	return img, nil
}

// downloadImage reads img's base mip back to host memory and wraps it as
// a PixelImage ready for imageio.EncodeJPEGFile.
func downloadImage(ctx context.Context, device gpu.Device, img *value.Image) (*imageio.PixelImage, error) {
	data, err := device.ReadTexture(ctx, img.Texture)
	if err != nil {
		return nil, &gpu.ReadbackError{Err: err}
	}
	return &imageio.PixelImage{Width: img.Properties.Width, Height: img.Properties.Height, Pixels: data}, nil
}
