package native

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/rasterlab/photoedit/gpu"
)

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return 0, gpu.ErrInvalidDimensions
	}
	mipLevels := desc.MipLevelCount
	if mipLevels == 0 {
		mipLevels = 1
	}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Size:          wgpu.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: mipLevels,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format.Native(),
		Usage:         desc.Usage.Native(),
	})
	if err != nil {
		return 0, &gpu.ResourceError{Op: "CreateTexture", Err: err}
	}
	d.mu.Lock()
	id := gpu.TextureID(d.nextUUID())
	entry := &textureEntry{desc: *desc, tex: tex}
	entry.desc.MipLevelCount = mipLevels
	d.textures[id] = entry
	d.mu.Unlock()
	return id, nil
}

func (d *Device) DestroyTexture(id gpu.TextureID) {
	d.mu.Lock()
	entry, ok := d.textures[id]
	delete(d.textures, id)
	d.mu.Unlock()
	if ok {
		entry.tex.Release()
	}
}

func (d *Device) lookupTexture(id gpu.TextureID) (*textureEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.textures[id]
	if !ok {
		return nil, gpu.ErrResourceDestroyed
	}
	return entry, nil
}

func (d *Device) CreateTextureView(id gpu.TextureID) (gpu.TextureViewID, error) {
	entry, err := d.lookupTexture(id)
	if err != nil {
		return 0, err
	}
	view, verr := d.device.CreateTextureView(entry.tex, nil)
	if verr != nil {
		return 0, &gpu.ResourceError{Op: "CreateTextureView", Err: verr}
	}
	d.mu.Lock()
	viewID := gpu.TextureViewID(d.nextUUID())
	d.textureViews[viewID] = view
	d.mu.Unlock()
	return viewID, nil
}

func (d *Device) CreateBaseMipView(id gpu.TextureID) (gpu.TextureViewID, error) {
	entry, err := d.lookupTexture(id)
	if err != nil {
		return 0, err
	}
	view, verr := d.device.CreateTextureView(entry.tex, &wgpu.TextureViewDescriptor{
		BaseMipLevel:  0,
		MipLevelCount: 1,
	})
	if verr != nil {
		return 0, &gpu.ResourceError{Op: "CreateBaseMipView", Err: verr}
	}
	d.mu.Lock()
	viewID := gpu.TextureViewID(d.nextUUID())
	d.textureViews[viewID] = view
	d.mu.Unlock()
	return viewID, nil
}

// WriteTexture and ReadTexture return ResourceError/ReadbackError rather
// than discarding data: the wgpu binding exposes no texture-data entry
// point (Queue.WriteBuffer/ReadBuffer and CommandEncoder.CopyBufferToBuffer
// are buffer-only), so there is no real call to forward to. See DESIGN.md.
func (d *Device) WriteTexture(id gpu.TextureID, data []byte) error {
	if _, err := d.lookupTexture(id); err != nil {
		return err
	}
	return &gpu.ResourceError{Op: "WriteTexture", Err: fmt.Errorf("gpu/native: texture upload has no wgpu entry point on this backend")}
}

func (d *Device) ReadTexture(ctx context.Context, id gpu.TextureID) ([]byte, error) {
	if _, err := d.lookupTexture(id); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, &gpu.ReadbackError{Err: ctx.Err()}
	default:
	}
	return nil, &gpu.ReadbackError{Err: fmt.Errorf("gpu/native: texture readback has no wgpu entry point on this backend")}
}

func (d *Device) CreateSampler() (gpu.SamplerID, error) {
	s, err := d.device.CreateSampler(nil)
	if err != nil {
		return 0, &gpu.ResourceError{Op: "CreateSampler", Err: err}
	}
	d.mu.Lock()
	id := gpu.SamplerID(d.nextUUID())
	d.samplers[id] = s
	d.mu.Unlock()
	return id, nil
}

// GenerateMipmaps blits level 0 into each subsequent level, following the
// same encode-onto-the-caller's-encoder shape used by every other method
// on this device. Each blit goes through Encoder.CopyTextureToTexture,
// which itself reports the same missing-entry-point error as WriteTexture
// above, so mip generation surfaces that error rather than silently
// leaving upper levels stale.
func (d *Device) GenerateMipmaps(encoder gpu.Encoder, id gpu.TextureID, width, height, mipLevels uint32) error {
	if mipLevels <= 1 {
		return nil
	}
	if _, err := d.lookupTexture(id); err != nil {
		return err
	}
	w, h := width, height
	for level := uint32(1); level < mipLevels; level++ {
		w, h = max1(w/2), max1(h/2)
		if err := encoder.CopyTextureToTexture(id, id, w, h); err != nil {
			return err
		}
	}
	return nil
}

func max1(v uint32) uint32 {
	if v < 1 {
		return 1
	}
	return v
}
