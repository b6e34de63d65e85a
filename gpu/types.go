// Package gpu provides a thin, backend-selectable abstraction over the
// platform graphics API: device, queue, command encoder, pipelines,
// bind-group layouts, textures, buffers and samplers.
//
// The package defines resource IDs as opaque handles, and formats and
// usage flags in terms of gputypes (the shared WebGPU type vocabulary
// the backend packages build on), so that the rest of the module — the
// IR, the value store, the op implementations — never imports a
// specific backend package directly.
package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// TextureViewID is an opaque handle to a GPU texture view.
type TextureViewID uint64

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// ComputePipelineID is an opaque handle to a compute pipeline.
type ComputePipelineID uint64

// BindGroupLayoutID is an opaque handle to a bind group layout.
type BindGroupLayoutID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// PipelineLayoutID is an opaque handle to a pipeline layout.
type PipelineLayoutID uint64

// SamplerID is an opaque handle to a texture sampler.
type SamplerID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// PixelFormat is the pixel format of an Image value, backed by
// gputypes.TextureFormat so it converts directly to the wire format the
// native backend hands to the device without a translation table.
//
// The set is deliberately small: the editor only ever materializes a
// handful of concrete formats needed by its working color space and
// on-disk formats, out of the much larger vocabulary gputypes defines.
type PixelFormat gputypes.TextureFormat

const (
	// FormatRgba8Unorm is 8-bit-per-channel RGBA, normalized unsigned.
	// Used for decoded/encoded 8-bit images and the final export target.
	FormatRgba8Unorm = PixelFormat(gputypes.TextureFormatRGBA8Unorm)

	// FormatRgba16Float is 16-bit-per-channel floating point RGBA.
	// The working format for all linear-RGB intermediate images.
	FormatRgba16Float = PixelFormat(gputypes.TextureFormatRGBA16Float)

	// FormatR16Float is a single-channel 16-bit float, used for
	// grayscale masks and the dehaze auxiliary texture.
	FormatR16Float = PixelFormat(gputypes.TextureFormatR16Float)

	// FormatR32Uint is a single-channel 32-bit unsigned integer. The
	// histogram and basic-statistics ops accumulate into storage buffers,
	// not R32Uint textures.
	FormatR32Uint = PixelFormat(gputypes.TextureFormatR32Uint)
)

// Native returns the gputypes.TextureFormat a backend should create the
// texture with.
func (f PixelFormat) Native() gputypes.TextureFormat { return gputypes.TextureFormat(f) }

// BytesPerPixel returns the storage size of one texel in the given format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRgba8Unorm:
		return 4
	case FormatRgba16Float:
		return 8
	case FormatR16Float:
		return 2
	case FormatR32Uint:
		return 4
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case FormatRgba8Unorm:
		return "Rgba8Unorm"
	case FormatRgba16Float:
		return "Rgba16Float"
	case FormatR16Float:
		return "R16Float"
	case FormatR32Uint:
		return "R32Uint"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint32(f))
	}
}

// ColorSpace tags the interpretation of the channels stored in an Image.
type ColorSpace uint32

const (
	// ColorSpaceSRGBNonlinear is gamma-encoded sRGB, used only at the
	// I/O boundary (decoded bytes, encoded JPEG source).
	ColorSpaceSRGBNonlinear ColorSpace = iota + 1

	// ColorSpaceLinearRGB is the working color space for nearly every
	// adjustment op.
	ColorSpaceLinearRGB

	// ColorSpaceHSL tags intermediate textures produced while evaluating
	// hue/saturation/lightness adjustments (vibrance, saturation, color
	// mixer) before they are converted back to linear RGB.
	ColorSpaceHSL

	// ColorSpaceGray tags single-channel mask and statistics textures;
	// it carries no hue/saturation information.
	ColorSpaceGray
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceSRGBNonlinear:
		return "sRGB-nonlinear"
	case ColorSpaceLinearRGB:
		return "linear-RGB"
	case ColorSpaceHSL:
		return "HSL"
	case ColorSpaceGray:
		return "gray"
	default:
		return fmt.Sprintf("ColorSpace(%d)", uint32(c))
	}
}

// BufferUsage is a bitmask specifying how a buffer will be used, backed
// by gputypes.BufferUsage so the flags OR together into a value the
// native backend can pass straight through.
type BufferUsage gputypes.BufferUsage

const (
	BufferUsageMapRead  = BufferUsage(gputypes.BufferUsageMapRead)
	BufferUsageMapWrite = BufferUsage(gputypes.BufferUsageMapWrite)
	BufferUsageCopySrc  = BufferUsage(gputypes.BufferUsageCopySrc)
	BufferUsageCopyDst  = BufferUsage(gputypes.BufferUsageCopyDst)
	BufferUsageUniform  = BufferUsage(gputypes.BufferUsageUniform)
	BufferUsageStorage  = BufferUsage(gputypes.BufferUsageStorage)
)

// Native returns the gputypes.BufferUsage a backend should create the
// buffer with.
func (u BufferUsage) Native() gputypes.BufferUsage { return gputypes.BufferUsage(u) }

// TextureUsage is a bitmask specifying how a texture will be used,
// backed by gputypes.TextureUsage for the same reason as BufferUsage.
type TextureUsage gputypes.TextureUsage

const (
	TextureUsageCopySrc          = TextureUsage(gputypes.TextureUsageCopySrc)
	TextureUsageCopyDst          = TextureUsage(gputypes.TextureUsageCopyDst)
	TextureUsageTextureBinding   = TextureUsage(gputypes.TextureUsageTextureBinding)
	TextureUsageStorageBinding   = TextureUsage(gputypes.TextureUsageStorageBinding)
	TextureUsageRenderAttachment = TextureUsage(gputypes.TextureUsageRenderAttachment)
)

// Native returns the gputypes.TextureUsage a backend should create the
// texture with.
func (u TextureUsage) Native() gputypes.TextureUsage { return gputypes.TextureUsage(u) }

// BindingType specifies the type of a shader binding.
type BindingType uint32

const (
	BindingTypeUniformBuffer BindingType = iota + 1
	BindingTypeStorageBuffer
	BindingTypeReadOnlyStorageBuffer
	BindingTypeSampler
	BindingTypeSampledTexture
	BindingTypeStorageTexture
)

// BindGroupLayoutEntry describes a single binding in a bind group layout.
type BindGroupLayoutEntry struct {
	Binding        uint32
	Type           BindingType
	MinBindingSize uint64
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry describes a single resource binding in a bind group.
//
// Exactly one of Buffer, Texture or Sampler should be set, matching the
// binding kind declared at the same index in the layout.
type BindGroupEntry struct {
	Binding uint32
	Buffer  BufferID
	Offset  uint64
	Size    uint64
	Texture TextureViewID
	Sampler SamplerID
}

// BindGroupDescriptor describes a bind group to create or look up in the
// cache. Entries must be supplied in binding order: the cache key derived
// from a descriptor depends on entry order (see package bindgroup).
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayoutID
	Entries []BindGroupEntry
}

// ComputePipelineDescriptor describes a compute pipeline.
type ComputePipelineDescriptor struct {
	Label        string
	Layout       PipelineLayoutID
	ShaderModule ShaderModuleID
	EntryPoint   string
}

// ShaderModuleDescriptor describes a shader module to compile.
type ShaderModuleDescriptor struct {
	Label  string
	Source string // WGSL source, compiled once and cached by pipeline.
}

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	Label         string
	Width, Height uint32
	MipLevelCount uint32
	Format        PixelFormat
	Usage         TextureUsage
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label            string
	Size             uint64
	Usage            BufferUsage
	HostReadable     bool
	MappedAtCreation bool
}
