// Package value implements the ValueStore: the Id -> (Image | Buffer)
// arena that owns every intermediate GPU resource for one module
// execution.
//
// Re-architected per the design notes away from the source's panicking
// as_image()/as_buffer() accessors towards a tagged sum with checked
// accessors: callers get a *KindMismatchError instead of a crash when an
// op references an Id of the wrong kind, consistent with // InvalidModuleError being a surfaced, non-fatal condition.
package value

import (
	"fmt"
	"sync/atomic"

	"github.com/rasterlab/photoedit/gpu"
	"github.com/rasterlab/photoedit/ir"
)

var uuidSource atomic.Uint32

func nextUUID() uint32 { return uuidSource.Add(1) }

// ImageProperties describes the shape of an Image value; two Image
// values with equal ImageProperties are considered interchangeable by
// EnsureImage.
type ImageProperties struct {
	Width, Height uint32
	Format        gpu.PixelFormat
	ColorSpace    gpu.ColorSpace
	MipLevelCount uint32
}

// Image is a GPU-backed image value: a texture, its full-chain view, and
// a base-mip (level-0-only) view, plus the immutable properties it was
// created with.
type Image struct {
	Properties ImageProperties
	UUID       uint32

	Texture     gpu.TextureID
	View        gpu.TextureViewID
	BaseMipView gpu.TextureViewID
}

// BufferProperties describes the shape of a Buffer value.
type BufferProperties struct {
	Size         uint64
	HostReadable bool
}

// Buffer is a GPU-backed buffer value.
type Buffer struct {
	Properties BufferProperties
	UUID       uint32
	Handle     gpu.BufferID
}

// KindMismatchError is returned when a caller asks for a value's Image
// form but it holds a Buffer, or vice versa.
type KindMismatchError struct {
	ID       ir.Id
	Expected string
	Actual   string
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("value: id %s holds a %s, not a %s", e.ID, e.Actual, e.Expected)
}

// NotFoundError is returned when a caller asks for a value at an Id that
// has no entry in the store.
type NotFoundError struct {
	ID ir.Id
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("value: no value at id %s", e.ID)
}

// entry is the tagged union stored per Id. Exactly one of image/buffer is
// non-nil.
type entry struct {
	image  *Image
	buffer *Buffer
}

// Store is the Id -> Value arena for one module execution. It is not
// safe for concurrent use; the engine mutates it only from the single
// thread driving execute().
type Store struct {
	device  gpu.Device
	values  map[ir.Id]*entry
	destroy []func()
}

// New creates an empty Store bound to device, which it uses to allocate
// and destroy GPU resources as EnsureImage and EnsureBuffer are called.
func New(device gpu.Device) *Store {
	return &Store{device: device, values: make(map[ir.Id]*entry)}
}

// Insert places an already-constructed Image value at id, used once by
// the engine to seed the module's input image.
func (s *Store) Insert(id ir.Id, img *Image) {
	s.values[id] = &entry{image: img}
}

// Image returns the Image value at id, or a *KindMismatchError /
// *NotFoundError.
func (s *Store) Image(id ir.Id) (*Image, error) {
	e, ok := s.values[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if e.image == nil {
		return nil, &KindMismatchError{ID: id, Expected: "Image", Actual: "Buffer"}
	}
	return e.image, nil
}

// Buffer returns the Buffer value at id, or a *KindMismatchError /
// *NotFoundError.
func (s *Store) Buffer(id ir.Id) (*Buffer, error) {
	e, ok := s.values[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if e.buffer == nil {
		return nil, &KindMismatchError{ID: id, Expected: "Buffer", Actual: "Image"}
	}
	return e.buffer, nil
}

// Has reports whether id has any value (of either kind) in the store.
func (s *Store) Has(id ir.Id) bool {
	_, ok := s.values[id]
	return ok
}

// EnsureImage returns the existing Image at id if its properties already
// match props; otherwise it destroys whatever was there (if anything),
// allocates a fresh texture/views of the requested properties, inserts
// it, and returns the new value. This is the store's single resource-
// reuse mechanism: op implementations call it instead of
// allocating GPU resources directly.
func (s *Store) EnsureImage(id ir.Id, props ImageProperties) (*Image, error) {
	if e, ok := s.values[id]; ok && e.image != nil && e.image.Properties == props {
		return e.image, nil
	}
	s.release(id)

	mipLevels := props.MipLevelCount
	if mipLevels == 0 {
		mipLevels = 1
	}
	texUsage := gpu.TextureUsageTextureBinding | gpu.TextureUsageStorageBinding | gpu.TextureUsageCopySrc | gpu.TextureUsageCopyDst
	texID, err := s.device.CreateTexture(&gpu.TextureDescriptor{
		Width:         props.Width,
		Height:        props.Height,
		MipLevelCount: mipLevels,
		Format:        props.Format,
		Usage:         texUsage,
	})
	if err != nil {
		return nil, &gpu.ResourceError{Op: "EnsureImage.CreateTexture", Err: err}
	}
	view, err := s.device.CreateTextureView(texID)
	if err != nil {
		return nil, &gpu.ResourceError{Op: "EnsureImage.CreateTextureView", Err: err}
	}
	baseMip, err := s.device.CreateBaseMipView(texID)
	if err != nil {
		return nil, &gpu.ResourceError{Op: "EnsureImage.CreateBaseMipView", Err: err}
	}

	img := &Image{
		Properties:  props,
		UUID:        nextUUID(),
		Texture:     texID,
		View:        view,
		BaseMipView: baseMip,
	}
	s.values[id] = &entry{image: img}
	return img, nil
}

// EnsureBuffer is EnsureImage's buffer counterpart.
func (s *Store) EnsureBuffer(id ir.Id, props BufferProperties) (*Buffer, error) {
	if e, ok := s.values[id]; ok && e.buffer != nil && e.buffer.Properties == props {
		return e.buffer, nil
	}
	s.release(id)

	usage := gpu.BufferUsageStorage | gpu.BufferUsageCopySrc | gpu.BufferUsageCopyDst
	if props.HostReadable {
		usage |= gpu.BufferUsageMapRead
	}
	bufID, err := s.device.CreateBuffer(&gpu.BufferDescriptor{
		Size:  props.Size,
		Usage: usage,
	})
	if err != nil {
		return nil, &gpu.ResourceError{Op: "EnsureBuffer.CreateBuffer", Err: err}
	}

	buf := &Buffer{Properties: props, UUID: nextUUID(), Handle: bufID}
	s.values[id] = &entry{buffer: buf}
	return buf, nil
}

// release destroys whatever resource currently lives at id, if any.
func (s *Store) release(id ir.Id) {
	e, ok := s.values[id]
	if !ok {
		return
	}
	if e.image != nil {
		s.device.DestroyTexture(e.image.Texture)
	}
	if e.buffer != nil {
		s.device.DestroyBuffer(e.buffer.Handle)
	}
	delete(s.values, id)
}

// Reset releases every value in the store. The engine's rollback uses
// RollbackTo instead; within one execution Ensure* releases a single id
// when it reallocates it.
func (s *Store) Reset() {
	for id := range s.values {
		s.release(id)
	}
}

// Snapshot records which ids currently have a value, for the engine's
// rollback bookkeeping: a failed execute() destroys the values at ids
// that were not populated when the snapshot was taken.
type Snapshot struct {
	ids map[ir.Id]bool
}

// Snapshot captures the current set of populated ids.
func (s *Store) Snapshot() Snapshot {
	ids := make(map[ir.Id]bool, len(s.values))
	for id := range s.values {
		ids[id] = true
	}
	return Snapshot{ids: ids}
}

// RollbackTo destroys every value at an id that was not populated when
// snap was taken. Ids that were populated keep their current value: a
// value that Insert or Ensure* replaced since the snapshot is not
// restored.
func (s *Store) RollbackTo(snap Snapshot) {
	for id := range s.values {
		if !snap.ids[id] {
			s.release(id)
		}
	}
}
