package gpu

import "errors"

// Sentinel errors returned by Device implementations, as package-level
// vars rather than an exception hierarchy.
var (
	// ErrNotInitialized is returned when operations are attempted before
	// the device finished initialization.
	ErrNotInitialized = errors.New("gpu: device not initialized")

	// ErrNoAdapter is returned when no suitable GPU adapter was found.
	ErrNoAdapter = errors.New("gpu: no compatible adapter available")

	// ErrDeviceLost is returned when the GPU device is lost mid-session.
	// Per the error-handling design, the host must tear down and
	// recreate the engine (and therefore the Device) in response.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrInvalidDimensions is returned for a zero or negative texture
	// dimension request.
	ErrInvalidDimensions = errors.New("gpu: invalid texture dimensions")

	// ErrResourceDestroyed is returned when operating on a destroyed
	// resource.
	ErrResourceDestroyed = errors.New("gpu: resource has been destroyed")
)

// ResourceError wraps a lower-level backend failure (shader compile,
// out-of-memory, device-lost) as a distinct error kind. It is always
// surfaced to the caller; op implementations never recover from it.
type ResourceError struct {
	Op  string // the operation that failed, e.g. "CreateTexture"
	Err error
}

func (e *ResourceError) Error() string {
	if e.Op == "" {
		return "gpu: resource error: " + e.Err.Error()
	}
	return "gpu: " + e.Op + ": " + e.Err.Error()
}

func (e *ResourceError) Unwrap() error { return e.Err }

// ReadbackError wraps a failed or cancelled buffer-map request.
type ReadbackError struct {
	Err error
}

func (e *ReadbackError) Error() string { return "gpu: readback failed: " + e.Err.Error() }
func (e *ReadbackError) Unwrap() error { return e.Err }
