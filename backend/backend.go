package backend

import (
	"errors"

	"github.com/gogpu/videofx/gpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoBackend is returned by Default when no backend is registered.
	ErrNoBackend = errors.New("backend: no backend registered")
)

// Factory creates a new gpu.Context. A factory is called once per context;
// it may fail if the platform lacks the required GPU support (for example
// no current GL context on the calling thread).
type Factory func() (gpu.Context, error)

// Backend names known to the priority order.
const (
	// BackendGLES is the OpenGL ES backend in backend/gles.
	BackendGLES = "gles"
)
