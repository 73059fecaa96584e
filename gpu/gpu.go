package gpu

import "image"

// Resource IDs
//
// These opaque IDs represent GPU resources. Each backend implementation
// maintains the mapping between IDs and actual driver handles.

// TextureID is an opaque handle to a GPU texture.
type TextureID uint32

// BufferID is an opaque handle to a GPU pixel buffer object.
type BufferID uint32

// FramebufferID is an opaque handle to a GPU framebuffer.
type FramebufferID uint32

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BytesPerPixel is the byte footprint of one RGBA pixel.
const BytesPerPixel = 4

// Texture couples a texture with the framebuffer that reads from or renders
// into it, plus its dimensions. It is returned by Context.CreateTexture and
// passed by value; the underlying GPU resources are owned by whoever created
// the texture.
type Texture struct {
	ID     TextureID
	FBO    FramebufferID
	Width  int
	Height int
}

// ByteSize returns the byte footprint of the texture's pixel data.
func (t Texture) ByteSize() int {
	return t.Width * t.Height * BytesPerPixel
}

// Bounds returns the texture's pixel rectangle anchored at the origin.
func (t Texture) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.Width, t.Height)
}

// Program is a compiled and linked shader program. Uniform setters take
// effect on the currently bound program, so Use must be called before any
// setter in a frame.
type Program interface {
	// Use binds the program for subsequent uniform binding and draws.
	Use() error

	// SetFloatUniform sets a float uniform by name.
	SetFloatUniform(name string, value float32) error

	// SetFloatsUniform sets a vec2/vec3/vec4/mat4 uniform by name,
	// depending on the length of values.
	SetFloatsUniform(name string, values []float32) error

	// SetIntUniform sets an int uniform by name.
	SetIntUniform(name string, value int32) error

	// SetSamplerUniform binds the texture to the given texture unit and
	// points the named sampler uniform at that unit.
	SetSamplerUniform(name string, texture TextureID, unit int) error

	// Delete releases the program. The program must not be used afterwards.
	Delete() error
}

// Context is the GPU primitive capability consumed by the compositor and
// the readback pipeline. All calls must be issued from the thread that owns
// the GPU context; the interface carries no synchronization of its own.
//
// Backend implementations are registered with the backend package and are
// expected to return errors that describe the failing driver call.
type Context interface {
	// CreateTexture allocates an RGBA texture of the given size together
	// with a framebuffer attached to it, suitable as a blit target and as
	// a readback source.
	CreateTexture(width, height int) (Texture, error)

	// DeleteTexture releases a texture and its framebuffer.
	DeleteTexture(tex Texture) error

	// CreateImageTexture allocates a texture initialized from img.
	// The texture has no framebuffer; it is sampled, never rendered into.
	CreateImageTexture(img *image.RGBA) (TextureID, error)

	// UpdateImageTexture replaces the full contents of a texture
	// previously created with CreateImageTexture. The new image may have
	// different dimensions.
	UpdateImageTexture(id TextureID, img *image.RGBA) error

	// DeleteImageTexture releases a texture created with CreateImageTexture.
	DeleteImageTexture(id TextureID) error

	// CreatePixelBuffer allocates a pixel buffer object of the given byte
	// size for GPU to CPU streaming.
	CreatePixelBuffer(size int) (BufferID, error)

	// SchedulePixelBufferRead schedules an asynchronous copy of the
	// texture's pixels into the pixel buffer. The copy completes on the
	// GPU timeline; MapPixelBuffer blocks until it has finished.
	SchedulePixelBufferRead(src Texture, buf BufferID) error

	// MapPixelBuffer maps the buffer into CPU-visible memory, waiting for
	// any scheduled transfer to complete. The returned slice aliases GPU
	// memory and is valid until UnmapPixelBuffer.
	MapPixelBuffer(buf BufferID, size int) ([]byte, error)

	// UnmapPixelBuffer releases a mapping established by MapPixelBuffer.
	UnmapPixelBuffer(buf BufferID) error

	// DeleteBuffer releases a pixel buffer object.
	DeleteBuffer(buf BufferID) error

	// BlitFramebuffer copies srcRect of src into dstRect of dst, scaling
	// with linear filtering if the rectangles differ in size.
	BlitFramebuffer(src Texture, srcRect image.Rectangle, dst Texture, dstRect image.Rectangle) error

	// CompileProgram compiles and links a vertex/fragment shader pair from
	// source text. The program renders full-screen quads: the backend owns
	// the quad vertex data bound to the aFramePosition attribute.
	CompileProgram(vertexSrc, fragmentSrc string) (Program, error)

	// DrawQuad issues a four-vertex triangle-strip draw with the currently
	// bound program, covering the full viewport.
	DrawQuad() error
}
