package gles

import (
	"errors"
	"fmt"
	"image"
	"sync"

	gl "github.com/go-gl/gl/v3.1/gles2"

	"github.com/gogpu/videofx/backend"
	"github.com/gogpu/videofx/gpu"
)

// Name is the backend identifier in the backend registry.
const Name = backend.BackendGLES

func init() {
	backend.Register(Name, New)
}

// ErrNoContext is returned when the calling thread has no current GL
// context.
var ErrNoContext = errors.New("gles: no current GL context")

var initOnce sync.Once

// Context implements gpu.Context on an OpenGL ES 3.x context. The GL
// context must be current on the calling thread for every call, including
// New; the caller owns context creation (EGL, SDL, GLFW, ...).
type Context struct{}

// New loads the GL function pointers and returns a context.
func New() (gpu.Context, error) {
	var initErr error
	initOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContext, initErr)
	}
	return &Context{}, nil
}

// checkError drains the GL error flag after op.
func checkError(op string) error {
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("gles: %s: error %#x", op, e)
	}
	return nil
}

// CreateTexture allocates an RGBA texture with a framebuffer attached.
func (c *Context) CreateTexture(width, height int) (gpu.Texture, error) {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	if err := checkError("TexImage2D"); err != nil {
		gl.DeleteTextures(1, &texID)
		return gpu.Texture{}, err
	}

	var fboID uint32
	gl.GenFramebuffers(1, &fboID)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fboID)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, texID, 0)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &fboID)
		gl.DeleteTextures(1, &texID)
		return gpu.Texture{}, fmt.Errorf("gles: framebuffer incomplete: status %#x", status)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	return gpu.Texture{
		ID:     gpu.TextureID(texID),
		FBO:    gpu.FramebufferID(fboID),
		Width:  width,
		Height: height,
	}, nil
}

// DeleteTexture releases a texture and its framebuffer.
func (c *Context) DeleteTexture(tex gpu.Texture) error {
	fboID := uint32(tex.FBO)
	texID := uint32(tex.ID)
	gl.DeleteFramebuffers(1, &fboID)
	gl.DeleteTextures(1, &texID)
	return checkError("DeleteTexture")
}

// CreateImageTexture allocates a texture initialized from img.
func (c *Context) CreateImageTexture(img *image.RGBA) (gpu.TextureID, error) {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	if err := uploadImage(img); err != nil {
		gl.DeleteTextures(1, &texID)
		return gpu.InvalidID, err
	}
	return gpu.TextureID(texID), nil
}

// UpdateImageTexture replaces the full contents of a texture. The storage
// is respecified, so the new image may have different dimensions.
func (c *Context) UpdateImageTexture(id gpu.TextureID, img *image.RGBA) error {
	gl.BindTexture(gl.TEXTURE_2D, uint32(id))
	return uploadImage(img)
}

func uploadImage(img *image.RGBA) error {
	b := img.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	return checkError("TexImage2D")
}

// DeleteImageTexture releases a texture created with CreateImageTexture.
func (c *Context) DeleteImageTexture(id gpu.TextureID) error {
	texID := uint32(id)
	gl.DeleteTextures(1, &texID)
	return checkError("DeleteTextures")
}

// CreatePixelBuffer allocates a pixel buffer object for GPU to CPU
// streaming.
func (c *Context) CreatePixelBuffer(size int) (gpu.BufferID, error) {
	var bufID uint32
	gl.GenBuffers(1, &bufID)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, bufID)
	gl.BufferData(gl.PIXEL_PACK_BUFFER, size, nil, gl.STREAM_READ)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	if err := checkError("BufferData"); err != nil {
		gl.DeleteBuffers(1, &bufID)
		return gpu.InvalidID, err
	}
	return gpu.BufferID(bufID), nil
}

// SchedulePixelBufferRead schedules an asynchronous ReadPixels into the
// buffer. With a pixel pack buffer bound, ReadPixels returns immediately
// and the copy completes on the GPU timeline.
func (c *Context) SchedulePixelBufferRead(src gpu.Texture, buf gpu.BufferID) error {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(src.FBO))
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, uint32(buf))
	gl.ReadPixels(0, 0, int32(src.Width), int32(src.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.PtrOffset(0))
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return checkError("ReadPixels")
}

// MapPixelBuffer maps the buffer for reading, blocking until any scheduled
// transfer into it has completed.
func (c *Context) MapPixelBuffer(buf gpu.BufferID, size int) ([]byte, error) {
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, uint32(buf))
	ptr := gl.MapBufferRange(gl.PIXEL_PACK_BUFFER, 0, size, gl.MAP_READ_BIT)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	if ptr == nil {
		if err := checkError("MapBufferRange"); err != nil {
			return nil, err
		}
		return nil, errors.New("gles: MapBufferRange returned nil")
	}
	return unsafeSlice(ptr, size), nil
}

// UnmapPixelBuffer releases a mapping established by MapPixelBuffer.
func (c *Context) UnmapPixelBuffer(buf gpu.BufferID) error {
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, uint32(buf))
	ok := gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	if !ok {
		return errors.New("gles: UnmapBuffer: data store contents corrupted")
	}
	return checkError("UnmapBuffer")
}

// DeleteBuffer releases a pixel buffer object.
func (c *Context) DeleteBuffer(buf gpu.BufferID) error {
	bufID := uint32(buf)
	gl.DeleteBuffers(1, &bufID)
	return checkError("DeleteBuffers")
}

// BlitFramebuffer copies srcRect of src into dstRect of dst with linear
// filtering.
func (c *Context) BlitFramebuffer(src gpu.Texture, srcRect image.Rectangle, dst gpu.Texture, dstRect image.Rectangle) error {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(src.FBO))
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, uint32(dst.FBO))
	gl.BlitFramebuffer(
		int32(srcRect.Min.X), int32(srcRect.Min.Y), int32(srcRect.Max.X), int32(srcRect.Max.Y),
		int32(dstRect.Min.X), int32(dstRect.Min.Y), int32(dstRect.Max.X), int32(dstRect.Max.Y),
		gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	return checkError("BlitFramebuffer")
}

// DrawQuad issues the four-vertex triangle-strip draw for the currently
// bound program.
func (c *Context) DrawQuad() error {
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	return checkError("DrawArrays")
}
