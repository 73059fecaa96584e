package videofx

import (
	"log/slog"

	"github.com/gogpu/videofx/gpu"
)

// PixelBuffer is one pooled pixel buffer object with a fixed byte size.
type PixelBuffer struct {
	ID   gpu.BufferID
	Size int
}

// PixelBufferPool recycles pixel buffer objects by exact byte size so that
// streams with a stable frame size allocate buffers only once.
//
// The pool retains a single size class: a free buffer whose size does not
// match the requested size is deleted during the acquire scan rather than
// kept around.
type PixelBufferPool struct {
	ctx  gpu.Context
	free []PixelBuffer
}

// NewPixelBufferPool creates an empty pool allocating through ctx.
func NewPixelBufferPool(ctx gpu.Context) *PixelBufferPool {
	return &PixelBufferPool{ctx: ctx}
}

// Acquire returns a buffer of exactly size bytes, reusing the first free
// buffer of that size if one exists. Free buffers of a different size
// encountered during the scan are stale and are deleted.
func (p *PixelBufferPool) Acquire(size int) (PixelBuffer, error) {
	for len(p.free) > 0 {
		buf := p.free[0]
		p.free = p.free[1:]
		if buf.Size == size {
			Logger().Debug("pixel buffer reused", slog.Int("size", size))
			return buf, nil
		}
		if err := p.ctx.DeleteBuffer(buf.ID); err != nil {
			return PixelBuffer{}, err
		}
	}

	id, err := p.ctx.CreatePixelBuffer(size)
	if err != nil {
		return PixelBuffer{}, err
	}
	Logger().Debug("pixel buffer allocated", slog.Int("size", size))
	return PixelBuffer{ID: id, Size: size}, nil
}

// Recycle returns a buffer to the free list for reuse.
func (p *PixelBufferPool) Recycle(buf PixelBuffer) {
	p.free = append(p.free, buf)
}

// Release deletes every pooled buffer. If several deletions fail, the first
// error is returned after attempting the rest.
func (p *PixelBufferPool) Release() error {
	var firstErr error
	for _, buf := range p.free {
		if err := p.ctx.DeleteBuffer(buf.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.free = nil
	return firstErr
}
