package videofx

import (
	"errors"
	"log/slog"

	"github.com/gogpu/videofx/gpu"
)

// errNoMappedFrame is returned when FinishProcessingAndBlend is called with
// no mapped frame to consume.
var errNoMappedFrame = errors.New("videofx: no mapped frame to consume")

// ReadbackPipeline decouples GPU frame production from CPU per-frame
// processing. Each queued frame is blitted into a reusable effect input
// texture, copied into a pooled pixel buffer object on the GPU timeline,
// and later mapped into CPU memory where the Processor runs. Mapping is
// deferred until the pipeline needs the buffer back, so readback latency
// overlaps continued frame production.
//
// Frames move through three states: submitted (readback scheduled, buffer
// not yet mapped), mapped (CPU pixels available, result chain running), and
// consumed (FinishProcessingAndBlend called, buffer recycled). Completions
// are strictly FIFO relative to submissions; the pipeline never reorders
// frames.
//
// The pipeline must be driven from the single thread that owns the GPU
// context.
type ReadbackPipeline[T any] struct {
	ctx              gpu.Context
	processor        Processor[T]
	pendingQueueSize int
	pool             *PixelBufferPool

	unmapped []*texturePixelBuffer
	mapped   []*texturePixelBuffer

	inputWidth     int
	inputHeight    int
	effectInput    gpu.Texture
	hasEffectInput bool
	released       bool
}

// texturePixelBuffer tracks one frame's pixel buffer from readback schedule
// to recycle, together with the deferred image it resolves at map time.
type texturePixelBuffer struct {
	width  int
	height int
	buf    PixelBuffer
	image  *Result[Image]
	mapped bool
}

// NewReadbackPipeline creates a pipeline that hands frame pixels to
// processor. The pending queue size (see WithPendingQueueSize) bounds
// scheduled but not yet mapped transfers.
func NewReadbackPipeline[T any](ctx gpu.Context, processor Processor[T], opts ...PipelineOption) *ReadbackPipeline[T] {
	o := defaultPipelineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ReadbackPipeline[T]{
		ctx:              ctx,
		processor:        processor,
		pendingQueueSize: o.pendingQueueSize,
		pool:             NewPixelBufferPool(ctx),
	}
}

// QueueInputFrame schedules an asynchronous readback of the frame region
// selected by the processor and returns a deferred result that resolves
// once the pixels have been mapped and the processor has run.
//
// If the pending transfer count has reached the configured bound, the
// oldest transfer is synchronously mapped first, so the unmapped count
// never exceeds the bound. If the frame dimensions differ from the last
// configured dimensions, all pending transfers are drained and the
// processor is reconfigured before the frame is processed.
//
// Any GPU failure fails the returned result immediately; in-flight frames
// are unaffected.
func (p *ReadbackPipeline[T]) QueueInputFrame(frame gpu.Texture, presentationTimeUs int64) *Result[T] {
	if p.released {
		return FailedResult[T](frameErr(presentationTimeUs, ErrReleased))
	}
	for len(p.unmapped) >= p.pendingQueueSize {
		if _, err := p.mapOnePixelBuffer(); err != nil {
			return FailedResult[T](frameErr(presentationTimeUs, err))
		}
	}

	if !p.hasEffectInput || frame.Width != p.inputWidth || frame.Height != p.inputHeight {
		if err := p.reconfigure(frame); err != nil {
			return FailedResult[T](frameErr(presentationTimeUs, err))
		}
	}

	srcRect := p.processor.ScaledRegion(presentationTimeUs)
	if err := p.ctx.BlitFramebuffer(frame, srcRect, p.effectInput, p.effectInput.Bounds()); err != nil {
		return FailedResult[T](frameErr(presentationTimeUs, err))
	}

	tpb, err := p.scheduleReadback()
	if err != nil {
		return FailedResult[T](frameErr(presentationTimeUs, err))
	}
	p.unmapped = append(p.unmapped, tpb)

	return chainResult(tpb.image, func(im Image) *Result[T] {
		return p.processor.ProcessImage(im, presentationTimeUs)
	})
}

// FinishProcessingAndBlend consumes the oldest mapped frame, recycling its
// buffer, and invokes the processor's blend step with the frame's original
// texture and the computed result.
//
// The pipeline must be driven in strict submission order: the oldest mapped
// frame is always the one being completed.
func (p *ReadbackPipeline[T]) FinishProcessingAndBlend(frame gpu.Texture, presentationTimeUs int64, result T) error {
	if len(p.mapped) == 0 {
		return frameErr(presentationTimeUs, errNoMappedFrame)
	}
	tpb := p.mapped[0]
	p.mapped = p.mapped[1:]
	if err := p.unmapAndRecycle(tpb); err != nil {
		return frameErr(presentationTimeUs, err)
	}
	return p.processor.FinishProcessingAndBlend(frame, presentationTimeUs, result)
}

// SignalEndOfCurrentInputStream maps every remaining pending transfer so
// that all outstanding results resolve. Call when no further submissions
// are expected for the current stream.
func (p *ReadbackPipeline[T]) SignalEndOfCurrentInputStream() error {
	for {
		more, err := p.mapOnePixelBuffer()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Flush abandons every in-flight frame for a stream reset: buffers in both
// the pending and mapped sets are unmapped (where mapped) and recycled, and
// unresolved results are never resolved. Callers must not keep waiting on
// results handed out before the flush.
func (p *ReadbackPipeline[T]) Flush() error {
	return p.unmapAndRecycleAll()
}

// Release flushes the pipeline, deletes every pooled buffer and the effect
// input texture. All teardown steps are attempted even if some fail; the
// first error is returned. Frames queued after Release fail with
// ErrReleased.
func (p *ReadbackPipeline[T]) Release() error {
	p.released = true
	firstErr := p.unmapAndRecycleAll()
	if err := p.pool.Release(); err != nil && firstErr == nil {
		firstErr = err
	}
	if p.hasEffectInput {
		if err := p.ctx.DeleteTexture(p.effectInput); err != nil && firstErr == nil {
			firstErr = err
		}
		p.hasEffectInput = false
	}
	return firstErr
}

// reconfigure drains all pending transfers, reconfigures the processor for
// the new frame dimensions and reallocates the effect input texture.
func (p *ReadbackPipeline[T]) reconfigure(frame gpu.Texture) error {
	for {
		more, err := p.mapOnePixelBuffer()
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	p.inputWidth = frame.Width
	p.inputHeight = frame.Height
	effectInputSize, err := p.processor.Configure(frame.Width, frame.Height)
	if err != nil {
		return err
	}
	if p.hasEffectInput {
		if err := p.ctx.DeleteTexture(p.effectInput); err != nil {
			return err
		}
		p.hasEffectInput = false
	}
	tex, err := p.ctx.CreateTexture(effectInputSize.Width, effectInputSize.Height)
	if err != nil {
		return err
	}
	p.effectInput = tex
	p.hasEffectInput = true
	Logger().Debug("readback pipeline reconfigured",
		slog.Int("inputWidth", frame.Width),
		slog.Int("inputHeight", frame.Height),
		slog.Int("effectWidth", effectInputSize.Width),
		slog.Int("effectHeight", effectInputSize.Height))
	return nil
}

// scheduleReadback acquires a pooled buffer sized to the effect input
// texture and schedules the GPU copy into it.
func (p *ReadbackPipeline[T]) scheduleReadback() (*texturePixelBuffer, error) {
	buf, err := p.pool.Acquire(p.effectInput.ByteSize())
	if err != nil {
		return nil, err
	}
	if err := p.ctx.SchedulePixelBufferRead(p.effectInput, buf.ID); err != nil {
		p.pool.Recycle(buf)
		return nil, err
	}
	return &texturePixelBuffer{
		width:  p.effectInput.Width,
		height: p.effectInput.Height,
		buf:    buf,
		image:  NewResult[Image](),
	}, nil
}

// mapOnePixelBuffer maps the oldest pending transfer, blocking until the
// GPU copy has completed, and resolves the frame's image. It reports
// whether a transfer was mapped.
func (p *ReadbackPipeline[T]) mapOnePixelBuffer() (bool, error) {
	if len(p.unmapped) == 0 {
		return false, nil
	}
	tpb := p.unmapped[0]
	data, err := p.ctx.MapPixelBuffer(tpb.buf.ID, tpb.buf.Size)
	if err != nil {
		return false, err
	}
	p.unmapped = p.unmapped[1:]
	tpb.mapped = true
	p.mapped = append(p.mapped, tpb)
	tpb.image.Resolve(Image{Width: tpb.width, Height: tpb.height, Data: data})
	return true, nil
}

// unmapAndRecycle returns one frame's buffer to the pool, unmapping it
// first if it was mapped.
func (p *ReadbackPipeline[T]) unmapAndRecycle(tpb *texturePixelBuffer) error {
	if tpb.mapped {
		if err := p.ctx.UnmapPixelBuffer(tpb.buf.ID); err != nil {
			return err
		}
		tpb.mapped = false
	}
	p.pool.Recycle(tpb.buf)
	return nil
}

// unmapAndRecycleAll recycles every buffer in both queues, attempting all
// of them and returning the first error.
func (p *ReadbackPipeline[T]) unmapAndRecycleAll() error {
	var firstErr error
	for _, tpb := range p.unmapped {
		if err := p.unmapAndRecycle(tpb); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.unmapped = nil
	for _, tpb := range p.mapped {
		if err := p.unmapAndRecycle(tpb); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.mapped = nil
	if firstErr != nil {
		Logger().Warn("readback pipeline flush error", slog.Any("err", firstErr))
	}
	return firstErr
}
