package videofx

// DefaultPendingQueueSize is the default bound on scheduled but not yet
// mapped pixel buffer transfers in a ReadbackPipeline.
const DefaultPendingQueueSize = 4

// PipelineOption configures a ReadbackPipeline during creation.
//
// Example:
//
//	p := videofx.NewReadbackPipeline[Stats](ctx, processor,
//		videofx.WithPendingQueueSize(2))
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	pendingQueueSize int
}

func defaultPipelineOptions() pipelineOptions {
	return pipelineOptions{
		pendingQueueSize: DefaultPendingQueueSize,
	}
}

// WithPendingQueueSize bounds the number of in-flight unmapped transfers.
// When a new frame would exceed the bound, the pipeline synchronously maps
// the oldest pending buffer before proceeding (backpressure blocks the
// producer; frames are never dropped). Values below 1 are treated as 1.
func WithPendingQueueSize(n int) PipelineOption {
	return func(o *pipelineOptions) {
		if n < 1 {
			n = 1
		}
		o.pendingQueueSize = n
	}
}

// CompositorOption configures a Compositor during creation.
type CompositorOption func(*compositorOptions)

type compositorOptions struct {
	useHDR bool
}

func defaultCompositorOptions() compositorOptions {
	return compositorOptions{}
}

// WithHDR enables high dynamic range compositing. Every overlay must then
// implement HDROverlay, and the overlay count limit drops from
// MaxSDROverlays to MaxHDROverlays because each gain map occupies an extra
// sampler unit.
func WithHDR() CompositorOption {
	return func(o *compositorOptions) {
		o.useHDR = true
	}
}
