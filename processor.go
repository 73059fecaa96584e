package videofx

import (
	"image"

	"github.com/gogpu/videofx/gpu"
)

// Image is a CPU-visible view of a frame's pixels handed to a Processor.
//
// Data aliases mapped GPU memory in tightly packed RGBA order and stays
// valid only until the frame is consumed by FinishProcessingAndBlend or
// abandoned by Flush. Processors that need the pixels beyond that point
// must copy them, for example with ToRGBA.
type Image struct {
	Width  int
	Height int
	Data   []byte
}

// ToRGBA copies the pixels into a freshly allocated image.RGBA.
func (im Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))
	copy(out.Pix, im.Data)
	return out
}

// Processor is the CPU side of the readback pipeline: it inspects or
// transforms frame pixels between GPU readback and the blend-back step.
// The result type T carries whatever the processor computes per frame.
//
// All methods are invoked from the pipeline's GPU thread.
type Processor[T any] interface {
	// Configure is called before the first frame and on every input
	// resolution change. It returns the size at which the processor wants
	// to receive frame pixels; the pipeline scales frames to that size
	// before readback.
	Configure(inputWidth, inputHeight int) (Size, error)

	// ScaledRegion selects the region of the input frame to read back for
	// the given timestamp, in input frame coordinates.
	ScaledRegion(presentationTimeUs int64) image.Rectangle

	// ProcessImage starts CPU processing of a frame's pixels. The returned
	// result may resolve immediately or at a later pipeline step; im.Data
	// is valid until the frame is consumed or flushed.
	ProcessImage(im Image, presentationTimeUs int64) *Result[T]

	// FinishProcessingAndBlend applies the processing result back onto the
	// frame's output texture. Called strictly in submission order.
	FinishProcessingAndBlend(output gpu.Texture, presentationTimeUs int64, result T) error
}
