// Package videofx composites overlay layers onto GPU-resident video frames
// and streams frame pixels to the CPU through an asynchronous readback
// pipeline.
//
// # Overview
//
// videofx covers two coupled pieces of a video effects pipeline:
//
//   - Compositor: generates and runs a shader program sized to a fixed set
//     of overlay layers, blending all of them onto a base frame in a single
//     draw call. Standard dynamic range overlays use plain alpha blending;
//     high dynamic range mode additionally applies per-overlay gain maps.
//
//   - ReadbackPipeline: schedules GPU to CPU pixel transfers through pooled
//     pixel buffer objects so that readback latency overlaps continued frame
//     production. A CPU processor inspects or transforms the pixels, and the
//     result is blended back onto the originating frame in submission order.
//
// # Quick start
//
//	import (
//		"github.com/gogpu/videofx"
//		"github.com/gogpu/videofx/backend"
//		_ "github.com/gogpu/videofx/backend/gles" // registers the GL ES context
//	)
//
//	ctx, err := backend.Default()
//	if err != nil { ... }
//
//	comp, err := videofx.NewCompositor(ctx, overlays)
//	if err != nil { ... }
//	defer comp.Release()
//
//	for each frame {
//		if err := comp.DrawFrame(frameTexture, ptsUs); err != nil { ... }
//	}
//
// # Threading
//
// All GPU work is issued from the single thread that owns the GPU context.
// "Asynchronous" refers to pipelining against the GPU timeline, not to
// goroutines: deferred results are resolved synchronously at explicit
// pipeline steps, never from another goroutine.
//
// # Capabilities
//
// Overlay content sources and the CPU frame processor are consumed through
// the Overlay and Processor interfaces; the GPU itself is consumed through
// the gpu.Context interface, with implementations registered in the backend
// package.
package videofx
