package videofx

import "github.com/gogpu/videofx/gpu"

// Overlay is a visual layer composited on top of a base video frame.
//
// Overlays are externally owned content sources (static images, animated
// bitmaps, custom renderers); the compositor only reads from them once per
// frame and releases them at shutdown. All per-frame accessors take the
// frame's presentation timestamp in microseconds so animated overlays can
// vary over time.
type Overlay interface {
	// TextureID returns the overlay's texture for the given timestamp.
	TextureID(presentationTimeUs int64) (gpu.TextureID, error)

	// TextureSize returns the pixel dimensions of the overlay's texture
	// for the given timestamp.
	TextureSize(presentationTimeUs int64) Size

	// VertexTransform returns a transformation applied to the overlay's
	// sampling coordinates after placement, independent of the placement
	// transform. Most overlays return Identity4.
	VertexTransform(presentationTimeUs int64) Matrix4

	// Settings returns the overlay's placement settings for the given
	// timestamp.
	Settings(presentationTimeUs int64) OverlaySettings

	// Configure tells the overlay the video frame size before the first
	// frame is drawn and again whenever the size changes.
	Configure(videoSize Size) error

	// Release frees any resources the overlay holds.
	Release() error
}

// HDROverlay is an Overlay with an attached gain map, required for every
// layer when the compositor runs in HDR mode.
type HDROverlay interface {
	Overlay

	// Gainmap returns the overlay's gain map for the given timestamp.
	Gainmap(presentationTimeUs int64) (*Gainmap, error)
}

// OverlaySettings controls where an overlay is placed over the video frame
// and how it is blended.
//
// Anchors are in normalized device coordinates, so (0, 0) is the center of
// the frame or overlay and (-1, -1) the bottom-left corner. The overlay is
// positioned so that OverlayAnchor coincides with BackgroundAnchor.
type OverlaySettings struct {
	// AlphaScale multiplies the overlay's alpha channel. 1 leaves the
	// overlay's own transparency untouched; 0 makes it invisible.
	AlphaScale float32

	// BackgroundAnchor is the anchor point within the video frame.
	BackgroundAnchor [2]float32

	// OverlayAnchor is the anchor point within the overlay.
	OverlayAnchor [2]float32

	// Scale scales the overlay around its anchor.
	Scale [2]float32

	// RotationDegrees rotates the overlay counter-clockwise around its
	// anchor.
	RotationDegrees float32
}

// DefaultOverlaySettings returns settings that draw the overlay at its
// native pixel size, centered on the frame, fully opaque.
func DefaultOverlaySettings() OverlaySettings {
	return OverlaySettings{
		AlphaScale: 1,
		Scale:      [2]float32{1, 1},
	}
}

// placementMatrix computes the matrix that maps frame NDC positions into an
// overlay's sampling space. The generated vertex shader evaluates
//
//	overlayCoord = vertexTransform * placementMatrix * framePosition
//
// so the matrix is the inverse of the overlay's placement: it undoes the
// background anchor translation, rescales frame units to overlay units, and
// then undoes the overlay's own anchor, rotation and scale.
func placementMatrix(videoSize, overlaySize Size, settings OverlaySettings) Matrix4 {
	if videoSize.IsZero() || overlaySize.IsZero() {
		return Identity4()
	}

	// Frame NDC and overlay NDC span the same [-1, 1] range over different
	// pixel extents, so one frame unit is videoSize/overlaySize overlay
	// units.
	aspectX := float32(videoSize.Width) / float32(overlaySize.Width)
	aspectY := float32(videoSize.Height) / float32(overlaySize.Height)

	scaleX := settings.Scale[0]
	scaleY := settings.Scale[1]
	if scaleX == 0 {
		scaleX = 1
	}
	if scaleY == 0 {
		scaleY = 1
	}

	m := Translate4(-settings.BackgroundAnchor[0], -settings.BackgroundAnchor[1], 0)
	m = Scale4(aspectX, aspectY, 1).Mul(m)
	m = RotateZ4(-settings.RotationDegrees).Mul(m)
	m = Scale4(1/scaleX, 1/scaleY, 1).Mul(m)
	m = Translate4(settings.OverlayAnchor[0], settings.OverlayAnchor[1], 0).Mul(m)
	return m
}
