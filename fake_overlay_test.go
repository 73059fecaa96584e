package videofx

import (
	"image"
	"image/color"

	"github.com/gogpu/videofx/gpu"
)

// fakeOverlay implements Overlay (and HDROverlay when gainmap is set).
type fakeOverlay struct {
	texture    gpu.TextureID
	size       Size
	transform  Matrix4
	settings   OverlaySettings
	gainmap    *Gainmap
	gainmapErr error
	textureErr error

	configured []Size
	released   int
	releaseErr error
}

func newFakeOverlay(texture gpu.TextureID) *fakeOverlay {
	return &fakeOverlay{
		texture:   texture,
		size:      Size{Width: 64, Height: 64},
		transform: Identity4(),
		settings:  DefaultOverlaySettings(),
	}
}

func (o *fakeOverlay) TextureID(int64) (gpu.TextureID, error) {
	if o.textureErr != nil {
		return gpu.InvalidID, o.textureErr
	}
	return o.texture, nil
}

func (o *fakeOverlay) TextureSize(int64) Size             { return o.size }
func (o *fakeOverlay) VertexTransform(int64) Matrix4      { return o.transform }
func (o *fakeOverlay) Settings(int64) OverlaySettings     { return o.settings }
func (o *fakeOverlay) Configure(videoSize Size) error {
	o.configured = append(o.configured, videoSize)
	return nil
}

func (o *fakeOverlay) Release() error {
	o.released++
	return o.releaseErr
}

func (o *fakeOverlay) Gainmap(int64) (*Gainmap, error) {
	if o.gainmapErr != nil {
		return nil, o.gainmapErr
	}
	return o.gainmap, nil
}

// testGainmap builds a small gain map whose pixels are filled with c.
func testGainmap(c color.RGBA) *Gainmap {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return &Gainmap{
		Contents:        img,
		RatioMin:        [3]float32{1, 1, 1},
		RatioMax:        [3]float32{4, 4, 4},
		Gamma:           [3]float32{1, 1, 1},
		EpsilonSDR:      [3]float32{0.01, 0.01, 0.01},
		EpsilonHDR:      [3]float32{0.01, 0.01, 0.01},
		DisplayRatioHDR: 4,
		DisplayRatioSDR: 1,
	}
}
