package videofx

import (
	"hash/fnv"
	"image"

	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"
)

// Gainmap is the auxiliary per-pixel data that recovers a high dynamic
// range image from a standard dynamic range base image, together with the
// per-channel interpolation parameters that drive the recovery math.
//
// The parameter names follow the Ultra HDR format: for a base color S and
// gain-map sample G, the recovered linear color is
//
//	log(ratio) = mix(log(RatioMin), log(RatioMax), G^(1/Gamma))
//	H = (S + EpsilonSDR) * exp(log(ratio) * W) - EpsilonHDR
//
// where W weights the contribution based on the display ratios.
type Gainmap struct {
	// Contents holds the gain-map pixels. Single-channel gain maps store
	// the gain in every channel (or the alpha channel, see AlphaChannel).
	Contents image.Image

	// AlphaChannel indicates the gain is stored in the alpha channel
	// rather than the color channels.
	AlphaChannel bool

	// RatioMin and RatioMax bound the per-channel gain ratio.
	RatioMin [3]float32
	RatioMax [3]float32

	// Gamma is the per-channel encoding gamma of the gain-map contents.
	Gamma [3]float32

	// EpsilonSDR and EpsilonHDR are the per-channel offsets applied to the
	// SDR input and HDR output.
	EpsilonSDR [3]float32
	EpsilonHDR [3]float32

	// DisplayRatioHDR is the HDR/SDR display luminance ratio at which the
	// gain map is fully applied.
	DisplayRatioHDR float32

	// DisplayRatioSDR is the display ratio at or below which the gain map
	// has no effect.
	DisplayRatioSDR float32
}

// Equal reports whether two gain maps have the same content. Parameters are
// compared by value and pixel contents by fingerprint, never by reference,
// so a re-decoded copy of the same gain map compares equal.
func (g *Gainmap) Equal(o *Gainmap) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.AlphaChannel != o.AlphaChannel ||
		g.RatioMin != o.RatioMin ||
		g.RatioMax != o.RatioMax ||
		g.Gamma != o.Gamma ||
		g.EpsilonSDR != o.EpsilonSDR ||
		g.EpsilonHDR != o.EpsilonHDR ||
		g.DisplayRatioHDR != o.DisplayRatioHDR ||
		g.DisplayRatioSDR != o.DisplayRatioSDR {
		return false
	}
	return g.fingerprint() == o.fingerprint()
}

// fingerprint hashes the gain map's pixel contents.
func (g *Gainmap) fingerprint() uint64 {
	h := fnv.New64a()
	if g.Contents == nil {
		return h.Sum64()
	}
	rgba := g.rgbaContents()
	b := rgba.Bounds()
	var dims [8]byte
	dims[0] = byte(b.Dx())
	dims[1] = byte(b.Dx() >> 8)
	dims[2] = byte(b.Dx() >> 16)
	dims[3] = byte(b.Dx() >> 24)
	dims[4] = byte(b.Dy())
	dims[5] = byte(b.Dy() >> 8)
	dims[6] = byte(b.Dy() >> 16)
	dims[7] = byte(b.Dy() >> 24)
	h.Write(dims[:])
	h.Write(rgba.Pix)
	return h.Sum64()
}

// rgbaContents returns the gain-map pixels as a tightly packed RGBA image
// ready for texture upload, converting if the source uses another format.
func (g *Gainmap) rgbaContents() *image.RGBA {
	if rgba, ok := g.Contents.(*image.RGBA); ok && rgba.Stride == rgba.Bounds().Dx()*4 {
		return rgba
	}
	b := g.Contents.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), g.Contents, b.Min, xdraw.Src)
	return rgba
}

// gainmapUniforms are the shader parameters derived from a gain map,
// uploaded once per overlay slot whenever the gain map's content changes.
type gainmapUniforms struct {
	isAlpha       int32
	noGamma       int32
	singleChannel int32
	logRatioMin   [4]float32
	logRatioMax   [4]float32
	epsilonSDR    [4]float32
	epsilonHDR    [4]float32
	gamma         [4]float32
	displayRatioH float32
	displayRatioS float32
}

// uniforms computes the shader parameters for the gain map.
func (g *Gainmap) uniforms() gainmapUniforms {
	u := gainmapUniforms{
		isAlpha:       boolToInt32(g.AlphaChannel),
		noGamma:       boolToInt32(g.Gamma == [3]float32{1, 1, 1}),
		singleChannel: boolToInt32(g.singleChannel()),
		epsilonSDR:    vec4(g.EpsilonSDR),
		epsilonHDR:    vec4(g.EpsilonHDR),
		gamma:         vec4(g.Gamma),
		displayRatioH: g.DisplayRatioHDR,
		displayRatioS: g.DisplayRatioSDR,
	}
	for i := 0; i < 3; i++ {
		u.logRatioMin[i] = math32.Log(g.RatioMin[i])
		u.logRatioMax[i] = math32.Log(g.RatioMax[i])
	}
	return u
}

// singleChannel reports whether every per-channel parameter is uniform
// across channels, letting the shader read a single gain channel.
func (g *Gainmap) singleChannel() bool {
	uniform := func(v [3]float32) bool { return v[0] == v[1] && v[1] == v[2] }
	return uniform(g.RatioMin) && uniform(g.RatioMax) &&
		uniform(g.Gamma) && uniform(g.EpsilonSDR) && uniform(g.EpsilonHDR)
}

func vec4(v [3]float32) [4]float32 {
	return [4]float32{v[0], v[1], v[2], 0}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
