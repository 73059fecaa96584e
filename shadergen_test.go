package videofx

import (
	"fmt"
	"strings"
	"testing"
)

func TestVertexShaderSourceDeclaresPerOverlayUniforms(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 15} {
		t.Run(fmt.Sprintf("overlays=%d", n), func(t *testing.T) {
			src := vertexShaderSource(n)

			if !strings.HasPrefix(src, "#version 100\n") {
				t.Error("vertex shader missing version header")
			}
			if !strings.Contains(src, "attribute vec4 aFramePosition;") {
				t.Error("vertex shader missing aFramePosition attribute")
			}
			if got := strings.Count(src, "uniform mat4 uTransformationMatrix"); got != n {
				t.Errorf("uTransformationMatrix declarations = %d, want %d", got, n)
			}
			if got := strings.Count(src, "uniform mat4 uVertexTransformationMatrix"); got != n {
				t.Errorf("uVertexTransformationMatrix declarations = %d, want %d", got, n)
			}
			// One declaration plus one assignment per overlay varying.
			if got := strings.Count(src, "varying vec2 vOverlayTexSamplingCoord"); got != n {
				t.Errorf("overlay varying declarations = %d, want %d", got, n)
			}
		})
	}
}

func TestFragmentShaderSourceDeclaresPerOverlayUniforms(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		useHDR bool
	}{
		{"sdr zero overlays", 0, false},
		{"sdr one overlay", 1, false},
		{"sdr max overlays", MaxSDROverlays, false},
		{"hdr one overlay", 1, true},
		{"hdr max overlays", MaxHDROverlays, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fragmentShaderSource(tt.n, tt.useHDR)

			if got := strings.Count(src, "uniform sampler2D uOverlayTexSampler"); got != tt.n {
				t.Errorf("overlay sampler declarations = %d, want %d", got, tt.n)
			}
			if got := strings.Count(src, "uniform float uOverlayAlphaScale"); got != tt.n {
				t.Errorf("alpha scale declarations = %d, want %d", got, tt.n)
			}
			if got := strings.Count(src, "fragColor = getMixColor(fragColor,"); got != tt.n {
				t.Errorf("blend statements = %d, want %d", got, tt.n)
			}

			wantGainmaps := 0
			if tt.useHDR {
				wantGainmaps = tt.n
			}
			if got := strings.Count(src, "uniform sampler2D uGainmapTexSampler"); got != wantGainmaps {
				t.Errorf("gain-map sampler declarations = %d, want %d", got, wantGainmaps)
			}
			if tt.useHDR != strings.Contains(src, "applyGainmap") {
				t.Errorf("applyGainmap presence = %v, want %v", !tt.useHDR, tt.useHDR)
			}
			if !strings.Contains(src, "getClampToBorderOverlayColor") {
				t.Error("fragment shader missing clamp-to-border helper")
			}
		})
	}
}

func TestShaderSourceDeterministic(t *testing.T) {
	if vertexShaderSource(5) != vertexShaderSource(5) {
		t.Error("vertex shader generation is not deterministic")
	}
	if fragmentShaderSource(5, true) != fragmentShaderSource(5, true) {
		t.Error("fragment shader generation is not deterministic")
	}
}

// The following tests check the compositing laws of the generated fragment
// code against a CPU reference of the same arithmetic.

type rgbaF struct{ r, g, b, a float32 }

// clampToBorderSample mirrors getClampToBorderOverlayColor: coordinates
// outside [0,1] sample as fully transparent.
func clampToBorderSample(texel rgbaF, u, v, alphaScale float32) rgbaF {
	if u > 1 || u < 0 || v > 1 || v < 0 {
		return rgbaF{}
	}
	texel.a *= alphaScale
	return texel
}

// mixColor mirrors getMixColor.
func mixColor(video, overlay rgbaF) rgbaF {
	return rgbaF{
		r: overlay.r*overlay.a + video.r*(1-overlay.a),
		g: overlay.g*overlay.a + video.g*(1-overlay.a),
		b: overlay.b*overlay.a + video.b*(1-overlay.a),
		a: overlay.a + video.a*(1-overlay.a),
	}
}

func TestClampToBorderLaw(t *testing.T) {
	texel := rgbaF{r: 1, g: 0.5, b: 0.25, a: 1}
	coords := []struct{ u, v float32 }{
		{-0.01, 0.5}, {1.01, 0.5}, {0.5, -0.01}, {0.5, 1.01}, {2, 2}, {-1, -1},
	}
	for _, c := range coords {
		got := clampToBorderSample(texel, c.u, c.v, 1)
		if got.a != 0 {
			t.Errorf("sample at (%v, %v) has alpha %v, want 0", c.u, c.v, got.a)
		}
	}
	// In-range coordinates keep the texel.
	if got := clampToBorderSample(texel, 0.5, 0.5, 1); got != texel {
		t.Errorf("in-range sample = %+v, want %+v", got, texel)
	}
}

func TestCompositingOrderDependent(t *testing.T) {
	base := rgbaF{r: 0.1, g: 0.1, b: 0.1, a: 1}
	overlayA := rgbaF{r: 1, g: 0, b: 0, a: 0.5}
	overlayB := rgbaF{r: 0, g: 0, b: 1, a: 0.5}

	ab := mixColor(mixColor(base, overlayA), overlayB)
	ba := mixColor(mixColor(base, overlayB), overlayA)
	if ab == ba {
		t.Error("compositing overlapping translucent layers should be order-dependent")
	}
}

func TestCompositingLeftToRightAccumulation(t *testing.T) {
	base := rgbaF{r: 0.2, g: 0.4, b: 0.6, a: 1}
	overlays := []rgbaF{
		{r: 1, g: 0, b: 0, a: 0.3},
		{r: 0, g: 1, b: 0, a: 0.5},
		{r: 0, g: 0, b: 1, a: 0.7},
	}

	// Folding left-to-right must equal the explicit sequential unrolling
	// the generated shader performs.
	got := base
	for _, ov := range overlays {
		got = mixColor(got, ov)
	}
	want := mixColor(mixColor(mixColor(base, overlays[0]), overlays[1]), overlays[2])
	if got != want {
		t.Errorf("left-to-right fold = %+v, want %+v", got, want)
	}

	// An opaque top layer hides everything beneath it.
	opaque := rgbaF{r: 0.9, g: 0.8, b: 0.7, a: 1}
	final := mixColor(got, opaque)
	if final.r != opaque.r || final.g != opaque.g || final.b != opaque.b {
		t.Errorf("opaque top layer leaked underlying color: %+v", final)
	}
}

func TestMaxOverlays(t *testing.T) {
	if got := maxOverlays(false); got != MaxSDROverlays {
		t.Errorf("maxOverlays(false) = %d, want %d", got, MaxSDROverlays)
	}
	if got := maxOverlays(true); got != MaxHDROverlays {
		t.Errorf("maxOverlays(true) = %d, want %d", got, MaxHDROverlays)
	}
}
