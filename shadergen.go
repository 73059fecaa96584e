package videofx

import (
	"fmt"
	"strings"
)

// Overlay count limits imposed by the 16 sampler units available to a single
// program: one unit serves the video frame, one per overlay, and in HDR mode
// one more per overlay for its gain map.
const (
	// MaxSDROverlays is the maximum overlay count in SDR mode.
	MaxSDROverlays = 15

	// MaxHDROverlays is the maximum overlay count in HDR mode.
	MaxHDROverlays = 7
)

// maxOverlays returns the overlay count limit for the dynamic range mode.
func maxOverlays(useHDR bool) int {
	if useHDR {
		return MaxHDROverlays
	}
	return MaxSDROverlays
}

// vertexShaderSource generates the vertex shader for numOverlays overlay
// layers. Each layer gets its own placement and vertex transformation
// uniforms and its own varying sampling coordinate; the per-layer code is
// unrolled, so the layer count is fixed at program compile time.
func vertexShaderSource(numOverlays int) string {
	var sb strings.Builder
	sb.WriteString("#version 100\n")
	sb.WriteString("attribute vec4 aFramePosition;\n")
	sb.WriteString("varying vec2 vVideoTexSamplingCoord0;\n")

	for i := 1; i <= numOverlays; i++ {
		fmt.Fprintf(&sb, "uniform mat4 uTransformationMatrix%d;\n", i)
		fmt.Fprintf(&sb, "uniform mat4 uVertexTransformationMatrix%d;\n", i)
		fmt.Fprintf(&sb, "varying vec2 vOverlayTexSamplingCoord%d;\n", i)
	}

	sb.WriteString("vec2 getTexSamplingCoord(vec2 ndcPosition) {\n")
	sb.WriteString("  return vec2(ndcPosition.x * 0.5 + 0.5, ndcPosition.y * 0.5 + 0.5);\n")
	sb.WriteString("}\n")
	sb.WriteString("void main() {\n")
	sb.WriteString("  gl_Position = aFramePosition;\n")
	sb.WriteString("  vVideoTexSamplingCoord0 = getTexSamplingCoord(aFramePosition.xy);\n")

	for i := 1; i <= numOverlays; i++ {
		fmt.Fprintf(&sb, "  vec4 aOverlayPosition%d =\n", i)
		fmt.Fprintf(&sb, "      uVertexTransformationMatrix%d * uTransformationMatrix%d * aFramePosition;\n", i, i)
		fmt.Fprintf(&sb, "  vOverlayTexSamplingCoord%d = getTexSamplingCoord(aOverlayPosition%d.xy);\n", i, i)
	}

	sb.WriteString("}\n")
	return sb.String()
}

// fragmentShaderSource generates the fragment shader for numOverlays
// overlay layers. Layers are composited left to right over the video frame
// with sequential alpha blending, so later overlays draw on top of earlier
// ones. In HDR mode each overlay's color passes through gain-map expansion
// and BT.2020 conversion before blending.
func fragmentShaderSource(numOverlays int, useHDR bool) string {
	var sb strings.Builder
	sb.WriteString("#version 100\n")
	sb.WriteString("precision mediump float;\n")
	sb.WriteString("uniform sampler2D uVideoTexSampler0;\n")
	sb.WriteString("varying vec2 vVideoTexSamplingCoord0;\n")
	sb.WriteString("\n")
	// CLAMP_TO_BORDER is implemented manually: OpenGL ES exposes the
	// wrapping option only from 3.2, and overlays rely on out-of-range
	// coordinates sampling as fully transparent.
	sb.WriteString("vec4 getClampToBorderOverlayColor(\n")
	sb.WriteString("    sampler2D texSampler, vec2 texSamplingCoord, float alphaScale) {\n")
	sb.WriteString("  if (texSamplingCoord.x > 1.0 || texSamplingCoord.x < 0.0\n")
	sb.WriteString("      || texSamplingCoord.y > 1.0 || texSamplingCoord.y < 0.0) {\n")
	sb.WriteString("    return vec4(0.0, 0.0, 0.0, 0.0);\n")
	sb.WriteString("  } else {\n")
	sb.WriteString("    vec4 overlayColor = vec4(texture2D(texSampler, texSamplingCoord));\n")
	sb.WriteString("    overlayColor.a = alphaScale * overlayColor.a;\n")
	sb.WriteString("    return overlayColor;\n")
	sb.WriteString("  }\n")
	sb.WriteString("}\n")
	sb.WriteString("\n")
	sb.WriteString("vec4 getMixColor(vec4 videoColor, vec4 overlayColor) {\n")
	sb.WriteString("  vec4 outputColor;\n")
	sb.WriteString("  outputColor.rgb = overlayColor.rgb * overlayColor.a\n")
	sb.WriteString("      + videoColor.rgb * (1.0 - overlayColor.a);\n")
	sb.WriteString("  outputColor.a = overlayColor.a + videoColor.a * (1.0 - overlayColor.a);\n")
	sb.WriteString("  return outputColor;\n")
	sb.WriteString("}\n")
	sb.WriteString("\n")

	if useHDR {
		sb.WriteString(ultraHDRInsert)
	}

	for i := 1; i <= numOverlays; i++ {
		fmt.Fprintf(&sb, "uniform sampler2D uOverlayTexSampler%d;\n", i)
		fmt.Fprintf(&sb, "uniform float uOverlayAlphaScale%d;\n", i)
		fmt.Fprintf(&sb, "varying vec2 vOverlayTexSamplingCoord%d;\n", i)
		sb.WriteString("\n")
		if useHDR {
			fmt.Fprintf(&sb, "uniform sampler2D uGainmapTexSampler%d;\n", i)
			fmt.Fprintf(&sb, "uniform int uGainmapIsAlpha%d;\n", i)
			fmt.Fprintf(&sb, "uniform int uNoGamma%d;\n", i)
			fmt.Fprintf(&sb, "uniform int uSingleChannel%d;\n", i)
			fmt.Fprintf(&sb, "uniform vec4 uLogRatioMin%d;\n", i)
			fmt.Fprintf(&sb, "uniform vec4 uLogRatioMax%d;\n", i)
			fmt.Fprintf(&sb, "uniform vec4 uEpsilonSdr%d;\n", i)
			fmt.Fprintf(&sb, "uniform vec4 uEpsilonHdr%d;\n", i)
			fmt.Fprintf(&sb, "uniform vec4 uGainmapGamma%d;\n", i)
			fmt.Fprintf(&sb, "uniform float uDisplayRatioHdr%d;\n", i)
			fmt.Fprintf(&sb, "uniform float uDisplayRatioSdr%d;\n", i)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("void main() {\n")
	sb.WriteString("  vec4 videoColor = vec4(texture2D(uVideoTexSampler0, vVideoTexSamplingCoord0));\n")
	sb.WriteString("  vec4 fragColor = videoColor;\n")

	for i := 1; i <= numOverlays; i++ {
		fmt.Fprintf(&sb, "  vec4 electricalOverlayColor%d = getClampToBorderOverlayColor(\n", i)
		fmt.Fprintf(&sb, "      uOverlayTexSampler%d, vOverlayTexSamplingCoord%d, uOverlayAlphaScale%d);\n", i, i, i)
		mixColor := fmt.Sprintf("electricalOverlayColor%d", i)
		if useHDR {
			fmt.Fprintf(&sb, "  vec4 gainmap%d = texture2D(uGainmapTexSampler%d, vOverlayTexSamplingCoord%d);\n", i, i, i)
			fmt.Fprintf(&sb, "  vec3 opticalBt709Color%d = applyGainmap(\n", i)
			fmt.Fprintf(&sb, "      srgbEotf(electricalOverlayColor%d), gainmap%d, uGainmapIsAlpha%d,\n", i, i, i)
			fmt.Fprintf(&sb, "      uNoGamma%d, uSingleChannel%d, uLogRatioMin%d, uLogRatioMax%d, uEpsilonSdr%d,\n", i, i, i, i, i)
			fmt.Fprintf(&sb, "      uEpsilonHdr%d, uGainmapGamma%d, uDisplayRatioHdr%d, uDisplayRatioSdr%d);\n", i, i, i, i)
			fmt.Fprintf(&sb, "  vec4 opticalBt2020OverlayColor%d =\n", i)
			fmt.Fprintf(&sb, "      vec4(scaleHdrLuminance(bt709ToBt2020(opticalBt709Color%d)), electricalOverlayColor%d.a);\n", i, i)
			mixColor = fmt.Sprintf("opticalBt2020OverlayColor%d", i)
		}
		fmt.Fprintf(&sb, "  fragColor = getMixColor(fragColor, %s);\n", mixColor)
	}

	sb.WriteString("  gl_FragColor = fragColor;\n")
	sb.WriteString("}\n")
	return sb.String()
}

// ultraHDRInsert holds the gain-map expansion functions appended to the
// fragment shader in HDR mode: sRGB to linear conversion, the Ultra HDR
// per-pixel gain interpolation, BT.709 to BT.2020 primary conversion, and
// luminance rescaling to the output's dynamic range.
const ultraHDRInsert = `highp float srgbEotfSingleChannel(highp float electricalChannel) {
  return electricalChannel <= 0.04045
      ? electricalChannel / 12.92
      : pow((electricalChannel + 0.055) / 1.055, 2.4);
}

highp vec4 srgbEotf(highp vec4 electricalColor) {
  return vec4(
      srgbEotfSingleChannel(electricalColor.r),
      srgbEotfSingleChannel(electricalColor.g),
      srgbEotfSingleChannel(electricalColor.b),
      electricalColor.a);
}

// Weight of the gain-map contribution. The output targets the gain map's
// full HDR display ratio, so the weight saturates at 1 whenever the HDR
// ratio exceeds the SDR transition ratio.
highp float gainmapWeight(highp float displayRatioHdr, highp float displayRatioSdr) {
  if (displayRatioHdr <= displayRatioSdr) {
    return 0.0;
  }
  return 1.0;
}

highp vec3 applyGainmap(highp vec4 opticalSdrColor, highp vec4 gainmapSample,
    int gainmapIsAlpha, int noGamma, int singleChannel, highp vec4 logRatioMin,
    highp vec4 logRatioMax, highp vec4 epsilonSdr, highp vec4 epsilonHdr,
    highp vec4 gainmapGamma, highp float displayRatioHdr,
    highp float displayRatioSdr) {
  highp float W = gainmapWeight(displayRatioHdr, displayRatioSdr);
  highp vec3 gain = gainmapSample.rgb;
  if (gainmapIsAlpha == 1) {
    gain = vec3(gainmapSample.a);
  }
  if (singleChannel == 1) {
    gain = vec3(gain.r);
  }
  if (noGamma == 0) {
    gain = pow(gain, 1.0 / gainmapGamma.rgb);
  }
  highp vec3 logRatio = mix(logRatioMin.rgb, logRatioMax.rgb, gain);
  return (opticalSdrColor.rgb + epsilonSdr.rgb) * exp(logRatio * W) - epsilonHdr.rgb;
}

// Column-major BT.709 to BT.2020 primary conversion for linear light.
const highp mat3 RGB_BT709_TO_BT2020 = mat3(
    0.6274, 0.0691, 0.0164,
    0.3293, 0.9195, 0.0880,
    0.0433, 0.0114, 0.8956);

highp vec3 bt709ToBt2020(highp vec3 opticalColor) {
  return RGB_BT709_TO_BT2020 * opticalColor;
}

// Linear luminance is scaled so that SDR reference white (203 nits) keeps
// its share of a 1000 nit HDR output.
const highp float SDR_WHITE_NITS = 203.0;
const highp float HDR_PEAK_NITS = 1000.0;

highp vec3 scaleHdrLuminance(highp vec3 opticalColor) {
  return opticalColor * SDR_WHITE_NITS / HDR_PEAK_NITS;
}

`
