package videofx

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/videofx/gpu"
)

// Compositor blends a fixed set of overlay layers onto base video frames in
// a single draw call per frame. The shader program is generated for the
// exact overlay count at construction and is immutable for the compositor's
// lifetime.
//
// In SDR mode overlays are alpha-blended in order, later overlays on top.
// In HDR mode (see WithHDR) every overlay must implement HDROverlay: its
// color is expanded through the overlay's gain map and converted to linear
// BT.2020 before the same alpha blend. Gain-map textures are cached per
// overlay slot and re-uploaded only when the gain map's content changes.
//
// The compositor must be driven from the single thread that owns the GPU
// context.
type Compositor struct {
	ctx      gpu.Context
	program  gpu.Program
	overlays []Overlay
	useHDR   bool

	videoSize Size

	// Gain-map cache, keyed by texture unit index (overlay slot + 1).
	lastGainmaps    map[int]*Gainmap
	gainmapTextures map[int]gpu.TextureID
}

// NewCompositor creates a compositor for the given overlays. The overlay
// set is fixed for the compositor's lifetime; the overlay count must not
// exceed MaxSDROverlays, or MaxHDROverlays when WithHDR is given
// (ErrTooManyOverlays otherwise, before any GPU resource is allocated).
func NewCompositor(ctx gpu.Context, overlays []Overlay, opts ...CompositorOption) (*Compositor, error) {
	o := defaultCompositorOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if limit := maxOverlays(o.useHDR); len(overlays) > limit {
		return nil, fmt.Errorf("%w: %d overlays, limit %d", ErrTooManyOverlays, len(overlays), limit)
	}

	program, err := ctx.CompileProgram(
		vertexShaderSource(len(overlays)),
		fragmentShaderSource(len(overlays), o.useHDR))
	if err != nil {
		return nil, err
	}

	return &Compositor{
		ctx:             ctx,
		program:         program,
		overlays:        overlays,
		useHDR:          o.useHDR,
		lastGainmaps:    make(map[int]*Gainmap),
		gainmapTextures: make(map[int]gpu.TextureID),
	}, nil
}

// Configure records the video frame size for placement math and forwards it
// to every overlay. It returns the unchanged size: the compositor writes
// frames at their input dimensions.
func (c *Compositor) Configure(width, height int) (Size, error) {
	videoSize := Size{Width: width, Height: height}
	c.videoSize = videoSize
	for _, overlay := range c.overlays {
		if err := overlay.Configure(videoSize); err != nil {
			return Size{}, err
		}
	}
	return videoSize, nil
}

// DrawFrame blends every overlay onto the input frame with one full-screen
// quad draw into the currently bound render target. Per-overlay uniforms
// are fetched from the overlays at the given presentation timestamp.
//
// Any GPU failure aborts the frame and is returned as a *FrameError
// carrying the timestamp; the compositor remains usable for later frames.
func (c *Compositor) DrawFrame(input gpu.Texture, presentationTimeUs int64) error {
	if err := c.drawFrame(input, presentationTimeUs); err != nil {
		return frameErr(presentationTimeUs, err)
	}
	return nil
}

func (c *Compositor) drawFrame(input gpu.Texture, presentationTimeUs int64) error {
	if c.program == nil {
		return ErrReleased
	}
	if err := c.program.Use(); err != nil {
		return err
	}

	for i, overlay := range c.overlays {
		unit := i + 1

		if c.useHDR {
			if err := c.bindGainmap(overlay, unit, presentationTimeUs); err != nil {
				return err
			}
		}

		texID, err := overlay.TextureID(presentationTimeUs)
		if err != nil {
			return err
		}
		if err := c.program.SetSamplerUniform(fmt.Sprintf("uOverlayTexSampler%d", unit), texID, unit); err != nil {
			return err
		}

		vertexTransform := overlay.VertexTransform(presentationTimeUs)
		if err := c.program.SetFloatsUniform(fmt.Sprintf("uVertexTransformationMatrix%d", unit), vertexTransform[:]); err != nil {
			return err
		}

		settings := overlay.Settings(presentationTimeUs)
		placement := placementMatrix(c.videoSize, overlay.TextureSize(presentationTimeUs), settings)
		if err := c.program.SetFloatsUniform(fmt.Sprintf("uTransformationMatrix%d", unit), placement[:]); err != nil {
			return err
		}
		if err := c.program.SetFloatUniform(fmt.Sprintf("uOverlayAlphaScale%d", unit), settings.AlphaScale); err != nil {
			return err
		}
	}

	if err := c.program.SetSamplerUniform("uVideoTexSampler0", input.ID, 0); err != nil {
		return err
	}
	return c.ctx.DrawQuad()
}

// bindGainmap keeps the slot's gain-map texture and uniforms current for
// the frame. The texture is allocated on first use of the slot and updated
// in place when the gain map's content changes; an unchanged gain map
// leaves texture and parameter uniforms untouched. The sampler binding is
// refreshed every frame because texture unit state does not persist across
// draws.
func (c *Compositor) bindGainmap(overlay Overlay, unit int, presentationTimeUs int64) error {
	hdrOverlay, ok := overlay.(HDROverlay)
	if !ok {
		return ErrNotHDROverlay
	}
	gainmap, err := hdrOverlay.Gainmap(presentationTimeUs)
	if err != nil {
		return err
	}
	if gainmap == nil {
		return ErrNotHDROverlay
	}

	if last := c.lastGainmaps[unit]; last == nil || !last.Equal(gainmap) {
		c.lastGainmaps[unit] = gainmap
		contents := gainmap.rgbaContents()
		if texID, ok := c.gainmapTextures[unit]; ok {
			if err := c.ctx.UpdateImageTexture(texID, contents); err != nil {
				return err
			}
			Logger().Debug("gain-map texture updated", slog.Int("slot", unit))
		} else {
			texID, err := c.ctx.CreateImageTexture(contents)
			if err != nil {
				return err
			}
			c.gainmapTextures[unit] = texID
			Logger().Debug("gain-map texture allocated", slog.Int("slot", unit))
		}
		if err := c.setGainmapUniforms(unit, gainmap); err != nil {
			return err
		}
	}

	// Gain maps sample from the units above the overlay range.
	gainmapUnit := len(c.overlays) + unit
	return c.program.SetSamplerUniform(fmt.Sprintf("uGainmapTexSampler%d", unit), c.gainmapTextures[unit], gainmapUnit)
}

// setGainmapUniforms uploads the slot's gain-map interpolation parameters.
func (c *Compositor) setGainmapUniforms(unit int, gainmap *Gainmap) error {
	u := gainmap.uniforms()
	steps := []struct {
		name string
		set  func(name string) error
	}{
		{"uGainmapIsAlpha", func(n string) error { return c.program.SetIntUniform(n, u.isAlpha) }},
		{"uNoGamma", func(n string) error { return c.program.SetIntUniform(n, u.noGamma) }},
		{"uSingleChannel", func(n string) error { return c.program.SetIntUniform(n, u.singleChannel) }},
		{"uLogRatioMin", func(n string) error { return c.program.SetFloatsUniform(n, u.logRatioMin[:]) }},
		{"uLogRatioMax", func(n string) error { return c.program.SetFloatsUniform(n, u.logRatioMax[:]) }},
		{"uEpsilonSdr", func(n string) error { return c.program.SetFloatsUniform(n, u.epsilonSDR[:]) }},
		{"uEpsilonHdr", func(n string) error { return c.program.SetFloatsUniform(n, u.epsilonHDR[:]) }},
		{"uGainmapGamma", func(n string) error { return c.program.SetFloatsUniform(n, u.gamma[:]) }},
		{"uDisplayRatioHdr", func(n string) error { return c.program.SetFloatUniform(n, u.displayRatioH) }},
		{"uDisplayRatioSdr", func(n string) error { return c.program.SetFloatUniform(n, u.displayRatioS) }},
	}
	for _, step := range steps {
		if err := step.set(fmt.Sprintf("%s%d", step.name, unit)); err != nil {
			return err
		}
	}
	return nil
}

// Release deletes the compiled program, releases every overlay and deletes
// every cached gain-map texture. Only resources actually allocated are
// touched, so Release is safe after partial construction failures. All
// steps are attempted; the first error is returned.
func (c *Compositor) Release() error {
	var firstErr error
	if c.program != nil {
		if err := c.program.Delete(); err != nil {
			firstErr = err
		}
		c.program = nil
	}
	for _, overlay := range c.overlays {
		if err := overlay.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for unit, texID := range c.gainmapTextures {
		if err := c.ctx.DeleteImageTexture(texID); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.gainmapTextures, unit)
		delete(c.lastGainmaps, unit)
	}
	if firstErr != nil {
		Logger().Warn("compositor release error", slog.Any("err", firstErr))
	}
	return firstErr
}
