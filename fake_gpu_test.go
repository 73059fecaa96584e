package videofx

import (
	"fmt"
	"image"

	"github.com/gogpu/videofx/gpu"
)

// fakeContext implements gpu.Context for tests, handing out sequential IDs
// and recording every call. Specific operations can be made to fail by
// name via the fail map.
type fakeContext struct {
	nextID uint32

	textures      map[gpu.TextureID]gpu.Texture
	imageTextures map[gpu.TextureID]*image.RGBA
	imageUpdates  map[gpu.TextureID]int
	buffers       map[gpu.BufferID]int // id -> size
	deletedBufs   []gpu.BufferID
	mappedBufs    map[gpu.BufferID][]byte
	scheduled     []gpu.BufferID
	blits         []fakeBlit
	programs      []*fakeProgram
	quadDraws     int

	fail map[string]error
}

type fakeBlit struct {
	src     gpu.Texture
	srcRect image.Rectangle
	dst     gpu.Texture
	dstRect image.Rectangle
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		textures:      make(map[gpu.TextureID]gpu.Texture),
		imageTextures: make(map[gpu.TextureID]*image.RGBA),
		imageUpdates:  make(map[gpu.TextureID]int),
		buffers:       make(map[gpu.BufferID]int),
		mappedBufs:    make(map[gpu.BufferID][]byte),
		fail:          make(map[string]error),
	}
}

func (f *fakeContext) failOn(op string) error {
	if err := f.fail[op]; err != nil {
		return err
	}
	return nil
}

func (f *fakeContext) id() uint32 {
	f.nextID++
	return f.nextID
}

func (f *fakeContext) CreateTexture(width, height int) (gpu.Texture, error) {
	if err := f.failOn("CreateTexture"); err != nil {
		return gpu.Texture{}, err
	}
	tex := gpu.Texture{
		ID:     gpu.TextureID(f.id()),
		FBO:    gpu.FramebufferID(f.id()),
		Width:  width,
		Height: height,
	}
	f.textures[tex.ID] = tex
	return tex, nil
}

func (f *fakeContext) DeleteTexture(tex gpu.Texture) error {
	if err := f.failOn("DeleteTexture"); err != nil {
		return err
	}
	delete(f.textures, tex.ID)
	return nil
}

func (f *fakeContext) CreateImageTexture(img *image.RGBA) (gpu.TextureID, error) {
	if err := f.failOn("CreateImageTexture"); err != nil {
		return gpu.InvalidID, err
	}
	id := gpu.TextureID(f.id())
	f.imageTextures[id] = img
	return id, nil
}

func (f *fakeContext) UpdateImageTexture(id gpu.TextureID, img *image.RGBA) error {
	if err := f.failOn("UpdateImageTexture"); err != nil {
		return err
	}
	if _, ok := f.imageTextures[id]; !ok {
		return fmt.Errorf("fake: update of unknown image texture %d", id)
	}
	f.imageTextures[id] = img
	f.imageUpdates[id]++
	return nil
}

func (f *fakeContext) DeleteImageTexture(id gpu.TextureID) error {
	if err := f.failOn("DeleteImageTexture"); err != nil {
		return err
	}
	delete(f.imageTextures, id)
	return nil
}

func (f *fakeContext) CreatePixelBuffer(size int) (gpu.BufferID, error) {
	if err := f.failOn("CreatePixelBuffer"); err != nil {
		return gpu.InvalidID, err
	}
	id := gpu.BufferID(f.id())
	f.buffers[id] = size
	return id, nil
}

func (f *fakeContext) SchedulePixelBufferRead(src gpu.Texture, buf gpu.BufferID) error {
	if err := f.failOn("SchedulePixelBufferRead"); err != nil {
		return err
	}
	f.scheduled = append(f.scheduled, buf)
	return nil
}

func (f *fakeContext) MapPixelBuffer(buf gpu.BufferID, size int) ([]byte, error) {
	if err := f.failOn("MapPixelBuffer"); err != nil {
		return nil, err
	}
	data := make([]byte, size)
	f.mappedBufs[buf] = data
	return data, nil
}

func (f *fakeContext) UnmapPixelBuffer(buf gpu.BufferID) error {
	if err := f.failOn("UnmapPixelBuffer"); err != nil {
		return err
	}
	if _, ok := f.mappedBufs[buf]; !ok {
		return fmt.Errorf("fake: unmap of unmapped buffer %d", buf)
	}
	delete(f.mappedBufs, buf)
	return nil
}

func (f *fakeContext) DeleteBuffer(buf gpu.BufferID) error {
	if err := f.failOn("DeleteBuffer"); err != nil {
		return err
	}
	if _, ok := f.buffers[buf]; !ok {
		return fmt.Errorf("fake: delete of unknown buffer %d", buf)
	}
	delete(f.buffers, buf)
	f.deletedBufs = append(f.deletedBufs, buf)
	return nil
}

func (f *fakeContext) BlitFramebuffer(src gpu.Texture, srcRect image.Rectangle, dst gpu.Texture, dstRect image.Rectangle) error {
	if err := f.failOn("BlitFramebuffer"); err != nil {
		return err
	}
	f.blits = append(f.blits, fakeBlit{src: src, srcRect: srcRect, dst: dst, dstRect: dstRect})
	return nil
}

func (f *fakeContext) CompileProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	if err := f.failOn("CompileProgram"); err != nil {
		return nil, err
	}
	p := &fakeProgram{
		vertexSrc:   vertexSrc,
		fragmentSrc: fragmentSrc,
		floats:      make(map[string][]float32),
		ints:        make(map[string]int32),
		samplers:    make(map[string]fakeSampler),
		fail:        f.fail,
	}
	f.programs = append(f.programs, p)
	return p, nil
}

func (f *fakeContext) DrawQuad() error {
	if err := f.failOn("DrawQuad"); err != nil {
		return err
	}
	f.quadDraws++
	return nil
}

type fakeSampler struct {
	texture gpu.TextureID
	unit    int
}

// fakeProgram records uniform bindings by name.
type fakeProgram struct {
	vertexSrc   string
	fragmentSrc string

	useCount int
	deleted  bool

	floats   map[string][]float32
	ints     map[string]int32
	samplers map[string]fakeSampler

	fail map[string]error
}

func (p *fakeProgram) failOn(op string) error {
	if p.fail == nil {
		return nil
	}
	if err := p.fail[op]; err != nil {
		return err
	}
	return nil
}

func (p *fakeProgram) Use() error {
	if err := p.failOn("Use"); err != nil {
		return err
	}
	p.useCount++
	return nil
}

func (p *fakeProgram) SetFloatUniform(name string, value float32) error {
	if err := p.failOn("SetFloatUniform"); err != nil {
		return err
	}
	p.floats[name] = []float32{value}
	return nil
}

func (p *fakeProgram) SetFloatsUniform(name string, values []float32) error {
	if err := p.failOn("SetFloatsUniform"); err != nil {
		return err
	}
	p.floats[name] = append([]float32(nil), values...)
	return nil
}

func (p *fakeProgram) SetIntUniform(name string, value int32) error {
	if err := p.failOn("SetIntUniform"); err != nil {
		return err
	}
	p.ints[name] = value
	return nil
}

func (p *fakeProgram) SetSamplerUniform(name string, texture gpu.TextureID, unit int) error {
	if err := p.failOn("SetSamplerUniform"); err != nil {
		return err
	}
	p.samplers[name] = fakeSampler{texture: texture, unit: unit}
	return nil
}

func (p *fakeProgram) Delete() error {
	if err := p.failOn("DeleteProgram"); err != nil {
		return err
	}
	p.deleted = true
	return nil
}
