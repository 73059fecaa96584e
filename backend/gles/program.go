package gles

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v3.1/gles2"

	"github.com/gogpu/videofx/gpu"
)

// quadVertices are the full-screen quad corners in homogeneous coordinates,
// ordered for a triangle strip.
var quadVertices = []float32{
	-1, -1, 0, 1,
	1, -1, 0, 1,
	-1, 1, 0, 1,
	1, 1, 0, 1,
}

// program implements gpu.Program. Each program owns a vertex array with the
// quad positions bound to the aFramePosition attribute, so Use leaves the
// program ready for DrawQuad.
type program struct {
	handle   uint32
	vao      uint32
	vbo      uint32
	uniforms map[string]int32
}

// CompileProgram compiles and links a vertex/fragment shader pair and sets
// up the full-screen quad geometry.
func (c *Context) CompileProgram(vertexSrc, fragmentSrc string) (gpu.Program, error) {
	vertex, err := compileShader(gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vertex)

	fragment, err := compileShader(gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fragment)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vertex)
	gl.AttachShader(handle, fragment)
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := programInfoLog(handle)
		gl.DeleteProgram(handle)
		return nil, fmt.Errorf("gles: program link failed: %s", log)
	}

	p := &program{
		handle:   handle,
		uniforms: make(map[string]int32),
	}

	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	attrib := gl.GetAttribLocation(handle, gl.Str("aFramePosition\x00"))
	if attrib < 0 {
		p.delete()
		return nil, fmt.Errorf("gles: vertex shader declares no aFramePosition attribute")
	}
	gl.EnableVertexAttribArray(uint32(attrib))
	gl.VertexAttribPointerWithOffset(uint32(attrib), 4, gl.FLOAT, false, 0, 0)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := checkError("CompileProgram"); err != nil {
		p.delete()
		return nil, err
	}
	return p, nil
}

func compileShader(shaderType uint32, src string) (uint32, error) {
	handle := gl.CreateShader(shaderType)
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength)+1)
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(log))
		gl.DeleteShader(handle)
		kind := "vertex"
		if shaderType == gl.FRAGMENT_SHADER {
			kind = "fragment"
		}
		return 0, fmt.Errorf("gles: %s shader compile failed: %s", kind, strings.TrimRight(log, "\x00"))
	}
	return handle, nil
}

func programInfoLog(handle uint32) string {
	var logLength int32
	gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength)+1)
	gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

// Use binds the program and its quad geometry.
func (p *program) Use() error {
	gl.UseProgram(p.handle)
	gl.BindVertexArray(p.vao)
	return checkError("UseProgram")
}

// location resolves and caches a uniform location by name.
func (p *program) location(name string) (int32, error) {
	if loc, ok := p.uniforms[name]; ok {
		return loc, nil
	}
	loc := gl.GetUniformLocation(p.handle, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("gles: unknown uniform %q", name)
	}
	p.uniforms[name] = loc
	return loc, nil
}

// SetFloatUniform sets a float uniform by name.
func (p *program) SetFloatUniform(name string, value float32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	gl.Uniform1f(loc, value)
	return checkError("Uniform1f")
}

// SetFloatsUniform sets a vec2/vec3/vec4/mat4 uniform by name.
func (p *program) SetFloatsUniform(name string, values []float32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	switch len(values) {
	case 2:
		gl.Uniform2fv(loc, 1, &values[0])
	case 3:
		gl.Uniform3fv(loc, 1, &values[0])
	case 4:
		gl.Uniform4fv(loc, 1, &values[0])
	case 16:
		gl.UniformMatrix4fv(loc, 1, false, &values[0])
	default:
		return fmt.Errorf("gles: uniform %q: unsupported float count %d", name, len(values))
	}
	return checkError("UniformNfv")
}

// SetIntUniform sets an int uniform by name.
func (p *program) SetIntUniform(name string, value int32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	gl.Uniform1i(loc, value)
	return checkError("Uniform1i")
}

// SetSamplerUniform binds the texture to the given unit and points the
// sampler uniform at it.
func (p *program) SetSamplerUniform(name string, texture gpu.TextureID, unit int) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	gl.ActiveTexture(uint32(gl.TEXTURE0 + unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
	gl.Uniform1i(loc, int32(unit))
	return checkError("SetSamplerUniform")
}

// Delete releases the program and its quad geometry.
func (p *program) Delete() error {
	p.delete()
	return checkError("DeleteProgram")
}

func (p *program) delete() {
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
		p.vbo = 0
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.handle != 0 {
		gl.DeleteProgram(p.handle)
		p.handle = 0
	}
}

// unsafeSlice views size bytes of mapped GPU memory as a byte slice.
func unsafeSlice(ptr unsafe.Pointer, size int) []byte {
	return unsafe.Slice((*byte)(ptr), size)
}
