package quadcomp

import (
	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/quadcomp/internal/shader"
)

// PixelFormat is the layout of a host buffer passed to Compositor.Upload.
type PixelFormat = core.PixelFormat

// Host pixel formats.
const (
	// Luminance is one byte per pixel.
	Luminance = core.Luminance
	// RGB is three bytes per pixel in R, G, B order.
	RGB = core.RGB
)

// Program is a compiled and linked vertex/fragment pair with its binding
// and attribute names resolved.
type Program struct {
	p *shader.Program
}

// CompileProgram compiles and links two WGSL stages. It returns
// *ShaderCompileError naming the failing stage, or *ProgramLinkError when
// the stage interfaces do not fit.
func CompileProgram(vertexSource, fragmentSource string) (*Program, error) {
	p, err := shader.Compile(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	return &Program{p: p}, nil
}

// DefaultShaders returns the built-in WGSL sources for a variant.
func DefaultShaders(v Variant) (vertexSource, fragmentSource string) {
	if v == VariantPackedRGB {
		return shader.VertexSource, shader.PackedRGBFragmentSource
	}
	return shader.VertexSource, shader.YUVFragmentSource
}

// UniformLocation returns the binding of a uniform block, texture or
// sampler, or *UnresolvedBindingError.
func (p *Program) UniformLocation(name string) (int, error) {
	return p.p.UniformLocation(name)
}

// AttributeLocation returns the location of a vertex input, or
// *UnresolvedBindingError.
func (p *Program) AttributeLocation(name string) (int, error) {
	return p.p.AttributeLocation(name)
}

// VertexSource returns the vertex stage WGSL.
func (p *Program) VertexSource() string { return p.p.VertexSource() }

// FragmentSource returns the fragment stage WGSL.
func (p *Program) FragmentSource() string { return p.p.FragmentSource() }
