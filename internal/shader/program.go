// Package shader compiles and links the two-stage composite program and
// resolves its binding and attribute names.
package shader

import (
	"sort"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// Program is a linked vertex/fragment pair. A Program is only ever
// returned fully built.
type Program struct {
	vertexSource   string
	fragmentSource string
	vertexSPIRV    []uint32
	fragmentSPIRV  []uint32

	attributes map[string]Varying
	resources  map[string]Resource
}

// Compile compiles both stages and links their interfaces.
//
// It returns *CompileError when a stage does not compile and *LinkError
// when the stages do not fit together.
func Compile(vertexSource, fragmentSource string) (*Program, error) {
	vsModule, err := lowerStage(StageVertex, vertexSource)
	if err != nil {
		return nil, err
	}
	fsModule, err := lowerStage(StageFragment, fragmentSource)
	if err != nil {
		return nil, err
	}

	// Reflect before code generation, which may rewrite the module.
	attrs, resources, err := link(vsModule, fsModule)
	if err != nil {
		return nil, err
	}

	vsWords, err := generateStage(StageVertex, vsModule)
	if err != nil {
		return nil, err
	}
	fsWords, err := generateStage(StageFragment, fsModule)
	if err != nil {
		return nil, err
	}

	p := &Program{
		vertexSource:   vertexSource,
		fragmentSource: fragmentSource,
		vertexSPIRV:    vsWords,
		fragmentSPIRV:  fsWords,
		attributes:     make(map[string]Varying, len(attrs)),
		resources:      resources,
	}
	for _, a := range attrs {
		p.attributes[a.Name] = a
	}
	return p, nil
}

// lowerStage parses WGSL and lowers it to naga IR.
func lowerStage(stage Stage, src string) (*ir.Module, error) {
	if src == "" {
		return nil, &CompileError{Stage: stage, Log: "empty source"}
	}
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, &CompileError{Stage: stage, Log: err.Error()}
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, &CompileError{Stage: stage, Log: err.Error()}
	}
	return module, nil
}

// generateStage validates a lowered stage and emits SPIR-V words.
func generateStage(stage Stage, module *ir.Module) ([]uint32, error) {
	problems, err := naga.Validate(module)
	if err != nil {
		return nil, &CompileError{Stage: stage, Log: err.Error()}
	}
	if len(problems) > 0 {
		return nil, &CompileError{Stage: stage, Log: problems[0].Message}
	}
	spirvBytes, err := naga.GenerateSPIRV(module, spirv.Options{Version: naga.DefaultOptions().SPIRVVersion})
	if err != nil {
		return nil, &CompileError{Stage: stage, Log: err.Error()}
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// VertexSPIRV returns the compiled vertex stage.
func (p *Program) VertexSPIRV() []uint32 { return p.vertexSPIRV }

// FragmentSPIRV returns the compiled fragment stage.
func (p *Program) FragmentSPIRV() []uint32 { return p.fragmentSPIRV }

// VertexSource returns the vertex stage WGSL.
func (p *Program) VertexSource() string { return p.vertexSource }

// FragmentSource returns the fragment stage WGSL.
func (p *Program) FragmentSource() string { return p.fragmentSource }

// Resource looks up a module-scope binding by name.
func (p *Program) Resource(name string) (Resource, error) {
	r, ok := p.resources[name]
	if !ok {
		return Resource{}, &UnresolvedBindingError{Name: name}
	}
	return r, nil
}

// UniformLocation returns the binding index of a uniform, texture or
// sampler within its group.
func (p *Program) UniformLocation(name string) (int, error) {
	r, err := p.Resource(name)
	if err != nil {
		return -1, err
	}
	return r.Binding, nil
}

// AttributeLocation returns the @location of a vertex input.
func (p *Program) AttributeLocation(name string) (int, error) {
	a, ok := p.attributes[name]
	if !ok {
		return -1, &UnresolvedBindingError{Name: name}
	}
	return a.Location, nil
}

// Resources returns every binding of the program ordered by group, then
// binding.
func (p *Program) Resources() []Resource {
	out := make([]Resource, 0, len(p.resources))
	for _, r := range p.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Binding < out[j].Binding
	})
	return out
}
