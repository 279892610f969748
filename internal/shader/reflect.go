package shader

import (
	"fmt"

	"github.com/gogpu/naga/ir"
)

// ResourceKind classifies a module-scope binding.
type ResourceKind uint8

const (
	KindUniform ResourceKind = iota
	KindStorage
	KindTexture
	KindSampler
)

// String returns a human-readable name.
func (k ResourceKind) String() string {
	switch k {
	case KindUniform:
		return "uniform"
	case KindStorage:
		return "storage"
	case KindTexture:
		return "texture"
	default:
		return "sampler"
	}
}

// Resource is a module-scope variable bound through @group/@binding.
type Resource struct {
	Name    string
	Group   int
	Binding int
	Kind    ResourceKind
	Type    string
}

// Varying is one user-defined stage input or output.
type Varying struct {
	Name     string
	Location int
	Type     string
}

// Entry point names the renderers build pipelines with.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// resources lists the bound global variables of a lowered module.
func resources(m *ir.Module) []Resource {
	var out []Resource
	for _, gv := range m.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		kind, ok := resourceKind(m, gv)
		if !ok {
			continue
		}
		out = append(out, Resource{
			Name:    gv.Name,
			Group:   int(gv.Binding.Group),
			Binding: int(gv.Binding.Binding),
			Kind:    kind,
			Type:    typeName(m, gv.Type),
		})
	}
	return out
}

func resourceKind(m *ir.Module, gv ir.GlobalVariable) (ResourceKind, bool) {
	switch gv.Space {
	case ir.SpaceUniform:
		return KindUniform, true
	case ir.SpaceStorage:
		return KindStorage, true
	case ir.SpaceHandle:
		if int(gv.Type) >= len(m.Types) {
			return 0, false
		}
		switch m.Types[gv.Type].Inner.(type) {
		case ir.SamplerType:
			return KindSampler, true
		case ir.ImageType:
			return KindTexture, true
		}
	}
	return 0, false
}

// typeName renders scalar and vector types in WGSL spelling; other types
// use their declared name.
func typeName(m *ir.Module, h ir.TypeHandle) string {
	if int(h) >= len(m.Types) {
		return fmt.Sprintf("type#%d", h)
	}
	t := m.Types[h]
	switch inner := t.Inner.(type) {
	case ir.ScalarType:
		return scalarName(inner)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", inner.Size, scalarName(inner.Scalar))
	case ir.SamplerType:
		return "sampler"
	case ir.ImageType:
		return "texture"
	}
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("%T", t.Inner)
}

func scalarName(s ir.ScalarType) string {
	switch s.Kind {
	case ir.ScalarFloat:
		return fmt.Sprintf("f%d", int(s.Width)*8)
	case ir.ScalarSint:
		return fmt.Sprintf("i%d", int(s.Width)*8)
	case ir.ScalarUint:
		return fmt.Sprintf("u%d", int(s.Width)*8)
	case ir.ScalarBool:
		return "bool"
	default:
		return "abstract"
	}
}

// entryPoint finds the entry point with the given name and stage.
func entryPoint(m *ir.Module, stage ir.ShaderStage, name string) (*ir.EntryPoint, bool) {
	for i := range m.EntryPoints {
		ep := &m.EntryPoints[i]
		if ep.Name == name && ep.Stage == stage {
			return ep, true
		}
	}
	return nil, false
}

// located appends the @location varyings of one value: the value itself
// when it carries a binding, or its struct members otherwise.
func located(m *ir.Module, out []Varying, name string, h ir.TypeHandle, b *ir.Binding) []Varying {
	if b != nil {
		if lb, ok := (*b).(ir.LocationBinding); ok {
			out = append(out, Varying{Name: name, Location: int(lb.Location), Type: typeName(m, h)})
		}
		return out
	}
	if int(h) >= len(m.Types) {
		return out
	}
	st, ok := m.Types[h].Inner.(ir.StructType)
	if !ok {
		return out
	}
	for _, mem := range st.Members {
		out = located(m, out, mem.Name, mem.Type, mem.Binding)
	}
	return out
}

func inputs(m *ir.Module, ep *ir.EntryPoint) []Varying {
	var out []Varying
	for _, arg := range ep.Function.Arguments {
		out = located(m, out, arg.Name, arg.Type, arg.Binding)
	}
	return out
}

func outputs(m *ir.Module, ep *ir.EntryPoint) []Varying {
	res := ep.Function.Result
	if res == nil {
		return nil
	}
	return located(m, nil, "", res.Type, res.Binding)
}

// link checks that every fragment input is written by the vertex stage with
// the same type, and merges the resources of both stages.
func link(vs, fs *ir.Module) (attrs []Varying, merged map[string]Resource, err error) {
	vep, ok := entryPoint(vs, ir.StageVertex, VertexEntryPoint)
	if !ok {
		return nil, nil, &LinkError{Log: "vertex stage has no @vertex entry point " + VertexEntryPoint}
	}
	fep, ok := entryPoint(fs, ir.StageFragment, FragmentEntryPoint)
	if !ok {
		return nil, nil, &LinkError{Log: "fragment stage has no @fragment entry point " + FragmentEntryPoint}
	}

	written := make(map[int]Varying)
	for _, v := range outputs(vs, vep) {
		written[v.Location] = v
	}
	for _, in := range inputs(fs, fep) {
		out, ok := written[in.Location]
		if !ok {
			return nil, nil, &LinkError{Log: fmt.Sprintf(
				"fragment input %q at location %d is not written by the vertex stage", in.Name, in.Location)}
		}
		if out.Type != in.Type {
			return nil, nil, &LinkError{Log: fmt.Sprintf(
				"location %d: vertex output %s %q does not match fragment input %s %q",
				in.Location, out.Type, out.Name, in.Type, in.Name)}
		}
	}

	merged = make(map[string]Resource)
	slots := make(map[[2]int]Resource)
	for _, r := range append(resources(vs), resources(fs)...) {
		if prev, ok := merged[r.Name]; ok && (prev.Group != r.Group || prev.Binding != r.Binding || prev.Type != r.Type) {
			return nil, nil, &LinkError{Log: fmt.Sprintf(
				"%q declared as @group(%d) @binding(%d) %s and @group(%d) @binding(%d) %s",
				r.Name, prev.Group, prev.Binding, prev.Type, r.Group, r.Binding, r.Type)}
		}
		key := [2]int{r.Group, r.Binding}
		if prev, ok := slots[key]; ok && prev.Name != r.Name {
			return nil, nil, &LinkError{Log: fmt.Sprintf(
				"@group(%d) @binding(%d) bound to both %q and %q", r.Group, r.Binding, prev.Name, r.Name)}
		}
		slots[key] = r
		merged[r.Name] = r
	}
	return inputs(vs, vep), merged, nil
}
