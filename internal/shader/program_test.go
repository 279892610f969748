package shader

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"
)

func mustLower(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := lowerStage(StageFragment, src)
	if err != nil {
		t.Fatalf("lowerStage: %v", err)
	}
	return m
}

func TestCompileDefaultPrograms(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		textures []string
	}{
		{"yuv420", YUVFragmentSource, []string{"source1Y", "source2U", "source4V", "overlay"}},
		{"packed-rgb", PackedRGBFragmentSource, []string{"source1", "source2", "source3", "source4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(VertexSource, tt.fragment)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if len(p.VertexSPIRV()) == 0 || len(p.FragmentSPIRV()) == 0 {
				t.Fatal("empty SPIR-V")
			}
			if loc, err := p.AttributeLocation("position"); err != nil || loc != 0 {
				t.Errorf("position = %d, %v; want 0", loc, err)
			}
			if loc, err := p.AttributeLocation("texCoord"); err != nil || loc != 1 {
				t.Errorf("texCoord = %d, %v; want 1", loc, err)
			}
			for _, name := range tt.textures {
				tex, err := p.Resource(name)
				if err != nil {
					t.Errorf("Resource(%q): %v", name, err)
					continue
				}
				smp, err := p.Resource(name + "Sampler")
				if err != nil {
					t.Errorf("Resource(%qSampler): %v", name, err)
					continue
				}
				if tex.Kind != KindTexture || smp.Kind != KindSampler || tex.Binding != smp.Binding {
					t.Errorf("%s: texture %+v sampler %+v", name, tex, smp)
				}
			}
		})
	}
}

func TestCompileInvalidSource(t *testing.T) {
	tests := []struct {
		name  string
		vs    string
		fs    string
		stage Stage
	}{
		{"broken vertex", "fn vs_main( {", YUVFragmentSource, StageVertex},
		{"broken fragment", VertexSource, "@fragment fn fs_main() -> @location(0) vec4<f32> { return undefinedThing; }", StageFragment},
		{"empty vertex", "", YUVFragmentSource, StageVertex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.vs, tt.fs)
			if p != nil {
				t.Error("Compile returned a program alongside an error")
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %v, want *CompileError", err)
			}
			if ce.Stage != tt.stage {
				t.Errorf("Stage = %v, want %v", ce.Stage, tt.stage)
			}
			if ce.Log == "" {
				t.Error("empty compile log")
			}
		})
	}
}

const testVS = `
struct Out {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@location(0) position: vec2<f32>) -> Out {
    var o: Out;
    o.clip = vec4<f32>(position, 0.0, 1.0);
    o.uv = position;
    return o;
}
`

func TestLink(t *testing.T) {
	tests := []struct {
		name    string
		fs      string
		wantErr bool
	}{
		{
			"matching",
			`@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> { return vec4<f32>(uv, 0.0, 1.0); }`,
			false,
		},
		{
			"missing location",
			`@fragment
fn fs_main(@location(3) uv: vec2<f32>) -> @location(0) vec4<f32> { return vec4<f32>(uv, 0.0, 1.0); }`,
			true,
		},
		{
			"type mismatch",
			`@fragment
fn fs_main(@location(0) uv: vec4<f32>) -> @location(0) vec4<f32> { return uv; }`,
			true,
		},
		{
			"no entry point",
			`@fragment
fn main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> { return vec4<f32>(uv, 0.0, 1.0); }`,
			true,
		},
		{
			"binding clash",
			`@group(0) @binding(0) var a: texture_2d<f32>;
@group(0) @binding(0) var b: sampler;
@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> { return textureSample(a, b, uv); }`,
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := link(mustLower(t, testVS), mustLower(t, tt.fs))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("link: %v", err)
				}
				return
			}
			var le *LinkError
			if !errors.As(err, &le) {
				t.Fatalf("err = %v, want *LinkError", err)
			}
		})
	}
}

func TestLinkMissingVertexEntry(t *testing.T) {
	vs := `@vertex fn main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }`
	fs := `@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`
	var le *LinkError
	if _, _, err := link(mustLower(t, vs), mustLower(t, fs)); !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LinkError", err)
	}
}

func TestReflectDefaultBindings(t *testing.T) {
	list := resources(mustLower(t, YUVFragmentSource))
	if len(list) != 1+2*13 {
		t.Fatalf("got %d resources, want %d", len(list), 1+2*13)
	}
	byName := make(map[string]Resource)
	for _, r := range list {
		byName[r.Name] = r
	}
	if p := byName["params"]; p.Kind != KindUniform || p.Group != 0 || p.Binding != 0 {
		t.Errorf("params = %+v", p)
	}
	for i := 0; i < 4; i++ {
		for j, plane := range []string{"Y", "U", "V"} {
			name := fmt.Sprintf("source%d%s", i+1, plane)
			if r := byName[name]; r.Group != 1 || r.Binding != 3*i+j {
				t.Errorf("%s = %+v, want group 1 binding %d", name, r, 3*i+j)
			}
		}
	}
	if r := byName["overlay"]; r.Binding != 12 {
		t.Errorf("overlay binding = %d, want 12", r.Binding)
	}
}

func TestUnresolvedNames(t *testing.T) {
	p := &Program{
		attributes: map[string]Varying{"position": {Name: "position"}},
		resources:  map[string]Resource{"params": {Name: "params"}},
	}
	for _, name := range []string{"source9Y", "rubyTexture1Y"} {
		_, err := p.UniformLocation(name)
		var ue *UnresolvedBindingError
		if !errors.As(err, &ue) || ue.Name != name {
			t.Errorf("UniformLocation(%q) = %v, want *UnresolvedBindingError", name, err)
		}
	}
	if _, err := p.AttributeLocation("aPosition"); err == nil {
		t.Error("AttributeLocation of unknown name should fail")
	}
}

func TestResourcesOrdered(t *testing.T) {
	vs, fs := mustLower(t, VertexSource), mustLower(t, PackedRGBFragmentSource)
	_, res, err := link(vs, fs)
	if err != nil {
		t.Fatal(err)
	}
	p := &Program{resources: res}
	list := p.Resources()
	for i := 1; i < len(list); i++ {
		a, b := list[i-1], list[i]
		if a.Group > b.Group || (a.Group == b.Group && a.Binding >= b.Binding) {
			t.Fatalf("Resources() not ordered at %d: %+v before %+v", i, a, b)
		}
	}
}

func TestReflectAttributeOrderAndLayout(t *testing.T) {
	// Attribute order and line breaks must not matter to name resolution.
	fs := strings.Replace(PackedRGBFragmentSource,
		"@group(0) @binding(0) var<uniform> params: Params;",
		"@binding(0)\n@group(0)\nvar<uniform>\n    params : Params;", 1)
	fs = strings.Replace(fs,
		"@group(1) @binding(2) var source3: texture_2d<f32>;",
		"@binding(2) @group(1) var source3 :\n    texture_2d<f32>;", 1)
	if fs == PackedRGBFragmentSource {
		t.Fatal("replacement did not apply")
	}
	p, err := Compile(VertexSource, fs)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	params, err := p.Resource("params")
	if err != nil {
		t.Fatalf("Resource(params): %v", err)
	}
	if params.Kind != KindUniform || params.Group != 0 || params.Binding != 0 || params.Type != "Params" {
		t.Errorf("params = %+v", params)
	}
	if loc, err := p.UniformLocation("source3"); err != nil || loc != 2 {
		t.Errorf("source3 = %d, %v; want 2", loc, err)
	}
}

func TestReflectStageInterface(t *testing.T) {
	vs := mustLower(t, VertexSource)
	ep, ok := entryPoint(vs, ir.StageVertex, VertexEntryPoint)
	if !ok {
		t.Fatal("no vertex entry point")
	}
	in := inputs(vs, ep)
	if len(in) != 2 || in[0] != (Varying{Name: "position", Location: 0, Type: "vec2<f32>"}) ||
		in[1] != (Varying{Name: "texCoord", Location: 1, Type: "vec2<f32>"}) {
		t.Errorf("inputs = %+v", in)
	}
	out := outputs(vs, ep)
	if len(out) != 2 || out[0].Name != "texCoord" || out[1].Name != "devicePos" || out[1].Location != 1 {
		t.Errorf("outputs = %+v", out)
	}
	if _, ok := entryPoint(vs, ir.StageFragment, VertexEntryPoint); ok {
		t.Error("vertex entry point matched as fragment stage")
	}
}
