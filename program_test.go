package quadcomp

import (
	"errors"
	"strings"
	"testing"
)

func TestCompileProgramDefaults(t *testing.T) {
	for _, v := range []Variant{VariantYUV420, VariantPackedRGB} {
		t.Run(v.String(), func(t *testing.T) {
			vs, fs := DefaultShaders(v)
			p, err := CompileProgram(vs, fs)
			if err != nil {
				t.Fatalf("CompileProgram: %v", err)
			}
			if p.VertexSource() != vs || p.FragmentSource() != fs {
				t.Error("sources not retained")
			}
			for unit := 0; unit < v.Units(); unit++ {
				name := unitName(v, unit)
				if _, err := p.UniformLocation(name); err != nil {
					t.Errorf("UniformLocation(%q): %v", name, err)
				}
				if _, err := p.UniformLocation(name + "Sampler"); err != nil {
					t.Errorf("UniformLocation(%q): %v", name+"Sampler", err)
				}
			}
			for name, want := range map[string]int{"position": 0, "texCoord": 1} {
				got, err := p.AttributeLocation(name)
				if err != nil || got != want {
					t.Errorf("AttributeLocation(%q) = %d, %v; want %d", name, got, err, want)
				}
			}
		})
	}
}

func TestCompileProgramAttributeOrder(t *testing.T) {
	vs, fs := DefaultShaders(VariantPackedRGB)
	decl := "@group(0) @binding(0) var<uniform> params: Params;"
	if !strings.Contains(fs, decl) {
		t.Fatalf("packed fragment stage lacks %q", decl)
	}
	fs = strings.Replace(fs, decl, "@binding(0) @group(0) var<uniform> params: Params;", 1)

	p, err := CompileProgram(vs, fs)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	got, err := p.UniformLocation("params")
	if err != nil {
		t.Fatalf("UniformLocation(params): %v", err)
	}
	if got != 0 {
		t.Errorf("UniformLocation(params) = %d, want 0", got)
	}
}

func TestProgramUnresolved(t *testing.T) {
	vs, fs := DefaultShaders(VariantYUV420)
	p, err := CompileProgram(vs, fs)
	if err != nil {
		t.Fatal(err)
	}
	var unresolved *UnresolvedBindingError
	if _, err := p.UniformLocation("source5Y"); !errors.As(err, &unresolved) {
		t.Errorf("UniformLocation: err = %v, want *UnresolvedBindingError", err)
	} else if unresolved.Name != "source5Y" {
		t.Errorf("Name = %q", unresolved.Name)
	}
	if _, err := p.AttributeLocation("color"); !errors.As(err, &unresolved) {
		t.Errorf("AttributeLocation: err = %v, want *UnresolvedBindingError", err)
	}
}

func TestCompileProgramEmptyStage(t *testing.T) {
	_, fs := DefaultShaders(VariantYUV420)
	_, err := CompileProgram("", fs)
	var compileErr *ShaderCompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("err = %v, want *ShaderCompileError", err)
	}
	if compileErr.Stage.String() != "vertex" {
		t.Errorf("Stage = %v, want vertex", compileErr.Stage)
	}
}
