//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/quadcomp/internal/shader"
	"github.com/gogpu/wgpu/hal"
)

// compositePipeline owns the shader modules, bind group layouts and render
// pipeline built from a linked program.
type compositePipeline struct {
	vs, fs     hal.ShaderModule
	layouts    []hal.BindGroupLayout // indexed by @group
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	resources  []shader.Resource
}

func newCompositePipeline(device hal.Device, prog *shader.Program) (*compositePipeline, error) {
	cp := &compositePipeline{resources: prog.Resources()}
	if err := cp.create(device, prog); err != nil {
		cp.destroy(device)
		return nil, err
	}
	return cp, nil
}

func (cp *compositePipeline) create(device hal.Device, prog *shader.Program) error {
	var err error
	cp.vs, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quadcomp_vs",
		Source: hal.ShaderSource{SPIRV: prog.VertexSPIRV()},
	})
	if err != nil {
		return fmt.Errorf("create vertex module: %w", err)
	}
	cp.fs, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quadcomp_fs",
		Source: hal.ShaderSource{SPIRV: prog.FragmentSPIRV()},
	})
	if err != nil {
		return fmt.Errorf("create fragment module: %w", err)
	}

	groups := 0
	for _, r := range cp.resources {
		if r.Group+1 > groups {
			groups = r.Group + 1
		}
	}
	cp.layouts = make([]hal.BindGroupLayout, groups)
	for g := range cp.layouts {
		var entries []gputypes.BindGroupLayoutEntry
		for _, r := range cp.resources {
			if r.Group != g {
				continue
			}
			entry, err := layoutEntry(r)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("quadcomp_group%d_layout", g),
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("create group %d layout: %w", g, err)
		}
		cp.layouts[g] = layout
	}

	cp.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quadcomp_pipe_layout",
		BindGroupLayouts: cp.layouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	posLoc, err := prog.AttributeLocation("position")
	if err != nil {
		return err
	}
	tcLoc, err := prog.AttributeLocation("texCoord")
	if err != nil {
		return err
	}

	cp.pipeline, err = device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quadcomp_pipeline",
		Layout: cp.pipeLayout,
		Vertex: hal.VertexState{
			Module:     cp.vs,
			EntryPoint: shader.VertexEntryPoint,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: core.VertexStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: uint32(posLoc)}, //nolint:gosec // locations are small
					{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: uint32(tcLoc)},  //nolint:gosec // locations are small
				},
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     cp.fs,
			EntryPoint: shader.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    targetFormat,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	return nil
}

func layoutEntry(r shader.Resource) (gputypes.BindGroupLayoutEntry, error) {
	entry := gputypes.BindGroupLayoutEntry{
		Binding:    uint32(r.Binding), //nolint:gosec // bindings are small
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
	}
	switch r.Kind {
	case shader.KindUniform:
		entry.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case shader.KindTexture:
		entry.Visibility = gputypes.ShaderStageFragment
		entry.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case shader.KindSampler:
		entry.Visibility = gputypes.ShaderStageFragment
		entry.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	default:
		return entry, fmt.Errorf("binding %q: unsupported %v resource", r.Name, r.Kind)
	}
	return entry, nil
}

// destroy releases pipeline resources in reverse creation order.
func (cp *compositePipeline) destroy(device hal.Device) {
	if cp.pipeline != nil {
		device.DestroyRenderPipeline(cp.pipeline)
		cp.pipeline = nil
	}
	if cp.pipeLayout != nil {
		device.DestroyPipelineLayout(cp.pipeLayout)
		cp.pipeLayout = nil
	}
	for i, l := range cp.layouts {
		if l != nil {
			device.DestroyBindGroupLayout(l)
			cp.layouts[i] = nil
		}
	}
	if cp.fs != nil {
		device.DestroyShaderModule(cp.fs)
		cp.fs = nil
	}
	if cp.vs != nil {
		device.DestroyShaderModule(cp.vs)
		cp.vs = nil
	}
}
