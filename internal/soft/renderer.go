// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package soft is the CPU reference renderer for the compositor.
//
// It rasterizes the same vertex table the GPU draws, samples with the same
// filter and wrap policy, and evaluates Go versions of the composite
// fragment programs. It is used when no GPU is available and as the
// pixel-exact oracle in tests.
package soft

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/quadcomp/internal/yuv"
)

var _ core.Renderer = (*Renderer)(nil)

// Renderer implements core.Renderer on the CPU.
type Renderer struct {
	variant core.Variant
	slots   []*texture
}

// New creates a renderer for the given variant with every slot holding a
// 1x1 zero texture.
func New(variant core.Variant) *Renderer {
	r := &Renderer{variant: variant, slots: make([]*texture, variant.Units())}
	for unit := range r.slots {
		r.slots[unit] = newTexture(variant.UnitFilter(unit))
	}
	return r
}

// Upload replaces the contents of a unit.
func (r *Renderer) Upload(unit int, p core.Plane) error {
	if unit < 0 || unit >= len(r.slots) {
		return fmt.Errorf("soft: unit %d out of range [0, %d)", unit, len(r.slots))
	}
	if err := p.Validate(unit); err != nil {
		return err
	}
	if want := r.variant.UnitFormat(unit); p.Format != want {
		return fmt.Errorf("soft: unit %d expects %v, got %v", unit, want, p.Format)
	}
	r.slots[unit].store(p)
	return nil
}

// Close releases the slots.
func (r *Renderer) Close() {
	r.slots = nil
}

// vertex is one decoded vertex: attribute position and texcoord.
type vertex struct {
	pos, tc [2]float32
}

// Draw rasterizes the pass. The returned rows run bottom-to-top.
func (r *Renderer) Draw(p *core.DrawParams) ([]byte, error) {
	if r.slots == nil {
		return nil, core.NewDrawError(core.DrawCodeResource, "draw", fmt.Errorf("renderer closed"))
	}
	if p.Variant != r.variant {
		return nil, fmt.Errorf("soft: draw variant %v on %v renderer", p.Variant, r.variant)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("soft: invalid target size %dx%d", p.Width, p.Height)
	}

	textures := make(map[string]*texture, len(p.Bindings))
	for _, b := range p.Bindings {
		if b.Unit < 0 || b.Unit >= len(r.slots) {
			return nil, fmt.Errorf("soft: binding %q references unit %d", b.Name, b.Unit)
		}
		textures[b.Name] = r.slots[b.Unit]
	}
	frag, err := r.fragmentProgram(textures, p.Quadrants)
	if err != nil {
		return nil, err
	}

	verts := decodeVertices(p.Vertices, int(p.VertexCount))
	target := make([]byte, p.Width*p.Height*4)
	bg := [4]uint8{
		unorm(float32(p.ClearColor[0])), unorm(float32(p.ClearColor[1])),
		unorm(float32(p.ClearColor[2])), unorm(float32(p.ClearColor[3])),
	}
	for i := 0; i < len(target); i += 4 {
		copy(target[i:i+4], bg[:])
	}

	for i := 0; i+2 < len(verts); i += 3 {
		rasterize(target, p.Width, p.Height, verts[i], verts[i+1], verts[i+2], frag)
	}
	return target, nil
}

func decodeVertices(buf []byte, n int) []vertex {
	if limit := len(buf) / core.VertexStride; n > limit {
		n = limit
	}
	out := make([]vertex, n)
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	for i := range out {
		o := i * core.VertexStride
		out[i] = vertex{
			pos: [2]float32{f(o), f(o + 4)},
			tc:  [2]float32{f(o + 8), f(o + 12)},
		}
	}
	return out
}

// fragment computes the output color from interpolated varyings.
type fragment func(tc, devicePos [2]float32) [4]float32

// rasterize fills one triangle. Row 0 of target is the bottom of device
// space. The vertex stage inverts Y, so clip y is -pos.y.
func rasterize(target []byte, w, h int, a, b, c vertex, frag fragment) {
	toPixel := func(v vertex) (float32, float32) {
		return (v.pos[0] + 1) * 0.5 * float32(w), (-v.pos[1] + 1) * 0.5 * float32(h)
	}
	ax, ay := toPixel(a)
	bx, by := toPixel(b)
	cx, cy := toPixel(c)

	area := edge(ax, ay, bx, by, cx, cy)
	if area == 0 {
		return
	}

	minX := clampInt(int(math.Floor(float64(min(ax, bx, cx)))), 0, w-1)
	maxX := clampInt(int(math.Ceil(float64(max(ax, bx, cx)))), 0, w-1)
	minY := clampInt(int(math.Floor(float64(min(ay, by, cy)))), 0, h-1)
	maxY := clampInt(int(math.Ceil(float64(max(ay, by, cy)))), 0, h-1)

	for row := minY; row <= maxY; row++ {
		py := float32(row) + 0.5
		for col := minX; col <= maxX; col++ {
			px := float32(col) + 0.5
			w0 := edge(bx, by, cx, cy, px, py) / area
			w1 := edge(cx, cy, ax, ay, px, py) / area
			w2 := edge(ax, ay, bx, by, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			tc := [2]float32{
				w0*a.tc[0] + w1*b.tc[0] + w2*c.tc[0],
				w0*a.tc[1] + w1*b.tc[1] + w2*c.tc[1],
			}
			pos := [2]float32{
				w0*a.pos[0] + w1*b.pos[0] + w2*c.pos[0],
				w0*a.pos[1] + w1*b.pos[1] + w2*c.pos[1],
			}
			color := frag(tc, pos)
			o := (row*w + col) * 4
			target[o+0] = unorm(color[0])
			target[o+1] = unorm(color[1])
			target[o+2] = unorm(color[2])
			target[o+3] = unorm(color[3])
		}
	}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// unorm converts a [0,1] float to an 8-bit unorm with rounding.
func unorm(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// fragmentProgram returns the Go equivalent of the variant's fragment stage.
func (r *Renderer) fragmentProgram(textures map[string]*texture, quadrants [core.MaxQuadrants]uint32) (fragment, error) {
	lookup := func(name string) (*texture, error) {
		t, ok := textures[name]
		if !ok {
			return nil, fmt.Errorf("soft: no binding for texture %q", name)
		}
		return t, nil
	}

	switch r.variant {
	case core.VariantPackedRGB:
		var srcs [core.MaxQuadrants]*texture
		for i := range srcs {
			t, err := lookup(fmt.Sprintf("source%d", i+1))
			if err != nil {
				return nil, err
			}
			srcs[i] = t
		}
		return func(tc, _ [2]float32) [4]float32 {
			var sum [4]float32
			for _, t := range srcs {
				s := t.sample(tc[0], tc[1])
				for i := range sum {
					sum[i] += s[i]
				}
			}
			return sum
		}, nil

	case core.VariantYUV420:
		var planes [core.MaxQuadrants][3]*texture
		for i := range planes {
			for j, plane := range []string{"Y", "U", "V"} {
				t, err := lookup(fmt.Sprintf("source%d%s", i+1, plane))
				if err != nil {
					return nil, err
				}
				planes[i][j] = t
			}
		}
		overlay, err := lookup("overlay")
		if err != nil {
			return nil, err
		}
		return func(tc, devicePos [2]float32) [4]float32 {
			src := quadrants[core.QuadrantOf(devicePos[0], devicePos[1])]
			var rgb [3]float32
			if int(src) < len(planes) {
				pl := planes[src]
				y := pl[0].sample(tc[0], tc[1])[0]
				u := pl[1].sample(tc[0], tc[1])[0]
				v := pl[2].sample(tc[0], tc[1])[0]
				rgb[0], rgb[1], rgb[2] = yuv.ToRGBf(y, u, v)
			} else {
				s := overlay.sample(tc[0], tc[1])
				rgb = [3]float32{s[0], s[1], s[2]}
			}
			return [4]float32{rgb[0], rgb[1], rgb[2], 1}
		}, nil
	}
	return nil, fmt.Errorf("soft: unknown variant %v", r.variant)
}
