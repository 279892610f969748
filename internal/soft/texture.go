// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"math"

	"github.com/gogpu/quadcomp/internal/core"
)

// texture is a CPU texture slot. Texels are stored as RGBA8 the way the GPU
// stores them: luminance planes expand to (L, 0, 0, 255), RGB to
// (R, G, B, 255).
type texture struct {
	width, height int
	pix           []byte
	filter        core.Filter
}

func newTexture(filter core.Filter) *texture {
	return &texture{width: 1, height: 1, pix: make([]byte, 4), filter: filter}
}

// store replaces the texel data, reallocating only when the size changes.
func (t *texture) store(p core.Plane) {
	n := p.Width * p.Height
	if p.Width != t.width || p.Height != t.height {
		t.width, t.height = p.Width, p.Height
		t.pix = make([]byte, n*4)
	}
	switch p.Format {
	case core.Luminance:
		for i := 0; i < n; i++ {
			t.pix[i*4+0] = p.Data[i]
			t.pix[i*4+1] = 0
			t.pix[i*4+2] = 0
			t.pix[i*4+3] = 255
		}
	case core.RGB:
		for i := 0; i < n; i++ {
			t.pix[i*4+0] = p.Data[i*3+0]
			t.pix[i*4+1] = p.Data[i*3+1]
			t.pix[i*4+2] = p.Data[i*3+2]
			t.pix[i*4+3] = 255
		}
	}
}

func (t *texture) texel(x, y int) [4]float32 {
	x = clampInt(x, 0, t.width-1)
	y = clampInt(y, 0, t.height-1)
	i := (y*t.width + x) * 4
	return [4]float32{
		float32(t.pix[i]) / 255,
		float32(t.pix[i+1]) / 255,
		float32(t.pix[i+2]) / 255,
		float32(t.pix[i+3]) / 255,
	}
}

// sample reads the texture at normalized (u, v) with clamp-to-edge
// addressing and the slot's filter.
func (t *texture) sample(u, v float32) [4]float32 {
	fx := u * float32(t.width)
	fy := v * float32(t.height)
	if t.filter == core.Nearest {
		return t.texel(int(math.Floor(float64(fx))), int(math.Floor(float64(fy))))
	}

	fx -= 0.5
	fy -= 0.5
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	ax := fx - float32(x0)
	ay := fy - float32(y0)

	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y0+1)
	c11 := t.texel(x0+1, y0+1)

	var out [4]float32
	for i := range out {
		top := c00[i]*(1-ax) + c10[i]*ax
		bottom := c01[i]*(1-ax) + c11[i]*ax
		out[i] = top*(1-ay) + bottom*ay
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
