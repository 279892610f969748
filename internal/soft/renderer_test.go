// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/quadcomp/internal/geometry"
	"github.com/gogpu/quadcomp/internal/yuv"
)

func yuvBindings() []core.TextureBinding {
	var out []core.TextureBinding
	for i := 0; i < 4; i++ {
		for j, plane := range []string{"Y", "U", "V"} {
			unit := 3*i + j
			out = append(out, core.TextureBinding{
				Name: fmt.Sprintf("source%d%s", i+1, plane), TextureBinding: unit, SamplerBinding: unit, Unit: unit,
			})
		}
	}
	return append(out, core.TextureBinding{Name: "overlay", TextureBinding: 12, SamplerBinding: 12, Unit: 12})
}

func packedBindings() []core.TextureBinding {
	var out []core.TextureBinding
	for i := 0; i < 4; i++ {
		out = append(out, core.TextureBinding{Name: fmt.Sprintf("source%d", i+1), TextureBinding: i, SamplerBinding: i, Unit: i})
	}
	return out
}

func drawParams(t *testing.T, variant core.Variant, w, h int, quadrants [4]uint32, bindings []core.TextureBinding) *core.DrawParams {
	t.Helper()
	g, err := geometry.Quadrants(4)
	if err != nil {
		t.Fatal(err)
	}
	return &core.DrawParams{
		Variant:     variant,
		Width:       w,
		Height:      h,
		TextureSize: [2]float32{float32(w), float32(h)},
		Quadrants:   quadrants,
		Vertices:    g.Interleaved(),
		VertexCount: uint32(g.VertexCount()),
		Bindings:    bindings,
	}
}

func solidYUV(t *testing.T, r *Renderer, source, w, h int, cr, cg, cb uint8) {
	t.Helper()
	y, u, v := yuv.FromRGB(cr, cg, cb)
	fill := func(n int, b byte) []byte {
		out := make([]byte, n)
		for i := range out {
			out[i] = b
		}
		return out
	}
	planes := [][]byte{fill(w*h, y), fill(w*h/4, u), fill(w*h/4, v)}
	dims := [][2]int{{w, h}, {w / 2, h / 2}, {w / 2, h / 2}}
	for j, data := range planes {
		if err := r.Upload(3*source+j, core.Plane{Width: dims[j][0], Height: dims[j][1], Format: core.Luminance, Data: data}); err != nil {
			t.Fatal(err)
		}
	}
}

func solidRGB(w, h int, cr, cg, cb uint8) []byte {
	out := make([]byte, w*h*3)
	for i := 0; i < len(out); i += 3 {
		out[i], out[i+1], out[i+2] = cr, cg, cb
	}
	return out
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -2 && d <= 2
}

// quadrantPixel returns the pixel at the centre of a quadrant. Stored rows
// run bottom-to-top in device space, which puts y>0 positions first.
func quadrantPixel(pix []byte, w, h int, q core.Quadrant) []byte {
	col, row := w/4, h/4
	switch q {
	case core.TopRight:
		col = 3 * w / 4
	case core.BottomRight:
		col, row = 3*w/4, 3*h/4
	case core.BottomLeft:
		row = 3 * h / 4
	}
	o := (row*w + col) * 4
	return pix[o : o+4]
}

func TestDrawYUVQuadrants(t *testing.T) {
	const w, h = 16, 8
	r := New(core.VariantYUV420)
	defer r.Close()

	colors := [][3]uint8{{255, 0, 0}, {0, 255, 0}, {255, 255, 255}, {0, 0, 0}}
	for i, c := range colors {
		solidYUV(t, r, i, w, h, c[0], c[1], c[2])
	}
	if err := r.Upload(core.OverlayUnit, core.Plane{Width: w, Height: h, Format: core.RGB, Data: solidRGB(w, h, 0, 0, 255)}); err != nil {
		t.Fatal(err)
	}

	pix, err := r.Draw(drawParams(t, core.VariantYUV420, w, h, [4]uint32{0, 1, 2, 4}, yuvBindings()))
	if err != nil {
		t.Fatal(err)
	}
	if len(pix) != w*h*4 {
		t.Fatalf("len = %d, want %d", len(pix), w*h*4)
	}

	want := map[core.Quadrant][4]uint8{
		core.TopRight:    {255, 0, 0, 255},
		core.BottomRight: {0, 255, 0, 255},
		core.BottomLeft:  {255, 255, 255, 255},
		core.TopLeft:     {0, 0, 255, 255},
	}
	for q, c := range want {
		got := quadrantPixel(pix, w, h, q)
		for i := range c {
			if !near(got[i], c[i]) {
				t.Errorf("%v = %v, want ~%v", q, got, c)
				break
			}
		}
	}
}

func TestDrawOverlayNearest(t *testing.T) {
	const w, h = 16, 8
	r := New(core.VariantYUV420)
	defer r.Close()

	// One-texel black and white columns.
	stripes := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 1; x < w; x += 2 {
			o := (y*w + x) * 3
			stripes[o], stripes[o+1], stripes[o+2] = 255, 255, 255
		}
	}
	if err := r.Upload(core.OverlayUnit, core.Plane{Width: w, Height: h, Format: core.RGB, Data: stripes}); err != nil {
		t.Fatal(err)
	}
	pix, err := r.Draw(drawParams(t, core.VariantYUV420, w, h, [4]uint32{0, 1, 2, 4}, yuvBindings()))
	if err != nil {
		t.Fatal(err)
	}

	seen := map[uint8]bool{}
	for row := 0; row < h/2; row++ {
		for col := 0; col < w/2; col++ {
			o := (row*w + col) * 4
			for c := 0; c < 3; c++ {
				v := pix[o+c]
				if v != 0 && v != 255 {
					t.Fatalf("overlay pixel (%d,%d) = %v, want pure black or white", col, row, pix[o:o+4])
				}
				seen[v] = true
			}
		}
	}
	if !seen[0] || !seen[255] {
		t.Errorf("overlay quadrant lost its stripes: seen %v", seen)
	}
}

func TestDrawCoversEveryPixel(t *testing.T) {
	const w, h = 10, 6
	r := New(core.VariantYUV420)
	for i := 0; i < 4; i++ {
		solidYUV(t, r, i, w, h, 255, 255, 255)
	}
	p := drawParams(t, core.VariantYUV420, w, h, [4]uint32{0, 1, 2, 3}, yuvBindings())
	pix, err := r.Draw(p)
	if err != nil {
		t.Fatal(err)
	}
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 255 {
			t.Fatalf("pixel %d not covered (alpha %d)", i/4, pix[i])
		}
	}
}

func TestDrawPackedSum(t *testing.T) {
	const w, h = 8, 8
	r := New(core.VariantPackedRGB)
	inputs := [][3]uint8{{100, 0, 0}, {0, 100, 0}, {0, 0, 100}, {100, 100, 100}}
	for i, c := range inputs {
		if err := r.Upload(i, core.Plane{Width: w, Height: h, Format: core.RGB, Data: solidRGB(w, h, c[0], c[1], c[2])}); err != nil {
			t.Fatal(err)
		}
	}
	pix, err := r.Draw(drawParams(t, core.VariantPackedRGB, w, h, [4]uint32{}, packedBindings()))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(pix); i += 4 {
		if !near(pix[i], 200) || !near(pix[i+1], 200) || !near(pix[i+2], 200) || pix[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want ~(200,200,200,255)", i/4, pix[i:i+4])
		}
	}
}

func TestDrawUnsuppliedSlotsAreZero(t *testing.T) {
	const w, h = 4, 4
	r := New(core.VariantPackedRGB)
	pix, err := r.Draw(drawParams(t, core.VariantPackedRGB, w, h, [4]uint32{}, packedBindings()))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != 0 || pix[i+1] != 0 || pix[i+2] != 0 {
			t.Fatalf("pixel %d = %v, want black", i/4, pix[i:i+4])
		}
	}
}

func TestUploadRejects(t *testing.T) {
	r := New(core.VariantYUV420)
	tests := []struct {
		name  string
		unit  int
		plane core.Plane
	}{
		{"short luminance", 0, core.Plane{Width: 4, Height: 4, Format: core.Luminance, Data: make([]byte, 15)}},
		{"short rgb", core.OverlayUnit, core.Plane{Width: 4, Height: 4, Format: core.RGB, Data: make([]byte, 47)}},
	}
	for _, tt := range tests {
		var mismatch *core.UploadSizeMismatchError
		if err := r.Upload(tt.unit, tt.plane); !errors.As(err, &mismatch) {
			t.Errorf("%s: err = %v, want *UploadSizeMismatchError", tt.name, err)
		}
	}
	if err := r.Upload(13, core.Plane{Width: 1, Height: 1, Format: core.Luminance, Data: []byte{0}}); err == nil {
		t.Error("out of range unit should fail")
	}
	if err := r.Upload(0, core.Plane{Width: 1, Height: 1, Format: core.RGB, Data: []byte{0, 0, 0}}); err == nil {
		t.Error("wrong format for unit should fail")
	}
}

func TestDrawMissingBinding(t *testing.T) {
	r := New(core.VariantYUV420)
	p := drawParams(t, core.VariantYUV420, 4, 4, [4]uint32{0, 1, 2, 4}, yuvBindings()[:5])
	if _, err := r.Draw(p); err == nil {
		t.Error("Draw with missing bindings should fail")
	}
}

func TestSampleFilters(t *testing.T) {
	tex := newTexture(core.Nearest)
	tex.store(core.Plane{Width: 2, Height: 1, Format: core.Luminance, Data: []byte{0, 255}})
	if got := tex.sample(0.25, 0.5)[0]; got != 0 {
		t.Errorf("nearest left = %v, want 0", got)
	}
	if got := tex.sample(0.75, 0.5)[0]; got != 1 {
		t.Errorf("nearest right = %v, want 1", got)
	}
	if got := tex.sample(-3, 0.5)[0]; got != 0 {
		t.Errorf("clamped = %v, want 0", got)
	}

	tex.filter = core.Linear
	if got := tex.sample(0.5, 0.5)[0]; got < 0.49 || got > 0.51 {
		t.Errorf("linear centre = %v, want 0.5", got)
	}
	if got := tex.sample(0.25, 0.5)[0]; got != 0 {
		t.Errorf("linear at texel centre = %v, want 0", got)
	}
}
