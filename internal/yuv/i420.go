// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package yuv

import "fmt"

// Planes is a planar 4:2:0 buffer: a full-resolution Y plane and U, V planes
// at half resolution along each axis.
type Planes struct {
	Width, Height int
	Y, U, V       []byte
}

// ChromaSize returns the dimensions of the U and V planes.
func ChromaSize(width, height int) (int, int) {
	return width / 2, height / 2
}

// alloc returns zeroed planes for width x height.
func alloc(width, height int) *Planes {
	cw, ch := ChromaSize(width, height)
	return &Planes{
		Width:  width,
		Height: height,
		Y:      make([]byte, width*height),
		U:      make([]byte, cw*ch),
		V:      make([]byte, cw*ch),
	}
}

func checkEven(width, height int) error {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return fmt.Errorf("yuv: dimensions %dx%d must be positive and even", width, height)
	}
	return nil
}

// FromPixels converts interleaved 8-bit pixels with bpp bytes per pixel
// (3 for RGB, 4 for RGBA; alpha is ignored) to 4:2:0 planes. Rows are
// converted in stored order. Chroma keeps the top-left sample of each 2x2
// block.
func FromPixels(pix []byte, width, height, bpp int) (*Planes, error) {
	if err := checkEven(width, height); err != nil {
		return nil, err
	}
	if bpp != 3 && bpp != 4 {
		return nil, fmt.Errorf("yuv: unsupported %d bytes per pixel", bpp)
	}
	if len(pix) != width*height*bpp {
		return nil, fmt.Errorf("yuv: pixel buffer has %d bytes, want %d", len(pix), width*height*bpp)
	}

	p := alloc(width, height)
	cw := width / 2
	for row := 0; row < height; row++ {
		src := pix[row*width*bpp : (row+1)*width*bpp]
		dst := p.Y[row*width : (row+1)*width]
		for col := 0; col < width; col++ {
			i := col * bpp
			y, u, v := FromRGB(src[i], src[i+1], src[i+2])
			dst[col] = y
			if row%2 == 0 && col%2 == 0 {
				ci := (row/2)*cw + col/2
				p.U[ci] = u
				p.V[ci] = v
			}
		}
	}
	return p, nil
}

// ToRGB expands 4:2:0 planes to packed RGB, replicating each chroma sample
// over its 2x2 block.
func (p *Planes) ToRGB() []byte {
	out := make([]byte, p.Width*p.Height*3)
	cw := p.Width / 2
	for row := 0; row < p.Height; row++ {
		for col := 0; col < p.Width; col++ {
			ci := (row/2)*cw + col/2
			r, g, b := ToRGB(p.Y[row*p.Width+col], p.U[ci], p.V[ci])
			o := (row*p.Width + col) * 3
			out[o], out[o+1], out[o+2] = r, g, b
		}
	}
	return out
}

// Bytes returns Y, U and V concatenated, the raw I420 file layout.
func (p *Planes) Bytes() []byte {
	out := make([]byte, 0, len(p.Y)+len(p.U)+len(p.V))
	out = append(out, p.Y...)
	out = append(out, p.U...)
	return append(out, p.V...)
}
