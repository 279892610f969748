package quadcomp

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/quadcomp/internal/core"
)

// SourceImage is one input of a composite pass: *PackedRGB or
// *PlanarYUV420. The compositor reads it during upload and never retains
// it afterwards.
type SourceImage interface {
	// Bounds returns the image dimensions.
	Bounds() (width, height int)
	// Validate checks the buffer lengths against the dimensions.
	Validate() error

	planes() []core.Plane
}

// PackedRGB is a row-major buffer of 3-byte R, G, B pixels.
type PackedRGB struct {
	Width, Height int
	Pix           []byte
}

// NewPackedRGB allocates a black image.
func NewPackedRGB(width, height int) *PackedRGB {
	return &PackedRGB{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

// Bounds returns the image dimensions.
func (s *PackedRGB) Bounds() (int, int) { return s.Width, s.Height }

// Validate checks that Pix holds Width*Height*3 bytes.
func (s *PackedRGB) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: packed RGB size %dx%d", ErrInvalidSource, s.Width, s.Height)
	}
	if want := s.Width * s.Height * 3; len(s.Pix) != want {
		return fmt.Errorf("%w: packed RGB has %d bytes, want %d", ErrInvalidSource, len(s.Pix), want)
	}
	return nil
}

func (s *PackedRGB) planes() []core.Plane {
	return []core.Plane{{Width: s.Width, Height: s.Height, Format: core.RGB, Data: s.Pix}}
}

// Fill sets every pixel to c.
func (s *PackedRGB) Fill(r, g, b uint8) {
	for i := 0; i+2 < len(s.Pix); i += 3 {
		s.Pix[i], s.Pix[i+1], s.Pix[i+2] = r, g, b
	}
}

// RGBFromImage converts any image to packed RGB, dropping alpha.
func RGBFromImage(img image.Image) *PackedRGB {
	b := img.Bounds()
	out := NewPackedRGB(b.Dx(), b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = c.R, c.G, c.B
			i += 3
		}
	}
	return out
}

// PlanarYUV420 is a Y'CbCr 4:2:0 image: a full-resolution Y plane followed
// by U and V planes at half resolution on each axis. Width and Height are
// even.
type PlanarYUV420 struct {
	Width, Height int
	Y, U, V       []byte
}

// NewPlanarYUV420 allocates zeroed planes.
func NewPlanarYUV420(width, height int) *PlanarYUV420 {
	return &PlanarYUV420{
		Width:  width,
		Height: height,
		Y:      make([]byte, width*height),
		U:      make([]byte, width*height/4),
		V:      make([]byte, width*height/4),
	}
}

// Bounds returns the image dimensions.
func (s *PlanarYUV420) Bounds() (int, int) { return s.Width, s.Height }

// Validate checks len(Y) == Width*Height and len(U) == len(V) ==
// Width*Height/4.
func (s *PlanarYUV420) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Width%2 != 0 || s.Height%2 != 0 {
		return fmt.Errorf("%w: planar YUV size %dx%d must be positive and even", ErrInvalidSource, s.Width, s.Height)
	}
	n := s.Width * s.Height
	if len(s.Y) != n || len(s.U) != n/4 || len(s.V) != n/4 {
		return fmt.Errorf("%w: planar YUV planes %d/%d/%d, want %d/%d/%d",
			ErrInvalidSource, len(s.Y), len(s.U), len(s.V), n, n/4, n/4)
	}
	return nil
}

func (s *PlanarYUV420) planes() []core.Plane {
	cw, ch := s.Width/2, s.Height/2
	return []core.Plane{
		{Width: s.Width, Height: s.Height, Format: core.Luminance, Data: s.Y},
		{Width: cw, Height: ch, Format: core.Luminance, Data: s.U},
		{Width: cw, Height: ch, Format: core.Luminance, Data: s.V},
	}
}

// Bytes returns Y, U and V concatenated, the raw I420 layout.
func (s *PlanarYUV420) Bytes() []byte {
	out := make([]byte, 0, len(s.Y)+len(s.U)+len(s.V))
	out = append(out, s.Y...)
	out = append(out, s.U...)
	return append(out, s.V...)
}

// YUVFromImage copies a 4:2:0 *image.YCbCr into tightly packed planes.
// Samples are copied verbatim; JPEG decoders produce full-range data while
// the compositor decodes limited range, so use YUVFromRGB for exact color.
func YUVFromImage(img *image.YCbCr) (*PlanarYUV420, error) {
	if img.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		return nil, fmt.Errorf("%w: subsample ratio %v, want 4:2:0", ErrInvalidSource, img.SubsampleRatio)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w%2 != 0 || h%2 != 0 {
		return nil, fmt.Errorf("%w: size %dx%d must be even", ErrInvalidSource, w, h)
	}
	out := NewPlanarYUV420(w, h)
	for y := 0; y < h; y++ {
		off := img.YOffset(b.Min.X, b.Min.Y+y)
		copy(out.Y[y*w:(y+1)*w], img.Y[off:off+w])
	}
	cw := w / 2
	for y := 0; y < h/2; y++ {
		off := img.COffset(b.Min.X, b.Min.Y+2*y)
		copy(out.U[y*cw:(y+1)*cw], img.Cb[off:off+cw])
		copy(out.V[y*cw:(y+1)*cw], img.Cr[off:off+cw])
	}
	return out, nil
}
