// Package core holds the types shared by the compositor front end and its
// renderers: pixel formats, texture unit policy, draw parameters and the
// renderer contract.
package core

import "fmt"

// PixelFormat describes the host-side layout of an uploaded plane.
type PixelFormat uint8

const (
	// Luminance is one byte per pixel. Used for Y, U and V planes.
	Luminance PixelFormat = iota + 1
	// RGB is three bytes per pixel, packed R, G, B.
	RGB
)

// BytesPerPixel returns the number of host bytes per pixel, or 0 for an
// unknown format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case Luminance:
		return 1
	case RGB:
		return 3
	default:
		return 0
	}
}

// String returns a human-readable name.
func (f PixelFormat) String() string {
	switch f {
	case Luminance:
		return "Luminance"
	case RGB:
		return "RGB"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}
}

// Filter is the min/mag filter of a texture slot.
type Filter uint8

const (
	Nearest Filter = iota
	Linear
)

// String returns a human-readable name.
func (f Filter) String() string {
	if f == Linear {
		return "Linear"
	}
	return "Nearest"
}

// Plane is one host pixel buffer bound for a texture unit.
type Plane struct {
	Width, Height int
	Format        PixelFormat
	Data          []byte
}

// Validate checks that Data holds exactly Width*Height pixels of Format.
func (p Plane) Validate(unit int) error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("unit %d: invalid plane size %dx%d", unit, p.Width, p.Height)
	}
	bpp := p.Format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("unit %d: unknown pixel format %v", unit, p.Format)
	}
	want := p.Width * p.Height * bpp
	if len(p.Data) != want {
		return &UploadSizeMismatchError{Unit: unit, Format: p.Format, Want: want, Got: len(p.Data)}
	}
	return nil
}
