package quadcomp

import (
	"image"

	"github.com/google/uuid"
)

// RGBAFrame is one read-back composite: Width*Height pixels of R, G, B, A.
//
// Rows are stored bottom-to-top in device space, the order the GPU
// framebuffer is read. Since the vertex stage inverts Y this is also the
// upright order of the sources.
type RGBAFrame struct {
	Width, Height int
	Pix           []byte

	// Seq counts passes per compositor, starting at 1.
	Seq uint64
	// TraceID correlates log records of one pass.
	TraceID uuid.UUID
}

// Image wraps Pix without copying, with stored row 0 at the top. Sources
// appear upright and quadrant names match their position.
func (f *RGBAFrame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// DeviceImage returns a copy with rows reordered top-to-bottom in device
// space.
func (f *RGBAFrame) DeviceImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	row := f.Width * 4
	for y := 0; y < f.Height; y++ {
		copy(img.Pix[y*row:(y+1)*row], f.Pix[(f.Height-1-y)*row:(f.Height-y)*row])
	}
	return img
}

// QuadrantRect returns the pixel rectangle of q in Image coordinates.
func (f *RGBAFrame) QuadrantRect(q Quadrant) image.Rectangle {
	hw, hh := f.Width/2, f.Height/2
	switch q {
	case TopRight:
		return image.Rect(hw, 0, f.Width, hh)
	case BottomRight:
		return image.Rect(hw, hh, f.Width, f.Height)
	case BottomLeft:
		return image.Rect(0, hh, hw, f.Height)
	default:
		return image.Rect(0, 0, hw, hh)
	}
}

// PixelAt returns the R, G, B, A bytes at (x, y) in Image coordinates.
func (f *RGBAFrame) PixelAt(x, y int) [4]uint8 {
	o := (y*f.Width + x) * 4
	return [4]uint8{f.Pix[o], f.Pix[o+1], f.Pix[o+2], f.Pix[o+3]}
}
