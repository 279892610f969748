package quadcomp

import (
	"fmt"

	"github.com/gogpu/quadcomp/internal/yuv"
)

// ConvertToYUV420 converts a frame to planar BT.601 limited-range 4:2:0.
// Rows are converted in stored order. Chroma keeps the top-left sample of
// every 2x2 block.
func ConvertToYUV420(f *RGBAFrame) (*PlanarYUV420, error) {
	p, err := yuv.FromPixels(f.Pix, f.Width, f.Height, 4)
	if err != nil {
		return nil, fmt.Errorf("quadcomp: convert frame: %w", err)
	}
	return &PlanarYUV420{Width: p.Width, Height: p.Height, Y: p.Y, U: p.U, V: p.V}, nil
}

// YUVFromRGB converts a packed-RGB image to planar BT.601 limited-range
// 4:2:0, the encoding the planar variant decodes.
func YUVFromRGB(src *PackedRGB) (*PlanarYUV420, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	p, err := yuv.FromPixels(src.Pix, src.Width, src.Height, 3)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return &PlanarYUV420{Width: p.Width, Height: p.Height, Y: p.Y, U: p.U, V: p.V}, nil
}
