//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/wgpu/hal"
)

// slot is one texture unit: a texture, its view and a sampler whose
// filter and wrap modes are fixed at creation.
type slot struct {
	unit          int
	format        core.PixelFormat
	filter        core.Filter
	width, height uint32

	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
}

// textureFormat returns the GPU format backing a host format. WebGPU has
// no 3-byte format, so RGB is stored as RGBA8.
func textureFormat(f core.PixelFormat) gputypes.TextureFormat {
	if f == core.Luminance {
		return gputypes.TextureFormatR8Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}

func filterMode(f core.Filter) gputypes.FilterMode {
	if f == core.Linear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func newSlot(device hal.Device, queue hal.Queue, unit int, format core.PixelFormat, filter core.Filter) (*slot, error) {
	s := &slot{unit: unit, format: format, filter: filter}
	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        fmt.Sprintf("quadcomp_unit%d_sampler", unit),
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filterMode(filter),
		MinFilter:    filterMode(filter),
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("create unit %d sampler: %w", unit, err)
	}
	s.sampler = sampler

	// Start from a 1x1 zero texture so unsupplied units sample black.
	if err := s.ensure(device, 1, 1); err != nil {
		s.destroy(device)
		return nil, err
	}
	if err := s.write(queue, core.Plane{Width: 1, Height: 1, Format: format, Data: make([]byte, format.BytesPerPixel())}); err != nil {
		s.destroy(device)
		return nil, err
	}
	return s, nil
}

// ensure (re)allocates the texture when the size changes.
func (s *slot) ensure(device hal.Device, w, h uint32) error {
	if s.tex != nil && s.width == w && s.height == h {
		return nil
	}
	s.destroyTexture(device)

	format := textureFormat(s.format)
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("quadcomp_unit%d", s.unit),
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create unit %d texture: %w", s.unit, err)
	}
	s.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("quadcomp_unit%d_view", s.unit),
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.destroyTexture(device)
		return fmt.Errorf("create unit %d view: %w", s.unit, err)
	}
	s.view = view
	s.width, s.height = w, h
	return nil
}

// write uploads host pixels, expanding RGB to RGBA.
func (s *slot) write(queue hal.Queue, p core.Plane) error {
	w, h := uint32(p.Width), uint32(p.Height) //nolint:gosec // validated positive
	data := p.Data
	bpr := w
	if p.Format == core.RGB {
		data = rgbToRGBA(p.Data, p.Width, p.Height)
		bpr = w * 4
	}
	err := queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: s.tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: bpr, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("write unit %d: %w", s.unit, err)
	}
	return nil
}

func (s *slot) destroyTexture(device hal.Device) {
	if s.view != nil {
		device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.tex != nil {
		device.DestroyTexture(s.tex)
		s.tex = nil
	}
	s.width, s.height = 0, 0
}

func (s *slot) destroy(device hal.Device) {
	s.destroyTexture(device)
	if s.sampler != nil {
		device.DestroySampler(s.sampler)
		s.sampler = nil
	}
}

// rgbToRGBA expands packed RGB to RGBA with opaque alpha.
func rgbToRGBA(rgb []byte, w, h int) []byte {
	n := w * h
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		out[i*4+0] = rgb[i*3+0]
		out[i*4+1] = rgb[i*3+1]
		out[i*4+2] = rgb[i*3+2]
		out[i*4+3] = 255
	}
	return out
}
