package main

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"os"

	"golang.org/x/image/draw"

	"github.com/gogpu/quadcomp"
)

// testColors fill positions that have no image file.
var testColors = [][3]uint8{
	{220, 40, 40},
	{40, 200, 60},
	{50, 80, 230},
	{240, 220, 40},
	{250, 250, 250},
}

// loadImage decodes a file and scales it to w x h.
func loadImage(path string, w, h int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// packedSource loads path as packed RGB, or a solid test color when path
// is empty.
func packedSource(path string, idx, w, h int) (*quadcomp.PackedRGB, error) {
	if path == "" {
		c := testColors[idx%len(testColors)]
		src := quadcomp.NewPackedRGB(w, h)
		src.Fill(c[0], c[1], c[2])
		return src, nil
	}
	img, err := loadImage(path, w, h)
	if err != nil {
		return nil, err
	}
	return quadcomp.RGBFromImage(img), nil
}

// buildSources returns the sources of one pass for the variant.
func buildSources(conf *config, variant quadcomp.Variant) ([]quadcomp.SourceImage, error) {
	w, h := evenHalf(conf.Width), evenHalf(conf.Height)
	path := func(i int) string {
		if i < len(conf.Sources) {
			return conf.Sources[i]
		}
		return ""
	}

	var sources []quadcomp.SourceImage
	for i := 0; i < 4; i++ {
		rgb, err := packedSource(path(i), i, w, h)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		if variant == quadcomp.VariantPackedRGB {
			sources = append(sources, rgb)
			continue
		}
		planar, err := quadcomp.YUVFromRGB(rgb)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		sources = append(sources, planar)
	}
	if variant == quadcomp.VariantYUV420 {
		overlay, err := packedSource(conf.Overlay, quadcomp.OverlaySource, w, h)
		if err != nil {
			return nil, fmt.Errorf("overlay: %w", err)
		}
		sources = append(sources, overlay)
	}
	return sources, nil
}

func evenHalf(n int) int {
	h := n / 2
	if h%2 != 0 {
		h++
	}
	if h < 2 {
		h = 2
	}
	return h
}
