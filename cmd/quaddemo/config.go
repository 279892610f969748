package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/quadcomp"
)

// config is the demo configuration, read from TOML and overridden by flags.
type config struct {
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Backend string `toml:"backend"`
	Variant string `toml:"variant"`
	Layout  string `toml:"layout"`
	Frames  int    `toml:"frames"`

	// Sources are image files for positions 0 to 3. Missing entries are
	// replaced by solid test colors.
	Sources []string `toml:"sources"`
	Overlay string   `toml:"overlay"`

	OutputImage string `toml:"output_image"`
	OutputYUV   string `toml:"output_yuv"`
}

func defaultConfig() config {
	return config{
		Width:       quadcomp.DefaultWidth,
		Height:      quadcomp.DefaultHeight,
		Backend:     "auto",
		Variant:     "yuv420",
		Layout:      "legacy",
		Frames:      1,
		OutputImage: "quad.bmp",
	}
}

func readConfig(path string, conf *config) error {
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func encodeConfig(conf *config) ([]byte, error) {
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(conf); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func parseVariant(name string) (quadcomp.Variant, error) {
	switch strings.ToLower(name) {
	case "", "yuv420", "yuv", "planar":
		return quadcomp.VariantYUV420, nil
	case "packed", "rgb", "packed-rgb":
		return quadcomp.VariantPackedRGB, nil
	default:
		return 0, fmt.Errorf("unknown variant %q", name)
	}
}

// options converts the configuration to compositor options.
func (c *config) options() ([]quadcomp.Option, error) {
	backend, err := quadcomp.ParseBackend(c.Backend)
	if err != nil {
		return nil, err
	}
	variant, err := parseVariant(c.Variant)
	if err != nil {
		return nil, err
	}
	opts := []quadcomp.Option{
		quadcomp.WithSize(c.Width, c.Height),
		quadcomp.WithBackend(backend),
		quadcomp.WithVariant(variant),
	}
	if variant == quadcomp.VariantYUV420 {
		layout, err := quadcomp.ParseLayout(c.Layout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, quadcomp.WithLayout(layout))
	}
	return opts, nil
}
