// Command quaddemo composites four test sources and an overlay into one
// frame and writes it as a BMP image and raw I420 video.
//
// Usage:
//
//	quaddemo [-config quad.toml] [-width 1280 -height 720] [-backend auto|gpu|software]
//	         [-variant yuv420|packed] [-layout legacy|four-up] [-frames N]
//	         [-o quad.bmp] [-yuv quad.yuv] [-v]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/bmp"

	"github.com/gogpu/quadcomp"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "quaddemo: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("quaddemo", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "TOML configuration file")
		width      = fs.Int("width", 0, "output width")
		height     = fs.Int("height", 0, "output height")
		backend    = fs.String("backend", "", "renderer: auto, gpu or software")
		variant    = fs.String("variant", "", "program: yuv420 or packed")
		layout     = fs.String("layout", "", "quadrant layout: legacy or four-up")
		frames     = fs.Int("frames", 0, "number of passes")
		output     = fs.String("o", "", "BMP output of the last frame")
		yuvOut     = fs.String("yuv", "", "raw I420 output of every frame")
		dumpConfig = fs.Bool("dump-config", false, "print the effective configuration and exit")
		verbose    = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	quadcomp.SetLogger(logger)

	conf := defaultConfig()
	if *configPath != "" {
		if err := readConfig(*configPath, &conf); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			conf.Width = *width
		case "height":
			conf.Height = *height
		case "backend":
			conf.Backend = *backend
		case "variant":
			conf.Variant = *variant
		case "layout":
			conf.Layout = *layout
		case "frames":
			conf.Frames = *frames
		case "o":
			conf.OutputImage = *output
		case "yuv":
			conf.OutputYUV = *yuvOut
		}
	})
	if *dumpConfig {
		out, err := encodeConfig(&conf)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	opts, err := conf.options()
	if err != nil {
		return err
	}
	c, err := quadcomp.New(opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	sources, err := buildSources(&conf, c.Variant())
	if err != nil {
		return err
	}

	sink, err := newFileSink(conf.OutputImage, conf.OutputYUV)
	if err != nil {
		return err
	}
	start := time.Now()
	for i := 0; i < max(conf.Frames, 1); i++ {
		if err := c.Composite(sources, sink); err != nil {
			sink.Close()
			return err
		}
	}
	if err := sink.Close(); err != nil {
		return err
	}
	logger.Info("quaddemo: done",
		"backend", c.Backend().String(),
		"frames", humanize.Comma(int64(sink.frames)),
		"yuv", humanize.IBytes(sink.yuvBytes),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// fileSink appends every frame to a raw I420 file and keeps the last RGBA
// frame for the BMP written on Close.
type fileSink struct {
	imagePath string
	yuvFile   *os.File
	yuv       *bufio.Writer
	last      *quadcomp.RGBAFrame

	frames   int
	yuvBytes uint64
}

func newFileSink(imagePath, yuvPath string) (*fileSink, error) {
	s := &fileSink{imagePath: imagePath}
	if yuvPath != "" {
		f, err := os.Create(yuvPath)
		if err != nil {
			return nil, err
		}
		s.yuvFile = f
		s.yuv = bufio.NewWriter(f)
	}
	return s, nil
}

func (s *fileSink) WriteFrame(rgba *quadcomp.RGBAFrame, planes *quadcomp.PlanarYUV420) error {
	s.frames++
	s.last = rgba
	if s.yuv == nil {
		return nil
	}
	for _, p := range [][]byte{planes.Y, planes.U, planes.V} {
		n, err := s.yuv.Write(p)
		s.yuvBytes += uint64(n) //nolint:gosec // n >= 0
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *fileSink) Close() error {
	if s.yuvFile != nil {
		if err := s.yuv.Flush(); err != nil {
			s.yuvFile.Close()
			return err
		}
		if err := s.yuvFile.Close(); err != nil {
			return err
		}
	}
	if s.imagePath == "" || s.last == nil {
		return nil
	}
	f, err := os.Create(s.imagePath)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, s.last.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
