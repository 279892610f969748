package quadcomp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/quadcomp/internal/geometry"
	"github.com/gogpu/quadcomp/internal/soft"
)

// Compositor renders up to five sources into the four quadrants of one
// frame and reads the result back.
//
// A Compositor owns its renderer and every texture slot. Methods are safe
// for concurrent use; passes are serialized.
type Compositor struct {
	mu sync.Mutex

	opts     options
	program  *Program
	renderer core.Renderer
	backend  Backend

	bindings    []core.TextureBinding
	vertices    []byte
	vertexCount uint32

	// cleared tracks packed slots holding zeros, so a source dropped
	// between passes stops contributing to the sum.
	cleared [core.MaxQuadrants]bool

	seq     uint64
	pending *RGBAFrame
	closed  bool
}

// New compiles the program, resolves its bindings, builds the quadrant
// geometry and creates the renderer.
//
// With BackendAuto a GPU failure falls back to the software renderer.
// With BackendGPU it is returned wrapped in ErrGPUUnavailable.
func New(opts ...Option) (*Compositor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	vs, fs := DefaultShaders(o.variant)
	if o.vertexSource != "" {
		vs = o.vertexSource
	}
	if o.fragmentSource != "" {
		fs = o.fragmentSource
	}
	prog, err := CompileProgram(vs, fs)
	if err != nil {
		return nil, err
	}

	c := &Compositor{opts: o, program: prog}
	if err := c.resolve(); err != nil {
		return nil, err
	}

	geo, err := geometry.Quadrants(core.MaxQuadrants)
	if err != nil {
		return nil, err
	}
	c.vertices = geo.Interleaved()
	c.vertexCount = uint32(geo.VertexCount()) //nolint:gosec // at most 24

	if err := c.openRenderer(); err != nil {
		return nil, err
	}
	for i := range c.cleared {
		c.cleared[i] = true
	}
	Logger().Info("quadcomp: compositor ready",
		"backend", c.backend.String(),
		"variant", o.variant.String(),
		"width", o.width,
		"height", o.height)
	return c, nil
}

// resolve looks up every name the renderers bind by.
func (c *Compositor) resolve() error {
	for _, name := range []string{"params", "position", "texCoord"} {
		var err error
		if name == "params" {
			_, err = c.program.UniformLocation(name)
		} else {
			_, err = c.program.AttributeLocation(name)
		}
		if err != nil {
			return err
		}
	}

	v := c.opts.variant
	c.bindings = make([]core.TextureBinding, 0, v.Units())
	for unit := 0; unit < v.Units(); unit++ {
		name := unitName(v, unit)
		tb, err := c.program.UniformLocation(name)
		if err != nil {
			return err
		}
		sb, err := c.program.UniformLocation(name + "Sampler")
		if err != nil {
			return err
		}
		c.bindings = append(c.bindings, core.TextureBinding{
			Name:           name,
			TextureBinding: tb,
			SamplerBinding: sb,
			Unit:           unit,
		})
	}
	return nil
}

func (c *Compositor) openRenderer() error {
	switch c.opts.backend {
	case BackendSoftware:
		c.renderer, c.backend = soft.New(c.opts.variant), BackendSoftware
		return nil
	case BackendGPU:
		r, err := newGPURenderer(&c.opts, c.program.p)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrGPUUnavailable, err)
		}
		c.renderer, c.backend = r, BackendGPU
		return nil
	default:
		r, err := newGPURenderer(&c.opts, c.program.p)
		if err != nil {
			Logger().Warn("quadcomp: GPU unavailable, using software renderer", "err", err)
			c.renderer, c.backend = soft.New(c.opts.variant), BackendSoftware
			return nil
		}
		c.renderer, c.backend = r, BackendGPU
		return nil
	}
}

// Backend reports the renderer in use.
func (c *Compositor) Backend() Backend { return c.backend }

// Program returns the linked program.
func (c *Compositor) Program() *Program { return c.program }

// Size returns the output frame size.
func (c *Compositor) Size() (width, height int) { return c.opts.width, c.opts.height }

// Variant returns the shader variant the compositor was built with.
func (c *Compositor) Variant() Variant { return c.opts.variant }

// Layout returns the quadrant-to-source mapping.
func (c *Compositor) Layout() Layout { return c.opts.layout }

// Upload replaces the contents of one texture unit. The buffer must hold
// exactly width*height*format.BytesPerPixel() bytes, otherwise
// *UploadSizeMismatchError is returned. The texture is reallocated only
// when the size changes.
func (c *Compositor) Upload(unit, width, height int, format PixelFormat, buf []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.upload(unit, core.Plane{Width: width, Height: height, Format: format, Data: buf})
}

func (c *Compositor) upload(unit int, p core.Plane) error {
	if err := c.renderer.Upload(unit, p); err != nil {
		return err
	}
	if c.opts.variant == VariantPackedRGB && unit < len(c.cleared) {
		c.cleared[unit] = false
	}
	return nil
}

// Draw uploads sources and renders one pass. The frame is held until
// Readback. Sources are indexed as in SourceUnits: in the planar variant
// positions 0 to 3 are *PlanarYUV420 and position 4 is the *PackedRGB
// overlay; in the packed variant every position is *PackedRGB.
func (c *Compositor) Draw(sources []SourceImage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.draw(sources)
}

func (c *Compositor) draw(sources []SourceImage) error {
	c.pending = nil
	w, h, err := c.checkSources(sources)
	if err != nil {
		return err
	}

	v := c.opts.variant
	for i, src := range sources {
		units, err := SourceUnits(v, i)
		if err != nil {
			return err
		}
		for k, plane := range src.planes() {
			if err := c.upload(units[k], plane); err != nil {
				return fmt.Errorf("quadcomp: source %d: %w", i, err)
			}
		}
	}
	if v == VariantPackedRGB {
		if err := c.clearUnsupplied(len(sources)); err != nil {
			return err
		}
	}

	params := &core.DrawParams{
		Variant:     v,
		Width:       c.opts.width,
		Height:      c.opts.height,
		TextureSize: [2]float32{float32(w), float32(h)},
		Quadrants:   c.opts.layout.uniform(),
		Vertices:    c.vertices,
		VertexCount: c.vertexCount,
		Bindings:    c.bindings,
		ClearColor:  c.opts.clearColor,
	}
	pix, err := c.renderer.Draw(params)
	if err != nil {
		return err
	}

	c.seq++
	c.pending = &RGBAFrame{
		Width:   c.opts.width,
		Height:  c.opts.height,
		Pix:     pix,
		Seq:     c.seq,
		TraceID: uuid.New(),
	}
	Logger().Debug("quadcomp: pass",
		"seq", c.seq,
		"trace_id", c.pending.TraceID.String(),
		"sources", len(sources),
		"vertices", c.vertexCount,
		"backend", c.backend.String())
	return nil
}

// checkSources validates the sources of one pass and returns their common
// size.
func (c *Compositor) checkSources(sources []SourceImage) (int, int, error) {
	v := c.opts.variant
	if len(sources) == 0 {
		return 0, 0, fmt.Errorf("%w: no sources", ErrInvalidSource)
	}
	if len(sources) > MaxSources(v) {
		return 0, 0, fmt.Errorf("%w: %d supplied, %v accepts %d", ErrTooManySources, len(sources), v, MaxSources(v))
	}

	var w, h int
	for i, src := range sources {
		if err := checkKind(v, i, src); err != nil {
			return 0, 0, err
		}
		if err := src.Validate(); err != nil {
			return 0, 0, fmt.Errorf("source %d: %w", i, err)
		}
		sw, sh := src.Bounds()
		if i == 0 {
			w, h = sw, sh
		} else if sw != w || sh != h {
			return 0, 0, fmt.Errorf("%w: source %d is %dx%d, source 0 is %dx%d", ErrSourceSizeMismatch, i, sw, sh, w, h)
		}
	}

	if v == VariantYUV420 {
		layout := c.opts.layout
		for q, src := range layout {
			if src >= len(sources) {
				return 0, 0, fmt.Errorf("%w: %v shows source %d, %d supplied", ErrMissingSource, Quadrant(q), src, len(sources))
			}
		}
		for i := range sources {
			if !layout.Selects(i) {
				Logger().Warn("quadcomp: source not shown by layout", "source", i)
			}
		}
	}
	return w, h, nil
}

func checkKind(v Variant, i int, src SourceImage) error {
	var ok bool
	switch s := src.(type) {
	case *PackedRGB:
		if s == nil {
			src = nil
		}
		ok = v == VariantPackedRGB || i == OverlaySource
	case *PlanarYUV420:
		if s == nil {
			src = nil
		}
		ok = v == VariantYUV420 && i != OverlaySource
	}
	switch {
	case src == nil:
		return fmt.Errorf("%w: source %d is nil", ErrInvalidSource, i)
	case !ok:
		return fmt.Errorf("%w: source %d is %T", ErrSourceKind, i, src)
	}
	return nil
}

// clearUnsupplied zeroes packed slots from n on that still hold data from
// an earlier pass.
func (c *Compositor) clearUnsupplied(n int) error {
	black := []byte{0, 0, 0}
	for unit := n; unit < len(c.cleared); unit++ {
		if c.cleared[unit] {
			continue
		}
		if err := c.renderer.Upload(unit, core.Plane{Width: 1, Height: 1, Format: core.RGB, Data: black}); err != nil {
			return err
		}
		c.cleared[unit] = true
	}
	return nil
}

// Readback returns the frame of the last Draw. Each frame is returned
// once; a second call returns ErrNoFrame.
func (c *Compositor) Readback() (*RGBAFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	return c.takeFrame()
}

func (c *Compositor) takeFrame() (*RGBAFrame, error) {
	f := c.pending
	if f == nil {
		return nil, ErrNoFrame
	}
	c.pending = nil
	return f, nil
}

// Render draws one pass and reads it back.
func (c *Compositor) Render(sources []SourceImage) (*RGBAFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if err := c.draw(sources); err != nil {
		return nil, err
	}
	return c.takeFrame()
}

// Composite renders one pass, converts it to planar YUV 4:2:0 and hands
// both to sink.
func (c *Compositor) Composite(sources []SourceImage, sink FrameSink) error {
	if sink == nil {
		return errors.New("quadcomp: nil sink")
	}
	frame, err := c.Render(sources)
	if err != nil {
		return err
	}
	planes, err := ConvertToYUV420(frame)
	if err != nil {
		return err
	}
	if err := sink.WriteFrame(frame, planes); err != nil {
		return fmt.Errorf("quadcomp: sink frame %d: %w", frame.Seq, err)
	}
	return nil
}

// Close releases the renderer and every slot. It is safe to call more
// than once.
func (c *Compositor) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.pending = nil
	c.renderer.Close()
}
