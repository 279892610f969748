package quadcomp

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// DefaultWidth and DefaultHeight are the output size used when WithSize
// is not given.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// Backend selects the renderer.
type Backend uint8

const (
	// BackendAuto tries the GPU and falls back to software.
	BackendAuto Backend = iota
	// BackendGPU requires a GPU device.
	BackendGPU
	// BackendSoftware uses the CPU reference renderer.
	BackendSoftware
)

// String returns a human-readable name.
func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendGPU:
		return "gpu"
	case BackendSoftware:
		return "software"
	default:
		return fmt.Sprintf("Backend(%d)", uint8(b))
	}
}

// ParseBackend returns the backend named "auto", "gpu" or "software".
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "", "auto":
		return BackendAuto, nil
	case "gpu":
		return BackendGPU, nil
	case "software", "cpu":
		return BackendSoftware, nil
	default:
		return BackendAuto, fmt.Errorf("quadcomp: unknown backend %q", name)
	}
}

// Option configures a Compositor during creation.
//
// Example:
//
//	// 1280x720 output showing all four planar sources
//	c, err := quadcomp.New(
//	    quadcomp.WithSize(1280, 720),
//	    quadcomp.WithLayout(quadcomp.FourUpLayout),
//	)
type Option func(*options)

// options holds optional configuration for Compositor creation.
type options struct {
	width, height int
	variant       Variant
	layout        Layout
	backend       Backend
	clearColor    [4]float64

	device      hal.Device
	queue       hal.Queue
	provider    gpucontext.DeviceProvider
	shared      bool
	useProvider bool

	vertexSource   string
	fragmentSource string
}

func defaultOptions() options {
	return options{
		width:   DefaultWidth,
		height:  DefaultHeight,
		variant: VariantYUV420,
		layout:  LegacyLayout,
		backend: BackendAuto,
	}
}

// WithSize sets the output frame size. Both dimensions must be positive
// and even.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithVariant selects the planar YUV or packed-RGB program.
func WithVariant(v Variant) Option {
	return func(o *options) {
		o.variant = v
	}
}

// WithLayout sets the quadrant-to-source mapping of the planar variant.
func WithLayout(l Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithBackend selects the renderer.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithClearColor sets the color of pixels no quadrant covers. Components
// are in [0, 1]. The default is transparent black.
func WithClearColor(r, g, b, a float64) Option {
	return func(o *options) {
		o.clearColor = [4]float64{r, g, b, a}
	}
}

// WithDevice renders on a device and queue owned by the caller. Implies
// BackendGPU. The compositor never destroys them.
func WithDevice(device hal.Device, queue hal.Queue) Option {
	return func(o *options) {
		o.device, o.queue = device, queue
		o.shared = true
		o.backend = BackendGPU
	}
}

// WithDeviceProvider shares the device of a host application. The provider
// must also expose HalDevice() and HalQueue(). Implies BackendGPU.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
		o.useProvider = true
		o.backend = BackendGPU
	}
}

// WithShaders replaces the built-in program. The sources must expose the
// same binding and attribute names as the built-in program for the
// selected variant.
func WithShaders(vertexSource, fragmentSource string) Option {
	return func(o *options) {
		o.vertexSource, o.fragmentSource = vertexSource, fragmentSource
	}
}

func (o *options) validate() error {
	if o.width <= 0 || o.height <= 0 || o.width%2 != 0 || o.height%2 != 0 {
		return fmt.Errorf("%w: %dx%d must be positive and even", ErrInvalidSize, o.width, o.height)
	}
	if o.variant != VariantYUV420 && o.variant != VariantPackedRGB {
		return fmt.Errorf("quadcomp: unknown variant %v", o.variant)
	}
	if o.variant == VariantYUV420 {
		if err := o.layout.Validate(o.variant); err != nil {
			return err
		}
	}
	if o.backend > BackendSoftware {
		return fmt.Errorf("quadcomp: unknown backend %v", o.backend)
	}
	return nil
}
