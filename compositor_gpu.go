//go:build !nogpu

package quadcomp

import (
	"log/slog"

	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/quadcomp/internal/gpu"
	"github.com/gogpu/quadcomp/internal/shader"
)

// newGPURenderer opens or adopts a device and builds the GPU renderer on it.
// A device supplied through options wins over a provider, which wins over
// opening a new one.
func newGPURenderer(o *options, prog *shader.Program) (core.Renderer, error) {
	var (
		dev *gpu.Device
		err error
	)
	switch {
	case o.shared:
		dev, err = gpu.Shared(o.device, o.queue)
	case o.useProvider:
		dev, err = gpu.FromProvider(o.provider)
	default:
		dev, err = gpu.Open()
	}
	if err != nil {
		return nil, err
	}
	r, err := gpu.New(dev, prog, o.variant)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func propagateLogger(l *slog.Logger) {
	gpu.SetLogger(l)
}
