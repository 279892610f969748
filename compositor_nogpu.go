//go:build nogpu

package quadcomp

import (
	"errors"
	"log/slog"

	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/quadcomp/internal/shader"
)

func newGPURenderer(*options, *shader.Program) (core.Renderer, error) {
	return nil, errors.New("built with nogpu")
}

func propagateLogger(*slog.Logger) {}
