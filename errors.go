package quadcomp

import (
	"errors"

	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/quadcomp/internal/shader"
)

// ShaderCompileError reports a shader stage that failed to compile. Its
// Stage and Log fields identify the stage and carry the diagnostics.
type ShaderCompileError = shader.CompileError

// ProgramLinkError reports stages whose interfaces do not match.
type ProgramLinkError = shader.LinkError

// UnresolvedBindingError reports a uniform, texture, sampler or attribute
// name the linked program does not expose.
type UnresolvedBindingError = shader.UnresolvedBindingError

// UploadSizeMismatchError reports a host buffer whose length does not match
// width*height*bytesPerPixel.
type UploadSizeMismatchError = core.UploadSizeMismatchError

// DrawError reports a composite pass the GPU rejected or failed to finish.
type DrawError = core.DrawError

// DrawCode classifies a DrawError.
type DrawCode = core.DrawCode

// Draw error codes.
const (
	DrawCodeResource = core.DrawCodeResource
	DrawCodeEncode   = core.DrawCodeEncode
	DrawCodeSubmit   = core.DrawCodeSubmit
	DrawCodeTimeout  = core.DrawCodeTimeout
	DrawCodeReadback = core.DrawCodeReadback
)

var (
	// ErrInvalidSource is returned for a source whose buffers do not match
	// its declared dimensions.
	ErrInvalidSource = errors.New("quadcomp: invalid source")

	// ErrSourceSizeMismatch is returned when sources differ in size.
	ErrSourceSizeMismatch = errors.New("quadcomp: sources differ in size")

	// ErrTooManySources is returned when more sources are supplied than the
	// variant has slots for.
	ErrTooManySources = errors.New("quadcomp: too many sources")

	// ErrSourceKind is returned when a source position holds the wrong
	// kind of image.
	ErrSourceKind = errors.New("quadcomp: wrong source kind for slot")

	// ErrMissingSource is returned when the layout selects a source that
	// was not supplied.
	ErrMissingSource = errors.New("quadcomp: layout references a missing source")

	// ErrInvalidLayout is returned for a layout entry outside the variant's
	// source range.
	ErrInvalidLayout = errors.New("quadcomp: invalid layout")

	// ErrInvalidSize is returned for a non-positive or odd output size.
	ErrInvalidSize = errors.New("quadcomp: invalid output size")

	// ErrNoFrame is returned by Readback when no pass is pending.
	ErrNoFrame = errors.New("quadcomp: no frame to read back")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("quadcomp: compositor closed")

	// ErrGPUUnavailable is returned when the GPU backend was requested but
	// no device could be opened.
	ErrGPUUnavailable = errors.New("quadcomp: GPU unavailable")
)
