package core

import "fmt"

// UploadSizeMismatchError reports a host buffer whose length does not match
// the declared dimensions and format of the target texture unit.
type UploadSizeMismatchError struct {
	Unit   int
	Format PixelFormat
	Want   int
	Got    int
}

func (e *UploadSizeMismatchError) Error() string {
	return fmt.Sprintf("upload to unit %d (%v): buffer has %d bytes, want %d",
		e.Unit, e.Format, e.Got, e.Want)
}

// DrawCode classifies a failed draw.
type DrawCode uint8

const (
	// DrawCodeResource means a GPU object needed by the pass could not be created.
	DrawCodeResource DrawCode = iota + 1
	// DrawCodeEncode means command recording failed.
	DrawCodeEncode
	// DrawCodeSubmit means the queue rejected the command buffer.
	DrawCodeSubmit
	// DrawCodeTimeout means the fence did not signal in time.
	DrawCodeTimeout
	// DrawCodeReadback means the staging buffer could not be read.
	DrawCodeReadback
)

// String returns a human-readable name.
func (c DrawCode) String() string {
	switch c {
	case DrawCodeResource:
		return "resource"
	case DrawCodeEncode:
		return "encode"
	case DrawCodeSubmit:
		return "submit"
	case DrawCodeTimeout:
		return "timeout"
	case DrawCodeReadback:
		return "readback"
	default:
		return fmt.Sprintf("DrawCode(%d)", uint8(c))
	}
}

// DrawError is returned when the GPU rejects or fails a composite pass.
// The pass produced no frame; the caller must re-issue it.
type DrawError struct {
	Code DrawCode
	Op   string
	Err  error
}

func (e *DrawError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("draw failed (%v): %s", e.Code, e.Op)
	}
	return fmt.Sprintf("draw failed (%v): %s: %v", e.Code, e.Op, e.Err)
}

func (e *DrawError) Unwrap() error { return e.Err }

// NewDrawError wraps err with a code and the failing operation.
func NewDrawError(code DrawCode, op string, err error) *DrawError {
	return &DrawError{Code: code, Op: op, Err: err}
}
