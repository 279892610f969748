package quadcomp

// FrameSink receives each composited frame and its YUV conversion.
// Both buffers are read-only to the sink and may be retained.
type FrameSink interface {
	WriteFrame(rgba *RGBAFrame, yuv *PlanarYUV420) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(rgba *RGBAFrame, yuv *PlanarYUV420) error

// WriteFrame calls f.
func (f FrameSinkFunc) WriteFrame(rgba *RGBAFrame, yuv *PlanarYUV420) error {
	return f(rgba, yuv)
}
