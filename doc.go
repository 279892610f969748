// Package quadcomp composites up to four still images into the quadrants of
// one off-screen frame on the GPU.
//
// # Overview
//
// Sources are supplied as packed RGB or planar YUV 4:2:0 buffers. Each
// plane is uploaded to its own texture unit, a single shader program maps
// every source to a quadrant and converts YUV to RGB on the GPU, and the
// result is read back to host memory as RGBA and, optionally, converted
// back to planar YUV for persistence.
//
// # Quick Start
//
//	c, err := quadcomp.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	frame, err := c.Render([]quadcomp.SourceImage{y1, y2, y3, y4, overlay})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	img := frame.Image()
//
// # Variants
//
// [VariantYUV420] binds thirteen units: source i uses units 3i, 3i+1 and
// 3i+2 for Y, U and V, and a packed-RGB overlay uses unit 12. The fragment
// program converts all four planar sources and writes the one the
// [Layout] assigns to each quadrant.
//
// [VariantPackedRGB] binds four packed-RGB units and adds them.
//
// # Backends
//
// The GPU backend runs on gogpu/wgpu. Build with -tags nogpu, or pass
// WithBackend(BackendSoftware), to use the CPU reference renderer, which
// rasterizes the same geometry and evaluates the same fragment math.
//
// # Frame orientation
//
// Readback rows run bottom-to-top in device space. Because the vertex stage
// inverts Y, that order is top-to-bottom for the sources, so
// [RGBAFrame.Image] shows every source upright with [TopRight] at the top
// right. [RGBAFrame.DeviceImage] returns the device-space view.
package quadcomp
