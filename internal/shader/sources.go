package shader

import _ "embed" // for go:embed

// VertexSource is the composite vertex stage.
//
//go:embed shaders/composite_vs.wgsl
var VertexSource string

// YUVFragmentSource is the planar 4:2:0 fragment stage.
//
//go:embed shaders/composite_yuv_fs.wgsl
var YUVFragmentSource string

// PackedRGBFragmentSource is the additive packed-RGB fragment stage.
//
//go:embed shaders/composite_rgb_fs.wgsl
var PackedRGBFragmentSource string
