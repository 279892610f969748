// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package yuv implements BT.601 limited-range conversion between RGB and
// Y'CbCr, matching the conversion performed by the composite fragment
// program.
package yuv

// Coefficients of the decode matrix. The fragment program uses the same
// constants so CPU and GPU paths agree.
const (
	lumaScale  = 1.1643
	lumaOffset = 0.0625
	crToR      = 1.5958
	cbToG      = 0.39173
	crToG      = 0.81290
	cbToB      = 2.017
)

// ToRGBf decodes normalized Y, Cb, Cr samples (each in [0,1], as read from
// an 8-bit unorm texture) to unclamped RGB.
func ToRGBf(y, u, v float32) (r, g, b float32) {
	y = lumaScale * (y - lumaOffset)
	u -= 0.5
	v -= 0.5
	r = y + crToR*v
	g = y - cbToG*u - crToG*v
	b = y + cbToB*u
	return r, g, b
}

// ToRGB decodes one 8-bit Y'CbCr triple to 8-bit RGB.
func ToRGB(y, u, v uint8) (r, g, b uint8) {
	rf, gf, bf := ToRGBf(float32(y)/255, float32(u)/255, float32(v)/255)
	return clampAndRound(rf), clampAndRound(gf), clampAndRound(bf)
}

// FromRGB encodes one 8-bit RGB triple with the integer BT.601
// limited-range matrix.
func FromRGB(r, g, b uint8) (y, u, v uint8) {
	ri, gi, bi := int32(r), int32(g), int32(b)
	// Results stay within [16,240].
	y = uint8(((66*ri + 129*gi + 25*bi + 128) >> 8) + 16)
	u = uint8(((-38*ri - 74*gi + 112*bi + 128) >> 8) + 128)
	v = uint8(((112*ri - 94*gi - 18*bi + 128) >> 8) + 128)
	return y, u, v
}

// clampAndRound converts a [0,1] float to a uint8 with rounding.
func clampAndRound(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
