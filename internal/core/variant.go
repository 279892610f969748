package core

import "fmt"

// MaxUnits is the number of texture units the planar pipeline binds.
const MaxUnits = 13

// OverlayUnit is the unit of the packed-RGB overlay in the planar pipeline.
const OverlayUnit = 12

// MaxQuadrants is the number of output quadrants.
const MaxQuadrants = 4

// Variant selects the fragment program and the unit layout.
type Variant uint8

const (
	// VariantYUV420 converts four planar sources on the GPU and picks one
	// per quadrant, with a packed-RGB overlay on unit 12.
	VariantYUV420 Variant = iota
	// VariantPackedRGB samples four packed-RGB sources and sums them.
	VariantPackedRGB
)

// String returns a human-readable name.
func (v Variant) String() string {
	switch v {
	case VariantYUV420:
		return "yuv420"
	case VariantPackedRGB:
		return "packed-rgb"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

// Units returns the number of texture units the variant binds.
func (v Variant) Units() int {
	if v == VariantPackedRGB {
		return MaxQuadrants
	}
	return MaxUnits
}

// UnitFormat returns the host format each unit of the variant expects.
func (v Variant) UnitFormat(unit int) PixelFormat {
	if v == VariantPackedRGB || unit == OverlayUnit {
		return RGB
	}
	return Luminance
}

// UnitFilter returns the min/mag filter fixed for a unit at slot creation.
// Only unit 0 of the packed variant is linear. The YUV overlay is nearest
// like the planes around it.
func (v Variant) UnitFilter(unit int) Filter {
	if v == VariantPackedRGB && unit == 0 {
		return Linear
	}
	return Nearest
}

// Quadrant names one quarter of the output. Names refer to the sign of the
// forwarded vertex position: Top is y>0, Right is x>0.
type Quadrant uint8

const (
	TopRight Quadrant = iota
	BottomRight
	BottomLeft
	TopLeft
)

// String returns a human-readable name.
func (q Quadrant) String() string {
	switch q {
	case TopRight:
		return "top-right"
	case BottomRight:
		return "bottom-right"
	case BottomLeft:
		return "bottom-left"
	case TopLeft:
		return "top-left"
	default:
		return fmt.Sprintf("Quadrant(%d)", uint8(q))
	}
}

// QuadrantOf returns the quadrant a forwarded position falls in.
// Points on an axis belong to the left or bottom side.
func QuadrantOf(x, y float32) Quadrant {
	switch {
	case x > 0 && y > 0:
		return TopRight
	case x > 0:
		return BottomRight
	case y > 0:
		return TopLeft
	default:
		return BottomLeft
	}
}

// TextureBinding maps a shader texture name to its binding and to the unit
// whose slot feeds it.
type TextureBinding struct {
	Name           string
	TextureBinding int
	SamplerBinding int
	Unit           int
}

// DrawParams is everything a renderer needs for one composite pass.
type DrawParams struct {
	Variant Variant

	// Width and Height of the render target.
	Width, Height int

	// TextureSize is the common source size, uploaded as a uniform.
	TextureSize [2]float32

	// Quadrants maps each Quadrant to the source index it shows.
	Quadrants [MaxQuadrants]uint32

	// Vertices is interleaved position/texcoord data, VertexStride bytes
	// per vertex.
	Vertices    []byte
	VertexCount uint32

	Bindings []TextureBinding

	ClearColor [4]float64
}

// VertexStride is the byte size of one interleaved vertex: vec2 position
// followed by vec2 texcoord.
const VertexStride = 16

// ParamsSize is the byte size of the uniform block: vec2<f32> textureSize,
// 8 bytes of padding, vec4<u32> quadrants.
const ParamsSize = 32

// Renderer executes composite passes for the compositor.
type Renderer interface {
	// Upload replaces the contents of a unit's texture.
	Upload(unit int, p Plane) error
	// Draw renders one pass and returns the target pixels as RGBA8 rows
	// ordered bottom-to-top.
	Draw(p *DrawParams) ([]byte, error)
	// Close releases every resource the renderer owns.
	Close()
}
