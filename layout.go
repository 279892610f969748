package quadcomp

import (
	"fmt"
	"strings"

	"github.com/gogpu/quadcomp/internal/core"
)

// Quadrant names one quarter of the output frame.
type Quadrant = core.Quadrant

// Quadrants of the output frame.
const (
	TopRight    = core.TopRight
	BottomRight = core.BottomRight
	BottomLeft  = core.BottomLeft
	TopLeft     = core.TopLeft
)

// Variant selects the fragment program and unit layout.
type Variant = core.Variant

// Program variants.
const (
	VariantYUV420    = core.VariantYUV420
	VariantPackedRGB = core.VariantPackedRGB
)

// OverlaySource is the source index of the packed-RGB overlay in the
// planar variant.
const OverlaySource = 4

// Layout maps each quadrant to the index of the source it shows.
type Layout [core.MaxQuadrants]int

// LegacyLayout shows planar sources 0, 1 and 2 in the top-right,
// bottom-right and bottom-left quadrants and the overlay in the top-left.
// Planar source 3 is converted but never displayed.
var LegacyLayout = Layout{
	TopRight:    0,
	BottomRight: 1,
	BottomLeft:  2,
	TopLeft:     OverlaySource,
}

// FourUpLayout shows all four planar sources and no overlay.
var FourUpLayout = Layout{
	TopRight:    0,
	BottomRight: 1,
	BottomLeft:  2,
	TopLeft:     3,
}

// ParseLayout returns the layout named "legacy" or "four-up".
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "legacy":
		return LegacyLayout, nil
	case "four-up", "fourup", "4up":
		return FourUpLayout, nil
	default:
		return Layout{}, fmt.Errorf("%w: unknown layout %q", ErrInvalidLayout, name)
	}
}

// Validate checks every entry against the sources the variant accepts.
func (l Layout) Validate(v Variant) error {
	limit := MaxSources(v)
	for q, src := range l {
		if src < 0 || src >= limit {
			return fmt.Errorf("%w: %v shows source %d, want [0, %d)", ErrInvalidLayout, Quadrant(q), src, limit)
		}
	}
	return nil
}

// Selects reports whether any quadrant shows source.
func (l Layout) Selects(source int) bool {
	for _, src := range l {
		if src == source {
			return true
		}
	}
	return false
}

func (l Layout) uniform() [core.MaxQuadrants]uint32 {
	var out [core.MaxQuadrants]uint32
	for i, src := range l {
		out[i] = uint32(src) //nolint:gosec // validated non-negative
	}
	return out
}

// MaxSources returns how many sources a variant accepts.
func MaxSources(v Variant) int {
	if v == VariantPackedRGB {
		return core.MaxQuadrants
	}
	return core.MaxQuadrants + 1
}

// SourceUnits returns the texture units that receive the planes of
// source, in plane order. Planar source i uses units 3i, 3i+1 and 3i+2;
// the overlay uses unit 12; packed source i uses unit i.
func SourceUnits(v Variant, source int) ([]int, error) {
	if source < 0 || source >= MaxSources(v) {
		return nil, fmt.Errorf("%w: source %d of %v", ErrTooManySources, source, v)
	}
	switch {
	case v == VariantPackedRGB:
		return []int{source}, nil
	case source == OverlaySource:
		return []int{core.OverlayUnit}, nil
	default:
		return []int{3 * source, 3*source + 1, 3*source + 2}, nil
	}
}

// unitName returns the shader texture name fed by a unit. Its sampler is
// the same name with a "Sampler" suffix.
func unitName(v Variant, unit int) string {
	if v == VariantPackedRGB {
		return fmt.Sprintf("source%d", unit+1)
	}
	if unit == core.OverlayUnit {
		return "overlay"
	}
	return fmt.Sprintf("source%d%s", unit/3+1, [3]string{"Y", "U", "V"}[unit%3])
}
