package paper

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// GridStyle selects the primitive drawn at each grid position.
type GridStyle uint8

const (
	// GridSolid draws full-length lines across the page.
	GridSolid GridStyle = iota
	// GridDots draws one-pixel marks at every intersection.
	GridDots
	// GridCrosses draws cross-hairs a third of the resolution wide at every intersection.
	GridCrosses
)

var gridStyleNames = [...]string{
	GridSolid:   "solid",
	GridDots:    "dots",
	GridCrosses: "crosses",
}

// String returns the lower-case name of the style.
func (s GridStyle) String() string {
	if int(s) < len(gridStyleNames) {
		return gridStyleNames[s]
	}
	return fmt.Sprintf("GridStyle(%d)", s)
}

// ParseGridStyle parses a style name. Matching is case-insensitive.
func ParseGridStyle(name string) (GridStyle, error) {
	name = foldName(name)
	for i, n := range gridStyleNames {
		if n == name {
			return GridStyle(i), nil
		}
	}
	return GridSolid, fmt.Errorf("paper: unknown grid style %q", name)
}

// foldName normalizes a user-supplied name for case-insensitive lookup.
func foldName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// PageArea is the size of a page in logical units. The origin is the
// page's top-left corner.
type PageArea struct {
	Width, Height float64
}

// GridSpec describes a snapping grid.
//
// A Resolution of zero or less disables the grid.
type GridSpec struct {
	OffsetX    float64
	OffsetY    float64
	Resolution float64
	Style      GridStyle
}

// Enabled reports whether the spec renders anything at all.
func (s GridSpec) Enabled() bool {
	return s.Resolution > 0
}

// DrawCommand is a line segment to be stroked with the current pen.
type DrawCommand struct {
	From, To Point
}

// LineSink receives line segments. Rendering backends implement it.
type LineSink interface {
	DrawLine(from, to Point)
}

// RenderGrid computes the line segments for a snapping grid on page.
//
// Grid positions are phase-locked to the spec's offset modulo its
// resolution, not to the page edge, so adjacent pages sharing one spec
// tile seamlessly. Positions exactly on the right or bottom page edge are
// included.
//
// pixelScale is the device pixels per logical unit of the view showing the
// page; it sizes GridDots marks to one device pixel. A non-positive or NaN
// value means no view is available and is treated as 1.
//
// RenderGrid returns nil when spec.Resolution <= 0, when an axis would
// need more than MaxGridLines lines, or when a Dots or Crosses grid would
// need more than MaxGridMarks marks. It is safe for concurrent use.
func RenderGrid(page PageArea, spec GridSpec, pixelScale float64) []DrawCommand {
	if !spec.Enabled() {
		return nil
	}
	xs, okX := gridPositions(spec.OffsetX, spec.Resolution, page.Width)
	ys, okY := gridPositions(spec.OffsetY, spec.Resolution, page.Height)
	if !okX || !okY {
		return nil
	}

	if spec.Style == GridSolid {
		cmds := make([]DrawCommand, 0, len(xs)+len(ys))
		for _, x := range xs {
			cmds = append(cmds, DrawCommand{From: Pt(x, 0), To: Pt(x, page.Height)})
		}
		for _, y := range ys {
			cmds = append(cmds, DrawCommand{From: Pt(0, y), To: Pt(page.Width, y)})
		}
		return cmds
	}

	if len(xs)*len(ys) > MaxGridMarks {
		Logger().Debug("paper: grid too dense", "marks", len(xs)*len(ys), "max", MaxGridMarks)
		return nil
	}
	h := markHalfLength(spec, pixelScale)
	cmds := make([]DrawCommand, 0, 2*len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			cmds = append(cmds,
				DrawCommand{From: Pt(x-h, y), To: Pt(x+h, y)},
				DrawCommand{From: Pt(x, y-h), To: Pt(x, y+h)},
			)
		}
	}
	return cmds
}

// ReplayGrid strokes every command on sink in order.
func ReplayGrid(cmds []DrawCommand, sink LineSink) {
	for _, c := range cmds {
		sink.DrawLine(c.From, c.To)
	}
}

// GridStart returns the first grid coordinate at or after zero for the
// given offset: offset - floor(offset/resolution)*resolution.
func GridStart(offset, resolution float64) float64 {
	return offset - math.Floor(offset/resolution)*resolution
}

const stepEpsilon = 1e-9

// Density limits for a single page. Grids beyond them are not drawn.
const (
	MaxGridLines = 1 << 16 // per axis
	MaxGridMarks = 1 << 22
)

// gridPositions lists start, start+res, ... up to and including limit.
// Positions are derived from an index rather than accumulated so that a
// coordinate landing on limit is not lost to rounding. ok is false when the
// axis would need more than MaxGridLines lines.
func gridPositions(offset, resolution, limit float64) (pos []float64, ok bool) {
	start := GridStart(offset, resolution)
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsInf(limit, 0) || !(start <= limit) {
		return nil, true
	}
	// The epsilon, in steps, keeps limits such as 0.3/0.1 = 2.9999999999999996
	// inclusive.
	steps := math.Floor((limit-start)/resolution + stepEpsilon)
	if !(steps < MaxGridLines) {
		Logger().Debug("paper: grid too dense", "steps", steps, "max", MaxGridLines)
		return nil, false
	}
	n := int(steps) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*resolution
	}
	return out, true
}

// markHalfLength returns the half-length of a Dots or Crosses mark.
func markHalfLength(spec GridSpec, pixelScale float64) float64 {
	if spec.Style == GridCrosses {
		return spec.Resolution / 6
	}
	if !(pixelScale > 0) {
		pixelScale = 1
	}
	return 1 / pixelScale
}
