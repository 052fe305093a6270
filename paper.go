package paper

import "log/slog"

// Painter is the drawing surface a page paints onto. Coordinates are
// page-local logical units.
//
// Painter replaces direct drawing-surface calls: recorders, raster
// images and terminal previews all implement it.
type Painter interface {
	LineSink

	// Save pushes the current pen, antialiasing and transform state.
	Save()
	// Restore pops the state pushed by the matching Save.
	Restore()
	// SetAntialias toggles antialiased stroking.
	SetAntialias(enabled bool)
	// SetPen selects the pen for subsequent DrawLine calls.
	SetPen(pen Pen)
	// FillRect fills r with a solid color.
	FillRect(r Rect, c RGBA)
}

// View is a viewport currently displaying the composition.
type View interface {
	// Visible reports whether the view is shown on screen.
	Visible() bool
	// Transform maps logical units to device pixels.
	Transform() Matrix
}

// StaticView is a View with a fixed transform.
type StaticView struct {
	Matrix Matrix
	Hidden bool
}

// NewStaticView returns a visible view with a uniform zoom factor.
func NewStaticView(scale float64) *StaticView {
	return &StaticView{Matrix: Scale(scale, scale)}
}

// Visible implements View.
func (v *StaticView) Visible() bool { return !v.Hidden }

// Transform implements View.
func (v *StaticView) Transform() Matrix { return v.Matrix }

// PixelScale returns the device pixels per logical unit of the first
// view. It returns 1 when there is no view, the first view is hidden, or
// its scale is not positive (including NaN).
func PixelScale(views []View) float64 {
	if len(views) == 0 || views[0] == nil || !views[0].Visible() {
		return 1
	}
	s := views[0].Transform().ScaleX()
	if !(s > 0) {
		Logger().Warn("paper: ignoring non-positive view scale", "scale", s)
		return 1
	}
	return s
}

// PaperItem is one page of a composition. It paints the page background
// and, in preview mode, the snapping grid.
//
// Paper items are fixed: they cannot be selected or moved and always sit
// at the bottom of the stacking order.
type PaperItem struct {
	comp  *Composition
	index int
}

// Index returns the zero-based page number.
func (p *PaperItem) Index() int { return p.index }

// Selectable always returns false.
func (p *PaperItem) Selectable() bool { return false }

// Movable always returns false.
func (p *PaperItem) Movable() bool { return false }

// ZValue returns the stacking order of the page, always 0.
func (p *PaperItem) ZValue() float64 { return 0 }

// Rect returns the page rectangle in composition coordinates.
func (p *PaperItem) Rect() Rect {
	return p.comp.snapshot().pageRect(p.index)
}

// Area returns the page size.
func (p *PaperItem) Area() PageArea {
	s := p.comp.snapshot()
	return PageArea{Width: s.paperWidth, Height: s.paperHeight}
}

// Paint draws the page onto pt in page-local coordinates.
// A nil painter is ignored.
func (p *PaperItem) Paint(pt Painter) {
	if pt == nil {
		return
	}
	s := p.comp.snapshot()
	area := PageArea{Width: s.paperWidth, Height: s.paperHeight}

	pt.FillRect(NewRect(0, 0, area.Width, area.Height), s.background)

	if !s.grid.Enabled || s.plotStyle != PlotPreview {
		return
	}
	if !s.grid.Spec.Enabled() {
		Logger().Debug("paper: grid skipped", "page", p.index, "resolution", s.grid.Spec.Resolution)
		return
	}

	scale := PixelScale(s.views)
	cmds := p.comp.gridCommands(area, s.grid.Spec, scale)

	pt.Save()
	// Grid lines stay sharp without antialiasing.
	pt.SetAntialias(false)
	pt.SetPen(s.grid.Pen)
	ReplayGrid(cmds, pt)
	pt.Restore()

	Logger().Debug("paper: grid rendered",
		slog.Int("page", p.index),
		slog.String("style", s.grid.Spec.Style.String()),
		slog.Int("commands", len(cmds)),
		slog.Float64("pixelScale", scale))
}
