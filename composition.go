package paper

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/paper/internal/cache"
	"github.com/gogpu/paper/internal/parallel"
)

// SpaceBetweenPages is the vertical gap between stacked pages, in millimetres.
const SpaceBetweenPages = 10.0

// Default page size: A4 landscape, in millimetres.
const (
	DefaultPaperWidth  = 297.0
	DefaultPaperHeight = 210.0
)

// ErrPageOutOfRange is returned when a page index does not exist.
var ErrPageOutOfRange = errors.New("paper: page out of range")

// PlotStyle is the purpose a composition is being drawn for.
type PlotStyle uint8

const (
	// PlotPreview is on-screen editing. Snapping grids are visible only here.
	PlotPreview PlotStyle = iota
	// PlotPrint is output to a printer or image.
	PlotPrint
	// PlotPostscript is output to a vector device.
	PlotPostscript
)

var plotStyleNames = [...]string{
	PlotPreview:    "preview",
	PlotPrint:      "print",
	PlotPostscript: "postscript",
}

// String returns the lower-case name of the plot style.
func (s PlotStyle) String() string {
	if int(s) < len(plotStyleNames) {
		return plotStyleNames[s]
	}
	return fmt.Sprintf("PlotStyle(%d)", s)
}

// ParsePlotStyle parses a plot style name. Matching is case-insensitive.
func ParsePlotStyle(name string) (PlotStyle, error) {
	name = foldName(name)
	for i, n := range plotStyleNames {
		if n == name {
			return PlotStyle(i), nil
		}
	}
	return PlotPreview, fmt.Errorf("paper: unknown plot style %q", name)
}

// SnapGrid holds a composition's snapping grid settings.
type SnapGrid struct {
	Enabled bool
	Spec    GridSpec
	Pen     Pen
}

// DefaultSnapGrid returns a disabled 10mm solid grid drawn with DefaultGridPen.
func DefaultSnapGrid() SnapGrid {
	return SnapGrid{
		Spec: GridSpec{Resolution: 10, Style: GridSolid},
		Pen:  DefaultGridPen(),
	}
}

// Composition is a print layout made of equally sized pages stacked
// vertically. It owns the snapping grid settings and the views that display it.
//
// Composition is safe for concurrent use.
type Composition struct {
	mu sync.RWMutex

	paperWidth  float64
	paperHeight float64
	pages       int
	plotStyle   PlotStyle
	background  RGBA
	grid        SnapGrid
	views       []View

	grids *cache.LRU[gridKey, []DrawCommand]
}

// NewComposition creates a composition with one A4 landscape page,
// a white background and a disabled snapping grid.
func NewComposition(opts ...Option) *Composition {
	c := &Composition{
		paperWidth:  DefaultPaperWidth,
		paperHeight: DefaultPaperHeight,
		pages:       1,
		plotStyle:   PlotPreview,
		background:  White,
		grid:        DefaultSnapGrid(),
		grids:       cache.New[gridKey, []DrawCommand](gridCacheSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// settings is an immutable copy of the composition state used for one paint.
type settings struct {
	paperWidth  float64
	paperHeight float64
	pages       int
	plotStyle   PlotStyle
	background  RGBA
	grid        SnapGrid
	views       []View
}

func (c *Composition) snapshot() settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return settings{
		paperWidth:  c.paperWidth,
		paperHeight: c.paperHeight,
		pages:       c.pages,
		plotStyle:   c.plotStyle,
		background:  c.background,
		grid:        c.grid,
		views:       append([]View(nil), c.views...),
	}
}

func (s settings) pageRect(i int) Rect {
	y := float64(i) * (s.paperHeight + SpaceBetweenPages)
	return NewRect(0, y, s.paperWidth, s.paperHeight)
}

// PaperSize returns the page width and height.
func (c *Composition) PaperSize() (width, height float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paperWidth, c.paperHeight
}

// SetPaperSize changes the page size. Non-positive sizes are ignored.
func (c *Composition) SetPaperSize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	c.paperWidth, c.paperHeight = width, height
	c.mu.Unlock()
	c.grids.Clear()
}

// NumPages returns the number of pages.
func (c *Composition) NumPages() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pages
}

// SetNumPages changes the number of pages. Values below 1 are ignored.
func (c *Composition) SetNumPages(n int) {
	if n < 1 {
		return
	}
	c.mu.Lock()
	c.pages = n
	c.mu.Unlock()
}

// PlotStyle returns the current plot style.
func (c *Composition) PlotStyle() PlotStyle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.plotStyle
}

// SetPlotStyle changes the plot style.
func (c *Composition) SetPlotStyle(s PlotStyle) {
	c.mu.Lock()
	c.plotStyle = s
	c.mu.Unlock()
}

// Background returns the page background color.
func (c *Composition) Background() RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.background
}

// SetBackground changes the page background color.
func (c *Composition) SetBackground(bg RGBA) {
	c.mu.Lock()
	c.background = bg
	c.mu.Unlock()
}

// SnapGrid returns the snapping grid settings.
func (c *Composition) SnapGrid() SnapGrid {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.grid
}

// SetSnapGrid replaces the snapping grid settings.
func (c *Composition) SetSnapGrid(g SnapGrid) {
	c.mu.Lock()
	c.grid = g
	c.mu.Unlock()
	c.grids.Clear()
}

// AddView attaches a view to the composition.
func (c *Composition) AddView(v View) {
	if v == nil {
		return
	}
	c.mu.Lock()
	c.views = append(c.views, v)
	c.mu.Unlock()
}

// RemoveView detaches a view. Unknown views are ignored.
func (c *Composition) RemoveView(v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.views {
		if cur == v {
			c.views = append(c.views[:i], c.views[i+1:]...)
			return
		}
	}
}

// Views returns a copy of the attached views.
func (c *Composition) Views() []View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]View(nil), c.views...)
}

// PixelScale returns the pixel scale of the first attached view.
func (c *Composition) PixelScale() float64 {
	return PixelScale(c.Views())
}

// Page returns the paper item for page i, or nil if i is out of range.
func (c *Composition) Page(i int) *PaperItem {
	if i < 0 || i >= c.NumPages() {
		return nil
	}
	return &PaperItem{comp: c, index: i}
}

// Pages returns the paper items of all pages in order.
func (c *Composition) Pages() []*PaperItem {
	n := c.NumPages()
	items := make([]*PaperItem, n)
	for i := range items {
		items[i] = &PaperItem{comp: c, index: i}
	}
	return items
}

// PageRect returns the rectangle of page i in composition coordinates.
func (c *Composition) PageRect(i int) (Rect, error) {
	s := c.snapshot()
	if i < 0 || i >= s.pages {
		return Rect{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, i, s.pages)
	}
	return s.pageRect(i), nil
}

// PageAt returns the index of the page containing p.
func (c *Composition) PageAt(p Point) (int, bool) {
	s := c.snapshot()
	i := int(math.Floor(p.Y / (s.paperHeight + SpaceBetweenPages)))
	if i < 0 || i >= s.pages {
		return 0, false
	}
	if !s.pageRect(i).Contains(p) {
		return 0, false
	}
	return i, true
}

// SnapPoint moves a composition-space point to the nearest grid
// intersection. The grid is phase-locked to the page the point falls on.
// The point is returned unchanged when the grid is disabled or its
// resolution is not positive.
func (c *Composition) SnapPoint(p Point) Point {
	s := c.snapshot()
	spec := s.grid.Spec
	if !s.grid.Enabled || !spec.Enabled() {
		return p
	}

	pitch := s.paperHeight + SpaceBetweenPages
	page := max(math.Floor(p.Y/pitch), 0)
	yOffset := page * pitch
	yPage := p.Y - yOffset

	xRatio := math.Round((p.X - spec.OffsetX) / spec.Resolution)
	yRatio := math.Round((yPage - spec.OffsetY) / spec.Resolution)
	return Point{
		X: xRatio*spec.Resolution + spec.OffsetX,
		Y: yRatio*spec.Resolution + spec.OffsetY + yOffset,
	}
}

// gridCacheSize bounds the number of distinct grids kept per composition.
const gridCacheSize = 16

type gridKey struct {
	area  PageArea
	spec  GridSpec
	scale float64
}

// gridCommands returns the grid sweep for a page. Pages with the same
// geometry share one slice, which must not be modified.
func (c *Composition) gridCommands(area PageArea, spec GridSpec, pixelScale float64) []DrawCommand {
	key := gridKey{area: area, spec: spec, scale: pixelScale}
	if spec.Style != GridDots {
		// Only dot size depends on the view.
		key.scale = 0
	}
	return c.grids.GetOrCreate(key, func() []DrawCommand {
		return RenderGrid(area, spec, pixelScale)
	})
}

// PainterFactory returns the painter for page i.
type PainterFactory func(page int) (Painter, error)

// Render paints every page. Pages are painted in parallel; newPainter is
// called once per page and must be safe for concurrent use.
//
// Render stops scheduling new pages after the first error or after ctx
// is cancelled, and returns the error of the lowest-numbered failed page.
func (c *Composition) Render(ctx context.Context, newPainter PainterFactory) error {
	pages := c.Pages()
	if len(pages) == 0 {
		return nil
	}

	pool := parallel.NewWorkerPool(min(len(pages), runtime.GOMAXPROCS(0)))
	defer pool.Close()

	errs := make([]error, len(pages))
	var failed atomic.Bool

	work := make([]func(), len(pages))
	for i, page := range pages {
		work[i] = func() {
			if failed.Load() {
				return
			}
			if err := ctx.Err(); err != nil {
				errs[i] = err
				failed.Store(true)
				return
			}
			pt, err := newPainter(i)
			if err != nil {
				errs[i] = fmt.Errorf("paper: page %d: %w", i, err)
				failed.Store(true)
				return
			}
			page.Paint(pt)
		}
	}
	pool.ExecuteAll(work)

	for i, err := range errs {
		if err != nil {
			Logger().Warn("paper: render aborted", "page", i, "err", err)
			return err
		}
	}
	return nil
}
