// Package term provides a terminal preview backend for the recording system.
// Each terminal cell is one device pixel; lines are drawn with box-drawing
// runes and rectangles fill cell backgrounds.
//
//	import _ "github.com/gogpu/paper/recording/backends/term"
//
//	backend, _ := recording.NewBackend("term")
//	rec.Playback(backend)
package term

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/paper"
	"github.com/gogpu/paper/recording"
)

func init() {
	recording.Register("term", func() recording.Backend {
		return NewBackend(nil)
	})
}

// Runes used for grid primitives.
const (
	RuneHorizontal = '─'
	RuneVertical   = '│'
	RuneCross      = '┼'
	RuneDot        = '·'
	RuneDiagonal   = '•'
)

type state struct {
	transform paper.Matrix
	pen       paper.Pen
}

// Backend draws recordings onto a tcell.Screen.
type Backend struct {
	screen tcell.Screen
	owned  bool
	width  int
	height int
	cur    state
	stack  []state
}

var _ recording.Backend = (*Backend)(nil)

// NewBackend creates a backend drawing on screen. With a nil screen,
// Begin opens and initializes the terminal, and Close releases it.
func NewBackend(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

// Screen returns the screen being drawn on.
func (b *Backend) Screen() tcell.Screen {
	return b.screen
}

// Begin clears the screen. Drawing is clipped to the smaller of the
// requested size and the screen size.
func (b *Backend) Begin(width, height int) error {
	if b.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("term: %w", err)
		}
		if err := s.Init(); err != nil {
			return fmt.Errorf("term: init: %w", err)
		}
		b.screen, b.owned = s, true
	}
	sw, sh := b.screen.Size()
	b.width, b.height = min(width, sw), min(height, sh)
	b.cur = state{transform: paper.Identity(), pen: paper.Pen{Color: paper.Black}}
	b.stack = b.stack[:0]
	b.screen.Clear()
	return nil
}

// End flushes drawing to the terminal.
func (b *Backend) End() error {
	if b.screen == nil {
		return fmt.Errorf("term: backend not started")
	}
	b.screen.Show()
	return nil
}

// WaitKey blocks until a key is pressed. It returns immediately if the
// screen was closed.
func (b *Backend) WaitKey() {
	if b.screen == nil {
		return
	}
	for {
		switch b.screen.PollEvent().(type) {
		case nil, *tcell.EventKey:
			return
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}
}

// Close releases the terminal if Begin opened it.
func (b *Backend) Close() error {
	if b.owned && b.screen != nil {
		b.screen.Fini()
		b.screen, b.owned = nil, false
	}
	return nil
}

// Save saves the current graphics state onto a stack.
func (b *Backend) Save() {
	b.stack = append(b.stack, b.cur)
}

// Restore restores the graphics state from the stack.
func (b *Backend) Restore() {
	if len(b.stack) == 0 {
		return
	}
	b.cur = b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
}

// SetTransform sets the logical-to-cell transformation.
func (b *Backend) SetTransform(m paper.Matrix) {
	b.cur.transform = m
}

// SetAntialias is a no-op: cells are never blended.
func (b *Backend) SetAntialias(bool) {}

// SetPen sets the pen whose color styles subsequent lines.
func (b *Backend) SetPen(pen paper.Pen) {
	b.cur.pen = pen
}

// FillRect paints the background of every cell whose centre lies in r.
func (b *Backend) FillRect(r paper.Rect, c paper.RGBA) {
	m := b.cur.transform
	p0 := m.TransformPoint(r.Min())
	p1 := m.TransformPoint(paper.Pt(r.MaxX, r.MaxY))
	x0, x1 := cellRange(p0.X, p1.X)
	y0, y1 := cellRange(p0.Y, p1.Y)

	style := tcell.StyleDefault.Background(tcellColor(c))
	for y := max(y0, 0); y < min(y1, b.height); y++ {
		for x := max(x0, 0); x < min(x1, b.width); x++ {
			b.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// DrawLine draws a segment. Horizontal and vertical segments use line
// runes that merge into crosses where they meet; a segment inside one
// cell becomes a dot.
func (b *Backend) DrawLine(from, to paper.Point) {
	m := b.cur.transform
	p0, p1 := m.TransformPoint(from), m.TransformPoint(to)
	x0, y0 := cell(p0.X), cell(p0.Y)
	x1, y1 := cell(p1.X), cell(p1.Y)

	switch {
	case x0 == x1 && y0 == y1:
		b.plot(x0, y0, RuneDot)
	case y0 == y1:
		for x := min(x0, x1); x <= max(x0, x1); x++ {
			b.plot(x, y0, RuneHorizontal)
		}
	case x0 == x1:
		for y := min(y0, y1); y <= max(y0, y1); y++ {
			b.plot(x0, y, RuneVertical)
		}
	default:
		b.bresenham(x0, y0, x1, y1)
	}
}

func (b *Backend) bresenham(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		b.plot(x0, y0, RuneDiagonal)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// plot writes r at (x, y), keeping the cell background.
func (b *Backend) plot(x, y int, r rune) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	old, _, style, _ := b.screen.GetContent(x, y)
	style = style.Foreground(tcellColor(b.cur.pen.Color))
	b.screen.SetContent(x, y, merge(old, r), nil, style)
}

// merge combines the rune already in a cell with a new one.
func merge(old, r rune) rune {
	switch {
	case old == r:
		return r
	case old == RuneCross:
		return RuneCross
	case old == RuneHorizontal && r == RuneVertical, old == RuneVertical && r == RuneHorizontal:
		return RuneCross
	case r == RuneDot && (old == RuneHorizontal || old == RuneVertical):
		return old
	}
	return r
}

func cell(v float64) int {
	return int(math.Floor(v))
}

// cellRange returns the half-open range of cells whose centres lie in [a, b).
func cellRange(a, b float64) (int, int) {
	if a > b {
		a, b = b, a
	}
	return int(math.Ceil(a - 0.5)), int(math.Ceil(b - 0.5))
}

func tcellColor(c paper.RGBA) tcell.Color {
	n := c.NRGBA()
	return tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
