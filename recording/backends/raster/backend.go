// Package raster provides a raster backend for the recording system.
// It renders recordings to an RGBA image using golang.org/x/image/vector.
//
// # Supported Features
//
//   - Solid rectangle fills
//   - Line strokes with square caps, cosmetic (one pixel) or scaled width
//   - Affine transform
//   - Antialiasing toggle: with antialiasing off, geometry snaps to the
//     pixel grid so hairlines cover whole pixels
//   - State management (Save/Restore)
//   - PNG output
//
// # Example
//
//	import _ "github.com/gogpu/paper/recording/backends/raster"
//
//	backend, _ := recording.NewBackend("raster")
//	rec.Playback(backend)
//	backend.(recording.FileBackend).SaveToFile("page.png")
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/vector"

	"github.com/gogpu/paper"
	"github.com/gogpu/paper/recording"
)

func init() {
	recording.Register("raster", func() recording.Backend {
		return NewBackend()
	})
}

// ErrNotStarted is returned by output methods called before Begin.
var ErrNotStarted = errors.New("raster: backend not started")

// state is the graphics state saved by Save.
type state struct {
	transform paper.Matrix
	pen       paper.Pen
	antialias bool
}

// Backend renders recordings to an *image.RGBA.
type Backend struct {
	img   *image.RGBA
	z     *vector.Rasterizer
	cur   state
	stack []state
}

// Ensure Backend implements all required interfaces.
var (
	_ recording.Backend       = (*Backend)(nil)
	_ recording.WriterBackend = (*Backend)(nil)
	_ recording.FileBackend   = (*Backend)(nil)
)

// NewBackend creates a new raster backend.
// The backend must be initialized with Begin before use.
func NewBackend() *Backend {
	return &Backend{}
}

func defaultState() state {
	return state{
		transform: paper.Identity(),
		pen:       paper.Pen{Color: paper.Black},
		antialias: true,
	}
}

// Begin allocates a transparent image of the given size.
func (b *Backend) Begin(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("raster: invalid size %dx%d", width, height)
	}
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
	b.z = vector.NewRasterizer(width, height)
	b.cur = defaultState()
	b.stack = b.stack[:0]
	return nil
}

// End finalizes the rendering.
func (b *Backend) End() error {
	if b.img == nil {
		return ErrNotStarted
	}
	return nil
}

// Save saves the current graphics state onto a stack.
func (b *Backend) Save() {
	b.stack = append(b.stack, b.cur)
}

// Restore restores the graphics state from the stack.
// If the stack is empty, this is a no-op.
func (b *Backend) Restore() {
	if len(b.stack) == 0 {
		return
	}
	b.cur = b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
}

// SetTransform sets the current transformation matrix.
func (b *Backend) SetTransform(m paper.Matrix) {
	b.cur.transform = m
}

// SetAntialias toggles antialiasing.
func (b *Backend) SetAntialias(enabled bool) {
	b.cur.antialias = enabled
}

// SetPen sets the stroke pen.
func (b *Backend) SetPen(pen paper.Pen) {
	b.cur.pen = pen
}

// FillRect fills a rectangle given in logical coordinates.
func (b *Backend) FillRect(r paper.Rect, c paper.RGBA) {
	m := b.cur.transform
	pts := [4]paper.Point{
		m.TransformPoint(paper.Pt(r.MinX, r.MinY)),
		m.TransformPoint(paper.Pt(r.MaxX, r.MinY)),
		m.TransformPoint(paper.Pt(r.MaxX, r.MaxY)),
		m.TransformPoint(paper.Pt(r.MinX, r.MaxY)),
	}
	if !b.cur.antialias {
		for i := range pts {
			pts[i] = paper.Pt(math.Round(pts[i].X), math.Round(pts[i].Y))
		}
	}
	b.fillPolygon(pts, c)
}

// DrawLine strokes a segment with the current pen and square caps.
// A zero-length segment draws a square dot one pen width across.
func (b *Backend) DrawLine(from, to paper.Point) {
	m := b.cur.transform
	p0, p1 := m.TransformPoint(from), m.TransformPoint(to)
	half := b.strokeWidth() / 2

	if !b.cur.antialias {
		p0, p1 = snapToPixelCenter(p0), snapToPixelCenter(p1)
	}

	d := p1.Sub(p0)
	u := paper.Pt(1, 0)
	if l := d.Length(); l > 0 {
		u = d.Mul(1 / l)
	}
	n := paper.Pt(-u.Y, u.X).Mul(half)
	ext := u.Mul(half)

	start, end := p0.Sub(ext), p1.Add(ext)
	b.fillPolygon([4]paper.Point{
		start.Add(n),
		end.Add(n),
		end.Sub(n),
		start.Sub(n),
	}, b.cur.pen.Color)
}

// strokeWidth returns the pen width in device pixels, never below one.
func (b *Backend) strokeWidth() float64 {
	pen := b.cur.pen
	if pen.Cosmetic() {
		return 1
	}
	m := b.cur.transform
	w := pen.Width * math.Sqrt(math.Abs(m.A*m.E-m.B*m.D))
	return max(w, 1)
}

func snapToPixelCenter(p paper.Point) paper.Point {
	return paper.Pt(math.Floor(p.X)+0.5, math.Floor(p.Y)+0.5)
}

func (b *Backend) fillPolygon(pts [4]paper.Point, c paper.RGBA) {
	if b.img == nil {
		return
	}
	bounds := b.img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	// Clamping is exact for the axis-aligned shapes grids produce.
	clamp := func(p paper.Point) (float32, float32) {
		return float32(min(max(p.X, 0), w)), float32(min(max(p.Y, 0), h))
	}

	b.z.Reset(bounds.Dx(), bounds.Dy())
	b.z.DrawOp = draw.Over
	b.z.MoveTo(clamp(pts[0]))
	for _, p := range pts[1:] {
		b.z.LineTo(clamp(p))
	}
	b.z.ClosePath()
	b.z.Draw(b.img, bounds, image.NewUniform(c.NRGBA()), image.Point{})
}

// Image returns the rendered image, or nil before Begin.
func (b *Backend) Image() *image.RGBA {
	return b.img
}

// WriteTo writes the rendered content as PNG to the given writer.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	if b.img == nil {
		return 0, ErrNotStarted
	}
	cw := &countingWriter{w: w}
	err := png.Encode(cw, b.img)
	return cw.n, err
}

// SaveToFile saves the rendered content as PNG to a file.
func (b *Backend) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: %w", err)
	}
	if _, err := b.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("raster: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("raster: close %s: %w", path, err)
	}
	paper.Logger().Info("raster: image written", "path", path)
	return nil
}

// countingWriter wraps an io.Writer and counts bytes written.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
