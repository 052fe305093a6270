package raster

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/paper"
	"github.com/gogpu/paper/recording"
)

// dark reports whether the pixel at (x, y) is close to black.
func dark(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R < 64 && c.G < 64 && c.B < 64 && c.A > 192
}

// light reports whether the pixel at (x, y) is close to white.
func light(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R > 192 && c.G > 192 && c.B > 192 && c.A > 192
}

func TestBackendRegistration(t *testing.T) {
	if !recording.IsRegistered("raster") {
		t.Fatal("raster backend not registered")
	}
	backend, err := recording.NewBackend("raster")
	if err != nil {
		t.Fatalf("failed to create raster backend: %v", err)
	}
	if _, ok := backend.(*Backend); !ok {
		t.Fatalf("backend is %T, not *raster.Backend", backend)
	}
}

func TestBackendLifecycle(t *testing.T) {
	b := NewBackend()
	if err := b.End(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("End() before Begin = %v, want ErrNotStarted", err)
	}
	if err := b.Begin(0, 10); err == nil {
		t.Error("Begin(0, 10) should fail")
	}
	if err := b.Begin(40, 30); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if got := b.Image().Bounds(); got != image.Rect(0, 0, 40, 30) {
		t.Errorf("Image().Bounds() = %v", got)
	}
	if err := b.End(); err != nil {
		t.Errorf("End() error = %v", err)
	}
}

func TestBackendFillRect(t *testing.T) {
	b := NewBackend()
	_ = b.Begin(20, 20)
	b.FillRect(paper.NewRect(0, 0, 20, 20), paper.White)
	b.FillRect(paper.NewRect(5, 5, 5, 5), paper.Black)

	img := b.Image()
	if !dark(img, 7, 7) {
		t.Errorf("pixel (7,7) = %v, want black", img.RGBAAt(7, 7))
	}
	if !light(img, 2, 2) || !light(img, 12, 12) {
		t.Error("pixels outside the black square should stay white")
	}
}

func TestBackendAliasedHairline(t *testing.T) {
	b := NewBackend()
	_ = b.Begin(20, 20)
	b.FillRect(paper.NewRect(0, 0, 20, 20), paper.White)
	b.SetAntialias(false)
	b.SetPen(paper.Pen{Color: paper.Black})
	b.DrawLine(paper.Pt(10, 0), paper.Pt(10, 20))

	img := b.Image()
	for y := 1; y < 19; y++ {
		if !dark(img, 10, y) {
			t.Fatalf("pixel (10,%d) = %v, want black", y, img.RGBAAt(10, y))
		}
		if !light(img, 9, y) || !light(img, 11, y) {
			t.Fatalf("hairline bled into neighbours at row %d", y)
		}
	}
}

func TestBackendTransformedPen(t *testing.T) {
	b := NewBackend()
	_ = b.Begin(40, 40)
	b.FillRect(paper.NewRect(0, 0, 40, 40), paper.White)
	b.SetTransform(paper.Scale(4, 4))
	b.SetAntialias(false)
	b.SetPen(paper.Pen{Color: paper.Black, Width: 1}) // 4 device pixels
	b.DrawLine(paper.Pt(0, 5), paper.Pt(10, 5))

	img := b.Image()
	// Centre snaps to 20.5, so the stroke covers rows 18.5..22.5.
	for _, y := range []int{19, 20, 21} {
		if !dark(img, 20, y) {
			t.Errorf("pixel (20,%d) = %v, want black", y, img.RGBAAt(20, y))
		}
	}
	if !light(img, 20, 16) || !light(img, 20, 24) {
		t.Error("stroke wider than the scaled pen")
	}
}

func TestBackendZeroLengthDot(t *testing.T) {
	b := NewBackend()
	_ = b.Begin(10, 10)
	b.FillRect(paper.NewRect(0, 0, 10, 10), paper.White)
	b.SetAntialias(false)
	b.DrawLine(paper.Pt(4.2, 6.7), paper.Pt(4.2, 6.7))

	if !dark(b.Image(), 4, 6) {
		t.Errorf("pixel (4,6) = %v, want black dot", b.Image().RGBAAt(4, 6))
	}
}

func TestBackendSaveRestore(t *testing.T) {
	b := NewBackend()
	_ = b.Begin(10, 10)

	b.Save()
	b.SetTransform(paper.Scale(2, 2))
	b.SetAntialias(false)
	b.SetPen(paper.Pen{Color: paper.White, Width: 3})
	b.Restore()
	b.Restore() // extra restore is a no-op

	if b.cur != defaultState() {
		t.Errorf("state after Restore = %+v, want defaults", b.cur)
	}
}

func TestBackendWriteTo(t *testing.T) {
	b := NewBackend()
	if _, err := b.WriteTo(&bytes.Buffer{}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("WriteTo() before Begin = %v, want ErrNotStarted", err)
	}

	_ = b.Begin(16, 8)
	b.FillRect(paper.NewRect(0, 0, 16, 8), paper.White)
	_ = b.End()

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo() = %d, wrote %d bytes", n, buf.Len())
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 16, 8) {
		t.Errorf("decoded bounds = %v", img.Bounds())
	}
}

func TestBackendSaveToFile(t *testing.T) {
	b := NewBackend()
	_ = b.Begin(4, 4)
	_ = b.End()

	path := filepath.Join(t.TempDir(), "page.png")
	if err := b.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("output file missing or empty: %v", err)
	}

	if err := b.SaveToFile(filepath.Join(t.TempDir(), "missing", "page.png")); err == nil {
		t.Error("SaveToFile() into a missing directory should fail")
	}
}

func TestRecordingPlaybackSolidGrid(t *testing.T) {
	grid := paper.SnapGrid{
		Enabled: true,
		Spec:    paper.GridSpec{Resolution: 25},
		Pen:     paper.Pen{Color: paper.Black},
	}
	c := paper.NewComposition(paper.WithPaperSize(100, 80), paper.WithSnapGrid(grid))
	r := recording.RecordPage(c.Page(0), 1)

	b := NewBackend()
	if err := r.Playback(b); err != nil {
		t.Fatalf("Playback() error = %v", err)
	}

	img := b.Image()
	for _, x := range []int{0, 25, 50, 75} {
		if !dark(img, x, 40) {
			t.Errorf("no vertical grid line at x=%d: %v", x, img.RGBAAt(x, 40))
		}
	}
	for _, y := range []int{0, 25, 50, 75} {
		if !dark(img, 60, y) {
			t.Errorf("no horizontal grid line at y=%d: %v", y, img.RGBAAt(60, y))
		}
	}
	if !light(img, 12, 12) || !light(img, 62, 37) {
		t.Error("cell interiors should show the white background")
	}
}

func TestRecordingPlaybackPrintHidesGrid(t *testing.T) {
	grid := paper.SnapGrid{Enabled: true, Spec: paper.GridSpec{Resolution: 10}, Pen: paper.Pen{Color: paper.Black}}
	c := paper.NewComposition(
		paper.WithPaperSize(40, 40),
		paper.WithSnapGrid(grid),
		paper.WithPlotStyle(paper.PlotPrint),
	)

	b := NewBackend()
	if err := recording.RecordPage(c.Page(0), 1).Playback(b); err != nil {
		t.Fatalf("Playback() error = %v", err)
	}
	for y := 0; y < 40; y += 5 {
		for x := 0; x < 40; x += 5 {
			if !light(b.Image(), x, y) {
				t.Fatalf("pixel (%d,%d) = %v; print output must not show the grid", x, y, b.Image().RGBAAt(x, y))
			}
		}
	}
}
