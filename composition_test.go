package paper

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestNewCompositionDefaults(t *testing.T) {
	c := NewComposition()

	if w, h := c.PaperSize(); w != DefaultPaperWidth || h != DefaultPaperHeight {
		t.Errorf("PaperSize() = %v, %v", w, h)
	}
	if c.NumPages() != 1 {
		t.Errorf("NumPages() = %d, want 1", c.NumPages())
	}
	if c.PlotStyle() != PlotPreview {
		t.Errorf("PlotStyle() = %v, want preview", c.PlotStyle())
	}
	if c.Background() != White {
		t.Errorf("Background() = %v, want white", c.Background())
	}
	g := c.SnapGrid()
	if g.Enabled || g.Spec.Resolution != 10 || g.Spec.Style != GridSolid || g.Pen != DefaultGridPen() {
		t.Errorf("SnapGrid() = %+v", g)
	}
	if c.PixelScale() != 1 {
		t.Errorf("PixelScale() = %v, want 1", c.PixelScale())
	}
}

func TestCompositionOptionsIgnoreInvalid(t *testing.T) {
	c := NewComposition(WithPaperSize(0, 100), WithPages(0))
	if w, h := c.PaperSize(); w != DefaultPaperWidth || h != DefaultPaperHeight {
		t.Errorf("PaperSize() = %v, %v; invalid size should be ignored", w, h)
	}
	if c.NumPages() != 1 {
		t.Errorf("NumPages() = %d; invalid count should be ignored", c.NumPages())
	}

	c.SetPaperSize(-1, 5)
	c.SetNumPages(-3)
	if w, _ := c.PaperSize(); w != DefaultPaperWidth {
		t.Errorf("SetPaperSize accepted a negative width")
	}
	if c.NumPages() != 1 {
		t.Errorf("SetNumPages accepted a negative count")
	}
}

func TestCompositionViews(t *testing.T) {
	c := NewComposition()
	v1, v2 := NewStaticView(2), NewStaticView(3)
	c.AddView(v1)
	c.AddView(v2)
	c.AddView(nil)

	if len(c.Views()) != 2 {
		t.Fatalf("len(Views()) = %d, want 2", len(c.Views()))
	}
	if c.PixelScale() != 2 {
		t.Errorf("PixelScale() = %v, want 2", c.PixelScale())
	}
	c.RemoveView(v1)
	if c.PixelScale() != 3 {
		t.Errorf("PixelScale() after RemoveView = %v, want 3", c.PixelScale())
	}
}

func TestPageRect(t *testing.T) {
	c := NewComposition(WithPaperSize(100, 50), WithPages(3))

	tests := []struct {
		page int
		want Rect
	}{
		{0, Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}},
		{1, Rect{MinX: 0, MinY: 60, MaxX: 100, MaxY: 110}},
		{2, Rect{MinX: 0, MinY: 120, MaxX: 100, MaxY: 170}},
	}
	for _, tt := range tests {
		got, err := c.PageRect(tt.page)
		if err != nil {
			t.Fatalf("PageRect(%d) error = %v", tt.page, err)
		}
		if got != tt.want {
			t.Errorf("PageRect(%d) = %+v, want %+v", tt.page, got, tt.want)
		}
		if c.Page(tt.page).Rect() != tt.want {
			t.Errorf("Page(%d).Rect() = %+v, want %+v", tt.page, c.Page(tt.page).Rect(), tt.want)
		}
	}

	for _, bad := range []int{-1, 3} {
		if _, err := c.PageRect(bad); !errors.Is(err, ErrPageOutOfRange) {
			t.Errorf("PageRect(%d) error = %v, want ErrPageOutOfRange", bad, err)
		}
		if c.Page(bad) != nil {
			t.Errorf("Page(%d) should be nil", bad)
		}
	}
}

func TestPageAt(t *testing.T) {
	c := NewComposition(WithPaperSize(100, 50), WithPages(2))

	tests := []struct {
		p     Point
		want  int
		found bool
	}{
		{Pt(10, 10), 0, true},
		{Pt(10, 55), 0, false}, // gap between pages
		{Pt(10, 60), 1, true},
		{Pt(150, 10), 0, false},
		{Pt(10, 200), 0, false},
		{Pt(10, -1), 0, false},
	}
	for _, tt := range tests {
		got, ok := c.PageAt(tt.p)
		if got != tt.want || ok != tt.found {
			t.Errorf("PageAt(%v) = %d, %v; want %d, %v", tt.p, got, ok, tt.want, tt.found)
		}
	}
}

func TestSnapPoint(t *testing.T) {
	grid := SnapGrid{Enabled: true, Spec: GridSpec{OffsetX: 2, OffsetY: 3, Resolution: 10}}
	c := NewComposition(WithPaperSize(100, 50), WithPages(2), WithSnapGrid(grid))

	tests := []struct {
		in, want Point
	}{
		{Pt(0, 0), Pt(2, 3)},
		{Pt(13, 9), Pt(12, 13)},
		{Pt(6.9, 7.9), Pt(2, 3)},
		{Pt(7.1, 8.1), Pt(12, 13)},
		// Second page starts at y=60; the grid restarts there.
		{Pt(21, 64), Pt(22, 63)},
		{Pt(21, 69), Pt(22, 73)},
	}
	for _, tt := range tests {
		if got := c.SnapPoint(tt.in); got != tt.want {
			t.Errorf("SnapPoint(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSnapPointDisabled(t *testing.T) {
	p := Pt(13.3, 7.7)

	c := NewComposition()
	if got := c.SnapPoint(p); got != p {
		t.Errorf("SnapPoint with grid disabled = %v, want %v", got, p)
	}

	c.SetSnapGrid(SnapGrid{Enabled: true, Spec: GridSpec{Resolution: 0}})
	if got := c.SnapPoint(p); got != p {
		t.Errorf("SnapPoint with zero resolution = %v, want %v", got, p)
	}
}

func TestCompositionRender(t *testing.T) {
	grid := SnapGrid{Enabled: true, Spec: GridSpec{Resolution: 10, Style: GridCrosses}}
	c := NewComposition(WithPaperSize(40, 30), WithPages(5), WithSnapGrid(grid))

	logs := make([]*paintLog, c.NumPages())
	var mu sync.Mutex
	err := c.Render(context.Background(), func(page int) (Painter, error) {
		mu.Lock()
		defer mu.Unlock()
		logs[page] = &paintLog{}
		return logs[page], nil
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := len(RenderGrid(PageArea{Width: 40, Height: 30}, grid.Spec, 1))
	for i, l := range logs {
		if l == nil {
			t.Fatalf("page %d was not painted", i)
		}
		if len(l.lines) != want {
			t.Errorf("page %d: %d lines, want %d", i, len(l.lines), want)
		}
	}
}

func TestCompositionGridShared(t *testing.T) {
	grid := SnapGrid{Enabled: true, Spec: GridSpec{Resolution: 10}}
	c := NewComposition(WithPaperSize(40, 30), WithPages(3), WithSnapGrid(grid))

	for _, page := range c.Pages() {
		page.Paint(&paintLog{})
	}
	if s := c.grids.Stats(); s.Len != 1 || s.Misses != 1 || s.Hits != 2 {
		t.Errorf("grid cache = %+v, want one grid built once", s)
	}

	// Solid grids ignore the view scale.
	c.AddView(NewStaticView(3))
	c.Page(0).Paint(&paintLog{})
	if n := c.grids.Stats().Len; n != 1 {
		t.Errorf("solid grid cached %d times, want 1", n)
	}

	// Changing the grid releases the old one.
	grid.Spec.Style = GridDots
	c.SetSnapGrid(grid)
	if n := c.grids.Stats().Len; n != 0 {
		t.Errorf("grid cache len after SetSnapGrid = %d, want 0", n)
	}
	c.Page(0).Paint(&paintLog{})
	c.RemoveView(c.Views()[0])
	c.Page(0).Paint(&paintLog{})
	if n := c.grids.Stats().Len; n != 2 {
		t.Errorf("grid cache len = %d, want 2 (dots at scale 3, dots at scale 1)", n)
	}

	c.SetPaperSize(50, 50)
	if n := c.grids.Stats().Len; n != 0 {
		t.Errorf("grid cache len after SetPaperSize = %d, want 0", n)
	}
	var l paintLog
	c.Page(0).Paint(&l)
	if want := len(RenderGrid(PageArea{Width: 50, Height: 50}, grid.Spec, 1)); len(l.lines) != want {
		t.Errorf("after resize painted %d lines, want %d", len(l.lines), want)
	}
}

func TestCompositionRenderError(t *testing.T) {
	c := NewComposition(WithPages(4))
	boom := errors.New("boom")

	err := c.Render(context.Background(), func(page int) (Painter, error) {
		if page == 2 {
			return nil, boom
		}
		return &paintLog{}, nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Render() error = %v, want %v", err, boom)
	}
}

func TestCompositionRenderCancelled(t *testing.T) {
	c := NewComposition(WithPages(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := c.Render(ctx, func(int) (Painter, error) {
		called = true
		return &paintLog{}, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("painter factory called after cancellation")
	}
}

func TestPlotStyleNames(t *testing.T) {
	for _, s := range []PlotStyle{PlotPreview, PlotPrint, PlotPostscript} {
		got, err := ParsePlotStyle(s.String())
		if err != nil || got != s {
			t.Errorf("ParsePlotStyle(%q) = %v, %v", s.String(), got, err)
		}
	}
	if got, err := ParsePlotStyle("Print"); err != nil || got != PlotPrint {
		t.Errorf("ParsePlotStyle(\"Print\") = %v, %v", got, err)
	}
	if _, err := ParsePlotStyle("draft"); err == nil {
		t.Error("ParsePlotStyle(\"draft\") should fail")
	}
}
