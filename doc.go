// Package paper models the pages of a print composition and draws their
// snapping grid.
//
// # Overview
//
// A Composition holds one or more pages of equal size stacked vertically
// with SpaceBetweenPages between them. Each page is a PaperItem that paints
// its background and, in preview mode, the snapping grid. Items never move
// and cannot be selected.
//
// # Quick Start
//
//	import "github.com/gogpu/paper"
//
//	c := paper.NewComposition(
//		paper.WithPaperSize(297, 210),
//		paper.WithSnapGrid(paper.SnapGrid{
//			Enabled: true,
//			Spec:    paper.GridSpec{Resolution: 10, Style: paper.GridDots},
//			Pen:     paper.DefaultGridPen(),
//		}),
//		paper.WithViews(paper.NewStaticView(4)),
//	)
//	c.Page(0).Paint(painter)
//
// # Grid
//
// RenderGrid is a pure function from page size, grid settings and pixel
// scale to an ordered list of line segments. Grid lines are phase-locked to
// the grid offset, so an offset of 3 and an offset of 13 at resolution 10
// produce the same lines. The page boundaries are inclusive.
//
// Dot marks are sized from the pixel scale of the first visible view so
// they stay about one device pixel across at any zoom.
//
// # Output
//
// Painting goes through the Painter interface. The recording package
// captures a page as commands that can be replayed to a raster image or a
// terminal; see recording.RecordPage.
//
// # Logging
//
// The package is silent by default. Call SetLogger to receive debug output
// about grid rendering.
package paper
