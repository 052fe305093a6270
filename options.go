package paper

// Option configures a Composition during creation.
//
// Example:
//
//	c := paper.NewComposition(
//	    paper.WithPaperSize(210, 297),
//	    paper.WithPages(2),
//	    paper.WithSnapGrid(paper.SnapGrid{Enabled: true, Spec: paper.GridSpec{Resolution: 5}}),
//	)
type Option func(*Composition)

// WithPaperSize sets the page width and height in millimetres.
// Non-positive sizes are ignored.
func WithPaperSize(width, height float64) Option {
	return func(c *Composition) {
		if width > 0 && height > 0 {
			c.paperWidth, c.paperHeight = width, height
		}
	}
}

// WithPages sets the number of pages. Values below 1 are ignored.
func WithPages(n int) Option {
	return func(c *Composition) {
		if n >= 1 {
			c.pages = n
		}
	}
}

// WithPlotStyle sets the plot style. Grids render only in PlotPreview.
func WithPlotStyle(s PlotStyle) Option {
	return func(c *Composition) {
		c.plotStyle = s
	}
}

// WithSnapGrid sets the snapping grid settings.
func WithSnapGrid(g SnapGrid) Option {
	return func(c *Composition) {
		c.grid = g
	}
}

// WithBackground sets the page background color.
func WithBackground(bg RGBA) Option {
	return func(c *Composition) {
		c.background = bg
	}
}

// WithViews attaches views. The first view determines the pixel scale
// used for dotted grids.
func WithViews(views ...View) Option {
	return func(c *Composition) {
		c.views = append(c.views, views...)
	}
}
