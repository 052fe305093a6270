package paper

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation error returned from
// LoadConfig, ParseConfig and Config.Validate.
var ErrInvalidConfig = errors.New("paper: invalid config")

// Config is the on-disk description of a composition.
type Config struct {
	Paper      PaperConfig `yaml:"paper"`
	PlotStyle  string      `yaml:"plot_style"`
	Background string      `yaml:"background"`
	View       ViewConfig  `yaml:"view"`
	Grid       GridConfig  `yaml:"grid"`
}

// PaperConfig sets page size (millimetres) and page count.
type PaperConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Pages  int     `yaml:"pages"`
}

// ViewConfig describes the view used to preview the composition.
type ViewConfig struct {
	// Scale is the number of device pixels per millimetre.
	Scale float64 `yaml:"scale"`
}

// GridConfig holds snapping grid settings. A resolution of zero or less
// is accepted and simply hides the grid.
type GridConfig struct {
	Enabled    bool    `yaml:"enabled"`
	OffsetX    float64 `yaml:"offset_x"`
	OffsetY    float64 `yaml:"offset_y"`
	Resolution float64 `yaml:"resolution"`
	Style      string  `yaml:"style"`
	Color      string  `yaml:"color"`
	Width      float64 `yaml:"width"`
}

// DefaultConfig returns the configuration matching NewComposition's defaults,
// previewed at four pixels per millimetre.
func DefaultConfig() Config {
	return Config{
		Paper:      PaperConfig{Width: DefaultPaperWidth, Height: DefaultPaperHeight, Pages: 1},
		PlotStyle:  PlotPreview.String(),
		Background: "white",
		View:       ViewConfig{Scale: 4},
		Grid: GridConfig{
			Resolution: 10,
			Style:      GridSolid.String(),
			Color:      "#bebebe",
		},
	}
}

// LoadConfig reads and validates a YAML configuration file.
// Fields missing from the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("paper: load %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("paper: load %s: %w", path, err)
	}
	Logger().Info("paper: config loaded", "path", path, "pages", cfg.Paper.Pages, "grid", cfg.Grid.Enabled)
	return cfg, nil
}

// ParseConfig decodes and validates YAML configuration data.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field that NewComposition would otherwise
// silently ignore.
func (c Config) Validate() error {
	if c.Paper.Width <= 0 || c.Paper.Height <= 0 {
		return fmt.Errorf("%w: paper size %vx%v must be positive", ErrInvalidConfig, c.Paper.Width, c.Paper.Height)
	}
	if c.Paper.Pages < 1 {
		return fmt.Errorf("%w: pages must be at least 1, got %d", ErrInvalidConfig, c.Paper.Pages)
	}
	if c.View.Scale <= 0 {
		return fmt.Errorf("%w: view scale must be positive, got %v", ErrInvalidConfig, c.View.Scale)
	}
	if c.Grid.Width < 0 {
		return fmt.Errorf("%w: grid pen width must not be negative, got %v", ErrInvalidConfig, c.Grid.Width)
	}
	if _, err := ParsePlotStyle(c.PlotStyle); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := ParseGridStyle(c.Grid.Style); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := ParseColor(c.Background); err != nil {
		return fmt.Errorf("%w: background: %w", ErrInvalidConfig, err)
	}
	if _, err := ParseColor(c.Grid.Color); err != nil {
		return fmt.Errorf("%w: grid: %w", ErrInvalidConfig, err)
	}
	return nil
}

// SnapGrid converts the grid section to SnapGrid settings.
func (c Config) SnapGrid() (SnapGrid, error) {
	style, err := ParseGridStyle(c.Grid.Style)
	if err != nil {
		return SnapGrid{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	col, err := ParseColor(c.Grid.Color)
	if err != nil {
		return SnapGrid{}, fmt.Errorf("%w: grid: %w", ErrInvalidConfig, err)
	}
	return SnapGrid{
		Enabled: c.Grid.Enabled,
		Spec: GridSpec{
			OffsetX:    c.Grid.OffsetX,
			OffsetY:    c.Grid.OffsetY,
			Resolution: c.Grid.Resolution,
			Style:      style,
		},
		Pen: Pen{Color: col, Width: c.Grid.Width},
	}, nil
}

// Composition builds a composition with one view at the configured scale.
func (c Config) Composition() (*Composition, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	grid, err := c.SnapGrid()
	if err != nil {
		return nil, err
	}
	plot, _ := ParsePlotStyle(c.PlotStyle)
	bg, _ := ParseColor(c.Background)

	return NewComposition(
		WithPaperSize(c.Paper.Width, c.Paper.Height),
		WithPages(c.Paper.Pages),
		WithPlotStyle(plot),
		WithBackground(bg),
		WithSnapGrid(grid),
		WithViews(NewStaticView(c.View.Scale)),
	), nil
}
