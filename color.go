package paper

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	White = RGBA{R: 1, G: 1, B: 1, A: 1}
	Black = RGBA{R: 0, G: 0, B: 0, A: 1}

	// GridGray is the default snapping grid color (190, 190, 190).
	GridGray = RGBA{R: 190.0 / 255, G: 190.0 / 255, B: 190.0 / 255, A: 1}
)

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return c.NRGBA()
}

// NRGBA converts RGBA to an 8-bit non-premultiplied color.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with optional '#'.
// The second result is false when the string is not valid hex.
func Hex(hex string) (RGBA, bool) {
	hex = strings.TrimPrefix(hex, "#")

	var r, g, b, a uint32
	a = 255
	ok := true

	switch len(hex) {
	case 3:
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) && parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) && parseHex(hex[2:3], &b) && parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) && parseHex(hex[4:6], &b)
	case 8:
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) && parseHex(hex[4:6], &b) && parseHex(hex[6:8], &a)
	default:
		return Black, false
	}
	if !ok {
		return Black, false
	}

	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}, true
}

// ParseColor parses a color given either as hex ("#bebebe") or as a
// CSS color name ("lightgray").
func ParseColor(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Black, fmt.Errorf("paper: empty color")
	}
	if strings.HasPrefix(s, "#") {
		c, ok := Hex(s)
		if !ok {
			return Black, fmt.Errorf("paper: invalid hex color %q", s)
		}
		return c, nil
	}
	if c, ok := colornames.Map[foldName(s)]; ok {
		return FromColor(c), nil
	}
	if c, ok := Hex(s); ok {
		return c, nil
	}
	return Black, fmt.Errorf("paper: unknown color %q", s)
}

func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x + 0.5
}

// Pen describes how grid lines are stroked.
type Pen struct {
	Color RGBA
	// Width is the stroke width in logical units.
	// Zero selects a cosmetic pen exactly one device pixel wide.
	Width float64
}

// DefaultGridPen returns the pen used for snapping grids when none is configured.
func DefaultGridPen() Pen {
	return Pen{Color: GridGray, Width: 0}
}

// Cosmetic reports whether the pen is one device pixel wide at every zoom level.
func (p Pen) Cosmetic() bool {
	return p.Width <= 0
}
