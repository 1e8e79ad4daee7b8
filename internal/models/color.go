package models

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGB triple. Components are stored in RGB order; conversion to
// OpenCV's BGR order happens at the gocv boundary.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
	Red   = Color{R: 255}
	Green = Color{G: 255}
	Blue  = Color{B: 255}
)

// ColorFromInts builds a Color from slider or file values, rejecting components outside 0..255.
func ColorFromInts(r, g, b int) (Color, error) {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > MaxIntensity {
			return Color{}, fmt.Errorf("color component %d outside [0, %d]", v, MaxIntensity)
		}
	}
	return Color{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// ParseHexColor parses "#rrggbb" (or "#rgb").
func ParseHexColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// FromColorful converts a go-colorful colour, clamping it into the RGB gamut.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func (c Color) Hex() string {
	return c.Colorful().Hex()
}

// Ints returns the components as [r, g, b].
func (c Color) Ints() [3]int {
	return [3]int{int(c.R), int(c.G), int(c.B)}
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}
