package compose

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGB is a 24-bit color as picked in a color control.
type RGB struct {
	R, G, B uint8
}

// Reference defaults: white glyphs with a black outline.
var (
	White = RGB{R: 0xFF, G: 0xFF, B: 0xFF}
	Black = RGB{}
)

// ParseRGB parses "#rrggbb" or "rrggbb" in any letter case.
func ParseRGB(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// String returns the uppercase "#RRGGBB" display form.
func (c RGB) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Color returns the opaque color.Color for drawing.
func (c RGB) Color() color.Color {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// MarshalText implements encoding.TextMarshaler.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseRGB(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
