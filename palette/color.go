package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an opaque 8-bit sRGB color.
type Color struct {
	R, G, B uint8
}

var _ color.Color = Color{}

func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Hex returns the color as upper-case RRGGBB without prefix.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	return "#" + c.Hex()
}

// ParseColor reads a hexadecimal color: RRGGBB or RGB, optionally prefixed
// by '#' or "0x".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	digits := s
	if rest, ok := strings.CutPrefix(digits, "#"); ok {
		digits = rest
	} else if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		digits = digits[2:]
	}

	switch len(digits) {
	case 3, 6:
	default:
		return Color{}, fmt.Errorf("invalid color %q, should be RGB or RRGGBB with optional # or 0x prefix", s)
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("could not read color %q: %w", s, err)
	}

	if len(digits) == 3 {
		r, g, b := uint8(v>>8&0xf), uint8(v>>4&0xf), uint8(v&0xf)
		return Color{R: r | r<<4, G: g | g<<4, B: b | b<<4}, nil
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}
