// Package palette loads and holds the ordered set of colors images are
// recolored into.
package palette

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"
)

// ErrEmpty is returned when a source holds no color entries.
var ErrEmpty = errors.New("palette has no colors")

// InvalidEntryError reports the first line that is not a color. Line is
// 1-based and counts blank lines.
type InvalidEntryError struct {
	Line int
	Text string
	Err  error
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid palette entry on line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *InvalidEntryError) Unwrap() error {
	return e.Err
}

// Palette is an immutable, non-empty, duplicate-free ordered list of colors.
// Order is insertion order and decides ties when matching.
type Palette struct {
	colors []Color
}

// Load builds a palette from raw text lines. Blank lines are ignored. Any
// other line must be a color (see ParseColor), or the whole load fails.
func Load(lines []string) (*Palette, error) {
	colors := make([]Color, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		c, err := ParseColor(line)
		if err != nil {
			return nil, &InvalidEntryError{Line: i + 1, Text: line, Err: err}
		}
		colors = append(colors, c)
	}

	return New(colors...)
}

// Read loads a palette from a text stream, one color per line.
func Read(r io.Reader) (*Palette, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("could not read palette: %w", err)
	}

	return Load(lines)
}

// New builds a palette from colors, keeping the first occurrence of each.
func New(colors ...Color) (*Palette, error) {
	seen := make(map[Color]struct{}, len(colors))
	p := &Palette{colors: make([]Color, 0, len(colors))}
	for _, c := range colors {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		p.colors = append(p.colors, c)
	}

	if len(p.colors) == 0 {
		return nil, ErrEmpty
	}
	return p, nil
}

// Len returns the number of colors. A nil palette has none.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.colors)
}

func (p *Palette) At(i int) Color {
	return p.colors[i]
}

// Colors returns a copy of the palette entries.
func (p *Palette) Colors() []Color {
	return append([]Color(nil), p.colors...)
}

// ColorPalette returns the entries as a standard library palette.
func (p *Palette) ColorPalette() color.Palette {
	pal := make(color.Palette, len(p.colors))
	for i, c := range p.colors {
		pal[i] = c
	}
	return pal
}

// WriteText writes the palette in its text form, one RRGGBB per line.
func (p *Palette) WriteText(w io.Writer) (int64, error) {
	var n int64
	for _, c := range p.colors {
		m, err := io.WriteString(w, c.Hex()+"\n")
		n += int64(m)
		if err != nil {
			return n, fmt.Errorf("could not write color %s: %w", c, err)
		}
	}
	return n, nil
}

func (p *Palette) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range p.colors {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
