// Package match finds the palette color closest to a given color.
//
// Distances are squared Euclidean distances. When several palette entries
// are equally close, the one that comes first in the palette wins.
package match

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"factory/okcolor"
	"factory/palette"
)

var ErrEmptyPalette = errors.New("cannot match against an empty palette")

type Metric int

const (
	// RGB compares the red, green and blue components directly.
	RGB Metric = iota
	// OKLab compares colors in the OKLab perceptual space.
	OKLab
)

func (m Metric) String() string {
	switch m {
	case RGB:
		return "rgb"
	case OKLab:
		return "oklab"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(s) {
	case "", "rgb":
		return RGB, nil
	case "oklab":
		return OKLab, nil
	}
	return RGB, fmt.Errorf("unsupported metric %q, should be rgb or oklab", s)
}

// Dist2 is the squared Euclidean RGB distance between two colors.
func Dist2(a, b palette.Color) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Nearest returns the entry of p closest to c under the RGB metric by a
// linear scan over the whole palette. p must not be empty.
func Nearest(p *palette.Palette, c palette.Color) palette.Color {
	best, bestSum := 0, math.MaxInt
	for i := range p.Len() {
		sum := Dist2(c, p.At(i))
		if sum < bestSum {
			if sum == 0 {
				return p.At(i)
			}
			best, bestSum = i, sum
		}
	}
	return p.At(best)
}

// Matcher answers nearest-color queries for one palette and metric. It is
// read only after New and may be shared by any number of goroutines.
type Matcher struct {
	metric Metric
	colors []palette.Color
	lab    []okcolor.Lab
}

func New(p *palette.Palette, metric Metric) (*Matcher, error) {
	if p.Len() == 0 {
		return nil, ErrEmptyPalette
	}

	m := &Matcher{
		metric: metric,
		colors: p.Colors(),
	}

	switch metric {
	case RGB:
	case OKLab:
		m.lab = make([]okcolor.Lab, len(m.colors))
		for i, c := range m.colors {
			m.lab[i] = okcolor.FromSRGB(c.R, c.G, c.B)
		}
	default:
		return nil, fmt.Errorf("unsupported metric: %s", metric)
	}

	return m, nil
}

// Index returns the palette index of the entry closest to c.
func (m *Matcher) Index(c palette.Color) int {
	if m.metric == OKLab {
		return m.labIndex(c)
	}

	best, bestSum := 0, math.MaxInt
	for i, v := range m.colors {
		sum := Dist2(c, v)
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			best, bestSum = i, sum
		}
	}
	return best
}

func (m *Matcher) labIndex(c palette.Color) int {
	lc := okcolor.FromSRGB(c.R, c.G, c.B)
	best, bestSum := 0, math.MaxFloat64
	for i, v := range m.lab {
		sum := lc.Dist2(v)
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			best, bestSum = i, sum
		}
	}
	return best
}

func (m *Matcher) Nearest(c palette.Color) palette.Color {
	return m.colors[m.Index(c)]
}
