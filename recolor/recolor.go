// Package recolor replaces every pixel of an image by its nearest palette
// color.
package recolor

import (
	"errors"
	"fmt"
	"image"

	"factory/match"
	"factory/palette"
	"factory/parallel"

	"golang.org/x/image/draw"
)

// ErrPrecondition marks calls that break the engine's contract, such as an
// empty palette. They are programming errors, not bad input.
var ErrPrecondition = errors.New("recolor precondition violated")

type Options struct {
	// Parallel splits the image into row bands processed concurrently.
	Parallel bool
	// Workers bounds the number of bands; GOMAXPROCS when less than 1.
	Workers int
	Metric  match.Metric
}

// ToNRGBA returns img as non-premultiplied RGBA. An *image.NRGBA is returned
// as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}

	b := img.Bounds()
	dest := image.NewNRGBA(b)
	draw.Draw(dest, b, img, b.Min, draw.Src)
	return dest
}

// Apply returns a new image the size of src where every pixel is the palette
// color nearest to the source pixel. Alpha is copied unchanged. src is never
// written to, and the result does not depend on Options.Parallel.
func Apply(src image.Image, p *palette.Palette, opts Options) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrPrecondition)
	}

	m, err := match.New(p, opts.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	in := ToNRGBA(src)
	b := in.Bounds()
	out := image.NewNRGBA(b)
	rows := b.Dy()
	if rows == 0 || b.Dx() == 0 {
		return out, nil
	}

	if !opts.Parallel {
		mapRows(m.Memo(), in, out, 0, rows)
		return out, nil
	}

	pool := parallel.Start(min(parallel.Workers(opts.Workers), rows))
	bands := pool.Size()
	for i := range bands {
		y0, y1 := i*rows/bands, (i+1)*rows/bands
		pool.Do(func() {
			mapRows(m.Memo(), in, out, y0, y1)
		})
	}
	pool.Wait()

	return out, nil
}

// mapRows recolors rows [y0, y1), relative to the image origin. Only those
// rows of out are written.
func mapRows(memo *match.Memo, in, out *image.NRGBA, y0, y1 int) {
	width := in.Rect.Dx() * 4
	for y := y0; y < y1; y++ {
		src := in.Pix[y*in.Stride : y*in.Stride+width]
		dst := out.Pix[y*out.Stride : y*out.Stride+width]
		for x := 0; x < width; x += 4 {
			c := memo.Nearest(palette.Color{R: src[x], G: src[x+1], B: src[x+2]})
			dst[x] = c.R
			dst[x+1] = c.G
			dst[x+2] = c.B
			dst[x+3] = src[x+3]
		}
	}
}
