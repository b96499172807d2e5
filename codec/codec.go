// Package codec reads and writes image files.
package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

// Codec decodes source images and encodes results.
type Codec interface {
	Decode(path string) (image.Image, error)
	Encode(img image.Image, path string) error
}

// Files is a Codec over the local file system. It decodes GIF, JPEG, PNG,
// BMP, TIFF and WebP, and encodes according to the destination extension.
type Files struct {
	// JPEGQuality defaults to 95 when zero.
	JPEGQuality int
	// PNGCompression is the zlib level used for PNG output.
	PNGCompression png.CompressionLevel
	// Palette lists the colors GIF output is expected to hold, in the order
	// they take in the GIF color table. Other colors found in the image are
	// appended after them.
	Palette color.Palette
}

var _ Codec = Files{}

// Format returns the output format for a destination path.
func Format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".gif":
		return "gif", nil
	case ".bmp":
		return "bmp", nil
	case ".tif", ".tiff":
		return "tiff", nil
	default:
		return "", fmt.Errorf("unsupported output format %q", ext)
	}
}

func (f Files) Decode(path string) (image.Image, error) {
	imgFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer func() {
		if closeErr := imgFile.Close(); closeErr != nil {
			slog.Error("could not close image", "file", path, "error", closeErr)
		}
	}()

	img, _, err := image.Decode(imgFile)
	if err != nil {
		return nil, fmt.Errorf("could not decode image %q: %w", path, err)
	}
	return img, nil
}

// Encode writes img to path through a temporary file in the same folder, so
// path is either replaced completely or left untouched.
func (f Files) Encode(img image.Image, path string) (err error) {
	outType, err := Format(path)
	if err != nil {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	outFile, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination for %q: %w", path, err)
	}
	tmpName := outFile.Name()
	defer func() {
		if err != nil {
			_ = outFile.Close()
			if rmErr := os.Remove(tmpName); rmErr != nil {
				slog.Error("could not remove temporary destination", "file", tmpName, "error", rmErr)
			}
		}
	}()

	if err = f.encode(outFile, img, outType); err != nil {
		return fmt.Errorf("could not encode %s destination %q: %w", strings.ToUpper(outType), path, err)
	}
	if err = outFile.Sync(); err != nil {
		return fmt.Errorf("could not flush temporary destination %q: %w", tmpName, err)
	}
	if err = outFile.Close(); err != nil {
		return fmt.Errorf("could not close temporary destination %q: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("could not set mode of %q: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("could not rename destination file %q: %w", path, err)
	}
	return nil
}

func (f Files) encode(w *os.File, img image.Image, outType string) error {
	switch outType {
	case "gif":
		if pm, ok := paletted(img, f.Palette); ok {
			return gif.Encode(w, pm, nil)
		}
		slog.Warn("image has more than 256 colors, quantizing GIF output")
		return gif.Encode(w, img, &gif.Options{NumColors: 256, Drawer: draw.Src})
	case "jpeg":
		quality := f.JPEGQuality
		if quality == 0 {
			quality = 95
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case "png":
		enc := png.Encoder{
			CompressionLevel: f.PNGCompression,
			BufferPool:       pngPool,
		}
		return enc.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported output format: %s", outType)
}

// paletted converts img to a paletted image holding exactly its colors. GIF
// has no partial transparency: alpha 0 maps to a single transparent entry and
// any other alpha is made opaque. It fails when more than 256 entries would
// be needed.
func paletted(img image.Image, base color.Palette) (*image.Paletted, bool) {
	var pal color.Palette
	index := make(map[color.NRGBA]uint8)
	add := func(c color.NRGBA) (uint8, bool) {
		if i, ok := index[c]; ok {
			return i, true
		}
		if len(pal) == 256 {
			return 0, false
		}
		i := uint8(len(pal))
		index[c] = i
		pal = append(pal, c)
		return i, true
	}

	for _, c := range base {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		n.A = 0xff
		if _, ok := add(n); !ok {
			break
		}
	}

	b := img.Bounds()
	pm := image.NewPaletted(b, nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if n.A == 0 {
				n = color.NRGBA{}
			} else {
				n.A = 0xff
			}
			i, ok := add(n)
			if !ok {
				return nil, false
			}
			pm.SetColorIndex(x, y, i)
		}
	}

	if len(pal) == 0 {
		pal = append(pal, color.NRGBA{A: 0xff})
	}
	pm.Palette = pal
	return pm, true
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
