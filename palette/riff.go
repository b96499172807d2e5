package palette

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/riff"
)

/*
typedef struct tagLOGPALETTE {
  WORD         palVersion;
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

const palVersion = 0x0300

// ReadRIFF loads a palette from a Microsoft RIFF PAL file. Colors of all data
// chunks are concatenated, then deduplicated like any other palette.
func ReadRIFF(r io.Reader) (*Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %q", string(formType[:]))
	}

	colors, err := readChunks(rd, "PAL")
	if err != nil {
		return nil, err
	}

	return New(colors...)
}

func readChunks(r *riff.Reader, ident string) ([]Color, error) {
	var res []Color

	for i := 0; ; i++ {
		id, size, data, err := r.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		} else if err != nil {
			return nil, fmt.Errorf("could not read chunk %s#%d: %w", ident, i, err)
		}

		switch id {
		case riff.LIST:
			listType, list, err := riff.NewListReader(size, data)
			if err != nil {
				return nil, fmt.Errorf("could not read list from chunk %s#%d: %w", ident, i, err)
			} else if listType != palType {
				return nil, fmt.Errorf("chunk %s#%d has unsupported list type: %q", ident, i, string(listType[:]))
			}

			colors, err := readChunks(list, fmt.Sprintf("%s#%d", ident, i))
			if err != nil {
				return nil, err
			}
			res = append(res, colors...)
		case dataType:
			colors, err := readData(data, fmt.Sprintf("%s#%d", ident, i))
			if err != nil {
				return nil, err
			}
			res = append(res, colors...)
		default:
			return nil, fmt.Errorf("unsupported chunk type in %s#%d: %q", ident, i, string(id[:]))
		}
	}
}

func readData(r io.Reader, ident string) ([]Color, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("could not read header of chunk %s: %w", ident, err)
	}

	if ver := binary.LittleEndian.Uint16(hdr[:2]); ver != palVersion {
		return nil, fmt.Errorf("unsupported palette version in chunk %s: %#04x", ident, ver)
	}

	count := int(binary.LittleEndian.Uint16(hdr[2:]))
	res := make([]Color, count)
	var entry [4]byte
	for i := range count {
		if _, err := io.ReadFull(r, entry[:]); err != nil {
			return nil, fmt.Errorf("could not read color %d/%d from chunk %s: %w", i, count, ident, err)
		}
		res[i] = Color{R: entry[0], G: entry[1], B: entry[2]}
	}

	return res, nil
}

// WriteRIFF writes p as a single-chunk RIFF PAL file.
func WriteRIFF(w io.Writer, p *Palette) (int64, error) {
	n := len(p.colors)
	if n > 0xffff {
		return 0, fmt.Errorf("too many colors for a RIFF palette: %d", n)
	}

	chunkSize := 4 + 4*n
	buf := make([]byte, 0, 12+8+chunkSize)
	buf = append(buf, riffType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(4+8+chunkSize))
	buf = append(buf, palType[:]...)
	buf = append(buf, dataType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(chunkSize))
	buf = binary.LittleEndian.AppendUint16(buf, palVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(n))
	for _, c := range p.colors {
		buf = append(buf, c.R, c.G, c.B, 0x00)
	}

	m, err := w.Write(buf)
	if err != nil {
		return int64(m), fmt.Errorf("could not write RIFF palette: %w", err)
	} else if m != len(buf) {
		return int64(m), fmt.Errorf("wrote only %d/%d bytes", m, len(buf))
	}
	return int64(m), nil
}
