package palette

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"FF0000", Color{R: 0xff}},
		{"#00ff00", Color{G: 0xff}},
		{"0x0000Ff", Color{B: 0xff}},
		{"  #282828\r", Color{R: 0x28, G: 0x28, B: 0x28}},
		{"#abc", Color{R: 0xaa, G: 0xbb, B: 0xcc}},
		{"fff", Color{R: 0xff, G: 0xff, B: 0xff}},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Errorf("ParseColor(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "#", "not-a-color", "12345", "#1234567", "GGGGGG", "#-12345", "0x", "##123456", "12 456"} {
		if c, err := ParseColor(in); err == nil {
			t.Errorf("ParseColor(%q) = %v, want error", in, c)
		}
	}
}

func TestColorRGBA(t *testing.T) {
	c := Color{R: 0x12, G: 0x34, B: 0x56}
	got := color.RGBAModel.Convert(c).(color.RGBA)
	if want := (color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}); got != want {
		t.Errorf("RGBA = %v, want %v", got, want)
	}
	if s := c.String(); s != "#123456" {
		t.Errorf("String() = %q", s)
	}
}

func TestLoad(t *testing.T) {
	p, err := Load([]string{"", "#282828", "  ", "cc241d", "98971A"})
	if err != nil {
		t.Fatal(err)
	}

	want := []Color{{0x28, 0x28, 0x28}, {0xcc, 0x24, 0x1d}, {0x98, 0x97, 0x1a}}
	if diff := cmp.Diff(want, p.Colors()); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsPartialGarbage(t *testing.T) {
	p, err := Load([]string{"FF0000", "not-a-color", "00FF00"})
	if p != nil {
		t.Errorf("got palette %v, want none", p)
	}

	var entryErr *InvalidEntryError
	if !errors.As(err, &entryErr) {
		t.Fatalf("error = %v, want *InvalidEntryError", err)
	}
	if entryErr.Line != 2 || entryErr.Text != "not-a-color" {
		t.Errorf("got line %d text %q, want line 2 text %q", entryErr.Line, entryErr.Text, "not-a-color")
	}
}

func TestLoadLineNumbersCountBlankLines(t *testing.T) {
	_, err := Load([]string{"", "FF0000", "", "nope"})
	var entryErr *InvalidEntryError
	if !errors.As(err, &entryErr) || entryErr.Line != 4 {
		t.Errorf("error = %v, want invalid entry on line 4", err)
	}
}

func TestLoadDeduplicates(t *testing.T) {
	p, err := Load([]string{"FF0000", "ff0000", "00FF00", "#F00"})
	if err != nil {
		t.Fatal(err)
	}

	want := []Color{{R: 0xff}, {G: 0xff}}
	if diff := cmp.Diff(want, p.Colors()); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEmpty(t *testing.T) {
	for _, lines := range [][]string{nil, {}, {"", "   ", "\t"}} {
		if _, err := Load(lines); !errors.Is(err, ErrEmpty) {
			t.Errorf("Load(%q) error = %v, want ErrEmpty", lines, err)
		}
	}
	if _, err := New(); !errors.Is(err, ErrEmpty) {
		t.Errorf("New() error = %v, want ErrEmpty", err)
	}
}

func TestReadAndWriteText(t *testing.T) {
	p, err := Read(strings.NewReader("#fbf1c7\n\n#d65d0e\r\n#fbf1c7\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}

	var buf bytes.Buffer
	if _, err := p.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "FBF1C7\nD65D0E\n"; got != want {
		t.Errorf("WriteText = %q, want %q", got, want)
	}
}

func TestColorsIsACopy(t *testing.T) {
	p, err := New(Color{R: 1}, Color{R: 2})
	if err != nil {
		t.Fatal(err)
	}
	cs := p.Colors()
	cs[0] = Color{B: 9}
	if p.At(0) != (Color{R: 1}) {
		t.Error("modifying Colors() changed the palette")
	}
	if got := len(p.ColorPalette()); got != 2 {
		t.Errorf("ColorPalette has %d entries", got)
	}
}
