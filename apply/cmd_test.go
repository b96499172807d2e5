package apply

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"factory/codec"
	"factory/gruvbox"
	"factory/palette"
	"factory/report"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func writeImage(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for y := range 5 {
		for x := range 5 {
			img.SetNRGBA(x, y, c)
		}
	}
	if err := (codec.Files{}).Encode(img, path); err != nil {
		t.Fatal(err)
	}
}

func writePalette(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "palette.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type testCLI struct {
	Apply CLICmd `cmd:""`
}

func parse(t *testing.T, args ...string) (*testCLI, error) {
	t.Helper()
	var cli testCLI
	parser, err := kong.New(&cli, Vars())
	if err != nil {
		t.Fatal(err)
	}
	_, err = parser.Parse(append([]string{"apply"}, args...))
	return &cli, err
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	palPath := writePalette(t, dir, "#cc241d\n\n#458588\n")
	writeImage(t, filepath.Join(dir, "red.png"), color.NRGBA{R: 250, G: 10, B: 10, A: 255})
	writeImage(t, filepath.Join(dir, "blue.png"), color.NRGBA{R: 10, G: 100, B: 200, A: 64})
	if err := os.Mkdir(filepath.Join(dir, "out"), 0o755); err != nil {
		t.Fatal(err)
	}

	cli, err := parse(t, "--palette", palPath, "--out-dir", filepath.Join(dir, "out"), "--jobs", "2",
		filepath.Join(dir, "*.png"))
	if err != nil {
		t.Fatal(err)
	}

	rec := &report.Recorder{}
	if err := cli.Apply.Run(context.Background(), rec, slog.Default()); err != nil {
		t.Fatal(err)
	}

	cases := map[string]color.NRGBA{
		"gruvbox_red.png":  {R: 0xcc, G: 0x24, B: 0x1d, A: 255},
		"gruvbox_blue.png": {R: 0x45, G: 0x85, B: 0x88, A: 64},
	}
	for name, want := range cases {
		img, err := (codec.Files{}).Decode(filepath.Join(dir, "out", name))
		if err != nil {
			t.Fatal(err)
		}
		got := color.NRGBAModel.Convert(img.At(2, 2)).(color.NRGBA)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	events := rec.Events()
	if last := events[len(events)-1]; last.Kind != report.Summary || last.Succeeded != 2 {
		t.Errorf("unexpected summary: %+v", last)
	}
}

func TestApplyReportsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.png"), color.NRGBA{A: 255})

	cli, err := parse(t, "--palette", "white", filepath.Join(dir, "a.png"), filepath.Join(dir, "missing.png"))
	if err != nil {
		t.Fatal(err)
	}
	rec := &report.Recorder{}
	if err := cli.Apply.Run(context.Background(), rec, slog.Default()); err != nil {
		t.Errorf("partial success: error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gruvbox_a.png")); err != nil {
		t.Errorf("good image not written: %v", err)
	}
	events := rec.Events()
	if last := events[len(events)-1]; last.Succeeded != 1 || last.Failed != 1 {
		t.Errorf("unexpected summary: %+v", last)
	}

	cli, err = parse(t, filepath.Join(dir, "missing.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cli.Apply.Run(context.Background(), report.Discard, slog.Default()); err == nil {
		t.Error("no error when every image failed")
	}
}

func TestApplyDefaultPalette(t *testing.T) {
	cli, err := parse(t, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if cli.Apply.Palette != gruvbox.Default {
		t.Errorf("palette = %q, want %q", cli.Apply.Palette, gruvbox.Default)
	}
}

func TestApplyGIFStaysOnPalette(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8(x + y), A: 255})
		}
	}
	if err := (codec.Files{}).Encode(src, filepath.Join(dir, "grad.gif")); err != nil {
		t.Fatal(err)
	}

	cli, err := parse(t, "--palette", "pink", filepath.Join(dir, "grad.gif"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cli.Apply.Run(context.Background(), report.Discard, slog.Default()); err != nil {
		t.Fatal(err)
	}

	pal, err := LoadPalette("pink")
	if err != nil {
		t.Fatal(err)
	}
	inPalette := make(map[palette.Color]bool)
	for _, c := range pal.Colors() {
		inPalette[c] = true
	}

	img, err := (codec.Files{}).Decode(filepath.Join(dir, "gruvbox_grad.gif"))
	if err != nil {
		t.Fatal(err)
	}
	var off int
	for y := range 64 {
		for x := range 64 {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if !inPalette[palette.Color{R: c.R, G: c.G, B: c.B}] {
				off++
			}
		}
	}
	if off != 0 {
		t.Errorf("%d of %d pixels are not palette colors", off, 64*64)
	}
}

func TestApplyInterrupted(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.png"), color.NRGBA{A: 255})

	cli, err := parse(t, filepath.Join(dir, "a.png"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cli.Apply.Run(ctx, report.Discard, slog.Default()); !errors.Is(err, ErrInterrupted) {
		t.Errorf("error = %v, want ErrInterrupted", err)
	}
}

func TestApplyRejectsBadPalette(t *testing.T) {
	dir := t.TempDir()
	palPath := writePalette(t, dir, "FF0000\nnot-a-color\n00FF00\n")

	if _, err := parse(t, "--palette", palPath, "x.png"); err == nil {
		t.Error("bad palette: no error")
	}

	_, err := LoadPalette(palPath)
	var entryErr *palette.InvalidEntryError
	if !errors.As(err, &entryErr) || entryErr.Line != 2 {
		t.Errorf("error = %v, want invalid entry on line 2", err)
	}

	empty := writePalette(t, dir, "\n\n")
	if _, err := LoadPalette(empty); !errors.Is(err, palette.ErrEmpty) {
		t.Errorf("error = %v, want palette.ErrEmpty", err)
	}
}

func TestApplyValidation(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"--jobs", "0"},
		{"--workers", "-1"},
		{"--jpeg-quality", "101"},
		{"--out-dir", filepath.Join(dir, "nope")},
		{"--prefix", ""},
		{"--palette", "solarized"},
	} {
		if _, err := parse(t, append(args, "a.png")...); err == nil {
			t.Errorf("%q: no error", args)
		}
	}
}

func TestLoadPalette(t *testing.T) {
	dir := t.TempDir()

	builtin, err := LoadPalette("pink")
	if err != nil {
		t.Fatal(err)
	}

	riffPath := filepath.Join(dir, "pink.PAL")
	var buf bytes.Buffer
	if _, err := palette.WriteRIFF(&buf, builtin); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(riffPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	fromRIFF, err := LoadPalette(riffPath)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(builtin.Colors(), fromRIFF.Colors()); diff != "" {
		t.Errorf("RIFF palette mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadPalette(filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: error = %v", err)
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.jpg", "c.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := ExpandPaths([]string{
		filepath.Join(dir, "*.png"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "sub.png"),
		filepath.Join(dir, "missing.gif"),
		filepath.Join(dir, "*.webp"),
	})
	want := []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "c.png"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "missing.gif"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}
