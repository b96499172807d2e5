package apply

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"factory/gruvbox"
	"factory/palette"
)

// LoadPalette resolves a palette by built-in name, or else by file path. A
// .pal file is read as RIFF, anything else as text.
func LoadPalette(name string) (*palette.Palette, error) {
	if slices.Contains(gruvbox.Names(), name) {
		lines, err := gruvbox.Lines(name)
		if err != nil {
			return nil, err
		}
		pal, err := palette.Load(lines)
		if err != nil {
			return nil, fmt.Errorf("could not load built-in palette %q: %w", name, err)
		}
		return pal, nil
	}

	palFile, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("palette %q is neither built in (%s) nor a readable file: %w",
			name, strings.Join(gruvbox.Names(), ", "), err)
	}
	defer func() {
		if closeErr := palFile.Close(); closeErr != nil {
			slog.Error("could not close palette file", "file", name, "error", closeErr)
		}
	}()

	var pal *palette.Palette
	if strings.EqualFold(filepath.Ext(name), ".pal") {
		pal, err = palette.ReadRIFF(palFile)
	} else {
		pal, err = palette.Read(palFile)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load palette file %q: %w", name, err)
	}
	return pal, nil
}
