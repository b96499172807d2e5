// Package themes is the command that lists and exports palettes.
package themes

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"factory/apply"
	"factory/gruvbox"
	"factory/palette"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	List struct{} `cmd:"" help:"List built-in palettes with their colors"`

	Export struct {
		Palette string `arg:"" help:"Built-in palette name, text palette or PAL file"`
		Output  string `arg:"" help:"Destination file. A .pal extension writes RIFF, anything else one hex color per line." type:"path"`
		Force   bool   `help:"Overwrite an existing destination" default:"false"`
	} `cmd:"" help:"Write a palette to a file"`
}

func (c *CLICmd) Run(kctx *kong.Context) error {
	switch kctx.Selected().Name {
	case "list":
		return list(kctx.Stdout)
	case "export":
		return c.export()
	}
	return fmt.Errorf("unsupported operation: %s", kctx.Selected().Name)
}

func list(w io.Writer) error {
	for _, name := range gruvbox.Names() {
		pal, err := apply.LoadPalette(name)
		if err != nil {
			return err
		}
		if _, err = fmt.Fprintf(w, "%-6s %2d %s\n", name, pal.Len(), pal); err != nil {
			return fmt.Errorf("could not list palettes: %w", err)
		}
	}
	return nil
}

func (c *CLICmd) export() (err error) {
	pal, err := apply.LoadPalette(c.Export.Palette)
	if err != nil {
		return err
	}

	dest := c.Export.Output
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !c.Export.Force {
		flags |= os.O_EXCL
	}
	outFile, err := os.OpenFile(dest, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("destination file already exists: %q", dest)
		}
		return fmt.Errorf("could not open destination file %q: %w", dest, err)
	}
	defer func() {
		if closeErr := outFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close destination file %q: %w", dest, closeErr)
		}
	}()

	var n int64
	if strings.EqualFold(filepath.Ext(dest), ".pal") {
		n, err = palette.WriteRIFF(outFile, pal)
	} else {
		n, err = pal.WriteText(outFile)
	}
	if err != nil {
		return err
	}

	slog.Info("exported palette", "palette", c.Export.Palette, "colors", pal.Len(), "dest", dest, "bytes", n)
	return nil
}
