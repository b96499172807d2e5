// Package gruvbox ships the built-in palettes as raw text.
package gruvbox

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed palettes/*.txt
var files embed.FS

const (
	filePrefix = "gruvbox-"
	fileSuffix = ".txt"
)

// Default is the palette used when none is chosen.
const Default = "pink"

// Names returns the built-in palette names, sorted.
func Names() []string {
	entries, err := fs.ReadDir(files, "palettes")
	if err != nil {
		panic(err)
	}

	var names []string
	for _, e := range entries {
		name, ok := strings.CutPrefix(e.Name(), filePrefix)
		if !ok {
			continue
		}
		if name, ok = strings.CutSuffix(name, fileSuffix); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Lines returns the raw lines of a built-in palette.
func Lines(name string) ([]string, error) {
	data, err := files.ReadFile("palettes/" + filePrefix + name + fileSuffix)
	if err != nil {
		return nil, fmt.Errorf("unknown palette %q, should be one of %s", name, strings.Join(Names(), ", "))
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n"), nil
}
