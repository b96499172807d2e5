// Package config reads flag defaults from YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader. Flags are looked up by name under a
// section per subcommand first, then at the top level:
//
//	palette: white
//	apply:
//	  jobs: 4
//	  out-dir: themed
//
// Dashes and underscores in flag names are interchangeable.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not read YAML configuration: %w", err)
	}

	var f kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if section, ok := sectionOf(values, commandPath(parent)); ok {
			if v, ok := lookup(section, flag.Name); ok {
				return v, nil
			}
		}
		if v, ok := lookup(values, flag.Name); ok {
			return v, nil
		}
		return nil, nil
	}
	return f, nil
}

func sectionOf(values map[string]any, path []string) (map[string]any, bool) {
	if len(path) == 0 {
		return nil, false
	}

	section := values
	for _, cmd := range path {
		raw, ok := find(section, cmd)
		if !ok {
			return nil, false
		}
		if section, ok = raw.(map[string]any); !ok {
			return nil, false
		}
	}
	return section, true
}

// lookup finds a flag value, skipping subcommand sections.
func lookup(values map[string]any, name string) (any, bool) {
	v, ok := find(values, name)
	if !ok {
		return nil, false
	}
	if _, nested := v.(map[string]any); nested {
		return nil, false
	}
	return v, true
}

func find(values map[string]any, name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if v, ok := values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// commandPath returns the command names from the root down to parent.
func commandPath(parent *kong.Path) []string {
	if parent == nil {
		return nil
	}

	var names []string
	for node := parent.Node(); node != nil && node.Type != kong.ApplicationNode; node = node.Parent {
		names = append([]string{node.Name}, names...)
	}
	return names
}
