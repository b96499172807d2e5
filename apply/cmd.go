// Package apply is the command that recolors images with a palette.
package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"factory/batch"
	"factory/codec"
	"factory/gruvbox"
	"factory/match"
	"factory/palette"
	"factory/recolor"
	"factory/report"

	"github.com/alecthomas/kong"
)

// ErrInterrupted is returned when cancellation kept some images from being
// processed.
var ErrInterrupted = errors.New("interrupted")

// Vars holds the interpolation variables used by CLICmd tags.
func Vars() kong.Vars {
	return kong.Vars{
		"palette":  gruvbox.Default,
		"palettes": strings.Join(gruvbox.Names(), ", "),
	}
}

type CLICmd struct {
	Images      []string `arg:"" optional:"" help:"Images to recolor. Glob patterns are expanded." type:"path"`
	Palette     string   `short:"p" help:"Palette: built-in name (${palettes}), text file with one hex color per line, or PAL file in RIFF format" default:"${palette}" env:"FACTORY_PALETTE"`
	Prefix      string   `help:"Prefix added to the file name of each recolored image" default:"gruvbox_" env:"FACTORY_PREFIX"`
	OutDir      string   `help:"Folder for recolored images. Defaults to the folder of each source image." type:"path" env:"FACTORY_OUT_DIR"`
	Jobs        int      `short:"j" help:"Images processed at the same time" default:"1" env:"FACTORY_JOBS"`
	Workers     int      `short:"w" help:"Workers per image, 0 for one per CPU" default:"0" env:"FACTORY_WORKERS"`
	Sequential  bool     `help:"Recolor each image on a single goroutine" default:"false"`
	Metric      string   `help:"Color distance" enum:"rgb,oklab" default:"rgb" env:"FACTORY_METRIC"`
	JPEGQuality int      `name:"jpeg-quality" help:"Quality of JPEG output" default:"95"`

	pal  *palette.Palette
	jobs []batch.Job
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	switch {
	case c.Jobs < 1:
		return fmt.Errorf("invalid number of jobs: %d", c.Jobs)
	case c.Workers < 0:
		return fmt.Errorf("invalid number of workers: %d", c.Workers)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return fmt.Errorf("invalid JPEG quality: %d", c.JPEGQuality)
	}

	if c.OutDir != "" {
		if info, err := os.Stat(c.OutDir); err != nil {
			return fmt.Errorf("invalid output folder %q: %w", c.OutDir, err)
		} else if !info.IsDir() {
			return fmt.Errorf("invalid output folder %q: not a directory", c.OutDir)
		}
	}

	var err error
	if c.pal, err = LoadPalette(c.Palette); err != nil {
		return err
	}

	c.jobs, err = batch.Plan(ExpandPaths(c.Images), c.Prefix, c.OutDir)
	return err
}

func (c *CLICmd) Run(ctx context.Context, sink report.Sink, logger *slog.Logger) error {
	metric, err := match.ParseMetric(c.Metric)
	if err != nil {
		return err
	}

	logger.Info("loaded palette", "palette", c.Palette, "colors", c.pal.Len())
	runner := &batch.Runner{
		Codec:       codec.Files{JPEGQuality: c.JPEGQuality, Palette: c.pal.ColorPalette()},
		Sink:        sink,
		Logger:      logger,
		Concurrency: c.Jobs,
		Engine: recolor.Options{
			Parallel: !c.Sequential,
			Workers:  c.Workers,
			Metric:   metric,
		},
	}
	res := runner.Run(ctx, c.pal, c.jobs)

	switch {
	case res.Interrupted():
		return fmt.Errorf("%w: %d images not processed", ErrInterrupted, len(res.Skipped))
	case res.Status() == batch.StatusFailure:
		return fmt.Errorf("error processing %d of %d images", res.Failed, res.Failed+res.Succeeded)
	case res.Status() == batch.StatusPartial:
		logger.Warn("some images were not processed", "failed", res.Failed, "succeeded", res.Succeeded)
	}
	return nil
}

// ExpandPaths expands glob patterns and drops folders. Plain paths are kept
// even when they do not exist, so they are reported as failed jobs.
func ExpandPaths(args []string) []string {
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			if info, err := os.Stat(arg); err == nil && info.IsDir() {
				slog.Warn("skipping folder", "path", arg)
				continue
			}
			paths = append(paths, arg)
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			slog.Warn("skipping invalid pattern", "pattern", arg, "error", err)
			continue
		} else if len(matches) == 0 {
			slog.Warn("pattern matches no file", "pattern", arg)
			continue
		}

		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				paths = append(paths, m)
			}
		}
	}
	return paths
}
