package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"factory/apply"
	"factory/config"
	"factory/report"
	"factory/themes"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

const (
	exitFailure     = 1
	exitInterrupted = 2
)

type cli struct {
	Config   kong.ConfigFlag `help:"YAML configuration file" placeholder:"FILE"`
	LogLevel slog.Level      `help:"Minimum level of log records (debug, info, warn, error)" default:"info" env:"FACTORY_LOG_LEVEL"`
	Output   string          `help:"Progress output: console lines, structured logs, or console when stdout is a terminal" enum:"auto,console,log" default:"auto" env:"FACTORY_OUTPUT"`

	Apply   apply.CLICmd  `cmd:"" default:"withargs" help:"Recolor images with a palette"`
	Palette themes.CLICmd `cmd:"" help:"List and export palettes"`
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newLogger(w *os.File, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func newSink(output string, stdout io.Writer, logger *slog.Logger) report.Sink {
	switch output {
	case "console":
		return report.NewConsole(stdout)
	case "log":
		return report.Log{Logger: logger}
	}

	if f, ok := stdout.(*os.File); ok && isTerminal(f) {
		return report.NewConsole(stdout)
	}
	return report.Log{Logger: logger}
}

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	var c cli
	parser, err := kong.New(&c,
		kong.Name("factory"),
		kong.Description("Recolor wallpapers and screenshots with a fixed palette."),
		apply.Vars(),
		kong.Configuration(config.YAML, "~/.config/factory/config.yaml", "factory.yaml"),
	)
	if err != nil {
		slog.Error("invalid command line definition", "error", err)
		return exitFailure
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration, see --help", "error", err)
		return exitFailure
	}

	logger := newLogger(os.Stderr, c.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(newSink(c.Output, kctx.Stdout, logger), (*report.Sink)(nil))
	kctx.Bind(logger)

	if err := kctx.Run(); err != nil {
		if errors.Is(err, apply.ErrInterrupted) {
			logger.Warn("stopped on interrupt", "error", err)
			return exitInterrupted
		}
		logger.Error(fmt.Sprintf("%s failed", kctx.Command()), "error", err)
		return exitFailure
	}
	return 0
}
