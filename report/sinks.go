package report

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
)

// Log writes events as structured log records.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Report(e Event) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch e.Kind {
	case Started:
		logger.Info("recoloring", "file", e.Path)
	case Succeeded:
		logger.Info("recolored", "file", e.Path, "dest", e.Destination)
	case Failed:
		logger.Error("could not recolor image", "file", e.Path, "kind", e.Failure, "error", e.Reason)
	case Summary:
		logger.Info("stats", "processed", e.Succeeded, "errors", e.Failed, "skipped", e.Skipped,
			"total", e.Succeeded+e.Failed+e.Skipped)
	}
}

// Console writes one human readable line per event.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Report(e Event) {
	var line string
	switch e.Kind {
	case Started:
		line = fmt.Sprintf("🔨 manufacturing '%s' -> %s", filepath.Base(e.Path), e.Destination)
	case Succeeded:
		line = fmt.Sprintf("✅ Done! (saved to '%s')", e.Destination)
	case Failed:
		line = fmt.Sprintf("❌ Skipping %s (%s: %v)", e.Path, e.Failure, e.Reason)
	case Summary:
		line = summaryLine(e)
	default:
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.w, line)
}

func summaryLine(e Event) string {
	var line string
	switch {
	case e.Succeeded == 0 && e.Failed == 0:
		line = "🤷 No images to process."
	case e.Failed == 0:
		line = "🎉 All images processed successfully!"
	case e.Succeeded > 0:
		line = fmt.Sprintf("🎉 Some images processed successfully! (%d done, %d failed)", e.Succeeded, e.Failed)
	default:
		line = "❌ No images processed successfully."
	}

	if e.Skipped > 0 {
		line += fmt.Sprintf(" Interrupted, %d not started.", e.Skipped)
	}
	return line
}
