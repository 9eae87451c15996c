package ui

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Toaster prints notifications to the terminal and records them in the log.
type Toaster struct {
	Out    io.Writer
	Logger *slog.Logger

	mu sync.Mutex
}

func NewToaster(out io.Writer, logger *slog.Logger) *Toaster {
	return &Toaster{Out: out, Logger: logger.With("component", "ui.Toaster")}
}

func (t *Toaster) Success(message string) {
	t.write("✓", message)
	t.Logger.Debug("notification", "kind", "success", "message", message)
}

func (t *Toaster) Error(message string) {
	t.write("✗", message)
	t.Logger.Warn("notification", "kind", "error", "message", message)
}

func (t *Toaster) write(mark, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.Out, "%s %s\n", mark, message)
}
