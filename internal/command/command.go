// Package command implements the drifty subcommands against explicit
// streams so every flow is drivable from tests.
package command

import (
	"errors"
	"io"
	"log/slog"

	"github.com/corporealshift/driftwatcher/internal"
	"github.com/corporealshift/driftwatcher/internal/drift"
)

// ErrProblemsFound signals that a run discovered drifted, missing, or
// invalid entries. It is a deliberate non-zero exit for CI, not a
// failure; the CLI exits 1 without logging an error for it.
var ErrProblemsFound = errors.New("problems found")

// Env carries a command's configuration and streams.
type Env struct {
	Config *internal.Config
	Log    *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Engine builds a scan engine from the environment's configuration.
func (e *Env) Engine() *drift.Engine {
	return drift.NewEngine(
		drift.WithMarker(e.Config.Scan.RootMarker),
		drift.WithExtensions(e.Config.Scan.DocExtensions),
		drift.WithParallelism(e.Config.Scan.Parallelism),
		drift.WithLogger(e.Log),
	)
}
