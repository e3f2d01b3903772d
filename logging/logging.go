// Package logging configures the run's logger.
//
// The ingredient builds a charmbracelet/log logger writing to stderr and
// installs it as the log/slog default handler, so framework internals
// logging through slog and application code logging through the context
// logger end up in the same sink.
package logging

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/roach88/guac"
	"github.com/roach88/guac/cmdtree"
)

// Key is the context key under which the *charmlog.Logger is stored.
const Key = "logging.logger"

// SpiceDebug lowers the log level to debug for the run.
const SpiceDebug = "log:debug"

// Ingredient configures logging at the early-init phase, after the
// command tree builder has registered the root command's spices.
//
// Context keys written: Key.
type Ingredient struct {
	guac.Base

	// Output defaults to os.Stderr; tests override.
	Output io.Writer
}

// New creates the logging ingredient.
func New() *Ingredient {
	return &Ingredient{Output: os.Stderr}
}

// EarlyInit builds the logger and installs it as the slog default.
func (i *Ingredient) EarlyInit(ctx *guac.Context) error {
	level := charmlog.InfoLevel
	if ctx.Bowl().HasSpice(SpiceDebug) {
		level = charmlog.DebugLevel
	}
	logger := charmlog.NewWithOptions(i.Output, charmlog.Options{
		Level:           level,
		ReportTimestamp: false,
		Prefix:          rootName(ctx),
	})
	ctx.Set(Key, logger)
	slog.SetDefault(slog.New(logger))
	return nil
}

// FromContext returns the run's logger, falling back to the charm default
// logger so callers never receive nil.
func FromContext(ctx *guac.Context) *charmlog.Logger {
	if v, err := ctx.Get(Key); err == nil {
		if logger, ok := v.(*charmlog.Logger); ok {
			return logger
		}
	}
	return charmlog.Default()
}

// rootName pulls the root command's display name for the log prefix.
// A recipe without a command tree simply has no prefix.
func rootName(ctx *guac.Context) string {
	tree, err := cmdtree.TreeFromContext(ctx)
	if err != nil {
		return ""
	}
	return tree.Command.Info().Name
}
