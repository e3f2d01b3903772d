// Package crash reports unhandled faults captured by the bowl.
//
// The reporter runs at the dispatch-failed phase, after the bowl has
// stored the fault's classification, payload and stack under the reserved
// crash keys. It prints a styled report to stderr; with the crash:save
// spice it also persists the report under the application's cache
// directory so a bug report can reference it later.
package crash

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/guac"
	"github.com/roach88/guac/ansi"
	"github.com/roach88/guac/cmdtree"
	"github.com/roach88/guac/xdg"
)

// SpiceSave asks the reporter to persist crash reports under
// $XDG_CACHE_HOME/<app-id>/crashes/. Requires the xdg ingredient and a
// root command with an AppID.
const SpiceSave = "crash:save"

// Reporter is the verbose crash handler ingredient.
//
// Context keys read: the guac.KeyCrash* family, ansi.Key, xdg.Key.
type Reporter struct {
	guac.Base

	// Stderr defaults to os.Stderr; tests override.
	Stderr io.Writer
}

// New creates the crash reporter.
func New() *Reporter {
	return &Reporter{Stderr: os.Stderr}
}

// DispatchFailed prints the crash report. It never fails itself: a broken
// reporter must not mask the original fault.
func (r *Reporter) DispatchFailed(ctx *guac.Context) error {
	report := Render(ctx)
	pal := ansi.FromContext(ctx)

	fmt.Fprintf(r.Stderr, "%s %s\n", pal.Error("error:"), crashMessage(ctx))
	fmt.Fprintln(r.Stderr, pal.Muted(report))

	if ctx.Bowl().HasSpice(SpiceSave) {
		if path := r.save(ctx, report); path != "" {
			fmt.Fprintf(r.Stderr, "crash report saved to %s\n", path)
		}
	}
	return nil
}

// Render formats the full crash report from the reserved context keys.
func Render(ctx *guac.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "crash %s in phase %q\n", stringKey(ctx, guac.KeyCrashID), stringKey(ctx, guac.KeyCrashPhase))
	if err := crashError(ctx); err != nil {
		fmt.Fprintf(&b, "classification: %T\n", err)
		fmt.Fprintf(&b, "payload: %v\n", err)
	}
	if stack := stringKey(ctx, guac.KeyCrashStack); stack != "" {
		fmt.Fprintf(&b, "stack:\n%s", stack)
	}
	return b.String()
}

// save writes the report under the cache directory, best effort.
func (r *Reporter) save(ctx *guac.Context, report string) string {
	dirs, ok := xdg.FromContext(ctx)
	if !ok {
		return ""
	}
	tree, err := cmdtree.TreeFromContext(ctx)
	if err != nil {
		return ""
	}
	id := stringKey(ctx, guac.KeyCrashID)
	path := dirs.CachePath(tree.Command.Info().AppID, "crashes", id+".txt")
	if path == "" || id == "" {
		return ""
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		slog.Warn("crash: cannot create report directory", "error", err)
		return ""
	}
	if err := os.WriteFile(path, []byte(report), 0o600); err != nil {
		slog.Warn("crash: cannot write report", "error", err)
		return ""
	}
	return path
}

func crashError(ctx *guac.Context) error {
	if v, err := ctx.Get(guac.KeyCrashError); err == nil {
		if cerr, ok := v.(error); ok {
			return cerr
		}
	}
	return nil
}

func crashMessage(ctx *guac.Context) string {
	if err := crashError(ctx); err != nil {
		return err.Error()
	}
	return "unknown failure"
}

func stringKey(ctx *guac.Context, key string) string {
	if v, err := ctx.Get(key); err == nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
