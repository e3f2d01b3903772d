// Package terminal probes terminal capabilities for one run.
//
// The probe is deliberately shallow: TTY-ness of the three standard
// streams plus what the environment volunteers. Anything deeper (cursor
// queries, color-space math) is out of scope for the core pipeline.
package terminal

import (
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"github.com/roach88/guac"
)

// Key is the context key under which the Info is stored.
const Key = "terminal.info"

// Info describes the terminal attached to this run. Zero values mean
// "unknown".
type Info struct {
	StdinTTY  bool
	StdoutTTY bool
	StderrTTY bool
	Term      string // $TERM, e.g. "xterm-256color"
	Columns   int    // $COLUMNS, 0 when unset
	Lines     int    // $LINES, 0 when unset
}

// Interactive reports whether both stdin and stdout are terminals.
func (i Info) Interactive() bool {
	return i.StdinTTY && i.StdoutTTY
}

// Probe inspects the process streams and environment.
func Probe() Info {
	return Info{
		StdinTTY:  isTTY(os.Stdin.Fd()),
		StdoutTTY: isTTY(os.Stdout.Fd()),
		StderrTTY: isTTY(os.Stderr.Fd()),
		Term:      os.Getenv("TERM"),
		Columns:   envInt("COLUMNS"),
		Lines:     envInt("LINES"),
	}
}

func isTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func envInt(name string) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FromContext returns the probed Info, or ok=false when the ingredient is
// not in the recipe.
func FromContext(ctx *guac.Context) (Info, bool) {
	if v, err := ctx.Get(Key); err == nil {
		if info, ok := v.(Info); ok {
			return info, true
		}
	}
	return Info{}, false
}

// Ingredient stores the probe result under Key at the early-init phase.
type Ingredient struct {
	guac.Base
}

// New creates the terminal ingredient.
func New() *Ingredient {
	return &Ingredient{}
}

// EarlyInit probes the terminal once per run.
func (i *Ingredient) EarlyInit(ctx *guac.Context) error {
	ctx.Set(Key, Probe())
	return nil
}
