// Package ansi provides the color palette ingredient.
//
// The palette wraps a small set of lipgloss styles behind an enabled flag
// so callers never need to branch on terminal capabilities themselves:
// rendering through a disabled palette returns the input unchanged.
package ansi

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/roach88/guac"
)

// Key is the context key under which the *Palette is stored.
const Key = "ansi.palette"

// Spices understood by the Ingredient.
const (
	SpiceEnable  = "ansi:enable"  // force color on
	SpiceDisable = "ansi:disable" // force color off
)

// Shared hex colors, chosen for dark terminal backgrounds.
const (
	colorPrimary = lipgloss.Color("#7C3AED") // purple: titles and headers
	colorMuted   = lipgloss.Color("#6B7280") // gray: secondary text
	colorSuccess = lipgloss.Color("#10B981") // green: positive outcomes
	colorError   = lipgloss.Color("#EF4444") // red: failures
)

// Palette renders text through a fixed set of styles. When disabled every
// renderer is the identity function, which keeps output deterministic for
// pipes and tests.
type Palette struct {
	enabled bool

	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	errs    lipgloss.Style
}

// NewPalette creates a palette. Pass enabled=false for plain output.
func NewPalette(enabled bool) *Palette {
	return &Palette{
		enabled: enabled,
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		success: lipgloss.NewStyle().Foreground(colorSuccess),
		errs:    lipgloss.NewStyle().Bold(true).Foreground(colorError),
	}
}

// Enabled reports whether styling is active.
func (p *Palette) Enabled() bool { return p.enabled }

func (p *Palette) render(s lipgloss.Style, text string) string {
	if !p.enabled {
		return text
	}
	return s.Render(text)
}

// Title styles a section header.
func (p *Palette) Title(text string) string { return p.render(p.title, text) }

// Muted styles secondary text.
func (p *Palette) Muted(text string) string { return p.render(p.muted, text) }

// Success styles a positive outcome.
func (p *Palette) Success(text string) string { return p.render(p.success, text) }

// Error styles a failure.
func (p *Palette) Error(text string) string { return p.render(p.errs, text) }

// FromContext returns the palette placed by the Ingredient, falling back
// to a disabled palette so callers can style unconditionally.
func FromContext(ctx *guac.Context) *Palette {
	if v, err := ctx.Get(Key); err == nil {
		if pal, ok := v.(*Palette); ok {
			return pal
		}
	}
	return NewPalette(false)
}

// Ingredient decides whether output should be colored and stores a
// *Palette under Key.
//
// Color is on when stdout is a terminal and NO_COLOR is unset. The
// decision can be forced either way with the ansi:enable / ansi:disable
// spices. The decision happens at the early-init phase, after the command
// tree builder has registered the root command's spices.
type Ingredient struct {
	guac.Base
}

// New creates the ansi ingredient.
func New() *Ingredient {
	return &Ingredient{}
}

// EarlyInit probes the environment and stores the palette.
func (i *Ingredient) EarlyInit(ctx *guac.Context) error {
	bowl := ctx.Bowl()
	enabled := stdoutIsTerminal() && os.Getenv("NO_COLOR") == ""
	if bowl.HasSpice(SpiceEnable) {
		enabled = true
	}
	if bowl.HasSpice(SpiceDisable) {
		enabled = false
	}
	ctx.Set(Key, NewPalette(enabled))
	return nil
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
