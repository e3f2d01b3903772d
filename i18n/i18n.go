// Package i18n detects the user's locale and provides a message printer.
//
// Message catalogs are golang.org/x/text catalogs: applications register
// their translations with message.SetString (or a generated catalog) and
// format user-facing text through the run's printer. The ingredient walks
// the command tree once to record the declared translation domains; the
// root command's domain becomes the run default.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/guac"
	"github.com/roach88/guac/cmdtree"
)

// Key is the context key under which the *Translator is stored.
const Key = "i18n.translator"

// Translator carries the run's locale decision.
type Translator struct {
	// Tag is the detected user locale (language.Und when undetectable).
	Tag language.Tag

	// Printer formats messages for Tag.
	Printer *message.Printer

	// Domains lists the translation domains declared across the command
	// tree, in first-seen order. The first entry, when present, is the
	// run's default domain.
	Domains []string
}

// Sprintf formats through the locale-aware printer.
func (t *Translator) Sprintf(format string, args ...any) string {
	return t.Printer.Sprintf(format, args...)
}

// DetectLocale resolves the user locale from the environment, honoring
// the conventional precedence LC_ALL > LC_MESSAGES > LANG.
func DetectLocale(getenv func(string) string) language.Tag {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		raw := getenv(name)
		if raw == "" || raw == "C" || raw == "POSIX" {
			continue
		}
		// "en_US.UTF-8" -> "en-US"
		raw, _, _ = strings.Cut(raw, ".")
		raw = strings.ReplaceAll(raw, "_", "-")
		if tag, err := language.Parse(raw); err == nil {
			return tag
		}
	}
	return language.Und
}

// FromContext returns the run's translator, falling back to an undefined
// locale so callers can format unconditionally.
func FromContext(ctx *guac.Context) *Translator {
	if v, err := ctx.Get(Key); err == nil {
		if tr, ok := v.(*Translator); ok {
			return tr
		}
	}
	return &Translator{Tag: language.Und, Printer: message.NewPrinter(language.Und)}
}

// Ingredient stores a *Translator under Key at the added phase. It must
// come after the command tree builder in a recipe to see the tree; without
// a tree it still detects the locale and records no domains.
type Ingredient struct {
	guac.Base
}

// New creates the i18n ingredient.
func New() *Ingredient {
	return &Ingredient{}
}

// Added detects the locale and collects translation domains.
func (i *Ingredient) Added(ctx *guac.Context) error {
	tag := DetectLocale(os.Getenv)
	tr := &Translator{
		Tag:     tag,
		Printer: message.NewPrinter(tag),
	}
	if tree, err := cmdtree.TreeFromContext(ctx); err == nil {
		seen := make(map[string]struct{})
		collectDomains(tree, seen, &tr.Domains)
	}
	ctx.Set(Key, tr)
	return nil
}

func collectDomains(node *cmdtree.Node, seen map[string]struct{}, out *[]string) {
	if domain := node.Command.Info().TextDomain; domain != "" {
		if _, dup := seen[domain]; !dup {
			seen[domain] = struct{}{}
			*out = append(*out, domain)
		}
	}
	for _, child := range node.Children {
		collectDomains(child, seen, out)
	}
}
