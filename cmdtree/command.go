package cmdtree

import (
	"reflect"
	"strings"

	"github.com/roach88/guac"
)

// Command is a single unit of the command tree. The only required method
// is Info; commands that actually do work also implement Invoker, and
// commands with their own flags implement
// RegisterArguments(*pflag.FlagSet), which the parser ingredient picks up.
type Command interface {
	// Info returns the command's static declaration. It is consulted at
	// tree-build time and must be cheap and side-effect free.
	Info() Info
}

// Invoker is implemented by commands that handle their own invocation.
// A command without it simply passes control to the selected sub-command.
type Invoker interface {
	// Invoked is called when the command is part of the dispatch chain.
	// The returned Outcome steers the dispatcher; a returned error is a
	// handler fault that propagates through open scopes to the runner.
	Invoked(ctx *guac.Context) (Outcome, error)
}

// Info is a command's static configuration, supplied at registration time.
type Info struct {
	// Name is the command's display name. Empty means: derive one from
	// the implementing type (see DeriveName). Ignored for the tree root,
	// which never has a name.
	Name string

	// Help is the single-line description shown in sub-command listings.
	Help string

	// Description is the multi-line text shown after the usage line.
	Description string

	// Epilog is shown after the argument descriptions.
	Epilog string

	// Usage overrides the computed usage line.
	Usage string

	// Version enables --version on the root command when non-empty.
	Version string

	// AppID identifies the application for per-user directories, in
	// REVERSE-DNS:NAME form (e.g. "com.example.product:tool"). Leaving it
	// empty disables configuration and crash-persistence services.
	AppID string

	// TextDomain is the translation domain for this command's help text.
	TextDomain string

	// Spices lists the feature flags this command requests. Only the root
	// command's spices are collected, once per run.
	Spices []string

	// SubCommands declares the children of this command, in the order
	// they are built and listed.
	SubCommands []SubCommand
}

// SubCommand declares one child: an optional name override and a factory.
// The factory is invoked exactly once per tree node, so a command type
// declared twice yields two independent instances.
type SubCommand struct {
	Name string
	New  func() Command
}

// Sub declares a child with a name override.
func Sub(name string, factory func() Command) SubCommand {
	return SubCommand{Name: name, New: factory}
}

// DeriveName computes the default name for a command from its implementing
// type: the bare type name, lower-cased, with a trailing "Cmd" or
// "Command" stripped. The transformation is deterministic so sibling
// collisions surface at build time.
func DeriveName(cmd Command) (string, error) {
	t := reflect.TypeOf(cmd)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "", guac.Configf("cannot derive a name for %T; declare Info.Name", cmd)
	}
	name := t.Name()
	if s := strings.TrimSuffix(name, "Command"); s != "" && s != name {
		name = s
	} else if s := strings.TrimSuffix(name, "Cmd"); s != "" && s != name {
		name = s
	}
	return strings.ToLower(name), nil
}
