package cmdtree

import (
	"log/slog"
	"runtime/debug"

	"github.com/roach88/guac"
)

// Dispatcher is the ingredient that walks the dispatch chain at the
// dispatch phase. It is the only ingredient in a stock recipe that handles
// dispatch.
//
// Context keys read: KeyChain.
type Dispatcher struct {
	guac.Base
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch resolves the chain from the context and drives the state
// machine. A missing or empty chain is a programming-contract violation,
// not a user error.
//
// An *guac.ExitError raised anywhere in the chain is equivalent to a
// terminal value of its code: it unwinds every open scope as a failure and
// is converted to a code here, at the chain root.
func (d *Dispatcher) Dispatch(ctx *guac.Context) (int, bool, error) {
	v, err := ctx.Get(KeyChain)
	if err != nil {
		return 0, true, guac.Configf("dispatch chain missing; is the parser ingredient in the recipe? (%v)", err)
	}
	chain, ok := v.([]Command)
	if !ok {
		return 0, true, guac.Configf("context key %q holds %T, want []cmdtree.Command", KeyChain, v)
	}
	if len(chain) == 0 {
		return 0, true, guac.Configf("dispatch chain is empty; it must contain at least the root command")
	}
	code, err := d.invoke(ctx, chain, 0)
	if err != nil {
		if exit, ok := guac.AsExit(err); ok {
			return exit.Code, true, nil
		}
		return 0, true, err
	}
	return code, true, nil
}

// invoke runs the chain entry at index i and applies the transition rule
// for its outcome. Handler panics are converted to errors so that outer
// scopes still observe them during unwinding.
func (d *Dispatcher) invoke(ctx *guac.Context, chain []Command, i int) (int, error) {
	out, err := invokeCommand(ctx, chain[i])
	if err != nil {
		return 0, err
	}
	switch out.kind {
	case kindCode:
		return out.code, nil
	case kindScope:
		if out.exit == nil {
			return 0, guac.Configf("%T opened a resource scope with a nil teardown", chain[i])
		}
		var (
			code  int
			inner error
		)
		if i+1 < len(chain) {
			code, inner = d.invoke(ctx, chain, i+1)
		}
		// Teardown runs exactly once, whether the inner chain completed,
		// returned a code, or failed. It may transform or suppress a
		// failure; it never alters a code.
		if terr := runExit(ctx, out.exit, inner); terr != nil {
			return 0, terr
		}
		return code, nil
	default: // Continue
		if i+1 < len(chain) {
			return d.invoke(ctx, chain, i+1)
		}
		return guac.ExitSuccess, nil
	}
}

// invokeCommand calls the command's handler. Commands without one behave
// as Continue; a leaf without a handler is almost certainly a mistake and
// gets a warning.
func invokeCommand(ctx *guac.Context, cmd Command) (out Outcome, err error) {
	inv, ok := cmd.(Invoker)
	if !ok {
		if len(cmd.Info().SubCommands) == 0 {
			slog.Warn("cmdtree: command has no handler", "command", describe(cmd))
		}
		return Continue(), nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &guac.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return inv.Invoked(ctx)
}

// runExit calls a scope teardown, converting a panic into an error so the
// remaining outer scopes still unwind.
func runExit(ctx *guac.Context, exit ExitFunc, inner error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &guac.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return exit(ctx, inner)
}

func describe(cmd Command) string {
	if name := cmd.Info().Name; name != "" {
		return name
	}
	if name, err := DeriveName(cmd); err == nil {
		return name
	}
	return "?"
}
