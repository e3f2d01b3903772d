package guac

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sort"

	"github.com/google/uuid"
)

// Phase names, used for crash classification and debug logging.
const (
	PhaseAdded             = "added"
	PhaseBuildEarlyParser  = "build-early-parser"
	PhasePreparse          = "preparse"
	PhaseEarlyInit         = "early-init"
	PhaseBuildParser       = "build-parser"
	PhaseParse             = "parse"
	PhaseLateInit          = "late-init"
	PhaseDispatch          = "dispatch"
	PhaseDispatchSucceeded = "dispatch-succeeded"
	PhaseDispatchFailed    = "dispatch-failed"
	PhaseShutdown          = "shutdown"
)

// Bowl drives an ordered list of ingredients through the pipeline phases
// against one shared Context.
//
// The ingredient list is fixed at construction and must be treated as
// frozen for the duration of the run. Each Bowl is single-use.
type Bowl struct {
	ingredients []Ingredient
	ctx         *Context
	spices      map[string]struct{}
	eaten       bool
}

// NewBowl prepares a bowl out of the given ingredients. Order matters:
// it determines the phase execution order.
func NewBowl(ingredients ...Ingredient) *Bowl {
	b := &Bowl{
		ingredients: ingredients,
		spices:      make(map[string]struct{}),
	}
	b.ctx = newContext(b)
	return b
}

// Context returns the shared context for this run.
func (b *Bowl) Context() *Context {
	return b.ctx
}

// AddSpice registers a feature flag for this run. Spices are plain strings
// that switch optional ingredient behavior on; ingredients document the
// spices they understand. A flag scoped to one ingredient uses the
// "name:flag" form.
func (b *Bowl) AddSpice(spice string) {
	b.spices[spice] = struct{}{}
}

// HasSpice reports whether a feature flag was requested for this run.
func (b *Bowl) HasSpice(spice string) bool {
	_, ok := b.spices[spice]
	return ok
}

// Spices returns all registered feature flags in sorted order.
func (b *Bowl) Spices() []string {
	out := make([]string, 0, len(b.spices))
	for s := range b.spices {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// setupPhase pairs a phase name with its hook for the ordered setup run.
type setupPhase struct {
	name string
	hook func(Ingredient, *Context) error
}

var setupPhases = []setupPhase{
	{PhaseAdded, Ingredient.Added},
	{PhaseBuildEarlyParser, Ingredient.BuildEarlyParser},
	{PhasePreparse, Ingredient.Preparse},
	{PhaseEarlyInit, Ingredient.EarlyInit},
	{PhaseBuildParser, Ingredient.BuildParser},
	{PhaseParse, Ingredient.Parse},
	{PhaseLateInit, Ingredient.LateInit},
}

// Eat runs the whole pipeline against argv and returns the process exit
// code. A nil argv means os.Args[1:].
//
// Eat never lets a fault escape: errors and panics from any hook are
// captured under the reserved crash keys, the DispatchFailed phase runs,
// and a non-zero code is returned. An *ExitError from any phase is a clean
// short-circuit that still runs the Shutdown phase.
func (b *Bowl) Eat(argv []string) int {
	if b.eaten {
		panic("guac: a Bowl is single-use; make a new one")
	}
	b.eaten = true
	if argv == nil {
		argv = os.Args[1:]
	}
	b.ctx.Set(KeyArgv, argv)

	for _, phase := range setupPhases {
		if err := b.runAll(phase.name, phase.hook); err != nil {
			if exit, ok := AsExit(err); ok {
				b.shutdown()
				return exit.Code
			}
			return b.crash(phase.name, err)
		}
	}

	code, err := b.runDispatch()
	if err != nil {
		return b.crash(PhaseDispatch, err)
	}
	if err := b.runAll(PhaseDispatchSucceeded, Ingredient.DispatchSucceeded); err != nil {
		if exit, ok := AsExit(err); ok {
			b.shutdown()
			return exit.Code
		}
		return b.crash(PhaseDispatchSucceeded, err)
	}
	b.shutdown()
	return code
}

// runAll invokes one hook on every ingredient in order, stopping at the
// first error. Panics are converted to *PanicError.
func (b *Bowl) runAll(phase string, hook func(Ingredient, *Context) error) error {
	for _, ing := range b.ingredients {
		if err := safeCall(func() error { return hook(ing, b.ctx) }); err != nil {
			slog.Debug("guac: phase stopped", "phase", phase, "ingredient", fmt.Sprintf("%T", ing), "error", err)
			return err
		}
	}
	return nil
}

// runDispatch invokes the Dispatch hook on ingredients in order until one
// handles it. No handler at all is implicit success. An *ExitError raised
// during dispatch is the moral equivalent of a terminal value and resolves
// to its code.
func (b *Bowl) runDispatch() (int, error) {
	for _, ing := range b.ingredients {
		var (
			code    int
			handled bool
		)
		err := safeCall(func() error {
			var err error
			code, handled, err = ing.Dispatch(b.ctx)
			return err
		})
		if err != nil {
			if exit, ok := AsExit(err); ok {
				return exit.Code, nil
			}
			return 0, err
		}
		if handled {
			return code, nil
		}
	}
	return ExitSuccess, nil
}

// crash records the failure in the context, runs the crash-reporting phase
// and the shutdown phase, and resolves the final exit code. The crash
// phase itself is best effort: a broken reporter must not mask the
// original fault.
func (b *Bowl) crash(phase string, err error) int {
	b.ctx.Set(KeyCrashID, uuid.NewString())
	b.ctx.Set(KeyCrashPhase, phase)
	b.ctx.Set(KeyCrashError, err)
	b.ctx.Set(KeyCrashStack, crashStack(err))

	for _, ing := range b.ingredients {
		if ferr := safeCall(func() error { return ing.DispatchFailed(b.ctx) }); ferr != nil {
			slog.Error("guac: crash reporter failed", "ingredient", fmt.Sprintf("%T", ing), "error", ferr)
		}
	}
	b.shutdown()
	return ExitCode(err)
}

// shutdown runs the Shutdown hook on every ingredient, best effort.
func (b *Bowl) shutdown() {
	for _, ing := range b.ingredients {
		if err := safeCall(func() error { return ing.Shutdown(b.ctx) }); err != nil {
			slog.Error("guac: shutdown failed", "ingredient", fmt.Sprintf("%T", ing), "error", err)
		}
	}
}

// crashStack prefers the stack captured at the panic site; for plain
// errors the current stack still points at the failing phase.
func crashStack(err error) string {
	if pe, ok := asPanic(err); ok {
		return string(pe.Stack)
	}
	return string(debug.Stack())
}

func asPanic(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// safeCall runs fn, converting a panic into a *PanicError carrying the
// stack of the panicking goroutine.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
