package guac

// Ingredient is a pluggable unit of behavior driven by a Bowl.
//
// Every hook receives the shared Context. Hooks run in recipe order within
// each phase; an error from any hook stops the run and is routed through
// the Bowl's failure boundary (an *ExitError is treated as a clean
// short-circuit instead).
//
// Most ingredients care about one or two phases. Embed Base to inherit
// no-op implementations for the rest.
type Ingredient interface {
	// Added is called once per ingredient before anything else. This is
	// where an ingredient advertises itself to collaborators by writing
	// initial values into the context.
	Added(ctx *Context) error

	// BuildEarlyParser contributes to the pre-parse argument grammar,
	// which knows nothing about the command tree.
	BuildEarlyParser(ctx *Context) error

	// Preparse peeks at the command line ahead of full parsing so later
	// phases can limit their work.
	Preparse(ctx *Context) error

	// EarlyInit runs additional initialization after pre-parsing.
	EarlyInit(ctx *Context) error

	// BuildParser contributes to the full, tree-aware argument grammar.
	BuildParser(ctx *Context) error

	// Parse interprets the complete command line. After this phase the
	// application is ready for execution.
	Parse(ctx *Context) error

	// LateInit mirrors EarlyInit but runs with parsed arguments available.
	LateInit(ctx *Context) error

	// Dispatch performs the user-facing work. The first ingredient that
	// returns handled=true stops the phase and its code becomes the run's
	// result. Exactly one ingredient in a recipe is expected to handle
	// dispatch; all others report handled=false.
	Dispatch(ctx *Context) (code int, handled bool, err error)

	// DispatchSucceeded runs on every ingredient when dispatch completed
	// without a fault.
	DispatchSucceeded(ctx *Context) error

	// DispatchFailed runs on every ingredient after the Bowl captured a
	// crash. Implementations read the reserved crash keys to report or
	// persist diagnostics.
	DispatchFailed(ctx *Context) error

	// Shutdown is the last hook called on all ingredients, regardless of
	// how the run ended.
	Shutdown(ctx *Context) error
}

// Base provides no-op implementations of every Ingredient hook.
type Base struct{}

func (Base) Added(*Context) error            { return nil }
func (Base) BuildEarlyParser(*Context) error { return nil }
func (Base) Preparse(*Context) error         { return nil }
func (Base) EarlyInit(*Context) error        { return nil }
func (Base) BuildParser(*Context) error      { return nil }
func (Base) Parse(*Context) error            { return nil }
func (Base) LateInit(*Context) error         { return nil }
func (Base) Dispatch(*Context) (int, bool, error) {
	return 0, false, nil
}
func (Base) DispatchSucceeded(*Context) error { return nil }
func (Base) DispatchFailed(*Context) error    { return nil }
func (Base) Shutdown(*Context) error          { return nil }
