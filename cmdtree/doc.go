// Package cmdtree arranges commands into a tree and dispatches them.
//
// Commands are declared with an explicit Info struct (display name,
// sub-command factories, feature flags) rather than discovered through
// reflection. The Builder ingredient instantiates the declared tree once
// per run, and the Dispatcher ingredient walks the chain of commands the
// argument adapter selected, classifying each handler result as exactly
// one of three outcomes:
//
//   - Continue: nothing happened, advance to the next command in the chain
//     (the last command continuing means implicit success, code 0)
//   - Code: a terminal value; traversal stops and the value propagates up
//     through any open resource scopes
//   - OpenScope: the handler performed setup and handed back a teardown
//     function; the rest of the chain runs with the resource open and the
//     teardown runs exactly once afterwards, no matter how the inner
//     traversal ended
//
// DETERMINISM:
// Sub-commands are instantiated and dispatched in declaration order.
// Sibling names must be unique; a collision is a build-time
// *guac.ConfigError, never a dispatch-time surprise.
package cmdtree
