package cmdtree

import "github.com/roach88/guac"

// ExitFunc is the teardown half of a resource scope. It is called exactly
// once after the inner chain finished, with the error the inner chain
// raised (nil if it completed or returned a code). Returning a non-nil
// error propagates it further (transforming is allowed); returning nil
// while inner is non-nil suppresses the failure.
type ExitFunc func(ctx *guac.Context, inner error) error

type outcomeKind int

const (
	kindContinue outcomeKind = iota
	kindCode
	kindScope
)

// Outcome is the closed classification of a handler result. The zero
// value is Continue.
type Outcome struct {
	kind outcomeKind
	code int
	exit ExitFunc
}

// Continue signals that nothing terminal happened: the dispatcher advances
// to the next command in the chain, or finishes with code 0 at the end.
func Continue() Outcome {
	return Outcome{kind: kindContinue}
}

// Code signals a terminal value: traversal stops immediately and code
// becomes the chain's result, propagated up through open scopes.
func Code(code int) Outcome {
	return Outcome{kind: kindCode, code: code}
}

// OpenScope signals that the handler performed resource setup and yields
// control back to the dispatcher. The inner chain runs with the resource
// open; exit then runs unconditionally, exactly once.
func OpenScope(exit ExitFunc) Outcome {
	return Outcome{kind: kindScope, exit: exit}
}
