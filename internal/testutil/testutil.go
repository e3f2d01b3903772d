// Package testutil provides deterministic test doubles for pipeline runs.
package testutil

import "github.com/roach88/guac"

// Recorder is an ingredient that records every phase invoked on it, in
// order. Tests use it to assert phase sequencing and to inject failures
// at a chosen phase.
//
// Fail-fast configuration mistakes (an unknown FailPhase) surface as the
// failure simply never firing, which the asserting test will catch.
type Recorder struct {
	// Calls lists the phases seen so far, e.g. "added", "parse".
	Calls []string

	// FailPhase names a phase whose hook returns FailErr.
	FailPhase string
	FailErr   error

	// PanicPhase names a phase whose hook panics with PanicValue.
	PanicPhase string
	PanicValue any

	// Handle makes Dispatch report handled with Code.
	Handle bool
	Code   int
}

func (r *Recorder) step(phase string) error {
	r.Calls = append(r.Calls, phase)
	if phase == r.PanicPhase {
		panic(r.PanicValue)
	}
	if phase == r.FailPhase {
		return r.FailErr
	}
	return nil
}

func (r *Recorder) Added(*guac.Context) error            { return r.step(guac.PhaseAdded) }
func (r *Recorder) BuildEarlyParser(*guac.Context) error { return r.step(guac.PhaseBuildEarlyParser) }
func (r *Recorder) Preparse(*guac.Context) error         { return r.step(guac.PhasePreparse) }
func (r *Recorder) EarlyInit(*guac.Context) error        { return r.step(guac.PhaseEarlyInit) }
func (r *Recorder) BuildParser(*guac.Context) error      { return r.step(guac.PhaseBuildParser) }
func (r *Recorder) Parse(*guac.Context) error            { return r.step(guac.PhaseParse) }
func (r *Recorder) LateInit(*guac.Context) error         { return r.step(guac.PhaseLateInit) }

func (r *Recorder) Dispatch(*guac.Context) (int, bool, error) {
	if err := r.step(guac.PhaseDispatch); err != nil {
		return 0, r.Handle, err
	}
	return r.Code, r.Handle, nil
}

func (r *Recorder) DispatchSucceeded(*guac.Context) error {
	return r.step(guac.PhaseDispatchSucceeded)
}

func (r *Recorder) DispatchFailed(*guac.Context) error {
	return r.step(guac.PhaseDispatchFailed)
}

func (r *Recorder) Shutdown(*guac.Context) error { return r.step(guac.PhaseShutdown) }
