package cmdtree_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/guac"
	"github.com/roach88/guac/cmdtree"
)

// scripted is a command whose handler is supplied by the test.
type scripted struct {
	name    string
	invoked func(ctx *guac.Context) (cmdtree.Outcome, error)
}

func (s *scripted) Info() cmdtree.Info { return cmdtree.Info{Name: s.name} }

func (s *scripted) Invoked(ctx *guac.Context) (cmdtree.Outcome, error) {
	return s.invoked(ctx)
}

// group has no handler at all.
type group struct{ subs []cmdtree.SubCommand }

func (g *group) Info() cmdtree.Info {
	return cmdtree.Info{Name: "group", SubCommands: g.subs}
}

func dispatch(t *testing.T, chain ...cmdtree.Command) (int, error) {
	t.Helper()
	ctx := guac.NewBowl().Context()
	ctx.Set(cmdtree.KeyChain, chain)
	code, handled, err := cmdtree.NewDispatcher().Dispatch(ctx)
	assert.True(t, handled)
	return code, err
}

func outcome(out cmdtree.Outcome) func(*guac.Context) (cmdtree.Outcome, error) {
	return func(*guac.Context) (cmdtree.Outcome, error) { return out, nil }
}

func TestDispatch_ContinueToEndIsSuccess(t *testing.T) {
	code, err := dispatch(t,
		&scripted{name: "a", invoked: outcome(cmdtree.Continue())},
		&scripted{name: "b", invoked: outcome(cmdtree.Continue())},
	)
	require.NoError(t, err)
	assert.Equal(t, guac.ExitSuccess, code)
}

func TestDispatch_CodeStopsTheChain(t *testing.T) {
	var laterRan bool
	code, err := dispatch(t,
		&scripted{name: "a", invoked: outcome(cmdtree.Code(3))},
		&scripted{name: "b", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			laterRan = true
			return cmdtree.Continue(), nil
		}},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.False(t, laterRan)
}

func TestDispatch_CodeZeroIsSuccess(t *testing.T) {
	code, err := dispatch(t, &scripted{name: "true", invoked: outcome(cmdtree.Code(0))})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestDispatch_CodeOneIsFailure(t *testing.T) {
	code, err := dispatch(t, &scripted{name: "false", invoked: outcome(cmdtree.Code(1))})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestDispatch_HandlerFaultPropagates(t *testing.T) {
	boom := errors.New("boom")
	_, err := dispatch(t, &scripted{name: "a", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
		return cmdtree.Outcome{}, boom
	}})
	assert.ErrorIs(t, err, boom)
}

func TestDispatch_ScopeBracketsTheInnerChain(t *testing.T) {
	var trace []string
	chain := []cmdtree.Command{
		&scripted{name: "outer", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			trace = append(trace, "open")
			return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
				trace = append(trace, "close")
				return inner
			}), nil
		}},
		&scripted{name: "inner", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			trace = append(trace, "inner")
			return cmdtree.Continue(), nil
		}},
	}

	code, err := dispatch(t, chain...)
	require.NoError(t, err)
	assert.Equal(t, guac.ExitSuccess, code)
	assert.Equal(t, []string{"open", "inner", "close"}, trace)
}

func TestDispatch_TeardownRunsExactlyOnce(t *testing.T) {
	inners := []func(*guac.Context) (cmdtree.Outcome, error){
		outcome(cmdtree.Continue()),
		outcome(cmdtree.Code(5)),
		func(*guac.Context) (cmdtree.Outcome, error) { return cmdtree.Outcome{}, errors.New("fault") },
		func(*guac.Context) (cmdtree.Outcome, error) { panic("kaboom") },
	}
	for i, inner := range inners {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			closed := 0
			chain := []cmdtree.Command{
				&scripted{name: "outer", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
					return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
						closed++
						return inner
					}), nil
				}},
				&scripted{name: "inner", invoked: inner},
			}
			dispatch(t, chain...)
			assert.Equal(t, 1, closed)
		})
	}
}

func TestDispatch_TeardownDoesNotAlterCodes(t *testing.T) {
	chain := []cmdtree.Command{
		&scripted{name: "outer", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
				return inner
			}), nil
		}},
		&scripted{name: "inner", invoked: outcome(cmdtree.Code(7))},
	}

	code, err := dispatch(t, chain...)
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestDispatch_TeardownSuppressesAFailure(t *testing.T) {
	chain := []cmdtree.Command{
		&scripted{name: "outer", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
				// suppress: the run ends cleanly
				return nil
			}), nil
		}},
		&scripted{name: "inner", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.Outcome{}, errors.New("fault")
		}},
	}

	code, err := dispatch(t, chain...)
	require.NoError(t, err)
	assert.Equal(t, guac.ExitSuccess, code)
}

func TestDispatch_TeardownTransformsAFailure(t *testing.T) {
	replacement := errors.New("replacement")
	chain := []cmdtree.Command{
		&scripted{name: "outer", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
				return fmt.Errorf("%w (inner was %v)", replacement, inner)
			}), nil
		}},
		&scripted{name: "inner", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.Outcome{}, errors.New("fault")
		}},
	}

	_, err := dispatch(t, chain...)
	assert.ErrorIs(t, err, replacement)
}

func TestDispatch_NestedScopesUnwindInnermostFirst(t *testing.T) {
	var trace []string
	open := func(name string) func(*guac.Context) (cmdtree.Outcome, error) {
		return func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
				trace = append(trace, "close-"+name)
				return inner
			}), nil
		}
	}
	chain := []cmdtree.Command{
		&scripted{name: "a", invoked: open("a")},
		&scripted{name: "b", invoked: open("b")},
		&scripted{name: "c", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.Outcome{}, errors.New("fault")
		}},
	}

	_, err := dispatch(t, chain...)
	require.Error(t, err)
	assert.Equal(t, []string{"close-b", "close-a"}, trace)
}

func TestDispatch_ExitErrorUnwindsScopesAndBecomesACode(t *testing.T) {
	var observed error
	chain := []cmdtree.Command{
		&scripted{name: "outer", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
				observed = inner
				return inner
			}), nil
		}},
		&scripted{name: "inner", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.Outcome{}, guac.Exit(4)
		}},
	}

	code, err := dispatch(t, chain...)
	require.NoError(t, err)
	assert.Equal(t, 4, code)
	// the teardown saw the exit as a failure before it became a code
	var exit *guac.ExitError
	require.ErrorAs(t, observed, &exit)
	assert.Equal(t, 4, exit.Code)
}

func TestDispatch_PanicUnwindsOuterScopes(t *testing.T) {
	closed := false
	chain := []cmdtree.Command{
		&scripted{name: "outer", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
				closed = true
				return inner
			}), nil
		}},
		&scripted{name: "inner", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			panic("kaboom")
		}},
	}

	_, err := dispatch(t, chain...)
	assert.True(t, closed)
	var pe *guac.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
}

func TestDispatch_TeardownPanicStillUnwinds(t *testing.T) {
	outerClosed := false
	chain := []cmdtree.Command{
		&scripted{name: "a", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
				outerClosed = true
				return inner
			}), nil
		}},
		&scripted{name: "b", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
			return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
				panic("teardown broke")
			}), nil
		}},
	}

	_, err := dispatch(t, chain...)
	assert.True(t, outerClosed)
	var pe *guac.PanicError
	require.ErrorAs(t, err, &pe)
}

func TestDispatch_ScopeAsLastEntry(t *testing.T) {
	var observed = errors.New("sentinel")
	code, err := dispatch(t, &scripted{name: "only", invoked: func(*guac.Context) (cmdtree.Outcome, error) {
		return cmdtree.OpenScope(func(ctx *guac.Context, inner error) error {
			observed = inner
			return inner
		}), nil
	}})
	require.NoError(t, err)
	assert.Equal(t, guac.ExitSuccess, code)
	// an empty inner chain completes cleanly
	assert.NoError(t, observed)
}

func TestDispatch_NilTeardownIsAConfigError(t *testing.T) {
	_, err := dispatch(t, &scripted{name: "bad", invoked: outcome(cmdtree.OpenScope(nil))})
	assert.True(t, guac.IsConfigError(err))
}

func TestDispatch_GroupWithoutHandlerContinues(t *testing.T) {
	code, err := dispatch(t,
		&group{subs: []cmdtree.SubCommand{{Name: "x", New: func() cmdtree.Command { return plainCmd{} }}}},
		&scripted{name: "leaf", invoked: outcome(cmdtree.Code(6))},
	)
	require.NoError(t, err)
	assert.Equal(t, 6, code)
}

func TestDispatch_MissingChain(t *testing.T) {
	ctx := guac.NewBowl().Context()
	_, handled, err := cmdtree.NewDispatcher().Dispatch(ctx)
	assert.True(t, handled)
	assert.True(t, guac.IsConfigError(err))
}

func TestDispatch_EmptyChain(t *testing.T) {
	ctx := guac.NewBowl().Context()
	ctx.Set(cmdtree.KeyChain, []cmdtree.Command{})
	_, handled, err := cmdtree.NewDispatcher().Dispatch(ctx)
	assert.True(t, handled)
	assert.True(t, guac.IsConfigError(err))
}

func TestDispatch_WrongChainType(t *testing.T) {
	ctx := guac.NewBowl().Context()
	ctx.Set(cmdtree.KeyChain, "not a chain")
	_, _, err := cmdtree.NewDispatcher().Dispatch(ctx)
	assert.True(t, guac.IsConfigError(err))
}
