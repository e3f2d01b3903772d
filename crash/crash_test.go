package crash_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/guac"
	"github.com/roach88/guac/cmdtree"
	"github.com/roach88/guac/crash"
	"github.com/roach88/guac/xdg"
)

func crashedContext(bowl *guac.Bowl, err error) *guac.Context {
	ctx := bowl.Context()
	ctx.Set(guac.KeyCrashID, "cafe0001")
	ctx.Set(guac.KeyCrashPhase, guac.PhaseDispatch)
	ctx.Set(guac.KeyCrashError, err)
	ctx.Set(guac.KeyCrashStack, "goroutine 1 [running]:\nmain.main()\n")
	return ctx
}

func TestRender(t *testing.T) {
	ctx := crashedContext(guac.NewBowl(), errors.New("boom"))

	report := crash.Render(ctx)
	assert.Contains(t, report, `crash cafe0001 in phase "dispatch"`)
	assert.Contains(t, report, "classification: *errors.errorString")
	assert.Contains(t, report, "payload: boom")
	assert.Contains(t, report, "stack:\ngoroutine 1 [running]:")
}

func TestRender_PanicClassification(t *testing.T) {
	ctx := crashedContext(guac.NewBowl(), &guac.PanicError{Value: "kaboom", Stack: []byte("st")})

	report := crash.Render(ctx)
	assert.Contains(t, report, "classification: *guac.PanicError")
	assert.Contains(t, report, "payload: panic: kaboom")
}

func TestReporter_PrintsToStderr(t *testing.T) {
	ctx := crashedContext(guac.NewBowl(), errors.New("boom"))

	stderr := &bytes.Buffer{}
	r := crash.New()
	r.Stderr = stderr

	require.NoError(t, r.DispatchFailed(ctx))

	out := stderr.String()
	assert.Contains(t, out, "error: boom")
	assert.Contains(t, out, "crash cafe0001")
	assert.NotContains(t, out, "crash report saved")
}

func TestReporter_SaveSpiceWritesReport(t *testing.T) {
	home := t.TempDir()

	bowl := guac.NewBowl()
	bowl.AddSpice(crash.SpiceSave)
	ctx := crashedContext(bowl, errors.New("boom"))

	tree, err := cmdtree.Build(&appCmd{})
	require.NoError(t, err)
	ctx.Set(cmdtree.KeyTree, tree)
	ctx.Set(xdg.Key, xdg.Dirs{CacheHome: filepath.Join(home, ".cache")})

	stderr := &bytes.Buffer{}
	r := crash.New()
	r.Stderr = stderr
	require.NoError(t, r.DispatchFailed(ctx))

	path := filepath.Join(home, ".cache", "com.example:tool", "crashes", "cafe0001.txt")
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "payload: boom")
	assert.Contains(t, stderr.String(), "crash report saved to "+path)
}

func TestReporter_SaveWithoutAppIDIsSilent(t *testing.T) {
	bowl := guac.NewBowl()
	bowl.AddSpice(crash.SpiceSave)
	ctx := crashedContext(bowl, errors.New("boom"))

	tree, err := cmdtree.Build(&anonymousCmd{})
	require.NoError(t, err)
	ctx.Set(cmdtree.KeyTree, tree)
	ctx.Set(xdg.Key, xdg.Dirs{CacheHome: t.TempDir()})

	stderr := &bytes.Buffer{}
	r := crash.New()
	r.Stderr = stderr
	require.NoError(t, r.DispatchFailed(ctx))
	assert.NotContains(t, stderr.String(), "crash report saved")
}

func TestReporter_NoCrashKeys(t *testing.T) {
	// a reporter invoked without crash state still must not fail
	stderr := &bytes.Buffer{}
	r := crash.New()
	r.Stderr = stderr

	require.NoError(t, r.DispatchFailed(guac.NewBowl().Context()))
	assert.Contains(t, stderr.String(), "unknown failure")
}

type appCmd struct{}

func (appCmd) Info() cmdtree.Info {
	return cmdtree.Info{Name: "tool", AppID: "com.example:tool"}
}

type anonymousCmd struct{}

func (anonymousCmd) Info() cmdtree.Info { return cmdtree.Info{Name: "tool"} }
