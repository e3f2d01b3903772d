package guac

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoSuchKey is returned by Context.Get when a key was never set.
var ErrNoSuchKey = errors.New("no such context key")

// Reserved context keys written by the Bowl itself. Ingredients may read
// them but must not write them.
const (
	// KeyArgv holds the []string command line passed to Eat.
	KeyArgv = "argv"

	// KeyCrashID holds a unique identifier for a captured crash.
	KeyCrashID = "crash.id"

	// KeyCrashPhase holds the name of the phase the crash originated in.
	KeyCrashPhase = "crash.phase"

	// KeyCrashError holds the error value that caused the crash.
	KeyCrashError = "crash.error"

	// KeyCrashStack holds the originating goroutine stack as a string.
	KeyCrashStack = "crash.stack"
)

// Context is the shared mutable data carrier for one pipeline run.
//
// A Context is created by the Bowl, mutated in place by ingredients, and
// discarded when the run ends. There is no schema and no name-spacing:
// each ingredient documents the keys it owns, and a key written by one
// ingredient must not be overwritten by another without an explicit
// contract between the two.
//
// A run is single-threaded and cooperative, so the Context performs no
// locking. Callers exposing a Bowl to concurrent invocations must build
// one Bowl (and therefore one Context) per invocation.
type Context struct {
	bowl   *Bowl
	values map[string]any
}

func newContext(b *Bowl) *Context {
	return &Context{bowl: b, values: make(map[string]any)}
}

// Bowl returns the Bowl this context belongs to. Ingredients use it to
// register or query spices.
func (c *Context) Bowl() *Bowl {
	return c.bowl
}

// Set stores value under key, replacing any previous value.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Get returns the value stored under key. Reading a key that was never set
// is a contract violation between ingredients and fails with an error
// wrapping ErrNoSuchKey.
func (c *Context) Get(key string) (any, error) {
	v, ok := c.values[key]
	if !ok {
		return nil, fmt.Errorf("context key %q: %w", key, ErrNoSuchKey)
	}
	return v, nil
}

// MustGet is like Get but panics on a missing key. The panic is captured
// by the Bowl's crash boundary, so ingredients with a hard dependency on a
// key can use it to fail loudly instead of threading errors.
func (c *Context) MustGet(key string) any {
	v, err := c.Get(key)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether key has been set.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Delete removes key from the context. Deleting an unset key is a no-op.
func (c *Context) Delete(key string) {
	delete(c.values, key)
}

// Keys returns all set keys in sorted order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a debugging representation listing only the key names.
// Values are omitted on purpose: dumping them obscures rather than
// explains what is in the context.
func (c *Context) String() string {
	return fmt.Sprintf("<Context {%s}>", strings.Join(c.Keys(), ", "))
}
