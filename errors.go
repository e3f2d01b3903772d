package guac

import (
	"errors"
	"fmt"
)

// Exit codes produced by a Bowl.
const (
	ExitSuccess    = 0 // dispatch finished without a terminal value
	ExitFailure    = 1 // unhandled fault captured by the crash boundary
	ExitUsageError = 2 // command line could not be understood
)

// ExitError asks the pipeline to stop now with a specific exit code.
//
// It is equivalent to a handler returning a terminal value: raising it from
// inside a dispatch chain still unwinds every open resource scope before
// the code reaches the Bowl. Setup-phase ingredients use it for clean
// short-circuits such as --help and --version.
type ExitError struct {
	Code    int    // process exit code
	Message string // optional human-readable reason
	Err     error  // optional underlying error
}

func (e *ExitError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("exit %d: %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("exit %d", e.Code)
	}
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exit creates an ExitError with the given code.
func Exit(code int) *ExitError {
	return &ExitError{Code: code}
}

// Exitf creates an ExitError with a code and a formatted message.
func Exitf(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsExit extracts an *ExitError from err, unwrapping as needed.
func AsExit(err error) (*ExitError, bool) {
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit, true
	}
	return nil, false
}

// ExitCode maps an error to a process exit code: the ExitError code when
// err carries one, ExitFailure otherwise, ExitSuccess for nil.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if exit, ok := AsExit(err); ok {
		return exit.Code
	}
	return ExitFailure
}

// ConfigError reports a broken command or recipe declaration: sibling name
// collisions, an empty dispatch chain, a nil sub-command factory. It is a
// developer error detected at build time; it is always fatal and must not
// be handled.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Message
}

// Configf creates a ConfigError with a formatted message.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is a declaration fault.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// PanicError wraps a recovered panic so it can travel the ordinary error
// path through the crash boundary. Stack holds the stack of the goroutine
// at the point the panic was recovered.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
