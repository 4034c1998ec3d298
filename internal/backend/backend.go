// Package backend provides the compiler boundary: a Compiler specializes
// a Go function to a finalized native signature and returns an invocable
// compiled replacement. This allows swapping the bundled reflection
// dispatcher for a real code-generating backend without touching the
// annotation layer.
package backend

import "github.com/funvibe/funjit/internal/native"

// Compiler is the interface for compilation backends.
type Compiler interface {
	// Compile specializes fn to sig and returns the compiled function.
	Compile(fn any, sig native.Signature, opts ...Option) (*Compiled, error)

	// Name returns the backend name for display
	Name() string
}

// Options holds backend compile options. Options merge by sequential
// application, so appending call-time options after instance defaults
// gives call-time values precedence.
type Options struct {
	// Strict requires the function's Go types to match the signature's
	// canonical Go types exactly instead of allowing numeric conversion.
	Strict bool

	// Label overrides the function name in diagnostics.
	Label string

	// Verbose enables per-compile progress output on stderr.
	Verbose bool
}

// Option configures a compile call.
type Option func(*Options)

// WithStrict requires exact Go types, no numeric conversion.
func WithStrict(strict bool) Option {
	return func(o *Options) { o.Strict = strict }
}

// WithLabel sets the diagnostic label.
func WithLabel(label string) Option {
	return func(o *Options) { o.Label = label }
}

// WithVerbose enables per-compile progress output.
func WithVerbose(v bool) Option {
	return func(o *Options) { o.Verbose = v }
}

func applyOptions(defaults []Option, opts []Option) Options {
	var o Options
	for _, opt := range defaults {
		opt(&o)
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Default returns the process-default compiler.
func Default() Compiler {
	return NewDispatch()
}
