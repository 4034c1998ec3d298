// Package jit is the stateful compile façade: a Manager bundles a type
// mapping, missing-annotation policies, a compiler and its default
// options, a jit-disable switch, and a name-to-signature registry.
//
// Nothing on a Manager mutates implicitly after construction; per-call
// backend options shadow the instance defaults for that call only.
package jit

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/funvibe/funjit/internal/backend"
	"github.com/funvibe/funjit/internal/native"
	"github.com/funvibe/funjit/internal/signature"
)

// DisableEnv is the environment variable that forces new managers into
// the no-op passthrough mode ("1" or "true").
const DisableEnv = "FUNJIT_DISABLE"

// Manager is the stateful façade.
type Manager struct {
	mapping      signature.Mapping
	onMissingArg any
	onMissingRet any
	disabled     bool
	compiler     backend.Compiler
	opts         []backend.Option

	mu       sync.RWMutex
	registry map[string]native.Signature
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithMapping sets the type mapping used for annotation resolution.
func WithMapping(m signature.Mapping) ManagerOption {
	return func(mgr *Manager) { mgr.mapping = m }
}

// WithOnMissingArg sets the missing-argument policy: signature.Raise or
// a fallback annotation.
func WithOnMissingArg(v any) ManagerOption {
	return func(mgr *Manager) { mgr.onMissingArg = v }
}

// WithOnMissingRet sets the missing-return policy.
func WithOnMissingRet(v any) ManagerOption {
	return func(mgr *Manager) { mgr.onMissingRet = v }
}

// WithDisabled sets the jit-disable switch.
func WithDisabled(d bool) ManagerOption {
	return func(mgr *Manager) { mgr.disabled = d }
}

// WithCompiler sets the compilation backend.
func WithCompiler(c backend.Compiler) ManagerOption {
	return func(mgr *Manager) { mgr.compiler = c }
}

// WithCompileOptions sets default backend options, applied before any
// call-time options.
func WithCompileOptions(opts ...backend.Option) ManagerOption {
	return func(mgr *Manager) { mgr.opts = opts }
}

// NewManager creates a Manager with the default mapping, Raise policies
// and the dispatch backend. FUNJIT_DISABLE in the environment starts the
// manager disabled; explicit options are applied afterwards and win.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		mapping:      signature.DefaultMapping(),
		onMissingArg: signature.Raise,
		onMissingRet: signature.Raise,
		compiler:     backend.Default(),
		registry:     make(map[string]native.Signature),
	}
	if v := os.Getenv(DisableEnv); v == "1" || strings.EqualFold(v, "true") {
		m.disabled = true
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Disabled reports whether compilation is switched off.
func (m *Manager) Disabled() bool { return m.disabled }

// SetDisabled flips the jit-disable switch.
func (m *Manager) SetDisabled(d bool) { m.disabled = d }

// Compiler is the configured backend.
func (m *Manager) Compiler() backend.Compiler { return m.compiler }

func (m *Manager) builder() *signature.Builder {
	return signature.NewBuilder(m.mapping, m.onMissingArg, m.onMissingRet)
}

// Build derives the signature of v under the manager's mapping and
// policies, without compiling anything.
func (m *Manager) Build(v any) (native.Signature, error) {
	return m.builder().Build(v)
}

// Resolve translates one annotation value under the manager's mapping.
func (m *Manager) Resolve(v any) (native.Type, error) {
	return m.builder().Resolve(v)
}

// Compile derives the signature of v from its annotations and hands the
// underlying function to the backend. v is a Go function, a
// *signature.Decl with a bound function, or a signature.Function
// forward reference.
//
// When the manager is disabled the original function comes back
// unchanged and nothing is compiled.
func (m *Manager) Compile(v any, opts ...backend.Option) (any, error) {
	if m.disabled {
		return underlying(v), nil
	}
	fn, err := callableOf(v)
	if err != nil {
		return nil, err
	}
	sig, err := m.Build(v)
	if err != nil {
		return nil, err
	}
	return m.compiler.Compile(fn, sig, m.callOpts(opts)...)
}

// CompileWith hands fn straight to the backend under an already
// finalized signature, bypassing annotation resolution entirely. The
// disabled no-op returns fn unchanged.
func (m *Manager) CompileWith(sig native.Signature, fn any, opts ...backend.Option) (any, error) {
	if m.disabled {
		return fn, nil
	}
	return m.compiler.Compile(fn, sig, m.callOpts(opts)...)
}

// callOpts merges instance defaults with call-time options, call-time
// last so it wins.
func (m *Manager) callOpts(opts []backend.Option) []backend.Option {
	if len(m.opts) == 0 {
		return opts
	}
	merged := make([]backend.Option, 0, len(m.opts)+len(opts))
	merged = append(merged, m.opts...)
	merged = append(merged, opts...)
	return merged
}

// underlying is the value the disabled no-op paths return: the bound
// function of a declaration or handle when there is one, otherwise the
// input itself.
func underlying(v any) any {
	switch x := v.(type) {
	case *signature.Decl:
		if fn := x.Func(); fn != nil {
			return fn
		}
		return x
	case signature.Function:
		return underlying(x.Target())
	default:
		return v
	}
}

// callableOf extracts the function to compile.
func callableOf(v any) (any, error) {
	switch x := v.(type) {
	case *signature.Decl:
		fn := x.Func()
		if fn == nil {
			return nil, fmt.Errorf("declaration %q has no bound function", x.Name())
		}
		return fn, nil
	case signature.Function:
		return callableOf(x.Target())
	default:
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Kind() != reflect.Func {
			return nil, fmt.Errorf("not a compilable function: %T", v)
		}
		return v, nil
	}
}
