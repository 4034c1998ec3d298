package jit

import (
	"sort"

	"github.com/funvibe/funjit/internal/backend"
	"github.com/funvibe/funjit/internal/native"
	"github.com/funvibe/funjit/internal/signature"
)

// RegisterOption configures a registration.
type RegisterOption func(*registerOpts)

type registerOpts struct {
	overwrite bool
}

// WithOverwrite lets a registration replace an existing name instead of
// failing with a DuplicateNameError.
func WithOverwrite() RegisterOption {
	return func(o *registerOpts) { o.overwrite = true }
}

// RegisterSignature stores a finalized signature under name. A taken
// name fails with DuplicateNameError unless WithOverwrite is given.
func (m *Manager) RegisterSignature(name string, sig native.Signature, opts ...RegisterOption) error {
	var o registerOpts
	for _, opt := range opts {
		opt(&o)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.registry[name]; exists && !o.overwrite {
		return NewDuplicateNameError(name)
	}
	m.registry[name] = sig
	return nil
}

// RegisterNamed derives v's signature under the manager's mapping and
// policies and stores it under name.
func (m *Manager) RegisterNamed(name string, v any, opts ...RegisterOption) error {
	sig, err := m.Build(v)
	if err != nil {
		return err
	}
	return m.RegisterSignature(name, sig, opts...)
}

// RegisterFunc derives v's signature and stores it under the function's
// declared name, which is returned.
func (m *Manager) RegisterFunc(v any, opts ...RegisterOption) (string, error) {
	var name string
	switch x := v.(type) {
	case *signature.Decl:
		name = x.Name()
	case signature.Function:
		name = x.Name()
	default:
		d, err := signature.Describe(v)
		if err != nil {
			return "", err
		}
		name = d.Name()
		v = d
	}
	if err := m.RegisterNamed(name, v, opts...); err != nil {
		return "", err
	}
	return name, nil
}

// Registered looks a signature up by name.
func (m *Manager) Registered(name string) (native.Signature, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sig, ok := m.registry[name]
	return sig, ok
}

// Names returns the registered names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.registry))
	for name := range m.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompileRegistered compiles fn against the signature previously
// registered under name. An unregistered name fails with
// NotRegisteredError. The disabled no-op returns fn unchanged without
// consulting the registry.
func (m *Manager) CompileRegistered(name string, fn any, opts ...backend.Option) (any, error) {
	if m.disabled {
		return fn, nil
	}
	sig, ok := m.Registered(name)
	if !ok {
		return nil, NewNotRegisteredError(name)
	}
	return m.CompileWith(sig, fn, opts...)
}

// FunctionType wraps the signature registered under name in a native
// function type, for use as an annotation value elsewhere.
func (m *Manager) FunctionType(name string) (native.Type, error) {
	sig, ok := m.Registered(name)
	if !ok {
		return nil, NewNotRegisteredError(name)
	}
	return native.FunctionOf(sig), nil
}
