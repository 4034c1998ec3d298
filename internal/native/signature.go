package native

import "strings"

// Signature is the ordered parameter types plus one return type of a
// compilable function specialization. Immutable once built: constructors
// copy their inputs and accessors never expose internal slices.
type Signature struct {
	params []Type
	ret    Type
}

// NewSignature builds the signature ret(params...).
func NewSignature(ret Type, params ...Type) Signature {
	ps := make([]Type, len(params))
	copy(ps, params)
	return Signature{params: ps, ret: ret}
}

// Return is the return type.
func (s Signature) Return() Type { return s.ret }

// NumParams is the number of parameters.
func (s Signature) NumParams() int { return len(s.params) }

// Param is the i-th parameter type.
func (s Signature) Param(i int) Type { return s.params[i] }

// Params returns a copy of the parameter types.
func (s Signature) Params() []Type {
	ps := make([]Type, len(s.params))
	copy(ps, s.params)
	return ps
}

// Equal reports structural equality: same ordered parameter types and the
// same return type, regardless of how either signature was constructed.
func (s Signature) Equal(o Signature) bool {
	if len(s.params) != len(o.params) {
		return false
	}
	for i := range s.params {
		if !Equal(s.params[i], o.params[i]) {
			return false
		}
	}
	return Equal(s.ret, o.ret)
}

// IsZero reports whether s is the zero Signature (no return type set).
func (s Signature) IsZero() bool { return s.ret == nil && s.params == nil }

func (s Signature) String() string {
	parts := make([]string, len(s.params))
	for i, p := range s.params {
		parts[i] = p.Name()
	}
	ret := "void"
	if s.ret != nil {
		ret = s.ret.Name()
	}
	return ret + "(" + strings.Join(parts, ", ") + ")"
}

// IsSignature reports whether v is a fully-formed backend signature.
// Callers holding one can hand it straight to a compiler and skip
// annotation resolution entirely.
func IsSignature(v any) bool {
	_, ok := v.(Signature)
	return ok
}
