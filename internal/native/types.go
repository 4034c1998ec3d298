// Package native models the compiler backend's type system: a closed set
// of scalar, array, tuple and function types plus the Signature value that
// identifies one compilable specialization of a function.
//
// Values of these types are what the annotation resolver produces and what
// backends consume. The set is sealed: nothing outside this package can
// implement Type, so IsType and IsSignature are reliable capability checks.
package native

import (
	"reflect"
	"sort"
	"strings"
)

// Kind discriminates the members of the type set.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindComplex
	KindString
	KindArray
	KindTuple
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindComplex:
		return "complex"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindFunction:
		return "function"
	}
	return "unknown"
}

// Type is a member of the backend type system.
type Type interface {
	// Name is the canonical spelling, e.g. "int64" or "[]float64".
	Name() string
	String() string
	Kind() Kind

	// nativeType seals the set.
	nativeType()
}

// primType is a scalar member of the set.
type primType struct {
	name string
	kind Kind
}

func (p primType) Name() string   { return p.name }
func (p primType) String() string { return p.name }
func (p primType) Kind() Kind     { return p.kind }
func (p primType) nativeType()    {}

// Scalar types. These are the only values of their identity: comparing two
// scalars with == is safe.
var (
	Void       Type = primType{"void", KindVoid}
	Boolean    Type = primType{"boolean", KindBool}
	Int8       Type = primType{"int8", KindInt}
	Int16      Type = primType{"int16", KindInt}
	Int32      Type = primType{"int32", KindInt}
	Int64      Type = primType{"int64", KindInt}
	Uint8      Type = primType{"uint8", KindUint}
	Uint16     Type = primType{"uint16", KindUint}
	Uint32     Type = primType{"uint32", KindUint}
	Uint64     Type = primType{"uint64", KindUint}
	Float32    Type = primType{"float32", KindFloat}
	Float64    Type = primType{"float64", KindFloat}
	Complex64  Type = primType{"complex64", KindComplex}
	Complex128 Type = primType{"complex128", KindComplex}
	String     Type = primType{"string", KindString}
)

// ArrayType is a homogeneous, dynamically sized array. Multi-dimensional
// arrays nest: [][]float64 is ArrayOf(ArrayOf(Float64)).
type ArrayType struct {
	Elem Type
}

// ArrayOf returns the array type over elem.
func ArrayOf(elem Type) ArrayType {
	return ArrayType{Elem: elem}
}

func (a ArrayType) Name() string   { return "[]" + a.Elem.Name() }
func (a ArrayType) String() string { return a.Name() }
func (a ArrayType) Kind() Kind     { return KindArray }
func (a ArrayType) nativeType()    {}

// TupleType is a fixed-size heterogeneous tuple.
type TupleType struct {
	Elems []Type
}

// TupleOf returns the tuple type over elems.
func TupleOf(elems ...Type) TupleType {
	return TupleType{Elems: elems}
}

func (t TupleType) Name() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.Name()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t TupleType) String() string { return t.Name() }
func (t TupleType) Kind() Kind     { return KindTuple }
func (t TupleType) nativeType()    {}

// FunctionType is a first-class function type wrapping a full Signature.
// It is how a signature enters annotation space: a parameter or return
// value declared with a FunctionType is itself a compiled function.
type FunctionType struct {
	Sig Signature
}

// FunctionOf returns the function type over sig.
func FunctionOf(sig Signature) FunctionType {
	return FunctionType{Sig: sig}
}

func (f FunctionType) Name() string   { return f.Sig.String() }
func (f FunctionType) String() string { return f.Name() }
func (f FunctionType) Kind() Kind     { return KindFunction }
func (f FunctionType) nativeType()    {}

// IsType reports whether v belongs to the backend type system.
func IsType(v any) bool {
	_, ok := v.(Type)
	return ok
}

// Equal reports structural equality of two types.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch at := a.(type) {
	case primType:
		bt, ok := b.(primType)
		return ok && at == bt
	case ArrayType:
		bt, ok := b.(ArrayType)
		return ok && Equal(at.Elem, bt.Elem)
	case TupleType:
		bt, ok := b.(TupleType)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return false
		}
		for i := range at.Elems {
			if !Equal(at.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case FunctionType:
		bt, ok := b.(FunctionType)
		return ok && at.Sig.Equal(bt.Sig)
	}
	return false
}

// scalarsByName indexes the scalar types for TypeByName.
var scalarsByName = func() map[string]Type {
	scalars := []Type{
		Void, Boolean,
		Int8, Int16, Int32, Int64,
		Uint8, Uint16, Uint32, Uint64,
		Float32, Float64,
		Complex64, Complex128,
		String,
	}
	m := make(map[string]Type, len(scalars))
	for _, t := range scalars {
		m[t.Name()] = t
	}
	return m
}()

// TypeByName resolves a canonical type name to its type. It recognizes
// every scalar name plus the "[]elem" array form, nested arbitrarily.
// Tuple and function spellings are not parsed back.
func TypeByName(name string) (Type, bool) {
	if t, ok := scalarsByName[name]; ok {
		return t, true
	}
	if rest, ok := strings.CutPrefix(name, "[]"); ok {
		elem, ok := TypeByName(rest)
		if !ok {
			return nil, false
		}
		return ArrayOf(elem), true
	}
	return nil, false
}

// TypeNames returns the scalar type names in sorted order.
func TypeNames() []string {
	names := make([]string, 0, len(scalarsByName))
	for name := range scalarsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GoEquivalent returns the canonical Go type for t, used by dispatch
// compilers to validate and convert call values. Void and tuples have no
// single Go equivalent (a void return is a function with no results, a
// tuple return is a function with several) and report false.
func GoEquivalent(t Type) (reflect.Type, bool) {
	switch tt := t.(type) {
	case primType:
		switch tt {
		case Boolean:
			return reflect.TypeOf(false), true
		case Int8:
			return reflect.TypeOf(int8(0)), true
		case Int16:
			return reflect.TypeOf(int16(0)), true
		case Int32:
			return reflect.TypeOf(int32(0)), true
		case Int64:
			return reflect.TypeOf(int64(0)), true
		case Uint8:
			return reflect.TypeOf(uint8(0)), true
		case Uint16:
			return reflect.TypeOf(uint16(0)), true
		case Uint32:
			return reflect.TypeOf(uint32(0)), true
		case Uint64:
			return reflect.TypeOf(uint64(0)), true
		case Float32:
			return reflect.TypeOf(float32(0)), true
		case Float64:
			return reflect.TypeOf(float64(0)), true
		case Complex64:
			return reflect.TypeOf(complex64(0)), true
		case Complex128:
			return reflect.TypeOf(complex128(0)), true
		case String:
			return reflect.TypeOf(""), true
		}
		return nil, false
	case ArrayType:
		elem, ok := GoEquivalent(tt.Elem)
		if !ok {
			return nil, false
		}
		return reflect.SliceOf(elem), true
	case FunctionType:
		params := make([]reflect.Type, 0, tt.Sig.NumParams())
		for i := 0; i < tt.Sig.NumParams(); i++ {
			pt, ok := GoEquivalent(tt.Sig.Param(i))
			if !ok {
				return nil, false
			}
			params = append(params, pt)
		}
		var results []reflect.Type
		switch ret := tt.Sig.Return(); {
		case Equal(ret, Void):
			// no results
		default:
			rt, ok := GoEquivalent(ret)
			if !ok {
				return nil, false
			}
			results = []reflect.Type{rt}
		}
		return reflect.FuncOf(params, results, false), true
	}
	return nil, false
}
