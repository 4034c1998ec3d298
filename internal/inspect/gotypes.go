package inspect

import (
	"fmt"
	"go/types"
	"reflect"

	"github.com/funvibe/funjit/internal/signature"
)

// basicTypes maps go/types basic kinds to the reflect.Type annotations
// the default mapping understands.
var basicTypes = map[types.BasicKind]reflect.Type{
	types.Bool:       reflect.TypeOf(false),
	types.Int:        reflect.TypeOf(int(0)),
	types.Int8:       reflect.TypeOf(int8(0)),
	types.Int16:      reflect.TypeOf(int16(0)),
	types.Int32:      reflect.TypeOf(int32(0)),
	types.Int64:      reflect.TypeOf(int64(0)),
	types.Uint:       reflect.TypeOf(uint(0)),
	types.Uint8:      reflect.TypeOf(uint8(0)),
	types.Uint16:     reflect.TypeOf(uint16(0)),
	types.Uint32:     reflect.TypeOf(uint32(0)),
	types.Uint64:     reflect.TypeOf(uint64(0)),
	types.Float32:    reflect.TypeOf(float32(0)),
	types.Float64:    reflect.TypeOf(float64(0)),
	types.Complex64:  reflect.TypeOf(complex64(0)),
	types.Complex128: reflect.TypeOf(complex128(0)),
	types.String:     reflect.TypeOf(""),
}

func untranslatable(t types.Type) error {
	return fmt.Errorf("no annotation for Go type %s", types.TypeString(t, nil))
}

// unalias resolves an alias type to its actual type. The go/types
// checker materializes alias nodes (and provides types.Unalias) only
// from Go 1.22; on the Go 1.21 toolchain this module builds with,
// aliases are always resolved eagerly, so the identity is exact.
func unalias(t types.Type) types.Type { return t }

// annotationFor translates a go/types type into an annotation value.
// The second result is false for interface{}/any, which carries no
// annotation at all.
func annotationFor(t types.Type) (any, bool, error) {
	switch t := unalias(t).(type) {
	case *types.Basic:
		if rt, ok := basicTypes[t.Kind()]; ok {
			return rt, true, nil
		}
		return nil, false, untranslatable(t)

	case *types.Slice:
		elem, annotated, err := annotationFor(t.Elem())
		if err != nil {
			return nil, false, err
		}
		rt, ok := elem.(reflect.Type)
		if !annotated || !ok {
			return nil, false, untranslatable(t)
		}
		return reflect.SliceOf(rt), true, nil

	case *types.Signature:
		return callableFor(t)

	case *types.Named:
		// context.Context and error only have meaning in the positions
		// the declaration conventions strip; anywhere else they are
		// untranslatable.
		if isContextType(t) || isErrorType(t) {
			return nil, false, untranslatable(t)
		}
		// A named type over a basic kind translates as its underlying
		// kind, so time.Duration annotates an int64 parameter.
		if basic, ok := t.Underlying().(*types.Basic); ok {
			return annotationFor(basic)
		}
		return nil, false, untranslatable(t)

	case *types.Interface:
		if t.NumMethods() == 0 {
			return nil, false, nil
		}
		return nil, false, untranslatable(t)

	default:
		return nil, false, untranslatable(t)
	}
}

// callableFor translates a function type into a Callable annotation,
// with the same context and trailing-error conventions as top-level
// declarations.
func callableFor(sig *types.Signature) (any, bool, error) {
	if sig.Variadic() {
		return nil, false, untranslatable(sig)
	}
	if sig.TypeParams().Len() > 0 {
		return nil, false, untranslatable(sig)
	}

	params := sig.Params()
	start := 0
	if params.Len() > 0 && isContextType(params.At(0).Type()) {
		start = 1
	}
	ps := make([]any, 0, params.Len()-start)
	for i := start; i < params.Len(); i++ {
		annot, annotated, err := annotationFor(params.At(i).Type())
		if err != nil {
			return nil, false, err
		}
		if !annotated {
			return nil, false, untranslatable(sig)
		}
		ps = append(ps, annot)
	}

	results := sig.Results()
	n := results.Len()
	if n > 0 && isErrorType(results.At(n-1).Type()) {
		n--
	}
	var ret any
	switch n {
	case 0:
		ret = nil
	case 1:
		annot, annotated, err := annotationFor(results.At(0).Type())
		if err != nil {
			return nil, false, err
		}
		if !annotated {
			return nil, false, untranslatable(sig)
		}
		ret = annot
	default:
		tup := make(signature.Tuple, 0, n)
		for i := 0; i < n; i++ {
			annot, annotated, err := annotationFor(results.At(i).Type())
			if err != nil {
				return nil, false, err
			}
			if !annotated {
				return nil, false, untranslatable(sig)
			}
			tup = append(tup, annot)
		}
		ret = tup
	}

	return signature.Callable{Params: ps, Return: ret}, true, nil
}

// isContextType checks if a type is context.Context.
func isContextType(t types.Type) bool {
	named, ok := unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "context" && obj.Name() == "Context"
}

// isErrorType checks if a type is the error interface.
func isErrorType(t types.Type) bool {
	t = unalias(t)
	if named, ok := t.(*types.Named); ok {
		t = named.Underlying()
	}
	iface, ok := t.(*types.Interface)
	if !ok {
		return false
	}
	return iface.NumMethods() == 1 && iface.Method(0).Name() == "Error"
}
