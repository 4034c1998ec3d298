package signature

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/funvibe/funjit/internal/native"
)

// Mapping translates annotation-space values into native types. Keys are
// comparable annotation values: reflect.Type objects, string aliases,
// nil, or anything else a caller chooses to annotate with. Values must
// each satisfy native.IsType; this is checked on demand by Validate, not
// eagerly on insert.
type Mapping map[any]native.Type

// DefaultMapping returns a fresh copy of the built-in mapping: nil maps
// to void and every basic Go type maps to its obvious native scalar
// (int to int64, as on every platform this backend targets).
func DefaultMapping() Mapping {
	return Mapping{
		nil: native.Void,

		reflect.TypeOf(int(0)):    native.Int64,
		reflect.TypeOf(int8(0)):   native.Int8,
		reflect.TypeOf(int16(0)):  native.Int16,
		reflect.TypeOf(int32(0)):  native.Int32,
		reflect.TypeOf(int64(0)):  native.Int64,
		reflect.TypeOf(uint(0)):   native.Uint64,
		reflect.TypeOf(uint8(0)):  native.Uint8,
		reflect.TypeOf(uint16(0)): native.Uint16,
		reflect.TypeOf(uint32(0)): native.Uint32,
		reflect.TypeOf(uint64(0)): native.Uint64,

		reflect.TypeOf(float32(0)):    native.Float32,
		reflect.TypeOf(float64(0)):    native.Float64,
		reflect.TypeOf(complex64(0)):  native.Complex64,
		reflect.TypeOf(complex128(0)): native.Complex128,

		reflect.TypeOf(false): native.Boolean,
		reflect.TypeOf(""):    native.String,
	}
}

// Clone returns a copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a new mapping with entries of other laid over m.
// Last write wins on key collisions.
func (m Mapping) Merge(other Mapping) Mapping {
	out := m.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// MappingEntry is one key/value pair of a Mapping, used when reporting
// validation failures.
type MappingEntry struct {
	Key   any
	Value native.Type
}

// InvalidEntries returns the entries whose values fail the native-type
// check, sorted by key spelling for deterministic output.
func (m Mapping) InvalidEntries() []MappingEntry {
	var bad []MappingEntry
	for k, v := range m {
		if !native.IsType(v) {
			bad = append(bad, MappingEntry{Key: k, Value: v})
		}
	}
	sort.Slice(bad, func(i, j int) bool {
		return fmt.Sprintf("%v", bad[i].Key) < fmt.Sprintf("%v", bad[j].Key)
	})
	return bad
}

// Validate checks every mapping value against the native-type predicate
// and returns the joined NotNativeSignatureError for each failure.
func (m Mapping) Validate() error {
	var errs []error
	for _, e := range m.InvalidEntries() {
		errs = append(errs, fmt.Errorf("mapping key %v: %w", e.Key, NewNotNativeSignatureError(e.Value)))
	}
	return errors.Join(errs...)
}

// Resolve translates one annotation value into a native type, in
// priority order:
//
//  1. forward references resolve recursively into the referenced
//     function's annotations (a whole-function handle becomes a native
//     function type over its freshly built signature);
//  2. a value that already is a native type passes through unchanged;
//  3. composite annotations (Tuple, Callable, slice- and func-kinded
//     reflect.Types) resolve element-wise and reassemble;
//  4. anything else is looked up as an exact key in the mapping.
//
// A value that is neither native nor mapped fails with
// UnknownAnnotationError. Resolve has no side effects.
func Resolve(value any, mapping Mapping) (native.Type, error) {
	switch ref := value.(type) {
	case Function:
		sig, err := NewBuilder(mapping, Raise, Raise).Build(ref)
		if err != nil {
			return nil, err
		}
		return native.FunctionOf(sig), nil
	case ParamRef:
		annot, err := ref.annotation()
		if err != nil {
			return nil, err
		}
		return Resolve(annot, mapping)
	case ReturnRef:
		annot, err := ref.annotation()
		if err != nil {
			return nil, err
		}
		return Resolve(annot, mapping)
	case CallableRef:
		annot, err := ref.annotation()
		if err != nil {
			return nil, err
		}
		return Resolve(annot, mapping)
	}

	if t, ok := value.(native.Type); ok {
		return t, nil
	}

	switch c := value.(type) {
	case Tuple:
		elems := make([]native.Type, 0, len(c))
		for _, e := range c {
			t, err := Resolve(e, mapping)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return native.TupleOf(elems...), nil
	case Callable:
		params := make([]native.Type, 0, len(c.Params))
		for _, p := range c.Params {
			t, err := Resolve(p, mapping)
			if err != nil {
				return nil, err
			}
			params = append(params, t)
		}
		ret, err := Resolve(c.Return, mapping)
		if err != nil {
			return nil, err
		}
		return native.FunctionOf(native.NewSignature(ret, params...)), nil
	case reflect.Type:
		switch c.Kind() {
		case reflect.Slice:
			elem, err := Resolve(c.Elem(), mapping)
			if err != nil {
				return nil, err
			}
			return native.ArrayOf(elem), nil
		case reflect.Func:
			return resolveFuncType(c, mapping)
		}
	}

	// Uncomparable values cannot be map keys; they surface as unknown
	// annotations rather than panicking the lookup.
	if value != nil && !reflect.TypeOf(value).Comparable() {
		return nil, NewUnknownAnnotationError(value)
	}
	if t, ok := mapping[value]; ok {
		return t, nil
	}
	return nil, NewUnknownAnnotationError(value)
}

// resolveFuncType translates a func-kinded reflect.Type under the same
// conventions Describe uses: a leading context.Context is skipped, a
// trailing error result is stripped, no results means void. A bare func
// type carries no missing-annotation policy, so interface{} parameters
// or results cannot be translated here.
func resolveFuncType(t reflect.Type, mapping Mapping) (native.Type, error) {
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic function type %v: %w", t, NewUnknownAnnotationError(t))
	}

	start := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		start = 1
	}
	params := make([]native.Type, 0, t.NumIn()-start)
	for i := start; i < t.NumIn(); i++ {
		pt, err := Resolve(t.In(i), mapping)
		if err != nil {
			return nil, err
		}
		params = append(params, pt)
	}

	outs := make([]reflect.Type, 0, t.NumOut())
	for i := 0; i < t.NumOut(); i++ {
		outs = append(outs, t.Out(i))
	}
	if n := len(outs); n > 0 && outs[n-1] == errorType {
		outs = outs[:n-1]
	}

	var ret native.Type
	switch len(outs) {
	case 0:
		ret = native.Void
	case 1:
		rt, err := Resolve(outs[0], mapping)
		if err != nil {
			return nil, err
		}
		ret = rt
	default:
		elems := make([]native.Type, 0, len(outs))
		for _, out := range outs {
			rt, err := Resolve(out, mapping)
			if err != nil {
				return nil, err
			}
			elems = append(elems, rt)
		}
		ret = native.TupleOf(elems...)
	}

	return native.FunctionOf(native.NewSignature(ret, params...)), nil
}
