package backend

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/google/uuid"

	"github.com/funvibe/funjit/internal/native"
)

// Dispatch is the bundled reflection backend. It does not generate code:
// compiling validates the function against the signature once, and the
// resulting Compiled converts arguments and results through the
// signature's canonical Go types on every call.
type Dispatch struct {
	defaults []Option
}

// NewDispatch creates a dispatch compiler with the given default options.
func NewDispatch(opts ...Option) *Dispatch {
	return &Dispatch{defaults: opts}
}

// Name returns the backend name for display.
func (d *Dispatch) Name() string { return "dispatch" }

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Compile validates fn against sig and returns its compiled form.
//
// A leading context.Context parameter and a trailing error result are
// part of the function's Go shape, not of the signature; they are
// detected here and handled by Compiled.Call. Every other parameter and
// result must match the signature's canonical Go type, exactly under
// Strict and up to numeric conversion otherwise.
func (d *Dispatch) Compile(fn any, sig native.Signature, opts ...Option) (*Compiled, error) {
	o := applyOptions(d.defaults, opts)

	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("dispatch: not a function: %T", fn)
	}
	t := v.Type()
	label := o.Label
	if label == "" {
		label = t.String()
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("dispatch: %s: variadic functions are not supported", label)
	}

	c := &Compiled{
		fn:    v,
		sig:   sig,
		id:    uuid.NewString(),
		label: label,
	}

	ins := make([]reflect.Type, 0, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		ins = append(ins, t.In(i))
	}
	if len(ins) > 0 && ins[0] == contextType {
		c.takesContext = true
		ins = ins[1:]
	}
	if len(ins) != sig.NumParams() {
		return nil, fmt.Errorf("dispatch: %s: arity mismatch: function has %d parameters, signature %s has %d",
			label, len(ins), sig, sig.NumParams())
	}
	for i, in := range ins {
		want, ok := native.GoEquivalent(sig.Param(i))
		if !ok {
			return nil, fmt.Errorf("dispatch: %s: parameter %d: no Go representation for %s",
				label, i, sig.Param(i))
		}
		if err := checkAssignable(in, want, o.Strict); err != nil {
			return nil, fmt.Errorf("dispatch: %s: parameter %d: %w", label, i, err)
		}
		c.ins = append(c.ins, in)
	}

	outs := make([]reflect.Type, 0, t.NumOut())
	for i := 0; i < t.NumOut(); i++ {
		outs = append(outs, t.Out(i))
	}
	if n := len(outs); n > 0 && outs[n-1] == errorType {
		c.returnsError = true
		outs = outs[:n-1]
	}

	switch ret := sig.Return(); {
	case native.Equal(ret, native.Void):
		if len(outs) != 0 {
			return nil, fmt.Errorf("dispatch: %s: signature returns void but function has %d results",
				label, len(outs))
		}
	default:
		if tup, isTuple := ret.(native.TupleType); isTuple {
			if len(outs) != len(tup.Elems) {
				return nil, fmt.Errorf("dispatch: %s: signature returns %s but function has %d results",
					label, ret, len(outs))
			}
			for i, out := range outs {
				want, ok := native.GoEquivalent(tup.Elems[i])
				if !ok {
					return nil, fmt.Errorf("dispatch: %s: result %d: no Go representation for %s",
						label, i, tup.Elems[i])
				}
				if err := checkAssignable(out, want, o.Strict); err != nil {
					return nil, fmt.Errorf("dispatch: %s: result %d: %w", label, i, err)
				}
				c.outs = append(c.outs, want)
			}
			break
		}
		want, ok := native.GoEquivalent(ret)
		if !ok {
			return nil, fmt.Errorf("dispatch: %s: no Go representation for return type %s", label, ret)
		}
		if len(outs) != 1 {
			return nil, fmt.Errorf("dispatch: %s: signature returns %s but function has %d results",
				label, ret, len(outs))
		}
		if err := checkAssignable(outs[0], want, o.Strict); err != nil {
			return nil, fmt.Errorf("dispatch: %s: result: %w", label, err)
		}
		c.outs = append(c.outs, want)
	}

	if o.Verbose {
		fmt.Fprintf(os.Stderr, "[backend] compiled %s as %s (build %s)\n", label, sig, c.id)
	}
	return c, nil
}

// checkAssignable reports whether a value of type have can serve where
// the signature demands want. Non-strict mode admits numeric
// conversions; it never admits the string/rune conversions reflect
// considers "convertible".
func checkAssignable(have, want reflect.Type, strict bool) error {
	if have == want {
		return nil
	}
	if strict {
		return fmt.Errorf("have %s, want %s", have, want)
	}
	if isNumeric(have) && isNumeric(want) {
		return nil
	}
	return fmt.Errorf("have %s, want %s", have, want)
}

func isNumeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// Compiled is an invocable compiled function: the dispatch backend's
// replacement for the original.
type Compiled struct {
	fn    reflect.Value
	sig   native.Signature
	id    string
	label string

	takesContext bool
	returnsError bool

	// ins are the function's own parameter types (context excluded),
	// outs the canonical Go types of the signature's results.
	ins  []reflect.Type
	outs []reflect.Type
}

// Signature is the signature the function was compiled against.
func (c *Compiled) Signature() native.Signature { return c.sig }

// ID is the unique build id assigned at compile time.
func (c *Compiled) ID() string { return c.id }

func (c *Compiled) String() string {
	return fmt.Sprintf("%s %s [%s]", c.label, c.sig, c.id)
}

// Call invokes the compiled function with context.Background when the
// underlying function takes a context.
func (c *Compiled) Call(args ...any) (any, error) {
	return c.CallContext(context.Background(), args...)
}

// CallContext invokes the compiled function. Arguments are converted to
// the function's parameter types, a stripped error result is surfaced as
// the call error, and the results are converted to the signature's
// canonical Go types: nil for void, a single value, or a []any for a
// tuple return.
func (c *Compiled) CallContext(ctx context.Context, args ...any) (any, error) {
	if len(args) != len(c.ins) {
		return nil, fmt.Errorf("dispatch: %s: got %d arguments, want %d", c.label, len(args), len(c.ins))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if c.takesContext {
		in = append(in, reflect.ValueOf(ctx))
	}
	for i, arg := range args {
		av := reflect.ValueOf(arg)
		if !av.IsValid() {
			return nil, fmt.Errorf("dispatch: %s: argument %d is nil", c.label, i)
		}
		if av.Type() != c.ins[i] {
			if !(isNumeric(av.Type()) && isNumeric(c.ins[i])) {
				return nil, fmt.Errorf("dispatch: %s: argument %d: cannot use %s as %s",
					c.label, i, av.Type(), c.ins[i])
			}
			av = av.Convert(c.ins[i])
		}
		in = append(in, av)
	}

	out := c.fn.Call(in)
	if c.returnsError {
		errv := out[len(out)-1]
		out = out[:len(out)-1]
		if !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
	}

	switch len(c.outs) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Convert(c.outs[0]).Interface(), nil
	default:
		vals := make([]any, len(out))
		for i, o := range out {
			vals[i] = o.Convert(c.outs[i]).Interface()
		}
		return vals, nil
	}
}

// Interface returns a function with the original's exact Go type that
// forwards to the compiled function, so the result can be assigned back
// where the original was used.
func (c *Compiled) Interface() any {
	return reflect.MakeFunc(c.fn.Type(), func(args []reflect.Value) []reflect.Value {
		return c.fn.Call(args)
	}).Interface()
}
