// Package signature derives native compiled-function signatures from
// annotated function declarations.
//
// An annotation is any value the resolver can translate into a native
// type: a native.Type used directly, a reflect.Type, a string alias
// registered in a Mapping, a composite (Tuple, Callable), or a forward
// reference into another function's annotations (Function, Arg, Ret).
//
// A Decl is the explicit record of one function's name, ordered named
// parameters and return annotation. Decls are either assembled directly
// or derived from a Go function with Describe, where every concrete
// parameter and result type annotates itself and interface{} means
// "no annotation".
package signature

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

// ReturnParam is the pseudo-parameter name for the return annotation,
// used in options and error reporting.
const ReturnParam = "return"

// raisePolicy is the type of the Raise sentinel.
type raisePolicy struct{}

func (raisePolicy) String() string { return "raise" }

// Raise is the missing-annotation policy that fails the build with a
// MissingAnnotationError. Any other policy value is treated as a fallback
// annotation and resolved through the mapper.
var Raise = raisePolicy{}

// Tuple is a fixed-size heterogeneous tuple annotation. Each element is
// itself an annotation and is resolved recursively.
type Tuple []any

// Callable is a function-typed annotation: parameter annotations plus a
// return annotation, each resolved recursively. It resolves to a
// native.FunctionType.
type Callable struct {
	Params []any
	Return any
}

// Param is one declared parameter: a name, an annotation value, and
// whether the annotation is present at all.
type Param struct {
	Name       string
	Annotation any
	Annotated  bool
}

// NewParam creates an annotated parameter.
func NewParam(name string, annotation any) Param {
	return Param{Name: name, Annotation: annotation, Annotated: true}
}

// NewParamMissing creates a parameter without an annotation.
func NewParamMissing(name string) Param {
	return Param{Name: name}
}

// Decl is a function declaration: the unit the builder walks. The zero
// value is unusable; construct with NewDecl or Describe.
type Decl struct {
	name string
	fn   any

	params []Param

	retAnnot     any
	retAnnotated bool

	// takesContext records a leading context.Context parameter that was
	// skipped during introspection.
	takesContext bool

	// returnsError records a trailing error result that was stripped
	// during introspection.
	returnsError bool
}

// NewDecl creates a declaration with an annotated return value.
func NewDecl(name string, params []Param, ret any) *Decl {
	ps := make([]Param, len(params))
	copy(ps, params)
	return &Decl{name: name, params: ps, retAnnot: ret, retAnnotated: true}
}

// NewDeclNoReturn creates a declaration whose return annotation is absent.
func NewDeclNoReturn(name string, params []Param) *Decl {
	ps := make([]Param, len(params))
	copy(ps, params)
	return &Decl{name: name, params: ps}
}

// Bind attaches the callable the declaration describes and returns the
// declaration for chaining.
func (d *Decl) Bind(fn any) *Decl {
	d.fn = fn
	return d
}

// Name is the declared function name.
func (d *Decl) Name() string { return d.name }

// Func is the underlying callable, or nil for a pure declaration.
func (d *Decl) Func() any { return d.fn }

// NumParams is the number of declared parameters.
func (d *Decl) NumParams() int { return len(d.params) }

// Params returns a copy of the declared parameters, in order.
func (d *Decl) Params() []Param {
	ps := make([]Param, len(d.params))
	copy(ps, d.params)
	return ps
}

// ParamAt is the i-th declared parameter.
func (d *Decl) ParamAt(i int) Param { return d.params[i] }

// ParamByName looks a parameter up by name.
func (d *Decl) ParamByName(name string) (Param, bool) {
	for _, p := range d.params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Return is the return annotation and whether it is present.
func (d *Decl) Return() (any, bool) { return d.retAnnot, d.retAnnotated }

// SetAnnotation attaches or replaces the annotation of the named
// parameter (pseudo-name "return" addresses the return annotation).
// Forward references into this declaration resolve lazily, so completing
// it after references to it exist is fine.
func (d *Decl) SetAnnotation(name string, annot any) error {
	if name == ReturnParam {
		d.retAnnot, d.retAnnotated = annot, true
		return nil
	}
	for i := range d.params {
		if d.params[i].Name == name {
			d.params[i] = NewParam(name, annot)
			return nil
		}
	}
	return NewParamNotFoundError(d.name, name)
}

// SetReturn attaches or replaces the return annotation.
func (d *Decl) SetReturn(annot any) {
	d.retAnnot, d.retAnnotated = annot, true
}

// TakesContext reports whether a leading context.Context parameter was
// skipped during introspection.
func (d *Decl) TakesContext() bool { return d.takesContext }

// ReturnsError reports whether a trailing error result was stripped
// during introspection.
func (d *Decl) ReturnsError() bool { return d.returnsError }

// DescribeOption configures Describe.
type DescribeOption func(*describeOpts)

type describeOpts struct {
	name       string
	paramNames []string
	overrides  []annotOverride
}

type annotOverride struct {
	name  string
	annot any
}

// WithName overrides the declaration name derived from the runtime
// function name.
func WithName(name string) DescribeOption {
	return func(o *describeOpts) { o.name = name }
}

// WithParamNames replaces the synthesized arg0..argN parameter names.
// The count must match the described parameters (after any skipped
// context parameter).
func WithParamNames(names ...string) DescribeOption {
	return func(o *describeOpts) { o.paramNames = names }
}

// WithAnnotation attaches or replaces the annotation of the named
// parameter. The pseudo-name "return" addresses the return annotation.
func WithAnnotation(param string, annot any) DescribeOption {
	return func(o *describeOpts) {
		o.overrides = append(o.overrides, annotOverride{name: param, annot: annot})
	}
}

// WithReturn attaches or replaces the return annotation.
func WithReturn(annot any) DescribeOption {
	return WithAnnotation(ReturnParam, annot)
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	anyType     = reflect.TypeOf((*any)(nil)).Elem()
)

// Describe introspects a Go function into a declaration.
//
// Every concrete parameter type is its own annotation; interface{}/any
// leaves the parameter unannotated. A leading context.Context parameter
// is skipped and flagged. A trailing error result is stripped and
// flagged; the remaining results become the return annotation: none is
// nil (void under the default mapping), one is its type, several form a
// Tuple. Parameter names are synthesized as arg0..argN unless
// WithParamNames supplies real ones.
func Describe(fn any, opts ...DescribeOption) (*Decl, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("describe: not a function: %T", fn)
	}
	t := v.Type()

	var o describeOpts
	for _, opt := range opts {
		opt(&o)
	}

	name := o.name
	if name == "" {
		name = funcName(v)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("describe: variadic functions are not supported: %s", name)
	}

	d := &Decl{name: name, fn: fn}

	ins := make([]reflect.Type, 0, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		ins = append(ins, t.In(i))
	}
	if len(ins) > 0 && ins[0] == contextType {
		d.takesContext = true
		ins = ins[1:]
	}

	if o.paramNames != nil && len(o.paramNames) != len(ins) {
		return nil, fmt.Errorf(
			"describe %s: got %d parameter names for %d parameters", name, len(o.paramNames), len(ins))
	}
	for i, in := range ins {
		pname := "arg" + strconv.Itoa(i)
		if o.paramNames != nil {
			pname = o.paramNames[i]
		}
		if in == anyType {
			d.params = append(d.params, NewParamMissing(pname))
		} else {
			d.params = append(d.params, NewParam(pname, in))
		}
	}

	outs := make([]reflect.Type, 0, t.NumOut())
	for i := 0; i < t.NumOut(); i++ {
		outs = append(outs, t.Out(i))
	}
	if n := len(outs); n > 0 && outs[n-1] == errorType {
		d.returnsError = true
		outs = outs[:n-1]
	}
	switch len(outs) {
	case 0:
		d.retAnnot, d.retAnnotated = nil, true
	case 1:
		if outs[0] != anyType {
			d.retAnnot, d.retAnnotated = outs[0], true
		}
	default:
		tup := make(Tuple, 0, len(outs))
		annotated := true
		for _, out := range outs {
			if out == anyType {
				annotated = false
				break
			}
			tup = append(tup, out)
		}
		if annotated {
			d.retAnnot, d.retAnnotated = tup, true
		}
	}

	for _, ov := range o.overrides {
		if ov.name == ReturnParam {
			d.retAnnot, d.retAnnotated = ov.annot, true
			continue
		}
		found := false
		for i := range d.params {
			if d.params[i].Name == ov.name {
				d.params[i] = NewParam(ov.name, ov.annot)
				found = true
				break
			}
		}
		if !found {
			return nil, NewParamNotFoundError(name, ov.name)
		}
	}

	return d, nil
}

// funcName extracts a bare function name from the runtime symbol, e.g.
// "github.com/x/pkg.Add" becomes "Add" and a method value
// "pkg.(*T).M-fm" becomes "M".
func funcName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if name == "" {
		return "func"
	}
	return name
}

// declOf normalizes a build target to a declaration: a *Decl passes
// through, a Function handle unwraps to the declaration of its target,
// anything else is described as a Go function.
func declOf(v any) (*Decl, error) {
	switch x := v.(type) {
	case *Decl:
		return x, nil
	case Function:
		return x.decl()
	default:
		return Describe(v)
	}
}
