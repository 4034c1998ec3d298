package signature

import "reflect"

// Function is a lazy forward reference to another annotated function. It
// does not own the referenced function and copies nothing at wrap time:
// every lookup into the target's annotations happens when the consuming
// signature is built, so the target's declaration may be completed after
// the reference is created.
//
// Used directly as an annotation, the handle resolves to a native
// function type wrapping the target's freshly built signature. Param,
// Return and Callable produce narrower references into the target's raw
// annotations.
type Function struct {
	target any
}

// NewFunction wraps a Go function or a *Decl in a forward reference.
func NewFunction(v any) Function {
	if f, ok := v.(Function); ok {
		return f
	}
	return Function{target: v}
}

// Arg is shorthand for NewFunction(fn).Param(name): the raw annotation of
// the named parameter of fn, resolved lazily.
func Arg(fn any, name string) ParamRef {
	return NewFunction(fn).Param(name)
}

// Ret is shorthand for NewFunction(fn).Return(): the raw return
// annotation of fn, resolved lazily.
func Ret(fn any) ReturnRef {
	return NewFunction(fn).Return()
}

// Param references the named parameter's raw annotation.
func (f Function) Param(name string) ParamRef {
	return ParamRef{fn: f, name: name}
}

// Return references the raw return annotation.
func (f Function) Return() ReturnRef {
	return ReturnRef{fn: f}
}

// Callable references a callable annotation synthesized from the target's
// full parameter list and return annotation, in declaration order.
func (f Function) Callable() CallableRef {
	return CallableRef{fn: f}
}

// Target is the wrapped value: a Go function or a *Decl.
func (f Function) Target() any { return f.target }

// Name is the target's declared name, best effort.
func (f Function) Name() string {
	if d, ok := f.target.(*Decl); ok {
		return d.Name()
	}
	v := reflect.ValueOf(f.target)
	if v.IsValid() && v.Kind() == reflect.Func {
		return funcName(v)
	}
	return "func"
}

// Key is a stable identity for the referenced function: the declaration's
// pointer identity or the Go function's code pointer. Two handles over
// the same target return the same key, so the key is what callers should
// store in maps or use for deduplication.
func (f Function) Key() uintptr {
	v := reflect.ValueOf(f.target)
	if !v.IsValid() {
		return 0
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Func:
		return v.Pointer()
	}
	return 0
}

// decl materializes the target's declaration.
func (f Function) decl() (*Decl, error) {
	return declOf(f.target)
}

// ParamRef is the lazily resolved annotation of one named parameter of a
// referenced function.
type ParamRef struct {
	fn   Function
	name string
}

// annotation looks the parameter's raw annotation up by name. A name
// that does not exist on the target is a ParamNotFoundError; a parameter
// that exists but carries no annotation is a MissingAnnotationError.
func (r ParamRef) annotation() (any, error) {
	d, err := r.fn.decl()
	if err != nil {
		return nil, err
	}
	p, ok := d.ParamByName(r.name)
	if !ok {
		return nil, NewParamNotFoundError(d.Name(), r.name)
	}
	if !p.Annotated {
		return nil, NewMissingAnnotationError(p.Name)
	}
	return p.Annotation, nil
}

// ReturnRef is the lazily resolved return annotation of a referenced
// function.
type ReturnRef struct {
	fn Function
}

func (r ReturnRef) annotation() (any, error) {
	d, err := r.fn.decl()
	if err != nil {
		return nil, err
	}
	annot, ok := d.Return()
	if !ok {
		return nil, NewMissingAnnotationError(ReturnParam)
	}
	return annot, nil
}

// CallableRef is the lazily synthesized callable annotation of a
// referenced function: its parameter annotations plus its return
// annotation, order preserved.
type CallableRef struct {
	fn Function
}

func (r CallableRef) annotation() (any, error) {
	d, err := r.fn.decl()
	if err != nil {
		return nil, err
	}
	c := Callable{Params: make([]any, 0, d.NumParams())}
	for _, p := range d.Params() {
		if !p.Annotated {
			return nil, NewMissingAnnotationError(p.Name)
		}
		c.Params = append(c.Params, p.Annotation)
	}
	ret, ok := d.Return()
	if !ok {
		return nil, NewMissingAnnotationError(ReturnParam)
	}
	c.Return = ret
	return c, nil
}
