package signature

import (
	"fmt"

	"github.com/funvibe/funjit/internal/native"
)

// Builder turns declarations into native signatures: one resolved type
// per declared parameter, in declaration order, plus the resolved return
// type. Missing annotations follow the configured policies: the Raise
// sentinel fails the build, any other value is a fallback annotation that
// is itself resolved through the mapping.
type Builder struct {
	mapping      Mapping
	onMissingArg any
	onMissingRet any
}

// NewBuilder creates a Builder. A nil mapping means DefaultMapping.
func NewBuilder(mapping Mapping, onMissingArg, onMissingRet any) *Builder {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	return &Builder{
		mapping:      mapping,
		onMissingArg: onMissingArg,
		onMissingRet: onMissingRet,
	}
}

// DefaultBuilder is a Builder over the default mapping with both
// missing-annotation policies set to Raise.
func DefaultBuilder() *Builder {
	return NewBuilder(nil, Raise, Raise)
}

// Resolve translates one annotation value under the builder's mapping.
func (b *Builder) Resolve(v any) (native.Type, error) {
	return Resolve(v, b.mapping)
}

// Build derives the signature of v, which is a *Decl, a Function forward
// reference (unwrapped to its target's declaration first), or a Go
// function (described on the fly).
//
// Resolution failures are wrapped with the function name, the parameter
// name and the raw annotation; wrapping augments the message only, so
// errors.As still matches the underlying error kind.
func (b *Builder) Build(v any) (native.Signature, error) {
	d, err := declOf(v)
	if err != nil {
		return native.Signature{}, err
	}

	params := make([]native.Type, 0, d.NumParams())
	for _, p := range d.Params() {
		t, err := b.convert(p.Name, p.Annotation, p.Annotated, b.onMissingArg)
		if err != nil {
			if p.Annotated {
				return native.Signature{}, fmt.Errorf(
					"building signature for %s: parameter %q (annotation %v): %w",
					d.Name(), p.Name, p.Annotation, err)
			}
			return native.Signature{}, fmt.Errorf(
				"building signature for %s: parameter %q: %w", d.Name(), p.Name, err)
		}
		params = append(params, t)
	}

	retAnnot, retAnnotated := d.Return()
	ret, err := b.convert(ReturnParam, retAnnot, retAnnotated, b.onMissingRet)
	if err != nil {
		if retAnnotated {
			return native.Signature{}, fmt.Errorf(
				"building signature for %s: return (annotation %v): %w", d.Name(), retAnnot, err)
		}
		return native.Signature{}, fmt.Errorf(
			"building signature for %s: return: %w", d.Name(), err)
	}

	return native.NewSignature(ret, params...), nil
}

// convert resolves one annotation slot under the given missing policy.
func (b *Builder) convert(name string, annot any, annotated bool, missing any) (native.Type, error) {
	if !annotated {
		if _, raise := missing.(raisePolicy); raise {
			return nil, NewMissingAnnotationError(name)
		}
		annot = missing
	}
	return Resolve(annot, b.mapping)
}

// Build derives a signature with the default builder.
func Build(v any) (native.Signature, error) {
	return DefaultBuilder().Build(v)
}
