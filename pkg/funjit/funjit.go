// Package funjit is the public surface of the annotation translation
// engine. It re-exports the native type system, the annotation and
// signature layer, the dispatch backend and the manager, and adds the
// stateless compile entry points.
//
// The short version:
//
//   - annotate a Go function (its own parameter types usually suffice),
//   - Build derives the native signature,
//   - Compile hands function and signature to a backend and returns the
//     compiled callable in place of the original.
package funjit

import (
	"reflect"

	"github.com/funvibe/funjit/internal/backend"
	"github.com/funvibe/funjit/internal/jit"
	"github.com/funvibe/funjit/internal/native"
	"github.com/funvibe/funjit/internal/signature"
)

// Native type system aliases
type Kind = native.Kind
type Type = native.Type
type Signature = native.Signature
type ArrayType = native.ArrayType
type TupleType = native.TupleType
type FunctionType = native.FunctionType

const (
	KindVoid     = native.KindVoid
	KindBool     = native.KindBool
	KindInt      = native.KindInt
	KindUint     = native.KindUint
	KindFloat    = native.KindFloat
	KindComplex  = native.KindComplex
	KindString   = native.KindString
	KindArray    = native.KindArray
	KindTuple    = native.KindTuple
	KindFunction = native.KindFunction
)

// Scalar types
var (
	Void       = native.Void
	Boolean    = native.Boolean
	Int8       = native.Int8
	Int16      = native.Int16
	Int32      = native.Int32
	Int64      = native.Int64
	Uint8      = native.Uint8
	Uint16     = native.Uint16
	Uint32     = native.Uint32
	Uint64     = native.Uint64
	Float32    = native.Float32
	Float64    = native.Float64
	Complex64  = native.Complex64
	Complex128 = native.Complex128
	String     = native.String
)

// ArrayOf returns the array type over an element type.
func ArrayOf(elem Type) ArrayType { return native.ArrayOf(elem) }

// TupleOf returns the tuple type over element types.
func TupleOf(elems ...Type) TupleType { return native.TupleOf(elems...) }

// FunctionOf returns the function type wrapping a signature.
func FunctionOf(sig Signature) FunctionType { return native.FunctionOf(sig) }

// TypeByName resolves a native type from its display name.
func TypeByName(name string) (Type, bool) { return native.TypeByName(name) }

// TypeNames lists the scalar type names, sorted.
func TypeNames() []string { return native.TypeNames() }

// IsType reports whether a value is a native type.
func IsType(v any) bool { return native.IsType(v) }

// Equal reports structural equality of two native types.
func Equal(a, b Type) bool { return native.Equal(a, b) }

// NewSignature builds a signature from a return type and parameter
// types.
func NewSignature(ret Type, params ...Type) Signature {
	return native.NewSignature(ret, params...)
}

// IsSignature reports whether a value is a native signature.
func IsSignature(v any) bool { return native.IsSignature(v) }

// GoEquivalent returns the canonical Go type for a native type, when
// one exists.
func GoEquivalent(t Type) (reflect.Type, bool) { return native.GoEquivalent(t) }

// Annotation layer aliases
type Mapping = signature.Mapping
type MappingEntry = signature.MappingEntry
type Tuple = signature.Tuple
type Callable = signature.Callable
type Param = signature.Param
type Decl = signature.Decl
type Function = signature.Function
type ParamRef = signature.ParamRef
type ReturnRef = signature.ReturnRef
type CallableRef = signature.CallableRef
type Builder = signature.Builder
type DescribeOption = signature.DescribeOption

// ReturnParam is the pseudo-parameter name addressing the return
// annotation.
const ReturnParam = signature.ReturnParam

// Raise is the missing-annotation policy that fails the build.
var Raise = signature.Raise

// DefaultMapping returns a fresh copy of the default annotation
// mapping.
func DefaultMapping() Mapping { return signature.DefaultMapping() }

// Resolve translates a single annotation value into a native type.
func Resolve(value any, mapping Mapping) (Type, error) {
	return signature.Resolve(value, mapping)
}

// NewBuilder creates a signature builder with an explicit mapping and
// missing-annotation policies.
func NewBuilder(mapping Mapping, onMissingArg, onMissingRet any) *Builder {
	return signature.NewBuilder(mapping, onMissingArg, onMissingRet)
}

// DefaultBuilder creates a builder with the default mapping and both
// policies set to Raise.
func DefaultBuilder() *Builder { return signature.DefaultBuilder() }

// Build derives the native signature of an annotated function, a
// declaration, or a function handle, using the default builder.
func Build(v any) (Signature, error) { return signature.Build(v) }

// Describe introspects a Go function into a declaration.
func Describe(fn any, opts ...DescribeOption) (*Decl, error) {
	return signature.Describe(fn, opts...)
}

// WithName overrides the declaration name derived from the runtime
// function name.
func WithName(name string) DescribeOption { return signature.WithName(name) }

// WithParamNames replaces the synthesized arg0..argN parameter names.
func WithParamNames(names ...string) DescribeOption {
	return signature.WithParamNames(names...)
}

// WithAnnotation attaches or replaces the annotation of the named
// parameter. The pseudo-name "return" addresses the return annotation.
func WithAnnotation(param string, annot any) DescribeOption {
	return signature.WithAnnotation(param, annot)
}

// WithReturn attaches or replaces the return annotation.
func WithReturn(annot any) DescribeOption { return signature.WithReturn(annot) }

// NewDecl creates a declaration with an annotated return value.
func NewDecl(name string, params []Param, ret any) *Decl {
	return signature.NewDecl(name, params, ret)
}

// NewDeclNoReturn creates a declaration whose return annotation is
// absent.
func NewDeclNoReturn(name string, params []Param) *Decl {
	return signature.NewDeclNoReturn(name, params)
}

// NewParam creates an annotated parameter.
func NewParam(name string, annotation any) Param {
	return signature.NewParam(name, annotation)
}

// NewParamMissing creates a parameter without an annotation.
func NewParamMissing(name string) Param { return signature.NewParamMissing(name) }

// NewFunction wraps a function for use as an annotation or reference
// target.
func NewFunction(v any) Function { return signature.NewFunction(v) }

// Arg references the annotation of another function's parameter.
func Arg(fn any, name string) ParamRef { return signature.Arg(fn, name) }

// Ret references the annotation of another function's return value.
func Ret(fn any) ReturnRef { return signature.Ret(fn) }

// Error aliases
type UnknownAnnotationError = signature.UnknownAnnotationError
type NotNativeSignatureError = signature.NotNativeSignatureError
type MissingAnnotationError = signature.MissingAnnotationError
type ParamNotFoundError = signature.ParamNotFoundError
type DuplicateNameError = jit.DuplicateNameError
type NotRegisteredError = jit.NotRegisteredError

// Backend aliases
type Compiler = backend.Compiler
type Compiled = backend.Compiled
type Dispatch = backend.Dispatch

// CompileOption configures a single backend compile call.
type CompileOption = backend.Option

// WithStrict disallows numeric conversions between the function's Go
// types and the signature's canonical types.
func WithStrict(s bool) CompileOption { return backend.WithStrict(s) }

// WithLabel overrides the display label of the compiled function.
func WithLabel(label string) CompileOption { return backend.WithLabel(label) }

// WithVerbose makes the backend log compilations to stderr.
func WithVerbose(v bool) CompileOption { return backend.WithVerbose(v) }

// NewDispatch creates the validating dispatch compiler.
func NewDispatch(opts ...CompileOption) *Dispatch { return backend.NewDispatch(opts...) }

// DefaultCompiler returns the process-default compiler.
func DefaultCompiler() Compiler { return backend.Default() }

// Manager aliases
type Manager = jit.Manager

// Option configures the stateless entry points and NewManager.
type Option = jit.ManagerOption

// RegisterOption configures registry writes.
type RegisterOption = jit.RegisterOption

// DisableEnv is the environment variable that disables compilation for
// the whole process.
const DisableEnv = jit.DisableEnv

// NewManager creates a stateful manager carrying a mapping, policies, a
// registry and a compiler.
func NewManager(opts ...Option) *Manager { return jit.NewManager(opts...) }

// WithMapping replaces the manager's annotation mapping.
func WithMapping(m Mapping) Option { return jit.WithMapping(m) }

// WithOnMissingArg sets the missing-parameter-annotation policy: Raise
// or a fallback annotation.
func WithOnMissingArg(v any) Option { return jit.WithOnMissingArg(v) }

// WithOnMissingRet sets the missing-return-annotation policy: Raise or
// a fallback annotation.
func WithOnMissingRet(v any) Option { return jit.WithOnMissingRet(v) }

// WithDisabled turns compilation into an identity operation.
func WithDisabled(d bool) Option { return jit.WithDisabled(d) }

// WithCompiler replaces the backend compiler.
func WithCompiler(c Compiler) Option { return jit.WithCompiler(c) }

// WithCompileOptions sets backend options applied to every compile
// call; call-time options still win.
func WithCompileOptions(opts ...CompileOption) Option {
	return jit.WithCompileOptions(opts...)
}

// WithOverwrite makes a registry write replace an existing entry
// instead of failing.
func WithOverwrite() RegisterOption { return jit.WithOverwrite() }

// Compile builds the signature of an annotated function, declaration or
// handle and compiles it with the configured backend, returning the
// compiled callable in place of the original.
func Compile(v any, opts ...Option) (any, error) {
	return jit.NewManager(opts...).Compile(v)
}

// Jit compiles a function and returns the replacement with the
// original's Go type, so call sites keep compiling against the same
// signature.
func Jit[F any](fn F, opts ...Option) (F, error) {
	out, err := Compile(fn, opts...)
	if err != nil {
		var zero F
		return zero, err
	}
	if c, ok := out.(*Compiled); ok {
		return c.Interface().(F), nil
	}
	// Compilation disabled: the original function came straight back.
	return out.(F), nil
}

// MustJit is Jit that panics on error, for package-level variable
// initialization.
func MustJit[F any](fn F, opts ...Option) F {
	out, err := Jit(fn, opts...)
	if err != nil {
		panic(err)
	}
	return out
}
