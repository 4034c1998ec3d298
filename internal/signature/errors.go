package signature

import "fmt"

// UnknownAnnotationError reports an annotation value with no native-type
// equivalent that is also absent from the active mapping.
type UnknownAnnotationError struct {
	Value any
}

func (e *UnknownAnnotationError) Error() string {
	return fmt.Sprintf("unknown annotation, cannot translate %v into a native type", e.Value)
}

// NewUnknownAnnotationError creates a new UnknownAnnotationError.
func NewUnknownAnnotationError(value any) *UnknownAnnotationError {
	return &UnknownAnnotationError{Value: value}
}

// NotNativeSignatureError reports a mapping value that fails the
// native-type check during mapping validation.
type NotNativeSignatureError struct {
	Value any
}

func (e *NotNativeSignatureError) Error() string {
	return fmt.Sprintf("not a native signature: %v", e.Value)
}

// NewNotNativeSignatureError creates a new NotNativeSignatureError.
func NewNotNativeSignatureError(value any) *NotNativeSignatureError {
	return &NotNativeSignatureError{Value: value}
}

// MissingAnnotationError reports a parameter (or the pseudo-parameter
// "return") that carries no annotation while the missing-value policy is
// Raise.
type MissingAnnotationError struct {
	Name string
}

func (e *MissingAnnotationError) Error() string {
	return fmt.Sprintf("missing annotation for %s", e.Name)
}

// NewMissingAnnotationError creates a new MissingAnnotationError.
func NewMissingAnnotationError(name string) *MissingAnnotationError {
	return &MissingAnnotationError{Name: name}
}

// ParamNotFoundError reports a forward reference to a parameter name that
// does not exist on the referenced function. It is a lookup failure, not
// an annotation-translation failure, so it is deliberately distinct from
// the mapper's error kinds.
type ParamNotFoundError struct {
	Func string
	Name string
}

func (e *ParamNotFoundError) Error() string {
	return fmt.Sprintf("function %q has no parameter %q", e.Func, e.Name)
}

// NewParamNotFoundError creates a new ParamNotFoundError.
func NewParamNotFoundError(fn, name string) *ParamNotFoundError {
	return &ParamNotFoundError{Func: fn, Name: name}
}
