package jit

import "fmt"

// DuplicateNameError reports a registry name that is already taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate registration for %q", e.Name)
}

// NewDuplicateNameError creates a new DuplicateNameError.
func NewDuplicateNameError(name string) *DuplicateNameError {
	return &DuplicateNameError{Name: name}
}

// NotRegisteredError reports a registry lookup for a name that was never
// registered.
type NotRegisteredError struct {
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("no registered signature for %q", e.Name)
}

// NewNotRegisteredError creates a new NotRegisteredError.
func NewNotRegisteredError(name string) *NotRegisteredError {
	return &NotRegisteredError{Name: name}
}
