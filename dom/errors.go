package dom

import "fmt"

// DOM exception names.
const (
	HierarchyRequestError = "HierarchyRequestError"
	NotFoundError         = "NotFoundError"
	InvalidCharacterError = "InvalidCharacterError"
	SyntaxError           = "SyntaxError"
	TypeError             = "TypeError"
)

// DOMError represents a DOM exception with a name and message.
type DOMError struct {
	Name    string
	Message string
}

func (e *DOMError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is reports whether target is a DOMError with the same name, so callers can
// write errors.Is(err, dom.ErrSyntaxError).
func (e *DOMError) Is(target error) bool {
	t, ok := target.(*DOMError)
	if !ok {
		return false
	}
	return t.Name == e.Name
}

// Sentinels for errors.Is. Only the Name is compared.
var (
	ErrHierarchyRequestError = &DOMError{Name: HierarchyRequestError}
	ErrNotFoundError         = &DOMError{Name: NotFoundError}
	ErrInvalidCharacterError = &DOMError{Name: InvalidCharacterError}
	ErrSyntaxError           = &DOMError{Name: SyntaxError}
	ErrTypeError             = &DOMError{Name: TypeError}
)

// Common DOM error constructors

// ErrHierarchyRequest creates a HierarchyRequestError.
func ErrHierarchyRequest(message string) *DOMError {
	return &DOMError{Name: HierarchyRequestError, Message: message}
}

// ErrNotFound creates a NotFoundError.
func ErrNotFound(message string) *DOMError {
	return &DOMError{Name: NotFoundError, Message: message}
}

// ErrInvalidCharacter creates an InvalidCharacterError.
func ErrInvalidCharacter(message string) *DOMError {
	return &DOMError{Name: InvalidCharacterError, Message: message}
}

// ErrSyntax creates a SyntaxError.
func ErrSyntax(message string) *DOMError {
	return &DOMError{Name: SyntaxError, Message: message}
}

// ErrType creates a TypeError. Browsers throw a plain TypeError rather than a
// DOMException for these; here it shares the DOMError shape.
func ErrType(message string) *DOMError {
	return &DOMError{Name: TypeError, Message: message}
}
