package transform

import "fmt"

// EditError is returned when an edit cannot be applied to the document it
// was given: an insertion point that is not a paragraph position, an
// insert document with nothing to splice around, and similar structural
// mismatches. Selection resolution failures surface as the model's
// SelectionError instead.
type EditError struct {
	Message string
}

// NewEditError is the constructor for EditError.
func NewEditError(format string, args ...interface{}) *EditError {
	return &EditError{Message: fmt.Sprintf(format, args...)}
}

func (e *EditError) Error() string {
	return e.Message
}
