package model

import "fmt"

// SelectionError is returned when a selection refers to nodes that do not
// exist in the document it is applied against, or when two endpoints do
// not share a tree. Plain absence of optional data is reported with ok
// booleans instead; an error here means the caller handed the model
// something inconsistent.
type SelectionError struct {
	Message string
}

func (e *SelectionError) Error() string {
	return e.Message
}

// NewSelectionError is the constructor for SelectionError.
func NewSelectionError(format string, args ...interface{}) *SelectionError {
	return &SelectionError{Message: fmt.Sprintf(format, args...)}
}
