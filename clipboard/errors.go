package clipboard

import "fmt"

// ClipboardError reports a payload that cannot be produced.
type ClipboardError struct {
	Message string
}

func NewClipboardError(format string, args ...interface{}) *ClipboardError {
	return &ClipboardError{Message: fmt.Sprintf(format, args...)}
}

func (e *ClipboardError) Error() string {
	return "clipboard: " + e.Message
}
