package bridge

import "fmt"

// PositionError reports a flat position or point that does not land on
// the document it was resolved against, usually because the view the
// position came from is stale.
type PositionError struct {
	Message string
}

func NewPositionError(format string, args ...interface{}) *PositionError {
	return &PositionError{Message: fmt.Sprintf(format, args...)}
}

func (e *PositionError) Error() string {
	return "bridge: " + e.Message
}
