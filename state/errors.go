package state

import "fmt"

// CommandError is returned when a command cannot run as issued: a command
// that needs a selection arriving while the editor has none, a paste with
// no payload, and similar. Structural problems inside an edit surface as
// the transform package's EditError instead.
type CommandError struct {
	Message string
}

// NewCommandError is the constructor for CommandError.
func NewCommandError(format string, args ...interface{}) *CommandError {
	return &CommandError{Message: fmt.Sprintf(format, args...)}
}

func (e *CommandError) Error() string {
	return e.Message
}
