package state

import (
	"github.com/notefold/richdoc-go/model"
)

// Action classifies the edit that produced a snapshot, for history
// grouping. Consecutive edits sharing a mergeable tag write over the same
// undo step; ActionUnique always opens a new one.
type Action string

const (
	ActionUnique Action = "unique"
	ActionInsert Action = "insert"
	ActionDelete Action = "delete"
)

// EditorState is one snapshot of everything undo restores: the tree, the
// selection, the style the next typed character takes, and the tag of
// whatever produced the snapshot. Snapshots are values; the trees they
// point at are never mutated.
type EditorState struct {
	Doc         *model.Document
	Sel         model.Selection
	TypingStyle model.TextStyle
	LastAction  Action
}
