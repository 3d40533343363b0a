package state

import (
	"github.com/notefold/richdoc-go/model"
	"github.com/notefold/richdoc-go/transform"
)

// InputType names an editing intention in the beforeinput vocabulary. The
// editor decides per type how the edit applies and how it groups for undo.
type InputType string

const (
	InsertText             InputType = "insertText"
	InsertParagraph        InputType = "insertParagraph"
	InsertFromPaste        InputType = "insertFromPaste"
	InsertFromDrop         InputType = "insertFromDrop"
	InsertReplacementText  InputType = "insertReplacementText"
	DeleteContentBackward  InputType = "deleteContentBackward"
	DeleteContentForward   InputType = "deleteContentForward"
	DeleteWordBackward     InputType = "deleteWordBackward"
	DeleteWordForward      InputType = "deleteWordForward"
	DeleteSoftLineBackward InputType = "deleteSoftLineBackward"
	DeleteByCut            InputType = "deleteByCut"
	DeleteByDrag           InputType = "deleteByDrag"
)

// Command is one unit of work handed to Editor.Apply. The types below are
// the whole set; the interface is closed.
type Command interface {
	command()
}

// Input carries an editing intention in beforeinput form. Text is read for
// the plain text inserts, Doc for paste and drop payloads. A nil Sel means
// the edit applies at the editor's current selection; the same default
// holds for every other command carrying a Sel field.
type Input struct {
	Type InputType
	Sel  model.Selection
	Text string
	Doc  *model.Document
}

// InlineFormat toggles a text style over the selection: off when Cond
// already holds across every covered character, on otherwise. On a caret
// only the typing style changes, so the toggle lands on the next
// character typed.
type InlineFormat struct {
	Sel   model.Selection
	Cond  transform.StyleCond
	Apply func(model.TextStyle, bool) model.TextStyle
}

// BlockFormat toggles a paragraph-level style the same way, over the
// selection's directly covered paragraphs.
type BlockFormat struct {
	Sel   model.Selection
	Cond  transform.ParagraphStyleCond
	Apply func(model.ParagraphStyle, bool) model.ParagraphStyle
}

// ClearFormat resets every covered run and paragraph to the default
// style, and zeroes the typing style.
type ClearFormat struct {
	Sel model.Selection
}

// Undo and Redo move through the history stacks. On an empty stack they
// do nothing.
type Undo struct{}
type Redo struct{}

// SelectAll spans the document the current selection lives in, or the
// root document when there is none.
type SelectAll struct{}

// SetSelection replaces the editor's selection without touching history.
// A nil Sel clears it.
type SetSelection struct {
	Sel model.Selection
}

// DeleteBackwardKey and DeleteForwardKey report the physical delete keys.
// They are held briefly rather than applied, so the duplicate Input
// arriving from the same keypress can resolve against them; see
// Editor.Apply.
type DeleteBackwardKey struct {
	Sel model.Selection
}

type DeleteForwardKey struct {
	Sel model.Selection
}

func (Input) command()             {}
func (InlineFormat) command()      {}
func (BlockFormat) command()       {}
func (ClearFormat) command()       {}
func (Undo) command()              {}
func (Redo) command()              {}
func (SelectAll) command()         {}
func (SetSelection) command()      {}
func (DeleteBackwardKey) command() {}
func (DeleteForwardKey) command()  {}
