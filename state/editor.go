// Package state drives a document through commands: it owns the current
// tree, the selection, the typing style, and the undo history, and turns
// the beforeinput command stream into transform edits. Commands are
// applied one at a time in arrival order; the only concession to the
// platform's event model is a one-slot buffer that pairs physical delete
// keys with their beforeinput duplicates.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/notefold/richdoc-go/model"
	"github.com/notefold/richdoc-go/transform"
)

// maxHistoryDepth bounds the undo stack. The eldest snapshot drops first.
const maxHistoryDepth = 1000

// Editor applies Commands to a document and keeps the undo history.
// Methods are safe to call from multiple goroutines, though commands are
// expected to arrive in event order.
type Editor struct {
	mu    sync.Mutex
	state EditorState
	undo  []EditorState
	redo  []EditorState
	ids   model.IDSource
	keys  keyBuffer
}

// NewEditor starts an editor on the given tree with no selection.
// keyDelay overrides how long delete keys wait for their beforeinput
// duplicate, mainly for tests.
func NewEditor(doc *model.Document, ids model.IDSource, keyDelay ...time.Duration) *Editor {
	e := &Editor{
		state: EditorState{Doc: doc, LastAction: ActionUnique},
		ids:   ids,
	}
	e.keys = keyBuffer{ed: e, delay: DefaultKeyDelay}
	if len(keyDelay) > 0 {
		e.keys.delay = keyDelay[0]
	}
	return e
}

// State returns the current snapshot.
func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Doc returns the current tree.
func (e *Editor) Doc() *model.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Doc
}

// Selection returns the current selection, nil when there is none.
func (e *Editor) Selection() model.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Sel
}

// CanUndo reports whether anything is left to undo.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.undo) > 0
}

// CanRedo reports whether anything is left to redo.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.redo) > 0
}

// Apply runs one command.
//
// Delete key commands are buffered rather than applied: the matching
// beforeinput duplicate claims them, a later command flushes them, or the
// buffer's timer expires them. Every other command first flushes any
// buffered key, then remaps its own selection through that flush, so a
// position resolved before the flush still lands where it was aimed.
func (e *Editor) Apply(cmd Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch c := cmd.(type) {
	case DeleteBackwardKey:
		if _, err := e.flushKeyLocked(); err != nil {
			return err
		}
		return e.bufferKey(true, c.Sel)
	case DeleteForwardKey:
		if _, err := e.flushKeyLocked(); err != nil {
			return err
		}
		return e.bufferKey(false, c.Sel)
	case Input:
		if e.resolveKeyPair(c.Type) {
			return nil
		}
	}

	m, err := e.flushKeyLocked()
	if err != nil {
		return err
	}

	switch c := cmd.(type) {
	case Input:
		c.Sel = remapSel(c.Sel, m)
		return e.applyInput(c)
	case InlineFormat:
		c.Sel = remapSel(c.Sel, m)
		return e.applyInlineFormat(c)
	case BlockFormat:
		c.Sel = remapSel(c.Sel, m)
		return e.applyBlockFormat(c)
	case ClearFormat:
		return e.applyClearFormat(remapSel(c.Sel, m))
	case Undo:
		e.undoLocked()
		return nil
	case Redo:
		e.redoLocked()
		return nil
	case SelectAll:
		return e.selectAllLocked()
	case SetSelection:
		return e.setSelectionLocked(remapSel(c.Sel, m))
	default:
		panic(fmt.Sprintf("unhandled command %T", cmd))
	}
}

// FlushKeys resolves any buffered delete key immediately, applying its
// deletion if it still owes one. Presentation layers call this on focus
// loss; tests use it in place of the timer.
func (e *Editor) FlushKeys() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.flushKeyLocked()
	return err
}

// resolveKeyPair claims the buffered delete key when the given input type
// is its beforeinput duplicate. It reports whether the input is already
// dealt with: a key that demoted a paragraph style swallows its duplicate
// whole.
func (e *Editor) resolveKeyPair(t InputType) bool {
	k := e.keys.pending
	if k == nil {
		return false
	}
	var match bool
	if k.backward {
		match = t == DeleteContentBackward || t == DeleteWordBackward || t == DeleteSoftLineBackward
	} else {
		match = t == DeleteContentForward || t == DeleteWordForward
	}
	if !match {
		return false
	}
	e.keys.take()
	return k.swallow
}

// bufferKey evaluates a delete key and parks it. Backspace on a caret at
// the start of a styled paragraph demotes the style one notch instead of
// deleting; the parked key then swallows the duplicate Input so the same
// keypress does not also delete.
func (e *Editor) bufferKey(backward bool, sel model.Selection) error {
	if sel == nil {
		sel = e.state.Sel
	}
	if sel == nil {
		return nil
	}
	k := &pendingKey{backward: backward, sel: sel}
	if backward {
		demoted, err := e.demoteAtCaret(sel)
		if err != nil {
			return err
		}
		k.swallow = demoted
	}
	e.keys.put(k)
	return nil
}

// flushKeyLocked applies whatever the buffered key still owes: nothing
// when it already demoted, otherwise its deletion. The returned mapper
// carries positions across that deletion.
func (e *Editor) flushKeyLocked() (transform.SelMapper, error) {
	k := e.keys.take()
	if k == nil || k.swallow {
		return transform.Identity, nil
	}
	return e.deleteEdit(k.sel, k.backward, unitGrapheme, ActionDelete)
}

// demoteAtCaret walks a styled paragraph one step down the style ladder
// when the caret sits at its start. It reports whether it edited.
func (e *Editor) demoteAtCaret(sel model.Selection) (bool, error) {
	if !model.IsCollapsed(sel) {
		return false, nil
	}
	bs := sel.(model.BlockSelection)
	tp := bs.Start.(model.TextPoint)
	if tp.Offset != 0 {
		return false, nil
	}
	d, ok := model.FindDocument(e.state.Doc, bs.Editor)
	if !ok {
		return false, model.NewSelectionError("no document %s", bs.Editor)
	}
	para, _, err := model.ParagraphIn(d, tp.Block)
	if err != nil {
		return false, err
	}
	if para.Style.IsDefault() {
		return false, nil
	}
	newDoc, m, err := transform.MapParagraphs(e.state.Doc, sel, func(s model.ParagraphStyle) model.ParagraphStyle {
		return s.Demote()
	})
	if err != nil {
		return false, err
	}
	e.commitEdit(newDoc, m(sel), ActionDelete)
	return true, nil
}

// commitEdit installs an edited tree. The old snapshot goes onto the undo
// stack unless its tag merges with this edit's; either way redo is gone,
// since the document has moved past whatever was undone.
func (e *Editor) commitEdit(doc *model.Document, sel model.Selection, tag Action) {
	if tag == ActionUnique || tag != e.state.LastAction {
		e.undo = append(e.undo, e.state)
		if len(e.undo) > maxHistoryDepth {
			e.undo = e.undo[1:]
		}
	}
	e.redo = nil
	e.state = EditorState{
		Doc:         doc,
		Sel:         sel,
		TypingStyle: e.state.TypingStyle,
		LastAction:  tag,
	}
}

// undoLocked restores the previous snapshot. The current one moves to the
// redo stack; both travel re-tagged, so nothing merges across an undo
// boundary.
func (e *Editor) undoLocked() {
	if len(e.undo) == 0 {
		return
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	cur := e.state
	cur.LastAction = ActionUnique
	e.redo = append(e.redo, cur)
	prev.LastAction = ActionUnique
	e.state = prev
}

func (e *Editor) redoLocked() {
	if len(e.redo) == 0 {
		return
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	cur := e.state
	cur.LastAction = ActionUnique
	e.undo = append(e.undo, cur)
	next.LastAction = ActionUnique
	e.state = next
}

// selectAllLocked spans the document the selection sits in; with no
// selection it spans the root. A document that is one table comes back in
// the whole-table form through the usual promotion.
func (e *Editor) selectAllLocked() error {
	target := e.state.Doc
	if e.state.Sel != nil {
		if d, ok := model.FindDocument(e.state.Doc, model.SelectionEditor(e.state.Sel)); ok {
			target = d
		}
	}
	fixed, err := model.FixSelection(e.state.Doc, model.FullSelection(target))
	if err != nil {
		return err
	}
	return e.setSelectionLocked(fixed)
}

// setSelectionLocked moves the selection. Selection motion is not an
// edit: nothing is pushed, nothing merges past it, and the typing style
// follows the new caret.
func (e *Editor) setSelectionLocked(sel model.Selection) error {
	if sel != nil {
		if _, err := model.OrderSelection(e.state.Doc, sel); err != nil {
			return err
		}
	}
	e.state.Sel = sel
	e.state.LastAction = ActionUnique
	e.state.TypingStyle = typingStyleFor(e.state.Doc, sel)
	return nil
}

// applyInlineFormat toggles an inline style. Over a caret nothing in the
// tree changes; the toggle lands on the typing style, and history is left
// alone so surrounding typing still merges.
func (e *Editor) applyInlineFormat(cmd InlineFormat) error {
	sel, err := e.commandSelection(cmd.Sel)
	if err != nil {
		return err
	}
	if model.IsCollapsed(sel) {
		on := cmd.Cond(e.state.TypingStyle)
		e.state.TypingStyle = cmd.Apply(e.state.TypingStyle, !on)
		return nil
	}
	newDoc, m, err := transform.ToggleInlineStyle(e.state.Doc, sel, e.ids, cmd.Cond, cmd.Apply)
	if err != nil {
		return err
	}
	if newDoc != e.state.Doc {
		e.commitEdit(newDoc, m(sel), ActionUnique)
	}
	e.state.TypingStyle = typingStyleFor(e.state.Doc, e.state.Sel)
	return nil
}

func (e *Editor) applyBlockFormat(cmd BlockFormat) error {
	sel, err := e.commandSelection(cmd.Sel)
	if err != nil {
		return err
	}
	newDoc, m, err := transform.ToggleParagraphStyle(e.state.Doc, sel, cmd.Cond, cmd.Apply)
	if err != nil {
		return err
	}
	if newDoc != e.state.Doc {
		e.commitEdit(newDoc, m(sel), ActionUnique)
	}
	return nil
}

func (e *Editor) applyClearFormat(sel model.Selection) error {
	sel, err := e.commandSelection(sel)
	if err != nil {
		return err
	}
	newDoc, m, err := transform.ClearFormatting(e.state.Doc, sel, e.ids)
	if err != nil {
		return err
	}
	if newDoc != e.state.Doc {
		e.commitEdit(newDoc, m(sel), ActionUnique)
	}
	e.state.TypingStyle = model.TextStyle{}
	return nil
}

// commandSelection picks the selection a command applies at: its own when
// it carries one, else the editor's.
func (e *Editor) commandSelection(sel model.Selection) (model.Selection, error) {
	if sel != nil {
		return sel, nil
	}
	if e.state.Sel != nil {
		return e.state.Sel, nil
	}
	return nil, NewCommandError("command needs a selection and the editor has none")
}

func remapSel(sel model.Selection, m transform.SelMapper) model.Selection {
	if sel == nil {
		return nil
	}
	return m(sel)
}

// typingStyleFor reads the style a caret position implies: the character
// before a caret, the first covered character of a range. Block and table
// shapes carry no text style.
func typingStyleFor(doc *model.Document, sel model.Selection) model.TextStyle {
	if sel == nil {
		return model.TextStyle{}
	}
	ordered, err := model.OrderSelection(doc, sel)
	if err != nil {
		return model.TextStyle{}
	}
	bs, ok := ordered.(model.BlockSelection)
	if !ok {
		return model.TextStyle{}
	}
	if model.IsCollapsed(bs) {
		s, _ := model.StyleAtPoint(doc, bs.Editor, bs.Start)
		return s
	}
	if tp, ok := bs.Start.(model.TextPoint); ok {
		probe := model.TextPoint{Block: tp.Block, Offset: tp.Offset + 1}
		if s, ok := model.StyleAtPoint(doc, bs.Editor, probe); ok {
			return s
		}
	}
	return model.TextStyle{}
}
