package state

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/notefold/richdoc-go/model"
	"github.com/notefold/richdoc-go/transform"
)

// deleteUnit is how much a caret deletion takes: one grapheme cluster,
// one word with the whitespace behind it, or the rest of the line.
type deleteUnit int

const (
	unitGrapheme deleteUnit = iota
	unitWord
	unitLine
)

func (e *Editor) applyInput(cmd Input) error {
	sel, err := e.commandSelection(cmd.Sel)
	if err != nil {
		return err
	}
	switch cmd.Type {
	case InsertText:
		return e.insertTextEdit(sel, cmd.Text, ActionInsert)
	case InsertReplacementText:
		return e.insertTextEdit(sel, cmd.Text, ActionUnique)
	case InsertParagraph:
		return e.splitParagraphEdit(sel)
	case InsertFromPaste, InsertFromDrop:
		return e.insertDocEdit(sel, cmd.Doc)
	case DeleteContentBackward:
		_, err := e.deleteEdit(sel, true, unitGrapheme, ActionDelete)
		return err
	case DeleteContentForward:
		_, err := e.deleteEdit(sel, false, unitGrapheme, ActionDelete)
		return err
	case DeleteWordBackward:
		_, err := e.deleteEdit(sel, true, unitWord, ActionDelete)
		return err
	case DeleteWordForward:
		_, err := e.deleteEdit(sel, false, unitWord, ActionDelete)
		return err
	case DeleteSoftLineBackward:
		_, err := e.deleteEdit(sel, true, unitLine, ActionDelete)
		return err
	case DeleteByCut, DeleteByDrag:
		return e.removeRangeEdit(sel, ActionUnique)
	default:
		return NewCommandError("unknown input type %q", cmd.Type)
	}
}

// insertTextEdit types text at the selection, styled with the typing
// style.
func (e *Editor) insertTextEdit(sel model.Selection, text string, tag Action) error {
	if text == "" {
		return nil
	}
	ins := model.NewDocument(e.ids,
		model.NewParagraph(e.ids, model.ParagraphStyle{},
			model.NewTextRun(e.ids, text, e.state.TypingStyle)))
	newDoc, m, err := transform.InsertSelection(e.state.Doc, sel, ins, e.ids)
	if err != nil {
		return err
	}
	e.commitEdit(newDoc, m(sel), tag)
	return nil
}

// splitParagraphEdit breaks the paragraph at the caret, or replaces a
// wider selection with a paragraph break. Both halves keep the paragraph
// style; the right half is freshly keyed.
func (e *Editor) splitParagraphEdit(sel model.Selection) error {
	style := e.paragraphStyleAt(sel)
	ins := model.NewDocument(e.ids,
		model.NewParagraph(e.ids, style),
		model.NewParagraph(e.ids, style))
	newDoc, m, err := transform.InsertSelection(e.state.Doc, sel, ins, e.ids)
	if err != nil {
		return err
	}
	e.commitEdit(newDoc, m(sel), ActionUnique)
	return nil
}

// insertDocEdit splices pasted or dropped content in. Foreign ids are
// never trusted; the payload is re-keyed wholesale first.
func (e *Editor) insertDocEdit(sel model.Selection, payload *model.Document) error {
	if payload == nil {
		return NewCommandError("paste carries no document")
	}
	ins := model.ReassignIDs(payload, e.ids)
	newDoc, m, err := transform.InsertSelection(e.state.Doc, sel, ins, e.ids)
	if err != nil {
		return err
	}
	e.commitEdit(newDoc, m(sel), ActionUnique)
	e.retypeStyle()
	return nil
}

// deleteEdit removes one unit's worth of content next to a caret, or the
// covered range of a wider selection, and commits the result.
func (e *Editor) deleteEdit(sel model.Selection, backward bool, unit deleteUnit, tag Action) (transform.SelMapper, error) {
	rng, err := e.deletionRange(sel, backward, unit)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return transform.Identity, nil
	}
	newDoc, m, err := transform.RemoveSelection(e.state.Doc, rng, e.ids)
	if err != nil {
		return nil, err
	}
	e.commitEdit(newDoc, m(rng), tag)
	e.retypeStyle()
	return m, nil
}

// removeRangeEdit deletes exactly the covered range. A caret covers
// nothing and is left alone.
func (e *Editor) removeRangeEdit(sel model.Selection, tag Action) error {
	if model.IsCollapsed(sel) {
		return nil
	}
	newDoc, m, err := transform.RemoveSelection(e.state.Doc, sel, e.ids)
	if err != nil {
		return err
	}
	e.commitEdit(newDoc, m(sel), tag)
	e.retypeStyle()
	return nil
}

// retypeStyle refreshes the typing style from the current selection.
func (e *Editor) retypeStyle() {
	e.state.TypingStyle = typingStyleFor(e.state.Doc, e.state.Sel)
}

// paragraphStyleAt is the style of the paragraph holding the selection's
// start, or the default for block shapes.
func (e *Editor) paragraphStyleAt(sel model.Selection) model.ParagraphStyle {
	ordered, err := model.OrderSelection(e.state.Doc, sel)
	if err != nil {
		return model.ParagraphStyle{}
	}
	bs, ok := ordered.(model.BlockSelection)
	if !ok {
		return model.ParagraphStyle{}
	}
	tp, ok := bs.Start.(model.TextPoint)
	if !ok {
		return model.ParagraphStyle{}
	}
	d, ok := model.FindDocument(e.state.Doc, bs.Editor)
	if !ok {
		return model.ParagraphStyle{}
	}
	para, _, err := model.ParagraphIn(d, tp.Block)
	if err != nil {
		return model.ParagraphStyle{}
	}
	return para.Style
}

// deletionRange widens a deletion to the range it actually covers. A
// non-collapsed selection covers itself. A caret covers the unit beside
// it, or reaches across the block boundary when it sits at an edge; nil
// means there is nothing in that direction. Document edges are hard: the
// first block of a cell never joins out of its cell.
func (e *Editor) deletionRange(sel model.Selection, backward bool, unit deleteUnit) (model.Selection, error) {
	if !model.IsCollapsed(sel) {
		return sel, nil
	}
	bs := sel.(model.BlockSelection)
	tp := bs.Start.(model.TextPoint)
	d, ok := model.FindDocument(e.state.Doc, bs.Editor)
	if !ok {
		return nil, model.NewSelectionError("no document %s", bs.Editor)
	}
	para, i, err := model.ParagraphIn(d, tp.Block)
	if err != nil {
		return nil, err
	}
	text := []rune(para.TextContent())

	if backward {
		if tp.Offset > 0 {
			from := backwardStop(text, tp.Offset, unit)
			return model.BlockSelection{
				Editor: bs.Editor,
				Start:  model.TextPoint{Block: tp.Block, Offset: from},
				End:    tp,
			}, nil
		}
		if i == 0 {
			return nil, nil
		}
		return model.BlockSelection{Editor: bs.Editor, Start: blockEnd(d.Blocks[i-1]), End: tp}, nil
	}

	if tp.Offset < para.Len() {
		to := forwardStop(text, tp.Offset, unit)
		return model.BlockSelection{
			Editor: bs.Editor,
			Start:  tp,
			End:    model.TextPoint{Block: tp.Block, Offset: to},
		}, nil
	}
	if i == len(d.Blocks)-1 {
		return nil, nil
	}
	return model.BlockSelection{Editor: bs.Editor, Start: tp, End: blockStart(d.Blocks[i+1])}, nil
}

// blockEnd is the point a backward join reaches for: the end of a
// paragraph's text, or the block itself when it is opaque.
func blockEnd(b model.BlockNode) model.Point {
	if p, ok := b.(*model.Paragraph); ok {
		return model.TextPoint{Block: p.ID, Offset: p.Len()}
	}
	return model.BlockPoint{Block: model.BlockID(b)}
}

func blockStart(b model.BlockNode) model.Point {
	if p, ok := b.(*model.Paragraph); ok {
		return model.TextPoint{Block: p.ID, Offset: 0}
	}
	return model.BlockPoint{Block: model.BlockID(b)}
}

// backwardStop is the offset a backward deletion from off stops at.
// Offsets throughout the tree count runes, so the grapheme helpers below
// measure clusters in runes rather than bytes.
func backwardStop(text []rune, off int, unit deleteUnit) int {
	switch unit {
	case unitGrapheme:
		return off - lastGraphemeLen(string(text[:off]))
	case unitWord:
		return lastWordStart(string(text[:off]))
	case unitLine:
		return 0
	}
	panic("unknown delete unit")
}

func forwardStop(text []rune, off int, unit deleteUnit) int {
	switch unit {
	case unitGrapheme:
		return off + firstGraphemeLen(string(text[off:]))
	case unitWord:
		return off + firstWordEnd(string(text[off:]))
	case unitLine:
		return len(text)
	}
	panic("unknown delete unit")
}

// lastGraphemeLen is the rune length of the final grapheme cluster, so a
// backspace swallows a combining sequence or a joined emoji whole instead
// of splitting it.
func lastGraphemeLen(s string) int {
	g := uniseg.NewGraphemes(s)
	n := 0
	for g.Next() {
		n = len(g.Runes())
	}
	return n
}

func firstGraphemeLen(s string) int {
	g := uniseg.NewGraphemes(s)
	if !g.Next() {
		return 0
	}
	return len(g.Runes())
}

// lastWordStart is the rune offset where the final word begins, with any
// whitespace after it folded into the deletion.
func lastWordStart(s string) int {
	type seg struct {
		start int
		blank bool
	}
	var segs []seg
	state := -1
	at := 0
	rest := s
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		segs = append(segs, seg{start: at, blank: strings.TrimSpace(word) == ""})
		at += len([]rune(word))
	}
	for i := len(segs) - 1; i >= 0; i-- {
		if !segs[i].blank {
			return segs[i].start
		}
	}
	return 0
}

// firstWordEnd is the rune offset just past the first word, skipping
// leading whitespace to reach it. All-whitespace text deletes to the end.
func firstWordEnd(s string) int {
	state := -1
	at := 0
	rest := s
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		n := len([]rune(word))
		if strings.TrimSpace(word) != "" {
			return at + n
		}
		at += n
	}
	return at
}
