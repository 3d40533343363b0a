package transform

import "github.com/notefold/richdoc-go/model"

// RemoveSelection deletes the content a selection covers and returns the
// new tree together with a mapper for pre-edit selections.
//
// A BlockSelection truncates its boundary paragraphs, drops every block
// fully inside the span and joins the surviving head and tail into one
// paragraph that keeps the start paragraph's id. When neither endpoint is
// a text position a fresh empty paragraph takes the span's place, so a
// caret always has somewhere to land. A TableSelection resets every cell
// of its rectangle to one empty default paragraph; the table keeps its
// shape, and the cells and their documents keep their ids.
func RemoveSelection(root *model.Document, sel model.Selection, ids model.IDSource) (*model.Document, SelMapper, error) {
	_, rm, err := removeSelection(root, sel, ids)
	if err != nil {
		return nil, nil, err
	}
	return rm.newRoot, rm.mapSelection, nil
}

// removeSelection is the shared implementation. Besides the mapper state
// it exposes the seam caret, which InsertSelection splices at.
func removeSelection(root *model.Document, sel model.Selection, ids model.IDSource) (*model.Document, *remap, error) {
	fixed, err := model.FixSelection(root, sel)
	if err != nil {
		return nil, nil, err
	}
	ordered, err := model.OrderSelection(root, fixed)
	if err != nil {
		return nil, nil, err
	}
	switch s := ordered.(type) {
	case model.BlockSelection:
		return removeBlockSelection(root, s, ids)
	case model.TableSelection:
		return removeTableSelection(root, s, ids)
	}
	panic("unknown selection kind")
}

func removeBlockSelection(root *model.Document, s model.BlockSelection, ids model.IDSource) (*model.Document, *remap, error) {
	if model.IsCollapsed(s) {
		return root, newRemap(root, s), nil
	}
	d, ok := model.FindDocument(root, s.Editor)
	if !ok {
		return nil, nil, model.NewSelectionError("no document %s", s.Editor)
	}
	si, startPara, so, err := resolveEndpoint(d, s.Start)
	if err != nil {
		return nil, nil, err
	}
	ei, endPara, eo, err := resolveEndpoint(d, s.End)
	if err != nil {
		return nil, nil, err
	}

	// Within one paragraph the removal is a plain text-range deletion.
	if si == ei && startPara != nil {
		next := deleteTextRange(startPara, so, eo, ids)
		rm := newRemap(nil, model.Caret(s.Editor, startPara.ID, so))
		rm.shifts[startPara.ID] = gapShift(startPara.ID, so, eo)
		return finishRemove(root, d, rm, replaceBlock(d.Blocks, si, next))
	}

	blocks := make([]model.BlockNode, 0, len(d.Blocks))
	blocks = append(blocks, d.Blocks[:si]...)
	rm := newRemap(nil, model.BlockSelection{})
	switch {
	case startPara != nil && endPara != nil:
		joined := joinSeam(startPara.Cut(0, so), endPara.Cut(eo), ids)
		blocks = append(blocks, joined)
		rm.seam = model.Caret(s.Editor, startPara.ID, so)
		rm.shifts[startPara.ID] = truncateShift(startPara.ID, so)
		rm.shifts[endPara.ID] = joinedShift(startPara.ID, so, eo)
	case startPara != nil:
		blocks = append(blocks, model.FixParagraph(startPara.Cut(0, so), ids))
		rm.seam = model.Caret(s.Editor, startPara.ID, so)
		rm.shifts[startPara.ID] = truncateShift(startPara.ID, so)
	case endPara != nil:
		blocks = append(blocks, model.FixParagraph(endPara.Cut(eo), ids))
		rm.seam = model.Caret(s.Editor, endPara.ID, 0)
		rm.shifts[endPara.ID] = gapShift(endPara.ID, 0, eo)
	default:
		// Opaque blocks on both ends: nothing survives to hold the
		// caret, so an empty paragraph is synthesized in the span's
		// place.
		fresh := model.EmptyParagraph(ids)
		blocks = append(blocks, fresh)
		rm.seam = model.Caret(s.Editor, fresh.ID, 0)
	}
	blocks = append(blocks, d.Blocks[ei+1:]...)
	return finishRemove(root, d, rm, blocks)
}

func removeTableSelection(root *model.Document, s model.TableSelection, ids model.IDSource) (*model.Document, *remap, error) {
	d, ok := model.FindDocument(root, s.Editor)
	if !ok {
		return nil, nil, model.NewSelectionError("no document %s", s.Editor)
	}
	t, ti, err := tableIn(d, s.Table)
	if err != nil {
		return nil, nil, err
	}

	rows := append([]*model.Row(nil), t.Rows...)
	changed := false
	for r := s.Start.Row; r <= s.End.Row; r++ {
		cells := append([]*model.Cell(nil), rows[r].Cells...)
		rowChanged := false
		for c := s.Start.Col; c <= s.End.Col; c++ {
			cell := t.Cell(r, c)
			if cellIsEmpty(cell) {
				continue
			}
			cleared := cell.Content.Copy([]model.BlockNode{model.EmptyParagraph(ids)})
			cells[c] = cell.Copy(cleared)
			rowChanged = true
		}
		if rowChanged {
			rows[r] = rows[r].Copy(cells)
			changed = true
		}
	}

	next := t
	if changed {
		next = t.Copy(rows)
	}
	seamDoc := next.Cell(s.Start.Row, s.Start.Col).Content
	seamPara := seamDoc.Blocks[0].(*model.Paragraph)
	rm := newRemap(nil, model.Caret(seamDoc.ID, seamPara.ID, 0))
	if !changed {
		rm.newRoot = root
		return root, rm, nil
	}
	return finishRemove(root, d, rm, replaceBlock(d.Blocks, ti, next))
}

// finishRemove rebuilds the tree with the editor document's new blocks and
// completes the mapper state.
func finishRemove(root, d *model.Document, rm *remap, blocks []model.BlockNode) (*model.Document, *remap, error) {
	newRoot, err := replaceDocument(root, d.ID, func(doc *model.Document) *model.Document {
		return doc.Copy(blocks)
	})
	if err != nil {
		return nil, nil, err
	}
	rm.newRoot = newRoot
	return newRoot, rm, nil
}

// replaceDocument rebuilds the tree with the named document swapped for
// build's result, sharing every untouched subtree with the old tree.
func replaceDocument(root *model.Document, editorID string, build func(*model.Document) *model.Document) (*model.Document, error) {
	found := false
	mapped, _ := model.MapDocuments(root, func(doc *model.Document, ctx *model.WalkContext) (model.WalkOp, *model.Document) {
		if doc.ID != editorID {
			return model.WalkContinue, nil
		}
		found = true
		return model.WalkStop, build(doc)
	})
	if !found {
		return nil, model.NewSelectionError("no document %s", editorID)
	}
	return mapped, nil
}

// replaceBlock copies the block list with one entry swapped.
func replaceBlock(blocks []model.BlockNode, i int, b model.BlockNode) []model.BlockNode {
	next := append([]model.BlockNode(nil), blocks...)
	next[i] = b
	return next
}

// resolveEndpoint resolves a selection endpoint against its document. For
// a text point it yields the paragraph and offset; for a block point the
// paragraph is nil.
func resolveEndpoint(d *model.Document, p model.Point) (int, *model.Paragraph, int, error) {
	switch p := p.(type) {
	case model.TextPoint:
		para, i, err := model.ParagraphIn(d, p.Block)
		if err != nil {
			return 0, nil, 0, err
		}
		if p.Offset < 0 || p.Offset > para.Len() {
			return 0, nil, 0, model.NewSelectionError("offset %d out of range in paragraph %s of length %d", p.Offset, p.Block, para.Len())
		}
		return i, para, p.Offset, nil
	case model.BlockPoint:
		i := d.IndexOf(p.Block)
		if i < 0 {
			return 0, nil, 0, model.NewSelectionError("no block %s in document %s", p.Block, d.ID)
		}
		return i, nil, 0, nil
	}
	panic("unknown point kind")
}

// deleteTextRange removes the rune range [from, to) from a paragraph. A
// run divided by both boundaries would contribute a fragment on each side
// under one id; the right fragment is re-keyed, and canonicalization then
// merges the seam back under the left fragment's id.
func deleteTextRange(p *model.Paragraph, from, to int, ids model.IDSource) *model.Paragraph {
	head := p.Cut(0, from)
	tail := reKeySharedBoundary(p.Cut(to), head, ids)
	runs := make([]*model.TextRun, 0, len(head.Content)+len(tail.Content))
	runs = append(runs, head.Content...)
	runs = append(runs, tail.Content...)
	return model.FixParagraph(p.Copy(runs), ids)
}

// joinSeam joins the surviving head of the start paragraph with the
// surviving tail of the end paragraph. The result keeps the head's id and
// style. When the boundary runs coalesce the merged run gets a fresh id:
// its text came from runs of two different paragraphs, and keeping either
// id would let a stale position resolve into the wrong text.
func joinSeam(head, tail *model.Paragraph, ids model.IDSource) *model.Paragraph {
	hs, ts := head.Content, tail.Content
	runs := make([]*model.TextRun, 0, len(hs)+len(ts))
	runs = append(runs, hs...)
	if n := len(runs); n > 0 && len(ts) > 0 && runs[n-1].Style.Eq(ts[0].Style) {
		runs[n-1] = model.NewTextRun(ids, runs[n-1].Text+ts[0].Text, ts[0].Style)
		ts = ts[1:]
	}
	runs = append(runs, ts...)
	return model.FixParagraph(head.Copy(runs), ids)
}

// reKeySharedBoundary gives tail's first run a fresh id when head's last
// run carries the same one, which happens when a single run was cut on
// both sides of a gap.
func reKeySharedBoundary(tail, head *model.Paragraph, ids model.IDSource) *model.Paragraph {
	if len(tail.Content) == 0 || len(head.Content) == 0 {
		return tail
	}
	first, last := tail.Content[0], head.Content[len(head.Content)-1]
	if first.ID != last.ID {
		return tail
	}
	runs := append([]*model.TextRun{model.NewTextRun(ids, first.Text, first.Style)}, tail.Content[1:]...)
	return tail.Copy(runs)
}

// cellIsEmpty reports whether a cell already holds exactly one empty
// default paragraph, the state a rectangle removal resets cells to.
func cellIsEmpty(cell *model.Cell) bool {
	if len(cell.Content.Blocks) != 1 {
		return false
	}
	p, ok := cell.Content.Blocks[0].(*model.Paragraph)
	return ok && p.Len() == 0 && p.Style.IsDefault()
}

// The shift builders below encode how offsets in a rewritten boundary
// paragraph move. gapShift drops the range [from, to) out of a paragraph
// that survives under its own id; truncateShift caps offsets of the start
// paragraph at the seam; joinedShift relocates the end paragraph's
// offsets into the joined paragraph.

func gapShift(block string, from, to int) func(int) model.TextPoint {
	return func(off int) model.TextPoint {
		switch {
		case off <= from:
			return model.TextPoint{Block: block, Offset: off}
		case off < to:
			return model.TextPoint{Block: block, Offset: from}
		default:
			return model.TextPoint{Block: block, Offset: off - (to - from)}
		}
	}
}

func truncateShift(block string, at int) func(int) model.TextPoint {
	return func(off int) model.TextPoint {
		return model.TextPoint{Block: block, Offset: min(off, at)}
	}
}

func joinedShift(block string, seamOff, endOff int) func(int) model.TextPoint {
	return func(off int) model.TextPoint {
		if off < endOff {
			return model.TextPoint{Block: block, Offset: seamOff}
		}
		return model.TextPoint{Block: block, Offset: seamOff + off - endOff}
	}
}
