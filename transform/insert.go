package transform

import "github.com/notefold/richdoc-go/model"

// InsertSelection removes the content the selection covers, then splices
// the insert document's blocks at the collapsed caret the removal leaves.
// A single-paragraph insert splices runs into the caret's paragraph; a
// multi-block insert splits the paragraph and joins the boundary
// paragraphs, the left participant of every join keeping its id. Mapping
// the edit's own selection through the returned mapper yields a caret at
// the end of the inserted content.
//
// The caller vouches for the insert document's ids: content from outside
// the engine goes through model.ReassignIDs first.
func InsertSelection(root *model.Document, sel model.Selection, insert *model.Document, ids model.IDSource) (*model.Document, SelMapper, error) {
	removed, rm, err := removeSelection(root, sel, ids)
	if err != nil {
		return nil, nil, err
	}
	if insert == nil || len(insert.Blocks) == 0 {
		return removed, rm.mapSelection, nil
	}

	editor := rm.seam.Editor
	tp := rm.seam.Start.(model.TextPoint)
	d, ok := model.FindDocument(removed, editor)
	if !ok {
		return nil, nil, model.NewSelectionError("no document %s", editor)
	}
	para, pi, err := model.ParagraphIn(d, tp.Block)
	if err != nil {
		return nil, nil, err
	}
	off := tp.Offset

	var blocks []model.BlockNode
	sp := newRemap(nil, model.BlockSelection{})
	if ip, ok := singleParagraph(insert); ok {
		blocks = replaceBlock(d.Blocks, pi, spliceRuns(para, off, ip, ids))
		sp.seam = model.Caret(editor, para.ID, off+ip.Len())
		sp.shifts[para.ID] = insertShift(para.ID, off, ip.Len())
	} else {
		segment, caret, shift := spliceBlocks(para, off, insert.Blocks, ids)
		blocks = make([]model.BlockNode, 0, len(d.Blocks)+len(segment))
		blocks = append(blocks, d.Blocks[:pi]...)
		blocks = append(blocks, segment...)
		blocks = append(blocks, d.Blocks[pi+1:]...)
		sp.seam = model.BlockSelection{Editor: editor, Start: caret, End: caret}
		sp.shifts[para.ID] = shift
	}

	newRoot, err := replaceDocument(removed, editor, func(doc *model.Document) *model.Document {
		return doc.Copy(blocks)
	})
	if err != nil {
		return nil, nil, err
	}
	sp.newRoot = newRoot

	// The edit's own selection maps to the caret after the insert. The
	// shift chain already produces that for text selections; a cell
	// rectangle needs it stated, since the rectangle itself survives.
	own, caret := sel, model.Selection(sp.seam)
	base := Compose(rm.mapSelection, sp.mapSelection)
	return newRoot, func(s model.Selection) model.Selection {
		if s == own {
			return caret
		}
		return base(s)
	}, nil
}

func singleParagraph(d *model.Document) (*model.Paragraph, bool) {
	if len(d.Blocks) != 1 {
		return nil, false
	}
	p, ok := d.Blocks[0].(*model.Paragraph)
	return p, ok
}

// spliceRuns inserts a paragraph's runs into p at the given offset. The
// host paragraph keeps its id and style; the inserted runs keep theirs
// unless canonicalization merges them into a neighbour.
func spliceRuns(p *model.Paragraph, off int, ins *model.Paragraph, ids model.IDSource) *model.Paragraph {
	head := p.Cut(0, off)
	tail := reKeySharedBoundary(p.Cut(off), head, ids)
	runs := make([]*model.TextRun, 0, len(head.Content)+len(ins.Content)+len(tail.Content))
	runs = append(runs, head.Content...)
	runs = append(runs, ins.Content...)
	runs = append(runs, tail.Content...)
	return model.FixParagraph(p.Copy(runs), ids)
}

// spliceBlocks replaces the caret's paragraph with the insert blocks,
// splitting it at the caret. The fragment before the caret keeps the
// paragraph's id; a boundary insert block that is itself a paragraph
// joins with the neighbouring fragment. It returns the replacement
// blocks, the caret at the end of the inserted content, and the offset
// shift for positions that were in the split paragraph.
func spliceBlocks(p *model.Paragraph, off int, ins []model.BlockNode, ids model.IDSource) ([]model.BlockNode, model.Point, func(int) model.TextPoint) {
	var left, right *model.Paragraph
	switch {
	case off == 0:
		right = p
	case off == p.Len():
		left = p
	default:
		left, right = splitParagraph(p, off, ids)
	}

	segment := make([]model.BlockNode, 0, len(ins)+2)
	lo := 0
	if left != nil {
		if fp, ok := ins[0].(*model.Paragraph); ok {
			segment = append(segment, model.JoinParagraphs(left, fp, ids))
			lo = 1
		} else {
			segment = append(segment, left)
		}
	}

	hi := len(ins)
	var tail model.BlockNode
	var caret model.TextPoint
	if lp, ok := ins[len(ins)-1].(*model.Paragraph); ok && len(ins)-1 >= lo {
		hi = len(ins) - 1
		caret = model.TextPoint{Block: lp.ID, Offset: lp.Len()}
		if right != nil {
			tail = model.JoinParagraphs(lp, right, ids)
		} else {
			tail = lp
		}
	} else if right != nil {
		tail = right
		caret = model.TextPoint{Block: right.ID, Offset: 0}
	} else {
		// The insert ends in an opaque block at the paragraph's end;
		// synthesize a caret home after it.
		fresh := model.EmptyParagraph(ids)
		tail = fresh
		caret = model.TextPoint{Block: fresh.ID, Offset: 0}
	}
	segment = append(segment, ins[lo:hi]...)
	segment = append(segment, tail)

	shift := splitShift(p.ID, off, left != nil, caret)
	return segment, caret, shift
}

// splitParagraph divides p at the offset. The left fragment keeps p's id
// and run ids; the right fragment is freshly keyed, including the right
// half of a run the offset divides.
func splitParagraph(p *model.Paragraph, off int, ids model.IDSource) (left, right *model.Paragraph) {
	head := p.Cut(0, off)
	tailCut := reKeySharedBoundary(p.Cut(off), head, ids)
	left = model.FixParagraph(head, ids)
	right = model.NewParagraph(ids, p.Style, tailCut.Content...)
	return left, right
}

// insertShift moves offsets at or after an in-paragraph insertion to the
// right. The insertion point itself moves too, landing after the
// inserted text.
func insertShift(block string, at, n int) func(int) model.TextPoint {
	return func(off int) model.TextPoint {
		if off >= at {
			off += n
		}
		return model.TextPoint{Block: block, Offset: off}
	}
}

// splitShift relocates offsets of a split paragraph: positions before the
// split stay put, positions at or after it land in the tail paragraph,
// counted from the caret the insertion produced.
func splitShift(block string, at int, leftKept bool, caret model.TextPoint) func(int) model.TextPoint {
	return func(off int) model.TextPoint {
		if leftKept && off < at {
			return model.TextPoint{Block: block, Offset: off}
		}
		return model.TextPoint{Block: caret.Block, Offset: caret.Offset + off - at}
	}
}
