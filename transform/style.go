package transform

import "github.com/notefold/richdoc-go/model"

// StyleFunc rewrites a text style. StyleCond tests one; a toggle is
// active when its condition holds for every run the selection covers.
type StyleFunc func(model.TextStyle) model.TextStyle
type StyleCond func(model.TextStyle) bool

// ParagraphStyleFunc and ParagraphStyleCond are the block-level
// counterparts.
type ParagraphStyleFunc func(model.ParagraphStyle) model.ParagraphStyle
type ParagraphStyleCond func(model.ParagraphStyle) bool

// MapRuns applies fn to the style of every run the selection covers, in
// whole or in part. Boundary runs split at the selection edge; the
// earliest fragment keeps the run's id. Inline styling reaches through
// tables: runs inside a covered table's cells are covered too. Offsets
// and block ids never move, so the returned mapper is the identity.
//
// A collapsed selection covers no runs and changes nothing; carried
// typing styles are the caller's business.
func MapRuns(root *model.Document, sel model.Selection, ids model.IDSource, fn StyleFunc) (*model.Document, SelMapper, error) {
	ordered, err := orderForStyling(root, sel)
	if err != nil {
		return nil, nil, err
	}
	switch s := ordered.(type) {
	case model.BlockSelection:
		if model.IsCollapsed(s) {
			return root, Identity, nil
		}
		return mapRunsBlock(root, s, ids, fn)
	case model.TableSelection:
		return mapRunsTable(root, s, ids, fn)
	}
	panic("unknown selection kind")
}

func mapRunsBlock(root *model.Document, s model.BlockSelection, ids model.IDSource, fn StyleFunc) (*model.Document, SelMapper, error) {
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

	var blocks []model.BlockNode
	set := func(i int, b model.BlockNode) {
		if b == d.Blocks[i] {
			return
		}
		if blocks == nil {
			blocks = append([]model.BlockNode(nil), d.Blocks...)
		}
		blocks[i] = b
	}
	for i := si; i <= ei; i++ {
		switch {
		case i == si && si == ei && startPara != nil:
			set(i, restyleRange(startPara, so, eo, fn, ids))
		case i == si && startPara != nil:
			set(i, restyleRange(startPara, so, startPara.Len(), fn, ids))
		case i == ei && endPara != nil:
			set(i, restyleRange(endPara, 0, eo, fn, ids))
		default:
			set(i, restyleBlock(d.Blocks[i], fn, ids))
		}
	}
	if blocks == nil {
		return root, Identity, nil
	}
	newRoot, err := replaceDocument(root, d.ID, func(doc *model.Document) *model.Document {
		return doc.Copy(blocks)
	})
	if err != nil {
		return nil, nil, err
	}
	return newRoot, Identity, nil
}

func mapRunsTable(root *model.Document, s model.TableSelection, ids model.IDSource, fn StyleFunc) (*model.Document, SelMapper, error) {
	newRoot, err := mapRectCells(root, s, func(content *model.Document) *model.Document {
		return docRestyledAll(content, fn, ids)
	})
	if err != nil {
		return nil, nil, err
	}
	return newRoot, Identity, nil
}

// MapParagraphs applies fn to the style of every paragraph the selection
// touches. Unlike inline styling this stays at the selection's own level:
// a covered table is opaque, since a block style has no meaning applied
// to a table. A collapsed selection restyles the paragraph holding the
// caret. The mapper is the identity.
func MapParagraphs(root *model.Document, sel model.Selection, fn ParagraphStyleFunc) (*model.Document, SelMapper, error) {
	ordered, err := orderForStyling(root, sel)
	if err != nil {
		return nil, nil, err
	}
	switch s := ordered.(type) {
	case model.BlockSelection:
		return mapParagraphsBlock(root, s, fn)
	case model.TableSelection:
		newRoot, err := mapRectCells(root, s, func(content *model.Document) *model.Document {
			return directParagraphsRestyled(content, fn)
		})
		if err != nil {
			return nil, nil, err
		}
		return newRoot, Identity, nil
	}
	panic("unknown selection kind")
}

func mapParagraphsBlock(root *model.Document, s model.BlockSelection, fn ParagraphStyleFunc) (*model.Document, SelMapper, error) {
	d, ok := model.FindDocument(root, s.Editor)
	if !ok {
		return nil, nil, model.NewSelectionError("no document %s", s.Editor)
	}
	si, _, _, err := resolveEndpoint(d, s.Start)
	if err != nil {
		return nil, nil, err
	}
	ei, _, _, err := resolveEndpoint(d, s.End)
	if err != nil {
		return nil, nil, err
	}

	var blocks []model.BlockNode
	for i := si; i <= ei; i++ {
		p, ok := d.Blocks[i].(*model.Paragraph)
		if !ok {
			continue
		}
		next := restyledParagraph(p, fn)
		if next == p {
			continue
		}
		if blocks == nil {
			blocks = append([]model.BlockNode(nil), d.Blocks...)
		}
		blocks[i] = next
	}
	if blocks == nil {
		return root, Identity, nil
	}
	newRoot, err := replaceDocument(root, d.ID, func(doc *model.Document) *model.Document {
		return doc.Copy(blocks)
	})
	if err != nil {
		return nil, nil, err
	}
	return newRoot, Identity, nil
}

// InlineStyleActive reports whether cond holds for every run the
// selection covers: the uniform-state reading a toggle needs. With
// nothing covered it reports false; for a collapsed selection it reads
// the style a caret at that point would type with.
func InlineStyleActive(root *model.Document, sel model.Selection, cond StyleCond) (bool, error) {
	ordered, err := orderForStyling(root, sel)
	if err != nil {
		return false, err
	}
	if bs, ok := ordered.(model.BlockSelection); ok && model.IsCollapsed(bs) {
		style, ok := model.StyleAtPoint(root, bs.Editor, bs.Start)
		return ok && cond(style), nil
	}
	any, all := false, true
	err = eachCoveredRunStyle(root, ordered, func(style model.TextStyle) {
		any = true
		if !cond(style) {
			all = false
		}
	})
	if err != nil {
		return false, err
	}
	return any && all, nil
}

// ParagraphStyleActive reports whether cond holds for every paragraph the
// selection touches, with MapParagraphs' notion of coverage.
func ParagraphStyleActive(root *model.Document, sel model.Selection, cond ParagraphStyleCond) (bool, error) {
	ordered, err := orderForStyling(root, sel)
	if err != nil {
		return false, err
	}
	any, all := false, true
	visit := func(p *model.Paragraph) {
		any = true
		if !cond(p.Style) {
			all = false
		}
	}
	switch s := ordered.(type) {
	case model.BlockSelection:
		d, ok := model.FindDocument(root, s.Editor)
		if !ok {
			return false, model.NewSelectionError("no document %s", s.Editor)
		}
		si, _, _, err := resolveEndpoint(d, s.Start)
		if err != nil {
			return false, err
		}
		ei, _, _, err := resolveEndpoint(d, s.End)
		if err != nil {
			return false, err
		}
		for i := si; i <= ei; i++ {
			if p, ok := d.Blocks[i].(*model.Paragraph); ok {
				visit(p)
			}
		}
	case model.TableSelection:
		d, ok := model.FindDocument(root, s.Editor)
		if !ok {
			return false, model.NewSelectionError("no document %s", s.Editor)
		}
		t, _, err := tableIn(d, s.Table)
		if err != nil {
			return false, err
		}
		for r := s.Start.Row; r <= s.End.Row; r++ {
			for c := s.Start.Col; c <= s.End.Col; c++ {
				for _, b := range t.Cell(r, c).Content.Blocks {
					if p, ok := b.(*model.Paragraph); ok {
						visit(p)
					}
				}
			}
		}
	}
	return any && all, nil
}

// tableIn locates a table block by id among a document's direct children.
func tableIn(d *model.Document, tableID string) (*model.Table, int, error) {
	i := d.IndexOf(tableID)
	if i < 0 {
		return nil, 0, model.NewSelectionError("no table %s in document %s", tableID, d.ID)
	}
	t, ok := d.Blocks[i].(*model.Table)
	if !ok {
		return nil, 0, model.NewSelectionError("block %s is not a table", tableID)
	}
	return t, i, nil
}

// ToggleInlineStyle flips an inline style over the selection with
// uniform-state semantics: when cond already holds everywhere the style
// turns off, otherwise it turns on everywhere. set applies the chosen
// state to one style.
func ToggleInlineStyle(root *model.Document, sel model.Selection, ids model.IDSource, cond StyleCond, set func(model.TextStyle, bool) model.TextStyle) (*model.Document, SelMapper, error) {
	active, err := InlineStyleActive(root, sel, cond)
	if err != nil {
		return nil, nil, err
	}
	return MapRuns(root, sel, ids, func(s model.TextStyle) model.TextStyle {
		return set(s, !active)
	})
}

// ToggleParagraphStyle is the block-level counterpart of
// ToggleInlineStyle.
func ToggleParagraphStyle(root *model.Document, sel model.Selection, cond ParagraphStyleCond, set func(model.ParagraphStyle, bool) model.ParagraphStyle) (*model.Document, SelMapper, error) {
	active, err := ParagraphStyleActive(root, sel, cond)
	if err != nil {
		return nil, nil, err
	}
	return MapParagraphs(root, sel, func(s model.ParagraphStyle) model.ParagraphStyle {
		return set(s, !active)
	})
}

// ClearFormatting strips the covered content back to plain text: run
// styles to the zero style, paragraph styles to the default.
func ClearFormatting(root *model.Document, sel model.Selection, ids model.IDSource) (*model.Document, SelMapper, error) {
	cleared, m1, err := MapRuns(root, sel, ids, func(model.TextStyle) model.TextStyle {
		return model.TextStyle{}
	})
	if err != nil {
		return nil, nil, err
	}
	newRoot, m2, err := MapParagraphs(cleared, sel, func(model.ParagraphStyle) model.ParagraphStyle {
		return model.ParagraphStyle{}
	})
	if err != nil {
		return nil, nil, err
	}
	return newRoot, Compose(m1, m2), nil
}

func orderForStyling(root *model.Document, sel model.Selection) (model.Selection, error) {
	fixed, err := model.FixSelection(root, sel)
	if err != nil {
		return nil, err
	}
	return model.OrderSelection(root, fixed)
}

// restyleRange applies fn to the runs of p inside [from, to), splitting
// runs the boundaries divide. The earliest fragment of a divided run
// keeps its id, later fragments are freshly keyed.
func restyleRange(p *model.Paragraph, from, to int, fn StyleFunc, ids model.IDSource) *model.Paragraph {
	if from >= to {
		return p
	}
	runs := make([]*model.TextRun, 0, len(p.Content)+2)
	changed := false
	start := 0
	for _, r := range p.Content {
		end := start + r.Len()
		switch {
		case end <= from || start >= to:
			runs = append(runs, r)
		case start >= from && end <= to:
			next := r.WithStyle(fn(r.Style))
			runs = append(runs, next)
			changed = changed || next != r
		default:
			lo := max(from-start, 0)
			hi := min(to-start, r.Len())
			styled := fn(r.Style)
			if styled.Eq(r.Style) {
				runs = append(runs, r)
				start = end
				continue
			}
			changed = true
			if lo > 0 {
				runs = append(runs, r.Cut(0, lo))
				runs = append(runs, model.NewTextRun(ids, cutRunText(r, lo, hi), styled))
			} else {
				runs = append(runs, r.Cut(lo, hi).WithStyle(styled))
			}
			if hi < r.Len() {
				runs = append(runs, model.NewTextRun(ids, cutRunText(r, hi, r.Len()), r.Style))
			}
		}
		start = end
	}
	if !changed {
		return p
	}
	return model.FixParagraph(p.Copy(runs), ids)
}

func cutRunText(r *model.TextRun, from, to int) string {
	return r.Cut(from, to).Text
}

// restyleAll applies fn to every run of a paragraph, the whole-block form
// used for blocks fully inside a span.
func restyleAll(p *model.Paragraph, fn StyleFunc, ids model.IDSource) *model.Paragraph {
	var runs []*model.TextRun
	for i, r := range p.Content {
		next := r.WithStyle(fn(r.Style))
		if next == r {
			continue
		}
		if runs == nil {
			runs = append([]*model.TextRun(nil), p.Content...)
		}
		runs[i] = next
	}
	if runs == nil {
		return p
	}
	return model.FixParagraph(p.Copy(runs), ids)
}

// restyleBlock restyles a block covered in full. Tables restyle every
// cell document; images and code blocks carry no text style.
func restyleBlock(b model.BlockNode, fn StyleFunc, ids model.IDSource) model.BlockNode {
	switch b := b.(type) {
	case *model.Paragraph:
		return restyleAll(b, fn, ids)
	case *model.Table:
		var rows []*model.Row
		for ri, row := range b.Rows {
			var cells []*model.Cell
			for ci, cell := range row.Cells {
				next := docRestyledAll(cell.Content, fn, ids)
				if next == cell.Content {
					continue
				}
				if cells == nil {
					cells = append([]*model.Cell(nil), row.Cells...)
				}
				cells[ci] = cell.Copy(next)
			}
			if cells == nil {
				continue
			}
			if rows == nil {
				rows = append([]*model.Row(nil), b.Rows...)
			}
			rows[ri] = row.Copy(cells)
		}
		if rows == nil {
			return b
		}
		return b.Copy(rows)
	}
	return b
}

// docRestyledAll restyles every run of a document tree, nested cell
// documents included, sharing untouched subtrees.
func docRestyledAll(d *model.Document, fn StyleFunc, ids model.IDSource) *model.Document {
	mapped, _ := model.MapDocuments(d, func(doc *model.Document, ctx *model.WalkContext) (model.WalkOp, *model.Document) {
		var blocks []model.BlockNode
		for i, b := range doc.Blocks {
			p, ok := b.(*model.Paragraph)
			if !ok {
				continue
			}
			next := restyleAll(p, fn, ids)
			if next == p {
				continue
			}
			if blocks == nil {
				blocks = append([]model.BlockNode(nil), doc.Blocks...)
			}
			blocks[i] = next
		}
		if blocks == nil {
			return model.WalkContinue, nil
		}
		return model.WalkContinue, doc.Copy(blocks)
	})
	return mapped
}

// directParagraphsRestyled restyles the direct child paragraphs of a
// document, leaving nested tables alone.
func directParagraphsRestyled(d *model.Document, fn ParagraphStyleFunc) *model.Document {
	var blocks []model.BlockNode
	for i, b := range d.Blocks {
		p, ok := b.(*model.Paragraph)
		if !ok {
			continue
		}
		next := restyledParagraph(p, fn)
		if next == p {
			continue
		}
		if blocks == nil {
			blocks = append([]model.BlockNode(nil), d.Blocks...)
		}
		blocks[i] = next
	}
	if blocks == nil {
		return d
	}
	return d.Copy(blocks)
}

func restyledParagraph(p *model.Paragraph, fn ParagraphStyleFunc) *model.Paragraph {
	next := fn(p.Style)
	if next.Eq(p.Style) {
		return p
	}
	return p.WithStyle(next)
}

// mapRectCells rewrites every cell document of an ordered rectangle with
// fn, rebuilding the table when anything changed.
func mapRectCells(root *model.Document, s model.TableSelection, fn func(*model.Document) *model.Document) (*model.Document, error) {
	d, ok := model.FindDocument(root, s.Editor)
	if !ok {
		return nil, model.NewSelectionError("no document %s", s.Editor)
	}
	t, ti, err := tableIn(d, s.Table)
	if err != nil {
		return nil, err
	}

	var rows []*model.Row
	for r := s.Start.Row; r <= s.End.Row; r++ {
		var cells []*model.Cell
		for c := s.Start.Col; c <= s.End.Col; c++ {
			cell := t.Cell(r, c)
			next := fn(cell.Content)
			if next == cell.Content {
				continue
			}
			if cells == nil {
				cells = append([]*model.Cell(nil), t.Rows[r].Cells...)
			}
			cells[c] = cell.Copy(next)
		}
		if cells == nil {
			continue
		}
		if rows == nil {
			rows = append([]*model.Row(nil), t.Rows...)
		}
		rows[r] = t.Rows[r].Copy(cells)
	}
	if rows == nil {
		return root, nil
	}
	return replaceDocument(root, d.ID, func(doc *model.Document) *model.Document {
		return doc.Copy(replaceBlock(doc.Blocks, ti, t.Copy(rows)))
	})
}

// eachCoveredRunStyle reports the style of every run a non-collapsed
// selection covers.
func eachCoveredRunStyle(root *model.Document, sel model.Selection, fn func(model.TextStyle)) error {
	switch s := sel.(type) {
	case model.BlockSelection:
		d, ok := model.FindDocument(root, s.Editor)
		if !ok {
			return model.NewSelectionError("no document %s", s.Editor)
		}
		si, startPara, so, err := resolveEndpoint(d, s.Start)
		if err != nil {
			return err
		}
		ei, endPara, eo, err := resolveEndpoint(d, s.End)
		if err != nil {
			return err
		}
		for i := si; i <= ei; i++ {
			switch {
			case i == si && si == ei && startPara != nil:
				eachRunInRange(startPara, so, eo, fn)
			case i == si && startPara != nil:
				eachRunInRange(startPara, so, startPara.Len(), fn)
			case i == ei && endPara != nil:
				eachRunInRange(endPara, 0, eo, fn)
			default:
				eachRunInBlock(d.Blocks[i], fn)
			}
		}
		return nil
	case model.TableSelection:
		d, ok := model.FindDocument(root, s.Editor)
		if !ok {
			return model.NewSelectionError("no document %s", s.Editor)
		}
		t, _, err := tableIn(d, s.Table)
		if err != nil {
			return err
		}
		for r := s.Start.Row; r <= s.End.Row; r++ {
			for c := s.Start.Col; c <= s.End.Col; c++ {
				eachRunInDoc(t.Cell(r, c).Content, fn)
			}
		}
		return nil
	}
	panic("unknown selection kind")
}

func eachRunInRange(p *model.Paragraph, from, to int, fn func(model.TextStyle)) {
	start := 0
	for _, r := range p.Content {
		end := start + r.Len()
		if end > from && start < to {
			fn(r.Style)
		}
		start = end
	}
}

func eachRunInBlock(b model.BlockNode, fn func(model.TextStyle)) {
	switch b := b.(type) {
	case *model.Paragraph:
		for _, r := range b.Content {
			fn(r.Style)
		}
	case *model.Table:
		for _, row := range b.Rows {
			for _, cell := range row.Cells {
				eachRunInDoc(cell.Content, fn)
			}
		}
	}
}

func eachRunInDoc(d *model.Document, fn func(model.TextStyle)) {
	model.EachBlock(d, func(b model.BlockNode, owner *model.Document) {
		if p, ok := b.(*model.Paragraph); ok {
			for _, r := range p.Content {
				fn(r.Style)
			}
		}
	})
}
