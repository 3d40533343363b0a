package transform

import "github.com/notefold/richdoc-go/model"

// ExtractSelection returns the content a selection covers as a standalone
// document, leaving the tree untouched. Boundary paragraphs are cut to
// the selected range; blocks fully inside the span are shared with the
// source tree, ids included, so extraction is cheap. Content that leaves
// the engine and comes back gets re-keyed on the way in, not here.
//
// A table rectangle extracts as a document holding one table of the
// rectangle's dimensions, sharing the covered cells.
func ExtractSelection(root *model.Document, sel model.Selection, ids model.IDSource) (*model.Document, error) {
	fixed, err := model.FixSelection(root, sel)
	if err != nil {
		return nil, err
	}
	ordered, err := model.OrderSelection(root, fixed)
	if err != nil {
		return nil, err
	}
	switch s := ordered.(type) {
	case model.BlockSelection:
		return extractBlockSelection(root, s, ids)
	case model.TableSelection:
		return extractTableSelection(root, s, ids)
	}
	panic("unknown selection kind")
}

func extractBlockSelection(root *model.Document, s model.BlockSelection, ids model.IDSource) (*model.Document, error) {
	if model.IsCollapsed(s) {
		return model.NewDocument(ids), nil
	}
	d, ok := model.FindDocument(root, s.Editor)
	if !ok {
		return nil, model.NewSelectionError("no document %s", s.Editor)
	}
	si, startPara, so, err := resolveEndpoint(d, s.Start)
	if err != nil {
		return nil, err
	}
	ei, endPara, eo, err := resolveEndpoint(d, s.End)
	if err != nil {
		return nil, err
	}

	if si == ei {
		if startPara != nil {
			return model.NewDocument(ids, model.FixParagraph(startPara.Cut(so, eo), ids)), nil
		}
		return model.NewDocument(ids, d.Blocks[si]), nil
	}

	blocks := make([]model.BlockNode, 0, ei-si+1)
	if startPara != nil {
		blocks = append(blocks, model.FixParagraph(startPara.Cut(so), ids))
	} else {
		blocks = append(blocks, d.Blocks[si])
	}
	blocks = append(blocks, d.Blocks[si+1:ei]...)
	if endPara != nil {
		blocks = append(blocks, model.FixParagraph(endPara.Cut(0, eo), ids))
	} else {
		blocks = append(blocks, d.Blocks[ei])
	}
	return model.NewDocument(ids, blocks...), nil
}

func extractTableSelection(root *model.Document, s model.TableSelection, ids model.IDSource) (*model.Document, error) {
	d, ok := model.FindDocument(root, s.Editor)
	if !ok {
		return nil, model.NewSelectionError("no document %s", s.Editor)
	}
	t, _, err := tableIn(d, s.Table)
	if err != nil {
		return nil, err
	}

	width := s.End.Col - s.Start.Col + 1
	rows := make([]*model.Row, 0, s.End.Row-s.Start.Row+1)
	for r := s.Start.Row; r <= s.End.Row; r++ {
		row := t.Rows[r]
		rows = append(rows, row.Copy(row.Cells[s.Start.Col:s.End.Col+1]))
	}
	return model.NewDocument(ids, model.NewTable(ids, width, rows...)), nil
}
