package model

import "strings"

// Text renders the document as plain text, the form used by copy-as-text.
// Blocks are joined with newlines. A table renders its rows joined with
// newlines and the cells of a row joined with tabs, recursing into cell
// documents. Images render their caption, code blocks their code.
func Text(d *Document) string {
	parts := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		parts[i] = BlockText(b)
	}
	return strings.Join(parts, "\n")
}

// BlockText renders one block as plain text.
func BlockText(b BlockNode) string {
	switch b := b.(type) {
	case *Paragraph:
		return b.TextContent()
	case *Image:
		return b.Caption
	case *CodeBlock:
		return b.Code
	case *Table:
		rows := make([]string, len(b.Rows))
		for i, row := range b.Rows {
			cells := make([]string, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = Text(cell.Content)
			}
			rows[i] = strings.Join(cells, "\t")
		}
		return strings.Join(rows, "\n")
	}
	panic("unknown block node")
}

// PointTextOffset maps a text point in a direct child paragraph of d to
// its rune offset within Text(d). Extraction and rendering agree on this
// mapping, which the tests lean on.
func PointTextOffset(d *Document, p TextPoint) (int, bool) {
	offset := 0
	for _, b := range d.Blocks {
		if BlockID(b) == p.Block {
			if _, ok := b.(*Paragraph); !ok {
				return 0, false
			}
			return offset + p.Offset, true
		}
		offset += runeLen(BlockText(b)) + 1
	}
	return 0, false
}
