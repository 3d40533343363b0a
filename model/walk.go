package model

// The document-of-documents is traversed in one place. Every edit, lookup
// and rendering helper is built on the walk below, so path rebuilding and
// structural sharing are implemented once instead of once per operation.

// WalkContext describes where the visited sub-document hangs in the tree.
// The zero context marks the root document.
type WalkContext struct {
	// The document that owns the table the visited document is nested in.
	Parent *Document
	// The table and cell holding the visited document.
	Table *Table
	Cell  *Cell
	// Cell coordinates within the table.
	Row, Col int
}

// WalkOp is a visitor's verdict on how the traversal should continue.
type WalkOp int

const (
	// WalkContinue descends into the sub-document's nested documents.
	WalkContinue WalkOp = iota
	// WalkPrune skips everything nested beneath the visited document but
	// keeps traversing its siblings.
	WalkPrune
	// WalkStop halts the traversal. A replacement returned together with
	// the stop is still applied.
	WalkStop
)

// Visitor is called for the root document and for every cell document,
// depth-first in document order. In mapping mode it may return a
// replacement for the visited document; the walk then rebuilds the
// cell, row, table and ancestor documents along the path while sharing
// every untouched sibling with the old tree. A read-only walk panics on a
// replacement, since silently dropping an edit would hide a bug.
type Visitor func(doc *Document, ctx *WalkContext) (WalkOp, *Document)

// BlockFunc observes physical block nodes together with their owning
// document. It is a side channel of the walk: it keeps firing for the
// remainder of the tree even after the visitor stops or prunes, which
// whole-tree scans like list numbering depend on.
type BlockFunc func(block BlockNode, owner *Document)

// Walk traverses the tree read-only. Either callback may be nil. It
// reports whether the visitor stopped the traversal early.
func Walk(root *Document, visit Visitor, onBlock ...BlockFunc) bool {
	w := &walker{visit: visit}
	if len(onBlock) > 0 {
		w.onBlock = onBlock[0]
	}
	w.walkDoc(root, &WalkContext{}, true)
	return w.stopped
}

// EachBlock invokes fn once for every block in the tree, nested cell
// documents included, in document order.
func EachBlock(root *Document, fn BlockFunc) {
	Walk(root, nil, fn)
}

// MapDocuments traverses the tree in mapping mode and returns the rebuilt
// root. When no visitor call returns a replacement the original root comes
// back unchanged. The boolean reports an early stop, mirroring Walk.
func MapDocuments(root *Document, visit Visitor, onBlock ...BlockFunc) (*Document, bool) {
	w := &walker{visit: visit, mapping: true}
	if len(onBlock) > 0 {
		w.onBlock = onBlock[0]
	}
	mapped := w.walkDoc(root, &WalkContext{}, true)
	return mapped, w.stopped
}

type walker struct {
	visit   Visitor
	onBlock BlockFunc
	mapping bool
	stopped bool
}

// walkDoc visits one sub-document and then its nested cell documents.
// visitEnabled is false beneath a pruned document; the walk still descends
// there when a block callback needs to see the whole tree.
func (w *walker) walkDoc(doc *Document, ctx *WalkContext, visitEnabled bool) *Document {
	if visitEnabled && !w.stopped && w.visit != nil {
		op, repl := w.visit(doc, ctx)
		if repl != nil {
			if !w.mapping {
				panic("walk: replacement returned by a read-only walk")
			}
			doc = repl
		}
		switch op {
		case WalkStop:
			w.stopped = true
		case WalkPrune:
			visitEnabled = false
		}
	}
	if w.stopped && w.onBlock == nil {
		return doc
	}

	var blocks []BlockNode
	for i, b := range doc.Blocks {
		if w.onBlock != nil {
			w.onBlock(b, doc)
		}
		t, ok := b.(*Table)
		if !ok {
			continue
		}
		mapped := w.walkTable(t, doc, visitEnabled)
		if mapped != t {
			if blocks == nil {
				blocks = append([]BlockNode(nil), doc.Blocks...)
			}
			blocks[i] = mapped
		}
		if w.stopped && w.onBlock == nil {
			break
		}
	}
	if blocks != nil {
		doc = doc.Copy(blocks)
	}
	return doc
}

func (w *walker) walkTable(t *Table, owner *Document, visitEnabled bool) *Table {
	var rows []*Row
	for ri, row := range t.Rows {
		var cells []*Cell
		for ci, cell := range row.Cells {
			ctx := &WalkContext{Parent: owner, Table: t, Cell: cell, Row: ri, Col: ci}
			mapped := w.walkDoc(cell.Content, ctx, visitEnabled)
			if mapped != cell.Content {
				if cells == nil {
					cells = append([]*Cell(nil), row.Cells...)
				}
				cells[ci] = cell.Copy(mapped)
			}
			if w.stopped && w.onBlock == nil {
				break
			}
		}
		if cells != nil {
			if rows == nil {
				rows = append([]*Row(nil), t.Rows...)
			}
			rows[ri] = row.Copy(cells)
		}
		if w.stopped && w.onBlock == nil {
			break
		}
	}
	if rows != nil {
		return t.Copy(rows)
	}
	return t
}
