package model

// BlockLocation is the address of a block somewhere in the tree: the
// document that directly holds it and its index there.
type BlockLocation struct {
	Doc   *Document
	Index int
	Block BlockNode
}

type findCacheElement struct {
	root *Document
	id   string
	loc  BlockLocation
}

var findCache = []findCacheElement{}
var findCachePos = 0

const findCacheSize = 12

// FindBlock locates the block with the given id anywhere in the tree,
// nested cell documents included. Lookups against the same root are cached
// in a small ring; trees are persistent, so a stale entry can never match
// a new root.
func FindBlock(root *Document, blockID string) (BlockLocation, bool) {
	for _, elt := range findCache {
		if elt.root == root && elt.id == blockID {
			return elt.loc, true
		}
	}
	var loc BlockLocation
	found := false
	Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		if i := d.IndexOf(blockID); i >= 0 {
			loc = BlockLocation{Doc: d, Index: i, Block: d.Blocks[i]}
			found = true
			return WalkStop, nil
		}
		return WalkContinue, nil
	})
	if found {
		elt := findCacheElement{root: root, id: blockID, loc: loc}
		if len(findCache) < findCacheSize {
			findCache = append(findCache, elt)
		} else {
			findCache[findCachePos] = elt
			findCachePos = (findCachePos + 1) % findCacheSize
		}
	}
	return loc, found
}

// FindDocument locates the document (root or cell content) with the given
// editor id.
func FindDocument(root *Document, editorID string) (*Document, bool) {
	var target *Document
	Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		if d.ID == editorID {
			target = d
			return WalkStop, nil
		}
		return WalkContinue, nil
	})
	return target, target != nil
}

// FindParagraph locates a paragraph by id anywhere in the tree.
func FindParagraph(root *Document, blockID string) (*Paragraph, *Document, bool) {
	loc, ok := FindBlock(root, blockID)
	if !ok {
		return nil, nil, false
	}
	p, ok := loc.Block.(*Paragraph)
	if !ok {
		return nil, nil, false
	}
	return p, loc.Doc, true
}

// ParagraphIn returns the paragraph with the given id among the direct
// children of a document, with its index. A missing id or a block of
// another kind yields a SelectionError; selections are validated at this
// boundary instead of deeper in the edit code.
func ParagraphIn(d *Document, blockID string) (*Paragraph, int, error) {
	i := d.IndexOf(blockID)
	if i < 0 {
		return nil, -1, NewSelectionError("no block %s in document %s", blockID, d.ID)
	}
	p, ok := d.Blocks[i].(*Paragraph)
	if !ok {
		return nil, -1, NewSelectionError("block %s is not a paragraph", blockID)
	}
	return p, i, nil
}

// ChainLink is one step of an ancestor chain. Doc is the document at this
// level; for every link but the last, Table and the cell coordinates name
// where the next link's document is nested.
type ChainLink struct {
	Doc      *Document
	Table    *Table
	Row, Col int
}

// AncestorChain returns the chain of documents leading from the root down
// to the document with the given editor id, root first. The last link is
// the target document itself. Cross-container selection resolution walks
// two of these chains to find the lowest common document.
func AncestorChain(root *Document, editorID string) ([]ChainLink, bool) {
	parents := map[string]*WalkContext{}
	var target *Document
	Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		parents[d.ID] = ctx
		if d.ID == editorID {
			target = d
			return WalkStop, nil
		}
		return WalkContinue, nil
	})
	if target == nil {
		return nil, false
	}
	chain := []ChainLink{{Doc: target}}
	cur := target
	for {
		ctx := parents[cur.ID]
		if ctx.Parent == nil {
			break
		}
		link := ChainLink{Doc: ctx.Parent, Table: ctx.Table, Row: ctx.Row, Col: ctx.Col}
		chain = append([]ChainLink{link}, chain...)
		cur = ctx.Parent
	}
	return chain, true
}

// CollectIDs gathers every id in the tree: documents, blocks, rows, cells
// and runs. Global id uniqueness is an invariant of the model; the tests
// assert it with this, and edit mappers use it to recognize positions
// inside removed subtrees.
func CollectIDs(root *Document) map[string]bool {
	out := map[string]bool{}
	Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		out[d.ID] = true
		return WalkContinue, nil
	}, func(b BlockNode, owner *Document) {
		out[BlockID(b)] = true
		switch b := b.(type) {
		case *Paragraph:
			for _, r := range b.Content {
				out[r.ID] = true
			}
		case *Table:
			for _, row := range b.Rows {
				out[row.ID] = true
				for _, cell := range row.Cells {
					out[cell.ID] = true
				}
			}
		}
	})
	return out
}

// ReassignIDs rebuilds the tree with every id replaced by a fresh one from
// the given source. Content arriving from outside the engine (paste,
// import) passes through here, since foreign ids are never trusted to be
// unique against the receiving document. List grouping survives: each
// distinct incoming listId maps to one fresh id.
func ReassignIDs(root *Document, ids IDSource) *Document {
	lists := map[string]string{}
	return reassignDoc(root, ids, lists)
}

func reassignDoc(d *Document, ids IDSource, lists map[string]string) *Document {
	blocks := make([]BlockNode, len(d.Blocks))
	for i, b := range d.Blocks {
		blocks[i] = reassignBlock(b, ids, lists)
	}
	return &Document{ID: ids.NewID(), Blocks: blocks}
}

func reassignBlock(b BlockNode, ids IDSource, lists map[string]string) BlockNode {
	switch b := b.(type) {
	case *Paragraph:
		style := b.Style
		if style.ListID != "" {
			mapped, ok := lists[style.ListID]
			if !ok {
				mapped = ids.NewID()
				lists[style.ListID] = mapped
			}
			style.ListID = mapped
		}
		runs := make([]*TextRun, len(b.Content))
		for i, r := range b.Content {
			runs[i] = &TextRun{ID: ids.NewID(), Text: r.Text, Style: r.Style}
		}
		return &Paragraph{ID: ids.NewID(), Style: style, Content: runs}
	case *Table:
		rows := make([]*Row, len(b.Rows))
		for i, row := range b.Rows {
			cells := make([]*Cell, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = &Cell{ID: ids.NewID(), Content: reassignDoc(cell.Content, ids, lists)}
			}
			rows[i] = &Row{ID: ids.NewID(), Cells: cells}
		}
		return &Table{ID: ids.NewID(), Rows: rows, NumColumns: b.NumColumns}
	case *Image:
		return &Image{ID: ids.NewID(), Src: b.Src, Caption: b.Caption}
	case *CodeBlock:
		return &CodeBlock{ID: ids.NewID(), Code: b.Code, Language: b.Language}
	}
	panic("unknown block node")
}

// NumberListItems computes the ordinal shown before every numbered list
// paragraph, keyed by paragraph id. Counting is scoped per owning document
// and per listId; a deeper indent opens a sub-counter and returning to a
// shallower level resumes the outer count. Intervening blocks of other
// kinds do not interrupt a list, matching the logical-list rule.
func NumberListItems(root *Document) map[string]int {
	ordinals := map[string]int{}
	counters := map[string]map[string][]int{}
	EachBlock(root, func(b BlockNode, owner *Document) {
		p, ok := b.(*Paragraph)
		if !ok || p.Style.Kind != KindNumber {
			return
		}
		byList := counters[owner.ID]
		if byList == nil {
			byList = map[string][]int{}
			counters[owner.ID] = byList
		}
		stack := byList[p.Style.ListID]
		level := p.Style.Indent
		if len(stack) > level+1 {
			stack = stack[:level+1]
		}
		for len(stack) <= level {
			stack = append(stack, 0)
		}
		stack[level]++
		byList[p.Style.ListID] = stack
		ordinals[p.ID] = stack[level]
	})
	return ordinals
}
