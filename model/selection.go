package model

// Selections come in two shapes. A BlockSelection spans a linear range of
// blocks inside one document, its endpoints sitting either at a text
// offset in a paragraph or on an opaque block as a whole. A TableSelection
// covers a rectangle of table cells. Both are small value types; edits
// never mutate them, they compute new ones.

// Point is a selection endpoint inside a document: either a TextPoint
// (paragraph id plus rune offset) or a BlockPoint naming a non-paragraph
// block selected as a unit.
type Point interface {
	point()
}

// TextPoint addresses a position inside a paragraph. Offset counts runes
// and ranges from 0 to the paragraph's length inclusive.
type TextPoint struct {
	Block  string
	Offset int
}

// BlockPoint addresses a table, image or code block as an opaque unit.
// Pointing it at a paragraph is a structural error.
type BlockPoint struct {
	Block string
}

func (TextPoint) point()  {}
func (BlockPoint) point() {}

// PointBlock returns the block id a point refers to.
func PointBlock(p Point) string {
	switch p := p.(type) {
	case TextPoint:
		return p.Block
	case BlockPoint:
		return p.Block
	}
	panic("unknown point kind")
}

// Selection is either a BlockSelection or a TableSelection.
type Selection interface {
	selection()
}

// BlockSelection is a range between two points inside the document whose
// id is Editor. Start and end are in document order only after
// OrderSelection.
type BlockSelection struct {
	Editor string
	Start  Point
	End    Point
}

// CellIndex is a cell coordinate within a table.
type CellIndex struct {
	Row, Col int
}

// TableSelection is a rectangular range of cells of one table. Editor is
// the document directly holding the table block.
type TableSelection struct {
	Editor string
	Table  string
	Start  CellIndex
	End    CellIndex
}

func (BlockSelection) selection() {}
func (TableSelection) selection() {}

// Loc pins a point to the editor it lives in. Cross-container resolution
// takes two of these and produces a well-formed selection.
type Loc struct {
	Editor string
	Point  Point
}

// Caret builds a collapsed selection at a text position.
func Caret(editor, block string, offset int) BlockSelection {
	p := TextPoint{Block: block, Offset: offset}
	return BlockSelection{Editor: editor, Start: p, End: p}
}

// SelectionEditor returns the editor id a selection lives in.
func SelectionEditor(sel Selection) string {
	switch s := sel.(type) {
	case BlockSelection:
		return s.Editor
	case TableSelection:
		return s.Editor
	}
	panic("unknown selection kind")
}

// IsCollapsed reports whether the selection is a caret: a BlockSelection
// whose endpoints are the same TextPoint. Whole-block and table selections
// always cover something, so they are never collapsed.
func IsCollapsed(sel Selection) bool {
	bs, ok := sel.(BlockSelection)
	if !ok {
		return false
	}
	start, ok := bs.Start.(TextPoint)
	if !ok {
		return false
	}
	end, ok := bs.End.(TextPoint)
	return ok && start == end
}

// Direction is the document-order relation between a selection's start and
// end.
type Direction int

const (
	Collapsed Direction = iota
	Forward
	Backward
)

// resolvedPoint is a point checked against its document: the block index
// it refers to, and for text points the validated offset.
type resolvedPoint struct {
	index  int
	text   bool
	offset int
}

func resolvePoint(d *Document, p Point) (resolvedPoint, error) {
	switch p := p.(type) {
	case TextPoint:
		para, i, err := ParagraphIn(d, p.Block)
		if err != nil {
			return resolvedPoint{}, err
		}
		if p.Offset < 0 || p.Offset > para.Len() {
			return resolvedPoint{}, NewSelectionError("offset %d out of range in paragraph %s of length %d", p.Offset, p.Block, para.Len())
		}
		return resolvedPoint{index: i, text: true, offset: p.Offset}, nil
	case BlockPoint:
		i := d.IndexOf(p.Block)
		if i < 0 {
			return resolvedPoint{}, NewSelectionError("no block %s in document %s", p.Block, d.ID)
		}
		if _, isPara := d.Blocks[i].(*Paragraph); isPara {
			return resolvedPoint{}, NewSelectionError("block point %s targets a paragraph", p.Block)
		}
		return resolvedPoint{index: i}, nil
	}
	panic("unknown point kind")
}

// DirectionOf computes the order of a selection's endpoints against the
// document. A BlockSelection is Collapsed exactly when IsCollapsed holds;
// a pair of equal block points or a single-cell table rectangle counts as
// Forward, an occupied span.
func DirectionOf(root *Document, sel Selection) (Direction, error) {
	switch s := sel.(type) {
	case BlockSelection:
		d, ok := FindDocument(root, s.Editor)
		if !ok {
			return Collapsed, NewSelectionError("no document %s", s.Editor)
		}
		start, err := resolvePoint(d, s.Start)
		if err != nil {
			return Collapsed, err
		}
		end, err := resolvePoint(d, s.End)
		if err != nil {
			return Collapsed, err
		}
		switch {
		case start.index < end.index:
			return Forward, nil
		case start.index > end.index:
			return Backward, nil
		case !start.text:
			return Forward, nil
		case start.offset < end.offset:
			return Forward, nil
		case start.offset > end.offset:
			return Backward, nil
		default:
			return Collapsed, nil
		}
	case TableSelection:
		if _, _, err := resolveTable(root, s); err != nil {
			return Collapsed, err
		}
		if s.Start.Row > s.End.Row || (s.Start.Row == s.End.Row && s.Start.Col > s.End.Col) {
			return Backward, nil
		}
		return Forward, nil
	}
	panic("unknown selection kind")
}

func resolveTable(root *Document, s TableSelection) (*Document, *Table, error) {
	d, ok := FindDocument(root, s.Editor)
	if !ok {
		return nil, nil, NewSelectionError("no document %s", s.Editor)
	}
	i := d.IndexOf(s.Table)
	if i < 0 {
		return nil, nil, NewSelectionError("no table %s in document %s", s.Table, s.Editor)
	}
	t, ok := d.Blocks[i].(*Table)
	if !ok {
		return nil, nil, NewSelectionError("block %s is not a table", s.Table)
	}
	for _, c := range []CellIndex{s.Start, s.End} {
		if !t.InBounds(c.Row, c.Col) {
			return nil, nil, NewSelectionError("cell (%d, %d) out of bounds for table %s", c.Row, c.Col, s.Table)
		}
	}
	return d, t, nil
}

// OrderSelection returns the selection with start and end in document
// order. Table rectangles normalize to their top-left and bottom-right
// corners, so ordering an anti-diagonal rectangle touches both endpoints.
// Ordering an ordered selection returns it unchanged.
func OrderSelection(root *Document, sel Selection) (Selection, error) {
	switch s := sel.(type) {
	case BlockSelection:
		dir, err := DirectionOf(root, s)
		if err != nil {
			return nil, err
		}
		if dir == Backward {
			return BlockSelection{Editor: s.Editor, Start: s.End, End: s.Start}, nil
		}
		return s, nil
	case TableSelection:
		if _, _, err := resolveTable(root, s); err != nil {
			return nil, err
		}
		start := CellIndex{Row: min(s.Start.Row, s.End.Row), Col: min(s.Start.Col, s.End.Col)}
		end := CellIndex{Row: max(s.Start.Row, s.End.Row), Col: max(s.Start.Col, s.End.Col)}
		return TableSelection{Editor: s.Editor, Table: s.Table, Start: start, End: end}, nil
	}
	panic("unknown selection kind")
}

// FixSelection canonicalizes selection shape: a BlockSelection whose two
// endpoints are the same whole-table block becomes a TableSelection
// covering every cell of that table. Everything else passes through
// unchanged.
func FixSelection(root *Document, sel Selection) (Selection, error) {
	bs, ok := sel.(BlockSelection)
	if !ok {
		return sel, nil
	}
	start, ok := bs.Start.(BlockPoint)
	if !ok {
		return sel, nil
	}
	end, ok := bs.End.(BlockPoint)
	if !ok || start.Block != end.Block {
		return sel, nil
	}
	d, found := FindDocument(root, bs.Editor)
	if !found {
		return nil, NewSelectionError("no document %s", bs.Editor)
	}
	i := d.IndexOf(start.Block)
	if i < 0 {
		return nil, NewSelectionError("no block %s in document %s", start.Block, bs.Editor)
	}
	t, ok := d.Blocks[i].(*Table)
	if !ok || len(t.Rows) == 0 {
		return sel, nil
	}
	return TableSelection{
		Editor: bs.Editor,
		Table:  t.ID,
		Start:  CellIndex{Row: 0, Col: 0},
		End:    CellIndex{Row: len(t.Rows) - 1, Col: t.NumColumns - 1},
	}, nil
}

// FindSelection builds a selection from two endpoints that may live in
// different nested documents. The ancestor chains of both editors are
// walked to their lowest common document; endpoints below it project onto
// the table block they descend through. Two endpoints descending through
// the same table in different cells become a TableSelection over the
// enclosing rectangle; otherwise the result is a BlockSelection in the
// common document. Endpoints that share no tree are a structural error.
func FindSelection(root *Document, a, b Loc) (Selection, error) {
	chainA, ok := AncestorChain(root, a.Editor)
	if !ok {
		return nil, NewSelectionError("no document %s", a.Editor)
	}
	chainB, ok := AncestorChain(root, b.Editor)
	if !ok {
		return nil, NewSelectionError("no document %s", b.Editor)
	}
	if chainA[0].Doc != chainB[0].Doc {
		return nil, NewSelectionError("selection endpoints in disjoint trees")
	}

	// Index of the last link the chains share.
	common := 0
	for common+1 < len(chainA) && common+1 < len(chainB) && chainA[common+1].Doc == chainB[common+1].Doc {
		common++
	}

	// Both endpoints descend through the same table into different cells.
	if common+1 < len(chainA) && common+1 < len(chainB) && chainA[common].Table == chainB[common].Table {
		link := chainA[common]
		return TableSelection{
			Editor: link.Doc.ID,
			Table:  link.Table.ID,
			Start:  CellIndex{Row: link.Row, Col: link.Col},
			End:    CellIndex{Row: chainB[common].Row, Col: chainB[common].Col},
		}, nil
	}

	start := projectPoint(chainA, common, a.Point)
	end := projectPoint(chainB, common, b.Point)
	return BlockSelection{Editor: chainA[common].Doc.ID, Start: start, End: end}, nil
}

// projectPoint lifts an endpoint into the chain's document at the given
// depth. An endpoint nested deeper projects onto the table block it
// descends through at that depth.
func projectPoint(chain []ChainLink, depth int, p Point) Point {
	if depth == len(chain)-1 {
		return p
	}
	return BlockPoint{Block: chain[depth].Table.ID}
}

// FullSelection spans every block of the document: from the start of the
// first block to the end of the last. Apply FixSelection to the result to
// pick up the whole-table form when the document is a single table.
func FullSelection(d *Document) Selection {
	first := d.Blocks[0]
	last := d.Blocks[len(d.Blocks)-1]
	var start, end Point
	if p, ok := first.(*Paragraph); ok {
		start = TextPoint{Block: p.ID, Offset: 0}
	} else {
		start = BlockPoint{Block: BlockID(first)}
	}
	if p, ok := last.(*Paragraph); ok {
		end = TextPoint{Block: p.ID, Offset: p.Len()}
	} else {
		end = BlockPoint{Block: BlockID(last)}
	}
	return BlockSelection{Editor: d.ID, Start: start, End: end}
}

// StyleAtPoint reports the text style a caret at the given point would
// take: the style of the character before it, or of the first run when the
// caret sits at the paragraph start. Block points carry no text style.
func StyleAtPoint(root *Document, editorID string, p Point) (TextStyle, bool) {
	tp, ok := p.(TextPoint)
	if !ok {
		return TextStyle{}, false
	}
	d, ok := FindDocument(root, editorID)
	if !ok {
		return TextStyle{}, false
	}
	para, _, err := ParagraphIn(d, tp.Block)
	if err != nil {
		return TextStyle{}, false
	}
	offset := tp.Offset
	if offset > 0 {
		offset--
	}
	if offset < 0 || offset > para.Len() {
		return TextStyle{}, false
	}
	i, _ := para.RunAt(offset)
	return para.Content[i].Style, true
}
