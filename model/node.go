package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// A Document is the root of a rich-text tree and also the content of every
// table cell, so documents nest through tables to arbitrary depth. The id
// doubles as the editor id that selections refer to.
//
// Documents are persistent data structures. Instead of changing them, you
// create new ones with the content you want. Old ones keep pointing at the
// old shape, which stays cheap because untouched blocks are shared between
// the old and new trees.
//
// Do not mutate a Document or any node reachable from it.
type Document struct {
	ID     string
	Blocks []BlockNode
}

// BlockNode is one of *Paragraph, *Table, *Image or *CodeBlock. The set is
// closed; code that walks blocks switches over these four and treats any
// other value as a programming error.
type BlockNode interface {
	block()
}

// A Paragraph is the only block that carries inline content. Its runs are
// kept canonical by FixParagraph: at least one run, no empty runs unless the
// paragraph itself is empty, no two adjacent runs with equal styles.
type Paragraph struct {
	ID      string
	Style   ParagraphStyle
	Content []*TextRun
}

// A Table block. Cells own full sub-documents, so anything that fits in a
// document fits in a cell, further tables included. NumColumns is the
// declared width; every row holds exactly that many cells.
type Table struct {
	ID         string
	Rows       []*Row
	NumColumns int
}

// A Row of table cells.
type Row struct {
	ID    string
	Cells []*Cell
}

// A Cell holds a nested document. Selections inside the cell name that
// document's id as their editor.
type Cell struct {
	ID      string
	Content *Document
}

// An Image block. The engine stores the reference and caption only;
// fetching and rendering belong to the presentation layer.
type Image struct {
	ID      string
	Src     string
	Caption string
}

// A CodeBlock holds preformatted text outside the paragraph styling system.
type CodeBlock struct {
	ID       string
	Code     string
	Language string
}

func (*Paragraph) block() {}
func (*Table) block()     {}
func (*Image) block()     {}
func (*CodeBlock) block() {}

// A TextRun is the leaf inline node: a string of text with one style
// applied to all of it. Offsets into a paragraph count runes, so a run's
// length is its rune count, not its byte count.
type TextRun struct {
	ID    string
	Text  string
	Style TextStyle
}

// NewDocument is the constructor for Document. With no blocks it creates a
// document holding a single empty paragraph, so there is always a place to
// put a caret.
func NewDocument(ids IDSource, blocks ...BlockNode) *Document {
	if len(blocks) == 0 {
		blocks = []BlockNode{EmptyParagraph(ids)}
	}
	return &Document{ID: ids.NewID(), Blocks: blocks}
}

// NewParagraph is the constructor for Paragraph. With no runs it creates
// the canonical empty paragraph, a single empty run.
func NewParagraph(ids IDSource, style ParagraphStyle, runs ...*TextRun) *Paragraph {
	style.Indent = clampIndent(style.Indent)
	if len(runs) == 0 {
		runs = []*TextRun{NewTextRun(ids, "", TextStyle{})}
	}
	return &Paragraph{ID: ids.NewID(), Style: style, Content: runs}
}

// EmptyParagraph creates a default-styled paragraph with one empty run.
func EmptyParagraph(ids IDSource) *Paragraph {
	return NewParagraph(ids, ParagraphStyle{})
}

// NewTextRun is the constructor for TextRun.
func NewTextRun(ids IDSource, text string, style TextStyle) *TextRun {
	return &TextRun{ID: ids.NewID(), Text: text, Style: style}
}

// NewTable is the constructor for Table. Rows shorter than numColumns are
// padded with empty cells; longer rows are a programming error.
func NewTable(ids IDSource, numColumns int, rows ...*Row) *Table {
	if numColumns < 1 {
		panic(fmt.Sprintf("invalid table width %d", numColumns))
	}
	padded := make([]*Row, len(rows))
	for i, row := range rows {
		if len(row.Cells) > numColumns {
			panic(fmt.Sprintf("row %d has %d cells, table width is %d", i, len(row.Cells), numColumns))
		}
		cells := row.Cells
		for len(cells) < numColumns {
			cells = append(cells, NewCell(ids, NewDocument(ids)))
		}
		padded[i] = row.Copy(cells)
	}
	return &Table{ID: ids.NewID(), Rows: padded, NumColumns: numColumns}
}

// NewRow is the constructor for Row.
func NewRow(ids IDSource, cells ...*Cell) *Row {
	return &Row{ID: ids.NewID(), Cells: cells}
}

// NewCell is the constructor for Cell.
func NewCell(ids IDSource, content *Document) *Cell {
	return &Cell{ID: ids.NewID(), Content: content}
}

// NewImage is the constructor for Image.
func NewImage(ids IDSource, src, caption string) *Image {
	return &Image{ID: ids.NewID(), Src: src, Caption: caption}
}

// NewCodeBlock is the constructor for CodeBlock.
func NewCodeBlock(ids IDSource, code, language string) *CodeBlock {
	return &CodeBlock{ID: ids.NewID(), Code: code, Language: language}
}

// BlockID returns the id of any block node.
func BlockID(b BlockNode) string {
	switch b := b.(type) {
	case *Paragraph:
		return b.ID
	case *Table:
		return b.ID
	case *Image:
		return b.ID
	case *CodeBlock:
		return b.ID
	}
	panic(fmt.Sprintf("unknown block node %T", b))
}

// BlockEq tests whether two blocks represent the same piece of document.
// Ids are not compared; see Eq on Document.
func BlockEq(a, b BlockNode) bool {
	if a == b {
		return true
	}
	switch a := a.(type) {
	case *Paragraph:
		b, ok := b.(*Paragraph)
		return ok && a.Eq(b)
	case *Table:
		b, ok := b.(*Table)
		return ok && a.Eq(b)
	case *Image:
		b, ok := b.(*Image)
		return ok && a.Src == b.Src && a.Caption == b.Caption
	case *CodeBlock:
		b, ok := b.(*CodeBlock)
		return ok && a.Code == b.Code && a.Language == b.Language
	}
	panic(fmt.Sprintf("unknown block node %T", a))
}

// BlockCount returns the number of blocks in the document.
func (d *Document) BlockCount() int {
	return len(d.Blocks)
}

// Block returns the block at the given index. Panics when the index is out
// of range.
func (d *Document) Block(index int) BlockNode {
	if index < 0 || index >= len(d.Blocks) {
		panic(fmt.Sprintf("block index %d out of range (document has %d blocks)", index, len(d.Blocks)))
	}
	return d.Blocks[index]
}

// IndexOf returns the index of the block with the given id, or -1 when no
// block of this document carries it. Only direct children are considered;
// use FindBlock for deep lookup.
func (d *Document) IndexOf(blockID string) int {
	for i, b := range d.Blocks {
		if BlockID(b) == blockID {
			return i
		}
	}
	return -1
}

// Copy creates a new document with the same id, containing the given
// blocks. This is the copy-on-write primitive the traversal engine builds
// rewritten paths from.
func (d *Document) Copy(blocks []BlockNode) *Document {
	return &Document{ID: d.ID, Blocks: blocks}
}

// Eq tests whether two documents have the same content. Ids are ignored so
// that documents built independently can be compared structurally.
func (d *Document) Eq(other *Document) bool {
	if d == other {
		return true
	}
	if len(d.Blocks) != len(other.Blocks) {
		return false
	}
	for i, b := range d.Blocks {
		if !BlockEq(b, other.Blocks[i]) {
			return false
		}
	}
	return true
}

func (d *Document) String() string {
	parts := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		switch b := b.(type) {
		case *Paragraph:
			parts[i] = b.String()
		case *Table:
			parts[i] = fmt.Sprintf("table(%dx%d)", len(b.Rows), b.NumColumns)
		case *Image:
			parts[i] = fmt.Sprintf("image(%q)", b.Src)
		case *CodeBlock:
			parts[i] = fmt.Sprintf("code(%q)", b.Code)
		}
	}
	return "doc(" + strings.Join(parts, ", ") + ")"
}

// Len returns the paragraph's length in runes, summed over its runs. Valid
// text offsets into the paragraph are 0 through Len inclusive.
func (p *Paragraph) Len() int {
	n := 0
	for _, r := range p.Content {
		n += r.Len()
	}
	return n
}

// TextContent concatenates the text of all runs.
func (p *Paragraph) TextContent() string {
	var sb strings.Builder
	for _, r := range p.Content {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Copy creates a new paragraph with the same id and style, containing the
// given runs.
func (p *Paragraph) Copy(runs []*TextRun) *Paragraph {
	return &Paragraph{ID: p.ID, Style: p.Style, Content: runs}
}

// WithStyle creates a new paragraph with the same id and content and the
// given style.
func (p *Paragraph) WithStyle(style ParagraphStyle) *Paragraph {
	style.Indent = clampIndent(style.Indent)
	return &Paragraph{ID: p.ID, Style: style, Content: p.Content}
}

// Eq tests whether two paragraphs have the same style and content, ids
// aside.
func (p *Paragraph) Eq(other *Paragraph) bool {
	if p == other {
		return true
	}
	if !p.Style.Eq(other.Style) || len(p.Content) != len(other.Content) {
		return false
	}
	for i, r := range p.Content {
		if !r.Eq(other.Content[i]) {
			return false
		}
	}
	return true
}

func (p *Paragraph) String() string {
	parts := make([]string, len(p.Content))
	for i, r := range p.Content {
		parts[i] = fmt.Sprintf("%q", r.Text)
	}
	return "paragraph(" + strings.Join(parts, ", ") + ")"
}

// RunAt locates the run containing the given text offset. It returns the
// run index and the offset at which that run starts. An offset equal to the
// paragraph length lands in the last run. Panics when the offset is outside
// the paragraph.
func (p *Paragraph) RunAt(offset int) (index, runStart int) {
	if offset < 0 || offset > p.Len() {
		panic(fmt.Sprintf("offset %d out of range (paragraph length %d)", offset, p.Len()))
	}
	start := 0
	for i, r := range p.Content {
		end := start + r.Len()
		if offset < end || i == len(p.Content)-1 {
			return i, start
		}
		start = end
	}
	return 0, 0
}

// Cut returns the sub-range [from, to) of the paragraph as a new paragraph
// with the same id and style. Runs that survive whole are shared; runs cut
// at a boundary keep their ids, since each source run contributes at most
// one fragment to a contiguous cut.
func (p *Paragraph) Cut(from int, to ...int) *Paragraph {
	end := p.Len()
	if len(to) > 0 {
		end = to[0]
	}
	if from < 0 || end > p.Len() || from > end {
		panic(fmt.Sprintf("invalid cut [%d, %d) on paragraph of length %d", from, end, p.Len()))
	}
	if from == 0 && end == p.Len() {
		return p
	}
	var runs []*TextRun
	start := 0
	for _, r := range p.Content {
		runEnd := start + r.Len()
		if runEnd > from && start < end {
			lo, hi := from-start, end-start
			if lo < 0 {
				lo = 0
			}
			if hi > r.Len() {
				hi = r.Len()
			}
			runs = append(runs, r.Cut(lo, hi))
		}
		start = runEnd
	}
	return p.Copy(runs)
}

// Len returns the run's length in runes.
func (r *TextRun) Len() int {
	return utf8.RuneCountInString(r.Text)
}

// Eq tests whether two runs have the same text and style, ids aside.
func (r *TextRun) Eq(other *TextRun) bool {
	return r == other || (r.Text == other.Text && r.Style.Eq(other.Style))
}

// Copy creates a new run with the same id and style and the given text.
func (r *TextRun) Copy(text string) *TextRun {
	return &TextRun{ID: r.ID, Text: text, Style: r.Style}
}

// Cut returns the rune range [from, to) of the run as a new run with the
// same id and style. Cutting the whole run returns the run itself.
func (r *TextRun) Cut(from, to int) *TextRun {
	if from == 0 && to == r.Len() {
		return r
	}
	return r.Copy(cutRunes(r.Text, from, to))
}

// WithStyle creates a new run with the same id and text and the given
// style. Restyling keeps identity; the run is still the same piece of text.
func (r *TextRun) WithStyle(style TextStyle) *TextRun {
	if style.Eq(r.Style) {
		return r
	}
	return &TextRun{ID: r.ID, Text: r.Text, Style: style}
}

// Copy creates a new row with the same id, containing the given cells.
func (row *Row) Copy(cells []*Cell) *Row {
	return &Row{ID: row.ID, Cells: cells}
}

// Copy creates a new cell with the same id, containing the given document.
func (c *Cell) Copy(content *Document) *Cell {
	return &Cell{ID: c.ID, Content: content}
}

// Copy creates a new table with the same id and width, containing the given
// rows.
func (t *Table) Copy(rows []*Row) *Table {
	return &Table{ID: t.ID, Rows: rows, NumColumns: t.NumColumns}
}

// Eq tests whether two tables have the same shape and cell contents, ids
// aside.
func (t *Table) Eq(other *Table) bool {
	if t == other {
		return true
	}
	if t.NumColumns != other.NumColumns || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i, row := range t.Rows {
		for j, cell := range row.Cells {
			if !cell.Content.Eq(other.Rows[i].Cells[j].Content) {
				return false
			}
		}
	}
	return true
}

// InBounds reports whether the cell coordinate is inside the table.
func (t *Table) InBounds(row, col int) bool {
	return row >= 0 && row < len(t.Rows) && col >= 0 && col < t.NumColumns
}

// Cell returns the cell at the given coordinate. Panics when the coordinate
// is out of bounds; selection invariants guarantee in-bounds coordinates,
// so a violation is a programming error.
func (t *Table) Cell(row, col int) *Cell {
	if !t.InBounds(row, col) {
		panic(fmt.Sprintf("cell (%d, %d) out of bounds for table %dx%d", row, col, len(t.Rows), t.NumColumns))
	}
	return t.Rows[row].Cells[col]
}

// cutRunes slices a string by rune offsets.
func cutRunes(s string, from, to int) string {
	if from == to {
		return ""
	}
	runes := []rune(s)
	if from < 0 || to > len(runes) || from > to {
		panic(fmt.Sprintf("invalid rune range [%d, %d) on string of length %d", from, to, len(runes)))
	}
	return string(runes[from:to])
}

// runeLen returns the rune count of a string.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
