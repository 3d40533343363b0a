package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/notefold/richdoc-go/model"
)

// Parse converts Markdown text to a document. The dialect matches what
// Serialize emits: CommonMark plus GFM tables and strikethrough, with
// raw <u>, <sub> and <sup> tags recognized inline. Input that yields no
// blocks comes back as a single empty paragraph.
func Parse(src string, ids model.IDSource) *model.Document {
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	root := md.Parser().Parse(text.NewReader([]byte(src)))
	c := &mdConverter{src: []byte(src), ids: ids}
	var blocks []model.BlockNode
	for ch := root.FirstChild(); ch != nil; ch = ch.NextSibling() {
		blocks = append(blocks, c.block(ch, model.ParagraphStyle{})...)
	}
	if len(blocks) == 0 {
		blocks = []model.BlockNode{model.EmptyParagraph(ids)}
	}
	return model.NewDocument(ids, blocks...)
}

type mdConverter struct {
	src []byte
	ids model.IDSource
}

// block converts one parsed block node. base carries styling inherited
// from enclosing structure, which is how quote content flattens.
func (c *mdConverter) block(n ast.Node, base model.ParagraphStyle) []model.BlockNode {
	switch n := n.(type) {
	case *ast.Heading:
		st := base
		if st.Kind == model.KindDefault {
			st.Kind = headingKind(n.Level)
		}
		return c.paragraphBlocks(n, st)
	case *ast.Paragraph:
		return c.paragraphBlocks(n, base)
	case *ast.TextBlock:
		return c.paragraphBlocks(n, base)
	case *ast.Blockquote:
		q := base
		q.Kind = model.KindQuote
		var out []model.BlockNode
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			out = append(out, c.block(ch, q)...)
		}
		return out
	case *ast.List:
		return c.list(n, c.ids.NewID(), 0)
	case *ast.FencedCodeBlock:
		return []model.BlockNode{model.NewCodeBlock(c.ids, c.linesText(n), string(n.Language(c.src)))}
	case *ast.CodeBlock:
		return []model.BlockNode{model.NewCodeBlock(c.ids, c.linesText(n), "")}
	case *east.Table:
		return c.table(n)
	}
	// thematic breaks and block-level HTML have no counterpart
	return nil
}

func headingKind(level int) model.ParagraphKind {
	switch level {
	case 1:
		return model.KindHeading1
	case 2:
		return model.KindHeading2
	case 3:
		return model.KindHeading3
	}
	return model.KindHeading4
}

// paragraphBlocks converts a paragraph-shaped node. A paragraph holding
// nothing but one image becomes an image block.
func (c *mdConverter) paragraphBlocks(n ast.Node, style model.ParagraphStyle) []model.BlockNode {
	if n.ChildCount() == 1 {
		if img, ok := n.FirstChild().(*ast.Image); ok {
			return []model.BlockNode{model.NewImage(c.ids, string(img.Destination), c.plainText(img))}
		}
	}
	runs := c.inlineRuns(n, model.TextStyle{})
	if len(runs) == 0 {
		return nil
	}
	return []model.BlockNode{model.FixParagraph(model.NewParagraph(c.ids, style, runs...), c.ids)}
}

// list flattens a parsed list into paragraphs sharing one fresh list id,
// with nesting recorded as indent.
func (c *mdConverter) list(n *ast.List, listID string, depth int) []model.BlockNode {
	kind := model.KindBullet
	if n.IsOrdered() {
		kind = model.KindNumber
	}
	var out []model.BlockNode
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		for part := item.FirstChild(); part != nil; part = part.NextSibling() {
			switch part := part.(type) {
			case *ast.List:
				out = append(out, c.list(part, listID, depth+1)...)
			case *ast.TextBlock, *ast.Paragraph:
				style := model.ParagraphStyle{Kind: kind, ListID: listID, Indent: min(depth, model.MaxIndent)}
				out = append(out, c.paragraphBlocks(part, style)...)
			default:
				out = append(out, c.block(part, model.ParagraphStyle{})...)
			}
		}
	}
	return out
}

func (c *mdConverter) table(t *east.Table) []model.BlockNode {
	var grid [][]*model.Cell
	for section := t.FirstChild(); section != nil; section = section.NextSibling() {
		switch section.(type) {
		case *east.TableHeader, *east.TableRow:
			grid = append(grid, c.tableCells(section))
		}
	}
	if len(grid) == 0 {
		return nil
	}
	numCols := 0
	for _, cells := range grid {
		numCols = max(numCols, len(cells))
	}
	rows := make([]*model.Row, 0, len(grid))
	for _, cells := range grid {
		for len(cells) < numCols {
			cells = append(cells, c.emptyCell())
		}
		rows = append(rows, model.NewRow(c.ids, cells...))
	}
	return []model.BlockNode{model.NewTable(c.ids, numCols, rows...)}
}

func (c *mdConverter) tableCells(row ast.Node) []*model.Cell {
	var cells []*model.Cell
	for n := row.FirstChild(); n != nil; n = n.NextSibling() {
		cell, ok := n.(*east.TableCell)
		if !ok {
			continue
		}
		runs := c.inlineRuns(cell, model.TextStyle{})
		if len(runs) == 0 {
			cells = append(cells, c.emptyCell())
			continue
		}
		style := model.ParagraphStyle{Align: cellAlign(cell.Alignment)}
		p := model.FixParagraph(model.NewParagraph(c.ids, style, runs...), c.ids)
		cells = append(cells, model.NewCell(c.ids, model.NewDocument(c.ids, p)))
	}
	return cells
}

func (c *mdConverter) emptyCell() *model.Cell {
	return model.NewCell(c.ids, model.NewDocument(c.ids, model.EmptyParagraph(c.ids)))
}

func cellAlign(a east.Alignment) model.Alignment {
	switch a {
	case east.AlignCenter:
		return model.AlignCenter
	case east.AlignRight:
		return model.AlignRight
	}
	return model.AlignLeft
}

// inlineRuns converts the inline children of n, compounding style as it
// descends. Raw HTML tags toggle the style carried to later siblings.
func (c *mdConverter) inlineRuns(n ast.Node, style model.TextStyle) []*model.TextRun {
	var runs []*model.TextRun
	st := style
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch t := ch.(type) {
		case *ast.Text:
			txt := unescapeText(string(t.Segment.Value(c.src)))
			if t.SoftLineBreak() || t.HardLineBreak() {
				txt += " "
			}
			if txt != "" {
				runs = append(runs, model.NewTextRun(c.ids, txt, st))
			}
		case *ast.String:
			if len(t.Value) > 0 {
				runs = append(runs, model.NewTextRun(c.ids, string(t.Value), st))
			}
		case *ast.Emphasis:
			s2 := st
			if t.Level >= 2 {
				s2.Bold = true
			} else {
				s2.Italic = true
			}
			runs = append(runs, c.inlineRuns(t, s2)...)
		case *east.Strikethrough:
			s2 := st
			s2.Strikethrough = true
			runs = append(runs, c.inlineRuns(t, s2)...)
		case *ast.CodeSpan:
			s2 := st
			s2.Code = true
			if txt := c.codeSpanText(t); txt != "" {
				runs = append(runs, model.NewTextRun(c.ids, txt, s2))
			}
		case *ast.Link:
			s2 := st
			s2.Link = string(t.Destination)
			runs = append(runs, c.inlineRuns(t, s2)...)
		case *ast.AutoLink:
			s2 := st
			s2.Link = string(t.URL(c.src))
			runs = append(runs, model.NewTextRun(c.ids, string(t.Label(c.src)), s2))
		case *ast.Image:
			// inline images flatten to their caption text
			if txt := c.plainText(t); txt != "" {
				runs = append(runs, model.NewTextRun(c.ids, txt, st))
			}
		case *ast.RawHTML:
			st = applyRawTag(st, c.rawText(t))
		default:
			runs = append(runs, c.inlineRuns(ch, st)...)
		}
	}
	return runs
}

// applyRawTag interprets the raw inline tags the serializer emits for
// formatting Markdown has no syntax of its own for. Unknown tags leave
// the style alone and drop from the text.
func applyRawTag(st model.TextStyle, tag string) model.TextStyle {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "<u>":
		st.Underline = true
	case "</u>":
		st.Underline = false
	case "<sub>":
		st.Script = model.ScriptSub
	case "<sup>":
		st.Script = model.ScriptSuper
	case "</sub>", "</sup>":
		st.Script = model.ScriptNone
	}
	return st
}

// codeSpanText gathers a code span's text. One space of padding strips
// from each edge when both are spaces, matching the delimiter padding
// the serializer adds around backtick-bearing code.
func (c *mdConverter) codeSpanText(t *ast.CodeSpan) string {
	var b strings.Builder
	for ch := t.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if seg, ok := ch.(*ast.Text); ok {
			b.Write(seg.Segment.Value(c.src))
		}
	}
	s := strings.ReplaceAll(b.String(), "\n", " ")
	if len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.TrimSpace(s) != "" {
		s = s[1 : len(s)-1]
	}
	return s
}

func (c *mdConverter) plainText(n ast.Node) string {
	var b strings.Builder
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch t := ch.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(c.src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(c.plainText(ch))
		}
	}
	return unescapeText(b.String())
}

func (c *mdConverter) rawText(t *ast.RawHTML) string {
	var b strings.Builder
	for i := 0; i < t.Segments.Len(); i++ {
		seg := t.Segments.At(i)
		b.Write(seg.Value(c.src))
	}
	return b.String()
}

func (c *mdConverter) linesText(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

const markdownPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// unescapeText resolves backslash escapes. The parser hands out raw
// source segments, so escaped punctuation still carries its backslash.
func unescapeText(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(markdownPunct, s[i+1]) >= 0 {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
