package clipboard

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/notefold/richdoc-go/model"
)

// Read recovers a document from pasted HTML. Markup carrying the DataAttr
// marker yields the exact copied document; foreign markup is converted
// block by block. The result is keyed entirely from ids so it can be
// inserted into any tree. The boolean is false when the markup holds
// nothing a document could be built from, which is not an error.
func Read(src string, ids model.IDSource) (*model.Document, bool) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, false
	}
	if raw, ok := findMarker(root); ok {
		if d, ok := decodeMarker(raw); ok {
			return model.ReassignIDs(d, ids), true
		}
	}
	body := findElement(root, atom.Body)
	if body == nil {
		body = root
	}
	c := &converter{ids: ids}
	c.blocks(body)
	if len(c.out) == 0 {
		return nil, false
	}
	return model.NewDocument(ids, c.out...), true
}

// ReadText builds a document from the plain-text clipboard flavor. Lines
// become paragraphs, blank lines become empty paragraphs, and one
// trailing newline is not counted as a line of its own.
func ReadText(text string, ids model.IDSource) (*model.Document, bool) {
	if text == "" {
		return nil, false
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	blocks := []model.BlockNode{}
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			blocks = append(blocks, model.EmptyParagraph(ids))
			continue
		}
		blocks = append(blocks, model.NewParagraph(ids, model.ParagraphStyle{},
			model.NewTextRun(ids, line, model.TextStyle{})))
	}
	return model.NewDocument(ids, blocks...), true
}

func findMarker(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == DataAttr {
				return a.Val, true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v, ok := findMarker(c); ok {
			return v, true
		}
	}
	return "", false
}

// decodeMarker rebuilds the document carried in the marker attribute. A
// marker that does not decode is skipped rather than failed on; the
// fallback conversion still yields a usable paste.
func decodeMarker(raw string) (*model.Document, bool) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, false
	}
	d, err := model.DocumentFromJSON(obj)
	if err != nil {
		return nil, false
	}
	return d, true
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// converter accumulates blocks while walking foreign markup.
type converter struct {
	ids model.IDSource
	out []model.BlockNode
}

// blocks converts the children of a container, folding runs of loose
// inline content into paragraphs of their own.
func (c *converter) blocks(n *html.Node) {
	var inline []*html.Node
	flush := func() {
		if len(inline) == 0 {
			return
		}
		runs := c.tidyRuns(c.runsOf(inline, model.TextStyle{}))
		if len(runs) > 0 {
			c.out = append(c.out, model.FixParagraph(
				model.NewParagraph(c.ids, model.ParagraphStyle{}, runs...), c.ids))
		}
		inline = nil
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if isInline(ch) {
			inline = append(inline, ch)
			continue
		}
		flush()
		c.block(ch)
	}
	flush()
}

func (c *converter) block(n *html.Node) {
	if n.Type != html.ElementNode {
		return
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Iframe, atom.Head, atom.Title, atom.Meta:
		return
	case atom.H1:
		c.paragraph(n, model.ParagraphStyle{Kind: model.KindHeading1, Align: alignFromAttr(n)})
	case atom.H2:
		c.paragraph(n, model.ParagraphStyle{Kind: model.KindHeading2, Align: alignFromAttr(n)})
	case atom.H3:
		c.paragraph(n, model.ParagraphStyle{Kind: model.KindHeading3, Align: alignFromAttr(n)})
	case atom.H4, atom.H5, atom.H6:
		c.paragraph(n, model.ParagraphStyle{Kind: model.KindHeading4, Align: alignFromAttr(n)})
	case atom.P:
		c.paragraph(n, model.ParagraphStyle{Align: alignFromAttr(n)})
	case atom.Blockquote:
		c.quote(n)
	case atom.Ul:
		c.list(n, model.KindBullet, c.ids.NewID(), 0)
	case atom.Ol:
		c.list(n, model.KindNumber, c.ids.NewID(), 0)
	case atom.Pre:
		c.pre(n)
	case atom.Figure:
		c.figure(n)
	case atom.Img:
		if src := attr(n, "src"); src != "" {
			c.out = append(c.out, model.NewImage(c.ids, src, ""))
		}
	case atom.Table:
		c.table(n)
	case atom.Hr, atom.Br:
		return
	default:
		c.blocks(n)
	}
}

func (c *converter) paragraph(n *html.Node, style model.ParagraphStyle) {
	runs := c.tidyRuns(c.inlineChildren(n, model.TextStyle{}))
	if len(runs) == 0 {
		return
	}
	c.out = append(c.out, model.FixParagraph(model.NewParagraph(c.ids, style, runs...), c.ids))
}

// quote converts quoted markup by running the normal block conversion and
// restyling everything it produced as quote paragraphs.
func (c *converter) quote(n *html.Node) {
	start := len(c.out)
	c.blocks(n)
	for i := start; i < len(c.out); i++ {
		if p, ok := c.out[i].(*model.Paragraph); ok {
			s := p.Style
			s.Kind = model.KindQuote
			s.ListID = ""
			c.out[i] = model.NewParagraph(c.ids, s, p.Content...)
		}
	}
}

// list converts one ul/ol and its nested sub-lists into a run of list
// paragraphs sharing a fresh list id, with the nesting depth recorded as
// indent.
func (c *converter) list(n *html.Node, kind model.ParagraphKind, listID string, depth int) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && ch.DataAtom == atom.Li {
			c.listItem(ch, kind, listID, depth)
		}
	}
}

func (c *converter) listItem(li *html.Node, kind model.ParagraphKind, listID string, depth int) {
	var inline []*html.Node
	var nested []*html.Node
	for ch := li.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode {
			switch ch.DataAtom {
			case atom.Ul, atom.Ol:
				nested = append(nested, ch)
				continue
			case atom.P:
				for g := ch.FirstChild; g != nil; g = g.NextSibling {
					inline = append(inline, g)
				}
				continue
			}
		}
		inline = append(inline, ch)
	}
	if runs := c.tidyRuns(c.runsOf(inline, model.TextStyle{})); len(runs) > 0 {
		style := model.ParagraphStyle{Kind: kind, ListID: listID, Indent: depth}
		c.out = append(c.out, model.FixParagraph(model.NewParagraph(c.ids, style, runs...), c.ids))
	}
	for _, sub := range nested {
		subKind := model.KindBullet
		if sub.DataAtom == atom.Ol {
			subKind = model.KindNumber
		}
		c.list(sub, subKind, listID, depth+1)
	}
}

func (c *converter) pre(n *html.Node) {
	target := n
	lang := ""
	if code := findElement(n, atom.Code); code != nil {
		target = code
		lang = languageFromClass(attr(code, "class"))
	}
	text := strings.TrimSuffix(rawText(target), "\n")
	c.out = append(c.out, model.NewCodeBlock(c.ids, text, lang))
}

func (c *converter) figure(n *html.Node) {
	imgEl := findElement(n, atom.Img)
	if imgEl == nil {
		c.blocks(n)
		return
	}
	caption := ""
	if capEl := findElement(n, atom.Figcaption); capEl != nil {
		caption = strings.TrimSpace(collapseSpace(rawText(capEl)))
	}
	if src := attr(imgEl, "src"); src != "" {
		c.out = append(c.out, model.NewImage(c.ids, src, caption))
	}
}

// table rebuilds a table, parsing every cell as a document of its own.
// Ragged markup is squared off with empty cells.
func (c *converter) table(n *html.Node) {
	var rowEls []*html.Node
	collectRows(n, &rowEls)

	var grid [][]*model.Cell
	numCols := 0
	for _, rowEl := range rowEls {
		var cells []*model.Cell
		for ch := rowEl.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != html.ElementNode || (ch.DataAtom != atom.Td && ch.DataAtom != atom.Th) {
				continue
			}
			cells = append(cells, model.NewCell(c.ids, c.cellDocument(ch)))
		}
		if len(cells) == 0 {
			continue
		}
		grid = append(grid, cells)
		numCols = max(numCols, len(cells))
	}
	if len(grid) == 0 {
		return
	}

	rows := make([]*model.Row, len(grid))
	for i, cells := range grid {
		for len(cells) < numCols {
			cells = append(cells, model.NewCell(c.ids,
				model.NewDocument(c.ids, model.EmptyParagraph(c.ids))))
		}
		rows[i] = model.NewRow(c.ids, cells...)
	}
	c.out = append(c.out, model.NewTable(c.ids, numCols, rows...))
}

// collectRows gathers the tr elements of one table, looking through
// thead/tbody/tfoot but not into nested tables.
func collectRows(n *html.Node, out *[]*html.Node) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != html.ElementNode {
			continue
		}
		switch ch.DataAtom {
		case atom.Tr:
			*out = append(*out, ch)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			collectRows(ch, out)
		}
	}
}

func (c *converter) cellDocument(td *html.Node) *model.Document {
	inner := &converter{ids: c.ids}
	inner.blocks(td)
	if len(inner.out) == 0 {
		return model.NewDocument(c.ids, model.EmptyParagraph(c.ids))
	}
	return model.NewDocument(c.ids, inner.out...)
}

func (c *converter) inlineChildren(n *html.Node, style model.TextStyle) []*model.TextRun {
	var runs []*model.TextRun
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		runs = append(runs, c.inline(ch, style)...)
	}
	return runs
}

func (c *converter) runsOf(nodes []*html.Node, style model.TextStyle) []*model.TextRun {
	var runs []*model.TextRun
	for _, n := range nodes {
		runs = append(runs, c.inline(n, style)...)
	}
	return runs
}

// inline flattens an inline subtree into styled runs.
func (c *converter) inline(n *html.Node, style model.TextStyle) []*model.TextRun {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if text == "" {
			return nil
		}
		return []*model.TextRun{model.NewTextRun(c.ids, text, style)}
	case html.ElementNode:
	default:
		return nil
	}

	s := style
	switch n.DataAtom {
	case atom.Script, atom.Style:
		return nil
	case atom.Br:
		return []*model.TextRun{model.NewTextRun(c.ids, " ", style)}
	case atom.Strong, atom.B:
		s.Bold = true
	case atom.Em, atom.I:
		s.Italic = true
	case atom.U:
		s.Underline = true
	case atom.S, atom.Del, atom.Strike:
		s.Strikethrough = true
	case atom.Code:
		s.Code = true
	case atom.Sub:
		s.Script = model.ScriptSub
	case atom.Sup:
		s.Script = model.ScriptSuper
	case atom.A:
		if href := attr(n, "href"); href != "" {
			s.Link = href
		}
	}
	return c.inlineChildren(n, s)
}

// tidyRuns drops empty runs and trims whitespace off the paragraph edges.
func (c *converter) tidyRuns(runs []*model.TextRun) []*model.TextRun {
	var kept []*model.TextRun
	for _, r := range runs {
		if r.Text != "" {
			kept = append(kept, r)
		}
	}
	for len(kept) > 0 {
		t := strings.TrimLeft(kept[0].Text, htmlSpace)
		if t == "" {
			kept = kept[1:]
			continue
		}
		if t != kept[0].Text {
			kept[0] = model.NewTextRun(c.ids, t, kept[0].Style)
		}
		break
	}
	for len(kept) > 0 {
		last := len(kept) - 1
		t := strings.TrimRight(kept[last].Text, htmlSpace)
		if t == "" {
			kept = kept[:last]
			continue
		}
		if t != kept[last].Text {
			kept[last] = model.NewTextRun(c.ids, t, kept[last].Style)
		}
		break
	}
	return kept
}

const htmlSpace = " \t\n\r\f"

var inlineAtoms = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Br: true,
	atom.Code: true, atom.Del: true, atom.Em: true, atom.Font: true,
	atom.I: true, atom.Mark: true, atom.S: true, atom.Small: true,
	atom.Span: true, atom.Strike: true, atom.Strong: true, atom.Sub: true,
	atom.Sup: true, atom.U: true,
}

func isInline(n *html.Node) bool {
	if n.Type == html.TextNode {
		return true
	}
	return n.Type == html.ElementNode && inlineAtoms[n.DataAtom]
}

// collapseSpace folds HTML whitespace runs to single spaces, keeping one
// leading and trailing space alive since they separate inline siblings.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if strings.IndexByte(htmlSpace, s[0]) >= 0 {
		out = " " + out
	}
	if strings.IndexByte(htmlSpace, s[len(s)-1]) >= 0 {
		out += " "
	}
	return out
}

// rawText concatenates the text below a node without whitespace folding.
func rawText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.WriteString(rawText(ch))
	}
	return b.String()
}

func languageFromClass(class string) string {
	for _, f := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(f, "language-"); ok && lang != "" {
			return lang
		}
	}
	return ""
}

func alignFromAttr(n *html.Node) model.Alignment {
	v := attr(n, "align")
	if v == "" {
		for _, part := range strings.Split(attr(n, "style"), ";") {
			if k, val, ok := strings.Cut(part, ":"); ok && strings.TrimSpace(k) == "text-align" {
				v = strings.TrimSpace(val)
			}
		}
	}
	switch v {
	case "center":
		return model.AlignCenter
	case "right":
		return model.AlignRight
	case "justify":
		return model.AlignJustify
	}
	return model.AlignLeft
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
