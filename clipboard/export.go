// Package clipboard converts documents to and from the payload shapes a
// system clipboard carries. Copy renders a document to HTML plus plain
// text and embeds a lossless JSON encoding in a marker attribute; Read
// recovers the exact document from the marker when present and converts
// foreign markup block by block otherwise.
package clipboard

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/notefold/richdoc-go/model"
)

// DataAttr is the attribute on the wrapper element that carries the
// lossless payload. A reader that finds it can skip HTML conversion
// entirely.
const DataAttr = "data-richdoc"

// Payload is what a copy hands to the system clipboard: an HTML flavor
// for rich targets and a plain-text flavor for everything else.
type Payload struct {
	HTML string
	Text string
}

// Copy renders a document, typically the result of extracting a
// selection, into a clipboard payload. The HTML flavor is readable by any
// consumer and additionally carries the exact document under DataAttr, so
// a paste between editors loses nothing.
func Copy(d *model.Document) (Payload, error) {
	raw, err := json.Marshal(d.ToJSON())
	if err != nil {
		return Payload{}, NewClipboardError("encoding document: %v", err)
	}
	wrapper := element(atom.Div, html.Attribute{
		Key: DataAttr,
		Val: base64.StdEncoding.EncodeToString(raw),
	})
	appendBlocks(wrapper, d.Blocks, model.NumberListItems(d))

	var buf bytes.Buffer
	if err := html.Render(&buf, wrapper); err != nil {
		return Payload{}, NewClipboardError("rendering html: %v", err)
	}
	return Payload{HTML: buf.String(), Text: model.Text(d)}, nil
}

// appendBlocks renders blocks under parent. Consecutive paragraphs of one
// logical list fold into a single list element.
func appendBlocks(parent *html.Node, blocks []model.BlockNode, ordinals map[string]int) {
	i := 0
	for i < len(blocks) {
		if p, ok := blocks[i].(*model.Paragraph); ok && p.Style.ListID != "" {
			j := i + 1
			for j < len(blocks) {
				q, ok := blocks[j].(*model.Paragraph)
				if !ok || q.Style.ListID != p.Style.ListID {
					break
				}
				j++
			}
			parent.AppendChild(listNode(blocks[i:j], ordinals))
			i = j
			continue
		}
		parent.AppendChild(blockNode(blocks[i], ordinals))
		i++
	}
}

// listNode renders one consecutive run of same-list paragraphs as a
// nested ul/ol tree. Each indent level opens a sub-list inside the last
// item of the level above it.
func listNode(blocks []model.BlockNode, ordinals map[string]int) *html.Node {
	var root *html.Node
	var open []*html.Node
	for _, b := range blocks {
		p := b.(*model.Paragraph)
		level := p.Style.Indent
		if len(open) > level+1 {
			open = open[:level+1]
		}
		for len(open) < level+1 {
			l := listContainer(p, ordinals)
			if len(open) == 0 {
				root = l
			} else if parent := open[len(open)-1]; parent.LastChild != nil {
				parent.LastChild.AppendChild(l)
			} else {
				parent.AppendChild(l)
			}
			open = append(open, l)
		}
		li := element(atom.Li)
		appendInline(li, p)
		open[level].AppendChild(li)
	}
	return root
}

// listContainer opens the element for a list level. A numbered list that
// resumes midway carries its start ordinal so foreign consumers keep the
// numbering.
func listContainer(p *model.Paragraph, ordinals map[string]int) *html.Node {
	if p.Style.Kind == model.KindNumber {
		l := element(atom.Ol)
		if n := ordinals[p.ID]; n > 1 {
			l.Attr = append(l.Attr, html.Attribute{Key: "start", Val: strconv.Itoa(n)})
		}
		return l
	}
	return element(atom.Ul)
}

func blockNode(b model.BlockNode, ordinals map[string]int) *html.Node {
	switch b := b.(type) {
	case *model.Paragraph:
		return paragraphNode(b)
	case *model.Image:
		fig := element(atom.Figure)
		fig.AppendChild(element(atom.Img, html.Attribute{Key: "src", Val: b.Src}))
		if b.Caption != "" {
			fc := element(atom.Figcaption)
			fc.AppendChild(textNode(b.Caption))
			fig.AppendChild(fc)
		}
		return fig
	case *model.CodeBlock:
		pre := element(atom.Pre)
		code := element(atom.Code)
		if b.Language != "" {
			code.Attr = append(code.Attr, html.Attribute{Key: "class", Val: "language-" + b.Language})
		}
		code.AppendChild(textNode(b.Code))
		pre.AppendChild(code)
		return pre
	case *model.Table:
		t := element(atom.Table)
		for _, row := range b.Rows {
			tr := element(atom.Tr)
			for _, cell := range row.Cells {
				td := element(atom.Td)
				appendBlocks(td, cell.Content.Blocks, ordinals)
				tr.AppendChild(td)
			}
			t.AppendChild(tr)
		}
		return t
	}
	panic("unknown block node")
}

func paragraphNode(p *model.Paragraph) *html.Node {
	var a atom.Atom
	switch p.Style.Kind {
	case model.KindHeading1:
		a = atom.H1
	case model.KindHeading2:
		a = atom.H2
	case model.KindHeading3:
		a = atom.H3
	case model.KindHeading4:
		a = atom.H4
	default:
		a = atom.P
	}
	inner := element(a)
	if name := alignName(p.Style.Align); name != "" {
		inner.Attr = append(inner.Attr, html.Attribute{Key: "style", Val: "text-align:" + name})
	}
	appendInline(inner, p)
	if p.Style.Kind == model.KindQuote {
		bq := element(atom.Blockquote)
		bq.AppendChild(inner)
		return bq
	}
	return inner
}

func alignName(a model.Alignment) string {
	switch a {
	case model.AlignCenter:
		return "center"
	case model.AlignRight:
		return "right"
	case model.AlignJustify:
		return "justify"
	}
	return ""
}

func appendInline(parent *html.Node, p *model.Paragraph) {
	for _, r := range p.Content {
		if r.Text == "" {
			continue
		}
		parent.AppendChild(runNode(r))
	}
}

// runNode wraps the run's text in one element per style attribute, link
// outermost so the remaining marks style the anchor text.
func runNode(r *model.TextRun) *html.Node {
	n := textNode(r.Text)
	wrap := func(a atom.Atom, attrs ...html.Attribute) {
		e := element(a, attrs...)
		e.AppendChild(n)
		n = e
	}
	s := r.Style
	switch s.Script {
	case model.ScriptSub:
		wrap(atom.Sub)
	case model.ScriptSuper:
		wrap(atom.Sup)
	}
	if s.Code {
		wrap(atom.Code)
	}
	if s.Strikethrough {
		wrap(atom.S)
	}
	if s.Underline {
		wrap(atom.U)
	}
	if s.Italic {
		wrap(atom.Em)
	}
	if s.Bold {
		wrap(atom.Strong)
	}
	if s.Link != "" {
		wrap(atom.A, html.Attribute{Key: "href", Val: s.Link})
	}
	return n
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
