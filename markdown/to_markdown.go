// Package markdown converts documents to and from Markdown text. The
// serializer emits CommonMark plus the GFM table and strikethrough
// extensions; underline and script formatting, which Markdown has no
// syntax for, travel as raw HTML tags. Parse accepts the same dialect.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/notefold/richdoc-go/model"
)

// Serialize renders the document as Markdown text.
func Serialize(d *model.Document) string {
	s := &serializer{ordinals: model.NumberListItems(d)}
	s.blocks(d.Blocks)
	return s.out
}

// serializer accumulates output line by line. delim is prefixed to every
// fresh line, and closed marks a finished block so the next write can
// decide how many separator lines to put between the two.
type serializer struct {
	out          string
	delim        string
	closed       bool
	atBlockStart bool
	ordinals     map[string]int
}

func (s *serializer) blocks(blocks []model.BlockNode) {
	i := 0
	for i < len(blocks) {
		if p, ok := blocks[i].(*model.Paragraph); ok {
			if p.Style.ListID != "" {
				j := listRunEnd(blocks, i)
				s.list(blocks[i:j])
				i = j
				continue
			}
			if p.Style.Kind == model.KindQuote {
				j := i + 1
				for j < len(blocks) {
					q, ok := blocks[j].(*model.Paragraph)
					if !ok || q.Style.Kind != model.KindQuote {
						break
					}
					j++
				}
				s.quoteRun(blocks[i:j])
				i = j
				continue
			}
			s.paragraph(p)
			i++
			continue
		}
		switch b := blocks[i].(type) {
		case *model.Image:
			s.image(b)
		case *model.CodeBlock:
			s.codeBlock(b)
		case *model.Table:
			s.table(b)
		}
		i++
	}
}

// listRunEnd finds the end of the consecutive run of paragraphs sharing
// the list of blocks[i].
func listRunEnd(blocks []model.BlockNode, i int) int {
	first := blocks[i].(*model.Paragraph)
	j := i + 1
	for j < len(blocks) {
		q, ok := blocks[j].(*model.Paragraph)
		if !ok || q.Style.ListID != first.Style.ListID {
			break
		}
		j++
	}
	return j
}

func (s *serializer) paragraph(p *model.Paragraph) {
	switch p.Style.Kind {
	case model.KindHeading1:
		s.write("# ")
	case model.KindHeading2:
		s.write("## ")
	case model.KindHeading3:
		s.write("### ")
	case model.KindHeading4:
		s.write("#### ")
	}
	s.renderInline(p)
	s.closeBlock()
}

// quoteRun renders consecutive quote paragraphs as one quoted block with
// a bare marker line between the paragraphs.
func (s *serializer) quoteRun(blocks []model.BlockNode) {
	s.wrapBlock("> ", func() {
		for _, b := range blocks {
			s.renderInline(b.(*model.Paragraph))
			s.closeBlock()
		}
	})
}

// list renders one logical list run as tight items. Nesting indents past
// the parent item's marker, which is what fenced parsers require.
func (s *serializer) list(blocks []model.BlockNode) {
	prefixes := []string{""}
	for i, b := range blocks {
		p := b.(*model.Paragraph)
		if i > 0 {
			s.flushClose(1)
		}
		level := min(p.Style.Indent, len(prefixes)-1)
		marker := "* "
		if p.Style.Kind == model.KindNumber {
			marker = fmt.Sprintf("%d. ", s.ordinals[p.ID])
		}
		s.write(prefixes[level] + marker)
		s.renderInline(p)
		s.closeBlock()
		prefixes = append(prefixes[:level+1], prefixes[level]+strings.Repeat(" ", len(marker)))
	}
}

var backticksRun = regexp.MustCompile("`{3,}")

func (s *serializer) codeBlock(b *model.CodeBlock) {
	fence := "```"
	for _, ticks := range backticksRun.FindAllString(b.Code, -1) {
		if len(ticks) >= len(fence) {
			fence = ticks + "`"
		}
	}
	s.write(fence + b.Language + "\n")
	s.text(b.Code, false)
	s.ensureNewLine()
	s.write(fence)
	s.closeBlock()
}

func (s *serializer) image(b *model.Image) {
	s.write(fmt.Sprintf("![%s](%s)", s.esc(b.Caption, false), escapeLinkDest(b.Src)))
	s.closeBlock()
}

// table renders GFM pipes. The first row doubles as the header row the
// syntax requires; column alignment markers come from the first body row.
func (s *serializer) table(t *model.Table) {
	var lines []string
	for i, row := range t.Rows {
		line := "|"
		for _, cell := range row.Cells {
			line += " " + s.cellText(cell.Content) + " |"
		}
		lines = append(lines, line)
		if i == 0 {
			sep := "|"
			for c := 0; c < t.NumColumns; c++ {
				sep += " " + alignMarker(t, c) + " |"
			}
			lines = append(lines, sep)
		}
	}
	for i, line := range lines {
		if i > 0 {
			s.ensureNewLine()
		}
		s.write(line)
	}
	s.closeBlock()
}

func alignMarker(t *model.Table, col int) string {
	row := t.Rows[0]
	if len(t.Rows) > 1 {
		row = t.Rows[1]
	}
	if col < len(row.Cells) {
		if p, ok := row.Cells[col].Content.Blocks[0].(*model.Paragraph); ok {
			switch p.Style.Align {
			case model.AlignCenter:
				return ":---:"
			case model.AlignRight:
				return "---:"
			}
		}
	}
	return "---"
}

// cellText flattens one cell to a single line of inline markdown with
// pipes escaped.
func (s *serializer) cellText(d *model.Document) string {
	sub := &serializer{ordinals: s.ordinals}
	sep := func() {
		if sub.out != "" {
			sub.out += " "
		}
	}
	for _, b := range d.Blocks {
		switch b := b.(type) {
		case *model.Paragraph:
			sep()
			sub.renderInline(b)
		case *model.Image:
			sep()
			sub.out += fmt.Sprintf("![%s](%s)", sub.esc(b.Caption, false), escapeLinkDest(b.Src))
		case *model.CodeBlock:
			sep()
			code := strings.ReplaceAll(b.Code, "\n", " ")
			sub.out += codeDelim(code, -1) + code + codeDelim(code, 1)
		case *model.Table:
			sep()
			sub.out += sub.esc(strings.ReplaceAll(model.BlockText(b), "\n", " "), false)
		}
	}
	out := strings.ReplaceAll(sub.out, "\n", " ")
	return strings.ReplaceAll(out, "|", "\\|")
}

// An inline mark is the delimiter pair for one style attribute. Marks
// whose syntax rejects enclosing whitespace expel it past the delimiters.
type inlineMark struct {
	open, close string
	expel       bool
}

// marksFor lists the delimiters a style needs, outermost first. Code is
// not among them: its content is written unescaped, so it always wraps a
// single run innermost.
func marksFor(st model.TextStyle) []inlineMark {
	var marks []inlineMark
	if st.Link != "" {
		marks = append(marks, inlineMark{open: "[", close: "](" + escapeLinkDest(st.Link) + ")"})
	}
	if st.Bold {
		marks = append(marks, inlineMark{open: "**", close: "**", expel: true})
	}
	if st.Italic {
		marks = append(marks, inlineMark{open: "*", close: "*", expel: true})
	}
	if st.Strikethrough {
		marks = append(marks, inlineMark{open: "~~", close: "~~", expel: true})
	}
	if st.Underline {
		marks = append(marks, inlineMark{open: "<u>", close: "</u>"})
	}
	switch st.Script {
	case model.ScriptSub:
		marks = append(marks, inlineMark{open: "<sub>", close: "</sub>"})
	case model.ScriptSuper:
		marks = append(marks, inlineMark{open: "<sup>", close: "</sup>"})
	}
	return marks
}

func anyExpel(marks []inlineMark) bool {
	for _, m := range marks {
		if m.expel {
			return true
		}
	}
	return false
}

func commonPrefix(a, b []inlineMark) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// renderInline writes the runs of a paragraph, opening and closing
// delimiters only where adjacent runs differ so shared formatting spans
// them unbroken.
func (s *serializer) renderInline(p *model.Paragraph) {
	s.atBlockStart = true
	runs := p.Content
	nextMarks := func(i int) []inlineMark {
		for j := i + 1; j < len(runs); j++ {
			if runs[j].Text != "" {
				return marksFor(runs[j].Style)
			}
		}
		return nil
	}

	var active []inlineMark
	carried := ""
	for i, r := range runs {
		if r.Text == "" {
			continue
		}
		if len(active) == 0 && isAutoLink(r) {
			if carried != "" {
				s.text(carried, true)
				carried = ""
			}
			s.text("<"+r.Text+">", false)
			continue
		}
		marks := marksFor(r.Style)
		keep := commonPrefix(active, marks)

		text := r.Text
		lead := carried
		carried = ""
		if anyExpel(marks[keep:]) {
			trimmed := strings.TrimLeft(text, " ")
			lead += text[:len(text)-len(trimmed)]
			text = trimmed
		}
		if np := commonPrefix(marks, nextMarks(i)); anyExpel(marks[np:]) {
			trimmed := strings.TrimRight(text, " ")
			carried = text[len(trimmed):]
			text = trimmed
		}

		for len(active) > keep {
			s.text(active[len(active)-1].close, false)
			active = active[:len(active)-1]
		}
		if lead != "" {
			s.text(lead, true)
		}
		if text == "" && !r.Style.Code {
			continue
		}
		for len(active) < len(marks) {
			m := marks[len(active)]
			active = append(active, m)
			s.text(m.open, false)
		}
		if r.Style.Code {
			s.text(codeDelim(text, -1)+text+codeDelim(text, 1), false)
		} else {
			s.text(text, true)
		}
	}
	for len(active) > 0 {
		s.text(active[len(active)-1].close, false)
		active = active[:len(active)-1]
	}
	if carried != "" {
		s.text(carried, true)
	}
	s.atBlockStart = false
}

// isAutoLink reports a bare URL run that can render in angle brackets.
func isAutoLink(r *model.TextRun) bool {
	st := r.Style
	return st.Link != "" && st == (model.TextStyle{Link: st.Link}) &&
		r.Text == st.Link && strings.Contains(st.Link, ":")
}

// codeDelim picks a backtick fence longer than any backtick run in the
// text, padding with a space where the text touches the fence.
func codeDelim(text string, side int) string {
	longest := 0
	for _, t := range strings.FieldsFunc(text, func(r rune) bool { return r != '`' }) {
		longest = max(longest, len(t))
	}
	if longest == 0 {
		return "`"
	}
	fence := strings.Repeat("`", longest+1)
	if side < 0 {
		return fence + " "
	}
	return " " + fence
}

func escapeLinkDest(href string) string {
	href = strings.ReplaceAll(href, "(", "\\(")
	href = strings.ReplaceAll(href, ")", "\\)")
	return strings.ReplaceAll(href, `"`, `\"`)
}

func (s *serializer) atBlank() bool {
	return len(s.out) == 0 || s.out[len(s.out)-1] == '\n'
}

func (s *serializer) ensureNewLine() {
	if !s.atBlank() {
		s.out += "\n"
	}
}

// flushClose writes the separation a finished block owes before the next
// one starts: size-1 delimiter lines, so 2 yields one blank line and 1
// packs blocks tightly.
func (s *serializer) flushClose(size ...int) {
	if !s.closed {
		return
	}
	s.ensureNewLine()
	n := 2
	if len(size) > 0 {
		n = size[0]
	}
	if n > 1 {
		delimMin := strings.TrimRightFunc(s.delim, unicode.IsSpace)
		for i := 1; i < n; i++ {
			s.out += delimMin + "\n"
		}
	}
	s.closed = false
}

// write settles any closed block and starts the line with the current
// delimiter before appending content verbatim.
func (s *serializer) write(content ...string) {
	s.flushClose()
	if s.delim != "" && s.atBlank() {
		s.out += s.delim
	}
	if len(content) > 0 {
		s.out += content[0]
	}
}

func (s *serializer) closeBlock() {
	s.closed = true
}

var bangBeforeLink = regexp.MustCompile(`(^|[^\\])!$`)

// text appends content line by line, escaping it unless told otherwise.
// A link opener landing right after a bare "!" would read as an image, so
// the "!" gains a backslash retroactively.
func (s *serializer) text(str string, escape bool) {
	lines := strings.Split(str, "\n")
	for i, line := range lines {
		s.write()
		if !escape && strings.HasPrefix(line, "[") && bangBeforeLink.MatchString(s.out) {
			s.out = s.out[:len(s.out)-1] + "\\!"
		}
		if escape {
			s.out += s.esc(line, s.atBlockStart)
		} else {
			s.out += line
		}
		if i != len(lines)-1 {
			s.out += "\n"
		}
	}
	s.atBlockStart = false
}

// wrapBlock renders f with delim prefixed to every line it produces.
func (s *serializer) wrapBlock(delim string, f func()) {
	old := s.delim
	s.write(delim)
	s.delim = old + delim
	f()
	s.delim = old
	s.closeBlock()
}

var (
	escPunct      = regexp.MustCompile("([`*\\\\~\\[\\]])")
	escUnderscore = regexp.MustCompile(`(\b_)|(_\b)`)
	escLineStart  = regexp.MustCompile(`^([#\-*+>])`)
	escOrdered    = regexp.MustCompile(`^(\s*\d+)\.`)
)

// esc escapes text for Markdown. startOfLine additionally escapes the
// characters that only have meaning at the start of a line.
func (s *serializer) esc(str string, startOfLine bool) string {
	str = escPunct.ReplaceAllString(str, "\\$1")
	str = escUnderscore.ReplaceAllString(str, "\\_")
	if startOfLine {
		str = escLineStart.ReplaceAllString(str, "\\$1")
		str = escOrdered.ReplaceAllString(str, "$1\\.")
	}
	return str
}
