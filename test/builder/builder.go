// Package builder offers a compact DSL for building test documents.
// Strings handed to paragraph builders may carry position tags in angle
// brackets, p("fo<a>o"), which are stripped from the text and reported as
// points on the built document. Ids come from one sequential source, so a
// test that builds the same tree twice gets two trees with distinct ids
// but equal content.
package builder

import (
	"fmt"
	"strings"

	"github.com/notefold/richdoc-go/model"
)

var ids = model.NewSeq("n")

// IDs exposes the builder's id source for tests that construct nodes by
// hand next to built ones.
func IDs() model.IDSource {
	return ids
}

// Pending tag positions recorded while building, resolved when Doc wraps
// everything up.
var pendingParaTags = map[string]paraTag{}
var pendingRunTags = map[*model.TextRun]map[string]int{}

type paraTag struct {
	block  string
	offset int
}

// TagPoint is a named position on a built document: the editor holding the
// tagged paragraph and the point itself.
type TagPoint struct {
	Editor string
	Point  model.TextPoint
}

// DocWithTags is a built document plus the positions of the tags that
// appeared in its text.
type DocWithTags struct {
	*model.Document
	Tags map[string]TagPoint
}

// Loc returns the tagged position as a model.Loc.
func (d DocWithTags) Loc(name string) model.Loc {
	tag, ok := d.Tags[name]
	if !ok {
		panic(fmt.Sprintf("no tag %q in document", name))
	}
	return model.Loc{Editor: tag.Editor, Point: tag.Point}
}

// Point returns the tagged text point.
func (d DocWithTags) Point(name string) model.TextPoint {
	return d.Tags[name].Point
}

// Caret returns a collapsed selection at the tagged position.
func (d DocWithTags) Caret(name string) model.BlockSelection {
	tag, ok := d.Tags[name]
	if !ok {
		panic(fmt.Sprintf("no tag %q in document", name))
	}
	return model.BlockSelection{Editor: tag.Editor, Start: tag.Point, End: tag.Point}
}

// Range returns a selection between two tags, which must live in the same
// editor. Cross-editor selections are built with model.FindSelection from
// the Locs instead.
func (d DocWithTags) Range(a, b string) model.BlockSelection {
	ta, ok := d.Tags[a]
	tb, ok2 := d.Tags[b]
	if !ok || !ok2 {
		panic(fmt.Sprintf("missing tag %q or %q", a, b))
	}
	if ta.Editor != tb.Editor {
		panic(fmt.Sprintf("tags %q and %q live in different editors", a, b))
	}
	return model.BlockSelection{Editor: ta.Editor, Start: ta.Point, End: tb.Point}
}

// Doc assembles a document from blocks and resolves every tag recorded
// since the previous Doc call.
func Doc(blocks ...model.BlockNode) DocWithTags {
	d := model.NewDocument(ids, blocks...)
	tags := map[string]TagPoint{}
	for name, tag := range pendingParaTags {
		loc, ok := model.FindBlock(d, tag.block)
		if !ok {
			panic(fmt.Sprintf("tag %q points at a paragraph outside the document", name))
		}
		tags[name] = TagPoint{
			Editor: loc.Doc.ID,
			Point:  model.TextPoint{Block: tag.block, Offset: tag.offset},
		}
	}
	pendingParaTags = map[string]paraTag{}
	pendingRunTags = map[*model.TextRun]map[string]int{}
	return DocWithTags{Document: d, Tags: tags}
}

// P builds a default paragraph from strings and runs.
func P(args ...interface{}) *model.Paragraph {
	return Styled(model.ParagraphStyle{}, args...)
}

// H1 through H4, Quote, Bullet and Num build styled paragraphs. List
// builders take the list id first so tests can group items.
func H1(args ...interface{}) *model.Paragraph {
	return Styled(model.ParagraphStyle{Kind: model.KindHeading1}, args...)
}

func H2(args ...interface{}) *model.Paragraph {
	return Styled(model.ParagraphStyle{Kind: model.KindHeading2}, args...)
}

func H3(args ...interface{}) *model.Paragraph {
	return Styled(model.ParagraphStyle{Kind: model.KindHeading3}, args...)
}

func H4(args ...interface{}) *model.Paragraph {
	return Styled(model.ParagraphStyle{Kind: model.KindHeading4}, args...)
}

func Quote(args ...interface{}) *model.Paragraph {
	return Styled(model.ParagraphStyle{Kind: model.KindQuote}, args...)
}

func Bullet(listID string, args ...interface{}) *model.Paragraph {
	return Styled(model.ParagraphStyle{Kind: model.KindBullet, ListID: listID}, args...)
}

func Num(listID string, args ...interface{}) *model.Paragraph {
	return Styled(model.ParagraphStyle{Kind: model.KindNumber, ListID: listID}, args...)
}

func NumAt(listID string, indent int, args ...interface{}) *model.Paragraph {
	return Styled(model.ParagraphStyle{Kind: model.KindNumber, ListID: listID, Indent: indent}, args...)
}

// Styled builds a paragraph with an explicit style. Args are strings,
// possibly tagged, or runs made by the inline builders.
func Styled(style model.ParagraphStyle, args ...interface{}) *model.Paragraph {
	var runs []*model.TextRun
	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			runs = append(runs, styledRun(arg, model.TextStyle{}))
		case *model.TextRun:
			runs = append(runs, arg)
		default:
			panic(fmt.Sprintf("cannot build paragraph content from %T", arg))
		}
	}
	p := model.NewParagraph(ids, style, runs...)
	resolveRunTags(p)
	return p
}

// recordParaTagLater notes a tag at a run-relative offset; the paragraph
// builder turns it into a paragraph-relative position once run order is
// known.
func recordParaTagLater(run *model.TextRun, name string, at int) {
	tags := pendingRunTags[run]
	if tags == nil {
		tags = map[string]int{}
		pendingRunTags[run] = tags
	}
	tags[name] = at
}

func resolveRunTags(p *model.Paragraph) {
	start := 0
	for _, run := range p.Content {
		for name, at := range pendingRunTags[run] {
			pendingParaTags[name] = paraTag{block: p.ID, offset: start + at}
		}
		delete(pendingRunTags, run)
		start += run.Len()
	}
}

// Inline builders. Each returns a single styled run; tags inside the text
// are recorded relative to the run.
func Strong(text string) *model.TextRun {
	return styledRun(text, model.TextStyle{Bold: true})
}

func Em(text string) *model.TextRun {
	return styledRun(text, model.TextStyle{Italic: true})
}

func U(text string) *model.TextRun {
	return styledRun(text, model.TextStyle{Underline: true})
}

func Strike(text string) *model.TextRun {
	return styledRun(text, model.TextStyle{Strikethrough: true})
}

func CodeSpan(text string) *model.TextRun {
	return styledRun(text, model.TextStyle{Code: true})
}

func Sub(text string) *model.TextRun {
	return styledRun(text, model.TextStyle{Script: model.ScriptSub})
}

func Sup(text string) *model.TextRun {
	return styledRun(text, model.TextStyle{Script: model.ScriptSuper})
}

func Link(href, text string) *model.TextRun {
	return styledRun(text, model.TextStyle{Link: href})
}

// Run builds a run with an arbitrary style.
func Run(text string, style model.TextStyle) *model.TextRun {
	return styledRun(text, style)
}

func styledRun(text string, style model.TextStyle) *model.TextRun {
	stripped, tags := stripTags(text)
	run := model.NewTextRun(ids, stripped, style)
	for name, at := range tags {
		recordParaTagLater(run, name, at)
	}
	return run
}

// Img builds an image block; the caption is optional.
func Img(src string, caption ...string) *model.Image {
	c := ""
	if len(caption) > 0 {
		c = caption[0]
	}
	return model.NewImage(ids, src, c)
}

// Code builds a code block; the language is optional.
func Code(code string, language ...string) *model.CodeBlock {
	lang := ""
	if len(language) > 0 {
		lang = language[0]
	}
	return model.NewCodeBlock(ids, code, lang)
}

// Table builds a table of the given width. Short rows are padded with
// empty cells.
func Table(numColumns int, rows ...*model.Row) *model.Table {
	return model.NewTable(ids, numColumns, rows...)
}

// TableRow builds a table row.
func TableRow(cells ...*model.Cell) *model.Row {
	return model.NewRow(ids, cells...)
}

// TableCell builds a cell owning a document made of the given blocks. With
// no blocks the cell holds a single empty paragraph.
func TableCell(blocks ...model.BlockNode) *model.Cell {
	return model.NewCell(ids, model.NewDocument(ids, blocks...))
}

// stripTags removes <name> markers from a string and returns their rune
// offsets in the stripped text.
func stripTags(s string) (string, map[string]int) {
	if !strings.ContainsRune(s, '<') {
		return s, nil
	}
	var sb strings.Builder
	tags := map[string]int{}
	offset := 0
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if runes[i] == '<' {
			end := i + 1
			for end < len(runes) && runes[end] != '>' && runes[end] != '<' {
				end++
			}
			if end < len(runes) && runes[end] == '>' && end > i+1 {
				tags[string(runes[i+1:end])] = offset
				i = end + 1
				continue
			}
		}
		sb.WriteRune(runes[i])
		offset++
		i++
	}
	if len(tags) == 0 {
		return sb.String(), nil
	}
	return sb.String(), tags
}
