package model_test

import (
	"testing"

	. "github.com/notefold/richdoc-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	// blocks join with newlines, styles drop out
	d := doc(p("one ", strong("bold")), p("two"))
	assert.Equal(t, "one bold\ntwo", Text(d.Document))

	// images render their caption, code blocks their code
	d = doc(img("x.png", "a chart"), pre("x := 1", "go"))
	assert.Equal(t, "a chart\nx := 1", Text(d.Document))

	// tables render rows with newlines and cells with tabs
	d = doc(table(2,
		tr(td(p("a")), td(p("b"))),
		tr(td(p("c")), td(p("d"))),
	))
	assert.Equal(t, "a\tb\nc\td", Text(d.Document))

	// cell documents recurse, keeping their own block joins
	d = doc(p("head"), table(1, tr(td(p("x"), p("y")))))
	assert.Equal(t, "head\nx\ny", Text(d.Document))
}

func TestPointTextOffset(t *testing.T) {
	d := doc(p("naïve"), img("x.png", "pic"), p("tail"))
	first := d.Blocks[0].(*Paragraph)
	last := d.Blocks[2].(*Paragraph)

	// offsets count runes, not bytes
	off, ok := PointTextOffset(d.Document, TextPoint{Block: first.ID, Offset: 3})
	require.True(t, ok)
	assert.Equal(t, 3, off)

	// blocks before the paragraph contribute their text plus a newline
	off, ok = PointTextOffset(d.Document, TextPoint{Block: last.ID, Offset: 2})
	require.True(t, ok)
	assert.Equal(t, len([]rune("naïve"))+1+len("pic")+1+2, off)

	// the mapping lands where the rendered text has that rune
	rendered := []rune(Text(d.Document))
	assert.Equal(t, 'i', rendered[off])

	// non-paragraphs and unknown blocks have no text offset
	_, ok = PointTextOffset(d.Document, TextPoint{Block: BlockID(d.Blocks[1]), Offset: 0})
	assert.False(t, ok)
	_, ok = PointTextOffset(d.Document, TextPoint{Block: "ghost", Offset: 0})
	assert.False(t, ok)
}
