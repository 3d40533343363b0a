package model_test

import (
	"testing"

	. "github.com/notefold/richdoc-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixParagraph(t *testing.T) {
	ids := NewSeq("fix")
	fix := func(para *Paragraph) *Paragraph { return FixParagraph(para, ids) }

	// merges adjacent runs with identical styles, keeping the left run's id
	para := p(strong("foo"), strong("bar"))
	left := para.Content[0]
	fixed := fix(para)
	require.Len(t, fixed.Content, 1)
	assert.Equal(t, "foobar", fixed.Content[0].Text)
	assert.Equal(t, left.ID, fixed.Content[0].ID)
	assert.Equal(t, left.Style, fixed.Content[0].Style)

	// running it again changes nothing
	assert.Same(t, fixed, fix(fixed))

	// drops empty runs between differently styled neighbours
	para = p(strong("a"), "", em("b"))
	fixed = fix(para)
	require.Len(t, fixed.Content, 2)
	assert.Equal(t, "a", fixed.Content[0].Text)
	assert.Equal(t, "b", fixed.Content[1].Text)

	// dropping an empty run can expose a merge
	para = p(strong("a"), "", strong("b"))
	fixed = fix(para)
	require.Len(t, fixed.Content, 1)
	assert.Equal(t, "ab", fixed.Content[0].Text)

	// a single empty run is the canonical empty paragraph
	para = p("")
	assert.Same(t, para, fix(para))

	// a paragraph whose runs are all empty keeps the first one
	para = p(strong(""), em(""))
	first := para.Content[0]
	fixed = fix(para)
	require.Len(t, fixed.Content, 1)
	assert.Same(t, first, fixed.Content[0])

	// an already canonical mixed paragraph passes through untouched
	para = p(strong("a"), em("b"), "c")
	assert.Same(t, para, fix(para))
}

func TestJoinParagraphs(t *testing.T) {
	ids := NewSeq("join")

	// the joined paragraph keeps the left id and style
	a := h1("foo")
	b := p("bar")
	joined := JoinParagraphs(a, b, ids)
	assert.Equal(t, a.ID, joined.ID)
	assert.Equal(t, a.Style, joined.Style)
	assert.Equal(t, "foobar", joined.TextContent())

	// boundary runs with equal styles merge under the left run's id
	a = p("foo")
	b = p("bar")
	joined = JoinParagraphs(a, b, ids)
	require.Len(t, joined.Content, 1)
	assert.Equal(t, a.Content[0].ID, joined.Content[0].ID)

	// differently styled boundary runs stay separate
	a = p(strong("foo"))
	b = p(em("bar"))
	joined = JoinParagraphs(a, b, ids)
	require.Len(t, joined.Content, 2)

	// joining with an empty paragraph drops its placeholder run
	a = p("foo")
	b = p("")
	joined = JoinParagraphs(a, b, ids)
	require.Len(t, joined.Content, 1)
	assert.Equal(t, "foo", joined.TextContent())
}
