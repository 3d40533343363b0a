package state_test

import (
	"testing"

	"github.com/notefold/richdoc-go/model"
	. "github.com/notefold/richdoc-go/state"
	"github.com/notefold/richdoc-go/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paraAt(t *testing.T, d *model.Document, i int) *model.Paragraph {
	t.Helper()
	require.Less(t, i, len(d.Blocks))
	para, ok := d.Blocks[i].(*model.Paragraph)
	require.True(t, ok, "block %d is not a paragraph", i)
	return para
}

func isBold(s model.TextStyle) bool {
	return s.Bold
}

func setBold(s model.TextStyle, on bool) model.TextStyle {
	s.Bold = on
	return s
}

func TestTypingMergesIntoOneUndoStep(t *testing.T) {
	d := doc(p("<a>"))
	e := NewEditor(d.Document, builder.IDs())
	require.NoError(t, e.Apply(SetSelection{Sel: d.Caret("a")}))

	for _, ch := range []string{"a", "b", "c"} {
		require.NoError(t, e.Apply(Input{Type: InsertText, Text: ch}))
	}
	assert.Equal(t, "abc", paraAt(t, e.Doc(), 0).TextContent())

	// one undo unwinds the whole run of keystrokes
	require.NoError(t, e.Apply(Undo{}))
	assert.Equal(t, "", paraAt(t, e.Doc(), 0).TextContent())
	assert.False(t, e.CanUndo())

	require.NoError(t, e.Apply(Redo{}))
	assert.Equal(t, "abc", paraAt(t, e.Doc(), 0).TextContent())
}

func TestSelectionMoveBreaksMerge(t *testing.T) {
	d := doc(p("hi<a>"))
	e := NewEditor(d.Document, builder.IDs())
	require.NoError(t, e.Apply(SetSelection{Sel: d.Caret("a")}))
	require.NoError(t, e.Apply(Input{Type: InsertText, Text: "x"}))

	home := model.Caret(d.Document.ID, paraAt(t, e.Doc(), 0).ID, 0)
	require.NoError(t, e.Apply(SetSelection{Sel: home}))
	require.NoError(t, e.Apply(Input{Type: InsertText, Text: "y"}))
	assert.Equal(t, "yhix", paraAt(t, e.Doc(), 0).TextContent())

	// the caret move split the two inserts into separate undo steps
	require.NoError(t, e.Apply(Undo{}))
	assert.Equal(t, "hix", paraAt(t, e.Doc(), 0).TextContent())
	assert.Equal(t, model.Selection(home), e.Selection())
	require.NoError(t, e.Apply(Undo{}))
	assert.Equal(t, "hi", paraAt(t, e.Doc(), 0).TextContent())
}

func TestBackspaceRunMergesIntoOneUndoStep(t *testing.T) {
	d := doc(p("abc<a>"))
	e := NewEditor(d.Document, builder.IDs())
	require.NoError(t, e.Apply(SetSelection{Sel: d.Caret("a")}))

	for i := 0; i < 3; i++ {
		require.NoError(t, e.Apply(Input{Type: DeleteContentBackward}))
	}
	assert.Equal(t, "", paraAt(t, e.Doc(), 0).TextContent())

	require.NoError(t, e.Apply(Undo{}))
	assert.Equal(t, "abc", paraAt(t, e.Doc(), 0).TextContent())
}

func TestEditClearsRedo(t *testing.T) {
	d := doc(p("a<a>"))
	e := NewEditor(d.Document, builder.IDs())
	require.NoError(t, e.Apply(SetSelection{Sel: d.Caret("a")}))
	require.NoError(t, e.Apply(Input{Type: InsertText, Text: "b"}))
	require.NoError(t, e.Apply(Undo{}))
	require.True(t, e.CanRedo())

	require.NoError(t, e.Apply(Input{Type: InsertText, Text: "c"}))
	assert.False(t, e.CanRedo())
	assert.Equal(t, "ac", paraAt(t, e.Doc(), 0).TextContent())

	// redo on the emptied stack changes nothing
	before := e.Doc()
	require.NoError(t, e.Apply(Redo{}))
	assert.Same(t, before, e.Doc())
}

func TestUndoRedoOnEmptyStacksAreNoOps(t *testing.T) {
	d := doc(p("x"))
	e := NewEditor(d.Document, builder.IDs())

	require.NoError(t, e.Apply(Undo{}))
	assert.Same(t, d.Document, e.Doc())
	require.NoError(t, e.Apply(Redo{}))
	assert.Same(t, d.Document, e.Doc())
}

func TestTypedTextTakesTypingStyle(t *testing.T) {
	d := doc(p(strong("ab<a>")))
	e := NewEditor(d.Document, builder.IDs())
	require.NoError(t, e.Apply(SetSelection{Sel: d.Caret("a")}))
	// the caret sits after bold text, so typing continues bold
	assert.True(t, e.State().TypingStyle.Bold)

	require.NoError(t, e.Apply(Input{Type: InsertText, Text: "c"}))
	para := paraAt(t, e.Doc(), 0)
	require.Len(t, para.Content, 1)
	assert.Equal(t, "abc", para.Content[0].Text)
	assert.True(t, para.Content[0].Style.Bold)
	assert.Equal(t, paraAt(t, d.Document, 0).Content[0].ID, para.Content[0].ID)
}

func TestCollapsedBoldToggleAffectsTypingOnly(t *testing.T) {
	d := doc(p("pla<a>in"))
	e := NewEditor(d.Document, builder.IDs())
	require.NoError(t, e.Apply(SetSelection{Sel: d.Caret("a")}))

	require.NoError(t, e.Apply(InlineFormat{Cond: isBold, Apply: setBold}))
	// nothing in the tree changed and nothing is undoable
	assert.Same(t, d.Document, e.Doc())
	assert.False(t, e.CanUndo())
	assert.True(t, e.State().TypingStyle.Bold)

	require.NoError(t, e.Apply(Input{Type: InsertText, Text: "B"}))
	para := paraAt(t, e.Doc(), 0)
	require.Len(t, para.Content, 3)
	assert.Equal(t, "B", para.Content[1].Text)
	assert.True(t, para.Content[1].Style.Bold)

	require.NoError(t, e.Apply(InlineFormat{Cond: isBold, Apply: setBold}))
	assert.False(t, e.State().TypingStyle.Bold)
}

func TestBoldToggleOverSelection(t *testing.T) {
	d := doc(p("ab<a>cd<b>ef"))
	e := NewEditor(d.Document, builder.IDs())

	require.NoError(t, e.Apply(InlineFormat{Sel: d.Range("a", "b"), Cond: isBold, Apply: setBold}))
	para := paraAt(t, e.Doc(), 0)
	require.Len(t, para.Content, 3)
	assert.Equal(t, "cd", para.Content[1].Text)
	assert.True(t, para.Content[1].Style.Bold)
	assert.True(t, e.CanUndo())

	// the selection survives the restyle and now reads as bold
	assert.Equal(t, model.Selection(d.Range("a", "b")), e.Selection())
	assert.True(t, e.State().TypingStyle.Bold)

	require.NoError(t, e.Apply(Undo{}))
	assert.True(t, paraAt(t, e.Doc(), 0).Eq(paraAt(t, d.Document, 0)))
}

func TestBlockFormatTogglesQuote(t *testing.T) {
	d := doc(p("o<a>ne"), p("two"), img("x.png"), p("thr<b>ee"))
	e := NewEditor(d.Document, builder.IDs())
	isQuote := func(s model.ParagraphStyle) bool { return s.Kind == model.KindQuote }
	setQuote := func(s model.ParagraphStyle, on bool) model.ParagraphStyle {
		if on {
			s.Kind = model.KindQuote
		} else {
			s.Kind = model.KindDefault
		}
		return s
	}

	require.NoError(t, e.Apply(BlockFormat{Sel: d.Range("a", "b"), Cond: isQuote, Apply: setQuote}))
	for _, i := range []int{0, 1, 3} {
		assert.Equal(t, model.KindQuote, paraAt(t, e.Doc(), i).Style.Kind, "paragraph %d", i)
	}
	assert.Same(t, d.Document.Blocks[2], e.Doc().Blocks[2])

	// a second toggle on the now-uniform range switches it back off
	require.NoError(t, e.Apply(BlockFormat{Sel: d.Range("a", "b"), Cond: isQuote, Apply: setQuote}))
	for _, i := range []int{0, 1, 3} {
		assert.Equal(t, model.KindDefault, paraAt(t, e.Doc(), i).Style.Kind, "paragraph %d", i)
	}
}

func TestClearFormattingCommand(t *testing.T) {
	d := doc(h1(strong("B<a>ig")), quote("qu<b>ote"))
	e := NewEditor(d.Document, builder.IDs())

	require.NoError(t, e.Apply(ClearFormat{Sel: d.Range("a", "b")}))
	first, second := paraAt(t, e.Doc(), 0), paraAt(t, e.Doc(), 1)
	assert.Equal(t, model.KindDefault, first.Style.Kind)
	assert.Equal(t, model.KindDefault, second.Style.Kind)
	assert.True(t, e.State().TypingStyle.IsZero())

	require.NoError(t, e.Apply(Undo{}))
	assert.Equal(t, model.KindHeading1, paraAt(t, e.Doc(), 0).Style.Kind)
}

func TestSelectAll(t *testing.T) {
	d := doc(p("ab"), img("x.png"))
	e := NewEditor(d.Document, builder.IDs())

	require.NoError(t, e.Apply(SelectAll{}))
	want := model.BlockSelection{
		Editor: d.Document.ID,
		Start:  model.TextPoint{Block: paraAt(t, d.Document, 0).ID, Offset: 0},
		End:    model.BlockPoint{Block: d.Document.Blocks[1].(*model.Image).ID},
	}
	assert.Equal(t, model.Selection(want), e.Selection())
	assert.False(t, e.CanUndo())
}

func TestSelectAllInsideCell(t *testing.T) {
	d := doc(p("outer"), table(1, tr(td(p("in<a>")))))
	e := NewEditor(d.Document, builder.IDs())
	require.NoError(t, e.Apply(SetSelection{Sel: d.Caret("a")}))

	// select-all spans the cell the caret lives in, not the root
	require.NoError(t, e.Apply(SelectAll{}))
	cell := d.Document.Blocks[1].(*model.Table).Rows[0].Cells[0]
	inner := cell.Content.Blocks[0].(*model.Paragraph)
	want := model.BlockSelection{
		Editor: cell.Content.ID,
		Start:  model.TextPoint{Block: inner.ID, Offset: 0},
		End:    model.TextPoint{Block: inner.ID, Offset: 2},
	}
	assert.Equal(t, model.Selection(want), e.Selection())
}

func TestSetSelectionValidates(t *testing.T) {
	d := doc(p("ab<a>"))
	e := NewEditor(d.Document, builder.IDs())

	// a position pointing at nothing is rejected
	err := e.Apply(SetSelection{Sel: model.Caret(d.Document.ID, "ghost", 0)})
	assert.Error(t, err)
	assert.Nil(t, e.Selection())

	// so is an offset past the paragraph's end
	para := paraAt(t, d.Document, 0)
	err = e.Apply(SetSelection{Sel: model.Caret(d.Document.ID, para.ID, 99)})
	assert.Error(t, err)

	require.NoError(t, e.Apply(SetSelection{Sel: d.Caret("a")}))
	require.NotNil(t, e.Selection())
	require.NoError(t, e.Apply(SetSelection{}))
	assert.Nil(t, e.Selection())
}

func TestPasteReassignsIDs(t *testing.T) {
	src := doc(p("copy"), img("pic.png"))
	dst := doc(p("ab<a>"))
	e := NewEditor(dst.Document, builder.IDs())

	require.NoError(t, e.Apply(Input{Type: InsertFromPaste, Sel: dst.Caret("a"), Doc: src.Document}))
	got := e.Doc()
	require.Len(t, got.Blocks, 3)
	assert.Equal(t, "abcopy", paraAt(t, got, 0).TextContent())

	// the payload arrives under fresh ids
	pic, ok := got.Blocks[1].(*model.Image)
	require.True(t, ok)
	srcPic := src.Document.Blocks[1].(*model.Image)
	assert.Equal(t, srcPic.Src, pic.Src)
	assert.NotEqual(t, srcPic.ID, pic.ID)

	// one undo drops the whole paste
	require.NoError(t, e.Apply(Undo{}))
	require.Len(t, e.Doc().Blocks, 1)
	assert.Equal(t, "ab", paraAt(t, e.Doc(), 0).TextContent())
}

func TestCutRemovesSelectionAsOneStep(t *testing.T) {
	d := doc(p("ab<a>cd<b>ef"))
	e := NewEditor(d.Document, builder.IDs())

	require.NoError(t, e.Apply(Input{Type: DeleteByCut, Sel: d.Range("a", "b")}))
	assert.Equal(t, "abef", paraAt(t, e.Doc(), 0).TextContent())

	// a cut at a bare caret has nothing to take
	before := e.Doc()
	require.NoError(t, e.Apply(Input{Type: DeleteByCut}))
	assert.Same(t, before, e.Doc())

	require.NoError(t, e.Apply(Undo{}))
	assert.Equal(t, "abcdef", paraAt(t, e.Doc(), 0).TextContent())
}

func TestReplacementTextIsItsOwnStep(t *testing.T) {
	d := doc(p("teh<a>"))
	e := NewEditor(d.Document, builder.IDs())
	require.NoError(t, e.Apply(SetSelection{Sel: d.Caret("a")}))
	require.NoError(t, e.Apply(Input{Type: InsertText, Text: " "}))

	para := paraAt(t, e.Doc(), 0)
	fix := model.BlockSelection{
		Editor: d.Document.ID,
		Start:  model.TextPoint{Block: para.ID, Offset: 0},
		End:    model.TextPoint{Block: para.ID, Offset: 3},
	}
	require.NoError(t, e.Apply(Input{Type: InsertReplacementText, Text: "the", Sel: fix}))
	assert.Equal(t, "the ", paraAt(t, e.Doc(), 0).TextContent())

	// the autocorrect replacement did not merge into the typing run
	require.NoError(t, e.Apply(Undo{}))
	assert.Equal(t, "teh ", paraAt(t, e.Doc(), 0).TextContent())
	require.NoError(t, e.Apply(Undo{}))
	assert.Equal(t, "teh", paraAt(t, e.Doc(), 0).TextContent())
}
