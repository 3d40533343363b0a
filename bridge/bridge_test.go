package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/notefold/richdoc-go/bridge"
	"github.com/notefold/richdoc-go/model"
)

func firstParagraph(d *model.Document) *model.Paragraph {
	return d.Blocks[0].(*model.Paragraph)
}

func TestResolveRunOffsets(t *testing.T) {
	d := doc(p(strong("ab"), "cd"))
	para := firstParagraph(d.Document)
	bold, plain := para.Content[0], para.Content[1]

	loc, err := Resolve(d.Document, FlatPosition{Container: bold.ID, Offset: 1}, BiasForward)
	require.NoError(t, err)
	assert.Equal(t, model.Loc{Editor: d.Document.ID, Point: model.TextPoint{Block: para.ID, Offset: 1}}, loc)

	// offsets in a later run shift by the text before it
	loc, err = Resolve(d.Document, FlatPosition{Container: plain.ID, Offset: 1}, BiasForward)
	require.NoError(t, err)
	assert.Equal(t, model.TextPoint{Block: para.ID, Offset: 3}, loc.Point)

	// a run admits its own length but nothing past it
	loc, err = Resolve(d.Document, FlatPosition{Container: plain.ID, Offset: 2}, BiasForward)
	require.NoError(t, err)
	assert.Equal(t, model.TextPoint{Block: para.ID, Offset: 4}, loc.Point)
	_, err = Resolve(d.Document, FlatPosition{Container: plain.ID, Offset: 3}, BiasForward)
	assert.Error(t, err)
}

func TestResolveParagraphOffsets(t *testing.T) {
	d := doc(p(strong("ab"), "cd"))
	para := firstParagraph(d.Document)

	loc, err := Resolve(d.Document, FlatPosition{Container: para.ID, Offset: 4}, BiasForward)
	require.NoError(t, err)
	assert.Equal(t, model.TextPoint{Block: para.ID, Offset: 4}, loc.Point)

	_, err = Resolve(d.Document, FlatPosition{Container: para.ID, Offset: 5}, BiasForward)
	assert.Error(t, err)

	_, err = Resolve(d.Document, FlatPosition{Container: "ghost", Offset: 0}, BiasForward)
	assert.Error(t, err)
}

func TestResolveOpaqueBlock(t *testing.T) {
	d := doc(p("a"), img("pic.png"))
	pic := model.BlockID(d.Document.Blocks[1])

	// the offset inside an opaque block carries no meaning
	loc, err := Resolve(d.Document, FlatPosition{Container: pic, Offset: 1}, BiasBackward)
	require.NoError(t, err)
	assert.Equal(t, d.Document.ID, loc.Editor)
	assert.Equal(t, model.BlockPoint{Block: pic}, loc.Point)
}

func TestResolveDocumentSeam(t *testing.T) {
	d := doc(p("ab"), img("x.png"), p("cd"))
	first := firstParagraph(d.Document)
	last := d.Document.Blocks[2].(*model.Paragraph)
	pic := model.BlockID(d.Document.Blocks[1])

	// the seam between the first paragraph and the image
	loc, err := Resolve(d.Document, FlatPosition{Container: d.Document.ID, Offset: 1}, BiasBackward)
	require.NoError(t, err)
	assert.Equal(t, model.TextPoint{Block: first.ID, Offset: 2}, loc.Point)

	loc, err = Resolve(d.Document, FlatPosition{Container: d.Document.ID, Offset: 1}, BiasForward)
	require.NoError(t, err)
	assert.Equal(t, model.BlockPoint{Block: pic}, loc.Point)

	// document edges clamp regardless of bias
	loc, err = Resolve(d.Document, FlatPosition{Container: d.Document.ID, Offset: 0}, BiasBackward)
	require.NoError(t, err)
	assert.Equal(t, model.TextPoint{Block: first.ID, Offset: 0}, loc.Point)

	loc, err = Resolve(d.Document, FlatPosition{Container: d.Document.ID, Offset: 3}, BiasForward)
	require.NoError(t, err)
	assert.Equal(t, model.TextPoint{Block: last.ID, Offset: 2}, loc.Point)

	_, err = Resolve(d.Document, FlatPosition{Container: d.Document.ID, Offset: 4}, BiasForward)
	assert.Error(t, err)
}

func TestResolveCellContainer(t *testing.T) {
	d := doc(table(2, tr(td(p("hi")), td(p("yo")))))
	tab := d.Document.Blocks[0].(*model.Table)
	cell := tab.Rows[0].Cells[1]
	inner := firstParagraph(cell.Content)

	loc, err := Resolve(d.Document, FlatPosition{Container: cell.ID, Offset: 0}, BiasForward)
	require.NoError(t, err)
	assert.Equal(t, cell.Content.ID, loc.Editor)
	assert.Equal(t, model.TextPoint{Block: inner.ID, Offset: 0}, loc.Point)

	// a run inside a cell resolves against the cell's own document
	loc, err = Resolve(d.Document, FlatPosition{Container: inner.Content[0].ID, Offset: 2}, BiasForward)
	require.NoError(t, err)
	assert.Equal(t, cell.Content.ID, loc.Editor)
	assert.Equal(t, model.TextPoint{Block: inner.ID, Offset: 2}, loc.Point)
}

func TestResolveSelectionSpansRuns(t *testing.T) {
	d := doc(p("a<a>b", strong("c<b>d")))

	para := firstParagraph(d.Document)
	plain, bold := para.Content[0], para.Content[1]
	sel, err := ResolveSelection(d.Document,
		FlatPosition{Container: plain.ID, Offset: 1},
		FlatPosition{Container: bold.ID, Offset: 1},
		BiasForward)
	require.NoError(t, err)
	assert.Equal(t, d.Range("a", "b"), sel)
}

func TestResolveSelectionAcrossCells(t *testing.T) {
	d := doc(table(2,
		tr(td(p("a")), td(p("b"))),
		tr(td(p("c")), td(p("d"))),
	))
	tab := d.Document.Blocks[0].(*model.Table)
	topLeft := firstParagraph(tab.Rows[0].Cells[0].Content)
	bottomRight := firstParagraph(tab.Rows[1].Cells[1].Content)

	sel, err := ResolveSelection(d.Document,
		FlatPosition{Container: topLeft.ID, Offset: 0},
		FlatPosition{Container: bottomRight.ID, Offset: 1},
		BiasForward)
	require.NoError(t, err)
	assert.Equal(t, model.TableSelection{
		Editor: d.Document.ID,
		Table:  tab.ID,
		Start:  model.CellIndex{Row: 0, Col: 0},
		End:    model.CellIndex{Row: 1, Col: 1},
	}, sel)
}

func TestResolveSelectionOnTableWidens(t *testing.T) {
	d := doc(p("x"), table(2, tr(td(p("a")), td(p("b")))))
	tab := d.Document.Blocks[1].(*model.Table)

	sel, err := ResolveSelection(d.Document,
		FlatPosition{Container: tab.ID},
		FlatPosition{Container: tab.ID},
		BiasForward)
	require.NoError(t, err)
	assert.Equal(t, model.TableSelection{
		Editor: d.Document.ID,
		Table:  tab.ID,
		Start:  model.CellIndex{Row: 0, Col: 0},
		End:    model.CellIndex{Row: 0, Col: 1},
	}, sel)
}

func TestProjectPicksRunAtSeam(t *testing.T) {
	d := doc(p(strong("ab"), "cd"))
	para := firstParagraph(d.Document)
	bold, plain := para.Content[0], para.Content[1]

	at := func(off int, prefer string) FlatPosition {
		t.Helper()
		pos, err := Project(d.Document, model.Loc{
			Editor: d.Document.ID,
			Point:  model.TextPoint{Block: para.ID, Offset: off},
		}, prefer)
		require.NoError(t, err)
		return pos
	}

	assert.Equal(t, FlatPosition{Container: bold.ID, Offset: 1}, at(1, ""))
	assert.Equal(t, FlatPosition{Container: bold.ID, Offset: 0}, at(0, ""))
	assert.Equal(t, FlatPosition{Container: plain.ID, Offset: 2}, at(4, ""))

	// the seam between two runs stays with the text before it unless the
	// following run is asked for by id
	assert.Equal(t, FlatPosition{Container: bold.ID, Offset: 2}, at(2, ""))
	assert.Equal(t, FlatPosition{Container: plain.ID, Offset: 0}, at(2, plain.ID))
	assert.Equal(t, FlatPosition{Container: bold.ID, Offset: 2}, at(2, bold.ID))
}

func TestProjectBlockPoint(t *testing.T) {
	d := doc(p("a"), img("pic.png"))
	pic := model.BlockID(d.Document.Blocks[1])

	pos, err := Project(d.Document, model.Loc{Editor: d.Document.ID, Point: model.BlockPoint{Block: pic}}, "")
	require.NoError(t, err)
	assert.Equal(t, FlatPosition{Container: pic}, pos)

	_, err = Project(d.Document, model.Loc{Editor: "ghost", Point: model.BlockPoint{Block: pic}}, "")
	assert.Error(t, err)
	_, err = Project(d.Document, model.Loc{Editor: d.Document.ID, Point: model.TextPoint{Block: "ghost"}}, "")
	assert.Error(t, err)
}

func TestProjectSelectionKeepsEndpointOrder(t *testing.T) {
	d := doc(p("ab<h>c"), p("d<a>ef"))
	first := firstParagraph(d.Document)
	second := d.Document.Blocks[1].(*model.Paragraph)

	anchor, head, err := ProjectSelection(d.Document, model.BlockSelection{
		Editor: d.Document.ID,
		Start:  d.Point("a"),
		End:    d.Point("h"),
	})
	require.NoError(t, err)
	assert.Equal(t, FlatPosition{Container: second.Content[0].ID, Offset: 1}, anchor)
	assert.Equal(t, FlatPosition{Container: first.Content[0].ID, Offset: 2}, head)
}

func TestProjectSelectionRectCorners(t *testing.T) {
	d := doc(table(2,
		tr(td(p("a")), td(p("b"))),
		tr(td(p("c")), td(p("d"))),
	))
	tab := d.Document.Blocks[0].(*model.Table)

	rect := model.TableSelection{
		Editor: d.Document.ID,
		Table:  tab.ID,
		Start:  model.CellIndex{Row: 1, Col: 1},
		End:    model.CellIndex{Row: 0, Col: 0},
	}
	anchor, head, err := ProjectSelection(d.Document, rect)
	require.NoError(t, err)
	assert.Equal(t, FlatPosition{Container: tab.Rows[1].Cells[1].ID}, anchor)
	assert.Equal(t, FlatPosition{Container: tab.Rows[0].Cells[0].ID}, head)

	// the corner cells resolve back to the same rectangle
	sel, err := ResolveSelection(d.Document, anchor, head, BiasForward)
	require.NoError(t, err)
	assert.Equal(t, rect, sel)

	_, _, err = ProjectSelection(d.Document, model.TableSelection{
		Editor: d.Document.ID,
		Table:  tab.ID,
		Start:  model.CellIndex{Row: 2, Col: 0},
		End:    model.CellIndex{},
	})
	assert.Error(t, err)
}

func TestProjectResolveRoundTrip(t *testing.T) {
	d := doc(
		p("a<a>bc", strong("de<b>f")),
		img("i.png"),
		table(1, tr(td(p("x<c>y")))),
	)

	for _, name := range []string{"a", "b", "c"} {
		loc := d.Loc(name)
		pos, err := Project(d.Document, loc, "")
		require.NoError(t, err)
		back, err := Resolve(d.Document, pos, BiasForward)
		require.NoError(t, err)
		assert.Equal(t, loc, back, "tag %s", name)
	}
}
