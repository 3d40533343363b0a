package transform_test

import (
	"testing"

	"github.com/notefold/richdoc-go/model"
	"github.com/notefold/richdoc-go/test/builder"
	. "github.com/notefold/richdoc-go/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCollapsed(t *testing.T) {
	d := doc(p("he<a>llo"))

	got, err := ExtractSelection(d.Document, d.Caret("a"), builder.IDs())
	require.NoError(t, err)

	// a caret extracts the empty document
	require.Len(t, got.Blocks, 1)
	assert.Equal(t, 0, paraAt(t, got, 0).Len())
}

func TestExtractWithinParagraph(t *testing.T) {
	d := doc(p("he<a>llo wo<b>rld"))
	orig := paraAt(t, d.Document, 0)

	got, err := ExtractSelection(d.Document, d.Range("a", "b"), builder.IDs())
	require.NoError(t, err)

	// the fragment shares the source ids; re-keying happens on ingestion,
	// not on the way out
	require.Len(t, got.Blocks, 1)
	frag := paraAt(t, got, 0)
	assert.Equal(t, "llo wo", frag.TextContent())
	assert.Equal(t, orig.ID, frag.ID)
	assert.Equal(t, orig.Content[0].ID, frag.Content[0].ID)

	// the source is untouched
	assert.Equal(t, "hello world", orig.TextContent())
}

func TestExtractAcrossBlocks(t *testing.T) {
	d := doc(p("fo<a>o"), img("pic.png"), p("b<b>ar"))

	got, err := ExtractSelection(d.Document, d.Range("a", "b"), builder.IDs())
	require.NoError(t, err)

	// boundary paragraphs are cut to the range, middles are shared whole
	require.Len(t, got.Blocks, 3)
	assert.Equal(t, "o", paraAt(t, got, 0).TextContent())
	assert.Same(t, d.Document.Blocks[1], got.Blocks[1])
	assert.Equal(t, "b", paraAt(t, got, 2).TextContent())

	// the extracted text equals the span of the rendered text
	full := []rune(model.Text(d.Document))
	from, ok := model.PointTextOffset(d.Document, d.Point("a"))
	require.True(t, ok)
	to, ok := model.PointTextOffset(d.Document, d.Point("b"))
	require.True(t, ok)
	assert.Equal(t, string(full[from:to]), model.Text(got))
}

func TestExtractWholeOpaqueBlock(t *testing.T) {
	d := doc(p("x"), img("pic.png"))
	image := d.Document.Blocks[1].(*model.Image)
	sel := model.BlockSelection{
		Editor: d.ID,
		Start:  model.BlockPoint{Block: image.ID},
		End:    model.BlockPoint{Block: image.ID},
	}

	got, err := ExtractSelection(d.Document, sel, builder.IDs())
	require.NoError(t, err)

	require.Len(t, got.Blocks, 1)
	assert.Same(t, image, got.Blocks[0])
}

func TestExtractTableRectangle(t *testing.T) {
	d := doc(table(3,
		tr(td(p("a1")), td(p("b1")), td(p("c1"))),
		tr(td(p("a2")), td(p("b2")), td(p("c2"))),
	))
	tbl := d.Document.Blocks[0].(*model.Table)

	got, err := ExtractSelection(d.Document, model.TableSelection{
		Editor: d.ID, Table: tbl.ID,
		Start: model.CellIndex{Row: 0, Col: 1},
		End:   model.CellIndex{Row: 1, Col: 2},
	}, builder.IDs())
	require.NoError(t, err)

	// the rectangle extracts as a table of its own dimensions, sharing the
	// covered cells
	require.Len(t, got.Blocks, 1)
	sub := got.Blocks[0].(*model.Table)
	assert.Equal(t, 2, sub.NumColumns)
	require.Len(t, sub.Rows, 2)
	assert.Same(t, tbl.Cell(0, 1), sub.Cell(0, 0))
	assert.Same(t, tbl.Cell(1, 2), sub.Cell(1, 1))
	assert.Equal(t, "b1", sub.Cell(0, 0).Content.Blocks[0].(*model.Paragraph).TextContent())

	// a single cell extracts as a one by one table
	one, err := ExtractSelection(d.Document, model.TableSelection{
		Editor: d.ID, Table: tbl.ID,
		Start: model.CellIndex{Row: 1, Col: 1},
		End:   model.CellIndex{Row: 1, Col: 1},
	}, builder.IDs())
	require.NoError(t, err)
	single := one.Blocks[0].(*model.Table)
	assert.Equal(t, 1, single.NumColumns)
	require.Len(t, single.Rows, 1)
	assert.Equal(t, "b2", single.Cell(0, 0).Content.Blocks[0].(*model.Paragraph).TextContent())
}

func TestExtractWholeTableSelection(t *testing.T) {
	d := doc(table(2,
		tr(td(p("a1")), td(p("b1"))),
		tr(td(p("a2")), td(p("b2"))),
	))
	tbl := d.Document.Blocks[0].(*model.Table)

	// a whole-table block selection promotes to the full rectangle
	got, err := ExtractSelection(d.Document, model.BlockSelection{
		Editor: d.ID,
		Start:  model.BlockPoint{Block: tbl.ID},
		End:    model.BlockPoint{Block: tbl.ID},
	}, builder.IDs())
	require.NoError(t, err)

	require.Len(t, got.Blocks, 1)
	sub := got.Blocks[0].(*model.Table)
	assert.True(t, tbl.Eq(sub))
}

func TestExtractErrors(t *testing.T) {
	d := doc(p("hello"))
	para := paraAt(t, d.Document, 0)

	_, err := ExtractSelection(d.Document, model.Caret("ghost", para.ID, 0), builder.IDs())
	assert.Error(t, err)

	_, err = ExtractSelection(d.Document, model.BlockSelection{
		Editor: d.ID,
		Start:  model.TextPoint{Block: para.ID, Offset: 0},
		End:    model.TextPoint{Block: para.ID, Offset: 99},
	}, builder.IDs())
	assert.Error(t, err)
}
