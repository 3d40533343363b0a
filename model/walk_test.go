package model_test

import (
	"testing"

	. "github.com/notefold/richdoc-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nested builds a document with a table whose first cell holds another
// table, giving the walk three levels to traverse.
func nested() (root *Document, inner *Document, deep *Document) {
	deepCell := td(p("deep"))
	innerCell := td(table(1, tr(deepCell)))
	d := doc(
		p("before"),
		table(2, tr(innerCell, td(p("side")))),
		p("after"),
	)
	deep = deepCell.Content
	inner = innerCell.Content
	return d.Document, inner, deep
}

func TestWalkOrder(t *testing.T) {
	root, inner, deep := nested()

	var visited []string
	Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		visited = append(visited, d.ID)
		return WalkContinue, nil
	})

	// depth-first: the inner cell and its nested document come before the
	// second cell of the outer table
	require.Len(t, visited, 4)
	assert.Equal(t, root.ID, visited[0])
	assert.Equal(t, inner.ID, visited[1])
	assert.Equal(t, deep.ID, visited[2])

	// context names the table and cell the document hangs in
	Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		if d == inner {
			assert.Same(t, root, ctx.Parent)
			assert.Equal(t, 0, ctx.Row)
			assert.Equal(t, 0, ctx.Col)
		}
		return WalkContinue, nil
	})
}

func TestWalkPruneAndStop(t *testing.T) {
	root, inner, deep := nested()

	// prune skips everything beneath the pruned document but not its
	// siblings
	var visited []string
	Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		visited = append(visited, d.ID)
		if d == inner {
			return WalkPrune, nil
		}
		return WalkContinue, nil
	})
	require.Len(t, visited, 3)
	assert.NotContains(t, visited, deep.ID)

	// stop halts the whole traversal
	visited = nil
	stopped := Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		visited = append(visited, d.ID)
		if d == inner {
			return WalkStop, nil
		}
		return WalkContinue, nil
	})
	assert.True(t, stopped)
	assert.Len(t, visited, 2)

	// a walk that runs to the end reports no stop
	assert.False(t, Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		return WalkContinue, nil
	}))
}

func TestWalkReadOnly(t *testing.T) {
	root, _, _ := nested()
	ids := NewSeq("ro")

	// a read-only walk refuses replacements instead of dropping them
	assert.Panics(t, func() {
		Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
			return WalkContinue, d.Copy([]BlockNode{EmptyParagraph(ids)})
		})
	})
}

func TestMapDocuments(t *testing.T) {
	root, inner, _ := nested()
	ids := NewSeq("map")

	extra := NewParagraph(ids, ParagraphStyle{}, NewTextRun(ids, "new", TextStyle{}))
	mapped, stopped := MapDocuments(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		if d == inner {
			blocks := append(append([]BlockNode(nil), d.Blocks...), extra)
			return WalkContinue, d.Copy(blocks)
		}
		return WalkContinue, nil
	})
	assert.False(t, stopped)
	require.NotSame(t, root, mapped)

	// the rebuilt path reaches the replacement
	found, ok := FindDocument(mapped, inner.ID)
	require.True(t, ok)
	assert.Len(t, found.Blocks, len(inner.Blocks)+1)

	// untouched siblings are shared with the old tree, not copied
	assert.Same(t, root.Blocks[0], mapped.Blocks[0])
	assert.Same(t, root.Blocks[2], mapped.Blocks[2])
	oldTable := root.Blocks[1].(*Table)
	newTable := mapped.Blocks[1].(*Table)
	require.NotSame(t, oldTable, newTable)
	assert.Same(t, oldTable.Rows[0].Cells[1], newTable.Rows[0].Cells[1])

	// the old tree still holds the old content
	old, ok := FindDocument(root, inner.ID)
	require.True(t, ok)
	assert.Len(t, old.Blocks, len(inner.Blocks))

	// mapping without replacements returns the root unchanged
	same, _ := MapDocuments(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		return WalkContinue, nil
	})
	assert.Same(t, root, same)
}

func TestEachBlockSeesEverything(t *testing.T) {
	root, _, _ := nested()

	count := 0
	EachBlock(root, func(b BlockNode, owner *Document) {
		count++
	})
	// three root blocks, one table block in the inner cell, one paragraph
	// in each of the three cells
	assert.Equal(t, 6, count)

	// the block callback keeps firing after the visitor stops
	count = 0
	Walk(root, func(d *Document, ctx *WalkContext) (WalkOp, *Document) {
		return WalkStop, nil
	}, func(b BlockNode, owner *Document) {
		count++
	})
	assert.Equal(t, 6, count)
}
