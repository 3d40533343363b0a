// Package bridge translates between the engine's tree addresses and the
// flat container/offset positions a presentation layer works in. A native
// view names positions by the id of the nearest addressable element and a
// rune offset inside it; the engine names them by editor document, block,
// and paragraph offset. Resolve and Project convert one way each, and
// ResolveSelection turns a pair of native endpoints into a normalized
// engine selection.
package bridge

import (
	"github.com/notefold/richdoc-go/model"
)

// FlatPosition is a position the way the presentation layer reports it:
// a container id plus an offset inside that container. The container may
// be a text run, a paragraph, an opaque block, a table cell, or a
// document; offsets count runes for text containers and child blocks for
// cell and document containers. Opaque block containers ignore the
// offset.
type FlatPosition struct {
	Container string
	Offset    int
}

// Bias picks a side when a flat position sits on a seam that two engine
// points could equally claim, such as the boundary between two blocks of
// a document container.
type Bias int

const (
	// BiasBackward lands the caret at the end of the content before the
	// seam.
	BiasBackward Bias = iota
	// BiasForward lands the caret at the start of the content after the
	// seam.
	BiasForward
)

// Resolve maps a flat position to an engine location. Run offsets are
// shifted by the run's start so the point is paragraph-relative,
// paragraph offsets are taken as-is, and opaque blocks resolve to a
// BlockPoint addressing the block as a unit. Document and cell
// containers carry child indexes: the index names the seam between two
// sibling blocks and bias picks the side the caret lands on. Positions
// that name no container or overrun one are errors.
func Resolve(root *model.Document, pos FlatPosition, bias Bias) (model.Loc, error) {
	if d, ok := model.FindDocument(root, pos.Container); ok {
		return resolveSeam(d, pos.Offset, bias)
	}
	if d, ok := cellDocument(root, pos.Container); ok {
		return resolveSeam(d, pos.Offset, bias)
	}

	var (
		loc   model.Loc
		found bool
		bad   error
	)
	model.EachBlock(root, func(b model.BlockNode, owner *model.Document) {
		if found {
			return
		}
		p, ok := b.(*model.Paragraph)
		if !ok {
			if model.BlockID(b) == pos.Container {
				found = true
				loc = model.Loc{Editor: owner.ID, Point: model.BlockPoint{Block: pos.Container}}
			}
			return
		}
		if p.ID == pos.Container {
			found = true
			if pos.Offset < 0 || pos.Offset > p.Len() {
				bad = NewPositionError("offset %d outside paragraph %s", pos.Offset, p.ID)
				return
			}
			loc = model.Loc{Editor: owner.ID, Point: model.TextPoint{Block: p.ID, Offset: pos.Offset}}
			return
		}
		start := 0
		for _, r := range p.Content {
			if r.ID == pos.Container {
				found = true
				if pos.Offset < 0 || pos.Offset > r.Len() {
					bad = NewPositionError("offset %d outside run %s", pos.Offset, r.ID)
					return
				}
				loc = model.Loc{Editor: owner.ID, Point: model.TextPoint{Block: p.ID, Offset: start + pos.Offset}}
				return
			}
			start += r.Len()
		}
	})
	if bad != nil {
		return model.Loc{}, bad
	}
	if !found {
		return model.Loc{}, NewPositionError("no container %s", pos.Container)
	}
	return loc, nil
}

// ResolveSelection builds an engine selection from the two flat endpoints
// of a native selection. Endpoints in different nested documents project
// to their common editor, two endpoints descending into different cells
// of one table become a cell rectangle, and a pair landing on the same
// table block widens to the whole table. The bias applies to both ends.
func ResolveSelection(root *model.Document, anchor, head FlatPosition, bias Bias) (model.Selection, error) {
	a, err := Resolve(root, anchor, bias)
	if err != nil {
		return nil, err
	}
	h, err := Resolve(root, head, bias)
	if err != nil {
		return nil, err
	}
	sel, err := model.FindSelection(root, a, h)
	if err != nil {
		return nil, err
	}
	return model.FixSelection(root, sel)
}

// Project maps an engine location back to the flat position the
// presentation layer can place a native caret at. A caret on the seam
// between two adjacent runs could name either one; the run whose id
// equals preferRun wins, and otherwise the caret stays with the run
// before the seam, the text it visually follows.
func Project(root *model.Document, loc model.Loc, preferRun string) (FlatPosition, error) {
	d, ok := model.FindDocument(root, loc.Editor)
	if !ok {
		return FlatPosition{}, NewPositionError("no document %s", loc.Editor)
	}
	switch pt := loc.Point.(type) {
	case model.BlockPoint:
		if d.IndexOf(pt.Block) < 0 {
			return FlatPosition{}, NewPositionError("no block %s in document %s", pt.Block, d.ID)
		}
		return FlatPosition{Container: pt.Block}, nil
	case model.TextPoint:
		p, _, err := model.ParagraphIn(d, pt.Block)
		if err != nil {
			return FlatPosition{}, NewPositionError("no paragraph %s in document %s", pt.Block, d.ID)
		}
		if pt.Offset < 0 || pt.Offset > p.Len() {
			return FlatPosition{}, NewPositionError("offset %d outside paragraph %s", pt.Offset, p.ID)
		}
		start := 0
		for i, r := range p.Content {
			end := start + r.Len()
			switch {
			case pt.Offset > start && pt.Offset < end:
				return FlatPosition{Container: r.ID, Offset: pt.Offset - start}, nil
			case pt.Offset == start:
				if i == 0 || r.ID == preferRun {
					return FlatPosition{Container: r.ID}, nil
				}
				prev := p.Content[i-1]
				return FlatPosition{Container: prev.ID, Offset: prev.Len()}, nil
			}
			start = end
		}
		last := p.Content[len(p.Content)-1]
		return FlatPosition{Container: last.ID, Offset: last.Len()}, nil
	}
	panic("unknown point kind")
}

// ProjectSelection maps a selection to the flat anchor and head positions
// that place its native counterpart. Endpoint order is preserved, so a
// backward selection stays backward. A cell rectangle flattens to its two
// corner cells, which Resolve accepts back as cell containers.
func ProjectSelection(root *model.Document, sel model.Selection) (anchor, head FlatPosition, err error) {
	switch s := sel.(type) {
	case model.BlockSelection:
		anchor, err = Project(root, model.Loc{Editor: s.Editor, Point: s.Start}, "")
		if err != nil {
			return FlatPosition{}, FlatPosition{}, err
		}
		head, err = Project(root, model.Loc{Editor: s.Editor, Point: s.End}, "")
		if err != nil {
			return FlatPosition{}, FlatPosition{}, err
		}
		return anchor, head, nil
	case model.TableSelection:
		d, ok := model.FindDocument(root, s.Editor)
		if !ok {
			return FlatPosition{}, FlatPosition{}, NewPositionError("no document %s", s.Editor)
		}
		i := d.IndexOf(s.Table)
		if i < 0 {
			return FlatPosition{}, FlatPosition{}, NewPositionError("no table %s in document %s", s.Table, d.ID)
		}
		t, ok := d.Blocks[i].(*model.Table)
		if !ok {
			return FlatPosition{}, FlatPosition{}, NewPositionError("block %s is not a table", s.Table)
		}
		if !cellInRange(t, s.Start) || !cellInRange(t, s.End) {
			return FlatPosition{}, FlatPosition{}, NewPositionError("cell rectangle outside table %s", t.ID)
		}
		anchor = FlatPosition{Container: t.Cell(s.Start.Row, s.Start.Col).ID}
		head = FlatPosition{Container: t.Cell(s.End.Row, s.End.Col).ID}
		return anchor, head, nil
	}
	panic("unknown selection kind")
}

// resolveSeam turns a child index of a document into a point. Index i
// names the seam between blocks i-1 and i.
func resolveSeam(d *model.Document, off int, bias Bias) (model.Loc, error) {
	if off < 0 || off > len(d.Blocks) {
		return model.Loc{}, NewPositionError("block index %d outside document %s", off, d.ID)
	}
	if len(d.Blocks) == 0 {
		return model.Loc{}, NewPositionError("document %s holds no blocks", d.ID)
	}

	var b model.BlockNode
	var atEnd bool
	switch {
	case bias == BiasBackward && off > 0:
		b, atEnd = d.Blocks[off-1], true
	case bias == BiasBackward:
		b, atEnd = d.Blocks[0], false
	case off < len(d.Blocks):
		b, atEnd = d.Blocks[off], false
	default:
		b, atEnd = d.Blocks[len(d.Blocks)-1], true
	}

	if p, ok := b.(*model.Paragraph); ok {
		o := 0
		if atEnd {
			o = p.Len()
		}
		return model.Loc{Editor: d.ID, Point: model.TextPoint{Block: p.ID, Offset: o}}, nil
	}
	return model.Loc{Editor: d.ID, Point: model.BlockPoint{Block: model.BlockID(b)}}, nil
}

// cellDocument maps a cell id to the document held inside that cell.
func cellDocument(root *model.Document, id string) (*model.Document, bool) {
	var hit *model.Document
	model.Walk(root, func(d *model.Document, ctx *model.WalkContext) (model.WalkOp, *model.Document) {
		if ctx.Cell != nil && ctx.Cell.ID == id {
			hit = d
			return model.WalkStop, nil
		}
		return model.WalkContinue, nil
	})
	return hit, hit != nil
}

func cellInRange(t *model.Table, c model.CellIndex) bool {
	return c.Row >= 0 && c.Row < len(t.Rows) && c.Col >= 0 && c.Col < t.NumColumns
}
