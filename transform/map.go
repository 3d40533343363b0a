// Package transform implements the pure edit operations: removing,
// inserting, extracting and restyling the content a selection covers.
// Every operation takes a document and returns a new one, never touching
// the old tree, together with a SelMapper that re-projects selections
// computed against the pre-edit tree onto the post-edit tree.
package transform

import "github.com/notefold/richdoc-go/model"

// SelMapper maps a selection across an edit. Positions the edit removed
// collapse to the natural caret the edit leaves behind; positions after a
// removed or inserted span shift; everything else comes back unchanged.
// Mapping the edit's own selection yields the natural post-edit selection:
// the caret at the cut for a block removal, the still-selected rectangle
// for a cell clear.
type SelMapper func(model.Selection) model.Selection

// Identity is the mapper of an edit that moved nothing.
func Identity(sel model.Selection) model.Selection {
	return sel
}

// Compose chains mappers left to right, for re-projecting a selection
// across a sequence of edits.
func Compose(mappers ...SelMapper) SelMapper {
	return func(sel model.Selection) model.Selection {
		for _, m := range mappers {
			sel = m(sel)
		}
		return sel
	}
}

// remap is the state behind a SelMapper: the post-edit tree, the caret the
// edit collapses removed positions to, and per-paragraph offset shifts for
// the boundary paragraphs the edit rewrote.
type remap struct {
	newRoot *model.Document
	seam    model.BlockSelection
	shifts  map[string]func(offset int) model.TextPoint
}

func newRemap(newRoot *model.Document, seam model.BlockSelection) *remap {
	return &remap{newRoot: newRoot, seam: seam, shifts: map[string]func(int) model.TextPoint{}}
}

// mapSelection implements SelMapper. A selection whose editor or blocks no
// longer exist collapses to the seam; points in a rewritten boundary
// paragraph go through its shift; everything else survives as is.
func (rm *remap) mapSelection(sel model.Selection) model.Selection {
	switch s := sel.(type) {
	case model.BlockSelection:
		if _, ok := model.FindDocument(rm.newRoot, s.Editor); !ok {
			return rm.seam
		}
		start, okStart := rm.mapPoint(s.Start)
		end, okEnd := rm.mapPoint(s.End)
		if !okStart && !okEnd {
			return rm.seam
		}
		// One endpoint fell inside the removed span. When the selection
		// lives in the seam's editor the seam point stands in for it;
		// otherwise the whole selection collapses.
		if !okStart || !okEnd {
			if s.Editor != rm.seam.Editor {
				return rm.seam
			}
			if !okStart {
				start = rm.seam.Start
			}
			if !okEnd {
				end = rm.seam.End
			}
		}
		return model.BlockSelection{Editor: s.Editor, Start: start, End: end}
	case model.TableSelection:
		if _, ok := model.FindBlock(rm.newRoot, s.Table); !ok {
			return rm.seam
		}
		return s
	}
	panic("unknown selection kind")
}

// mapPoint maps one endpoint. The boolean reports whether the point
// survived; a point inside the removed span did not.
func (rm *remap) mapPoint(p model.Point) (model.Point, bool) {
	if tp, ok := p.(model.TextPoint); ok {
		if shift, ok := rm.shifts[tp.Block]; ok {
			return shift(tp.Offset), true
		}
	}
	if _, ok := model.FindBlock(rm.newRoot, model.PointBlock(p)); ok {
		return p, true
	}
	return nil, false
}
