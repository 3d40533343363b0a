package model

// BlockRange describes where two versions of a document differ. Blocks
// before From and after the tail are unchanged; a's blocks [From, ToA)
// were replaced by b's blocks [From, ToB). Renderers re-draw only this
// window.
type BlockRange struct {
	From int
	ToA  int
	ToB  int
}

// ChangedRange compares two documents block by block and returns the
// differing window, or nil when they are equal. Structural sharing makes
// the common case cheap: an untouched block in the new tree is the same
// pointer as in the old one. Blocks that kept their content but were
// re-keyed count as changed, since anything keyed by id must re-render
// them.
func ChangedRange(a, b *Document) *BlockRange {
	start := 0
	for start < len(a.Blocks) && start < len(b.Blocks) && sameBlock(a.Blocks[start], b.Blocks[start]) {
		start++
	}
	if start == len(a.Blocks) && start == len(b.Blocks) {
		return nil
	}
	endA, endB := len(a.Blocks), len(b.Blocks)
	for endA > start && endB > start && sameBlock(a.Blocks[endA-1], b.Blocks[endB-1]) {
		endA--
		endB--
	}
	return &BlockRange{From: start, ToA: endA, ToB: endB}
}

func sameBlock(a, b BlockNode) bool {
	if a == b {
		return true
	}
	return BlockID(a) == BlockID(b) && BlockEq(a, b)
}
