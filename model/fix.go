package model

// FixParagraph returns the canonical form of a paragraph: zero-length runs
// are dropped, adjacent runs with equal styles are merged into one run that
// keeps the left run's id, and a paragraph left without runs gets a single
// empty run back so a caret always has somewhere to sit. A paragraph that
// is already canonical is returned unchanged, so calling FixParagraph twice
// is the same as calling it once.
func FixParagraph(p *Paragraph, ids IDSource) *Paragraph {
	if paragraphIsCanonical(p) {
		return p
	}
	runs := make([]*TextRun, 0, len(p.Content))
	for _, r := range p.Content {
		if r.Len() == 0 {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].Style.Eq(r.Style) {
			runs[n-1] = runs[n-1].Copy(runs[n-1].Text + r.Text)
		} else {
			runs = append(runs, r)
		}
	}
	if len(runs) == 0 {
		if len(p.Content) > 0 {
			// All runs were empty. The first one survives as the
			// paragraph's single empty run, keeping its id and style.
			runs = []*TextRun{p.Content[0]}
		} else {
			runs = []*TextRun{NewTextRun(ids, "", TextStyle{})}
		}
	}
	return p.Copy(runs)
}

// JoinParagraphs concatenates the runs of b onto a and canonicalizes the
// result. The joined paragraph keeps a's id and style; b's identity is
// gone. When the boundary runs merge, the merged run keeps a's run id, the
// same rule FixParagraph applies everywhere.
func JoinParagraphs(a, b *Paragraph, ids IDSource) *Paragraph {
	runs := make([]*TextRun, 0, len(a.Content)+len(b.Content))
	runs = append(runs, a.Content...)
	runs = append(runs, b.Content...)
	return FixParagraph(a.Copy(runs), ids)
}

// paragraphIsCanonical reports whether FixParagraph would leave the
// paragraph untouched. A single run is always canonical, even when empty;
// with more than one run, no run may be empty and no two neighbours may
// share a style.
func paragraphIsCanonical(p *Paragraph) bool {
	if len(p.Content) == 0 {
		return false
	}
	if len(p.Content) == 1 {
		return true
	}
	for i, r := range p.Content {
		if r.Len() == 0 {
			return false
		}
		if i > 0 && p.Content[i-1].Style.Eq(r.Style) {
			return false
		}
	}
	return true
}
