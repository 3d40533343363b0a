package model

// TextStyle is the formatting attached to a single run of text: emphasis
// toggles, an optional script shift, and an optional link target. It is a
// plain value; two runs with equal styles can be merged into one.
type TextStyle struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Code          bool
	Script        Script
	Link          string
}

// Script marks a run as subscript or superscript. A run carries at most one
// of the two.
type Script int

const (
	ScriptNone Script = iota
	ScriptSub
	ScriptSuper
)

// Eq tests whether two styles are identical in every attribute.
func (s TextStyle) Eq(other TextStyle) bool {
	return s == other
}

// IsZero reports whether the style is plain text: no toggles, no script, no
// link.
func (s TextStyle) IsZero() bool {
	return s == TextStyle{}
}

// ParagraphKind selects the block-level role of a paragraph. List kinds
// cooperate with ListID and Indent to form logical lists.
type ParagraphKind int

const (
	KindDefault ParagraphKind = iota
	KindHeading1
	KindHeading2
	KindHeading3
	KindHeading4
	KindQuote
	KindBullet
	KindNumber
)

// Alignment is the horizontal alignment of a paragraph.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// MaxIndent is the deepest indent level a paragraph can take. Constructors
// clamp to it rather than fail.
const MaxIndent = 8

// ParagraphStyle holds the block-level formatting of a paragraph. Paragraphs
// that share a non-empty ListID form one logical list even when paragraphs
// of another list sit between them.
type ParagraphStyle struct {
	Kind   ParagraphKind
	ListID string
	Align  Alignment
	Indent int
}

// Eq tests whether two paragraph styles are identical.
func (s ParagraphStyle) Eq(other ParagraphStyle) bool {
	return s == other
}

// IsDefault reports whether the style is the plain left-aligned default.
func (s ParagraphStyle) IsDefault() bool {
	return s == ParagraphStyle{}
}

// IsList reports whether the paragraph is a bullet or numbered list item.
func (s ParagraphStyle) IsList() bool {
	return s.Kind == KindBullet || s.Kind == KindNumber
}

// Demote removes one level of decoration: an indented paragraph loses one
// indent step, then a list/quote/heading paragraph falls back to the default
// kind, then a non-left alignment falls back to left. A backspace at offset
// zero peels these off one keypress at a time.
func (s ParagraphStyle) Demote() ParagraphStyle {
	if s.Indent > 0 {
		s.Indent--
		return s
	}
	if s.Kind != KindDefault {
		s.Kind = KindDefault
		s.ListID = ""
		return s
	}
	if s.Align != AlignLeft {
		s.Align = AlignLeft
	}
	return s
}

// clampIndent keeps indent levels inside the allowed range.
func clampIndent(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxIndent {
		return MaxIndent
	}
	return level
}
