package markdown_test

import "github.com/notefold/richdoc-go/test/builder"

var (
	doc      = builder.Doc
	p        = builder.P
	h1       = builder.H1
	h2       = builder.H2
	h4       = builder.H4
	quote    = builder.Quote
	bullet   = builder.Bullet
	num      = builder.Num
	img      = builder.Img
	pre      = builder.Code
	table    = builder.Table
	tr       = builder.TableRow
	td       = builder.TableCell
	strong   = builder.Strong
	em       = builder.Em
	u        = builder.U
	strike   = builder.Strike
	sub      = builder.Sub
	codespan = builder.CodeSpan
	link     = builder.Link
	run      = builder.Run
	styled   = builder.Styled
)
