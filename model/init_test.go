package model_test

import (
	"github.com/notefold/richdoc-go/test/builder"
)

var (
	doc    = builder.Doc
	p      = builder.P
	h1     = builder.H1
	h2     = builder.H2
	quote  = builder.Quote
	bullet = builder.Bullet
	num    = builder.Num
	numAt  = builder.NumAt
	styled = builder.Styled
	img    = builder.Img
	pre    = builder.Code
	table  = builder.Table
	tr     = builder.TableRow
	td     = builder.TableCell
	strong = builder.Strong
	em     = builder.Em
	run    = builder.Run
)
