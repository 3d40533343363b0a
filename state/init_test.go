package state_test

import (
	"github.com/notefold/richdoc-go/test/builder"
)

var (
	doc    = builder.Doc
	p      = builder.P
	h1     = builder.H1
	quote  = builder.Quote
	bullet = builder.Bullet
	img    = builder.Img
	table  = builder.Table
	tr     = builder.TableRow
	td     = builder.TableCell
	strong = builder.Strong
)
