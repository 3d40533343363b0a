package bridge_test

import (
	"github.com/notefold/richdoc-go/test/builder"
)

var (
	doc    = builder.Doc
	p      = builder.P
	img    = builder.Img
	table  = builder.Table
	tr     = builder.TableRow
	td     = builder.TableCell
	strong = builder.Strong
)
