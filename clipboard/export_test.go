package clipboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/notefold/richdoc-go/clipboard"
	"github.com/notefold/richdoc-go/model"
)

func TestCopyRendersSemanticMarkup(t *testing.T) {
	d := doc(
		h1("Title"),
		p("plain ", strong("bold")),
		quote("wise words"),
		bullet("l1", "first"),
		bullet("l1", "second"),
		pre("x := 1", "go"),
		img("cat.png", "a cat"),
	)
	pay, err := Copy(d.Document)
	require.NoError(t, err)

	assert.Contains(t, pay.HTML, "<h1>Title</h1>")
	assert.Contains(t, pay.HTML, "<p>plain <strong>bold</strong></p>")
	assert.Contains(t, pay.HTML, "<blockquote><p>wise words</p></blockquote>")
	assert.Contains(t, pay.HTML, "<ul><li>first</li><li>second</li></ul>")
	assert.Contains(t, pay.HTML, `<pre><code class="language-go">x := 1</code></pre>`)
	assert.Contains(t, pay.HTML, `<img src="cat.png"`)
	assert.Contains(t, pay.HTML, "<figcaption>a cat</figcaption>")
	assert.Contains(t, pay.HTML, DataAttr)
}

func TestCopyNumberedListResumesOrdinal(t *testing.T) {
	d := doc(
		num("n1", "one"),
		num("n1", "two"),
		p("break"),
		num("n1", "three"),
	)
	pay, err := Copy(d.Document)
	require.NoError(t, err)

	assert.Contains(t, pay.HTML, "<ol><li>one</li><li>two</li></ol>")
	assert.Contains(t, pay.HTML, `<ol start="3"><li>three</li></ol>`)
}

func TestCopyNestsListByIndent(t *testing.T) {
	d := doc(
		bullet("l1", "top"),
		styled(model.ParagraphStyle{Kind: model.KindBullet, ListID: "l1", Indent: 1}, "sub"),
		bullet("l1", "back"),
	)
	pay, err := Copy(d.Document)
	require.NoError(t, err)

	assert.Contains(t, pay.HTML, "<ul><li>top<ul><li>sub</li></ul></li><li>back</li></ul>")
}

func TestCopyWrapsMarksAroundRun(t *testing.T) {
	st := model.TextStyle{Bold: true, Italic: true, Link: "https://x.test"}
	d := doc(p(run("click", st)))
	pay, err := Copy(d.Document)
	require.NoError(t, err)

	assert.Contains(t, pay.HTML, `<a href="https://x.test"><strong><em>click</em></strong></a>`)
}

func TestCopyAlignmentStyle(t *testing.T) {
	d := doc(styled(model.ParagraphStyle{Align: model.AlignCenter}, "mid"))
	pay, err := Copy(d.Document)
	require.NoError(t, err)

	assert.Contains(t, pay.HTML, `<p style="text-align:center">mid</p>`)
}

func TestCopyPlainTextFlavor(t *testing.T) {
	d := doc(
		p("hello"),
		table(2, tr(td(p("a")), td(p("b")))),
		img("x.png", "pic"),
	)
	pay, err := Copy(d.Document)
	require.NoError(t, err)

	assert.Equal(t, "hello\na\tb\npic", pay.Text)
}

func TestCopyTableRendersNestedCells(t *testing.T) {
	d := doc(table(2,
		tr(td(p("plain")), td(h2("head"))),
	))
	pay, err := Copy(d.Document)
	require.NoError(t, err)

	assert.Contains(t, pay.HTML, "<table><tr><td><p>plain</p></td><td><h2>head</h2></td></tr></table>")
}
