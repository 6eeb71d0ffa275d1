package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentEmptyBodyIsSynthesised(t *testing.T) {
	d := NewDocument()
	d.BeginDocument()

	out, err := d.Finish()
	require.NoError(t, err)
	assert.Equal(t, "<!doctype html>\n<html>\n<body></body>\n</html>", out)
}

func TestDocumentHeadIsOneFragment(t *testing.T) {
	d := NewDocument()
	d.BeginDocument()
	d.BeginHead()
	require.NoError(t, d.Title("  The Simpsons "))
	d.EndHead()

	assert.True(t, d.HeadDeclared())
	assert.Equal(t, []string{"<!doctype html>", "<html>", "<head><title>The Simpsons</title></head>"}, d.Fragments())
}

func TestDocumentTitleNeedsOpenHead(t *testing.T) {
	d := NewDocument()
	assert.Error(t, d.Title("x"))
}

func TestDocumentBeginBodyClosesHead(t *testing.T) {
	d := NewDocument()
	d.BeginHead()
	require.NoError(t, d.Title("t"))
	d.BeginBody()

	assert.Equal(t, []string{"<head><title>t</title></head>", "<body>"}, d.Fragments())
}

func TestDocumentBeginBodyIdempotent(t *testing.T) {
	d := NewDocument()
	d.BeginBody()
	d.BeginBody()
	d.EndBody()
	d.BeginBody()

	assert.Equal(t, []string{"<body>", "</body>"}, d.Fragments())
}

func TestDocumentTextModes(t *testing.T) {
	d := NewDocument()
	d.Text("red blue")
	assert.True(t, d.WordPerLine())

	d.BeginParagraph()
	assert.False(t, d.WordPerLine())
	d.Text("red blue")
	d.EndParagraph()
	assert.True(t, d.WordPerLine())

	assert.Equal(t, []string{"<body>", "red", "blue", "<p>", "red blue", "</p>"}, d.Fragments())
}

func TestDocumentTextNormalisesLineBreaks(t *testing.T) {
	d := NewDocument()
	d.BeginParagraph()
	d.Text(" one\r\ntwo\nthree ")
	d.Text("\n \r\n")

	assert.Equal(t, []string{"<body>", "<p>", "one  two three"}, d.Fragments())
}

func TestDocumentEmptyTextDoesNotOpenBody(t *testing.T) {
	d := NewDocument()
	d.Text("  \n ")
	assert.Empty(t, d.Fragments())
}

func TestDocumentInlineElements(t *testing.T) {
	d := NewDocument()
	d.Bold(" a<b ")
	d.Italics("x & y")
	d.Break()
	d.Comment(" note ")

	assert.Equal(t, []string{"<body>", "<b>a<b</b>", "<i>x & y</i>", "<br>", "<!-- note -->"}, d.Fragments())
}

func TestDocumentCommentDoesNotOpenBody(t *testing.T) {
	d := NewDocument()
	d.BeginDocument()
	d.Comment("top")

	out, err := d.Finish()
	require.NoError(t, err)
	assert.Equal(t, "<!doctype html>\n<html>\n<!-- top -->\n<body></body>\n</html>", out)
}

func TestDocumentFinishClosesBodyOnce(t *testing.T) {
	d := NewDocument()
	d.BeginDocument()
	d.Text("hi")
	d.EndBody()

	out, err := d.Finish()
	require.NoError(t, err)
	assert.Equal(t, "<!doctype html>\n<html>\n<body>\nhi\n</body>\n</html>", out)
}

func TestDocumentFinishClosesOpenBody(t *testing.T) {
	d := NewDocument()
	d.BeginDocument()
	d.Text("hi")

	out, err := d.Finish()
	require.NoError(t, err)
	assert.Equal(t, "<!doctype html>\n<html>\n<body>\nhi\n</body>\n</html>", out)
}

func TestDocumentFinishTwice(t *testing.T) {
	d := NewDocument()
	d.BeginDocument()
	_, err := d.Finish()
	require.NoError(t, err)

	_, err = d.Finish()
	assert.ErrorIs(t, err, ErrFinished)
}

func TestEscapeAttr(t *testing.T) {
	assert.Equal(t, "a&amp;b &quot;c&quot; &lt;d&gt; &#39;e&#39;", EscapeAttr(`a&b "c" <d> 'e'`))
	assert.Equal(t, "https://x.io/v.mp4", EscapeAttr("https://x.io/v.mp4"))
}
