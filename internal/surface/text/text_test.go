package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmlpad/internal/editor"
)

func TestRenderExampleDocument(t *testing.T) {
	s := New()
	h, err := s.Load(editor.ExampleMarkup())
	require.NoError(t, err)
	assert.NotZero(t, h)
	assert.Equal(t, "Sample Page", s.Title())

	out := s.Content()
	assert.Equal(t, []string{
		"Live Preview",
		"Edit the markup on the left, then press Run.",
		"[ Tint ] [ Count ]",
		"Nothing clicked yet.",
	}, strings.Split(out, "\n"))
	assert.NotContains(t, out, "addEventListener")
	assert.NotContains(t, out, "font-family")
}

func TestHandlesAreFresh(t *testing.T) {
	s := New()
	a, _ := s.Load("<p>a</p>")
	b, _ := s.Load("<p>b</p>")
	assert.NotEqual(t, a, b)
	assert.Equal(t, "b", s.Content())
}

func TestMalformedMarkupStillRenders(t *testing.T) {
	out, err := Render("<div><p>unterminated <b>bold")
	require.NoError(t, err)
	assert.Equal(t, "unterminated bold", out)
}

func TestListsAndBreaks(t *testing.T) {
	out, err := Render("<ul><li>one</li><li>two</li></ul>a<br>b")
	require.NoError(t, err)
	assert.Equal(t, "• one\n• two\na\nb", out)
}

func TestPreKeepsLines(t *testing.T) {
	out, err := Render("<pre>x  y\n  z</pre>")
	require.NoError(t, err)
	assert.Equal(t, "x  y\n  z", out)
}

func TestEmptyInput(t *testing.T) {
	out, err := Render("")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
