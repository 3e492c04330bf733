package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/polyast/internal/lexer"
	"github.com/mvp-joe/polyast/internal/source"
	"github.com/mvp-joe/polyast/internal/token"
)

// Test Plan for Cursor:
// - Seek lands on the first token, skipping empty lines
// - Advance crosses lines in ascending order and ends at EOF
// - Peek/PeekN never move the cursor
// - Expect returns a MismatchError when the next token differs
// - AdvanceToEndOfLine and AdvanceUntil stay within one line
// - IndentOf/LineIndent read the leading Indent token

func newTestFile(t *testing.T, lines map[int]string) *lexer.File {
	t.Helper()
	src := source.NewFile(1, "test.rs", "rust", lines)
	return lexer.New().TokenizeFile(src, source.Brace)
}

func TestSeekAndAdvance(t *testing.T) {
	t.Parallel()

	f := newTestFile(t, map[int]string{
		5:  "struct A {",
		6:  "",
		9:  "    x: i32",
		12: "}",
	})

	c := New()
	assert.True(t, c.AtEOF())

	require.True(t, c.Seek(f, 6))
	assert.Equal(t, 9, c.Line(), "empty line skipped")
	assert.Equal(t, token.Indent, c.Current().Kind)

	require.True(t, c.Seek(f, 5))
	assert.Equal(t, token.ObjectDeclaration, c.Current().Kind)
	assert.Equal(t, token.Identifier, c.Advance().Kind)
	assert.Equal(t, token.BlockOpen, c.Advance().Kind)
	assert.Equal(t, token.Indent, c.Advance().Kind)
	assert.Equal(t, 9, c.Line())
	c.Advance() // x
	c.Advance() // :
	c.Advance() // i32
	assert.Equal(t, token.BlockClose, c.Advance().Kind)
	assert.Equal(t, 12, c.Line())
	assert.Equal(t, token.EOF, c.Advance().Kind)
	assert.True(t, c.AtEOF())
	assert.Equal(t, -1, c.Line())
	assert.Equal(t, token.EOF, c.Advance().Kind, "advance at EOF stays at EOF")

	assert.False(t, c.Seek(f, 100))
	assert.True(t, c.AtEOF())
}

func TestPeek(t *testing.T) {
	t.Parallel()

	f := newTestFile(t, map[int]string{1: "a b", 2: "c"})
	c := New()
	require.True(t, c.Seek(f, 1))

	assert.Equal(t, "b", c.Peek().Text)
	assert.Equal(t, "c", c.PeekN(2).Text)
	assert.Equal(t, token.EOF, c.PeekN(3).Kind)
	assert.Equal(t, "a", c.PeekN(0).Text)
	assert.Equal(t, "a", c.Current().Text, "peek does not move")
	assert.Equal(t, 0, c.Position())
	assert.Equal(t, -1, c.LastLine())

	assert.Equal(t, "b", c.PeekLine(1).Text)
	assert.Equal(t, token.EOF, c.PeekLine(2).Kind, "never crosses the line")

	c.Advance()
	assert.Equal(t, 1, c.LastLine())
}

func TestExpect(t *testing.T) {
	t.Parallel()

	f := newTestFile(t, map[int]string{1: "struct Foo {"})
	c := New()
	require.True(t, c.Seek(f, 1))

	got, err := c.Expect(token.New(token.Identifier))
	require.NoError(t, err)
	assert.Equal(t, "Foo", got.Text)

	_, err = c.Expect(token.Delim(token.Parenthesis, '('))
	require.Error(t, err)
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, token.BlockOpen, mismatch.Got.Kind)
}

func TestAdvanceToEndOfLine(t *testing.T) {
	t.Parallel()

	f := newTestFile(t, map[int]string{1: "a = 1 + 2", 3: "b"})
	c := New()
	require.True(t, c.Seek(f, 1))
	c.Advance()
	c.Advance()

	rest := c.AdvanceToEndOfLine()
	assert.Equal(t, "1+2", token.Join(rest))
	assert.Equal(t, 3, c.Line())
	assert.Equal(t, 1, c.LastLine())
	assert.Equal(t, "b", c.Current().Text)
}

func TestAdvanceUntil(t *testing.T) {
	t.Parallel()

	f := newTestFile(t, map[int]string{1: "x: Vec<u8> = v", 2: "y: i32", 3: "z"})
	c := New()

	require.True(t, c.Seek(f, 1))
	c.Advance()
	c.Advance()
	toks, found := c.AdvanceUntil(token.New(token.Equals))
	assert.True(t, found)
	assert.Equal(t, "Vec<u8>", token.Join(toks))
	assert.Equal(t, "v", c.Current().Text)

	require.True(t, c.Seek(f, 2))
	c.Advance()
	c.Advance()
	toks, found = c.AdvanceUntil(token.New(token.Equals))
	assert.False(t, found)
	assert.Equal(t, "i32", token.Join(toks))
	assert.Equal(t, 3, c.Line(), "search never crosses into the next line")
}

func TestIndent(t *testing.T) {
	t.Parallel()

	f := newTestFile(t, map[int]string{1: "class A:", 2: "    x", 3: "        y"})
	c := New()
	require.True(t, c.Seek(f, 2))

	assert.Equal(t, 4, c.LineIndent())
	assert.Equal(t, 0, c.IndentOf(1))
	assert.Equal(t, 8, c.IndentOf(3))
	assert.Len(t, c.LineTokens(), 2)

	c.SkipLine()
	assert.Equal(t, 3, c.Line())
	assert.True(t, c.OnLine(3))
	c.SkipLine()
	assert.True(t, c.AtEOF())
}
