// Package cursor provides positioned navigation over tokenized files. A
// Cursor moves token by token within one file, crossing line boundaries and
// skipping lines without tokens.
package cursor

import (
	"github.com/mvp-joe/polyast/internal/lexer"
	"github.com/mvp-joe/polyast/internal/token"
)

// MismatchError reports a failed Expect.
type MismatchError struct {
	Got  token.Token
	Want token.Token
}

func (e *MismatchError) Error() string {
	return "expected " + e.Want.Describe() + ", got " + e.Got.Describe()
}

// Cursor tracks the current file, line index and token position.
// The zero value is parked at EOF until Seek is called.
type Cursor struct {
	file *lexer.File
	idx  int // index into file.LineNumbers()
	pos  int
	cur  token.Token
	last int // line of the most recently consumed token
}

// New returns a cursor with no file.
func New() *Cursor {
	return &Cursor{cur: token.New(token.EOF), last: -1}
}

// Seek re-seats the cursor at the first token of line n in f. If that line
// has no tokens the cursor moves to the next line that does. It reports
// false when n is not a line of f.
func (c *Cursor) Seek(f *lexer.File, n int) bool {
	c.file = f
	c.last = -1
	idx, ok := f.Index(n)
	if !ok {
		c.idx = len(f.LineNumbers())
		c.cur = token.New(token.EOF)
		return false
	}
	c.idx = idx
	c.pos = 0
	c.settle()
	return true
}

// settle skips to the next line with tokens and loads the current token.
func (c *Cursor) settle() {
	nums := c.file.LineNumbers()
	for c.idx < len(nums) {
		toks := c.file.Tokens(nums[c.idx])
		if c.pos < len(toks) {
			c.cur = toks[c.pos]
			return
		}
		c.idx++
		c.pos = 0
	}
	c.cur = token.New(token.EOF)
}

// Current returns the current token.
func (c *Cursor) Current() token.Token { return c.cur }

// AtEOF reports whether the cursor is past the last token of the file.
func (c *Cursor) AtEOF() bool { return c.cur.Kind == token.EOF }

// File returns the file the cursor is in.
func (c *Cursor) File() *lexer.File { return c.file }

// Line returns the current line number, or -1 at EOF.
func (c *Cursor) Line() int {
	if c.file == nil || c.idx >= len(c.file.LineNumbers()) {
		return -1
	}
	return c.file.LineNumbers()[c.idx]
}

// LastLine returns the line of the most recently consumed token, or -1 if
// nothing was consumed since the last Seek.
func (c *Cursor) LastLine() int { return c.last }

// Position returns the index of the current token within its line.
func (c *Cursor) Position() int { return c.pos }

// LineTokens returns the tokens of the current line.
func (c *Cursor) LineTokens() []token.Token {
	n := c.Line()
	if n < 0 {
		return nil
	}
	return c.file.Tokens(n)
}

// IndentOf returns the indentation width of line n. Lines without a leading
// Indent token have width 0.
func (c *Cursor) IndentOf(n int) int {
	toks := c.file.Tokens(n)
	if len(toks) > 0 && toks[0].Kind == token.Indent {
		return toks[0].Width
	}
	return 0
}

// LineIndent returns the indentation width of the current line.
func (c *Cursor) LineIndent() int {
	n := c.Line()
	if n < 0 {
		return 0
	}
	return c.IndentOf(n)
}

// Advance moves one token forward and returns the new current token.
func (c *Cursor) Advance() token.Token {
	if c.AtEOF() {
		return c.cur
	}
	c.last = c.Line()
	c.pos++
	c.settle()
	return c.cur
}

// Peek returns the token after the current one without moving.
func (c *Cursor) Peek() token.Token { return c.PeekN(1) }

// PeekN returns the token n positions ahead without moving. PeekN(0) is the
// current token.
func (c *Cursor) PeekN(n int) token.Token {
	if c.AtEOF() {
		return c.cur
	}
	nums := c.file.LineNumbers()
	idx, pos := c.idx, c.pos+n
	for idx < len(nums) {
		toks := c.file.Tokens(nums[idx])
		if pos < len(toks) {
			return toks[pos]
		}
		pos -= len(toks)
		idx++
	}
	return token.New(token.EOF)
}

// PeekLine is like PeekN but never crosses into the next line; past the end
// of the current line it returns EOF.
func (c *Cursor) PeekLine(n int) token.Token {
	toks := c.LineTokens()
	if c.pos+n < len(toks) {
		return toks[c.pos+n]
	}
	return token.New(token.EOF)
}

// Expect advances and requires the new current token to match want.
func (c *Cursor) Expect(want token.Token) (token.Token, error) {
	got := c.Advance()
	if !got.Matches(want) {
		return got, &MismatchError{Got: got, Want: want}
	}
	return got, nil
}

// Rest returns a copy of the tokens from the current one to the end of the
// line without moving.
func (c *Cursor) Rest() []token.Token {
	if c.AtEOF() {
		return nil
	}
	toks := c.LineTokens()
	out := make([]token.Token, len(toks)-c.pos)
	copy(out, toks[c.pos:])
	return out
}

// AdvanceToEndOfLine returns the tokens from the current one to the end of
// the line and moves to the first token of the next non-empty line.
func (c *Cursor) AdvanceToEndOfLine() []token.Token {
	rest := c.Rest()
	c.SkipLine()
	return rest
}

// AdvanceUntil collects tokens from the current one up to, not including,
// the first token matching target on the current line, and consumes target.
// If target is not on the line the rest of the line is returned and
// consumed, and found is false.
func (c *Cursor) AdvanceUntil(target token.Token) (toks []token.Token, found bool) {
	if c.AtEOF() {
		return nil, false
	}
	line := c.idx
	for !c.AtEOF() && c.idx == line {
		if c.cur.Matches(target) {
			c.Advance()
			return toks, true
		}
		toks = append(toks, c.cur)
		c.Advance()
	}
	return toks, false
}

// SkipLine moves to the first token of the next non-empty line.
func (c *Cursor) SkipLine() {
	if c.AtEOF() {
		return
	}
	c.last = c.Line()
	c.idx++
	c.pos = 0
	c.settle()
}

// OnLine reports whether the cursor is still on line n.
func (c *Cursor) OnLine(n int) bool {
	return !c.AtEOF() && c.Line() == n
}
