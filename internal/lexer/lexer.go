// Package lexer turns raw source lines into token sequences. One Lexer serves
// every supported syntax; it has no cross-line state.
package lexer

import (
	"strings"
	"unicode"

	"github.com/mvp-joe/polyast/internal/token"
)

// Lexer tokenizes source lines.
type Lexer struct {
	tabWidth int
	cache    *LineCache
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithTabWidth makes leading tabs count as n columns of indentation.
// With n == 0 (the default) tabs are ordinary whitespace.
func WithTabWidth(n int) Option {
	return func(l *Lexer) { l.tabWidth = n }
}

// WithCache memoizes whole-line results in c.
func WithCache(c *LineCache) Option {
	return func(l *Lexer) { l.cache = c }
}

// New creates a Lexer.
func New(opts ...Option) *Lexer {
	l := &Lexer{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TokenizeLine returns the tokens of one line starting at rune column col.
// A leading indentation run is only recognized when col is 0.
func (l *Lexer) TokenizeLine(text string, col int) []token.Token {
	if col == 0 && l.cache != nil {
		if toks, ok := l.cache.Get(text); ok {
			return toks
		}
		toks := l.scan(text, 0)
		l.cache.Set(text, toks)
		return toks
	}
	return l.scan(text, col)
}

func (l *Lexer) scan(text string, col int) []token.Token {
	s := &scanner{src: []rune(text), pos: col}
	if s.pos > len(s.src) {
		return nil
	}
	if col == 0 {
		if !s.indent(l.tabWidth) {
			return nil
		}
	}
	for !s.atEnd() {
		s.next()
	}
	return s.toks
}

type scanner struct {
	src  []rune
	pos  int
	toks []token.Token
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekNext() rune {
	if s.pos+1 >= len(s.src) {
		return 0
	}
	return s.src[s.pos+1]
}

func (s *scanner) emit(t token.Token) { s.toks = append(s.toks, t) }

// indent folds the leading space run into one Indent token. It reports false
// for a whitespace-only line.
func (s *scanner) indent(tabWidth int) bool {
	width := 0
	for !s.atEnd() {
		switch c := s.peek(); {
		case c == ' ':
			width++
		case c == '\t' && tabWidth > 0:
			width += tabWidth
		default:
			goto done
		}
		s.pos++
	}
done:
	if strings.TrimSpace(string(s.src[s.pos:])) == "" {
		s.pos = len(s.src)
		return false
	}
	if width > 0 {
		s.emit(token.Token{Kind: token.Indent, Width: width})
	}
	return true
}

func (s *scanner) next() {
	c := s.peek()
	switch {
	case unicode.IsSpace(c):
		s.pos++
	case unicode.IsLetter(c) || c == '_':
		s.identifier()
	case isDigit(c):
		s.number()
	case c == '.':
		s.single(token.New(token.Period))
	case c == ',':
		s.single(token.New(token.Comma))
	case c == ';':
		s.single(token.New(token.Semicolon))
	case c == '=':
		s.single(token.New(token.Equals))
	case c == ':':
		if s.peekNext() == ':' {
			s.pos += 2
			s.emit(token.New(token.Connect))
			return
		}
		s.single(token.New(token.Colon))
	case c == '(' || c == ')':
		s.single(token.Delim(token.Parenthesis, c))
	case c == '[' || c == ']':
		s.single(token.Delim(token.Bracket, c))
	case c == '<' || c == '>':
		s.single(token.Delim(token.AngleBracket, c))
	case c == '{':
		s.single(token.Delim(token.BlockOpen, c))
	case c == '}':
		s.single(token.New(token.BlockClose))
	case c == '"' || c == '\'':
		s.stringLiteral(c)
	case c == '#':
		s.comment()
	case c == '/':
		switch s.peekNext() {
		case '/', '*', '=':
			s.comment()
		default:
			s.single(token.Delim(token.Other, c))
		}
	case c == '-':
		switch s.peekNext() {
		case '-':
			s.comment()
		case '>':
			s.pos += 2
			s.emit(token.New(token.Arrow))
		default:
			s.single(token.Delim(token.Other, c))
		}
	default:
		s.single(token.Delim(token.Other, c))
	}
}

func (s *scanner) single(t token.Token) {
	s.pos++
	s.emit(t)
}

func (s *scanner) identifier() {
	start := s.pos
	for !s.atEnd() {
		c := s.peek()
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			break
		}
		s.pos++
	}
	s.emit(token.Classify(string(s.src[start:s.pos])))
}

func (s *scanner) number() {
	start := s.pos
	for isDigit(s.peek()) {
		s.pos++
	}
	s.emit(token.Token{Kind: token.Number, Text: string(s.src[start:s.pos])})
}

// stringLiteral reads up to the matching quote. A backslash copies the next
// character verbatim, marker included. Unterminated literals end the line.
func (s *scanner) stringLiteral(quote rune) {
	s.pos++
	var sb strings.Builder
	for !s.atEnd() && s.peek() != quote {
		c := s.peek()
		sb.WriteRune(c)
		s.pos++
		if c == '\\' && !s.atEnd() {
			sb.WriteRune(s.peek())
			s.pos++
		}
	}
	tok := token.Token{Kind: token.StringLiteral, Text: sb.String(), Char: quote}
	if s.atEnd() {
		tok.Unterminated = true
	} else {
		s.pos++
	}
	s.emit(tok)
}

// comment consumes the rest of the line, marker included.
func (s *scanner) comment() {
	s.emit(token.Token{Kind: token.Comment, Text: string(s.src[s.pos:])})
	s.pos = len(s.src)
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }
