package parser

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/polyast/internal/token"
)

var (
	// ErrStructural indicates an expected token was missing.
	ErrStructural = errors.New("structural error")

	// ErrUnsupportedDialect indicates a dialect-specific construct in a file
	// whose language has no known dialect.
	ErrUnsupportedDialect = errors.New("unsupported dialect")

	// ErrUnexpectedEOF indicates input ended inside an open construct.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
)

// Error is a fatal parse failure with its location. errors.Is matches the
// Kind sentinel.
type Error struct {
	Kind    error
	File    string
	Line    int
	Got     token.Token
	Want    string
	Context []token.Token
}

func (e *Error) Error() string {
	loc := e.File
	if e.Line >= 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	msg := fmt.Sprintf("%s: %v: expected %s, got %s", loc, e.Kind, e.Want, e.Got.Describe())
	if len(e.Context) > 0 {
		msg += " in " + token.DescribeAll(e.Context)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// fail builds an Error at the cursor's position.
func (p *Parser) fail(kind error, want string) error {
	got := p.cur.Current()
	if got.Kind == token.EOF && kind == ErrStructural {
		kind = ErrUnexpectedEOF
	}
	line := p.cur.Line()
	if line < 0 {
		line = p.cur.LastLine()
	}
	e := &Error{
		Kind: kind,
		Got:  got,
		Want: want,
		Line: line,
	}
	if f := p.cur.File(); f != nil {
		e.File = f.Path
		if line >= 0 {
			e.Context = f.Tokens(line)
		}
	}
	return e
}
