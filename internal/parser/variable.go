package parser

import (
	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/source"
	"github.com/mvp-joe/polyast/internal/token"
)

// handleVariable parses a member variable declaration. The receiver form
// (self.name = value, self.name: type = value) is shared by both dialects;
// the `name: type = value` form belongs to the brace dialect.
func (p *Parser) handleVariable(public bool) (ast.Node, error) {
	switch p.dialect() {
	case source.Indentation, source.Brace:
	default:
		return ast.None, p.fail(ErrUnsupportedDialect, "a file with a known dialect ("+p.cur.File().Language+")")
	}
	if p.cur.Current().Kind == token.SelfRef {
		return p.receiverVariable(public)
	}
	return p.braceVariable(public)
}

func (p *Parser) newVariable(name string, line int, public bool) *ast.Variable {
	return &ast.Variable{
		Name:   name,
		Parent: p.enclosing(),
		Public: public,
		File:   p.cur.File().Path,
		Line:   line,
	}
}

func (p *Parser) receiverVariable(public bool) (ast.Node, error) {
	line := p.cur.Line()
	if _, err := p.expect(token.New(token.Period), "'.' after receiver"); err != nil {
		return ast.None, err
	}
	name, err := p.expect(identifier, "member name")
	if err != nil {
		return ast.None, err
	}
	v := p.newVariable(name.Text, line, public)
	v.Receiver = true

	switch p.cur.Advance().Kind {
	case token.Equals:
		p.cur.Advance()
		if p.cur.OnLine(line) {
			v.Value = p.restOfStatement()
		}
	case token.Colon:
		p.cur.Advance()
		if p.cur.OnLine(line) {
			typ, found := p.cur.AdvanceUntil(token.New(token.Equals))
			v.Type = trimStatement(typ)
			if found && p.cur.OnLine(line) {
				v.Value = p.restOfStatement()
			}
		}
	default:
		return ast.None, p.fail(ErrStructural, "'=' or ':' after member name")
	}
	return ast.VariableOf(v), nil
}

func (p *Parser) braceVariable(public bool) (ast.Node, error) {
	line := p.cur.Line()
	v := p.newVariable(p.cur.Current().Text, line, public)
	if _, err := p.expect(token.New(token.Colon), "':' after field name"); err != nil {
		return ast.None, err
	}
	p.cur.Advance()

	v.Type = p.scanField(line)
	if p.cur.OnLine(line) && p.cur.Current().Kind == token.Equals {
		p.cur.Advance()
		v.Value = p.scanField(line)
	}
	if p.cur.OnLine(line) {
		switch p.cur.Current().Kind {
		case token.Semicolon, token.Comma:
			p.cur.Advance()
		}
	}
	return ast.VariableOf(v), nil
}

// scanField collects tokens on line up to `;`, `,`, `=`, a comment or a
// closing delimiter at depth zero.
func (p *Parser) scanField(line int) []token.Token {
	var toks []token.Token
	depth := 0
	for p.cur.OnLine(line) {
		t := p.cur.Current()
		if t.Kind == token.Comment {
			break
		}
		if depth == 0 && (t.Kind == token.Semicolon || t.Kind == token.Comma || t.Kind == token.Equals) {
			break
		}
		switch {
		case t.IsOpen():
			depth++
		case t.IsClose():
			if depth == 0 {
				return toks
			}
			depth--
		}
		toks = append(toks, t)
		p.cur.Advance()
	}
	return toks
}

// restOfStatement consumes the rest of the line and returns it without a
// trailing comment or semicolon.
func (p *Parser) restOfStatement() []token.Token {
	return trimStatement(p.cur.AdvanceToEndOfLine())
}

func trimStatement(toks []token.Token) []token.Token {
	toks = trimComments(toks)
	if n := len(toks); n > 0 && toks[n-1].Kind == token.Semicolon {
		toks = toks[:n-1]
	}
	return toks
}

// expect advances and requires the new current token to match want.
func (p *Parser) expect(want token.Token, desc string) (token.Token, error) {
	got, err := p.cur.Expect(want)
	if err != nil {
		return got, p.fail(ErrStructural, desc)
	}
	return got, nil
}
