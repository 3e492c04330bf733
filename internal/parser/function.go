package parser

import (
	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/source"
	"github.com/mvp-joe/polyast/internal/token"
)

// handleFunction parses a function declaration starting at its keyword.
func (p *Parser) handleFunction(public bool) (ast.Node, error) {
	line := p.cur.Line()
	headerIndent := p.cur.LineIndent()
	name, err := p.expect(identifier, "function name")
	if err != nil {
		return ast.None, err
	}
	fn := &ast.Function{
		Name:   name.Text,
		Public: public,
		Parent: p.enclosing(),
		File:   p.cur.File().Path,
		Line:   line,
	}

	p.cur.Advance()
	if p.cur.Current().Matches(angleOpen) {
		if _, err := p.group(); err != nil {
			return ast.None, err
		}
	}
	if !p.cur.Current().Matches(parenOpen) {
		return ast.None, p.fail(ErrStructural, "'(' after function name")
	}
	params, err := p.paramList(parenOpen, parenClose)
	if err != nil {
		return ast.None, err
	}
	fn.Params = params

	closeLine := p.cur.LastLine()
	if !p.cur.OnLine(closeLine) {
		fn.EndLine = closeLine
		return ast.FunctionOf(fn), nil
	}

	t := p.cur.Current()
	switch {
	case t.Kind == token.Arrow:
		p.cur.Advance()
		if err := p.returnType(fn, closeLine, headerIndent); err != nil {
			return ast.None, err
		}
	case t.Kind == token.Colon && p.dialect() == source.Brace:
		// Type annotation such as `function f(): number {`.
		p.cur.Advance()
		if err := p.returnType(fn, closeLine, headerIndent); err != nil {
			return ast.None, err
		}
	case t.Matches(braceOpen), t.Kind == token.Colon:
		body, end, err := p.body(headerIndent)
		if err != nil {
			return ast.None, err
		}
		fn.Body = body
		fn.EndLine = end
	case t.Kind == token.Semicolon:
		p.cur.Advance()
	}
	if fn.EndLine < line {
		fn.EndLine = max(line, p.cur.LastLine())
	}
	return ast.FunctionOf(fn), nil
}

// returnType reads the return type after `->`. The first block opener at
// depth zero on the same line, or `{` starting the next line, begins the
// body.
func (p *Parser) returnType(fn *ast.Function, line, headerIndent int) error {
	if !p.cur.OnLine(line) {
		return p.bodyOnNextLine(fn)
	}

	rest := trimComments(p.cur.Rest())
	depth := 0
	for i, t := range rest {
		opener := depth == 0 &&
			(t.Matches(braceOpen) || (t.Kind == token.Colon && p.dialect() != source.Brace))
		if opener {
			fn.ReturnType = token.Join(rest[:i])
			p.advanceN(i)
			body, end, err := p.body(headerIndent)
			if err != nil {
				return err
			}
			fn.Body = body
			fn.EndLine = end
			return nil
		}
		switch {
		case t.IsOpen():
			depth++
		case t.IsClose():
			depth--
		}
	}

	fn.ReturnType = token.Join(trimStatement(rest))
	p.cur.SkipLine()
	return p.bodyOnNextLine(fn)
}

// bodyOnNextLine parses a brace body when the current line starts with `{`.
func (p *Parser) bodyOnNextLine(fn *ast.Function) error {
	if p.cur.Current().Kind == token.Indent && p.cur.PeekLine(1).Matches(braceOpen) {
		p.cur.Advance()
	}
	if p.cur.Position() > 1 || !p.cur.Current().Matches(braceOpen) {
		return nil
	}
	body, err := p.braceBlock()
	if err != nil {
		return err
	}
	fn.Body = body
	fn.EndLine = p.cur.LastLine()
	return nil
}

func (p *Parser) advanceN(n int) {
	for i := 0; i < n; i++ {
		p.cur.Advance()
	}
}
