package parser

import "github.com/mvp-joe/polyast/internal/token"

// typeExpr captures a flat type or value expression inside a parameter list.
// It stops at depth zero on `,` or `:` (unless first), on `=`, and before a
// closing delimiter that would unbalance the expression. With typeFirst it
// also stops before a trailing name, i.e. an identifier followed by `,`, `=`
// or close.
func (p *Parser) typeExpr(close token.Token, typeFirst bool) ([]token.Token, error) {
	var toks []token.Token
	depth := 0
	for {
		t := p.cur.Current()
		switch t.Kind {
		case token.EOF:
			return nil, p.fail(ErrUnexpectedEOF, close.Describe())
		case token.Indent, token.Comment:
			p.cur.Advance()
			continue
		}
		if depth == 0 {
			switch {
			case (t.Kind == token.Comma || t.Kind == token.Colon) && len(toks) > 0:
				return toks, nil
			case t.Kind == token.Equals:
				return toks, nil
			case t.IsClose():
				return toks, nil
			case typeFirst && len(toks) > 0 && (t.Kind == token.Identifier || t.Kind == token.SelfRef):
				if next := p.cur.Peek(); next.Kind == token.Comma || next.Kind == token.Equals || next.Matches(close) {
					return toks, nil
				}
			}
		}
		switch {
		case t.IsOpen():
			depth++
		case t.IsClose():
			depth--
		}
		toks = append(toks, t)
		p.cur.Advance()
	}
}
