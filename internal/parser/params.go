package parser

import (
	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/token"
)

// paramList parses a delimited parameter list starting at open and consumes
// the closing delimiter. Indentation and comments inside the list are
// ignored.
func (p *Parser) paramList(open, close token.Token) ([]ast.Parameter, error) {
	if !p.cur.Current().Matches(open) {
		return nil, p.fail(ErrStructural, open.Describe())
	}
	p.cur.Advance()

	var params []ast.Parameter
	for {
		p.skipTransparent()
		t := p.cur.Current()
		switch t.Kind {
		case token.EOF:
			return nil, p.fail(ErrUnexpectedEOF, close.Describe())
		case token.Comma:
			p.cur.Advance()
			continue
		case token.Identifier, token.SelfRef, token.ObjectDeclaration:
			param, err := p.namedParam(close)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			continue
		case token.Type, token.Other:
			param, err := p.typedParam(close)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			continue
		}
		if t.Matches(close) {
			p.cur.Advance()
			return params, nil
		}
		return nil, p.fail(ErrStructural, "parameter or "+close.Describe())
	}
}

func (p *Parser) skipTransparent() {
	for {
		switch p.cur.Current().Kind {
		case token.Indent, token.Comment:
			p.cur.Advance()
		default:
			return
		}
	}
}

// namedParam parses `name`, `name = default`, `name: type` or
// `name type`. Leading modifiers such as `mut` are dropped.
func (p *Parser) namedParam(close token.Token) (ast.Parameter, error) {
	param := ast.Parameter{Name: p.paramName()}
	for p.cur.Current().Kind == token.Identifier && p.cur.PeekLine(1).Kind == token.Colon {
		param.Name = p.cur.Current().Text
		p.cur.Advance()
	}

	p.skipTransparent()
	t := p.cur.Current()
	if t.Kind != token.Comma && t.Kind != token.Equals && !t.Matches(close) {
		typ, err := p.typeExpr(close, false)
		if err != nil {
			return param, err
		}
		if len(typ) > 0 && typ[0].Kind == token.Colon {
			typ = typ[1:]
		}
		param.Type = token.Join(typ)
	}
	if p.cur.Current().Kind == token.Equals {
		p.cur.Advance()
		def, err := p.typeExpr(close, false)
		if err != nil {
			return param, err
		}
		param.Default = token.Join(def)
	}
	return param, nil
}

// paramName consumes a parameter name; self.x and self::x name x.
func (p *Parser) paramName() string {
	t := p.cur.Current()
	p.cur.Advance()
	if t.Kind == token.SelfRef {
		sep := p.cur.Current().Kind
		if (sep == token.Period || sep == token.Connect) && p.cur.PeekLine(1).Kind == token.Identifier {
			name := p.cur.Advance().Text
			p.cur.Advance()
			return name
		}
	}
	return t.Text
}

// typedParam parses a type-first parameter such as `int x` or `&self`. A
// type with no following name is an unnamed parameter.
func (p *Parser) typedParam(close token.Token) (ast.Parameter, error) {
	typ, err := p.typeExpr(close, true)
	if err != nil {
		return ast.Parameter{}, err
	}
	param := ast.Parameter{Type: token.Join(typ)}

	p.skipTransparent()
	switch t := p.cur.Current(); {
	case t.Kind == token.Identifier, t.Kind == token.SelfRef:
		param.Name = p.paramName()
	case t.Kind == token.Comma, t.Matches(close):
		return param, nil
	case t.Kind != token.Equals:
		return param, p.fail(ErrStructural, "parameter name")
	}
	if p.cur.Current().Kind == token.Equals {
		p.cur.Advance()
		def, err := p.typeExpr(close, false)
		if err != nil {
			return param, err
		}
		param.Default = token.Join(def)
	}
	return param, nil
}
