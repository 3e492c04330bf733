package parser

import (
	"strings"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/source"
	"github.com/mvp-joe/polyast/internal/token"
)

var (
	angleOpen  = token.Delim(token.AngleBracket, '<')
	parenOpen  = token.Delim(token.Parenthesis, '(')
	parenClose = token.Delim(token.Parenthesis, ')')
	braceOpen  = token.Delim(token.BlockOpen, '{')
	identifier = token.New(token.Identifier)
)

// handleObject parses an object declaration starting at its keyword.
func (p *Parser) handleObject(public bool) (ast.Node, error) {
	kw := p.cur.Current()
	startLine := p.cur.Line()
	headerIndent := p.cur.LineIndent()
	obj := &ast.Object{
		Keyword:   strings.ToLower(kw.Text),
		Public:    public,
		Enclosing: p.enclosing(),
		File:      p.cur.File().Path,
		StartLine: startLine,
	}

	p.cur.Advance()
	// enum class, enum struct
	if p.cur.Current().Kind == token.ObjectDeclaration {
		p.cur.Advance()
	}
	if p.cur.Current().Matches(angleOpen) {
		params, err := p.group()
		if err != nil {
			return ast.None, err
		}
		obj.TypeParams = token.Join(params)
	}
	name, err := p.qualifiedName("object name")
	if err != nil {
		return ast.None, err
	}
	obj.Name = name

	if p.cur.Current().Matches(angleOpen) {
		params, err := p.group()
		if err != nil {
			return ast.None, err
		}
		if obj.TypeParams == "" {
			obj.TypeParams = token.Join(params)
		}
	}

	if obj.Keyword == "impl" && isWord(p.cur.Current(), "for") {
		p.cur.Advance()
		target, err := p.qualifiedName("implementing type")
		if err != nil {
			return ast.None, err
		}
		obj.Bases = append(obj.Bases, obj.Name)
		obj.Name = target
		if p.cur.Current().Matches(angleOpen) {
			if _, err := p.group(); err != nil {
				return ast.None, err
			}
		}
	}

	if p.cur.Current().Matches(parenOpen) {
		params, err := p.paramList(parenOpen, parenClose)
		if err != nil {
			return ast.None, err
		}
		for _, param := range params {
			if base := baseName(param); base != "" {
				obj.Bases = append(obj.Bases, base)
			}
		}
	}

	if err := p.heritage(obj); err != nil {
		return ast.None, err
	}

	p.objects = append(p.objects, obj.Name)
	defer func() { p.objects = p.objects[:len(p.objects)-1] }()

	t := p.cur.Current()
	switch {
	case t.Matches(braceOpen):
		body, err := p.braceBlock()
		if err != nil {
			return ast.None, err
		}
		obj.Body = body
		obj.EndLine = p.cur.LastLine()
	case t.Kind == token.Colon:
		body, end, err := p.indentBlock(headerIndent)
		if err != nil {
			return ast.None, err
		}
		obj.Body = body
		obj.EndLine = end
	case t.Kind == token.Semicolon:
		p.cur.Advance()
		obj.EndLine = p.cur.LastLine()
	default:
		return ast.None, p.fail(ErrStructural, "'{', ':' or ';' after object header")
	}
	if obj.EndLine < startLine {
		obj.EndLine = startLine
	}

	obj.CollectVariables()
	return ast.ObjectOf(obj), nil
}

// qualifiedName reads an identifier path such as fmt::Display or mod.Base.
func (p *Parser) qualifiedName(want string) (string, error) {
	if !p.cur.Current().Matches(identifier) {
		return "", p.fail(ErrStructural, want)
	}
	var sb strings.Builder
	sb.WriteString(p.cur.Current().Text)
	p.cur.Advance()
	for {
		sep := p.cur.Current()
		if (sep.Kind != token.Connect && sep.Kind != token.Period) || p.cur.PeekLine(1).Kind != token.Identifier {
			return sb.String(), nil
		}
		sb.WriteString(sep.String())
		sb.WriteString(p.cur.Advance().Text)
		p.cur.Advance()
	}
}

// heritage reads extends/implements clauses and, in the brace dialect, a
// `: Base, Other` list before the body.
func (p *Parser) heritage(obj *ast.Object) error {
	for {
		t := p.cur.Current()
		switch {
		case isWord(t, "extends"), isWord(t, "implements"):
			p.cur.Advance()
		case isWord(t, "where") && p.dialect() == source.Brace:
			p.skipUntilBody()
			continue
		case t.Kind == token.Colon && p.dialect() == source.Brace:
			p.cur.Advance()
		default:
			return nil
		}
		bases, err := p.baseList()
		if err != nil {
			return err
		}
		obj.Bases = append(obj.Bases, bases...)
	}
}

// baseList collects comma- or plus-separated base names up to the body, the
// end of the declaration or another heritage clause.
func (p *Parser) baseList() ([]string, error) {
	var bases []string
	var cur []token.Token
	flush := func() {
		if len(cur) > 0 {
			bases = append(bases, token.Join(cur))
			cur = nil
		}
	}
	depth := 0
	for {
		t := p.cur.Current()
		if t.Kind == token.EOF {
			return nil, p.fail(ErrUnexpectedEOF, "object body")
		}
		if depth == 0 {
			switch {
			case t.Matches(braceOpen), t.Kind == token.Semicolon,
				isWord(t, "extends"), isWord(t, "implements"), isWord(t, "where"):
				flush()
				return bases, nil
			case t.Kind == token.Comma, t.Matches(token.Delim(token.Other, '+')):
				flush()
				p.cur.Advance()
				continue
			}
		}
		switch {
		case t.IsOpen():
			depth++
		case t.IsClose():
			depth--
		}
		if t.Kind != token.Publicity && t.Kind != token.Indent && t.Kind != token.Comment {
			cur = append(cur, t)
		}
		p.cur.Advance()
	}
}

// skipUntilBody skips a where clause up to the body or terminator.
func (p *Parser) skipUntilBody() {
	for {
		t := p.cur.Current()
		if t.Kind == token.EOF || t.Matches(braceOpen) || t.Kind == token.Semicolon {
			return
		}
		p.cur.Advance()
	}
}

// baseName renders a parent-list entry as a base name. Keyword arguments
// such as metaclass=Meta are not bases.
func baseName(param ast.Parameter) string {
	if param.Default != "" {
		return ""
	}
	if param.Name == "" {
		return param.Type
	}
	for _, prefix := range []string{".", "::", "<", "["} {
		if strings.HasPrefix(param.Type, prefix) {
			return param.Name + param.Type
		}
	}
	return param.Name
}

func isWord(t token.Token, word string) bool {
	return t.Kind == token.Identifier && strings.EqualFold(t.Text, word)
}
