package parser

import (
	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/token"
)

// braceBlock parses from the current `{` through its matching `}`.
func (p *Parser) braceBlock() ([]ast.Node, error) {
	p.cur.Advance()
	var body []ast.Node
	for {
		node, err := p.parseToken()
		if err != nil {
			return nil, err
		}
		switch node.Kind {
		case ast.EndOfBlock:
			return body, nil
		case ast.EndOfInput:
			return nil, p.fail(ErrUnexpectedEOF, "'}'")
		}
		if node.IsConstruct() {
			body = append(body, node)
		}
	}
}

// indentBlock parses from the current `:` through the last line indented
// deeper than headerIndent. It returns the body and the last line that
// belongs to it.
func (p *Parser) indentBlock(headerIndent int) ([]ast.Node, int, error) {
	line := p.cur.Line()
	end := line
	p.cur.Advance()

	if p.cur.OnLine(line) && p.cur.Current().Kind != token.Comment {
		node, err := p.parseToken()
		if err != nil {
			return nil, end, err
		}
		if p.cur.OnLine(line) {
			p.cur.SkipLine()
		}
		if node.IsConstruct() {
			return []ast.Node{node}, end, nil
		}
		return nil, end, nil
	}
	if p.cur.OnLine(line) {
		p.cur.SkipLine()
	}

	p.skipBlank()
	if p.cur.AtEOF() {
		return nil, end, nil
	}
	baseline := p.cur.LineIndent()
	if baseline <= headerIndent {
		return nil, end, nil
	}

	var body []ast.Node
	for {
		p.skipBlank()
		if p.cur.AtEOF() || p.cur.LineIndent() < baseline {
			return body, end, nil
		}
		n := p.cur.Line()
		node, err := p.parseToken()
		if err != nil {
			return nil, end, err
		}
		if node.Kind == ast.EndOfInput {
			return body, end, nil
		}
		if node.IsConstruct() {
			body = append(body, node)
		}
		end = max(end, n, endLine(node, p.cur.LastLine()))
		if p.cur.OnLine(n) {
			p.cur.SkipLine()
		}
	}
}

// group consumes a balanced delimiter group starting at the current opening
// token and returns it, delimiters included.
func (p *Parser) group() ([]token.Token, error) {
	var toks []token.Token
	depth := 0
	for {
		t := p.cur.Current()
		switch {
		case t.Kind == token.EOF:
			return nil, p.fail(ErrUnexpectedEOF, "closing delimiter")
		case t.IsOpen():
			depth++
		case t.IsClose():
			depth--
		}
		toks = append(toks, t)
		p.cur.Advance()
		if depth == 0 {
			return toks, nil
		}
	}
}

// body parses a function or object body starting at `{` or `:` and returns
// its last line.
func (p *Parser) body(headerIndent int) ([]ast.Node, int, error) {
	if p.cur.Current().Matches(braceOpen) {
		body, err := p.braceBlock()
		return body, p.cur.LastLine(), err
	}
	return p.indentBlock(headerIndent)
}

// endLine returns the last line of a dispatched construct. Markers and
// skipped tokens end on the last consumed line.
func endLine(node ast.Node, consumed int) int {
	switch node.Kind {
	case ast.ObjectNode:
		return node.Object.EndLine
	case ast.FunctionNode:
		return node.Function.EndLine
	case ast.VariableNode:
		return node.Variable.Line
	}
	return consumed
}
