// Package parser builds object ASTs from tokenized files. It locates candidate
// object headers across all files, then re-seats a cursor on each header and
// recursively parses the object's body.
package parser

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/cursor"
	"github.com/mvp-joe/polyast/internal/lexer"
	"github.com/mvp-joe/polyast/internal/source"
	"github.com/mvp-joe/polyast/internal/token"
)

// Parser owns one cursor and the object-context stack. It is not safe for
// concurrent use.
type Parser struct {
	files    []*lexer.File
	cur      *cursor.Cursor
	objects  []string
	log      zerolog.Logger
	progress func(done, total int)
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// WithProgress registers a callback invoked after each candidate header.
func WithProgress(fn func(done, total int)) Option {
	return func(p *Parser) { p.progress = fn }
}

// New creates a parser over files.
func New(files []*lexer.File, opts ...Option) *Parser {
	p := &Parser{
		files: files,
		cur:   cursor.New(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Candidate is a line containing an object-declaration keyword.
type Candidate struct {
	File *lexer.File
	Line int
}

// Candidates returns every candidate header ordered by file number, then
// line number.
func (p *Parser) Candidates() []Candidate {
	files := make([]*lexer.File, len(p.files))
	copy(files, p.files)
	sort.SliceStable(files, func(i, j int) bool { return files[i].No < files[j].No })

	var out []Candidate
	for _, f := range files {
		for _, n := range f.LineNumbers() {
			for _, t := range f.Tokens(n) {
				if t.Kind == token.ObjectDeclaration {
					out = append(out, Candidate{File: f, Line: n})
					break
				}
			}
		}
	}
	return out
}

type span struct{ start, end int }

// Parse returns the top-level objects of all files. Objects nested in an
// already parsed object appear only in that object's body. Any parse error
// aborts the run.
func (p *Parser) Parse() ([]*ast.Object, error) {
	candidates := p.Candidates()
	parsed := make(map[*lexer.File][]span)

	var objects []*ast.Object
	for i, c := range candidates {
		if !within(parsed[c.File], c.Line) {
			obj, err := p.parseCandidate(c)
			if err != nil {
				return nil, err
			}
			if obj != nil {
				objects = append(objects, obj)
				parsed[c.File] = append(parsed[c.File], span{obj.StartLine, obj.EndLine})
				p.log.Debug().
					Str("file", obj.File).
					Str("object", obj.Name).
					Int("start", obj.StartLine).
					Int("end", obj.EndLine).
					Msg("parsed object")
			}
		}
		if p.progress != nil {
			p.progress(i+1, len(candidates))
		}
	}
	return objects, nil
}

func within(spans []span, line int) bool {
	for _, s := range spans {
		if line >= s.start && line <= s.end {
			return true
		}
	}
	return false
}

// parseCandidate dispatches from the start of the candidate line until an
// object is produced or the cursor leaves the line.
func (p *Parser) parseCandidate(c Candidate) (*ast.Object, error) {
	if !p.cur.Seek(c.File, c.Line) {
		return nil, nil
	}
	p.objects = p.objects[:0]
	for p.cur.OnLine(c.Line) {
		node, err := p.parseToken()
		if err != nil {
			return nil, err
		}
		switch node.Kind {
		case ast.ObjectNode:
			return node.Object, nil
		case ast.EndOfInput:
			return nil, nil
		}
	}
	return nil, nil
}

func (p *Parser) dialect() source.Dialect {
	return p.cur.File().Dialect
}

// enclosing returns the innermost object being parsed, or "".
func (p *Parser) enclosing() string {
	if len(p.objects) == 0 {
		return ""
	}
	return p.objects[len(p.objects)-1]
}

// parseToken performs one dispatch step from the current token.
func (p *Parser) parseToken() (ast.Node, error) {
	for {
		t := p.cur.Current()
		switch t.Kind {
		case token.Indent:
			p.cur.Advance()
			continue
		case token.EOF:
			return ast.InputEnd, nil
		case token.ObjectDeclaration:
			return p.handleObject(false)
		case token.FunctionDeclaration:
			return p.handleFunction(false)
		case token.Publicity:
			p.cur.Advance()
			return p.handlePublic(t.Public)
		case token.SelfRef, token.Identifier:
			if p.atVariable() {
				return p.handleVariable(false)
			}
		case token.BlockOpen:
			if _, err := p.braceBlock(); err != nil {
				return ast.None, err
			}
			return ast.None, nil
		case token.BlockClose:
			p.cur.Advance()
			return ast.BlockEnd, nil
		}
		p.cur.Advance()
		return ast.None, nil
	}
}

// handlePublic dispatches the construct following a visibility modifier.
// A restriction group such as pub(crate) is skipped.
func (p *Parser) handlePublic(public bool) (ast.Node, error) {
	if p.cur.Current().Matches(token.Delim(token.Parenthesis, '(')) && p.cur.OnLine(p.cur.LastLine()) {
		if _, err := p.group(); err != nil {
			return ast.None, err
		}
	}
	switch p.cur.Current().Kind {
	case token.ObjectDeclaration:
		return p.handleObject(public)
	case token.FunctionDeclaration:
		return p.handleFunction(public)
	case token.SelfRef, token.Identifier:
		if p.atVariable() {
			return p.handleVariable(public)
		}
	}
	return ast.None, nil
}

// atVariable reports whether the current token starts a member variable
// declaration: `self . name =|:` in any dialect, or `name :` in the brace
// dialect.
func (p *Parser) atVariable() bool {
	switch p.cur.Current().Kind {
	case token.SelfRef:
		if p.cur.PeekLine(1).Kind != token.Period || p.cur.PeekLine(2).Kind != token.Identifier {
			return false
		}
		switch p.cur.PeekLine(3).Kind {
		case token.Equals:
			return p.cur.PeekLine(4).Kind != token.Equals
		case token.Colon:
			return true
		}
	case token.Identifier:
		return p.dialect() == source.Brace && p.cur.PeekLine(1).Kind == token.Colon
	}
	return false
}

// skipBlank moves past lines whose remaining tokens are only indentation and
// comments.
func (p *Parser) skipBlank() {
	for !p.cur.AtEOF() && blank(p.cur.Rest()) {
		p.cur.SkipLine()
	}
}

func blank(toks []token.Token) bool {
	for _, t := range toks {
		if t.Kind != token.Indent && t.Kind != token.Comment {
			return false
		}
	}
	return true
}

// trimComments drops trailing comment tokens.
func trimComments(toks []token.Token) []token.Token {
	for len(toks) > 0 && toks[len(toks)-1].Kind == token.Comment {
		toks = toks[:len(toks)-1]
	}
	return toks
}
