package lexer

import (
	"context"
	"fmt"

	"github.com/mvp-joe/polyast/internal/source"
	"github.com/mvp-joe/polyast/internal/token"
)

// File is a tokenized source file. It is read-only once built.
type File struct {
	No       int
	Path     string
	Language string
	Dialect  source.Dialect

	src     *source.File
	lines   map[int][]token.Token
	numbers []int
	index   map[int]int
}

// NewFile builds a tokenized file directly from token lines. Intended for
// callers that already hold tokens, such as tests.
func NewFile(no int, path string, dialect source.Dialect, lines map[int][]token.Token) *File {
	raw := make(map[int]string, len(lines))
	for n, toks := range lines {
		raw[n] = token.Join(toks)
	}
	src := source.NewFile(no, path, dialect.String(), raw)
	return newFile(src, dialect, lines)
}

func newFile(src *source.File, dialect source.Dialect, lines map[int][]token.Token) *File {
	f := &File{
		No:       src.No,
		Path:     src.Path,
		Language: src.Language,
		Dialect:  dialect,
		src:      src,
		lines:    lines,
		numbers:  src.LineNumbers(),
		index:    make(map[int]int, src.Len()),
	}
	for i, n := range f.numbers {
		f.index[n] = i
	}
	return f
}

// Tokens returns the tokens of line n. An empty line has none.
func (f *File) Tokens(n int) []token.Token {
	return f.lines[n]
}

// Raw returns the original text of line n.
func (f *File) Raw(n int) string {
	text, _ := f.src.Line(n)
	return text
}

// LineNumbers returns the line numbers in ascending order.
func (f *File) LineNumbers() []int {
	return f.numbers
}

// Index returns the position of line n within LineNumbers.
func (f *File) Index(n int) (int, bool) {
	i, ok := f.index[n]
	return i, ok
}

// TokenCount returns the number of tokens across all lines.
func (f *File) TokenCount() int {
	count := 0
	for _, toks := range f.lines {
		count += len(toks)
	}
	return count
}

// TokenizeFile tokenizes every line of src independently.
func (l *Lexer) TokenizeFile(src *source.File, dialect source.Dialect) *File {
	lines := make(map[int][]token.Token, src.Len())
	for _, n := range src.LineNumbers() {
		text, _ := src.Line(n)
		lines[n] = l.TokenizeLine(text, 0)
	}
	return newFile(src, dialect, lines)
}

// TokenizeAll tokenizes a batch of files, resolving each file's dialect.
// onFile, when non-nil, is called after each file.
func (l *Lexer) TokenizeAll(ctx context.Context, files []*source.File, dialects source.Dialects, onFile func(*File)) ([]*File, error) {
	out := make([]*File, 0, len(files))
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("tokenization cancelled: %w", err)
		}
		f := l.TokenizeFile(src, dialects.Resolve(src.Language))
		out = append(out, f)
		if onFile != nil {
			onFile(f)
		}
	}
	return out, nil
}
