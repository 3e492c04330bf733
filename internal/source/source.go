// Package source models the line-indexed input files handed to the extractor.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var (
	// ErrMalformedLine indicates a line entry that is not a [number, text] pair.
	ErrMalformedLine = errors.New("malformed line entry")

	// ErrDuplicateLine indicates the same line number appears twice in one file.
	ErrDuplicateLine = errors.New("duplicate line number")

	// ErrEmbeddedNewline indicates raw line text containing a line break.
	ErrEmbeddedNewline = errors.New("line text contains a line break")
)

// File is one source file as delivered by the caller. Line numbers are
// caller-assigned and need not be contiguous or zero-based.
type File struct {
	No       int
	Path     string
	Language string
	lines    map[int]string
	numbers  []int
}

// NewFile builds a File from a line-number → text map.
func NewFile(no int, path, language string, lines map[int]string) *File {
	f := &File{
		No:       no,
		Path:     path,
		Language: language,
		lines:    make(map[int]string, len(lines)),
	}
	for n, text := range lines {
		f.lines[n] = text
		f.numbers = append(f.numbers, n)
	}
	sort.Ints(f.numbers)
	return f
}

// Line returns the raw text of line n.
func (f *File) Line(n int) (string, bool) {
	text, ok := f.lines[n]
	return text, ok
}

// LineNumbers returns the file's line numbers in ascending order.
func (f *File) LineNumbers() []int {
	return f.numbers
}

// Len returns the number of lines.
func (f *File) Len() int {
	return len(f.numbers)
}

// fileJSON is the wire shape of one input file.
type fileJSON struct {
	FileNo   int               `json:"fileNo"`
	FileName string            `json:"fileName"`
	FileType string            `json:"fileType"`
	Lines    []json.RawMessage `json:"lines"`
}

// Decode reads a JSON array of file descriptors:
//
//	[{"fileNo": 1, "fileName": "a.py", "fileType": "python", "lines": [[1, "class A:"]]}]
func Decode(r io.Reader) ([]*File, error) {
	var raw []fileJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}

	files := make([]*File, 0, len(raw))
	for _, rf := range raw {
		lines := make(map[int]string, len(rf.Lines))
		for i, entry := range rf.Lines {
			n, text, err := decodeLine(entry)
			if err != nil {
				return nil, fmt.Errorf("%s: line entry %d: %w", rf.FileName, i, err)
			}
			if _, dup := lines[n]; dup {
				return nil, fmt.Errorf("%s: line %d: %w", rf.FileName, n, ErrDuplicateLine)
			}
			lines[n] = text
		}
		files = append(files, NewFile(rf.FileNo, rf.FileName, rf.FileType, lines))
	}
	return files, nil
}

func decodeLine(entry json.RawMessage) (int, string, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(entry, &pair); err != nil || len(pair) != 2 {
		return 0, "", ErrMalformedLine
	}
	var n int
	if err := json.Unmarshal(pair[0], &n); err != nil {
		return 0, "", fmt.Errorf("%w: line number: %v", ErrMalformedLine, err)
	}
	var text string
	if err := json.Unmarshal(pair[1], &text); err != nil {
		return 0, "", fmt.Errorf("%w: line text: %v", ErrMalformedLine, err)
	}
	if strings.ContainsAny(text, "\r\n") {
		return 0, "", fmt.Errorf("line %d: %w", n, ErrEmbeddedNewline)
	}
	return n, text, nil
}
