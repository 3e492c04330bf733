package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for source:
// - Decode reads the fileNo/fileName/fileType/lines wire shape
// - Decode keeps non-contiguous line numbers and sorts them
// - Decode rejects malformed pairs, duplicates and embedded newlines
// - Dialects resolve case-insensitively, defaults apply when unconfigured
// - Filter honors include and exclude globs

func TestDecode(t *testing.T) {
	t.Parallel()

	input := `[
		{"fileNo": 2, "fileName": "src/point.rs", "fileType": "rust",
		 "lines": [[10, "struct Point {"], [3, "// header"], [11, "}"]]},
		{"fileNo": 1, "fileName": "point.py", "fileType": "python", "lines": []}
	]`

	files, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, files, 2)

	f := files[0]
	assert.Equal(t, 2, f.No)
	assert.Equal(t, "src/point.rs", f.Path)
	assert.Equal(t, "rust", f.Language)
	assert.Equal(t, []int{3, 10, 11}, f.LineNumbers())
	text, ok := f.Line(10)
	require.True(t, ok)
	assert.Equal(t, "struct Point {", text)
	_, ok = f.Line(4)
	assert.False(t, ok)

	assert.Equal(t, 0, files[1].Len())
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not a pair", `[{"fileNo":1,"fileName":"a","fileType":"python","lines":[[1]]}]`, ErrMalformedLine},
		{"text not string", `[{"fileNo":1,"fileName":"a","fileType":"python","lines":[[1, 2]]}]`, ErrMalformedLine},
		{"duplicate", `[{"fileNo":1,"fileName":"a","fileType":"python","lines":[[1,"a"],[1,"b"]]}]`, ErrDuplicateLine},
		{"newline", `[{"fileNo":1,"fileName":"a","fileType":"python","lines":[[1,"a\nb"]]}]`, ErrEmbeddedNewline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Decode(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestDialects(t *testing.T) {
	t.Parallel()

	d, err := NewDialects(nil)
	require.NoError(t, err)
	assert.Equal(t, Indentation, d.Resolve("Python"))
	assert.Equal(t, Brace, d.Resolve("rust"))
	assert.Equal(t, Unknown, d.Resolve("java"))

	d, err = NewDialects(map[string]string{"py": "indentation", "RS": "brace"})
	require.NoError(t, err)
	assert.Equal(t, Indentation, d.Resolve("py"))
	assert.Equal(t, Brace, d.Resolve("rs"))
	assert.Equal(t, Unknown, d.Resolve("python"), "configured table replaces defaults")

	_, err = NewDialects(map[string]string{"go": "tabs"})
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	f, err := NewFilter([]string{"**/*.py", "**/*.rs"}, []string{"vendor/**"})
	require.NoError(t, err)

	assert.True(t, f.Match("src/a.py"))
	assert.True(t, f.Match("lib/deep/b.rs"))
	assert.False(t, f.Match("vendor/x/c.py"))
	assert.False(t, f.Match("src/readme.md"))

	files := []*File{
		NewFile(1, "src/a.py", "python", nil),
		NewFile(2, "vendor/b.py", "python", nil),
	}
	kept := f.Apply(files)
	require.Len(t, kept, 1)
	assert.Equal(t, "src/a.py", kept[0].Path)

	all, err := NewFilter(nil, nil)
	require.NoError(t, err)
	assert.True(t, all.Match("anything.txt"))
}
