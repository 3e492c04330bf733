package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/parser"
	"github.com/mvp-joe/polyast/internal/source"
)

// Test Plan for Extractor:
// - Run decodes a mixed python/rust batch into objects in file order
// - Include/exclude globs drop files before tokenization
// - Configured dialect aliases are honored
// - Progress callbacks fire with consistent totals
// - Parse errors surface with their sentinel kind
// - A cancelled context stops the run
// - Stats count nested functions and variables and cache activity

const input = `[
	{"fileNo": 2, "fileName": "src/point.rs", "fileType": "rust", "lines": [
		[1, "struct Point {"], [2, "    x: i32;"], [3, "    y: i32;"], [4, "}"]]},
	{"fileNo": 1, "fileName": "src/point.py", "fileType": "python", "lines": [
		[1, "class Point:"], [2, "    def __init__(self):"], [3, "        self.x = 5"], [4, "        self.y = 0"]]},
	{"fileNo": 3, "fileName": "vendor/dep.rs", "fileType": "rust", "lines": [[1, "struct Dep;"]]}
]`

func decode(t *testing.T, s string) []*source.File {
	t.Helper()
	files, err := source.Decode(strings.NewReader(s))
	require.NoError(t, err)
	return files
}

type recorder struct {
	NoOpProgress
	kept, skipped int
	tokenized     []string
	candidates    int
	parsed        int
	stats         *Stats
}

func (r *recorder) OnFilterComplete(kept, skipped int) { r.kept, r.skipped = kept, skipped }
func (r *recorder) OnFileTokenized(path string)        { r.tokenized = append(r.tokenized, path) }
func (r *recorder) OnParseStart(total int)             { r.candidates = total }
func (r *recorder) OnCandidateParsed(done, total int)  { r.parsed = done }
func (r *recorder) OnComplete(stats *Stats)            { r.stats = stats }

func TestRun(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	e, err := New(Config{Exclude: []string{"vendor/**"}, CacheCapacity: 64}, WithProgress(rec))
	require.NoError(t, err)
	defer e.Close()

	res, err := e.Run(context.Background(), decode(t, input))
	require.NoError(t, err)

	require.Len(t, res.Objects, 2)
	assert.Equal(t, "src/point.py", res.Objects[0].File, "file number 1 comes first")
	assert.Equal(t, "src/point.rs", res.Objects[1].File)
	assert.Len(t, res.Objects[0].Variables, 2)
	assert.Len(t, res.Objects[1].Variables, 2)

	assert.Equal(t, 2, rec.kept)
	assert.Equal(t, 1, rec.skipped)
	assert.Equal(t, []string{"src/point.rs", "src/point.py"}, rec.tokenized)
	assert.Equal(t, 2, rec.candidates)
	assert.Equal(t, 2, rec.parsed)
	require.NotNil(t, rec.stats)

	s := res.Stats
	assert.Same(t, s, rec.stats)
	assert.Equal(t, 3, s.FilesTotal)
	assert.Equal(t, 1, s.FilesSkipped)
	assert.Equal(t, 8, s.Lines)
	assert.Equal(t, 2, s.Objects)
	assert.Equal(t, 1, s.Functions)
	assert.Equal(t, 4, s.Variables)
	assert.Positive(t, s.CacheMisses)
}

func TestRun_DialectAliases(t *testing.T) {
	t.Parallel()

	files := decode(t, `[{"fileNo": 1, "fileName": "a.py", "fileType": "py", "lines": [
		[1, "class A:"], [2, "    def f(self):"], [3, "        self.v = 1"]]}]`)

	e, err := New(Config{})
	require.NoError(t, err)
	_, err = e.Run(context.Background(), files)
	assert.ErrorIs(t, err, parser.ErrUnsupportedDialect, "py is unknown by default")

	e, err = New(Config{Dialects: map[string]string{"py": "indentation"}})
	require.NoError(t, err)
	res, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, res.Objects, 1)
	assert.Contains(t, res.Objects[0].Variables, "v")
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Dialects: map[string]string{"go": "tabs"}})
	assert.Error(t, err)

	e, err := New(Config{})
	require.NoError(t, err)
	_, err = e.Run(context.Background(), decode(t,
		`[{"fileNo": 1, "fileName": "a.rs", "fileType": "rust", "lines": [[1, "struct A {"]]}]`))
	assert.ErrorIs(t, err, parser.ErrUnexpectedEOF)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx, decode(t, input))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalk(t *testing.T) {
	t.Parallel()

	inner := &ast.Object{Name: "Inner"}
	outer := &ast.Object{Name: "Outer", Body: []ast.Node{
		ast.ObjectOf(inner),
		ast.FunctionOf(&ast.Function{Name: "f", Body: []ast.Node{ast.VariableOf(&ast.Variable{Name: "v"})}}),
	}}

	var names []string
	Walk([]*ast.Object{outer}, func(n ast.Node) { names = append(names, n.Name()) })
	assert.Equal(t, []string{"Outer", "Inner", "f", "v"}, names)
}
