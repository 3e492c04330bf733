package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/token"
)

// Test Plan for Search:
// - Every object, function and variable becomes one document
// - Field-scoped queries find symbols by name and type
// - Kind and file options narrow results
// - Stored fields round-trip into hits, line included
// - Rebuild replaces the indexed set
// - Limits default and cap

func sample() []*ast.Object {
	x := &ast.Variable{Name: "x", Parent: "Point", Type: []token.Token{token.Ident("i32")}, File: "src/point.rs", Line: 2}
	y := &ast.Variable{Name: "y", Parent: "Point", Type: []token.Token{token.Ident("i32")}, File: "src/point.rs", Line: 3}
	area := &ast.Function{
		Name: "area", Params: []ast.Parameter{{Name: "self"}}, ReturnType: "f64",
		Parent: "Shape", File: "src/shape.py", Line: 2, EndLine: 3,
	}
	point := &ast.Object{
		Name: "Point", Keyword: "struct", Body: []ast.Node{ast.VariableOf(x), ast.VariableOf(y)},
		File: "src/point.rs", StartLine: 1, EndLine: 4,
	}
	point.CollectVariables()
	shape := &ast.Object{
		Name: "Shape", Keyword: "class", Body: []ast.Node{ast.FunctionOf(area)},
		File: "src/shape.py", StartLine: 1, EndLine: 3,
	}
	shape.CollectVariables()
	return []*ast.Object{point, shape}
}

func newIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(context.Background(), sample())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func names(hits []*Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Name
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	idx := newIndex(t)
	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)
}

func TestSearch_ByName(t *testing.T) {
	t.Parallel()

	idx := newIndex(t)
	hits, err := idx.Search(context.Background(), "name:area", nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	h := hits[0]
	assert.Equal(t, "area", h.Name)
	assert.Equal(t, "function", h.Kind)
	assert.Equal(t, "Shape", h.Parent)
	assert.Equal(t, "src/shape.py", h.File)
	assert.Equal(t, 2, h.Line)
	assert.Equal(t, "fn area(self) -> f64", h.Signature)
	assert.Positive(t, h.Score)
}

func TestSearch_Options(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	idx := newIndex(t)

	tests := []struct {
		name  string
		query string
		opts  *Options
		want  []string
	}{
		{"type", "type:i32", nil, []string{"x", "y"}},
		{"kind filter", "Point", &Options{Kind: "object"}, []string{"Point"}},
		{"file filter", "name:area name:x", &Options{File: "*.py"}, []string{"area"}},
		{"no match", "name:missing", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := idx.Search(ctx, tt.query, tt.opts)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(hits))
		})
	}
}

func TestSearch_Limit(t *testing.T) {
	t.Parallel()

	idx := newIndex(t)
	hits, err := idx.Search(context.Background(), "file:src*", &Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestRebuild(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	idx := newIndex(t)

	only := &ast.Object{Name: "Solo", Keyword: "class", File: "solo.py", StartLine: 1, EndLine: 1}
	only.CollectVariables()
	require.NoError(t, idx.Rebuild(ctx, []*ast.Object{only}))

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	hits, err := idx.Search(ctx, "name:point", nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
