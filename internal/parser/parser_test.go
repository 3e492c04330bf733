package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/polyast/internal/ast"
	"github.com/mvp-joe/polyast/internal/lexer"
	"github.com/mvp-joe/polyast/internal/source"
	"github.com/mvp-joe/polyast/internal/token"
)

// Test Plan for Parser:
// - Brace struct with typed fields yields one object with both variables
// - Indentation class collects receiver assignments from its methods
// - Indentation blocks end at the first dedented line
// - One-line brace structs, receiver variables directly in a class body, and
//   a shallower-but-still-indented line ending a nested block
// - Nested objects live in the parent body and are not reparsed
// - impl X for Y names Y and records X as a base
// - Heritage: parent lists, extends/implements, brace-dialect colon lists
// - Functions: params, defaults, type-first params, return types, bodies
// - Visibility modifiers, including restricted forms like pub(crate)
// - Candidates are ordered by file number then line
// - Errors: structural, unexpected EOF, unsupported dialect

func newFile(t *testing.T, no int, path string, dialect source.Dialect, lines ...string) *lexer.File {
	t.Helper()
	m := make(map[int]string, len(lines))
	for i, l := range lines {
		m[i+1] = l
	}
	return lexer.New().TokenizeFile(source.NewFile(no, path, dialect.String(), m), dialect)
}

func parseOne(t *testing.T, f *lexer.File) []*ast.Object {
	t.Helper()
	objs, err := New([]*lexer.File{f}).Parse()
	require.NoError(t, err)
	return objs
}

func TestParse_BraceStruct(t *testing.T) {
	t.Parallel()

	f := newFile(t, 1, "point.rs", source.Brace,
		"struct Point {",
		"    x: i32;",
		"    y: i32;",
		"}",
	)
	objs := parseOne(t, f)
	require.Len(t, objs, 1)

	p := objs[0]
	assert.Equal(t, "Point", p.Name)
	assert.Equal(t, "struct", p.Keyword)
	assert.Equal(t, 1, p.StartLine)
	assert.Equal(t, 4, p.EndLine)
	assert.Equal(t, "point.rs", p.File)
	require.Len(t, p.Variables, 2)
	assert.Equal(t, "i32", p.Variables["x"].TypeText())
	assert.Equal(t, "i32", p.Variables["y"].TypeText())
	assert.Equal(t, "Point", p.Variables["x"].Parent)
	assert.False(t, p.Variables["x"].Receiver)
	assert.Len(t, p.Body, 2)
}

func TestParse_IndentationClass(t *testing.T) {
	t.Parallel()

	f := newFile(t, 1, "point.py", source.Indentation,
		"class Point:",
		"    def __init__(self):",
		"        self.x = 5",
		"        self.y = 0",
		"",
		"p = Point()",
	)
	objs := parseOne(t, f)
	require.Len(t, objs, 1)

	p := objs[0]
	assert.Equal(t, "Point", p.Name)
	assert.Equal(t, 4, p.EndLine)
	require.Len(t, p.Variables, 2)
	assert.Equal(t, "5", p.Variables["x"].ValueText())
	assert.Equal(t, "0", p.Variables["y"].ValueText())
	assert.True(t, p.Variables["x"].Receiver)

	fns := p.Functions()
	require.Len(t, fns, 1)
	assert.Equal(t, "__init__", fns[0].Name)
	assert.Equal(t, []ast.Parameter{{Name: "self"}}, fns[0].Params)
	assert.Equal(t, "Point", fns[0].Parent)
	assert.Len(t, fns[0].Body, 2)
}

func TestParse_IndentTermination(t *testing.T) {
	t.Parallel()

	f := newFile(t, 1, "a.py", source.Indentation,
		"class A:",
		"    def f(self):",
		"        self.x = 1",
		"    # trailing comment",
		"def g(obj):",
		"    self.y = 2",
		"class Empty: pass",
		"class Typed:",
		"    def h(self) -> int:",
		"        self.z: int = 3",
	)
	objs := parseOne(t, f)
	require.Len(t, objs, 3)

	a := objs[0]
	assert.Equal(t, 3, a.EndLine)
	assert.Len(t, a.Variables, 1)
	assert.Contains(t, a.Variables, "x")

	empty := objs[1]
	assert.Equal(t, "Empty", empty.Name)
	assert.Empty(t, empty.Body)
	assert.Equal(t, 7, empty.EndLine)

	typed := objs[2]
	require.Len(t, typed.Functions(), 1)
	assert.Equal(t, "int", typed.Functions()[0].ReturnType)
	z := typed.Variables["z"]
	require.NotNil(t, z)
	assert.Equal(t, "int", z.TypeText())
	assert.Equal(t, "3", z.ValueText())
}

func TestParse_Scenarios(t *testing.T) {
	t.Parallel()

	type wantVar struct {
		name, typ, value, parent string
	}

	tests := []struct {
		name    string
		dialect source.Dialect
		lines   []string
		pick    func([]*ast.Object) *ast.Object
		object  string
		endLine int
		bodyLen int
		vars    []wantVar
	}{
		{
			name:    "one-line brace struct",
			dialect: source.Brace,
			lines:   []string{"struct Point { x: i32; y: i32; }"},
			object:  "Point",
			endLine: 1,
			bodyLen: 2,
			vars: []wantVar{
				{"x", "i32", "", "Point"},
				{"y", "i32", "", "Point"},
			},
		},
		{
			name:    "receiver variable in class body",
			dialect: source.Indentation,
			lines:   []string{"class Point:", "    self.x = 5"},
			object:  "Point",
			endLine: 2,
			bodyLen: 1,
			vars:    []wantVar{{"x", "", "5", "Point"}},
		},
		{
			name:    "dedent to a shallower indent",
			dialect: source.Indentation,
			lines: []string{
				"class Outer:",
				"  class A:",
				"    self.a = 1",
				"  self.b = 2",
			},
			pick:    func(objs []*ast.Object) *ast.Object { return objs[0].Nested()[0] },
			object:  "A",
			endLine: 3,
			bodyLen: 1,
			vars:    []wantVar{{"a", "", "1", "A"}},
		},
		{
			name:    "enclosing block keeps the shallower line",
			dialect: source.Indentation,
			lines: []string{
				"class Outer:",
				"  class A:",
				"    self.a = 1",
				"  self.b = 2",
			},
			object:  "Outer",
			endLine: 4,
			bodyLen: 2,
			vars:    []wantVar{{"b", "", "2", "Outer"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			objs := parseOne(t, newFile(t, 1, "s", tt.dialect, tt.lines...))
			require.Len(t, objs, 1)

			obj := objs[0]
			if tt.pick != nil {
				obj = tt.pick(objs)
			}
			assert.Equal(t, tt.object, obj.Name)
			assert.Equal(t, tt.endLine, obj.EndLine)
			require.Len(t, obj.Body, tt.bodyLen)
			require.Len(t, obj.Variables, len(tt.vars))

			for _, want := range tt.vars {
				v := obj.Variables[want.name]
				require.NotNil(t, v, want.name)
				assert.Equal(t, want.typ, v.TypeText(), want.name)
				assert.Equal(t, want.value, v.ValueText(), want.name)
				assert.Equal(t, want.parent, v.Parent, want.name)
			}
		})
	}
}

func TestParse_Nested(t *testing.T) {
	t.Parallel()

	f := newFile(t, 1, "n.py", source.Indentation,
		"class Outer:",
		"    class Inner:",
		"        def f(self):",
		"            self.a = 1",
		"    def g(self):",
		"        self.b = 2",
	)
	objs := parseOne(t, f)
	require.Len(t, objs, 1, "inner class is not a top-level result")

	outer := objs[0]
	require.Len(t, outer.Nested(), 1)
	inner := outer.Nested()[0]
	assert.Equal(t, "Inner", inner.Name)
	assert.Equal(t, "Outer", inner.Enclosing)
	assert.Empty(t, outer.Enclosing)
	assert.Contains(t, inner.Variables, "a")

	assert.Len(t, outer.Variables, 1)
	assert.Contains(t, outer.Variables, "b")
}

func TestParse_Impl(t *testing.T) {
	t.Parallel()

	f := newFile(t, 1, "w.rs", source.Brace,
		"impl<T> Display for Wrapper<T> {",
		"    fn fmt(&self, f: &mut Formatter) -> Result {",
		"        self.count = 1;",
		"    }",
		"}",
	)
	objs := parseOne(t, f)
	require.Len(t, objs, 1)

	w := objs[0]
	assert.Equal(t, "Wrapper", w.Name)
	assert.Equal(t, "impl", w.Keyword)
	assert.Equal(t, "<T>", w.TypeParams)
	assert.Equal(t, []string{"Display"}, w.Bases)
	assert.Equal(t, 5, w.EndLine)

	fns := w.Functions()
	require.Len(t, fns, 1)
	fmtFn := fns[0]
	assert.Equal(t, "Result", fmtFn.ReturnType)
	assert.Equal(t, []ast.Parameter{
		{Name: "self", Type: "&"},
		{Name: "f", Type: "&mutFormatter"},
	}, fmtFn.Params)

	require.Contains(t, w.Variables, "count")
	assert.Equal(t, "1", w.Variables["count"].ValueText())
}

func TestParse_Heritage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect source.Dialect
		lines   []string
		want    string
		bases   []string
	}{
		{"parent list", source.Indentation, []string{"class Config(Base, mod.Mixin, metaclass=Meta):", "    pass"}, "Config", []string{"Base", "mod.Mixin"}},
		{"extends implements", source.Brace, []string{"class A extends B implements C, D {", "}"}, "A", []string{"B", "C", "D"}},
		{"colon list", source.Brace, []string{"class Circle : public Shape, Drawable {", "};"}, "Circle", []string{"Shape", "Drawable"}},
		{"supertraits", source.Brace, []string{"trait Named: Debug + Clone {}"}, "Named", []string{"Debug", "Clone"}},
		{"where clause", source.Brace, []string{"struct Holder<T> where T: Clone {", "    item: T,", "}"}, "Holder", nil},
		{"qualified impl", source.Brace, []string{"impl fmt::Display for Point {}"}, "Point", []string{"fmt::Display"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			objs := parseOne(t, newFile(t, 1, "h", tt.dialect, tt.lines...))
			require.Len(t, objs, 1)
			assert.Equal(t, tt.want, objs[0].Name)
			assert.Equal(t, tt.bases, objs[0].Bases)
		})
	}
}

func TestParse_Functions(t *testing.T) {
	t.Parallel()

	f := newFile(t, 1, "c.py", source.Indentation,
		"class Loader:",
		"    def load(self, path: str = \"x\", *args, flag=[1, 2]) -> bool:",
		"        self.path = path",
		"    def inline(self): return 1",
	)
	objs := parseOne(t, f)
	require.Len(t, objs, 1)

	fns := objs[0].Functions()
	require.Len(t, fns, 2)
	load := fns[0]
	assert.Equal(t, "bool", load.ReturnType)
	assert.Equal(t, []ast.Parameter{
		{Name: "self"},
		{Name: "path", Type: "str", Default: `"x"`},
		{Name: "args", Type: "*"},
		{Name: "flag", Default: "[1,2]"},
	}, load.Params)
	assert.Equal(t, 3, objs[0].Variables["path"].Line)

	assert.Equal(t, "inline", fns[1].Name)
	assert.Empty(t, fns[1].ReturnType)
}

func TestParse_TraitMethods(t *testing.T) {
	t.Parallel()

	f := newFile(t, 1, "shape.rs", source.Brace,
		"pub trait Shape {",
		"    fn area(&self) -> f64;",
		"    pub fn name(&self) -> String { String::new() }",
		"    fn scale(&mut self, by: f64)",
		"    {",
		"        self.factor = by;",
		"    }",
		"}",
	)
	objs := parseOne(t, f)
	require.Len(t, objs, 1)

	shape := objs[0]
	assert.True(t, shape.Public)
	fns := shape.Functions()
	require.Len(t, fns, 3)
	assert.Equal(t, "f64", fns[0].ReturnType)
	assert.Empty(t, fns[0].Body)
	assert.False(t, fns[0].Public)
	assert.Equal(t, "String", fns[1].ReturnType)
	assert.True(t, fns[1].Public)
	assert.Equal(t, "scale", fns[2].Name)
	assert.Empty(t, fns[2].Body, "a body on the next line is only attached after a return type")
	assert.Equal(t, 8, shape.EndLine)
}

func TestParse_Fields(t *testing.T) {
	t.Parallel()

	f := newFile(t, 1, "f.rs", source.Brace,
		"pub struct Config {",
		"    pub(crate) name: String,",
		"    pub items: HashMap<K, Vec<Option<u8>>>,",
		"    limit: u32 = 10; // default",
		"}",
		"struct Marker;",
	)
	objs := parseOne(t, f)
	require.Len(t, objs, 2)

	cfg := objs[0]
	require.Len(t, cfg.Variables, 3)
	assert.True(t, cfg.Variables["name"].Public)
	assert.Equal(t, "String", cfg.Variables["name"].TypeText())

	items := cfg.Variables["items"]
	assert.Equal(t, "HashMap<K,Vec<Option<u8>>>", items.TypeText())
	depth, ok := token.Balance(items.Type)
	assert.True(t, ok)
	assert.Equal(t, 0, depth)

	limit := cfg.Variables["limit"]
	assert.False(t, limit.Public)
	assert.Equal(t, "u32", limit.TypeText())
	assert.Equal(t, "10", limit.ValueText())

	marker := objs[1]
	assert.Equal(t, "Marker", marker.Name)
	assert.Empty(t, marker.Body)
	assert.Equal(t, 6, marker.EndLine)
}

func TestParse_CandidateOrder(t *testing.T) {
	t.Parallel()

	second := newFile(t, 2, "b.rs", source.Brace, "struct B;")
	first := newFile(t, 1, "a.py", source.Indentation, "", "class A: pass")

	var calls []int
	p := New([]*lexer.File{second, first}, WithProgress(func(done, total int) {
		assert.Equal(t, 2, total)
		calls = append(calls, done)
	}))
	cands := p.Candidates()
	require.Len(t, cands, 2)
	assert.Equal(t, "a.py", cands[0].File.Path)
	assert.Equal(t, 2, cands[0].Line)

	objs, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "A", objs[0].Name)
	assert.Equal(t, "B", objs[1].Name)
	assert.Equal(t, []int{1, 2}, calls)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect source.Dialect
		lines   []string
		want    error
	}{
		{"missing name", source.Brace, []string{"struct 123 {", "}"}, ErrStructural},
		{"missing body", source.Indentation, []string{"class Foo", "x = 1"}, ErrStructural},
		{"unterminated block", source.Brace, []string{"struct A {", "    x: i32"}, ErrUnexpectedEOF},
		{"unterminated params", source.Brace, []string{"struct A {", "    fn f(a: i32,"}, ErrUnexpectedEOF},
		{"unknown dialect", source.Unknown, []string{"class A:", "    self.x = 1"}, ErrUnsupportedDialect},
		{"bad parameter", source.Brace, []string{"struct A {", "    fn f(;) {}", "}"}, ErrStructural},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFile(t, 1, "bad.src", tt.dialect, tt.lines...)
			objs, err := New([]*lexer.File{f}).Parse()
			require.Error(t, err)
			assert.Nil(t, objs)
			assert.ErrorIs(t, err, tt.want)

			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "bad.src", perr.File)
			assert.Contains(t, err.Error(), "bad.src")
		})
	}
}
