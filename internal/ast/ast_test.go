package ast

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/polyast/internal/token"
)

// Test Plan for AST:
// - CollectVariables merges direct variables and receiver assignments
// - Receiver variables inside nested objects are ignored
// - Variables marshal type and value as source text
// - WriteTree renders nested objects, variables and functions

func TestCollectVariables(t *testing.T) {
	t.Parallel()

	direct := &Variable{Name: "x", Type: []token.Token{token.Ident("i32")}}
	receiver := &Variable{Name: "y", Receiver: true}
	shadowed := &Variable{Name: "x", Receiver: true}
	local := &Variable{Name: "tmp"}
	inner := &Variable{Name: "z", Receiver: true}

	o := &Object{
		Name: "Point",
		Body: []Node{
			VariableOf(direct),
			FunctionOf(&Function{Name: "init", Body: []Node{VariableOf(receiver), VariableOf(shadowed), VariableOf(local)}}),
			ObjectOf(&Object{Name: "Inner", Body: []Node{
				FunctionOf(&Function{Name: "f", Body: []Node{VariableOf(inner)}}),
			}}),
		},
	}
	o.CollectVariables()

	require.Len(t, o.Variables, 2)
	assert.Same(t, direct, o.Variables["x"])
	assert.Same(t, receiver, o.Variables["y"])
	assert.Len(t, o.Functions(), 1)
	assert.Len(t, o.Nested(), 1)
}

func TestVariableJSON(t *testing.T) {
	t.Parallel()

	v := &Variable{
		Name:  "x",
		Type:  []token.Token{token.Ident("Vec"), token.Delim(token.AngleBracket, '<'), token.Ident("u8"), token.Delim(token.AngleBracket, '>')},
		Value: []token.Token{{Kind: token.Number, Text: "5"}},
		Line:  3,
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Vec<u8>", got["type"])
	assert.Equal(t, "5", got["value"])

	data, err = json.Marshal(ObjectOf(&Object{Name: "A"}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"object"`)
}

func TestWriteTree(t *testing.T) {
	t.Parallel()

	o := &Object{
		Name:      "Point",
		Keyword:   "struct",
		Public:    true,
		Bases:     []string{"Shape"},
		File:      "p.rs",
		StartLine: 1,
		EndLine:   4,
		Body: []Node{
			VariableOf(&Variable{Name: "x", Type: []token.Token{token.Ident("i32")}}),
			FunctionOf(&Function{Name: "area", Params: []Parameter{{Name: "self"}}, ReturnType: "f64"}),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTree(&buf, []*Object{o}))
	assert.Equal(t, "pub struct Point : Shape  (p.rs:1-4)\n  var x: i32\n  fn area(self) -> f64\n", buf.String())
}
