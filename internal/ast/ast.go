// Package ast defines the structural nodes produced by the parser.
package ast

import (
	"encoding/json"
	"strconv"

	"github.com/mvp-joe/polyast/internal/token"
)

// Kind tags a Node.
type Kind int

const (
	// NoNode means the dispatch step consumed input without producing a
	// construct.
	NoNode Kind = iota
	ObjectNode
	VariableNode
	FunctionNode
	// EndOfBlock is yielded when a closing brace is consumed.
	EndOfBlock
	// EndOfInput is yielded at end of file.
	EndOfInput
)

func (k Kind) String() string {
	switch k {
	case NoNode:
		return "none"
	case ObjectNode:
		return "object"
	case VariableNode:
		return "variable"
	case FunctionNode:
		return "function"
	case EndOfBlock:
		return "end_of_block"
	case EndOfInput:
		return "end_of_input"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Node is the result of one dispatch step. Exactly one payload is set for
// ObjectNode, VariableNode and FunctionNode; markers carry none.
type Node struct {
	Kind     Kind      `json:"kind"`
	Object   *Object   `json:"object,omitempty"`
	Variable *Variable `json:"variable,omitempty"`
	Function *Function `json:"function,omitempty"`
}

// Marker nodes.
var (
	None     = Node{Kind: NoNode}
	BlockEnd = Node{Kind: EndOfBlock}
	InputEnd = Node{Kind: EndOfInput}
)

// ObjectOf wraps o in a Node.
func ObjectOf(o *Object) Node { return Node{Kind: ObjectNode, Object: o} }

// VariableOf wraps v in a Node.
func VariableOf(v *Variable) Node { return Node{Kind: VariableNode, Variable: v} }

// FunctionOf wraps f in a Node.
func FunctionOf(f *Function) Node { return Node{Kind: FunctionNode, Function: f} }

// IsConstruct reports whether the node carries an object, variable or
// function.
func (n Node) IsConstruct() bool {
	switch n.Kind {
	case ObjectNode, VariableNode, FunctionNode:
		return true
	}
	return false
}

// Name returns the name of the carried construct, or "".
func (n Node) Name() string {
	switch n.Kind {
	case ObjectNode:
		return n.Object.Name
	case VariableNode:
		return n.Variable.Name
	case FunctionNode:
		return n.Function.Name
	}
	return ""
}

// Object is a class, struct, trait or similar declaration.
type Object struct {
	Name       string               `json:"name"`
	Keyword    string               `json:"keyword"`
	Public     bool                 `json:"public"`
	TypeParams string               `json:"typeParams,omitempty"`
	Bases      []string             `json:"bases,omitempty"`
	Enclosing  string               `json:"enclosing,omitempty"`
	Body       []Node               `json:"body"`
	Variables  map[string]*Variable `json:"variables"`
	File       string               `json:"file"`
	StartLine  int                  `json:"startLine"`
	EndLine    int                  `json:"endLine"`
}

// Functions returns the functions declared directly in the body.
func (o *Object) Functions() []*Function {
	var fns []*Function
	for _, n := range o.Body {
		if n.Kind == FunctionNode {
			fns = append(fns, n.Function)
		}
	}
	return fns
}

// Nested returns the objects declared directly in the body.
func (o *Object) Nested() []*Object {
	var objs []*Object
	for _, n := range o.Body {
		if n.Kind == ObjectNode {
			objs = append(objs, n.Object)
		}
	}
	return objs
}

// CollectVariables fills the Variables map from the direct Variable children
// and from receiver variables assigned in the object's own function bodies.
// Nested objects are not searched. Direct declarations win over receiver
// assignments of the same name.
func (o *Object) CollectVariables() {
	o.Variables = make(map[string]*Variable)
	for _, n := range o.Body {
		if n.Kind == FunctionNode {
			collectReceivers(n.Function.Body, o.Variables)
		}
	}
	for _, n := range o.Body {
		if n.Kind == VariableNode {
			o.Variables[n.Variable.Name] = n.Variable
		}
	}
}

func collectReceivers(body []Node, into map[string]*Variable) {
	for _, n := range body {
		switch n.Kind {
		case VariableNode:
			if n.Variable.Receiver {
				if _, seen := into[n.Variable.Name]; !seen {
					into[n.Variable.Name] = n.Variable
				}
			}
		case FunctionNode:
			collectReceivers(n.Function.Body, into)
		}
	}
}

// Variable is a member variable declaration.
type Variable struct {
	Name     string
	Parent   string
	Type     []token.Token
	Value    []token.Token
	Public   bool
	Receiver bool
	File     string
	Line     int
}

// TypeText returns the declared type as source text.
func (v *Variable) TypeText() string { return token.Join(v.Type) }

// ValueText returns the initializer as source text.
func (v *Variable) ValueText() string { return token.Join(v.Value) }

// MarshalJSON renders type and value as text.
func (v *Variable) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string `json:"name"`
		Parent   string `json:"parent,omitempty"`
		Type     string `json:"type,omitempty"`
		Value    string `json:"value,omitempty"`
		Public   bool   `json:"public"`
		Receiver bool   `json:"receiver"`
		File     string `json:"file"`
		Line     int    `json:"line"`
	}{v.Name, v.Parent, v.TypeText(), v.ValueText(), v.Public, v.Receiver, v.File, v.Line})
}

// Function is a function or method declaration.
type Function struct {
	Name       string      `json:"name"`
	Params     []Parameter `json:"params"`
	ReturnType string      `json:"returnType,omitempty"`
	Body       []Node      `json:"body,omitempty"`
	Public     bool        `json:"public"`
	Parent     string      `json:"parent,omitempty"`
	File       string      `json:"file"`
	Line       int         `json:"line"`
	EndLine    int         `json:"endLine"`
}

// Parameter is one entry of a parameter list. Type and Default are empty
// when absent.
type Parameter struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Default string `json:"default,omitempty"`
}
