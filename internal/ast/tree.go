package ast

import (
	"fmt"
	"io"
	"strings"
)

// WriteTree prints objects as an indented outline.
func WriteTree(w io.Writer, objects []*Object) error {
	for _, o := range objects {
		if err := writeObject(w, o, 0); err != nil {
			return err
		}
	}
	return nil
}

func writeObject(w io.Writer, o *Object, depth int) error {
	pad := strings.Repeat("  ", depth)
	if _, err := fmt.Fprintf(w, "%s%s  (%s:%d-%d)\n", pad, o.Signature(), o.File, o.StartLine, o.EndLine); err != nil {
		return err
	}
	return writeBody(w, o.Body, depth+1)
}

func writeBody(w io.Writer, body []Node, depth int) error {
	pad := strings.Repeat("  ", depth)
	for _, n := range body {
		var err error
		switch n.Kind {
		case ObjectNode:
			err = writeObject(w, n.Object, depth)
		case VariableNode:
			_, err = fmt.Fprintln(w, pad+n.Variable.Signature())
		case FunctionNode:
			if _, err = fmt.Fprintln(w, pad+n.Function.Signature()); err == nil {
				err = writeBody(w, n.Function.Body, depth+1)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Signature renders the object header, e.g. `pub struct Point<T> : Shape`.
func (o *Object) Signature() string {
	s := o.Keyword + " " + o.Name + o.TypeParams
	if o.Public {
		s = "pub " + s
	}
	if len(o.Bases) > 0 {
		s += " : " + strings.Join(o.Bases, ", ")
	}
	return s
}

// Signature renders the declaration as `var name[: type][ = value]`.
func (v *Variable) Signature() string {
	s := "var " + v.Name
	if t := v.TypeText(); t != "" {
		s += ": " + t
	}
	if val := v.ValueText(); val != "" {
		s += " = " + val
	}
	return s
}

// Signature renders the header as `fn name(params)[ -> ret]`.
func (f *Function) Signature() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	s := "fn " + f.Name + "(" + strings.Join(params, ", ") + ")"
	if f.ReturnType != "" {
		s += " -> " + f.ReturnType
	}
	return s
}

// String renders the parameter as name[: type][ = default].
func (p Parameter) String() string {
	s := p.Name
	if p.Type != "" {
		s += ": " + p.Type
	}
	if p.Default != "" {
		s += " = " + p.Default
	}
	return s
}
