package token

import "strings"

// objectKeywords introduce a type/structure definition in any supported syntax.
var objectKeywords = map[string]bool{
	"class":     true,
	"struct":    true,
	"enum":      true,
	"interface": true,
	"trait":     true,
	"union":     true,
	"record":    true,
	"module":    true,
	"object":    true,
	"protocol":  true,
	"table":     true,
	"impl":      true,
	"defmodule": true,
	"defstruct": true,
}

var visibilityKeywords = map[string]bool{
	"pub":     true,
	"public":  true,
	"private": false,
}

var reservedWords = map[string]Token{
	"self":    {Kind: SelfRef},
	"this":    {Kind: SelfRef},
	"def":     {Kind: FunctionDeclaration},
	"fn":      {Kind: FunctionDeclaration},
	"char":    {Kind: Type, Prim: Char},
	"string":  {Kind: Type, Prim: String},
	"str":     {Kind: Type, Prim: String},
	"int":     {Kind: Type, Prim: Integer},
	"integer": {Kind: Type, Prim: Integer},
	"float":   {Kind: Type, Prim: Float},
	"double":  {Kind: Type, Prim: Float},
	"none":    {Kind: Type, Prim: None},
	"void":    {Kind: Type, Prim: None},
}

// Classify maps an identifier to its token. Lookup is case-insensitive; the
// returned token always carries the original text.
func Classify(text string) Token {
	lower := strings.ToLower(text)
	if objectKeywords[lower] {
		return Token{Kind: ObjectDeclaration, Text: text}
	}
	if public, ok := visibilityKeywords[lower]; ok {
		return Token{Kind: Publicity, Text: text, Public: public}
	}
	if tok, ok := reservedWords[lower]; ok {
		tok.Text = text
		return tok
	}
	return Token{Kind: Identifier, Text: text}
}

// IsObjectKeyword reports whether text is an object-declaration keyword.
func IsObjectKeyword(text string) bool {
	return objectKeywords[strings.ToLower(text)]
}
