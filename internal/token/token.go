// Package token defines the lexical vocabulary shared by every source dialect.
package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the lexical category of a Token.
type Kind int

const (
	EOF Kind = iota
	ObjectDeclaration
	Publicity
	Identifier
	SelfRef
	FunctionDeclaration
	StringLiteral
	Number
	Type
	Comment
	Indent
	BlockOpen
	BlockClose
	Parenthesis
	Bracket
	AngleBracket
	Period
	Comma
	Colon
	Connect
	Semicolon
	Arrow
	Equals
	Other
)

var kindNames = [...]string{
	EOF:                 "EOF",
	ObjectDeclaration:   "ObjectDeclaration",
	Publicity:           "Publicity",
	Identifier:          "Identifier",
	SelfRef:             "SelfRef",
	FunctionDeclaration: "FunctionDeclaration",
	StringLiteral:       "StringLiteral",
	Number:              "Number",
	Type:                "Type",
	Comment:             "Comment",
	Indent:              "Indent",
	BlockOpen:           "BlockOpen",
	BlockClose:          "BlockClose",
	Parenthesis:         "Parenthesis",
	Bracket:             "Bracket",
	AngleBracket:        "AngleBracket",
	Period:              "Period",
	Comma:               "Comma",
	Colon:               "Colon",
	Connect:             "Connect",
	Semicolon:           "Semicolon",
	Arrow:               "Arrow",
	Equals:              "Equals",
	Other:               "Other",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Primitive is the closed set of primitive type names the lexer recognizes.
type Primitive int

const (
	NoPrimitive Primitive = iota
	Char
	String
	Integer
	Float
	None
)

var primitiveNames = [...]string{
	NoPrimitive: "",
	Char:        "char",
	String:      "string",
	Integer:     "integer",
	Float:       "float",
	None:        "none",
}

func (p Primitive) String() string {
	if p >= 0 && int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "Primitive(" + strconv.Itoa(int(p)) + ")"
}

// Token is one lexical unit. Only the fields relevant to Kind are set:
//   - Text: source text of identifiers, keywords, numbers, comments and
//     string bodies (escape markers kept)
//   - Char: the delimiter, quote or catch-all character
//   - Width: indentation width of an Indent token
//   - Public: visibility of a Publicity token
//   - Prim: primitive of a Type token
//   - Unterminated: a StringLiteral that ran to end of line without its
//     closing quote
//
// Token is comparable with ==.
type Token struct {
	Kind   Kind
	Text   string
	Char   rune
	Width  int
	Public bool
	Prim   Primitive

	Unterminated bool
}

// New returns a token of kind k with no payload.
func New(k Kind) Token { return Token{Kind: k} }

// Delim returns a delimiter or catch-all token carrying c.
func Delim(k Kind, c rune) Token { return Token{Kind: k, Char: c} }

// Ident returns an Identifier token.
func Ident(text string) Token { return Token{Kind: Identifier, Text: text} }

// Is reports whether the token has kind k.
func (t Token) Is(k Kind) bool { return t.Kind == k }

// Matches reports whether t satisfies want. Kinds must agree; for kinds that
// carry a character the characters must agree too. Text is ignored so that
// keyword tokens match regardless of their source spelling.
func (t Token) Matches(want Token) bool {
	if t.Kind != want.Kind {
		return false
	}
	switch t.Kind {
	case BlockOpen, Parenthesis, Bracket, AngleBracket, Other:
		return want.Char == 0 || t.Char == want.Char
	}
	return true
}

// IsOpen reports whether t opens a nesting level in a type expression.
func (t Token) IsOpen() bool {
	switch t.Kind {
	case BlockOpen:
		return true
	case Parenthesis:
		return t.Char == '('
	case Bracket:
		return t.Char == '['
	case AngleBracket:
		return t.Char == '<'
	}
	return false
}

// IsClose reports whether t closes a nesting level. BlockClose stands in for
// any closing brace.
func (t Token) IsClose() bool {
	switch t.Kind {
	case BlockClose:
		return true
	case Parenthesis:
		return t.Char == ')'
	case Bracket:
		return t.Char == ']'
	case AngleBracket:
		return t.Char == '>'
	}
	return false
}

// String returns the source form of the token. Indent and EOF have none.
func (t Token) String() string {
	switch t.Kind {
	case ObjectDeclaration, Publicity, Identifier, SelfRef, FunctionDeclaration,
		Number, Type, Comment:
		return t.Text
	case StringLiteral:
		q := string(t.Char)
		if t.Char == 0 {
			q = `"`
		}
		if t.Unterminated {
			return q + t.Text
		}
		return q + t.Text + q
	case BlockOpen, Parenthesis, Bracket, AngleBracket, Other:
		return string(t.Char)
	case BlockClose:
		return "}"
	case Period:
		return "."
	case Comma:
		return ","
	case Colon:
		return ":"
	case Connect:
		return "::"
	case Semicolon:
		return ";"
	case Arrow:
		return "->"
	case Equals:
		return "="
	}
	return ""
}

// Describe renders the token for diagnostics, e.g. `Identifier("Foo")`.
func (t Token) Describe() string {
	switch t.Kind {
	case Indent:
		return fmt.Sprintf("Indent(%d)", t.Width)
	case Publicity:
		return fmt.Sprintf("Publicity(%t)", t.Public)
	case Type:
		return fmt.Sprintf("Type(%s)", t.Prim)
	case EOF, Period, Comma, Colon, Connect, Semicolon, Arrow, Equals, BlockClose:
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.String())
}

// Join concatenates the source form of toks with no separator.
func Join(toks []Token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.String())
	}
	return sb.String()
}

// DescribeAll renders a token sequence for diagnostics.
func DescribeAll(toks []Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Describe()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Balance walks toks with a single depth counter over ( [ { < and ) ] } >.
// It returns the final depth and false as soon as the depth goes negative.
func Balance(toks []Token) (int, bool) {
	depth := 0
	for _, t := range toks {
		switch {
		case t.IsOpen():
			depth++
		case t.IsClose():
			depth--
			if depth < 0 {
				return depth, false
			}
		}
	}
	return depth, true
}
