package source

import (
	"fmt"
	"strings"
)

// Dialect is the grammar variant used for member-variable declarations.
type Dialect int

const (
	Unknown Dialect = iota
	// Indentation is the Python-family style: blocks end on dedent and
	// members are declared through self/this.
	Indentation
	// Brace is the Rust/C-family style: blocks end on '}' and members are
	// declared as `name: type`.
	Brace
)

func (d Dialect) String() string {
	switch d {
	case Indentation:
		return "indentation"
	case Brace:
		return "brace"
	}
	return "unknown"
}

// ParseDialect parses the config spelling of a dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indentation", "indent":
		return Indentation, nil
	case "brace", "braces":
		return Brace, nil
	}
	return Unknown, fmt.Errorf("unknown dialect %q", s)
}

// DefaultDialects maps language tags to dialects when nothing is configured.
var DefaultDialects = map[string]Dialect{
	"python": Indentation,
	"rust":   Brace,
}

// Dialects resolves language tags. Lookup is case-insensitive.
type Dialects map[string]Dialect

// NewDialects builds a resolver from config-style names (tag → dialect name).
// An empty map yields DefaultDialects.
func NewDialects(names map[string]string) (Dialects, error) {
	d := make(Dialects)
	if len(names) == 0 {
		for tag, dialect := range DefaultDialects {
			d[tag] = dialect
		}
		return d, nil
	}
	for tag, name := range names {
		dialect, err := ParseDialect(name)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", tag, err)
		}
		d[strings.ToLower(tag)] = dialect
	}
	return d, nil
}

// Resolve returns the dialect for a language tag, or Unknown.
func (d Dialects) Resolve(language string) Dialect {
	return d[strings.ToLower(strings.TrimSpace(language))]
}
