package source

import (
	"cmp"
	"fmt"
)

// Position locates a declaration inside an input document.
// The zero value is the unknown position.
type Position struct {
	File   string `yaml:"file,omitempty" json:"file,omitempty" msgpack:"f,omitempty"`
	Line   int    `yaml:"line,omitempty" json:"line,omitempty" msgpack:"l,omitempty"`
	Column int    `yaml:"column,omitempty" json:"column,omitempty" msgpack:"c,omitempty"`
}

// Unknown is the position used when a declaration has no recorded origin.
var Unknown = Position{}

// At is a shortcut for a file/line position.
func At(file string, line int) Position {
	return Position{File: file, Line: line}
}

// IsKnown reports whether the position names a file.
func (p Position) IsKnown() bool {
	return p.File != ""
}

func (p Position) String() string {
	switch {
	case p.File == "":
		return "unknown"
	case p.Line <= 0:
		return p.File
	case p.Column <= 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// Compare orders positions by file, then line, then column.
// Unknown positions sort before every known one.
func (p Position) Compare(other Position) int {
	if c := cmp.Compare(p.File, other.File); c != 0 {
		return c
	}
	if c := cmp.Compare(p.Line, other.Line); c != 0 {
		return c
	}
	return cmp.Compare(p.Column, other.Column)
}
