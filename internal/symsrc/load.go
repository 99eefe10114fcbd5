package symsrc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/vijaygarry/doclava/internal/source"
)

// LoadError reports a malformed symbol dump.
type LoadError struct {
	File string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	pos := source.At(e.File, e.Line)
	return fmt.Sprintf("%s: malformed symbol dump: %v", pos, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// dump is the on-disk layout of a front-end symbol dump.
type dump struct {
	Name     string        `yaml:"name"`
	Packages []PackageDecl `yaml:"packages"`
	Classes  []ClassDecl   `yaml:"classes"`
}

// LoadFile reads a YAML or JSON symbol dump.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol dump: %w", err)
	}
	return Load(path, data)
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// Load decodes a symbol dump held in memory. Identifiers are normalized to
// NFC so equal names always produce equal index keys. Positions without a
// file are attributed to name.
func Load(name string, data []byte) (*Set, error) {
	var d dump
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		le := &LoadError{File: name, Err: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			le.Line, _ = strconv.Atoi(m[1])
		}
		return nil, le
	}

	setName := d.Name
	if setName == "" {
		setName = name
	}
	set := NewSet(setName)
	for i := range d.Packages {
		p := &d.Packages[i]
		p.Name = nfc(p.Name)
		p.Pos = fillFile(p.Pos, name)
		set.AddPackage(p)
	}
	for i := range d.Classes {
		c := &d.Classes[i]
		NormalizeClass(c, name)
		if err := set.Add(c); err != nil {
			return nil, &LoadError{File: name, Line: c.Pos.Line, Err: err}
		}
	}
	return set, nil
}

// IsLoadError reports whether err carries a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

func nfc(s string) string {
	if s == "" || norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

func fillFile(pos source.Position, file string) source.Position {
	if pos.File == "" && pos.Line > 0 {
		pos.File = file
	}
	return pos
}

// NormalizeClass puts a decoded declaration in canonical form: identifiers
// in NFC, positions attributed to file, and varargs flagged on both the
// method and its last parameter.
func NormalizeClass(c *ClassDecl, file string) {
	c.Name = nfc(c.Name)
	c.Package = nfc(c.Package)
	c.Containing = nfc(c.Containing)
	c.Pos = fillFile(c.Pos, file)
	if c.Extends != nil {
		normalizeRef(c.Extends)
	}
	for i := range c.Implements {
		normalizeRef(&c.Implements[i])
	}
	for i := range c.TypeParams {
		normalizeRef(&c.TypeParams[i])
	}
	for _, list := range [][]MethodDecl{c.Constructors, c.Methods, c.AnnotationElements} {
		for i := range list {
			normalizeMethod(&list[i], file)
		}
	}
	for _, list := range [][]FieldDecl{c.Fields, c.EnumConstants} {
		for i := range list {
			f := &list[i]
			f.Name = nfc(f.Name)
			f.Pos = fillFile(f.Pos, file)
			normalizeRef(&f.Type)
		}
	}
	for i := range c.Annotations {
		c.Annotations[i].Name = nfc(c.Annotations[i].Name)
	}
}

func normalizeMethod(m *MethodDecl, file string) {
	m.Name = nfc(m.Name)
	m.Pos = fillFile(m.Pos, file)
	if m.Return != nil {
		normalizeRef(m.Return)
	}
	for i := range m.Params {
		m.Params[i].Name = nfc(m.Params[i].Name)
		normalizeRef(&m.Params[i].Type)
	}
	for i := range m.Throws {
		m.Throws[i] = nfc(m.Throws[i])
	}
	for i := range m.TypeParams {
		normalizeRef(&m.TypeParams[i])
	}
	if n := len(m.Params); n > 0 {
		last := &m.Params[n-1].Type
		switch {
		case strings.HasSuffix(last.Dimension, "..."):
			m.VarArgs = true
		case m.VarArgs:
			last.Dimension += "..."
		}
	}
}

func normalizeRef(r *TypeRef) {
	r.Name = nfc(r.Name)
	for _, list := range [][]TypeRef{r.Args, r.Extends, r.Super} {
		for i := range list {
			normalizeRef(&list[i])
		}
	}
}
