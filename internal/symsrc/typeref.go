package symsrc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vijaygarry/doclava/internal/model"
)

// TypeRef is an unresolved type usage. Name is a qualified class name, a
// primitive keyword, a type variable name, or "?" for wildcards.
type TypeRef struct {
	Name      string    `yaml:"name" json:"name" msgpack:"n"`
	TypeVar   bool      `yaml:"typeVar,omitempty" json:"typeVar,omitempty" msgpack:"tv,omitempty"`
	Args      []TypeRef `yaml:"args,omitempty" json:"args,omitempty" msgpack:"a,omitempty"`
	Extends   []TypeRef `yaml:"extends,omitempty" json:"extends,omitempty" msgpack:"e,omitempty"`
	Super     []TypeRef `yaml:"super,omitempty" json:"super,omitempty" msgpack:"s,omitempty"`
	Dimension string    `yaml:"dim,omitempty" json:"dim,omitempty" msgpack:"d,omitempty"`
}

// IsWildcard reports a "?" usage.
func (r TypeRef) IsWildcard() bool { return r.Name == "?" }

// IsPrimitive reports a primitive keyword usage.
func (r TypeRef) IsPrimitive() bool { return model.IsPrimitiveName(r.Name) }

// String renders the usage in the same syntax ParseTypeRef accepts.
func (r TypeRef) String() string {
	var b strings.Builder
	r.write(&b)
	return b.String()
}

func (r TypeRef) write(b *strings.Builder) {
	b.WriteString(r.Name)
	switch {
	case (r.IsWildcard() || r.TypeVar) && len(r.Extends) > 0:
		b.WriteString(" extends ")
		writeRefs(b, r.Extends, " & ")
	case r.IsWildcard() && len(r.Super) > 0:
		b.WriteString(" super ")
		writeRefs(b, r.Super, " & ")
	}
	if len(r.Args) > 0 {
		b.WriteByte('<')
		writeRefs(b, r.Args, ", ")
		b.WriteByte('>')
	}
	b.WriteString(r.Dimension)
}

func writeRefs(b *strings.Builder, refs []TypeRef, sep string) {
	for i, r := range refs {
		if i > 0 {
			b.WriteString(sep)
		}
		r.write(b)
	}
}

// UnmarshalYAML accepts either the structured form or a type string such as
// "java.util.Map<java.lang.String, T[]>".
func (r *TypeRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		ref, err := ParseTypeRef(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*r = ref
		return nil
	}
	type plain TypeRef
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = TypeRef(p)
	return nil
}

// MarshalYAML writes the compact string form.
func (r TypeRef) MarshalYAML() (any, error) {
	return r.String(), nil
}

// ParseTypeRef parses a type string. Names without a dot that are not
// primitive keywords are treated as type variables.
func ParseTypeRef(s string) (TypeRef, error) {
	p := typeParser{src: s}
	p.skipSpace()
	ref, err := p.parseType()
	if err != nil {
		return TypeRef{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeRef{}, fmt.Errorf("type %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return ref, nil
}

// MustParseTypeRef is ParseTypeRef for literals known to be valid.
func MustParseTypeRef(s string) TypeRef {
	ref, err := ParseTypeRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) peek(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *typeParser) keyword(kw string) bool {
	if !p.peek(kw) {
		return false
	}
	end := p.pos + len(kw)
	if end < len(p.src) && isIdentByte(p.src[end]) {
		return false
	}
	p.pos = end
	return true
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}

func (p *typeParser) parseType() (TypeRef, error) {
	if p.pos < len(p.src) && p.src[p.pos] == '?' {
		p.pos++
		ref := TypeRef{Name: "?"}
		p.skipSpace()
		switch {
		case p.keyword("extends"):
			bounds, err := p.parseBounds()
			if err != nil {
				return TypeRef{}, err
			}
			ref.Extends = bounds
		case p.keyword("super"):
			bounds, err := p.parseBounds()
			if err != nil {
				return TypeRef{}, err
			}
			ref.Super = bounds
		}
		return ref, nil
	}

	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) && !p.peek("...") {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.Contains(name, "..") {
		return TypeRef{}, fmt.Errorf("type %q: bad name at offset %d", p.src, start)
	}
	ref := TypeRef{Name: name}
	if !strings.Contains(name, ".") && !model.IsPrimitiveName(name) {
		ref.TypeVar = true
	}

	p.skipSpace()
	if ref.TypeVar && p.keyword("extends") {
		bounds, err := p.parseBounds()
		if err != nil {
			return TypeRef{}, err
		}
		ref.Extends = bounds
		return ref, nil
	}
	if p.peek("<") {
		p.pos++
		for {
			p.skipSpace()
			arg, err := p.parseType()
			if err != nil {
				return TypeRef{}, err
			}
			ref.Args = append(ref.Args, arg)
			p.skipSpace()
			if p.peek(",") {
				p.pos++
				continue
			}
			if p.peek(">") {
				p.pos++
				break
			}
			return TypeRef{}, fmt.Errorf("type %q: expected ',' or '>' at offset %d", p.src, p.pos)
		}
		ref.TypeVar = false
	}

	for {
		p.skipSpace()
		switch {
		case p.peek("[]"):
			ref.Dimension += "[]"
			p.pos += 2
		case p.peek("..."):
			ref.Dimension += "..."
			p.pos += 3
			return ref, nil
		default:
			return ref, nil
		}
	}
}

func (p *typeParser) parseBounds() ([]TypeRef, error) {
	var out []TypeRef
	for {
		p.skipSpace()
		b, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
		p.skipSpace()
		if !p.peek("&") {
			return out, nil
		}
		p.pos++
	}
}
