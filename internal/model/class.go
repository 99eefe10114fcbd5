package model

import (
	"strings"

	"github.com/vijaygarry/doclava/internal/source"
)

// RootClassName is the universal base type; it is the only class allowed
// to have no superclass.
const RootClassName = "java.lang.Object"

// Kind classifies a class declaration.
type Kind uint8

const (
	KindClass Kind = iota
	KindInterface
	KindEnum
	KindAnnotation
)

func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	default:
		return "class"
	}
}

// ParseKind maps class|interface|enum|annotation (and @interface) to a Kind.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "interface":
		return KindInterface
	case "enum":
		return KindEnum
	case "annotation", "@interface", "annotation-type":
		return KindAnnotation
	default:
		return KindClass
	}
}

// Class is a class, interface, enum or annotation type. Fields are filled by
// the builder and must be treated as read-only afterwards.
type Class struct {
	id    ClassID
	local bool

	QualifiedName string
	Name          string // package-relative name, e.g. "Outer.Inner"
	SimpleName    string
	Kind          Kind
	Mods          Modifiers

	Package        *Package
	Containing     *Class
	Superclass     *Class
	SuperType      *TypeInfo
	Interfaces     []*Class
	InterfaceTypes []*TypeInfo
	TypeParams     []*TypeInfo

	Inner              []*Class
	Constructors       []*Method
	Methods            []*Method
	Fields             []*Field
	EnumConstants      []*Field
	AnnotationElements []*Method
	Annotations        []*Annotation

	Doc Doc
	Pos source.Position

	methodIndex map[string]*Method
	ctorIndex   map[string]*Method
	fieldIndex  map[string]*Field
}

// ID returns the arena identity of the class.
func (c *Class) ID() ClassID {
	if c == nil {
		return NoClassID
	}
	return c.id
}

// IsLocal reports whether the class was declared in this snapshot, as
// opposed to being a shell for an external reference.
func (c *Class) IsLocal() bool { return c != nil && c.local }

func (c *Class) IsInterface() bool  { return c.Kind == KindInterface || c.Kind == KindAnnotation }
func (c *Class) IsEnum() bool       { return c.Kind == KindEnum }
func (c *Class) IsAnnotation() bool { return c.Kind == KindAnnotation }

func (c *Class) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.QualifiedName
}

// IsHidden reports whether the class, an enclosing class or its package is
// hidden.
func (c *Class) IsHidden() bool {
	for cur := c; cur != nil; cur = cur.Containing {
		if cur.Doc.Hidden {
			return true
		}
	}
	return c.Package != nil && c.Package.Hidden
}

// AnnotationDeprecated reports annotation-based deprecation.
func (c *Class) AnnotationDeprecated() bool {
	return hasAnnotation(c.Annotations, DeprecatedAnnotation)
}

// IsDeprecated combines comment and annotation deprecation.
func (c *Class) IsDeprecated() bool {
	return c.Doc.Deprecated || c.AnnotationDeprecated()
}

// SuperclassName returns the superclass qualified name, or "" when the class
// has no explicit superclass.
func (c *Class) SuperclassName() string {
	if c.Superclass != nil {
		return c.Superclass.QualifiedName
	}
	if c.SuperType != nil {
		return c.SuperType.QualifiedName
	}
	return ""
}

// Method finds a declared method by hashable name.
func (c *Class) Method(hashable string) (*Method, bool) {
	if c.methodIndex != nil {
		m, ok := c.methodIndex[hashable]
		return m, ok
	}
	for _, m := range c.Methods {
		if m.HashableName() == hashable {
			return m, true
		}
	}
	return nil, false
}

// Constructor finds a declared constructor by hashable name.
func (c *Class) Constructor(hashable string) (*Method, bool) {
	if c.ctorIndex != nil {
		m, ok := c.ctorIndex[hashable]
		return m, ok
	}
	for _, m := range c.Constructors {
		if m.HashableName() == hashable {
			return m, true
		}
	}
	return nil, false
}

// Field finds a declared field or enum constant by name.
func (c *Class) Field(name string) (*Field, bool) {
	if c.fieldIndex != nil {
		f, ok := c.fieldIndex[name]
		return f, ok
	}
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	for _, f := range c.EnumConstants {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// AllFields returns declared fields followed by enum constants.
func (c *Class) AllFields() []*Field {
	if len(c.EnumConstants) == 0 {
		return c.Fields
	}
	out := make([]*Field, 0, len(c.Fields)+len(c.EnumConstants))
	out = append(out, c.EnumConstants...)
	out = append(out, c.Fields...)
	return out
}

func (c *Class) buildIndexes() {
	c.methodIndex = make(map[string]*Method, len(c.Methods))
	for _, m := range c.Methods {
		m.hashable = m.computeHashable()
		if _, dup := c.methodIndex[m.hashable]; !dup {
			c.methodIndex[m.hashable] = m
		}
	}
	for _, m := range c.AnnotationElements {
		m.hashable = m.computeHashable()
	}
	c.ctorIndex = make(map[string]*Method, len(c.Constructors))
	for _, m := range c.Constructors {
		m.hashable = m.computeHashable()
		if _, dup := c.ctorIndex[m.hashable]; !dup {
			c.ctorIndex[m.hashable] = m
		}
	}
	c.fieldIndex = make(map[string]*Field, len(c.Fields)+len(c.EnumConstants))
	for _, f := range c.AllFields() {
		if _, dup := c.fieldIndex[f.Name]; !dup {
			c.fieldIndex[f.Name] = f
		}
	}
}

// SplitQualifiedName guesses the package and package-relative name of a
// qualified class name. The package ends before the first segment starting
// with an upper-case letter; without such a segment the last segment is the
// class name.
func SplitQualifiedName(qname string) (pkg, name string) {
	parts := strings.Split(qname, ".")
	for i, p := range parts {
		if p != "" && p[0] >= 'A' && p[0] <= 'Z' {
			return strings.Join(parts[:i], "."), strings.Join(parts[i:], ".")
		}
	}
	if len(parts) == 1 {
		return "", qname
	}
	return strings.Join(parts[:len(parts)-1], "."), parts[len(parts)-1]
}

// SimpleNameOf returns the last dotted segment of name.
func SimpleNameOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
