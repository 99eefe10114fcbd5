package model

import (
	"strings"

	"github.com/vijaygarry/doclava/internal/source"
)

// Param is one formal parameter.
type Param struct {
	Name  string
	Type  *TypeInfo
	Index int
	Pos   source.Position
}

// Method is a method, constructor or annotation element.
type Method struct {
	Name              string
	Class             *Class
	Constructor       bool
	AnnotationElement bool
	Mods              Modifiers
	Return            *TypeInfo
	Params            []*Param
	Throws            []*Class
	TypeParams        []*TypeInfo
	VarArgs           bool
	Default           string // annotation element default value
	Annotations       []*Annotation

	// Overridden is the ancestor method this one overrides, resolved after
	// all classes are filled.
	Overridden *Method

	Doc Doc
	Pos source.Position

	hashable string
}

// HashableName is the erasure-based identity used to match methods across
// snapshots: name(erased1,erased2). Varargs count as arrays.
func (m *Method) HashableName() string {
	if m.hashable != "" {
		return m.hashable
	}
	return m.computeHashable()
}

func (m *Method) computeHashable() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Type.ErasedName())
	}
	b.WriteByte(')')
	return b.String()
}

// QualifiedName is ContainingClass.name.
func (m *Method) QualifiedName() string {
	if m.Class == nil {
		return m.Name
	}
	return m.Class.QualifiedName + "." + m.Name
}

// Signature renders the parameter list with full types, e.g. "(int, java.lang.String...)".
func (m *Method) Signature() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type.String())
	}
	b.WriteByte(')')
	return b.String()
}

// PrettySignature is the qualified name followed by the signature.
func (m *Method) PrettySignature() string {
	return m.QualifiedName() + m.Signature()
}

// IsHidden reports whether the member itself carries @hide.
func (m *Method) IsHidden() bool { return m.Doc.Hidden }

// IsDeprecated combines comment and annotation deprecation.
func (m *Method) IsDeprecated() bool {
	return m.Doc.Deprecated || hasAnnotation(m.Annotations, DeprecatedAnnotation)
}

// AnnotationDeprecated reports annotation-based deprecation.
func (m *Method) AnnotationDeprecated() bool {
	return hasAnnotation(m.Annotations, DeprecatedAnnotation)
}

// ThrowsName reports whether qname is in the throws list.
func (m *Method) ThrowsName(qname string) bool {
	for _, t := range m.Throws {
		if t != nil && t.QualifiedName == qname {
			return true
		}
	}
	return false
}

// IsFinalizer reports the zero-argument finalize method.
func (m *Method) IsFinalizer() bool {
	return m.Name == "finalize" && len(m.Params) == 0
}

// Field is a field or enum constant.
type Field struct {
	Name         string
	Class        *Class
	Mods         Modifiers
	Type         *TypeInfo
	Value        string
	HasValue     bool
	EnumConstant bool
	Annotations  []*Annotation

	Doc Doc
	Pos source.Position
}

// QualifiedName is ContainingClass.name.
func (f *Field) QualifiedName() string {
	if f.Class == nil {
		return f.Name
	}
	return f.Class.QualifiedName + "." + f.Name
}

// IsHidden reports whether the member itself carries @hide.
func (f *Field) IsHidden() bool { return f.Doc.Hidden }

// IsDeprecated combines comment and annotation deprecation.
func (f *Field) IsDeprecated() bool {
	return f.Doc.Deprecated || hasAnnotation(f.Annotations, DeprecatedAnnotation)
}

// AnnotationDeprecated reports annotation-based deprecation.
func (f *Field) AnnotationDeprecated() bool {
	return hasAnnotation(f.Annotations, DeprecatedAnnotation)
}
