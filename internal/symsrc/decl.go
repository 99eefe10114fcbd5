// Package symsrc defines the symbol declarations a front-end hands to the
// snapshot builder, and loads them from YAML or JSON dumps.
package symsrc

import (
	"github.com/vijaygarry/doclava/internal/model"
	"github.com/vijaygarry/doclava/internal/source"
)

// Modifiers is the declared access level and flags of a declaration.
type Modifiers struct {
	Visibility   string `yaml:"visibility,omitempty" json:"visibility,omitempty" msgpack:"vis,omitempty"`
	Static       bool   `yaml:"static,omitempty" json:"static,omitempty" msgpack:"st,omitempty"`
	Final        bool   `yaml:"final,omitempty" json:"final,omitempty" msgpack:"fi,omitempty"`
	Abstract     bool   `yaml:"abstract,omitempty" json:"abstract,omitempty" msgpack:"ab,omitempty"`
	Native       bool   `yaml:"native,omitempty" json:"native,omitempty" msgpack:"na,omitempty"`
	Synchronized bool   `yaml:"synchronized,omitempty" json:"synchronized,omitempty" msgpack:"sy,omitempty"`
	Transient    bool   `yaml:"transient,omitempty" json:"transient,omitempty" msgpack:"tr,omitempty"`
	Volatile     bool   `yaml:"volatile,omitempty" json:"volatile,omitempty" msgpack:"vo,omitempty"`
}

// Model converts to the model representation.
func (m Modifiers) Model() model.Modifiers {
	out := model.Modifiers{Scope: model.ParseScope(m.Visibility)}
	for _, item := range []struct {
		set  bool
		flag model.Flags
	}{
		{m.Static, model.FlagStatic},
		{m.Final, model.FlagFinal},
		{m.Abstract, model.FlagAbstract},
		{m.Native, model.FlagNative},
		{m.Synchronized, model.FlagSynchronized},
		{m.Transient, model.FlagTransient},
		{m.Volatile, model.FlagVolatile},
	} {
		if item.set {
			out.Flags |= item.flag
		}
	}
	return out
}

// AnnotationDecl is one applied annotation.
type AnnotationDecl struct {
	Name   string            `yaml:"name" json:"name" msgpack:"n"`
	Values map[string]string `yaml:"values,omitempty" json:"values,omitempty" msgpack:"v,omitempty"`
}

// ParamDecl is one formal parameter.
type ParamDecl struct {
	Name string  `yaml:"name" json:"name" msgpack:"n"`
	Type TypeRef `yaml:"type" json:"type" msgpack:"t"`
}

// MethodDecl describes a method, constructor or annotation element.
type MethodDecl struct {
	Name        string           `yaml:"name" json:"name" msgpack:"n"`
	Modifiers   `yaml:",inline" json:",inline" msgpack:"m"`
	Return      *TypeRef         `yaml:"return,omitempty" json:"return,omitempty" msgpack:"r,omitempty"`
	Params      []ParamDecl      `yaml:"params,omitempty" json:"params,omitempty" msgpack:"p,omitempty"`
	Throws      []string         `yaml:"throws,omitempty" json:"throws,omitempty" msgpack:"x,omitempty"`
	TypeParams  []TypeRef        `yaml:"typeParams,omitempty" json:"typeParams,omitempty" msgpack:"tp,omitempty"`
	VarArgs     bool             `yaml:"varargs,omitempty" json:"varargs,omitempty" msgpack:"va,omitempty"`
	Default     string           `yaml:"default,omitempty" json:"default,omitempty" msgpack:"d,omitempty"`
	Annotations []AnnotationDecl `yaml:"annotations,omitempty" json:"annotations,omitempty" msgpack:"a,omitempty"`
	Comment     string           `yaml:"comment,omitempty" json:"comment,omitempty" msgpack:"c,omitempty"`
	Deprecated  bool             `yaml:"deprecated,omitempty" json:"deprecated,omitempty" msgpack:"dp,omitempty"`
	Pos         source.Position  `yaml:"pos,omitempty" json:"pos,omitempty" msgpack:"pos"`
}

// FieldDecl describes a field or enum constant. Value is set only for
// compile-time constants.
type FieldDecl struct {
	Name        string           `yaml:"name" json:"name" msgpack:"n"`
	Modifiers   `yaml:",inline" json:",inline" msgpack:"m"`
	Type        TypeRef          `yaml:"type" json:"type" msgpack:"t"`
	Value       *string          `yaml:"value,omitempty" json:"value,omitempty" msgpack:"v,omitempty"`
	Annotations []AnnotationDecl `yaml:"annotations,omitempty" json:"annotations,omitempty" msgpack:"a,omitempty"`
	Comment     string           `yaml:"comment,omitempty" json:"comment,omitempty" msgpack:"c,omitempty"`
	Deprecated  bool             `yaml:"deprecated,omitempty" json:"deprecated,omitempty" msgpack:"dp,omitempty"`
	Pos         source.Position  `yaml:"pos,omitempty" json:"pos,omitempty" msgpack:"pos"`
}

// ClassDecl describes one declared class. Name is package-relative, so a
// nested class is "Outer.Inner" with Containing set to the outer qualified
// name.
type ClassDecl struct {
	Name               string           `yaml:"name" json:"name" msgpack:"n"`
	Package            string           `yaml:"package,omitempty" json:"package,omitempty" msgpack:"pk,omitempty"`
	Kind               string           `yaml:"kind,omitempty" json:"kind,omitempty" msgpack:"k,omitempty"`
	Modifiers          `yaml:",inline" json:",inline" msgpack:"m"`
	Containing         string           `yaml:"containing,omitempty" json:"containing,omitempty" msgpack:"in,omitempty"`
	Extends            *TypeRef         `yaml:"extends,omitempty" json:"extends,omitempty" msgpack:"e,omitempty"`
	Implements         []TypeRef        `yaml:"implements,omitempty" json:"implements,omitempty" msgpack:"i,omitempty"`
	TypeParams         []TypeRef        `yaml:"typeParams,omitempty" json:"typeParams,omitempty" msgpack:"tp,omitempty"`
	Constructors       []MethodDecl     `yaml:"constructors,omitempty" json:"constructors,omitempty" msgpack:"ct,omitempty"`
	Methods            []MethodDecl     `yaml:"methods,omitempty" json:"methods,omitempty" msgpack:"me,omitempty"`
	Fields             []FieldDecl      `yaml:"fields,omitempty" json:"fields,omitempty" msgpack:"f,omitempty"`
	EnumConstants      []FieldDecl      `yaml:"enumConstants,omitempty" json:"enumConstants,omitempty" msgpack:"ec,omitempty"`
	AnnotationElements []MethodDecl     `yaml:"annotationElements,omitempty" json:"annotationElements,omitempty" msgpack:"ae,omitempty"`
	Annotations        []AnnotationDecl `yaml:"annotations,omitempty" json:"annotations,omitempty" msgpack:"a,omitempty"`
	Comment            string           `yaml:"comment,omitempty" json:"comment,omitempty" msgpack:"c,omitempty"`
	Deprecated         bool             `yaml:"deprecated,omitempty" json:"deprecated,omitempty" msgpack:"dp,omitempty"`
	Pos                source.Position  `yaml:"pos,omitempty" json:"pos,omitempty" msgpack:"pos"`
}

// QualifiedName joins the package and the package-relative name.
func (d *ClassDecl) QualifiedName() string {
	if d.Package == "" {
		return d.Name
	}
	return d.Package + "." + d.Name
}

// PackageDecl carries package-level documentation.
type PackageDecl struct {
	Name    string          `yaml:"name" json:"name" msgpack:"n"`
	Comment string          `yaml:"comment,omitempty" json:"comment,omitempty" msgpack:"c,omitempty"`
	Pos     source.Position `yaml:"pos,omitempty" json:"pos,omitempty" msgpack:"pos"`
}
