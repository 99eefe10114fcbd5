// Package apixml reads and writes API snapshot files.
//
// A snapshot file lists the public surface of a library version:
//
//	<api>
//	<package name="p">
//	<class name="Outer.Inner" extends="p.Base" abstract="false" static="true"
//	  final="false" deprecated="not deprecated" visibility="public">
//	<implements name="java.lang.Runnable"></implements>
//	<constructor name="Inner" type="p.Outer.Inner" ...>
//	<method name="run" return="void" ...>
//	<parameter name="x" type="int"></parameter>
//	<exception name="IOException" type="java.io.IOException"></exception>
//	</method>
//	<field name="MAX" type="int" value="10" ...></field>
//	</class>
//	</package>
//	</api>
//
// Read turns a file into builder declarations; Write serializes the emitted
// part of a closure.
package apixml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vijaygarry/doclava/internal/source"
	"github.com/vijaygarry/doclava/internal/symsrc"
)

// ParseError reports a malformed snapshot file.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed API file: %v", source.At(e.File, e.Line), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err carries a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// ReadFile parses the snapshot file at path.
func ReadFile(path string) (*symsrc.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open API file: %w", err)
	}
	defer f.Close()
	return Read(path, f)
}

type reader struct {
	file   string
	dec    *xml.Decoder
	set    *symsrc.Set
	stack  []string
	line   int
	pkg    string
	class  *symsrc.ClassDecl
	method *symsrc.MethodDecl
	ctor   bool
	sawAPI bool
}

// Read parses a snapshot held in r. name labels the set and every position.
func Read(name string, r io.Reader) (*symsrc.Set, error) {
	dec := xml.NewDecoder(r)
	// Older writers emitted "&pos;" for a single quote.
	dec.Entity = map[string]string{"pos": "'"}
	rd := &reader{file: name, dec: dec, set: symsrc.NewSet(name)}
	if err := rd.run(); err != nil {
		return nil, err
	}
	return rd.set, nil
}

func (rd *reader) fail(err error) error {
	return &ParseError{File: rd.file, Line: rd.line, Err: err}
}

func (rd *reader) failf(format string, args ...any) error {
	return rd.fail(fmt.Errorf(format, args...))
}

func (rd *reader) run() error {
	for {
		rd.line, _ = rd.dec.InputPos()
		tok, err := rd.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				rd.line = se.Line
			}
			return rd.fail(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := rd.start(t); err != nil {
				return err
			}
			rd.stack = append(rd.stack, t.Name.Local)
		case xml.EndElement:
			rd.stack = rd.stack[:len(rd.stack)-1]
			if err := rd.end(t.Name.Local); err != nil {
				return err
			}
		}
	}
	if !rd.sawAPI {
		return rd.failf("missing <api> root element")
	}
	return nil
}

func (rd *reader) parent() string {
	if len(rd.stack) == 0 {
		return ""
	}
	return rd.stack[len(rd.stack)-1]
}

func (rd *reader) expectParent(elem string, parents ...string) error {
	p := rd.parent()
	for _, want := range parents {
		if p == want {
			return nil
		}
	}
	if p == "" {
		return rd.failf("<%s> at top level", elem)
	}
	return rd.failf("<%s> inside <%s>", elem, p)
}

func (rd *reader) pos() source.Position { return source.At(rd.file, rd.line) }

func (rd *reader) start(t xml.StartElement) error {
	attrs := make(map[string]string, len(t.Attr))
	for _, a := range t.Attr {
		attrs[a.Name.Local] = a.Value
	}
	elem := t.Name.Local
	switch elem {
	case "api":
		if err := rd.expectParent(elem, ""); err != nil {
			return err
		}
		rd.sawAPI = true
	case "package":
		if err := rd.expectParent(elem, "api"); err != nil {
			return err
		}
		rd.pkg = attrs["name"]
		rd.set.AddPackage(&symsrc.PackageDecl{Name: rd.pkg, Pos: rd.pos()})
	case "class", "interface":
		if err := rd.expectParent(elem, "package"); err != nil {
			return err
		}
		return rd.startClass(elem, attrs)
	case "implements":
		if err := rd.expectParent(elem, "class", "interface"); err != nil {
			return err
		}
		ref, err := rd.typeRef(attrs["name"])
		if err != nil {
			return err
		}
		rd.class.Implements = append(rd.class.Implements, ref)
	case "constructor", "method":
		if err := rd.expectParent(elem, "class", "interface"); err != nil {
			return err
		}
		return rd.startMethod(elem, attrs)
	case "parameter":
		if err := rd.expectParent(elem, "constructor", "method"); err != nil {
			return err
		}
		ref, err := rd.typeRef(attrs["type"])
		if err != nil {
			return err
		}
		rd.method.Params = append(rd.method.Params, symsrc.ParamDecl{Name: attrs["name"], Type: ref})
	case "exception":
		if err := rd.expectParent(elem, "constructor", "method"); err != nil {
			return err
		}
		name := attrs["type"]
		if name == "" {
			name = attrs["name"]
		}
		rd.method.Throws = append(rd.method.Throws, name)
	case "field":
		if err := rd.expectParent(elem, "class", "interface"); err != nil {
			return err
		}
		return rd.field(attrs)
	default:
		return rd.failf("unknown element <%s>", elem)
	}
	return nil
}

func (rd *reader) end(elem string) error {
	switch elem {
	case "class", "interface":
		c := rd.class
		rd.class = nil
		symsrc.NormalizeClass(c, rd.file)
		if err := rd.set.Add(c); err != nil {
			return &ParseError{File: rd.file, Line: c.Pos.Line, Err: err}
		}
	case "constructor", "method":
		m := rd.method
		rd.method = nil
		if rd.ctor {
			rd.class.Constructors = append(rd.class.Constructors, *m)
		} else {
			rd.class.Methods = append(rd.class.Methods, *m)
		}
	case "package":
		rd.pkg = ""
	}
	return nil
}

func (rd *reader) startClass(elem string, attrs map[string]string) error {
	name := attrs["name"]
	if name == "" {
		return rd.failf("<%s> without a name", elem)
	}
	mods, err := rd.modifiers(attrs, "abstract", "static", "final")
	if err != nil {
		return err
	}
	deprecated, err := rd.deprecated(attrs)
	if err != nil {
		return err
	}
	c := &symsrc.ClassDecl{
		Name:       name,
		Package:    rd.pkg,
		Kind:       "class",
		Modifiers:  mods,
		Deprecated: deprecated,
		Pos:        rd.pos(),
	}
	if elem == "interface" {
		c.Kind = "interface"
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		c.Containing = qualify(rd.pkg, name[:i])
	}
	if ext, ok := attrs["extends"]; ok && ext != "" && elem == "class" {
		ref, err := rd.typeRef(ext)
		if err != nil {
			return err
		}
		c.Extends = &ref
	}
	rd.class = c
	return nil
}

func (rd *reader) startMethod(elem string, attrs map[string]string) error {
	mods, err := rd.modifiers(attrs, "abstract", "native", "synchronized", "static", "final")
	if err != nil {
		return err
	}
	deprecated, err := rd.deprecated(attrs)
	if err != nil {
		return err
	}
	m := &symsrc.MethodDecl{
		Name:       attrs["name"],
		Modifiers:  mods,
		Deprecated: deprecated,
		Pos:        rd.pos(),
	}
	rd.ctor = elem == "constructor"
	if !rd.ctor {
		ret := attrs["return"]
		if ret == "" {
			ret = "void"
		}
		ref, err := rd.typeRef(ret)
		if err != nil {
			return err
		}
		m.Return = &ref
	}
	rd.method = m
	return nil
}

func (rd *reader) field(attrs map[string]string) error {
	mods, err := rd.modifiers(attrs, "transient", "volatile", "static", "final")
	if err != nil {
		return err
	}
	deprecated, err := rd.deprecated(attrs)
	if err != nil {
		return err
	}
	ref, err := rd.typeRef(attrs["type"])
	if err != nil {
		return err
	}
	f := symsrc.FieldDecl{
		Name:       attrs["name"],
		Modifiers:  mods,
		Type:       ref,
		Deprecated: deprecated,
		Pos:        rd.pos(),
	}
	// "null" is what writers put for a field with no constant value.
	if v, ok := attrs["value"]; ok && v != "null" {
		f.Value = &v
	}
	rd.class.Fields = append(rd.class.Fields, f)
	return nil
}

func (rd *reader) typeRef(s string) (symsrc.TypeRef, error) {
	if s == "" {
		return symsrc.TypeRef{}, rd.failf("missing type")
	}
	ref, err := symsrc.ParseTypeRef(s)
	if err != nil {
		return symsrc.TypeRef{}, rd.fail(err)
	}
	return ref, nil
}

func (rd *reader) modifiers(attrs map[string]string, flags ...string) (symsrc.Modifiers, error) {
	m := symsrc.Modifiers{Visibility: attrs["visibility"]}
	for _, name := range flags {
		raw, ok := attrs[name]
		if !ok {
			continue
		}
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return m, rd.failf("attribute %s=%q is not a boolean", name, raw)
		}
		switch name {
		case "abstract":
			m.Abstract = on
		case "static":
			m.Static = on
		case "final":
			m.Final = on
		case "native":
			m.Native = on
		case "synchronized":
			m.Synchronized = on
		case "transient":
			m.Transient = on
		case "volatile":
			m.Volatile = on
		}
	}
	return m, nil
}

func (rd *reader) deprecated(attrs map[string]string) (bool, error) {
	switch v := attrs["deprecated"]; v {
	case "deprecated":
		return true, nil
	case "", "not deprecated":
		return false, nil
	default:
		return false, rd.failf("attribute deprecated=%q", v)
	}
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
