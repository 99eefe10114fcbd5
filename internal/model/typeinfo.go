package model

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

var primitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// IsPrimitiveName reports whether name is a primitive type keyword.
func IsPrimitiveName(name string) bool {
	return primitives[name]
}

// TypeInfo is one type usage site. Instances are memoized per snapshot by
// TypeTable, so structurally equal usages share a pointer.
type TypeInfo struct {
	id            TypeID
	Primitive     bool
	TypeVar       bool
	Wildcard      bool
	QualifiedName string // "?" for wildcards, the variable name for type variables
	SimpleName    string
	Dimension     string // "", "[]", "[][]", or ending in "..." for varargs
	Class         *Class // resolved class, nil for primitives, type variables and wildcards
	Args          []*TypeInfo
	Bounds        []*TypeInfo // extends bounds of type variables and wildcards
	SuperBounds   []*TypeInfo // super bounds of wildcards
}

// ID returns the memo table identity; NoTypeID for uninterned values.
func (t *TypeInfo) ID() TypeID {
	if t == nil {
		return NoTypeID
	}
	return t.id
}

// IsVarArgs reports whether the dimension is spelled with a trailing "...".
func (t *TypeInfo) IsVarArgs() bool {
	return t != nil && strings.HasSuffix(t.Dimension, "...")
}

// ErasedName is the qualified name plus dimension without type arguments.
// Varargs are normalized to a trailing array.
func (t *TypeInfo) ErasedName() string {
	if t == nil {
		return ""
	}
	return t.QualifiedName + normalizeDimension(t.Dimension)
}

// String renders the full usage, including type arguments and dimension.
func (t *TypeInfo) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *TypeInfo) write(b *strings.Builder) {
	if t.Wildcard {
		b.WriteByte('?')
		switch {
		case len(t.Bounds) > 0:
			b.WriteString(" extends ")
			writeJoined(b, t.Bounds, " & ")
		case len(t.SuperBounds) > 0:
			b.WriteString(" super ")
			writeJoined(b, t.SuperBounds, " & ")
		}
		return
	}
	b.WriteString(t.QualifiedName)
	if len(t.Args) > 0 {
		b.WriteByte('<')
		writeJoined(b, t.Args, ", ")
		b.WriteByte('>')
	}
	b.WriteString(t.Dimension)
}

// Declaration renders a type variable with its bounds, e.g. "T extends java.lang.Number".
func (t *TypeInfo) Declaration() string {
	if t == nil {
		return ""
	}
	if !t.TypeVar || len(t.Bounds) == 0 {
		return t.String()
	}
	var b strings.Builder
	b.WriteString(t.QualifiedName)
	b.WriteString(" extends ")
	writeJoined(&b, t.Bounds, " & ")
	return b.String()
}

// ReferencedClasses returns the resolved class of the usage followed by the
// resolved classes of its direct type arguments.
func (t *TypeInfo) ReferencedClasses() []*Class {
	if t == nil {
		return nil
	}
	out := make([]*Class, 0, 1+len(t.Args))
	if t.Class != nil {
		out = append(out, t.Class)
	}
	for _, a := range t.Args {
		if a != nil && a.Class != nil {
			out = append(out, a.Class)
		}
	}
	return out
}

func writeJoined(b *strings.Builder, list []*TypeInfo, sep string) {
	for i, item := range list {
		if i > 0 {
			b.WriteString(sep)
		}
		item.write(b)
	}
}

func normalizeDimension(dim string) string {
	if strings.HasSuffix(dim, "...") {
		return strings.TrimSuffix(dim, "...") + "[]"
	}
	return dim
}

// TypeTable memoizes TypeInfo values by structural key.
type TypeTable struct {
	types []*TypeInfo
	index map[string]TypeID
}

// NewTypeTable returns an empty table with the 0 slot reserved.
func NewTypeTable() *TypeTable {
	return &TypeTable{
		types: make([]*TypeInfo, 1, 64),
		index: make(map[string]TypeID, 64),
	}
}

// Intern returns the canonical node structurally equal to t. Nested
// arguments and bounds are interned first, so the key can refer to their IDs.
// The first writer of a key wins.
func (tt *TypeTable) Intern(t *TypeInfo) *TypeInfo {
	if t == nil {
		return nil
	}
	if t.id.IsValid() && int(t.id) < len(tt.types) && tt.types[t.id] == t {
		return t
	}
	for i := range t.Args {
		t.Args[i] = tt.Intern(t.Args[i])
	}
	for i := range t.Bounds {
		t.Bounds[i] = tt.Intern(t.Bounds[i])
	}
	for i := range t.SuperBounds {
		t.SuperBounds[i] = tt.Intern(t.SuperBounds[i])
	}
	key := typeKey(t)
	if id, ok := tt.index[key]; ok {
		return tt.types[id]
	}
	n, err := safecast.Conv[uint32](len(tt.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	t.id = TypeID(n)
	tt.types = append(tt.types, t)
	tt.index[key] = t.id
	return t
}

// Lookup returns the node for id.
func (tt *TypeTable) Lookup(id TypeID) (*TypeInfo, bool) {
	if !id.IsValid() || int(id) >= len(tt.types) {
		return nil, false
	}
	return tt.types[id], true
}

// Len returns the number of interned types.
func (tt *TypeTable) Len() int {
	return len(tt.types) - 1
}

// typeKey is the canonical structural descriptor of t. Children are
// referenced by their interned IDs.
func typeKey(t *TypeInfo) string {
	var b strings.Builder
	switch {
	case t.Primitive:
		b.WriteByte('P')
	case t.TypeVar:
		b.WriteByte('T')
	case t.Wildcard:
		b.WriteByte('W')
	default:
		b.WriteByte('C')
	}
	b.WriteByte('|')
	b.WriteString(t.QualifiedName)
	b.WriteByte('|')
	b.WriteString(t.Dimension)
	writeIDs(&b, 'A', t.Args)
	writeIDs(&b, 'E', t.Bounds)
	writeIDs(&b, 'S', t.SuperBounds)
	return b.String()
}

func writeIDs(b *strings.Builder, tag byte, list []*TypeInfo) {
	b.WriteByte('|')
	b.WriteByte(tag)
	for i, item := range list {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(item.ID()), 10))
	}
}
