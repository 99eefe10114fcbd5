package symsrc

import (
	"fmt"
	"slices"
	"strings"
)

// Source is what the snapshot builder consumes: the declared classes in a
// stable order plus a lookup by qualified name.
type Source interface {
	Classes() []*ClassDecl
	Lookup(qname string) (*ClassDecl, bool)
	Packages() []*PackageDecl
}

// Set is an in-memory Source.
type Set struct {
	Name string

	classes  []*ClassDecl
	index    map[string]*ClassDecl
	packages map[string]*PackageDecl
}

// NewSet returns an empty set.
func NewSet(name string) *Set {
	return &Set{
		Name:     name,
		index:    make(map[string]*ClassDecl),
		packages: make(map[string]*PackageDecl),
	}
}

// Add registers a class declaration. Declaring the same qualified name twice
// is an error.
func (s *Set) Add(d *ClassDecl) error {
	if d == nil {
		return nil
	}
	qname := d.QualifiedName()
	if d.Name == "" {
		return fmt.Errorf("class declaration at %s has no name", d.Pos)
	}
	if prev, ok := s.index[qname]; ok {
		return fmt.Errorf("class %s declared twice (%s and %s)", qname, prev.Pos, d.Pos)
	}
	s.index[qname] = d
	s.classes = append(s.classes, d)
	if _, ok := s.packages[d.Package]; !ok {
		s.packages[d.Package] = &PackageDecl{Name: d.Package, Pos: d.Pos}
	}
	return nil
}

// MustAdd is Add for tests and literals.
func (s *Set) MustAdd(decls ...*ClassDecl) *Set {
	for _, d := range decls {
		if err := s.Add(d); err != nil {
			panic(err)
		}
	}
	return s
}

// AddPackage records package documentation. A later declaration for the same
// package replaces the comment of an earlier one.
func (s *Set) AddPackage(p *PackageDecl) {
	if p == nil {
		return
	}
	if prev, ok := s.packages[p.Name]; ok {
		if p.Comment != "" {
			prev.Comment = p.Comment
		}
		if !prev.Pos.IsKnown() {
			prev.Pos = p.Pos
		}
		return
	}
	cp := *p
	s.packages[p.Name] = &cp
}

// Merge adds every declaration of other.
func (s *Set) Merge(other *Set) error {
	for _, p := range other.Packages() {
		s.AddPackage(p)
	}
	for _, d := range other.classes {
		if err := s.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// Classes returns the declarations in insertion order.
func (s *Set) Classes() []*ClassDecl { return s.classes }

// Lookup finds a declaration by qualified name.
func (s *Set) Lookup(qname string) (*ClassDecl, bool) {
	d, ok := s.index[qname]
	return d, ok
}

// Packages returns the package declarations sorted by name.
func (s *Set) Packages() []*PackageDecl {
	out := make([]*PackageDecl, 0, len(s.packages))
	for _, p := range s.packages {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *PackageDecl) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Len returns the number of class declarations.
func (s *Set) Len() int { return len(s.classes) }
