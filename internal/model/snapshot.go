package model

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"
)

// Snapshot is the complete symbol model of one API version. Classes live in
// an arena; relations between them are plain pointers.
type Snapshot struct {
	Name string

	classes  []*Class // slot 0 reserved
	index    map[string]ClassID
	packages map[string]*Package
	types    *TypeTable
	frozen   bool
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot(name string) *Snapshot {
	return &Snapshot{
		Name:     name,
		classes:  make([]*Class, 1, 64),
		index:    make(map[string]ClassID, 64),
		packages: make(map[string]*Package),
		types:    NewTypeTable(),
	}
}

// NewClass allocates a class with the given qualified name and registers it
// in the name index. If the name is already taken, the existing class is
// returned with created=false.
func (s *Snapshot) NewClass(qname string, local bool) (c *Class, created bool) {
	if id, ok := s.index[qname]; ok {
		return s.classes[id], false
	}
	if s.frozen {
		panic(fmt.Sprintf("model: NewClass(%q) on frozen snapshot", qname))
	}
	n, err := safecast.Conv[uint32](len(s.classes))
	if err != nil {
		panic(fmt.Errorf("len(classes) overflow: %w", err))
	}
	c = &Class{
		id:            ClassID(n),
		local:         local,
		QualifiedName: qname,
	}
	s.classes = append(s.classes, c)
	s.index[qname] = c.id
	return c, true
}

// Lookup finds a class by qualified name.
func (s *Snapshot) Lookup(qname string) (*Class, bool) {
	id, ok := s.index[qname]
	if !ok {
		return nil, false
	}
	return s.classes[id], true
}

// Class returns the class with the given arena ID.
func (s *Snapshot) Class(id ClassID) (*Class, bool) {
	if !id.IsValid() || int(id) >= len(s.classes) {
		return nil, false
	}
	return s.classes[id], true
}

// Len returns the number of classes, local and not.
func (s *Snapshot) Len() int { return len(s.classes) - 1 }

// Classes returns every class in allocation order.
func (s *Snapshot) Classes() []*Class {
	return s.classes[1:]
}

// LocalClasses returns the declared classes sorted by qualified name.
func (s *Snapshot) LocalClasses() []*Class {
	out := make([]*Class, 0, len(s.classes))
	for _, c := range s.classes[1:] {
		if c.local {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *Class) int { return strings.Compare(a.QualifiedName, b.QualifiedName) })
	return out
}

// EnsurePackage returns the package named name, creating it when missing.
func (s *Snapshot) EnsurePackage(name string) *Package {
	if p, ok := s.packages[name]; ok {
		return p
	}
	p := newPackage(name)
	s.packages[name] = p
	return p
}

// Package finds a package by name.
func (s *Snapshot) Package(name string) (*Package, bool) {
	p, ok := s.packages[name]
	return p, ok
}

// Packages returns the packages that hold at least one local class, sorted
// by name.
func (s *Snapshot) Packages() []*Package {
	out := make([]*Package, 0, len(s.packages))
	for _, p := range s.packages {
		if p.hasLocal() {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *Package) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (p *Package) hasLocal() bool {
	for _, c := range p.classes {
		if c.local {
			return true
		}
	}
	return false
}

// Types exposes the snapshot's memoized type table.
func (s *Snapshot) Types() *TypeTable { return s.types }

// Frozen reports whether Freeze has run.
func (s *Snapshot) Frozen() bool { return s.frozen }

// Freeze sorts inner classes, builds member indexes and resolves overridden
// methods. The snapshot must not be mutated afterwards; concurrent readers
// are then safe.
func (s *Snapshot) Freeze() {
	if s.frozen {
		return
	}
	for _, c := range s.classes[1:] {
		slices.SortFunc(c.Inner, func(a, b *Class) int { return strings.Compare(a.Name, b.Name) })
		c.buildIndexes()
	}
	for _, c := range s.classes[1:] {
		for _, m := range c.Methods {
			if m.Mods.IsStatic() || m.Mods.IsPrivate() {
				continue
			}
			m.Overridden = c.FindAncestorMethod(m.HashableName())
		}
	}
	for _, p := range s.packages {
		p.freeze()
	}
	s.frozen = true
}
