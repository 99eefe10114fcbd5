package model

import (
	"slices"
	"strings"

	"github.com/vijaygarry/doclava/internal/source"
)

// DefaultPackage names the unnamed package in messages.
const DefaultPackage = "default package"

// Package groups the classes declared under one dotted name.
type Package struct {
	Name   string
	Hidden bool
	Doc    Doc
	Pos    source.Position

	classes map[string]*Class // keyed by package-relative name
	sorted  []*Class
}

func newPackage(name string) *Package {
	return &Package{Name: name, classes: make(map[string]*Class)}
}

// IsDefault reports the unnamed package.
func (p *Package) IsDefault() bool { return p.Name == "" }

// DisplayName returns the name used in messages.
func (p *Package) DisplayName() string {
	if p.Name == "" {
		return DefaultPackage
	}
	return p.Name
}

// AddClass registers c under its package-relative name. The first class
// registered for a name wins.
func (p *Package) AddClass(c *Class) bool {
	if _, ok := p.classes[c.Name]; ok {
		return false
	}
	p.classes[c.Name] = c
	c.Package = p
	p.sorted = nil
	return true
}

// Class looks a class up by package-relative name.
func (p *Package) Class(name string) (*Class, bool) {
	c, ok := p.classes[name]
	return c, ok
}

// Classes returns the package's classes sorted by package-relative name.
func (p *Package) Classes() []*Class {
	if p.sorted != nil {
		return p.sorted
	}
	out := make([]*Class, 0, len(p.classes))
	for _, c := range p.classes {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Class) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Len returns the number of classes.
func (p *Package) Len() int { return len(p.classes) }

func (p *Package) freeze() {
	p.sorted = nil
	p.sorted = p.Classes()
}
