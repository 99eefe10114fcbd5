package builder

import (
	"github.com/vijaygarry/doclava/internal/model"
	"github.com/vijaygarry/doclava/internal/symsrc"
)

// typeScope holds the type variable names visible at a declaration.
type typeScope map[string]bool

func (s typeScope) with(params []symsrc.TypeRef) typeScope {
	out := make(typeScope, len(s)+len(params))
	for k := range s {
		out[k] = true
	}
	for _, p := range params {
		out[p.Name] = true
	}
	return out
}

// isTypeVar decides whether a bare name is a type variable. Names declared
// in scope always are; other bare names are type variables unless the
// source declares a class by that name in the unnamed package.
func (b *builder) isTypeVar(ref symsrc.TypeRef, scope typeScope) bool {
	if scope[ref.Name] {
		return true
	}
	if !ref.TypeVar {
		return false
	}
	_, declared := b.src.Lookup(ref.Name)
	return !declared
}

// typeInfo converts a reference into the snapshot's canonical TypeInfo.
func (b *builder) typeInfo(ref symsrc.TypeRef, scope typeScope) *model.TypeInfo {
	t := &model.TypeInfo{Dimension: ref.Dimension}
	switch {
	case ref.IsWildcard():
		t.Wildcard = true
		t.QualifiedName = "?"
		t.SimpleName = "?"
		t.Bounds = b.typeList(ref.Extends, scope)
		t.SuperBounds = b.typeList(ref.Super, scope)
	case ref.IsPrimitive():
		t.Primitive = true
		t.QualifiedName = ref.Name
		t.SimpleName = ref.Name
	case len(ref.Args) == 0 && b.isTypeVar(ref, scope):
		t.TypeVar = true
		t.QualifiedName = ref.Name
		t.SimpleName = ref.Name
		t.Bounds = b.typeList(ref.Extends, scope)
	default:
		t.QualifiedName = ref.Name
		t.SimpleName = model.SimpleNameOf(ref.Name)
		t.Class = b.obtainClass(ref.Name)
		t.Args = b.typeList(ref.Args, scope)
	}
	return b.snap.Types().Intern(t)
}

func (b *builder) typeList(refs []symsrc.TypeRef, scope typeScope) []*model.TypeInfo {
	if len(refs) == 0 {
		return nil
	}
	out := make([]*model.TypeInfo, len(refs))
	for i, r := range refs {
		out[i] = b.typeInfo(r, scope)
	}
	return out
}
