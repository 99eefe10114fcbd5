package apicheck

import (
	"strconv"

	"github.com/vijaygarry/doclava/internal/closure"
	"github.com/vijaygarry/doclava/internal/diag"
	"github.com/vijaygarry/doclava/internal/model"
)

// visible reports whether m exists and belongs to the API surface.
func visible(m *model.Method, pred closure.Predicate) bool {
	return m != nil && pred.MethodVisible(m)
}

func visibleMethod(c *model.Class, key string, pred closure.Predicate) (*model.Method, bool) {
	m, ok := c.Method(key)
	return m, ok && visible(m, pred)
}

func visibleConstructor(c *model.Class, key string, pred closure.Predicate) (*model.Method, bool) {
	m, ok := c.Constructor(key)
	return m, ok && visible(m, pred)
}

func compareMethods(oc, nc *model.Class, r diag.Reporter, pred closure.Predicate) {
	for _, om := range oc.Methods {
		if !visible(om, pred) {
			continue
		}
		key := om.HashableName()
		if nm, ok := visibleMethod(nc, key, pred); ok {
			compareMethod(om, nm, r)
			continue
		}
		// Still satisfied if the new class inherits it.
		if visible(nc.FindMethodInHierarchy(key), pred) || visible(nc.FindInterfaceMethod(key), pred) {
			continue
		}
		r.Report(diag.RemovedMethod, om.Pos, "Removed public method "+om.QualifiedName())
	}
	for _, nm := range nc.Methods {
		if !visible(nm, pred) {
			continue
		}
		key := nm.HashableName()
		if _, ok := visibleMethod(oc, key, pred); ok {
			continue
		}
		// An override of something the old class already inherited adds nothing.
		if visible(oc.FindMethodInHierarchy(key), pred) {
			continue
		}
		r.Report(diag.AddedMethod, nm.Pos, "Added public method "+nm.QualifiedName())
	}
}

func compareConstructors(oc, nc *model.Class, r diag.Reporter, pred closure.Predicate) {
	for _, om := range oc.Constructors {
		if !visible(om, pred) {
			continue
		}
		if nm, ok := visibleConstructor(nc, om.HashableName(), pred); ok {
			compareMethod(om, nm, r)
			continue
		}
		r.Report(diag.RemovedMethod, om.Pos, "Removed public constructor "+om.PrettySignature())
	}
	for _, nm := range nc.Constructors {
		if !visible(nm, pred) {
			continue
		}
		if _, ok := visibleConstructor(oc, nm.HashableName(), pred); !ok {
			r.Report(diag.AddedMethod, nm.Pos, "Added public constructor "+nm.PrettySignature())
		}
	}
}

// finalChangeRelevant filters out 'final' flips that compilers introduce on
// their own: only non-static members of non-final classes count.
func finalChangeRelevant(mods model.Modifiers, owner *model.Class) bool {
	if mods.IsStatic() {
		return false
	}
	return owner == nil || !owner.Mods.IsFinal()
}

func typeString(t *model.TypeInfo) string {
	if t == nil {
		return "void"
	}
	return t.String()
}

// compareMethod checks one matched method or constructor. Findings are
// attributed to the new declaration.
func compareMethod(om, nm *model.Method, r diag.Reporter) {
	name := "Method " + nm.QualifiedName()

	if !om.Constructor && typeString(om.Return) != typeString(nm.Return) {
		r.Report(diag.ChangedType, nm.Pos,
			name+" has changed return type from "+typeString(om.Return)+" to "+typeString(nm.Return))
	}
	if om.Mods.IsAbstract() != nm.Mods.IsAbstract() {
		r.Report(diag.ChangedAbstract, nm.Pos, name+" has changed 'abstract' qualifier")
	}
	if om.Mods.IsNative() != nm.Mods.IsNative() {
		r.Report(diag.ChangedNative, nm.Pos, name+" has changed 'native' qualifier")
	}
	if om.Mods.IsFinal() != nm.Mods.IsFinal() && finalChangeRelevant(om.Mods, om.Class) {
		r.Report(diag.ChangedFinal, nm.Pos, name+" has changed 'final' qualifier")
	}
	if om.Mods.IsStatic() != nm.Mods.IsStatic() {
		r.Report(diag.ChangedStatic, nm.Pos, name+" has changed 'static' qualifier")
	}
	if om.Mods.Scope != nm.Mods.Scope {
		r.Report(diag.ChangedScope, nm.Pos,
			name+" changed scope from "+om.Mods.Scope.String()+" to "+nm.Mods.Scope.String())
	}
	if om.IsDeprecated() != nm.IsDeprecated() {
		r.Report(diag.ChangedDeprecated, nm.Pos, name+" has changed deprecation state")
	}
	if om.Mods.IsSynchronized() != nm.Mods.IsSynchronized() {
		r.Report(diag.ChangedSynchronized, nm.Pos,
			name+" has changed 'synchronized' qualifier from "+
				strconv.FormatBool(om.Mods.IsSynchronized())+" to "+strconv.FormatBool(nm.Mods.IsSynchronized()))
	}

	// Throws changes on a parameterless finalize are not API changes.
	if om.IsFinalizer() {
		return
	}
	for _, ex := range om.Throws {
		if !nm.ThrowsName(ex.QualifiedName) {
			r.Report(diag.ChangedThrows, nm.Pos, name+" no longer throws exception "+ex.QualifiedName)
		}
	}
	for _, ex := range nm.Throws {
		if !om.ThrowsName(ex.QualifiedName) {
			r.Report(diag.ChangedThrows, nm.Pos, name+" added thrown exception "+ex.QualifiedName)
		}
	}
}

func visibleField(c *model.Class, name string, pred closure.Predicate) (*model.Field, bool) {
	f, ok := c.Field(name)
	return f, ok && pred.FieldVisible(f)
}

func compareFields(oc, nc *model.Class, r diag.Reporter, pred closure.Predicate) {
	for _, of := range oc.AllFields() {
		if !pred.FieldVisible(of) {
			continue
		}
		if nf, ok := visibleField(nc, of.Name, pred); ok {
			compareField(of, nf, r)
			continue
		}
		r.Report(diag.RemovedField, of.Pos, "Removed field "+of.QualifiedName())
	}
	for _, nf := range nc.AllFields() {
		if !pred.FieldVisible(nf) {
			continue
		}
		if _, ok := visibleField(oc, nf.Name, pred); !ok {
			r.Report(diag.AddedField, nf.Pos, "Added public field "+nf.QualifiedName())
		}
	}
}

func valueString(f *model.Field) string {
	if !f.HasValue {
		return "null"
	}
	return f.Value
}

func compareField(of, nf *model.Field, r diag.Reporter) {
	name := "Field " + nf.QualifiedName()
	if typeString(of.Type) != typeString(nf.Type) {
		r.Report(diag.ChangedType, nf.Pos,
			name+" has changed type from "+typeString(of.Type)+" to "+typeString(nf.Type))
	}
	if of.HasValue != nf.HasValue || of.Value != nf.Value {
		r.Report(diag.ChangedValue, nf.Pos,
			name+" has changed value from "+valueString(of)+" to "+valueString(nf))
	}
	if of.Mods.IsStatic() != nf.Mods.IsStatic() {
		r.Report(diag.ChangedStatic, nf.Pos, name+" has changed 'static' qualifier")
	}
	if of.Mods.IsFinal() != nf.Mods.IsFinal() && finalChangeRelevant(of.Mods, of.Class) {
		r.Report(diag.ChangedFinal, nf.Pos, name+" has changed 'final' qualifier")
	}
	if of.Mods.IsTransient() != nf.Mods.IsTransient() {
		r.Report(diag.ChangedTransient, nf.Pos, name+" has changed 'transient' qualifier")
	}
	if of.Mods.IsVolatile() != nf.Mods.IsVolatile() {
		r.Report(diag.ChangedVolatile, nf.Pos, name+" has changed 'volatile' qualifier")
	}
	if of.Mods.Scope != nf.Mods.Scope {
		r.Report(diag.ChangedScope, nf.Pos,
			name+" changed scope from "+of.Mods.Scope.String()+" to "+nf.Mods.Scope.String())
	}
	if of.IsDeprecated() != nf.IsDeprecated() {
		r.Report(diag.ChangedDeprecated, nf.Pos, name+" has changed deprecation state")
	}
}
