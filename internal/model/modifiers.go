package model

import "strings"

// Scope is the declared access level of a class or member.
type Scope uint8

const (
	ScopePackagePrivate Scope = iota
	ScopePublic
	ScopeProtected
	ScopePrivate
)

// String renders the scope the way the API snapshot format spells it;
// package-private is the empty string.
func (s Scope) String() string {
	switch s {
	case ScopePublic:
		return "public"
	case ScopeProtected:
		return "protected"
	case ScopePrivate:
		return "private"
	default:
		return ""
	}
}

// ParseScope is the inverse of String. Unknown spellings map to package-private.
func ParseScope(s string) Scope {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return ScopePublic
	case "protected":
		return ScopeProtected
	case "private":
		return ScopePrivate
	default:
		return ScopePackagePrivate
	}
}

// Flags encode boolean modifiers for quick checks.
type Flags uint16

const (
	FlagStatic Flags = 1 << iota
	FlagFinal
	FlagAbstract
	FlagNative
	FlagSynchronized
	FlagTransient
	FlagVolatile
)

// Strings lists the set flags in declaration order.
func (f Flags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, item := range []struct {
		flag  Flags
		label string
	}{
		{FlagAbstract, "abstract"},
		{FlagStatic, "static"},
		{FlagFinal, "final"},
		{FlagTransient, "transient"},
		{FlagVolatile, "volatile"},
		{FlagSynchronized, "synchronized"},
		{FlagNative, "native"},
	} {
		if f&item.flag != 0 {
			labels = append(labels, item.label)
		}
	}
	return labels
}

// Modifiers combine access level and flags.
type Modifiers struct {
	Scope Scope
	Flags Flags
}

func (m Modifiers) Has(f Flags) bool { return m.Flags&f != 0 }

func (m Modifiers) IsPublic() bool         { return m.Scope == ScopePublic }
func (m Modifiers) IsProtected() bool      { return m.Scope == ScopeProtected }
func (m Modifiers) IsPrivate() bool        { return m.Scope == ScopePrivate }
func (m Modifiers) IsPackagePrivate() bool { return m.Scope == ScopePackagePrivate }
func (m Modifiers) IsStatic() bool         { return m.Has(FlagStatic) }
func (m Modifiers) IsFinal() bool          { return m.Has(FlagFinal) }
func (m Modifiers) IsAbstract() bool       { return m.Has(FlagAbstract) }
func (m Modifiers) IsNative() bool         { return m.Has(FlagNative) }
func (m Modifiers) IsSynchronized() bool   { return m.Has(FlagSynchronized) }
func (m Modifiers) IsTransient() bool      { return m.Has(FlagTransient) }
func (m Modifiers) IsVolatile() bool       { return m.Has(FlagVolatile) }

// CheckLevel reports public-or-protected access.
func (m Modifiers) CheckLevel() bool {
	return m.Scope == ScopePublic || m.Scope == ScopeProtected
}

// String renders the modifiers in source order, e.g. "public static final".
func (m Modifiers) String() string {
	parts := make([]string, 0, 4)
	if s := m.Scope.String(); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, m.Flags.Strings()...)
	return strings.Join(parts, " ")
}
