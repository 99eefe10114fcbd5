package diag

import (
	"fmt"
	"slices"
	"strconv"

	"fortio.org/safecast"
)

// Code is the stable numeric identity of a diagnostic kind.
// Numbers are part of the tool's public contract: configs and
// command lines refer to them.
type Code uint16

const (
	UnknownCode Code = 0

	// Documentation and reachability
	UnresolvedLink        Code = 1
	BadIncludeTag         Code = 2
	UnknownTag            Code = 3
	UnknownParamTagName   Code = 4
	UndocumentedParameter Code = 5
	BadAttrTag            Code = 6
	BadInheritDoc         Code = 7
	HiddenLink            Code = 8
	HiddenConstructor     Code = 9
	UnavailableSymbol     Code = 10
	HiddenSuperclass      Code = 11
	Deprecated            Code = 12
	DeprecationMismatch   Code = 13
	MissingComment        Code = 14
	IOError               Code = 15
	NoSinceData           Code = 16
	NoFederationData      Code = 17
	ParseError            Code = 18

	// API compatibility
	AddedPackage        Code = 19
	AddedClass          Code = 20
	AddedMethod         Code = 21
	AddedField          Code = 22
	AddedInterface      Code = 23
	RemovedPackage      Code = 24
	RemovedClass        Code = 25
	RemovedMethod       Code = 26
	RemovedField        Code = 27
	RemovedInterface    Code = 28
	ChangedStatic       Code = 29
	ChangedFinal        Code = 30
	ChangedTransient    Code = 31
	ChangedVolatile     Code = 32
	ChangedType         Code = 33
	ChangedValue        Code = 34
	ChangedSuperclass   Code = 35
	ChangedScope        Code = 36
	ChangedAbstract     Code = 37
	ChangedThrows       Code = 38
	ChangedNative       Code = 39
	ChangedClass        Code = 40
	ChangedDeprecated   Code = 41
	ChangedSynchronized Code = 42
)

type codeInfo struct {
	name  string
	level Severity
	title string
}

var codeTable = map[Code]codeInfo{
	UnknownCode:           {"UNKNOWN", SevError, "unknown diagnostic"},
	UnresolvedLink:        {"UNRESOLVED_LINK", SevWarning, "link target cannot be resolved"},
	BadIncludeTag:         {"BAD_INCLUDE_TAG", SevWarning, "malformed include tag"},
	UnknownTag:            {"UNKNOWN_TAG", SevWarning, "unknown doc tag"},
	UnknownParamTagName:   {"UNKNOWN_PARAM_TAG_NAME", SevWarning, "@param names an unknown parameter"},
	UndocumentedParameter: {"UNDOCUMENTED_PARAMETER", SevHidden, "parameter has no documentation"},
	BadAttrTag:            {"BAD_ATTR_TAG", SevError, "malformed attribute tag"},
	BadInheritDoc:         {"BAD_INHERITDOC", SevHidden, "inheritDoc without an inherited comment"},
	HiddenLink:            {"HIDDEN_LINK", SevWarning, "link to a hidden symbol"},
	HiddenConstructor:     {"HIDDEN_CONSTRUCTOR", SevWarning, "visible class with only hidden constructors"},
	UnavailableSymbol:     {"UNAVAILABLE_SYMBOL", SevError, "visible member uses a hidden type"},
	HiddenSuperclass:      {"HIDDEN_SUPERCLASS", SevWarning, "visible class extends a hidden class"},
	Deprecated:            {"DEPRECATED", SevHidden, "visible symbol is deprecated"},
	DeprecationMismatch:   {"DEPRECATION_MISMATCH", SevWarning, "annotation and comment deprecation disagree"},
	MissingComment:        {"MISSING_COMMENT", SevWarning, "symbol has no documentation"},
	IOError:               {"IO_ERROR", SevHidden, "auxiliary output could not be written"},
	NoSinceData:           {"NO_SINCE_DATA", SevHidden, "no since-version metadata"},
	NoFederationData:      {"NO_FEDERATION_DATA", SevWarning, "federated site has no data"},
	ParseError:            {"PARSE_ERROR", SevError, "input could not be parsed"},
	AddedPackage:          {"ADDED_PACKAGE", SevWarning, "package added"},
	AddedClass:            {"ADDED_CLASS", SevWarning, "class added"},
	AddedMethod:           {"ADDED_METHOD", SevWarning, "method or constructor added"},
	AddedField:            {"ADDED_FIELD", SevWarning, "field added"},
	AddedInterface:        {"ADDED_INTERFACE", SevWarning, "interface implementation added"},
	RemovedPackage:        {"REMOVED_PACKAGE", SevWarning, "package removed"},
	RemovedClass:          {"REMOVED_CLASS", SevWarning, "class removed"},
	RemovedMethod:         {"REMOVED_METHOD", SevWarning, "method or constructor removed"},
	RemovedField:          {"REMOVED_FIELD", SevWarning, "field removed"},
	RemovedInterface:      {"REMOVED_INTERFACE", SevWarning, "interface implementation removed"},
	ChangedStatic:         {"CHANGED_STATIC", SevWarning, "static qualifier changed"},
	ChangedFinal:          {"CHANGED_FINAL", SevWarning, "final qualifier changed"},
	ChangedTransient:      {"CHANGED_TRANSIENT", SevWarning, "transient qualifier changed"},
	ChangedVolatile:       {"CHANGED_VOLATILE", SevWarning, "volatile qualifier changed"},
	ChangedType:           {"CHANGED_TYPE", SevWarning, "return or field type changed"},
	ChangedValue:          {"CHANGED_VALUE", SevWarning, "constant value changed"},
	ChangedSuperclass:     {"CHANGED_SUPERCLASS", SevWarning, "superclass changed"},
	ChangedScope:          {"CHANGED_SCOPE", SevWarning, "visibility changed"},
	ChangedAbstract:       {"CHANGED_ABSTRACT", SevWarning, "abstract qualifier changed"},
	ChangedThrows:         {"CHANGED_THROWS", SevWarning, "thrown exceptions changed"},
	ChangedNative:         {"CHANGED_NATIVE", SevHidden, "native qualifier changed"},
	ChangedClass:          {"CHANGED_CLASS", SevWarning, "class/interface declaration changed"},
	ChangedDeprecated:     {"CHANGED_DEPRECATED", SevWarning, "deprecation state changed"},
	ChangedSynchronized:   {"CHANGED_SYNCHRONIZED", SevError, "synchronized qualifier changed"},
}

// ID returns the compact identifier, e.g. API0033.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1 && ic < int(AddedPackage):
		return fmt.Sprintf("DOC%04d", ic)
	case ic >= int(AddedPackage) && ic <= int(ChangedSynchronized):
		return fmt.Sprintf("API%04d", ic)
	}
	return "E0000"
}

// Name returns the symbolic name, e.g. CHANGED_TYPE.
func (c Code) Name() string {
	info, ok := codeTable[c]
	if !ok {
		return codeTable[UnknownCode].name
	}
	return info.name
}

// Title returns a short description of the code.
func (c Code) Title() string {
	info, ok := codeTable[c]
	if !ok {
		return codeTable[UnknownCode].title
	}
	return info.title
}

// DefaultLevel returns the severity a code resolves to without overrides.
func (c Code) DefaultLevel() Severity {
	info, ok := codeTable[c]
	if !ok {
		return SevError
	}
	return info.level
}

// Known reports whether c is a defined code.
func (c Code) Known() bool {
	_, ok := codeTable[c]
	return ok && c != UnknownCode
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Name())
}

// AllCodes lists every defined code in ascending order.
func AllCodes() []Code {
	out := make([]Code, 0, len(codeTable))
	for c := range codeTable {
		if c != UnknownCode {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// ParseCode resolves a number or symbolic name to a Code.
func ParseCode(s string) (Code, error) {
	if n, err := strconv.Atoi(s); err == nil {
		v, convErr := safecast.Conv[uint16](n)
		c := Code(v)
		if convErr != nil || !c.Known() {
			return UnknownCode, fmt.Errorf("unknown diagnostic code %d", n)
		}
		return c, nil
	}
	for c, info := range codeTable {
		if c != UnknownCode && info.name == s {
			return c, nil
		}
	}
	return UnknownCode, fmt.Errorf("unknown diagnostic code %q", s)
}
