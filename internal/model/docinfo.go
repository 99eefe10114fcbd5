package model

import (
	"regexp"
	"strings"
)

// DeprecatedAnnotation is the qualified name of the deprecation annotation.
const DeprecatedAnnotation = "java.lang.Deprecated"

var (
	hideTag       = regexp.MustCompile(`(^|[\s*{])@hide\b`)
	deprecatedTag = regexp.MustCompile(`(^|[\s*])@deprecated\b`)
	sinceTag      = regexp.MustCompile(`(^|[\s*])@since\s+(\S+)`)
)

// Doc is the documentation-derived state of a declaration.
type Doc struct {
	Comment    string
	Hidden     bool
	Deprecated bool
	Since      string
}

// ParseDoc extracts the tags the engines care about from a raw comment.
func ParseDoc(comment string) Doc {
	d := Doc{Comment: comment}
	if comment == "" {
		return d
	}
	d.Hidden = hideTag.MatchString(comment)
	d.Deprecated = deprecatedTag.MatchString(comment)
	if m := sinceTag.FindStringSubmatch(comment); m != nil {
		d.Since = strings.TrimSpace(m[2])
	}
	return d
}

// Annotation is one applied annotation instance.
type Annotation struct {
	Name   string // qualified annotation type name
	Type   *Class // resolved annotation class, nil when unresolved
	Values map[string]string
}

func hasAnnotation(list []*Annotation, name string) bool {
	for _, a := range list {
		if a != nil && a.Name == name {
			return true
		}
	}
	return false
}
