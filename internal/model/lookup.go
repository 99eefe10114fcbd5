package model

// Hierarchy walks tolerate malformed inputs where the superclass or
// interface graph contains a cycle; every walk keeps a visited set.

// SuperclassChain returns the superclasses of c, nearest first.
func (c *Class) SuperclassChain() []*Class {
	var out []*Class
	seen := map[*Class]bool{c: true}
	for cur := c.Superclass; cur != nil && !seen[cur]; cur = cur.Superclass {
		seen[cur] = true
		out = append(out, cur)
	}
	return out
}

// FindMethodInHierarchy searches c and then its superclass chain for a
// method with the given hashable name.
func (c *Class) FindMethodInHierarchy(hashable string) *Method {
	if m, ok := c.Method(hashable); ok {
		return m
	}
	for _, sc := range c.SuperclassChain() {
		if m, ok := sc.Method(hashable); ok {
			return m
		}
	}
	return nil
}

// FindInterfaceMethod searches the interfaces implemented by c or by any of
// its superclasses, including superinterfaces.
func (c *Class) FindInterfaceMethod(hashable string) *Method {
	seen := make(map[*Class]bool)
	chain := append([]*Class{c}, c.SuperclassChain()...)
	for _, cls := range chain {
		if m := findInInterfaces(cls.Interfaces, hashable, seen); m != nil {
			return m
		}
	}
	return nil
}

func findInInterfaces(list []*Class, hashable string, seen map[*Class]bool) *Method {
	for _, iface := range list {
		if iface == nil || seen[iface] {
			continue
		}
		seen[iface] = true
		if m, ok := iface.Method(hashable); ok {
			return m
		}
		if m := findInInterfaces(iface.Interfaces, hashable, seen); m != nil {
			return m
		}
	}
	return nil
}

// FindAncestorMethod returns the nearest method with the given hashable
// name declared by a proper ancestor of c: the superclass chain first, then
// interfaces.
func (c *Class) FindAncestorMethod(hashable string) *Method {
	for _, sc := range c.SuperclassChain() {
		if m, ok := sc.Method(hashable); ok {
			return m
		}
	}
	if m := c.FindInterfaceMethod(hashable); m != nil && m.Class != c {
		return m
	}
	return nil
}

// ImplementsInterface reports whether c is qname, or reaches qname through
// its interfaces or superclasses.
func (c *Class) ImplementsInterface(qname string) bool {
	return implementsInterface(c, qname, make(map[*Class]bool))
}

func implementsInterface(c *Class, qname string, seen map[*Class]bool) bool {
	if c == nil || seen[c] {
		return false
	}
	seen[c] = true
	if c.QualifiedName == qname {
		return true
	}
	for _, iface := range c.Interfaces {
		if implementsInterface(iface, qname, seen) {
			return true
		}
	}
	return implementsInterface(c.Superclass, qname, seen)
}

// IsSubclassOf reports whether qname appears in the superclass chain of c.
func (c *Class) IsSubclassOf(qname string) bool {
	for _, sc := range c.SuperclassChain() {
		if sc.QualifiedName == qname {
			return true
		}
	}
	return false
}
