package model

// ClassID identifies a class inside a Snapshot's arena.
type ClassID uint32

// NoClassID marks the absence of a class reference.
const NoClassID ClassID = 0

// IsValid reports whether the ID refers to an allocated class.
func (id ClassID) IsValid() bool { return id != NoClassID }

// TypeID identifies a memoized TypeInfo inside a Snapshot's type table.
type TypeID uint32

// NoTypeID marks the absence of a type reference.
const NoTypeID TypeID = 0

// IsValid reports whether the ID refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }
