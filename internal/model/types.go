package model

import (
	"slices"
	"strings"
)

//go:generate go tool stringer -type=ValueKind -output=valuekind_string.go -trimprefix=Kind

// ValueKind tags the variants of ValueType.
type ValueKind int

const (
	_ ValueKind = iota // zero value is invalid

	KindInt32
	KindInt64
	KindFloat64
	KindBool
	KindString
	KindTimestamp // ISO-8601 text in the input
	KindRawValue  // opaque JSON value, passed through unparsed
	KindArray
	KindStruct
	KindMap // only legal as a sheet root
)

// IsScalar reports whether the kind carries no element or struct type.
func (k ValueKind) IsScalar() bool {
	switch k {
	case KindInt32, KindInt64, KindFloat64, KindBool, KindString, KindTimestamp, KindRawValue:
		return true
	default:
		return false
	}
}

// IsKeyable reports whether values of the kind convert to and from a string
// key without loss. Map keys and row identities must be keyable.
func (k ValueKind) IsKeyable() bool {
	return k == KindInt32 || k == KindInt64 || k == KindString
}

// ScalarKinds lists every scalar kind in declaration order.
func ScalarKinds() []ValueKind {
	return []ValueKind{
		KindInt32, KindInt64, KindFloat64, KindBool, KindString, KindTimestamp, KindRawValue,
	}
}

// ValueType is a tagged variant over the supported value shapes.
type ValueType struct {
	Kind   ValueKind
	Elem   *ValueType // Array and Map element type
	Struct *Struct    // Struct payload
}

// Scalar returns a scalar value type.
func Scalar(kind ValueKind) *ValueType {
	return &ValueType{Kind: kind}
}

// ArrayOf returns an array value type of elem.
func ArrayOf(elem *ValueType) *ValueType {
	return &ValueType{Kind: KindArray, Elem: elem}
}

// StructType returns a struct value type referencing s.
func StructType(s *Struct) *ValueType {
	return &ValueType{Kind: KindStruct, Struct: s}
}

// Leaf strips every array layer and returns the element type.
func (t *ValueType) Leaf() *ValueType {
	for t.Kind == KindArray || t.Kind == KindMap {
		t = t.Elem
	}

	return t
}

// Depth returns the number of array layers around the leaf type.
func (t *ValueType) Depth() int {
	n := 0
	for t.Kind == KindArray {
		n++
		t = t.Elem
	}

	return n
}

// String returns the schema spelling of the type, e.g. "[]Int32" or "Reward".
func (t *ValueType) String() string {
	switch t.Kind {
	case KindArray:
		return "[]" + t.Elem.String()
	case KindMap:
		return "map[String]" + t.Elem.String()
	case KindStruct:
		return t.Struct.Name
	default:
		return t.Kind.String()
	}
}

// Field is a named, typed member of a Struct.
type Field struct {
	Name     string
	Type     *ValueType
	Optional bool // absence in the input is tolerated under strict decoding
}

// Struct is a record type: a sheet row, a named struct or an anonymous
// nested struct.
type Struct struct {
	Name   string
	Fields []*Field
	// Named structs get their own output file; anonymous ones are declared
	// in the file of the struct that owns them.
	Named bool
}

// Field returns the field with the given name, or nil.
func (s *Struct) Field(name string) *Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// Inline returns the anonymous structs declared in s's file, dependencies
// first. Named structs are not crossed: they live in their own files.
func (s *Struct) Inline() []*Struct {
	var out []*Struct

	var visit func(st *Struct)
	visit = func(st *Struct) {
		for _, f := range st.Fields {
			leaf := f.Type.Leaf()
			if leaf.Kind != KindStruct || leaf.Struct.Named {
				continue
			}

			if slices.Contains(out, leaf.Struct) {
				continue
			}

			visit(leaf.Struct)
			out = append(out, leaf.Struct)
		}
	}
	visit(s)

	return out
}

// Refs returns the named structs referenced from s's file, sorted by name.
func (s *Struct) Refs() []*Struct {
	var refs []*Struct

	for _, st := range append(s.Inline(), s) {
		for _, f := range st.Fields {
			leaf := f.Type.Leaf()
			if leaf.Kind == KindStruct && leaf.Struct.Named && leaf.Struct != s && !slices.Contains(refs, leaf.Struct) {
				refs = append(refs, leaf.Struct)
			}
		}
	}

	slices.SortFunc(refs, func(a, b *Struct) int { return strings.Compare(a.Name, b.Name) })

	return refs
}

// Kinds returns the leaf kinds used by s's file, in first-use order.
func (s *Struct) Kinds() []ValueKind {
	var kinds []ValueKind

	for _, st := range append(s.Inline(), s) {
		for _, f := range st.Fields {
			for t := f.Type; ; t = t.Elem {
				if !slices.Contains(kinds, t.Kind) {
					kinds = append(kinds, t.Kind)
				}

				if t.Kind != KindArray {
					break
				}
			}
		}
	}

	return kinds
}

// UsesKind reports whether s's file uses kind anywhere.
func (s *Struct) UsesKind(kind ValueKind) bool {
	return slices.Contains(s.Kinds(), kind)
}

// Sheet is a named table of rows. A sheet with a KeyField is map-shaped;
// otherwise it is array-shaped and ordered by input row order.
type Sheet struct {
	Name     string
	KeyField string
	Row      *Struct
	// Key is the identity field: the map key field for map-shaped sheets,
	// the ID field for array-shaped ones.
	Key *Field
}

// IsMap reports whether the sheet is map-shaped.
func (s *Sheet) IsMap() bool {
	return s.KeyField != ""
}

// RootType returns the value type of the whole sheet.
func (s *Sheet) RootType() *ValueType {
	row := StructType(s.Row)
	if s.IsMap() {
		return &ValueType{Kind: KindMap, Elem: row}
	}

	return ArrayOf(row)
}

// Model is a validated, read-only set of sheets and named structs.
type Model struct {
	// Sheets sorted by name.
	Sheets []*Sheet
	// Structs holds named structs, dependencies first.
	Structs []*Struct
}

// Sheet returns the sheet with the given name, or nil.
func (m *Model) Sheet(name string) *Sheet {
	for _, s := range m.Sheets {
		if s.Name == name {
			return s
		}
	}

	return nil
}

// SheetNames returns the names of all sheets in model order.
func (m *Model) SheetNames() []string {
	names := make([]string, 0, len(m.Sheets))
	for _, s := range m.Sheets {
		names = append(names, s.Name)
	}

	return names
}
