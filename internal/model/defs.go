package model

import (
	"slices"
	"strings"
)

// SheetDef is a sheet definition as supplied by the ingestion front-end.
type SheetDef struct {
	Name string
	// KeyField makes the sheet map-shaped, keyed by that field.
	KeyField string
	Fields   []FieldDef
}

// FieldDef is a field definition. Type is textual:
//   - scalars: int, int32, long, int64, float, float64, bool, string,
//     time, timestamp, json, raw
//   - "struct" for an inline struct described by Fields
//   - the name of a struct registered with AddStruct or StructName
//
// A "[]" prefix (repeatable) makes the field an array of that type.
type FieldDef struct {
	Name     string
	Type     string
	Optional bool
	// StructName promotes an inline struct to a named struct shared by every
	// field that uses the same name.
	StructName string
	Fields     []FieldDef
}

// StructDef is a named struct definition.
type StructDef struct {
	Name   string
	Fields []FieldDef
}

const arrayPrefix = "[]"

// splitArray strips "[]" prefixes from a textual type.
func splitArray(typ string) (base string, depth int) {
	base = strings.TrimSpace(typ)
	for strings.HasPrefix(base, arrayPrefix) {
		base = base[len(arrayPrefix):]
		depth++
	}

	return base, depth
}

var scalarNames = map[string]ValueKind{
	"int":       KindInt32,
	"int32":     KindInt32,
	"long":      KindInt64,
	"int64":     KindInt64,
	"float":     KindFloat64,
	"float64":   KindFloat64,
	"double":    KindFloat64,
	"bool":      KindBool,
	"string":    KindString,
	"time":      KindTimestamp,
	"timestamp": KindTimestamp,
	"json":      KindRawValue,
	"raw":       KindRawValue,
}

const structTypeName = "struct"

// ParseScalar returns the kind for a textual scalar type name.
func ParseScalar(name string) (ValueKind, bool) {
	k, ok := scalarNames[strings.ToLower(name)]

	return k, ok
}

// isStruct reports whether a definition describes an inline struct.
func (d *FieldDef) isStruct() bool {
	base, _ := splitArray(d.Type)

	return base == structTypeName || (base == "" && len(d.Fields) > 0)
}

// fieldsEqual compares two ordered field lists structurally.
func fieldsEqual(a, b []FieldDef) bool {
	return slices.EqualFunc(a, b, func(x, y FieldDef) bool {
		return x.Name == y.Name &&
			x.Type == y.Type &&
			x.Optional == y.Optional &&
			x.StructName == y.StructName &&
			fieldsEqual(x.Fields, y.Fields)
	})
}
