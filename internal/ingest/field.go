package ingest

import (
	"fmt"
	"slices"
	"strings"
)

// Column type spellings.
const (
	typeInt    = "int"
	typeLong   = "long"
	typeFloat  = "float"
	typeBool   = "bool"
	typeString = "string"
	typeTime   = "time"
	typeJSON   = "json"
	typeStruct = "struct"

	arrayPrefix = "[]"
)

var leafTypes = []string{typeInt, typeLong, typeFloat, typeBool, typeString, typeTime, typeJSON}

// Field is a node of the field tree built from dotted column names. Leaves
// map to one column; inner nodes are structs.
type Field struct {
	Name string
	// Type is a leaf type, or "struct" for inner nodes.
	Type string
	// MultiLine marks a "[]name" segment: one element per row.
	MultiLine bool
	// CellArray marks a "[]type" leaf: comma separated elements in one
	// cell.
	CellArray bool
	Children  []*Field
	Parent    *Field

	column int
}

// Path returns the dotted path of f without array prefixes.
func (f *Field) Path() string {
	if f.Parent != nil {
		return f.Parent.Path() + "." + f.Name
	}

	return f.Name
}

// IsArray reports whether f's value is a list.
func (f *Field) IsArray() bool {
	return f.MultiLine || f.CellArray
}

// hasMultiLine reports whether f or any descendant is a multi-line array.
func (f *Field) hasMultiLine() bool {
	if f.MultiLine {
		return true
	}

	return slices.ContainsFunc(f.Children, (*Field).hasMultiLine)
}

// leaves calls fn for every column under f.
func (f *Field) leaves(fn func(*Field)) {
	if len(f.Children) == 0 {
		fn(f)

		return
	}

	for _, c := range f.Children {
		c.leaves(fn)
	}
}

// selected reports whether a column with the given tags is included for
// the requested tags. Untagged columns and empty requests select all.
func selected(want, have []string) bool {
	if len(want) == 0 || len(have) == 0 {
		return true
	}

	for _, t := range have {
		if slices.Contains(want, t) {
			return true
		}
	}

	return false
}

// Fields builds the field tree of the columns selected by tags.
func (td *TableData) Fields(tags []string) ([]*Field, error) {
	var roots []*Field

	for col := range td.FieldNames {
		if col != indexCol && !selected(tags, td.FieldTags[col]) {
			continue
		}

		leafType, cellArray := strings.CutPrefix(td.FieldTypes[col], arrayPrefix)
		if !slices.Contains(leafTypes, leafType) {
			return nil, fmt.Errorf("table %s: column %s: unknown type %q", td.Name, td.FieldNames[col], td.FieldTypes[col])
		}

		segments := strings.Split(td.FieldNames[col], ".")

		var (
			parent    *Field
			multiLine *Field
		)

		for i, seg := range segments {
			name, isMulti := strings.CutPrefix(seg, arrayPrefix)
			if name == "" {
				return nil, fmt.Errorf("table %s: column %s: empty name segment", td.Name, td.FieldNames[col])
			}

			last := i == len(segments)-1

			siblings := roots
			if parent != nil {
				siblings = parent.Children
			}

			idx := slices.IndexFunc(siblings, func(f *Field) bool { return f.Name == name })

			var field *Field

			if idx >= 0 {
				field = siblings[idx]
				if last || len(field.Children) == 0 || field.MultiLine != isMulti {
					return nil, fmt.Errorf("table %s: column %s conflicts with an earlier column", td.Name, td.FieldNames[col])
				}
			} else {
				field = &Field{Name: name, Type: typeStruct, MultiLine: isMulti, Parent: parent, column: col}
				if last {
					field.Type = leafType
					field.CellArray = cellArray
				}

				if parent != nil {
					parent.Children = append(parent.Children, field)
				} else {
					roots = append(roots, field)
				}
			}

			if isMulti {
				if multiLine != nil && multiLine != field {
					return nil, fmt.Errorf("table %s: column %s: nested multi-line arrays are not allowed", td.Name, td.FieldNames[col])
				}

				if field.CellArray {
					return nil, fmt.Errorf("table %s: column %s: a multi-line array cannot hold cell arrays", td.Name, td.FieldNames[col])
				}

				multiLine = field
			}

			parent = field
		}
	}

	return roots, nil
}
