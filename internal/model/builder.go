package model

import (
	"errors"
	"sort"
	"strings"

	"sheetgen/internal/naming"
)

// ErrInvalidName reports an empty sheet, struct or field name.
var ErrInvalidName = errors.New("invalid name")

// idFieldName is the conventional identity field of array-shaped sheets.
const idFieldName = "ID"

// Builder accumulates sheet and struct definitions and resolves them into
// a Model. It is not safe for concurrent use; the resolved Model is.
type Builder struct {
	sheets     []*pendingSheet
	sheetNames map[string]struct{}
	structs    map[string]StructDef
}

type pendingSheet struct {
	def   SheetDef
	sheet *Sheet
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		sheetNames: make(map[string]struct{}),
		structs:    make(map[string]StructDef),
	}
}

// AddSheet registers a sheet definition. The returned Sheet is completed
// (Row and Key set) by Resolve.
func (b *Builder) AddSheet(def SheetDef) (*Sheet, error) {
	if def.Name == "" {
		return nil, schemaErr("<sheet>", ErrInvalidName, "empty sheet name")
	}

	if _, ok := b.sheetNames[def.Name]; ok {
		return nil, schemaErr(def.Name, ErrDuplicateSheetName, "")
	}

	if err := checkFieldNames(def.Name, def.Fields); err != nil {
		return nil, err
	}

	if def.KeyField != "" {
		if err := checkKeyField(def); err != nil {
			return nil, err
		}
	}

	sheet := &Sheet{Name: def.Name, KeyField: def.KeyField}
	b.sheets = append(b.sheets, &pendingSheet{def: def, sheet: sheet})
	b.sheetNames[def.Name] = struct{}{}

	return sheet, nil
}

// AddStruct registers a named struct. Registering the same name twice is
// allowed only with identical fields.
func (b *Builder) AddStruct(def StructDef) error {
	if def.Name == "" {
		return schemaErr("<struct>", ErrInvalidName, "empty struct name")
	}

	if existing, ok := b.structs[def.Name]; ok {
		if !fieldsEqual(existing.Fields, def.Fields) {
			return schemaErr(def.Name, ErrConflictingStruct, "struct registered twice with different fields")
		}

		return nil
	}

	if err := checkFieldNames(def.Name, def.Fields); err != nil {
		return err
	}

	b.structs[def.Name] = def

	return nil
}

// Resolve validates every definition and returns the read-only Model.
// It fails closed: on any error no Model is returned.
func (b *Builder) Resolve() (*Model, error) {
	for _, p := range b.sheets {
		if err := b.collectNamed(p.def.Fields); err != nil {
			return nil, err
		}
	}

	r := &resolver{named: make(map[string]*Struct, len(b.structs))}

	names := make([]string, 0, len(b.structs))
	for name := range b.structs {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		st := &Struct{Name: name, Named: true}
		r.named[name] = st
		r.all = append(r.all, st)
	}

	for _, name := range names {
		fields, err := r.resolveFields(name, b.structs[name].Fields)
		if err != nil {
			return nil, err
		}

		r.named[name].Fields = fields
	}

	for _, p := range b.sheets {
		fields, err := r.resolveFields(p.def.Name, p.def.Fields)
		if err != nil {
			return nil, err
		}

		p.sheet.Row = &Struct{Name: p.def.Name, Fields: fields}
		r.all = append(r.all, p.sheet.Row)

		if err := resolveKey(p.sheet); err != nil {
			return nil, err
		}
	}

	ordered, cyclic, err := sortStructs(r.all)
	if err != nil {
		return nil, err
	}

	if len(cyclic) > 0 {
		cycle := make([]string, 0, len(cyclic))
		for _, st := range cyclic {
			cycle = append(cycle, st.Name)
		}

		return nil, schemaErr(cyclic[0].Name, ErrCyclicStructReference, "%s", strings.Join(cycle, ", "))
	}

	m := &Model{}

	for _, st := range ordered {
		if st.Named {
			m.Structs = append(m.Structs, st)
		}
	}

	for _, p := range b.sheets {
		m.Sheets = append(m.Sheets, p.sheet)
	}

	sort.Slice(m.Sheets, func(i, j int) bool {
		return m.Sheets[i].Name < m.Sheets[j].Name
	})

	return m, nil
}

// collectNamed registers inline structs promoted with StructName.
func (b *Builder) collectNamed(defs []FieldDef) error {
	for _, d := range defs {
		if d.StructName != "" && len(d.Fields) > 0 {
			if err := b.AddStruct(StructDef{Name: d.StructName, Fields: d.Fields}); err != nil {
				return err
			}
		}

		if err := b.collectNamed(d.Fields); err != nil {
			return err
		}
	}

	return nil
}

type resolver struct {
	named map[string]*Struct
	// all holds every struct in creation order, for the cycle check.
	all []*Struct
}

func (r *resolver) resolveFields(owner string, defs []FieldDef) ([]*Field, error) {
	fields := make([]*Field, 0, len(defs))

	for i := range defs {
		t, err := r.resolveType(owner, &defs[i])
		if err != nil {
			return nil, err
		}

		fields = append(fields, &Field{
			Name:     defs[i].Name,
			Type:     t,
			Optional: defs[i].Optional,
		})
	}

	return fields, nil
}

func (r *resolver) resolveType(owner string, d *FieldDef) (*ValueType, error) {
	base, depth := splitArray(d.Type)

	var leaf *ValueType

	switch {
	case d.StructName != "":
		st, ok := r.named[d.StructName]
		if !ok {
			return nil, schemaErr(owner, ErrUnknownFieldType, "field %s: struct %q", d.Name, d.StructName)
		}

		leaf = StructType(st)

	case d.isStruct():
		name := owner + "_" + d.Name
		if depth > 0 {
			name = naming.Singular(name)
		}

		st := &Struct{Name: name}
		r.all = append(r.all, st)

		fields, err := r.resolveFields(name, d.Fields)
		if err != nil {
			return nil, err
		}

		st.Fields = fields
		leaf = StructType(st)

	default:
		if kind, ok := ParseScalar(base); ok {
			leaf = Scalar(kind)
		} else if st, ok := r.named[base]; ok {
			leaf = StructType(st)
		} else {
			return nil, schemaErr(owner, ErrUnknownFieldType, "field %s: %q", d.Name, d.Type)
		}
	}

	for range depth {
		leaf = ArrayOf(leaf)
	}

	return leaf, nil
}

func resolveKey(sheet *Sheet) error {
	row := sheet.Row

	if sheet.IsMap() {
		sheet.Key = row.Field(sheet.KeyField)
	} else {
		sheet.Key = row.Field(idFieldName)
		if sheet.Key == nil && len(row.Fields) > 0 {
			sheet.Key = row.Fields[0]
		}
	}

	if sheet.Key == nil || !sheet.Key.Type.Kind.IsKeyable() {
		return schemaErr(sheet.Name, ErrInvalidKeyField, "identity field must be Int32, Int64 or String")
	}

	return nil
}

func checkFieldNames(owner string, defs []FieldDef) error {
	seen := make(map[string]struct{}, len(defs))

	for _, d := range defs {
		if d.Name == "" {
			return schemaErr(owner, ErrInvalidName, "empty field name")
		}

		if _, ok := seen[d.Name]; ok {
			return schemaErr(owner, ErrDuplicateFieldName, "field %s", d.Name)
		}

		seen[d.Name] = struct{}{}

		if err := checkFieldNames(owner+"."+d.Name, d.Fields); err != nil {
			return err
		}
	}

	return nil
}

func checkKeyField(def SheetDef) error {
	for _, f := range def.Fields {
		if f.Name != def.KeyField {
			continue
		}

		base, depth := splitArray(f.Type)
		if kind, ok := ParseScalar(base); ok && depth == 0 && kind.IsKeyable() {
			return nil
		}

		return schemaErr(def.Name, ErrInvalidKeyField, "key field %s has type %q", f.Name, f.Type)
	}

	return schemaErr(def.Name, ErrInvalidKeyField, "key field %s not found", def.KeyField)
}
