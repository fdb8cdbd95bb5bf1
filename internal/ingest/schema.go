package ingest

import (
	"sheetgen/internal/model"
)

// Schema converts the columns selected by tags into a sheet definition
// for the type model. Field paths listed in Metadata.StructTypes become
// named structs.
func (td *TableData) Schema(tags []string) (model.SheetDef, error) {
	fields, err := td.Fields(tags)
	if err != nil {
		return model.SheetDef{}, err
	}

	def := model.SheetDef{
		Name:   td.Name,
		Fields: td.fieldDefs(fields),
	}

	if td.Metadata.AsMap {
		def.KeyField = td.FieldNames[indexCol]
	}

	return def, nil
}

func (td *TableData) fieldDefs(fields []*Field) []model.FieldDef {
	defs := make([]model.FieldDef, 0, len(fields))

	for _, f := range fields {
		typ := f.Type
		if f.IsArray() {
			typ = arrayPrefix + typ
		}

		d := model.FieldDef{Name: f.Name, Type: typ}

		if len(f.Children) > 0 {
			d.StructName = td.Metadata.StructTypes[f.Path()]
			d.Fields = td.fieldDefs(f.Children)
		}

		defs = append(defs, d)
	}

	return defs
}
