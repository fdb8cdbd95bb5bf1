package gen

import "sheetgen/internal/model"

// The registry unit enumerates every table of a model: a Tables holder
// with one table per sheet, GetTables in sheet name order and
// GetBySheetName matching on each table's sheet name accessor, which
// yields nil (nullptr in C++) for unknown names.

// RenderRegistry renders the registry of m.
func (g *Generator) RenderRegistry(m *model.Model) ([]GeneratedFile, error) {
	return g.Render(m, Unit{Kind: UnitRegistry})
}

func (g *Generator) registryView(m *model.Model) *unitView {
	v := g.baseView()

	for _, sh := range m.Sheets {
		v.Sheets = append(v.Sheets, g.sheetView(sh))
	}

	return v
}
