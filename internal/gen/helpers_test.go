package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sheetgen/internal/model"
	"sheetgen/internal/target"
)

// testModel builds the schema used across the package tests: an
// array-shaped sheet with nested and named structs, and a map-shaped one.
func testModel(t *testing.T) *model.Model {
	t.Helper()

	b := model.NewBuilder()

	_, err := b.AddSheet(model.SheetDef{
		Name: "complex",
		Fields: []model.FieldDef{
			{Name: "ID", Type: "int"},
			{Name: "Tags", Type: "[]string"},
			{Name: "SKU", Type: "[]struct", Fields: []model.FieldDef{
				{Name: "Type", Type: "string"},
				{Name: "ID", Type: "string"},
			}},
			{Name: "Rewards", Type: "[]struct", StructName: "Reward", Fields: []model.FieldDef{
				{Name: "Type", Type: "string"},
				{Name: "Amount", Type: "long"},
			}},
			{Name: "Grid", Type: "[][]float"},
			{Name: "When", Type: "time"},
			{Name: "Extra", Type: "json", Optional: true},
		},
	})
	require.NoError(t, err)

	_, err = b.AddSheet(model.SheetDef{
		Name:     "types",
		KeyField: "Key",
		Fields: []model.FieldDef{
			{Name: "Key", Type: "string"},
			{Name: "Enabled", Type: "bool"},
			{Name: "Bonus", Type: "Reward"},
		},
	})
	require.NoError(t, err)

	m, err := b.Resolve()
	require.NoError(t, err)

	return m
}

func newTestGenerator(t *testing.T, d *target.Descriptor, mutate func(*GeneratorConfig)) *Generator {
	t.Helper()

	cfg := DefaultGeneratorConfig()
	if d == target.UE5 {
		cfg.Prefix = "Nc"
	}

	if mutate != nil {
		mutate(&cfg)
	}

	g, err := NewGenerator(cfg, d)
	require.NoError(t, err)

	return g
}

func filesByName(files []GeneratedFile) map[string]GeneratedFile {
	out := make(map[string]GeneratedFile, len(files))
	for _, f := range files {
		out[f.Filename] = f
	}

	return out
}
