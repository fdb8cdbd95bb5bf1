package gen

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetgen/internal/model"
	"sheetgen/internal/target"
)

func renderRegistry(t *testing.T, m *model.Model, mutate func(*GeneratorConfig)) string {
	t.Helper()

	g := newTestGenerator(t, target.Go, mutate)

	files, err := g.RenderRegistry(m)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "tables.go", files[0].Filename)

	_, err = parser.ParseFile(token.NewFileSet(), files[0].Filename, files[0].Content, 0)
	require.NoError(t, err, string(files[0].Content))

	return string(files[0].Content)
}

func TestRegistry_Go(t *testing.T) {
	content := renderRegistry(t, testModel(t), nil)

	for _, want := range []string{
		"type Tables struct",
		"Complex ComplexTable",
		"Types   TypesTable",
		"func (t *Tables) GetTables() []TableBase",
		"&t.Complex,",
		"&t.Types,",
		"func (t *Tables) GetBySheetName(name string) TableBase",
		"if table.SheetName() == name",
		"func (t *Tables) LoadTables(values map[string]any) error",
		"func LoadTablesFromFile(dir string) (*Tables, error)",
		"t.Complex.LoadFromFile(dir)",
	} {
		assert.Contains(t, content, want)
	}

	assert.NotContains(t, content, "func Get()")
	assert.NotContains(t, content, "WithTables")
}

func TestRegistry_Go_Options(t *testing.T) {
	content := renderRegistry(t, testModel(t), func(c *GeneratorConfig) {
		c.Singleton = true
		c.Context = true
	})

	assert.Contains(t, content, "var current atomic.Pointer[Tables]")
	assert.Contains(t, content, "current.Store(&t)")
	assert.Contains(t, content, "func Get() *Tables")
	assert.Contains(t, content, "func WithTables(ctx context.Context, t *Tables) context.Context")
	assert.Contains(t, content, "func TablesFromContext(ctx context.Context) *Tables")
}

func TestRegistry_Go_Empty(t *testing.T) {
	m, err := model.NewBuilder().Resolve()
	require.NoError(t, err)

	content := renderRegistry(t, m, nil)
	assert.Contains(t, content, "type Tables struct")
	assert.NotContains(t, content, `"fmt"`)
}
