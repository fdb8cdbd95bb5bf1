package pipeline

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetgen/internal/config"
	"sheetgen/internal/diagnostic"
	"sheetgen/internal/output"
	"sheetgen/internal/target"
)

const itemsCSV = `ID,Name,[]Rewards.Type,[]Rewards.Amount,Secret
int,string,string,long,string
struct_type=Rewards:Reward,,,,server
1,Sword,gold,10,s1
1,,gem,2,
2,Shield,,,s2
`

const typesCSV = `Key,Enabled,Bonus.Type,Bonus.Amount
string,bool,string,long
as_map=true&struct_type=Bonus:Reward
a,true,gold,5
`

func quiet(string, ...any) {}

type fixture struct {
	dir    string
	sheets string
	cfg    *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	sheets := filepath.Join(dir, "sheets")
	require.NoError(t, os.MkdirAll(sheets, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sheets, "items.csv"), []byte(itemsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sheets, "types.csv"), []byte(typesCSV), 0o644))

	cfg := &config.Config{
		Datasources: []config.Datasource{
			{CSV: &config.CSVSource{Directories: config.StringList{sheets}}},
		},
		Outputs: []config.Output{
			{JSON: &config.JSONOutput{RootDir: filepath.Join(dir, "json")}, Tags: config.StringList{"client"}},
			{Bin: &config.BinOutput{RootDir: filepath.Join(dir, "bin")}},
		},
		Codegens: []config.Codegen{
			{
				Target:  "go",
				RootDir: filepath.Join(dir, "gen", "table"),
				Mode:    target.ModeStrict,
				Tags:    config.StringList{"client"},
				Go:      &config.GoOptions{PackageName: "table", Singleton: true},
			},
			{
				Target:  "ue5",
				RootDir: filepath.Join(dir, "ue5"),
				Mode:    target.ModeLenient,
				UE5:     &config.UE5Options{Prefix: "Nc"},
			},
		},
	}

	return &fixture{dir: dir, sheets: sheets, cfg: cfg}
}

func (f *fixture) path(parts ...string) string {
	return filepath.Join(append([]string{f.dir}, parts...)...)
}

func TestRun_WritesOutputsAndSources(t *testing.T) {
	f := newFixture(t)

	res, err := Run(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tables)
	assert.Empty(t, res.Diagnostics.Errors)

	data, err := os.ReadFile(f.path("json", "items.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"ID": 1, "Name": "Sword", "Rewards": [{"Type": "gold", "Amount": 10}, {"Type": "gem", "Amount": 2}]},
		{"ID": 2, "Name": "Shield", "Rewards": []}
	]`, string(data))

	bin, err := output.ReadBin(f.path("bin", "items.bin"))
	require.NoError(t, err)
	assert.Len(t, bin, 2)

	for _, name := range []string{"table_base.go", "reward.go", "items.go", "types.go", "tables.go"} {
		path := f.path("gen", "table", name)
		src, err := os.ReadFile(path)
		require.NoError(t, err, name)

		_, err = parser.ParseFile(token.NewFileSet(), path, src, parser.AllErrors)
		require.NoError(t, err, name)
	}

	items, err := os.ReadFile(f.path("gen", "table", "items.go"))
	require.NoError(t, err)
	assert.NotContains(t, string(items), "Secret")

	for _, name := range []string{
		"NcTableDataBase.h", "NcTableBase.h", "NcReward.h",
		"NcItems.h", "NcItemsTable.h", "NcTypes.h", "NcTypesTable.h", "NcTableHolder.h",
	} {
		assert.FileExists(t, f.path("ue5", name))
	}

	ue5Items, err := os.ReadFile(f.path("ue5", "NcItems.h"))
	require.NoError(t, err)
	assert.Contains(t, string(ue5Items), "Secret")
}

func TestRun_PreservesProtectedRegions(t *testing.T) {
	f := newFixture(t)

	_, err := Run(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)

	path := f.path("gen", "table", "items.go")
	src, err := os.ReadFile(path)
	require.NoError(t, err)

	custom := strings.Replace(string(src),
		"//SHEETGEN:ITEMS_EXTRA_BODY_START\n",
		"//SHEETGEN:ITEMS_EXTRA_BODY_START\nfunc (r *Items) Label() string { return r.Name }\n",
		1)
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o644))

	res, err := Run(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)
	assert.Empty(t, res.Written)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, custom, string(got))
}

func TestRun_SchemaErrorWritesNothing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.sheets, "broken.csv"), []byte(
		"ID,Bonus.Type\nint,string\nstruct_type=Bonus:Reward\n1,x\n"), 0o644))

	res, err := Run(context.Background(), f.cfg, Options{Logf: quiet})
	require.Error(t, err)
	require.NotEmpty(t, res.Diagnostics.Errors)
	assert.Equal(t, diagnostic.CodeSchema, res.Diagnostics.Errors[0].Code)

	assert.NoDirExists(t, f.path("gen"))
	assert.NoDirExists(t, f.path("json"))
}

func TestRun_UnknownTarget(t *testing.T) {
	f := newFixture(t)
	f.cfg.Codegens[1].Target = "ue4"
	f.cfg.Codegens[1].UE5 = nil

	res, err := Run(context.Background(), f.cfg, Options{Logf: quiet})
	require.Error(t, err)
	assert.ErrorContains(t, err, "did you mean ue5?")

	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Equal(t, diagnostic.CodeUnknownTarget, res.Diagnostics.Errors[0].Code)
	assert.Equal(t, []string{"ue5"}, res.Diagnostics.Errors[0].Suggestions)
	assert.NoDirExists(t, f.path("gen"))
}

func TestRun_MalformedRegionIsolated(t *testing.T) {
	f := newFixture(t)

	_, err := Run(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)

	itemsPath := f.path("gen", "table", "items.go")
	src, err := os.ReadFile(itemsPath)
	require.NoError(t, err)

	broken := strings.Replace(string(src), "//SHEETGEN:ITEMS_EXTRA_BODY_END\n", "", 1)
	require.NoError(t, os.WriteFile(itemsPath, []byte(broken), 0o644))

	rewardPath := f.path("gen", "table", "reward.go")
	require.NoError(t, os.Remove(rewardPath))

	res, err := Run(context.Background(), f.cfg, Options{Logf: quiet, Parallelism: 2})
	require.Error(t, err)

	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Equal(t, diagnostic.CodeMalformedRegion, res.Diagnostics.Errors[0].Code)
	assert.Equal(t, "items.go", res.Diagnostics.Errors[0].Path)

	got, err := os.ReadFile(itemsPath)
	require.NoError(t, err)
	assert.Equal(t, broken, string(got))

	assert.FileExists(t, rewardPath)
}

func TestCheck(t *testing.T) {
	f := newFixture(t)

	res, err := Check(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Stale)
	assert.NoDirExists(t, f.path("gen"))

	_, err = Run(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)

	res, err = Check(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)
	assert.Empty(t, res.Stale)

	require.NoError(t, os.WriteFile(filepath.Join(f.sheets, "items.csv"),
		[]byte(strings.Replace(itemsCSV, "ID,Name,", "ID,Title,", 1)), 0o644))

	res, err = Check(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)
	assert.Contains(t, res.Stale, f.path("gen", "table", "items.go"))
	assert.Contains(t, res.Stale, f.path("ue5", "NcItems.h"))
}

func TestRun_Prune(t *testing.T) {
	f := newFixture(t)
	f.cfg.Codegens[0].Prune = true

	_, err := Run(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)

	stale := f.path("gen", "table", "old.go")
	require.NoError(t, os.WriteFile(stale, []byte("// Code generated by sheetgen. DO NOT EDIT.\n\npackage table\n"), 0o644))

	handwritten := f.path("gen", "table", "extra.go")
	require.NoError(t, os.WriteFile(handwritten, []byte("package table\n"), 0o644))

	res, err := Run(context.Background(), f.cfg, Options{Logf: quiet})
	require.NoError(t, err)
	assert.Equal(t, []string{"old.go"}, res.Pruned)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, handwritten)
}

func TestWatch_RerunsOnChange(t *testing.T) {
	f := newFixture(t)
	f.cfg.Outputs = nil
	f.cfg.Codegens = f.cfg.Codegens[:1]

	data, err := config.Marshal(f.cfg)
	require.NoError(t, err)

	configPath := f.path("sheetgen.yaml")
	require.NoError(t, os.WriteFile(configPath, data, 0o644))

	runs := make(chan *Result, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- Watch(ctx, configPath, nil, Options{
			Logf:     quiet,
			Debounce: 20 * time.Millisecond,
			OnRun:    func(res *Result, _ error) { runs <- res },
		})
	}()

	select {
	case res := <-runs:
		assert.NotEmpty(t, res.Written)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial run")
	}

	require.NoError(t, os.WriteFile(filepath.Join(f.sheets, "items.csv"),
		[]byte(strings.Replace(itemsCSV, "ID,Name,", "ID,Title,", 1)), 0o644))

	select {
	case res := <-runs:
		assert.Contains(t, res.Written, f.path("gen", "table", "items.go"))
	case <-time.After(5 * time.Second):
		t.Fatal("no run after change")
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
