package gen

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"sheetgen/internal/model"
	"sheetgen/internal/target"
)

//go:embed templates
var templateFS embed.FS

// ErrNameCollision reports two emitted types or files with the same name.
var ErrNameCollision = errors.New("name collision")

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the package clause of generated Go files.
	PackageName string
	// RuntimeImport is the import path of the sheetrt runtime.
	RuntimeImport string
	// Prefix precedes every generated type name (UE5 targets).
	Prefix string
	// Mode is the deserialization mode baked into generated code.
	Mode target.Mode
	// Singleton adds a package-level Get() returning the last loaded tables.
	Singleton bool
	// Context adds WithTables and TablesFromContext.
	Context bool
	// DebugDir receives the unformatted text of files that fail to format.
	DebugDir string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName:   "table",
		RuntimeImport: "sheetgen/sheetrt",
		Mode:          target.ModeStrict,
	}
}

// UnitKind classifies what a unit renders.
type UnitKind int

const (
	UnitBase UnitKind = iota + 1
	UnitStruct
	UnitSheet
	UnitRegistry
)

func (k UnitKind) String() string {
	switch k {
	case UnitBase:
		return "base"
	case UnitStruct:
		return "struct"
	case UnitSheet:
		return "sheet"
	case UnitRegistry:
		return "registry"
	default:
		return fmt.Sprintf("UnitKind(%d)", int(k))
	}
}

// Unit is an independently renderable piece of output: the base types, a
// named struct, a sheet or the registry.
type Unit struct {
	Kind UnitKind
	// Name is the struct or sheet name; empty for base and registry units.
	Name string
}

func (u Unit) String() string {
	if u.Name == "" {
		return u.Kind.String()
	}

	return u.Kind.String() + " " + u.Name
}

// GeneratedFile represents a generated source file.
type GeneratedFile struct {
	// Filename is the name of the file relative to the output directory.
	Filename string
	// Content is the rendered, formatted text before region merging.
	Content []byte
	// Unit is the unit the file was rendered from.
	Unit Unit
	// Regions marks files that carry protected regions.
	Regions bool
}

// Generator renders a Model for one target. It holds no per-run state, so
// Render may be called concurrently.
type Generator struct {
	config GeneratorConfig
	target *target.Descriptor
	tmpl   *template.Template
}

// NewGenerator parses the templates of d.
func NewGenerator(config GeneratorConfig, d *target.Descriptor) (*Generator, error) {
	if !config.Mode.Valid() {
		return nil, fmt.Errorf("invalid deserialization mode %v", config.Mode)
	}

	g := &Generator{config: config, target: d}

	tmpl, err := template.New(d.Name).
		Funcs(g.funcMap()).
		ParseFS(templateFS, "templates/"+d.Name+"/*.tpl")
	if err != nil {
		return nil, fmt.Errorf("parsing %s templates: %w", d.Name, err)
	}

	g.tmpl = tmpl

	return g, nil
}

// Target returns the descriptor the generator renders for.
func (g *Generator) Target() *target.Descriptor {
	return g.target
}

// Units lists every unit of m and checks that no two of them emit the
// same type or file name.
func (g *Generator) Units(m *model.Model) ([]Unit, error) {
	units := []Unit{{Kind: UnitBase}}

	for _, st := range m.Structs {
		units = append(units, Unit{Kind: UnitStruct, Name: st.Name})
	}

	for _, sh := range m.Sheets {
		units = append(units, Unit{Kind: UnitSheet, Name: sh.Name})
	}

	units = append(units, Unit{Kind: UnitRegistry})

	if err := g.checkNames(m, units); err != nil {
		return nil, err
	}

	return units, nil
}

// Generate renders every unit of m.
func (g *Generator) Generate(m *model.Model) ([]GeneratedFile, error) {
	units, err := g.Units(m)
	if err != nil {
		return nil, err
	}

	var files []GeneratedFile

	for _, u := range units {
		out, err := g.Render(m, u)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", u, err)
		}

		files = append(files, out...)
	}

	return files, nil
}

// Render renders the files of one unit.
func (g *Generator) Render(m *model.Model, u Unit) ([]GeneratedFile, error) {
	specs := g.unitSpecs(u.Kind)

	switch u.Kind {
	case UnitBase:
		return g.renderFiles(specs, "", g.baseView(), u)

	case UnitStruct:
		st := findStruct(m, u.Name)
		if st == nil {
			return nil, fmt.Errorf("unknown struct %q", u.Name)
		}

		return g.renderFiles(specs, st.Name, g.fileView(st), u)

	case UnitSheet:
		sh := m.Sheet(u.Name)
		if sh == nil {
			return nil, fmt.Errorf("unknown sheet %q", u.Name)
		}

		view := g.fileView(sh.Row)
		view.Sheet = g.sheetView(sh)

		return g.renderFiles(specs, sh.Name, view, u)

	case UnitRegistry:
		return g.renderFiles(specs, "", g.registryView(m), u)

	default:
		return nil, fmt.Errorf("unknown unit kind %v", u.Kind)
	}
}

// RenderStruct renders the files of a named struct.
func (g *Generator) RenderStruct(m *model.Model, name string) ([]GeneratedFile, error) {
	return g.Render(m, Unit{Kind: UnitStruct, Name: name})
}

// RenderSheet renders the files of a sheet: its row type and its table.
func (g *Generator) RenderSheet(m *model.Model, name string) ([]GeneratedFile, error) {
	return g.Render(m, Unit{Kind: UnitSheet, Name: name})
}

func (g *Generator) renderFiles(specs []target.FileSpec, name string, view *unitView, u Unit) ([]GeneratedFile, error) {
	files := make([]GeneratedFile, 0, len(specs))

	for _, spec := range specs {
		v := *view
		v.Stem = g.target.FileStem(spec, name, g.config.Prefix)

		if spec.Regions {
			v.Tag = v.Stem
		}

		file, err := g.renderFile(spec.Template, &v)
		file.Unit = u
		file.Regions = spec.Regions

		if err != nil {
			return nil, err
		}

		files = append(files, file)
	}

	return files, nil
}

func (g *Generator) renderFile(tmplName string, view *unitView) (GeneratedFile, error) {
	filename := g.target.FileName(view.Stem)

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, tmplName, view); err != nil {
		return GeneratedFile{Filename: filename}, fmt.Errorf("executing template %s: %w", tmplName, err)
	}

	if g.target.Format == nil {
		return GeneratedFile{Filename: filename, Content: buf.Bytes()}, nil
	}

	formatted, err := g.target.Format(buf.Bytes())
	if err != nil {
		_ = writeDebugUnformatted(g.config.DebugDir, filename, buf.Bytes(), err)

		return GeneratedFile{Filename: filename, Content: buf.Bytes()},
			fmt.Errorf("formatting %s: %w (unformatted code returned)", filename, err)
	}

	return GeneratedFile{Filename: filename, Content: formatted}, nil
}

func (g *Generator) funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	markers := g.target.Markers.Current

	funcs["regionStart"] = func(stem, suffix string) string {
		return markers.Start(g.target.RegionTag(stem, suffix))
	}
	funcs["regionEnd"] = func(stem, suffix string) string {
		return markers.End(g.target.RegionTag(stem, suffix))
	}

	return funcs
}

func findStruct(m *model.Model, name string) *model.Struct {
	for _, st := range m.Structs {
		if st.Name == name {
			return st
		}
	}

	return nil
}
