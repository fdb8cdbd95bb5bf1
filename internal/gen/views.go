package gen

import (
	"fmt"
	"slices"

	"sheetgen/internal/model"
	"sheetgen/internal/naming"
	"sheetgen/internal/target"
)

// unitView is the data every template receives.
type unitView struct {
	Package   string
	Runtime   string
	Prefix    string
	Mode      target.Mode
	Singleton bool
	Context   bool

	TableBase string
	RowBase   string
	Accessor  string

	// Stem is the file name without extension. Tag is set to Stem in files
	// with protected regions and turned into tags by regionStart/regionEnd.
	Stem string
	Tag  string

	// Structs lists the types declared in the file, primary last.
	Structs []*structView
	Primary *structView
	Refs    []refView
	// Kinds names the value kinds the file's types use.
	Kinds []string

	Sheet  *sheetView
	Sheets []*sheetView
}

type structView struct {
	Name    string
	Schema  string
	Primary bool
	Fields  []*fieldView
}

type fieldView struct {
	Name     string
	Key      string
	Type     string
	Conv     string
	Optional bool
	// Plain fields hold no raw value and at most one array layer.
	Plain bool
}

// refView is a named struct used by a file, with the file declaring it.
type refView struct {
	Type string
	File string
}

type sheetView struct {
	Name    string
	Row     string
	Table   string
	Field   string
	IsMap   bool
	KeyName string
	KeyType string
	KeyKind string
	// Files are the files the sheet renders to, in layout order.
	Files []string
}

func (g *Generator) baseView() *unitView {
	prefix := g.config.Prefix

	return &unitView{
		Package:   g.config.PackageName,
		Runtime:   g.config.RuntimeImport,
		Prefix:    prefix,
		Mode:      g.config.Mode,
		Singleton: g.config.Singleton,
		Context:   g.config.Context,
		TableBase: g.target.TableBaseName(prefix),
		RowBase:   g.target.RowBaseName(prefix),
		Accessor:  g.target.SheetNameAccessor,
	}
}

// fileView describes the file of st: its anonymous structs, then st.
func (g *Generator) fileView(st *model.Struct) *unitView {
	v := g.baseView()

	for _, in := range st.Inline() {
		v.Structs = append(v.Structs, g.structView(in, false))
	}

	v.Primary = g.structView(st, true)
	v.Structs = append(v.Structs, v.Primary)

	for _, ref := range st.Refs() {
		v.Refs = append(v.Refs, refView{
			Type: g.target.StructName(ref.Name, v.Prefix),
			File: g.structFile(ref.Name),
		})
	}

	for _, k := range st.Kinds() {
		v.Kinds = append(v.Kinds, k.String())
	}

	return v
}

func (g *Generator) structView(st *model.Struct, primary bool) *structView {
	prefix := g.config.Prefix

	v := &structView{
		Name:    g.target.StructName(st.Name, prefix),
		Schema:  st.Name,
		Primary: primary,
	}

	for _, f := range st.Fields {
		v.Fields = append(v.Fields, &fieldView{
			Name:     naming.Pascal(f.Name),
			Key:      f.Name,
			Type:     g.target.TypeName(f.Type, prefix),
			Conv:     g.target.Converter(f.Type, prefix),
			Optional: f.Optional,
			Plain:    f.Type.Leaf().Kind != model.KindRawValue && f.Type.Depth() <= 1,
		})
	}

	return v
}

func (g *Generator) sheetView(sh *model.Sheet) *sheetView {
	prefix := g.config.Prefix

	v := &sheetView{
		Name:    sh.Name,
		Row:     g.target.StructName(sh.Name, prefix),
		Table:   g.target.TableName(sh.Name, prefix),
		Field:   naming.Pascal(sh.Name),
		IsMap:   sh.IsMap(),
		KeyName: naming.Pascal(sh.Key.Name),
		KeyType: g.target.TypeName(sh.Key.Type, prefix),
		KeyKind: sh.Key.Type.Kind.String(),
	}

	for _, spec := range g.target.Layout.Sheet {
		v.Files = append(v.Files, g.target.FileName(g.target.FileStem(spec, sh.Name, prefix)))
	}

	return v
}

// structFile returns the first file a named struct renders to.
func (g *Generator) structFile(name string) string {
	specs := g.target.Layout.Struct
	if len(specs) == 0 {
		return ""
	}

	return g.target.FileName(g.target.FileStem(specs[0], name, g.config.Prefix))
}

// checkNames rejects models whose emitted type or file names collide, e.g.
// a sheet "reward" next to a named struct "Reward".
func (g *Generator) checkNames(m *model.Model, units []Unit) error {
	prefix := g.config.Prefix

	types := make(map[string]string)
	for _, name := range g.target.ReservedNames(prefix) {
		types[name] = "generated code"
	}

	addType := func(name, owner string) error {
		if prev, ok := types[name]; ok {
			return fmt.Errorf("%w: type %s declared by %s and %s", ErrNameCollision, name, prev, owner)
		}

		types[name] = owner

		return nil
	}

	declare := func(st *model.Struct, owner string) error {
		for _, s := range append(st.Inline(), st) {
			name := g.target.StructName(s.Name, prefix)
			if err := addType(name, owner); err != nil {
				return err
			}

			for _, f := range s.Fields {
				if field := naming.Pascal(f.Name); slices.Contains(g.target.RowMembers, field) {
					return fmt.Errorf("%w: field %s of %s shadows method %s.%s", ErrNameCollision, f.Name, owner, name, field)
				}
			}
		}

		return nil
	}

	for _, st := range m.Structs {
		if err := declare(st, "struct "+st.Name); err != nil {
			return err
		}
	}

	for _, sh := range m.Sheets {
		if err := declare(sh.Row, "sheet "+sh.Name); err != nil {
			return err
		}

		if err := addType(g.target.TableName(sh.Name, prefix), "sheet "+sh.Name); err != nil {
			return err
		}

		if slot := naming.Pascal(sh.Name); slices.Contains(g.target.HolderMembers, slot) {
			return fmt.Errorf("%w: sheet %s shadows registry method %s", ErrNameCollision, sh.Name, slot)
		}
	}

	files := make(map[string]Unit)

	for _, u := range units {
		for _, spec := range g.unitSpecs(u.Kind) {
			name := g.target.FileName(g.target.FileStem(spec, u.Name, prefix))
			if prev, ok := files[name]; ok {
				return fmt.Errorf("%w: file %s written by %s and %s", ErrNameCollision, name, prev, u)
			}

			files[name] = u
		}
	}

	return nil
}

func (g *Generator) unitSpecs(kind UnitKind) []target.FileSpec {
	switch kind {
	case UnitBase:
		return g.target.Layout.Base
	case UnitStruct:
		return g.target.Layout.Struct
	case UnitSheet:
		return g.target.Layout.Sheet
	case UnitRegistry:
		return g.target.Layout.Registry
	default:
		return nil
	}
}
