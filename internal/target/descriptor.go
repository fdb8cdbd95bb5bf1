package target

import (
	"fmt"
	"strings"

	"sheetgen/internal/model"
	"sheetgen/internal/naming"
	"sheetgen/internal/region"
)

// prefixVar is replaced with the configured type prefix in base type names.
const prefixVar = "{P}"

// Descriptor holds everything the emitter needs to know about a target
// language. Descriptors are immutable once registered.
type Descriptor struct {
	// Name is the registry key, e.g. "go".
	Name string
	// Scalars spells every scalar kind.
	Scalars map[model.ValueKind]string
	// ArrayFormat and MapFormat wrap an element type with fmt's %s.
	ArrayFormat string
	MapFormat   string
	// StructPrefix precedes every struct type name, ahead of the configured
	// prefix (UE5 "F").
	StructPrefix string
	// TableSuffix turns a sheet's row type name into its table type name.
	TableSuffix string
	// TableBase and RowBase name the base types tables and rows derive
	// from. {P} expands to the configured prefix.
	TableBase string
	RowBase   string
	// SheetNameAccessor is the method a table uses to report its sheet.
	SheetNameAccessor string
	// FileExt is the extension of every emitted file.
	FileExt string
	// Markers is the protected-region syntax.
	Markers region.MarkerSet
	// Layout maps units to templates and files.
	Layout Layout
	// Format normalizes rendered text; nil leaves it as rendered.
	Format func(src []byte) ([]byte, error)
	// Converters spell the decoder of each scalar kind, for targets whose
	// generated code names decoders explicitly. ListConverter and
	// StructConverter wrap an element converter or a struct type name.
	Converters      map[model.ValueKind]string
	ListConverter   string
	StructConverter string
	// Reserved lists the fixed identifiers the templates declare beside the
	// schema's types. {P} expands to the configured prefix.
	Reserved []string
	// RowMembers and HolderMembers list the methods of every row type and
	// of the registry holder; fields and table slots may not reuse them.
	RowMembers    []string
	HolderMembers []string
}

// TypeName spells t in the target language.
func (d *Descriptor) TypeName(t *model.ValueType, prefix string) string {
	switch t.Kind {
	case model.KindArray:
		return fmt.Sprintf(d.ArrayFormat, d.TypeName(t.Elem, prefix))
	case model.KindMap:
		return fmt.Sprintf(d.MapFormat, d.TypeName(t.Elem, prefix))
	case model.KindStruct:
		return d.StructName(t.Struct.Name, prefix)
	default:
		return d.Scalars[t.Kind]
	}
}

// StructName returns the type name of a struct or sheet row.
func (d *Descriptor) StructName(name, prefix string) string {
	return d.StructPrefix + prefix + naming.Pascal(name)
}

// TableName returns the type name of a sheet's table.
func (d *Descriptor) TableName(sheet, prefix string) string {
	return d.StructName(sheet, prefix) + d.TableSuffix
}

// TableBaseName returns the table base type for prefix.
func (d *Descriptor) TableBaseName(prefix string) string {
	return strings.ReplaceAll(d.TableBase, prefixVar, prefix)
}

// RowBaseName returns the row base type for prefix, or "" if rows have none.
func (d *Descriptor) RowBaseName(prefix string) string {
	return strings.ReplaceAll(d.RowBase, prefixVar, prefix)
}

// ReservedNames returns Reserved with the prefix expanded.
func (d *Descriptor) ReservedNames(prefix string) []string {
	names := make([]string, 0, len(d.Reserved))
	for _, name := range d.Reserved {
		names = append(names, strings.ReplaceAll(name, prefixVar, prefix))
	}

	return names
}

// FileSpec binds a template to the file it renders.
type FileSpec struct {
	// Template is the name of the template in the target's set.
	Template string
	// Stem is the file name without extension. {P} expands to the prefix,
	// {type} to the Pascal-cased unit name and {lower} to the lower-cased
	// unit name.
	Stem string
	// Regions marks files that carry the protected regions of their type.
	Regions bool
}

// Layout lists the files emitted per kind of unit.
type Layout struct {
	Base     []FileSpec
	Struct   []FileSpec
	Sheet    []FileSpec
	Registry []FileSpec
}

// FileStem expands spec.Stem for a unit name.
func (d *Descriptor) FileStem(spec FileSpec, name, prefix string) string {
	return strings.NewReplacer(
		prefixVar, prefix,
		"{type}", naming.Pascal(name),
		"{lower}", strings.ToLower(name),
	).Replace(spec.Stem)
}

// FileName returns the file an emitted unit with the given stem is written
// to.
func (d *Descriptor) FileName(stem string) string {
	return stem + d.FileExt
}

// RegionTag returns the protected-region tag of a file stem. Tags depend
// only on type names, so they survive reordering of the schema.
func (d *Descriptor) RegionTag(stem, suffix string) string {
	return naming.TagName(stem) + "_" + suffix
}

// Converter spells the decoder of t, or "" if the target has none.
func (d *Descriptor) Converter(t *model.ValueType, prefix string) string {
	switch t.Kind {
	case model.KindArray:
		elem := d.Converter(t.Elem, prefix)
		if elem == "" || d.ListConverter == "" {
			return ""
		}

		return fmt.Sprintf(d.ListConverter, elem)
	case model.KindStruct:
		if d.StructConverter == "" {
			return ""
		}

		return fmt.Sprintf(d.StructConverter, d.StructName(t.Struct.Name, prefix))
	default:
		return d.Converters[t.Kind]
	}
}
