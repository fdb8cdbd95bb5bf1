package target

import (
	"go/format"

	"sheetgen/internal/model"
	"sheetgen/internal/region"
)

// Region suffixes, in file order, of files with regions.
const (
	RegionExtraInclude = "EXTRA_INCLUDE"
	RegionExtraBody    = "EXTRA_BODY"
)

// RegionSuffixes lists the regions of every file that has them.
var RegionSuffixes = []string{RegionExtraInclude, RegionExtraBody}

// legacyMarkers are marker spellings written by earlier generator versions.
var legacyMarkers = []region.MarkerStyle{
	{Open: "//", Namespace: "NESTCSV"},
	{Open: "// ", Namespace: "sheetgen", FoldCase: true},
	{Open: "/*", Close: "*/", Namespace: "SHEETGEN"},
}

var currentMarkers = region.MarkerStyle{Open: "//", Namespace: "SHEETGEN"}

// Go emits gofmt-ed Go that decodes through the sheetrt runtime package.
var Go = &Descriptor{
	Name: "go",
	Scalars: map[model.ValueKind]string{
		model.KindInt32:     "int32",
		model.KindInt64:     "int64",
		model.KindFloat64:   "float64",
		model.KindBool:      "bool",
		model.KindString:    "string",
		model.KindTimestamp: "time.Time",
		model.KindRawValue:  "sheetrt.RawValue",
	},
	ArrayFormat:       "[]%s",
	MapFormat:         "map[string]*%s",
	TableSuffix:       "Table",
	TableBase:         "TableBase",
	SheetNameAccessor: "SheetName",
	FileExt:           ".go",
	Markers: region.MarkerSet{
		Current: currentMarkers,
		Legacy:  legacyMarkers,
	},
	Layout: Layout{
		Base:     []FileSpec{{Template: "base", Stem: "table_base"}},
		Struct:   []FileSpec{{Template: "struct", Stem: "{lower}", Regions: true}},
		Sheet:    []FileSpec{{Template: "sheet", Stem: "{lower}", Regions: true}},
		Registry: []FileSpec{{Template: "registry", Stem: "tables"}},
	},
	Converters: map[model.ValueKind]string{
		model.KindInt32:     "sheetrt.Int32",
		model.KindInt64:     "sheetrt.Int64",
		model.KindFloat64:   "sheetrt.Float64",
		model.KindBool:      "sheetrt.Bool",
		model.KindString:    "sheetrt.String",
		model.KindTimestamp: "sheetrt.Time",
		model.KindRawValue:  "sheetrt.Raw",
	},
	Format:          format.Source,
	ListConverter:   "sheetrt.ListOf(%s)",
	StructConverter: "sheetrt.StructOf[%[1]s, *%[1]s]",
	Reserved: []string{
		"TableBase", "Tables", "LoadTablesFromFile", "Get", "WithTables", "TablesFromContext",
		"decodeMode", "newDecoder", "current", "tablesContextKey",
	},
	RowMembers:    []string{"Decode"},
	HolderMembers: []string{"GetTables", "GetBySheetName", "LoadTables"},
}

// UE5 emits Unreal Engine 5 C++ headers decoding from FJsonValue.
var UE5 = &Descriptor{
	Name: "ue5",
	Scalars: map[model.ValueKind]string{
		model.KindInt32:     "int32",
		model.KindInt64:     "int64",
		model.KindFloat64:   "double",
		model.KindBool:      "bool",
		model.KindString:    "FString",
		model.KindTimestamp: "FDateTime",
		model.KindRawValue:  "TSharedPtr<FJsonValue>",
	},
	ArrayFormat:       "TArray<%s>",
	MapFormat:         "TMap<FString, %s>",
	StructPrefix:      "F",
	TableSuffix:       "Table",
	TableBase:         "F{P}TableBase",
	RowBase:           "F{P}TableDataBase",
	SheetNameAccessor: "GetSheetName",
	FileExt:           ".h",
	Markers: region.MarkerSet{
		Current: currentMarkers,
		Legacy:  legacyMarkers,
	},
	Layout: Layout{
		Base: []FileSpec{
			{Template: "data_base", Stem: "{P}TableDataBase"},
			{Template: "table_base", Stem: "{P}TableBase"},
		},
		Struct: []FileSpec{{Template: "struct", Stem: "{P}{type}", Regions: true}},
		Sheet: []FileSpec{
			{Template: "struct", Stem: "{P}{type}", Regions: true},
			{Template: "table", Stem: "{P}{type}Table", Regions: true},
		},
		Registry: []FileSpec{{Template: "holder", Stem: "{P}TableHolder"}},
	},
	Reserved:      []string{"F{P}TableBase", "F{P}TableDataBase", "U{P}TableHolder", "{P}SheetJson"},
	RowMembers:    []string{"Load"},
	HolderMembers: []string{"GetTables", "GetBySheetName", "LoadTables"},
}
