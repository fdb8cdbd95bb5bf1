package target

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetgen/internal/model"
)

func TestLookup(t *testing.T) {
	d, err := Lookup("go")
	require.NoError(t, err)
	assert.Same(t, Go, d)

	d, err = Lookup("UE5")
	require.NoError(t, err)
	assert.Same(t, UE5, d)
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("ue4")
	require.ErrorIs(t, err, ErrUnknownTarget)

	var ute *UnknownTargetError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "ue4", ute.Name)
	assert.Contains(t, ute.Suggestions, "ue5")
	assert.Contains(t, err.Error(), "did you mean ue5")
}

func TestRegister_Duplicate(t *testing.T) {
	err := Register(&Descriptor{Name: "Go"})
	require.ErrorIs(t, err, ErrDuplicateTarget)
	assert.Equal(t, []string{"go", "ue5"}, Names()[:2])
}

func TestRegister_Incomplete(t *testing.T) {
	tests := []struct {
		name string
		d    *Descriptor
	}{
		{
			name: "missing scalar",
			d:    &Descriptor{Name: "partial", Scalars: map[model.ValueKind]string{model.KindInt32: "int"}},
		},
		{
			name: "non-scalar spelling",
			d: &Descriptor{Name: "arrays", Scalars: func() map[model.ValueKind]string {
				m := maps.Clone(Go.Scalars)
				m[model.KindArray] = "list"

				return m
			}()},
		},
		{
			name: "missing converter",
			d: &Descriptor{
				Name:       "noconv",
				Scalars:    Go.Scalars,
				Converters: map[model.ValueKind]string{model.KindInt32: "conv.Int32"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Register(tt.d)
			require.ErrorIs(t, err, ErrIncompleteTarget)

			_, err = Lookup(tt.d.Name)
			require.ErrorIs(t, err, ErrUnknownTarget)
		})
	}
}

func TestDescriptor_TypeName(t *testing.T) {
	reward := &model.Struct{Name: "reward", Named: true}

	tests := []struct {
		name string
		typ  *model.ValueType
		goT  string
		ueT  string
	}{
		{"int", model.Scalar(model.KindInt32), "int32", "int32"},
		{"float", model.Scalar(model.KindFloat64), "float64", "double"},
		{"time", model.Scalar(model.KindTimestamp), "time.Time", "FDateTime"},
		{"raw", model.Scalar(model.KindRawValue), "sheetrt.RawValue", "TSharedPtr<FJsonValue>"},
		{"nested array", model.ArrayOf(model.ArrayOf(model.Scalar(model.KindString))), "[][]string", "TArray<TArray<FString>>"},
		{"struct array", model.ArrayOf(model.StructType(reward)), "[]Reward", "TArray<FNcReward>"},
		{
			"map",
			&model.ValueType{Kind: model.KindMap, Elem: model.StructType(reward)},
			"map[string]*Reward",
			"TMap<FString, FNcReward>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.goT, Go.TypeName(tt.typ, ""))
			assert.Equal(t, tt.ueT, UE5.TypeName(tt.typ, "Nc"))
		})
	}
}

func TestDescriptor_Names(t *testing.T) {
	assert.Equal(t, "ComplexTable", Go.TableName("complex", ""))
	assert.Equal(t, "FNcComplexTable", UE5.TableName("complex", "Nc"))
	assert.Equal(t, "TableBase", Go.TableBaseName(""))
	assert.Equal(t, "FNcTableBase", UE5.TableBaseName("Nc"))
	assert.Equal(t, "FNcTableDataBase", UE5.RowBaseName("Nc"))
	assert.Empty(t, Go.RowBaseName(""))
}

func TestDescriptor_Files(t *testing.T) {
	goSheet := Go.Layout.Sheet[0]
	assert.Equal(t, "sample_data", Go.FileStem(goSheet, "Sample_Data", ""))
	assert.Equal(t, "sample_data.go", Go.FileName(Go.FileStem(goSheet, "Sample_Data", "")))
	assert.Equal(t, "SAMPLEDATA_EXTRA_BODY", Go.RegionTag("sample_data", RegionExtraBody))

	var stems []string
	for _, spec := range UE5.Layout.Sheet {
		stems = append(stems, UE5.FileStem(spec, "complex", "Nc"))
	}

	assert.Equal(t, []string{"NcComplex", "NcComplexTable"}, stems)
	assert.Equal(t, "NCCOMPLEXTABLE_EXTRA_INCLUDE", UE5.RegionTag("NcComplexTable", RegionExtraInclude))
	assert.Equal(t, "NcTableHolder.h", UE5.FileName(UE5.FileStem(UE5.Layout.Registry[0], "", "Nc")))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Strict")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)
	assert.Equal(t, "Strict", m.String())

	m, err = ParseMode(" lenient ")
	require.NoError(t, err)
	assert.Equal(t, ModeLenient, m)

	_, err = ParseMode("loose")
	require.Error(t, err)

	var zero Mode
	assert.False(t, zero.Valid())
	assert.Equal(t, "Mode(0)", zero.String())
}

func TestMode_Text(t *testing.T) {
	b, err := ModeLenient.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "lenient", string(b))

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("STRICT")))
	assert.Equal(t, ModeStrict, m)

	_, err = Mode(0).MarshalText()
	require.Error(t, err)
}

func TestDescriptor_Converter(t *testing.T) {
	reward := &model.Struct{Name: "reward", Named: true}

	assert.Equal(t, "sheetrt.Int64", Go.Converter(model.Scalar(model.KindInt64), ""))
	assert.Equal(t,
		"sheetrt.ListOf(sheetrt.ListOf(sheetrt.String))",
		Go.Converter(model.ArrayOf(model.ArrayOf(model.Scalar(model.KindString))), ""),
	)
	assert.Equal(t,
		"sheetrt.ListOf(sheetrt.StructOf[Reward, *Reward])",
		Go.Converter(model.ArrayOf(model.StructType(reward)), ""),
	)
	assert.Empty(t, UE5.Converter(model.Scalar(model.KindInt64), "Nc"))
}
