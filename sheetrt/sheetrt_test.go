package sheetrt

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The types below mirror what the Go target emits for a small schema.

type reward struct {
	Type   string
	Amount int64
}

func (r *reward) Decode(d *Decoder, v any) bool {
	obj, ok := d.Object(v)
	if !ok {
		return false
	}

	var out reward
	if !Field(d, obj, "Type", false, &out.Type, String) {
		return false
	}

	if !Field(d, obj, "Amount", false, &out.Amount, Int64) {
		return false
	}

	*r = out

	return true
}

type complexRow struct {
	ID      int32
	Tags    []string
	Grid    [][]int32
	Rewards []reward
	When    time.Time
	Extra   RawValue
	Note    string
}

func (r *complexRow) Decode(d *Decoder, v any) bool {
	obj, ok := d.Object(v)
	if !ok {
		return false
	}

	var out complexRow
	if !Field(d, obj, "ID", false, &out.ID, Int32) {
		return false
	}

	if !Field(d, obj, "Tags", false, &out.Tags, ListOf(String)) {
		return false
	}

	if !Field(d, obj, "Grid", false, &out.Grid, ListOf(ListOf(Int32))) {
		return false
	}

	if !Field(d, obj, "Rewards", false, &out.Rewards, ListOf(StructOf[reward, *reward])) {
		return false
	}

	if !Field(d, obj, "When", false, &out.When, Time) {
		return false
	}

	if !Field(d, obj, "Extra", true, &out.Extra, Raw) {
		return false
	}

	if !Field(d, obj, "Note", true, &out.Note, String) {
		return false
	}

	*r = out

	return true
}

const complexJSON = `[
	{"ID": 1, "Tags": ["a", "b"], "Grid": [[1, 2], [3]],
	 "Rewards": [{"Type": "gold", "Amount": 9007199254740993}],
	 "When": "2024-05-01T10:00:00Z", "Extra": {"k": [1, true]}},
	{"ID": 2, "Tags": [], "Grid": [], "Rewards": [], "When": "2024-05-02", "Note": "second"}
]`

func mustParse(t *testing.T, s string) any {
	t.Helper()

	v, err := Parse([]byte(s))
	require.NoError(t, err)

	return v
}

func TestLoadRows_RoundTrip(t *testing.T) {
	for _, mode := range []Mode{Strict, Lenient} {
		t.Run(mode.String(), func(t *testing.T) {
			d := NewDecoder(mode)

			rows, err := LoadRows[complexRow](d, mustParse(t, complexJSON))
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Empty(t, d.Skipped)

			first := rows[0]
			assert.Equal(t, int32(1), first.ID)
			assert.Equal(t, []string{"a", "b"}, first.Tags)
			assert.Equal(t, [][]int32{{1, 2}, {3}}, first.Grid)
			assert.Equal(t, []reward{{Type: "gold", Amount: 9007199254740993}}, first.Rewards)
			assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), first.When)
			assert.False(t, first.Extra.IsNull())

			var extra map[string][]any
			require.NoError(t, first.Extra.As(&extra))
			assert.Equal(t, []any{1.0, true}, extra["k"])

			second := rows[1]
			assert.Equal(t, "second", second.Note)
			assert.True(t, second.Extra.IsNull())
			assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), second.When)
		})
	}
}

func TestStrict_LeavesDestinationUnchanged(t *testing.T) {
	d := NewDecoder(Strict)

	dst := reward{Type: "keep", Amount: 7}
	ok := dst.Decode(d, mustParse(t, `{"Type": "gold", "Amount": "many"}`))

	assert.False(t, ok)
	assert.Equal(t, reward{Type: "keep", Amount: 7}, dst)
	require.ErrorIs(t, d.Err(), ErrDecode)
	assert.Contains(t, d.Err().Error(), "Amount")
}

func TestStrict_MissingRequiredField(t *testing.T) {
	d := NewDecoder(Strict)

	_, err := LoadRows[reward](d, mustParse(t, `[{"Type": "gold"}]`))
	require.ErrorIs(t, err, ErrDecode)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "[0].Amount", de.Path)
	assert.Equal(t, "missing required field", de.Reason)
}

func TestStrict_NestedFailureAbortsRow(t *testing.T) {
	d := NewDecoder(Strict)

	_, err := LoadRows[complexRow](d, mustParse(t, `[{"ID": 1, "Tags": [], "Grid": [],
		"Rewards": [{"Type": 5, "Amount": 1}], "When": "2024-01-01"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[0].Rewards.[0].Type")
}

func TestLenient_KeepsDefaults(t *testing.T) {
	d := NewDecoder(Lenient)

	rows, err := LoadRows[complexRow](d, mustParse(t, `[
		{"ID": "x", "Tags": ["a", 3, "c"], "When": "not a date", "Note": "n"},
		7
	]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Zero(t, row.ID)
	assert.Equal(t, []string{"a", "c"}, row.Tags)
	assert.Nil(t, row.Rewards)
	assert.True(t, row.When.IsZero())
	assert.Equal(t, "n", row.Note)
	assert.NotEmpty(t, d.Skipped)
}

func TestLenient_RootShapeMismatch(t *testing.T) {
	d := NewDecoder(Lenient)

	rows, err := LoadRows[reward](d, mustParse(t, `{"not": "an array"}`))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = LoadRows[reward](NewDecoder(Strict), mustParse(t, `{"not": "an array"}`))
	require.ErrorIs(t, err, ErrDecode)
}

func TestLoadMap(t *testing.T) {
	d := NewDecoder(Strict)

	rows, err := LoadMap[reward](d, mustParse(t, `{
		"3": {"Type": "gem", "Amount": 30},
		"5": {"Type": "coin", "Amount": 50}
	}`))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row, ok := rows[KeyOf(int32(3))]
	require.True(t, ok)
	assert.Equal(t, "gem", row.Type)

	_, ok = rows[KeyOf(int64(4))]
	assert.False(t, ok)
}

func TestLoadMap_LenientSkipsBadRows(t *testing.T) {
	d := NewDecoder(Lenient)

	rows, err := LoadMap[reward](d, mustParse(t, `{"a": {"Type": "x", "Amount": 1}, "b": []}`))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Contains(t, rows, "a")
}

func TestInt32_Overflow(t *testing.T) {
	d := NewDecoder(Strict)

	var n int32
	assert.False(t, Int32(d, mustParse(t, `4294967296`), &n))
	assert.True(t, Int32(d, 12.0, &n))
	assert.Equal(t, int32(12), n)
	assert.False(t, Int32(NewDecoder(Strict), 1.5, &n))
}

func TestInt64_FloatBounds(t *testing.T) {
	var n int64

	// float64(math.MaxInt64) rounds up to 2^63, one past the range.
	assert.False(t, Int64(NewDecoder(Strict), float64(math.MaxInt64), &n))
	assert.Zero(t, n)

	assert.True(t, Int64(NewDecoder(Strict), float64(math.MinInt64), &n))
	assert.Equal(t, int64(math.MinInt64), n)

	assert.True(t, Int64(NewDecoder(Strict), float64(1<<62), &n))
	assert.Equal(t, int64(1<<62), n)

	assert.True(t, Int64(NewDecoder(Strict), mustParse(t, `9223372036854775807`), &n))
	assert.Equal(t, int64(math.MaxInt64), n)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00+02:00", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01 10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTime("05/01/2024")
	require.ErrorIs(t, err, ErrDecode)
}

func TestPanicMissing(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)

		err, ok := r.(*MissingRowError)
		require.True(t, ok)
		assert.Equal(t, "complex", err.Sheet)
		assert.Equal(t, "sheet complex: no row with key 4", err.Error())
	}()

	PanicMissing("complex", int32(4))
}
