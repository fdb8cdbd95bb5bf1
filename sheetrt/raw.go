package sheetrt

import "encoding/json"

// RawValue is a JSON value passed through unparsed. V holds nil, bool,
// json.Number, float64, string, []any or map[string]any.
type RawValue struct {
	V any
}

// IsNull reports whether the value is absent or JSON null.
func (r RawValue) IsNull() bool {
	return r.V == nil
}

// As re-decodes the value into dst.
func (r RawValue) As(dst any) error {
	b, err := json.Marshal(r.V)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}

func (r RawValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.V)
}

func (r *RawValue) UnmarshalJSON(b []byte) error {
	v, err := Parse(b)
	if err != nil {
		return err
	}

	r.V = v

	return nil
}
