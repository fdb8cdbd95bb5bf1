package sheetrt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Parse decodes JSON keeping numbers as json.Number, so 64-bit integers
// survive.
func Parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return v, nil
}

// ReadJSONFile reads and parses a JSON file.
func ReadJSONFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// LoadRows decodes an array-shaped sheet. Under Lenient a malformed root
// yields no rows and rows that are not objects are skipped.
func LoadRows[T any, PT interface {
	*T
	Decodable
}](d *Decoder, v any) ([]T, error) {
	var rows []T

	if !ListOf(StructOf[T, PT])(d, v, &rows) {
		return nil, d.rootErr()
	}

	return rows, nil
}

// LoadMap decodes a map-shaped sheet keyed by string.
func LoadMap[T any, PT interface {
	*T
	Decodable
}](d *Decoder, v any) (map[string]*T, error) {
	obj, ok := d.Object(v)
	if !ok {
		return nil, d.rootErr()
	}

	rows := make(map[string]*T, len(obj))

	for key, raw := range obj {
		row := new(T)

		d.push(key)
		ok := PT(row).Decode(d, raw)
		d.pop()

		if !ok {
			if d.Mode == Lenient {
				continue
			}

			return nil, d.Err()
		}

		rows[key] = row
	}

	return rows, nil
}

func (d *Decoder) rootErr() error {
	if d.Mode == Lenient {
		return nil
	}

	return d.Err()
}

// KeyOf formats a row identity as a map key.
func KeyOf[K ~int32 | ~int64 | ~string](k K) string {
	switch x := any(k).(type) {
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return fmt.Sprint(k)
	}
}

// MissingRowError is the panic value of MustFind helpers.
type MissingRowError struct {
	Sheet string
	Key   any
}

func (e *MissingRowError) Error() string {
	return fmt.Sprintf("sheet %s: no row with key %v", e.Sheet, e.Key)
}

// PanicMissing panics with a *MissingRowError.
func PanicMissing(sheet string, key any) {
	panic(&MissingRowError{Sheet: sheet, Key: key})
}
