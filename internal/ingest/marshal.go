package ingest

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"sheetgen/sheetrt"
)

// Marshal builds the JSON-shaped value of the sheet from the given field
// tree: an array of row objects, or an object keyed by row identity when
// the sheet is map-shaped. Rows sharing an identity continue the
// multi-line arrays of the first one.
func (td *TableData) Marshal(fields []*Field) (any, error) {
	var (
		objects = make(map[string]map[string]any)
		order   []string
		first   = make(map[string]int)
	)

	for rowIdx, row := range td.DataRows {
		id := row[indexCol]

		obj, continued := objects[id]
		if !continued {
			obj = make(map[string]any)
			objects[id] = obj
			order = append(order, id)
			first[id] = rowIdx
		}

		for _, f := range fields {
			if err := td.fill(obj, f, row, continued); err != nil {
				return nil, fmt.Errorf("table %s: row %d: %w", td.Name, rowIdx+dataStartRow+1, err)
			}
		}
	}

	if td.Metadata.AsMap {
		m := make(map[string]any, len(objects))
		for id, obj := range objects {
			m[id] = obj
		}

		return m, nil
	}

	if err := td.sortRows(order, first); err != nil {
		return nil, err
	}

	rows := make([]any, 0, len(order))
	for _, id := range order {
		rows = append(rows, objects[id])
	}

	return rows, nil
}

// fill sets f's value on obj. On continued rows only multi-line arrays
// receive data.
func (td *TableData) fill(obj map[string]any, f *Field, row []string, continued bool) error {
	if continued && !f.hasMultiLine() {
		return nil
	}

	switch {
	case f.MultiLine:
		list, ok := obj[f.Name].([]any)
		if !ok {
			list = []any{}
			obj[f.Name] = list
		}

		if blank(f, row) {
			return nil
		}

		if len(f.Children) == 0 {
			v, err := parseCell(f.Type, row[f.column])
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path(), err)
			}

			obj[f.Name] = append(list, v)

			return nil
		}

		elem := make(map[string]any)
		for _, c := range f.Children {
			if err := td.fill(elem, c, row, false); err != nil {
				return err
			}
		}

		obj[f.Name] = append(list, elem)

	case len(f.Children) > 0:
		nested, ok := obj[f.Name].(map[string]any)
		if !ok {
			nested = make(map[string]any)
			obj[f.Name] = nested
		}

		for _, c := range f.Children {
			if err := td.fill(nested, c, row, continued); err != nil {
				return err
			}
		}

	case f.CellArray:
		list := []any{}

		for _, part := range splitList(row[f.column]) {
			v, err := parseCell(f.Type, part)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path(), err)
			}

			list = append(list, v)
		}

		obj[f.Name] = list

	default:
		v, err := parseCell(f.Type, row[f.column])
		if err != nil {
			return fmt.Errorf("%s: %w", f.Path(), err)
		}

		obj[f.Name] = v
	}

	return nil
}

// blank reports whether every column under f is empty in row.
func blank(f *Field, row []string) bool {
	empty := true

	f.leaves(func(leaf *Field) {
		if strings.TrimSpace(row[leaf.column]) != "" {
			empty = false
		}
	})

	return empty
}

// parseCell converts cell text to the JSON value of a leaf type. Empty
// cells yield the zero value.
func parseCell(typ, text string) (any, error) {
	text = strings.TrimSpace(text)

	switch typ {
	case typeInt:
		if text == "" {
			return int32(0), nil
		}

		v, err := strconv.ParseInt(text, 10, 32)

		return int32(v), err

	case typeLong:
		if text == "" {
			return int64(0), nil
		}

		return strconv.ParseInt(text, 10, 64)

	case typeFloat:
		if text == "" {
			return float64(0), nil
		}

		return strconv.ParseFloat(text, 64)

	case typeBool:
		if text == "" {
			return false, nil
		}

		return strconv.ParseBool(text)

	case typeString:
		return text, nil

	case typeTime:
		if text == "" {
			return time.Time{}, nil
		}

		return sheetrt.ParseTime(text)

	case typeJSON:
		if text == "" {
			return nil, nil
		}

		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return nil, fmt.Errorf("invalid json %q: %w", text, err)
		}

		return v, nil

	default:
		return nil, fmt.Errorf("unknown type %q", typ)
	}
}

// sortRows orders ids by the sort column of their first row. The sort is
// stable, so equal keys keep input order.
func (td *TableData) sortRows(ids []string, first map[string]int) error {
	field, desc := td.Metadata.SortAscBy, false
	if field == "" {
		field, desc = td.Metadata.SortDescBy, true
	}

	if field == "" {
		return nil
	}

	col := slices.Index(td.FieldNames, field)
	typ := td.FieldTypes[col]

	keys := make(map[string]any, len(ids))

	for _, id := range ids {
		v, err := parseCell(typ, td.DataRows[first[id]][col])
		if err != nil {
			return fmt.Errorf("table %s: sort_by %s: %w", td.Name, field, err)
		}

		keys[id] = v
	}

	slices.SortStableFunc(ids, func(a, b string) int {
		c := compareValues(keys[a], keys[b])
		if desc {
			return -c
		}

		return c
	})

	return nil
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case int32:
		return cmp.Compare(x, b.(int32))
	case int64:
		return cmp.Compare(x, b.(int64))
	case float64:
		return cmp.Compare(x, b.(float64))
	case string:
		return strings.Compare(x, b.(string))
	case time.Time:
		return x.Compare(b.(time.Time))
	default:
		return 0
	}
}
