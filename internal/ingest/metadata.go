package ingest

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	metaAsMap      = "as_map"
	metaSortAscBy  = "sort_asc_by"
	metaSortDescBy = "sort_desc_by"
	metaStructType = "struct_type"
)

// Metadata is the per-sheet query stored in cell A3.
type Metadata struct {
	// AsMap makes the sheet map-shaped, keyed by the index field.
	AsMap      bool
	SortAscBy  string
	SortDescBy string
	// StructTypes maps a dotted field path to the named struct its
	// columns describe, so several sheets can share one struct.
	StructTypes map[string]string
}

// ParseMetadata decodes a metadata query such as
// "as_map=true&struct_type=Rewards:Reward". An empty query is valid.
func ParseMetadata(query string) (Metadata, error) {
	var m Metadata

	query = strings.TrimSpace(query)
	if query == "" {
		return m, nil
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return m, fmt.Errorf("invalid metadata query %q: %w", query, err)
	}

	for key, vals := range values {
		last := vals[len(vals)-1]

		switch key {
		case metaAsMap:
			if m.AsMap, err = strconv.ParseBool(last); err != nil {
				return m, fmt.Errorf("metadata %s: %w", key, err)
			}

		case metaSortAscBy:
			m.SortAscBy = last

		case metaSortDescBy:
			m.SortDescBy = last

		case metaStructType:
			m.StructTypes = make(map[string]string)

			for _, v := range vals {
				for _, pair := range splitList(v) {
					path, name, ok := strings.Cut(pair, ":")
					if !ok || path == "" || name == "" {
						return m, fmt.Errorf("metadata %s: expected path:Name, got %q", key, pair)
					}

					m.StructTypes[path] = name
				}
			}

		default:
			return m, fmt.Errorf("unknown metadata key %q", key)
		}
	}

	return m, nil
}

// Encode renders m back into query form.
func (m Metadata) Encode() string {
	values := url.Values{}

	if m.AsMap {
		values.Set(metaAsMap, "true")
	}

	if m.SortAscBy != "" {
		values.Set(metaSortAscBy, m.SortAscBy)
	}

	if m.SortDescBy != "" {
		values.Set(metaSortDescBy, m.SortDescBy)
	}

	paths := make([]string, 0, len(m.StructTypes))
	for path := range m.StructTypes {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	for _, path := range paths {
		values.Add(metaStructType, path+":"+m.StructTypes[path])
	}

	return values.Encode()
}

// Validate checks m against the columns of td.
func (m Metadata) Validate(td *TableData) error {
	if m.AsMap && (m.SortAscBy != "" || m.SortDescBy != "") {
		return fmt.Errorf("as_map and sort_by are mutually exclusive")
	}

	if m.SortAscBy != "" && m.SortDescBy != "" {
		return fmt.Errorf("both sort_asc_by and sort_desc_by are set")
	}

	for _, field := range []string{m.SortAscBy, m.SortDescBy} {
		if field == "" {
			continue
		}

		col := slices.Index(td.FieldNames, field)
		if col == -1 {
			return fmt.Errorf("sort_by: field not found: %s", field)
		}

		typ := td.FieldTypes[col]
		if strings.Contains(field, arrayPrefix) || strings.HasPrefix(typ, arrayPrefix) {
			return fmt.Errorf("sort_by: field is an array: %s", field)
		}

		if typ == typeJSON || typ == typeBool {
			return fmt.Errorf("sort_by: field %s has unsortable type %s", field, typ)
		}
	}

	return nil
}
