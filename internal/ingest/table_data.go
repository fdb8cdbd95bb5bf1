package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	fieldNameRow = 0
	fieldTypeRow = 1
	fieldTagRow  = 2
	dataStartRow = 3

	// indexCol holds the row identity.
	indexCol = 0

	skipPrefix = "#"
)

// ErrSkipTable reports a sheet that is deliberately excluded.
var ErrSkipTable = errors.New("skip table")

// TableData is one sheet after header parsing. Skipped columns are
// removed; every data row has exactly len(FieldNames) cells.
type TableData struct {
	Name       string
	FieldNames []string
	FieldTypes []string
	// FieldTags lists the tags of each column. The index column carries
	// none and is always selected.
	FieldTags [][]string
	Metadata  Metadata
	DataRows  [][]string
}

// ParseTableData parses the raw rows of the sheet tableName.
func ParseTableData(tableName string, rows [][]string) (*TableData, error) {
	if strings.HasPrefix(tableName, skipPrefix) {
		return nil, ErrSkipTable
	}

	if len(rows) == 0 {
		return nil, ErrSkipTable
	}

	if len(rows) < dataStartRow {
		return nil, fmt.Errorf("table %s: expected %d header rows, got %d", tableName, dataStartRow, len(rows))
	}

	header := rows[fieldNameRow]
	td := &TableData{Name: tableName}

	var keep []int

	for col, fieldName := range header {
		fieldName = strings.TrimSpace(fieldName)
		if fieldName == "" || strings.HasPrefix(fieldName, skipPrefix) {
			continue
		}

		keep = append(keep, col)
		td.FieldNames = append(td.FieldNames, fieldName)
		td.FieldTypes = append(td.FieldTypes, strings.TrimSpace(cell(rows[fieldTypeRow], col)))

		if len(keep) == 1 {
			td.FieldTags = append(td.FieldTags, nil)
		} else {
			td.FieldTags = append(td.FieldTags, splitList(cell(rows[fieldTagRow], col)))
		}
	}

	if len(keep) == 0 || keep[0] != indexCol {
		return nil, fmt.Errorf("table %s: first column must be the index field", tableName)
	}

	if err := td.checkIndexField(); err != nil {
		return nil, err
	}

	meta, err := ParseMetadata(cell(rows[fieldTagRow], indexCol))
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", tableName, err)
	}

	if err := meta.Validate(td); err != nil {
		return nil, fmt.Errorf("table %s: %w", tableName, err)
	}

	td.Metadata = meta

	for _, row := range rows[dataStartRow:] {
		id := strings.TrimSpace(cell(row, indexCol))
		if id == "" || strings.HasPrefix(id, skipPrefix) {
			continue
		}

		data := make([]string, len(keep))
		for i, col := range keep {
			data[i] = cell(row, col)
		}

		data[indexCol] = id
		td.DataRows = append(td.DataRows, data)
	}

	return td, nil
}

func (td *TableData) checkIndexField() error {
	name, typ := td.FieldNames[indexCol], td.FieldTypes[indexCol]
	if strings.ContainsAny(name, ".[") {
		return fmt.Errorf("table %s: invalid index field %q", td.Name, name)
	}

	switch typ {
	case typeInt, typeLong, typeString:
		return nil
	default:
		return fmt.Errorf("table %s: index field %s has type %q (want int, long or string)", td.Name, name, typ)
	}
}

// SaveCSV writes the parsed header rows and data rows to
// <rootDir>/<name>.csv.
func (td *TableData) SaveCSV(rootDir string) error {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", rootDir, err)
	}

	path := filepath.Join(rootDir, td.Name+".csv")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	tags := make([]string, len(td.FieldNames))
	tags[indexCol] = td.Metadata.Encode()

	for i := 1; i < len(tags); i++ {
		tags[i] = strings.Join(td.FieldTags[i], ",")
	}

	rows := append([][]string{td.FieldNames, td.FieldTypes, tags}, td.DataRows...)
	if err := csv.NewWriter(f).WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// cell returns row[col], or "" past the end of a ragged row.
func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}

	return ""
}

// splitList splits a comma separated cell, dropping blanks.
func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
