package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// CSVSource reads one table per .csv file.
type CSVSource struct {
	Directories []string
	Files       []string
}

// Read implements Source.
func (s *CSVSource) Read(ctx context.Context) ([]*TableData, error) {
	paths, err := walkFiles(s.Directories, s.Files, []string{"csv"})
	if err != nil {
		return nil, err
	}

	return readFiles(ctx, paths, readCSV)
}

func readCSV(path string) ([]*TableData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	td, err := ParseTableData(tableName(path), rows)

	return keep(nil, td, err)
}
