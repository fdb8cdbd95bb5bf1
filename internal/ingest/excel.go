package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultExcelExtensions are read when ExcelSource.Extensions is empty.
var DefaultExcelExtensions = []string{"xlsx", "xlsm", "xlsb", "xls"}

// ExcelSource reads one table per worksheet of every workbook.
type ExcelSource struct {
	Directories []string
	Files       []string
	Extensions  []string
	// DebugSaveDir, when set, receives a CSV copy of every parsed sheet.
	DebugSaveDir string
}

// Read implements Source.
func (s *ExcelSource) Read(ctx context.Context) ([]*TableData, error) {
	exts := s.Extensions
	if len(exts) == 0 {
		exts = DefaultExcelExtensions
	}

	paths, err := walkFiles(s.Directories, s.Files, exts)
	if err != nil {
		return nil, err
	}

	return readFiles(ctx, paths, s.readWorkbook)
}

func (s *ExcelSource) readWorkbook(path string) ([]*TableData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var tables []*TableData

	for _, sheet := range f.GetSheetList() {
		if strings.HasPrefix(sheet, skipPrefix) {
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%s: sheet %s: %w", path, sheet, err)
		}

		td, err := ParseTableData(sheet, rows)
		if err != nil {
			err = fmt.Errorf("%s: %w", path, err)
		}

		tables, err = keep(tables, td, err)
		if err != nil {
			return nil, err
		}

		if s.DebugSaveDir != "" && td != nil {
			if err := td.SaveCSV(s.DebugSaveDir); err != nil {
				return nil, err
			}
		}
	}

	return tables, nil
}
