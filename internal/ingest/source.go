package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Source reads the tables of one configured datasource.
type Source interface {
	Read(ctx context.Context) ([]*TableData, error)
}

// Collect reads every source in parallel and returns all tables sorted by
// name. Two tables with the same name are an error.
func Collect(ctx context.Context, sources ...Source) ([]*TableData, error) {
	var (
		mu     sync.Mutex
		tables []*TableData
	)

	g, ctx := errgroup.WithContext(ctx)

	for _, src := range sources {
		g.Go(func() error {
			got, err := src.Read(ctx)
			if err != nil {
				return err
			}

			mu.Lock()
			tables = append(tables, got...)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(tables, func(a, b *TableData) int { return strings.Compare(a.Name, b.Name) })

	for i := 1; i < len(tables); i++ {
		if tables[i].Name == tables[i-1].Name {
			return nil, fmt.Errorf("table %s is defined by more than one source", tables[i].Name)
		}
	}

	return tables, nil
}

// readFiles parses every path in parallel with parse and gathers the
// resulting tables. Tables reporting ErrSkipTable are dropped.
func readFiles(ctx context.Context, paths []string, parse func(path string) ([]*TableData, error)) ([]*TableData, error) {
	var (
		mu     sync.Mutex
		tables []*TableData
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			got, err := parse(path)
			if err != nil {
				return err
			}

			mu.Lock()
			tables = append(tables, got...)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tables, nil
}

// walkFiles lists the files under dirs plus the explicit files whose
// extension is in exts. Files whose base name starts with "#" are
// skipped. The result is sorted and free of duplicates.
func walkFiles(dirs, files, exts []string) ([]string, error) {
	match := func(path string) bool {
		if strings.HasPrefix(filepath.Base(path), skipPrefix) {
			return false
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")

		return slices.ContainsFunc(exts, func(e string) bool { return strings.EqualFold(e, ext) })
	}

	var out []string

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != dir && strings.HasPrefix(d.Name(), skipPrefix) {
					return filepath.SkipDir
				}

				return nil
			}

			if match(path) {
				out = append(out, path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
		}
	}

	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if match(path) {
			out = append(out, path)
		}
	}

	slices.Sort(out)

	return slices.Compact(out), nil
}

// tableName derives a table name from a file path.
func tableName(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// keep appends td unless err is ErrSkipTable.
func keep(tables []*TableData, td *TableData, err error) ([]*TableData, error) {
	if errors.Is(err, ErrSkipTable) {
		return tables, nil
	}

	if err != nil {
		return nil, err
	}

	return append(tables, td), nil
}
