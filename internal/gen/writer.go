package gen

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sheetgen/internal/region"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// generatedHeader starts every file the generator emits; Prune only
// removes files that carry it.
const generatedHeader = "// Code generated by sheetgen."

// Writer merges generated files into output directories. Writes to the same
// path are serialized; a Writer is safe for concurrent use.
type Writer struct {
	merger *region.Merger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWriter creates a Writer reading protected regions in markers.
func NewWriter(markers region.MarkerSet) *Writer {
	return &Writer{
		merger: region.NewMerger(markers),
		locks:  make(map[string]*sync.Mutex),
	}
}

// WriteResult describes one written file.
type WriteResult struct {
	Path    string
	Changed bool
	// Kept and Dropped list protected-region tags taken over from the
	// existing file and discarded with it.
	Kept    []string
	Dropped []string
}

// WriteFile merges file with the existing file in dir and writes the result
// when it differs. The directory is created if needed.
func (w *Writer) WriteFile(dir string, file GeneratedFile) (*WriteResult, error) {
	path := filepath.Join(dir, file.Filename)

	unlock := w.lock(path)
	defer unlock()

	res, content, err := w.merge(path, file)
	if err != nil {
		return nil, err
	}

	if !res.Changed {
		return res, nil
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(path, content, filePerm); err != nil {
		return nil, fmt.Errorf("writing file %s: %w", file.Filename, err)
	}

	return res, nil
}

// Check reports what WriteFile would do without writing.
func (w *Writer) Check(dir string, file GeneratedFile) (*WriteResult, error) {
	path := filepath.Join(dir, file.Filename)

	unlock := w.lock(path)
	defer unlock()

	res, _, err := w.merge(path, file)

	return res, err
}

// WriteFiles writes all generated files to the output directory, stopping
// at the first error.
func (w *Writer) WriteFiles(files []GeneratedFile, outputDir string) error {
	for _, file := range files {
		if _, err := w.WriteFile(outputDir, file); err != nil {
			return err
		}
	}

	return nil
}

// merge returns the result and the merged content for path.
func (w *Writer) merge(path string, file GeneratedFile) (*WriteResult, []byte, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	res := &WriteResult{Path: path}
	content := file.Content

	if file.Regions {
		merged, err := w.merger.MergeReport(existing, file.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("merging %s: %w", path, err)
		}

		content = merged.Content
		res.Kept = merged.Kept
		res.Dropped = merged.Dropped
	}

	res.Changed = existing == nil || !bytes.Equal(existing, content)

	return res, content, nil
}

func (w *Writer) lock(path string) func() {
	w.mu.Lock()

	l, ok := w.locks[path]
	if !ok {
		l = &sync.Mutex{}
		w.locks[path] = l
	}

	w.mu.Unlock()

	l.Lock()

	return l.Unlock
}

// Prune deletes files in dir with extension ext that the generator wrote
// earlier but that are not in keep. Files without the generated header are
// left alone.
func Prune(dir, ext string, keep map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	var removed []string

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ext || keep[name] || strings.Contains(name, ".unformatted.") {
			continue
		}

		path := filepath.Join(dir, name)

		generated, err := hasGeneratedHeader(path)
		if err != nil {
			return removed, err
		}

		if !generated {
			continue
		}

		if err := os.Remove(path); err != nil {
			return removed, err
		}

		removed = append(removed, name)
	}

	return removed, nil
}

func hasGeneratedHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	return strings.HasPrefix(line, generatedHeader), nil
}
