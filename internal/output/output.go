// Package output writes marshalled sheet values as data files.
package output

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Writer stores the value of one sheet.
type Writer interface {
	Write(name string, value any) error
}

// JSONWriter writes <RootDir>/<name>.json. An empty Indent writes compact
// JSON.
type JSONWriter struct {
	RootDir string
	Indent  string
}

// Write implements Writer.
func (w *JSONWriter) Write(name string, value any) error {
	var (
		data []byte
		err  error
	)

	if w.Indent == "" {
		data, err = json.Marshal(value)
	} else {
		data, err = json.MarshalIndent(value, "", w.Indent)
	}

	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	return writeFile(w.RootDir, name+".json", data)
}

// BinWriter writes <RootDir>/<name>.bin: the length of the compact JSON
// encoding as a big-endian uint32, followed by the JSON itself.
type BinWriter struct {
	RootDir string
}

// Write implements Writer.
func (w *BinWriter) Write(name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	buf := make([]byte, 4, 4+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))

	return writeFile(w.RootDir, name+".bin", append(buf, data...))
}

// ReadBin decodes a file written by BinWriter.
func ReadBin(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(data) < 4 {
		return nil, fmt.Errorf("%s: truncated header", path)
	}

	n := binary.BigEndian.Uint32(data)
	if int(n) != len(data)-4 {
		return nil, fmt.Errorf("%s: length %d does not match payload of %d bytes", path, n, len(data)-4)
	}

	var v any
	if err := json.Unmarshal(data[4:], &v); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return v, nil
}

func writeFile(dir, name string, data []byte) error {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
