package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sidecarName maps "complex.go" to "complex.unformatted.go".
func sidecarName(filename string) string {
	ext := filepath.Ext(filename)

	return strings.TrimSuffix(filename, ext) + ".unformatted" + ext
}

// writeDebugUnformatted saves text that failed to format, led by a comment
// naming the formatter error, as a sidecar in dir. A blank dir disables it.
func writeDebugUnformatted(dir, filename string, content []byte, cause error) error {
	if dir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	var buf bytes.Buffer
	if cause != nil {
		for line := range strings.Lines(cause.Error()) {
			fmt.Fprintf(&buf, "// %s\n", strings.TrimRight(line, "\n"))
		}
	}

	buf.Write(content)

	return os.WriteFile(filepath.Join(dir, sidecarName(filename)), buf.Bytes(), filePerm)
}
