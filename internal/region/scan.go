package region

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedProtectedRegion reports unbalanced, nested or duplicated
// protected-region markers.
var ErrMalformedProtectedRegion = errors.New("malformed protected region")

// MalformedError locates a marker problem. Line is 1-based.
type MalformedError struct {
	Tag    string
	Line   int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: tag %s at line %d: %s", ErrMalformedProtectedRegion, e.Tag, e.Line, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedProtectedRegion
}

// Region is one protected region found in a file. Line indices are 0-based.
type Region struct {
	Tag       string
	StartLine int
	EndLine   int
	// Indent and EndIndent are the leading whitespace of the marker lines.
	Indent    string
	EndIndent string
	// Body holds the lines strictly between the markers, verbatim.
	Body []string
}

// Scan finds every protected region in lines. Regions may not nest and a
// tag may appear at most once.
func Scan(lines []string, m *Matcher) ([]Region, error) {
	var (
		regions []Region
		open    *Region
	)

	seen := make(map[string]int)

	for i, line := range lines {
		tag, start, ok := m.Match(line)
		if !ok {
			if open != nil {
				open.Body = append(open.Body, line)
			}

			continue
		}

		if start {
			if open != nil {
				return nil, &MalformedError{Tag: tag, Line: i + 1, Reason: "start marker inside region " + open.Tag}
			}

			if first, dup := seen[tag]; dup {
				return nil, &MalformedError{Tag: tag, Line: i + 1, Reason: fmt.Sprintf("duplicate tag, first at line %d", first)}
			}

			open = &Region{Tag: tag, StartLine: i, Indent: leadingSpace(line)}

			continue
		}

		if open == nil {
			return nil, &MalformedError{Tag: tag, Line: i + 1, Reason: "end marker without start"}
		}

		if open.Tag != tag {
			return nil, &MalformedError{Tag: tag, Line: i + 1, Reason: "end marker inside region " + open.Tag}
		}

		open.EndLine = i
		open.EndIndent = leadingSpace(line)
		regions = append(regions, *open)
		seen[tag] = open.StartLine + 1
		open = nil
	}

	if open != nil {
		return nil, &MalformedError{Tag: open.Tag, Line: open.StartLine + 1, Reason: "start marker without end"}
	}

	return regions, nil
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func splitLines(b []byte) []string {
	return strings.Split(string(b), "\n")
}
