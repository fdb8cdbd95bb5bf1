package region

import (
	"fmt"
	"slices"
	"strings"
)

// Merger carries protected-region bodies from an existing file into freshly
// generated text. A Merger is safe for concurrent use.
type Merger struct {
	matcher *Matcher
}

// NewMerger creates a Merger for the given marker syntax.
func NewMerger(markers MarkerSet) *Merger {
	return &Merger{matcher: NewMatcher(markers)}
}

// Result is the outcome of a merge.
type Result struct {
	Content []byte
	// Kept lists tags whose body came from the existing file.
	Kept []string
	// Dropped lists tags of the existing file that the fresh text no longer
	// has; their bodies are discarded.
	Dropped []string
}

// Merge returns fresh with every protected-region body replaced by the body
// of the same tag in old. A nil or empty old means there is no existing
// file and fresh is returned with markers normalized.
func (m *Merger) Merge(old, fresh []byte) ([]byte, error) {
	res, err := m.MergeReport(old, fresh)
	if err != nil {
		return nil, err
	}

	return res.Content, nil
}

// MergeReport is Merge that also reports which regions were kept or dropped.
func (m *Merger) MergeReport(old, fresh []byte) (*Result, error) {
	freshLines := splitLines(fresh)

	freshRegions, err := Scan(freshLines, m.matcher)
	if err != nil {
		return nil, fmt.Errorf("generated text: %w", err)
	}

	res := &Result{}
	preserved := make(map[string][]string)

	if len(old) > 0 {
		oldRegions, err := Scan(splitLines(old), m.matcher)
		if err != nil {
			return nil, fmt.Errorf("existing file: %w", err)
		}

		for _, r := range oldRegions {
			preserved[r.Tag] = r.Body
		}
	}

	current := m.matcher.Current()
	out := make([]string, 0, len(freshLines))
	prev := 0

	for _, r := range freshRegions {
		out = append(out, freshLines[prev:r.StartLine]...)
		out = append(out, r.Indent+current.Start(r.Tag)+lineEnding(freshLines[r.StartLine]))

		body := r.Body
		if b, ok := preserved[r.Tag]; ok {
			body = b
			res.Kept = append(res.Kept, r.Tag)
			delete(preserved, r.Tag)
		}

		out = append(out, body...)
		out = append(out, r.EndIndent+current.End(r.Tag)+lineEnding(freshLines[r.EndLine]))
		prev = r.EndLine + 1
	}

	out = append(out, freshLines[prev:]...)

	for tag := range preserved {
		res.Dropped = append(res.Dropped, tag)
	}

	slices.Sort(res.Dropped)

	res.Content = []byte(strings.Join(out, "\n"))

	return res, nil
}

func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r") {
		return "\r"
	}

	return ""
}
