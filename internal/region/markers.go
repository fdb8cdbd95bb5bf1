package region

import (
	"regexp"
	"strings"
)

// MarkerStyle is one spelling of protected-region markers. A start marker
// line reads Open + Namespace + ":" + TAG + "_START" + Close, with optional
// whitespace around the comment delimiters.
type MarkerStyle struct {
	// Open is the comment opener, e.g. "//" or "/*".
	Open string
	// Close is the comment closer of block comments, empty for line comments.
	Close string
	// Namespace identifies the generator, e.g. "SHEETGEN".
	Namespace string
	// FoldCase matches namespace, tag and suffix case-insensitively; tags
	// read this way are upper-cased.
	FoldCase bool
}

// Start renders the start marker for tag.
func (s MarkerStyle) Start(tag string) string {
	return s.render(tag, "START")
}

// End renders the end marker for tag.
func (s MarkerStyle) End(tag string) string {
	return s.render(tag, "END")
}

func (s MarkerStyle) render(tag, suffix string) string {
	line := s.Open + s.Namespace + ":" + tag + "_" + suffix
	if s.Close != "" {
		line = s.Open + " " + s.Namespace + ":" + tag + "_" + suffix + " " + s.Close
	}

	return line
}

func (s MarkerStyle) pattern() *regexp.Regexp {
	var sb strings.Builder

	if s.FoldCase {
		sb.WriteString("(?i)")
	}

	sb.WriteString(`^\s*`)
	sb.WriteString(regexp.QuoteMeta(s.Open))
	sb.WriteString(`\s*`)
	sb.WriteString(regexp.QuoteMeta(s.Namespace))
	sb.WriteString(`:(\w+)_(START|END)\s*`)

	if s.Close != "" {
		sb.WriteString(regexp.QuoteMeta(s.Close))
		sb.WriteString(`\s*`)
	}

	sb.WriteString(`$`)

	return regexp.MustCompile(sb.String())
}

// MarkerSet is the marker syntax of a target: the style written today and
// the styles earlier generator versions wrote, which are still read.
type MarkerSet struct {
	Current MarkerStyle
	Legacy  []MarkerStyle
}

// Matcher recognizes marker lines of any style in a MarkerSet.
type Matcher struct {
	current MarkerStyle
	styles  []MarkerStyle
	res     []*regexp.Regexp
}

// NewMatcher compiles the patterns of every style in set.
func NewMatcher(set MarkerSet) *Matcher {
	m := &Matcher{current: set.Current}

	for _, s := range append([]MarkerStyle{set.Current}, set.Legacy...) {
		m.styles = append(m.styles, s)
		m.res = append(m.res, s.pattern())
	}

	return m
}

// Match reports whether line is a marker line and returns its tag and
// whether it starts a region.
func (m *Matcher) Match(line string) (tag string, start, ok bool) {
	for i, re := range m.res {
		sub := re.FindStringSubmatch(line)
		if sub == nil {
			continue
		}

		tag = sub[1]
		if m.styles[i].FoldCase {
			tag = strings.ToUpper(tag)
		}

		return tag, strings.EqualFold(sub[2], "START"), true
	}

	return "", false, false
}

// Current returns the style marker lines are written in.
func (m *Matcher) Current() MarkerStyle {
	return m.current
}
