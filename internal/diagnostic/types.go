package diagnostic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Diagnostic codes.
const (
	CodeConfig          = "CONFIG"
	CodeSchema          = "SCHEMA"
	CodeUnknownTarget   = "UNKNOWN_TARGET"
	CodeMalformedRegion = "MALFORMED_REGION"
	CodeRender          = "RENDER"
	CodeWrite           = "WRITE"
	CodeSource          = "SOURCE"
	CodeDroppedRegion   = "DROPPED_REGION"
	CodeStale           = "STALE"
)

// Diagnostics holds all diagnostic information from a run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Unit identifies the output unit this relates to (if any), e.g.
	// "go: sheet complex".
	Unit string
	// Path is the file this relates to (if any).
	Path string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, unit, path string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  message,
		Unit:     unit,
		Path:     path,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, unit, path string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Unit:     unit,
		Path:     path,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, unit, path string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Unit:     unit,
		Path:     path,
	})
}

// Add appends a prepared diagnostic according to its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Sort orders every severity by unit, then path, then code, so that
// diagnostics collected from parallel work read the same on every run.
func (d *Diagnostics) Sort() {
	for _, list := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i], list[j]
			if a.Unit != b.Unit {
				return a.Unit < b.Unit
			}

			if a.Path != b.Path {
				return a.Path < b.Path
			}

			return a.Code < b.Code
		})
	}
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Unit != "" {
		prefix = append(prefix, "["+d.Unit+"]")
	}

	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
