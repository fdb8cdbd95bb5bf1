// Package pipeline runs sheetgen end to end: it collects table data,
// writes data files, resolves one type model per tag set and renders,
// merges and writes the generated sources of every configured target.
//
// Schema errors and unknown targets stop a run before anything is
// written. Failures of a single output unit (formatting, malformed
// protected regions, I/O) are recorded as diagnostics while independent
// units still complete.
package pipeline
