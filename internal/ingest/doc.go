// Package ingest reads tabular sheets (CSV files, Excel workbooks) and
// turns them into schema definitions for the type model and into
// JSON-shaped data values.
//
// A sheet starts with three header rows: field names, field types and
// field tags. Cell A3 holds an optional metadata query instead of tags,
// e.g. "as_map=true&struct_type=Rewards:Reward". Data rows follow.
//
// Field names nest with dots ("Reward.Amount"). A "[]" prefix on a name
// segment makes it a multi-line array: consecutive rows with the same
// identity append elements to it. A "[]" prefix on a type makes a cell
// array whose elements are comma separated in one cell. Sheets, columns
// and rows whose name or identity starts with "#" are skipped.
package ingest
