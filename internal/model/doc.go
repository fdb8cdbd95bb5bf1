// Package model provides the target-independent type model of a sheet
// schema: sheets, their row structs, fields and value types.
//
// A Builder accumulates sheet and struct definitions supplied by the
// ingestion front-end and Resolve turns them into a read-only Model:
//   - textual field types are resolved to ValueTypes
//   - anonymous nested structs are named after their owner and field
//   - struct containment is checked for cycles (fail closed)
//   - row identity (ID or map key) is validated per sheet
package model
