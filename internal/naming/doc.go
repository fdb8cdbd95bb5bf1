// Package naming derives identifiers for generated code from sheet and
// field names, and ranks "did you mean" suggestions for unknown names.
//
// Key functions:
//   - Pascal: sheet/field name to an exported type name
//   - Singular: element type names for array fields
//   - TagName: protected-region tag stem for a type
//   - Suggest: closest known names by normalized edit distance
package naming
