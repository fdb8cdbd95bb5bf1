// Package gen renders a resolved model into source files for a target.
//
// Generation uses text/template with per-target templates embedded from
// templates/<target>/, the sprig function map, and the target's formatter
// (go/format for Go). Output is split into units (base types, one per named
// struct, one per sheet, the registry) that render independently, so the
// pipeline can run them in parallel.
//
// Writer merges rendered files with what is on disk: protected-region
// bodies of existing files survive regeneration.
package gen
