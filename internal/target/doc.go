// Package target describes the languages sheetgen emits.
//
// A Descriptor is pure data: how each value kind is spelled, how arrays,
// maps and structs are written, which base types tables derive from and
// which protected-region markers the target uses. Adding a target means
// adding a Descriptor and its templates; nothing else switches on the
// target name.
package target
