// Package config loads the sheetgen YAML configuration: where table data
// comes from, which data files are written and which source files are
// generated for which targets.
package config
