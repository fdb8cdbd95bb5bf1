package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"sheetgen/internal/target"
)

// Config is the root of a sheetgen configuration file.
type Config struct {
	Datasources []Datasource `yaml:"datasources"`
	Outputs     []Output     `yaml:"outputs,omitempty"`
	Codegens    []Codegen    `yaml:"codegens,omitempty"`
}

// When restricts an entry to runs whose environment and command arguments
// match. An entry without When always applies.
type When struct {
	Env  map[string]string `yaml:"env,omitempty"`
	Args StringList        `yaml:"args,omitempty"`
}

// Match reports whether every listed variable has the given value and
// every listed argument was passed.
func (w *When) Match(args []string) bool {
	if w == nil {
		return true
	}

	for key, value := range w.Env {
		if os.Getenv(key) != value {
			return false
		}
	}

	for _, arg := range w.Args {
		if !slices.Contains(args, arg) {
			return false
		}
	}

	return true
}

// Datasource is a table data source. Exactly one kind must be set.
type Datasource struct {
	When  *When        `yaml:"when,omitempty"`
	CSV   *CSVSource   `yaml:"csv,omitempty"`
	Excel *ExcelSource `yaml:"excel,omitempty"`
}

// CSVSource reads one table per .csv file.
type CSVSource struct {
	Directories StringList `yaml:"directories,omitempty"`
	Files       StringList `yaml:"files,omitempty"`
}

// ExcelSource reads one table per worksheet.
type ExcelSource struct {
	Directories StringList `yaml:"directories,omitempty"`
	Files       StringList `yaml:"files,omitempty"`
	Extensions  StringList `yaml:"extensions,omitempty"`
	// DebugSaveDir, when set, receives a CSV copy of every worksheet read.
	DebugSaveDir string `yaml:"debug_save_dir,omitempty"`
}

// Output writes table data files. Exactly one kind must be set.
type Output struct {
	When *When       `yaml:"when,omitempty"`
	Tags StringList  `yaml:"tags,omitempty"`
	JSON *JSONOutput `yaml:"json,omitempty"`
	Bin  *BinOutput  `yaml:"bin,omitempty"`
}

// JSONOutput writes <root_dir>/<sheet>.json.
type JSONOutput struct {
	RootDir string `yaml:"root_dir"`
	Indent  string `yaml:"indent,omitempty"`
}

// BinOutput writes <root_dir>/<sheet>.bin: a big-endian uint32 length
// followed by compact JSON.
type BinOutput struct {
	RootDir string `yaml:"root_dir"`
}

// Codegen generates source files for one target.
type Codegen struct {
	When    *When       `yaml:"when,omitempty"`
	Tags    StringList  `yaml:"tags,omitempty"`
	Target  string      `yaml:"target"`
	RootDir string      `yaml:"root_dir"`
	Mode    target.Mode `yaml:"mode"`
	// Prune deletes generated files that the current run no longer
	// produces.
	Prune bool        `yaml:"prune,omitempty"`
	Go    *GoOptions  `yaml:"go,omitempty"`
	UE5   *UE5Options `yaml:"ue5,omitempty"`
}

// GoOptions are the options of the go target.
type GoOptions struct {
	PackageName   string `yaml:"package_name,omitempty"`
	RuntimeImport string `yaml:"runtime_import,omitempty"`
	Singleton     bool   `yaml:"singleton,omitempty"`
	Context       bool   `yaml:"context,omitempty"`
}

// UE5Options are the options of the ue5 target.
type UE5Options struct {
	Prefix string `yaml:"prefix,omitempty"`
}

// Filter returns a copy of c keeping only the entries whose When matches.
func (c *Config) Filter(args []string) *Config {
	out := &Config{}

	for _, d := range c.Datasources {
		if d.When.Match(args) {
			out.Datasources = append(out.Datasources, d)
		}
	}

	for _, o := range c.Outputs {
		if o.When.Match(args) {
			out.Outputs = append(out.Outputs, o)
		}
	}

	for _, g := range c.Codegens {
		if g.When.Match(args) {
			out.Codegens = append(out.Codegens, g)
		}
	}

	return out
}

// SplitArgs splits the --args flag value into arguments.
func SplitArgs(s string) []string {
	return strings.Fields(s)
}

// Resolve makes every relative path in c relative to baseDir.
func (c *Config) Resolve(baseDir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}

		return filepath.Join(baseDir, p)
	}

	absAll := func(list StringList) {
		for i := range list {
			list[i] = abs(list[i])
		}
	}

	for i := range c.Datasources {
		d := &c.Datasources[i]
		if d.CSV != nil {
			absAll(d.CSV.Directories)
			absAll(d.CSV.Files)
		}

		if d.Excel != nil {
			absAll(d.Excel.Directories)
			absAll(d.Excel.Files)
			d.Excel.DebugSaveDir = abs(d.Excel.DebugSaveDir)
		}
	}

	for i := range c.Outputs {
		o := &c.Outputs[i]
		if o.JSON != nil {
			o.JSON.RootDir = abs(o.JSON.RootDir)
		}

		if o.Bin != nil {
			o.Bin.RootDir = abs(o.Bin.RootDir)
		}
	}

	for i := range c.Codegens {
		c.Codegens[i].RootDir = abs(c.Codegens[i].RootDir)
	}
}
