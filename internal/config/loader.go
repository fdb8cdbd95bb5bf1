package config

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sheetgen/internal/diagnostic"
	"sheetgen/internal/ingest"
)

var defaultExcelExtensions = StringList(ingest.DefaultExcelExtensions)

// LoadFile loads, parses and validates the configuration at path. Relative
// paths inside it are resolved against the file's directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Resolve(filepath.Dir(path))

	return cfg, nil
}

// Parse parses YAML data into a Config, applies defaults and validates
// the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if diags := Validate(&cfg); diags.HasErrors() {
		return nil, diags.Error()
	}

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	for i := range cfg.Datasources {
		if x := cfg.Datasources[i].Excel; x != nil && len(x.Extensions) == 0 {
			x.Extensions = append(StringList(nil), defaultExcelExtensions...)
		}
	}

	for i := range cfg.Outputs {
		o := &cfg.Outputs[i]
		if o.JSON != nil && o.JSON.RootDir == "" {
			o.JSON.RootDir = "."
		}

		if o.Bin != nil && o.Bin.RootDir == "" {
			o.Bin.RootDir = "."
		}
	}

	for i := range cfg.Codegens {
		g := &cfg.Codegens[i]

		if g.Target == "" {
			switch {
			case g.Go != nil && g.UE5 == nil:
				g.Target = "go"
			case g.UE5 != nil && g.Go == nil:
				g.Target = "ue5"
			}
		}

		if g.RootDir == "" {
			g.RootDir = "."
		}

		if g.Target == "go" {
			if g.Go == nil {
				g.Go = &GoOptions{}
			}

			if g.Go.PackageName == "" {
				g.Go.PackageName = packageNameFor(g.RootDir)
			}
		}

		if g.Target == "ue5" && g.UE5 == nil {
			g.UE5 = &UE5Options{}
		}
	}
}

// packageNameFor derives a Go package name from the output directory.
func packageNameFor(dir string) string {
	name := filepath.Base(filepath.Clean(dir))
	if token.IsIdentifier(name) && !token.IsKeyword(name) {
		return name
	}

	return "table"
}

// Validate checks the structure of a configuration. Every error names the
// offending entry, e.g. "codegens[1]".
func Validate(cfg *Config) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if len(cfg.Datasources) == 0 {
		res.AddError(diagnostic.CodeConfig, "no datasources configured", "", "datasources")
	}

	for i, d := range cfg.Datasources {
		at := fmt.Sprintf("datasources[%d]", i)

		kinds := 0
		if d.CSV != nil {
			kinds++
			if len(d.CSV.Directories)+len(d.CSV.Files) == 0 {
				res.AddError(diagnostic.CodeConfig, "csv: no directories or files", "", at)
			}
		}

		if d.Excel != nil {
			kinds++
			if len(d.Excel.Directories)+len(d.Excel.Files) == 0 {
				res.AddError(diagnostic.CodeConfig, "excel: no directories or files", "", at)
			}
		}

		if kinds != 1 {
			res.AddError(diagnostic.CodeConfig,
				fmt.Sprintf("expected exactly one datasource kind (csv, excel), got %d", kinds), "", at)
		}
	}

	for i, o := range cfg.Outputs {
		kinds := 0
		if o.JSON != nil {
			kinds++
		}

		if o.Bin != nil {
			kinds++
		}

		if kinds != 1 {
			res.AddError(diagnostic.CodeConfig,
				fmt.Sprintf("expected exactly one output kind (json, bin), got %d", kinds), "", fmt.Sprintf("outputs[%d]", i))
		}
	}

	for i := range cfg.Codegens {
		validateCodegen(res, fmt.Sprintf("codegens[%d]", i), &cfg.Codegens[i])
	}

	return res
}

func validateCodegen(res *diagnostic.Diagnostics, at string, g *Codegen) {
	if g.Target == "" {
		res.AddError(diagnostic.CodeConfig, "target is required", "", at)
	}

	if !g.Mode.Valid() {
		res.AddError(diagnostic.CodeConfig, "mode is required (strict or lenient)", "", at)
	}

	if g.Go != nil && g.Target != "go" {
		res.AddError(diagnostic.CodeConfig, fmt.Sprintf("go options set for target %q", g.Target), "", at)
	}

	if g.UE5 != nil && g.Target != "ue5" {
		res.AddError(diagnostic.CodeConfig, fmt.Sprintf("ue5 options set for target %q", g.Target), "", at)
	}

	if g.Go != nil && !token.IsIdentifier(g.Go.PackageName) {
		res.AddError(diagnostic.CodeConfig, fmt.Sprintf("invalid package name %q", g.Go.PackageName), "", at)
	}
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
