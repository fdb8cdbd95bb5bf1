package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sheetgen/internal/config"
	"sheetgen/internal/diagnostic"
	"sheetgen/internal/gen"
	"sheetgen/internal/ingest"
	"sheetgen/internal/model"
	"sheetgen/internal/output"
	"sheetgen/internal/region"
	"sheetgen/internal/target"
)

// Options tune a run.
type Options struct {
	// Parallelism bounds concurrent work; zero means GOMAXPROCS.
	Parallelism int
	// DebugDir receives the unformatted text of sources that fail to
	// format.
	DebugDir string
	// Logf reports progress. Nil means log.Printf.
	Logf func(format string, args ...any)
	// Debounce delays a watch-triggered run after the last change. Zero
	// means 300ms.
	Debounce time.Duration
	// OnRun is called after every run started by Watch.
	OnRun func(*Result, error)
}

func (o *Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)

		return
	}

	log.Printf(format, args...)
}

func (o *Options) limit() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}

	return runtime.GOMAXPROCS(0)
}

// Result summarizes a run.
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	Tables      int
	// Written lists the paths of files whose content changed.
	Written []string
	// Unchanged counts generated files already up to date.
	Unchanged int
	// Stale lists, in check mode, the paths that a run would rewrite.
	Stale []string
	// Pruned lists removed stale generated files.
	Pruned []string

	mu sync.Mutex
}

func (r *Result) record(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn()
}

// job is one configured codegen ready to render.
type job struct {
	name    string
	codegen *config.Codegen
	model   *model.Model
	gen     *gen.Generator
	writer  *gen.Writer
	units   []gen.Unit
	// files collects the emitted file names, guarded by Result.mu.
	files map[string]bool
}

// Run generates every configured output and codegen.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	return run(ctx, cfg, opts, false)
}

// Check renders and merges everything in memory and reports the
// generated files that are out of date. Nothing is written.
func Check(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	return run(ctx, cfg, opts, true)
}

func run(ctx context.Context, cfg *config.Config, opts Options, dryRun bool) (*Result, error) {
	res := &Result{Diagnostics: &diagnostic.Diagnostics{}}

	tables, err := ingest.Collect(ctx, Sources(cfg)...)
	if err != nil {
		res.Diagnostics.AddError(diagnostic.CodeSource, err.Error(), "", "")

		return res, fmt.Errorf("collecting tables: %w", err)
	}

	res.Tables = len(tables)

	jobs := plan(cfg, tables, opts, res.Diagnostics)
	if res.Diagnostics.HasErrors() {
		return res, res.Diagnostics.Error()
	}

	if !dryRun {
		writeOutputs(ctx, cfg, tables, opts, res)
	}

	failed := render(ctx, jobs, opts, dryRun, res)

	if !dryRun {
		for _, j := range jobs {
			if j.codegen.Prune && !failed[j.name] {
				prune(j, res)
			}
		}
	}

	res.Diagnostics.Sort()
	slices.Sort(res.Written)
	slices.Sort(res.Stale)

	if err := ctx.Err(); err != nil {
		return res, err
	}

	if dryRun {
		opts.logf("sheetgen: %d tables, %d files out of date", res.Tables, len(res.Stale))
	} else {
		opts.logf("sheetgen: %d tables, %d files written, %d unchanged", res.Tables, len(res.Written), res.Unchanged)
	}

	return res, res.Diagnostics.Error()
}

// plan resolves the models and generators of every codegen. Errors are
// recorded in diags; callers must not write anything when it has errors.
func plan(cfg *config.Config, tables []*ingest.TableData, opts Options, diags *diagnostic.Diagnostics) []*job {
	models := make(map[string]*model.Model)
	writers := make(map[string]*gen.Writer)

	var jobs []*job

	for i := range cfg.Codegens {
		c := &cfg.Codegens[i]
		name := fmt.Sprintf("codegens[%d] %s", i, c.Target)

		d, err := target.Lookup(c.Target)
		if err != nil {
			diag := diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticError,
				Code:     diagnostic.CodeUnknownTarget,
				Message:  err.Error(),
				Unit:     name,
			}

			var unknown *target.UnknownTargetError
			if errors.As(err, &unknown) {
				diag.Message = fmt.Sprintf("%s %q", target.ErrUnknownTarget, unknown.Name)
				diag.Suggestions = unknown.Suggestions
			}

			diags.Add(diag)

			continue
		}

		key := tagKey(c.Tags)

		m, ok := models[key]
		if !ok {
			m, err = buildModel(tables, c.Tags)
			if err != nil {
				diags.AddError(diagnostic.CodeSchema, err.Error(), name, "")

				continue
			}

			models[key] = m
		}

		g, err := gen.NewGenerator(generatorConfig(c, opts), d)
		if err != nil {
			diags.AddError(diagnostic.CodeRender, err.Error(), name, "")

			continue
		}

		units, err := g.Units(m)
		if err != nil {
			diags.AddError(diagnostic.CodeSchema, err.Error(), name, "")

			continue
		}

		w, ok := writers[d.Name]
		if !ok {
			w = gen.NewWriter(d.Markers)
			writers[d.Name] = w
		}

		jobs = append(jobs, &job{
			name:    name,
			codegen: c,
			model:   m,
			gen:     g,
			writer:  w,
			units:   units,
			files:   make(map[string]bool),
		})
	}

	return jobs
}

// buildModel resolves the schema of the columns selected by tags.
func buildModel(tables []*ingest.TableData, tags []string) (*model.Model, error) {
	b := model.NewBuilder()

	for _, td := range tables {
		def, err := td.Schema(tags)
		if err != nil {
			return nil, err
		}

		if _, err := b.AddSheet(def); err != nil {
			return nil, err
		}
	}

	return b.Resolve()
}

func tagKey(tags []string) string {
	sorted := slices.Clone(tags)
	slices.Sort(sorted)

	return strings.Join(slices.Compact(sorted), ",")
}

func generatorConfig(c *config.Codegen, opts Options) gen.GeneratorConfig {
	gc := gen.DefaultGeneratorConfig()
	gc.Mode = c.Mode
	gc.DebugDir = opts.DebugDir

	if c.Go != nil {
		gc.PackageName = c.Go.PackageName
		gc.Singleton = c.Go.Singleton
		gc.Context = c.Go.Context

		if c.Go.RuntimeImport != "" {
			gc.RuntimeImport = c.Go.RuntimeImport
		}
	}

	if c.UE5 != nil {
		gc.Prefix = c.UE5.Prefix
	}

	return gc
}

// render renders and writes every unit of every job in parallel. It
// returns the names of jobs with at least one failed unit.
func render(ctx context.Context, jobs []*job, opts Options, dryRun bool, res *Result) map[string]bool {
	var g errgroup.Group
	g.SetLimit(opts.limit())

	failed := make(map[string]bool)

	fail := func(j *job, code, msg, path string) {
		res.record(func() {
			res.Diagnostics.AddError(code, msg, j.name, path)
			failed[j.name] = true
		})
	}

	for _, j := range jobs {
		for _, u := range j.units {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}

				unit := j.name + ": " + u.String()

				files, err := j.gen.Render(j.model, u)
				if err != nil {
					fail(j, diagnostic.CodeRender, fmt.Sprintf("%s: %v", u, err), "")

					return nil
				}

				for _, f := range files {
					res.record(func() { j.files[f.Filename] = true })
					emit(j, unit, f, dryRun, res, fail)
				}

				return nil
			})
		}
	}

	_ = g.Wait()

	return failed
}

// emit merges one file with its existing version and writes it.
func emit(j *job, unit string, f gen.GeneratedFile, dryRun bool, res *Result, fail func(*job, string, string, string)) {
	write := j.writer.WriteFile
	if dryRun {
		write = j.writer.Check
	}

	wr, err := write(j.codegen.RootDir, f)
	if err != nil {
		code := diagnostic.CodeWrite
		if errors.Is(err, region.ErrMalformedProtectedRegion) {
			code = diagnostic.CodeMalformedRegion
		}

		fail(j, code, fmt.Sprintf("%s: %v", unit, err), f.Filename)

		return
	}

	res.record(func() {
		for _, tag := range wr.Dropped {
			res.Diagnostics.AddWarning(diagnostic.CodeDroppedRegion,
				fmt.Sprintf("protected region %s no longer exists and was dropped", tag), j.name, wr.Path)
		}

		switch {
		case !wr.Changed:
			res.Unchanged++
		case dryRun:
			res.Stale = append(res.Stale, wr.Path)
			res.Diagnostics.AddInfo(diagnostic.CodeStale, "file is out of date", j.name, wr.Path)
		default:
			res.Written = append(res.Written, wr.Path)
		}
	})
}

// prune removes generated files the job no longer produces.
func prune(j *job, res *Result) {
	removed, err := gen.Prune(j.codegen.RootDir, j.gen.Target().FileExt, j.files)
	if err != nil {
		res.Diagnostics.AddError(diagnostic.CodeWrite, fmt.Sprintf("pruning: %v", err), j.name, j.codegen.RootDir)
	}

	res.Pruned = append(res.Pruned, removed...)
}

// writeOutputs writes the data files of every output.
func writeOutputs(ctx context.Context, cfg *config.Config, tables []*ingest.TableData, opts Options, res *Result) {
	var g errgroup.Group
	g.SetLimit(opts.limit())

	for i := range cfg.Outputs {
		o := &cfg.Outputs[i]
		w, name := outputWriter(o)
		unit := fmt.Sprintf("outputs[%d] %s", i, name)

		for _, td := range tables {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}

				code, err := writeTable(w, td, o.Tags)
				if err != nil {
					res.record(func() {
						res.Diagnostics.AddError(code, err.Error(), unit, td.Name)
					})
				}

				return nil
			})
		}
	}

	_ = g.Wait()
}

func writeTable(w output.Writer, td *ingest.TableData, tags []string) (string, error) {
	fields, err := td.Fields(tags)
	if err != nil {
		return diagnostic.CodeSource, err
	}

	value, err := td.Marshal(fields)
	if err != nil {
		return diagnostic.CodeSource, err
	}

	if err := w.Write(td.Name, value); err != nil {
		return diagnostic.CodeWrite, err
	}

	return "", nil
}

func outputWriter(o *config.Output) (output.Writer, string) {
	if o.Bin != nil {
		return &output.BinWriter{RootDir: o.Bin.RootDir}, "bin"
	}

	return &output.JSONWriter{RootDir: o.JSON.RootDir, Indent: o.JSON.Indent}, "json"
}

// Sources converts the configured datasources.
func Sources(cfg *config.Config) []ingest.Source {
	sources := make([]ingest.Source, 0, len(cfg.Datasources))

	for _, d := range cfg.Datasources {
		switch {
		case d.CSV != nil:
			sources = append(sources, &ingest.CSVSource{
				Directories: d.CSV.Directories,
				Files:       d.CSV.Files,
			})
		case d.Excel != nil:
			sources = append(sources, &ingest.ExcelSource{
				Directories:  d.Excel.Directories,
				Files:        d.Excel.Files,
				Extensions:   d.Excel.Extensions,
				DebugSaveDir: d.Excel.DebugSaveDir,
			})
		}
	}

	return sources
}
