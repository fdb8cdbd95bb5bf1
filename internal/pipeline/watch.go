package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"sheetgen/internal/config"
	"sheetgen/internal/ingest"
)

const defaultDebounce = 300 * time.Millisecond

// Watch runs once, then again whenever the configuration file or a
// source file changes, until ctx is done. The configuration is reloaded
// before every run; a configuration that fails to load keeps the
// previous one in effect.
func Watch(ctx context.Context, configPath string, args []string, opts Options) error {
	configPath, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}

	load := func() (*config.Config, error) {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}

		return cfg.Filter(args), nil
	}

	cfg, err := load()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchPaths(watcher, configPath, cfg); err != nil {
		return err
	}

	runOnce := func() {
		res, err := Run(ctx, cfg, opts)
		if err != nil {
			opts.logf("sheetgen: run failed: %v", err)
		}

		if opts.OnRun != nil {
			opts.OnRun(res, err)
		}
	}

	runOnce()

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	var (
		trigger = make(chan struct{}, 1)
		timer   *time.Timer
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) && underSource(event.Name, cfg) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						opts.logf("sheetgen: watch %s: %v", event.Name, err)
					}
				}
			}

			if !relevant(event, configPath, cfg) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.logf("sheetgen: watch error: %v", err)

		case <-trigger:
			if next, err := load(); err != nil {
				opts.logf("sheetgen: reloading config: %v", err)
			} else {
				cfg = next
				if err := watchPaths(watcher, configPath, cfg); err != nil {
					opts.logf("sheetgen: %v", err)
				}
			}

			runOnce()
		}
	}
}

// watchPaths watches the directory of the configuration file and every
// datasource location.
func watchPaths(w *fsnotify.Watcher, configPath string, cfg *config.Config) error {
	if err := w.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("watching %s: %w", configPath, err)
	}

	for _, d := range cfg.Datasources {
		var dirs, files []string

		switch {
		case d.CSV != nil:
			dirs, files = d.CSV.Directories, d.CSV.Files
		case d.Excel != nil:
			dirs, files = d.Excel.Directories, d.Excel.Files
		}

		for _, dir := range dirs {
			if err := addTree(w, dir); err != nil {
				return err
			}
		}

		for _, f := range files {
			if err := w.Add(filepath.Dir(f)); err != nil {
				return fmt.Errorf("watching %s: %w", f, err)
			}
		}
	}

	return nil
}

// addTree watches root and every directory below it. fsnotify watches
// are not recursive.
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}

		return nil
	})
}

// underSource reports whether path lies inside a datasource directory.
func underSource(path string, cfg *config.Config) bool {
	for _, d := range cfg.Datasources {
		var dirs []string

		switch {
		case d.CSV != nil:
			dirs = d.CSV.Directories
		case d.Excel != nil:
			dirs = d.Excel.Directories
		}

		for _, dir := range dirs {
			if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
				return true
			}
		}
	}

	return false
}

// relevant reports whether event touches the configuration or a file a
// datasource would read.
func relevant(event fsnotify.Event, configPath string, cfg *config.Config) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if event.Name == configPath {
		return true
	}

	if strings.HasPrefix(filepath.Base(event.Name), "#") || strings.HasPrefix(filepath.Base(event.Name), "~$") {
		return false
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(event.Name), "."))

	for _, d := range cfg.Datasources {
		switch {
		case d.CSV != nil && ext == "csv":
			return true
		case d.Excel != nil:
			exts := []string(d.Excel.Extensions)
			if len(exts) == 0 {
				exts = ingest.DefaultExcelExtensions
			}

			if slices.Contains(exts, ext) {
				return true
			}
		}
	}

	return false
}
