// Package main provides the CLI entrypoint for sheetgen.
//
// sheetgen reads tabular sheets (CSV, Excel), writes their data as JSON or
// length-prefixed binary files and generates typed loaders for Go and
// Unreal Engine 5. Hand-written code inside protected regions of the
// generated files survives regeneration.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sheetgen/internal/config"
	"sheetgen/internal/diagnostic"
	"sheetgen/internal/pipeline"
)

var (
	configPath  string
	commandArgs string
	debugDir    string
	parallelism int
)

func main() {
	log.SetFlags(0)

	rootCmd := &cobra.Command{
		Use:           "sheetgen",
		Short:         "Generate data files and typed loaders from spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGen,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "sheetgen.yaml", "Config file path")
	flags.StringVar(&commandArgs, "args", "", "Space separated arguments matched by 'when.args' filters")
	flags.StringVar(&debugDir, "debug-dir", "", "Directory for unformatted sources that fail to format")
	flags.IntVarP(&parallelism, "parallel", "p", 0, "Maximum concurrent units (default: number of CPUs)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "gen",
			Short: "Write data files and generated sources",
			Args:  cobra.NoArgs,
			RunE:  runGen,
		},
		&cobra.Command{
			Use:   "check",
			Short: "Report generated sources that are out of date without writing",
			Args:  cobra.NoArgs,
			RunE:  runCheck,
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Regenerate whenever the config or a source sheet changes",
			Args:  cobra.NoArgs,
			RunE:  runWatch,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("sheetgen: %v", err)
		stop()
		os.Exit(1)
	}
}

func options() pipeline.Options {
	return pipeline.Options{
		Parallelism: parallelism,
		DebugDir:    debugDir,
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	return cfg.Filter(config.SplitArgs(commandArgs)), nil
}

func runGen(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), cfg, options())
	report(res)

	return err
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := pipeline.Check(cmd.Context(), cfg, options())
	report(res)

	if err != nil {
		return err
	}

	if len(res.Stale) > 0 {
		return fmt.Errorf("%d generated files are out of date", len(res.Stale))
	}

	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	opts := options()
	opts.OnRun = func(res *pipeline.Result, _ error) { report(res) }

	return pipeline.Watch(cmd.Context(), configPath, config.SplitArgs(commandArgs), opts)
}

// report prints warnings and infos; errors are returned to the caller.
func report(res *pipeline.Result) {
	if res == nil {
		return
	}

	for _, list := range [][]diagnostic.Diagnostic{res.Diagnostics.Warnings, res.Diagnostics.Infos} {
		for _, d := range list {
			log.Printf("sheetgen: %s: %s", d.Severity, d)
		}
	}

	for _, name := range res.Pruned {
		log.Printf("sheetgen: removed %s", name)
	}
}
