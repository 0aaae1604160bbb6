package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
	"github.com/MrJamesThe3rd/misrecon/internal/workbook"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	rulesFile   string
	strictDates bool
	verbose     bool
	outDir      string

	svc *pipeline.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "misrecon",
		Short:         "Reconcile store sales, advances and bank settlements into MIS workbooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.rulesFile, "rules", "", "YAML rules file (built-in defaults when empty)")
	flags.BoolVar(&a.strictDates, "strict-dates", false, "leave rows with unparsed dates out of final reconciliation")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log pipeline details")
	flags.StringVarP(&a.outDir, "out-dir", "d", ".", "directory for output workbooks")

	root.AddCommand(
		a.salesCmd(),
		a.advancesCmd(),
		a.bankingCmd(),
		a.combineCmd(),
		a.finalCmd(),
		a.inspectCmd(),
		versionCmd(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	set := rules.Defaults()
	if a.rulesFile != "" {
		var err error
		if set, err = rules.LoadFile(a.rulesFile); err != nil {
			return err
		}
	}

	a.svc = pipeline.NewService(rules.NewStatic(set), logger, pipeline.WithStrictDates(a.strictDates))

	return nil
}

func readUpload(path string) (pipeline.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Upload{}, fmt.Errorf("reading input: %w", err)
	}

	return pipeline.Upload{Filename: filepath.Base(path), Data: data}, nil
}

func readUploads(paths []string) ([]pipeline.Upload, error) {
	out := make([]pipeline.Upload, 0, len(paths))

	for _, p := range paths {
		up, err := readUpload(p)
		if err != nil {
			return nil, err
		}

		out = append(out, up)
	}

	return out, nil
}

// readPrevious loads the first sheet of a workbook written by an earlier
// command.
func readPrevious(path string) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading previous output: %w", err)
	}

	sheets, err := workbook.Read(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}

	if len(sheets) == 0 {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), workbook.ErrNoSheets)
	}

	return sheets[0].Data, nil
}

func (a *app) write(cmd *cobra.Command, filename string, sheets ...dataset.Sheet) error {
	path, err := workbook.WriteFile(a.outDir, filename, sheets...)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)

	return nil
}
