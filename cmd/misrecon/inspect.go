package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
)

func (a *app) inspectCmd() *cobra.Command {
	var preferred string

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "List the sheets and header columns of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[0])
			if err != nil {
				return err
			}

			got, err := a.svc.Inspect(cmd.Context(), up, preferred)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(got)
		},
	}

	cmd.Flags().StringVar(&preferred, "preferred", pipeline.FinalSheet, "sheet to report as present or missing")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip rules loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "misrecon %s (%s)\n", version, runtime.Version())
		},
	}
}
