package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/misrecon/internal/bank"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
)

func (a *app) salesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sales FILE",
		Short: "Normalize a store sales report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[0])
			if err != nil {
				return err
			}

			ds, err := a.svc.Sales(cmd.Context(), up)
			if err != nil {
				return err
			}

			return a.write(cmd, pipeline.FilenameSales, dataset.Sheet{Name: pipeline.SheetSales, Data: ds})
		},
	}
}

func (a *app) advancesCmd() *cobra.Command {
	var salesPath string

	cmd := &cobra.Command{
		Use:   "advances FILE",
		Short: "Normalize an advances report, looking up values in processed sales",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[0])
			if err != nil {
				return err
			}

			var sales *dataset.Dataset
			if salesPath != "" {
				if sales, err = readPrevious(salesPath); err != nil {
					return err
				}
			}

			sheets, err := a.svc.Advances(cmd.Context(), up, sales)
			if err != nil {
				return err
			}

			return a.write(cmd, pipeline.FilenameAdvances, sheets...)
		},
	}

	cmd.Flags().StringVar(&salesPath, "sales", "", "processed sales workbook from the sales command")

	return cmd
}

func (a *app) bankingCmd() *cobra.Command {
	var (
		files    []string
		from, to []string
	)

	cmd := &cobra.Command{
		Use:   "banking --bank NAME=FILE...",
		Short: "Merge bank settlement exports into the banking schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			froms, err := pairs(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}

			tos, err := pairs(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			banks, err := pairs(files)
			if err != nil {
				return fmt.Errorf("--bank: %w", err)
			}

			inputs := make([]bank.Input, 0, len(banks))

			for _, b := range banks {
				up, err := readUpload(b.value)
				if err != nil {
					return err
				}

				inputs = append(inputs, bank.Input{
					BankName: b.key,
					Filename: up.Filename,
					Data:     up.Data,
					From:     lookup(froms, b.key),
					To:       lookup(tos, b.key),
				})
			}

			res, err := a.svc.Banking(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			for _, s := range res.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", s.BankName, s.Reason)
			}

			for _, f := range res.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %v\n", f.BankName, f.Err)
			}

			for _, w := range res.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}

			return a.write(cmd, pipeline.BankingFilename(res.Data), dataset.Sheet{Name: pipeline.SheetBanking, Data: res.Data})
		},
	}

	cmd.Flags().StringArrayVar(&files, "bank", nil, "bank export as NAME=FILE, repeatable")
	cmd.Flags().StringArrayVar(&from, "from", nil, "first credit date as NAME=DD-MM-YYYY")
	cmd.Flags().StringArrayVar(&to, "to", nil, "last credit date as NAME=DD-MM-YYYY")
	_ = cmd.MarkFlagRequired("bank")

	return cmd
}

func (a *app) combineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine FILE...",
		Short: "Stack MIS working sheets and add the store/date key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads, err := readUploads(args)
			if err != nil {
				return err
			}

			res, err := a.svc.Combine(cmd.Context(), uploads)
			if err != nil {
				return err
			}

			return a.write(cmd, pipeline.CombineFilename(res), dataset.Sheet{Name: pipeline.SheetCombine, Data: res.Data})
		},
	}
}

func (a *app) finalCmd() *cobra.Command {
	var (
		combinePath string
		combineMIS  []string
	)

	cmd := &cobra.Command{
		Use:   "final FILE",
		Short: "Update the Final MIS workbook from combined data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[0])
			if err != nil {
				return err
			}

			var combine *dataset.Dataset

			switch {
			case combinePath != "":
				if combine, err = readPrevious(combinePath); err != nil {
					return err
				}
			case len(combineMIS) > 0:
				uploads, err := readUploads(combineMIS)
				if err != nil {
					return err
				}

				res, err := a.svc.Combine(cmd.Context(), uploads)
				if err != nil {
					return err
				}

				combine = res.Data
			}

			res, err := a.svc.Final(cmd.Context(), up, combine)
			if err != nil {
				return err
			}

			return a.write(cmd, pipeline.FilenameFinal, res.Sheets...)
		},
	}

	cmd.Flags().StringVar(&combinePath, "combine", "", "combined workbook from the combine command")
	cmd.Flags().StringArrayVar(&combineMIS, "combine-mis", nil, "MIS working files to combine first, repeatable")
	cmd.MarkFlagsMutuallyExclusive("combine", "combine-mis")

	return cmd
}

type pair struct {
	key, value string
}

func pairs(raw []string) ([]pair, error) {
	out := make([]pair, 0, len(raw))

	for _, r := range raw {
		k, v, ok := strings.Cut(r, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)

		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("%q is not NAME=VALUE", r)
		}

		out = append(out, pair{key: k, value: v})
	}

	return out, nil
}

func lookup(ps []pair, key string) string {
	for _, p := range ps {
		if strings.EqualFold(p.key, key) {
			return p.value
		}
	}

	return ""
}
