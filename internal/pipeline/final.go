package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/loader"
	"github.com/MrJamesThe3rd/misrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

const (
	FinalSheet    = "Reconciliation by Date by Store"
	FinalStartRow = 3
)

var ErrTargetSheetNotFound = errors.New("reconciliation sheet not found")

type FinalResult struct {
	Sheets []dataset.Sheet
	// Target is the sheet that was reconciled.
	Target string
}

// Final reconciles the combine dataset into the Final MIS workbook. Only the
// target sheet changes; every other sheet is returned as read.
func (s *Service) Final(ctx context.Context, final Upload, combine *dataset.Dataset) (*FinalResult, error) {
	if combine == nil {
		return nil, fmt.Errorf("%w: process combine files first", ErrMissingPrerequisite)
	}

	columns, err := s.schema(ctx, rules.SchemaFinal)
	if err != nil {
		return nil, err
	}

	sheets, err := s.loader.LoadWorkbook(final.Data, final.Filename, FinalStartRow)
	if err != nil {
		return nil, err
	}

	for i := range sheets {
		sheets[i].Data = trimColumns(sheets[i].Data)
	}

	idx, err := targetSheet(sheets)
	if err != nil {
		return nil, err
	}

	opts := reconcile.DefaultOptions()
	opts.UpdateColumns = columns
	opts.StrictDates = s.strictDates

	merged, err := reconcile.Reconcile(sheets[idx].Data, trimColumns(combine), opts)
	if err != nil {
		return nil, err
	}

	sheets[idx].Data = merged

	for i := range sheets {
		sheets[i].Data = restoreDates(sheets[i].Data)
	}

	s.logger.InfoContext(ctx, "final processed", "stage", "final", "file", final.Filename, "sheet", sheets[idx].Name, "rows", merged.Len())

	return &FinalResult{Sheets: sheets, Target: sheets[idx].Name}, nil
}

// targetSheet picks the sheet named FinalSheet, else the first sheet with a
// store code column and a date column.
func targetSheet(sheets []dataset.Sheet) (int, error) {
	for i, s := range sheets {
		if s.Name == FinalSheet {
			return i, nil
		}
	}

	for i, s := range sheets {
		var store, date bool

		for _, c := range s.Data.Columns() {
			up := strings.ToUpper(c)
			store = store || (strings.Contains(up, "STORE") && strings.Contains(up, "CODE"))
			date = date || strings.Contains(up, "DATE")
		}

		if store && date {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: expected a sheet named %q", ErrTargetSheetNotFound, FinalSheet)
}

// restoreDates turns cells the loader read from date-formatted workbook cells
// back into dates so they are written as date cells. Other cells, numeric
// text included, keep their loaded value.
func restoreDates(ds *dataset.Dataset) *dataset.Dataset {
	for _, c := range ds.Columns() {
		ds = ds.Map(c, func(v dataset.Value) dataset.Value {
			if v.Kind() != dataset.KindText {
				return v
			}

			for _, layout := range []string{loader.DateLayout, loader.DateTimeLayout} {
				if t, err := time.Parse(layout, v.Text()); err == nil {
					return dataset.Date(t)
				}
			}

			return v
		})
	}

	return ds
}
