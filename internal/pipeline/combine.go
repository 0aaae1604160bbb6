package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/misrecon/internal/resolve"
)

const (
	CombineSheet    = "MIS Working"
	CombineStartRow = 3

	// KeyColumn holds the store/date match key appended to combine output.
	KeyColumn = "CK"

	// MaxCombineColumns keeps output within spreadsheet columns A..CK.
	MaxCombineColumns = 89
)

// Thresholds for the column heuristics, as fractions of non-null cells.
const (
	nameDateMinParsed    = 0.3
	contentDateMinParsed = 0.5
	contentDateMaxNumber = 0.8
	numericMinParsed     = 0.6
)

// CombineResult is the stacked Combine MIS plus the key columns detected in it.
type CombineResult struct {
	Data        *dataset.Dataset
	StoreColumn string
	DateColumn  string
}

// Combine stacks the MIS Working sheets of the uploads, parses the date
// column, appends the CK match key and converts numeric-looking columns.
func (s *Service) Combine(ctx context.Context, uploads []Upload) (*CombineResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoInput
	}

	parts := make([]*dataset.Dataset, 0, len(uploads))

	for _, up := range uploads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ds, err := s.loader.Load(up.Data, up.Filename, CombineSheet, CombineStartRow)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", up.Filename, err)
		}

		s.logger.InfoContext(ctx, "file loaded", loadAttrs("combine", up, ds)...)

		parts = append(parts, trimColumns(ds))
	}

	ds := dataset.Concat(parts...)
	cols := ds.Columns()

	store, hasStore := resolve.FindFirst(cols, []string{"STORE", "CODE"}, []string{"STORE"})
	date, hasDate := detectDateColumn(ds)

	if hasDate {
		ds = coerce.DateColumn(ds, date)
	}

	ck := make([]dataset.Value, ds.Len())
	if hasStore && hasDate {
		for i := range ck {
			r := ds.Row(i)
			ck[i] = dataset.Text(reconcile.MatchKey(r.Get(store), r.Get(date)))
		}
	}

	ds = ds.Drop(KeyColumn).Limit(MaxCombineColumns-1).WithColumn(KeyColumn, ck)

	for _, c := range ds.Columns() {
		if c == KeyColumn || (hasDate && c == date) || (hasStore && c == store) {
			continue
		}

		if strings.EqualFold(strings.TrimSpace(c), "remarks") {
			continue
		}

		ds = numericColumn(ds, c)
	}

	res := &CombineResult{Data: ds}
	if hasStore {
		res.StoreColumn = store
	}

	if hasDate {
		res.DateColumn = date
	}

	s.logger.InfoContext(ctx, "combine processed", "stage", "combine", "rows", ds.Len(), "store_column", res.StoreColumn, "date_column", res.DateColumn)

	return res, nil
}

// detectDateColumn prefers a column named like a date whose values mostly
// parse, then the column whose content parses as dates most often without
// being dominantly numeric.
func detectDateColumn(ds *dataset.Dataset) (string, bool) {
	if name, ok := resolve.FindFirst(ds.Columns(), []string{"DATE"}, []string{"BILL", "DATE"}); ok {
		vals, _ := ds.Column(name)
		if frac(vals, isDate) >= nameDateMinParsed {
			return name, true
		}
	}

	best, bestFrac := "", 0.0

	for _, c := range ds.Columns() {
		up := strings.ToUpper(c)
		if strings.Contains(up, "STORE") && strings.Contains(up, "CODE") {
			continue
		}

		vals, _ := ds.Column(c)

		df := frac(vals, isDate)
		if df > bestFrac && df >= contentDateMinParsed && frac(vals, isLooseNumber) < contentDateMaxNumber {
			best, bestFrac = c, df
		}
	}

	return best, best != ""
}

// numericColumn converts the column when enough of its cells parse as
// numbers once currency symbols and labels are stripped.
func numericColumn(ds *dataset.Dataset, name string) *dataset.Dataset {
	vals, _ := ds.Column(name)
	if frac(vals, isLooseNumber) < numericMinParsed {
		return ds
	}

	return ds.Map(name, func(v dataset.Value) dataset.Value {
		if v.Kind() == dataset.KindNumber {
			return v
		}

		d, ok := coerce.ParseLooseNumber(v.Text())
		if !ok {
			return dataset.Null()
		}

		return dataset.Number(d)
	})
}

// frac returns the share of non-null values satisfying pred; zero for an
// all-null column.
func frac(vals []dataset.Value, pred func(dataset.Value) bool) float64 {
	var total, hits int

	for _, v := range vals {
		if v.IsNull() {
			continue
		}

		total++

		if pred(v) {
			hits++
		}
	}

	if total == 0 {
		return 0
	}

	return float64(hits) / float64(total)
}

func isDate(v dataset.Value) bool {
	return !coerce.Date(v).IsNull()
}

func isLooseNumber(v dataset.Value) bool {
	if v.Kind() == dataset.KindNumber {
		return true
	}

	_, ok := coerce.ParseLooseNumber(v.Text())

	return ok
}

// trimColumns strips surrounding spaces from column names; names that
// collide afterwards keep their first column.
func trimColumns(ds *dataset.Dataset) *dataset.Dataset {
	return ds.RenameColumns(strings.TrimSpace).DedupColumns()
}
