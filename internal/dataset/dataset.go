// Package dataset holds the tabular model passed between loading, mapping and
// reconciliation. Every transforming method returns a new Dataset; the
// receiver is never modified, so a Dataset can be shared between requests.
package dataset

import (
	"errors"
	"slices"
	"strings"
)

// ErrEmptyResult is returned when a stage has no rows left to produce.
var ErrEmptyResult = errors.New("empty result")

type Dataset struct {
	columns []string
	rows    [][]Value
}

// Sheet is a named dataset, as read from or written to a workbook.
type Sheet struct {
	Name string
	Data *Dataset
}

func New(columns ...string) *Dataset {
	return &Dataset{columns: slices.Clone(columns)}
}

// FromRecords builds a text dataset. Records are padded or truncated to the
// header width and empty cells become Null.
func FromRecords(header []string, records [][]string) *Dataset {
	ds := New(header...)
	ds.rows = make([][]Value, 0, len(records))

	for _, rec := range records {
		row := make([]Value, len(header))
		for i := range row {
			if i < len(rec) && rec[i] != "" {
				row[i] = Text(rec[i])
			}
		}

		ds.rows = append(ds.rows, row)
	}

	return ds
}

// Append adds a row while the dataset is being built. Rows shorter than the
// header are padded with Null; longer rows are truncated.
func (d *Dataset) Append(values ...Value) {
	row := make([]Value, len(d.columns))
	copy(row, values)
	d.rows = append(d.rows, row)
}

func (d *Dataset) Columns() []string {
	return slices.Clone(d.columns)
}

func (d *Dataset) Width() int {
	return len(d.columns)
}

func (d *Dataset) Len() int {
	return len(d.rows)
}

// Index returns the position of the named column: an exact match first, then
// the first case-insensitive one. It returns -1 when absent.
func (d *Dataset) Index(name string) int {
	if i := slices.Index(d.columns, name); i >= 0 {
		return i
	}

	for i, c := range d.columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}

	return -1
}

func (d *Dataset) Has(name string) bool {
	return d.Index(name) >= 0
}

// Name returns the stored spelling of a column looked up case-insensitively.
func (d *Dataset) Name(name string) (string, bool) {
	i := d.Index(name)
	if i < 0 {
		return "", false
	}

	return d.columns[i], true
}

func (d *Dataset) At(row, col int) Value {
	return d.rows[row][col]
}

func (d *Dataset) Get(row int, name string) Value {
	i := d.Index(name)
	if i < 0 {
		return Null()
	}

	return d.rows[row][i]
}

func (d *Dataset) Row(i int) Row {
	return Row{ds: d, i: i}
}

// Column returns a copy of the named column's values.
func (d *Dataset) Column(name string) ([]Value, bool) {
	idx := d.Index(name)
	if idx < 0 {
		return nil, false
	}

	out := make([]Value, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[idx]
	}

	return out, true
}

func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		columns: slices.Clone(d.columns),
		rows:    make([][]Value, len(d.rows)),
	}

	for i, row := range d.rows {
		out.rows[i] = slices.Clone(row)
	}

	return out
}

// RenameColumns maps every column name through fn.
func (d *Dataset) RenameColumns(fn func(string) string) *Dataset {
	out := d.Clone()
	for i, c := range out.columns {
		out.columns[i] = fn(c)
	}

	return out
}

// Rename relabels columns whose exact name is a key of m. Renaming can leave
// duplicate labels behind; DedupColumns removes them.
func (d *Dataset) Rename(m map[string]string) *Dataset {
	return d.RenameColumns(func(c string) string {
		if to, ok := m[c]; ok {
			return to
		}

		return c
	})
}

// Reindex returns a dataset with exactly the given columns in the given
// order. Columns the receiver does not have are filled with Null.
func (d *Dataset) Reindex(columns []string) *Dataset {
	src := make([]int, len(columns))
	for i, c := range columns {
		src[i] = d.Index(c)
	}

	out := &Dataset{
		columns: slices.Clone(columns),
		rows:    make([][]Value, len(d.rows)),
	}

	for r, row := range d.rows {
		nr := make([]Value, len(columns))
		for i, s := range src {
			if s >= 0 {
				nr[i] = row[s]
			}
		}

		out.rows[r] = nr
	}

	return out
}

// Select is Reindex with exact, case-sensitive name matching.
func (d *Dataset) Select(columns []string) *Dataset {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = slices.Index(d.columns, c)
	}

	out := &Dataset{
		columns: slices.Clone(columns),
		rows:    make([][]Value, len(d.rows)),
	}

	for r, row := range d.rows {
		nr := make([]Value, len(columns))
		for i, s := range idx {
			if s >= 0 {
				nr[i] = row[s]
			}
		}

		out.rows[r] = nr
	}

	return out
}

// DedupColumns keeps the first occurrence of every column label.
func (d *Dataset) DedupColumns() *Dataset {
	seen := make(map[string]struct{}, len(d.columns))
	keep := make([]int, 0, len(d.columns))

	for i, c := range d.columns {
		if _, ok := seen[c]; ok {
			continue
		}

		seen[c] = struct{}{}
		keep = append(keep, i)
	}

	return d.pick(keep)
}

// Limit keeps at most n leading columns.
func (d *Dataset) Limit(n int) *Dataset {
	if n >= len(d.columns) {
		return d.Clone()
	}

	keep := make([]int, n)
	for i := range keep {
		keep[i] = i
	}

	return d.pick(keep)
}

func (d *Dataset) Drop(names ...string) *Dataset {
	keep := make([]int, 0, len(d.columns))

	for i, c := range d.columns {
		drop := false

		for _, n := range names {
			if strings.EqualFold(c, n) {
				drop = true
				break
			}
		}

		if !drop {
			keep = append(keep, i)
		}
	}

	return d.pick(keep)
}

func (d *Dataset) pick(idx []int) *Dataset {
	out := &Dataset{
		columns: make([]string, len(idx)),
		rows:    make([][]Value, len(d.rows)),
	}

	for i, s := range idx {
		out.columns[i] = d.columns[s]
	}

	for r, row := range d.rows {
		nr := make([]Value, len(idx))
		for i, s := range idx {
			nr[i] = row[s]
		}

		out.rows[r] = nr
	}

	return out
}

// WithColumn replaces the named column's values, or appends the column when
// it does not exist. values must have one entry per row.
func (d *Dataset) WithColumn(name string, values []Value) *Dataset {
	out := d.Clone()

	idx := out.Index(name)
	if idx < 0 {
		out.columns = append(out.columns, name)
		idx = len(out.columns) - 1

		for r := range out.rows {
			out.rows[r] = append(out.rows[r], Null())
		}
	}

	for r := range out.rows {
		if r < len(values) {
			out.rows[r][idx] = values[r]
		} else {
			out.rows[r][idx] = Null()
		}
	}

	return out
}

// Fill sets every row of the named column to v, appending the column if needed.
func (d *Dataset) Fill(name string, v Value) *Dataset {
	values := make([]Value, len(d.rows))
	for i := range values {
		values[i] = v
	}

	return d.WithColumn(name, values)
}

// Map applies fn to every cell of the named column. Absent columns are a no-op.
func (d *Dataset) Map(name string, fn func(Value) Value) *Dataset {
	idx := d.Index(name)
	if idx < 0 {
		return d.Clone()
	}

	out := d.Clone()
	for _, row := range out.rows {
		row[idx] = fn(row[idx])
	}

	return out
}

func (d *Dataset) Filter(keep func(Row) bool) *Dataset {
	out := &Dataset{columns: slices.Clone(d.columns)}

	for i, row := range d.rows {
		if keep(Row{ds: d, i: i}) {
			out.rows = append(out.rows, slices.Clone(row))
		}
	}

	return out
}

// Concat stacks datasets vertically. The result has the union of their
// columns in order of first appearance; missing cells are Null.
func Concat(parts ...*Dataset) *Dataset {
	var columns []string

	for _, p := range parts {
		for _, c := range p.columns {
			if !slices.Contains(columns, c) {
				columns = append(columns, c)
			}
		}
	}

	out := New(columns...)
	for _, p := range parts {
		out.rows = append(out.rows, p.Reindex(columns).rows...)
	}

	return out
}

// Row is a read-only view of one dataset row.
type Row struct {
	ds *Dataset
	i  int
}

func (r Row) Index() int {
	return r.i
}

func (r Row) Get(name string) Value {
	return r.ds.Get(r.i, name)
}

func (r Row) Values() []Value {
	return slices.Clone(r.ds.rows[r.i])
}
