// Package reconcile merges a source dataset into a target dataset by store
// and date, overwriting only a whitelist of columns.
package reconcile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/resolve"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

var ErrKeyColumnsNotFound = errors.New("key columns not found")

// KeyColumnsError lists the columns seen when a store or date column could
// not be identified.
type KeyColumnsError struct {
	Target []string
	Source []string
}

func (e *KeyColumnsError) Error() string {
	return fmt.Sprintf("could not identify store/date columns; target columns: %v; source columns: %v", e.Target, e.Source)
}

func (e *KeyColumnsError) Unwrap() error {
	return ErrKeyColumnsNotFound
}

type Options struct {
	// StoreKeywords and DateKeywords are tried in order with resolve.FindFirst.
	StoreKeywords [][]string
	DateKeywords  [][]string

	// DefaultStore and DefaultDate are used when keyword resolution fails.
	DefaultStore string
	DefaultDate  string

	// UpdateColumns is the whitelist of columns copied from source to target.
	UpdateColumns []string

	// StrictDates keeps rows whose date does not parse out of matching
	// instead of matching them on the store code alone.
	StrictDates bool
}

func DefaultOptions() Options {
	return Options{
		StoreKeywords: [][]string{{"STORE", "CODE"}, {"STORE"}},
		DateKeywords:  [][]string{{"DATE"}},
		DefaultStore:  "Store Code",
		DefaultDate:   "Date",
		UpdateColumns: rules.FinalUpdateColumns(),
	}
}

// MatchKey joins a trimmed store code and a DD-MM-YYYY date. An unparsed
// date leaves the date part empty.
func MatchKey(store, date dataset.Value) string {
	d := ""
	if t, ok := date.Time(); ok {
		d = t.Format(dataset.DayMonthYear)
	}

	return strings.TrimSpace(store.Text()) + "_" + d
}

type keys struct {
	store, date string
}

func (o Options) resolve(ds *dataset.Dataset) (keys, bool) {
	cols := ds.Columns()

	store, ok := resolve.FindFirst(cols, o.StoreKeywords...)
	if !ok {
		store, ok = ds.Name(o.DefaultStore)
	}

	if !ok {
		return keys{}, false
	}

	date, ok := resolve.FindFirst(cols, o.DateKeywords...)
	if !ok {
		date, ok = ds.Name(o.DefaultDate)
	}

	if !ok {
		return keys{}, false
	}

	return keys{store: store, date: date}, true
}

// normalize trims the store column and parses the date column in place of
// their loaded values.
func normalize(ds *dataset.Dataset, k keys) *dataset.Dataset {
	return coerce.DateColumn(ds.Map(k.store, coerce.Trim), k.date)
}

// Reconcile returns target with every whitelisted column overwritten from
// the first source row sharing its match key, wherever that source value is
// not blank. Columns outside the whitelist are never touched. The output
// keeps the target's column order; whitelisted columns it lacks are appended
// in whitelist order, empty when source lacks them too.
func Reconcile(target, source *dataset.Dataset, opts Options) (*dataset.Dataset, error) {
	tk, tok := opts.resolve(target)
	sk, sok := opts.resolve(source)

	if !tok || !sok {
		return nil, &KeyColumnsError{Target: target.Columns(), Source: source.Columns()}
	}

	target = normalize(target, tk)
	source = normalize(source, sk)

	// First source row per key.
	first := make(map[string]int, source.Len())

	for i := range source.Len() {
		r := source.Row(i)
		if opts.StrictDates && r.Get(sk.date).IsNull() {
			continue
		}

		key := MatchKey(r.Get(sk.store), r.Get(sk.date))
		if _, seen := first[key]; !seen {
			first[key] = i
		}
	}

	var updates []string

	for _, c := range opts.UpdateColumns {
		if source.Has(c) && !slices.Contains(updates, c) {
			updates = append(updates, c)
		}
	}

	// Source-only columns come before columns neither side has.
	out := target
	for _, c := range updates {
		if !out.Has(c) {
			out = out.WithColumn(c, nil)
		}
	}

	for _, c := range opts.UpdateColumns {
		if !out.Has(c) {
			out = out.WithColumn(c, nil)
		}
	}

	for _, c := range updates {
		tvals, _ := out.Column(c)
		svals, _ := source.Column(c)

		for i := range out.Len() {
			r := target.Row(i)
			if opts.StrictDates && r.Get(tk.date).IsNull() {
				continue
			}

			j, ok := first[MatchKey(r.Get(tk.store), r.Get(tk.date))]
			if !ok || svals[j].IsBlank() {
				continue
			}

			tvals[i] = svals[j]
		}

		out = out.WithColumn(c, tvals)
	}

	return out, nil
}
