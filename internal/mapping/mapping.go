// Package mapping renames and reshapes a loaded dataset into a canonical
// schema according to a rules.MappingRule.
package mapping

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

var ErrMissingConfiguration = errors.New("missing configuration")

// DefaultStripToken is removed from StripColumns when a rule names no token.
const DefaultStripToken = "BP"

type Stage string

const (
	StageReindex Stage = "reindex"
	StageCopy    Stage = "copy"
	StageExclude Stage = "exclude"
	StageDates   Stage = "dates"
	StageLookup  Stage = "lookup"
)

// StageError reports which step of Apply failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("mapping %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, format string, args ...any) error {
	return &StageError{Stage: stage, Err: fmt.Errorf(format, args...)}
}

// Apply maps ds onto columns, the canonical schema, and runs the rule's side
// rules. The result always has exactly the canonical columns in order. ds is
// not modified.
func Apply(ds *dataset.Dataset, rule *rules.MappingRule, columns []string) (*dataset.Dataset, error) {
	if rule == nil {
		return nil, fmt.Errorf("%w: mapping rule", ErrMissingConfiguration)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: canonical columns for %s", ErrMissingConfiguration, rule.Name)
	}

	if dup := firstDuplicate(columns); dup != "" {
		return nil, stageErr(StageReindex, "canonical column %q listed twice", dup)
	}

	src := Normalize(ds)

	out := Rename(src, rule.Mappings, columns).Select(columns)

	for _, c := range rule.TrimColumns {
		out = out.Map(c, coerce.Trim)
	}

	out, err := applyCopy(src, out, rule.Copy, columns)
	if err != nil {
		return nil, err
	}

	out = Strip(out, rule.StripColumns, rule.StripToken)

	out, err = exclude(out, rule.ExcludeColumn, rule.ExcludePrefixes)
	if err != nil {
		return nil, err
	}

	out, err = coerceDates(out, rule.DateColumns, rule.DateLayout)
	if err != nil {
		return nil, err
	}

	for _, c := range rule.NumericColumns {
		out = coerce.NumberColumn(out, c)
	}

	return out.Reindex(columns), nil
}

// Normalize trims and upper-cases column names. When two names collide the
// first column is kept.
func Normalize(ds *dataset.Dataset) *dataset.Dataset {
	return ds.RenameColumns(func(c string) string {
		return strings.ToUpper(strings.TrimSpace(c))
	}).DedupColumns()
}

// Rename relabels normalized source columns with their canonical names. A
// canonical column's source is mappings[canonical], or the canonical name
// itself, upper-cased. When two canonical columns claim one source column the
// later one takes it.
func Rename(src *dataset.Dataset, mappings map[string]string, columns []string) *dataset.Dataset {
	have := src.Columns()
	plan := make(map[string]string, len(columns))

	for _, c := range columns {
		raw := c
		if m := strings.TrimSpace(mappings[c]); m != "" {
			raw = m
		}

		raw = strings.ToUpper(raw)
		if slices.Contains(have, raw) {
			plan[raw] = c
		}
	}

	return src.Rename(plan).DedupColumns()
}

// applyCopy writes the raw source column into both canonical slots of the
// copy rule. Without a raw source column it falls back to copying the
// canonical source slot into the destination.
func applyCopy(src, out *dataset.Dataset, rule *rules.CopyRule, columns []string) (*dataset.Dataset, error) {
	if rule == nil {
		return out, nil
	}

	if strings.TrimSpace(rule.Source) == "" || strings.TrimSpace(rule.Dest) == "" {
		return nil, stageErr(StageCopy, "copy rule needs both source and destination")
	}

	if raw := strings.ToUpper(rule.Source); slices.Contains(src.Columns(), raw) {
		vals, _ := src.Column(raw)

		for _, slot := range []string{rule.Source, rule.Dest} {
			if slices.Contains(columns, slot) {
				out = out.WithColumn(slot, vals)
			}
		}

		return out, nil
	}

	if vals, ok := out.Column(rule.Source); ok && slices.Contains(columns, rule.Dest) {
		out = out.WithColumn(rule.Dest, vals)
	}

	return out, nil
}

// Strip removes every case-insensitive occurrence of token from the text of
// the named columns and trims what is left. Null stays Null.
func Strip(ds *dataset.Dataset, columns []string, token string) *dataset.Dataset {
	if token == "" {
		token = DefaultStripToken
	}

	for _, c := range columns {
		ds = ds.Map(strings.TrimSpace(c), func(v dataset.Value) dataset.Value {
			if v.Kind() != dataset.KindText {
				return v
			}

			return dataset.Text(strings.TrimSpace(removeFold(v.Text(), token)))
		})
	}

	return ds
}

func removeFold(s, token string) string {
	upper := strings.ToUpper(s)
	tok := strings.ToUpper(token)

	// Upper-casing can change byte lengths outside ASCII; fall back to a
	// plain replace then.
	if len(upper) != len(s) {
		return strings.ReplaceAll(s, token, "")
	}

	var b strings.Builder

	for i := 0; i < len(s); {
		if strings.HasPrefix(upper[i:], tok) {
			i += len(tok)
			continue
		}

		b.WriteByte(s[i])
		i++
	}

	return b.String()
}

func exclude(ds *dataset.Dataset, column string, prefixes []string) (*dataset.Dataset, error) {
	var active []string

	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			active = append(active, p)
		}
	}

	if len(active) == 0 {
		return ds, nil
	}

	if strings.TrimSpace(column) == "" {
		return nil, stageErr(StageExclude, "exclusion prefixes %v given without a column", active)
	}

	name, ok := ds.Name(column)
	if !ok {
		return ds, nil
	}

	return ds.Filter(func(r dataset.Row) bool {
		text := r.Get(name).Text()
		for _, p := range active {
			if strings.HasPrefix(text, p) {
				return false
			}
		}

		return true
	}), nil
}

// sampleDate checks that a layout round-trips a known day before it is used.
var sampleDate = time.Date(2025, time.November, 23, 0, 0, 0, 0, time.UTC)

func coerceDates(ds *dataset.Dataset, columns []string, layout string) (*dataset.Dataset, error) {
	if len(columns) == 0 {
		return ds, nil
	}

	if layout == "" {
		layout = dataset.DayMonthYear
	}

	if t, err := time.Parse(layout, sampleDate.Format(layout)); err != nil || !t.Equal(sampleDate) {
		return nil, stageErr(StageDates, "date layout %q does not carry a full date", layout)
	}

	for _, c := range columns {
		ds = coerce.DateColumn(ds, strings.TrimSpace(c), layout)
	}

	return ds, nil
}

func firstDuplicate(columns []string) string {
	seen := make(map[string]struct{}, len(columns))

	for _, c := range columns {
		if _, ok := seen[c]; ok {
			return c
		}

		seen[c] = struct{}{}
	}

	return ""
}
