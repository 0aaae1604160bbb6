package mapping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

var ErrLookupColumn = errors.New("lookup column not found")

// ApplyLookup sets rule.DestColumn of every row of ds to the ValueColumn of
// the first reference row whose LookupKeyColumn equals the row's
// SourceColumn. Keys compare after trimming; rows without a match get Null.
func ApplyLookup(ds, reference *dataset.Dataset, rule *rules.LookupRule) (*dataset.Dataset, error) {
	if rule == nil {
		return ds, nil
	}

	if rule.SourceColumn == "" || rule.LookupKeyColumn == "" || rule.DestColumn == "" || rule.ValueColumn == "" {
		return nil, fmt.Errorf("%w: incomplete lookup rule", ErrMissingConfiguration)
	}

	if reference == nil {
		return nil, fmt.Errorf("%w: lookup reference dataset", ErrMissingConfiguration)
	}

	for _, need := range []struct {
		ds   *dataset.Dataset
		name string
		what string
	}{
		{ds, rule.SourceColumn, "input"},
		{reference, rule.LookupKeyColumn, "reference"},
		{reference, rule.ValueColumn, "reference"},
	} {
		if !need.ds.Has(need.name) {
			return nil, &StageError{Stage: StageLookup, Err: fmt.Errorf("%w: %q in %s", ErrLookupColumn, need.name, need.what)}
		}
	}

	keys, _ := reference.Column(rule.LookupKeyColumn)
	vals, _ := reference.Column(rule.ValueColumn)

	index := make(map[string]dataset.Value, len(keys))

	for i, k := range keys {
		if k.IsBlank() {
			continue
		}

		key := strings.TrimSpace(k.Text())
		if _, seen := index[key]; !seen {
			index[key] = coerce.Trim(vals[i])
		}
	}

	src, _ := ds.Column(rule.SourceColumn)
	out := make([]dataset.Value, len(src))

	for i, v := range src {
		if v.IsBlank() {
			continue
		}

		out[i] = index[strings.TrimSpace(v.Text())]
	}

	return ds.WithColumn(rule.DestColumn, out), nil
}
