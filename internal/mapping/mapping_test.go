package mapping_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/mapping"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

func texts(ds *dataset.Dataset, col string) []string {
	vals, _ := ds.Column(col)
	out := make([]string, len(vals))

	for i, v := range vals {
		out[i] = v.Text()
	}

	return out
}

func TestApply_CopyAndStrip(t *testing.T) {
	ds := dataset.FromRecords(
		[]string{" alternatestorecode ", "Other"},
		[][]string{{"BP123", "x"}, {"bp 456", "y"}},
	)

	rule := &rules.MappingRule{
		Name:         "sales",
		Mappings:     map[string]string{"StoreCode": "AlternateStoreCode"},
		Copy:         &rules.CopyRule{Source: "AlternateStoreCode", Dest: "StoreCode"},
		StripColumns: []string{"AlternateStoreCode", "StoreCode"},
		StripToken:   "BP",
	}

	out, err := mapping.Apply(ds, rule, []string{"AlternateStoreCode", "StoreCode"})
	require.NoError(t, err)

	assert.Equal(t, []string{"AlternateStoreCode", "StoreCode"}, out.Columns())
	assert.Equal(t, []string{"123", "456"}, texts(out, "AlternateStoreCode"))
	assert.Equal(t, []string{"123", "456"}, texts(out, "StoreCode"))
}

func TestApply_CopyFallsBackToCanonicalSource(t *testing.T) {
	ds := dataset.FromRecords([]string{"ALT CODE"}, [][]string{{"S9"}})

	rule := &rules.MappingRule{
		Mappings: map[string]string{"AlternateStoreCode": "Alt Code"},
		Copy:     &rules.CopyRule{Source: "AlternateStoreCode", Dest: "StoreCode"},
	}

	out, err := mapping.Apply(ds, rule, []string{"AlternateStoreCode", "StoreCode"})
	require.NoError(t, err)

	assert.Equal(t, []string{"S9"}, texts(out, "StoreCode"))
}

func TestApply_Reindex(t *testing.T) {
	ds := dataset.FromRecords(
		[]string{"Store Code", "NET", "AMOUNT"},
		[][]string{{"S001", "10", "99"}},
	)

	rule := &rules.MappingRule{Mappings: map[string]string{"Amount": "Net"}}
	cols := []string{"Region", "Store Code", "Amount"}

	out, err := mapping.Apply(ds, rule, cols)
	require.NoError(t, err)

	assert.Equal(t, cols, out.Columns())
	assert.True(t, out.Get(0, "Region").IsNull())
	assert.Equal(t, "S001", out.Get(0, "Store Code").Text())
	assert.Equal(t, "10", out.Get(0, "Amount").Text(), "the mapped source wins over a same-named column")
}

func TestApply_LaterCanonicalTakesSharedSource(t *testing.T) {
	ds := dataset.FromRecords([]string{"CODE"}, [][]string{{"S1"}})

	rule := &rules.MappingRule{Mappings: map[string]string{"A": "Code", "B": "Code"}}

	out, err := mapping.Apply(ds, rule, []string{"A", "B"})
	require.NoError(t, err)

	assert.True(t, out.Get(0, "A").IsNull())
	assert.Equal(t, "S1", out.Get(0, "B").Text())
}

func TestApply_SideRules(t *testing.T) {
	ds := dataset.FromRecords(
		[]string{"StoreCode", "StoreName", "BillDate", "Amount"},
		[][]string{
			{"BP101", "  Alpha ", "01-11-2025", "1,200.50"},
			{"97001", "Beta", "02-11-2025", "10"},
			{"BP98X", "Gamma", "2025-11-03", "n/a"},
			{"", "Delta", "not a date", ""},
		},
	)

	rule := &rules.MappingRule{
		StripColumns:    []string{"StoreCode"},
		ExcludeColumn:   "StoreCode",
		ExcludePrefixes: []string{"97", " 98", ""},
		TrimColumns:     []string{"StoreName"},
		DateColumns:     []string{"billdate"},
		NumericColumns:  []string{"Amount"},
	}

	out, err := mapping.Apply(ds, rule, []string{"StoreCode", "StoreName", "BillDate", "Amount"})
	require.NoError(t, err)

	require.Equal(t, 2, out.Len(), "97 and 98 prefixed codes are excluded after stripping")
	assert.Equal(t, []string{"101", ""}, texts(out, "StoreCode"))
	assert.Equal(t, []string{"Alpha", "Delta"}, texts(out, "StoreName"))

	d, ok := out.Get(0, "BillDate").Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), d)
	assert.True(t, out.Get(1, "BillDate").IsNull())

	n, ok := out.Get(0, "Amount").Decimal()
	require.True(t, ok)
	assert.Equal(t, "1200.5", n.String())
	assert.True(t, out.Get(1, "Amount").IsNull())
}

func TestApply_Idempotent(t *testing.T) {
	cols := []string{"StoreCode", "BillDate", "Amount"}
	ds := dataset.FromRecords(cols, [][]string{
		{"101", "01-11-2025", "5"},
		{"102", "", "6"},
	})

	rule := &rules.MappingRule{
		StripColumns:   []string{"StoreCode"},
		DateColumns:    []string{"BillDate"},
		NumericColumns: []string{"Amount"},
	}

	once, err := mapping.Apply(ds, rule, cols)
	require.NoError(t, err)

	twice, err := mapping.Apply(once, rule, cols)
	require.NoError(t, err)

	require.Equal(t, once.Columns(), twice.Columns())
	require.Equal(t, once.Len(), twice.Len())

	for r := range once.Len() {
		for _, c := range cols {
			assert.True(t, once.Get(r, c).Equal(twice.Get(r, c)), "row %d column %s", r, c)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	ds := dataset.FromRecords([]string{"storecode"}, [][]string{{"BP1"}})

	_, err := mapping.Apply(ds, &rules.MappingRule{StripColumns: []string{"StoreCode"}}, []string{"StoreCode"})
	require.NoError(t, err)

	assert.Equal(t, []string{"storecode"}, ds.Columns())
	assert.Equal(t, "BP1", ds.At(0, 0).Text())
}

func TestApply_Errors(t *testing.T) {
	ds := dataset.FromRecords([]string{"A"}, [][]string{{"1"}})

	type testCase struct {
		name      string
		rule      *rules.MappingRule
		columns   []string
		wantErr   error
		wantStage mapping.Stage
	}

	tests := []testCase{
		{name: "Nil rule", rule: nil, columns: []string{"A"}, wantErr: mapping.ErrMissingConfiguration},
		{name: "Empty schema", rule: &rules.MappingRule{}, columns: nil, wantErr: mapping.ErrMissingConfiguration},
		{name: "Duplicate canonical column", rule: &rules.MappingRule{}, columns: []string{"A", "A"}, wantStage: mapping.StageReindex},
		{name: "Half copy rule", rule: &rules.MappingRule{Copy: &rules.CopyRule{Source: "A"}}, columns: []string{"A"}, wantStage: mapping.StageCopy},
		{name: "Prefixes without column", rule: &rules.MappingRule{ExcludePrefixes: []string{"9"}}, columns: []string{"A"}, wantStage: mapping.StageExclude},
		{name: "Layout without a day", rule: &rules.MappingRule{DateColumns: []string{"A"}, DateLayout: "2006-01"}, columns: []string{"A"}, wantStage: mapping.StageDates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapping.Apply(ds, tt.rule, tt.columns)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			if tt.wantStage != "" {
				var se *mapping.StageError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantStage, se.Stage)
			}
		})
	}
}

func TestApplyLookup(t *testing.T) {
	sales := dataset.FromRecords(
		[]string{"StoreName", "StoreCode"},
		[][]string{
			{"Alpha", " 101 "},
			{"Alpha", "999"},
			{"Beta", "102"},
		},
	)

	advances := dataset.FromRecords(
		[]string{"Store", "Store Code"},
		[][]string{{"Alpha ", "old"}, {"Gamma", "old"}, {"", "old"}},
	)

	rule := &rules.LookupRule{
		SourceColumn:    "Store",
		LookupKeyColumn: "StoreName",
		DestColumn:      "Store Code",
		ValueColumn:     "StoreCode",
	}

	out, err := mapping.ApplyLookup(advances, sales, rule)
	require.NoError(t, err)

	assert.Equal(t, "101", out.Get(0, "Store Code").Text(), "first match wins and is trimmed")
	assert.True(t, out.Get(1, "Store Code").IsNull())
	assert.True(t, out.Get(2, "Store Code").IsNull())
}

func TestApplyLookup_Errors(t *testing.T) {
	ds := dataset.FromRecords([]string{"Store"}, nil)
	ref := dataset.FromRecords([]string{"StoreName"}, nil)

	full := &rules.LookupRule{SourceColumn: "Store", LookupKeyColumn: "StoreName", DestColumn: "Store Code", ValueColumn: "StoreCode"}

	_, err := mapping.ApplyLookup(ds, ref, full)
	assert.ErrorIs(t, err, mapping.ErrLookupColumn)

	_, err = mapping.ApplyLookup(ds, ref, &rules.LookupRule{SourceColumn: "Store"})
	assert.ErrorIs(t, err, mapping.ErrMissingConfiguration)

	_, err = mapping.ApplyLookup(ds, nil, full)
	assert.ErrorIs(t, err, mapping.ErrMissingConfiguration)

	out, err := mapping.ApplyLookup(ds, ref, nil)
	require.NoError(t, err)
	assert.Same(t, ds, out)
}
