package reconcile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/reconcile"
)

func opts(update ...string) reconcile.Options {
	o := reconcile.DefaultOptions()
	o.UpdateColumns = update

	return o
}

func TestReconcile_KeepsTargetWhenSourceBlank(t *testing.T) {
	target := dataset.FromRecords(
		[]string{"Store Code", "Date", "Remarks"},
		[][]string{{"S001", "2025-11-01", "manual note"}},
	)
	source := dataset.FromRecords(
		[]string{"Store Code", "Date", "Remarks"},
		[][]string{{"S001", "2025-11-01", ""}},
	)

	out, err := reconcile.Reconcile(target, source, opts("Remarks"))
	require.NoError(t, err)

	assert.Equal(t, "manual note", out.Get(0, "Remarks").Text())
}

func TestReconcile_Merge(t *testing.T) {
	target := dataset.FromRecords(
		[]string{"Store Code", "Date", "HB-Card", "Notes"},
		[][]string{
			{" S001 ", "01-11-2025", "10", "keep"},
			{"S002", "01-11-2025", "20", "keep"},
			{"S001", "02-11-2025", "30", "keep"},
		},
	)
	source := dataset.FromRecords(
		[]string{"STORE CODE", "BILL DATE", "HB-Card", "Notes", "HB-Cash"},
		[][]string{
			{"S001", "2025-11-01", "111", "overwrite?", "5"},
			{"S001", "01/11/2025", "999", "", "6"},
			{"S002", "01-11-2025", "  ", "", ""},
		},
	)

	out, err := reconcile.Reconcile(target, source, opts("HB-Card", "HB-Cash", "Remarks"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Store Code", "Date", "HB-Card", "Notes", "HB-Cash", "Remarks"}, out.Columns())
	require.Equal(t, 3, out.Len())

	assert.Equal(t, "S001", out.Get(0, "Store Code").Text(), "store codes are written back trimmed")

	d, ok := out.Get(0, "Date").Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), d)

	assert.Equal(t, "111", out.Get(0, "HB-Card").Text(), "first source row per key wins")
	assert.Equal(t, "5", out.Get(0, "HB-Cash").Text())
	assert.Equal(t, "20", out.Get(1, "HB-Card").Text(), "blank source keeps target")
	assert.True(t, out.Get(1, "HB-Cash").IsNull())
	assert.Equal(t, "30", out.Get(2, "HB-Card").Text(), "unmatched rows are untouched")

	for i := range out.Len() {
		assert.Equal(t, "keep", out.Get(i, "Notes").Text(), "columns outside the whitelist are never written")
		assert.True(t, out.Get(i, "Remarks").IsNull())
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	target := dataset.FromRecords([]string{"Store Code", "Date", "X"}, [][]string{{"S1", "01-11-2025", ""}})
	source := dataset.FromRecords([]string{"Store Code", "Date", "X"}, [][]string{
		{"S1", "01-11-2025", "a"},
		{"S1", "01-11-2025", "b"},
		{"S1", "01-11-2025", "c"},
	})

	for range 5 {
		out, err := reconcile.Reconcile(target, source, opts("X"))
		require.NoError(t, err)
		assert.Equal(t, "a", out.Get(0, "X").Text())
	}
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	target := dataset.FromRecords([]string{"Store Code", "Date", "X"}, [][]string{{" S1", "01-11-2025", "t"}})
	source := dataset.FromRecords([]string{"Store Code", "Date", "X"}, [][]string{{"S1", "01-11-2025", "s"}})

	_, err := reconcile.Reconcile(target, source, opts("X"))
	require.NoError(t, err)

	assert.Equal(t, " S1", target.Get(0, "Store Code").Text())
	assert.Equal(t, dataset.KindText, target.Get(0, "Date").Kind())
	assert.Equal(t, "t", target.Get(0, "X").Text())
}

func TestReconcile_UnparsedDates(t *testing.T) {
	target := dataset.FromRecords([]string{"Store Code", "Date", "X"}, [][]string{{"S1", "??", "t"}})
	source := dataset.FromRecords([]string{"Store Code", "Date", "X"}, [][]string{{"S1", "n/a", "s"}})

	type testCase struct {
		name   string
		strict bool
		want   string
	}

	tests := []testCase{
		{name: "Empty date bucket matches", strict: false, want: "s"},
		{name: "Strict dates skip matching", strict: true, want: "t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opts("X")
			o.StrictDates = tt.strict

			out, err := reconcile.Reconcile(target, source, o)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Get(0, "X").Text())
		})
	}
}

func TestReconcile_KeyColumnsNotFound(t *testing.T) {
	target := dataset.FromRecords([]string{"Outlet", "Amount"}, nil)
	source := dataset.FromRecords([]string{"Store Code", "Date"}, nil)

	_, err := reconcile.Reconcile(target, source, opts("X"))
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrKeyColumnsNotFound)

	var kce *reconcile.KeyColumnsError
	require.ErrorAs(t, err, &kce)
	assert.Equal(t, []string{"Outlet", "Amount"}, kce.Target)
	assert.Equal(t, []string{"Store Code", "Date"}, kce.Source)
}

func TestMatchKey(t *testing.T) {
	d := dataset.Date(time.Date(2025, time.November, 1, 15, 0, 0, 0, time.UTC))

	assert.Equal(t, "S001_01-11-2025", reconcile.MatchKey(dataset.Text(" S001 "), d))
	assert.Equal(t, "S001_", reconcile.MatchKey(dataset.Text("S001"), dataset.Null()))
}
