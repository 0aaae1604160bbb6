package dataset_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
)

func sample() *dataset.Dataset {
	return dataset.FromRecords(
		[]string{"Store Code", "Date", "Amount"},
		[][]string{
			{"S001", "2025-11-01", "1000"},
			{"S002", "2025-11-02", ""},
		},
	)
}

func TestFromRecords(t *testing.T) {
	ds := dataset.FromRecords([]string{"A", "B"}, [][]string{{"1"}, {"1", "2", "3"}})

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, 2, ds.Width())
	assert.True(t, ds.At(0, 1).IsNull())
	assert.Equal(t, "2", ds.At(1, 1).Text())
}

func TestIndex_CaseInsensitive(t *testing.T) {
	ds := sample()

	assert.Equal(t, 0, ds.Index("store code"))
	assert.Equal(t, 2, ds.Index("AMOUNT"))
	assert.Equal(t, -1, ds.Index("Missing"))

	name, ok := ds.Name("DATE")
	require.True(t, ok)
	assert.Equal(t, "Date", name)
}

func TestReindex_Superset(t *testing.T) {
	ds := sample()
	out := ds.Reindex([]string{"Amount", "Region", "Store Code", "Date"})

	assert.Equal(t, []string{"Amount", "Region", "Store Code", "Date"}, out.Columns())
	require.Equal(t, ds.Len(), out.Len())

	for i := range ds.Len() {
		assert.True(t, out.Get(i, "Region").IsNull())
		assert.Equal(t, ds.Get(i, "Store Code"), out.Get(i, "Store Code"))
		assert.Equal(t, ds.Get(i, "Amount"), out.Get(i, "Amount"))
	}
}

func TestSelect_ExactNames(t *testing.T) {
	ds := sample()
	out := ds.Select([]string{"store code", "Date"})

	assert.Equal(t, []string{"store code", "Date"}, out.Columns())
	assert.True(t, out.Get(0, "store code").IsNull())
	assert.Equal(t, ds.Get(0, "Date"), out.Get(0, "Date"))
}

func TestRename_DoesNotMutate(t *testing.T) {
	ds := sample()
	out := ds.Rename(map[string]string{"Store Code": "StoreCode"})

	assert.Equal(t, []string{"StoreCode", "Date", "Amount"}, out.Columns())
	assert.Equal(t, []string{"Store Code", "Date", "Amount"}, ds.Columns())
}

func TestDedupColumns(t *testing.T) {
	ds := dataset.FromRecords([]string{"A", "B", "A"}, [][]string{{"first", "b", "second"}})
	out := ds.DedupColumns()

	assert.Equal(t, []string{"A", "B"}, out.Columns())
	assert.Equal(t, "first", out.Get(0, "A").Text())
}

func TestWithColumn(t *testing.T) {
	ds := sample()

	appended := ds.Fill("Mode", dataset.Text("Card"))
	assert.Equal(t, []string{"Store Code", "Date", "Amount", "Mode"}, appended.Columns())
	assert.Equal(t, "Card", appended.Get(1, "Mode").Text())
	assert.Equal(t, 3, ds.Width())

	replaced := ds.WithColumn("amount", []dataset.Value{dataset.Number(decimal.NewFromInt(5))})
	assert.Equal(t, 3, replaced.Width())
	assert.Equal(t, "5", replaced.Get(0, "Amount").Text())
	assert.True(t, replaced.Get(1, "Amount").IsNull())
}

func TestMap_DoesNotMutate(t *testing.T) {
	ds := sample()
	out := ds.Map("Store Code", func(v dataset.Value) dataset.Value {
		return dataset.Text("X" + v.Text())
	})

	assert.Equal(t, "XS001", out.Get(0, "Store Code").Text())
	assert.Equal(t, "S001", ds.Get(0, "Store Code").Text())
}

func TestFilter(t *testing.T) {
	ds := sample()
	out := ds.Filter(func(r dataset.Row) bool {
		return r.Get("Store Code").Text() == "S002"
	})

	require.Equal(t, 1, out.Len())
	assert.Equal(t, "S002", out.Get(0, "Store Code").Text())
	assert.Equal(t, 2, ds.Len())
}

func TestConcat(t *testing.T) {
	a := dataset.FromRecords([]string{"A", "B"}, [][]string{{"1", "2"}})
	b := dataset.FromRecords([]string{"B", "C"}, [][]string{{"3", "4"}})

	out := dataset.Concat(a, b)

	assert.Equal(t, []string{"A", "B", "C"}, out.Columns())
	require.Equal(t, 2, out.Len())
	assert.True(t, out.Get(0, "C").IsNull())
	assert.True(t, out.Get(1, "A").IsNull())
	assert.Equal(t, "3", out.Get(1, "B").Text())
}

func TestDropAndLimit(t *testing.T) {
	ds := sample()

	assert.Equal(t, []string{"Store Code", "Amount"}, ds.Drop("date").Columns())
	assert.Equal(t, []string{"Store Code"}, ds.Limit(1).Columns())
	assert.Equal(t, 3, ds.Limit(10).Width())
}

func TestValue(t *testing.T) {
	d := dataset.Date(time.Date(2025, 11, 1, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, "01-11-2025", d.Text())
	assert.Equal(t, dataset.KindDate, d.Kind())

	assert.True(t, dataset.Null().IsBlank())
	assert.True(t, dataset.Text("  ").IsBlank())
	assert.False(t, dataset.Text("x").IsBlank())
	assert.False(t, dataset.Text("x").IsNull())

	assert.True(t, dataset.Number(decimal.RequireFromString("1.50")).Equal(dataset.Number(decimal.RequireFromString("1.5"))))
	assert.False(t, dataset.Text("1").Equal(dataset.Number(decimal.NewFromInt(1))))
}
