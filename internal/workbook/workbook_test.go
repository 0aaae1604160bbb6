package workbook_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/workbook"
)

func sample() *dataset.Dataset {
	ds := dataset.New("Store Code", "BillDate", "Net Sales", "Remarks")
	ds.Append(
		dataset.Text("S001"),
		dataset.Date(time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)),
		dataset.Number(decimal.RequireFromString("1500.5")),
		dataset.Null(),
	)
	ds.Append(dataset.Text("S002"))

	return ds
}

func TestWrite_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	err := workbook.Write(&buf,
		dataset.Sheet{Name: "Sales", Data: sample()},
		dataset.Sheet{Name: "Advances", Data: dataset.New("Order No")},
	)
	require.NoError(t, err)

	sheets, err := workbook.Read(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	assert.Equal(t, "Sales", sheets[0].Name)
	assert.Equal(t, "Advances", sheets[1].Name)
	assert.Equal(t, []string{"Order No"}, sheets[1].Data.Columns())

	sales := sheets[0].Data
	assert.Equal(t, []string{"Store Code", "BillDate", "Net Sales", "Remarks"}, sales.Columns())
	require.Equal(t, 2, sales.Len())

	assert.Equal(t, "S001", sales.Get(0, "Store Code").Text())
	assert.Equal(t, "1500.5", sales.Get(0, "Net Sales").Text())
	assert.True(t, sales.Get(0, "Remarks").IsNull())
	assert.True(t, sales.Get(1, "BillDate").IsNull())

	d, ok := coerce.Date(sales.Get(0, "BillDate")).Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), d)
}

func TestWrite_DateCellsCarryFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf, dataset.Sheet{Name: "Banking", Data: sample()}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	styleID, err := f.GetCellStyle("Banking", "B2")
	require.NoError(t, err)

	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, workbook.DateFormat, *style.CustomNumFmt)
}

func TestWrite_NoSheets(t *testing.T) {
	err := workbook.Write(&bytes.Buffer{})
	assert.ErrorIs(t, err, workbook.ErrNoSheets)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := workbook.WriteFile(dir, "Processed_Sales.xlsx", dataset.Sheet{Name: "Sheet1", Data: sample()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Processed_Sales.xlsx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	sheets, err := workbook.Read(data)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, 2, sheets[0].Data.Len())

	_, err = workbook.WriteFile(dir, "empty.xlsx")
	require.ErrorIs(t, err, workbook.ErrNoSheets)
	assert.NoFileExists(t, filepath.Join(dir, "empty.xlsx"))
}
