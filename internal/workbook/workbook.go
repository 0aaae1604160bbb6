// Package workbook writes datasets to xlsx and reads them back.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/loader"
)

// DateFormat is the number format applied to every date cell.
const DateFormat = "dd-mm-yyyy"

// ContentType is the MIME type of a written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrNoSheets = errors.New("no sheets to write")

// Write streams the sheets, in order, as one workbook. Dates become date
// cells, numbers become numeric cells and Null cells are left empty.
func Write(w io.Writer, sheets ...dataset.Sheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	dateFmt := DateFormat

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("naming sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", s.Name, err)
		}

		if err := writeSheet(f, s, dateStyle); err != nil {
			return fmt.Errorf("writing sheet %q: %w", s.Name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, s dataset.Sheet, dateStyle int) error {
	sw, err := f.NewStreamWriter(s.Name)
	if err != nil {
		return err
	}

	ds := s.Data
	if ds == nil {
		ds = dataset.New()
	}

	header := make([]any, ds.Width())
	for i, c := range ds.Columns() {
		header[i] = c
	}

	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r := range ds.Len() {
		row := make([]any, ds.Width())
		for c := range row {
			row[c] = cellValue(ds.At(r, c), dateStyle)
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}

		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	return sw.Flush()
}

func cellValue(v dataset.Value, dateStyle int) any {
	switch v.Kind() {
	case dataset.KindDate:
		t, _ := v.Time()
		return excelize.Cell{StyleID: dateStyle, Value: t}
	case dataset.KindNumber:
		d, _ := v.Decimal()
		return d.InexactFloat64()
	case dataset.KindText:
		return v.Text()
	}

	return nil
}

// WriteFile writes the sheets to dir/name, creating dir when needed, and
// returns the written path.
func WriteFile(dir, name string, sheets ...dataset.Sheet) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating output: %w", err)
	}

	if err := Write(f, sheets...); err != nil {
		f.Close()
		os.Remove(path)

		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing output: %w", err)
	}

	return path, nil
}

// Read loads every sheet with its header on the first row. Cells come back
// as text; date cells read as Excel serial numbers.
func Read(data []byte) ([]dataset.Sheet, error) {
	return loader.New().LoadWorkbook(data, "workbook.xlsx", 1)
}
