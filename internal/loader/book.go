package loader

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/misrecon/internal/xlsb"
)

// book is the common view over the three workbook readers.
type book interface {
	Sheets() []string
	Rows(name string) ([][]string, error)
	Close() error
}

// Date-formatted workbook cells are read as text in these layouts.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

type excelizeBook struct {
	f *excelize.File
	// dateStyles caches whether a style id carries a date number format.
	dateStyles map[int]bool
}

func openExcelize(data []byte) (book, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return &excelizeBook{f: f, dateStyles: make(map[int]bool)}, nil
}

func (b *excelizeBook) Sheets() []string {
	return b.f.GetSheetList()
}

// Rows reads raw cell values so numbers keep their stored precision. Numeric
// cells with a date number format come back as DateLayout or DateTimeLayout
// text; every other cell is left as stored.
func (b *excelizeBook) Rows(name string) ([][]string, error) {
	rows, err := b.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	for r, row := range rows {
		for c, v := range row {
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil || !b.isDateCell(name, c+1, r+1) {
				continue
			}

			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				continue
			}

			layout := DateLayout
			if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
				layout = DateTimeLayout
			}

			row[c] = t.Format(layout)
		}
	}

	return rows, nil
}

func (b *excelizeBook) isDateCell(sheet string, col, row int) bool {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}

	id, err := b.f.GetCellStyle(sheet, cell)
	if err != nil || id == 0 {
		return false
	}

	if is, ok := b.dateStyles[id]; ok {
		return is
	}

	st, err := b.f.GetStyle(id)
	is := err == nil && st != nil && isDateFormat(st.NumFmt, st.CustomNumFmt)
	b.dateStyles[id] = is

	return is
}

// formatLiterals matches quoted text, bracketed sections such as colours and
// locales, and backslash escapes inside a number format code.
var formatLiterals = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

// isDateFormat reports whether a number format renders a calendar date.
// Time-only formats are not dates.
func isDateFormat(id int, custom *string) bool {
	if custom != nil {
		code := strings.ToLower(formatLiterals.ReplaceAllString(*custom, ""))
		return strings.ContainsAny(code, "dy")
	}

	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}

	return false
}

func (b *excelizeBook) Close() error {
	return b.f.Close()
}

type xlsBook struct {
	names []string
	rows  map[string][][]string
}

// openXLS reads the whole legacy workbook up front; the reader keeps no
// handle open. It panics on some corrupt streams, which is reported as an
// ordinary decode error.
func openXLS(data []byte) (_ book, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt xls stream: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	b := &xlsBook{rows: make(map[string][][]string)}

	for _, sheet := range wb.GetSheets() {
		name := sheet.GetName()

		var rows [][]string

		for _, row := range sheet.GetRows() {
			if row == nil {
				rows = append(rows, nil)
				continue
			}

			var cells []string

			for _, cell := range row.GetCols() {
				if cell == nil {
					cells = append(cells, "")
					continue
				}

				cells = append(cells, cell.GetString())
			}

			rows = append(rows, trimTrailing(cells))
		}

		b.names = append(b.names, name)
		b.rows[name] = rows
	}

	return b, nil
}

func (b *xlsBook) Sheets() []string {
	return b.names
}

func (b *xlsBook) Rows(name string) ([][]string, error) {
	rows, ok := b.rows[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", name)
	}

	return rows, nil
}

func (b *xlsBook) Close() error {
	return nil
}

func openXLSB(data []byte) (book, error) {
	return xlsb.Open(data)
}

// trimTrailing drops empty cells at the end of a row, matching what
// excelize returns for the same sheet.
func trimTrailing(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}

	return cells[:n]
}
