// Package coerce converts loaded text cells into typed dates and numbers.
// Failed conversions produce Null, never an error.
package coerce

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
)

// Excel serial numbers inside this range are accepted as dates
// (1900-01-01 .. 2199-12-31).
const (
	minSerial = 1
	maxSerial = 109574
)

// knownLayouts are tried after the caller's layouts. Numeric dates are read
// day first.
var knownLayouts = []string{
	dataset.DayMonthYear,
	"02/01/2006",
	"02.01.2006",
	"2-1-2006",
	"2/1/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04:05",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
}

var (
	serialPattern  = regexp.MustCompile(`^\d{1,6}(\.\d+)?$`)
	nonNumericChar = regexp.MustCompile(`[^0-9.\-]`)
)

// ParseDate tries each layout in order, then the known layouts, then Excel
// serial numbers, then free-form parsing with day-first preference for
// ambiguous numeric dates.
func ParseDate(s string, layouts ...string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, set := range [][]string{layouts, knownLayouts} {
		for _, layout := range set {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}

	if serialPattern.MatchString(s) {
		return parseSerial(s)
	}

	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func parseSerial(s string) (time.Time, bool) {
	f, err := decimal.NewFromString(s)
	if err != nil {
		return time.Time{}, false
	}

	serial := f.InexactFloat64()
	if serial < minSerial || serial > maxSerial {
		return time.Time{}, false
	}

	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// Date converts a cell to a date value.
func Date(v dataset.Value, layouts ...string) dataset.Value {
	switch v.Kind() {
	case dataset.KindDate:
		return v
	case dataset.KindNull:
		return v
	}

	t, ok := ParseDate(v.Text(), layouts...)
	if !ok {
		return dataset.Null()
	}

	return dataset.Date(t)
}

// DateColumn converts every cell of a column.
func DateColumn(ds *dataset.Dataset, name string, layouts ...string) *dataset.Dataset {
	return ds.Map(name, func(v dataset.Value) dataset.Value {
		return Date(v, layouts...)
	})
}

// ParseNumber parses a plain number, tolerating surrounding spaces and
// thousands separators.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

// ParseLooseNumber drops every character other than digits, '.' and '-'
// before parsing, so currency symbols and labels are ignored.
func ParseLooseNumber(s string) (decimal.Decimal, bool) {
	return ParseNumber(nonNumericChar.ReplaceAllString(s, ""))
}

func Number(v dataset.Value) dataset.Value {
	switch v.Kind() {
	case dataset.KindNumber, dataset.KindNull:
		return v
	}

	d, ok := ParseNumber(v.Text())
	if !ok {
		return dataset.Null()
	}

	return dataset.Number(d)
}

func NumberColumn(ds *dataset.Dataset, name string) *dataset.Dataset {
	return ds.Map(name, Number)
}

// Trim trims text cells, keeping Null as Null.
func Trim(v dataset.Value) dataset.Value {
	if v.Kind() != dataset.KindText {
		return v
	}

	return dataset.Text(strings.TrimSpace(v.Text()))
}
