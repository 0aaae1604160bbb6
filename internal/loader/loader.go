// Package loader turns uploaded spreadsheet and CSV bytes into text datasets.
//
// Each extension has a fixed chain of decoders. A decoder failing hands the
// same bytes to the next one; only when the chain is exhausted does Load
// return an *UnsupportedFormatError.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// UnsupportedFormatError carries the upload name and every decoder failure.
type UnsupportedFormatError struct {
	Filename string
	Cause    error
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("could not load file %s: %v", e.Filename, e.Cause)
}

func (e *UnsupportedFormatError) Unwrap() []error {
	return []error{ErrUnsupportedFormat, e.Cause}
}

// decoder reads every sheet (or the one CSV table) of an upload.
type decoder struct {
	name string
	open func(data []byte) (book, error)
}

var (
	decExcelize = decoder{name: "excelize", open: openExcelize}
	decXLS      = decoder{name: "xls", open: openXLS}
	decXLSB     = decoder{name: "xlsb", open: openXLSB}
	decCSV      = decoder{name: "csv"}
)

func chainFor(filename string) []decoder {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return []decoder{decCSV}
	case ".xlsx", ".xlsm":
		return []decoder{decExcelize, decXLS, decCSV}
	case ".xls":
		return []decoder{decXLS, decExcelize, decCSV}
	case ".xlsb":
		return []decoder{decXLSB}
	}

	return []decoder{decXLSB, decCSV}
}

type Loader struct{}

func New() *Loader {
	return &Loader{}
}

// Load reads one sheet. startRow is the 1-based header row; sheet falls
// back to the first sheet when the workbook has no sheet of that name.
func (l *Loader) Load(data []byte, filename, sheet string, startRow int) (*dataset.Dataset, error) {
	var errs []error

	for _, dec := range chainFor(filename) {
		ds, err := dec.load(data, sheet, startRow)
		if err == nil {
			return ds, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", dec.name, err))
	}

	return nil, &UnsupportedFormatError{Filename: filename, Cause: errors.Join(errs...)}
}

// LoadWorkbook reads every sheet with the same header row. A CSV upload
// yields one sheet named after the file. Sheets too short to have a header
// row come back with no columns.
func (l *Loader) LoadWorkbook(data []byte, filename string, startRow int) ([]dataset.Sheet, error) {
	var errs []error

	for _, dec := range chainFor(filename) {
		sheets, err := dec.loadAll(data, filename, startRow)
		if err == nil {
			return sheets, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", dec.name, err))
	}

	return nil, &UnsupportedFormatError{Filename: filename, Cause: errors.Join(errs...)}
}

// Load is a convenience for New().Load.
func Load(data []byte, filename, sheet string, startRow int) (*dataset.Dataset, error) {
	return New().Load(data, filename, sheet, startRow)
}

func (d decoder) load(data []byte, sheet string, startRow int) (*dataset.Dataset, error) {
	if d.open == nil {
		return loadCSV(data, startRow)
	}

	b, err := d.open(data)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	name, ok := ResolveSheet(b.Sheets(), sheet)
	if !ok {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := b.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}

	return fromRows(rows, startRow)
}

func (d decoder) loadAll(data []byte, filename string, startRow int) ([]dataset.Sheet, error) {
	if d.open == nil {
		ds, err := loadCSV(data, startRow)
		if err != nil {
			return nil, err
		}

		base := filepath.Base(filename)

		return []dataset.Sheet{{Name: strings.TrimSuffix(base, filepath.Ext(base)), Data: ds}}, nil
	}

	b, err := d.open(data)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	names := b.Sheets()
	if len(names) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	sheets := make([]dataset.Sheet, 0, len(names))

	for _, name := range names {
		rows, err := b.Rows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}

		ds, err := fromRows(rows, startRow)
		if errors.Is(err, errNoHeader) {
			ds = dataset.New()
		} else if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}

		sheets = append(sheets, dataset.Sheet{Name: name, Data: ds})
	}

	return sheets, nil
}

// ResolveSheet picks the requested sheet: an exact name, then a
// case-insensitive one, then the first sheet by position. It reports false
// only when there are no sheets at all.
func ResolveSheet(names []string, want string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}

	for _, n := range names {
		if n == want {
			return n, true
		}
	}

	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), strings.TrimSpace(want)) {
			return n, true
		}
	}

	return names[0], true
}
