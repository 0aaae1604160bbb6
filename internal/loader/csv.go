package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/encoding"
)

// loadCSV decodes the bytes with the first candidate encoding that yields a
// header row, falling back to lossy UTF-8.
func loadCSV(data []byte, startRow int) (*dataset.Dataset, error) {
	raw, hadBOM, err := encoding.StripBOM(data)
	if err != nil {
		return nil, err
	}

	if hadBOM {
		return parseCSV(string(raw), startRow)
	}

	var errs []error

	for _, enc := range encoding.Candidates {
		text, err := encoding.Decode(raw, enc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", enc, err))
			continue
		}

		ds, err := parseCSV(text, startRow)
		if err == nil {
			return ds, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", enc, err))
	}

	ds, err := parseCSV(encoding.DecodeLossy(raw), startRow)
	if err != nil {
		errs = append(errs, fmt.Errorf("lossy utf-8: %w", err), fmt.Errorf("detected charset %s", encoding.Sniff(raw)))
		return nil, errors.Join(errs...)
	}

	return ds, nil
}

// parseCSV reads tolerant CSV. Records the reader rejects are skipped, as are
// data rows with more fields than the header.
func parseCSV(text string, startRow int) (*dataset.Dataset, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows [][]string

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}

			return nil, err
		}

		if blank(rec) {
			continue
		}

		rows = append(rows, rec)
	}

	idx := max(startRow-1, 0)
	if idx >= len(rows) {
		return nil, fmt.Errorf("%w: row %d of %d", errNoHeader, idx+1, len(rows))
	}

	width := len(rows[idx])
	kept := append([][]string{}, rows[:idx+1]...)

	for _, rec := range rows[idx+1:] {
		if len(rec) > width {
			continue
		}

		kept = append(kept, rec)
	}

	return fromRows(kept, startRow)
}
