package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
)

var errNoHeader = errors.New("header row not found")

// fromRows turns raw sheet rows into a dataset with the header at
// startRow-1. Fully empty data rows are dropped.
func fromRows(rows [][]string, startRow int) (*dataset.Dataset, error) {
	idx := max(startRow-1, 0)
	if idx >= len(rows) {
		return nil, fmt.Errorf("%w: row %d of %d", errNoHeader, idx+1, len(rows))
	}

	header := headerNames(rows[idx])

	var records [][]string

	for _, row := range rows[idx+1:] {
		if blank(row) {
			continue
		}

		records = append(records, row)
	}

	// Cells to the right of the header are kept as unnamed columns.
	for _, rec := range records {
		for len(header) < len(rec) {
			header = append(header, unnamed(len(header)))
		}
	}

	return dataset.FromRecords(dedupHeader(header), records), nil
}

// headerNames coerces header cells to column names; empty cells are named
// "Unnamed: N" by position.
func headerNames(row []string) []string {
	names := make([]string, len(row))
	for i, cell := range row {
		if strings.TrimSpace(cell) == "" {
			names[i] = unnamed(i)
			continue
		}

		names[i] = cell
	}

	return names
}

func unnamed(i int) string {
	return "Unnamed: " + strconv.Itoa(i)
}

// dedupHeader suffixes repeated names with .1, .2 so every column label is unique.
func dedupHeader(names []string) []string {
	seen := make(map[string]int, len(names))
	taken := make(map[string]struct{}, len(names))

	for _, n := range names {
		taken[n] = struct{}{}
	}

	out := make([]string, len(names))

	for i, n := range names {
		k, dup := seen[n]
		if !dup {
			out[i] = n
			seen[n] = 1

			continue
		}

		for {
			candidate := n + "." + strconv.Itoa(k)
			k++

			if _, clash := taken[candidate]; !clash {
				out[i] = candidate
				taken[candidate] = struct{}{}

				break
			}
		}

		seen[n] = k
	}

	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
