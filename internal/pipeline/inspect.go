package pipeline

import (
	"context"
	"slices"
)

// Inspection describes the sheets of an upload without processing it.
type Inspection struct {
	Sheets           []string            `json:"sheets"`
	Columns          map[string][]string `json:"sheet_columns"`
	Rows             map[string]int      `json:"sheet_rows"`
	PreferredPresent bool                `json:"preferred_present"`
}

// Inspect reads every sheet with its header on the first row and reports
// whether preferred is among the sheet names.
func (s *Service) Inspect(ctx context.Context, up Upload, preferred string) (*Inspection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheets, err := s.loader.LoadWorkbook(up.Data, up.Filename, 1)
	if err != nil {
		return nil, err
	}

	out := &Inspection{
		Columns: make(map[string][]string, len(sheets)),
		Rows:    make(map[string]int, len(sheets)),
	}

	for _, sh := range sheets {
		out.Sheets = append(out.Sheets, sh.Name)
		out.Columns[sh.Name] = sh.Data.Columns()
		out.Rows[sh.Name] = sh.Data.Len()
	}

	out.PreferredPresent = preferred != "" && slices.Contains(out.Sheets, preferred)

	return out, nil
}
