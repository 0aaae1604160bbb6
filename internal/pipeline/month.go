package pipeline

import (
	"time"

	"github.com/MrJamesThe3rd/misrecon/internal/bank"
	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
)

// MonthSuffix names the most common month among the values, such as
// "Nov'25", for use in download file names. Ties go to the earlier month.
// It reports false when no value is a date.
func MonthSuffix(values []dataset.Value) (string, bool) {
	counts := make(map[time.Time]int)

	for _, v := range values {
		t, ok := coerce.Date(v).Time()
		if !ok {
			continue
		}

		counts[time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)]++
	}

	var (
		best  time.Time
		bestN int
	)

	for m, n := range counts {
		if n > bestN || (n == bestN && m.Before(best)) {
			best, bestN = m, n
		}
	}

	if bestN == 0 {
		return "", false
	}

	return best.Format("Jan'06"), true
}

// Download file names.
const (
	FilenameSales    = "Processed_Sales.xlsx"
	FilenameAdvances = "Processed_Advances_Consolidated.xlsx"
	FilenameFinal    = "Processed_Final_MIS.xlsx"
)

// BankingFilename names the banking download after its main credit month.
func BankingFilename(ds *dataset.Dataset) string {
	return monthFilename("Processed_Collection", ds, bank.ColBankCreditDate)
}

// CombineFilename names the combine download after its main date month.
func CombineFilename(res *CombineResult) string {
	return monthFilename("Processed_Combine_MIS", res.Data, res.DateColumn)
}

func monthFilename(base string, ds *dataset.Dataset, column string) string {
	if ds == nil || column == "" {
		return base + ".xlsx"
	}

	vals, ok := ds.Column(column)
	if !ok {
		return base + ".xlsx"
	}

	if suffix, ok := MonthSuffix(vals); ok {
		return base + "_" + suffix + ".xlsx"
	}

	return base + ".xlsx"
}
