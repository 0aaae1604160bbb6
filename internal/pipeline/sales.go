package pipeline

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/mapping"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

// Sheet names of the workbooks produced by each stage.
const (
	SheetSales    = "Sheet1"
	SheetAdvances = "Advances"
	SheetSalesRef = "Sales"
	SheetBanking  = "Banking"
	SheetCombine  = "Combining_MIS"
)

// Sales maps a sales report onto the sales schema.
func (s *Service) Sales(ctx context.Context, up Upload) (*dataset.Dataset, error) {
	rule, err := s.mappingRule(ctx, rules.RuleSales)
	if err != nil {
		return nil, err
	}

	columns, err := s.schema(ctx, rules.SchemaSales)
	if err != nil {
		return nil, err
	}

	ds, err := s.loader.Load(up.Data, up.Filename, rule.SheetName, rule.StartRow)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "file loaded", loadAttrs("sales", up, ds)...)

	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no data rows", dataset.ErrEmptyResult, up.Filename)
	}

	out, err := mapping.Apply(ds, rule, columns)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "sales processed", "stage", "sales", "file", up.Filename, "rows", out.Len())

	return out, nil
}

// Advances maps an advances report and fills its lookup column from the
// processed sales dataset. The result holds the sales sheet followed by the
// advances sheet.
func (s *Service) Advances(ctx context.Context, up Upload, sales *dataset.Dataset) ([]dataset.Sheet, error) {
	rule, err := s.mappingRule(ctx, rules.RuleAdvances)
	if err != nil {
		return nil, err
	}

	columns, err := s.schema(ctx, rules.SchemaAdvances)
	if err != nil {
		return nil, err
	}

	if rule.Lookup != nil && sales == nil {
		return nil, fmt.Errorf("%w: process a sales file first", ErrMissingPrerequisite)
	}

	ds, err := s.loader.Load(up.Data, up.Filename, rule.SheetName, rule.StartRow)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "file loaded", loadAttrs("advances", up, ds)...)

	out, err := mapping.Apply(ds, rule, columns)
	if err != nil {
		return nil, err
	}

	if rule.Lookup != nil {
		out, err = mapping.ApplyLookup(out, sales, rule.Lookup)
		if err != nil {
			return nil, err
		}

		out = out.Map(rule.Lookup.DestColumn, coerce.Trim)
	}

	out = out.Reindex(columns)

	s.logger.InfoContext(ctx, "advances processed", "stage", "advances", "file", up.Filename, "rows", out.Len())

	if sales == nil {
		sales = dataset.New()
	}

	return []dataset.Sheet{
		{Name: SheetSalesRef, Data: sales},
		{Name: SheetAdvances, Data: out},
	}, nil
}
