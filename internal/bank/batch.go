package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/mapping"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

// RuleSource looks up bank rules by institution name.
type RuleSource interface {
	BankRule(ctx context.Context, bankName string) (*rules.BankRule, error)
}

// Loader reads one sheet of an upload.
type Loader interface {
	Load(data []byte, filename, sheet string, startRow int) (*dataset.Dataset, error)
}

// Input is one institution's upload. From and To are optional DD-MM-YYYY
// bounds on the bank credit date, both inclusive.
type Input struct {
	BankName string
	Filename string
	Data     []byte
	From     string
	To       string
}

type Skip struct {
	BankName string
	Reason   string
}

type Failure struct {
	BankName string
	Err      error
}

// Result is the merged banking dataset plus what happened to each input.
type Result struct {
	Data      *dataset.Dataset
	Processed []string
	Skipped   []Skip
	Failures  []Failure
	Warnings  []string
}

type Batch struct {
	rules    RuleSource
	loader   Loader
	registry *Registry
	columns  []string
}

func NewBatch(rs RuleSource, l Loader, columns []string) *Batch {
	if len(columns) == 0 {
		columns = Schema
	}

	return &Batch{
		rules:    rs,
		loader:   l,
		registry: NewRegistry(columns),
		columns:  append([]string(nil), columns...),
	}
}

// Run processes every input and stacks the results. A failing or empty input
// does not stop the others; Run only fails when no input produced rows.
func (b *Batch) Run(ctx context.Context, inputs []Input) (*Result, error) {
	res := &Result{}

	var parts []*dataset.Dataset

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ds, err := b.runOne(ctx, in, res)
		if err != nil {
			res.Failures = append(res.Failures, Failure{BankName: in.BankName, Err: err})
			continue
		}

		if ds == nil {
			continue
		}

		parts = append(parts, ds)
		res.Processed = append(res.Processed, in.BankName)
	}

	if len(parts) == 0 {
		errs := []error{fmt.Errorf("%w: no bank file produced rows", dataset.ErrEmptyResult)}
		for _, f := range res.Failures {
			errs = append(errs, fmt.Errorf("%s: %w", f.BankName, f.Err))
		}

		return res, errors.Join(errs...)
	}

	out := dataset.Concat(parts...).Reindex(b.columns)
	for _, c := range DateColumns {
		out = coerce.DateColumn(out, c)
	}

	res.Data = out

	return res, nil
}

// runOne returns a nil dataset when the input is skipped.
func (b *Batch) runOne(ctx context.Context, in Input, res *Result) (*dataset.Dataset, error) {
	rule, err := b.rules.BankRule(ctx, in.BankName)
	if errors.Is(err, rules.ErrNotFound) {
		res.Skipped = append(res.Skipped, Skip{BankName: in.BankName, Reason: "no bank rule"})
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	rule = rule.WithDefaults()

	ds, err := b.loader.Load(in.Data, in.Filename, rule.SheetName, rule.StartRow)
	if err != nil {
		return nil, err
	}

	ds = mapping.Normalize(ds)
	if ds.Len() == 0 {
		res.Skipped = append(res.Skipped, Skip{BankName: in.BankName, Reason: "no rows"})
		return nil, nil
	}

	credit := strings.ToUpper(rule.Mapped(ColBankCreditDate, ColBankCreditDate))
	if ds.Has(credit) {
		ds = coerce.DateColumn(ds, credit)

		if in.From != "" || in.To != "" {
			ds = b.filter(ds, credit, in, res)
		}
	}

	if ds.Len() == 0 {
		res.Skipped = append(res.Skipped, Skip{BankName: in.BankName, Reason: "no rows in date range"})
		return nil, nil
	}

	return b.registry.For(in.BankName).Process(ds, rule)
}

func (b *Batch) filter(ds *dataset.Dataset, column string, in Input, res *Result) *dataset.Dataset {
	from, errFrom := time.Parse(dataset.DayMonthYear, strings.TrimSpace(in.From))
	to, errTo := time.Parse(dataset.DayMonthYear, strings.TrimSpace(in.To))

	if errFrom != nil || errTo != nil {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%s: ignoring date range %q to %q, expected DD-MM-YYYY", in.BankName, in.From, in.To))

		return ds
	}

	return ds.Filter(func(r dataset.Row) bool {
		t, ok := r.Get(column).Time()
		return ok && !t.Before(from) && !t.After(to)
	})
}
