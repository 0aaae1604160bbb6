package pipeline

import (
	"context"

	"github.com/MrJamesThe3rd/misrecon/internal/bank"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

// Banking runs every bank upload through its institution's processor and
// stacks the results onto the bank schema.
func (s *Service) Banking(ctx context.Context, inputs []bank.Input) (*bank.Result, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	columns, err := s.schema(ctx, rules.SchemaBank)
	if err != nil {
		return nil, err
	}

	res, err := bank.NewBatch(s.rules, s.loader, columns).Run(ctx, inputs)

	if res != nil {
		for _, sk := range res.Skipped {
			s.logger.WarnContext(ctx, "bank file skipped", "stage", "banking", "bank", sk.BankName, "reason", sk.Reason)
		}

		for _, f := range res.Failures {
			s.logger.ErrorContext(ctx, "bank file failed", "stage", "banking", "bank", f.BankName, "error", f.Err)
		}

		for _, w := range res.Warnings {
			s.logger.WarnContext(ctx, w, "stage", "banking")
		}
	}

	if err != nil {
		return res, err
	}

	s.logger.InfoContext(ctx, "banking processed", "stage", "banking", "banks", res.Processed, "rows", res.Data.Len())

	return res, nil
}
