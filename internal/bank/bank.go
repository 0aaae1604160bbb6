// Package bank turns per-institution settlement exports into the fixed
// banking schema.
package bank

import (
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

// Banking schema column names.
const (
	ColBankName          = "Bank Name"
	ColMode              = "Mode"
	ColTransactionDate   = "Transaction Date"
	ColBankCreditDate    = "Bank Credit Date"
	ColSAPCode           = "SAP Code"
	ColAmount            = "Amount"
	ColTransactionAmount = "Transaction Amount"
	ColBankCharges       = "Bank Charges"
	ColGST               = "GST"
	ColMID               = "MID"
)

// Schema is the banking output when no schema is configured.
var Schema = []string{
	ColBankName, ColMode, ColTransactionDate, ColBankCreditDate, ColSAPCode,
	ColAmount, ColTransactionAmount, ColBankCharges, ColGST, ColMID,
}

// DateColumns are coerced to dates by every processor.
var DateColumns = []string{ColTransactionDate, ColBankCreditDate}

// DefaultMode fills the Mode column unless a rule maps it.
const DefaultMode = "Card"

// Institution identifies a bank with its own processor.
type Institution string

const (
	InstitutionAmex Institution = "Amex"
)

type Processor interface {
	Process(ds *dataset.Dataset, rule *rules.BankRule) (*dataset.Dataset, error)
}

// Registry dispatches institutions to processors. Institutions without a
// dedicated processor use the generic one.
type Registry struct {
	generic Processor
	special map[Institution]Processor
}

func NewRegistry(columns []string) *Registry {
	return &Registry{
		generic: NewGeneric(columns),
		special: map[Institution]Processor{
			InstitutionAmex: NewAmex(),
		},
	}
}

func (r *Registry) For(bankName string) Processor {
	for inst, p := range r.special {
		if strings.EqualFold(strings.TrimSpace(bankName), string(inst)) {
			return p
		}
	}

	return r.generic
}

// constant returns a rule's override for a fixed-value column, or def.
func constant(rule *rules.BankRule, column, def string) dataset.Value {
	return dataset.Text(rule.Mapped(column, def))
}
