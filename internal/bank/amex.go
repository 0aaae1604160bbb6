package bank

import (
	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/mapping"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

// Amex source headers. Amex reports both a submitted and a settled amount, so
// each output column is picked explicitly instead of renamed.
const (
	amexSubmissionDate = "SUBMISSION DATE"
	amexSettlementDate = "SETTLEMENT DATE"
	amexStoreCode      = "STORE CODE"
	amexSubmissionAmt  = "SUBMISSION AMOUNT"
	amexSettlementAmt  = "SETTLEMENT AMOUNT"
	amexServiceFee     = "MERCHANT SERVICE FEE"
	amexTaxAmount      = "TAX AMOUNT"
	amexMerchantNumber = "SUBMITTING MERCHANT NUMBER"
)

type Amex struct{}

func NewAmex() *Amex {
	return &Amex{}
}

// Process assembles the banking schema from Amex columns. Mappings override
// the source headers except for the store code, which is always STORE CODE.
func (a *Amex) Process(ds *dataset.Dataset, rule *rules.BankRule) (*dataset.Dataset, error) {
	src := mapping.Normalize(ds)

	sources := map[string]string{
		ColTransactionDate:   mappedUpper(rule, ColTransactionDate, amexSubmissionDate),
		ColBankCreditDate:    mappedUpper(rule, ColBankCreditDate, amexSettlementDate),
		ColSAPCode:           amexStoreCode,
		ColAmount:            mappedUpper(rule, ColAmount, amexSubmissionAmt),
		ColTransactionAmount: mappedUpper(rule, ColTransactionAmount, amexSettlementAmt),
		ColBankCharges:       mappedUpper(rule, ColBankCharges, amexServiceFee),
		ColGST:               mappedUpper(rule, ColGST, amexTaxAmount),
		ColMID:               mappedUpper(rule, ColMID, amexMerchantNumber),
	}

	out := dataset.New(Schema...)

	for range src.Len() {
		out.Append()
	}

	for col, from := range sources {
		if vals, ok := src.Column(from); ok {
			out = out.WithColumn(col, vals)
		}
	}

	out = out.Fill(ColBankName, constant(rule, ColBankName, string(InstitutionAmex)))
	out = out.Fill(ColMode, constant(rule, ColMode, DefaultMode))

	for _, c := range DateColumns {
		out = coerce.DateColumn(out, c)
	}

	return mapping.Strip(out, []string{ColSAPCode}, mapping.DefaultStripToken), nil
}
