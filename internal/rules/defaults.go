package rules

// Rule names used by the processing pipeline.
const (
	RuleSales    = "sales"
	RuleAdvances = "advances"
)

// Bank rule defaults applied when a saved rule leaves them empty.
const (
	DefaultBankStartRow = 2
	DefaultBankSheet    = "Sheet1"
)

var salesColumns = []string{
	"AlternateStoreCode", "RegionName", "StoreName", "StoreCode", "BillDate",
	"Quantity", "Discount", "DiscountPercentage", "BaseValue",
	"SGST", "CGST", "IGST", "UTGST", "Tax",
	"Cash", "Card", "CreditCardType", "Coupon", "Credit", "InsuranceCredit",
	"CashAdvance", "CreditCardAdvance", "AdvancedAmount", "GiftVoucher",
	"CCNUsed", "CCNIssued", "PointsAllocated", "PointsRedeemed", "Cheque",
	"PrepaidCard", "OtherPayments", "Amount", "MRPTOTAL", "PinCode", "WSDN",
	"Accentiv", "AM", "CA", "Cards", "MA", "MO", "Online Payment", "Paytm",
	"PayTM DQR", "PayU Payment", "PP", "QC Wallet", "VC", "Vouchagram", "UPI",
	"Credit Card - Airport Stores", "UPI - Airport Stores", "Cash - Airport Stores",
}

var advancesColumns = []string{
	"Region", "Store", "Store Code", "Order Date", "Order Number",
	"Last Bill Date", "Bill Number", "Customer Code", "Customer Name",
	"No Of Items", "Total Quantity", "Approximate Value", "Advance Amount",
	"Cash", "Credit Card", "Coupon", "Credit", "GV", "CCN", "Points", "Cheque",
	"Prepaid Card", "Temp Credit", "Cash Advance", "Credit Card Advance",
	"OtherPayments", "Payment Mode", "Balance Amount", "Status",
}

var bankColumns = []string{
	"Bank Name", "Mode", "Transaction Date", "Bank Credit Date", "SAP Code",
	"Amount", "Transaction Amount", "Bank Charges", "GST", "MID",
}

// finalColumns are the Final MIS columns a Combine MIS upload may overwrite.
var finalColumns = []string{
	"HB-Card", "HB-Cash", "HB-Online",
	"MR-Card", "MR-Cash", "MR-Online",
	"CO-Card", "CO-Cash", "CO-Online-Paytm", "CO-Online-Other", "CO-CCN", "CO-Bank Offer",
	"Remarks", "Performa Invoice Number",
	"Ad-Card", "Ad-Cash", "Ad-Online - PayTm", "Ad-Online - Other", "Ad-CCN", "Ad-Store Correction", "Ad-Bank Offer",
}

// FinalUpdateColumns returns a copy of the default reconciliation whitelist.
func FinalUpdateColumns() []string {
	return append([]string(nil), finalColumns...)
}

// Defaults returns the configuration a fresh installation starts with.
func Defaults() Set {
	return Set{
		Schemas: map[SchemaKind][]string{
			SchemaSales:    append([]string(nil), salesColumns...),
			SchemaAdvances: append([]string(nil), advancesColumns...),
			SchemaBank:     append([]string(nil), bankColumns...),
			SchemaFinal:    FinalUpdateColumns(),
		},
		MappingRules: []*MappingRule{
			{
				Name:      RuleSales,
				SheetName: "SalesReportAbstract",
				StartRow:  6,
				Mappings: map[string]string{
					"AlternateStoreCode": "AlternateStoreCode",
					"StoreName":          "StoreName",
				},
				StripColumns:    []string{"StoreCode", "AlternateStoreCode"},
				StripToken:      "BP",
				ExcludeColumn:   "StoreCode",
				ExcludePrefixes: []string{"97", "98"},
				Copy:            &CopyRule{Source: "AlternateStoreCode", Dest: "StoreCode"},
				TrimColumns:     []string{"StoreName", "AlternateStoreCode"},
				DateColumns:     []string{"BillDate"},
			},
			{
				Name:      RuleAdvances,
				SheetName: "Sheet",
				StartRow:  2,
				Mappings:  map[string]string{"Store": "Store"},
				NumericColumns: []string{
					"Total Quantity", "Approximate Value", "Advance Amount",
					"Cash", "Credit Card", "OtherPayments",
				},
				DateColumns: []string{"Order Date", "Last Bill Date"},
				Lookup: &LookupRule{
					SourceColumn:    "Store",
					LookupKeyColumn: "StoreName",
					DestColumn:      "Store Code",
					ValueColumn:     "StoreCode",
				},
			},
		},
	}
}

// WithDefaults returns a copy of the rule with empty fields defaulted.
func (b *BankRule) WithDefaults() *BankRule {
	out := *b
	if out.StartRow <= 0 {
		out.StartRow = DefaultBankStartRow
	}

	if out.SheetName == "" {
		out.SheetName = DefaultBankSheet
	}

	if out.Mappings == nil {
		out.Mappings = map[string]string{}
	}

	return &out
}
