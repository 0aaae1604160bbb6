package bank

import (
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/coerce"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/mapping"
	"github.com/MrJamesThe3rd/misrecon/internal/resolve"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

// Generic maps any bank export with the rule's column mappings.
type Generic struct {
	columns []string
}

// NewGeneric builds a processor that reindexes onto columns, or onto Schema
// when columns is empty.
func NewGeneric(columns []string) *Generic {
	if len(columns) == 0 {
		columns = Schema
	}

	return &Generic{columns: append([]string(nil), columns...)}
}

func (g *Generic) Process(ds *dataset.Dataset, rule *rules.BankRule) (*dataset.Dataset, error) {
	var mappings map[string]string
	bankName := ""

	if rule != nil {
		mappings = rule.Mappings
		bankName = rule.BankName
	}

	out := mapping.Rename(mapping.Normalize(ds), mappings, g.columns).Select(g.columns)

	out = out.Fill(ColBankName, constant(rule, ColBankName, bankName))
	out = out.Fill(ColMode, constant(rule, ColMode, DefaultMode))

	for _, c := range DateColumns {
		out = coerce.DateColumn(out, c)
	}

	if sap, ok := resolve.Find(out.Columns(), "SAP CODE"); ok {
		out = mapping.Strip(out, []string{sap}, mapping.DefaultStripToken).Map(sap, coerce.Trim)
	}

	return out, nil
}

// mappedUpper returns the upper-cased source header for a canonical column.
func mappedUpper(rule *rules.BankRule, canonical, def string) string {
	if rule != nil {
		for k, v := range rule.Mappings {
			if strings.EqualFold(strings.TrimSpace(k), canonical) && strings.TrimSpace(v) != "" {
				return strings.ToUpper(strings.TrimSpace(v))
			}
		}
	}

	return strings.ToUpper(def)
}
