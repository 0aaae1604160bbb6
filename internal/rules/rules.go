// Package rules holds the admin-maintained configuration read by every
// processing request: canonical output schemas, file mapping rules and
// per-institution bank rules.
package rules

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("rule not found")

// SchemaKind names a canonical output schema.
type SchemaKind string

const (
	SchemaSales    SchemaKind = "sales"
	SchemaAdvances SchemaKind = "advances"
	SchemaBank     SchemaKind = "bank"
	SchemaFinal    SchemaKind = "final"
)

// Kinds lists every schema kind in display order.
var Kinds = []SchemaKind{SchemaSales, SchemaAdvances, SchemaBank, SchemaFinal}

func (k SchemaKind) Valid() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}

	return false
}

// CopyRule force-copies one source column into two canonical slots.
type CopyRule struct {
	Source string `yaml:"source" json:"source"`
	Dest   string `yaml:"dest" json:"dest"`
}

// LookupRule fills DestColumn by matching SourceColumn against
// LookupKeyColumn of another dataset and taking its ValueColumn.
type LookupRule struct {
	SourceColumn    string `yaml:"source_column" json:"source_column"`
	LookupKeyColumn string `yaml:"lookup_key_column" json:"lookup_key_column"`
	DestColumn      string `yaml:"dest_column" json:"dest_column"`
	ValueColumn     string `yaml:"value_column" json:"value_column"`
}

// MappingRule describes how one kind of upload maps onto its canonical schema.
type MappingRule struct {
	Name      string `yaml:"name" json:"name"`
	SheetName string `yaml:"sheet_name" json:"sheet_name"`
	StartRow  int    `yaml:"start_row" json:"start_row"`

	// Mappings is canonical name -> source header.
	Mappings map[string]string `yaml:"mappings" json:"mappings"`

	StripColumns    []string    `yaml:"strip_columns" json:"strip_columns"`
	StripToken      string      `yaml:"strip_token" json:"strip_token"`
	ExcludeColumn   string      `yaml:"exclude_column" json:"exclude_column"`
	ExcludePrefixes []string    `yaml:"exclude_prefixes" json:"exclude_prefixes"`
	Copy            *CopyRule   `yaml:"copy" json:"copy,omitempty"`
	TrimColumns     []string    `yaml:"trim_columns" json:"trim_columns"`
	NumericColumns  []string    `yaml:"numeric_columns" json:"numeric_columns"`
	DateColumns     []string    `yaml:"date_columns" json:"date_columns"`
	DateLayout      string      `yaml:"date_layout" json:"date_layout"`
	Lookup          *LookupRule `yaml:"lookup" json:"lookup,omitempty"`
}

// BankRule is the per-institution upload description.
type BankRule struct {
	BankName  string            `yaml:"bank_name" json:"bank_name"`
	SheetName string            `yaml:"sheet_name" json:"sheet_name"`
	StartRow  int               `yaml:"start_row" json:"start_row"`
	Mappings  map[string]string `yaml:"mappings" json:"mappings"`
}

// Mapped returns the configured source header for a canonical column, or
// def when none is set.
func (b *BankRule) Mapped(canonical, def string) string {
	if b == nil {
		return def
	}

	if v := strings.TrimSpace(b.Mappings[canonical]); v != "" {
		return v
	}

	return def
}

//go:generate mockgen -source=rules.go -destination=repository_mock.go -package=rules
type Repository interface {
	Schema(ctx context.Context, kind SchemaKind) ([]string, error)
	MappingRule(ctx context.Context, name string) (*MappingRule, error)
	BankRule(ctx context.Context, bankName string) (*BankRule, error)
	BankRules(ctx context.Context) ([]*BankRule, error)

	SaveSchema(ctx context.Context, kind SchemaKind, columns []string) error
	SaveMappingRule(ctx context.Context, rule *MappingRule) error
	SaveBankRule(ctx context.Context, rule *BankRule) error
	DeleteBankRule(ctx context.Context, bankName string) error
}

// Set is a complete configuration bundle, as stored in a rules file.
type Set struct {
	Schemas      map[SchemaKind][]string `yaml:"schemas"`
	MappingRules []*MappingRule          `yaml:"mapping_rules"`
	BankRules    []*BankRule             `yaml:"bank_rules"`
}

// ParseList splits newline or comma separated admin input into trimmed,
// non-empty entries.
func ParseList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ','
	})

	out := make([]string, 0, len(fields))

	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}

	return out
}
