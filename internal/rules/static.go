package rules

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Static is an in-memory Repository seeded from a Set. Reads are served from
// copies so callers never share rule values.
type Static struct {
	mu       sync.RWMutex
	schemas  map[SchemaKind][]string
	mappings map[string]*MappingRule
	banks    map[string]*BankRule
}

func NewStatic(set Set) *Static {
	s := &Static{
		schemas:  make(map[SchemaKind][]string, len(set.Schemas)),
		mappings: make(map[string]*MappingRule, len(set.MappingRules)),
		banks:    make(map[string]*BankRule, len(set.BankRules)),
	}

	for k, cols := range set.Schemas {
		s.schemas[k] = slices.Clone(cols)
	}

	for _, r := range set.MappingRules {
		s.mappings[r.Name] = cloneMapping(r)
	}

	for _, r := range set.BankRules {
		s.banks[bankKey(r.BankName)] = r.WithDefaults()
	}

	return s
}

// LoadFile reads a YAML rule set. Schemas and mapping rules missing from the
// file are taken from Defaults.
func LoadFile(path string) (Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("reading rules file: %w", err)
	}

	return Parse(raw)
}

func Parse(raw []byte) (Set, error) {
	var set Set
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return Set{}, fmt.Errorf("parsing rules: %w", err)
	}

	def := Defaults()

	if set.Schemas == nil {
		set.Schemas = map[SchemaKind][]string{}
	}

	for k, cols := range set.Schemas {
		if !k.Valid() {
			return Set{}, fmt.Errorf("parsing rules: unknown schema %q", k)
		}

		set.Schemas[k] = trimList(cols)
	}

	for k, cols := range def.Schemas {
		if _, ok := set.Schemas[k]; !ok {
			set.Schemas[k] = cols
		}
	}

	for _, r := range def.MappingRules {
		if !slices.ContainsFunc(set.MappingRules, func(m *MappingRule) bool { return m.Name == r.Name }) {
			set.MappingRules = append(set.MappingRules, r)
		}
	}

	for _, r := range set.BankRules {
		if strings.TrimSpace(r.BankName) == "" {
			return Set{}, fmt.Errorf("parsing rules: bank rule without bank_name")
		}
	}

	return set, nil
}

func (s *Static) Schema(_ context.Context, kind SchemaKind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cols, ok := s.schemas[kind]
	if !ok || len(cols) == 0 {
		return nil, fmt.Errorf("schema %s: %w", kind, ErrNotFound)
	}

	return slices.Clone(cols), nil
}

func (s *Static) MappingRule(_ context.Context, name string) (*MappingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.mappings[name]
	if !ok {
		return nil, fmt.Errorf("mapping rule %s: %w", name, ErrNotFound)
	}

	return cloneMapping(r), nil
}

func (s *Static) BankRule(_ context.Context, bankName string) (*BankRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.banks[bankKey(bankName)]
	if !ok {
		return nil, fmt.Errorf("bank rule %s: %w", bankName, ErrNotFound)
	}

	return cloneBank(r), nil
}

// BankRules returns every bank rule ordered by bank name.
func (s *Static) BankRules(_ context.Context) ([]*BankRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*BankRule, 0, len(s.banks))
	for _, r := range s.banks {
		out = append(out, cloneBank(r))
	}

	slices.SortFunc(out, func(a, b *BankRule) int {
		return strings.Compare(a.BankName, b.BankName)
	})

	return out, nil
}

func (s *Static) SaveSchema(_ context.Context, kind SchemaKind, columns []string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown schema %q", kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemas[kind] = trimList(columns)

	return nil
}

func (s *Static) SaveMappingRule(_ context.Context, rule *MappingRule) error {
	if strings.TrimSpace(rule.Name) == "" {
		return fmt.Errorf("mapping rule without name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings[rule.Name] = cloneMapping(rule)

	return nil
}

func (s *Static) SaveBankRule(_ context.Context, rule *BankRule) error {
	if strings.TrimSpace(rule.BankName) == "" {
		return fmt.Errorf("bank rule without bank name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.banks[bankKey(rule.BankName)] = cloneBank(rule.WithDefaults())

	return nil
}

func (s *Static) DeleteBankRule(_ context.Context, bankName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bankKey(bankName)
	if _, ok := s.banks[key]; !ok {
		return fmt.Errorf("bank rule %s: %w", bankName, ErrNotFound)
	}

	delete(s.banks, key)

	return nil
}

// Bank names are unique regardless of case.
func bankKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))

	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

func cloneMapping(r *MappingRule) *MappingRule {
	out := *r
	out.Mappings = maps.Clone(r.Mappings)
	out.StripColumns = slices.Clone(r.StripColumns)
	out.ExcludePrefixes = slices.Clone(r.ExcludePrefixes)
	out.TrimColumns = slices.Clone(r.TrimColumns)
	out.NumericColumns = slices.Clone(r.NumericColumns)
	out.DateColumns = slices.Clone(r.DateColumns)

	if r.Copy != nil {
		c := *r.Copy
		out.Copy = &c
	}

	if r.Lookup != nil {
		l := *r.Lookup
		out.Lookup = &l
	}

	return &out
}

func cloneBank(r *BankRule) *BankRule {
	out := *r
	out.Mappings = maps.Clone(r.Mappings)

	return &out
}
