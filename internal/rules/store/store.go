// Package store persists rules in Postgres. Each rule is one JSONB document
// keyed by its name.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the rule tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrating rules schema: %w", err)
	}

	return nil
}

// Seed inserts every schema and rule of set that is not stored yet. Existing
// rows are left as the administrator saved them.
func (s *Store) Seed(ctx context.Context, set rules.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed: %w", err)
	}
	defer tx.Rollback()

	for kind, cols := range set.Schemas {
		raw, err := json.Marshal(cols)
		if err != nil {
			return fmt.Errorf("encoding schema %s: %w", kind, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schemas (kind, columns) VALUES ($1, $2) ON CONFLICT (kind) DO NOTHING`,
			string(kind), raw,
		); err != nil {
			return fmt.Errorf("seeding schema %s: %w", kind, err)
		}
	}

	for _, r := range set.MappingRules {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding mapping rule %s: %w", r.Name, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mapping_rules (name, rule) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			r.Name, raw,
		); err != nil {
			return fmt.Errorf("seeding mapping rule %s: %w", r.Name, err)
		}
	}

	for _, r := range set.BankRules {
		raw, err := json.Marshal(r.WithDefaults())
		if err != nil {
			return fmt.Errorf("encoding bank rule %s: %w", r.BankName, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bank_rules (bank_key, bank_name, rule) VALUES ($1, $2, $3) ON CONFLICT (bank_key) DO NOTHING`,
			bankKey(r.BankName), r.BankName, raw,
		); err != nil {
			return fmt.Errorf("seeding bank rule %s: %w", r.BankName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	return nil
}

func (s *Store) Schema(ctx context.Context, kind rules.SchemaKind) ([]string, error) {
	var raw []byte

	err := s.db.QueryRowContext(ctx, `SELECT columns FROM schemas WHERE kind = $1`, string(kind)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("schema %s: %w", kind, rules.ErrNotFound)
		}

		return nil, fmt.Errorf("getting schema %s: %w", kind, err)
	}

	var cols []string
	if err := json.Unmarshal(raw, &cols); err != nil {
		return nil, fmt.Errorf("decoding schema %s: %w", kind, err)
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("schema %s: %w", kind, rules.ErrNotFound)
	}

	return cols, nil
}

func (s *Store) MappingRule(ctx context.Context, name string) (*rules.MappingRule, error) {
	var raw []byte

	err := s.db.QueryRowContext(ctx, `SELECT rule FROM mapping_rules WHERE name = $1`, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("mapping rule %s: %w", name, rules.ErrNotFound)
		}

		return nil, fmt.Errorf("getting mapping rule %s: %w", name, err)
	}

	var r rules.MappingRule
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decoding mapping rule %s: %w", name, err)
	}

	r.Name = name

	return &r, nil
}

func (s *Store) BankRule(ctx context.Context, bankName string) (*rules.BankRule, error) {
	r, err := scanBank(s.db.QueryRowContext(ctx, `SELECT rule FROM bank_rules WHERE bank_key = $1`, bankKey(bankName)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bank rule %s: %w", bankName, rules.ErrNotFound)
		}

		return nil, fmt.Errorf("getting bank rule %s: %w", bankName, err)
	}

	return r, nil
}

func (s *Store) BankRules(ctx context.Context) ([]*rules.BankRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rule FROM bank_rules ORDER BY bank_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing bank rules: %w", err)
	}
	defer rows.Close()

	var out []*rules.BankRule

	for rows.Next() {
		r, err := scanBank(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bank rule: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bank rules: %w", err)
	}

	return out, nil
}

func (s *Store) SaveSchema(ctx context.Context, kind rules.SchemaKind, columns []string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown schema %q", kind)
	}

	raw, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("encoding schema %s: %w", kind, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schemas (kind, columns, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (kind) DO UPDATE SET columns = EXCLUDED.columns, updated_at = NOW()`,
		string(kind), raw,
	)
	if err != nil {
		return fmt.Errorf("saving schema %s: %w", kind, err)
	}

	return nil
}

func (s *Store) SaveMappingRule(ctx context.Context, rule *rules.MappingRule) error {
	if strings.TrimSpace(rule.Name) == "" {
		return fmt.Errorf("mapping rule without name")
	}

	raw, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("encoding mapping rule %s: %w", rule.Name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mapping_rules (name, rule, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET rule = EXCLUDED.rule, updated_at = NOW()`,
		rule.Name, raw,
	)
	if err != nil {
		return fmt.Errorf("saving mapping rule %s: %w", rule.Name, err)
	}

	return nil
}

func (s *Store) SaveBankRule(ctx context.Context, rule *rules.BankRule) error {
	if strings.TrimSpace(rule.BankName) == "" {
		return fmt.Errorf("bank rule without bank name")
	}

	raw, err := json.Marshal(rule.WithDefaults())
	if err != nil {
		return fmt.Errorf("encoding bank rule %s: %w", rule.BankName, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bank_rules (bank_key, bank_name, rule, updated_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (bank_key) DO UPDATE SET bank_name = EXCLUDED.bank_name, rule = EXCLUDED.rule, updated_at = NOW()`,
		bankKey(rule.BankName), rule.BankName, raw,
	)
	if err != nil {
		return fmt.Errorf("saving bank rule %s: %w", rule.BankName, err)
	}

	return nil
}

func (s *Store) DeleteBankRule(ctx context.Context, bankName string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bank_rules WHERE bank_key = $1`, bankKey(bankName))
	if err != nil {
		return fmt.Errorf("deleting bank rule %s: %w", bankName, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting bank rule %s: %w", bankName, err)
	}

	if n == 0 {
		return fmt.Errorf("bank rule %s: %w", bankName, rules.ErrNotFound)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBank(s scanner) (*rules.BankRule, error) {
	var raw []byte
	if err := s.Scan(&raw); err != nil {
		return nil, err
	}

	var r rules.BankRule
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decoding bank rule: %w", err)
	}

	return &r, nil
}

func bankKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
