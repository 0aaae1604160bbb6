// Package source opens the rules repository selected by configuration.
package source

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/misrecon/internal/config"
	"github.com/MrJamesThe3rd/misrecon/internal/database"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
	"github.com/MrJamesThe3rd/misrecon/internal/rules/store"
)

// Open returns the configured repository and a function releasing what it
// holds. File rules come from cfg.Rules.File, or the built-in defaults when
// unset. Database rules are migrated and seeded from the same set.
func Open(ctx context.Context, cfg *config.Config) (rules.Repository, func() error, error) {
	set := rules.Defaults()

	if cfg.Rules.File != "" {
		var err error
		if set, err = rules.LoadFile(cfg.Rules.File); err != nil {
			return nil, nil, err
		}
	}

	if cfg.Rules.Source == config.RulesFromFile {
		return rules.NewStatic(set), func() error { return nil }, nil
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := store.New(db)

	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	if err := s.Seed(ctx, set); err != nil {
		db.Close()
		return nil, nil, err
	}

	return s, db.Close, nil
}
