// Package pipeline runs the processing stages end to end: it fetches rules,
// loads uploads and hands the datasets to the mapping, bank and
// reconciliation packages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/encoding"
	"github.com/MrJamesThe3rd/misrecon/internal/loader"
	"github.com/MrJamesThe3rd/misrecon/internal/mapping"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

var (
	ErrMissingConfiguration = mapping.ErrMissingConfiguration
	ErrNoInput              = errors.New("no input files")
	ErrMissingPrerequisite  = errors.New("earlier stage output required")
)

// Upload is one file received from a caller.
type Upload struct {
	Filename string
	Data     []byte
}

type Loader interface {
	Load(data []byte, filename, sheet string, startRow int) (*dataset.Dataset, error)
	LoadWorkbook(data []byte, filename string, startRow int) ([]dataset.Sheet, error)
}

type Service struct {
	rules       rules.Repository
	loader      Loader
	logger      *slog.Logger
	strictDates bool
}

type Option func(*Service)

func WithLoader(l Loader) Option {
	return func(s *Service) {
		s.loader = l
	}
}

// WithStrictDates stops final reconciliation from matching rows whose date
// did not parse.
func WithStrictDates(strict bool) Option {
	return func(s *Service) {
		s.strictDates = strict
	}
}

func NewService(repo rules.Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		rules:  repo,
		loader: loader.New(),
		logger: logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) mappingRule(ctx context.Context, name string) (*rules.MappingRule, error) {
	rule, err := s.rules.MappingRule(ctx, name)
	if errors.Is(err, rules.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s rule not set", ErrMissingConfiguration, name)
	}

	if err != nil {
		return nil, fmt.Errorf("getting %s rule: %w", name, err)
	}

	return rule, nil
}

func (s *Service) schema(ctx context.Context, kind rules.SchemaKind) ([]string, error) {
	cols, err := s.rules.Schema(ctx, kind)
	if errors.Is(err, rules.ErrNotFound) || (err == nil && len(cols) == 0) {
		return nil, fmt.Errorf("%w: %s output columns not set", ErrMissingConfiguration, kind)
	}

	if err != nil {
		return nil, fmt.Errorf("getting %s schema: %w", kind, err)
	}

	return cols, nil
}

// loadAttrs describes a loaded upload for logging. CSV uploads also carry
// the detected charset.
func loadAttrs(stage string, up Upload, ds *dataset.Dataset) []any {
	attrs := []any{"stage", stage, "file", up.Filename, "rows", ds.Len(), "columns", ds.Width()}

	if strings.EqualFold(filepath.Ext(up.Filename), ".csv") {
		attrs = append(attrs, "charset", encoding.Sniff(up.Data))
	}

	return attrs
}
