// Package handoff keeps the xlsx output of one processing stage on disk so
// a later stage can pick it up by id.
package handoff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/workbook"
)

var (
	ErrNotFound    = errors.New("artifact not found")
	ErrInvalidKind = errors.New("invalid artifact kind")
)

var kindPattern = regexp.MustCompile(`^[a-z][a-z0-9]*$`)

// Artifact is a stored workbook.
type Artifact struct {
	ID     uuid.UUID
	Kind   string
	Sheets []dataset.Sheet
}

// Data returns the first sheet's dataset, or nil when there are none.
func (a *Artifact) Data() *dataset.Dataset {
	if len(a.Sheets) == 0 {
		return nil
	}

	return a.Sheets[0].Data
}

// Sheet returns the named sheet's dataset.
func (a *Artifact) Sheet(name string) (*dataset.Dataset, bool) {
	for _, s := range a.Sheets {
		if strings.EqualFold(s.Name, name) {
			return s.Data, true
		}
	}

	return nil, false
}

type Store struct {
	dir string
}

// New creates dir when it does not exist.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Save writes the sheets to <id>_<kind>.xlsx and returns the new id.
func (s *Store) Save(ctx context.Context, kind string, sheets ...dataset.Sheet) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	if !kindPattern.MatchString(kind) {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf, sheets...); err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.xlsx", id, kind))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return uuid.Nil, fmt.Errorf("writing artifact: %w", err)
	}

	return id, nil
}

// Raw returns the stored workbook bytes and the kind it was saved under.
func (s *Store) Raw(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, id.String()+"_*.xlsx"))
	if err != nil {
		return nil, "", fmt.Errorf("finding artifact: %w", err)
	}

	if len(matches) == 0 {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, "", fmt.Errorf("reading artifact: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(matches[0]), ".xlsx")
	kind := strings.TrimPrefix(base, id.String()+"_")

	return data, kind, nil
}

func (s *Store) Load(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	data, kind, err := s.Raw(ctx, id)
	if err != nil {
		return nil, err
	}

	sheets, err := workbook.Read(data)
	if err != nil {
		return nil, fmt.Errorf("decoding artifact %s: %w", id, err)
	}

	return &Artifact{ID: id, Kind: kind, Sheets: sheets}, nil
}
