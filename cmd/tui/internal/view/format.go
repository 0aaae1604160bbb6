package view

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
)

const processTimeout = 2 * time.Minute

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// FormatValue renders a cell the way it is written to a workbook.
func FormatValue(v dataset.Value) string {
	switch v.Kind() {
	case dataset.KindNull:
		return ""
	case dataset.KindDate:
		t, _ := v.Time()
		return t.Format(dataset.DayMonthYear)
	}

	return v.Text()
}

// processCtx returns a context with the standard timeout for one pipeline
// run.
func processCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), processTimeout)
}

func readUpload(path string) (pipeline.Upload, error) {
	path = strings.TrimSpace(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Upload{}, err
	}

	return pipeline.Upload{Filename: filepath.Base(path), Data: data}, nil
}

// splitPaths reads a comma separated list of paths.
func splitPaths(s string) []string {
	var out []string

	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
