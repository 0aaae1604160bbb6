package pipeline_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

type sheetFixture struct {
	name string
	rows [][]any
}

func xlsx(t *testing.T, sheets ...sheetFixture) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}

		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)

			values := row
			require.NoError(t, f.SetSheetRow(s.name, cell, &values))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.Bytes()
}

func newService(t *testing.T, setup func(m *rules.MockRepository)) *pipeline.Service {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := rules.NewMockRepository(ctrl)

	if setup != nil {
		setup(repo)
	}

	return pipeline.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func texts(ds *dataset.Dataset, col string) []string {
	vals, _ := ds.Column(col)
	out := make([]string, len(vals))

	for i, v := range vals {
		out[i] = v.Text()
	}

	return out
}
