package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
	"github.com/MrJamesThe3rd/misrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

func finalWorkbook(t *testing.T, target string) []byte {
	t.Helper()

	return xlsx(t,
		sheetFixture{name: "Summary", rows: [][]any{{"Final MIS"}}},
		sheetFixture{name: target, rows: [][]any{
			{"Final MIS"},
			{"November"},
			{"Store Code", "Date", "HB-Card", "Notes"},
			{"S001", "01-11-2025", 0, "keep"},
			{"S002", "01-11-2025", 0, "keep"},
		}},
	)
}

func combineData() *dataset.Dataset {
	return dataset.FromRecords(
		[]string{"Store Code", "Date", "HB-Card", "Remarks", "CK"},
		[][]string{
			{"S001", "01-11-2025", "250", "", "S001_01-11-2025"},
			{"S001", "01-11-2025", "999", "late", "S001_01-11-2025"},
		},
	)
}

func TestService_Final(t *testing.T) {
	type testCase struct {
		name       string
		target     string
		wantTarget string
	}

	tests := []testCase{
		{name: "PreferredSheet", target: pipeline.FinalSheet, wantTarget: pipeline.FinalSheet},
		{name: "HeuristicSheet", target: "Recon Nov", wantTarget: "Recon Nov"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, func(m *rules.MockRepository) {
				m.EXPECT().Schema(gomock.Any(), rules.SchemaFinal).Return([]string{"HB-Card", "Remarks"}, nil)
			})

			res, err := svc.Final(context.Background(),
				pipeline.Upload{Filename: "final.xlsx", Data: finalWorkbook(t, tt.target)},
				combineData(),
			)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTarget, res.Target)
			require.Len(t, res.Sheets, 2)
			assert.Equal(t, "Summary", res.Sheets[0].Name)

			ds := res.Sheets[1].Data
			assert.Equal(t, []string{"Store Code", "Date", "HB-Card", "Notes", "Remarks"}, ds.Columns())
			assert.Equal(t, []string{"250", "0"}, texts(ds, "HB-Card"))
			assert.Equal(t, []string{"keep", "keep"}, texts(ds, "Notes"))
			assert.True(t, ds.Get(0, "Remarks").IsNull())

			d, ok := ds.Get(1, "Date").Time()
			require.True(t, ok)
			assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), d)
		})
	}
}

func TestService_Final_Errors(t *testing.T) {
	t.Run("NoTargetSheet", func(t *testing.T) {
		svc := newService(t, func(m *rules.MockRepository) {
			m.EXPECT().Schema(gomock.Any(), rules.SchemaFinal).Return([]string{"HB-Card"}, nil)
		})

		data := xlsx(t, sheetFixture{name: "Notes", rows: [][]any{{"a"}, {"b"}, {"Region", "Amount"}}})

		_, err := svc.Final(context.Background(), pipeline.Upload{Filename: "final.xlsx", Data: data}, combineData())
		assert.ErrorIs(t, err, pipeline.ErrTargetSheetNotFound)
	})

	t.Run("CombineKeysMissing", func(t *testing.T) {
		svc := newService(t, func(m *rules.MockRepository) {
			m.EXPECT().Schema(gomock.Any(), rules.SchemaFinal).Return([]string{"HB-Card"}, nil)
		})

		combine := dataset.FromRecords([]string{"Region"}, [][]string{{"North"}})

		_, err := svc.Final(context.Background(),
			pipeline.Upload{Filename: "final.xlsx", Data: finalWorkbook(t, pipeline.FinalSheet)},
			combine,
		)
		assert.ErrorIs(t, err, reconcile.ErrKeyColumnsNotFound)
	})

	t.Run("CombineRequired", func(t *testing.T) {
		svc := newService(t, nil)

		_, err := svc.Final(context.Background(), pipeline.Upload{Filename: "final.xlsx"}, nil)
		assert.ErrorIs(t, err, pipeline.ErrMissingPrerequisite)
	})
}

func TestService_Final_KeepsNonDateCells(t *testing.T) {
	svc := newService(t, func(m *rules.MockRepository) {
		m.EXPECT().Schema(gomock.Any(), rules.SchemaFinal).Return([]string{"HB-Card"}, nil)
	})

	banked := time.Date(2025, time.November, 4, 0, 0, 0, 0, time.UTC)

	data := xlsx(t, sheetFixture{name: pipeline.FinalSheet, rows: [][]any{
		{"Final MIS"},
		{"November"},
		{"Store Code", "Date", "HB-Card", "Banked On", "Updated Qty", "Notes"},
		{"S001", "01-11-2025", 0, banked, 12, "2025-11-01 draft"},
	}})

	res, err := svc.Final(context.Background(), pipeline.Upload{Filename: "final.xlsx", Data: data}, combineData())
	require.NoError(t, err)

	ds := res.Sheets[0].Data
	assert.Equal(t, "250", ds.Get(0, "HB-Card").Text())

	got, ok := ds.Get(0, "Banked On").Time()
	require.True(t, ok)
	assert.Equal(t, banked, got)

	qty := ds.Get(0, "Updated Qty")
	assert.Equal(t, dataset.KindText, qty.Kind())
	assert.Equal(t, "12", qty.Text())

	assert.Equal(t, "2025-11-01 draft", ds.Get(0, "Notes").Text())
}
