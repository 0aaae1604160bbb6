package process_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/misrecon/internal/handoff"
	misreconHttp "github.com/MrJamesThe3rd/misrecon/internal/http"
	"github.com/MrJamesThe3rd/misrecon/internal/http/artifact"
	"github.com/MrJamesThe3rd/misrecon/internal/http/process"
	"github.com/MrJamesThe3rd/misrecon/internal/http/respond"
	rulesHandler "github.com/MrJamesThe3rd/misrecon/internal/http/rules"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
	"github.com/MrJamesThe3rd/misrecon/internal/workbook"
)

const salesCSV = "Sales Report\nPeriod Nov\nCompany\nRegion All\nGenerated\n" +
	"AlternateStoreCode,StoreName,BillDate,Amount\nBP101,Central,01-11-2025,100\n"

const advancesCSV = "Advances\nStore,Order Date,Advance Amount\nCentral,02-11-2025,50\n"

// part is a file upload, or a plain form field when filename is empty.
type part struct {
	field    string
	filename string
	data     string
}

func multipartBody(t *testing.T, parts []part, values map[string]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.field, p.data))
			continue
		}

		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)

		_, err = fw.Write([]byte(p.data))
		require.NoError(t, err)
	}

	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}

	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func newServer(t *testing.T, set rules.Set) http.Handler {
	t.Helper()

	repo := rules.NewStatic(set)
	svc := pipeline.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	store, err := handoff.New(t.TempDir())
	require.NoError(t, err)

	return misreconHttp.New(
		process.NewHandler(svc, store, 10<<20),
		rulesHandler.NewHandler(repo),
		artifact.NewHandler(store),
		[]string{"http://localhost:3000"},
	)
}

func post(t *testing.T, h http.Handler, path string, parts []part, values map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, parts, values)

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Kind
}

func TestHandler_SalesThenAdvances(t *testing.T) {
	srv := newServer(t, rules.Defaults())

	rec := post(t, srv, "/api/v1/process/sales", []part{{field: "file", filename: "sales.csv", data: salesCSV}}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, workbook.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Processed_Sales.xlsx")

	salesID := rec.Header().Get(respond.ArtifactHeader)
	require.NotEmpty(t, salesID)

	sheets, err := workbook.Read(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "101", sheets[0].Data.Get(0, "StoreCode").Text())

	rec = post(t, srv, "/api/v1/process/advances",
		[]part{{field: "file", filename: "advances.csv", data: advancesCSV}},
		map[string]string{"sales_id": salesID},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sheets, err = workbook.Read(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, pipeline.SheetAdvances, sheets[1].Name)
	assert.Equal(t, "101", sheets[1].Data.Get(0, "Store Code").Text())

	get := httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/"+salesID, nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, get)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, salesID, rec.Header().Get(respond.ArtifactHeader))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sales.xlsx")
}

func TestHandler_CombineThenFinal(t *testing.T) {
	srv := newServer(t, rules.Defaults())

	combineCSV := "Combine MIS\nNov\nStore Code,Date,HB-Card\nS001,01-11-2025,250\n"

	rec := post(t, srv, "/api/v1/process/combine", []part{
		{field: "combine_mis", filename: "north.csv", data: combineCSV},
		{field: "combine_mis", filename: "south.csv", data: "Combine MIS\nNov\nStore Code,Date,HB-Card\nS002,01-11-2025,75\n"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Processed_Combine_MIS_Nov'25.xlsx")

	combineID := rec.Header().Get(respond.ArtifactHeader)

	finalCSV := "Final MIS\nNov\nStore Code,Date,HB-Card,Notes\nS002,01-11-2025,,keep\n"

	rec = post(t, srv, "/api/v1/process/final",
		[]part{{field: "final_mis", filename: "final.csv", data: finalCSV}},
		map[string]string{"combine_id": combineID},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sheets, err := workbook.Read(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	ds := sheets[0].Data
	assert.Equal(t, "75", ds.Get(0, "HB-Card").Text())
	assert.Equal(t, "keep", ds.Get(0, "Notes").Text())
	assert.True(t, ds.Has("Ad-Bank Offer"))
}

func bankingRules() rules.Set {
	set := rules.Defaults()
	set.BankRules = []*rules.BankRule{{
		BankName: "HDFC",
		StartRow: 1,
		Mappings: map[string]string{"Bank Credit Date": "Settled On", "SAP Code": "Outlet"},
	}}

	return set
}

func TestHandler_Banking(t *testing.T) {
	srv := newServer(t, bankingRules())

	rec := post(t, srv, "/api/v1/process/banking",
		[]part{
			{field: "bank_name", data: "HDFC"},
			{field: "bank_name", data: "Axis"},
			{field: "bank_name", data: "ICICI"},
			{field: "file_HDFC", filename: "hdfc.csv", data: "Settled On,Outlet\n01-11-2025,BP101\n20-11-2025,BP102\n"},
			{field: "file_Axis", filename: "axis.csv", data: "Date,Amount\n01-11-2025,5\n"},
		},
		map[string]string{"date_from_HDFC": "01-11-2025", "date_to_HDFC": "15-11-2025"},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Processed_Collection_Nov'25.xlsx")

	sheets, err := workbook.Read(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, pipeline.SheetBanking, sheets[0].Name)
	assert.Equal(t, 1, sheets[0].Data.Len())

	var report process.BankReport
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get(respond.BankReportHeader)), &report))

	assert.Equal(t, []string{"HDFC"}, report.Processed)
	assert.Equal(t, []process.BankIssue{
		{Bank: "ICICI", Reason: "no file uploaded"},
		{Bank: "Axis", Reason: "no bank rule"},
	}, report.Skipped)
	assert.Empty(t, report.Failures)
}

func TestHandler_BankingFailuresInErrorBody(t *testing.T) {
	srv := newServer(t, bankingRules())

	rec := post(t, srv, "/api/v1/process/banking",
		[]part{
			{field: "bank_name", data: "HDFC"},
			{field: "file_HDFC", filename: "hdfc.csv", data: ""},
		},
		nil,
	)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get(respond.BankReportHeader))

	var body struct {
		Kind    string             `json:"kind"`
		Details process.BankReport `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, respond.KindUnsupportedFormat, body.Kind)
	assert.Empty(t, body.Details.Processed)
	require.Len(t, body.Details.Failures, 1)
	assert.Equal(t, "HDFC", body.Details.Failures[0].Bank)
	assert.Contains(t, body.Details.Failures[0].Reason, "could not load file hdfc.csv")
}

func TestHandler_Inspect(t *testing.T) {
	srv := newServer(t, rules.Defaults())

	rec := post(t, srv, "/api/v1/inspect",
		[]part{{field: "file", filename: "final.csv", data: "Store Code,Date\nS001,01-11-2025\n"}},
		map[string]string{"preferred": pipeline.FinalSheet},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got pipeline.Inspection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, []string{"final"}, got.Sheets)
	assert.Equal(t, []string{"Store Code", "Date"}, got.Columns["final"])
	assert.False(t, got.PreferredPresent)
}

func TestHandler_Errors(t *testing.T) {
	type testCase struct {
		name       string
		set        rules.Set
		path       string
		parts      []part
		values     map[string]string
		wantStatus int
		wantKind   string
	}

	tests := []testCase{
		{
			name:       "MissingFile",
			set:        rules.Defaults(),
			path:       "/api/v1/process/sales",
			wantStatus: http.StatusBadRequest,
			wantKind:   respond.KindBadRequest,
		},
		{
			name:       "UnsupportedFormat",
			set:        rules.Defaults(),
			path:       "/api/v1/process/sales",
			parts:      []part{{field: "file", filename: "sales.pdf", data: "%PDF-1.4"}},
			wantStatus: http.StatusBadRequest,
			wantKind:   respond.KindUnsupportedFormat,
		},
		{
			name:       "MissingRule",
			set:        rules.Set{Schemas: rules.Defaults().Schemas},
			path:       "/api/v1/process/sales",
			parts:      []part{{field: "file", filename: "sales.csv", data: salesCSV}},
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   respond.KindMissingConfiguration,
		},
		{
			name:       "AdvancesWithoutSales",
			set:        rules.Defaults(),
			path:       "/api/v1/process/advances",
			parts:      []part{{field: "file", filename: "advances.csv", data: advancesCSV}},
			wantStatus: http.StatusBadRequest,
			wantKind:   respond.KindMissingInput,
		},
		{
			name:       "InvalidSalesID",
			set:        rules.Defaults(),
			path:       "/api/v1/process/advances",
			parts:      []part{{field: "file", filename: "advances.csv", data: advancesCSV}},
			values:     map[string]string{"sales_id": "not-a-uuid"},
			wantStatus: http.StatusBadRequest,
			wantKind:   respond.KindBadRequest,
		},
		{
			name:       "UnknownSalesID",
			set:        rules.Defaults(),
			path:       "/api/v1/process/advances",
			parts:      []part{{field: "file", filename: "advances.csv", data: advancesCSV}},
			values:     map[string]string{"sales_id": "7f1c2a34-0b4e-4d5c-9a7e-1f2d3c4b5a69"},
			wantStatus: http.StatusNotFound,
			wantKind:   respond.KindNotFound,
		},
		{
			name:       "BankingWithoutFiles",
			set:        rules.Defaults(),
			path:       "/api/v1/process/banking",
			values:     map[string]string{"bank_name": "HDFC"},
			wantStatus: http.StatusBadRequest,
			wantKind:   respond.KindMissingInput,
		},
		{
			name:       "FinalWithoutCombine",
			set:        rules.Defaults(),
			path:       "/api/v1/process/final",
			parts:      []part{{field: "final_mis", filename: "final.csv", data: "Store Code,Date\n"}},
			wantStatus: http.StatusBadRequest,
			wantKind:   respond.KindMissingInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newServer(t, tt.set), tt.path, tt.parts, tt.values)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
			assert.Equal(t, tt.wantKind, errorKind(t, rec))
		})
	}
}
