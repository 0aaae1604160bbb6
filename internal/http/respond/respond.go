// Package respond writes the JSON and workbook responses shared by the
// HTTP handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/handoff"
	"github.com/MrJamesThe3rd/misrecon/internal/loader"
	"github.com/MrJamesThe3rd/misrecon/internal/mapping"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
	"github.com/MrJamesThe3rd/misrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
	"github.com/MrJamesThe3rd/misrecon/internal/workbook"
)

const (
	// ArtifactHeader carries the id a stored workbook can be fetched by.
	ArtifactHeader = "X-Artifact-ID"
	// BankReportHeader carries the JSON outcome of every bank in a banking run.
	BankReportHeader = "X-Bank-Report"
)

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details any    `json:"details,omitempty"`
}

// Error kinds reported to clients.
const (
	KindBadRequest           = "bad_request"
	KindUnsupportedFormat    = "unsupported_format"
	KindMissingConfiguration = "missing_configuration"
	KindMissingInput         = "missing_input"
	KindKeyColumnsNotFound   = "key_columns_not_found"
	KindSheetNotFound        = "sheet_not_found"
	KindEmptyResult          = "empty_result"
	KindNotFound             = "not_found"
	KindInternal             = "internal"
)

// Classify maps an error onto a status code and kind.
func Classify(err error) (int, string) {
	var stageErr *mapping.StageError

	switch {
	case errors.Is(err, loader.ErrUnsupportedFormat):
		return http.StatusBadRequest, KindUnsupportedFormat
	case errors.Is(err, pipeline.ErrNoInput), errors.Is(err, pipeline.ErrMissingPrerequisite):
		return http.StatusBadRequest, KindMissingInput
	case errors.Is(err, mapping.ErrMissingConfiguration):
		return http.StatusUnprocessableEntity, KindMissingConfiguration
	case errors.Is(err, reconcile.ErrKeyColumnsNotFound):
		return http.StatusUnprocessableEntity, KindKeyColumnsNotFound
	case errors.Is(err, pipeline.ErrTargetSheetNotFound):
		return http.StatusUnprocessableEntity, KindSheetNotFound
	case errors.Is(err, dataset.ErrEmptyResult):
		return http.StatusUnprocessableEntity, KindEmptyResult
	case errors.As(err, &stageErr):
		return http.StatusUnprocessableEntity, "mapping_" + string(stageErr.Stage)
	case errors.Is(err, handoff.ErrNotFound), errors.Is(err, rules.ErrNotFound):
		return http.StatusNotFound, KindNotFound
	}

	return http.StatusInternalServerError, KindInternal
}

// Error writes err as a JSON body with the status Classify picks.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ErrorDetails(w, r, err, nil)
}

// ErrorDetails is Error with extra context in the body's details field.
func ErrorDetails(w http.ResponseWriter, r *http.Request, err error, details any) {
	status, kind := Classify(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	JSON(w, status, errorResponse{Error: err.Error(), Kind: kind, Details: details})
}

// BadRequest reports a malformed request.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: KindBadRequest})
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Workbook sends raw xlsx bytes as a download.
func Workbook(w http.ResponseWriter, id uuid.UUID, filename string, data []byte) {
	w.Header().Set("Content-Type", workbook.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if id != uuid.Nil {
		w.Header().Set(ArtifactHeader, id.String())
	}

	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}
