package process

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/misrecon/internal/bank"
	"github.com/MrJamesThe3rd/misrecon/internal/dataset"
	"github.com/MrJamesThe3rd/misrecon/internal/handoff"
	"github.com/MrJamesThe3rd/misrecon/internal/http/respond"
	"github.com/MrJamesThe3rd/misrecon/internal/pipeline"
)

// Artifact kinds, also used in stored file names.
const (
	KindSales    = "sales"
	KindAdvances = "advances"
	KindBanking  = "banking"
	KindCombine  = "combine"
	KindFinal    = "final"
)

// Form fields.
const (
	fieldFile      = "file"
	fieldSalesID   = "sales_id"
	fieldBankName  = "bank_name"
	fieldCombine   = "combine_mis"
	fieldCombineID = "combine_id"
	fieldFinal     = "final_mis"
	fieldPreferred = "preferred"
)

type Handler struct {
	svc       *pipeline.Service
	artifacts *handoff.Store
	maxUpload int64
}

func NewHandler(svc *pipeline.Service, artifacts *handoff.Store, maxUpload int64) *Handler {
	return &Handler{
		svc:       svc,
		artifacts: artifacts,
		maxUpload: maxUpload,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/sales", h.sales)
	r.Post("/advances", h.advances)
	r.Post("/banking", h.banking)
	r.Post("/combine", h.combine)
	r.Post("/final", h.final)
}

// InspectRoutes are mounted separately since inspection stores nothing.
func (h *Handler) InspectRoutes(r chi.Router) {
	r.Post("/", h.inspect)
}

func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	up, err := upload(r, fieldFile)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	ds, err := h.svc.Sales(r.Context(), up)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.store(w, r, KindSales, pipeline.FilenameSales, dataset.Sheet{Name: pipeline.SheetSales, Data: ds})
}

func (h *Handler) advances(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	up, err := upload(r, fieldFile)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	sales, ok := h.previous(w, r, fieldSalesID)
	if !ok {
		return
	}

	sheets, err := h.svc.Advances(r.Context(), up, sales)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.store(w, r, KindAdvances, pipeline.FilenameAdvances, sheets...)
}

// BankReport is what happened to each bank of a banking request.
type BankReport struct {
	Processed []string    `json:"processed"`
	Skipped   []BankIssue `json:"skipped,omitempty"`
	Failures  []BankIssue `json:"failures,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
}

type BankIssue struct {
	Bank   string `json:"bank"`
	Reason string `json:"reason"`
}

func newBankReport(missing []string, res *bank.Result) *BankReport {
	rep := &BankReport{Processed: []string{}}

	for _, name := range missing {
		rep.Skipped = append(rep.Skipped, BankIssue{Bank: name, Reason: "no file uploaded"})
	}

	if res == nil {
		return rep
	}

	rep.Processed = append(rep.Processed, res.Processed...)
	rep.Warnings = res.Warnings

	for _, sk := range res.Skipped {
		rep.Skipped = append(rep.Skipped, BankIssue{Bank: sk.BankName, Reason: sk.Reason})
	}

	for _, f := range res.Failures {
		rep.Failures = append(rep.Failures, BankIssue{Bank: f.BankName, Reason: f.Err.Error()})
	}

	return rep
}

// banking reads one file_<bank> upload and optional date_from_<bank> and
// date_to_<bank> bounds per bank_name value. The per-bank outcome is sent in
// BankReportHeader, or in the error details when nothing was produced.
func (h *Handler) banking(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	var (
		inputs  []bank.Input
		missing []string
	)

	for _, name := range r.MultipartForm.Value[fieldBankName] {
		up, err := upload(r, "file_"+name)
		if err != nil {
			missing = append(missing, name)
			continue
		}

		inputs = append(inputs, bank.Input{
			BankName: name,
			Filename: up.Filename,
			Data:     up.Data,
			From:     r.FormValue("date_from_" + name),
			To:       r.FormValue("date_to_" + name),
		})
	}

	res, err := h.svc.Banking(r.Context(), inputs)
	report := newBankReport(missing, res)

	if err != nil {
		respond.ErrorDetails(w, r, err, report)
		return
	}

	if raw, err := json.Marshal(report); err == nil {
		w.Header().Set(respond.BankReportHeader, string(raw))
	}

	h.store(w, r, KindBanking, pipeline.BankingFilename(res.Data), dataset.Sheet{Name: pipeline.SheetBanking, Data: res.Data})
}

func (h *Handler) combine(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	uploads, err := uploads(r, fieldCombine)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	res, err := h.svc.Combine(r.Context(), uploads)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.store(w, r, KindCombine, pipeline.CombineFilename(res), dataset.Sheet{Name: pipeline.SheetCombine, Data: res.Data})
}

// final takes the combine dataset from combine_id, or processes combine_mis
// uploads sent along with the Final MIS.
func (h *Handler) final(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	up, err := upload(r, fieldFinal)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	combine, ok := h.previous(w, r, fieldCombineID)
	if !ok {
		return
	}

	if combine == nil {
		if files, err := uploads(r, fieldCombine); err == nil {
			res, err := h.svc.Combine(r.Context(), files)
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			combine = res.Data
		}
	}

	res, err := h.svc.Final(r.Context(), up, combine)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.store(w, r, KindFinal, pipeline.FilenameFinal, res.Sheets...)
}

func (h *Handler) inspect(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	up, err := upload(r, fieldFile)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	got, err := h.svc.Inspect(r.Context(), up, r.FormValue(fieldPreferred))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, got)
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return false
	}

	return true
}

// previous loads the first sheet of the artifact named by the form field.
// A missing field yields a nil dataset.
func (h *Handler) previous(w http.ResponseWriter, r *http.Request, field string) (*dataset.Dataset, bool) {
	raw := r.FormValue(field)
	if raw == "" {
		return nil, true
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		respond.BadRequest(w, fmt.Sprintf("%s is not a valid id", field))
		return nil, false
	}

	art, err := h.artifacts.Load(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return art.Data(), true
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request, kind, filename string, sheets ...dataset.Sheet) {
	id, err := h.artifacts.Save(r.Context(), kind, sheets...)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	data, _, err := h.artifacts.Raw(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Workbook(w, id, filename, data)
}

func upload(r *http.Request, field string) (pipeline.Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return pipeline.Upload{}, fmt.Errorf("%s field is required", field)
	}
	defer file.Close()

	return read(file, header.Filename)
}

func uploads(r *http.Request, field string) ([]pipeline.Upload, error) {
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, fmt.Errorf("%s field is required", field)
	}

	out := make([]pipeline.Upload, 0, len(headers))

	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
		}

		up, err := read(file, fh.Filename)
		file.Close()

		if err != nil {
			return nil, err
		}

		out = append(out, up)
	}

	return out, nil
}

func read(file multipart.File, filename string) (pipeline.Upload, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.Upload{}, fmt.Errorf("reading %s: %w", filename, err)
	}

	return pipeline.Upload{Filename: filename, Data: data}, nil
}
