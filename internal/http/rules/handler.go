package rules

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/misrecon/internal/http/respond"
	"github.com/MrJamesThe3rd/misrecon/internal/rules"
)

type Handler struct {
	repo rules.Repository
}

func NewHandler(repo rules.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/schemas/{kind}", h.getSchema)
	r.Put("/schemas/{kind}", h.saveSchema)
	r.Get("/mapping/{name}", h.getMapping)
	r.Put("/mapping/{name}", h.saveMapping)
	r.Get("/banks", h.listBanks)
	r.Get("/banks/{name}", h.getBank)
	r.Put("/banks/{name}", h.saveBank)
	r.Delete("/banks/{name}", h.deleteBank)
}

// schemaRequest accepts either a column list or the newline separated text
// an admin pastes in.
type schemaRequest struct {
	Columns []string `json:"columns"`
	Text    string   `json:"text"`
}

type schemaResponse struct {
	Kind    rules.SchemaKind `json:"kind"`
	Columns []string         `json:"columns"`
}

func (h *Handler) getSchema(w http.ResponseWriter, r *http.Request) {
	kind, ok := schemaKind(w, r)
	if !ok {
		return
	}

	cols, err := h.repo.Schema(r.Context(), kind)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, schemaResponse{Kind: kind, Columns: cols})
}

func (h *Handler) saveSchema(w http.ResponseWriter, r *http.Request) {
	kind, ok := schemaKind(w, r)
	if !ok {
		return
	}

	var req schemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	cols := req.Columns
	if len(cols) == 0 {
		cols = rules.ParseList(req.Text)
	}

	if len(cols) == 0 {
		respond.BadRequest(w, "columns are required")
		return
	}

	if err := h.repo.SaveSchema(r.Context(), kind, cols); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, schemaResponse{Kind: kind, Columns: cols})
}

func (h *Handler) getMapping(w http.ResponseWriter, r *http.Request) {
	rule, err := h.repo.MappingRule(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, rule)
}

func (h *Handler) saveMapping(w http.ResponseWriter, r *http.Request) {
	var rule rules.MappingRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	rule.Name = chi.URLParam(r, "name")

	if err := h.repo.SaveMappingRule(r.Context(), &rule); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, &rule)
}

func (h *Handler) listBanks(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.BankRules(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if list == nil {
		list = []*rules.BankRule{}
	}

	respond.JSON(w, http.StatusOK, list)
}

func (h *Handler) getBank(w http.ResponseWriter, r *http.Request) {
	rule, err := h.repo.BankRule(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, rule)
}

func (h *Handler) saveBank(w http.ResponseWriter, r *http.Request) {
	var rule rules.BankRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	rule.BankName = chi.URLParam(r, "name")

	if err := h.repo.SaveBankRule(r.Context(), &rule); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, &rule)
}

func (h *Handler) deleteBank(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteBankRule(r.Context(), chi.URLParam(r, "name")); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func schemaKind(w http.ResponseWriter, r *http.Request) (rules.SchemaKind, bool) {
	kind := rules.SchemaKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		respond.BadRequest(w, "unknown schema kind "+string(kind))
		return "", false
	}

	return kind, true
}
