package artifact

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/misrecon/internal/handoff"
	"github.com/MrJamesThe3rd/misrecon/internal/http/respond"
)

type Handler struct {
	store *handoff.Store
}

func NewHandler(store *handoff.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid artifact id")
		return
	}

	data, kind, err := h.store.Raw(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Workbook(w, id, kind+".xlsx", data)
}
