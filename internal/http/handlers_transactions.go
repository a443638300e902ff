package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	applog "finboard/internal/log"
)

type categoryRequest struct {
	Category string `json:"category"`
}

// handleUpdateCategory relabels a transaction. Labels outside the workspace
// list are added to it.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.service.UpdateCategory(r.Context(), kind, r.PathValue("id"), sanitizeInput(req.Category))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(tx).Write(w)
}

// handleDeleteTransaction removes a transaction; it requires confirm=true.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !confirmed(r) {
		writeError(w, r, ErrConfirmationRequired)
		return
	}
	id := r.PathValue("id")
	if err := s.service.DeleteTransaction(r.Context(), kind, id); err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		applog.FieldKind, kind, applog.FieldTransactionID, id)
	NewResponse().Status(http.StatusNoContent).Write(w)
}

type goalRequest struct {
	Planned *decimal.Decimal `json:"planned"`
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Planned == nil {
		writeError(w, r, badRequest("planned is required"))
		return
	}
	goals, err := s.service.SetGoal(r.Context(), kind, sanitizeInput(r.PathValue("category")), *req.Planned)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(map[string]any{"goals": goals}).Write(w)
}
