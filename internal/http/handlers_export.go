package http

import (
	"bytes"
	"fmt"
	"net/http"

	"finboard/internal/export"
	applog "finboard/internal/log"
	"finboard/internal/worker"
)

// handleExportCSV streams the transaction base of the current view.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.service.Dashboard(r.Context(), kind, q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Rendered to a buffer so a failure can still become an error response.
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, export.Base(view)); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Title(kind)+".csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type exportResponse struct {
	Status string `json:"status"`
	Ref    string `json:"ref,omitempty"`
}

// handleExportSheets queues the export when a publisher is configured and
// otherwise writes it inline.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := worker.MessageFor(kind, q)
	logger := applog.FromContext(r.Context())

	switch {
	case s.publisher != nil:
		if err := s.publisher.PublishExportRequest(r.Context(), msg); err != nil {
			writeError(w, r, err)
			return
		}
		logger.InfoContext(r.Context(), "Sheets export queued", applog.FieldKind, kind, applog.FieldOperation, applog.OpExport)
		NewResponse().Status(http.StatusAccepted).JSON(exportResponse{Status: "queued"}).Write(w)
	case s.exporter != nil:
		ref, err := s.exporter.Export(r.Context(), msg)
		if err != nil {
			writeError(w, r, err)
			return
		}
		logger.InfoContext(r.Context(), "Sheets export written", applog.FieldKind, kind, applog.FieldSheetsRef, ref)
		NewResponse().JSON(exportResponse{Status: "exported", Ref: ref}).Write(w)
	default:
		ErrorResponse(http.StatusServiceUnavailable, "sheets export is not configured").Write(w)
	}
}
