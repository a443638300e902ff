package http

import (
	"context"
	"net/http"
)

// handleImport accepts one or more statement files in the "files" field.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sources, release, err := uploadedSources(w, r, s.maxUploadBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer release()

	ctx, cancel := context.WithTimeout(r.Context(), s.importTimeout)
	defer cancel()

	report, err := s.service.Import(ctx, kind, sources)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(report).Write(w)
}

// handleReset clears the workspace; it requires confirm=true.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !confirmed(r) {
		writeError(w, r, ErrConfirmationRequired)
		return
	}
	if err := s.service.Reset(r.Context(), kind); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}
