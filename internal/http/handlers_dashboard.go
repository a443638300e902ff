package http

import (
	"net/http"

	"finboard/internal/categorize"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
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
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ws, err := s.service.Workspace(kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(map[string][]string{"categories": ws.Categories}).Write(w)
}

// analysisResponse carries the markdown narrative. Failed is set when the
// narrator could not produce one and Analysis holds the fallback message.
type analysisResponse struct {
	Analysis string `json:"analysis"`
	Failed   bool   `json:"failed"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
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
	text, err := s.service.Analyze(r.Context(), kind, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(analysisResponse{Analysis: text, Failed: text == categorize.FailureMessage}).Write(w)
}
