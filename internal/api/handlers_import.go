package api

import (
	"net/http"
	"time"

	"github.com/contact-sync/internal/importer"
)

// runImportRequest selects the import mode. resumeImport wins over
// importAll; with neither flag set the run is incremental.
type runImportRequest struct {
	ImportAll    bool `json:"importAll"`
	ResumeImport bool `json:"resumeImport"`
}

// runImportResponse is the synchronous import envelope
type runImportResponse struct {
	Success    bool             `json:"success"`
	Results    *importer.Result `json:"results"`
	ImportTime time.Time        `json:"importTime"`
}

// handleImportStatus returns the current import checkpoint state
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.importService.Status(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// handleRunImport runs an import synchronously and responds with its
// counters once the run completes
func (s *Server) handleRunImport(w http.ResponseWriter, r *http.Request) {
	var req runImportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := parseJSONBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", nil)
			return
		}
	}

	mode := importer.ModeIncremental
	switch {
	case req.ResumeImport:
		mode = importer.ModeResume
	case req.ImportAll:
		mode = importer.ModeFull
	}

	result, err := s.importService.Run(r.Context(), mode, time.Now().UTC())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if s.statsService != nil {
		s.statsService.Invalidate(r.Context())
	}

	respondJSON(w, http.StatusOK, runImportResponse{
		Success:    true,
		Results:    result,
		ImportTime: result.ImportTime,
	})
}
