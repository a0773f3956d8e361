package api

import (
	"net/http"
)

// handleGetStats returns contact and broadcast statistics
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsService.Get(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
