package api

import (
	"net/http"
)

type createAudienceRequest struct {
	AudienceName string `json:"audienceName"`
}

// handleCreateAudience creates a provider audience from all subscribed
// contacts
func (s *Server) handleCreateAudience(w http.ResponseWriter, r *http.Request) {
	var req createAudienceRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", nil)
		return
	}

	result, err := s.audienceService.Create(r.Context(), req.AudienceName)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}
