package api

import (
	"net/http"

	"github.com/contact-sync/internal/service"
)

// handleSendBroadcast records and sends an email broadcast to an audience
func (s *Server) handleSendBroadcast(w http.ResponseWriter, r *http.Request) {
	var req service.BroadcastRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", nil)
		return
	}

	result, err := s.broadcastService.Send(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
