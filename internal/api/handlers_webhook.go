package api

import (
	"encoding/json"
	"net/http"

	"github.com/contact-sync/internal/service"
)

// handleEmailWebhook processes unsubscribe and bounce notifications from
// the email provider. The endpoint always acknowledges well-formed events
// so the provider does not retry them.
func (s *Server) handleEmailWebhook(w http.ResponseWriter, r *http.Request) {
	// Provider payloads carry fields beyond the ones used here, so this
	// endpoint decodes leniently instead of via parseJSONBody.
	var event service.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid webhook payload", nil)
		return
	}

	if err := s.webhookService.HandleEvent(r.Context(), event); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}
