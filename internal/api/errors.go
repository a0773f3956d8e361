package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/contact-sync/internal/errors"
	"github.com/contact-sync/internal/logging"
)

// ErrorBody is the JSON shape of an API error
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps an error body for the wire
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses a JSON request body
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// respondServiceError maps a service error to an HTTP response. Categorized
// errors carry their own status and code; anything else is an opaque 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if catErr, ok := apperrors.AsCategorized(err); ok {
		if catErr.StatusCode >= http.StatusInternalServerError {
			logging.FromContext(r.Context()).WithError(err).Error("Request failed")
		}
		respondError(w, catErr.StatusCode, catErr.Code, catErr.Message, catErr.Details)
		return
	}

	logging.FromContext(r.Context()).WithError(err).Error("Request failed with uncategorized error")
	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal server error occurred", nil)
}
