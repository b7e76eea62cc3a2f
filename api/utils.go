package api

import (
	"encoding/json"
	"net/http"
)

// maxRequestBody bounds JSON payload size on every write endpoint.
const maxRequestBody = 1 << 20 // 1MB

// respondJSON writes a JSON response with the given status code.
func (a *API) respondJSON(w http.ResponseWriter, payload interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Errorw("failed to encode response", "error", err)
	}
}

// respondError writes a generic error message to the client. The full error
// is logged internally; clients only ever see the message.
func (a *API) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		a.logger.Errorw(message, "error", err, "status_code", status)
	}
	a.respondJSON(w, map[string]string{"error": message}, status)
}

// decodeJSON decodes and validates a request payload. Validation failures
// are reported to the client as a 400 with the first offending field.
func (a *API) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid JSON payload", err)
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return false
	}
	return true
}
