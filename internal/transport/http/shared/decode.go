package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"hrpay/internal/transport/http/api"
)

// DecodeJSON reads a single JSON object, rejecting unknown fields. On failure it
// writes the error response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload: "+err.Error(), requestID)
		return false
	}
	return true
}
