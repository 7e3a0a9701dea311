package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/otpgate/otpgate"
)

const serverErrorMessage = "Server error. Please try again later."

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeServerError(w http.ResponseWriter) {
	writeMessage(w, http.StatusInternalServerError, serverErrorMessage)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeFlowError maps the engine sentinels every flow shares. Handlers map
// their flow-specific sentinels first and fall through here.
func writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, otpgate.ErrChallengePending):
		writeMessage(w, http.StatusBadRequest, "OTP already sent. Please wait for 3 minutes or use the current OTP.")
	case errors.Is(err, otpgate.ErrChallengeExpired):
		writeMessage(w, http.StatusBadRequest, "OTP expired or invalid")
	case errors.Is(err, otpgate.ErrChallengeMismatch):
		writeMessage(w, http.StatusBadRequest, "Invalid OTP")
	case errors.Is(err, otpgate.ErrInvalidPurpose):
		writeMessage(w, http.StatusBadRequest, "Invalid type.")
	default:
		writeServerError(w)
	}
}
