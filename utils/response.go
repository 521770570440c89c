package utils

import (
	"encoding/json"
	"net/http"
)

type M map[string]interface{}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithMessage answers with {"message": msg}.
func RespondWithMessage(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"message": msg})
}

// RespondWithServerError answers 500 with the message and the raw error text.
func RespondWithServerError(w http.ResponseWriter, msg string, err error) {
	RespondWithJSON(w, http.StatusInternalServerError, M{"message": msg, "error": err.Error()})
}

// DecodeJSON reads a JSON request body into v, capped at 1 MiB.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(v)
}
