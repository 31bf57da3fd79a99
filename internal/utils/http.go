package utils

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes {"error": "..."} with a given status.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// ServerError writes the generic 500 body. Internal detail stays in the
// logs, never in the response.
func ServerError(w http.ResponseWriter) {
	JSONError(w, http.StatusInternalServerError, "internal error")
}

// maxBodyBytes bounds request bodies; every endpoint here takes small
// JSON documents.
const maxBodyBytes = 1 << 20

// DecodeJSON parses the JSON body into v, rejecting unknown fields. On
// failure a 400 has already been written; callers just return.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		JSONError(w, http.StatusBadRequest, "empty request body")
		return errors.New("empty request body")
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		JSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return err
	}

	return nil
}
