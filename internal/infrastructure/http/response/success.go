package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// encodeFailure is written when a payload cannot be marshaled.
const encodeFailure = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}`

// OK sends a 200 OK response with JSON data.
func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// Created sends a 201 Created response with JSON data.
func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, data)
}

// NoContent sends a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON marshals before touching the status line so an encoding
// failure can still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailure))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
