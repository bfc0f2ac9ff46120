package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// apiError is the single error body every endpoint returns. Status is "fail"
// for client errors and "error" for server errors.
type apiError struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"message": message})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	status := "fail"
	if statusCode >= 500 {
		status = "error"
	}
	writeJSON(w, statusCode, apiError{
		Status:     status,
		StatusCode: statusCode,
		Message:    message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
