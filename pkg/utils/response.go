package utils

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes a machine-readable error code as {"error": code}.
func Error(w http.ResponseWriter, status int, code string) {
	JSON(w, status, map[string]string{"error": code})
}

// ErrorWithDetails includes a human-readable detail alongside the code.
// Callers should only pass details outside production.
func ErrorWithDetails(w http.ResponseWriter, status int, code, details string) {
	payload := map[string]string{"error": code}
	if details != "" {
		payload["details"] = details
	}
	JSON(w, status, payload)
}
