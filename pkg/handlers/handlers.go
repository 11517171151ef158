// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."} with the given status code.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("handler error", "error", err, "status", status)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// RespondMessage writes a client-facing error message without exposing the
// underlying cause. The cause is logged at Warn for 4xx and Error otherwise.
func RespondMessage(w http.ResponseWriter, logger *slog.Logger, status int, message string, cause error) {
	if cause != nil {
		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "handler error", "error", cause, "status", status)
	}
	RespondJSON(w, status, map[string]string{"error": message})
}
