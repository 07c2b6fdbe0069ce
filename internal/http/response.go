package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"splitledger/internal/core"
)

// Response envelopes follow the established wire convention: every body
// carries a success flag, successful payloads ride under a resource-specific
// key, validation failures list every violated rule, and other failures
// carry a single message.

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondSuccess(w http.ResponseWriter, status int, fields map[string]any) {
	payload := map[string]any{"success": true}
	for k, v := range fields {
		payload[k] = v
	}
	writeJSON(w, status, payload)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// respondError maps domain errors onto the wire. Store errors surface as a
// generic failure: internals are logged, never leaked to the caller.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"errors":  verr.Violations,
		})
	case errors.Is(err, core.ErrInvalidID):
		respondMessage(w, http.StatusBadRequest, "Invalid expense ID")
	case errors.Is(err, core.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "Expense not found")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		respondMessage(w, http.StatusInternalServerError, "Server error")
	}
}
