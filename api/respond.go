package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("err", err))
	}
}

// writeMessage emits the `{"message": ...}` error body every non-2xx
// response uses.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, map[string]string{"message": msg}, status)
}
