package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/samuelralak/Emurgis/internal/problems"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, errorResponse{Error: msg}, status)
}

// writeServiceError maps lifecycle service errors onto HTTP statuses. The
// error message is propagated verbatim so the client can show it to the user.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, problems.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case problems.IsForbidden(err):
		writeError(w, err.Error(), http.StatusForbidden)
	case problems.IsConflict(err):
		writeError(w, err.Error(), http.StatusConflict)
	case problems.IsValidation(err):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error("internal error", slog.Any("err", err))
		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}
