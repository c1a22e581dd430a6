package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/quizroom/quizroom/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Storage failures
// surface as 500; they are never swallowed.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
