package http

import (
	"net/http"

	"github.com/quizroom/quizroom/internal/auth"
)

// GET /users?role=student (admin)
func ListUsersHandler(users *auth.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context(), r.URL.Query().Get("role"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
