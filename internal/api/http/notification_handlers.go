package http

import (
	"net/http"

	"github.com/quizroom/quizroom/internal/quiz"
)

type notificationView struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	StudentName     string `json:"student_name"`
	QuestionPreview string `json:"question_preview"`
	Correct         *bool  `json:"correct"`
	CreatedHHMM     string `json:"created_hhmm"`
}

// GET /notifications?limit=N (admin) — unread only, newest first.
func ListNotificationsHandler(eval *quiz.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), quiz.DefaultNotificationLimit)
		list, err := eval.UnreadNotifications(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]notificationView, 0, len(list))
		for _, n := range list {
			out = append(out, notificationView{
				ID:              n.ID,
				Type:            n.Type,
				StudentName:     n.StudentName,
				QuestionPreview: n.QuestionPreview,
				Correct:         n.Correct,
				CreatedHHMM:     n.CreatedAt.Format("15:04"),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /notifications/mark-read (admin) — one atomic batch.
func MarkNotificationsReadHandler(eval *quiz.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := eval.MarkNotificationsRead(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
