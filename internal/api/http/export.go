package http

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/quizroom/quizroom/internal/quiz"
)

// GET /submissions/export (admin) — activity report as CSV.
func ExportSubmissionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListSubmissions(r.Context(), quiz.SubmissionListOpts{
			StudentID:  r.URL.Query().Get("student_id"),
			QuestionID: r.URL.Query().Get("question_id"),
			Limit:      parseIntDefault(r.URL.Query().Get("limit"), 10000),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			`attachment; filename="submissions_`+time.Now().Format("20060102")+`.csv"`)

		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "student_id", "student_name", "question_id",
			"selected_option", "is_correct", "is_expired", "submitted_at"})
		for _, s := range list {
			correct := ""
			if s.Correct != nil {
				correct = strconv.FormatBool(*s.Correct)
			}
			_ = cw.Write([]string{
				s.ID, s.StudentID, s.StudentName, s.QuestionID,
				s.SelectedOption, correct, strconv.FormatBool(s.Late),
				s.SubmittedAt.Format(time.RFC3339),
			})
		}
		cw.Flush()
	}
}
