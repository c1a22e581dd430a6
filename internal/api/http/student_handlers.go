package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quizroom/quizroom/internal/quiz"
	"github.com/quizroom/quizroom/internal/rbac"
)

// POST /attempts  {"question_id": "..."} -> {"start_time_ms": ...}
// Idempotent per (student, question): repeat calls return the stored
// start time.
func StartAttemptHandler(tracker *quiz.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID string `json:"question_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuestionID == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		start, err := tracker.StartAttempt(r.Context(), sub, req.QuestionID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"start_time_ms": start.UnixMilli()})
	}
}

// POST /submissions — JSON {"question_id","selected_option"} or
// multipart form with question_id, selected_option and an optional
// "file" part.
func SubmitAnswerHandler(eval *quiz.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		in := quiz.SubmitInput{
			StudentID:   rbac.SubjectFromContext(ctx),
			StudentName: rbac.NameFromContext(ctx),
		}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(16 << 20); err != nil {
				http.Error(w, "bad multipart form", http.StatusBadRequest)
				return
			}
			in.QuestionID = r.FormValue("question_id")
			in.SelectedOption = r.FormValue("selected_option")
			if f, hdr, err := r.FormFile("file"); err == nil {
				defer f.Close()
				in.File = f
				in.FileName = hdr.Filename
			}
		} else {
			var req struct {
				QuestionID     string `json:"question_id"`
				SelectedOption string `json:"selected_option"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
			in.QuestionID = req.QuestionID
			in.SelectedOption = req.SelectedOption
		}
		if in.QuestionID == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}

		out, err := eval.Submit(ctx, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /submissions?question_id=... — students see their own rows only;
// admins may filter by any student via ?student_id=.
func ListSubmissionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		opts := quiz.SubmissionListOpts{
			StudentID:  strings.TrimSpace(r.URL.Query().Get("student_id")),
			QuestionID: strings.TrimSpace(r.URL.Query().Get("question_id")),
			Limit:      parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:     parseIntDefault(r.URL.Query().Get("offset"), 0),
		}
		if rbac.RoleFromContext(ctx) != "admin" {
			opts.StudentID = rbac.SubjectFromContext(ctx)
		}
		list, err := store.ListSubmissions(ctx, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
