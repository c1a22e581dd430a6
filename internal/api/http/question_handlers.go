package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/quizroom/quizroom/internal/quiz"
	"github.com/quizroom/quizroom/internal/rbac"
	"github.com/quizroom/quizroom/internal/storage"
)

var validate = validator.New()

type questionPayload struct {
	Text          string `json:"text" validate:"required"`
	Topic         string `json:"topic"`
	OptionA       string `json:"option_a" validate:"required"`
	OptionB       string `json:"option_b" validate:"required"`
	OptionC       string `json:"option_c" validate:"required"`
	OptionD       string `json:"option_d" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required,oneof=A B C D"`
	Explanation   string `json:"explanation"`
	MeetLink      string `json:"meet_link"`
	TimeLimitMin  int    `json:"time_limit" validate:"min=0"`
}

func (p questionPayload) apply(q *quiz.Question) {
	q.Text = p.Text
	q.Topic = p.Topic
	if q.Topic == "" {
		q.Topic = "General"
	}
	q.OptionA, q.OptionB, q.OptionC, q.OptionD = p.OptionA, p.OptionB, p.OptionC, p.OptionD
	q.CorrectAnswer = p.CorrectAnswer
	q.Explanation = p.Explanation
	q.MeetLink = p.MeetLink
	q.TimeLimitMin = p.TimeLimitMin
}

// POST /questions (admin). JSON payload, or multipart with a "question"
// JSON field plus an optional "image" file.
func CreateQuestionHandler(store quiz.Store, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p questionPayload
		imageKey := ""

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(16 << 20); err != nil {
				http.Error(w, "bad multipart form", http.StatusBadRequest)
				return
			}
			if err := json.Unmarshal([]byte(r.FormValue("question")), &p); err != nil {
				http.Error(w, "bad question json", http.StatusBadRequest)
				return
			}
			if f, hdr, err := r.FormFile("image"); err == nil {
				defer f.Close()
				if !storage.AllowedUploadName(hdr.Filename) {
					http.Error(w, "image type not allowed", http.StatusBadRequest)
					return
				}
				key := storage.QuestionImagePrefix + "/" + uuid.NewString() + "_" + hdr.Filename
				stored, err := blobs.Put(key, f)
				if err != nil {
					writeError(w, err)
					return
				}
				imageKey = stored
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}
		if err := validate.Struct(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		q := quiz.Question{ID: uuid.NewString(), ImageFile: imageKey, CreatedAt: time.Now().UTC()}
		p.apply(&q)
		if err := store.PutQuestion(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// PUT /questions/{questionID} (admin)
func UpdateQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		q, err := store.GetQuestion(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		var p questionPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.apply(&q)
		if err := store.PutQuestion(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// DELETE /questions/{questionID} (admin) — attempts and answers cascade.
func DeleteQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// GET /questions/{questionID} — answer key and explanation are stripped
// for students.
func GetQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuestion(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if rbac.RoleFromContext(r.Context()) != "admin" {
			q = stripAnswerKey(q)
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// GET /questions?topic=...&limit=...&offset=...
func ListQuestionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuestions(r.Context(), quiz.QuestionListOpts{
			Topic:  strings.TrimSpace(r.URL.Query().Get("topic")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 100),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		if rbac.RoleFromContext(r.Context()) != "admin" {
			for i := range list {
				list[i] = stripAnswerKey(list[i])
			}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func stripAnswerKey(q quiz.Question) quiz.Question {
	q.CorrectAnswer = ""
	q.Explanation = ""
	return q
}
