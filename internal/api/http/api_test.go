package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/quizroom/quizroom/internal/api/http"
	"github.com/quizroom/quizroom/internal/quiz"
	"github.com/quizroom/quizroom/internal/rbac"
)

// identity stamps a fixed caller onto every request, standing in for the
// JWT middleware.
func identity(sub, name, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(rbac.WithIdentity(r.Context(), sub, name, role)))
		})
	}
}

func newRouter(store quiz.Store, sub, name, role string) *chi.Mux {
	tracker := quiz.NewTracker(store, nil)
	eval := quiz.NewEvaluator(store, nil, nil)

	r := chi.NewRouter()
	r.Use(identity(sub, name, role))
	r.With(rbac.Require("attempt:start")).Post("/attempts", api.StartAttemptHandler(tracker))
	r.With(rbac.Require("answer:submit")).Post("/submissions", api.SubmitAnswerHandler(eval))
	r.With(rbac.Require("question:view")).Get("/questions", api.ListQuestionsHandler(store))
	r.With(rbac.Require("question:view")).Get("/questions/{questionID}", api.GetQuestionHandler(store))
	r.With(rbac.Require("notifications:view")).Get("/notifications", api.ListNotificationsHandler(eval))
	r.With(rbac.Require("notifications:mark-read")).Post("/notifications/mark-read", api.MarkNotificationsReadHandler(eval))
	return r
}

func seed(t *testing.T, store quiz.Store, id string, limitMin int) {
	t.Helper()
	require.NoError(t, store.PutQuestion(context.Background(), quiz.Question{
		ID:            id,
		Text:          "Which planet is largest?",
		OptionA:       "Mars",
		OptionB:       "Jupiter",
		OptionC:       "Venus",
		OptionD:       "Saturn",
		CorrectAnswer: "B",
		Explanation:   "Jupiter by far",
		TimeLimitMin:  limitMin,
		CreatedAt:     time.Now().UTC(),
	}))
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStartAttemptEndpoint_Idempotent(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seed(t, store, "q1", 10)
	r := newRouter(store, "s1", "Ada", "student")

	w1 := doJSON(t, r, "POST", "/attempts", map[string]string{"question_id": "q1"})
	require.Equal(t, http.StatusOK, w1.Code)
	var resp1 struct {
		StartTimeMS int64 `json:"start_time_ms"`
	}
	require.NoError(t, json.Unmarshal(w1.Body.Bytes(), &resp1))
	assert.NotZero(t, resp1.StartTimeMS)

	w2 := doJSON(t, r, "POST", "/attempts", map[string]string{"question_id": "q1"})
	require.Equal(t, http.StatusOK, w2.Code)
	var resp2 struct {
		StartTimeMS int64 `json:"start_time_ms"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp2))
	assert.Equal(t, resp1.StartTimeMS, resp2.StartTimeMS)
}

func TestStartAttemptEndpoint_UnknownQuestion(t *testing.T) {
	store := quiz.NewInMemoryStore()
	r := newRouter(store, "s1", "Ada", "student")
	w := doJSON(t, r, "POST", "/attempts", map[string]string{"question_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitEndpoint_JSONFlow(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seed(t, store, "q1", 10)
	r := newRouter(store, "s1", "Ada", "student")

	w := doJSON(t, r, "POST", "/attempts", map[string]string{"question_id": "q1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", "/submissions", map[string]string{
		"question_id": "q1", "selected_option": "B",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var out quiz.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Accepted)
	require.NotNil(t, out.Correct)
	assert.True(t, *out.Correct)
	assert.False(t, out.Late)
}

func TestSubmitEndpoint_UnknownQuestion(t *testing.T) {
	store := quiz.NewInMemoryStore()
	r := newRouter(store, "s1", "Ada", "student")
	w := doJSON(t, r, "POST", "/submissions", map[string]string{
		"question_id": "nope", "selected_option": "A",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationsEndpoint_AdminOnly(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seed(t, store, "q1", 0)

	student := newRouter(store, "s1", "Ada", "student")
	w := doJSON(t, student, "POST", "/submissions", map[string]string{
		"question_id": "q1", "selected_option": "B",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// students cannot read the notification feed
	w = doJSON(t, student, "GET", "/notifications", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := newRouter(store, "a1", "Admin", "admin")
	w = doJSON(t, admin, "GET", "/notifications?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []struct {
		StudentName     string `json:"student_name"`
		QuestionPreview string `json:"question_preview"`
		Correct         *bool  `json:"correct"`
		CreatedHHMM     string `json:"created_hhmm"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Ada", list[0].StudentName)
	assert.Equal(t, "Which planet is largest?", list[0].QuestionPreview)
	require.NotNil(t, list[0].Correct)
	assert.True(t, *list[0].Correct)
	assert.Regexp(t, `^\d{2}:\d{2}$`, list[0].CreatedHHMM)

	// mark all read, feed drains
	w = doJSON(t, admin, "POST", "/notifications/mark-read", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, admin, "GET", "/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestQuestionEndpoints_AnswerKeyStripped(t *testing.T) {
	store := quiz.NewInMemoryStore()
	seed(t, store, "q1", 10)

	student := newRouter(store, "s1", "Ada", "student")
	w := doJSON(t, student, "GET", "/questions/q1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var q quiz.Question
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Empty(t, q.CorrectAnswer)
	assert.Empty(t, q.Explanation)
	assert.Equal(t, "Jupiter", q.OptionB)

	admin := newRouter(store, "a1", "Admin", "admin")
	w = doJSON(t, admin, "GET", "/questions/q1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, "B", q.CorrectAnswer)
}
