package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quizroom/quizroom/internal/quiz"
)

// GET /classroom — current live-session status.
func GetClassroomHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetClassroom(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// PUT /classroom (admin)
func UpdateClassroomHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ActiveMeetLink string `json:"active_meet_link"`
			IsLive         bool   `json:"is_live"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		c := quiz.Classroom{
			ActiveMeetLink: req.ActiveMeetLink,
			IsLive:         req.IsLive,
			UpdatedAt:      time.Now().UTC(),
		}
		if err := store.UpdateClassroom(r.Context(), c); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// GET /meet-links (admin)
func ListMeetLinksHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListMeetLinks(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /meet-links (admin)
func CreateMeetLinkHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Label string `json:"label"`
			URL   string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			http.Error(w, "url required", http.StatusBadRequest)
			return
		}
		m := quiz.MeetLink{
			ID:        uuid.NewString(),
			Label:     req.Label,
			URL:       req.URL,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.CreateMeetLink(r.Context(), m); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}
