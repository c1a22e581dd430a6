package quiz

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryStore struct {
	mu            sync.RWMutex
	questions     map[string]Question
	attempts      map[string]Attempt // key: studentID|questionID
	submissions   []Submission
	notifications []Notification
	classroom     Classroom
	meetLinks     []MeetLink
}

// NewInMemoryStore backs the services with plain maps. Used in tests and
// as a dev fallback when no database is configured.
func NewInMemoryStore() Store {
	return &memoryStore{
		questions: map[string]Question{},
		attempts:  map[string]Attempt{},
	}
}

func attemptKey(studentID, questionID string) string {
	return studentID + "|" + questionID
}

func (m *memoryStore) PutQuestion(_ context.Context, q Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuestions(_ context.Context, opts QuestionListOpts) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(m.questions))
	for _, q := range m.questions {
		if opts.Topic != "" && !strings.EqualFold(q.Topic, opts.Topic) {
			continue
		}
		out = append(out, q)
	}
	// newest first, matching the SQL store's ORDER BY created_at DESC
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) DeleteQuestion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return ErrNotFound
	}
	delete(m.questions, id)
	// cascade: the SQL schemas do this via ON DELETE CASCADE
	for k, a := range m.attempts {
		if a.QuestionID == id {
			delete(m.attempts, k)
		}
	}
	kept := m.submissions[:0]
	for _, s := range m.submissions {
		if s.QuestionID != id {
			kept = append(kept, s)
		}
	}
	m.submissions = kept
	return nil
}

func (m *memoryStore) CreateAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := attemptKey(a.StudentID, a.QuestionID)
	if _, ok := m.attempts[k]; ok {
		return ErrConflict
	}
	m.attempts[k] = a
	return nil
}

func (m *memoryStore) GetAttempt(_ context.Context, studentID, questionID string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[attemptKey(studentID, questionID)]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) CreateSubmission(_ context.Context, s Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, s)
	return nil
}

func (m *memoryStore) ListSubmissions(_ context.Context, opts SubmissionListOpts) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Submission, 0, len(m.submissions))
	for _, s := range m.submissions {
		if opts.StudentID != "" && s.StudentID != opts.StudentID {
			continue
		}
		if opts.QuestionID != "" && s.QuestionID != opts.QuestionID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return paginate(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) CreateNotification(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memoryStore) UnreadNotifications(_ context.Context, limit int) ([]Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Notification{}
	for _, n := range m.notifications {
		if !n.Read {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) MarkNotificationsRead(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		m.notifications[i].Read = true
	}
	return nil
}

func (m *memoryStore) GetClassroom(_ context.Context) (Classroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.classroom, nil
}

func (m *memoryStore) UpdateClassroom(_ context.Context, c Classroom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classroom = c
	return nil
}

func (m *memoryStore) ListMeetLinks(_ context.Context) ([]MeetLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MeetLink, len(m.meetLinks))
	copy(out, m.meetLinks)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) CreateMeetLink(_ context.Context, l MeetLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetLinks = append(m.meetLinks, l)
	return nil
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return []T{}
		}
		in = in[offset:]
	}
	if limit > 0 && len(in) > limit {
		in = in[:limit]
	}
	return in
}
