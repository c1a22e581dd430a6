package quiz

import (
	"context"
	"errors"
)

var (
	// ErrNotFound: the referenced question (or attempt, where one is
	// required) does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: an insert hit a uniqueness constraint. Recovered by
	// re-reading; never surfaced to callers of the services.
	ErrConflict = errors.New("already exists")
)

type QuestionListOpts struct {
	Topic  string
	Limit  int
	Offset int
}

type SubmissionListOpts struct {
	StudentID  string
	QuestionID string
	Limit      int
	Offset     int
}

// Store is the persistence gateway. Implementations must enforce a
// uniqueness constraint on attempts (student_id, question_id) and
// cascade question deletion to its attempts and submissions.
type Store interface {
	PutQuestion(ctx context.Context, q Question) error
	GetQuestion(ctx context.Context, id string) (Question, error)
	ListQuestions(ctx context.Context, opts QuestionListOpts) ([]Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	// CreateAttempt returns ErrConflict when an attempt already exists
	// for the pair; the stored row is left untouched.
	CreateAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, studentID, questionID string) (Attempt, error)

	CreateSubmission(ctx context.Context, s Submission) error
	ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error)

	CreateNotification(ctx context.Context, n Notification) error
	UnreadNotifications(ctx context.Context, limit int) ([]Notification, error)
	// MarkNotificationsRead flips every unread row in one atomic batch.
	MarkNotificationsRead(ctx context.Context) error

	GetClassroom(ctx context.Context) (Classroom, error)
	UpdateClassroom(ctx context.Context, c Classroom) error

	ListMeetLinks(ctx context.Context) ([]MeetLink, error)
	CreateMeetLink(ctx context.Context, m MeetLink) error
}
