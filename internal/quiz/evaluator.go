package quiz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quizroom/quizroom/internal/storage"
)

const (
	// DefaultNotificationLimit caps the unread poll when the caller
	// does not ask for a specific page size.
	DefaultNotificationLimit = 20

	previewLen = 80
)

// Evaluator grades submissions, enforces time limits and raises the
// admin notification for each recorded answer.
type Evaluator struct {
	store Store
	blobs storage.BlobStore
	log   *slog.Logger
	now   func() time.Time
}

// NewEvaluator wires the evaluator to its persistence gateway. blobs may
// be nil when file uploads are disabled.
func NewEvaluator(store Store, blobs storage.BlobStore, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{store: store, blobs: blobs, log: log, now: time.Now}
}

// SubmitInput carries one student answer. SelectedOption may be empty
// for file-only submissions; File may be nil.
type SubmitInput struct {
	StudentID      string
	StudentName    string
	QuestionID     string
	SelectedOption string
	FileName       string
	File           io.Reader
}

// Submit runs the full lifecycle: resolve the question, enforce its time
// limit against the student's attempt, grade, persist, notify.
func (e *Evaluator) Submit(ctx context.Context, in SubmitInput) (Outcome, error) {
	q, err := e.store.GetQuestion(ctx, in.QuestionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("submit: %w", err)
	}

	now := e.now().UTC()
	late := false
	if q.TimeLimitMin > 0 {
		a, err := e.store.GetAttempt(ctx, in.StudentID, in.QuestionID)
		switch {
		case err == nil:
			expiry := a.StartTime.Add(time.Duration(q.TimeLimitMin) * time.Minute)
			late = now.After(expiry)
		case errors.Is(err, ErrNotFound):
			// submitted without ever opening the question (direct API
			// call); the limit cannot be anchored, so grade normally
			e.log.Warn("submission without attempt, time limit not enforced",
				"student_id", in.StudentID, "question_id", in.QuestionID)
		default:
			return Outcome{}, fmt.Errorf("submit: %w", err)
		}
	}

	var correct *bool
	if late {
		// no credit past the deadline, whatever the option was
		correct = boolPtr(false)
	} else if in.SelectedOption != "" {
		correct = boolPtr(in.SelectedOption == q.CorrectAnswer)
	}

	fileKey := ""
	if in.File != nil && in.FileName != "" {
		if storage.AllowedUploadName(in.FileName) {
			fileKey, err = e.storeFile(in)
			if err != nil {
				return Outcome{}, fmt.Errorf("submit: store file: %w", err)
			}
		} else {
			e.log.Warn("rejected upload by extension", "filename", in.FileName,
				"student_id", in.StudentID)
		}
	}

	sub := Submission{
		ID:             uuid.NewString(),
		StudentID:      in.StudentID,
		StudentName:    in.StudentName,
		QuestionID:     in.QuestionID,
		SelectedOption: in.SelectedOption,
		FileKey:        fileKey,
		Correct:        correct,
		Late:           late,
		SubmittedAt:    now,
	}
	if err := e.store.CreateSubmission(ctx, sub); err != nil {
		return Outcome{}, fmt.Errorf("submit: %w", err)
	}

	// every recorded submission notifies, late or not
	n := Notification{
		ID:              uuid.NewString(),
		Type:            "submission",
		StudentID:       in.StudentID,
		StudentName:     in.StudentName,
		QuestionID:      in.QuestionID,
		QuestionPreview: truncatePreview(q.Text),
		Correct:         correct,
		Read:            false,
		CreatedAt:       now,
	}
	if err := e.store.CreateNotification(ctx, n); err != nil {
		return Outcome{}, fmt.Errorf("submit: notify: %w", err)
	}

	e.log.Info("submission recorded", "student_id", in.StudentID,
		"question_id", in.QuestionID, "late", late)
	return Outcome{Accepted: true, Correct: correct, Late: late}, nil
}

func (e *Evaluator) storeFile(in SubmitInput) (string, error) {
	if e.blobs == nil {
		return "", errors.New("file uploads not configured")
	}
	key := storage.AnswerPrefix + "/" + in.StudentID + "/" + uuid.NewString() + "_" + in.FileName
	return e.blobs.Put(key, in.File)
}

// UnreadNotifications returns unread events newest-first, capped at
// limit (DefaultNotificationLimit when limit <= 0).
func (e *Evaluator) UnreadNotifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	return e.store.UnreadNotifications(ctx, limit)
}

func (e *Evaluator) MarkNotificationsRead(ctx context.Context) error {
	return e.store.MarkNotificationsRead(ctx)
}

func truncatePreview(text string) string {
	r := []rune(text)
	if len(r) <= previewLen {
		return text
	}
	return string(r[:previewLen]) + "…"
}

func boolPtr(b bool) *bool { return &b }
