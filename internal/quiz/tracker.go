package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Tracker hands out the clock anchor for time-limit enforcement: the
// moment a student first opened a question.
type Tracker struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewTracker(store Store, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{store: store, log: log, now: time.Now}
}

// StartAttempt returns the stored start time for the pair, creating the
// attempt on first access. The returned time is stable across calls:
// a lost creation race falls back to re-reading the winner's row.
func (t *Tracker) StartAttempt(ctx context.Context, studentID, questionID string) (time.Time, error) {
	if _, err := t.store.GetQuestion(ctx, questionID); err != nil {
		return time.Time{}, fmt.Errorf("start attempt: %w", err)
	}

	a, err := t.store.GetAttempt(ctx, studentID, questionID)
	if err == nil {
		return a.StartTime, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return time.Time{}, fmt.Errorf("start attempt: %w", err)
	}

	a = Attempt{
		ID:         uuid.NewString(),
		StudentID:  studentID,
		QuestionID: questionID,
		StartTime:  t.now().UTC(),
	}
	err = t.store.CreateAttempt(ctx, a)
	if errors.Is(err, ErrConflict) {
		// another request won the first-access race; its timestamp is
		// the one that counts
		existing, rerr := t.store.GetAttempt(ctx, studentID, questionID)
		if rerr != nil {
			return time.Time{}, fmt.Errorf("start attempt: %w", rerr)
		}
		return existing.StartTime, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("start attempt: %w", err)
	}

	t.log.Info("attempt started", "student_id", studentID, "question_id", questionID)
	return a.StartTime, nil
}
