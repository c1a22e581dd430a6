package quiz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startAt(t *testing.T, store Store, studentID, questionID string, at time.Time) {
	t.Helper()
	tr := NewTracker(store, nil)
	tr.now = func() time.Time { return at }
	_, err := tr.StartAttempt(context.Background(), studentID, questionID)
	require.NoError(t, err)
}

func evalAt(store Store, at time.Time) *Evaluator {
	e := NewEvaluator(store, nil, nil)
	e.now = func() time.Time { return at }
	return e
}

func TestSubmit_OnTimeCorrect(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 10)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	startAt(t, store, "s1", "q1", start)

	out, err := evalAt(store, start.Add(5*time.Minute)).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "A",
	})
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	require.NotNil(t, out.Correct)
	assert.True(t, *out.Correct)
	assert.False(t, out.Late)
}

func TestSubmit_OnTimeIncorrect(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 10)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	startAt(t, store, "s1", "q1", start)

	out, err := evalAt(store, start.Add(time.Minute)).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "B",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Correct)
	assert.False(t, *out.Correct)
	assert.False(t, out.Late)
}

func TestSubmit_LateForcesIncorrect(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 10)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	startAt(t, store, "s1", "q1", start)

	// 11 minutes in, with the RIGHT option: no credit
	out, err := evalAt(store, start.Add(11*time.Minute)).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "A",
	})
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	assert.True(t, out.Late)
	require.NotNil(t, out.Correct)
	assert.False(t, *out.Correct)

	subs, err := store.ListSubmissions(context.Background(), SubmissionListOpts{StudentID: "s1"})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Late)
	assert.Equal(t, "A", subs[0].SelectedOption)
}

func TestSubmit_UnlimitedNeverLate(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 0)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	startAt(t, store, "s1", "q1", start)

	out, err := evalAt(store, start.Add(1000*time.Hour)).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "A",
	})
	require.NoError(t, err)
	assert.False(t, out.Late)
	require.NotNil(t, out.Correct)
	assert.True(t, *out.Correct)
}

func TestSubmit_NoAttemptGradesNormally(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 10)

	// never opened the question; the limit has no anchor
	out, err := evalAt(store, time.Now().UTC()).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "A",
	})
	require.NoError(t, err)
	assert.False(t, out.Late)
	require.NotNil(t, out.Correct)
	assert.True(t, *out.Correct)
}

func TestSubmit_FileOnlyHasNoCorrectness(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 0)

	out, err := evalAt(store, time.Now().UTC()).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1",
	})
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	assert.Nil(t, out.Correct)

	subs, err := store.ListSubmissions(context.Background(), SubmissionListOpts{StudentID: "s1"})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Nil(t, subs[0].Correct)
}

func TestSubmit_QuestionMissing(t *testing.T) {
	store := NewInMemoryStore()
	_, err := evalAt(store, time.Now().UTC()).Submit(context.Background(), SubmitInput{
		StudentID: "s1", QuestionID: "nope", SelectedOption: "A",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	// nothing recorded
	subs, err := store.ListSubmissions(context.Background(), SubmissionListOpts{})
	require.NoError(t, err)
	assert.Empty(t, subs)
	notifs, err := store.UnreadNotifications(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestSubmit_DuplicatesTolerated(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 0)
	e := evalAt(store, time.Now().UTC())

	for i := 0; i < 3; i++ {
		_, err := e.Submit(context.Background(), SubmitInput{
			StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "A",
		})
		require.NoError(t, err)
	}
	subs, err := store.ListSubmissions(context.Background(), SubmissionListOpts{StudentID: "s1", QuestionID: "q1"})
	require.NoError(t, err)
	assert.Len(t, subs, 3)
}

func TestSubmit_EveryRecordedSubmissionNotifies(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 10)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	startAt(t, store, "s1", "q1", start)

	// one on time, one late: both notify
	_, err := evalAt(store, start.Add(time.Minute)).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "A",
	})
	require.NoError(t, err)
	_, err = evalAt(store, start.Add(time.Hour)).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "A",
	})
	require.NoError(t, err)

	notifs, err := store.UnreadNotifications(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, notifs, 2)
	for _, n := range notifs {
		assert.Equal(t, "submission", n.Type)
		assert.Equal(t, "s1", n.StudentID)
		assert.Equal(t, "Ada", n.StudentName)
		assert.Equal(t, "q1", n.QuestionID)
		assert.False(t, n.Read)
	}
}

func TestSubmit_PreviewTruncatedAt80(t *testing.T) {
	store := NewInMemoryStore()
	long := strings.Repeat("x", 200)
	q := seedQuestion(t, store, "q1", 0)
	q.Text = long
	require.NoError(t, store.PutQuestion(context.Background(), q))

	_, err := evalAt(store, time.Now().UTC()).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "A",
	})
	require.NoError(t, err)

	notifs, err := store.UnreadNotifications(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, strings.Repeat("x", 80)+"…", notifs[0].QuestionPreview)
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 0)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := evalAt(store, base.Add(time.Duration(i)*time.Minute)).Submit(context.Background(), SubmitInput{
			StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "A",
		})
		require.NoError(t, err)
	}
	e := NewEvaluator(store, nil, nil)

	// newest first, capped
	notifs, err := e.UnreadNotifications(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, notifs, 3)
	assert.Equal(t, base.Add(4*time.Minute), notifs[0].CreatedAt)
	assert.Equal(t, base.Add(2*time.Minute), notifs[2].CreatedAt)

	require.NoError(t, e.MarkNotificationsRead(context.Background()))
	notifs, err = e.UnreadNotifications(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, notifs)

	// a fresh submission shows up unread again
	_, err = evalAt(store, base.Add(time.Hour)).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1", SelectedOption: "B",
	})
	require.NoError(t, err)
	notifs, err = e.UnreadNotifications(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
}

func TestSubmit_DisallowedUploadIgnored(t *testing.T) {
	store := NewInMemoryStore()
	seedQuestion(t, store, "q1", 0)

	out, err := evalAt(store, time.Now().UTC()).Submit(context.Background(), SubmitInput{
		StudentID: "s1", StudentName: "Ada", QuestionID: "q1",
		SelectedOption: "A",
		FileName:       "payload.exe",
		File:           strings.NewReader("MZ"),
	})
	require.NoError(t, err)
	assert.True(t, out.Accepted)

	subs, err := store.ListSubmissions(context.Background(), SubmissionListOpts{StudentID: "s1"})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Empty(t, subs[0].FileKey)
}

func TestTruncatePreview_ShortUnchanged(t *testing.T) {
	assert.Equal(t, "short", truncatePreview("short"))
	exact := strings.Repeat("a", 80)
	assert.Equal(t, exact, truncatePreview(exact))
}
