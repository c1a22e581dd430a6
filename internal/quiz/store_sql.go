package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore implements Store over database/sql. Queries use $1
// placeholders, which both the pgx stdlib driver and modernc sqlite
// accept, so one statement set serves both backends. Timestamps are
// stored as unix milliseconds.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutQuestion(ctx context.Context, q Question) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO questions
		(id,text,topic,option_a,option_b,option_c,option_d,correct_answer,explanation,meet_link,time_limit,image_file,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			text=EXCLUDED.text, topic=EXCLUDED.topic,
			option_a=EXCLUDED.option_a, option_b=EXCLUDED.option_b,
			option_c=EXCLUDED.option_c, option_d=EXCLUDED.option_d,
			correct_answer=EXCLUDED.correct_answer, explanation=EXCLUDED.explanation,
			meet_link=EXCLUDED.meet_link, time_limit=EXCLUDED.time_limit,
			image_file=EXCLUDED.image_file`,
		q.ID, q.Text, q.Topic, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectAnswer, q.Explanation, q.MeetLink, q.TimeLimitMin, q.ImageFile,
		q.CreatedAt.UnixMilli())
	return err
}

const questionCols = `id,text,topic,option_a,option_b,option_c,option_d,correct_answer,explanation,meet_link,time_limit,image_file,created_at`

func scanQuestion(row interface{ Scan(...any) error }) (Question, error) {
	var q Question
	var created int64
	err := row.Scan(&q.ID, &q.Text, &q.Topic, &q.OptionA, &q.OptionB, &q.OptionC,
		&q.OptionD, &q.CorrectAnswer, &q.Explanation, &q.MeetLink, &q.TimeLimitMin,
		&q.ImageFile, &created)
	if err != nil {
		return Question{}, err
	}
	q.CreatedAt = time.UnixMilli(created).UTC()
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return q, err
}

func (s *SQLStore) ListQuestions(ctx context.Context, opts QuestionListOpts) ([]Question, error) {
	limit, offset := opts.Limit, opts.Offset
	if limit <= 0 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if opts.Topic != "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+questionCols+` FROM questions
			WHERE LOWER(topic)=LOWER($1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			opts.Topic, limit, offset)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+questionCols+` FROM questions
			ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	// attempts and answers go with it via ON DELETE CASCADE
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) error {
	// DO NOTHING keeps the first writer's start_time under a concurrent
	// first access; zero rows affected means we lost the race
	res, err := s.db.ExecContext(ctx, `INSERT INTO attempts (id,student_id,question_id,start_time)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (student_id,question_id) DO NOTHING`,
		a.ID, a.StudentID, a.QuestionID, a.StartTime.UnixMilli())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, studentID, questionID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,student_id,question_id,start_time
		FROM attempts WHERE student_id=$1 AND question_id=$2`, studentID, questionID)
	var a Attempt
	var start int64
	if err := row.Scan(&a.ID, &a.StudentID, &a.QuestionID, &start); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	a.StartTime = time.UnixMilli(start).UTC()
	return a, nil
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub Submission) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO answers
		(id,student_id,student_name,question_id,selected_option,file_key,is_correct,is_expired,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		sub.ID, sub.StudentID, sub.StudentName, sub.QuestionID, sub.SelectedOption,
		sub.FileKey, nullableBool(sub.Correct), sub.Late, sub.SubmittedAt.UnixMilli())
	return err
}

func (s *SQLStore) ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error) {
	limit, offset := opts.Limit, opts.Offset
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT id,student_id,student_name,question_id,selected_option,file_key,is_correct,is_expired,submitted_at
		FROM answers WHERE 1=1`
	args := []any{}
	if opts.StudentID != "" {
		args = append(args, opts.StudentID)
		q += fmt.Sprintf(" AND student_id=$%d", len(args))
	}
	if opts.QuestionID != "" {
		args = append(args, opts.QuestionID)
		q += fmt.Sprintf(" AND question_id=$%d", len(args))
	}
	args = append(args, limit, offset)
	q += fmt.Sprintf(" ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Submission{}
	for rows.Next() {
		var sub Submission
		var correct sql.NullBool
		var at int64
		if err := rows.Scan(&sub.ID, &sub.StudentID, &sub.StudentName, &sub.QuestionID,
			&sub.SelectedOption, &sub.FileKey, &correct, &sub.Late, &at); err != nil {
			return nil, err
		}
		sub.Correct = fromNullBool(correct)
		sub.SubmittedAt = time.UnixMilli(at).UTC()
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateNotification(ctx context.Context, n Notification) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO notifications
		(id,type,student_id,student_name,question_id,question_text,is_correct,read,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		n.ID, n.Type, n.StudentID, n.StudentName, n.QuestionID, n.QuestionPreview,
		nullableBool(n.Correct), n.Read, n.CreatedAt.UnixMilli())
	return err
}

func (s *SQLStore) UnreadNotifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,type,student_id,student_name,question_id,question_text,is_correct,read,created_at
		FROM notifications WHERE read=FALSE ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Notification{}
	for rows.Next() {
		var n Notification
		var correct sql.NullBool
		var at int64
		if err := rows.Scan(&n.ID, &n.Type, &n.StudentID, &n.StudentName, &n.QuestionID,
			&n.QuestionPreview, &correct, &n.Read, &at); err != nil {
			return nil, err
		}
		n.Correct = fromNullBool(correct)
		n.CreatedAt = time.UnixMilli(at).UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLStore) MarkNotificationsRead(ctx context.Context) error {
	// single statement, so a concurrent reader sees all-unread or
	// all-read, never a partial batch
	_, err := s.db.ExecContext(ctx, `UPDATE notifications SET read=TRUE WHERE read=FALSE`)
	return err
}

func (s *SQLStore) GetClassroom(ctx context.Context) (Classroom, error) {
	row := s.db.QueryRowContext(ctx, `SELECT active_meet_link,is_live,updated_at FROM classroom WHERE id=1`)
	var c Classroom
	var at int64
	if err := row.Scan(&c.ActiveMeetLink, &c.IsLive, &at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Classroom{}, nil
		}
		return Classroom{}, err
	}
	c.UpdatedAt = time.UnixMilli(at).UTC()
	return c, nil
}

func (s *SQLStore) UpdateClassroom(ctx context.Context, c Classroom) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO classroom (id,active_meet_link,is_live,updated_at)
		VALUES (1,$1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET
			active_meet_link=EXCLUDED.active_meet_link,
			is_live=EXCLUDED.is_live,
			updated_at=EXCLUDED.updated_at`,
		c.ActiveMeetLink, c.IsLive, c.UpdatedAt.UnixMilli())
	return err
}

func (s *SQLStore) ListMeetLinks(ctx context.Context) ([]MeetLink, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,label,url,is_active,created_at
		FROM meet_links ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MeetLink{}
	for rows.Next() {
		var m MeetLink
		var at int64
		if err := rows.Scan(&m.ID, &m.Label, &m.URL, &m.IsActive, &at); err != nil {
			return nil, err
		}
		m.CreatedAt = time.UnixMilli(at).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateMeetLink(ctx context.Context, m MeetLink) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO meet_links (id,label,url,is_active,created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.Label, m.URL, m.IsActive, m.CreatedAt.UnixMilli())
	return err
}

func nullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func fromNullBool(nb sql.NullBool) *bool {
	if !nb.Valid {
		return nil
	}
	b := nb.Bool
	return &b
}
