package quiz

import "time"

// Question is a single quiz item: four labeled options, one correct.
type Question struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Topic         string    `json:"topic,omitempty"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	CorrectAnswer string    `json:"correct_answer,omitempty"` // "A".."D"; stripped for students
	Explanation   string    `json:"explanation,omitempty"`
	MeetLink      string    `json:"meet_link,omitempty"`
	TimeLimitMin  int       `json:"time_limit"` // minutes; 0 = unlimited
	ImageFile     string    `json:"image_file,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Attempt records when a student first opened a question. One per
// (student, question) pair; StartTime never changes after creation.
type Attempt struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	QuestionID string    `json:"question_id"`
	StartTime  time.Time `json:"start_time"`
}

// Submission is a recorded answer. Correct is nil when no option was
// selected (file-only submission).
type Submission struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	StudentName    string    `json:"student_name"`
	QuestionID     string    `json:"question_id"`
	SelectedOption string    `json:"selected_option,omitempty"`
	FileKey        string    `json:"file_key,omitempty"`
	Correct        *bool     `json:"is_correct"`
	Late           bool      `json:"is_expired"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Notification is an admin-facing event raised by a new submission.
// Name and question text are snapshots taken at creation time.
type Notification struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"` // "submission"
	StudentID       string    `json:"student_id"`
	StudentName     string    `json:"student_name"`
	QuestionID      string    `json:"question_id"`
	QuestionPreview string    `json:"question_text"`
	Correct         *bool     `json:"is_correct"`
	Read            bool      `json:"read"`
	CreatedAt       time.Time `json:"created_at"`
}

// Classroom is the singleton live-session status row.
type Classroom struct {
	ActiveMeetLink string    `json:"active_meet_link"`
	IsLive         bool      `json:"is_live"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type MeetLink struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	URL       string    `json:"url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Outcome is what a submit call reports back to the student.
type Outcome struct {
	Accepted bool  `json:"accepted"`
	Correct  *bool `json:"correct"`
	Late     bool  `json:"late"`
}
