package repository

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors a row of the users table.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash *string    `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// QuizSummary is a catalog entry without its questions.
type QuizSummary struct {
	ID                    string  `json:"id"`
	Title                 string  `json:"title"`
	QuestionCount         int     `json:"question_count"`
	PrerequisiteQuizID    *string `json:"prerequisite_quiz_id,omitempty"`
	PrerequisiteQuizTitle *string `json:"prerequisite_quiz_title,omitempty"`
	PrerequisiteScore     *int    `json:"prerequisite_score,omitempty"`
}

// QuizRef names a quiz.
type QuizRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// QuizResult is one completed attempt joined with its quiz title.
type QuizResult struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	UserName       string    `json:"user_name,omitempty"`
	QuizID         string    `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Percent returns the score as a rounded 0-100 value.
func (r QuizResult) Percent() int {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return (r.Score*200 + r.TotalQuestions) / (r.TotalQuestions * 2)
}

// NewResult carries a finalized attempt to storage.
type NewResult struct {
	UserID         uuid.UUID
	QuizID         string
	Score          int
	TotalQuestions int
	CompletedAt    time.Time
	MissedIDs      []string
}

// QuizAttempts counts results per quiz.
type QuizAttempts struct {
	QuizID   string `json:"quiz_id"`
	Title    string `json:"title"`
	Attempts int    `json:"attempts"`
}

// FailedQuestion counts how often a question was missed.
type FailedQuestion struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	QuizTitle  string `json:"quiz_title"`
	Misses     int    `json:"misses"`
}

// Badge is a badge definition, with EarnedAt set when listed for a user.
type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}

// Feedback is free-text feedback on a quiz.
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	QuizID    string    `json:"quiz_id"`
	QuizTitle string    `json:"quiz_title"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is one turn of a tutor conversation.
type ChatMessage struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	Personality string    `json:"personality"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
