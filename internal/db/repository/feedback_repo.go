package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// FeedbackRepository stores quiz feedback.
type FeedbackRepository struct {
	db DBTX
}

// NewFeedbackRepository builds a feedback repository.
func NewFeedbackRepository(db DBTX) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create stores one feedback entry. An unknown quiz yields ErrNotFound.
func (r *FeedbackRepository) Create(ctx context.Context, userID uuid.UUID, quizID, text string) (uuid.UUID, error) {
	qid, err := parseID(quizID)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = r.db.QueryRow(ctx,
		`INSERT INTO quiz_feedback (user_id, quiz_id, feedback) VALUES ($1, $2, $3) RETURNING id`,
		userID, qid, text).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert feedback: %w", translate(err))
	}
	return id, nil
}

// List returns all feedback, newest first.
func (r *FeedbackRepository) List(ctx context.Context) ([]Feedback, error) {
	rows, err := r.db.Query(ctx,
		`SELECT f.id, f.user_id, u.name, f.quiz_id, q.title, f.feedback, f.created_at
		 FROM quiz_feedback f
		 JOIN users u ON u.id = f.user_id
		 JOIN quizzes q ON q.id = f.quiz_id
		 ORDER BY f.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		var quizID uuid.UUID
		if err := rows.Scan(&f.ID, &f.UserID, &f.UserName, &quizID, &f.QuizTitle, &f.Feedback, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.QuizID = quizID.String()
		out = append(out, f)
	}
	return out, rows.Err()
}

// Count returns the number of feedback entries.
func (r *FeedbackRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_feedback`).Scan(&n)
	return n, err
}
