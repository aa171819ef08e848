package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ResultRepository persists completed quiz attempts and aggregates over them.
type ResultRepository struct {
	db DBTX
}

// NewResultRepository builds a result repository.
func NewResultRepository(db DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// Insert stores the result and its missed questions in one transaction.
// Missed ids that no longer reference a question are skipped.
func (r *ResultRepository) Insert(ctx context.Context, res NewResult) (uuid.UUID, error) {
	quizID, err := parseID(res.QuizID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("quiz id: %w", err)
	}

	var id uuid.UUID
	err = withTx(ctx, r.db, func(tx DBTX) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO quiz_results (user_id, quiz_id, score, total_questions, completed_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			res.UserID, quizID, res.Score, res.TotalQuestions, res.CompletedAt,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}

		missed := parseIDs(res.MissedIDs)
		if len(missed) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO quiz_result_misses (result_id, question_id)
			 SELECT $1, id FROM questions WHERE id = ANY($2)
			 ON CONFLICT DO NOTHING`,
			id, missed,
		); err != nil {
			return fmt.Errorf("insert misses: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// BestScorePercentByQuiz returns the user's best rounded percentage per quiz, limited to quizIDs
// when non-empty. Quizzes never attempted are absent from the map.
func (r *ResultRepository) BestScorePercentByQuiz(ctx context.Context, userID uuid.UUID, quizIDs []string) (map[string]int, error) {
	var filter []uuid.UUID
	if quizIDs != nil {
		filter = parseIDs(quizIDs)
		if len(filter) == 0 {
			return map[string]int{}, nil
		}
	}

	rows, err := r.db.Query(ctx,
		`SELECT quiz_id, ROUND(MAX(score * 100.0 / total_questions))::int
		 FROM quiz_results
		 WHERE user_id = $1 AND ($2::uuid[] IS NULL OR quiz_id = ANY($2))
		 GROUP BY quiz_id`,
		userID, filter)
	if err != nil {
		return nil, fmt.Errorf("best scores: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var quizID uuid.UUID
		var pct int
		if err := rows.Scan(&quizID, &pct); err != nil {
			return nil, err
		}
		out[quizID.String()] = pct
	}
	return out, rows.Err()
}

const resultColumns = `r.id, r.user_id, u.name, r.quiz_id, q.title, r.score, r.total_questions, r.completed_at`

func scanResults(rows rowScanner) ([]QuizResult, error) {
	defer rows.Close()

	var out []QuizResult
	for rows.Next() {
		var res QuizResult
		var quizID uuid.UUID
		if err := rows.Scan(&res.ID, &res.UserID, &res.UserName, &quizID, &res.QuizTitle,
			&res.Score, &res.TotalQuestions, &res.CompletedAt); err != nil {
			return nil, err
		}
		res.QuizID = quizID.String()
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListByUser returns every result of a user, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]QuizResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM quiz_results r
		 JOIN users u ON u.id = r.user_id
		 JOIN quizzes q ON q.id = r.quiz_id
		 WHERE r.user_id = $1
		 ORDER BY r.completed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return scanResults(rows)
}

// Recent returns the latest results across all users.
func (r *ResultRepository) Recent(ctx context.Context, limit int) ([]QuizResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM quiz_results r
		 JOIN users u ON u.id = r.user_id
		 JOIN quizzes q ON q.id = r.quiz_id
		 ORDER BY r.completed_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	return scanResults(rows)
}

// Count returns the number of stored results.
func (r *ResultRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_results`).Scan(&n)
	return n, err
}

// MostAttempted ranks quizzes by number of results.
func (r *ResultRepository) MostAttempted(ctx context.Context, limit int) ([]QuizAttempts, error) {
	rows, err := r.db.Query(ctx,
		`SELECT q.id, q.title, COUNT(*) AS attempts
		 FROM quiz_results r JOIN quizzes q ON q.id = r.quiz_id
		 GROUP BY q.id, q.title
		 ORDER BY attempts DESC, q.title
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("most attempted: %w", err)
	}
	defer rows.Close()

	var out []QuizAttempts
	for rows.Next() {
		var a QuizAttempts
		var id uuid.UUID
		if err := rows.Scan(&id, &a.Title, &a.Attempts); err != nil {
			return nil, err
		}
		a.QuizID = id.String()
		out = append(out, a)
	}
	return out, rows.Err()
}

// MostFailedQuestions ranks questions by how many results missed them.
func (r *ResultRepository) MostFailedQuestions(ctx context.Context, limit int) ([]FailedQuestion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT qs.id, qs.text, q.title, COUNT(*) AS misses
		 FROM quiz_result_misses m
		 JOIN questions qs ON qs.id = m.question_id
		 JOIN quizzes q ON q.id = qs.quiz_id
		 GROUP BY qs.id, qs.text, q.title
		 ORDER BY misses DESC, qs.text
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("most failed: %w", err)
	}
	defer rows.Close()

	var out []FailedQuestion
	for rows.Next() {
		var f FailedQuestion
		var id uuid.UUID
		if err := rows.Scan(&id, &f.Text, &f.QuizTitle, &f.Misses); err != nil {
			return nil, err
		}
		f.QuestionID = id.String()
		out = append(out, f)
	}
	return out, rows.Err()
}
