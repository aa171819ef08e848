package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cyberguardian/platform/internal/quiz"
)

// QuizHeader is the quiz row without its questions.
type QuizHeader struct {
	Title              string
	PrerequisiteQuizID *string
	PrerequisiteScore  *int
}

// QuizTx is the write surface available inside an authoring transaction.
type QuizTx interface {
	InsertQuiz(ctx context.Context, header QuizHeader) (string, error)
	UpdateQuiz(ctx context.Context, quizID string, header QuizHeader) error
	DeleteQuestions(ctx context.Context, quizID string) error
	InsertQuestion(ctx context.Context, quizID string, position int, q quiz.Question) (string, error)
}

// QuizRepository reads and writes quizzes and their questions.
type QuizRepository struct {
	db DBTX
}

// NewQuizRepository builds a quiz repository over a pool or transaction.
func NewQuizRepository(db DBTX) *QuizRepository {
	return &QuizRepository{db: db}
}

// WithTx runs fn in a single transaction; any error rolls every write back.
func (r *QuizRepository) WithTx(ctx context.Context, fn func(tx QuizTx) error) error {
	return withTx(ctx, r.db, func(tx DBTX) error {
		return fn(&QuizRepository{db: tx})
	})
}

// InsertQuiz creates the quiz header and returns its id.
func (r *QuizRepository) InsertQuiz(ctx context.Context, header QuizHeader) (string, error) {
	prereq, err := optionalID(header.PrerequisiteQuizID)
	if err != nil {
		return "", fmt.Errorf("prerequisite quiz: %w", err)
	}
	var id uuid.UUID
	err = r.db.QueryRow(ctx,
		`INSERT INTO quizzes (title, prerequisite_quiz_id, prerequisite_score)
		 VALUES ($1, $2, $3) RETURNING id`,
		header.Title, prereq, header.PrerequisiteScore,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert quiz: %w", translate(err))
	}
	return id.String(), nil
}

// UpdateQuiz rewrites the quiz header.
func (r *QuizRepository) UpdateQuiz(ctx context.Context, quizID string, header QuizHeader) error {
	id, err := parseID(quizID)
	if err != nil {
		return err
	}
	prereq, err := optionalID(header.PrerequisiteQuizID)
	if err != nil {
		return fmt.Errorf("prerequisite quiz: %w", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE quizzes SET title = $2, prerequisite_quiz_id = $3, prerequisite_score = $4, updated_at = now()
		 WHERE id = $1`,
		id, header.Title, prereq, header.PrerequisiteScore)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteQuestions removes every question of a quiz.
func (r *QuizRepository) DeleteQuestions(ctx context.Context, quizID string) error {
	id, err := parseID(quizID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, id)
	return err
}

// InsertQuestion appends one question at the given position.
func (r *QuizRepository) InsertQuestion(ctx context.Context, quizID string, position int, q quiz.Question) (string, error) {
	id, err := parseID(quizID)
	if err != nil {
		return "", err
	}
	var questionID uuid.UUID
	err = r.db.QueryRow(ctx,
		`INSERT INTO questions (quiz_id, position, text, options, correct_answer, difficulty)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		id, position, q.Text, q.Options, q.CorrectAnswer, string(q.Difficulty),
	).Scan(&questionID)
	if err != nil {
		return "", fmt.Errorf("insert question: %w", err)
	}
	return questionID.String(), nil
}

// Delete removes a quiz; its questions, results and feedback cascade.
func (r *QuizRepository) Delete(ctx context.Context, quizID string) error {
	id, err := parseID(quizID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSummaries returns every quiz with its question count and prerequisite, oldest first.
func (r *QuizRepository) ListSummaries(ctx context.Context) ([]QuizSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT q.id, q.title, COUNT(qs.id), q.prerequisite_quiz_id, p.title, q.prerequisite_score
		 FROM quizzes q
		 LEFT JOIN quizzes p ON p.id = q.prerequisite_quiz_id
		 LEFT JOIN questions qs ON qs.quiz_id = q.id
		 GROUP BY q.id, p.title
		 ORDER BY q.created_at, q.title`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []QuizSummary
	for rows.Next() {
		var (
			s      QuizSummary
			id     uuid.UUID
			prereq *uuid.UUID
		)
		if err := rows.Scan(&id, &s.Title, &s.QuestionCount, &prereq, &s.PrerequisiteQuizTitle, &s.PrerequisiteScore); err != nil {
			return nil, err
		}
		s.ID = id.String()
		s.PrerequisiteQuizID = optionalString(prereq)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get loads a quiz with its questions in authoring order.
func (r *QuizRepository) Get(ctx context.Context, quizID string) (quiz.Quiz, error) {
	id, err := parseID(quizID)
	if err != nil {
		return quiz.Quiz{}, err
	}

	var (
		q      = quiz.Quiz{ID: id.String()}
		prereq *uuid.UUID
	)
	err = r.db.QueryRow(ctx,
		`SELECT title, prerequisite_quiz_id, prerequisite_score FROM quizzes WHERE id = $1`, id,
	).Scan(&q.Title, &prereq, &q.PrerequisiteScore)
	if err != nil {
		return quiz.Quiz{}, translate(err)
	}
	q.PrerequisiteQuizID = optionalString(prereq)

	rows, err := r.db.Query(ctx,
		`SELECT id, quiz_id, text, options, correct_answer, difficulty
		 FROM questions WHERE quiz_id = $1 ORDER BY position`, id)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	q.Questions, err = scanQuestions(rows)
	if err != nil {
		return quiz.Quiz{}, err
	}
	return q, nil
}

// QuestionsByIDs loads the questions whose ids are listed; unknown ids are ignored.
func (r *QuizRepository) QuestionsByIDs(ctx context.Context, ids []string) ([]quiz.Question, error) {
	parsed := parseIDs(ids)
	if len(parsed) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, quiz_id, text, options, correct_answer, difficulty
		 FROM questions WHERE id = ANY($1)`, parsed)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return scanQuestions(rows)
}

// FindByTitle returns quizzes whose title contains tag, case-insensitively.
func (r *QuizRepository) FindByTitle(ctx context.Context, tag string) ([]QuizRef, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title FROM quizzes WHERE title ILIKE '%' || $1 || '%' ORDER BY title`, tag)
	if err != nil {
		return nil, fmt.Errorf("find quizzes: %w", err)
	}
	defer rows.Close()

	var out []QuizRef
	for rows.Next() {
		var id uuid.UUID
		var ref QuizRef
		if err := rows.Scan(&id, &ref.Title); err != nil {
			return nil, err
		}
		ref.ID = id.String()
		out = append(out, ref)
	}
	return out, rows.Err()
}

// Count returns the number of quizzes.
func (r *QuizRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

func scanQuestions(rows rowScanner) ([]quiz.Question, error) {
	defer rows.Close()

	var out []quiz.Question
	for rows.Next() {
		var (
			q          quiz.Question
			id, quizID uuid.UUID
			difficulty string
		)
		if err := rows.Scan(&id, &quizID, &q.Text, &q.Options, &q.CorrectAnswer, &difficulty); err != nil {
			return nil, err
		}
		q.ID = id.String()
		q.QuizID = quizID.String()
		q.Difficulty = quiz.Difficulty(difficulty)
		out = append(out, q)
	}
	return out, rows.Err()
}
